package aarc2rc

// Line is an ordered walk over point ids. IsLoop holds when the first and
// last ids coincide (or when loop refinement detects a repeating period).
// IsSimple marks lines that can bypass route enumeration entirely.
type Line struct {
	ID       int
	Name     string
	PointIDs []int
	IsLoop   bool
	IsSimple bool
	ParentID int
}
