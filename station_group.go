package aarc2rc

// StationGroup is a set of station point ids treated as one RC station,
// positioned at the centroid of its members.
type StationGroup struct {
	ID         int
	Name       string
	StationIDs []int
}
