package aarc2rc

type LinkType int

const (
	LinkThickLine LinkType = iota
	LinkThinLine
	LinkDottedLine1
	LinkDottedLine2
	LinkGroup
)

type LinkMode int

const (
	LinkModeConnect LinkMode = iota
	LinkModeGroup
	LinkModeNone
)

// linePair is an ordered pair of line ids. Friend and merged relations store
// both orders so membership checks stay symmetric.
type linePair struct {
	a, b int
}

// Config carries the tunables of a single conversion. SegmentedLines maps a
// line id to its per-route station cap; negative values are optimizer group
// keys, which the segmentation optimizer replaces with tuned lengths in its
// own copy, leaving this map unchanged.
type Config struct {
	MaxLength                  int
	MaxRCSteps                 int
	MaxIterations              int
	AutoGroupDistance          float64
	MergeConsecutiveDuplicates bool
	OptimizeSegmentation       bool

	LinkModes      map[LinkType]LinkMode
	FriendLines    map[linePair]struct{}
	MergedLines    map[linePair]struct{}
	SegmentedLines map[int]int
}

func defaultConfig() Config {
	return Config{
		MaxLength:                  128,
		MaxRCSteps:                 16,
		MaxIterations:              4,
		AutoGroupDistance:          25.0,
		MergeConsecutiveDuplicates: true,
		OptimizeSegmentation:       false,
		LinkModes: map[LinkType]LinkMode{
			LinkThickLine:   LinkModeConnect,
			LinkThinLine:    LinkModeConnect,
			LinkDottedLine1: LinkModeNone,
			LinkDottedLine2: LinkModeNone,
			LinkGroup:       LinkModeGroup,
		},
		FriendLines:    make(map[linePair]struct{}),
		MergedLines:    make(map[linePair]struct{}),
		SegmentedLines: make(map[int]int),
	}
}
