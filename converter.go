package aarc2rc

import (
	"sync/atomic"

	"github.com/pkg/errors"
)

// ErrCancelled is returned when the cancellation flag is observed inside
// the conversion.
var ErrCancelled = errors.New("conversion cancelled")

func addStations(m *Map, rcmap *RCMap) {
	for _, groupID := range m.sortedGroupIDs() {
		normPos := m.NormalizedPos(m.GroupPos(groupID))
		rcmap.Stations[groupID] = &RCStation{ID: groupID, NormX: normPos[0], NormY: normPos[1]}
	}
	for _, pointID := range m.sortedPointIDs() {
		point := m.Points[pointID]
		if point.Type != TypeStation {
			continue
		}
		if _, grouped := m.PointToGroup[pointID]; grouped {
			continue
		}
		normPos := m.NormalizedPos(point.Pos)
		rcmap.Stations[pointID] = &RCStation{ID: pointID, NormX: normPos[0], NormY: normPos[1]}
	}
}

func hasOptimizerGroups(m *Map) bool {
	for _, segLen := range m.Config.SegmentedLines {
		if segLen < 0 {
			return true
		}
	}
	return false
}

// ConvertToRC runs the full pipeline on a built map: stations, route
// enumeration (under the segmentation optimizer when enabled) and
// deduplication. The cancel flag may be nil.
func ConvertToRC(m *Map, cancel *atomic.Bool) (*RCMap, error) {
	rcmap := &RCMap{Stations: make(map[int]*RCStation)}
	addStations(m, rcmap)

	var lines []*RCLine
	var err error
	if m.Config.OptimizeSegmentation && hasOptimizerGroups(m) {
		lines, err = optimizeSegmentation(m, cancel)
	} else {
		lines, err = enumerateRoutes(m, m.Config.SegmentedLines, nil, cancel)
		if err == nil {
			lines = removeDuplicateLines(lines)
		}
	}
	if err != nil {
		return nil, err
	}

	rcmap.Lines = lines
	return rcmap, nil
}
