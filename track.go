package aarc2rc

// Track is a directed half-edge leaving a (line, index) position. A
// NextIndex of -1 means the neighbor index follows from the direction;
// loop wrap-around tracks carry an explicit one. End tracks terminate a
// route.
type Track struct {
	PointID     int
	LineID      int
	IndexInLine int
	Forward     bool
	IsEnd       bool
	NextIndex   int
}

func (t Track) nextPointIndex() int {
	if t.NextIndex != -1 {
		return t.NextIndex
	}
	if t.Forward {
		return t.IndexInLine + 1
	}
	return t.IndexInLine - 1
}

// buildTrackIndex parks the tracks of every line position at their point.
// With a non-nil mask only the listed lines contribute tracks.
func buildTrackIndex(m *Map, mask map[int]struct{}) map[int][]Track {
	index := make(map[int][]Track)
	for _, lineID := range m.sortedLineIDs() {
		if mask != nil {
			if _, ok := mask[lineID]; !ok {
				continue
			}
		}
		line := m.Lines[lineID]
		for i, pid := range line.PointIDs {
			if _, ok := m.Points[pid]; !ok {
				continue
			}
			last := len(line.PointIDs) - 1
			if i < last {
				index[pid] = append(index[pid], Track{PointID: pid, LineID: lineID, IndexInLine: i, Forward: true, NextIndex: -1})
			}
			if i > 0 {
				index[pid] = append(index[pid], Track{PointID: pid, LineID: lineID, IndexInLine: i, Forward: false, NextIndex: -1})
			}
			if i == 0 && line.IsLoop {
				index[pid] = append(index[pid], Track{PointID: pid, LineID: lineID, IndexInLine: i, Forward: false, NextIndex: last})
			}
			if i == last && line.IsLoop {
				index[pid] = append(index[pid], Track{PointID: pid, LineID: lineID, IndexInLine: i, Forward: true, NextIndex: 0})
			}
			if i == 0 && !line.IsLoop {
				index[pid] = append(index[pid], Track{PointID: pid, LineID: lineID, IndexInLine: i, Forward: false, IsEnd: true, NextIndex: -1})
			}
			if i == last && !line.IsLoop {
				index[pid] = append(index[pid], Track{PointID: pid, LineID: lineID, IndexInLine: i, Forward: true, IsEnd: true, NextIndex: -1})
			}
		}
	}
	return index
}
