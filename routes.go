package aarc2rc

import (
	"sync/atomic"
)

// routeEntry is one BFS state: the tracks walked so far and how many more
// stations the route may still take. Pushing a track onto a line with a
// positive segmentation cap clamps the remainder to that cap.
type routeEntry struct {
	tracks    []Track
	remaining int
}

func (e *routeEntry) push(t Track, m *Map, seg map[int]int) {
	e.tracks = append(e.tracks, t)
	lineCap := m.Config.MaxLength
	if s, ok := seg[t.LineID]; ok && s > 0 {
		lineCap = s
	}
	if e.remaining > lineCap {
		e.remaining = lineCap
	}
	if p, ok := m.Points[t.PointID]; ok && p.Type == TypeStation {
		e.remaining--
	}
}

func (e *routeEntry) full() bool {
	return e.remaining <= 0
}

func (e *routeEntry) clone() routeEntry {
	tracks := make([]Track, len(e.tracks), len(e.tracks)+1)
	copy(tracks, e.tracks)
	return routeEntry{tracks: tracks, remaining: e.remaining}
}

// stationIDOf maps a station point to its group id, or to itself when
// ungrouped.
func stationIDOf(m *Map, pointID int) int {
	if gid, ok := m.PointToGroup[pointID]; ok {
		return gid
	}
	return pointID
}

// enumerateRoutes walks the track graph breadth-first and emits every
// admissible route as an RC line. seg supplies the per-line station caps
// (the optimizer passes trial values here); a non-nil mask restricts the
// search to the listed lines. The cancel flag is polled once per BFS
// iteration.
func enumerateRoutes(m *Map, seg map[int]int, mask map[int]struct{}, cancel *atomic.Bool) ([]*RCLine, error) {
	points := buildTrackIndex(m, mask)

	var result []*RCLine

	appendLine := func(stationIDs []int, isLoop bool) {
		if len(stationIDs) < 2 {
			return
		}
		result = append(result, &RCLine{
			ID:         len(result) + 1,
			StationIDs: stationIDs,
			IsLoop:     isLoop,
		})
	}

	collectStations := func(pointIDs []int) []int {
		var stationIDs []int
		for _, pid := range pointIDs {
			p, ok := m.Points[pid]
			if !ok || p.Type != TypeStation {
				continue
			}
			id := stationIDOf(m, pid)
			if !m.Config.MergeConsecutiveDuplicates || len(stationIDs) == 0 || stationIDs[len(stationIDs)-1] != id {
				stationIDs = append(stationIDs, id)
			}
		}
		return stationIDs
	}

	addLine := func(tracks []Track) {
		if len(tracks) < 2 {
			return
		}
		pointIDs := make([]int, len(tracks))
		for i, t := range tracks {
			pointIDs[i] = t.PointID
		}
		appendLine(collectStations(pointIDs), false)
	}

	nextTracks := func(track Track) []Track {
		if track.IsEnd {
			return nil
		}
		nextPID := m.Lines[track.LineID].PointIDs[track.nextPointIndex()]
		var result []Track
		for _, t := range points[nextPID] {
			if t.LineID == track.LineID && t.IndexInLine == track.nextPointIndex() {
				if t.Forward == track.Forward || t.IsEnd {
					result = append(result, t)
				}
				continue
			}
			if t.IsEnd {
				continue
			}
			pair := linePair{track.LineID, t.LineID}
			if _, merged := m.Config.MergedLines[pair]; merged {
				result = append(result, t)
				continue
			}
			if _, friend := m.Config.FriendLines[pair]; !friend {
				continue
			}
			pidAfterNext := m.Lines[t.LineID].PointIDs[t.nextPointIndex()]
			if m.CanMoveThrough(track.PointID, nextPID, pidAfterNext) {
				result = append(result, t)
			}
		}
		if len(result) > 1 {
			// end tracks are taken only when nothing else is available
			filtered := result[:0]
			for _, t := range result {
				if !t.IsEnd {
					filtered = append(filtered, t)
				}
			}
			result = filtered
		}
		return result
	}

	var queue []routeEntry
	seed := func(pid, lineID, index int, forward bool) {
		entry := routeEntry{remaining: m.Config.MaxLength}
		entry.push(Track{PointID: pid, LineID: lineID, IndexInLine: index, Forward: forward, NextIndex: -1}, m, seg)
		queue = append(queue, entry)
	}

	for _, lineID := range m.sortedLineIDs() {
		if mask != nil {
			if _, ok := mask[lineID]; !ok {
				continue
			}
		}
		line := m.Lines[lineID]
		if len(line.PointIDs) < 2 {
			continue
		}

		if line.IsSimple {
			appendLine(collectStations(line.PointIDs), line.IsLoop)
			continue
		}

		seed(line.PointIDs[0], lineID, 0, true)
		seed(line.PointIDs[len(line.PointIDs)-1], lineID, len(line.PointIDs)-1, false)

		// interior seeds give the optimizer control over where segmented
		// routes split
		if segLen, ok := seg[lineID]; ok && segLen > 0 {
			step := segLen - m.Config.MaxRCSteps
			if step > 0 {
				for i := step; i+1 < len(line.PointIDs); i += step {
					seed(line.PointIDs[i], lineID, i, true)
					seed(line.PointIDs[i], lineID, i, false)
				}
			}
		}
	}

	// breadth-first expansion; no visited tracking, the station caps bound
	// the search
	for len(queue) > 0 {
		if cancel != nil && cancel.Load() {
			return nil, ErrCancelled
		}
		entry := queue[0]
		queue = queue[1:]

		nexts := nextTracks(entry.tracks[len(entry.tracks)-1])
		if len(nexts) == 0 || entry.full() {
			addLine(entry.tracks)
			continue
		}
		for _, next := range nexts {
			newEntry := entry.clone()
			newEntry.push(next, m, seg)
			queue = append(queue, newEntry)
		}
	}

	return result, nil
}
