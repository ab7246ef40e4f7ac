package aarc2rc

import (
	"fmt"
	"sort"

	"github.com/paulmach/orb"
)

// Map is the normalized source diagram: points, lines, station groups and
// the merged conversion config. It is built once by BuildMap and treated as
// read-only by the enumerator.
type Map struct {
	Config Config

	Width  float64
	Height float64

	Points map[int]*Point
	Lines  map[int]*Line

	StationGroups map[int]*StationGroup
	PointToGroup  map[int]int // station id -> group id
}

func newMap() *Map {
	return &Map{
		Config:        defaultConfig(),
		Width:         1024.0,
		Height:        1024.0,
		Points:        make(map[int]*Point),
		Lines:         make(map[int]*Line),
		StationGroups: make(map[int]*StationGroup),
		PointToGroup:  make(map[int]int),
	}
}

// CanMoveThrough reports whether the turn p1 -> p2 -> p3 bends by at most 90
// degrees, the admissibility condition for crossing between friend lines.
func (m *Map) CanMoveThrough(p1ID, p2ID, p3ID int) bool {
	p1, ok1 := m.Points[p1ID]
	p2, ok2 := m.Points[p2ID]
	p3, ok3 := m.Points[p3ID]
	if !ok1 || !ok2 || !ok3 {
		return false
	}
	return vecDot(vecSub(p2.Pos, p1.Pos), vecSub(p3.Pos, p2.Pos)) >= 0
}

// GroupPos returns the centroid of the group's member stations.
func (m *Map) GroupPos(groupID int) orb.Point {
	group, ok := m.StationGroups[groupID]
	if !ok || len(group.StationIDs) == 0 {
		return orb.Point{}
	}
	sum := orb.Point{}
	count := 0
	for _, sid := range group.StationIDs {
		if p, ok := m.Points[sid]; ok {
			sum = vecAdd(sum, p.Pos)
			count++
		}
	}
	if count == 0 {
		return orb.Point{}
	}
	return vecScale(sum, 1.0/float64(count))
}

// NormalizedPos maps a canvas position into the unit square.
func (m *Map) NormalizedPos(pos orb.Point) orb.Point {
	return orb.Point{pos[0] / m.Width, pos[1] / m.Height}
}

func (m *Map) connectLines(line1ID, line2ID int, forced bool) {
	if line1ID == line2ID && !forced {
		return
	}
	m.Config.FriendLines[linePair{line1ID, line2ID}] = struct{}{}
	m.Config.FriendLines[linePair{line2ID, line1ID}] = struct{}{}
}

func (m *Map) mergeLines(line1ID, line2ID int, forced bool) {
	if line1ID == line2ID && !forced {
		return
	}
	m.Config.MergedLines[linePair{line1ID, line2ID}] = struct{}{}
	m.Config.MergedLines[linePair{line2ID, line1ID}] = struct{}{}
}

// joinStations merges the groups of two stations, creating or extending
// groups as needed. Group ids are never reused for a new group; when two
// groups merge the second one is dropped.
func (m *Map) joinStations(station1ID, station2ID int) {
	if station1ID == station2ID {
		return
	}
	g1, ok1 := m.PointToGroup[station1ID]
	g2, ok2 := m.PointToGroup[station2ID]
	switch {
	case ok1 && ok2:
		if g1 == g2 {
			return
		}
		group1 := m.StationGroups[g1]
		group2 := m.StationGroups[g2]
		for _, sid := range group2.StationIDs {
			group1.StationIDs = append(group1.StationIDs, sid)
			m.PointToGroup[sid] = g1
		}
		delete(m.StationGroups, g2)
	case ok1:
		group := m.StationGroups[g1]
		group.StationIDs = append(group.StationIDs, station2ID)
		m.PointToGroup[station2ID] = g1
	case ok2:
		group := m.StationGroups[g2]
		group.StationIDs = append(group.StationIDs, station1ID)
		m.PointToGroup[station1ID] = g2
	default:
		group := &StationGroup{
			ID:         station1ID,
			Name:       fmt.Sprintf("Station Group %d", station1ID),
			StationIDs: []int{station1ID, station2ID},
		}
		m.StationGroups[group.ID] = group
		m.PointToGroup[station1ID] = group.ID
		m.PointToGroup[station2ID] = group.ID
	}
}

// lineIDByName resolves a line by display name, scanning in id order so the
// result is deterministic when names repeat.
func (m *Map) lineIDByName(name string) (int, bool) {
	for _, id := range m.sortedLineIDs() {
		if m.Lines[id].Name == name {
			return id, true
		}
	}
	return 0, false
}

func (m *Map) maxPointID() int {
	maxID := 0
	for id := range m.Points {
		if id > maxID {
			maxID = id
		}
	}
	return maxID
}

func (m *Map) sortedPointIDs() []int {
	ids := make([]int, 0, len(m.Points))
	for id := range m.Points {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

func (m *Map) sortedLineIDs() []int {
	ids := make([]int, 0, len(m.Lines))
	for id := range m.Lines {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

func (m *Map) sortedGroupIDs() []int {
	ids := make([]int, 0, len(m.StationGroups))
	for id := range m.StationGroups {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}
