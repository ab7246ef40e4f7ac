package aarc2rc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustBuild(t *testing.T, aarc, config string) *Map {
	t.Helper()
	var configData []byte
	if config != "" {
		configData = []byte(config)
	}
	m, err := BuildMap([]byte(aarc), configData)
	require.NoError(t, err)
	return m
}

func TestBuildMapDefaults(t *testing.T) {
	m := mustBuild(t, `{}`, "")
	assert.Equal(t, 1024.0, m.Width)
	assert.Equal(t, 1024.0, m.Height)
	assert.Equal(t, 128, m.Config.MaxLength)
	assert.Equal(t, 16, m.Config.MaxRCSteps)
	assert.Equal(t, 4, m.Config.MaxIterations)
	assert.Equal(t, LinkModeConnect, m.Config.LinkModes[LinkThickLine])
	assert.Equal(t, LinkModeNone, m.Config.LinkModes[LinkDottedLine1])
	assert.Equal(t, LinkModeNone, m.Config.LinkModes[LinkDottedLine2])
	assert.Equal(t, LinkModeGroup, m.Config.LinkModes[LinkGroup])
}

func TestBuildMapRejectsInvalidJSON(t *testing.T) {
	_, err := BuildMap([]byte(`{not json`), nil)
	assert.Error(t, err)
}

func TestBuildMapSkipsFakeAndTypedLines(t *testing.T) {
	aarc := `{
		"points": [
			{"id": 1, "pos": [0, 0], "dir": 0, "sta": 1},
			{"id": 2, "pos": [100, 0], "dir": 0, "sta": 1}
		],
		"lines": [
			{"id": 1, "pts": [1, 2]},
			{"id": 2, "pts": [1, 2], "isFake": true},
			{"id": 3, "pts": [1, 2], "type": 1}
		]
	}`
	m := mustBuild(t, aarc, "")
	assert.Len(t, m.Lines, 1)
	assert.Contains(t, m.Lines, 1)
}

func TestBuildMapParentInducesFriends(t *testing.T) {
	aarc := `{
		"points": [
			{"id": 1, "pos": [0, 0], "dir": 0, "sta": 1},
			{"id": 2, "pos": [100, 0], "dir": 0, "sta": 1},
			{"id": 3, "pos": [100, 100], "dir": 0, "sta": 1}
		],
		"lines": [
			{"id": 1, "pts": [1, 2], "parent": 10},
			{"id": 2, "pts": [2, 3], "parent": 10}
		]
	}`
	m := mustBuild(t, aarc, "")
	assert.Contains(t, m.Config.FriendLines, linePair{1, 10})
	assert.Contains(t, m.Config.FriendLines, linePair{10, 1})
	assert.Contains(t, m.Config.FriendLines, linePair{1, 2})
	assert.Contains(t, m.Config.FriendLines, linePair{2, 1})
}

func TestBuildMapConfigMergePositiveOnly(t *testing.T) {
	config := `{"max_length": 64, "max_rc_steps": -3, "merge_consecutive_duplicates": false}`
	m := mustBuild(t, `{}`, config)
	assert.Equal(t, 64, m.Config.MaxLength)
	assert.Equal(t, 16, m.Config.MaxRCSteps)
	assert.False(t, m.Config.MergeConsecutiveDuplicates)
}

func TestBuildMapFriendAndMergedByNameOrID(t *testing.T) {
	aarc := `{
		"points": [
			{"id": 1, "pos": [0, 0], "dir": 0, "sta": 1},
			{"id": 2, "pos": [100, 0], "dir": 0, "sta": 1},
			{"id": 3, "pos": [100, 100], "dir": 0, "sta": 1}
		],
		"lines": [
			{"id": 1, "name": "Red", "pts": [1, 2]},
			{"id": 2, "name": "Blue", "pts": [2, 3]}
		]
	}`
	config := `{"friend_lines": [["Red", 2]], "merged_lines": [[1, "Blue"]]}`
	m := mustBuild(t, aarc, config)
	assert.Contains(t, m.Config.FriendLines, linePair{1, 2})
	assert.Contains(t, m.Config.FriendLines, linePair{2, 1})
	assert.Contains(t, m.Config.MergedLines, linePair{1, 2})
	assert.Contains(t, m.Config.MergedLines, linePair{2, 1})
}

func TestBuildMapSegmentedEntries(t *testing.T) {
	aarc := `{
		"points": [
			{"id": 1, "pos": [0, 0], "dir": 0, "sta": 1},
			{"id": 2, "pos": [100, 0], "dir": 0, "sta": 1},
			{"id": 3, "pos": [200, 0], "dir": 0, "sta": 1}
		],
		"lines": [
			{"id": 1, "pts": [1, 2]},
			{"id": 2, "pts": [2, 3]},
			{"id": 3, "name": "Long", "pts": [1, 3]}
		]
	}`
	config := `{
		"max_rc_steps": 4,
		"segmented_lines": [
			[1, 2],
			{"line": "Long", "segment_length": 8}
		]
	}`
	m := mustBuild(t, aarc, config)
	assert.Equal(t, -1, m.Config.SegmentedLines[1])
	assert.Equal(t, -1, m.Config.SegmentedLines[2])
	assert.Equal(t, 8, m.Config.SegmentedLines[3])
}

func TestBuildMapRaisesLowSegmentLength(t *testing.T) {
	aarc := `{
		"points": [
			{"id": 1, "pos": [0, 0], "dir": 0, "sta": 1},
			{"id": 2, "pos": [100, 0], "dir": 0, "sta": 1}
		],
		"lines": [{"id": 1, "pts": [1, 2]}]
	}`
	config := `{"segmented_lines": [{"line": 1, "segment_length": 5}]}`
	m := mustBuild(t, aarc, config)
	// 5 does not exceed the default max_rc_steps of 16
	assert.Equal(t, 17, m.Config.SegmentedLines[1])
}

func TestBuildMapAutoGroupsNearbyStations(t *testing.T) {
	aarc := `{
		"points": [
			{"id": 1, "pos": [0, 0], "dir": 0, "sta": 1},
			{"id": 2, "pos": [100, 0], "dir": 0, "sta": 1},
			{"id": 3, "pos": [200, 0], "dir": 0, "sta": 1},
			{"id": 4, "pos": [0, 10], "dir": 0, "sta": 1},
			{"id": 5, "pos": [100, 10], "dir": 0, "sta": 1},
			{"id": 6, "pos": [200, 10], "dir": 0, "sta": 1}
		],
		"lines": [
			{"id": 1, "pts": [1, 2, 3]},
			{"id": 2, "pts": [4, 5, 6]}
		]
	}`
	m := mustBuild(t, aarc, "")
	require.Len(t, m.StationGroups, 3)
	assert.Equal(t, m.PointToGroup[1], m.PointToGroup[4])
	assert.Equal(t, m.PointToGroup[2], m.PointToGroup[5])
	assert.Equal(t, m.PointToGroup[3], m.PointToGroup[6])
	assert.NotEqual(t, m.PointToGroup[1], m.PointToGroup[2])
}

func TestBuildMapPointLinks(t *testing.T) {
	aarc := `{
		"points": [
			{"id": 1, "pos": [0, 0], "dir": 0, "sta": 1},
			{"id": 2, "pos": [100, 0], "dir": 0, "sta": 1},
			{"id": 3, "pos": [500, 0], "dir": 0, "sta": 1},
			{"id": 4, "pos": [600, 0], "dir": 0, "sta": 1}
		],
		"lines": [{"id": 1, "pts": [1, 2]}, {"id": 2, "pts": [3, 4]}],
		"pointLinks": [
			{"pts": [2, 3], "type": 0},
			{"pts": [1, 4], "type": 4},
			{"pts": [1, 3], "type": 2}
		]
	}`
	m := mustBuild(t, aarc, "")

	// ThickLine defaults to Connect: a fresh two-point line appears
	require.Len(t, m.Lines, 3)
	link := m.Lines[3]
	require.NotNil(t, link)
	assert.Equal(t, []int{2, 3}, link.PointIDs)

	// Group joins the two stations
	assert.Equal(t, m.PointToGroup[1], m.PointToGroup[4])

	// DottedLine1 defaults to None: no group, no extra line
	g1, ok1 := m.PointToGroup[1]
	g3, ok3 := m.PointToGroup[3]
	assert.True(t, ok1)
	if ok3 {
		assert.NotEqual(t, g1, g3)
	}
}

func TestBuildMapLoopRefinement(t *testing.T) {
	aarc := `{
		"points": [
			{"id": 1, "pos": [0, 0], "dir": 0, "sta": 1},
			{"id": 2, "pos": [100, 0], "dir": 0, "sta": 1},
			{"id": 3, "pos": [200, 0], "dir": 0, "sta": 1}
		],
		"lines": [{"id": 1, "pts": [1, 2, 3, 1, 2, 3]}]
	}`
	m := mustBuild(t, aarc, "")
	line := m.Lines[1]
	assert.True(t, line.IsLoop)
	assert.Equal(t, []int{1, 2, 3, 1}, line.PointIDs)
}

func TestBuildMapSimpleFlag(t *testing.T) {
	aarc := `{
		"points": [
			{"id": 1, "pos": [0, 0], "dir": 0, "sta": 1},
			{"id": 2, "pos": [100, 0], "dir": 0, "sta": 1},
			{"id": 3, "pos": [200, 0], "dir": 0, "sta": 1},
			{"id": 4, "pos": [100, 100], "dir": 0, "sta": 1},
			{"id": 5, "pos": [300, 0], "dir": 0, "sta": 1}
		],
		"lines": [
			{"id": 1, "pts": [1, 2, 3]},
			{"id": 2, "pts": [2, 4]},
			{"id": 3, "pts": [3, 5, 3, 2]}
		]
	}`
	config := `{"friend_lines": [[1, 2]]}`
	m := mustBuild(t, aarc, config)
	assert.False(t, m.Lines[1].IsSimple, "friend lines are not simple")
	assert.False(t, m.Lines[2].IsSimple, "friend lines are not simple")
	assert.False(t, m.Lines[3].IsSimple, "duplicate stations are not simple")
}

func TestBuildMapSimpleFlagPlainLine(t *testing.T) {
	aarc := `{
		"points": [
			{"id": 1, "pos": [0, 0], "dir": 0, "sta": 1},
			{"id": 2, "pos": [100, 0], "dir": 0, "sta": 1}
		],
		"lines": [{"id": 1, "pts": [1, 2]}]
	}`
	m := mustBuild(t, aarc, "")
	assert.True(t, m.Lines[1].IsSimple)
}

func TestBuildMapPointSizeFromWidthLookup(t *testing.T) {
	aarc := `{
		"points": [
			{"id": 1, "pos": [0, 0], "dir": 0, "sta": 1},
			{"id": 2, "pos": [500, 0], "dir": 0, "sta": 1}
		],
		"lines": [{"id": 1, "pts": [1, 2], "width": 2}],
		"config": {"lineWidthMapped": {"2": {"staSize": 3}}}
	}`
	m := mustBuild(t, aarc, "")
	assert.Equal(t, 3.0, m.Points[1].Size)
	assert.Equal(t, 3.0, m.Points[2].Size)
}

func TestBuildMapPtSizeAsString(t *testing.T) {
	aarc := `{
		"points": [
			{"id": 1, "pos": [0, 0], "dir": 0, "sta": 1},
			{"id": 2, "pos": [500, 0], "dir": 0, "sta": 1}
		],
		"lines": [{"id": 1, "pts": [1, 2], "ptSize": "2.5"}]
	}`
	m := mustBuild(t, aarc, "")
	assert.Equal(t, 2.5, m.Points[1].Size)
}

func TestFriendAndMergedSymmetry(t *testing.T) {
	aarc := `{
		"points": [
			{"id": 1, "pos": [0, 0], "dir": 0, "sta": 1},
			{"id": 2, "pos": [100, 0], "dir": 0, "sta": 1},
			{"id": 3, "pos": [100, 100], "dir": 0, "sta": 1}
		],
		"lines": [{"id": 1, "pts": [1, 2]}, {"id": 2, "pts": [2, 3]}]
	}`
	config := `{"friend_lines": [[1, 2]], "merged_lines": [[2, 1]]}`
	m := mustBuild(t, aarc, config)
	for pair := range m.Config.FriendLines {
		assert.Contains(t, m.Config.FriendLines, linePair{pair.b, pair.a})
	}
	for pair := range m.Config.MergedLines {
		assert.Contains(t, m.Config.MergedLines, linePair{pair.b, pair.a})
	}
}

func TestJoinStationsMergesGroups(t *testing.T) {
	m := newMap()
	for id := 1; id <= 4; id++ {
		m.Points[id] = orthoPoint(id, float64(id)*100, 0)
	}
	m.joinStations(1, 2)
	m.joinStations(3, 4)
	require.Len(t, m.StationGroups, 2)

	m.joinStations(2, 3)
	require.Len(t, m.StationGroups, 1)
	for id := 1; id <= 4; id++ {
		assert.Equal(t, m.PointToGroup[1], m.PointToGroup[id])
	}
}

func TestGroupPosIsCentroid(t *testing.T) {
	m := newMap()
	m.Points[1] = orthoPoint(1, 0, 0)
	m.Points[2] = orthoPoint(2, 10, 20)
	m.joinStations(1, 2)
	gid := m.PointToGroup[1]
	pos := m.GroupPos(gid)
	assert.InDelta(t, 5.0, pos[0], epsilon)
	assert.InDelta(t, 10.0, pos[1], epsilon)
}
