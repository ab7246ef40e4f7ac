package aarc2rc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rcLines(stas ...[]int) []*RCLine {
	lines := make([]*RCLine, len(stas))
	for i, s := range stas {
		lines[i] = &RCLine{ID: i + 1, StationIDs: s}
	}
	return lines
}

func TestRemoveDuplicateLinesIdentical(t *testing.T) {
	lines := removeDuplicateLines(rcLines(
		[]int{1, 2, 3},
		[]int{1, 2, 3},
	))
	require.Len(t, lines, 1)
	assert.Equal(t, 1, lines[0].ID)
}

func TestRemoveDuplicateLinesReversed(t *testing.T) {
	lines := removeDuplicateLines(rcLines(
		[]int{1, 2, 3},
		[]int{3, 2, 1},
	))
	require.Len(t, lines, 1)
	assert.Equal(t, 1, lines[0].ID)
}

func TestRemoveDuplicateLinesSubroute(t *testing.T) {
	// the shorter line loses regardless of id order
	lines := removeDuplicateLines(rcLines(
		[]int{2, 3},
		[]int{1, 2, 3, 4},
	))
	require.Len(t, lines, 1)
	assert.Equal(t, []int{1, 2, 3, 4}, lines[0].StationIDs)
}

func TestRemoveDuplicateLinesReversedSubroute(t *testing.T) {
	lines := removeDuplicateLines(rcLines(
		[]int{3, 2},
		[]int{1, 2, 3, 4},
	))
	require.Len(t, lines, 1)
	assert.Equal(t, []int{1, 2, 3, 4}, lines[0].StationIDs)
}

func TestRemoveDuplicateLinesKeepsDistinct(t *testing.T) {
	lines := removeDuplicateLines(rcLines(
		[]int{1, 2, 3},
		[]int{4, 5, 6},
		[]int{1, 5, 3},
	))
	assert.Len(t, lines, 3)
}

func TestRemoveDuplicateLinesChain(t *testing.T) {
	// duplicates of duplicates disappear in later passes
	lines := removeDuplicateLines(rcLines(
		[]int{1, 2, 3, 4, 5},
		[]int{5, 4, 3, 2, 1},
		[]int{2, 3, 4},
	))
	require.Len(t, lines, 1)
	assert.Equal(t, []int{1, 2, 3, 4, 5}, lines[0].StationIDs)
}

func TestRemoveDuplicateLinesIdempotent(t *testing.T) {
	lines := removeDuplicateLines(rcLines(
		[]int{1, 2, 3},
		[]int{3, 2, 1},
		[]int{2, 3},
		[]int{4, 5},
	))
	again := removeDuplicateLines(lines)
	assert.Equal(t, lines, again)
}

func TestIsSubroute(t *testing.T) {
	assert.True(t, isSubroute([]int{2, 3}, []int{1, 2, 3, 4}))
	assert.False(t, isSubroute([]int{1, 3}, []int{1, 2, 3, 4}))
	assert.False(t, isSubroute([]int{1, 2, 3}, []int{1, 2, 3}), "equal length is not a strict infix")
	assert.False(t, isSubroute(nil, []int{1, 2}))
}
