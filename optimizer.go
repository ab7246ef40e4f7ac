package aarc2rc

import (
	"sort"
	"sync/atomic"
)

// optimizerGroups partitions the optimizer-controlled lines by their
// negative group key, each group's member ids sorted.
func optimizerGroups(seg map[int]int) map[int][]int {
	groups := make(map[int][]int)
	for lineID, segLen := range seg {
		if segLen < 0 {
			groups[segLen] = append(groups[segLen], lineID)
		}
	}
	for _, lineIDs := range groups {
		sort.Ints(lineIDs)
	}
	return groups
}

// optimizerMask is the set of optimizer-touched lines closed under the
// friend and merged relations: every line a tuned route could spill into.
func optimizerMask(m *Map, groups map[int][]int) map[int]struct{} {
	mask := make(map[int]struct{})
	var frontier []int
	for _, lineIDs := range groups {
		for _, id := range lineIDs {
			if _, ok := mask[id]; !ok {
				mask[id] = struct{}{}
				frontier = append(frontier, id)
			}
		}
	}
	for len(frontier) > 0 {
		id := frontier[0]
		frontier = frontier[1:]
		for pair := range m.Config.FriendLines {
			if pair.a != id {
				continue
			}
			if _, ok := mask[pair.b]; !ok {
				mask[pair.b] = struct{}{}
				frontier = append(frontier, pair.b)
			}
		}
		for pair := range m.Config.MergedLines {
			if pair.a != id {
				continue
			}
			if _, ok := mask[pair.b]; !ok {
				mask[pair.b] = struct{}{}
				frontier = append(frontier, pair.b)
			}
		}
	}
	return mask
}

// wide deltas for the first two iterations, narrow afterwards
var (
	optimizerDeltasWide   = []int{-11, -5, -2, 2, 5, 11}
	optimizerDeltasNarrow = []int{-5, -2, 2, 5}
)

// optimizeSegmentation tunes the per-group segment lengths by coordinate
// descent over the route count, then produces the final result with an
// unmasked run. The enumerator is treated as a pure function of the map and
// the segmentation.
func optimizeSegmentation(m *Map, cancel *atomic.Bool) ([]*RCLine, error) {
	seg := make(map[int]int, len(m.Config.SegmentedLines))
	for lineID, segLen := range m.Config.SegmentedLines {
		seg[lineID] = segLen
	}

	groups := optimizerGroups(seg)
	groupValue := make(map[int]int, len(groups))
	for key, lineIDs := range groups {
		groupValue[key] = m.Config.MaxRCSteps << 1
		for _, lineID := range lineIDs {
			seg[lineID] = groupValue[key]
		}
	}
	groupKeys := make([]int, 0, len(groups))
	for key := range groups {
		groupKeys = append(groupKeys, key)
	}
	sort.Ints(groupKeys)

	mask := optimizerMask(m, groups)

	routeCount := func(trial map[int]int) (int, error) {
		lines, err := enumerateRoutes(m, trial, mask, cancel)
		if err != nil {
			return 0, err
		}
		return len(removeDuplicateLines(lines)), nil
	}

	best, err := routeCount(seg)
	if err != nil {
		return nil, err
	}

	improved := true
	for iteration := 0; improved && iteration < m.Config.MaxIterations; iteration++ {
		if cancel != nil && cancel.Load() {
			return nil, ErrCancelled
		}
		improved = false

		deltas := optimizerDeltasNarrow
		if iteration < 2 {
			deltas = optimizerDeltasWide
		}

		for _, key := range groupKeys {
			bestDelta := 0
			bestCost := best
			for _, delta := range deltas {
				value := groupValue[key] + delta
				if value <= m.Config.MaxRCSteps || value >= 2*m.Config.MaxLength {
					continue
				}
				trial := make(map[int]int, len(seg))
				for lineID, segLen := range seg {
					trial[lineID] = segLen
				}
				for _, lineID := range groups[key] {
					trial[lineID] = value
				}
				cost, err := routeCount(trial)
				if err != nil {
					return nil, err
				}
				if cost < bestCost {
					bestCost = cost
					bestDelta = delta
				}
			}
			if bestDelta != 0 {
				groupValue[key] += bestDelta
				for _, lineID := range groups[key] {
					seg[lineID] = groupValue[key]
				}
				best = bestCost
				improved = true
			}
		}
	}

	lines, err := enumerateRoutes(m, seg, nil, cancel)
	if err != nil {
		return nil, err
	}
	return removeDuplicateLines(lines), nil
}
