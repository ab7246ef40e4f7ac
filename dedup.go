package aarc2rc

import (
	"sort"
)

func reversedIDs(ids []int) []int {
	rev := make([]int, len(ids))
	for i, id := range ids {
		rev[len(ids)-1-i] = id
	}
	return rev
}

func equalIDs(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// isSubroute reports whether a occurs as a strict contiguous infix of b.
func isSubroute(a, b []int) bool {
	if len(a) == 0 || len(a) >= len(b) {
		return false
	}
	for i := 0; i+len(a) <= len(b); i++ {
		if equalIDs(a, b[i:i+len(a)]) {
			return true
		}
	}
	return false
}

// removeDuplicateLines drops routes that duplicate another route (same or
// reversed station sequence, larger id loses) or ride inside one as a
// contiguous sub-route. Passes repeat in id order until nothing is removed,
// so the result does not depend on map iteration order.
func removeDuplicateLines(lines []*RCLine) []*RCLine {
	for {
		sort.Slice(lines, func(i, j int) bool { return lines[i].ID < lines[j].ID })
		removed := -1
	scan:
		for i, lineA := range lines {
			for j, lineB := range lines {
				if i == j {
					continue
				}
				revB := reversedIDs(lineB.StationIDs)
				if len(lineA.StationIDs) == len(lineB.StationIDs) {
					if equalIDs(lineA.StationIDs, lineB.StationIDs) || equalIDs(lineA.StationIDs, revB) {
						if lineA.ID > lineB.ID {
							removed = i
							break scan
						}
						continue
					}
				}
				if isSubroute(lineA.StationIDs, lineB.StationIDs) || isSubroute(lineA.StationIDs, revB) {
					removed = i
					break scan
				}
			}
		}
		if removed < 0 {
			return lines
		}
		lines = append(lines[:removed], lines[removed+1:]...)
	}
}
