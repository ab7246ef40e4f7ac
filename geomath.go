package aarc2rc

import (
	"math"

	"github.com/paulmach/orb"
)

const epsilon = 1e-9

func isZero(v float64) bool {
	return math.Abs(v) < epsilon
}

func vecAdd(a, b orb.Point) orb.Point {
	return orb.Point{a[0] + b[0], a[1] + b[1]}
}

func vecSub(a, b orb.Point) orb.Point {
	return orb.Point{a[0] - b[0], a[1] - b[1]}
}

func vecScale(a orb.Point, s float64) orb.Point {
	return orb.Point{a[0] * s, a[1] * s}
}

func vecDot(a, b orb.Point) float64 {
	return a[0]*b[0] + a[1]*b[1]
}

func vecCross(a, b orb.Point) float64 {
	return a[0]*b[1] - a[1]*b[0]
}

func vecLength(a orb.Point) float64 {
	return math.Sqrt(a[0]*a[0] + a[1]*a[1])
}

// vecPerpendicular returns the input rotated by 90 degrees counter-clockwise
func vecPerpendicular(a orb.Point) orb.Point {
	return orb.Point{-a[1], a[0]}
}

func invalidPoint() orb.Point {
	return orb.Point{math.NaN(), math.NaN()}
}

func pointValid(p orb.Point) bool {
	return !math.IsNaN(p[0]) && !math.IsNaN(p[1])
}

// posRel classifies the offset between two points into one of nine
// half-plane relationships. Mirrored cases are folded into a 'reversed'
// flag by coordRelDiff.
type posRel int

const (
	posRelSame posRel = iota
	posRelLeft
	posRelLeftLeftUp
	posRelLeftUp
	posRelLeftUpUp
	posRelUp
	posRelUpUpRight
	posRelUpRight
	posRelUpRightRight
)

// coordRelDiff returns the position relationship for the offset (xDiff, yDiff)
// and whether the canonical case is the mirror of the actual one.
func coordRelDiff(xDiff, yDiff float64) (posRel, bool) {
	if isZero(xDiff) {
		if isZero(yDiff) {
			return posRelSame, false
		}
		return posRelUp, yDiff > 0
	}
	if isZero(yDiff) {
		return posRelLeft, xDiff > 0
	}
	if isZero(xDiff - yDiff) {
		return posRelLeftUp, xDiff > 0
	}
	if isZero(xDiff + yDiff) {
		return posRelUpRight, yDiff > 0
	}
	if (yDiff > 0 && xDiff > yDiff) || (yDiff < 0 && xDiff < yDiff) {
		return posRelLeftLeftUp, yDiff > 0
	}
	if (xDiff > 0 && yDiff > xDiff) || (xDiff < 0 && yDiff < xDiff) {
		return posRelLeftUpUp, xDiff > 0
	}
	if (yDiff > 0 && -xDiff < yDiff) || (yDiff < 0 && xDiff < -yDiff) {
		return posRelUpUpRight, yDiff > 0
	}
	return posRelUpRightRight, xDiff < 0
}

// fillType selects where intermediate corner points are placed on a
// shallow or steep segment.
type fillType int

const (
	fillTop fillType = iota
	fillBottom
	fillMidVert
	fillMidInc
)

func coordFillUnordered(a, b orb.Point, xDiff, yDiff float64, pr posRel, ft fillType) []orb.Point {
	switch pr {
	case posRelLeft, posRelUp, posRelLeftUp, posRelUpRight:
		return nil
	case posRelLeftLeftUp:
		bias := -xDiff + yDiff
		switch ft {
		case fillTop:
			return []orb.Point{{a[0] + bias, a[1]}}
		case fillBottom:
			return []orb.Point{{b[0] - bias, b[1]}}
		case fillMidInc:
			bias /= 2.0
			return []orb.Point{{a[0] + bias, a[1]}, {b[0] - bias, b[1]}}
		default: // fillMidVert
			bias = -yDiff / 2.0
			return []orb.Point{{a[0] + bias, a[1] + bias}, {b[0] - bias, b[1] - bias}}
		}
	case posRelLeftUpUp:
		bias := xDiff - yDiff
		switch ft {
		case fillTop:
			return []orb.Point{{b[0], b[1] - bias}}
		case fillBottom:
			return []orb.Point{{a[0], a[1] + bias}}
		case fillMidInc:
			bias /= 2.0
			return []orb.Point{{a[0], a[1] + bias}, {b[0], b[1] - bias}}
		default: // fillMidVert
			bias = -xDiff / 2.0
			return []orb.Point{{a[0] + bias, a[1] + bias}, {b[0] - bias, b[1] - bias}}
		}
	case posRelUpUpRight:
		bias := -xDiff - yDiff
		switch ft {
		case fillTop:
			return []orb.Point{{b[0], b[1] - bias}}
		case fillBottom:
			return []orb.Point{{a[0], a[1] + bias}}
		case fillMidInc:
			bias /= 2.0
			return []orb.Point{{a[0], a[1] + bias}, {b[0], b[1] - bias}}
		default: // fillMidVert
			bias = -xDiff / 2.0
			return []orb.Point{{a[0] + bias, a[1] - bias}, {b[0] - bias, b[1] + bias}}
		}
	case posRelUpRightRight:
		bias := xDiff + yDiff
		switch ft {
		case fillTop:
			return []orb.Point{{a[0] - bias, a[1]}}
		case fillBottom:
			return []orb.Point{{b[0] + bias, b[1]}}
		case fillMidInc:
			bias /= 2.0
			return []orb.Point{{a[0] - bias, a[1]}, {b[0] + bias, b[1]}}
		default: // fillMidVert
			bias = yDiff / 2.0
			return []orb.Point{{a[0] + bias, a[1] - bias}, {b[0] - bias, b[1] + bias}}
		}
	}
	return nil
}

func coordFill(a, b orb.Point, xDiff, yDiff float64, pr posRel, reversed bool, ft fillType) []orb.Point {
	result := coordFillUnordered(a, b, xDiff, yDiff, pr, ft)
	if reversed {
		for i, j := 0, len(result)-1; i < j; i, j = i+1, j-1 {
			result[i], result[j] = result[j], result[i]
		}
	}
	return result
}

// ray is a half-line used by the ill-posed segment correction pass.
type ray struct {
	source orb.Point
	dir    orb.Point // normalized
}

func newRay(from, to orb.Point) ray {
	d := vecSub(to, from)
	l := vecLength(d)
	if l < epsilon {
		return ray{source: from, dir: orb.Point{0, 0}}
	}
	return ray{source: from, dir: vecScale(d, 1.0/l)}
}

func raysPerpendicular(a, b ray) bool {
	return math.Abs(vecDot(a.dir, b.dir)) < epsilon
}

func raysParallel(a, b ray) bool {
	return math.Abs(vecCross(a.dir, b.dir)) < epsilon
}

func rayPointDistance(r ray, p orb.Point) float64 {
	return math.Abs(vecCross(r.dir, vecSub(p, r.source)))
}

// rayIntersect solves a.source + t*a.dir = b.source + s*b.dir. With perpOnly
// set, only right-angle intersections are accepted.
func rayIntersect(a, b ray, perpOnly bool) orb.Point {
	if raysParallel(a, b) {
		return invalidPoint()
	}
	if perpOnly && !raysPerpendicular(a, b) {
		return invalidPoint()
	}
	diff := vecSub(b.source, a.source)
	cr := vecCross(a.dir, b.dir)
	if math.Abs(cr) < epsilon {
		return invalidPoint()
	}
	t := vecCross(diff, b.dir) / cr
	return vecAdd(a.source, vecScale(a.dir, t))
}

func rotateRay90(r ray) ray {
	return ray{source: r.source, dir: vecPerpendicular(r.dir)}
}
