package aarc2rc

import (
	"github.com/paulmach/orb"
)

// formalSegment is one line segment with the auxiliary corner points that
// make it drawable with 45-degree and orthogonal legs only. The ill level is
// 0 when no intermediates are needed, 1 when a pair with the same direction
// needed intermediates and 2 when no admissible fill exists for the endpoint
// directions. A mixed-direction pair gets its single corner at level 0.
type formalSegment struct {
	a   orb.Point
	itp []orb.Point
	b   orb.Point
	ill int
}

func formalizeSegment(pointA, pointB *Point) formalSegment {
	xDiff := pointA.Pos[0] - pointB.Pos[0]
	yDiff := pointA.Pos[1] - pointB.Pos[1]

	pr, rv := coordRelDiff(xDiff, yDiff)
	if pr == posRelSame {
		return formalSegment{a: pointA.Pos, b: pointB.Pos}
	}

	pa, pb := pointA, pointB
	if rv {
		pa, pb = pb, pa
		xDiff = -xDiff
		yDiff = -yDiff
	}

	var itp []orb.Point
	ill := 0

	switch {
	case pa.Dir == pb.Dir:
		if pa.Dir == DirDiagonal {
			itp = coordFill(pa.Pos, pb.Pos, xDiff, yDiff, pr, rv, fillMidVert)
		} else {
			itp = coordFill(pa.Pos, pb.Pos, xDiff, yDiff, pr, rv, fillMidInc)
		}
		if len(itp) == 0 {
			if (pa.Dir == DirOrthogonal && (pr == posRelLeftUp || pr == posRelUpRight)) ||
				(pa.Dir == DirDiagonal && (pr == posRelLeft || pr == posRelUp)) {
				ill = 2
			}
		} else {
			ill = 1
		}
	case pa.Dir == DirDiagonal:
		if pr == posRelLeftUpUp || pr == posRelUpUpRight {
			itp = coordFill(pa.Pos, pb.Pos, xDiff, yDiff, pr, rv, fillTop)
		} else {
			itp = coordFill(pa.Pos, pb.Pos, xDiff, yDiff, pr, rv, fillBottom)
		}
	default:
		if pr == posRelLeftUpUp || pr == posRelUpUpRight {
			itp = coordFill(pa.Pos, pb.Pos, xDiff, yDiff, pr, rv, fillBottom)
		} else {
			itp = coordFill(pa.Pos, pb.Pos, xDiff, yDiff, pr, rv, fillTop)
		}
	}

	return formalSegment{a: pointA.Pos, itp: itp, b: pointB.Pos, ill: ill}
}

// correctSegmentEnd rewrites a first or last ill-posed segment by dropping a
// perpendicular from its tip onto the neighbor's ray.
func correctSegmentEnd(neibRef, share orb.Point, thisRef *orb.Point, thisTip orb.Point) orb.Point {
	neibRay := newRay(neibRef, share)
	if thisRef == nil {
		if rayPointDistance(neibRay, thisTip) < epsilon {
			// tip already lies on the neighbor ray extension
			return invalidPoint()
		}
		thisRay := rotateRay90(neibRay)
		thisRay.source = thisTip
		return rayIntersect(neibRay, thisRay, true)
	}
	thisRay := newRay(*thisRef, share)
	thisRay.source = thisTip
	if raysPerpendicular(neibRay, thisRay) {
		return rayIntersect(neibRay, thisRay, true)
	}
	return invalidPoint()
}

// illPosedSegmentJustify corrects segments of level 1 or 2 using rays built
// from their neighbors: a middle segment when both neighbors have a lower
// level, a first or last segment when its one neighbor is below level 2 and
// not above its own level.
func illPosedSegmentJustify(segs []formalSegment) {
	if len(segs) <= 1 {
		return
	}

	var illIdxs []int
	for i := range segs {
		if segs[i].ill > 0 {
			illIdxs = append(illIdxs, i)
		}
	}

	for _, i := range illIdxs {
		thisSeg := &segs[i]

		if i > 0 && i < len(segs)-1 {
			prevSeg := &segs[i-1]
			nextSeg := &segs[i+1]

			prevHelps := prevSeg.ill < thisSeg.ill
			nextHelps := nextSeg.ill < thisSeg.ill
			if prevHelps && nextHelps {
				prevRef := prevSeg.a
				if len(prevSeg.itp) > 0 {
					prevRef = prevSeg.itp[len(prevSeg.itp)-1]
				}
				nextRef := nextSeg.b
				if len(nextSeg.itp) > 0 {
					nextRef = nextSeg.itp[0]
				}
				itsc := rayIntersect(newRay(prevRef, prevSeg.b), newRay(nextRef, nextSeg.a), true)
				if pointValid(itsc) {
					thisSeg.itp = []orb.Point{itsc}
				}
			}
			continue
		}

		itsc := invalidPoint()
		if i == len(segs)-1 {
			prevSeg := &segs[i-1]
			canHelp := prevSeg.ill <= thisSeg.ill && prevSeg.ill < 2
			needHelp := thisSeg.ill > 0
			if needHelp && canHelp {
				neibRef := prevSeg.a
				if len(prevSeg.itp) > 0 {
					neibRef = prevSeg.itp[len(prevSeg.itp)-1]
				}
				var thisRef *orb.Point
				if len(thisSeg.itp) > 1 {
					thisRef = &thisSeg.itp[0]
				}
				itsc = correctSegmentEnd(neibRef, thisSeg.a, thisRef, thisSeg.b)
			}
		} else if i == 0 {
			nextSeg := &segs[i+1]
			canHelp := nextSeg.ill <= thisSeg.ill && nextSeg.ill < 2
			needHelp := thisSeg.ill > 0
			if canHelp && needHelp {
				neibRef := nextSeg.b
				if len(nextSeg.itp) > 0 {
					neibRef = nextSeg.itp[0]
				}
				var thisRef *orb.Point
				if len(thisSeg.itp) > 1 {
					thisRef = &thisSeg.itp[1]
				}
				itsc = correctSegmentEnd(neibRef, thisSeg.b, thisRef, thisSeg.a)
			}
		}
		if pointValid(itsc) {
			thisSeg.itp = []orb.Point{itsc}
		}
	}
}

// addAuxiliaryPoints rewrites every line's point list, inserting fresh Node
// points wherever a segment cannot be drawn directly. Looped lines receive
// two margin segments so the wrap-around join gets neighbor context; those
// margins are discarded after correction.
func addAuxiliaryPoints(m *Map) {
	nextID := m.maxPointID() + 1

	for _, lineID := range m.sortedLineIDs() {
		line := m.Lines[lineID]
		if len(line.PointIDs) < 2 {
			continue
		}

		isRing := line.IsLoop
		var formalSegs []formalSegment

		segAt := func(aID, bID int) (formalSegment, bool) {
			pa, okA := m.Points[aID]
			pb, okB := m.Points[bID]
			if !okA || !okB {
				return formalSegment{}, false
			}
			return formalizeSegment(pa, pb), true
		}

		if !isRing {
			for i := 0; i+1 < len(line.PointIDs); i++ {
				if seg, ok := segAt(line.PointIDs[i], line.PointIDs[i+1]); ok {
					formalSegs = append(formalSegs, seg)
				}
			}
		} else {
			if len(line.PointIDs) >= 3 {
				if seg, ok := segAt(line.PointIDs[len(line.PointIDs)-2], line.PointIDs[0]); ok {
					formalSegs = append(formalSegs, seg)
				}
			}
			for i := 0; i+1 < len(line.PointIDs); i++ {
				if seg, ok := segAt(line.PointIDs[i], line.PointIDs[i+1]); ok {
					formalSegs = append(formalSegs, seg)
				}
			}
			if len(line.PointIDs) >= 3 {
				if seg, ok := segAt(line.PointIDs[len(line.PointIDs)-1], line.PointIDs[1]); ok {
					formalSegs = append(formalSegs, seg)
				}
			}
		}

		illPosedSegmentJustify(formalSegs)

		if len(formalSegs) == 0 {
			continue
		}
		if isRing && len(formalSegs) > 2 {
			formalSegs = formalSegs[1 : len(formalSegs)-1]
		}

		newPointIDs := []int{line.PointIDs[0]}
		for i := range formalSegs {
			for _, auxPos := range formalSegs[i].itp {
				aux := &Point{
					ID:   nextID,
					Pos:  auxPos,
					Dir:  DirOrthogonal,
					Type: TypeNode,
					Size: 1.0,
				}
				nextID++
				m.Points[aux.ID] = aux
				newPointIDs = append(newPointIDs, aux.ID)
			}
			if i < len(line.PointIDs)-1 {
				newPointIDs = append(newPointIDs, line.PointIDs[i+1])
			}
		}
		if !isRing && len(line.PointIDs) > 0 {
			if last := line.PointIDs[len(line.PointIDs)-1]; newPointIDs[len(newPointIDs)-1] != last {
				newPointIDs = append(newPointIDs, last)
			}
		}

		line.PointIDs = newPointIDs
	}
}
