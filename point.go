package aarc2rc

import (
	"github.com/paulmach/orb"
)

type Direction int

const (
	DirOrthogonal Direction = iota
	DirDiagonal
)

type PointType int

const (
	TypeNode PointType = iota
	TypeStation
)

// Point is a single node of the source diagram. Only Station-typed points
// survive into the RC output; Node points exist to shape line geometry.
type Point struct {
	ID   int
	Name string
	Pos  orb.Point
	Dir  Direction
	Type PointType
	Size float64
}
