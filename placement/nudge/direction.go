package nudge

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/gekko3d/storey/placement/core"
)

type Direction int

const (
	PosX Direction = iota
	NegX
	PosY
	NegY
	PosZ
	NegZ
)

// All lists the six candidate directions in a stable order.
var All = [6]Direction{PosX, NegX, PosY, NegY, PosZ, NegZ}

func (d Direction) Axis() int {
	return int(d) / 2
}

func (d Direction) Sign() float32 {
	if int(d)%2 == 0 {
		return 1
	}
	return -1
}

func (d Direction) Vector() mgl32.Vec3 {
	var v mgl32.Vec3
	v[d.Axis()] = d.Sign()
	return v
}

func (d Direction) Vertical() bool {
	return d.Axis() == 1
}

func (d Direction) String() string {
	switch d {
	case PosX:
		return "+x"
	case NegX:
		return "-x"
	case PosY:
		return "+y"
	case NegY:
		return "-y"
	case PosZ:
		return "+z"
	case NegZ:
		return "-z"
	}
	return "?"
}

// ParseDirection accepts the String forms.
func ParseDirection(s string) (Direction, bool) {
	for _, d := range All {
		if d.String() == s {
			return d, true
		}
	}
	return 0, false
}

// Affordance is one interactive arrow placed outside a face of the unit.
type Affordance struct {
	Dir    Direction
	Origin mgl32.Vec3
}

// DefaultGap is the distance between a face and its arrow.
const DefaultGap float32 = 0.5

// Affordances builds the arrows around bounds. +Y is withheld on the top
// floor and -Y on the ground floor.
func Affordances(bounds core.AABB, active, floorCount int, gap float32) []Affordance {
	center := bounds.Center()
	half := bounds.Size().Mul(0.5)

	res := make([]Affordance, 0, len(All))
	for _, d := range All {
		if d == PosY && active >= floorCount-1 {
			continue
		}
		if d == NegY && active <= 0 {
			continue
		}
		offset := d.Vector().Mul(half[d.Axis()] + gap)
		res = append(res, Affordance{Dir: d, Origin: center.Add(offset)})
	}
	return res
}

// Step is the displacement of one nudge along d.
func Step(d Direction, grid, vertical float32) mgl32.Vec3 {
	if d.Vertical() {
		return d.Vector().Mul(vertical)
	}
	return d.Vector().Mul(grid)
}
