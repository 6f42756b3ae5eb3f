// Package snap quantizes poses to the horizontal grid and vertical unit, and
// derives both sizes from the units loaded so far.
package snap

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// MinGrid is the smallest grid or vertical step configuration may produce.
const MinGrid float32 = 0.01

// QuarterTurn is the default yaw step.
const QuarterTurn float32 = math.Pi / 2

// Snap rounds x and z to multiples of g and y to multiples of v.
// Callers guarantee g > 0 and v > 0.
func Snap(p mgl32.Vec3, g, v float32) mgl32.Vec3 {
	return mgl32.Vec3{
		Value(p.X(), g),
		Value(p.Y(), v),
		Value(p.Z(), g),
	}
}

// SnapXZ snaps only the horizontal axes, keeping y.
func SnapXZ(p mgl32.Vec3, g float32) mgl32.Vec3 {
	return mgl32.Vec3{Value(p.X(), g), p.Y(), Value(p.Z(), g)}
}

func Value(x, step float32) float32 {
	return float32(math.Round(float64(x)/float64(step)) * float64(step))
}

// SnapYaw quantizes yaw to multiples of step.
func SnapYaw(yaw, step float32) float32 {
	if step <= 0 {
		return yaw
	}
	return Value(yaw, step)
}

// ClampStep keeps a configured step usable as a divisor.
func ClampStep(step float32) float32 {
	if !(step >= MinGrid) {
		return MinGrid
	}
	return step
}
