package core

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Up is the world vertical axis. Floors stack along it.
var Up = mgl32.Vec3{0, 1, 0}

// Pose is the spatial state of a placed unit. Rotation is a yaw about Up.
type Pose struct {
	Position mgl32.Vec3
	Yaw      float32
}

func (p Pose) Rotation() mgl32.Quat {
	return mgl32.QuatRotate(p.Yaw, Up)
}

func (p Pose) ObjectToWorld() mgl32.Mat4 {
	// M = T * R
	translate := mgl32.Translate3D(p.Position.X(), p.Position.Y(), p.Position.Z())
	return translate.Mul4(mgl32.HomogRotate3DY(p.Yaw))
}

func (p Pose) WorldToObject() mgl32.Mat4 {
	invRotate := mgl32.HomogRotate3DY(-p.Yaw)
	invTranslate := mgl32.Translate3D(-p.Position.X(), -p.Position.Y(), -p.Position.Z())
	return invRotate.Mul4(invTranslate)
}

// WorldBounds returns the conservative world AABB of local bounds under p.
func (p Pose) WorldBounds(local AABB) AABB {
	if !local.Valid() {
		return local
	}
	o2w := p.ObjectToWorld()

	res := EmptyAABB()
	for _, c := range local.Corners() {
		res = res.Extend(o2w.Mul4x1(c.Vec4(1.0)).Vec3())
	}
	return res
}

// NormalizeYaw wraps yaw into [0, 2pi).
func NormalizeYaw(yaw float32) float32 {
	const twoPi = 2 * math.Pi
	y := math.Mod(float64(yaw), twoPi)
	if y < 0 {
		y += twoPi
	}
	return float32(y)
}
