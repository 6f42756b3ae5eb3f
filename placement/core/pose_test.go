package core

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func closeEnough(a, b mgl32.Vec3) bool {
	return a.Sub(b).Len() < 1e-4
}

func TestPose_WorldBoundsIdentityYaw(t *testing.T) {
	p := Pose{Position: mgl32.Vec3{3, 0, 4}}
	local := NewAABB(mgl32.Vec3{0, 0, 0}, mgl32.Vec3{2, 1, 1})

	got := p.WorldBounds(local)
	if !closeEnough(got.Min, mgl32.Vec3{3, 0, 4}) || !closeEnough(got.Max, mgl32.Vec3{5, 1, 5}) {
		t.Errorf("unexpected bounds %v -> %v", got.Min, got.Max)
	}
}

func TestPose_WorldBoundsQuarterTurn(t *testing.T) {
	p := Pose{Position: mgl32.Vec3{5, 0, 0}, Yaw: math.Pi / 2}
	local := NewAABB(mgl32.Vec3{0, 0, 0}, mgl32.Vec3{2, 1, 1})

	got := p.WorldBounds(local)
	t.Logf("rotated bounds: %v -> %v", got.Min, got.Max)
	if !closeEnough(got.Min, mgl32.Vec3{5, 0, -2}) || !closeEnough(got.Max, mgl32.Vec3{6, 1, 0}) {
		t.Errorf("unexpected bounds %v -> %v", got.Min, got.Max)
	}
}

func TestPose_WorldToObjectInvertsObjectToWorld(t *testing.T) {
	p := Pose{Position: mgl32.Vec3{1, 2, 3}, Yaw: 0.7}
	pt := mgl32.Vec3{0.5, -1, 2}

	world := p.ObjectToWorld().Mul4x1(pt.Vec4(1)).Vec3()
	back := p.WorldToObject().Mul4x1(world.Vec4(1)).Vec3()
	assert.True(t, closeEnough(pt, back), "expected %v got %v", pt, back)
}

func TestPose_RotationMatchesYaw(t *testing.T) {
	p := Pose{Yaw: math.Pi / 2}
	got := p.Rotation().Rotate(mgl32.Vec3{1, 0, 0})
	assert.True(t, closeEnough(got, mgl32.Vec3{0, 0, -1}), "got %v", got)
}

func TestNormalizeYaw(t *testing.T) {
	assert.InDelta(t, 0, NormalizeYaw(0), 1e-6)
	assert.InDelta(t, math.Pi/2, NormalizeYaw(-3*math.Pi/2), 1e-5)
	assert.InDelta(t, math.Pi/2, NormalizeYaw(5*math.Pi/2), 1e-5)
}

func TestAABB_Basics(t *testing.T) {
	b := NewAABB(mgl32.Vec3{2, 2, 2}, mgl32.Vec3{0, 0, 0})
	assert.Equal(t, mgl32.Vec3{0, 0, 0}, b.Min)
	assert.Equal(t, mgl32.Vec3{2, 2, 2}, b.Max)
	assert.Equal(t, mgl32.Vec3{1, 1, 1}, b.Center())
	assert.Equal(t, mgl32.Vec3{2, 2, 2}, b.Size())
	assert.True(t, b.Contains(mgl32.Vec3{1, 1, 1}))
	assert.False(t, b.Contains(mgl32.Vec3{3, 1, 1}))

	assert.False(t, EmptyAABB().Valid())
	assert.Equal(t, mgl32.Vec3{}, EmptyAABB().Size())
}

func TestAABB_IntersectRay(t *testing.T) {
	b := NewAABB(mgl32.Vec3{0, 0, 10}, mgl32.Vec3{1, 1, 11})

	dist, ok := b.IntersectRay(mgl32.Vec3{0.5, 0.5, 0}, mgl32.Vec3{0, 0, 1})
	assert.True(t, ok)
	assert.InDelta(t, 10, dist, 1e-5)

	_, ok = b.IntersectRay(mgl32.Vec3{5, 5, 0}, mgl32.Vec3{0, 0, 1})
	assert.False(t, ok)

	_, ok = b.IntersectRay(mgl32.Vec3{0.5, 0.5, 20}, mgl32.Vec3{0, 0, 1})
	assert.False(t, ok, "box behind the ray origin")
}
