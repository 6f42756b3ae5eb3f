package unit

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/gekko3d/storey/placement/core"
)

// Unit is one placed asset instance.
type Unit struct {
	ID       string
	AssetRef string
	Position mgl32.Vec3
	Yaw      float32
	Floor    int

	// Bounds are the asset's local bounds as reported by the loader.
	Bounds   core.AABB
	Material string
}

func (u *Unit) Pose() core.Pose {
	return core.Pose{Position: u.Position, Yaw: u.Yaw}
}

func (u *Unit) SetPose(p core.Pose) {
	u.Position = p.Position
	u.Yaw = p.Yaw
}

func (u *Unit) WorldBounds() core.AABB {
	return u.Pose().WorldBounds(u.Bounds)
}

// Clone copies u under a new id.
func (u *Unit) Clone(id string) *Unit {
	c := *u
	c.ID = id
	return &c
}
