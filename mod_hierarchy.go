package storey

import (
	"github.com/go-gl/mathgl/mgl32"
)

// TransformComponent is the world transform of an entity.
type TransformComponent struct {
	Position mgl32.Vec3
	Rotation mgl32.Quat
	Scale    mgl32.Vec3
}

// LocalTransformComponent is relative to the Parent's world transform.
type LocalTransformComponent struct {
	Position mgl32.Vec3
	Rotation mgl32.Quat
	Scale    mgl32.Vec3
}

type Parent struct {
	Entity EntityId
}

func IdentityTransform() TransformComponent {
	return TransformComponent{Rotation: mgl32.QuatIdent(), Scale: mgl32.Vec3{1, 1, 1}}
}

type HierarchyModule struct{}

func (HierarchyModule) Install(app *App, cmd *Commands) {
	app.UseSystem(
		System(TransformHierarchySystem).
			InStage(PreRender).
			RunAlways(),
	)
}

// TransformHierarchySystem derives the world transform of every child from
// its parent. Deep chains settle over repeated passes.
func TransformHierarchySystem(cmd *Commands) {
	for pass := 0; pass < 8; pass++ {
		changed := false
		MakeQuery3[LocalTransformComponent, Parent, TransformComponent](cmd).Map(func(eid EntityId, local *LocalTransformComponent, parent *Parent, world *TransformComponent) bool {
			parentWorld, ok := GetComponent[TransformComponent](cmd, parent.Entity)
			if !ok {
				return true
			}

			// WorldPos = ParentPos + ParentRot * (ParentScale * LocalPos)
			scaledLocalPos := mgl32.Vec3{
				local.Position.X() * parentWorld.Scale.X(),
				local.Position.Y() * parentWorld.Scale.Y(),
				local.Position.Z() * parentWorld.Scale.Z(),
			}
			newPos := parentWorld.Position.Add(parentWorld.Rotation.Rotate(scaledLocalPos))
			newRot := parentWorld.Rotation.Mul(local.Rotation).Normalize()
			newScale := mgl32.Vec3{
				parentWorld.Scale.X() * local.Scale.X(),
				parentWorld.Scale.Y() * local.Scale.Y(),
				parentWorld.Scale.Z() * local.Scale.Z(),
			}

			if newPos != world.Position || newRot != world.Rotation || newScale != world.Scale {
				world.Position = newPos
				world.Rotation = newRot
				world.Scale = newScale
				changed = true
			}
			return true
		})
		if !changed {
			return
		}
	}
}
