package storey

import (
	"context"
	"math"
	"slices"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/gekko3d/storey/placement/core"
	"github.com/gekko3d/storey/placement/engine"
	"github.com/gekko3d/storey/placement/nudge"
)

// NudgeArrow is one pickable arrow around the selected unit.
type NudgeArrow struct {
	Dir    nudge.Direction
	Origin mgl32.Vec3
}

// NudgeArrows tracks the arrow entities and whether the pointer holds one.
type NudgeArrows struct {
	Entities []EntityId
	// Grabbed is set while the left button, pressed on an arrow, is down.
	Grabbed bool

	shown   []nudge.Affordance
	length  float32
	hitSize float32
}

// Hit returns the arrow nearest along the ray, if any.
func (a *NudgeArrows) Hit(affordances []nudge.Affordance, origin, dir mgl32.Vec3) (nudge.Direction, bool) {
	var best nudge.Direction
	bestT := float32(math.MaxFloat32)
	found := false
	for _, aff := range affordances {
		if t, ok := a.box(aff).IntersectRay(origin, dir); ok && t < bestT {
			best, bestT, found = aff.Dir, t, true
		}
	}
	return best, found
}

// box covers the arrow shaft, padded by hitSize.
func (a *NudgeArrows) box(aff nudge.Affordance) core.AABB {
	end := aff.Origin.Add(aff.Dir.Vector().Mul(a.length))
	pad := mgl32.Vec3{a.hitSize, a.hitSize, a.hitSize}
	return core.EmptyAABB().Extend(aff.Origin).Extend(end).Extend(aff.Origin.Sub(pad)).Extend(end.Add(pad))
}

// NudgeModule shows the nudge arrows of the selected unit and turns pointer
// presses on them into held nudges. It needs InputModule, TimeModule,
// CameraModule and PlacementModule.
type NudgeModule struct {
	// Length of a drawn arrow; also the length of its pick box.
	Length  float32
	HitSize float32
}

func (mod NudgeModule) Install(app *App, cmd *Commands) {
	arrows := &NudgeArrows{length: mod.Length, hitSize: mod.HitSize}
	if arrows.length <= 0 {
		arrows.length = 0.75
	}
	if arrows.hitSize <= 0 {
		arrows.hitSize = 0.2
	}
	cmd.AddResources(arrows)

	app.UseSystem(
		System(nudgePointerSystem).
			InStage(PreUpdate).
			RunAlways(),
	).UseSystem(
		System(nudgeArrowSystem).
			InStage(PostUpdate).
			RunAlways(),
	)
}

func nudgePointerSystem(cmd *Commands, input *Input, cam *Camera, t *Time, eng *engine.Engine, arrows *NudgeArrows) {
	ctx := context.Background()
	ctrl := eng.Controller()
	log := cmd.app.Logger()

	if arrows.Grabbed && !input.Pressed[MouseButtonLeft] {
		ctrl.Release()
		arrows.Grabbed = false
		return
	}
	if arrows.Grabbed {
		if _, err := ctrl.Tick(ctx, t.Time); err != nil {
			log.Errorf("nudge: %v", err)
		}
		return
	}
	if !input.JustPressed[MouseButtonLeft] {
		return
	}

	origin, dir := cam.Ray(input.MouseX, input.MouseY, input.WindowWidth, input.WindowHeight)
	hit, ok := arrows.Hit(eng.Affordances(), origin, dir)
	if !ok {
		return
	}
	arrows.Grabbed = true
	if err := ctrl.Press(ctx, hit, t.Time); err != nil {
		log.Errorf("nudge %s: %v", hit, err)
	}
}

func nudgeArrowSystem(cmd *Commands, eng *engine.Engine, arrows *NudgeArrows) {
	current := eng.Affordances()
	held, holding := eng.Controller().Held()
	color := func(dir nudge.Direction) [4]float32 {
		if holding && dir == held {
			return ColorArrowHot
		}
		return ColorArrow
	}

	if !slices.Equal(current, arrows.shown) {
		for _, eid := range arrows.Entities {
			cmd.RemoveEntity(eid)
		}
		arrows.Entities = arrows.Entities[:0]
		for _, aff := range current {
			end := aff.Origin.Add(aff.Dir.Vector().Mul(arrows.length))
			arrows.Entities = append(arrows.Entities, cmd.AddEntity(
				NudgeArrow{Dir: aff.Dir, Origin: aff.Origin},
				NewGizmoArrow(aff.Origin, end, color(aff.Dir)),
			))
		}
		arrows.shown = current
		return
	}

	MakeQuery2[NudgeArrow, GizmoComponent](cmd).Map(func(_ EntityId, a *NudgeArrow, g *GizmoComponent) bool {
		g.Color = color(a.Dir)
		return true
	})
}
