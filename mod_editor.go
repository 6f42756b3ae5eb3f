package storey

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/gekko3d/storey/internal/config"
	"github.com/gekko3d/storey/placement/engine"
	"github.com/gekko3d/storey/placement/nudge"
)

var moveActions = []struct {
	action string
	dir    nudge.Direction
}{
	{"move_x_pos", nudge.PosX},
	{"move_x_neg", nudge.NegX},
	{"move_z_pos", nudge.PosZ},
	{"move_z_neg", nudge.NegZ},
	{"move_up", nudge.PosY},
	{"move_down", nudge.NegY},
}

// Editor holds the key bindings and the pointer drag in progress.
type Editor struct {
	Bindings *Bindings
	drag     dragState
}

type dragState struct {
	unitID  string
	pending bool
	active  bool
	planeY  float32
	offset  mgl32.Vec3
}

// Dragging returns the unit being dragged by the pointer.
func (ed *Editor) Dragging() (string, bool) {
	return ed.drag.unitID, ed.drag.active
}

// EditorModule turns bound keys and pointer gestures into placement
// operations. It needs InputModule, CameraModule, PlacementModule and
// NudgeModule. Bindings default to config.DefaultBindings.
type EditorModule struct {
	Bindings map[string][]string
}

func (mod EditorModule) Install(app *App, cmd *Commands) {
	raw := mod.Bindings
	if raw == nil {
		raw = config.DefaultBindings()
	}
	bindings, err := ParseBindings(raw)
	if err != nil {
		app.Logger().Errorf("editor: %v; using default bindings", err)
		bindings, err = ParseBindings(config.DefaultBindings())
		if err != nil {
			panic(err)
		}
	}
	cmd.AddResources(&Editor{Bindings: bindings})

	system := System(editorSystem).InStage(Update)
	if app.stateful {
		system = system.InState(OnExecute(StateEditing))
	} else {
		system = system.RunAlways()
	}
	app.UseSystem(system)
}

func editorSystem(cmd *Commands, input *Input, cam *Camera, eng *engine.Engine, ed *Editor, arrows *NudgeArrows) {
	ctx := context.Background()
	log := cmd.app.Logger()
	b := ed.Bindings

	if input.CloseRequested || b.Triggered(input, "quit") {
		requestQuit(cmd)
		return
	}

	ed.pointer(ctx, input, cam, eng, arrows, log)
	ed.drop(ctx, input, cam, eng, log)

	floors := eng.Floors()
	for i := 0; i < floors.Count(); i++ {
		if b.Triggered(input, fmt.Sprintf("floor_%d", i+1)) {
			eng.SetActiveFloor(i)
		}
	}
	if b.Triggered(input, "floor_up") {
		eng.SetActiveFloor(floors.Active() + 1)
	}
	if b.Triggered(input, "floor_down") {
		eng.SetActiveFloor(floors.Active() - 1)
	}
	if b.Triggered(input, "save") {
		if err := eng.Save(ctx); err != nil {
			log.Errorf("%v", err)
		} else {
			log.Infof("layout saved")
		}
	}
	if b.Triggered(input, "undo") {
		eng.Undo(ctx)
	}

	id := eng.Selected()
	if id == "" {
		return
	}
	report := func(op string, err error) {
		if err != nil {
			log.Errorf("%s %s: %v", op, id, err)
		}
	}

	for _, m := range moveActions {
		if b.Triggered(input, m.action) {
			report("move", eng.Move(ctx, id, m.dir))
		}
	}
	if b.Triggered(input, "rotate") {
		report("rotate", eng.Rotate(ctx, id, eng.Config().YawStep))
	}
	if input.ScrollY != 0 && b.Held(input, "fine_adjust") {
		sign := 1
		if input.ScrollY < 0 {
			sign = -1
		}
		report("adjust", eng.AdjustY(ctx, id, sign))
	}
	for i := 0; i < floors.Count(); i++ {
		if b.Triggered(input, fmt.Sprintf("move_floor_%d", i+1)) {
			_, err := eng.MoveToFloor(ctx, id, i)
			report("move to floor", err)
		}
	}
	if b.Triggered(input, "material") {
		if u, ok := eng.Units().Get(id); ok {
			report("material", eng.SetMaterial(id, NextMaterial(u.Material)))
		}
	}
	if b.Triggered(input, "duplicate") {
		c, err := eng.Duplicate(ctx, id, floors.Active())
		report("duplicate", err)
		if err == nil {
			report("select", eng.Select(c.ID))
		}
	}
	if b.Triggered(input, "delete") {
		report("remove", eng.Remove(ctx, id))
	}
	if b.Triggered(input, "deselect") {
		eng.Deselect()
	}
}

// pointer selects with a click and drags the picked unit across its plane.
// A press that never moves is only a selection.
func (ed *Editor) pointer(ctx context.Context, input *Input, cam *Camera, eng *engine.Engine, arrows *NudgeArrows, log Logger) {
	origin, dir := cam.Ray(input.MouseX, input.MouseY, input.WindowWidth, input.WindowHeight)

	if input.JustPressed[MouseButtonLeft] && !arrows.Grabbed {
		id, ok := eng.Pick(origin, dir)
		if !ok {
			eng.Deselect()
			return
		}
		if err := eng.Select(id); err != nil {
			log.Errorf("select %s: %v", id, err)
			return
		}
		u, _ := eng.Units().Get(id)
		ed.drag = dragState{unitID: id, pending: true, planeY: u.Position.Y()}
		if p, ok := planeHit(origin, dir, ed.drag.planeY); ok {
			ed.drag.offset = u.Position.Sub(p)
		}
		return
	}

	if ed.drag.unitID == "" {
		return
	}
	id := ed.drag.unitID
	if !input.Pressed[MouseButtonLeft] {
		if ed.drag.active {
			if err := eng.EndDrag(ctx, id); err != nil && !errors.Is(err, engine.ErrUnknownUnit) {
				log.Errorf("end drag %s: %v", id, err)
			}
		}
		ed.drag = dragState{}
		return
	}
	if input.MouseDeltaX == 0 && input.MouseDeltaY == 0 {
		return
	}
	if ed.drag.pending {
		if err := eng.BeginDrag(id); err != nil {
			ed.drag = dragState{}
			return
		}
		ed.drag.pending, ed.drag.active = false, true
	}
	if p, ok := planeHit(origin, dir, ed.drag.planeY); ok {
		if err := eng.Drag(id, p.Add(ed.drag.offset)); err != nil {
			log.Errorf("drag %s: %v", id, err)
		}
	}
}

// drop places files dropped onto the window where the pointer meets the
// active floor.
func (ed *Editor) drop(ctx context.Context, input *Input, cam *Camera, eng *engine.Engine, log Logger) {
	if len(input.Dropped) == 0 {
		return
	}
	origin, dir := cam.Ray(input.MouseX, input.MouseY, input.WindowWidth, input.WindowHeight)
	point, ok := eng.DropPoint(origin, dir)
	if !ok {
		point = mgl32.Vec3{cam.Target.X(), eng.Floors().DropPlane(), cam.Target.Z()}
	}
	for _, path := range input.Dropped {
		u, err := eng.Drop(ctx, path, point)
		if err != nil {
			// Already reported through AssetRejected.
			continue
		}
		log.Infof("placed %s as %s", path, u.ID)
		if err := eng.Select(u.ID); err != nil {
			log.Errorf("select %s: %v", u.ID, err)
		}
	}
}

func planeHit(origin, dir mgl32.Vec3, y float32) (mgl32.Vec3, bool) {
	if dir.Y() == 0 {
		return mgl32.Vec3{}, false
	}
	t := (y - origin.Y()) / dir.Y()
	if t < 0 {
		return mgl32.Vec3{}, false
	}
	return origin.Add(dir.Mul(t)), true
}

// NextMaterial cycles the original material through every variant and back.
func NextMaterial(current string) string {
	if current == "" {
		return engine.Materials[0]
	}
	for i, m := range engine.Materials {
		if m == current && i+1 < len(engine.Materials) {
			return engine.Materials[i+1]
		}
	}
	return ""
}

// requestQuit enters StateQuit, or stops a stateless app.
func requestQuit(cmd *Commands) {
	if cmd.app.stateful {
		cmd.ChangeState(StateQuit)
		return
	}
	cmd.app.Exit()
}
