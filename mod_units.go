package storey

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/gekko3d/storey/placement/engine"
	"github.com/gekko3d/storey/placement/unit"
)

// UnitComponent ties an entity to a placed unit.
type UnitComponent struct {
	ID       string
	AssetRef string
	Floor    int
	Material string
}

// SelectionHighlight marks the outline drawn around the selected unit.
type SelectionHighlight struct {
	UnitID string
}

// UnitIndex maps unit ids to their entities.
type UnitIndex struct {
	entities map[string]EntityId
}

func (ix *UnitIndex) Entity(unitID string) (EntityId, bool) {
	eid, ok := ix.entities[unitID]
	return eid, ok
}

func (ix *UnitIndex) Len() int { return len(ix.entities) }

// Selection tracks the highlight entity of the selected unit.
type Selection struct {
	UnitID    string
	Highlight EntityId
	shown     bool
}

// UnitsModule mirrors the engine's units into entities. It needs
// PlacementModule and HierarchyModule.
type UnitsModule struct{}

func (UnitsModule) Install(app *App, cmd *Commands) {
	cmd.AddResources(&UnitIndex{entities: make(map[string]EntityId)}, &Selection{})
	app.UseSystem(
		System(unitSyncSystem).
			InStage(PostUpdate).
			RunAlways(),
	).UseSystem(
		System(selectionSystem).
			InStage(PostUpdate).
			RunAlways(),
	)
}

func unitSyncSystem(cmd *Commands, eng *engine.Engine, changes *Changes, index *UnitIndex) {
	for _, id := range changes.UnitIDs() {
		u, exists := eng.Units().Get(id)
		eid, mirrored := index.entities[id]
		switch {
		case !exists && mirrored:
			cmd.RemoveEntity(eid)
			delete(index.entities, id)
		case exists && mirrored:
			writeUnit(cmd, eng, eid, u)
		case exists:
			index.entities[id] = cmd.AddEntity(unitComponents(eng, u)...)
		}
	}

	// Ghost opacity depends on the active floor.
	if changes.Floors {
		for id, eid := range index.entities {
			if u, ok := eng.Units().Get(id); ok {
				writeUnit(cmd, eng, eid, u)
			}
		}
	}
}

func unitComponents(eng *engine.Engine, u *unit.Unit) []any {
	bounds := u.WorldBounds()
	gizmo := NewGizmoCube(u.Bounds.Center(), u.Bounds.Size(), unitColor(u.Material))
	styleUnitGizmo(&gizmo, eng, u)
	return []any{
		UnitComponent{ID: u.ID, AssetRef: u.AssetRef, Floor: u.Floor, Material: u.Material},
		unitTransform(u),
		AABBComponent{Min: bounds.Min, Max: bounds.Max},
		gizmo,
	}
}

// writeUnit updates an existing unit entity in place. Entities still
// waiting for a flush are skipped; they were built from the same unit.
func writeUnit(cmd *Commands, eng *engine.Engine, eid EntityId, u *unit.Unit) {
	uc, ok := GetComponent[UnitComponent](cmd, eid)
	if !ok {
		return
	}
	*uc = UnitComponent{ID: u.ID, AssetRef: u.AssetRef, Floor: u.Floor, Material: u.Material}

	if tr, ok := GetComponent[TransformComponent](cmd, eid); ok {
		*tr = unitTransform(u)
	}
	if aabb, ok := GetComponent[AABBComponent](cmd, eid); ok {
		bounds := u.WorldBounds()
		aabb.Min, aabb.Max = bounds.Min, bounds.Max
	}
	if g, ok := GetComponent[GizmoComponent](cmd, eid); ok {
		g.Position = u.Bounds.Center()
		g.Scale = u.Bounds.Size()
		g.Color = unitColor(u.Material)
		styleUnitGizmo(g, eng, u)
	}
}

func unitTransform(u *unit.Unit) TransformComponent {
	return TransformComponent{
		Position: u.Position,
		Rotation: u.Pose().Rotation(),
		Scale:    mgl32.Vec3{1, 1, 1},
	}
}

func unitColor(material string) [4]float32 {
	if c, ok := MaterialColors[material]; ok {
		return c
	}
	return ColorUnit
}

func styleUnitGizmo(g *GizmoComponent, eng *engine.Engine, u *unit.Unit) {
	opacity := eng.Floors().Opacity(u.Floor)
	g.Color = WithAlpha(g.Color, opacity)
	g.Hidden = opacity == 0
}

func selectionSystem(cmd *Commands, eng *engine.Engine, index *UnitIndex, sel *Selection) {
	selected := eng.Selected()
	if selected == sel.UnitID && (sel.shown || selected == "") {
		return
	}
	if sel.shown {
		cmd.RemoveEntity(sel.Highlight)
		sel.shown = false
	}
	sel.UnitID = selected
	if selected == "" {
		return
	}

	u, ok := eng.Units().Get(selected)
	parent, mirrored := index.Entity(selected)
	if !ok || !mirrored {
		return
	}
	sel.Highlight = cmd.AddEntity(
		SelectionHighlight{UnitID: selected},
		Parent{Entity: parent},
		LocalTransformComponent{Rotation: mgl32.QuatIdent(), Scale: mgl32.Vec3{1, 1, 1}},
		TransformComponent{},
		NewGizmoCube(u.Bounds.Center(), u.Bounds.Size().Mul(1.05), ColorSelection),
	)
	sel.shown = true
}
