package storey

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/gekko3d/storey/placement/engine"
)

// FloorGridComponent is the grid plane drawn for one floor.
type FloorGridComponent struct {
	Index   int
	Base    float32
	Opacity float32
	Active  bool
}

// FloorGrids holds the grid entity of every floor, by index.
type FloorGrids struct {
	Entities []EntityId
	Label    EntityId
	synced   bool
}

// FloorsModule draws a grid plane per floor and labels the active one. It
// needs PlacementModule.
type FloorsModule struct {
	// Extent is the side length of the grid planes.
	Extent float32
}

func (mod FloorsModule) Install(app *App, cmd *Commands) {
	eng, ok := Resource[engine.Engine](app)
	if !ok {
		panic("FloorsModule needs PlacementModule installed first")
	}
	extent := mod.Extent
	if extent <= 0 {
		extent = 40
	}

	grids := &FloorGrids{}
	for i := 0; i < eng.Floors().Count(); i++ {
		grids.Entities = append(grids.Entities, cmd.AddEntity(
			FloorGridComponent{Index: i},
			NewGizmoRect(mgl32.Vec3{}, extent, extent, ColorFloor),
		))
	}
	grids.Label = cmd.AddEntity(TextComponent{
		Position: [2]float32{16, 16},
		Scale:    1,
		Color:    [4]float32{1, 1, 1, 1},
	})
	cmd.AddResources(grids)

	app.UseSystem(
		System(floorSyncSystem).
			InStage(PostUpdate).
			RunAlways(),
	)
}

func floorSyncSystem(cmd *Commands, eng *engine.Engine, changes *Changes, grids *FloorGrids) {
	if grids.synced && !changes.Floors {
		return
	}
	floors := eng.Floors()
	active := floors.Active()

	for i, eid := range grids.Entities {
		fg, ok := GetComponent[FloorGridComponent](cmd, eid)
		if !ok {
			return
		}
		fg.Base = floors.Base(i)
		fg.Opacity = floors.Opacity(i)
		fg.Active = i == active

		if g, ok := GetComponent[GizmoComponent](cmd, eid); ok {
			g.Position = mgl32.Vec3{0, fg.Base, 0}
			g.Color = WithAlpha(ColorFloor, fg.Opacity)
			g.Hidden = fg.Opacity == 0
		}
	}
	if label, ok := GetComponent[TextComponent](cmd, grids.Label); ok {
		label.Text = fmt.Sprintf("Floor %d/%d", active+1, floors.Count())
	}
	grids.synced = true
}
