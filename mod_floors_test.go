package storey

import (
	"context"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gekko3d/storey/placement/floor"
	"github.com/gekko3d/storey/placement/layout"
)

func floorGrid(t *testing.T, h *harness, i int) (FloorGridComponent, GizmoComponent) {
	t.Helper()
	grids, _ := Resource[FloorGrids](h.app)
	cmd := h.app.Commands()
	fg, ok := GetComponent[FloorGridComponent](cmd, grids.Entities[i])
	require.True(t, ok)
	g, ok := GetComponent[GizmoComponent](cmd, grids.Entities[i])
	require.True(t, ok)
	return *fg, *g
}

func TestFloorsModule_GridsTrackActiveFloor(t *testing.T) {
	h := newHarness(t, layout.NewMemoryStore())
	grids, _ := Resource[FloorGrids](h.app)
	require.Len(t, grids.Entities, 3)

	fg, g := floorGrid(t, h, 0)
	assert.True(t, fg.Active)
	assert.Equal(t, float32(1), fg.Opacity)
	assert.False(t, g.Hidden)

	fg, g = floorGrid(t, h, 2)
	assert.Equal(t, float32(6), fg.Base)
	assert.Equal(t, mgl32.Vec3{0, 6, 0}, g.Position)
	assert.Equal(t, float32(0.5), fg.Opacity, "ghost opacity")

	h.eng.SetActiveFloor(2)
	h.step()
	fg, _ = floorGrid(t, h, 2)
	assert.True(t, fg.Active)
	fg, _ = floorGrid(t, h, 0)
	assert.False(t, fg.Active)

	label, ok := GetComponent[TextComponent](h.app.Commands(), grids.Label)
	require.True(t, ok)
	assert.Equal(t, "Floor 3/3", label.Text)
}

func TestFloorsModule_HiddenGhostsHideUnits(t *testing.T) {
	h := newHarness(t, layout.NewMemoryStore())
	hide := false
	require.NoError(t, h.eng.UpdateFloor(context.Background(), 0, floor.Patch{ShowGhost: &hide}))
	h.eng.SetActiveFloor(1)
	h.step()

	_, g := floorGrid(t, h, 0)
	assert.True(t, g.Hidden)

	unitGizmo, ok := GetComponent[GizmoComponent](h.app.Commands(), h.unitEntity("u1"))
	require.True(t, ok)
	assert.True(t, unitGizmo.Hidden, "units of a hidden floor are hidden too")
	assert.Equal(t, float32(0), unitGizmo.Color[3])
}

func TestFloorsModule_RestackMovesGridAndUnits(t *testing.T) {
	h := newHarness(t, layout.NewMemoryStore())
	ctx := context.Background()
	_, err := h.eng.MoveToFloor(ctx, "u1", 1)
	require.NoError(t, err)

	height := float32(4)
	require.NoError(t, h.eng.UpdateFloor(ctx, 1, floor.Patch{Height: &height}))
	h.step()

	fg, _ := floorGrid(t, h, 1)
	assert.Equal(t, float32(4), fg.Base)
	tr, ok := GetComponent[TransformComponent](h.app.Commands(), h.unitEntity("u1"))
	require.True(t, ok)
	assert.Equal(t, float32(4), tr.Position.Y())
}
