package storey

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gekko3d/storey/placement/layout"
	"github.com/gekko3d/storey/placement/nudge"
)

func TestNudgeArrows_FollowSelection(t *testing.T) {
	h := newHarness(t, layout.NewMemoryStore())
	cmd := h.app.Commands()
	assert.Equal(t, 0, MakeQuery1[NudgeArrow](cmd).Count())

	require.NoError(t, h.eng.Select("u1"))
	h.step()

	var dirs []nudge.Direction
	MakeQuery1[NudgeArrow](cmd).Map(func(_ EntityId, a *NudgeArrow) bool {
		dirs = append(dirs, a.Dir)
		return true
	})
	assert.ElementsMatch(t, []nudge.Direction{nudge.PosX, nudge.NegX, nudge.PosY, nudge.PosZ, nudge.NegZ}, dirs,
		"no -Y arrow on the ground floor")

	h.eng.Deselect()
	h.step()
	assert.Equal(t, 0, MakeQuery1[NudgeArrow](cmd).Count())
}

func TestNudgeArrows_HoldRepeatsEveryInterval(t *testing.T) {
	store := layout.NewMemoryStore()
	h := newHarness(t, store)
	require.NoError(t, h.eng.Select("u1"))
	h.step()

	// The +X arrow starts half a unit past the right face: (2.5, 1.5, 1).
	arrows, _ := Resource[NudgeArrows](h.app)
	h.step(h.aim(mgl32.Vec3{2.8, 1.5, 1}), press(MouseButtonLeft))
	require.True(t, arrows.Grabbed)
	assert.Equal(t, "u1", h.eng.Selected(), "a press on an arrow does not pick")
	assert.Equal(t, float32(1), h.unit("u1").Position.X(), "the first step fires on press")

	held, holding := h.eng.Controller().Held()
	assert.True(t, holding)
	assert.Equal(t, nudge.PosX, held)

	h.steps(12) // 192ms
	assert.Equal(t, float32(1), h.unit("u1").Position.X())
	h.step() // 208ms
	assert.Equal(t, float32(2), h.unit("u1").Position.X())

	h.step(release(MouseButtonLeft))
	assert.False(t, arrows.Grabbed)
	assert.Equal(t, nudge.ArrowsVisible, h.eng.Controller().State())

	h.steps(20)
	assert.Equal(t, float32(2), h.unit("u1").Position.X(), "no repeats after release")
	assert.Equal(t, 2, h.eng.History().Len())
}

func TestNudgeArrows_HeldArrowIsHighlighted(t *testing.T) {
	h := newHarness(t, layout.NewMemoryStore())
	require.NoError(t, h.eng.Select("u1"))
	h.step()
	h.step(h.aim(mgl32.Vec3{2.8, 1.5, 1}), press(MouseButtonLeft))

	hot := 0
	MakeQuery2[NudgeArrow, GizmoComponent](h.app.Commands()).Map(func(_ EntityId, a *NudgeArrow, g *GizmoComponent) bool {
		if g.Color == ColorArrowHot {
			hot++
			assert.Equal(t, nudge.PosX, a.Dir)
		}
		return true
	})
	assert.Equal(t, 1, hot)
}

func TestNudgeArrows_Hit(t *testing.T) {
	arrows := &NudgeArrows{length: 1, hitSize: 0.1}
	affs := []nudge.Affordance{
		{Dir: nudge.PosX, Origin: mgl32.Vec3{3, 0, 0}},
		{Dir: nudge.NegX, Origin: mgl32.Vec3{-3, 0, 0}},
	}

	dir, ok := arrows.Hit(affs, mgl32.Vec3{10, 0, 0}, mgl32.Vec3{-1, 0, 0})
	require.True(t, ok)
	assert.Equal(t, nudge.PosX, dir, "the nearer arrow wins")

	_, ok = arrows.Hit(affs, mgl32.Vec3{0, 5, 0}, mgl32.Vec3{1, 0, 0})
	assert.False(t, ok)
}
