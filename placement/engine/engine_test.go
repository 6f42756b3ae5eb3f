package engine

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gekko3d/storey/placement/core"
	"github.com/gekko3d/storey/placement/events"
	"github.com/gekko3d/storey/placement/floor"
	"github.com/gekko3d/storey/placement/layout"
	"github.com/gekko3d/storey/placement/nudge"
	"github.com/gekko3d/storey/placement/unit"
)

var catalog = map[string]core.AABB{
	"unit1.glb":  core.NewAABB(mgl32.Vec3{0, 0, 0}, mgl32.Vec3{2, 3, 2}),
	"unit2.glb":  core.NewAABB(mgl32.Vec3{-1, 0, -1}, mgl32.Vec3{1, 3, 1}),
	"unit3.glb":  core.NewAABB(mgl32.Vec3{0, 0, 0}, mgl32.Vec3{4, 3, 2}),
	"unit4.glb":  core.NewAABB(mgl32.Vec3{0, 0, 0}, mgl32.Vec3{2, 3, 2}),
	"tower.gltf": core.NewAABB(mgl32.Vec3{0, 0, 0}, mgl32.Vec3{2, 5, 2}),
}

var errMissing = errors.New("no such asset")

func testLoader() Loader {
	return LoaderFunc(func(ctx context.Context, ref string) (Asset, error) {
		b, ok := catalog[ref]
		if !ok {
			return Asset{}, errMissing
		}
		return Asset{Bounds: b}, nil
	})
}

func seqIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("u%d", n)
	}
}

func fixedGrid() Config {
	cfg := DefaultConfig()
	cfg.Adaptive = false
	cfg.Grid = 1
	cfg.Vertical = 3
	return cfg
}

func newEngine(t *testing.T, cfg Config, store layout.Store) *Engine {
	t.Helper()
	opts := []Option{WithLoader(testLoader()), WithIDs(seqIDs())}
	if store != nil {
		opts = append(opts, WithStore(store))
	}
	e := New(cfg, opts...)
	e.LoadLayout(context.Background())
	return e
}

func mustUnit(t *testing.T, e *Engine, id string) *unit.Unit {
	t.Helper()
	u, ok := e.Units().Get(id)
	require.True(t, ok, "unit %s missing", id)
	return u
}

func at(ms int) time.Time {
	return time.Unix(0, 0).Add(time.Duration(ms) * time.Millisecond)
}

func TestLoadLayout_DefaultsWhenNothingSaved(t *testing.T) {
	e := newEngine(t, DefaultConfig(), layout.NewMemoryStore())

	require.Equal(t, 4, e.Units().Len())
	want := map[string]mgl32.Vec3{
		"u1": {0, 0, 0},
		"u2": {3, 0, 1},
		"u3": {4, 0, 0},
		"u4": {8, 0, 0},
	}
	for id, pos := range want {
		u := mustUnit(t, e, id)
		assert.Equal(t, pos, u.Position, "unit %s", id)
		assert.Equal(t, 0, u.Floor)
	}
	assert.Equal(t, float32(2.5), e.Grid(), "average width")
	assert.Equal(t, float32(3), e.Vertical(), "average height")
	assert.Equal(t, 0, e.Saves(), "defaults are not written back")
}

func TestLoadLayout_CorruptDocumentFallsBack(t *testing.T) {
	store := layout.NewMemoryStore()
	require.NoError(t, store.Put(context.Background(), layout.LayoutKey, []byte(`[{"id":"x","bogus":1}]`)))

	e := newEngine(t, DefaultConfig(), store)
	assert.Equal(t, 4, e.Units().Len())
	_, ok := e.Units().Get("x")
	assert.False(t, ok)
}

func TestLoadLayout_SavedLayoutReplacesDefaults(t *testing.T) {
	ctx := context.Background()
	store := layout.NewMemoryStore()
	require.NoError(t, layout.NewPersister(store).Save(ctx, nil))

	e := newEngine(t, DefaultConfig(), store)
	assert.Equal(t, 0, e.Units().Len(), "an empty saved layout still wins")
}

func TestLoadLayout_SkipsUnloadableRecords(t *testing.T) {
	ctx := context.Background()
	store := layout.NewMemoryStore()
	require.NoError(t, layout.NewPersister(store).Save(ctx, []layout.Record{
		{ID: "a", AssetRef: "unit1.glb", Position: [3]float32{0, 0, 0}},
		{ID: "b", AssetRef: "missing.glb", Position: [3]float32{2, 0, 0}},
		{ID: "c", AssetRef: "notes.txt", Position: [3]float32{4, 0, 0}},
	}))

	e := newEngine(t, DefaultConfig(), store)
	assert.Equal(t, 1, e.Units().Len())
}

func TestPersistence_RoundTrip(t *testing.T) {
	ctx := context.Background()
	store := layout.NewMemoryStore()
	a := newEngine(t, fixedGrid(), store)

	_, err := a.Nudge(ctx, "u1", nudge.PosZ)
	require.NoError(t, err)
	require.NoError(t, a.AdjustY(ctx, "u2", 1))
	require.NoError(t, a.Rotate(ctx, "u3", math.Pi/2))
	_, err = a.MoveToFloor(ctx, "u4", 2)
	require.NoError(t, err)
	dup, err := a.Duplicate(ctx, "u1", 1)
	require.NoError(t, err)

	b := newEngine(t, fixedGrid(), store)
	require.Equal(t, 5, b.Units().Len())

	byID := func(x, y layout.Record) bool { return x.ID < y.ID }
	if diff := cmp.Diff(a.Records(), b.Records(), cmpopts.SortSlices(byID)); diff != "" {
		t.Errorf("restored layout mismatch (-saved +restored):\n%s", diff)
	}
	assert.Equal(t, []string{dup.ID}, b.Units().MembersOf(1))
}

func TestNudge_OneIncrementThenResnap(t *testing.T) {
	ctx := context.Background()
	e := newEngine(t, fixedGrid(), nil)

	u := mustUnit(t, e, "u1")
	u.Position = mgl32.Vec3{0.3, 0, 0.3}

	arrows, err := e.Nudge(ctx, "u1", nudge.PosX)
	require.NoError(t, err)
	assert.Equal(t, mgl32.Vec3{1, 0, 0}, u.Position)
	assert.NotEmpty(t, arrows)
	assert.Equal(t, 1, e.History().Len())
}

func TestNudge_VerticalCrossesFloor(t *testing.T) {
	ctx := context.Background()
	e := newEngine(t, fixedGrid(), nil)

	_, err := e.Nudge(ctx, "u1", nudge.PosY)
	require.NoError(t, err)

	u := mustUnit(t, e, "u1")
	assert.Equal(t, float32(3), u.Position.Y())
	assert.Equal(t, 1, u.Floor)
	assert.Contains(t, e.Units().MembersOf(1), "u1")
	assert.NotContains(t, e.Units().MembersOf(0), "u1")
}

func TestNudge_RefusesBelowGroundFloor(t *testing.T) {
	ctx := context.Background()
	bus := events.NewBus()
	var saves int
	events.Subscribe(bus, func(events.LayoutSaved) { saves++ })

	e := New(fixedGrid(), WithLoader(testLoader()), WithIDs(seqIDs()), WithBus(bus), WithStore(layout.NewMemoryStore()))
	e.LoadLayout(ctx)
	saves = 0
	e.SetActiveFloor(0)

	arrows, err := e.Nudge(ctx, "u1", nudge.NegY)
	require.NoError(t, err)
	assert.NotEmpty(t, arrows)

	u := mustUnit(t, e, "u1")
	assert.Equal(t, mgl32.Vec3{0, 0, 0}, u.Position)
	assert.Equal(t, 0, u.Floor)
	assert.Equal(t, 0, e.History().Len(), "a refused nudge records nothing")
	assert.Equal(t, 0, saves)
}

func TestNudge_RefusesAboveTopFloor(t *testing.T) {
	ctx := context.Background()
	e := newEngine(t, fixedGrid(), nil)
	_, err := e.MoveToFloor(ctx, "u1", 2)
	require.NoError(t, err)
	e.SetActiveFloor(2)

	for i := 0; i < 4; i++ {
		_, err := e.Nudge(ctx, "u1", nudge.PosY)
		require.NoError(t, err)
	}
	u := mustUnit(t, e, "u1")
	assert.Equal(t, float32(6), u.Position.Y())
	assert.Equal(t, 2, u.Floor)
	assert.Equal(t, 0, e.History().Len())

	_, err = e.Nudge(ctx, "u1", nudge.NegY)
	require.NoError(t, err)
	assert.Equal(t, float32(3), u.Position.Y(), "-Y is still offered on the top floor")
	assert.Equal(t, 1, u.Floor)
}

func TestNudge_UnknownUnit(t *testing.T) {
	e := newEngine(t, fixedGrid(), nil)
	_, err := e.Nudge(context.Background(), "nope", nudge.PosX)
	assert.True(t, errors.Is(err, ErrUnknownUnit))
	assert.Equal(t, 0, e.History().Len())
}

func TestSelect_AffordancesFollowActiveFloor(t *testing.T) {
	e := newEngine(t, fixedGrid(), nil)
	require.NoError(t, e.Select("u1"))

	has := func(d nudge.Direction) bool {
		for _, a := range e.Affordances() {
			if a.Dir == d {
				return true
			}
		}
		return false
	}

	assert.False(t, has(nudge.NegY), "ground floor offers no -Y")
	assert.True(t, has(nudge.PosY))

	e.SetActiveFloor(2)
	assert.False(t, has(nudge.PosY), "top floor offers no +Y")
	assert.True(t, has(nudge.NegY))

	e.Deselect()
	assert.Empty(t, e.Affordances())
	assert.Error(t, e.Select("ghost"))
}

func TestController_PressDrivesEngineNudge(t *testing.T) {
	ctx := context.Background()
	e := newEngine(t, fixedGrid(), nil)
	require.NoError(t, e.Select("u1"))

	require.NoError(t, e.Controller().Press(ctx, nudge.PosX, at(0)))
	n, err := e.Controller().Tick(ctx, at(400))
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	e.Controller().Release()

	u := mustUnit(t, e, "u1")
	assert.Equal(t, float32(3), u.Position.X())
	assert.Equal(t, 3, e.History().Len())
}

func TestHistory_EvictionAndUndo(t *testing.T) {
	ctx := context.Background()
	e := newEngine(t, fixedGrid(), nil)

	for i := 0; i < 25; i++ {
		_, err := e.Nudge(ctx, "u1", nudge.PosX)
		require.NoError(t, err)
	}
	assert.Equal(t, 20, e.History().Len())

	for i := 0; i < 20; i++ {
		assert.True(t, e.Undo(ctx), "undo %d", i+1)
	}
	assert.Equal(t, 0, e.History().Len())
	assert.False(t, e.Undo(ctx), "21st undo is a no-op")

	u := mustUnit(t, e, "u1")
	assert.Equal(t, float32(5), u.Position.X(), "the five oldest snapshots were evicted")
}

func TestUndo_RestoresVerbatimAndRelinks(t *testing.T) {
	ctx := context.Background()
	store := layout.NewMemoryStore()
	e := newEngine(t, fixedGrid(), store)

	u := mustUnit(t, e, "u2")
	before := u.Position
	require.NoError(t, e.Rotate(ctx, "u2", math.Pi/2))
	require.NoError(t, e.Move(ctx, "u2", nudge.PosY))
	assert.Equal(t, 1, u.Floor)

	saves := e.Saves()
	require.True(t, e.Undo(ctx))
	assert.Equal(t, before, u.Position)
	assert.Equal(t, 0, u.Floor)
	assert.InDelta(t, math.Pi/2, u.Yaw, 1e-6, "only the latest snapshot was undone")
	assert.Equal(t, saves+1, e.Saves())

	require.True(t, e.Undo(ctx))
	assert.Equal(t, float32(0), u.Yaw)
}

func TestUndo_SkipsRemovedUnits(t *testing.T) {
	ctx := context.Background()
	e := newEngine(t, fixedGrid(), nil)

	_, err := e.Nudge(ctx, "u1", nudge.PosX)
	require.NoError(t, err)
	_, err = e.Nudge(ctx, "u2", nudge.PosX)
	require.NoError(t, err)
	require.NoError(t, e.Remove(ctx, "u2"))

	assert.True(t, e.Undo(ctx))
	assert.Equal(t, float32(0), mustUnit(t, e, "u1").Position.X())
	assert.False(t, e.Undo(ctx))
}

func TestMoveToFloor_SameFloorIsNoop(t *testing.T) {
	ctx := context.Background()
	store := layout.NewMemoryStore()
	e := newEngine(t, fixedGrid(), store)

	members := e.Units().MembersOf(0)
	saves := store.Puts()

	moved, err := e.MoveToFloor(ctx, "u1", 0)
	require.NoError(t, err)
	assert.False(t, moved)
	assert.Equal(t, members, e.Units().MembersOf(0))
	assert.Equal(t, saves, store.Puts(), "no save triggered")

	moved, err = e.MoveToFloor(ctx, "u1", 2)
	require.NoError(t, err)
	assert.True(t, moved)
	assert.Equal(t, saves+1, store.Puts())
	assert.Equal(t, 0, e.History().Len(), "floor reassignment is not undoable")
}

func TestMove_KeyboardFollowsActiveFloor(t *testing.T) {
	ctx := context.Background()
	bus := events.NewBus()
	var changes []events.FloorChanged
	events.Subscribe(bus, func(ev events.FloorChanged) { changes = append(changes, ev) })

	e := New(fixedGrid(), WithLoader(testLoader()), WithIDs(seqIDs()), WithBus(bus))
	e.LoadLayout(ctx)

	require.NoError(t, e.Move(ctx, "u1", nudge.PosY))
	assert.Equal(t, 1, e.Floors().Active())
	require.NotEmpty(t, changes)
	assert.Equal(t, events.FloorChanged{Index: 1, Previous: 0}, changes[len(changes)-1])

	require.NoError(t, e.Move(ctx, "u1", nudge.NegZ))
	assert.Equal(t, mgl32.Vec3{0, 3, -1}, mustUnit(t, e, "u1").Position)
}

func TestRotate_WrapsToZero(t *testing.T) {
	ctx := context.Background()
	e := newEngine(t, fixedGrid(), nil)

	for i := 0; i < 4; i++ {
		require.NoError(t, e.Rotate(ctx, "u1", math.Pi/2))
	}
	assert.Equal(t, float32(0), mustUnit(t, e, "u1").Yaw)
	assert.Equal(t, 4, e.History().Len())
}

func TestAdjustY_FineStepAndFloorDerivation(t *testing.T) {
	ctx := context.Background()
	e := newEngine(t, fixedGrid(), nil)

	require.NoError(t, e.AdjustY(ctx, "u1", 1))
	u := mustUnit(t, e, "u1")
	assert.InDelta(t, 0.3, u.Position.Y(), 1e-6)
	assert.Equal(t, 0, u.Floor)

	for i := 0; i < 9; i++ {
		require.NoError(t, e.AdjustY(ctx, "u1", 1))
	}
	assert.Equal(t, 1, u.Floor)

	require.NoError(t, e.AdjustY(ctx, "u1", 0))
	assert.Equal(t, 10, e.History().Len())
}

func TestDrag_SnapsHorizontally(t *testing.T) {
	ctx := context.Background()
	e := newEngine(t, fixedGrid(), layout.NewMemoryStore())

	require.NoError(t, e.Drag("u1", mgl32.Vec3{4.4, 9, 1.6}))
	assert.Equal(t, mgl32.Vec3{0, 0, 0}, mustUnit(t, e, "u1").Position, "no drag in progress")

	require.NoError(t, e.BeginDrag("u1"))
	require.NoError(t, e.BeginDrag("u1"))
	assert.True(t, e.Dragging("u1"))
	require.NoError(t, e.Drag("u1", mgl32.Vec3{4.4, 9, 1.6}))
	assert.Equal(t, mgl32.Vec3{4, 0, 2}, mustUnit(t, e, "u1").Position)

	saves := e.Saves()
	require.NoError(t, e.EndDrag(ctx, "u1"))
	assert.False(t, e.Dragging("u1"))
	assert.Equal(t, saves+1, e.Saves())
	assert.Equal(t, 1, e.History().Len(), "one snapshot per drag")
}

func TestPlace_InvalidAssetLeavesStateUntouched(t *testing.T) {
	ctx := context.Background()
	bus := events.NewBus()
	var rejected []events.AssetRejected
	events.Subscribe(bus, func(ev events.AssetRejected) { rejected = append(rejected, ev) })

	e := New(fixedGrid(), WithLoader(testLoader()), WithIDs(seqIDs()), WithBus(bus))
	e.LoadLayout(ctx)
	before := e.Records()

	_, err := e.Place(ctx, "house.obj", mgl32.Vec3{}, 0)
	assert.True(t, errors.Is(err, ErrUnsupportedAsset))

	_, err = e.Place(ctx, "absent.glb", mgl32.Vec3{}, 0)
	assert.True(t, errors.Is(err, errMissing))

	require.Len(t, rejected, 2)
	assert.Equal(t, "house.obj", rejected[0].Path)
	assert.Equal(t, before, e.Records())
}

func TestDrop_PlacesOnActiveFloor(t *testing.T) {
	ctx := context.Background()
	bus := events.NewBus()
	var loaded []events.AssetLoaded
	events.Subscribe(bus, func(ev events.AssetLoaded) { loaded = append(loaded, ev) })

	store := layout.NewMemoryStore()
	e := New(fixedGrid(), WithLoader(testLoader()), WithIDs(seqIDs()), WithBus(bus), WithStore(store))
	e.LoadLayout(ctx)
	loaded = nil

	e.SetActiveFloor(1)
	point, ok := e.DropPoint(mgl32.Vec3{5.2, 10, 7.7}, mgl32.Vec3{0, -1, 0})
	require.True(t, ok)
	assert.Equal(t, mgl32.Vec3{5.2, 3, 7.7}, point)

	u, err := e.Drop(ctx, "unit2.glb", point)
	require.NoError(t, err)
	assert.Equal(t, mgl32.Vec3{6, 3, 9}, u.Position)
	assert.Equal(t, 1, u.Floor)
	assert.Equal(t, []events.AssetLoaded{{UnitID: "u5", AssetRef: "unit2.glb", Width: 2, Height: 3}}, loaded)
	assert.Equal(t, 1, store.Puts())

	_, ok = e.DropPoint(mgl32.Vec3{0, 10, 0}, mgl32.Vec3{1, 0, 0})
	assert.False(t, ok)
}

func TestPlace_AdaptiveGridAndFloorHeights(t *testing.T) {
	ctx := context.Background()
	e := newEngine(t, DefaultConfig(), nil)
	_, err := e.MoveToFloor(ctx, "u1", 1)
	require.NoError(t, err)

	_, err = e.Place(ctx, "tower.gltf", mgl32.Vec3{20, 0, 0}, 0)
	require.NoError(t, err)

	assert.InDelta(t, 2.4, e.Grid(), 1e-5)
	assert.InDelta(t, 3.4, e.Vertical(), 1e-5)
	for _, f := range e.Floors().Floors() {
		assert.InDelta(t, 3.4, f.Height, 1e-5)
	}
	assert.InDelta(t, 3, mustUnit(t, e, "u1").Position.Y(), 1e-5, "placed units keep their height")
}

func TestPlace_AdaptiveHeightsKeepFineOffsets(t *testing.T) {
	ctx := context.Background()
	bus := events.NewBus()
	var changes []events.FloorChanged
	events.Subscribe(bus, func(ev events.FloorChanged) { changes = append(changes, ev) })

	e := New(DefaultConfig(), WithLoader(testLoader()), WithIDs(seqIDs()), WithBus(bus))
	e.LoadLayout(ctx)
	require.NoError(t, e.AdjustY(ctx, "u1", 1))
	u := mustUnit(t, e, "u1")
	require.InDelta(t, 0.3, u.Position.Y(), 1e-5)
	changes = nil

	_, err := e.Place(ctx, "tower.gltf", mgl32.Vec3{20, 0, 0}, 0)
	require.NoError(t, err)

	assert.InDelta(t, 3.4, e.Floors().Floor(0).Height, 1e-5)
	assert.InDelta(t, 0.3, u.Position.Y(), 1e-5)
	assert.Empty(t, changes, "the active floor did not change")

	require.True(t, e.Undo(ctx))
	assert.InDelta(t, 0, u.Position.Y(), 1e-5)
}

func TestUpdateFloor_RestacksAndPersists(t *testing.T) {
	ctx := context.Background()
	store := layout.NewMemoryStore()
	e := newEngine(t, fixedGrid(), store)
	_, err := e.MoveToFloor(ctx, "u1", 2)
	require.NoError(t, err)

	h := float32(4)
	require.NoError(t, e.UpdateFloor(ctx, 2, floor.Patch{Height: &h}))
	assert.Equal(t, float32(8), mustUnit(t, e, "u1").Position.Y())

	data, err := store.Get(ctx, layout.FloorsKey)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"height":4`)

	other := New(fixedGrid(), WithStore(store))
	other.LoadFloors(ctx)
	assert.Equal(t, float32(4), other.Floors().Floor(2).Height)

	assert.Error(t, e.UpdateFloor(ctx, 7, floor.Patch{}))
}

func TestDuplicateRemoveAndMaterial(t *testing.T) {
	ctx := context.Background()
	e := newEngine(t, fixedGrid(), nil)

	c, err := e.Duplicate(ctx, "u3", 2)
	require.NoError(t, err)
	assert.Equal(t, "u5", c.ID)
	assert.Equal(t, float32(6), c.Position.Y())
	assert.Equal(t, mustUnit(t, e, "u3").Position.X(), c.Position.X())

	require.NoError(t, e.SetMaterial("u3", "wood"))
	u3, _ := e.Units().Get("u3")
	assert.Equal(t, "wood", u3.Material)
	require.NoError(t, e.SetMaterial("u3", ""))
	assert.Equal(t, "", u3.Material)
	assert.True(t, errors.Is(e.SetMaterial("u3", "gold"), ErrUnknownMaterial))
	assert.Equal(t, 0, e.History().Len(), "material edits are not undoable")

	require.NoError(t, e.Select("u5"))
	require.NoError(t, e.Remove(ctx, "u5"))
	assert.Equal(t, "", e.Selected())
	assert.True(t, errors.Is(e.Remove(ctx, "u5"), ErrUnknownUnit))
}

func TestPick_OnlyActiveFloorCandidates(t *testing.T) {
	ctx := context.Background()
	e := newEngine(t, fixedGrid(), nil)

	id, ok := e.Pick(mgl32.Vec3{1, 10, 1}, mgl32.Vec3{0, -1, 0})
	require.True(t, ok)
	assert.Equal(t, "u1", id)

	_, err := e.MoveToFloor(ctx, "u1", 1)
	require.NoError(t, err)
	_, ok = e.Pick(mgl32.Vec3{1, 10, 1}, mgl32.Vec3{0, -1, 0})
	assert.False(t, ok, "units on other floors are not candidates")

	e.SetActiveFloor(1)
	assert.Equal(t, []string{"u1"}, e.Candidates())
}

func TestValidateAssetRef(t *testing.T) {
	assert.NoError(t, ValidateAssetRef("a/b/unit.GLB"))
	assert.NoError(t, ValidateAssetRef("unit.gltf"))
	assert.True(t, errors.Is(ValidateAssetRef("unit.fbx"), ErrUnsupportedAsset))
	assert.True(t, errors.Is(ValidateAssetRef("unit"), ErrUnsupportedAsset))
}

func TestConfig_WithDefaultsClamps(t *testing.T) {
	cfg := Config{Grid: -1, Vertical: 0, NudgeGap: -3}.withDefaults()
	assert.Equal(t, float32(0.01), cfg.Grid)
	assert.Equal(t, float32(0.01), cfg.Vertical)
	assert.Equal(t, float32(0), cfg.NudgeGap)
	assert.Len(t, cfg.Floors, floor.DefaultCount)
	assert.Equal(t, 20, cfg.HistoryCapacity)

	cfg = Config{HistoryCapacity: 100}.withDefaults()
	assert.Equal(t, 20, cfg.HistoryCapacity)
}

func TestHistory_OversizedCapacityStillCapsAtTwenty(t *testing.T) {
	ctx := context.Background()
	cfg := fixedGrid()
	cfg.HistoryCapacity = 100
	e := newEngine(t, cfg, nil)

	for i := 0; i < 30; i++ {
		_, err := e.Nudge(ctx, "u1", nudge.PosX)
		require.NoError(t, err)
	}
	assert.Equal(t, 20, e.History().Len())
	assert.Equal(t, 20, e.History().Cap())
}

func TestImport_ReplacesUnitsAndSaves(t *testing.T) {
	ctx := context.Background()
	store := layout.NewMemoryStore()
	e := newEngine(t, fixedGrid(), store)
	require.NoError(t, e.Select("u1"))

	placed := e.Import(ctx, []layout.Record{
		{ID: "kiosk", AssetRef: "unit3.glb", Position: [3]float32{6, 3, 2}, Yaw: math.Pi, Floor: 1},
		{ID: "ghost", AssetRef: "gone.glb"},
	})

	assert.Equal(t, 1, placed)
	assert.Equal(t, 1, e.Units().Len())
	assert.Empty(t, e.Selected(), "selection does not survive an import")
	assert.Equal(t, 0, e.History().Len())

	k := mustUnit(t, e, "kiosk")
	assert.Equal(t, mgl32.Vec3{6, 3, 2}, k.Position)
	assert.Equal(t, 1, k.Floor)

	saved, err := layout.NewPersister(store).Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, e.Records(), saved)
}
