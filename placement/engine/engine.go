// Package engine holds the placement context: floors, units, snapping,
// nudging, undo history and persistence behind one owned object. All methods
// are expected to run on the main loop.
package engine

import (
	"context"
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"

	"github.com/gekko3d/storey/placement/core"
	"github.com/gekko3d/storey/placement/events"
	"github.com/gekko3d/storey/placement/floor"
	"github.com/gekko3d/storey/placement/history"
	"github.com/gekko3d/storey/placement/layout"
	"github.com/gekko3d/storey/placement/nudge"
	"github.com/gekko3d/storey/placement/snap"
	"github.com/gekko3d/storey/placement/unit"
)

var ErrUnknownUnit = unit.ErrUnknownUnit

type Engine struct {
	cfg Config
	log Logger
	bus *events.Bus

	floors  *floor.Registry
	units   *unit.Registry
	sizes   *snap.Accumulator
	history *history.History
	nudge   *nudge.Controller

	persister *layout.Persister
	loader    Loader
	newID     func() string

	dragging map[string]struct{}
	saves    int
}

type Option func(*Engine)

func WithLogger(l Logger) Option { return func(e *Engine) { e.log = l } }

func WithBus(b *events.Bus) Option { return func(e *Engine) { e.bus = b } }

func WithStore(s layout.Store) Option {
	return func(e *Engine) { e.persister = layout.NewPersister(s) }
}

func WithLoader(l Loader) Option { return func(e *Engine) { e.loader = l } }

// WithIDs replaces the unit id generator.
func WithIDs(fn func() string) Option { return func(e *Engine) { e.newID = fn } }

func New(cfg Config, opts ...Option) *Engine {
	e := &Engine{
		cfg:      cfg.withDefaults(),
		log:      nopLogger{},
		newID:    uuid.NewString,
		dragging: make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.bus == nil {
		e.bus = events.NewBus()
	}

	e.floors = floor.New(e.cfg.Floors, e.bus)
	e.units = unit.NewRegistry(e.floors)
	e.sizes = snap.NewAccumulator(e.cfg.Grid, e.cfg.Vertical)
	e.history = history.New(e.cfg.HistoryCapacity)
	e.nudge = nudge.NewController(e.Nudge, e.cfg.NudgeInterval)
	e.floors.OnRestack(e.restack)
	return e
}

func (e *Engine) Bus() *events.Bus              { return e.bus }
func (e *Engine) Floors() *floor.Registry       { return e.floors }
func (e *Engine) Units() *unit.Registry         { return e.units }
func (e *Engine) History() *history.History     { return e.history }
func (e *Engine) Controller() *nudge.Controller { return e.nudge }
func (e *Engine) Config() Config                { return e.cfg }

// Saves counts layout writes since creation.
func (e *Engine) Saves() int { return e.saves }

// Grid is the current horizontal snap size.
func (e *Engine) Grid() float32 {
	if !e.cfg.Adaptive {
		return e.cfg.Grid
	}
	return e.sizes.Grid()
}

// Vertical is the current vertical snap size.
func (e *Engine) Vertical() float32 {
	if !e.cfg.Adaptive {
		return e.cfg.Vertical
	}
	return e.sizes.Vertical()
}

func (e *Engine) unit(id string) (*unit.Unit, error) {
	u, ok := e.units.Get(id)
	if !ok {
		return nil, fmt.Errorf("%q: %w", id, ErrUnknownUnit)
	}
	return u, nil
}

// Place loads ref and puts it on floor with its bounds' minimum corner at the
// grid-snapped point at.
func (e *Engine) Place(ctx context.Context, ref string, at mgl32.Vec3, floorIndex int) (*unit.Unit, error) {
	asset, err := e.load(ctx, ref)
	if err != nil {
		return nil, err
	}

	e.accumulate(asset)
	pos := snap.SnapXZ(at.Sub(asset.Bounds.Min), e.Grid())
	return e.register(ctx, e.newID(), asset, pos, floorIndex, true)
}

// Drop places ref at a point picked on the active floor's drop plane.
func (e *Engine) Drop(ctx context.Context, ref string, point mgl32.Vec3) (*unit.Unit, error) {
	return e.Place(ctx, ref, point, e.floors.Active())
}

func (e *Engine) load(ctx context.Context, ref string) (Asset, error) {
	if err := ValidateAssetRef(ref); err != nil {
		e.reject(ref, err)
		return Asset{}, err
	}
	if e.loader == nil {
		err := fmt.Errorf("load %q: no asset loader", ref)
		e.reject(ref, err)
		return Asset{}, err
	}
	asset, err := e.loader.Load(ctx, ref)
	if err != nil {
		err = fmt.Errorf("load %q: %w", ref, err)
		e.reject(ref, err)
		return Asset{}, err
	}
	asset.Ref = ref
	return asset, nil
}

func (e *Engine) reject(ref string, err error) {
	e.log.Warnf("asset %s rejected: %v", ref, err)
	events.Publish(e.bus, events.AssetRejected{Path: ref, Err: err})
}

// accumulate folds a loaded asset into the adaptive grid.
func (e *Engine) accumulate(asset Asset) {
	size := asset.Bounds.Size()
	e.sizes.Add(size.X(), size.Y())
	if e.cfg.Adaptive && e.cfg.StackToAverage {
		e.floors.SetHeights(e.sizes.Vertical())
	}
}

func (e *Engine) register(ctx context.Context, id string, asset Asset, pos mgl32.Vec3, floorIndex int, save bool) (*unit.Unit, error) {
	u := &unit.Unit{
		ID:       id,
		AssetRef: asset.Ref,
		Position: pos,
		Bounds:   asset.Bounds,
	}
	if err := e.units.Assign(u, floorIndex); err != nil {
		return nil, err
	}

	size := asset.Bounds.Size()
	events.Publish(e.bus, events.AssetLoaded{UnitID: u.ID, AssetRef: u.AssetRef, Width: size.X(), Height: size.Y()})
	events.Publish(e.bus, events.UnitChanged{UnitID: u.ID, Reason: events.ReasonPlaced})
	if save {
		e.saveQuietly(ctx)
	}
	return u, nil
}

// Select shows nudge arrows around unit id.
func (e *Engine) Select(id string) error {
	u, err := e.unit(id)
	if err != nil {
		return err
	}
	e.nudge.Select(id, e.affordancesFor(u))
	return nil
}

func (e *Engine) Deselect()        { e.nudge.Deselect() }
func (e *Engine) Selected() string { return e.nudge.Selected() }

// Affordances are the arrows currently offered for the selection.
func (e *Engine) Affordances() []nudge.Affordance {
	return e.nudge.Affordances()
}

func (e *Engine) affordancesFor(u *unit.Unit) []nudge.Affordance {
	return nudge.Affordances(u.WorldBounds(), e.floors.Active(), e.floors.Count(), e.cfg.NudgeGap)
}

func (e *Engine) refreshSelection() {
	if id := e.nudge.Selected(); id != "" {
		if u, ok := e.units.Get(id); ok {
			e.nudge.Refresh(e.affordancesFor(u))
		} else {
			e.nudge.Deselect()
		}
	}
}

func (e *Engine) record(u *unit.Unit) {
	e.history.Record(history.Snapshot{UnitID: u.ID, Position: u.Position, Yaw: u.Yaw})
}

// Nudge moves unit id one snap increment along dir and re-snaps it. It
// returns the regenerated arrows. A direction the arrows do not offer, such
// as -Y on the ground floor, leaves the unit untouched.
func (e *Engine) Nudge(ctx context.Context, id string, dir nudge.Direction) ([]nudge.Affordance, error) {
	u, err := e.unit(id)
	if err != nil {
		return nil, err
	}
	arrows := e.affordancesFor(u)
	if !offers(arrows, dir) {
		return arrows, nil
	}
	e.record(u)

	g, v := e.Grid(), e.Vertical()
	u.Position = snap.Snap(u.Position.Add(nudge.Step(dir, g, v)), g, v)
	e.relink(u)

	events.Publish(e.bus, events.UnitChanged{UnitID: id, Reason: events.ReasonMoved})
	e.saveQuietly(ctx)

	arrows = e.affordancesFor(u)
	if e.nudge.Selected() == id {
		e.nudge.Refresh(arrows)
	}
	return arrows, nil
}

func offers(arrows []nudge.Affordance, dir nudge.Direction) bool {
	for _, a := range arrows {
		if a.Dir == dir {
			return true
		}
	}
	return false
}

// Move is the keyboard move: one grid step horizontally, one floor height
// vertically. The active floor follows the unit.
func (e *Engine) Move(ctx context.Context, id string, dir nudge.Direction) error {
	u, err := e.unit(id)
	if err != nil {
		return err
	}
	e.record(u)

	g := e.Grid()
	v := e.floors.Floor(u.Floor).Height
	u.Position = u.Position.Add(nudge.Step(dir, g, v))
	u.Position = snap.Snap(u.Position, g, e.Vertical())
	e.relink(u)
	e.floors.SetActiveFloor(u.Floor)
	e.refreshSelection()

	events.Publish(e.bus, events.UnitChanged{UnitID: id, Reason: events.ReasonMoved})
	e.saveQuietly(ctx)
	return nil
}

// Rotate turns unit id by step radians about the vertical axis and snaps the
// result to the yaw step.
func (e *Engine) Rotate(ctx context.Context, id string, step float32) error {
	u, err := e.unit(id)
	if err != nil {
		return err
	}
	e.record(u)

	ys := e.cfg.YawStep
	yaw := snap.SnapYaw(core.NormalizeYaw(u.Yaw+step), ys)
	if yaw >= 2*math.Pi-ys/2 {
		yaw = 0
	}
	u.Yaw = yaw
	e.refreshSelection()

	events.Publish(e.bus, events.UnitChanged{UnitID: id, Reason: events.ReasonRotated})
	e.saveQuietly(ctx)
	return nil
}

// AdjustY raises (sign > 0) or lowers the unit by a fraction of its floor
// height without snapping.
func (e *Engine) AdjustY(ctx context.Context, id string, sign int) error {
	u, err := e.unit(id)
	if err != nil {
		return err
	}
	if sign == 0 {
		return nil
	}
	e.record(u)

	step := e.cfg.WheelFraction * e.floors.Floor(u.Floor).Height
	if sign < 0 {
		step = -step
	}
	u.Position[1] += step
	e.relink(u)
	e.refreshSelection()

	events.Publish(e.bus, events.UnitChanged{UnitID: id, Reason: events.ReasonMoved})
	e.saveQuietly(ctx)
	return nil
}

// BeginDrag records the pose before a gizmo drag.
func (e *Engine) BeginDrag(id string) error {
	u, err := e.unit(id)
	if err != nil {
		return err
	}
	if _, ok := e.dragging[id]; ok {
		return nil
	}
	e.record(u)
	e.dragging[id] = struct{}{}
	return nil
}

// Drag follows the handle on the horizontal plane, snapping X and Z.
func (e *Engine) Drag(id string, pos mgl32.Vec3) error {
	u, err := e.unit(id)
	if err != nil {
		return err
	}
	if _, ok := e.dragging[id]; !ok {
		return nil
	}
	snapped := snap.SnapXZ(pos, e.Grid())
	u.Position[0] = snapped.X()
	u.Position[2] = snapped.Z()
	e.refreshSelection()

	events.Publish(e.bus, events.UnitChanged{UnitID: id, Reason: events.ReasonMoved})
	return nil
}

func (e *Engine) EndDrag(ctx context.Context, id string) error {
	if _, ok := e.dragging[id]; !ok {
		return nil
	}
	delete(e.dragging, id)

	u, err := e.unit(id)
	if err != nil {
		return err
	}
	e.relink(u)
	e.saveQuietly(ctx)
	return nil
}

func (e *Engine) Dragging(id string) bool {
	_, ok := e.dragging[id]
	return ok
}

// MoveToFloor reassigns a unit. It reports false, and does not save, when
// the unit already is on that floor. Not recorded in history.
func (e *Engine) MoveToFloor(ctx context.Context, id string, floorIndex int) (bool, error) {
	moved, err := e.units.Reassign(id, floorIndex)
	if err != nil || !moved {
		return false, err
	}
	e.refreshSelection()

	events.Publish(e.bus, events.UnitChanged{UnitID: id, Reason: events.ReasonFloor})
	e.saveQuietly(ctx)
	return true, nil
}

// Duplicate copies unit id onto floorIndex under a new id.
func (e *Engine) Duplicate(ctx context.Context, id string, floorIndex int) (*unit.Unit, error) {
	u, err := e.unit(id)
	if err != nil {
		return nil, err
	}
	c := u.Clone(e.newID())
	if err := e.units.Assign(c, floorIndex); err != nil {
		return nil, err
	}

	events.Publish(e.bus, events.UnitChanged{UnitID: c.ID, Reason: events.ReasonPlaced})
	e.saveQuietly(ctx)
	return c, nil
}

// SetMaterial repaints a unit with a variant, or restores its original
// material when variant is empty. Not undoable.
func (e *Engine) SetMaterial(id, variant string) error {
	u, err := e.unit(id)
	if err != nil {
		return err
	}
	if variant != "" && !slices.Contains(Materials, variant) {
		return fmt.Errorf("%q: %w", variant, ErrUnknownMaterial)
	}
	u.Material = variant

	events.Publish(e.bus, events.UnitChanged{UnitID: id, Reason: events.ReasonMaterial})
	return nil
}

func (e *Engine) Remove(ctx context.Context, id string) error {
	if _, err := e.units.Remove(id); err != nil {
		return err
	}
	delete(e.dragging, id)
	if e.nudge.Selected() == id {
		e.nudge.Deselect()
	}

	events.Publish(e.bus, events.UnitChanged{UnitID: id, Reason: events.ReasonRemoved})
	e.saveQuietly(ctx)
	return nil
}

// Undo restores the most recent snapshot verbatim. Snapshots of units that
// no longer exist are discarded. It reports false when nothing was undone.
func (e *Engine) Undo(ctx context.Context) bool {
	for {
		s, ok := e.history.Undo()
		if !ok {
			return false
		}
		u, exists := e.units.Get(s.UnitID)
		if !exists {
			e.log.Debugf("undo: dropping snapshot of removed unit %s", s.UnitID)
			continue
		}

		u.Position = s.Position
		u.Yaw = s.Yaw
		e.relink(u)
		e.refreshSelection()

		events.Publish(e.bus, events.UnitChanged{UnitID: u.ID, Reason: events.ReasonRestored})
		e.saveQuietly(ctx)
		return true
	}
}

// SetActiveFloor clamps and applies the active floor. Arrows of the
// selection are regenerated since their vertical eligibility depends on it.
func (e *Engine) SetActiveFloor(index int) int {
	active := e.floors.SetActiveFloor(index)
	e.refreshSelection()
	return active
}

// UpdateFloor merges floor settings, re-stacks the floor's occupants and
// persists both documents.
func (e *Engine) UpdateFloor(ctx context.Context, index int, patch floor.Patch) error {
	if err := e.floors.UpdateFloor(index, patch); err != nil {
		return err
	}
	e.refreshSelection()
	e.saveFloorsQuietly(ctx)
	e.saveQuietly(ctx)
	return nil
}

// ApplyFloors merges a whole roster, as read from configuration.
func (e *Engine) ApplyFloors(ctx context.Context, floors []floor.Floor) {
	e.floors.Apply(floors)
	e.refreshSelection()
	e.saveFloorsQuietly(ctx)
	e.saveQuietly(ctx)
}

func (e *Engine) restack(index int, base float32) {
	e.units.Restack(index, base)
	for _, id := range e.units.MembersOf(index) {
		events.Publish(e.bus, events.UnitChanged{UnitID: id, Reason: events.ReasonFloor})
	}
}

// relink re-derives floor membership from the unit's height.
func (e *Engine) relink(u *unit.Unit) {
	if _, err := e.units.Relink(u.ID, e.floors.FloorAt(u.Position.Y())); err != nil {
		e.log.Errorf("relink %s: %v", u.ID, err)
	}
}

// Candidates are the units on the active floor, used as pick targets.
func (e *Engine) Candidates() []string {
	return e.units.MembersOf(e.floors.Active())
}

// Pick returns the nearest active-floor unit hit by the ray.
func (e *Engine) Pick(origin, dir mgl32.Vec3) (string, bool) {
	best := ""
	bestT := float32(math.MaxFloat32)
	for _, id := range e.Candidates() {
		u, _ := e.units.Get(id)
		if t, ok := u.WorldBounds().IntersectRay(origin, dir); ok && t < bestT {
			best, bestT = id, t
		}
	}
	return best, best != ""
}

// DropPoint intersects a ray with the active floor's drop plane.
func (e *Engine) DropPoint(origin, dir mgl32.Vec3) (mgl32.Vec3, bool) {
	if dir.Y() == 0 {
		return mgl32.Vec3{}, false
	}
	t := (e.floors.DropPlane() - origin.Y()) / dir.Y()
	if t < 0 {
		return mgl32.Vec3{}, false
	}
	return origin.Add(dir.Mul(t)), true
}

// Records is the persisted form of every placed unit.
func (e *Engine) Records() []layout.Record {
	all := e.units.All()
	res := make([]layout.Record, 0, len(all))
	for _, u := range all {
		res = append(res, layout.Record{
			ID:       u.ID,
			AssetRef: u.AssetRef,
			Position: [3]float32{u.Position.X(), u.Position.Y(), u.Position.Z()},
			Yaw:      u.Yaw,
			Floor:    u.Floor,
		})
	}
	return res
}

// Save writes the layout document. Without a store it does nothing.
func (e *Engine) Save(ctx context.Context) error {
	if e.persister == nil {
		return nil
	}
	records := e.Records()
	if err := e.persister.Save(ctx, records); err != nil {
		return fmt.Errorf("save layout: %w", err)
	}
	e.saves++
	events.Publish(e.bus, events.LayoutSaved{Count: len(records)})
	return nil
}

func (e *Engine) saveQuietly(ctx context.Context) {
	if err := e.Save(ctx); err != nil {
		e.log.Errorf("%v", err)
	}
}

func (e *Engine) saveFloorsQuietly(ctx context.Context) {
	if e.persister == nil {
		return
	}
	if err := e.persister.SaveFloors(ctx, e.floors.Floors()); err != nil {
		e.log.Errorf("save floors: %v", err)
	}
}

// LoadFloors merges saved floor settings onto the current roster.
func (e *Engine) LoadFloors(ctx context.Context) {
	if e.persister == nil {
		return
	}
	floors, err := e.persister.LoadFloors(ctx, e.floors.Floors())
	switch {
	case errors.Is(err, layout.ErrNotFound):
		return
	case err != nil:
		e.log.Warnf("ignoring saved floor settings: %v", err)
		return
	}
	e.floors.Apply(floors)
}

// LoadLayout restores the saved layout, replacing whatever is placed. When
// nothing usable is saved the default demo layout is placed instead. It
// returns the number of units placed.
func (e *Engine) LoadLayout(ctx context.Context) int {
	var records []layout.Record
	err := layout.ErrNotFound
	if e.persister != nil {
		records, err = e.persister.Load(ctx)
	}

	e.reset()
	switch {
	case errors.Is(err, layout.ErrNotFound):
		e.log.Infof("no saved layout, placing defaults")
		return e.placeDefaults(ctx)
	case err != nil:
		e.log.Warnf("discarding saved layout: %v", err)
		return e.placeDefaults(ctx)
	}

	return e.restore(ctx, records)
}

// Import replaces the placed units with records and saves the result.
func (e *Engine) Import(ctx context.Context, records []layout.Record) int {
	e.reset()
	placed := e.restore(ctx, records)
	e.saveQuietly(ctx)
	return placed
}

func (e *Engine) restore(ctx context.Context, records []layout.Record) int {
	// Load every asset before registering so floor heights settle first and
	// restored heights are not re-stacked.
	assets := make([]Asset, len(records))
	loaded := make([]bool, len(records))
	for i, rec := range records {
		asset, err := e.load(ctx, rec.AssetRef)
		if err != nil {
			continue
		}
		e.accumulate(asset)
		assets[i], loaded[i] = asset, true
	}

	placed := 0
	for i, rec := range records {
		if !loaded[i] {
			continue
		}
		u, err := e.register(ctx, rec.ID, assets[i], mgl32.Vec3(rec.Position), rec.Floor, false)
		if err != nil {
			e.log.Warnf("skipping saved unit %s: %v", rec.ID, err)
			continue
		}
		u.Position = mgl32.Vec3(rec.Position)
		u.Yaw = rec.Yaw
		placed++
	}
	e.log.Infof("restored %d of %d saved units", placed, len(records))
	return placed
}

func (e *Engine) placeDefaults(ctx context.Context) int {
	offset := float32(0)
	placed := 0
	for _, ref := range e.cfg.DefaultLayout {
		asset, err := e.load(ctx, ref)
		if err != nil {
			continue
		}
		e.accumulate(asset)

		minB := asset.Bounds.Min
		pos := mgl32.Vec3{offset - minB.X(), 0, -minB.Z()}
		if _, err := e.register(ctx, e.newID(), asset, pos, 0, false); err != nil {
			e.log.Warnf("default unit %s: %v", ref, err)
			continue
		}
		offset += asset.Bounds.Size().X()
		placed++
	}
	return placed
}

func (e *Engine) reset() {
	for _, u := range e.units.All() {
		events.Publish(e.bus, events.UnitChanged{UnitID: u.ID, Reason: events.ReasonRemoved})
	}
	e.units.Clear()
	e.history.Clear()
	e.nudge.Deselect()
	e.sizes.Reset()
	clear(e.dragging)
}
