package storey

import (
	"context"
	"maps"
	"slices"

	"github.com/gekko3d/storey/placement/engine"
	"github.com/gekko3d/storey/placement/events"
	"github.com/gekko3d/storey/placement/layout"
)

// Editor states. Loading restores the saved layout, Quit saves and closes
// the store.
const (
	StateLoading State = iota
	StateEditing
	StateQuit
)

// Changes collects what the engine reported during the current frame. It is
// cleared in Finale.
type Changes struct {
	Units    map[string]events.ChangeReason
	Floors   bool
	Loaded   []events.AssetLoaded
	Rejected []events.AssetRejected
	Saves    int
}

func newChanges() *Changes {
	return &Changes{Units: make(map[string]events.ChangeReason)}
}

// UnitIDs returns the changed unit ids in order.
func (c *Changes) UnitIDs() []string {
	return slices.Sorted(maps.Keys(c.Units))
}

func (c *Changes) Empty() bool {
	return len(c.Units) == 0 && !c.Floors && len(c.Loaded) == 0 && len(c.Rejected) == 0 && c.Saves == 0
}

func (c *Changes) reset() {
	clear(c.Units)
	c.Floors = false
	c.Loaded = c.Loaded[:0]
	c.Rejected = c.Rejected[:0]
	c.Saves = 0
}

// Placement owns the store and the bus subscriptions of the engine resource.
type Placement struct {
	Store  layout.Store
	subs   []events.Subscription
	closed bool
}

// Close detaches from the bus and closes the store. It does not save.
func (p *Placement) Close() error {
	if p.closed {
		return nil
	}
	p.closed = true
	for _, s := range p.subs {
		s.Unsubscribe()
	}
	if p.Store == nil {
		return nil
	}
	return p.Store.Close()
}

// PlacementModule installs the placement engine as a resource. Install it
// after LoggingModule and AssetServerModule; the asset server becomes the
// engine's loader.
//
// In a stateful app the layout is restored when StateLoading is entered and
// saved when StateQuit is entered. A stateless app restores on install.
type PlacementModule struct {
	Config engine.Config
	Store  layout.Store
	Bus    *events.Bus
	// IDs replaces the unit id generator.
	IDs func() string
}

func (mod PlacementModule) Install(app *App, cmd *Commands) {
	bus := mod.Bus
	if bus == nil {
		bus = events.NewBus()
	}
	opts := []engine.Option{engine.WithLogger(app.Logger()), engine.WithBus(bus)}
	if server, ok := Resource[AssetServer](app); ok {
		opts = append(opts, engine.WithLoader(server))
	} else {
		app.Logger().Warnf("placement: no asset server installed, every load will be rejected")
	}
	if mod.Store != nil {
		opts = append(opts, engine.WithStore(mod.Store))
	}
	if mod.IDs != nil {
		opts = append(opts, engine.WithIDs(mod.IDs))
	}
	eng := engine.New(mod.Config, opts...)

	changes := newChanges()
	placement := &Placement{Store: mod.Store}
	placement.subs = []events.Subscription{
		events.Subscribe(bus, func(ev events.UnitChanged) { changes.Units[ev.UnitID] = ev.Reason }),
		events.Subscribe(bus, func(events.FloorChanged) { changes.Floors = true }),
		events.Subscribe(bus, func(events.FloorsUpdated) { changes.Floors = true }),
		events.Subscribe(bus, func(ev events.AssetLoaded) { changes.Loaded = append(changes.Loaded, ev) }),
		events.Subscribe(bus, func(ev events.AssetRejected) { changes.Rejected = append(changes.Rejected, ev) }),
		events.Subscribe(bus, func(events.LayoutSaved) { changes.Saves++ }),
	}
	cmd.AddResources(eng, changes, placement)

	if app.stateful {
		app.UseSystem(
			System(restoreSystem).
				InStage(PreUpdate).
				InState(OnEnter(StateLoading)),
		).UseSystem(
			System(loadedSystem).
				InStage(PostUpdate).
				InState(OnExecute(StateLoading)),
		).UseSystem(
			System(shutdownSystem).
				InStage(Finale).
				InState(OnEnter(StateQuit)),
		)
	} else {
		restoreLayout(eng)
	}
	app.UseSystem(
		System(func(c *Changes) { c.reset() }).
			InStage(Finale).
			RunAlways(),
	)
}

func restoreLayout(eng *engine.Engine) int {
	ctx := context.Background()
	eng.LoadFloors(ctx)
	return eng.LoadLayout(ctx)
}

func restoreSystem(eng *engine.Engine) {
	restoreLayout(eng)
}

func loadedSystem(cmd *Commands, eng *engine.Engine) {
	cmd.app.Logger().Infof("layout ready: %d units on %d floors", eng.Units().Len(), eng.Floors().Count())
	cmd.ChangeState(StateEditing)
}

func shutdownSystem(cmd *Commands, eng *engine.Engine, placement *Placement) {
	log := cmd.app.Logger()
	if err := eng.Save(context.Background()); err != nil {
		log.Errorf("final save: %v", err)
	}
	if err := placement.Close(); err != nil {
		log.Errorf("close store: %v", err)
	}
}
