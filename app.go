// Package storey hosts the layout editor: an entity-component app whose
// modules bind the placement engine to input, scene entities and storage.
package storey

import (
	"fmt"
	"reflect"
	"runtime"
	"slices"
)

type systemFn any

// Module bundles resources and systems. Install runs once, when the module
// is added to the App.
type Module interface {
	Install(app *App, cmd *Commands)
}

type App struct {
	stateful           bool
	stateTransitioning bool
	initialState       State
	finalState         State
	nextState          State
	state              State
	stages             []Stage
	systems            map[string]map[State]map[statePhase][]systemFn
	systemsStateless   map[string][]systemFn
	resources          map[reflect.Type]any
	ecs                *Ecs

	built   bool
	exiting bool

	// Command buffering
	pendingAdditions    []pendingAdd
	pendingRemovals     []EntityId
	pendingCompAdds     []pendingCompChange
	pendingCompRemovals []pendingCompChange
}

type pendingAdd struct {
	eid        EntityId
	components []any
}

type pendingCompChange struct {
	eid        EntityId
	components []any
}

var defaultStages = []Stage{Prelude, PreUpdate, Update, PostUpdate, PreRender, Render, PostRender, Finale}

// NewApp returns a stateless App with the default stages.
func NewApp() *App {
	app := newApp()
	app.initStages()
	return app
}

func newApp() *App {
	ecs := MakeEcs()
	return &App{
		systems:          make(map[string]map[State]map[statePhase][]systemFn),
		systemsStateless: make(map[string][]systemFn),
		resources:        make(map[reflect.Type]any),
		ecs:              &ecs,
	}
}

func (app *App) initStages() {
	app.stages = slices.Clone(defaultStages)
	for _, stage := range app.stages {
		app.initStatefulStage(stage)
	}
}

// UseModules installs modules immediately, in order.
func (app *App) UseModules(modules ...Module) *App {
	cmd := app.Commands()
	for _, module := range modules {
		module.Install(app, cmd)
	}
	return app
}

func (app *App) Commands() *Commands {
	return &Commands{app: app}
}

// State is the current app state. Stateless apps stay at zero.
func (app *App) State() State { return app.state }

// Exit stops Run after the current frame.
func (app *App) Exit() { app.exiting = true }

func (app *App) Run() {
	app.build()
	for app.Step() {
	}
}

func (app *App) build() {
	if app.built {
		return
	}
	app.built = true
	app.FlushCommands()

	if app.stateful {
		app.Logger().Debugf("running in stateful mode")
		app.state = app.initialState
		app.callSystems(app.state, enter)
	} else {
		app.Logger().Debugf("running in stateless mode")
	}
}

// Step runs one frame. It reports false once the app has finished: the
// final state was reached or Exit was called.
func (app *App) Step() bool {
	app.build()
	if app.exiting {
		return false
	}
	app.callSystems(app.state, execute)

	if app.stateful {
		if app.stateTransitioning {
			app.stateTransitioning = false
			app.executeChangeState(app.nextState)
		}
		if app.state == app.finalState {
			app.callSystems(app.state, exit)
			return false
		}
	}
	return !app.exiting
}

func (app *App) callSystems(state State, phase statePhase) {
	for _, stage := range app.stages {
		// Stateless systems run on every execute, before stateful ones.
		if execute == phase {
			for _, system := range app.systemsStateless[stage.Name] {
				app.callSystem(system)
			}
		}

		if app.stateful {
			for _, system := range app.systems[stage.Name][state][phase] {
				app.callSystem(system)
			}
		}
		app.FlushCommands()
	}
}

func (app *App) changeState(newState State) {
	app.nextState = newState
	app.stateTransitioning = true
}

func (app *App) executeChangeState(newState State) {
	app.callSystems(app.state, exit)
	app.state = newState
	app.callSystems(app.state, enter)
}

func (app *App) addResources(resources ...any) *App {
	for _, resource := range resources {
		resourceType := reflect.TypeOf(resource)
		if resourceType.Kind() != reflect.Pointer {
			panic(fmt.Sprintf("resource %s must be a pointer", resourceType))
		}
		if _, ok := app.resources[resourceType.Elem()]; ok {
			panic(fmt.Sprintf("%s is already in resources", resourceType))
		}
		app.resources[resourceType.Elem()] = resource
	}
	return app
}

// Resource returns the resource of type *T, if present.
func Resource[T any](app *App) (*T, bool) {
	res, ok := app.resources[reflect.TypeFor[T]()]
	if !ok {
		return nil, false
	}
	return res.(*T), true
}

var typeOfCommands = reflect.TypeFor[Commands]()

// callSystem resolves a system's pointer arguments against Commands and the
// registered resources, then calls it.
func (app *App) callSystem(system systemFn) {
	systemType := reflect.TypeOf(system)
	systemValue := reflect.ValueOf(system)

	args := make([]reflect.Value, systemType.NumIn())
	for i := range args {
		argType := systemType.In(i)
		if argType.Kind() != reflect.Pointer {
			app.unresolved(systemValue, argType)
		}
		underlyingType := argType.Elem()

		if underlyingType == typeOfCommands {
			args[i] = reflect.ValueOf(&Commands{app: app})
		} else if resource, ok := app.resources[underlyingType]; ok {
			args[i] = reflect.ValueOf(resource)
		} else {
			app.unresolved(systemValue, argType)
		}
	}
	systemValue.Call(args)
}

func (app *App) unresolved(system reflect.Value, dependency reflect.Type) {
	msg := fmt.Sprintf("unable to resolve system dependency\nsystem: %s\nsystem type: %s\ndependency: %s",
		runtime.FuncForPC(system.Pointer()).Name(),
		system.Type(),
		dependency,
	)
	app.Logger().Errorf("%s", msg)
	panic(msg)
}

// FlushCommands applies buffered structural changes: entity removals, then
// additions, then component additions and removals.
func (app *App) FlushCommands() {
	if len(app.pendingAdditions) == 0 && len(app.pendingRemovals) == 0 &&
		len(app.pendingCompAdds) == 0 && len(app.pendingCompRemovals) == 0 {
		return
	}
	log := app.Logger()

	for _, eid := range app.pendingRemovals {
		if log.DebugEnabled() {
			log.Debugf("flush: removing entity %d", eid)
		}
		app.ecs.removeEntity(eid)
	}
	app.pendingRemovals = app.pendingRemovals[:0]

	for _, add := range app.pendingAdditions {
		app.ecs.insertEntity(add.eid, add.components...)
	}
	app.pendingAdditions = app.pendingAdditions[:0]

	for _, add := range app.pendingCompAdds {
		app.ecs.addComponents(add.eid, add.components...)
	}
	app.pendingCompAdds = app.pendingCompAdds[:0]

	for _, rem := range app.pendingCompRemovals {
		app.ecs.removeComponents(rem.eid, rem.components...)
	}
	app.pendingCompRemovals = app.pendingCompRemovals[:0]
}
