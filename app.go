package portal

import (
	"fmt"
	"reflect"
	"runtime"
	"time"
)

type systemFn any

// LoopState is the render loop lifecycle. It only ever moves forward.
type LoopState int

const (
	LoopIdle LoopState = iota
	LoopRunning
)

func (s LoopState) String() string {
	switch s {
	case LoopIdle:
		return "idle"
	case LoopRunning:
		return "running"
	}
	return fmt.Sprintf("LoopState(%d)", int(s))
}

type Module interface {
	Install(app *App, cmd *Commands)
}

type App struct {
	state     LoopState
	quit      bool
	stages    []Stage
	systems   map[string][]systemFn
	resources map[reflect.Type]any

	// delta of the tick currently being advanced
	dt time.Duration
}

func NewApp() *App {
	app := &App{
		systems:   make(map[string][]systemFn),
		resources: make(map[reflect.Type]any),
	}
	for _, stage := range defaultStages {
		app.stages = append(app.stages, stage)
		app.systems[stage.Name] = make([]systemFn, 0)
	}
	return app
}

func (app *App) Commands() *Commands {
	return &Commands{
		app: app,
	}
}

func (app *App) UseModules(modules ...Module) *App {
	cmd := app.Commands()
	for _, module := range modules {
		module.Install(app, cmd)
	}
	return app
}

func (app *App) State() LoopState {
	return app.state
}

// Quitting reports whether a system asked the loop to stop.
func (app *App) Quitting() bool {
	return app.quit
}

// Advance runs one tick: every stage in order, every system in registration
// order, with dt exposed through Commands.Dt. The first call moves the loop
// from idle to running.
func (app *App) Advance(dt time.Duration) {
	if app.state == LoopIdle {
		app.state = LoopRunning
		app.Logger().Debugf("render loop started")
	}
	if dt < 0 {
		dt = 0
	}
	app.dt = dt

	for _, stage := range app.stages {
		for _, system := range app.systems[stage.Name] {
			app.callSystem(system)
		}
	}
}

func (app *App) addResources(resources ...any) *App {
	for _, resource := range resources {
		resourceType := reflect.TypeOf(resource)
		if resourceType.Kind() != reflect.Pointer {
			panic(fmt.Sprintf("%s is not a pointer resource", resourceType))
		}
		if _, ok := app.resources[resourceType.Elem()]; ok {
			panic(fmt.Sprintf("%s is already in resources", resourceType))
		}

		app.resources[resourceType.Elem()] = resource
	}
	return app
}

// Resource looks up a resource by its element type.
func Resource[T any](app *App) (*T, bool) {
	res, ok := app.resources[reflect.TypeOf((*T)(nil)).Elem()]
	if !ok {
		return nil, false
	}
	typed, ok := res.(*T)
	return typed, ok
}

// MustResource is Resource for install code where absence is a wiring bug.
func MustResource[T any](app *App) *T {
	res, ok := Resource[T](app)
	if !ok {
		panic(fmt.Sprintf("resource %s not installed", reflect.TypeOf((*T)(nil)).Elem()))
	}
	return res
}

var typeOfCommands = reflect.TypeOf(Commands{})

func (app *App) callSystem(system systemFn) {
	systemType := reflect.TypeOf(system)
	systemValue := reflect.ValueOf(system)

	args := make([]reflect.Value, systemType.NumIn())

	for i := 0; i < systemType.NumIn(); i++ {
		argType := systemType.In(i)
		if argType.Kind() != reflect.Pointer {
			panic(fmt.Sprintf("system %s takes non-pointer argument %s",
				runtime.FuncForPC(systemValue.Pointer()).Name(), argType))
		}
		underlyingType := argType.Elem()

		if underlyingType == typeOfCommands {
			args[i] = reflect.ValueOf(&Commands{app: app})
		} else if resource, argIsResource := app.resources[underlyingType]; argIsResource {
			args[i] = reflect.ValueOf(resource)
		} else {
			msg := fmt.Sprintf("Unable to resolve System dependency.\nSystem: %s\nSystem type: %s\nDependency: %s",
				runtime.FuncForPC(systemValue.Pointer()).Name(),
				fmt.Sprint(systemType),
				fmt.Sprint(argType),
			)
			app.Logger().Errorf("%s", msg)
			panic(msg)
		}
	}
	systemValue.Call(args)
}
