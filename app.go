package meadow

import (
	"fmt"
	"reflect"
	"runtime"
)

type systemFn any

// App runs its systems stage by stage once per frame. Systems are plain
// functions whose pointer arguments are filled from the App's resources.
type App struct {
	modules   []Module
	stages    []Stage
	systems   map[string][]systemFn
	resources map[reflect.Type]any

	frame    int
	stopping bool
}

func (app *App) Commands() *Commands {
	return &Commands{
		app: app,
	}
}

// Run ticks until a system calls Commands.Stop or, when frames > 0, until
// that many frames have run.
func (app *App) Run(frames int) {
	app.Logger().Debugf("running %d stages", len(app.stages))
	app.stopping = false
	start := app.frame
	for !app.stopping {
		app.Tick()
		if frames > 0 && app.frame-start >= frames {
			break
		}
	}
	app.Logger().Debugf("stopped after %d frames", app.frame)
}

// Tick runs every stage once.
func (app *App) Tick() {
	for _, stage := range app.stages {
		for _, system := range app.systems[stage.Name] {
			app.callSystem(system)
		}
	}
	app.frame++
}

// Modules lists the installed modules in install order.
func (app *App) Modules() []Module {
	return append([]Module(nil), app.modules...)
}

// Frame is the number of completed ticks.
func (app *App) Frame() int {
	return app.frame
}

func (app *App) stop() {
	app.stopping = true
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

// Resource returns the resource of type T, if installed.
func Resource[T any](app *App) (*T, bool) {
	r, ok := app.resources[reflect.TypeOf((*T)(nil)).Elem()]
	if !ok {
		return nil, false
	}
	return r.(*T), true
}

var typeOfCommands = reflect.TypeOf(Commands{})

func (app *App) callSystem(system systemFn) {
	systemType := reflect.TypeOf(system)
	systemValue := reflect.ValueOf(system)

	args := make([]reflect.Value, systemType.NumIn())

	for i := 0; i < systemType.NumIn(); i++ {
		argType := systemType.In(i)
		if argType.Kind() != reflect.Pointer {
			app.panicUnresolved(systemValue, systemType, argType)
		}
		underlyingType := argType.Elem()

		if underlyingType == typeOfCommands {
			args[i] = reflect.ValueOf(&Commands{app: app})
		} else if resource, argIsResource := app.resources[underlyingType]; argIsResource {
			args[i] = reflect.ValueOf(resource)
		} else {
			app.panicUnresolved(systemValue, systemType, argType)
		}
	}
	systemValue.Call(args)
}

func (app *App) panicUnresolved(systemValue reflect.Value, systemType, argType reflect.Type) {
	msg := fmt.Sprintf("Unable to resolve System dependency.\nSystem: %s\nSystem type: %s\nDependency: %s",
		runtime.FuncForPC(systemValue.Pointer()).Name(),
		fmt.Sprint(systemType),
		fmt.Sprint(argType),
	)
	app.Logger().Errorf("%s", msg)
	panic(msg)
}
