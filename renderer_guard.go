package meadow

import (
	"fmt"
)

// RendererTag records which draw backend the grass field submits to.
// Only one backend may be installed at a time.
type RendererTag struct {
	Name string
}

// ensureSingleRenderer enforces a single backend.
// Installing the same name twice is allowed; a different name panics.
func ensureSingleRenderer(app *App, name string) {
	if app == nil {
		panic("ensureSingleRenderer: app is nil")
	}
	if tag, ok := Resource[RendererTag](app); ok {
		if tag.Name != name {
			app.Logger().Errorf("Multiple renderers installed: %s and %s", tag.Name, name)
			panic(fmt.Sprintf("Multiple renderers installed: %s and %s", tag.Name, name))
		}
		return
	}
	app.addResources(&RendererTag{Name: name})
}
