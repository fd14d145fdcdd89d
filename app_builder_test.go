package meadow

import "testing"

type MockModule struct {
	installed bool
}

func (m *MockModule) Install(app *App, commands *Commands) {
	m.installed = true
}

type orderModule struct {
	name string
	log  *[]string
}

func (m orderModule) Install(app *App, commands *Commands) {
	*m.log = append(*m.log, m.name)
}

func TestAppBuilder_Defaults(t *testing.T) {
	app := NewAppBuilder().Build()

	if len(app.Stages()) != 8 {
		t.Errorf("Expected 8 default stages, got %v", len(app.Stages()))
	}
	for _, name := range app.Stages() {
		if _, ok := app.systems[name]; !ok {
			t.Errorf("Expected system list for stage %s", name)
		}
	}
	if app.Frame() != 0 {
		t.Errorf("Expected frame 0, got %v", app.Frame())
	}
}

func TestAppBuilder_UseModule(t *testing.T) {
	builder := NewAppBuilder()
	mockModule := &MockModule{}
	builder.UseModule(mockModule)

	if len(builder.modules) != 1 {
		t.Errorf("Expected modules to contain 1 module, got %v", len(builder.modules))
	}
	if mockModule.installed {
		t.Errorf("Expected module to be installed only on Build")
	}

	app := builder.Build()
	if !mockModule.installed {
		t.Errorf("Expected module to be installed")
	}
	modules := app.Modules()
	if len(modules) != 1 || modules[0] != mockModule {
		t.Errorf("Expected app to record the installed module, got %v", modules)
	}
	modules[0] = nil
	if app.Modules()[0] != mockModule {
		t.Errorf("Expected Modules to return a copy")
	}
}

func TestAppBuilder_InstallOrder(t *testing.T) {
	var log []string
	NewAppBuilder().
		UseModule(orderModule{name: "a", log: &log}, orderModule{name: "b", log: &log}).
		UseModule(orderModule{name: "c", log: &log}).
		Build()

	if len(log) != 3 || log[0] != "a" || log[1] != "b" || log[2] != "c" {
		t.Errorf("Expected install order a, b, c, got %v", log)
	}
}
