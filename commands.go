package meadow

type Commands struct {
	app *App
}

func (cmd *Commands) AddResources(resources ...any) *Commands {
	cmd.app.addResources(resources...)
	return cmd
}

func (cmd *Commands) UseSystem(system any) *Commands {
	cmd.app.UseSystem(system)
	return cmd
}

// Stop ends App.Run after the current frame.
func (cmd *Commands) Stop() {
	cmd.app.stop()
}

func (cmd *Commands) Logger() Logger {
	return cmd.app.Logger()
}
