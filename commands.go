package portal

import "time"

type Commands struct {
	app *App
}

func (cmd *Commands) AddResources(resources ...any) *Commands {
	cmd.app.addResources(resources...)
	return cmd
}

func (cmd *Commands) UseSystem(system systemScheduleBuilder) *Commands {
	cmd.app.UseSystem(system)
	return cmd
}

// Dt is the delta of the tick being advanced.
func (cmd *Commands) Dt() time.Duration {
	return cmd.app.dt
}

func (cmd *Commands) Logger() Logger {
	return cmd.app.Logger()
}

// Quit asks the driver to stop after the current tick.
func (cmd *Commands) Quit() {
	cmd.app.quit = true
}
