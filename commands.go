package pointmorph

// Commands is the handle systems and modules use to talk back to the app.
type Commands struct {
	app *App
}

// AddResources registers resources for injection. Panics if a resource of
// the same type is already present.
func (cmd *Commands) AddResources(resources ...any) *Commands {
	cmd.app.addResources(resources...)
	return cmd
}

// Quit stops the frame loop after the current frame completes.
func (cmd *Commands) Quit() {
	cmd.app.Stop()
}
