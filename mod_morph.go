package pointmorph

// VariantNames maps variant indices to display names; the HUD reads it.
type VariantNames struct {
	Names []string
}

// MorphModule registers an existing controller with the frame loop and binds
// the demo keys: digits jump to a variant, space advances to the next one,
// A toggles auto-advance.
type MorphModule struct {
	Controller *MorphController
	Names      []string
}

func (m MorphModule) Install(app *App, cmd *Commands) {
	if m.Controller == nil {
		panic("MorphModule requires a Controller")
	}
	cmd.AddResources(m.Controller, &VariantNames{Names: m.Names})
	app.UseSystem(System(morphInputSystem).InStage(PreUpdate))
	app.UseSystem(System(morphTickSystem).InStage(Update))
}

func morphInputSystem(ctrl *MorphController, input *Input, logger *DefaultLogger) {
	for digit := 0; digit < 9; digit++ {
		if !input.JustPressed[Key1+digit] {
			continue
		}
		if err := ctrl.Request(digit); err != nil {
			logger.Warnf("morph request ignored: %v", err)
		}
	}
	if input.JustPressed[KeySpace] {
		ctrl.RequestNext()
	}
	if input.JustPressed[KeyA] {
		ctrl.SetAutoAdvance(!ctrl.AutoAdvance())
	}
}

// morphTickSystem drives the controller once per frame: the auto-advance
// timer fires first, queued requests drain, then the tween advances.
func morphTickSystem(ctrl *MorphController, time *Time) {
	ctrl.Tick(time.DeltaSeconds())
}
