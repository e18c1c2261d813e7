package pointmorph

import (
	"time"
)

// Time is the per-frame clock resource. With a fixed Step the frame delta is
// constant regardless of wall time, which keeps morph timing reproducible in
// tests and replays; otherwise Dt tracks the real elapsed time.
type Time struct {
	Time time.Time
	Dt   time.Duration
	Step time.Duration
}

// DeltaSeconds is the frame delta as float32 seconds, the unit the morph
// tween and auto-advance timer run on.
func (t *Time) DeltaSeconds() float32 {
	return float32(t.Dt.Seconds())
}

type TimeModule struct {
	// FixedStep pins Dt to a constant per-frame delta when non-zero.
	FixedStep time.Duration
}

func (mod TimeModule) Install(app *App, cmd *Commands) {
	cmd.AddResources(&Time{
		Time: time.Now(),
		Step: mod.FixedStep,
	})
	app.UseSystem(
		System(timeSystem).
			InStage(Prelude),
	)
}

func timeSystem(timeResource *Time) {
	now := time.Now()

	if timeResource.Step > 0 {
		timeResource.Dt = timeResource.Step
	} else {
		timeResource.Dt = now.Sub(timeResource.Time)
	}
	timeResource.Time = now
}
