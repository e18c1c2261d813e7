package pointmorph

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func appendLabel(log *[]string, label string) systemScheduleBuilder {
	return System(func() {
		*log = append(*log, label)
	})
}

func TestApp_RunFrame_StageOrder(t *testing.T) {
	app := NewApp()
	var log []string

	// Registration order is deliberately scrambled; stage order must win.
	app.UseSystem(appendLabel(&log, "render").InStage(Render))
	app.UseSystem(appendLabel(&log, "prelude").InStage(Prelude))
	app.UseSystem(appendLabel(&log, "post-update").InStage(PostUpdate))
	app.UseSystem(appendLabel(&log, "update"))
	app.UseSystem(appendLabel(&log, "finale").InStage(Finale))
	app.UseSystem(appendLabel(&log, "pre-render").InStage(PreRender))

	app.RunFrame()

	assert.Equal(t, []string{
		"prelude", "update", "post-update", "pre-render", "render", "finale",
	}, log)
}

func TestApp_RunFrame_RegistrationOrderWithinStage(t *testing.T) {
	app := NewApp()
	var log []string

	app.UseSystem(appendLabel(&log, "first"))
	app.UseSystem(appendLabel(&log, "second"))
	app.UseSystem(appendLabel(&log, "third"))

	app.RunFrame()

	assert.Equal(t, []string{"first", "second", "third"}, log)
}

func TestApp_UseStage_InsertsRelativeToTarget(t *testing.T) {
	app := NewApp()
	var log []string

	late := Stage{Name: "LateUpdate"}
	early := Stage{Name: "EarlyUpdate"}
	app.UseStage(late, AfterStage(Update))
	app.UseStage(early, BeforeStage(Update))

	app.UseSystem(appendLabel(&log, "late").InStage(late))
	app.UseSystem(appendLabel(&log, "update").InStage(Update))
	app.UseSystem(appendLabel(&log, "early").InStage(early))

	app.RunFrame()

	assert.Equal(t, []string{"early", "update", "late"}, log)
}

func TestApp_UseStage_UnknownTarget(t *testing.T) {
	app := NewApp()

	assert.Panics(t, func() {
		app.UseStage(Stage{Name: "Extra"}, AfterStage(Stage{Name: "Nope"}))
	})
}

func TestApp_UseSystem_UnknownStage(t *testing.T) {
	app := NewApp()

	assert.Panics(t, func() {
		app.UseSystem(System(func() {}).InStage(Stage{Name: "Nope"}))
	})
}

func TestSystem_DefaultsToUpdateStage(t *testing.T) {
	sched := System(func() {})
	assert.Equal(t, Update, sched.inStage)
}
