package pointmorph

import (
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimeModule_FixedStep(t *testing.T) {
	app := NewApp().UseModules(TimeModule{FixedStep: 16 * time.Millisecond})

	res, ok := app.resources[reflect.TypeOf(Time{})]
	require.True(t, ok)
	clock := res.(*Time)

	app.RunFrame()
	assert.Equal(t, 16*time.Millisecond, clock.Dt)

	app.RunFrame()
	assert.Equal(t, 16*time.Millisecond, clock.Dt)
}

func TestTimeModule_RealTime(t *testing.T) {
	app := NewApp().UseModules(TimeModule{})

	res := app.resources[reflect.TypeOf(Time{})]
	clock := res.(*Time)

	time.Sleep(time.Millisecond)
	app.RunFrame()

	assert.Greater(t, clock.Dt, time.Duration(0))
}

func TestTime_DeltaSeconds(t *testing.T) {
	clock := &Time{Dt: 500 * time.Millisecond}
	assert.InDelta(t, 0.5, clock.DeltaSeconds(), 1e-6)
}
