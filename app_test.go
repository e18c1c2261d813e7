package pointmorph

import (
	"fmt"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type MockResource1 struct {
	name string
}
type MockResource2 struct {
	name string
}

func NewMockResource1(name string) *MockResource1 {
	return &MockResource1{name: name}
}
func NewMockResource2(name string) *MockResource2 {
	return &MockResource2{name: name}
}

func TestApp_addResources(t *testing.T) {
	// Test setup
	app := &App{
		resources: make(map[reflect.Type]any),
	}

	// Add a resource
	resource1 := NewMockResource1("Resource1")
	app.addResources(resource1)

	// Check that the resource was added
	assert.Contains(t, app.resources, reflect.TypeOf(resource1).Elem(), "Resource1 should be in resources map.")

	// Expect panic when trying to add the same type of resource again
	require.PanicsWithValue(t, fmt.Sprintf("%s is already in resources", reflect.TypeOf(resource1)), func() {
		app.addResources(resource1) // Try adding resource1 again, should panic
	})

	// Add a resource
	resource2 := NewMockResource2("Resource2")
	app.addResources(resource2)

	// Check that the resource was added
	assert.Contains(t, app.resources, reflect.TypeOf(resource2).Elem(), "Resource2 should be in resources map.")
}

func TestApp_callSystem_injectsResources(t *testing.T) {
	app := NewApp()
	app.addResources(NewMockResource1("Resource1"))

	var gotName string
	var gotCmd *Commands
	app.UseSystem(System(func(res *MockResource1, cmd *Commands) {
		gotName = res.name
		gotCmd = cmd
	}))

	app.RunFrame()

	assert.Equal(t, "Resource1", gotName)
	require.NotNil(t, gotCmd)
}

func TestApp_callSystem_sharesResourcePointer(t *testing.T) {
	app := NewApp()
	app.addResources(NewMockResource1("before"))

	app.UseSystem(System(func(res *MockResource1) {
		res.name = "after"
	}).InStage(Update))

	var seen string
	app.UseSystem(System(func(res *MockResource1) {
		seen = res.name
	}).InStage(PostUpdate))

	app.RunFrame()

	assert.Equal(t, "after", seen, "a later stage should observe writes from an earlier one")
}

func TestApp_callSystem_unresolvedDependency(t *testing.T) {
	app := NewApp()
	app.UseSystem(System(func(res *MockResource2) {}))

	assert.Panics(t, func() {
		app.RunFrame()
	})
}

type recordingModule struct {
	log *[]string
}

func (m recordingModule) Install(app *App, cmd *Commands) {
	cmd.AddResources(NewMockResource2("FromModule"))
	app.UseSystem(System(func(res *MockResource2) {
		*m.log = append(*m.log, res.name)
	}))
}

func TestApp_UseModules(t *testing.T) {
	var log []string
	app := NewApp().UseModules(recordingModule{log: &log})

	app.RunFrame()
	app.RunFrame()

	assert.Equal(t, []string{"FromModule", "FromModule"}, log)
}

func TestCommands_QuitStopsRun(t *testing.T) {
	app := NewApp()

	frames := 0
	app.UseSystem(System(func(cmd *Commands) {
		frames++
		cmd.Quit()
	}))

	app.Run()

	assert.Equal(t, 1, frames)
}
