package portal

import (
	"fmt"
	"reflect"
	"testing"
	"time"

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

func TestApp_addResources_RejectsValues(t *testing.T) {
	app := NewApp()
	assert.Panics(t, func() { app.addResources(MockResource1{name: "value"}) })
}

func TestApp_Resource(t *testing.T) {
	app := NewApp()
	r := NewMockResource1("r")
	app.addResources(r)

	got, ok := Resource[MockResource1](app)
	require.True(t, ok)
	assert.Same(t, r, got)

	_, ok = Resource[MockResource2](app)
	assert.False(t, ok)
	assert.Panics(t, func() { MustResource[MockResource2](app) })
}

func TestApp_AdvanceRunsStagesInOrder(t *testing.T) {
	app := NewApp()
	var order []string
	app.UseSystem(System(func() { order = append(order, "render") }).InStage(Render))
	app.UseSystem(System(func() { order = append(order, "prelude") }).InStage(Prelude))
	app.UseSystem(System(func() { order = append(order, "update") }))
	app.UseSystem(System(func() { order = append(order, "update2") }).InStage(Update))

	assert.Equal(t, LoopIdle, app.State())
	app.Advance(time.Millisecond)

	assert.Equal(t, []string{"prelude", "update", "update2", "render"}, order)
	assert.Equal(t, LoopRunning, app.State())
}

func TestApp_SystemResolvesResourcesAndCommands(t *testing.T) {
	app := NewApp()
	res := NewMockResource1("before")
	app.addResources(res)

	var seenDt time.Duration
	app.UseSystem(System(func(r *MockResource1, cmd *Commands) {
		r.name = "after"
		seenDt = cmd.Dt()
	}))
	app.Advance(16 * time.Millisecond)

	assert.Equal(t, "after", res.name)
	assert.Equal(t, 16*time.Millisecond, seenDt)
}

func TestApp_SystemMissingDependencyPanics(t *testing.T) {
	app := NewApp()
	app.UseSystem(System(func(r *MockResource2) {}))
	assert.Panics(t, func() { app.Advance(0) })
}

func TestApp_UseStage(t *testing.T) {
	app := NewApp()
	custom := Stage{Name: "Custom"}
	app.UseStage(custom, AfterStage(Update))

	var order []string
	app.UseSystem(System(func() { order = append(order, "post") }).InStage(PostUpdate))
	app.UseSystem(System(func() { order = append(order, "custom") }).InStage(custom))
	app.UseSystem(System(func() { order = append(order, "update") }).InStage(Update))
	app.Advance(0)

	assert.Equal(t, []string{"update", "custom", "post"}, order)
	assert.Panics(t, func() { app.UseStage(custom, BeforeStage(Render)) })
	assert.Panics(t, func() { app.UseStage(Stage{Name: "X"}, BeforeStage(Stage{Name: "Missing"})) })
	assert.Panics(t, func() { app.UseSystem(System(func() {}).InStage(Stage{Name: "Missing"})) })
}

func TestApp_TimeAccumulates(t *testing.T) {
	app := NewApp()
	app.UseModules(TimeModule{})

	require.NoError(t, app.Run(StepDriver{Steps: []time.Duration{
		0, 500 * time.Millisecond, 250 * time.Millisecond, -time.Second,
	}}))

	clock := MustResource[Time](app)
	assert.InDelta(t, 0.75, clock.Elapsed, 1e-9)
	assert.Equal(t, uint64(4), clock.Frame)
}

func TestStepDriver_StopsOnQuit(t *testing.T) {
	app := NewApp()
	ticks := 0
	app.UseSystem(System(func(cmd *Commands) {
		ticks++
		if ticks == 3 {
			cmd.Quit()
		}
	}))

	require.NoError(t, app.Run(FixedSteps(10, time.Millisecond)))
	assert.Equal(t, 3, ticks)
	assert.True(t, app.Quitting())
}

func TestApp_LoggerNeverNil(t *testing.T) {
	var nilApp *App
	assert.NotNil(t, nilApp.Logger())
	assert.NotNil(t, NewApp().Logger())
}
