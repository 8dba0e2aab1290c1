package portal

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBoundPanel(t *testing.T) (*Panel, *Settings, *Materials, *fakeRenderer) {
	t.Helper()
	settings := DefaultSettings()
	materials, err := NewMaterials(settings, nil, 1)
	require.NoError(t, err)
	fake := &fakeRenderer{}
	panel := NewPanel("Debug")
	require.NoError(t, BindPanel(panel, settings, materials, fake))
	return panel, settings, materials, fake
}

func control(t *testing.T, p *Panel, label string) *Control {
	t.Helper()
	c, ok := p.Control(label)
	require.True(t, ok, label)
	return c
}

func TestBindPanel_InitialState(t *testing.T) {
	panel, _, _, fake := newBoundPanel(t)

	assert.Equal(t, MustColor("#303030"), fake.clear)
	require.Len(t, panel.Controls(), 4)
	assert.False(t, panel.Visible)
}

func TestBindPanel_PortalStartIsolated(t *testing.T) {
	panel, settings, materials, fake := newBoundPanel(t)
	endBefore := materials.Portal.Uniform(UniformColorEnd).Color()
	sizeBefore := materials.Fireflies.Uniform(UniformSize).Float()
	clearBefore := fake.clear

	require.NoError(t, control(t, panel, LabelPortalColorStart).SetColor("#ff0000"))

	assert.Equal(t, "#ff0000", settings.PortalColorStart)
	assert.Equal(t, Color{R: 1}, materials.Portal.Uniform(UniformColorStart).Color())
	assert.Equal(t, endBefore, materials.Portal.Uniform(UniformColorEnd).Color())
	assert.Equal(t, sizeBefore, materials.Fireflies.Uniform(UniformSize).Float())
	assert.Equal(t, clearBefore, fake.clear)
}

func TestBindPanel_PortalEndIsolated(t *testing.T) {
	panel, _, materials, fake := newBoundPanel(t)
	startBefore := materials.Portal.Uniform(UniformColorStart).Color()
	clearBefore := fake.clear

	require.NoError(t, control(t, panel, LabelPortalColorEnd).SetColor("#00ff00"))

	assert.Equal(t, Color{G: 1}, materials.Portal.Uniform(UniformColorEnd).Color())
	assert.Equal(t, startBefore, materials.Portal.Uniform(UniformColorStart).Color())
	assert.Equal(t, clearBefore, fake.clear)
}

func TestBindPanel_ClearColorIsolated(t *testing.T) {
	panel, _, materials, fake := newBoundPanel(t)
	startBefore := materials.Portal.Uniform(UniformColorStart).Color()
	endBefore := materials.Portal.Uniform(UniformColorEnd).Color()

	require.NoError(t, control(t, panel, LabelClearColor).SetColor("#0000ff"))

	assert.Equal(t, Color{B: 1}, fake.clear)
	assert.Equal(t, startBefore, materials.Portal.Uniform(UniformColorStart).Color())
	assert.Equal(t, endBefore, materials.Portal.Uniform(UniformColorEnd).Color())
}

func TestBindPanel_FireflySizeClampAndStep(t *testing.T) {
	panel, settings, materials, _ := newBoundPanel(t)
	size := control(t, panel, LabelFireflySize)
	startBefore := materials.Portal.Uniform(UniformColorStart).Color()

	require.NoError(t, size.SetNumber(120.4))
	assert.Equal(t, float32(120), materials.Fireflies.Uniform(UniformSize).Float())
	assert.Equal(t, float32(120), settings.FireflySize)

	require.NoError(t, size.SetNumber(1000))
	assert.Equal(t, float32(400), materials.Fireflies.Uniform(UniformSize).Float())

	require.NoError(t, size.SetNumber(-5))
	assert.Equal(t, float32(0), materials.Fireflies.Uniform(UniformSize).Float())

	assert.Equal(t, startBefore, materials.Portal.Uniform(UniformColorStart).Color())
}

func TestControl_InvalidColorRejected(t *testing.T) {
	panel, settings, materials, _ := newBoundPanel(t)
	before := materials.Portal.Uniform(UniformColorStart).Color()

	err := control(t, panel, LabelPortalColorStart).SetColor("not-a-color")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidColor))
	assert.Equal(t, "#e2f9a4", settings.PortalColorStart)
	assert.Equal(t, before, materials.Portal.Uniform(UniformColorStart).Color())
}

func TestControl_KindMismatch(t *testing.T) {
	panel, _, _, _ := newBoundPanel(t)
	assert.Error(t, control(t, panel, LabelFireflySize).SetColor("#ffffff"))
	assert.Error(t, control(t, panel, LabelClearColor).SetNumber(1))
}

func TestControl_Nudge(t *testing.T) {
	panel, settings, _, fake := newBoundPanel(t)

	require.NoError(t, control(t, panel, LabelFireflySize).Nudge(3))
	assert.Equal(t, float32(33), settings.FireflySize)

	clear := control(t, panel, LabelClearColor)
	require.NoError(t, clear.Nudge(1))
	// grey has no saturation, so a hue turn leaves it unchanged
	assert.Equal(t, MustColor("#303030"), fake.clear)

	start := control(t, panel, LabelPortalColorStart)
	before := settings.PortalColorStart
	require.NoError(t, start.Nudge(1))
	assert.NotEqual(t, before, settings.PortalColorStart)
}

func TestPanel_SelectWraps(t *testing.T) {
	panel, _, _, _ := newBoundPanel(t)
	assert.Equal(t, LabelClearColor, panel.Selected().Label)

	panel.Select(-1)
	assert.Equal(t, LabelFireflySize, panel.Selected().Label)
	panel.Select(2)
	assert.Equal(t, LabelPortalColorStart, panel.Selected().Label)

	assert.Empty(t, panel.Status())
	panel.Visible = true
	assert.Equal(t, "portalColorStart: #e2f9a4", panel.Status())
}

func TestPanelInputSystem(t *testing.T) {
	panel, settings, _, _ := newBoundPanel(t)
	input := &Input{}
	app := NewApp()
	cmd := app.Commands()

	input.JustPressed[KeyRight] = true
	panelInputSystem(input, panel, cmd)
	assert.Equal(t, float32(30), settings.FireflySize, "hidden panel ignores keys")

	input.JustPressed = [32]bool{}
	input.JustPressed[KeyF1] = true
	panelInputSystem(input, panel, cmd)
	require.True(t, panel.Visible)

	input.JustPressed = [32]bool{}
	input.JustPressed[KeyUp] = true
	panelInputSystem(input, panel, cmd)
	require.Equal(t, LabelFireflySize, panel.Selected().Label)

	input.JustPressed = [32]bool{}
	input.JustPressed[KeyRight] = true
	input.Pressed[KeyShift] = true
	panelInputSystem(input, panel, cmd)
	assert.Equal(t, float32(40), settings.FireflySize)
}
