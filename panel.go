package portal

import (
	"fmt"
	"math"
	"strconv"
)

// hue step for keyboard nudges on color controls
const colorNudgeDegrees = 5

type ControlKind int

const (
	ColorControl ControlKind = iota
	SliderControl
)

// Control binds one editable property of a Settings value. Setting it
// writes the property and then runs its change handlers in order.
type Control struct {
	Label string
	Kind  ControlKind

	Min, Max, Step float32

	color    *string
	number   *float32
	onChange []func()
}

// OnChange appends a handler run after every accepted edit.
func (c *Control) OnChange(fn func()) *Control {
	c.onChange = append(c.onChange, fn)
	return c
}

// Value is the current property value as displayed.
func (c *Control) Value() string {
	if c.Kind == ColorControl {
		return *c.color
	}
	return strconv.FormatFloat(float64(*c.number), 'f', -1, 32)
}

// SetColor accepts a hex color. Invalid input is rejected and nothing runs.
func (c *Control) SetColor(hex string) error {
	if c.Kind != ColorControl {
		return fmt.Errorf("control %q is not a color", c.Label)
	}
	if _, err := ParseColor(hex); err != nil {
		return err
	}
	*c.color = hex
	c.changed()
	return nil
}

// SetNumber snaps v to the control's step and clamps it into [Min, Max].
func (c *Control) SetNumber(v float32) error {
	if c.Kind != SliderControl {
		return fmt.Errorf("control %q is not a slider", c.Label)
	}
	if math.IsNaN(float64(v)) {
		return fmt.Errorf("control %q: value is NaN", c.Label)
	}
	*c.number = c.snap(v)
	c.changed()
	return nil
}

func (c *Control) snap(v float32) float32 {
	if c.Step > 0 {
		steps := math.Round(float64((v - c.Min) / c.Step))
		v = c.Min + float32(steps)*c.Step
	}
	return min(max(v, c.Min), c.Max)
}

// Nudge moves the value dir increments: dir steps for a slider, dir*5
// degrees of hue for a color.
func (c *Control) Nudge(dir int) error {
	if c.Kind == SliderControl {
		return c.SetNumber(*c.number + float32(dir)*c.Step)
	}
	current, err := ParseColor(*c.color)
	if err != nil {
		return err
	}
	return c.SetColor(current.RotateHue(float64(dir * colorNudgeDegrees)).Hex())
}

func (c *Control) changed() {
	for _, fn := range c.onChange {
		fn()
	}
}

// Panel is the debug panel: an ordered list of controls with a cursor.
type Panel struct {
	Title   string
	Width   int
	Visible bool

	controls []*Control
	selected int
}

const DefaultPanelWidth = 400

func NewPanel(title string) *Panel {
	return &Panel{Title: title, Width: DefaultPanelWidth}
}

func (p *Panel) AddColor(label string, target *string) *Control {
	c := &Control{Label: label, Kind: ColorControl, color: target}
	p.controls = append(p.controls, c)
	return c
}

func (p *Panel) AddSlider(label string, target *float32, min, max, step float32) *Control {
	c := &Control{Label: label, Kind: SliderControl, number: target, Min: min, Max: max, Step: step}
	p.controls = append(p.controls, c)
	return c
}

func (p *Panel) Controls() []*Control {
	return p.controls
}

func (p *Panel) Control(label string) (*Control, bool) {
	for _, c := range p.controls {
		if c.Label == label {
			return c, true
		}
	}
	return nil, false
}

// Select moves the cursor by delta, wrapping around.
func (p *Panel) Select(delta int) {
	n := len(p.controls)
	if n == 0 {
		return
	}
	p.selected = ((p.selected+delta)%n + n) % n
}

func (p *Panel) Selected() *Control {
	if len(p.controls) == 0 {
		return nil
	}
	return p.controls[p.selected]
}

// Status is the one-line summary of the selected control.
func (p *Panel) Status() string {
	c := p.Selected()
	if !p.Visible || c == nil {
		return ""
	}
	return fmt.Sprintf("%s: %s", c.Label, c.Value())
}

// Panel control labels.
const (
	LabelClearColor       = "clearColor"
	LabelPortalColorStart = "portalColorStart"
	LabelPortalColorEnd   = "portalColorEnd"
	LabelFireflySize      = "firefliesSize"
)

// BindPanel registers the four tunables. Each control's handler touches only
// its own target: the renderer clear color, one portal uniform, or the
// firefly size uniform. The renderer receives the starting clear color.
func BindPanel(panel *Panel, settings *Settings, materials *Materials, clear ClearColorSetter) error {
	clearColor, err := ParseColor(settings.ClearColor)
	if err != nil {
		return err
	}
	clear.SetClearColor(clearColor)

	panel.AddColor(LabelClearColor, &settings.ClearColor).OnChange(func() {
		clear.SetClearColor(MustColor(settings.ClearColor))
	})
	panel.AddColor(LabelPortalColorStart, &settings.PortalColorStart).OnChange(func() {
		materials.Portal.Uniform(UniformColorStart).Value = MustColor(settings.PortalColorStart)
	})
	panel.AddColor(LabelPortalColorEnd, &settings.PortalColorEnd).OnChange(func() {
		materials.Portal.Uniform(UniformColorEnd).Value = MustColor(settings.PortalColorEnd)
	})
	panel.AddSlider(LabelFireflySize, &settings.FireflySize, 0, 400, 1).OnChange(func() {
		materials.Fireflies.Uniform(UniformSize).Value = settings.FireflySize
	})
	return nil
}
