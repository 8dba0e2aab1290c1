package portal

import (
	"github.com/go-gl/glfw/v3.3/glfw"
)

const (
	KeyEscape int = iota
	KeyRight
	KeyLeft
	KeyDown
	KeyUp
	KeyF1
	KeyShift
	MouseButtonLeft
	MouseButtonRight
	MouseButtonMiddle
)

type InputModule struct{}

// Input is the frame snapshot of keyboard and pointer state.
type Input struct {
	Pressed [32]bool

	JustPressed [32]bool

	MouseX, MouseY           float64
	MouseDeltaX, MouseDeltaY float64
	ScrollY                  float64

	started bool
}

// Install always provides the Input resource. Without a window it stays
// zeroed, so input-driven systems run as no-ops in headless apps.
func (mod InputModule) Install(app *App, cmd *Commands) {
	cmd.AddResources(&Input{})
	if _, ok := Resource[WindowState](app); !ok {
		return
	}
	app.UseSystem(
		System(inputSystem).
			InStage(PreUpdate),
	)
}

// inputSystem samples the window after the driver has polled events.
func inputSystem(s *WindowState, input *Input, cmd *Commands) {
	for key, glfwKey := range keyToGlfw {
		input.setButton(key, s.windowGlfw.GetKey(glfwKey))
	}
	for btn, glfwBtn := range mouseToGlfw {
		input.setButton(btn, s.windowGlfw.GetMouseButton(glfwBtn))
	}

	mx, my := s.windowGlfw.GetCursorPos()
	input.moveCursor(mx, my)
	input.ScrollY = s.takeScroll()

	if input.JustPressed[KeyEscape] {
		cmd.Quit()
	}
}

func (input *Input) setButton(key int, action glfw.Action) {
	input.JustPressed[key] = false

	if glfw.Press == action {
		if !input.Pressed[key] {
			input.JustPressed[key] = true
		}
		input.Pressed[key] = true
	} else if glfw.Release == action {
		input.Pressed[key] = false
	}
}

func (input *Input) moveCursor(mx, my float64) {
	if input.started {
		input.MouseDeltaX = mx - input.MouseX
		input.MouseDeltaY = my - input.MouseY
	}
	input.started = true
	input.MouseX = mx
	input.MouseY = my
}

var keyToGlfw = map[int]glfw.Key{
	KeyEscape: glfw.KeyEscape,
	KeyRight:  glfw.KeyRight,
	KeyLeft:   glfw.KeyLeft,
	KeyDown:   glfw.KeyDown,
	KeyUp:     glfw.KeyUp,
	KeyF1:     glfw.KeyF1,
	KeyShift:  glfw.KeyLeftShift,
}

var mouseToGlfw = map[int]glfw.MouseButton{
	MouseButtonLeft:   glfw.MouseButtonLeft,
	MouseButtonRight:  glfw.MouseButtonRight,
	MouseButtonMiddle: glfw.MouseButtonMiddle,
}
