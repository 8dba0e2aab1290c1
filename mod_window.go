package portal

import (
	"runtime"

	"github.com/go-gl/glfw/v3.3/glfw"
)

// WindowState is the single desktop window. GLFW callbacks only record what
// happened; frame systems consume it on the main thread.
type WindowState struct {
	windowGlfw *glfw.Window
	title      string
	status     string

	resized bool
	scrollY float64
}

// WindowModule creates the shared window and wires resize handling. If
// Width/Height are zero, sensible defaults are used.
type WindowModule struct {
	Width  int
	Height int
	Title  string
}

func (m WindowModule) Install(app *App, cmd *Commands) {
	if _, ok := Resource[WindowState](app); ok {
		// Already created by another module (or user code); no-op to preserve single-window invariant.
		return
	}
	width, height, title := m.Width, m.Height, m.Title
	if width <= 0 {
		width = 1280
	}
	if height <= 0 {
		height = 720
	}
	if title == "" {
		title = "Portal"
	}

	ws, err := createWindowState(width, height, title)
	if err != nil {
		panic(err)
	}
	app.addResources(ws)
	app.Logger().Infof("Created window (%dx%d) '%s'", width, height, title)

	app.UseSystem(
		System(windowResizeSystem).
			InStage(PreUpdate),
	)
}

func createWindowState(width, height int, title string) (*WindowState, error) {
	runtime.LockOSThread()
	if err := glfw.Init(); err != nil {
		return nil, err
	}

	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI) // Important: tell GLFW we don't want OpenGL
	glfw.WindowHint(glfw.Resizable, glfw.True)
	glfw.WindowHint(glfw.ScaleToMonitor, glfw.True)

	win, err := glfw.CreateWindow(width, height, title, nil, nil)
	if err != nil {
		return nil, err
	}

	ws := &WindowState{
		windowGlfw: win,
		title:      title,
	}
	win.SetFramebufferSizeCallback(func(_ *glfw.Window, w, h int) {
		ws.resized = true
	})
	win.SetContentScaleCallback(func(_ *glfw.Window, x, y float32) {
		ws.resized = true
	})
	win.SetScrollCallback(func(_ *glfw.Window, _, yoff float64) {
		ws.scrollY += yoff
	})
	return ws, nil
}

func (s *WindowState) ShouldClose() bool {
	return s.windowGlfw.ShouldClose()
}

func (s *WindowState) PollEvents() {
	glfw.PollEvents()
}

// Size is the logical window size, before device pixel density.
func (s *WindowState) Size() (int, int) {
	return s.windowGlfw.GetSize()
}

// DevicePixelRatio is physical framebuffer pixels per logical pixel.
func (s *WindowState) DevicePixelRatio() float32 {
	w, _ := s.windowGlfw.GetSize()
	fbw, _ := s.windowGlfw.GetFramebufferSize()
	sx, _ := s.windowGlfw.GetContentScale()
	return devicePixelRatio(w, fbw, sx)
}

// devicePixelRatio prefers the framebuffer to window ratio. Where the two
// sizes match (Windows and X11 scale the window itself) the monitor content
// scale is the density.
func devicePixelRatio(windowWidth, framebufferWidth int, contentScale float32) float32 {
	if windowWidth > 0 && framebufferWidth > 0 && framebufferWidth != windowWidth {
		return float32(framebufferWidth) / float32(windowWidth)
	}
	if contentScale > 0 {
		return contentScale
	}
	return 1
}

// SetStatus shows text after the base title.
func (s *WindowState) SetStatus(status string) {
	if status == s.status {
		return
	}
	s.status = status
	if status == "" {
		s.windowGlfw.SetTitle(s.title)
		return
	}
	s.windowGlfw.SetTitle(s.title + " - " + status)
}

func (s *WindowState) Destroy() {
	s.windowGlfw.Destroy()
	glfw.Terminate()
}

func (s *WindowState) takeResize() bool {
	r := s.resized
	s.resized = false
	return r
}

func (s *WindowState) takeScroll() float64 {
	y := s.scrollY
	s.scrollY = 0
	return y
}

func windowResizeSystem(ws *WindowState, vp *Viewport, camera *Camera, surface *Surface, materials *Materials) {
	if !ws.takeResize() {
		return
	}
	w, h := ws.Size()
	applyWindowResize(w, h, ws.DevicePixelRatio(), vp, camera, surface, materials.Fireflies)
}

// applyWindowResize reports whether the new size was applied. A minimized
// window reports a zero size and is skipped.
func applyWindowResize(w, h int, dpr float32, vp *Viewport, camera *Camera, renderer Renderer, fireflies *ShaderMaterial) bool {
	if w <= 0 || h <= 0 {
		return false
	}
	Resize(vp, w, h, dpr, camera, renderer, fireflies)
	return true
}
