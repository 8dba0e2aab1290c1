package portal

// MaxPixelRatio caps the render resolution multiplier on dense displays.
const MaxPixelRatio float32 = 2

// Viewport tracks the logical drawing size and the effective pixel ratio.
type Viewport struct {
	Width      int
	Height     int
	PixelRatio float32
}

// ClampPixelRatio returns min(devicePixelRatio, MaxPixelRatio). Unknown or
// non-positive ratios count as 1.
func ClampPixelRatio(devicePixelRatio float32) float32 {
	if devicePixelRatio <= 0 {
		return 1
	}
	return min(devicePixelRatio, MaxPixelRatio)
}

func NewViewport(width, height int, devicePixelRatio float32) *Viewport {
	return &Viewport{
		Width:      width,
		Height:     height,
		PixelRatio: ClampPixelRatio(devicePixelRatio),
	}
}

func (v *Viewport) Aspect() float32 {
	if v.Height <= 0 {
		return 1
	}
	return float32(v.Width) / float32(v.Height)
}

// FramebufferSize is the drawing-buffer size in physical pixels.
func (v *Viewport) FramebufferSize() (uint32, uint32) {
	w := uint32(float32(v.Width)*v.PixelRatio + 0.5)
	h := uint32(float32(v.Height)*v.PixelRatio + 0.5)
	return max(w, 1), max(h, 1)
}

// Resize applies a new window size to every consumer: the viewport itself,
// the camera projection, the renderer, and the firefly pixel-ratio uniform.
// fireflies may be nil.
func Resize(vp *Viewport, width, height int, devicePixelRatio float32, camera *Camera, renderer Renderer, fireflies *ShaderMaterial) {
	vp.Width = width
	vp.Height = height
	vp.PixelRatio = ClampPixelRatio(devicePixelRatio)

	camera.Aspect = vp.Aspect()
	camera.UpdateProjectionMatrix()

	renderer.SetSize(width, height)
	renderer.SetPixelRatio(vp.PixelRatio)

	if fireflies != nil {
		if u := fireflies.Uniform(UniformPixelRatio); u != nil {
			u.Value = vp.PixelRatio
		}
	}
}
