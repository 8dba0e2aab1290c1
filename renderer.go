package portal

import (
	"fmt"
	"image"
	"reflect"
)

// Renderer draws a scene graph through a camera into the window surface.
// Width and height are logical pixels; the drawing buffer is that size
// times the pixel ratio.
type Renderer interface {
	ClearColorSetter
	SetSize(width, height int)
	SetPixelRatio(ratio float32)
	// SetOverlay replaces the screen-space panel image. nil hides it.
	SetOverlay(img *image.RGBA)
	Render(scene *Scene, camera *Camera) error
	Release()
}

type ClearColorSetter interface {
	SetClearColor(c Color)
}

// Surface is the resource slot holding the active renderer.
type Surface struct {
	Renderer
}

// RendererTag marks that a renderer has been installed into the App.
// Only one renderer should be installed at a time.
type RendererTag struct {
	Name string
}

// RendererModule installs r as the app's Surface.
type RendererModule struct {
	Name     string
	Renderer Renderer
}

func (m RendererModule) Install(app *App, cmd *Commands) {
	ensureSingleRenderer(app, m.Name)
	cmd.AddResources(&Surface{Renderer: m.Renderer})
	app.Logger().Infof("Renderer selected: %s", m.Name)
}

// ensureSingleRenderer enforces a single renderer invariant.
// If a different renderer is already installed, it panics with a clear message.
func ensureSingleRenderer(app *App, name string) {
	t := reflect.TypeOf((*RendererTag)(nil)).Elem()
	if res, ok := app.resources[t]; ok {
		if tag, ok2 := res.(*RendererTag); ok2 {
			// Also log via injected logger if present, then fail fast
			app.Logger().Errorf("Multiple renderers installed: %s and %s", tag.Name, name)
			panic(fmt.Sprintf("Multiple renderers installed: %s and %s", tag.Name, name))
		}
		panic("RendererTag resource present with unexpected type")
	}
	app.addResources(&RendererTag{Name: name})
}

// materialUniformData packs a material's group-2 uniform block in the
// std140-like layout its program declares. Baked materials have no block.
func materialUniformData(m Material) []float32 {
	switch mat := m.(type) {
	case *BasicMaterial:
		return []float32{mat.Color.R, mat.Color.G, mat.Color.B, 1}
	case *ShaderMaterial:
		switch mat.Program.Name {
		case "portal":
			start := uniformColor(mat, UniformColorStart)
			end := uniformColor(mat, UniformColorEnd)
			return []float32{
				start.R, start.G, start.B, 0,
				end.R, end.G, end.B, 0,
				uniformFloat(mat, UniformTime), 0, 0, 0,
			}
		case "fireflies":
			return []float32{
				uniformFloat(mat, UniformTime),
				uniformFloat(mat, UniformPixelRatio),
				uniformFloat(mat, UniformSize),
				0,
			}
		}
	}
	return nil
}

func uniformFloat(m *ShaderMaterial, name string) float32 {
	if u := m.Uniform(name); u != nil {
		return u.Float()
	}
	return 0
}

func uniformColor(m *ShaderMaterial, name string) Color {
	if u := m.Uniform(name); u != nil {
		return u.Color()
	}
	return Color{}
}

// drawOrder puts opaque drawables first, then transparent ones, keeping
// scene order within each group.
func drawOrder(nodes []*Node) []*Node {
	ordered := make([]*Node, 0, len(nodes))
	var transparent []*Node
	for _, n := range nodes {
		if sm, ok := n.Material.(*ShaderMaterial); ok && sm.Transparent {
			transparent = append(transparent, n)
			continue
		}
		ordered = append(ordered, n)
	}
	return append(ordered, transparent...)
}
