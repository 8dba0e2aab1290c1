package portal

import (
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"github.com/stretchr/testify/require"
)

// fakeRenderer records what the loop hands it instead of drawing.
type fakeRenderer struct {
	width, height int
	pixelRatio    float32
	clear         Color

	frames   int
	uTimes   []map[string]float32 // per frame, material name -> uTime
	drawn    [][]*Node
	released bool

	overlay     *image.RGBA
	overlaySets int
}

func (f *fakeRenderer) SetSize(w, h int)              { f.width, f.height = w, h }
func (f *fakeRenderer) SetPixelRatio(r float32)       { f.pixelRatio = r }
func (f *fakeRenderer) SetClearColor(c Color)         { f.clear = c }
func (f *fakeRenderer) Release()                      { f.released = true }
func (f *fakeRenderer) SetOverlay(img *image.RGBA)    { f.overlay = img; f.overlaySets++ }
func (f *fakeRenderer) lastDrawn() []*Node            { return f.drawn[len(f.drawn)-1] }
func (f *fakeRenderer) lastTimes() map[string]float32 { return f.uTimes[len(f.uTimes)-1] }

func (f *fakeRenderer) Render(scene *Scene, camera *Camera) error {
	f.frames++
	times := map[string]float32{}
	nodes := scene.Drawables()
	for _, n := range nodes {
		if sm, ok := n.Material.(*ShaderMaterial); ok && sm.Uniforms.Has(UniformTime) {
			times[sm.Name] = sm.Uniform(UniformTime).Float()
		}
	}
	f.uTimes = append(f.uTimes, times)
	f.drawn = append(f.drawn, nodes)
	return nil
}

// writeTriangleGLB writes a binary glTF whose default scene has one
// top-level node per name, all sharing a single textured triangle.
func writeTriangleGLB(t *testing.T, dir string, names ...string) string {
	t.Helper()
	return saveGLB(t, dir, triangleDoc(names...))
}

func triangleDoc(names ...string) *gltf.Document {
	doc := gltf.NewDocument()

	pos := modeler.WritePosition(doc, [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}})
	uv := modeler.WriteTextureCoord(doc, [][2]float32{{0, 0}, {1, 0}, {0, 1}})
	idx := modeler.WriteIndices(doc, []uint16{0, 1, 2})

	doc.Meshes = []*gltf.Mesh{{
		Name: "triangle",
		Primitives: []*gltf.Primitive{{
			Indices:    gltf.Index(idx),
			Attributes: map[string]int{gltf.POSITION: pos, gltf.TEXCOORD_0: uv},
		}},
	}}
	for i, name := range names {
		doc.Nodes = append(doc.Nodes, &gltf.Node{
			Name:        name,
			Mesh:        gltf.Index(0),
			Translation: [3]float64{float64(i), 0, 0},
			Rotation:    [4]float64{0, 0, 0, 1},
			Scale:       [3]float64{1, 1, 1},
		})
		doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, i)
	}
	return doc
}

func saveGLB(t *testing.T, dir string, doc *gltf.Document) string {
	t.Helper()
	path := filepath.Join(dir, "diorama.glb")
	require.NoError(t, gltf.SaveBinary(doc, path))
	return path
}

func writePNG(t *testing.T, dir string, w, h int) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(y * 10), G: uint8(x * 10), B: 7, A: 255})
		}
	}
	path := filepath.Join(dir, "baked.png")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
	return path
}

var allDioramaNodes = []string{NodeBaked, NodePoleLightA, NodePoleLightB, NodePortalLight}

// headlessConfig points at a freshly written asset pair in a temp dir.
func headlessConfig(t *testing.T, nodes ...string) Config {
	t.Helper()
	dir := t.TempDir()
	cfg := DefaultConfig()
	cfg.Window.Width, cfg.Window.Height = 800, 600
	cfg.ModelPath = writeTriangleGLB(t, dir, nodes...)
	cfg.TexturePath = writePNG(t, dir, 4, 4)
	cfg.Seed = 42
	return cfg
}

func newHeadlessApp(cfg Config, r Renderer) *App {
	return NewAppBuilder().
		UseModule(quietLogging{}).
		UseModule(TimeModule{}).
		UseModule(PortalModule{Config: cfg, Renderer: r}).
		Build()
}

type quietLogging struct{}

func (quietLogging) Install(app *App, cmd *Commands) {
	cmd.AddResources(NewWriterLogger("test", true, io.Discard, io.Discard))
}

// advanceUntilLoaded ticks with a fixed delta until the model load resolves.
func advanceUntilLoaded(t *testing.T, app *App, dt time.Duration) {
	t.Helper()
	load := MustResource[SceneLoad](app)
	for i := 0; i < 500 && !load.Done(); i++ {
		app.Advance(dt)
		if !load.Done() {
			time.Sleep(2 * time.Millisecond)
		}
	}
	require.True(t, load.Done(), "model load did not resolve")
}
