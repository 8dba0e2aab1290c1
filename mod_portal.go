package portal

import (
	"fmt"
	"math/rand"
	"time"
)

// PortalModule assembles the diorama. Everything except the model is set up
// synchronously in Install; the model load is started last and finishes
// later on the main thread through sceneLoadSystem.
//
// Install WindowModule first for an on-screen app. Without a window a
// Renderer must be supplied.
type PortalModule struct {
	Config   Config
	Renderer Renderer
	// Decoder defaults to DracoDecoder.
	Decoder MeshDecoder
}

func (m PortalModule) Install(app *App, cmd *Commands) {
	cfg := m.Config
	logger := app.Logger()

	if _, ok := Resource[Time](app); !ok {
		app.UseModules(TimeModule{})
	}

	if _, ok := Resource[AssetServer](app); !ok {
		app.UseModules(AssetServerModule{})
	}
	assets := MustResource[AssetServer](app)

	bakedMap, err := assets.LoadTexture(cfg.TexturePath, TextureOptions{FlipY: false, ColorSpace: SRGBColorSpace})
	if err != nil {
		logger.Errorf("baked texture: %v", err)
		bakedMap = assets.SolidTexture("baked-fallback", Color{R: 1, G: 1, B: 1}, SRGBColorSpace)
	}

	ws, hasWindow := Resource[WindowState](app)
	vp := NewViewport(cfg.Window.Width, cfg.Window.Height, 1)
	if hasWindow {
		w, h := ws.Size()
		vp = NewViewport(w, h, ws.DevicePixelRatio())
	}

	settings := DefaultSettings()
	materials, err := NewMaterials(settings, bakedMap, vp.PixelRatio)
	if err != nil {
		panic(fmt.Sprintf("materials: %v", err))
	}

	camera := NewCamera(vp.Aspect())
	controls := NewOrbitControls(camera)

	scene := NewScene()
	particles := NewParticleBuffer(cfg.FireflyCount, rand.New(rand.NewSource(fireflySeed(cfg.Seed))))
	scene.Add(NewFirefliesNode(particles, materials.Fireflies))

	renderer := m.Renderer
	name := "custom"
	if renderer == nil {
		if !hasWindow {
			panic("PortalModule needs a window or a Renderer")
		}
		wr, err := NewWgpuRenderer(ws, vp)
		if err != nil {
			logger.Errorf("renderer: %v", err)
			panic(err)
		}
		renderer, name = wr, "wgpu"
	}
	renderer.SetSize(vp.Width, vp.Height)
	renderer.SetPixelRatio(vp.PixelRatio)
	app.UseModules(RendererModule{Name: name, Renderer: renderer})

	panel := NewPanel("Debug")
	if err := BindPanel(panel, settings, materials, renderer); err != nil {
		panic(fmt.Sprintf("panel: %v", err))
	}

	cmd.AddResources(settings, materials, camera, controls, scene, vp, panel)

	app.UseModules(
		InputModule{},
		SceneModule{},
		HierarchyModule{},
		OrbitControlsModule{},
		PanelModule{},
		RenderLoopModule{},
	)

	loader := newModelLoader(cfg, m.Decoder)
	cmd.AddResources(NewSceneLoad(cfg.ModelPath, loader.Load(cfg.ModelPath)))

	logger.Infof("portal ready: %d fireflies, model %s loading", particles.Count, cfg.ModelPath)
}

// newModelLoader uses the linked Draco decoder unless one is supplied.
func newModelLoader(cfg Config, decoder MeshDecoder) *GltfLoader {
	loader := NewGltfLoader()
	if cfg.DecoderPath != "" {
		loader.DecoderPath = cfg.DecoderPath
	}
	if decoder == nil {
		decoder = DracoDecoder{}
	}
	loader.Decoder = decoder
	return loader
}

// fireflySeed keeps a configured seed, and draws one from the clock for 0.
func fireflySeed(seed int64) int64 {
	if seed != 0 {
		return seed
	}
	return time.Now().UnixNano()
}
