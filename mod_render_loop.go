package portal

// RenderLoopModule owns the per-frame tick: publish elapsed time to every
// animated material, step the camera controls, draw once.
type RenderLoopModule struct{}

func (RenderLoopModule) Install(app *App, cmd *Commands) {
	app.UseSystem(
		System(renderLoopSystem).
			InStage(Render),
	)
}

func renderLoopSystem(t *Time, materials *Materials, controls *OrbitControls, scene *Scene, camera *Camera, surface *Surface, cmd *Commands) {
	elapsed := t.Seconds()
	for _, m := range materials.Animated() {
		m.Uniform(UniformTime).Value = elapsed
	}

	controls.Update()

	if err := surface.Render(scene, camera); err != nil {
		cmd.Logger().Warnf("frame %d: %v", t.Frame, err)
	}
}
