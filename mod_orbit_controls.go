package portal

// OrbitControlsModule feeds pointer input into the OrbitControls resource.
// The controls themselves are stepped by the render loop.
type OrbitControlsModule struct{}

func (m OrbitControlsModule) Install(app *App, cmd *Commands) {
	app.UseSystem(
		System(orbitInputSystem).
			InStage(Update),
	)
}

func orbitInputSystem(input *Input, controls *OrbitControls, vp *Viewport) {
	dx, dy := float32(input.MouseDeltaX), float32(input.MouseDeltaY)
	if dx != 0 || dy != 0 {
		switch {
		case input.Pressed[MouseButtonLeft]:
			controls.Rotate(dx, dy, vp.Height)
		case input.Pressed[MouseButtonRight], input.Pressed[MouseButtonMiddle]:
			controls.Pan(dx, dy, vp.Height)
		}
	}
	if input.ScrollY != 0 {
		controls.Zoom(float32(input.ScrollY))
	}
}
