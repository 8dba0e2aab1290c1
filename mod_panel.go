package portal

// PanelModule drives the debug panel from the keyboard:
//
//	F1          show / hide
//	Up, Down    select control
//	Left, Right nudge value (Shift: x10)
//
// The panel is drawn as a screen overlay at the top right, and the selected
// control is mirrored into the window title when a window is present.
type PanelModule struct{}

func (PanelModule) Install(app *App, cmd *Commands) {
	app.UseSystem(
		System(panelInputSystem).
			InStage(Update),
	)
	overlay, err := NewPanelOverlay(overlayFontSize)
	if err != nil {
		app.Logger().Errorf("panel overlay: %v", err)
	} else {
		cmd.AddResources(overlay)
		app.UseSystem(
			System(panelOverlaySystem).
				InStage(PostUpdate),
		)
	}
	if _, ok := Resource[WindowState](app); ok {
		app.UseSystem(
			System(panelTitleSystem).
				InStage(PostUpdate),
		)
	}
}

func panelInputSystem(input *Input, panel *Panel, cmd *Commands) {
	if input.JustPressed[KeyF1] {
		panel.Visible = !panel.Visible
		if panel.Visible {
			cmd.Logger().Infof("panel %q shown", panel.Title)
		}
	}
	if !panel.Visible {
		return
	}

	if input.JustPressed[KeyUp] {
		panel.Select(-1)
	}
	if input.JustPressed[KeyDown] {
		panel.Select(1)
	}

	dir := 0
	if input.JustPressed[KeyRight] {
		dir++
	}
	if input.JustPressed[KeyLeft] {
		dir--
	}
	if dir == 0 {
		return
	}
	if input.Pressed[KeyShift] {
		dir *= 10
	}

	c := panel.Selected()
	if c == nil {
		return
	}
	if err := c.Nudge(dir); err != nil {
		cmd.Logger().Warnf("panel %s: %v", c.Label, err)
		return
	}
	cmd.Logger().Infof("%s = %s", c.Label, c.Value())
}

func panelOverlaySystem(panel *Panel, overlay *PanelOverlay, surface *Surface) {
	if img, changed := overlay.Render(panel); changed {
		surface.SetOverlay(img)
	}
}

func panelTitleSystem(panel *Panel, ws *WindowState) {
	ws.SetStatus(panel.Status())
}
