package portal

import (
	"time"
)

// Scheduler is what a driver calls once per display refresh.
type Scheduler interface {
	Advance(dt time.Duration)
	Quitting() bool
}

// Driver owns frame pacing. It decides when to tick, never what a tick does.
type Driver interface {
	Drive(s Scheduler) error
}

// Run hands the app to a driver which calls Advance once per frame.
func (app *App) Run(driver Driver) error {
	return driver.Drive(app)
}

// WindowDriver ticks once per event poll until the window is closed. With vsync
// on the surface, presentation blocks and this paces to the display refresh.
type WindowDriver struct {
	Window *WindowState
}

func (d WindowDriver) Drive(s Scheduler) error {
	last := time.Now()
	first := true
	for !d.Window.ShouldClose() && !s.Quitting() {
		d.Window.PollEvents()

		now := time.Now()
		dt := now.Sub(last)
		last = now
		if first {
			dt = 0
			first = false
		}
		s.Advance(dt)
	}
	return nil
}

// StepDriver advances with synthetic deltas, one per entry. Used headless and in tests.
type StepDriver struct {
	Steps []time.Duration
}

// FixedSteps repeats one delta n times.
func FixedSteps(n int, dt time.Duration) StepDriver {
	steps := make([]time.Duration, n)
	for i := range steps {
		steps[i] = dt
	}
	return StepDriver{Steps: steps}
}

func (d StepDriver) Drive(s Scheduler) error {
	for _, dt := range d.Steps {
		if s.Quitting() {
			break
		}
		s.Advance(dt)
	}
	return nil
}
