package portal

import (
	"time"
)

// Time is the loop clock. Elapsed only grows; it is the sum of every delta
// the scheduler has been advanced by.
type Time struct {
	Elapsed float64 // seconds since the loop started
	Dt      time.Duration
	Frame   uint64
}

// Seconds is the elapsed time as a shader-friendly float.
func (t *Time) Seconds() float32 {
	return float32(t.Elapsed)
}

type TimeModule struct {
}

func (mod TimeModule) Install(app *App, cmd *Commands) {
	cmd.AddResources(&Time{})
	app.UseSystem(
		System(timeSystem).
			InStage(Prelude),
	)
}

func timeSystem(timeResource *Time, cmd *Commands) {
	dt := cmd.Dt()
	timeResource.Dt = dt
	timeResource.Elapsed += dt.Seconds()
	timeResource.Frame++
}
