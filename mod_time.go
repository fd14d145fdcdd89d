package meadow

import (
	"time"
)

type Time struct {
	Time    time.Time
	Dt      time.Duration
	Elapsed time.Duration
	fixed   time.Duration
}

// TimeModule installs the frame clock. A non-zero FixedDt advances the clock
// by that amount every frame instead of reading the wall clock.
type TimeModule struct {
	FixedDt time.Duration
}

func (mod TimeModule) Install(app *App, cmd *Commands) {
	cmd.AddResources(&Time{
		Time:  time.Now(),
		Dt:    0,
		fixed: mod.FixedDt,
	})
	cmd.UseSystem(System(timeSystem).InStage(Prelude))
}

func timeSystem(timeResource *Time) {
	now := time.Now()
	if timeResource.fixed > 0 {
		now = timeResource.Time.Add(timeResource.fixed)
	}

	timeResource.Dt = now.Sub(timeResource.Time)
	timeResource.Time = now
	timeResource.Elapsed += timeResource.Dt
}
