package storey

import (
	"time"
)

type Time struct {
	Time time.Time
	Dt   time.Duration
	// Frame counts executed frames.
	Frame uint64
}

// TimeModule advances the Time resource at the start of every frame. Now
// replaces the wall clock, mostly in tests.
type TimeModule struct {
	Now func() time.Time
}

func (mod TimeModule) Install(app *App, cmd *Commands) {
	now := mod.Now
	if now == nil {
		now = time.Now
	}
	cmd.AddResources(&Time{Time: now()})
	app.UseSystem(
		System(func(t *Time) { advanceTime(t, now()) }).
			InStage(Prelude).
			RunAlways(),
	)
}

func advanceTime(t *Time, now time.Time) {
	t.Dt = now.Sub(t.Time)
	t.Time = now
	t.Frame++
}
