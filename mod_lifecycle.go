package storey

import (
	"fmt"
	"path/filepath"
)

// LifetimeComponent removes its entity once TimeLeft seconds have passed.
type LifetimeComponent struct {
	TimeLeft float32
}

// Alert marks an on-screen message.
type Alert struct {
	Message string
}

// LifecycleModule expires timed entities and turns rejected assets into
// short-lived alerts. Alerts need PlacementModule.
type LifecycleModule struct {
	// AlertSeconds is how long an alert stays up.
	AlertSeconds float32
}

func (mod LifecycleModule) Install(app *App, cmd *Commands) {
	seconds := mod.AlertSeconds
	if seconds <= 0 {
		seconds = 4
	}
	app.UseSystem(
		System(lifetimeSystem).
			InStage(PostUpdate).
			RunAlways(),
	)
	if _, ok := Resource[Changes](app); ok {
		app.UseSystem(
			System(func(cmd *Commands, changes *Changes) { alertSystem(cmd, changes, seconds) }).
				InStage(PostUpdate).
				RunAlways(),
		)
	}
}

func lifetimeSystem(time *Time, cmd *Commands) {
	dt := float32(time.Dt.Seconds())
	if dt <= 0 {
		return
	}
	log := cmd.app.Logger()
	MakeQuery1[LifetimeComponent](cmd).Map(func(eid EntityId, lt *LifetimeComponent) bool {
		lt.TimeLeft -= dt
		if lt.TimeLeft <= 0 {
			log.Debugf("lifecycle: entity %d expired", eid)
			cmd.RemoveEntity(eid)
		}
		return true
	})
}

func alertSystem(cmd *Commands, changes *Changes, seconds float32) {
	if len(changes.Rejected) == 0 {
		return
	}
	shown := MakeQuery1[Alert](cmd).Count()
	for i, r := range changes.Rejected {
		msg := fmt.Sprintf("Cannot load %s: %v", filepath.Base(r.Path), r.Err)
		cmd.AddEntity(
			Alert{Message: msg},
			TextComponent{
				Text:     msg,
				Position: [2]float32{16, 48 + 24*float32(shown+i)},
				Scale:    1,
				Color:    [4]float32{1, 0.4, 0.4, 1},
			},
			LifetimeComponent{TimeLeft: seconds},
		)
	}
}
