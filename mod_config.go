package storey

import (
	"context"

	"github.com/gekko3d/storey/internal/config"
	"github.com/gekko3d/storey/placement/engine"
)

// ConfigReload is the reloadable configuration, kept current with its file.
type ConfigReload struct {
	Config  *config.Config
	Reloads int
	watcher *config.Watcher
}

// ConfigModule publishes the configuration and, when Watch is set, applies
// floor settings from the file whenever it is written. Install it after
// PlacementModule.
type ConfigModule struct {
	Config *config.Config
	Path   string
	Watch  bool
}

func (mod ConfigModule) Install(app *App, cmd *Commands) {
	cfg := mod.Config
	if cfg == nil {
		cfg = config.Default()
	}
	res := &ConfigReload{Config: cfg}
	if mod.Watch && mod.Path != "" {
		w, err := config.Watch(mod.Path)
		if err != nil {
			app.Logger().Warnf("config: not watching %s: %v", mod.Path, err)
		} else {
			res.watcher = w
		}
	}
	cmd.AddResources(res)

	if res.watcher == nil {
		return
	}
	app.UseSystem(
		System(configReloadSystem).
			InStage(Prelude).
			RunAlways(),
	)
	if app.stateful {
		app.UseSystem(
			System(func(r *ConfigReload) { r.Close() }).
				InStage(Finale).
				InState(OnEnter(StateQuit)),
		)
	}
}

func (r *ConfigReload) Close() error {
	if r.watcher == nil {
		return nil
	}
	return r.watcher.Close()
}

func configReloadSystem(cmd *Commands, r *ConfigReload, eng *engine.Engine) {
	log := cmd.app.Logger()
	changed, err := r.watcher.Poll()
	if err != nil {
		log.Warnf("config watch: %v", err)
	}
	if !changed {
		return
	}

	cfg, err := config.Load(r.watcher.Path())
	if err != nil {
		log.Errorf("config reload: %v", err)
		return
	}
	r.Config = cfg
	r.Reloads++
	eng.ApplyFloors(context.Background(), cfg.FloorRoster())
	log.SetDebug(cfg.Debug)
	log.Infof("config reloaded from %s", r.watcher.Path())
}
