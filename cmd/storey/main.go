// Command storey runs the layout editor, in a window or as a line-oriented
// shell on stdin.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/gekko3d/storey"
	"github.com/gekko3d/storey/internal/config"
	"github.com/gekko3d/storey/placement/layout"
	"github.com/gekko3d/storey/platform/glfwinput"
)

func main() {
	var (
		configPath  = flag.String("config", "", "config file (default $"+config.EnvPath+" or none)")
		backend     = flag.String("store", "", "layout store backend: memory, gdata, badger or sqlite")
		storePath   = flag.String("store-path", "", "badger directory or sqlite file")
		metricsAddr = flag.String("metrics-addr", "", "serve prometheus metrics on this address")
		windowed    = flag.Bool("window", false, "open an editor window instead of the shell")
		watch       = flag.Bool("watch", true, "reload floor settings when the config file changes")
		debug       = flag.Bool("debug", false, "enable debug logging")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "storey: %v\n", err)
		os.Exit(1)
	}
	if *backend != "" {
		cfg.Store.Backend = *backend
	}
	if *storePath != "" {
		cfg.Store.Path = *storePath
	}
	if *metricsAddr != "" {
		cfg.Metrics.Addr = *metricsAddr
	}
	cfg.Debug = cfg.Debug || *debug

	if err := run(cfg, *configPath, *windowed, *watch); err != nil {
		fmt.Fprintf(os.Stderr, "storey: %v\n", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, configPath string, windowed, watch bool) error {
	store, err := layout.Open(cfg.Store.Backend, cfg.Store.Path, cfg.Store.AppName)
	if err != nil {
		return err
	}
	if !windowed {
		app := headlessApp(cfg, configPath, watch, store)
		defer closeApp(app)
		return newShell(app, os.Stdout).Run(context.Background(), os.Stdin)
	}

	win, err := glfwinput.Open(cfg.Window.Width, cfg.Window.Height, cfg.Window.Title)
	if err != nil {
		_ = store.Close()
		return fmt.Errorf("open window: %w", err)
	}
	defer win.Close()

	storey.NewAppBuilder().
		UseStates(storey.StateLoading, storey.StateQuit).
		UseModule(editorModules(cfg, configPath, watch, store, glfwinput.Module{Window: win})...).
		Build().
		Run()
	return nil
}

// editorModules lists the modules of the windowed editor in install order.
func editorModules(cfg *config.Config, configPath string, watch bool, store layout.Store, input storey.Module) []storey.Module {
	return []storey.Module{
		storey.LoggingModule{Prefix: "storey", Debug: cfg.Debug},
		storey.TimeModule{},
		input,
		storey.CameraModule{},
		storey.AssetServerModule{Assets: cfg.Assets},
		storey.PlacementModule{Config: cfg.Engine(), Store: store},
		storey.ConfigModule{Config: cfg, Path: configPath, Watch: watch},
		storey.HierarchyModule{},
		storey.UnitsModule{},
		storey.FloorsModule{},
		storey.SpatialGridModule{},
		storey.NudgeModule{},
		storey.EditorModule{Bindings: cfg.Bindings},
		storey.LifecycleModule{},
		storey.PresetsModule{Path: cfg.Preset},
		storey.MetricsModule{Addr: cfg.Metrics.Addr},
	}
}

// headlessApp wires the engine without a window: no input, selection or
// scene entities.
func headlessApp(cfg *config.Config, configPath string, watch bool, store layout.Store) *storey.App {
	return storey.NewApp().UseModules(
		storey.LoggingModule{Prefix: "storey", Debug: cfg.Debug},
		storey.TimeModule{},
		storey.AssetServerModule{Assets: cfg.Assets},
		storey.PlacementModule{Config: cfg.Engine(), Store: store},
		storey.ConfigModule{Config: cfg, Path: configPath, Watch: watch},
		storey.MetricsModule{Addr: cfg.Metrics.Addr},
	)
}

func closeApp(app *storey.App) {
	log := app.Logger()
	if m, ok := storey.Resource[storey.Metrics](app); ok {
		if err := m.Close(); err != nil {
			log.Warnf("metrics: %v", err)
		}
	}
	if r, ok := storey.Resource[storey.ConfigReload](app); ok {
		_ = r.Close()
	}
	if p, ok := storey.Resource[storey.Placement](app); ok {
		if err := p.Close(); err != nil {
			log.Errorf("close store: %v", err)
		}
	}
}
