// Package config loads the editor settings from storey.yaml.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"gopkg.in/yaml.v3"

	"github.com/gekko3d/storey/placement/core"
	"github.com/gekko3d/storey/placement/engine"
	"github.com/gekko3d/storey/placement/floor"
	"github.com/gekko3d/storey/placement/history"
	"github.com/gekko3d/storey/placement/layout"
	"github.com/gekko3d/storey/placement/nudge"
	"github.com/gekko3d/storey/placement/snap"
)

const (
	DefaultPath = "storey.yaml"
	// EnvPath names a config file when no path is given.
	EnvPath = "STOREY_CONFIG"
)

type Config struct {
	// Floors are merged by index onto the default roster.
	Floors        []floor.Patch       `yaml:"floors"`
	Grid          GridConfig          `yaml:"grid"`
	Nudge         NudgeConfig         `yaml:"nudge"`
	History       HistoryConfig       `yaml:"history"`
	Store         StoreConfig         `yaml:"store"`
	Metrics       MetricsConfig       `yaml:"metrics"`
	Window        WindowConfig        `yaml:"window"`
	Bindings      map[string][]string `yaml:"bindings"`
	Assets        []AssetConfig       `yaml:"assets"`
	DefaultLayout []string            `yaml:"default_layout"`
	// Preset is the file used by the export and import bindings.
	Preset string `yaml:"preset"`
	Debug  bool   `yaml:"debug"`
}

type GridConfig struct {
	Size           float32 `yaml:"size"`
	Vertical       float32 `yaml:"vertical"`
	Adaptive       bool    `yaml:"adaptive"`
	StackToAverage bool    `yaml:"stack_to_average"`
	YawStepDegrees float32 `yaml:"yaw_step_degrees"`
	WheelFraction  float32 `yaml:"wheel_fraction"`
}

type NudgeConfig struct {
	Gap        float32 `yaml:"gap"`
	IntervalMs int     `yaml:"interval_ms"`
}

type HistoryConfig struct {
	Capacity int `yaml:"capacity"`
}

type StoreConfig struct {
	Backend string `yaml:"backend"`
	Path    string `yaml:"path"`
	AppName string `yaml:"app_name"`
}

type MetricsConfig struct {
	Addr string `yaml:"addr"`
}

type WindowConfig struct {
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
	Title  string `yaml:"title"`
}

// AssetConfig declares the local bounds of a unit asset.
type AssetConfig struct {
	Ref string     `yaml:"ref"`
	Min [3]float32 `yaml:"min"`
	Max [3]float32 `yaml:"max"`
}

func (a AssetConfig) Bounds() core.AABB {
	return core.NewAABB(mgl32.Vec3(a.Min), mgl32.Vec3(a.Max))
}

// DefaultBindings maps editor actions to key names. A "ctrl+" prefix marks a
// chord.
func DefaultBindings() map[string][]string {
	return map[string][]string{
		"floor_1":      {"1"},
		"floor_2":      {"2"},
		"floor_3":      {"3"},
		"floor_up":     {"pageup"},
		"floor_down":   {"pagedown"},
		"move_x_neg":   {"a", "left"},
		"move_x_pos":   {"d", "right"},
		"move_z_neg":   {"w", "up"},
		"move_z_pos":   {"s", "down"},
		"move_up":      {"e"},
		"move_down":    {"q"},
		"rotate":       {"r"},
		"undo":         {"ctrl+z"},
		"material":     {"m"},
		"duplicate":    {"c"},
		"delete":       {"delete"},
		"deselect":     {"escape"},
		"fine_adjust":  {"shift"},
		"save":         {"ctrl+s"},
		"quit":         {"ctrl+q"},
		"move_floor_1": {"f1"},
		"move_floor_2": {"f2"},
		"move_floor_3": {"f3"},
		"export":       {"ctrl+e"},
		"import":       {"ctrl+o"},
	}
}

func DefaultAssets() []AssetConfig {
	return []AssetConfig{
		{Ref: "unit1.glb", Max: [3]float32{2, 3, 2}},
		{Ref: "unit2.glb", Max: [3]float32{3, 3, 2}},
		{Ref: "unit3.glb", Max: [3]float32{2, 3, 3}},
		{Ref: "unit4.glb", Max: [3]float32{4, 3, 2}},
	}
}

func Default() *Config {
	d := engine.DefaultConfig()
	return &Config{
		Grid: GridConfig{
			Size:           d.Grid,
			Vertical:       d.Vertical,
			Adaptive:       d.Adaptive,
			StackToAverage: d.StackToAverage,
			YawStepDegrees: 90,
			WheelFraction:  d.WheelFraction,
		},
		Nudge: NudgeConfig{
			Gap:        nudge.DefaultGap,
			IntervalMs: int(nudge.DefaultInterval / time.Millisecond),
		},
		History: HistoryConfig{Capacity: history.DefaultCapacity},
		Store: StoreConfig{
			Backend: layout.BackendGdata,
			Path:    "storey-data",
			AppName: "storey",
		},
		Window:        WindowConfig{Width: 1280, Height: 720, Title: "storey"},
		Bindings:      DefaultBindings(),
		Assets:        DefaultAssets(),
		DefaultLayout: d.DefaultLayout,
		Preset:        "layout-export.json",
	}
}

// Load reads path over the defaults. An empty path falls back to
// $STOREY_CONFIG; a missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		path = os.Getenv(EnvPath)
	}
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := Parse(data, cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML onto cfg and clamps the result.
func Parse(data []byte, cfg *Config) error {
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	cfg.clamp()
	return nil
}

func (c *Config) clamp() {
	c.Grid.Size = snap.ClampStep(c.Grid.Size)
	c.Grid.Vertical = snap.ClampStep(c.Grid.Vertical)
	if c.Grid.YawStepDegrees <= 0 {
		c.Grid.YawStepDegrees = 90
	}
	if c.Grid.WheelFraction <= 0 {
		c.Grid.WheelFraction = engine.DefaultConfig().WheelFraction
	}
	c.Nudge.Gap = max(c.Nudge.Gap, 0)
	if c.Nudge.IntervalMs <= 0 {
		c.Nudge.IntervalMs = int(nudge.DefaultInterval / time.Millisecond)
	}
	c.History.Capacity = min(c.History.Capacity, history.DefaultCapacity)
	if c.History.Capacity <= 0 {
		c.History.Capacity = history.DefaultCapacity
	}
	if c.Bindings == nil {
		c.Bindings = DefaultBindings()
	}
}

// FloorRoster resolves the floor patches into the full roster.
func (c *Config) FloorRoster() []floor.Floor {
	roster := floor.Defaults(max(floor.DefaultCount, len(c.Floors)))
	for i, p := range c.Floors {
		roster[i] = roster[i].Merge(p).Clamp()
	}
	return roster
}

func (c *Config) NudgeInterval() time.Duration {
	return time.Duration(c.Nudge.IntervalMs) * time.Millisecond
}

// Engine converts the settings into an engine configuration.
func (c *Config) Engine() engine.Config {
	return engine.Config{
		Floors:          c.FloorRoster(),
		Grid:            c.Grid.Size,
		Vertical:        c.Grid.Vertical,
		Adaptive:        c.Grid.Adaptive,
		StackToAverage:  c.Grid.StackToAverage,
		YawStep:         c.Grid.YawStepDegrees * math.Pi / 180,
		WheelFraction:   c.Grid.WheelFraction,
		NudgeGap:        c.Nudge.Gap,
		NudgeInterval:   c.NudgeInterval(),
		HistoryCapacity: c.History.Capacity,
		DefaultLayout:   c.DefaultLayout,
	}
}
