package engine

import (
	"math"
	"time"

	"github.com/gekko3d/storey/placement/floor"
	"github.com/gekko3d/storey/placement/history"
	"github.com/gekko3d/storey/placement/nudge"
	"github.com/gekko3d/storey/placement/snap"
)

// Config carries the tunables of an Engine. Zero values take defaults.
type Config struct {
	Floors []floor.Floor

	// Grid and Vertical are used until the first unit loads, or always when
	// Adaptive is off.
	Grid     float32
	Vertical float32
	Adaptive bool
	// StackToAverage applies the average unit height to every floor.
	StackToAverage bool

	YawStep         float32
	WheelFraction   float32
	NudgeGap        float32
	NudgeInterval   time.Duration
	HistoryCapacity int

	// DefaultLayout lists the demo assets laid out side by side on floor 0.
	DefaultLayout []string
}

func DefaultConfig() Config {
	return Config{
		Floors:          floor.Defaults(floor.DefaultCount),
		Grid:            1,
		Vertical:        3,
		Adaptive:        true,
		StackToAverage:  true,
		YawStep:         math.Pi / 2,
		WheelFraction:   0.1,
		NudgeGap:        nudge.DefaultGap,
		NudgeInterval:   nudge.DefaultInterval,
		HistoryCapacity: history.DefaultCapacity,
		DefaultLayout:   []string{"unit1.glb", "unit2.glb", "unit3.glb", "unit4.glb"},
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if len(c.Floors) == 0 {
		c.Floors = d.Floors
	}
	c.Grid = snap.ClampStep(c.Grid)
	c.Vertical = snap.ClampStep(c.Vertical)
	if c.YawStep <= 0 {
		c.YawStep = d.YawStep
	}
	if c.WheelFraction <= 0 {
		c.WheelFraction = d.WheelFraction
	}
	if c.NudgeGap < 0 {
		c.NudgeGap = 0
	}
	if c.NudgeInterval <= 0 {
		c.NudgeInterval = d.NudgeInterval
	}
	if c.HistoryCapacity <= 0 || c.HistoryCapacity > history.DefaultCapacity {
		c.HistoryCapacity = d.HistoryCapacity
	}
	return c
}
