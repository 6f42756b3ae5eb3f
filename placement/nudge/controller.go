// Package nudge computes directional move affordances and drives the
// press-and-hold repetition of nudges.
package nudge

import (
	"context"
	"slices"
	"time"
)

// DefaultInterval is the repeat period while an arrow is held.
const DefaultInterval = 200 * time.Millisecond

// maxCatchUp bounds how many late repeats a single Tick may fire.
const maxCatchUp = 5

type State int

const (
	Idle State = iota
	ArrowsVisible
	Moving
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case ArrowsVisible:
		return "arrows"
	case Moving:
		return "moving"
	}
	return "unknown"
}

// StepFunc applies one nudge to unit id and returns the regenerated arrows.
type StepFunc func(ctx context.Context, id string, dir Direction) ([]Affordance, error)

type Controller struct {
	state       State
	selected    string
	affordances []Affordance

	interval time.Duration
	held     Direction
	next     time.Time

	step StepFunc
}

func NewController(step StepFunc, interval time.Duration) *Controller {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Controller{step: step, interval: interval}
}

func (c *Controller) State() State            { return c.state }
func (c *Controller) Selected() string        { return c.selected }
func (c *Controller) Interval() time.Duration { return c.interval }

// Held returns the direction being repeated, if any.
func (c *Controller) Held() (Direction, bool) {
	return c.held, c.state == Moving
}

func (c *Controller) Affordances() []Affordance {
	return slices.Clone(c.affordances)
}

// Select shows arrows for unit id. An empty id deselects.
func (c *Controller) Select(id string, arrows []Affordance) {
	if id == "" {
		c.Deselect()
		return
	}
	c.selected = id
	c.affordances = arrows
	c.state = ArrowsVisible
}

// Refresh replaces the arrows of the current selection.
func (c *Controller) Refresh(arrows []Affordance) {
	if c.state == Idle {
		return
	}
	c.affordances = arrows
}

func (c *Controller) Deselect() {
	c.state = Idle
	c.selected = ""
	c.affordances = nil
}

// Offers reports whether an arrow for dir is currently shown.
func (c *Controller) Offers(dir Direction) bool {
	return slices.ContainsFunc(c.affordances, func(a Affordance) bool { return a.Dir == dir })
}

// Press activates the arrow for dir and fires the first step immediately.
// Pressing with nothing selected or on a withheld arrow does nothing.
func (c *Controller) Press(ctx context.Context, dir Direction, now time.Time) error {
	if c.state == Idle || !c.Offers(dir) {
		return nil
	}
	c.state = Moving
	c.held = dir
	c.next = now.Add(c.interval)
	return c.fire(ctx)
}

// Tick repeats the held step once per elapsed interval. It returns the
// number of steps fired.
func (c *Controller) Tick(ctx context.Context, now time.Time) (int, error) {
	fired := 0
	for c.state == Moving && !now.Before(c.next) {
		if fired == maxCatchUp {
			c.next = now.Add(c.interval)
			break
		}
		if !c.Offers(c.held) {
			c.Release()
			break
		}
		c.next = c.next.Add(c.interval)
		fired++
		if err := c.fire(ctx); err != nil {
			return fired, err
		}
	}
	return fired, nil
}

// Release ends a hold. It is the only way a repeat stops.
func (c *Controller) Release() {
	if c.state == Moving {
		c.state = ArrowsVisible
	}
}

func (c *Controller) fire(ctx context.Context) error {
	if c.step == nil {
		return nil
	}
	arrows, err := c.step(ctx, c.selected, c.held)
	if err != nil {
		c.Release()
		return err
	}
	c.affordances = arrows
	return nil
}
