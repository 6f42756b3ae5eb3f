// Package floor owns the fixed roster of stacked floors and the active floor.
package floor

import (
	"errors"
	"fmt"

	"github.com/gekko3d/storey/placement/events"
)

var ErrFloorOutOfRange = errors.New("floor index out of range")

// baseEpsilon absorbs float drift when mapping a Y coordinate to a floor.
const baseEpsilon float32 = 1e-3

// RestackFunc moves every occupant of floor index to the given base height.
type RestackFunc func(index int, base float32)

type Registry struct {
	floors    []Floor
	opacity   []float32
	active    int
	dropPlane float32

	bus     *events.Bus
	restack RestackFunc
}

// New builds a registry over floors (defaults when empty). The roster size
// is fixed from here on.
func New(floors []Floor, bus *events.Bus) *Registry {
	if len(floors) == 0 {
		floors = Defaults(DefaultCount)
	}
	r := &Registry{
		floors:  make([]Floor, len(floors)),
		opacity: make([]float32, len(floors)),
		bus:     bus,
	}
	for i, f := range floors {
		r.floors[i] = f.Clamp()
	}
	r.refresh()
	return r
}

// OnRestack installs the hook called when a floor's base height changes.
func (r *Registry) OnRestack(fn RestackFunc) {
	r.restack = fn
}

func (r *Registry) Count() int  { return len(r.floors) }
func (r *Registry) Active() int { return r.active }

// DropPlane is the height of the working plane used for pointer placement.
func (r *Registry) DropPlane() float32 { return r.dropPlane }

func (r *Registry) Floors() []Floor {
	res := make([]Floor, len(r.floors))
	copy(res, r.floors)
	return res
}

func (r *Registry) Floor(i int) Floor {
	return r.floors[r.clamp(i)]
}

// Opacity is the render opacity of floor i's grid relative to the active floor.
func (r *Registry) Opacity(i int) float32 {
	return r.opacity[r.clamp(i)]
}

// Base is the vertical offset of floor i.
func (r *Registry) Base(i int) float32 {
	i = r.clamp(i)
	return float32(i) * r.floors[i].Height
}

// FloorAt maps a Y coordinate to the highest floor whose base lies at or below it.
func (r *Registry) FloorAt(y float32) int {
	for i := len(r.floors) - 1; i > 0; i-- {
		if r.Base(i) <= y+baseEpsilon {
			return i
		}
	}
	return 0
}

// SetActiveFloor clamps index, updates opacities and the drop plane, and
// publishes FloorChanged. It returns the clamped index.
func (r *Registry) SetActiveFloor(index int) int {
	prev := r.active
	r.active = r.clamp(index)
	r.refresh()

	events.Publish(r.bus, events.FloorChanged{Index: r.active, Previous: prev})
	return r.active
}

// UpdateFloor merges patch into floor index and re-stacks its occupants.
// The active floor is kept, so no FloorChanged is published.
func (r *Registry) UpdateFloor(index int, patch Patch) error {
	if index < 0 || index >= len(r.floors) {
		return fmt.Errorf("update floor %d: %w", index, ErrFloorOutOfRange)
	}
	r.floors[index] = r.floors[index].Merge(patch).Clamp()
	r.refresh()

	if r.restack != nil {
		r.restack(index, r.Base(index))
	}
	events.Publish(r.bus, events.FloorsUpdated{Index: index})
	return nil
}

// SetHeights applies one height to every floor whose height differs. Unlike
// UpdateFloor it leaves placed units where they are.
func (r *Registry) SetHeights(height float32) {
	var changed []int
	for i, f := range r.floors {
		next := f.Merge(Patch{Height: &height}).Clamp()
		if next.Height == f.Height {
			continue
		}
		r.floors[i] = next
		changed = append(changed, i)
	}
	if len(changed) == 0 {
		return
	}
	r.refresh()
	for _, i := range changed {
		events.Publish(r.bus, events.FloorsUpdated{Index: i})
	}
}

// Apply merges a full roster by index; extra entries are ignored.
func (r *Registry) Apply(floors []Floor) {
	for i, f := range floors {
		if i >= len(r.floors) {
			break
		}
		_ = r.UpdateFloor(i, PatchOf(f))
	}
}

func (r *Registry) refresh() {
	for i, f := range r.floors {
		switch {
		case i == r.active:
			r.opacity[i] = 1
		case f.ShowGhost:
			r.opacity[i] = f.GhostOpacity
		default:
			r.opacity[i] = 0
		}
	}
	r.dropPlane = r.Base(r.active)
}

func (r *Registry) clamp(i int) int {
	if i < 0 {
		return 0
	}
	if i >= len(r.floors) {
		return len(r.floors) - 1
	}
	return i
}
