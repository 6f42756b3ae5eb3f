// Package history keeps the bounded undo stack of pre-mutation poses.
package history

import (
	"github.com/go-gl/mathgl/mgl32"
)

// DefaultCapacity is the number of snapshots kept before the oldest is dropped.
const DefaultCapacity = 20

// Snapshot is a unit's pose captured right before a spatial mutation.
type Snapshot struct {
	UnitID   string
	Position mgl32.Vec3
	Yaw      float32
}

type History struct {
	ring    *Ring[Snapshot]
	evicted int
}

func New(capacity int) *History {
	if capacity <= 0 || capacity > DefaultCapacity {
		capacity = DefaultCapacity
	}
	return &History{ring: NewRing[Snapshot](capacity)}
}

func (h *History) Record(s Snapshot) {
	if h.ring.Push(s) {
		h.evicted++
	}
}

// Undo pops the most recent snapshot. ok is false when there is nothing to undo.
func (h *History) Undo() (s Snapshot, ok bool) {
	return h.ring.Pop()
}

func (h *History) Len() int { return h.ring.Len() }
func (h *History) Cap() int { return h.ring.Cap() }

// Evicted counts snapshots dropped for capacity since creation.
func (h *History) Evicted() int { return h.evicted }

func (h *History) Snapshots() []Snapshot { return h.ring.Items() }

func (h *History) Clear() { h.ring.Clear() }
