// Package unit tracks placed units and which floor each one belongs to.
package unit

import (
	"errors"
	"fmt"
	"slices"
	"sort"
)

var (
	ErrUnknownUnit   = errors.New("unknown unit")
	ErrDuplicateUnit = errors.New("unit already registered")
)

// Floors is the part of the floor roster the registry needs.
type Floors interface {
	Count() int
	Base(index int) float32
}

type Registry struct {
	floors  Floors
	units   map[string]*Unit
	members map[int][]string
}

func NewRegistry(floors Floors) *Registry {
	return &Registry{
		floors:  floors,
		units:   make(map[string]*Unit),
		members: make(map[int][]string),
	}
}

// Assign registers u on floor and drops it onto the floor's base.
func (r *Registry) Assign(u *Unit, floor int) error {
	if _, ok := r.units[u.ID]; ok {
		return fmt.Errorf("assign %q: %w", u.ID, ErrDuplicateUnit)
	}
	floor = r.clampFloor(floor)

	r.units[u.ID] = u
	r.members[floor] = append(r.members[floor], u.ID)
	u.Floor = floor
	u.Position[1] = r.floors.Base(floor)
	return nil
}

// Reassign moves a unit to another floor and onto that floor's base. X and Z
// are left alone. It reports false when the unit already is on newFloor.
func (r *Registry) Reassign(id string, newFloor int) (bool, error) {
	u, ok := r.units[id]
	if !ok {
		return false, fmt.Errorf("reassign %q: %w", id, ErrUnknownUnit)
	}
	newFloor = r.clampFloor(newFloor)
	if u.Floor == newFloor {
		return false, nil
	}

	r.move(u, newFloor)
	u.Position[1] = r.floors.Base(newFloor)
	return true, nil
}

// Relink changes membership only; the unit's Y was already set by the caller.
func (r *Registry) Relink(id string, newFloor int) (bool, error) {
	u, ok := r.units[id]
	if !ok {
		return false, fmt.Errorf("relink %q: %w", id, ErrUnknownUnit)
	}
	newFloor = r.clampFloor(newFloor)
	if u.Floor == newFloor {
		return false, nil
	}

	r.move(u, newFloor)
	return true, nil
}

func (r *Registry) move(u *Unit, newFloor int) {
	r.members[u.Floor] = slices.DeleteFunc(r.members[u.Floor], func(m string) bool {
		return m == u.ID
	})
	r.members[newFloor] = append(r.members[newFloor], u.ID)
	u.Floor = newFloor
}

// MembersOf returns a copy of the ids on floor.
func (r *Registry) MembersOf(floor int) []string {
	return slices.Clone(r.members[floor])
}

// Restack puts every occupant of floor at base.
func (r *Registry) Restack(floor int, base float32) {
	for _, id := range r.members[floor] {
		r.units[id].Position[1] = base
	}
}

func (r *Registry) Get(id string) (*Unit, bool) {
	u, ok := r.units[id]
	return u, ok
}

// All returns every unit ordered by id.
func (r *Registry) All() []*Unit {
	res := make([]*Unit, 0, len(r.units))
	for _, u := range r.units {
		res = append(res, u)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].ID < res[j].ID })
	return res
}

func (r *Registry) Remove(id string) (*Unit, error) {
	u, ok := r.units[id]
	if !ok {
		return nil, fmt.Errorf("remove %q: %w", id, ErrUnknownUnit)
	}
	r.members[u.Floor] = slices.DeleteFunc(r.members[u.Floor], func(m string) bool {
		return m == id
	})
	delete(r.units, id)
	return u, nil
}

func (r *Registry) Clear() {
	clear(r.units)
	clear(r.members)
}

func (r *Registry) Len() int { return len(r.units) }

func (r *Registry) clampFloor(floor int) int {
	if floor < 0 {
		return 0
	}
	if n := r.floors.Count(); floor >= n {
		return n - 1
	}
	return floor
}
