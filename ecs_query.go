package storey

import (
	"cmp"
	"reflect"
	"slices"
)

// Query1..Query3 iterate entities holding the listed components. Components
// passed as optionals may be missing; their pointer is then nil.
type Query1[A any] struct{ ecs *Ecs }
type Query2[A, B any] struct{ ecs *Ecs }
type Query3[A, B, C any] struct{ ecs *Ecs }

func MakeQuery1[A any](cmd *Commands) Query1[A]             { return Query1[A]{ecs: cmd.app.ecs} }
func MakeQuery2[A, B any](cmd *Commands) Query2[A, B]       { return Query2[A, B]{ecs: cmd.app.ecs} }
func MakeQuery3[A, B, C any](cmd *Commands) Query3[A, B, C] { return Query3[A, B, C]{ecs: cmd.app.ecs} }

func (q Query1[A]) Map(m func(EntityId, *A) bool, optionals ...any) {
	ida := idOf[A](q.ecs)
	opt := identifyOptionals(q.ecs, optionals...)

	for _, hit := range matching(q.ecs, opt, ida) {
		if !m(hit.eid, cell[A](hit, ida)) {
			return
		}
	}
}

func (q Query2[A, B]) Map(m func(EntityId, *A, *B) bool, optionals ...any) {
	ida, idb := idOf[A](q.ecs), idOf[B](q.ecs)
	opt := identifyOptionals(q.ecs, optionals...)

	for _, hit := range matching(q.ecs, opt, ida, idb) {
		if !m(hit.eid, cell[A](hit, ida), cell[B](hit, idb)) {
			return
		}
	}
}

func (q Query3[A, B, C]) Map(m func(EntityId, *A, *B, *C) bool, optionals ...any) {
	ida, idb, idc := idOf[A](q.ecs), idOf[B](q.ecs), idOf[C](q.ecs)
	opt := identifyOptionals(q.ecs, optionals...)

	for _, hit := range matching(q.ecs, opt, ida, idb, idc) {
		if !m(hit.eid, cell[A](hit, ida), cell[B](hit, idb), cell[C](hit, idc)) {
			return
		}
	}
}

// Count returns how many entities hold A.
func (q Query1[A]) Count() int {
	return len(matching(q.ecs, nil, idOf[A](q.ecs)))
}

type queryHit struct {
	eid  EntityId
	arch *archetype
	row  row
}

// matching collects the entities whose archetype holds every required id,
// in ascending entity order.
func matching(ecs *Ecs, opt set[componentId], ids ...componentId) []queryHit {
	var hits []queryHit
	for _, arch := range ecs.archetypes {
		ok := true
		for _, id := range ids {
			if _, has := arch.componentData[id]; has {
				continue
			}
			if _, optional := opt[id]; !optional {
				ok = false
				break
			}
		}
		if !ok {
			continue
		}
		for eid, r := range arch.entities {
			hits = append(hits, queryHit{eid: eid, arch: arch, row: r})
		}
	}
	slices.SortFunc(hits, func(a, b queryHit) int { return cmp.Compare(a.eid, b.eid) })
	return hits
}

func cell[T any](hit queryHit, id componentId) *T {
	column, ok := hit.arch.componentData[id]
	if !ok {
		return nil
	}
	return &column.([]T)[hit.row]
}

func idOf[T any](ecs *Ecs) componentId {
	return ecs.getComponentId(reflect.TypeFor[T]())
}

func identifyOptionals(ecs *Ecs, components ...any) set[componentId] {
	res := make(set[componentId], len(components))
	for _, c := range components {
		res[ecs.getComponentId(componentType(c))] = struct{}{}
	}
	return res
}
