// Package events is a typed, synchronous observer bus. Handlers run on the
// publisher's goroutine in subscription order and nothing is acknowledged.
package events

import (
	"reflect"
	"sort"
	"sync"
)

// Subscription is returned by Subscribe and allows unsubscribing.
type Subscription interface {
	Unsubscribe()
}

// Stats are aggregated bus counters.
type Stats struct {
	Published uint64
	Consumed  uint64
}

type Bus struct {
	mu          sync.RWMutex
	subscribers map[reflect.Type]map[int]func(any)
	nextID      int
	stats       Stats
}

func NewBus() *Bus {
	return &Bus{
		subscribers: make(map[reflect.Type]map[int]func(any)),
	}
}

// Subscribe registers fn for every published value of type T.
func Subscribe[T any](bus *Bus, fn func(T)) Subscription {
	t := reflect.TypeFor[T]()

	bus.mu.Lock()
	defer bus.mu.Unlock()

	id := bus.nextID
	bus.nextID++
	if bus.subscribers[t] == nil {
		bus.subscribers[t] = make(map[int]func(any))
	}
	bus.subscribers[t][id] = func(v any) { fn(v.(T)) }

	return &sub{bus: bus, t: t, id: id}
}

// Publish delivers ev to every subscriber of T. A nil bus drops the event.
func Publish[T any](bus *Bus, ev T) {
	if bus == nil {
		return
	}
	t := reflect.TypeFor[T]()

	bus.mu.Lock()
	bus.stats.Published++
	handlers := bus.snapshot(t)
	bus.stats.Consumed += uint64(len(handlers))
	bus.mu.Unlock()

	for _, h := range handlers {
		h(ev)
	}
}

func (bus *Bus) Stats() Stats {
	bus.mu.RLock()
	defer bus.mu.RUnlock()
	return bus.stats
}

// snapshot copies handlers out so they may (un)subscribe while running.
func (bus *Bus) snapshot(t reflect.Type) []func(any) {
	subs := bus.subscribers[t]
	ids := make([]int, 0, len(subs))
	for id := range subs {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	res := make([]func(any), 0, len(ids))
	for _, id := range ids {
		res = append(res, subs[id])
	}
	return res
}

type sub struct {
	bus  *Bus
	t    reflect.Type
	id   int
	once sync.Once
}

func (s *sub) Unsubscribe() {
	s.once.Do(func() {
		s.bus.mu.Lock()
		delete(s.bus.subscribers[s.t], s.id)
		s.bus.mu.Unlock()
	})
}
