package layout

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/gekko3d/storey/placement/floor"
)

const (
	// LayoutKey holds the placed-units document.
	LayoutKey = "layout"
	// FloorsKey holds the floor settings document.
	FloorsKey = "floors"
)

// Persister reads and writes the layout and floor documents in a Store.
type Persister struct {
	store Store
}

func NewPersister(store Store) *Persister {
	return &Persister{store: store}
}

func (p *Persister) Store() Store { return p.store }

func (p *Persister) Save(ctx context.Context, records []Record) error {
	data, err := Encode(records)
	if err != nil {
		return fmt.Errorf("encode layout: %w", err)
	}
	return p.store.Put(ctx, LayoutKey, data)
}

// Load returns the saved layout, ErrNotFound when none was saved, or an
// ErrInvalidLayout wrapped error when the document cannot be used.
func (p *Persister) Load(ctx context.Context) ([]Record, error) {
	data, err := p.store.Get(ctx, LayoutKey)
	if err != nil {
		return nil, err
	}
	return Decode(data)
}

func (p *Persister) SaveFloors(ctx context.Context, floors []floor.Floor) error {
	data, err := json.Marshal(floors)
	if err != nil {
		return fmt.Errorf("encode floors: %w", err)
	}
	return p.store.Put(ctx, FloorsKey, data)
}

// LoadFloors merges the saved floor settings onto defaults by index.
func (p *Persister) LoadFloors(ctx context.Context, defaults []floor.Floor) ([]floor.Floor, error) {
	res := make([]floor.Floor, len(defaults))
	copy(res, defaults)

	data, err := p.store.Get(ctx, FloorsKey)
	if err != nil {
		return res, err
	}
	var patches []floor.Patch
	if err := json.Unmarshal(data, &patches); err != nil {
		return res, fmt.Errorf("decode floors: %w", err)
	}
	for i := range res {
		if i < len(patches) {
			res[i] = res[i].Merge(patches[i]).Clamp()
		}
	}
	return res, nil
}
