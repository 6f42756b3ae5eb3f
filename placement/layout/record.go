// Package layout serializes placed units to a single JSON document and keeps
// it in a durable key-value store.
package layout

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
)

var ErrInvalidLayout = errors.New("invalid layout document")

// Record is the persisted form of a placed unit.
type Record struct {
	ID       string     `json:"id"`
	AssetRef string     `json:"assetRef"`
	Position [3]float32 `json:"position"`
	Yaw      float32    `json:"yaw"`
	Floor    int        `json:"floor"`
}

// wireRecord detects missing keys on decode.
type wireRecord struct {
	ID       *string    `json:"id"`
	AssetRef *string    `json:"assetRef"`
	Position *[]float32 `json:"position"`
	Yaw      *float32   `json:"yaw"`
	Floor    *int       `json:"floor"`
}

// Encode writes records as a flat JSON array ordered by id.
func Encode(records []Record) ([]byte, error) {
	sorted := make([]Record, len(records))
	copy(sorted, records)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	return json.Marshal(sorted)
}

// Decode parses a layout document. Unknown keys, missing keys, malformed
// positions, negative floors and duplicate ids are all rejected.
func Decode(data []byte) ([]Record, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	var wire []wireRecord
	if err := dec.Decode(&wire); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidLayout, err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("%w: trailing data", ErrInvalidLayout)
	}
	if wire == nil {
		return nil, fmt.Errorf("%w: not an array", ErrInvalidLayout)
	}

	seen := make(map[string]struct{}, len(wire))
	res := make([]Record, 0, len(wire))
	for i, w := range wire {
		rec, err := w.record()
		if err != nil {
			return nil, fmt.Errorf("%w: record %d: %v", ErrInvalidLayout, i, err)
		}
		if _, dup := seen[rec.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate id %q", ErrInvalidLayout, rec.ID)
		}
		seen[rec.ID] = struct{}{}
		res = append(res, rec)
	}
	return res, nil
}

func (w wireRecord) record() (Record, error) {
	switch {
	case w.ID == nil || *w.ID == "":
		return Record{}, errors.New("missing id")
	case w.AssetRef == nil || *w.AssetRef == "":
		return Record{}, errors.New("missing assetRef")
	case w.Position == nil:
		return Record{}, errors.New("missing position")
	case len(*w.Position) != 3:
		return Record{}, fmt.Errorf("position has %d components", len(*w.Position))
	case w.Yaw == nil:
		return Record{}, errors.New("missing yaw")
	case w.Floor == nil:
		return Record{}, errors.New("missing floor")
	case *w.Floor < 0:
		return Record{}, fmt.Errorf("negative floor %d", *w.Floor)
	}

	pos := *w.Position
	return Record{
		ID:       *w.ID,
		AssetRef: *w.AssetRef,
		Position: [3]float32{pos[0], pos[1], pos[2]},
		Yaw:      *w.Yaw,
		Floor:    *w.Floor,
	}, nil
}
