package layout

import (
	"context"
	"fmt"

	"github.com/quasilyte/gdata/v2"
)

// GdataObject is the gdata object all documents live under.
const GdataObject = "storey"

// GdataStore keeps documents in the platform's per-user application data
// directory.
type GdataStore struct {
	manager *gdata.Manager
}

func OpenGdataStore(appName string) (*GdataStore, error) {
	m, err := gdata.Open(gdata.Config{AppName: appName})
	if err != nil {
		return nil, fmt.Errorf("open gdata store: %w", err)
	}
	return &GdataStore{manager: m}, nil
}

func (s *GdataStore) Get(ctx context.Context, key string) ([]byte, error) {
	if !s.manager.ObjectPropExists(GdataObject, key) {
		return nil, ErrNotFound
	}
	data, err := s.manager.LoadObjectProp(GdataObject, key)
	if err != nil {
		return nil, fmt.Errorf("gdata load %q: %w", key, err)
	}
	return data, nil
}

func (s *GdataStore) Put(ctx context.Context, key string, value []byte) error {
	if err := s.manager.SaveObjectProp(GdataObject, key, value); err != nil {
		return fmt.Errorf("gdata save %q: %w", key, err)
	}
	return nil
}

func (s *GdataStore) Close() error { return nil }
