package layout

import (
	"fmt"
	"os"
	"path/filepath"
)

// Backend names accepted by Open.
const (
	BackendMemory = "memory"
	BackendGdata  = "gdata"
	BackendBadger = "badger"
	BackendSQLite = "sqlite"
)

// Open builds the named backend. path is a directory for badger and a file
// for sqlite; gdata uses appName under the user's data directory.
func Open(backend, path, appName string) (Store, error) {
	switch backend {
	case BackendMemory:
		return NewMemoryStore(), nil
	case BackendGdata, "":
		return OpenGdataStore(appName)
	case BackendBadger:
		if err := os.MkdirAll(path, 0o755); err != nil {
			return nil, fmt.Errorf("create badger dir: %w", err)
		}
		return OpenBadgerStore(path)
	case BackendSQLite:
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create sqlite dir: %w", err)
		}
		return OpenSQLiteStore(path)
	}
	return nil, fmt.Errorf("unknown store backend %q", backend)
}
