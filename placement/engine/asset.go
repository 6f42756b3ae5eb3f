package engine

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gekko3d/storey/placement/core"
)

var ErrUnsupportedAsset = errors.New("unsupported asset type")

// Asset is what the loader hands back: the reference and its local bounds.
type Asset struct {
	Ref    string
	Bounds core.AABB
}

// Loader resolves an asset reference into a loaded asset. Loads are awaited
// before a unit is registered.
type Loader interface {
	Load(ctx context.Context, ref string) (Asset, error)
}

// LoaderFunc adapts a function to Loader.
type LoaderFunc func(ctx context.Context, ref string) (Asset, error)

func (f LoaderFunc) Load(ctx context.Context, ref string) (Asset, error) { return f(ctx, ref) }

// ValidateAssetRef accepts glTF binaries and glTF JSON only.
func ValidateAssetRef(ref string) error {
	switch strings.ToLower(filepath.Ext(ref)) {
	case ".glb", ".gltf":
		return nil
	}
	return fmt.Errorf("%q: %w", ref, ErrUnsupportedAsset)
}

// Materials are the surface variants a unit can be repainted with.
var Materials = []string{"red", "blue", "wood"}

var ErrUnknownMaterial = errors.New("unknown material variant")
