package storey

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/gekko3d/storey/internal/config"
	"github.com/gekko3d/storey/placement/core"
	"github.com/gekko3d/storey/placement/engine"
)

type AssetId string

var ErrAssetNotFound = errors.New("asset not found")

// ModelAsset is a catalogued model. Id is assigned on first load.
type ModelAsset struct {
	Id     AssetId
	Ref    string
	Bounds core.AABB
}

// AssetServer resolves asset references against a catalog of model bounds.
// It implements engine.Loader.
type AssetServer struct {
	catalog map[string]core.AABB
	loaded  map[string]ModelAsset

	loads    int
	failures int
}

func NewAssetServer() *AssetServer {
	return &AssetServer{
		catalog: make(map[string]core.AABB),
		loaded:  make(map[string]ModelAsset),
	}
}

// Register adds or replaces a catalog entry.
func (server *AssetServer) Register(ref string, bounds core.AABB) {
	server.catalog[catalogKey(ref)] = bounds
	delete(server.loaded, catalogKey(ref))
}

// Load looks ref up by its full path first, then by file name, so a model
// dropped from anywhere on disk resolves to its catalog entry.
func (server *AssetServer) Load(ctx context.Context, ref string) (engine.Asset, error) {
	if err := ctx.Err(); err != nil {
		return engine.Asset{}, err
	}
	key, ok := server.resolve(ref)
	if !ok {
		server.failures++
		return engine.Asset{}, fmt.Errorf("%q: %w", ref, ErrAssetNotFound)
	}
	model, ok := server.loaded[key]
	if !ok {
		model = ModelAsset{Id: makeAssetId(), Ref: key, Bounds: server.catalog[key]}
		server.loaded[key] = model
	}
	server.loads++
	return engine.Asset{Ref: ref, Bounds: model.Bounds}, nil
}

func (server *AssetServer) resolve(ref string) (string, bool) {
	key := catalogKey(ref)
	if _, ok := server.catalog[key]; ok {
		return key, true
	}
	base := catalogKey(filepath.Base(ref))
	_, ok := server.catalog[base]
	return base, ok
}

// Model returns the loaded model behind ref.
func (server *AssetServer) Model(ref string) (ModelAsset, bool) {
	key, ok := server.resolve(ref)
	if !ok {
		return ModelAsset{}, false
	}
	model, ok := server.loaded[key]
	return model, ok
}

// Refs lists the catalog in name order.
func (server *AssetServer) Refs() []string {
	refs := make([]string, 0, len(server.catalog))
	for ref := range server.catalog {
		refs = append(refs, ref)
	}
	slices.Sort(refs)
	return refs
}

// Stats returns successful and failed load counts.
func (server *AssetServer) Stats() (loads, failures int) {
	return server.loads, server.failures
}

func catalogKey(ref string) string {
	return strings.ToLower(filepath.ToSlash(filepath.Clean(ref)))
}

type AssetServerModule struct {
	Assets []config.AssetConfig
}

func (mod AssetServerModule) Install(app *App, cmd *Commands) {
	server := NewAssetServer()
	for _, a := range mod.Assets {
		server.Register(a.Ref, a.Bounds())
	}
	app.Logger().Debugf("asset catalog: %d models", len(mod.Assets))
	cmd.AddResources(server)
}

func makeAssetId() AssetId {
	return AssetId(uuid.NewString())
}
