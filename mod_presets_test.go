package storey

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gekko3d/storey/placement/layout"
	"github.com/gekko3d/storey/placement/nudge"
)

func TestExportImportLayout(t *testing.T) {
	ctx := context.Background()
	store := layout.NewMemoryStore()
	h := newHarness(t, store)
	file := filepath.Join(t.TempDir(), "layout.json")

	require.NoError(t, h.eng.Rotate(ctx, "u3", 0))
	_, err := h.eng.MoveToFloor(ctx, "u4", 2)
	require.NoError(t, err)
	require.NoError(t, ExportLayout(h.eng, file))
	want := h.eng.Records()

	require.NoError(t, h.eng.Remove(ctx, "u1"))
	require.NoError(t, h.eng.Remove(ctx, "u2"))
	require.Equal(t, 2, h.eng.Units().Len())

	n, err := ImportLayout(ctx, h.eng, file)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.Equal(t, want, h.eng.Records())

	saved, err := layout.NewPersister(store).Load(ctx)
	require.NoError(t, err)
	assert.Len(t, saved, 4, "an import is persisted")

	h.step()
	index, _ := Resource[UnitIndex](h.app)
	assert.Equal(t, 4, index.Len())
}

func TestImportLayout_RejectsInvalidFile(t *testing.T) {
	h := newHarness(t, layout.NewMemoryStore())
	file := filepath.Join(t.TempDir(), "broken.json")
	require.NoError(t, os.WriteFile(file, []byte(`{"not":"a layout"}`), 0644))

	_, err := ImportLayout(context.Background(), h.eng, file)
	assert.ErrorIs(t, err, layout.ErrInvalidLayout)
	assert.Equal(t, 4, h.eng.Units().Len(), "nothing is replaced")

	_, err = ImportLayout(context.Background(), h.eng, filepath.Join(t.TempDir(), "missing.json"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestPresetsModule_Bindings(t *testing.T) {
	h := newHarness(t, layout.NewMemoryStore())
	presets, _ := Resource[Presets](h.app)

	h.tap(KeyControl, KeyE)
	data, err := os.ReadFile(presets.Path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"assetRef": "unit1.glb"`)

	_, err = h.eng.Nudge(context.Background(), "u1", nudge.PosX)
	require.NoError(t, err)
	h.tap(KeyControl, KeyO)
	u := h.unit("u1")
	assert.Equal(t, mgl32.Vec3{0, 0, 0}, u.Position, "import restores the exported pose")
}
