package layout

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gekko3d/storey/placement/floor"
)

func exerciseStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	_, err := s.Get(ctx, LayoutKey)
	require.True(t, errors.Is(err, ErrNotFound), "got %v", err)

	require.NoError(t, s.Put(ctx, LayoutKey, []byte(`[1]`)))
	require.NoError(t, s.Put(ctx, LayoutKey, []byte(`[2]`)))

	got, err := s.Get(ctx, LayoutKey)
	require.NoError(t, err)
	assert.Equal(t, `[2]`, string(got), "last write wins")

	p := NewPersister(s)
	in := sampleRecords(6)
	require.NoError(t, p.Save(ctx, in))

	out, err := p.Load(ctx)
	require.NoError(t, err)
	if diff := cmp.Diff(in, out, cmpopts.SortSlices(byID)); diff != "" {
		t.Errorf("persisted layout mismatch (-want +got):\n%s", diff)
	}
}

func TestMemoryStore(t *testing.T) {
	s := NewMemoryStore()
	exerciseStore(t, s)
	assert.Equal(t, 3, s.Puts())
	require.NoError(t, s.Close())
}

func TestBadgerStore(t *testing.T) {
	s, err := OpenBadgerStore(t.TempDir())
	require.NoError(t, err)
	defer s.Close()

	exerciseStore(t, s)
}

func TestBadgerStore_ReopenKeepsData(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	s, err := OpenBadgerStore(dir)
	require.NoError(t, err)
	require.NoError(t, s.Put(ctx, LayoutKey, []byte(`[]`)))
	require.NoError(t, s.Close())

	s, err = OpenBadgerStore(dir)
	require.NoError(t, err)
	defer s.Close()

	got, err := s.Get(ctx, LayoutKey)
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(got))
}

func TestSQLiteStore(t *testing.T) {
	s, err := OpenSQLiteStore(filepath.Join(t.TempDir(), "layout.db"))
	require.NoError(t, err)
	defer s.Close()

	exerciseStore(t, s)
}

func TestGdataStore(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_DATA_HOME", filepath.Join(home, ".local", "share"))

	s, err := OpenGdataStore("storey_test")
	if err != nil {
		t.Skipf("gdata unavailable on this platform: %v", err)
	}
	defer s.Close()

	exerciseStore(t, s)
}

func TestOpen_Backends(t *testing.T) {
	dir := t.TempDir()

	s, err := Open(BackendMemory, "", "")
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, s)

	s, err = Open(BackendSQLite, filepath.Join(dir, "nested", "kv.db"), "")
	require.NoError(t, err)
	assert.IsType(t, &SQLiteStore{}, s)
	require.NoError(t, s.Close())

	s, err = Open(BackendBadger, filepath.Join(dir, "badger"), "")
	require.NoError(t, err)
	assert.IsType(t, &BadgerStore{}, s)
	require.NoError(t, s.Close())

	_, err = Open("etcd", "", "")
	assert.Error(t, err)
}

func TestPersister_FloorsMergeOntoDefaults(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	p := NewPersister(s)
	defaults := floor.Defaults(3)

	got, err := p.LoadFloors(ctx, defaults)
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.Equal(t, defaults, got)

	require.NoError(t, s.Put(ctx, FloorsKey, []byte(`[{"height":4},{"ghostOpacity":7}]`)))
	got, err = p.LoadFloors(ctx, defaults)
	require.NoError(t, err)
	assert.Equal(t, float32(4), got[0].Height)
	assert.Equal(t, float32(0.5), got[0].GhostOpacity)
	assert.Equal(t, float32(1), got[1].GhostOpacity, "clamped")
	assert.Equal(t, floor.Default(), got[2])

	require.NoError(t, p.SaveFloors(ctx, got))
	again, err := p.LoadFloors(ctx, defaults)
	require.NoError(t, err)
	assert.Equal(t, got, again)

	require.NoError(t, s.Put(ctx, FloorsKey, []byte(`{`)))
	got, err = p.LoadFloors(ctx, defaults)
	assert.Error(t, err)
	assert.Equal(t, defaults, got)
}

func TestPersister_LoadMissingAndCorrupt(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	p := NewPersister(s)

	_, err := p.Load(ctx)
	assert.True(t, errors.Is(err, ErrNotFound))

	require.NoError(t, s.Put(ctx, LayoutKey, []byte(`{{`)))
	_, err = p.Load(ctx)
	assert.True(t, errors.Is(err, ErrInvalidLayout))
}
