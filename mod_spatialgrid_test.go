package storey

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func TestSpatialHashGrid_InsertionAndQuery(t *testing.T) {
	grid := NewSpatialHashGrid(2.0)

	aabb1 := AABBComponent{Min: mgl32.Vec3{0, 0, 0}, Max: mgl32.Vec3{1, 1, 1}}
	aabb2 := AABBComponent{Min: mgl32.Vec3{3, 3, 3}, Max: mgl32.Vec3{4, 4, 4}}
	grid.Insert(1, aabb1)
	grid.Insert(2, aabb2)

	assert.Equal(t, []EntityId{1}, grid.QueryAABB(aabb1))
	assert.Equal(t, []EntityId{2}, grid.QueryAABB(aabb2))

	// Spans cell 0 and cell 1 on every axis.
	mid := AABBComponent{Min: mgl32.Vec3{1, 1, 1}, Max: mgl32.Vec3{3, 3, 3}}
	assert.Equal(t, []EntityId{1, 2}, grid.QueryAABB(mid))
}

func TestSpatialHashGrid_NegativeCoordinates(t *testing.T) {
	grid := NewSpatialHashGrid(1.0)
	box := AABBComponent{Min: mgl32.Vec3{-2.5, 0, -2.5}, Max: mgl32.Vec3{-1.5, 1, -1.5}}
	grid.Insert(7, box)

	assert.Equal(t, []EntityId{7}, grid.QueryAABB(AABBComponent{Min: mgl32.Vec3{-2, 0.5, -2}, Max: mgl32.Vec3{-2, 0.5, -2}}))
	assert.Empty(t, grid.QueryAABB(AABBComponent{Min: mgl32.Vec3{5, 5, 5}, Max: mgl32.Vec3{6, 6, 6}}))
}

func TestSpatialHashGrid_SetCellSizeClears(t *testing.T) {
	grid := NewSpatialHashGrid(2.0)
	box := AABBComponent{Max: mgl32.Vec3{1, 1, 1}}
	grid.Insert(1, box)

	grid.SetCellSize(2.0)
	assert.Len(t, grid.QueryAABB(box), 1, "same size keeps the contents")

	grid.SetCellSize(0)
	assert.Equal(t, float32(2.0), grid.CellSize())

	grid.SetCellSize(3.0)
	assert.Empty(t, grid.QueryAABB(box))
}

func TestAABBComponent_OverlapsIgnoresSharedFaces(t *testing.T) {
	a := AABBComponent{Min: mgl32.Vec3{0, 0, 0}, Max: mgl32.Vec3{2, 3, 2}}
	touching := AABBComponent{Min: mgl32.Vec3{2, 0, 0}, Max: mgl32.Vec3{4, 3, 2}}
	stacked := AABBComponent{Min: mgl32.Vec3{0, 3, 0}, Max: mgl32.Vec3{2, 6, 2}}
	inside := AABBComponent{Min: mgl32.Vec3{1, 1, 1}, Max: mgl32.Vec3{3, 2, 3}}

	assert.False(t, a.Overlaps(touching))
	assert.False(t, a.Overlaps(stacked))
	assert.True(t, a.Overlaps(inside))
	assert.True(t, inside.Overlaps(a))
}
