package storey

import (
	"math"
	"slices"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/gekko3d/storey/placement/engine"
)

// AABBComponent is a world-space box.
type AABBComponent struct {
	Min mgl32.Vec3
	Max mgl32.Vec3
}

// overlapEpsilon keeps units that merely share a face apart.
const overlapEpsilon float32 = 1e-3

// Overlaps reports whether a and b share volume, not just a face.
func (a AABBComponent) Overlaps(b AABBComponent) bool {
	for i := 0; i < 3; i++ {
		if a.Min[i] >= b.Max[i]-overlapEpsilon || b.Min[i] >= a.Max[i]-overlapEpsilon {
			return false
		}
	}
	return true
}

type SpatialHashGrid struct {
	cellSize float32
	cells    map[uint64][]EntityId
}

func NewSpatialHashGrid(cellSize float32) *SpatialHashGrid {
	return &SpatialHashGrid{
		cellSize: cellSize,
		cells:    make(map[uint64][]EntityId),
	}
}

func (grid *SpatialHashGrid) Clear() {
	clear(grid.cells)
}

// SetCellSize clears the grid when the size changes.
func (grid *SpatialHashGrid) SetCellSize(size float32) {
	if size <= 0 || size == grid.cellSize {
		return
	}
	grid.cellSize = size
	grid.Clear()
}

func (grid *SpatialHashGrid) CellSize() float32 { return grid.cellSize }

func (grid *SpatialHashGrid) Insert(id EntityId, aabb AABBComponent) {
	minX, maxX := grid.getCellIndex(aabb.Min.X()), grid.getCellIndex(aabb.Max.X())
	minY, maxY := grid.getCellIndex(aabb.Min.Y()), grid.getCellIndex(aabb.Max.Y())
	minZ, maxZ := grid.getCellIndex(aabb.Min.Z()), grid.getCellIndex(aabb.Max.Z())

	for x := minX; x <= maxX; x++ {
		for y := minY; y <= maxY; y++ {
			for z := minZ; z <= maxZ; z++ {
				key := grid.hashKey(x, y, z)
				grid.cells[key] = append(grid.cells[key], id)
			}
		}
	}
}

// QueryAABB returns broadphase candidates: every entity sharing a cell with
// aabb, in ascending order.
func (grid *SpatialHashGrid) QueryAABB(aabb AABBComponent) []EntityId {
	minX, maxX := grid.getCellIndex(aabb.Min.X()), grid.getCellIndex(aabb.Max.X())
	minY, maxY := grid.getCellIndex(aabb.Min.Y()), grid.getCellIndex(aabb.Max.Y())
	minZ, maxZ := grid.getCellIndex(aabb.Min.Z()), grid.getCellIndex(aabb.Max.Z())

	unique := make(map[EntityId]struct{})
	var results []EntityId

	for x := minX; x <= maxX; x++ {
		for y := minY; y <= maxY; y++ {
			for z := minZ; z <= maxZ; z++ {
				for _, id := range grid.cells[grid.hashKey(x, y, z)] {
					if _, ok := unique[id]; !ok {
						unique[id] = struct{}{}
						results = append(results, id)
					}
				}
			}
		}
	}
	slices.Sort(results)
	return results
}

func (grid *SpatialHashGrid) getCellIndex(pos float32) int {
	return int(math.Floor(float64(pos / grid.cellSize)))
}

func (grid *SpatialHashGrid) hashKey(x, y, z int) uint64 {
	const p1 = 73856093
	const p2 = 19349663
	const p3 = 83492791
	return uint64(x*p1 ^ y*p2 ^ z*p3)
}

// Overlaps holds the units whose boxes intersect another unit's.
type Overlaps struct {
	Units map[string]struct{}
}

func (o *Overlaps) Has(unitID string) bool {
	_, ok := o.Units[unitID]
	return ok
}

func (o *Overlaps) Sorted() []string {
	res := make([]string, 0, len(o.Units))
	for id := range o.Units {
		res = append(res, id)
	}
	slices.Sort(res)
	return res
}

// SpatialGridModule indexes unit boxes and tints units that intersect one
// another. The cell size follows the snap grid.
type SpatialGridModule struct{}

func (SpatialGridModule) Install(app *App, cmd *Commands) {
	cmd.AddResources(NewSpatialHashGrid(2.0), &Overlaps{Units: make(map[string]struct{})})

	app.UseSystem(
		System(UpdateSpatialGridSystem).
			InStage(PreRender).
			RunAlways(),
	).UseSystem(
		System(overlapSystem).
			InStage(PreRender).
			RunAlways(),
	)
}

func UpdateSpatialGridSystem(cmd *Commands, grid *SpatialHashGrid, eng *engine.Engine) {
	grid.SetCellSize(eng.Grid())
	grid.Clear()
	MakeQuery2[UnitComponent, AABBComponent](cmd).Map(func(id EntityId, _ *UnitComponent, aabb *AABBComponent) bool {
		grid.Insert(id, *aabb)
		return true
	})
}

func overlapSystem(cmd *Commands, grid *SpatialHashGrid, overlaps *Overlaps) {
	clear(overlaps.Units)
	MakeQuery2[UnitComponent, AABBComponent](cmd).Map(func(id EntityId, u *UnitComponent, aabb *AABBComponent) bool {
		for _, other := range grid.QueryAABB(*aabb) {
			if other == id {
				continue
			}
			box, ok := GetComponent[AABBComponent](cmd, other)
			if ok && aabb.Overlaps(*box) {
				overlaps.Units[u.ID] = struct{}{}
				break
			}
		}
		return true
	})

	MakeQuery2[UnitComponent, GizmoComponent](cmd).Map(func(id EntityId, u *UnitComponent, g *GizmoComponent) bool {
		color := unitColor(u.Material)
		if overlaps.Has(u.ID) {
			color = ColorOverlap
		}
		g.Color = WithAlpha(color, g.Color[3])
		return true
	})
}
