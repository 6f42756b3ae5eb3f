package snap

import (
	"math"
	"math/rand"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func TestSnap_RoundsToGrid(t *testing.T) {
	got := Snap(mgl32.Vec3{0.3, 0, 0.3}, 1, 3)
	assert.Equal(t, mgl32.Vec3{0, 0, 0}, got)

	got = Snap(mgl32.Vec3{1.3, 0, 0.3}, 1, 3)
	assert.Equal(t, mgl32.Vec3{1, 0, 0}, got)

	got = Snap(mgl32.Vec3{2.6, 4.4, -2.6}, 2, 3)
	assert.Equal(t, mgl32.Vec3{2, 3, -2}, got)
}

func TestSnap_Idempotent(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for _, sizes := range [][2]float32{{1, 3}, {0.5, 0.25}, {2.37, 1.1}, {MinGrid, MinGrid}} {
		g, v := sizes[0], sizes[1]
		for i := 0; i < 500; i++ {
			p := mgl32.Vec3{
				(rng.Float32() - 0.5) * 200,
				(rng.Float32() - 0.5) * 200,
				(rng.Float32() - 0.5) * 200,
			}
			once := Snap(p, g, v)
			twice := Snap(once, g, v)
			if once != twice {
				t.Fatalf("snap not idempotent for %v (g=%v v=%v): %v then %v", p, g, v, once, twice)
			}
		}
	}
}

func TestSnapXZ_KeepsY(t *testing.T) {
	got := SnapXZ(mgl32.Vec3{0.6, 1.234, 1.4}, 1)
	assert.Equal(t, mgl32.Vec3{1, 1.234, 1}, got)
}

func TestSnapYaw(t *testing.T) {
	assert.InDelta(t, math.Pi/2, SnapYaw(1.4, QuarterTurn), 1e-6)
	assert.InDelta(t, 0, SnapYaw(0.2, QuarterTurn), 1e-6)
	assert.Equal(t, float32(0.3), SnapYaw(0.3, 0))
}

func TestClampStep(t *testing.T) {
	assert.Equal(t, MinGrid, ClampStep(0))
	assert.Equal(t, MinGrid, ClampStep(-4))
	assert.Equal(t, MinGrid, ClampStep(float32(math.NaN())))
	assert.Equal(t, float32(2), ClampStep(2))
}

func TestAccumulator_RunningAverage(t *testing.T) {
	acc := NewAccumulator(1, 3)
	assert.Equal(t, float32(1), acc.Grid())
	assert.Equal(t, float32(3), acc.Vertical())

	acc.Add(2, 3)
	assert.Equal(t, float32(2), acc.Grid())
	assert.Equal(t, float32(3), acc.Vertical())

	acc.Add(4, 5)
	assert.Equal(t, 2, acc.Count())
	assert.Equal(t, float32(3), acc.Grid())
	assert.Equal(t, float32(4), acc.Vertical())

	acc.Reset()
	assert.Equal(t, float32(1), acc.Grid())
}

func TestAccumulator_DegenerateSizesClamp(t *testing.T) {
	acc := NewAccumulator(0, -1)
	assert.Equal(t, MinGrid, acc.Grid())
	assert.Equal(t, MinGrid, acc.Vertical())

	acc.Add(0, 0)
	assert.Equal(t, MinGrid, acc.Grid())
	assert.Equal(t, MinGrid, acc.Vertical())
}
