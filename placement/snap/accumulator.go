package snap

// Accumulator keeps running sums of loaded unit sizes. The horizontal grid is
// the average width and the vertical step the average height.
type Accumulator struct {
	count       int
	totalWidth  float64
	totalHeight float64

	fallbackGrid     float32
	fallbackVertical float32
}

// NewAccumulator returns an accumulator reporting the fallback sizes until
// the first unit is added.
func NewAccumulator(fallbackGrid, fallbackVertical float32) *Accumulator {
	return &Accumulator{
		fallbackGrid:     ClampStep(fallbackGrid),
		fallbackVertical: ClampStep(fallbackVertical),
	}
}

// Add folds one unit's footprint width and height into the averages.
func (a *Accumulator) Add(width, height float32) {
	a.count++
	a.totalWidth += float64(width)
	a.totalHeight += float64(height)
}

func (a *Accumulator) Count() int { return a.count }

func (a *Accumulator) Grid() float32 {
	if a.count == 0 {
		return a.fallbackGrid
	}
	return ClampStep(float32(a.totalWidth / float64(a.count)))
}

func (a *Accumulator) Vertical() float32 {
	if a.count == 0 {
		return a.fallbackVertical
	}
	return ClampStep(float32(a.totalHeight / float64(a.count)))
}

func (a *Accumulator) Reset() {
	a.count = 0
	a.totalWidth = 0
	a.totalHeight = 0
}
