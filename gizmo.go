package storey

import "github.com/go-gl/mathgl/mgl32"

type GizmoType int

const (
	GizmoLine GizmoType = iota
	GizmoCube
	GizmoRect  // Wireframe rectangle in the XZ plane
	GizmoArrow // Line with a head at LineEnd
)

// GizmoComponent describes an entity drawn as a wireframe overlay. The
// render collaborator reads these; the placement host only writes them.
type GizmoComponent struct {
	Type  GizmoType
	Color [4]float32

	// For Cube and Rect, Position is the center and Scale the size.
	// For Line and Arrow, Position is the start.
	Position mgl32.Vec3
	Rotation mgl32.Quat
	Scale    mgl32.Vec3

	LineEnd mgl32.Vec3
	Hidden  bool
}

var (
	ColorSelection = [4]float32{1, 0.85, 0.2, 1}
	ColorArrow     = [4]float32{0.2, 0.8, 1, 1}
	ColorArrowHot  = [4]float32{1, 1, 1, 1}
	ColorOverlap   = [4]float32{1, 0.25, 0.25, 1}
	ColorUnit      = [4]float32{0.75, 0.75, 0.75, 1}
	ColorFloor     = [4]float32{0.4, 0.6, 0.4, 1}
)

// MaterialColors tint unit gizmos by material variant.
var MaterialColors = map[string][4]float32{
	"red":  {0.9, 0.2, 0.2, 1},
	"blue": {0.2, 0.4, 0.95, 1},
	"wood": {0.6, 0.42, 0.25, 1},
}

func NewGizmoLine(start, end mgl32.Vec3, color [4]float32) GizmoComponent {
	return GizmoComponent{
		Type:     GizmoLine,
		Position: start,
		LineEnd:  end,
		Color:    color,
		Scale:    mgl32.Vec3{1, 1, 1},
		Rotation: mgl32.QuatIdent(),
	}
}

func NewGizmoArrow(start, end mgl32.Vec3, color [4]float32) GizmoComponent {
	g := NewGizmoLine(start, end, color)
	g.Type = GizmoArrow
	return g
}

func NewGizmoCube(center mgl32.Vec3, size mgl32.Vec3, color [4]float32) GizmoComponent {
	return GizmoComponent{
		Type:     GizmoCube,
		Position: center,
		Scale:    size,
		Color:    color,
		Rotation: mgl32.QuatIdent(),
	}
}

// NewGizmoRect spans width along X and depth along Z at center.
func NewGizmoRect(center mgl32.Vec3, width, depth float32, color [4]float32) GizmoComponent {
	return GizmoComponent{
		Type:     GizmoRect,
		Position: center,
		Scale:    mgl32.Vec3{width, 0, depth},
		Color:    color,
		Rotation: mgl32.QuatIdent(),
	}
}

// WithAlpha returns color with its alpha replaced.
func WithAlpha(color [4]float32, alpha float32) [4]float32 {
	color[3] = alpha
	return color
}
