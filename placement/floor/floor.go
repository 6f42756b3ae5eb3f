package floor

// MinHeight is the smallest floor height accepted; smaller values are clamped.
const MinHeight float32 = 0.01

// DefaultCount is the size of the default floor roster.
const DefaultCount = 3

type Floor struct {
	Height       float32 `json:"height" yaml:"height"`
	GhostOpacity float32 `json:"ghostOpacity" yaml:"ghostOpacity"`
	ShowGhost    bool    `json:"showGhost" yaml:"showGhost"`
}

func Default() Floor {
	return Floor{Height: 3, GhostOpacity: 0.5, ShowGhost: true}
}

func Defaults(n int) []Floor {
	res := make([]Floor, n)
	for i := range res {
		res[i] = Default()
	}
	return res
}

// Clamp keeps height positive and ghost opacity in [0, 1].
func (f Floor) Clamp() Floor {
	if !(f.Height >= MinHeight) {
		f.Height = MinHeight
	}
	if !(f.GhostOpacity >= 0) {
		f.GhostOpacity = 0
	}
	if f.GhostOpacity > 1 {
		f.GhostOpacity = 1
	}
	return f
}

// Patch is a partial floor configuration. Nil fields are left untouched.
type Patch struct {
	Height       *float32 `json:"height,omitempty" yaml:"height,omitempty"`
	GhostOpacity *float32 `json:"ghostOpacity,omitempty" yaml:"ghostOpacity,omitempty"`
	ShowGhost    *bool    `json:"showGhost,omitempty" yaml:"showGhost,omitempty"`
}

func (f Floor) Merge(p Patch) Floor {
	if p.Height != nil {
		f.Height = *p.Height
	}
	if p.GhostOpacity != nil {
		f.GhostOpacity = *p.GhostOpacity
	}
	if p.ShowGhost != nil {
		f.ShowGhost = *p.ShowGhost
	}
	return f
}

// PatchOf turns a full floor into a patch that sets every field.
func PatchOf(f Floor) Patch {
	return Patch{Height: &f.Height, GhostOpacity: &f.GhostOpacity, ShowGhost: &f.ShowGhost}
}
