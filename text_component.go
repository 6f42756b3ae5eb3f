package storey

// TextComponent is an on-screen label, positioned in pixels from the
// top-left corner.
type TextComponent struct {
	Text     string
	Position [2]float32
	Scale    float32
	Color    [4]float32
}
