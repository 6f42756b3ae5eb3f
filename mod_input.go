package storey

import (
	"fmt"
	"slices"
	"strings"
)

const (
	KeyA int = iota
	KeyB
	KeyC
	KeyD
	KeyE
	KeyF
	KeyG
	KeyH
	KeyI
	KeyJ
	KeyK
	KeyL
	KeyM
	KeyN
	KeyO
	KeyP
	KeyQ
	KeyR
	KeyS
	KeyT
	KeyU
	KeyV
	KeyW
	KeyX
	KeyY
	KeyZ
	Key0
	Key1
	Key2
	Key3
	Key4
	Key5
	Key6
	Key7
	Key8
	Key9
	KeySpace
	KeyEnter
	KeyEscape
	KeyTab
	KeyBackspace
	KeyInsert
	KeyDelete
	KeyRight
	KeyLeft
	KeyDown
	KeyUp
	KeyPageUp
	KeyPageDown
	KeyF1
	KeyF2
	KeyF3
	KeyF4
	KeyF5
	KeyF6
	KeyF7
	KeyF8
	KeyF9
	KeyF10
	KeyF11
	KeyF12
	KeyMinus
	KeyEqual
	KeyKPPlus
	KeyKPMinus
	KeyShift
	KeyControl
	KeyLeftAlt
	MouseButtonLeft
	MouseButtonRight
	MouseButtonMiddle
	keyCount
)

// Input is the per-frame device state. Just* flags hold for one frame.
type Input struct {
	Pressed      [256]bool
	JustPressed  [256]bool
	JustReleased [256]bool

	MouseX, MouseY           float64
	MouseDeltaX, MouseDeltaY float64
	ScrollX, ScrollY         float64

	WindowWidth, WindowHeight int
	CloseRequested            bool

	// Dropped lists files dropped onto the window this frame.
	Dropped []string
}

// BeginFrame clears the one-frame flags before a source polls.
func (in *Input) BeginFrame() {
	clear(in.JustPressed[:])
	clear(in.JustReleased[:])
	in.MouseDeltaX, in.MouseDeltaY = 0, 0
	in.ScrollX, in.ScrollY = 0, 0
	in.Dropped = in.Dropped[:0]
}

// SetKey records the level of key and derives its edges.
func (in *Input) SetKey(key int, down bool) {
	if down && !in.Pressed[key] {
		in.JustPressed[key] = true
	}
	if !down && in.Pressed[key] {
		in.JustReleased[key] = true
	}
	in.Pressed[key] = down
}

func (in *Input) MoveMouse(x, y float64) {
	in.MouseDeltaX += x - in.MouseX
	in.MouseDeltaY += y - in.MouseY
	in.MouseX, in.MouseY = x, y
}

func (in *Input) Scroll(dx, dy float64) {
	in.ScrollX += dx
	in.ScrollY += dy
}

// InputSource feeds device state into Input once per frame.
type InputSource interface {
	Poll(input *Input)
	ShouldClose() bool
}

type InputDevice struct {
	Source InputSource
}

type InputModule struct {
	Source InputSource
}

func (mod InputModule) Install(app *App, cmd *Commands) {
	cmd.AddResources(&Input{}, &InputDevice{Source: mod.Source})
	app.UseSystem(
		System(inputSystem).
			InStage(PreUpdate).
			RunAlways(),
	)
}

func inputSystem(device *InputDevice, input *Input) {
	input.BeginFrame()
	if device.Source == nil {
		return
	}
	device.Source.Poll(input)
	input.CloseRequested = device.Source.ShouldClose()
}

var keyNames = func() map[string]int {
	names := map[string]int{
		"space":        KeySpace,
		"enter":        KeyEnter,
		"escape":       KeyEscape,
		"tab":          KeyTab,
		"backspace":    KeyBackspace,
		"insert":       KeyInsert,
		"delete":       KeyDelete,
		"right":        KeyRight,
		"left":         KeyLeft,
		"down":         KeyDown,
		"up":           KeyUp,
		"pageup":       KeyPageUp,
		"pagedown":     KeyPageDown,
		"minus":        KeyMinus,
		"equal":        KeyEqual,
		"kp_plus":      KeyKPPlus,
		"kp_minus":     KeyKPMinus,
		"shift":        KeyShift,
		"ctrl":         KeyControl,
		"alt":          KeyLeftAlt,
		"mouse_left":   MouseButtonLeft,
		"mouse_right":  MouseButtonRight,
		"mouse_middle": MouseButtonMiddle,
	}
	for i := 0; i < 26; i++ {
		names[string(rune('a'+i))] = KeyA + i
	}
	for i := 0; i < 10; i++ {
		names[string(rune('0'+i))] = Key0 + i
	}
	for i := 0; i < 12; i++ {
		names[fmt.Sprintf("f%d", i+1)] = KeyF1 + i
	}
	return names
}()

// KeyByName resolves a binding key name such as "pageup" or "q".
func KeyByName(name string) (int, bool) {
	key, ok := keyNames[strings.ToLower(strings.TrimSpace(name))]
	return key, ok
}

// Chord is a key with an optional Ctrl modifier.
type Chord struct {
	Key  int
	Ctrl bool
}

func ParseChord(s string) (Chord, error) {
	var c Chord
	name := strings.ToLower(strings.TrimSpace(s))
	if rest, ok := strings.CutPrefix(name, "ctrl+"); ok {
		c.Ctrl = true
		name = rest
	}
	key, ok := KeyByName(name)
	if !ok {
		return Chord{}, fmt.Errorf("unknown key %q", s)
	}
	c.Key = key
	return c, nil
}

// Bindings maps editor actions to chords.
type Bindings struct {
	actions map[string][]Chord
}

func ParseBindings(raw map[string][]string) (*Bindings, error) {
	b := &Bindings{actions: make(map[string][]Chord, len(raw))}
	for action, keys := range raw {
		for _, k := range keys {
			c, err := ParseChord(k)
			if err != nil {
				return nil, fmt.Errorf("binding %s: %w", action, err)
			}
			b.actions[action] = append(b.actions[action], c)
		}
	}
	return b, nil
}

// Triggered reports whether a chord of action was pressed this frame. Plain
// chords do not fire while Ctrl is held.
func (b *Bindings) Triggered(in *Input, action string) bool {
	return slices.ContainsFunc(b.actions[action], func(c Chord) bool {
		return in.JustPressed[c.Key] && c.Ctrl == in.Pressed[KeyControl]
	})
}

// Held reports whether any key of action is down.
func (b *Bindings) Held(in *Input, action string) bool {
	return slices.ContainsFunc(b.actions[action], func(c Chord) bool {
		return in.Pressed[c.Key] && (!c.Ctrl || in.Pressed[KeyControl])
	})
}

func (b *Bindings) Chords(action string) []Chord {
	return slices.Clone(b.actions[action])
}
