// Package glfwinput drives the editor from a GLFW window.
package glfwinput

import (
	"runtime"

	"github.com/go-gl/glfw/v3.3/glfw"

	"github.com/gekko3d/storey"
)

// Window owns the GLFW window and implements storey.InputSource.
type Window struct {
	win    *glfw.Window
	scroll [2]float64
	drops  []string
}

// Open creates the window on the calling goroutine, which it locks to the
// OS thread. Call Close from the same goroutine.
func Open(width, height int, title string) (*Window, error) {
	if width <= 0 {
		width = 1280
	}
	if height <= 0 {
		height = 720
	}
	if title == "" {
		title = "storey"
	}

	runtime.LockOSThread()
	if err := glfw.Init(); err != nil {
		return nil, err
	}
	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	glfw.WindowHint(glfw.Resizable, glfw.True)

	win, err := glfw.CreateWindow(width, height, title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, err
	}

	w := &Window{win: win}
	win.SetScrollCallback(func(_ *glfw.Window, dx, dy float64) {
		w.scroll[0] += dx
		w.scroll[1] += dy
	})
	win.SetDropCallback(func(_ *glfw.Window, names []string) {
		w.drops = append(w.drops, names...)
	})
	return w, nil
}

func (w *Window) Close() {
	w.win.Destroy()
	glfw.Terminate()
}

func (w *Window) SetTitle(title string) { w.win.SetTitle(title) }

func (w *Window) ShouldClose() bool { return w.win.ShouldClose() }

// Poll pumps window events and copies the device state into input.
func (w *Window) Poll(input *storey.Input) {
	glfw.PollEvents()

	for key, glfwKey := range keyToGlfw {
		input.SetKey(key, w.win.GetKey(glfwKey) == glfw.Press || w.alternate(key))
	}
	for key, btn := range buttonToGlfw {
		input.SetKey(key, w.win.GetMouseButton(btn) == glfw.Press)
	}

	input.MoveMouse(w.win.GetCursorPos())
	input.WindowWidth, input.WindowHeight = w.win.GetSize()

	input.Scroll(w.scroll[0], w.scroll[1])
	w.scroll = [2]float64{}
	input.Dropped = append(input.Dropped, w.drops...)
	w.drops = w.drops[:0]
}

// alternate reports the right-hand twin of a modifier.
func (w *Window) alternate(key int) bool {
	switch key {
	case storey.KeyShift:
		return w.win.GetKey(glfw.KeyRightShift) == glfw.Press
	case storey.KeyControl:
		return w.win.GetKey(glfw.KeyRightControl) == glfw.Press
	}
	return false
}

var buttonToGlfw = map[int]glfw.MouseButton{
	storey.MouseButtonLeft:   glfw.MouseButtonLeft,
	storey.MouseButtonRight:  glfw.MouseButtonRight,
	storey.MouseButtonMiddle: glfw.MouseButtonMiddle,
}

var keyToGlfw = map[int]glfw.Key{
	storey.KeyA:         glfw.KeyA,
	storey.KeyB:         glfw.KeyB,
	storey.KeyC:         glfw.KeyC,
	storey.KeyD:         glfw.KeyD,
	storey.KeyE:         glfw.KeyE,
	storey.KeyF:         glfw.KeyF,
	storey.KeyG:         glfw.KeyG,
	storey.KeyH:         glfw.KeyH,
	storey.KeyI:         glfw.KeyI,
	storey.KeyJ:         glfw.KeyJ,
	storey.KeyK:         glfw.KeyK,
	storey.KeyL:         glfw.KeyL,
	storey.KeyM:         glfw.KeyM,
	storey.KeyN:         glfw.KeyN,
	storey.KeyO:         glfw.KeyO,
	storey.KeyP:         glfw.KeyP,
	storey.KeyQ:         glfw.KeyQ,
	storey.KeyR:         glfw.KeyR,
	storey.KeyS:         glfw.KeyS,
	storey.KeyT:         glfw.KeyT,
	storey.KeyU:         glfw.KeyU,
	storey.KeyV:         glfw.KeyV,
	storey.KeyW:         glfw.KeyW,
	storey.KeyX:         glfw.KeyX,
	storey.KeyY:         glfw.KeyY,
	storey.KeyZ:         glfw.KeyZ,
	storey.Key0:         glfw.Key0,
	storey.Key1:         glfw.Key1,
	storey.Key2:         glfw.Key2,
	storey.Key3:         glfw.Key3,
	storey.Key4:         glfw.Key4,
	storey.Key5:         glfw.Key5,
	storey.Key6:         glfw.Key6,
	storey.Key7:         glfw.Key7,
	storey.Key8:         glfw.Key8,
	storey.Key9:         glfw.Key9,
	storey.KeySpace:     glfw.KeySpace,
	storey.KeyEnter:     glfw.KeyEnter,
	storey.KeyEscape:    glfw.KeyEscape,
	storey.KeyTab:       glfw.KeyTab,
	storey.KeyBackspace: glfw.KeyBackspace,
	storey.KeyInsert:    glfw.KeyInsert,
	storey.KeyDelete:    glfw.KeyDelete,
	storey.KeyRight:     glfw.KeyRight,
	storey.KeyLeft:      glfw.KeyLeft,
	storey.KeyDown:      glfw.KeyDown,
	storey.KeyUp:        glfw.KeyUp,
	storey.KeyPageUp:    glfw.KeyPageUp,
	storey.KeyPageDown:  glfw.KeyPageDown,
	storey.KeyF1:        glfw.KeyF1,
	storey.KeyF2:        glfw.KeyF2,
	storey.KeyF3:        glfw.KeyF3,
	storey.KeyF4:        glfw.KeyF4,
	storey.KeyF5:        glfw.KeyF5,
	storey.KeyF6:        glfw.KeyF6,
	storey.KeyF7:        glfw.KeyF7,
	storey.KeyF8:        glfw.KeyF8,
	storey.KeyF9:        glfw.KeyF9,
	storey.KeyF10:       glfw.KeyF10,
	storey.KeyF11:       glfw.KeyF11,
	storey.KeyF12:       glfw.KeyF12,
	storey.KeyMinus:     glfw.KeyMinus,
	storey.KeyEqual:     glfw.KeyEqual,
	storey.KeyKPPlus:    glfw.KeyKPAdd,
	storey.KeyKPMinus:   glfw.KeyKPSubtract,
	storey.KeyShift:     glfw.KeyLeftShift,
	storey.KeyControl:   glfw.KeyLeftControl,
	storey.KeyLeftAlt:   glfw.KeyLeftAlt,
}

// Module installs the input pipeline fed by Window and mirrors the floor
// label into the window title. It needs FloorsModule.
type Module struct {
	Window *Window
}

func (m Module) Install(app *storey.App, cmd *storey.Commands) {
	app.UseModules(storey.InputModule{Source: m.Window})
	title := ""
	app.UseSystem(
		storey.System(func(cmd *storey.Commands, grids *storey.FloorGrids) {
			label, ok := storey.GetComponent[storey.TextComponent](cmd, grids.Label)
			if !ok || label.Text == title {
				return
			}
			title = label.Text
			m.Window.SetTitle("storey - " + title)
		}).
			InStage(storey.PostRender).
			RunAlways(),
	)
}
