package window

import (
	"fmt"
	"runtime"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/cogentcore/webgpu/wgpuglfw"
	"github.com/go-gl/glfw/v3.3/glfw"
)

type glfwWindow struct {
	window  *glfw.Window
	closing bool
}

// openPlatformWindow creates the GLFW window without a client API, since WebGPU creates its own
// surface, and routes GLFW callbacks into w.
func openPlatformWindow(w *engineWindow) error {
	runtime.LockOSThread()

	if err := glfw.Init(); err != nil {
		return fmt.Errorf("initialize GLFW: %w", err)
	}
	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	glfw.WindowHint(glfw.Resizable, glfwBool(w.resizable))

	win, err := glfw.CreateWindow(w.width, w.height, w.title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return fmt.Errorf("create GLFW window: %w", err)
	}
	win.SetSizeLimits(sizeLimit(w.minWidth), sizeLimit(w.minHeight), sizeLimit(w.maxWidth), sizeLimit(w.maxHeight))

	gw := &glfwWindow{window: win}
	w.platform = gw

	cursor := func() (float32, float32) {
		x, y := win.GetCursorPos()
		return float32(x), float32(y)
	}

	win.SetKeyCallback(func(_ *glfw.Window, key glfw.Key, _ int, action glfw.Action, _ glfw.ModifierKey) {
		if key == glfw.KeyEscape && action == glfw.Press {
			gw.closing = true
			win.SetShouldClose(true)
			return
		}
		x, y := cursor()
		switch action {
		case glfw.Press, glfw.Repeat:
			w.emit(Event{Kind: EventKeyDown, Key: int(key), X: x, Y: y})
		case glfw.Release:
			w.emit(Event{Kind: EventKeyUp, Key: int(key), X: x, Y: y})
		}
	})

	win.SetMouseButtonCallback(func(_ *glfw.Window, button glfw.MouseButton, action glfw.Action, _ glfw.ModifierKey) {
		b, ok := mouseButton(button)
		if !ok {
			return
		}
		x, y := cursor()
		kind := EventButtonDown
		if action == glfw.Release {
			kind = EventButtonUp
		}
		w.emit(Event{Kind: kind, Button: b, X: x, Y: y})
	})

	win.SetCursorPosCallback(func(_ *glfw.Window, x, y float64) {
		w.emit(Event{Kind: EventCursorMove, X: float32(x), Y: float32(y)})
	})

	win.SetScrollCallback(func(_ *glfw.Window, _, yoff float64) {
		x, y := cursor()
		w.emit(Event{Kind: EventScroll, Delta: float32(yoff), X: x, Y: y})
	})

	// The framebuffer size is in pixels, which is what the surface is configured with.
	win.SetFramebufferSizeCallback(func(_ *glfw.Window, width, height int) {
		w.resized(width, height)
	})
	w.width, w.height = win.GetFramebufferSize()
	return nil
}

func mouseButton(b glfw.MouseButton) (Button, bool) {
	switch b {
	case glfw.MouseButtonLeft:
		return ButtonLeft, true
	case glfw.MouseButtonRight:
		return ButtonRight, true
	case glfw.MouseButtonMiddle:
		return ButtonMiddle, true
	default:
		return 0, false
	}
}

func glfwBool(v bool) int {
	if v {
		return glfw.True
	}
	return glfw.False
}

func sizeLimit(v int) int {
	if v <= 0 {
		return glfw.DontCare
	}
	return v
}

func (g *glfwWindow) surfaceDescriptor() *wgpu.SurfaceDescriptor {
	return wgpuglfw.GetSurfaceDescriptor(g.window)
}

func (g *glfwWindow) poll() {
	glfw.PollEvents()
}

func (g *glfwWindow) open() bool {
	return !g.closing && !g.window.ShouldClose()
}

func (g *glfwWindow) destroy() {
	g.closing = true
	g.window.Destroy()
	glfw.Terminate()
}
