package window

import (
	"fmt"
	"sync"

	"github.com/cogentcore/webgpu/wgpu"
)

// Window is the platform surface a renderer presents to. Input is delivered as Events while the
// window is pumped, once per frame, on the thread that created it.
type Window interface {
	// SetResizeCallback sets the function called when the framebuffer changes size.
	//
	// Parameters:
	//   - callback: function receiving the new framebuffer width and height in pixels
	SetResizeCallback(callback func(width, height int))

	// SetEventCallback sets the function receiving input events.
	//
	// Parameters:
	//   - callback: function receiving each event, or nil to drop input
	SetEventCallback(callback func(Event))

	// SurfaceDescriptor returns the platform descriptor used to create a WebGPU surface.
	//
	// Returns:
	//   - *wgpu.SurfaceDescriptor: the descriptor, or nil if the window was closed
	SurfaceDescriptor() *wgpu.SurfaceDescriptor

	// Pump processes pending platform events without blocking. Callbacks run inside Pump.
	//
	// Returns:
	//   - bool: false once the window has been asked to close
	Pump() bool

	// Running reports whether the window is still open.
	//
	// Returns:
	//   - bool: true until the window is closed
	Running() bool

	// Close destroys the window and releases the platform.
	//
	// Returns:
	//   - error: an error if the window was already closed
	Close() error

	// Size returns the framebuffer size in pixels, which differs from the window size on high-DPI
	// displays.
	//
	// Returns:
	//   - int: width in pixels
	//   - int: height in pixels
	Size() (int, int)
}

type engineWindow struct {
	mu *sync.Mutex

	title     string
	width     int
	height    int
	minWidth  int
	minHeight int
	maxWidth  int
	maxHeight int
	resizable bool

	platform *glfwWindow

	onResize func(width, height int)
	onEvent  func(Event)
}

var _ Window = &engineWindow{}

// NewWindow creates and shows a window. Options are applied over a 1280x720 resizable default.
// A window that cannot be created is a fatal setup error and panics.
//
// Parameters:
//   - options: functional options to configure the window
//
// Returns:
//   - Window: the open window
func NewWindow(options ...WindowBuilderOption) Window {
	w := &engineWindow{
		mu:        &sync.Mutex{},
		title:     "trike3d",
		width:     1280,
		height:    720,
		minWidth:  320,
		minHeight: 200,
		resizable: true,
	}
	for _, opt := range options {
		opt(w)
	}
	if w.width <= 0 || w.height <= 0 {
		panic(fmt.Sprintf("window: invalid size %dx%d", w.width, w.height))
	}
	if err := openPlatformWindow(w); err != nil {
		panic(fmt.Sprintf("window: %v", err))
	}
	return w
}

func (w *engineWindow) SetResizeCallback(callback func(width, height int)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onResize = callback
}

func (w *engineWindow) SetEventCallback(callback func(Event)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onEvent = callback
}

func (w *engineWindow) SurfaceDescriptor() *wgpu.SurfaceDescriptor {
	if w.platform == nil {
		return nil
	}
	return w.platform.surfaceDescriptor()
}

func (w *engineWindow) Pump() bool {
	if w.platform == nil {
		return false
	}
	w.platform.poll()
	return w.Running()
}

func (w *engineWindow) Running() bool {
	return w.platform != nil && w.platform.open()
}

func (w *engineWindow) Close() error {
	if w.platform == nil {
		return fmt.Errorf("window: already closed")
	}
	w.platform.destroy()
	w.platform = nil
	return nil
}

func (w *engineWindow) Size() (int, int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.width, w.height
}

// resized records a new framebuffer size and notifies the resize callback outside the lock.
func (w *engineWindow) resized(width, height int) {
	w.mu.Lock()
	w.width, w.height = width, height
	cb := w.onResize
	w.mu.Unlock()

	// Minimized windows report a zero framebuffer.
	if cb != nil && width > 0 && height > 0 {
		cb(width, height)
	}
}

func (w *engineWindow) emit(ev Event) {
	w.mu.Lock()
	cb := w.onEvent
	w.mu.Unlock()
	if cb != nil {
		cb(ev)
	}
}
