package renderer

import (
	"github.com/MKHenson/trike3d-sub000/engine/renderer/backend"
	"github.com/MKHenson/trike3d-sub000/engine/renderer/backend/webgpu"
	"github.com/MKHenson/trike3d-sub000/engine/window"
)

// RendererBackendType identifies the GPU backend implementation used by the Renderer.
type RendererBackendType int

const (
	// BackendTypeWGPU selects the WebGPU-based rendering backend.
	BackendTypeWGPU RendererBackendType = iota

	// BackendTypeRecording selects the headless recording backend. No window is required.
	BackendTypeRecording
)

func (t RendererBackendType) String() string {
	switch t {
	case BackendTypeRecording:
		return "recording"
	default:
		return "wgpu"
	}
}

// PresentMode controls how rendered frames are presented to the display surface.
type PresentMode = backend.PresentMode

const (
	// PresentModeVSync waits for the next vertical blank before presenting, capping frame rate
	// to the monitor's refresh rate. Eliminates tearing.
	PresentModeVSync = backend.PresentModeVSync

	// PresentModeUncapped presents frames immediately without waiting for vertical blank.
	// May cause screen tearing but provides the lowest latency.
	PresentModeUncapped = backend.PresentModeUncapped
)

// newBackend creates the backend selected by t. The window is only consulted by the WebGPU backend.
func newBackend(t RendererBackendType, win window.Window, forceFallbackAdapter bool) backend.Backend {
	switch t {
	case BackendTypeRecording:
		return backend.NewRecordingBackend()
	case BackendTypeWGPU:
		fallthrough
	default:
		if win == nil {
			panic("renderer: the wgpu backend requires a window")
		}
		return webgpu.NewBackend(win.SurfaceDescriptor(), forceFallbackAdapter)
	}
}
