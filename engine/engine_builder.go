package engine

import (
	"time"

	"github.com/MKHenson/trike3d-sub000/engine/camera"
	"github.com/MKHenson/trike3d-sub000/engine/profiler"
	"github.com/MKHenson/trike3d-sub000/engine/renderer"
	"github.com/MKHenson/trike3d-sub000/engine/scene"
	"github.com/MKHenson/trike3d-sub000/engine/window"
)

// EngineBuilderOption is a functional option for configuring an Engine.
type EngineBuilderOption func(*engine)

// WithProfiling enables or disables profiling reports.
//
// Parameters:
//   - enabled: if true, reports are logged once per profiler interval
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithProfiling(enabled bool) EngineBuilderOption {
	return func(e *engine) {
		e.profilingEnabled = enabled
	}
}

// WithProfiler replaces the default profiler.
//
// Parameters:
//   - p: the profiler
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithProfiler(p *profiler.Profiler) EngineBuilderOption {
	return func(e *engine) {
		e.profiler = p
	}
}

// WithTickRate sets the fixed update rate. Values <= 0 select 60Hz.
//
// Parameters:
//   - hz: ticks per second
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithTickRate(hz float64) EngineBuilderOption {
	return func(e *engine) {
		e.tickRate = tickInterval(hz)
	}
}

// WithWindow sets the window the engine pumps and presents to.
//
// Parameters:
//   - w: an open window
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithWindow(w window.Window) EngineBuilderOption {
	return func(e *engine) {
		e.window = w
	}
}

// WithRenderer sets an initialized renderer instead of creating one for the window.
//
// Parameters:
//   - r: the renderer
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithRenderer(r renderer.Renderer) EngineBuilderOption {
	return func(e *engine) {
		e.renderer = r
	}
}

// WithScene sets the scene and the camera it is rendered from.
//
// Parameters:
//   - s: the scene
//   - c: the camera
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithScene(s scene.Scene, c camera.Camera) EngineBuilderOption {
	return func(e *engine) {
		e.scene, e.camera = s, c
	}
}

// WithRenderFrameLimit caps the frame rate. Pass 0 to uncap the loop (default).
//
// Parameters:
//   - fps: maximum frames per second
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithRenderFrameLimit(fps float64) EngineBuilderOption {
	return func(e *engine) {
		e.frameLimit = frameInterval(fps)
	}
}

// WithClock replaces time.Now as the frame clock.
//
// Parameters:
//   - clock: the clock
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithClock(clock func() time.Time) EngineBuilderOption {
	return func(e *engine) {
		e.clock = clock
	}
}
