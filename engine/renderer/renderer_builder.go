package renderer

import (
	"time"

	"github.com/MKHenson/trike3d-sub000/common"
	"github.com/MKHenson/trike3d-sub000/engine/renderer/backend"
)

// RendererBuilderOption is a functional option applied to a renderer during construction via NewRenderer.
type RendererBuilderOption func(*renderer)

// WithClearColor sets the color the frame is cleared to before the sky is drawn.
// The alpha channel is set separately with WithClearAlpha.
//
// Parameters:
//   - c: the clear color
//
// Returns:
//   - RendererBuilderOption: a function that applies the clear color option to a renderer
func WithClearColor(c common.Color) RendererBuilderOption {
	return func(r *renderer) {
		r.clearColor = c
	}
}

// WithClearAlpha sets the alpha the frame is cleared to. The default is 1.
//
// Parameters:
//   - alpha: the clear alpha in [0, 1]
//
// Returns:
//   - RendererBuilderOption: a function that applies the clear alpha option to a renderer
func WithClearAlpha(alpha float32) RendererBuilderOption {
	return func(r *renderer) {
		r.clearAlpha = alpha
	}
}

// WithTransparencyQuality sets how transparent meshes are grouped into lighting units.
// The default is TransparencyQualityHigh.
//
// Parameters:
//   - q: the quality
//
// Returns:
//   - RendererBuilderOption: a function that applies the quality option to a renderer
func WithTransparencyQuality(q TransparencyQuality) RendererBuilderOption {
	return func(r *renderer) {
		r.quality = q
	}
}

// WithCullWorkers sets how many workers frustum tests are split across once the visual count
// reaches the parallel threshold. One worker, the default, culls on the render goroutine.
//
// Parameters:
//   - n: the worker count
//
// Returns:
//   - RendererBuilderOption: a function that applies the worker option to a renderer
func WithCullWorkers(n int) RendererBuilderOption {
	return func(r *renderer) {
		r.cullWorkers = n
	}
}

// WithParallelCullThreshold sets the visual count from which culling uses the worker pool.
// Zero or a negative value disables parallel culling.
//
// Parameters:
//   - n: the threshold
//
// Returns:
//   - RendererBuilderOption: a function that applies the threshold option to a renderer
func WithParallelCullThreshold(n int) RendererBuilderOption {
	return func(r *renderer) {
		r.cullThreshold = n
	}
}

// WithClock replaces the time source frame times are read from. Tests use it to step time
// deterministically.
//
// Parameters:
//   - clock: the time source
//
// Returns:
//   - RendererBuilderOption: a function that applies the clock option to a renderer
func WithClock(clock func() time.Time) RendererBuilderOption {
	return func(r *renderer) {
		r.clock = clock
	}
}

// WithShadowsEnabled toggles shadow maps for directional lights. Shadows are enabled by default.
//
// Parameters:
//   - enabled: whether shadows are drawn
//
// Returns:
//   - RendererBuilderOption: a function that applies the shadow option to a renderer
func WithShadowsEnabled(enabled bool) RendererBuilderOption {
	return func(r *renderer) {
		r.shadowsEnabled = enabled
	}
}

// WithPresentMode sets the surface present mode which controls how frames are delivered to the display.
//
// Parameters:
//   - mode: the PresentMode to use (VSync or Uncapped)
//
// Returns:
//   - RendererBuilderOption: a function that applies the present mode option to a renderer
func WithPresentMode(mode PresentMode) RendererBuilderOption {
	return func(r *renderer) {
		r.pendingPresentMode = &mode
	}
}

// WithForceSoftwareRenderer forces WGPU to use a CPU/software fallback adapter instead of
// hardware GPU acceleration. This requires a software Vulkan ICD to be installed on the system
// (e.g. SwiftShader or lavapipe).
//
// Parameters:
//   - force: true to force the software fallback adapter, false to use hardware (default)
//
// Returns:
//   - RendererBuilderOption: a function that applies the force software renderer option to a renderer
func WithForceSoftwareRenderer(force bool) RendererBuilderOption {
	return func(r *renderer) {
		r.forceFallbackAdapter = force
	}
}

// WithBackend draws with an existing backend instead of creating one of the requested type.
//
// Parameters:
//   - b: the backend
//
// Returns:
//   - RendererBuilderOption: a function that applies the backend option to a renderer
func WithBackend(b backend.Backend) RendererBuilderOption {
	return func(r *renderer) {
		r.injected = b
	}
}
