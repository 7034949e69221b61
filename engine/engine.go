package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/MKHenson/trike3d-sub000/common"
	"github.com/MKHenson/trike3d-sub000/engine/camera"
	"github.com/MKHenson/trike3d-sub000/engine/profiler"
	"github.com/MKHenson/trike3d-sub000/engine/renderer"
	"github.com/MKHenson/trike3d-sub000/engine/scene"
	"github.com/MKHenson/trike3d-sub000/engine/window"
)

// maxTicksPerFrame bounds the fixed-rate catch-up after a long frame.
const maxTicksPerFrame = 5

// ErrNoScene is returned by Step when no scene or camera is set.
var ErrNoScene = errors.New("engine: no scene or camera")

// Engine drives the frame loop on the calling thread: the window is pumped, fixed-rate ticks run,
// the scene is rendered and presented, and the profiler is fed the frame's stats.
type Engine interface {
	// Window returns the window, or nil for a headless engine.
	//
	// Returns:
	//   - window.Window: the window
	Window() window.Window

	// Renderer returns the renderer frames are drawn with.
	//
	// Returns:
	//   - renderer.Renderer: the renderer
	Renderer() renderer.Renderer

	// SetScene sets the scene rendered each frame.
	//
	// Parameters:
	//   - s: the scene
	SetScene(s scene.Scene)

	// Scene returns the rendered scene.
	//
	// Returns:
	//   - scene.Scene: the scene, or nil
	Scene() scene.Scene

	// SetCamera sets the camera frames are rendered from. Its aspect follows window resizes.
	//
	// Parameters:
	//   - c: the camera
	SetCamera(c camera.Camera)

	// Camera returns the render camera.
	//
	// Returns:
	//   - camera.Camera: the camera, or nil
	Camera() camera.Camera

	// EnableProfiler enables periodic profiling reports in the log.
	EnableProfiler()

	// DisableProfiler disables profiling reports.
	DisableProfiler()

	// SetTickRate sets how many fixed ticks run per second of frame time.
	//
	// Parameters:
	//   - hz: ticks per second, 60 if not positive
	SetTickRate(hz float64)

	// SetTickCallback registers the fixed-rate update. It runs on the frame thread before rendering,
	// zero or more times per frame.
	//
	// Parameters:
	//   - callback: function receiving the fixed tick duration
	SetTickCallback(callback func(step time.Duration))

	// SetRenderCallback registers a function called after each presented frame.
	//
	// Parameters:
	//   - callback: function receiving the frame's duration
	SetRenderCallback(callback func(delta time.Duration))

	// SetRenderFrameLimit caps the frame rate.
	//
	// Parameters:
	//   - fps: maximum frames per second, 0 for uncapped
	SetRenderFrameLimit(fps float64)

	// Step runs one frame.
	//
	// Returns:
	//   - error: ErrNoScene, or the render or present failure of the frame
	Step() error

	// Run steps frames until the window closes, ctx is done or Quit is called. Frames that fail to
	// build are logged and the loop continues. A renderer that cannot render stops the loop.
	//
	// Parameters:
	//   - ctx: cancels the loop
	//
	// Returns:
	//   - error: nil on a clean stop, the fatal renderer error, or ctx.Err()
	Run(ctx context.Context) error

	// Quit stops Run after the current frame. Safe to call more than once and from any goroutine.
	Quit()
}

type engine struct {
	mu *sync.Mutex

	window       window.Window
	renderer     renderer.Renderer
	ownsRenderer bool
	initialized  bool

	scene  scene.Scene
	camera camera.Camera

	profiler         *profiler.Profiler
	profilingEnabled bool

	tickRate       time.Duration
	tickCallback   func(step time.Duration)
	renderCallback func(delta time.Duration)
	frameLimit     time.Duration

	clock       func() time.Time
	lastFrame   time.Time
	accumulator time.Duration

	input inputState

	quit     chan struct{}
	quitOnce sync.Once
}

var _ Engine = &engine{}

// NewEngine creates an engine. With a window and no renderer, a WebGPU renderer is created for
// the window and initialized on the first frame. Without either the engine cannot draw and panics.
//
// Parameters:
//   - options: functional options for engine configuration
//
// Returns:
//   - Engine: the engine
func NewEngine(options ...EngineBuilderOption) Engine {
	e := &engine{
		mu:       &sync.Mutex{},
		tickRate: time.Second / 60,
		clock:    time.Now,
		quit:     make(chan struct{}),
	}
	for _, opt := range options {
		opt(e)
	}
	if e.profiler == nil {
		e.profiler = profiler.NewProfiler()
	}

	if e.renderer == nil {
		if e.window == nil {
			panic("engine: a window or a renderer is required")
		}
		e.renderer = renderer.NewRenderer(renderer.BackendTypeWGPU, e.window)
		e.ownsRenderer = true
	} else {
		e.initialized = true
	}

	if e.window != nil {
		e.window.SetResizeCallback(e.resize)
		e.window.SetEventCallback(e.handleEvent)
	}
	return e
}

func (e *engine) Window() window.Window {
	return e.window
}

func (e *engine) Renderer() renderer.Renderer {
	return e.renderer
}

func (e *engine) SetScene(s scene.Scene) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.scene = s
}

func (e *engine) Scene() scene.Scene {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.scene
}

func (e *engine) SetCamera(c camera.Camera) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.camera = c
}

func (e *engine) Camera() camera.Camera {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.camera
}

func (e *engine) EnableProfiler() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.profilingEnabled = true
}

func (e *engine) DisableProfiler() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.profilingEnabled = false
}

func (e *engine) SetTickRate(hz float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.tickRate = tickInterval(hz)
}

func (e *engine) SetTickCallback(callback func(step time.Duration)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.tickCallback = callback
}

func (e *engine) SetRenderCallback(callback func(delta time.Duration)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.renderCallback = callback
}

func (e *engine) SetRenderFrameLimit(fps float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.frameLimit = frameInterval(fps)
}

func tickInterval(hz float64) time.Duration {
	if hz <= 0 {
		hz = 60
	}
	return time.Duration(float64(time.Second) / hz)
}

func frameInterval(fps float64) time.Duration {
	if fps <= 0 {
		return 0
	}
	return time.Duration(float64(time.Second) / fps)
}

// resize follows the window framebuffer. Frame targets are resized before the next render.
func (e *engine) resize(width, height int) {
	e.renderer.SetSize(width, height, true)
	if c := e.Camera(); c != nil {
		c.SetAspect(float32(width) / float32(height))
	}
	common.Logger().Debug("engine: resized", "width", width, "height", height)
}

// start initializes a renderer the engine created. The surface takes the window's framebuffer size.
func (e *engine) start() error {
	if e.initialized {
		return nil
	}
	width, height := e.window.Size()
	if err := e.renderer.Initialize(width, height); err != nil {
		return fmt.Errorf("engine: initialize renderer: %w", err)
	}
	e.initialized = true
	return nil
}

func (e *engine) Step() error {
	if err := e.start(); err != nil {
		return err
	}
	if e.window != nil && !e.window.Pump() {
		e.Quit()
		return nil
	}

	e.mu.Lock()
	s, cam := e.scene, e.camera
	tick, rate, onRender := e.tickCallback, e.tickRate, e.renderCallback
	profiling := e.profilingEnabled
	e.mu.Unlock()
	if s == nil || cam == nil {
		return ErrNoScene
	}

	now := e.clock()
	var delta time.Duration
	if !e.lastFrame.IsZero() {
		delta = now.Sub(e.lastFrame)
	}
	e.lastFrame = now

	e.accumulator += delta
	for ticks := 0; e.accumulator >= rate; ticks++ {
		if ticks == maxTicksPerFrame {
			common.Logger().Warn("engine: dropping ticks after a long frame", "behind", e.accumulator)
			e.accumulator = 0
			break
		}
		if tick != nil {
			tick(rate)
		}
		e.accumulator -= rate
	}

	if err := e.renderer.Render(s, cam, nil); err != nil {
		return err
	}
	if err := e.renderer.Present(); err != nil {
		return fmt.Errorf("engine: present: %w", err)
	}

	if onRender != nil {
		onRender(delta)
	}
	if profiling {
		e.profiler.Tick(e.renderer.Stats())
	}
	return nil
}

func (e *engine) Run(ctx context.Context) error {
	defer func() {
		if e.window != nil && e.window.Running() {
			if err := e.window.Close(); err != nil {
				common.Logger().Warn("engine: close window", "error", err)
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-e.quit:
			return nil
		default:
		}

		started := e.clock()
		if err := e.Step(); err != nil {
			if fatal(err) {
				common.Logger().Error("engine: stopping", "error", err)
				return err
			}
			common.Logger().Error("engine: frame failed", "error", err)
		}

		e.mu.Lock()
		limit := e.frameLimit
		e.mu.Unlock()
		if limit > 0 {
			if remaining := limit - e.clock().Sub(started); remaining > 0 {
				time.Sleep(remaining)
			}
		}
	}
}

// fatal reports whether err means no later frame can succeed.
func fatal(err error) bool {
	return errors.Is(err, renderer.ErrCapability) ||
		errors.Is(err, renderer.ErrNotInitialized) ||
		errors.Is(err, ErrNoScene)
}

func (e *engine) Quit() {
	e.quitOnce.Do(func() {
		close(e.quit)
	})
}
