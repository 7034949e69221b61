package engine

import (
	"context"
	"testing"
	"time"

	"github.com/MKHenson/trike3d-sub000/common"
	"github.com/MKHenson/trike3d-sub000/engine/camera"
	"github.com/MKHenson/trike3d-sub000/engine/geometry"
	"github.com/MKHenson/trike3d-sub000/engine/renderer"
	"github.com/MKHenson/trike3d-sub000/engine/renderer/backend"
	"github.com/MKHenson/trike3d-sub000/engine/renderer/material"
	"github.com/MKHenson/trike3d-sub000/engine/resource"
	"github.com/MKHenson/trike3d-sub000/engine/scene"
	"github.com/MKHenson/trike3d-sub000/engine/window"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeWindow replays queued events on Pump and closes after a number of pumps.
type fakeWindow struct {
	width, height int
	pumps         int
	closeAfter    int
	closed        bool
	queued        []window.Event
	onResize      func(int, int)
	onEvent       func(window.Event)
}

func (w *fakeWindow) SetResizeCallback(cb func(int, int))        { w.onResize = cb }
func (w *fakeWindow) SetEventCallback(cb func(window.Event))     { w.onEvent = cb }
func (w *fakeWindow) SurfaceDescriptor() *wgpu.SurfaceDescriptor { return nil }
func (w *fakeWindow) Running() bool                              { return !w.closed }
func (w *fakeWindow) Size() (int, int)                           { return w.width, w.height }

func (w *fakeWindow) Pump() bool {
	w.pumps++
	for _, ev := range w.queued {
		w.onEvent(ev)
	}
	w.queued = nil
	if w.closeAfter > 0 && w.pumps >= w.closeAfter {
		w.closed = true
	}
	return !w.closed
}

func (w *fakeWindow) Close() error {
	w.closed = true
	return nil
}

func (w *fakeWindow) resize(width, height int) {
	w.width, w.height = width, height
	w.onResize(width, height)
}

func steppedClock(step time.Duration) func() time.Time {
	now := time.Unix(0, 0)
	return func() time.Time {
		now = now.Add(step)
		return now
	}
}

func newHeadless(t *testing.T) (renderer.Renderer, *backend.RecordingBackend) {
	t.Helper()
	rb := backend.NewRecordingBackend()
	resource.Drain(rb)
	r := renderer.NewRenderer(renderer.BackendTypeRecording, nil, renderer.WithBackend(rb))
	require.NoError(t, r.Initialize(320, 240))
	t.Cleanup(r.Dispose)
	return r, rb
}

func newTestScene() (scene.Scene, camera.Camera) {
	box := scene.NewMesh(geometry.NewBox(1, 1, 1), material.NewStandardMaterial("box", common.Color{R: 1, A: 1}))
	cam := camera.NewCamera(camera.WithAspect(320.0 / 240.0))
	cam.SetController(camera.NewOrbitController(camera.WithRadius(5)))
	return scene.NewScene(scene.WithNodes(box)), cam
}

func TestNewEngineRequiresWindowOrRenderer(t *testing.T) {
	assert.Panics(t, func() { NewEngine() })
}

func TestStepWithoutScene(t *testing.T) {
	r, _ := newHeadless(t)
	e := NewEngine(WithRenderer(r))
	assert.ErrorIs(t, e.Step(), ErrNoScene)
}

func TestStepRendersAndPresents(t *testing.T) {
	r, rb := newHeadless(t)
	s, cam := newTestScene()

	var ticks []time.Duration
	var rendered int
	e := NewEngine(
		WithRenderer(r),
		WithScene(s, cam),
		WithTickRate(125),
		WithClock(steppedClock(16*time.Millisecond)),
		WithProfiling(true),
	)
	e.SetTickCallback(func(step time.Duration) { ticks = append(ticks, step) })
	e.SetRenderCallback(func(time.Duration) { rendered++ })

	require.NoError(t, e.Step())
	assert.Empty(t, ticks, "the first frame has no elapsed time")
	require.NoError(t, e.Step())
	assert.Equal(t, []time.Duration{8 * time.Millisecond, 8 * time.Millisecond}, ticks)

	assert.Equal(t, 2, r.RenderCount())
	assert.Equal(t, 2, rb.Frames())
	assert.Equal(t, 2, rendered)
}

func TestLongFrameDropsTicks(t *testing.T) {
	r, _ := newHeadless(t)
	s, cam := newTestScene()

	ticks := 0
	e := NewEngine(WithRenderer(r), WithScene(s, cam), WithClock(steppedClock(time.Second)))
	e.SetTickCallback(func(time.Duration) { ticks++ })

	require.NoError(t, e.Step())
	require.NoError(t, e.Step())
	assert.Equal(t, maxTicksPerFrame, ticks)

	require.NoError(t, e.Step())
	assert.Equal(t, 2*maxTicksPerFrame, ticks, "the backlog is dropped instead of carried over")
}

func TestRunStopsOnQuit(t *testing.T) {
	r, _ := newHeadless(t)
	s, cam := newTestScene()

	var e Engine
	frames := 0
	e = NewEngine(WithRenderer(r), WithScene(s, cam))
	e.SetRenderCallback(func(time.Duration) {
		frames++
		if frames == 3 {
			e.Quit()
		}
	})

	require.NoError(t, e.Run(context.Background()))
	assert.Equal(t, 3, frames)
	assert.NotPanics(t, e.Quit)
}

func TestRunStopsOnCancel(t *testing.T) {
	r, _ := newHeadless(t)
	s, cam := newTestScene()

	ctx, cancel := context.WithCancel(context.Background())
	e := NewEngine(WithRenderer(r), WithScene(s, cam))
	e.SetRenderCallback(func(time.Duration) { cancel() })

	assert.ErrorIs(t, e.Run(ctx), context.Canceled)
	assert.Equal(t, 1, r.RenderCount())
}

func TestRunStopsWhenWindowCloses(t *testing.T) {
	r, _ := newHeadless(t)
	s, cam := newTestScene()

	w := &fakeWindow{width: 320, height: 240, closeAfter: 4}
	e := NewEngine(WithWindow(w), WithRenderer(r), WithScene(s, cam))

	require.NoError(t, e.Run(context.Background()))
	assert.Equal(t, 3, r.RenderCount(), "the closing pump does not render")
	assert.True(t, w.closed)
}

func TestRunStopsWhenRendererCannotRender(t *testing.T) {
	rb := backend.NewRecordingBackend()
	r := renderer.NewRenderer(renderer.BackendTypeRecording, nil, renderer.WithBackend(rb))
	s, cam := newTestScene()

	e := NewEngine(WithRenderer(r), WithScene(s, cam))
	assert.ErrorIs(t, e.Run(context.Background()), renderer.ErrNotInitialized)
}

func TestResizeFollowsWindow(t *testing.T) {
	r, rb := newHeadless(t)
	s, cam := newTestScene()
	w := &fakeWindow{width: 320, height: 240}
	NewEngine(WithWindow(w), WithRenderer(r), WithScene(s, cam))

	w.resize(800, 400)
	width, height := r.Size()
	assert.Equal(t, 800, width)
	assert.Equal(t, 400, height)
	assert.InDelta(t, 2.0, cam.Aspect(), 1e-6)
	assert.Equal(t, 1, rb.Count(backend.OpResize))
}

func TestInputDrivesController(t *testing.T) {
	r, _ := newHeadless(t)
	s, cam := newTestScene()
	w := &fakeWindow{width: 320, height: 240}
	e := NewEngine(WithWindow(w), WithRenderer(r), WithScene(s, cam))
	ctrl := cam.Controller()

	azimuth := ctrl.Azimuth()
	w.queued = []window.Event{
		{Kind: window.EventButtonDown, Button: window.ButtonLeft, X: 100, Y: 100},
		{Kind: window.EventCursorMove, X: 110, Y: 100},
		{Kind: window.EventButtonUp, Button: window.ButtonLeft, X: 110, Y: 100},
		{Kind: window.EventCursorMove, X: 200, Y: 100},
	}
	require.NoError(t, e.Step())
	assert.InDelta(t, azimuth-0.3, ctrl.Azimuth(), 1e-5, "only the drag orbits")

	target := ctrl.Target()
	w.queued = []window.Event{
		{Kind: window.EventButtonDown, Button: window.ButtonRight, X: 0, Y: 0},
		{Kind: window.EventCursorMove, X: 0, Y: 50},
		{Kind: window.EventButtonUp, Button: window.ButtonRight},
		{Kind: window.EventScroll, Delta: 2},
	}
	require.NoError(t, e.Step())
	assert.NotEqual(t, target, ctrl.Target())
	assert.InDelta(t, 3.0, ctrl.Radius(), 1e-5)
}
