package renderer

import (
	"fmt"
	"image"
	"image/color"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/MKHenson/trike3d-sub000/common"
	"github.com/MKHenson/trike3d-sub000/engine/camera"
	"github.com/MKHenson/trike3d-sub000/engine/geometry"
	"github.com/MKHenson/trike3d-sub000/engine/light"
	"github.com/MKHenson/trike3d-sub000/engine/renderer/backend"
	"github.com/MKHenson/trike3d-sub000/engine/renderer/material"
	"github.com/MKHenson/trike3d-sub000/engine/renderer/pass"
	"github.com/MKHenson/trike3d-sub000/engine/renderer/texture"
	"github.com/MKHenson/trike3d-sub000/engine/resource"
	"github.com/MKHenson/trike3d-sub000/engine/scene"
	"github.com/MKHenson/trike3d-sub000/engine/window"
)

// renderer is the implementation of the Renderer interface.
type renderer struct {
	mu *sync.Mutex

	backendType RendererBackendType
	backend     backend.Backend
	programs    *material.ProgramCache
	state       *stateCache
	stats       Stats
	errs        []error

	initialized bool
	capErr      error
	cubeTargets bool
	width       int
	height      int
	viewport    common.Viewport

	clearColor     common.Color
	clearAlpha     float32
	quality        TransparencyQuality
	shadowsEnabled bool
	cullWorkers    int
	cullThreshold  int

	clock       func() time.Time
	start       time.Time
	last        time.Time
	elapsed     time.Duration
	delta       time.Duration
	renderCount int

	// Pre-creation config collected from builder options
	forceFallbackAdapter bool
	pendingPresentMode   *PresentMode
	injected             backend.Backend

	culler     *culler
	sorter     *TransparencySorter
	collection scene.Collection
	visuals    []*scene.Mesh
	main       *view
	views      map[*texture.RenderTarget]*view
	built      map[geometry.Geometry]int

	screenQuad     geometry.Geometry
	composition    material.Material
	screen         material.Material
	shadowMaterial material.Material
	fallback       *texture.ImageTexture

	shadowLights []*scene.Light
	shadowViews  map[*light.Shadow]*texture.TargetTexture
	receivers    shadowReceivers
}

// Renderer draws scenes with a deferred shading pipeline.
//
// Every frame fills two g-buffers with the albedo, normals and depth of the solid meshes, accumulates
// light volumes into a light buffer and composites both into the frame. Transparent meshes are lit
// the same way in back to front units and blended over the result. The stencil buffer partitions the
// frame so that each stage only touches the pixels it owns.
type Renderer interface {
	// Backend returns the backend the renderer draws with.
	//
	// Returns:
	//   - backend.Backend: the backend
	Backend() backend.Backend

	// Initialize initializes the backend for a surface size, checks the device capabilities and
	// compiles the built-in materials. It must succeed before Render is called.
	//
	// Parameters:
	//   - width: the surface width in pixels
	//   - height: the surface height in pixels
	//
	// Returns:
	//   - error: ErrCapability when float render targets are unsupported, or the backend error
	Initialize(width, height int) error

	// Render draws one frame of a scene as seen by a camera.
	//
	// Parameters:
	//   - s: the scene to draw
	//   - cam: the camera to draw from; combined cameras draw through their active sub-camera
	//   - target: the render target receiving the frame, or nil for the surface
	//
	// Returns:
	//   - error: ErrNotInitialized, the capability error, or the first build or draw failure
	Render(s scene.Scene, cam camera.Camera, target *texture.RenderTarget) error

	// Present shows the frame drawn to the surface.
	//
	// Returns:
	//   - error: an error if the surface could not be presented
	Present() error

	// Errors returns the errors of the frames aborted since the renderer was created, oldest first.
	//
	// Returns:
	//   - []error: a copy of the recorded errors
	Errors() []error

	// SetSize changes the frame size. Every frame-sized target is resized and the viewport is
	// reset to cover the frame.
	//
	// Parameters:
	//   - width: the new width in pixels
	//   - height: the new height in pixels
	//   - updateSurface: whether the backend surface is reconfigured as well
	SetSize(width, height int, updateSurface bool)

	// Size returns the frame size.
	//
	// Returns:
	//   - int: the width in pixels
	//   - int: the height in pixels
	Size() (width, height int)

	// SetViewport sets the rectangle of the surface the final blit covers.
	//
	// Parameters:
	//   - v: the viewport in surface pixels
	SetViewport(v common.Viewport)

	// ClearColor returns the color the frame is cleared to before the sky is drawn.
	//
	// Returns:
	//   - common.Color: the clear color; its alpha is ClearAlpha
	ClearColor() common.Color

	// SetClearColor sets the color the frame is cleared to. The alpha of c is ignored.
	//
	// Parameters:
	//   - c: the clear color
	SetClearColor(c common.Color)

	// ClearAlpha returns the alpha the frame is cleared to.
	//
	// Returns:
	//   - float32: the clear alpha
	ClearAlpha() float32

	// SetClearAlpha sets the alpha the frame is cleared to.
	//
	// Parameters:
	//   - alpha: the clear alpha in [0, 1]
	SetClearAlpha(alpha float32)

	// TransparencyQuality returns how transparent meshes are grouped into lighting units.
	//
	// Returns:
	//   - TransparencyQuality: the quality
	TransparencyQuality() TransparencyQuality

	// SetTransparencyQuality sets how transparent meshes are grouped into lighting units.
	//
	// Parameters:
	//   - q: the quality
	SetTransparencyQuality(q TransparencyQuality)

	// ShadowsEnabled reports whether directional lights draw shadow maps.
	//
	// Returns:
	//   - bool: true if shadows are drawn
	ShadowsEnabled() bool

	// SetShadowsEnabled toggles shadow maps. Receiving materials recompile on the next frame.
	//
	// Parameters:
	//   - enabled: whether shadows are drawn
	SetShadowsEnabled(enabled bool)

	// SetPresentMode changes the present mode of the surface.
	//
	// Parameters:
	//   - mode: the present mode
	SetPresentMode(mode PresentMode)

	// RenderCount returns the number of frames rendered successfully.
	//
	// Returns:
	//   - int: the frame count
	RenderCount() int

	// Elapsed returns the time between the first frame and the latest one.
	//
	// Returns:
	//   - time.Duration: the elapsed time
	Elapsed() time.Duration

	// Stats returns the counters of the latest frame.
	//
	// Returns:
	//   - Stats: a copy of the counters
	Stats() Stats

	// Programs returns the program cache shared by every material the renderer compiles.
	//
	// Returns:
	//   - *material.ProgramCache: the cache
	Programs() *material.ProgramCache

	// Dispose releases every resource the renderer owns and drains the resource queue.
	Dispose()
}

var _ Renderer = &renderer{}

// NewRenderer creates a new Renderer instance with the specified backend type and options.
// The backend itself is initialized by Initialize.
//
// Parameters:
//   - backendType: the type of backend to use
//   - win: the window to draw into; it may be nil for the recording backend
//   - options: variadic list of RendererBuilderOption functions to configure the Renderer
//
// Returns:
//   - Renderer: a new Renderer instance
func NewRenderer(backendType RendererBackendType, win window.Window, options ...RendererBuilderOption) Renderer {
	r := &renderer{
		mu:             &sync.Mutex{},
		backendType:    backendType,
		programs:       material.NewProgramCache(),
		clearAlpha:     1,
		quality:        TransparencyQualityHigh,
		shadowsEnabled: true,
		cullWorkers:    1,
		cullThreshold:  DefaultParallelCullThreshold,
		clock:          time.Now,
		sorter:         NewTransparencySorter(),
		views:          make(map[*texture.RenderTarget]*view),
		built:          make(map[geometry.Geometry]int),
		shadowViews:    make(map[*light.Shadow]*texture.TargetTexture),
		composition:    material.NewCompositionMaterial(),
		screen:         material.NewScreenMaterial(),
		shadowMaterial: material.NewShadowMaterial(),
	}
	for _, opt := range options {
		opt(r)
	}

	if r.injected != nil {
		r.backend = r.injected
	} else {
		r.backend = newBackend(backendType, win, r.forceFallbackAdapter)
	}
	r.state = newStateCache(r.backend, &r.stats)
	r.culler = newCuller(r.cullWorkers, r.cullThreshold)
	return r
}

func (r *renderer) Backend() backend.Backend {
	return r.backend
}

func (r *renderer) Initialize(width, height int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.initialized {
		return nil
	}
	if err := r.backend.Initialize(width, height); err != nil {
		return fmt.Errorf("failed to initialize %s backend: %w", r.backendType, err)
	}
	if r.pendingPresentMode != nil {
		r.backend.SetPresentMode(*r.pendingPresentMode)
	}

	caps := r.backend.Capabilities()
	if !caps.FloatTargets {
		r.capErr = fmt.Errorf("%w: floating point render targets", ErrCapability)
		common.Logger().Error("renderer: device cannot run the deferred pipeline", "backend", r.backendType, "error", r.capErr)
		return r.capErr
	}
	r.cubeTargets = caps.CubeTargets
	if !r.cubeTargets {
		common.Logger().Warn("renderer: cube render targets unsupported, cube renderers and convolvers are skipped", "backend", r.backendType)
	}

	r.width, r.height = width, height
	r.viewport = common.Viewport{Width: width, Height: height}
	c := pass.NewCollection("main", width, height, pass.WithCollectionClearColor(r.frameClearColor()))
	c.Pass(material.PassScreen).SetAutoClear(backend.ClearAll)
	c.Pass(material.PassScreen).SetClearColor(r.frameClearColor())
	r.main = newView(c)

	r.screenQuad = geometry.NewScreenQuad()
	white := image.NewRGBA(image.Rect(0, 0, 1, 1))
	white.Set(0, 0, color.White)
	r.fallback = texture.NewImageTexture(white, texture.WithLabel("fallback"), texture.WithMipmaps(false))

	for _, m := range []material.Material{r.composition, r.screen, r.shadowMaterial} {
		if err := m.Compile(r.backend, r.programs); err != nil {
			return fmt.Errorf("failed to compile built-in material %s: %w", m.Name(), err)
		}
	}

	r.initialized = true
	common.Logger().Info("renderer: initialized", "backend", r.backendType, "width", width, "height", height,
		"cubeTargets", r.cubeTargets, "maxTextureUnits", caps.MaxTextureUnits)
	return nil
}

func (r *renderer) Render(s scene.Scene, cam camera.Camera, target *texture.RenderTarget) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.capErr != nil {
		return r.capErr
	}
	if !r.initialized {
		return ErrNotInitialized
	}
	if s == nil || cam == nil {
		panic("renderer: Render requires a scene and a camera")
	}

	r.stats = Stats{}
	r.state.reset()
	resource.Drain(r.backend)

	// Update
	r.tick()
	s.Update(r.elapsed, r.delta)
	s.UpdateWorldMatrix()
	cam.Update()
	s.Collect(&r.collection)

	// Build
	shadowLights := r.collectShadowLights()
	if err := r.build(s, cam, len(shadowLights)); err != nil {
		return r.abort(err)
	}

	// Cull and classify
	r.main.exclude = nil
	r.main.invertCull = false
	r.main.setCamera(cam)
	r.cull(r.main, true)

	for _, step := range []func() error{
		func() error { return r.renderShaderTextures(s.ShaderTextures()) },
		func() error { return r.renderShadows(r.main.position) },
		func() error { return r.renderMirrors(cam) },
		r.renderCubes,
		r.renderConvolvers,
		func() error { return r.renderView(r.main, target, 0) },
	} {
		if err := step(); err != nil {
			return r.abort(err)
		}
	}

	r.state.setStencil(stencilFor(stencilOff, 0))
	r.renderCount++
	common.Logger().Debug("renderer: frame", "frame", r.renderCount, "stats", r.stats.String())
	return nil
}

// abort records the error of a frame that could not be completed.
func (r *renderer) abort(err error) error {
	r.errs = append(r.errs, err)
	common.Logger().Error("renderer: frame aborted", "frame", r.renderCount, "error", err)
	return err
}

// tick advances the frame clock.
func (r *renderer) tick() {
	now := r.clock()
	if r.start.IsZero() {
		r.start, r.last = now, now
	}
	r.elapsed = now.Sub(r.start)
	r.delta = now.Sub(r.last)
	r.last = now
}

// build brings every geometry and material the frame uses up to date.
func (r *renderer) build(s scene.Scene, cam camera.Camera, shadows int) error {
	for _, m := range r.collection.Meshes {
		if cm := m.Material(); cm.MaxNumShadows() != shadows {
			cm.SetMaxNumShadows(shadows)
		}
	}

	for _, m := range r.collection.Meshes {
		if err := r.buildMesh(m); err != nil {
			return err
		}
	}
	for _, l := range r.collection.PerspectiveLights {
		if err := r.buildMesh(l.Mesh); err != nil {
			return err
		}
	}
	for _, l := range r.collection.ScreenLights {
		if err := r.buildMesh(l.Mesh); err != nil {
			return err
		}
	}
	for _, sky := range r.collection.Skyboxes {
		if err := r.buildMesh(sky.Mesh); err != nil {
			return err
		}
	}

	var plain []material.Material
	for _, c := range r.collection.Convolvers {
		plain = append(plain, c.Material())
	}
	for _, t := range s.ShaderTextures() {
		plain = append(plain, t.Material())
	}
	plain = append(plain, cam.Active().PostPasses()...)
	for _, m := range plain {
		if !m.RequiresBuild() {
			continue
		}
		if err := m.Compile(r.backend, r.programs); err != nil {
			return err
		}
	}
	return nil
}

func (r *renderer) buildMesh(m *scene.Mesh) error {
	if g := m.Geometry(); r.geometryStale(g) {
		if err := r.buildGeometry(g); err != nil {
			return err
		}
	}
	if cm := m.Material(); cm.RequiresBuild() {
		if err := cm.Compile(r.backend, r.programs); err != nil {
			return err
		}
	}
	return nil
}

func (r *renderer) geometryStale(g geometry.Geometry) bool {
	gen, ok := r.built[g]
	return !ok || gen != g.Generation() || g.RequiresBuild()
}

// buildGeometry uploads the buffers of g and remembers the generation it was built at.
func (r *renderer) buildGeometry(g geometry.Geometry) error {
	if err := g.Build(r.backend); err != nil {
		return err
	}
	r.built[g] = g.Generation()
	return nil
}

func (r *renderer) Present() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.backend.Present()
}

func (r *renderer) Errors() []error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.errs)
}

func (r *renderer) SetSize(width, height int, updateSurface bool) {
	if width <= 0 || height <= 0 {
		panic(fmt.Sprintf("renderer: invalid size %dx%d", width, height))
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.width, r.height = width, height
	r.viewport = common.Viewport{Width: width, Height: height}
	if r.main != nil {
		r.main.collection.Resize(width, height)
	}
	if updateSurface {
		r.backend.Resize(width, height)
	}
	r.backend.SetViewport(r.viewport)
}

func (r *renderer) Size() (int, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.width, r.height
}

func (r *renderer) SetViewport(v common.Viewport) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.viewport = v
	r.backend.SetViewport(v)
}

func (r *renderer) ClearColor() common.Color {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.frameClearColor()
}

func (r *renderer) SetClearColor(c common.Color) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clearColor = c
	r.applyClearColor()
}

func (r *renderer) ClearAlpha() float32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.clearAlpha
}

func (r *renderer) SetClearAlpha(alpha float32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clearAlpha = alpha
	r.applyClearColor()
}

// applyClearColor pushes the clear color to every collection.
func (r *renderer) applyClearColor() {
	c := r.frameClearColor()
	if r.main != nil {
		r.main.collection.SetClearColor(c)
		r.main.collection.Pass(material.PassScreen).SetClearColor(c)
	}
	for _, v := range r.views {
		v.collection.SetClearColor(c)
	}
}

func (r *renderer) TransparencyQuality() TransparencyQuality {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.quality
}

func (r *renderer) SetTransparencyQuality(q TransparencyQuality) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.quality = q
}

func (r *renderer) ShadowsEnabled() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.shadowsEnabled
}

func (r *renderer) SetShadowsEnabled(enabled bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.shadowsEnabled = enabled
}

func (r *renderer) SetPresentMode(mode PresentMode) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.backend.SetPresentMode(mode)
}

func (r *renderer) RenderCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.renderCount
}

func (r *renderer) Elapsed() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.elapsed
}

func (r *renderer) Stats() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stats
}

func (r *renderer) Programs() *material.ProgramCache {
	return r.programs
}

func (r *renderer) Dispose() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.main != nil {
		r.main.collection.Dispose()
	}
	for _, target := range slices.Collect(maps.Keys(r.views)) {
		r.views[target].collection.Dispose()
		delete(r.views, target)
	}
	for _, m := range []material.Material{r.composition, r.screen, r.shadowMaterial} {
		m.Dispose()
	}
	if r.screenQuad != nil {
		r.screenQuad.Dispose()
	}
	if r.fallback != nil {
		r.fallback.Dispose()
	}
	r.programs.Clear()
	r.culler.stop()
	clear(r.built)
	clear(r.shadowViews)

	released := resource.Drain(r.backend)
	r.backend.Dispose()
	r.initialized = false
	common.Logger().Info("renderer: disposed", "backend", r.backendType, "released", released, "frames", r.renderCount)
}
