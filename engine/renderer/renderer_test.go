package renderer

import (
	"errors"
	"image"
	"testing"
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
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var white = common.Color{R: 1, G: 1, B: 1, A: 1}

// steppedClock advances 16ms per call so frame times are deterministic.
func steppedClock() func() time.Time {
	now := time.Unix(0, 0)
	return func() time.Time {
		now = now.Add(16 * time.Millisecond)
		return now
	}
}

func newTestRenderer(t *testing.T, rb *backend.RecordingBackend, options ...RendererBuilderOption) *renderer {
	t.Helper()
	resource.Drain(rb)
	opts := append([]RendererBuilderOption{WithBackend(rb), WithClock(steppedClock())}, options...)
	r := NewRenderer(BackendTypeRecording, nil, opts...).(*renderer)
	require.NoError(t, r.Initialize(320, 240))
	t.Cleanup(r.Dispose)
	return r
}

func newTestCamera() camera.Camera {
	cam := camera.NewCamera(
		camera.WithAspect(320.0/240.0),
		camera.WithLookAt(mgl32.Vec3{0, 0, 5}, mgl32.Vec3{}),
	)
	cam.Update()
	return cam
}

func newBox(name string, position mgl32.Vec3, options ...material.CompositeMaterialBuilderOption) *scene.Mesh {
	return scene.NewMesh(geometry.NewBox(1, 1, 1), material.NewStandardMaterial(name, white, options...),
		scene.WithTransform(scene.WithName(name), scene.WithPosition(position)))
}

func TestRenderBeforeInitialize(t *testing.T) {
	rb := backend.NewRecordingBackend()
	r := NewRenderer(BackendTypeRecording, nil, WithBackend(rb))

	err := r.Render(scene.NewScene(), newTestCamera(), nil)
	assert.ErrorIs(t, err, ErrNotInitialized)
	assert.Zero(t, r.RenderCount())
}

func TestInitializeWithoutFloatTargets(t *testing.T) {
	rb := backend.NewRecordingBackend(backend.WithCapabilities(backend.Capabilities{
		CubeTargets:     true,
		MaxTextureUnits: 16,
		MaxTextureSize:  4096,
	}))
	r := NewRenderer(BackendTypeRecording, nil, WithBackend(rb))

	err := r.Initialize(320, 240)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCapability)

	err = r.Render(scene.NewScene(), newTestCamera(), nil)
	assert.ErrorIs(t, err, ErrCapability)
	assert.Zero(t, rb.Count(backend.OpDraw))
}

func TestRenderFrame(t *testing.T) {
	rb := backend.NewRecordingBackend()
	r := newTestRenderer(t, rb)

	box := newBox("box", mgl32.Vec3{})
	sun := scene.NewLight(light.NewLight(light.LightTypeDirectional, light.WithDirection(mgl32.Vec3{0, -1, -1})))
	s := scene.NewScene(scene.WithNodes(box, sun))

	require.NoError(t, r.Render(s, newTestCamera(), nil))
	assert.Equal(t, 1, r.RenderCount())

	stats := r.Stats()
	assert.Equal(t, 1, stats.Compositions)
	assert.Zero(t, stats.ShadowPasses+stats.MirrorRenders+stats.CubeFaces)
	assert.Equal(t, 1, stats.SolidVisuals)
	assert.Zero(t, stats.TransparentUnits)
	assert.Positive(t, stats.DrawCalls)

	draws := rb.Draws()
	require.NotEmpty(t, draws)
	last := draws[len(draws)-1]
	assert.Equal(t, backend.DefaultTarget, last.Target, "the frame ends with a blit to the surface")
	assert.False(t, last.Stencil.Enabled)

	require.NoError(t, r.Render(s, newTestCamera(), nil))
	assert.Equal(t, 2, r.RenderCount())
	assert.Equal(t, 16*time.Millisecond, r.Elapsed(), "the clock starts on the first frame")
	assert.Empty(t, r.Errors())
}

func TestStencilPartitionsSkyAndSolids(t *testing.T) {
	const n = 16
	rb := backend.NewRecordingBackend(backend.WithStencilResolution(n))
	r := newTestRenderer(t, rb)

	sky := scene.NewSkybox(common.Color{B: 1, A: 1}, white, nil)
	box := newBox("box", mgl32.Vec3{})
	s := scene.NewScene(scene.WithNodes(sky, box))

	require.NoError(t, r.Render(s, newTestCamera(), nil))

	grid := rb.Stencil(r.main.collection.GBuffer().Handle(), 0)
	require.Len(t, grid, n*n)
	assert.Equal(t, StencilSky, grid[0], "corners only see the sky")
	assert.Equal(t, StencilSolid, grid[(n/2)*n+n/2], "the box covers the center")

	for _, d := range rb.Draws() {
		if d.Stencil.Enabled && d.Stencil.Func == backend.CompareEqual && d.Stencil.Ref == StencilSolid {
			assert.Equal(t, backend.StencilKeep, d.Stencil.Pass)
		}
	}
}

func TestStencilIsDeterministic(t *testing.T) {
	rb := backend.NewRecordingBackend(backend.WithStencilResolution(16))
	r := newTestRenderer(t, rb)

	s := scene.NewScene(scene.WithNodes(
		scene.NewSkybox(common.Color{B: 1, A: 1}, white, nil),
		newBox("box", mgl32.Vec3{}),
		newBox("glass", mgl32.Vec3{0.5, 0, 1}, material.WithTransparent(true)),
	))
	cam := newTestCamera()

	require.NoError(t, r.Render(s, cam, nil))
	first := append([]uint8(nil), rb.Stencil(r.main.collection.GBuffer().Handle(), 0)...)
	require.NoError(t, r.Render(s, cam, nil))
	assert.Equal(t, first, rb.Stencil(r.main.collection.GBuffer().Handle(), 0))
}

func TestTransparentUnitsFollowQuality(t *testing.T) {
	for _, tc := range []struct {
		quality TransparencyQuality
		units   int
	}{
		{TransparencyQualityLow, 1},
		{TransparencyQualityHigh, 2},
	} {
		t.Run(tc.quality.String(), func(t *testing.T) {
			rb := backend.NewRecordingBackend()
			r := newTestRenderer(t, rb, WithTransparencyQuality(tc.quality))

			s := scene.NewScene(scene.WithNodes(
				newBox("solid", mgl32.Vec3{}),
				newBox("glass-a", mgl32.Vec3{-1, 0, 1}, material.WithTransparent(true)),
				newBox("glass-b", mgl32.Vec3{1, 0, 1}, material.WithTransparent(true)),
			))
			require.NoError(t, r.Render(s, newTestCamera(), nil))
			assert.Equal(t, tc.units, r.Stats().TransparentUnits)

			refs := map[uint8]bool{}
			for _, d := range rb.Draws() {
				if d.Stencil.Enabled && d.Stencil.Func == backend.CompareAlways && d.Stencil.Ref >= StencilTransparentA {
					refs[d.Stencil.Ref] = true
				}
			}
			assert.Len(t, refs, tc.units, "consecutive units alternate their stencil reference")
		})
	}
}

func TestTransparentRefsAlternate(t *testing.T) {
	assert.Equal(t, StencilTransparentA, transparentRef(0))
	assert.Equal(t, StencilTransparentB, transparentRef(1))
	assert.Equal(t, StencilTransparentA, transparentRef(2))

	resolve := stencilFor(stencilTransparentResolve, StencilTransparentB)
	assert.Equal(t, StencilTransparentB, resolve.Ref)
	assert.Equal(t, backend.CompareEqual, resolve.Func)
	assert.Equal(t, StencilSolid, stencilFor(stencilSolidRead, 9).Ref, "solid rows ignore the unit reference")
}

func TestSorterOrdersBackToFront(t *testing.T) {
	cam := newTestCamera()
	near := newBox("near", mgl32.Vec3{0, 0, 2})
	far := newBox("far", mgl32.Vec3{0, 0, -6})
	mid := newBox("mid", mgl32.Vec3{0, 0, -1})
	tieA := newBox("tie-a", mgl32.Vec3{1, 0, -3})
	tieB := newBox("tie-b", mgl32.Vec3{-1, 0, -3})
	scene.NewScene(scene.WithNodes(near, far, mid, tieA, tieB)).UpdateWorldMatrix()

	meshes := []*scene.Mesh{near, tieA, mid, far, tieB}
	NewTransparencySorter().Sort(meshes, cam.ViewProjection())

	names := make([]string, len(meshes))
	for i, m := range meshes {
		names[i] = m.Name()
	}
	assert.Equal(t, []string{"far", "tie-a", "tie-b", "mid", "near"}, names)
}

func TestKeepRules(t *testing.T) {
	cam := newTestCamera()
	frustum := cam.Frustum()
	corners := cam.FarCorners()

	visible := newBox("visible", mgl32.Vec3{})
	hidden := newBox("hidden", mgl32.Vec3{})
	hidden.SetVisible(false)
	outside := newBox("outside", mgl32.Vec3{0, 0, 50})
	unculled := newBox("unculled", mgl32.Vec3{0, 0, 50})
	unculled.SetSceneCull(false)
	rescued := newBox("rescued", mgl32.Vec3{0, 0, 50})
	rescued.SetCullFunc(func(*scene.Mesh, *common.Frustum, [4]mgl32.Vec3) bool { return true })
	scene.NewScene(scene.WithNodes(visible, hidden, outside, unculled, rescued)).UpdateWorldMatrix()

	assert.True(t, Keep(visible, &frustum, corners))
	assert.False(t, Keep(hidden, &frustum, corners))
	assert.False(t, Keep(outside, &frustum, corners))
	assert.True(t, Keep(unculled, &frustum, corners))
	assert.True(t, Keep(rescued, &frustum, corners))
}

func TestParallelCullMatchesSequential(t *testing.T) {
	cam := newTestCamera()
	frustum := cam.Frustum()
	corners := cam.FarCorners()

	meshes := make([]*scene.Mesh, 300)
	nodes := make([]scene.Node, len(meshes))
	for i := range meshes {
		x := float32(i%30) - 15
		z := -float32(i / 30 * 8)
		meshes[i] = newBox("m", mgl32.Vec3{x * 2, 0, z})
		nodes[i] = meshes[i]
	}
	scene.NewScene(scene.WithNodes(nodes...)).UpdateWorldMatrix()

	sequential := append([]bool(nil), newCuller(1, 0).cull(meshes, &frustum, corners)...)
	parallel := newCuller(4, 1).cull(meshes, &frustum, corners)
	assert.Equal(t, sequential, parallel)
	assert.Contains(t, sequential, true)
	assert.Contains(t, sequential, false)
}

func TestCubeMipmapsOnlyAfterLastFace(t *testing.T) {
	rb := backend.NewRecordingBackend()
	r := newTestRenderer(t, rb)

	cube := scene.NewCubeRenderer(32, 0.1, 50)
	s := scene.NewScene(scene.WithNodes(cube, newBox("box", mgl32.Vec3{2, 0, 0})))

	require.NoError(t, r.Render(s, newTestCamera(), nil))
	assert.Equal(t, scene.CubeFaces, r.Stats().CubeFaces)
	assert.Equal(t, 1, rb.MipmapGenerations(cube.Target().Handle()))
	assert.True(t, cube.Target().Mipmaps(), "the mipmap setting is restored after the faces are drawn")
}

func TestCubesSkippedWithoutCubeTargets(t *testing.T) {
	rb := backend.NewRecordingBackend(backend.WithCapabilities(backend.Capabilities{
		FloatTargets:    true,
		MaxTextureUnits: 16,
		MaxTextureSize:  4096,
	}))
	r := newTestRenderer(t, rb)

	cube := scene.NewCubeRenderer(32, 0.1, 50)
	require.NoError(t, r.Render(scene.NewScene(scene.WithNodes(cube)), newTestCamera(), nil))
	assert.Zero(t, r.Stats().CubeFaces)
}

func TestBuildFailureAbortsFrame(t *testing.T) {
	rb := backend.NewRecordingBackend()
	r := newTestRenderer(t, rb)

	broken := material.NewPassMaterial(material.PassGBuffer,
		material.WithName("broken"),
		material.WithShader("broken", "fn nothing() {", "@fragment fn fs_main() {}"))
	m := scene.NewMesh(geometry.NewBox(1, 1, 1), material.NewCompositeMaterial(
		material.WithCompositeName("broken"), material.WithPasses(broken)))

	rb.ResetCommands()
	err := r.Render(scene.NewScene(scene.WithNodes(m)), newTestCamera(), nil)
	require.Error(t, err)
	var ce *material.CompileError
	assert.True(t, errors.As(err, &ce))
	assert.Zero(t, r.RenderCount())
	assert.Len(t, r.Errors(), 1)
	assert.Zero(t, rb.Count(backend.OpDraw), "nothing is drawn for an aborted frame")
}

func TestSetSizeResizesTargets(t *testing.T) {
	rb := backend.NewRecordingBackend()
	r := newTestRenderer(t, rb)

	r.SetSize(640, 480, true)
	w, h := r.Size()
	assert.Equal(t, 640, w)
	assert.Equal(t, 480, h)
	cw, ch := r.main.collection.Size()
	assert.Equal(t, 640, cw)
	assert.Equal(t, 480, ch)
	assert.Equal(t, 1, rb.Count(backend.OpResize))

	assert.Panics(t, func() { r.SetSize(0, 10, false) })
}

func TestDisposeDrainsResources(t *testing.T) {
	rb := backend.NewRecordingBackend()
	resource.Drain(rb)
	r := NewRenderer(BackendTypeRecording, nil, WithBackend(rb), WithClock(steppedClock()))
	require.NoError(t, r.Initialize(320, 240))

	box := newBox("box", mgl32.Vec3{})
	require.NoError(t, r.Render(scene.NewScene(scene.WithNodes(box)), newTestCamera(), nil))
	box.Geometry().Dispose()
	box.Material().Dispose()

	r.Dispose()
	assert.Zero(t, resource.Pending())
}

func TestDrawFailureIsRecorded(t *testing.T) {
	rb := backend.NewRecordingBackend()
	r := newTestRenderer(t, rb)

	box := newBox("box", mgl32.Vec3{})
	oversized := texture.NewImageTexture(image.NewRGBA(image.Rect(0, 0, 9000, 1)), texture.WithMipmaps(false))
	material.SetDiffuseMap(box.Material(), oversized)

	err := r.Render(scene.NewScene(scene.WithNodes(box)), newTestCamera(), nil)
	require.Error(t, err)
	assert.ErrorContains(t, err, "exceeds maximum size")
	assert.Zero(t, r.RenderCount())

	errs := r.Errors()
	require.Len(t, errs, 1)
	assert.Equal(t, err, errs[0])
}

func TestShadowFrame(t *testing.T) {
	rb := backend.NewRecordingBackend()
	r := newTestRenderer(t, rb)

	shadow := light.NewShadow(light.WithShadowMapSize(64))
	sun := scene.NewLight(light.NewLight(light.LightTypeDirectional,
		light.WithDirection(mgl32.Vec3{0, -1, -1}),
		light.WithShadow(shadow),
	))
	caster := newBox("caster", mgl32.Vec3{})
	distant := newBox("distant", mgl32.Vec3{500, 0, 0})
	s := scene.NewScene(scene.WithNodes(sun, caster, distant))

	require.NoError(t, r.Render(s, newTestCamera(), nil))
	assert.Equal(t, 1, r.Stats().ShadowPasses)
	assert.Same(t, shadow.Camera(), r.main.collection.Pass(material.PassShadow).Camera())

	var casters []string
	for _, d := range rb.Draws() {
		if d.Target == shadow.Target().Handle() {
			casters = append(casters, d.Program)
		}
	}
	assert.Equal(t, []string{"standard_shadow"}, casters, "only casters inside the shadow volume are drawn")

	assert.Equal(t, 1, caster.Material().MaxNumShadows())
	receiver, ok := caster.Material().Pass(material.PassGBuffer2)
	require.True(t, ok)
	u, ok := receiver.Uniform(material.UniformShadowMatrix)
	require.True(t, ok)
	bound, ok := receiver.Program().Bound(u.Locations()[0])
	require.True(t, ok)
	assert.Equal(t, []mgl32.Mat4{shadow.Matrix}, bound)

	r.SetShadowsEnabled(false)
	require.NoError(t, r.Render(s, newTestCamera(), nil))
	assert.Zero(t, r.Stats().ShadowPasses)
	assert.Zero(t, caster.Material().MaxNumShadows())
}

func TestMirrorFrame(t *testing.T) {
	rb := backend.NewRecordingBackend()
	r := newTestRenderer(t, rb)

	mirror := scene.NewMirror(6, 6, 64, white, 0.5)
	box := newBox("box", mgl32.Vec3{0, 1, 0})
	s := scene.NewScene(scene.WithNodes(mirror, box))

	require.NoError(t, r.Render(s, newTestCamera(), nil))
	assert.Equal(t, 1, r.Stats().MirrorRenders)

	v, ok := r.views[mirror.Target()]
	require.True(t, ok)
	assert.True(t, v.invertCull)
	assert.Contains(t, v.solids, box)
	assert.NotContains(t, v.solids, mirror.Mesh, "the mirror does not reflect itself")
	assert.Contains(t, r.main.solids, mirror.Mesh)

	cull := map[backend.Target]backend.CullMode{}
	for _, d := range rb.Draws() {
		if d.Program == "standard_gbuffer" {
			cull[d.Target] = d.Cull
		}
	}
	assert.Equal(t, backend.CullBack, cull[r.main.collection.GBuffer().Handle()])
	assert.Equal(t, backend.CullFront, cull[v.collection.GBuffer().Handle()], "reflected faces wind the other way")
}

func TestMirrorRejectsOrthographicCamera(t *testing.T) {
	rb := backend.NewRecordingBackend()
	r := newTestRenderer(t, rb)

	cam := camera.NewCamera(
		camera.WithOrthographic(-5, 5, -5, 5),
		camera.WithLookAt(mgl32.Vec3{0, 0, 5}, mgl32.Vec3{}),
	)
	s := scene.NewScene(scene.WithNodes(scene.NewMirror(6, 6, 64, white, 0.5)))
	assert.Panics(t, func() { _ = r.Render(s, cam, nil) })
}

func TestRenderRecordsCulling(t *testing.T) {
	rb := backend.NewRecordingBackend()
	r := newTestRenderer(t, rb)

	inside := newBox("inside", mgl32.Vec3{})
	outside := newBox("outside", mgl32.Vec3{100, 0, 0})
	require.NoError(t, r.Render(scene.NewScene(scene.WithNodes(inside, outside)), newTestCamera(), nil))

	assert.False(t, inside.Culled())
	assert.True(t, outside.Culled())
	assert.Equal(t, 1, r.Stats().CulledVisuals)
	assert.Equal(t, 1, r.Stats().SolidVisuals)
}

func TestSharedProgramsSkipRedundantWork(t *testing.T) {
	frame := func(n int) Stats {
		rb := backend.NewRecordingBackend()
		r := newTestRenderer(t, rb)
		tex := texture.NewImageTexture(image.NewRGBA(image.Rect(0, 0, 4, 4)), texture.WithMipmaps(false))
		nodes := make([]scene.Node, n)
		for i := range nodes {
			box := newBox("box", mgl32.Vec3{float32(i) - 0.5, 0, 0})
			material.SetDiffuseMap(box.Material(), tex)
			nodes[i] = box
		}
		require.NoError(t, r.Render(scene.NewScene(scene.WithNodes(nodes...)), newTestCamera(), nil))
		return r.Stats()
	}

	one, two := frame(1), frame(2)
	assert.Greater(t, two.DrawCalls, one.DrawCalls)
	assert.Greater(t, two.SkippedUploads, one.SkippedUploads, "equal values are not uploaded again")
	assert.Equal(t, one.ProgramBinds, two.ProgramBinds)
	assert.Equal(t, one.TextureBinds, two.TextureBinds, "the second mesh finds its texture bound")
}

func TestSharedMaterialReusesBindings(t *testing.T) {
	rb := backend.NewRecordingBackend()
	r := newTestRenderer(t, rb)

	shared := material.NewStandardMaterial("shared", white)
	a := scene.NewMesh(geometry.NewBox(1, 1, 1), shared, scene.WithTransform(scene.WithPosition(mgl32.Vec3{-1, 0, 0})))
	b := scene.NewMesh(geometry.NewBox(1, 1, 1), shared, scene.WithTransform(scene.WithPosition(mgl32.Vec3{1, 0, 0})))
	require.NoError(t, r.Render(scene.NewScene(scene.WithNodes(a, b)), newTestCamera(), nil))
	reused := r.Stats()
	assert.Equal(t, 2, reused.MaterialReuses, "one reuse per g-buffer pass")

	rb = backend.NewRecordingBackend()
	r = newTestRenderer(t, rb)
	require.NoError(t, r.Render(scene.NewScene(scene.WithNodes(newBox("a", mgl32.Vec3{-1, 0, 0}), newBox("b", mgl32.Vec3{1, 0, 0}))), newTestCamera(), nil))
	assert.Zero(t, r.Stats().MaterialReuses)
	assert.Less(t, reused.SkippedUploads, r.Stats().SkippedUploads)
}

const prePassSource = `
//@trike:include transform
//@trike:include standard_uniforms

struct PrePassInput {
    @location(0) position: vec3<f32>,
};

@vertex
fn vs_main(in: PrePassInput) -> @builtin(position) vec4<f32> {
    return projectionMatrix * modelViewMatrix * vec4<f32>(in.position, 1.0);
}

@fragment
fn fs_main() -> @location(0) vec4<f32> {
    return vec4<f32>(diffuse.rgb, opacity);
}
`

func TestPrePassesPrecedeGBuffer(t *testing.T) {
	rb := backend.NewRecordingBackend()
	r := newTestRenderer(t, rb)

	withPrePass := func(name string, position mgl32.Vec3) *scene.Mesh {
		pre := material.NewPassMaterial(material.PassGBuffer,
			material.WithName(name+"-pre"),
			material.WithShader("depth_prepass", prePassSource, prePassSource))
		return newBox(name, position, material.WithPrePasses(pre))
	}
	s := scene.NewScene(scene.WithNodes(withPrePass("a", mgl32.Vec3{-1, 0, 0}), withPrePass("b", mgl32.Vec3{1, 0, 0})))
	require.NoError(t, r.Render(s, newTestCamera(), nil))

	gBuffer := r.main.collection.GBuffer().Handle()
	var order []string
	for _, d := range rb.Draws() {
		if d.Target == gBuffer {
			order = append(order, d.Program)
		}
	}
	assert.Equal(t, []string{"depth_prepass", "depth_prepass", "standard_gbuffer", "standard_gbuffer"}, order)
}

func TestPassFiltersSelectBuckets(t *testing.T) {
	rb := backend.NewRecordingBackend()
	r := newTestRenderer(t, rb)
	r.main.collection.Pass(material.PassGBuffer).SetFilter(pass.FilterSolid)

	cam := newTestCamera()
	s := scene.NewScene(scene.WithNodes(
		newBox("solid", mgl32.Vec3{}),
		newBox("glass", mgl32.Vec3{0, 0, 1}, material.WithTransparent(true)),
	))
	require.NoError(t, r.Render(s, cam, nil))
	assert.Zero(t, r.Stats().TransparentUnits, "the g-buffer pass no longer takes transparent meshes")
	assert.Equal(t, 1, r.Stats().SolidVisuals)

	for _, pt := range []material.PassType{material.PassSky, material.PassGBuffer, material.PassLight, material.PassComposition} {
		assert.Same(t, cam, r.main.collection.Pass(pt).Camera(), pt.String())
	}

	r.main.collection.Pass(material.PassGBuffer).SetFilter(pass.FilterSolid | pass.FilterTransparent)
	require.NoError(t, r.Render(s, cam, nil))
	assert.Equal(t, 1, r.Stats().TransparentUnits)
}

func TestDisposeStopsCullWorkers(t *testing.T) {
	rb := backend.NewRecordingBackend()
	resource.Drain(rb)
	r := NewRenderer(BackendTypeRecording, nil, WithBackend(rb), WithCullWorkers(2), WithParallelCullThreshold(1)).(*renderer)
	require.NoError(t, r.Initialize(320, 240))

	s := scene.NewScene(scene.WithNodes(newBox("a", mgl32.Vec3{}), newBox("b", mgl32.Vec3{1, 0, 0})))
	require.NoError(t, r.Render(s, newTestCamera(), nil))
	assert.True(t, r.culler.started)

	r.Dispose()
	assert.False(t, r.culler.started)
	assert.Nil(t, r.culler.pool)
}
