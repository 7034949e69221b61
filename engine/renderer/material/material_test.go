package material

import (
	"errors"
	"testing"
	"time"

	"github.com/MKHenson/trike3d-sub000/common"
	"github.com/MKHenson/trike3d-sub000/engine/renderer/backend"
	"github.com/MKHenson/trike3d-sub000/engine/renderer/shader"
	"github.com/MKHenson/trike3d-sub000/engine/renderer/texture"
	"github.com/MKHenson/trike3d-sub000/engine/resource"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const plainSource = `
struct PlainInput {
    @location(0) position: vec3<f32>,
};

@group(1) @binding(0) var<uniform> tint: vec4<f32>;
@group(1) @binding(1) var<uniform> time: f32;

@vertex
fn vs_main(in: PlainInput) -> @builtin(position) vec4<f32> {
    return vec4<f32>(in.position, 1.0);
}

@fragment
fn fs_main() -> @location(0) vec4<f32> {
    return tint * time;
}
`

func newBackend(t *testing.T) *backend.RecordingBackend {
	t.Helper()
	resource.Drain(backend.NewRecordingBackend())
	b := backend.NewRecordingBackend()
	require.NoError(t, b.Initialize(64, 64))
	return b
}

func plainMaterial(name string, options ...MaterialBuilderOption) Material {
	opts := []MaterialBuilderOption{
		WithName(name),
		WithShader("plain", plainSource, plainSource),
		WithUniforms(NewVec4("tint", mgl32.Vec4{1, 1, 1, 1}), NewFloat(TimeUniform, 0)),
		WithAttributes(NewAttribute("position", 3)),
	}
	return NewMaterial(append(opts, options...)...)
}

func TestUniformSetIsNoOpForEqualValues(t *testing.T) {
	assert := assert.New(t)

	u := NewVec3("lightPosition", mgl32.Vec3{1, 2, 3})
	assert.True(u.RequiresUpdate())
	u.MarkUploaded()

	assert.False(u.Set(mgl32.Vec3{1, 2, 3}))
	assert.False(u.RequiresUpdate())

	assert.True(u.Set(mgl32.Vec3{1, 2, 4}))
	assert.True(u.RequiresUpdate())

	arr := NewFloatArray("shadowBias", []float32{0.1, 0.2})
	backing := arr.Value().([]float32)
	arr.MarkUploaded()
	assert.False(arr.Set([]float32{0.1, 0.2}))
	assert.True(arr.Set([]float32{0.3, 0.4}))
	assert.Equal([]float32{0.3, 0.4}, backing, "arrays are copied in place")

	assert.Panics(func() { arr.Set([]float32{1}) })
	assert.Panics(func() { u.Set(float32(1)) })
}

func TestUniformClonesDoNotShareStorage(t *testing.T) {
	assert := assert.New(t)

	a := NewMat4Array("shadowMatrix", make([]mgl32.Mat4, 2))
	b := a.Clone()
	b.Set([]mgl32.Mat4{mgl32.Ident4(), mgl32.Ident4()})

	assert.Equal(mgl32.Mat4{}, a.Value().([]mgl32.Mat4)[0])
	assert.Equal(mgl32.Ident4(), b.Value().([]mgl32.Mat4)[0])
	assert.Nil(b.Locations())
}

func TestTextureArrayLocationNames(t *testing.T) {
	u := NewTextureArray(UniformShadowMap, make([]texture.Texture, 3))
	assert.Equal(t, []string{"shadowMap_0", "shadowMap_1", "shadowMap_2"}, u.LocationNames())
}

func TestSharedMutationsReachEveryPass(t *testing.T) {
	assert := assert.New(t)
	b := newBackend(t)
	cache := NewProgramCache()

	m := NewStandardMaterial("crate", common.Color{R: 1, G: 0.5, B: 0.25, A: 1})
	require.NoError(t, m.Compile(b, cache))
	assert.False(m.RequiresBuild())

	assert.True(m.SetUniform(UniformOpacity, float32(0.5), true))
	assert.False(m.SetUniform(UniformOpacity, float32(0.5), true))

	top, _ := m.Uniform(UniformOpacity)
	for _, pm := range m.Passes() {
		u, ok := pm.Uniform(UniformOpacity)
		require.True(t, ok, pm.Pass().String())
		assert.Equal(float32(0.5), u.Value())
		assert.NotSame(top, u)
		assert.False(pm.RequiresBuild(), "value changes do not force a rebuild")
	}

	m.AddDefine(shader.Flag("WET"), true)
	assert.True(m.RequiresBuild())
	for _, pm := range m.Passes() {
		assert.True(pm.Defines().Has("WET"))
		assert.True(pm.RequiresBuild())
	}

	m.RemoveUniform(UniformShininess, true)
	for _, pm := range m.Passes() {
		_, ok := pm.Uniform(UniformShininess)
		assert.False(ok)
	}
}

func TestLatePassesAdoptSharedState(t *testing.T) {
	assert := assert.New(t)

	m := NewStandardMaterial("crate", common.Color{R: 1, A: 1})
	m.AddUniform(NewFloat("tint", 0.25), true)
	m.AddUniform(NewFloat("local", 1), false)
	m.AddDefine(shader.Flag("WET"), true)
	m.SetMaxNumShadows(2)
	m.SetShadowSoftener(ShadowFilterPCF)
	m.SetUniform("tint", float32(0.75), true)

	late := NewPassMaterial(PassGBuffer2, WithName("crate"), WithReceiveShadows(true))
	m.SetPass(late)
	pre := NewPassMaterial(PassGBuffer, WithName("crate-pre"))
	m.AddPrePass(pre)

	for _, pm := range []PassMaterial{late, pre} {
		u, ok := pm.Uniform("tint")
		require.True(t, ok, pm.Name())
		assert.Equal(float32(0.75), u.Value(), "clones carry the current value")
		_, ok = pm.Uniform("local")
		assert.False(ok, "unshared uniforms stay on the composite")
		_, ok = pm.Attribute("normal")
		assert.True(ok)
		assert.True(pm.Defines().Has("WET"))
	}

	assert.Equal(2, late.MaxNumShadows())
	assert.Equal(ShadowFilterPCF, late.ShadowFilter())
	sm, ok := late.Uniform(UniformShadowMatrix)
	require.True(t, ok)
	assert.Equal(2, sm.Len())
	assert.Zero(pre.MaxNumShadows(), "only receivers get shadow arrays")

	m.RemoveDefine("WET", true)
	next := NewPassMaterial(PassGBuffer2, WithName("crate"))
	m.SetPass(next)
	assert.False(next.Defines().Has("WET"))
}

func TestShadowFilterDefinesAreExclusive(t *testing.T) {
	assert := assert.New(t)

	m := NewStandardMaterial("ground", common.Color{R: 1, G: 1, B: 1, A: 1})
	m.SetMaxNumShadows(2)

	receiver, ok := m.Pass(PassGBuffer2)
	require.True(t, ok)
	caster, ok := m.Pass(PassShadow)
	require.True(t, ok)

	filterDefines := func() []string {
		var out []string
		for _, name := range shadowFilterDefines {
			if receiver.Defines().Has(name) {
				out = append(out, name)
			}
		}
		return out
	}

	m.SetShadowSoftener(ShadowFilterPCF)
	assert.Equal([]string{DefineShadowPCF}, filterDefines())

	m.SetShadowQuality(ShadowQualityHigh)
	assert.Equal([]string{DefineShadowPCFSoft}, filterDefines())
	assert.Equal(ShadowFilterPCFSoft, m.ShadowFilter())

	m.SetShadowSoftener(ShadowFilterVSM)
	assert.Equal([]string{DefineShadowVSM}, filterDefines())

	m.SetShadowSoftener(ShadowFilterNone)
	assert.Empty(filterDefines())

	assert.True(receiver.Defines().Has(DefineShadowMapping))
	assert.False(caster.Defines().Has(DefineShadowMapping))
	_, ok = caster.Uniform(UniformShadowMatrix)
	assert.False(ok)
}

func TestSetMaxNumShadowsResizesArrays(t *testing.T) {
	assert := assert.New(t)
	b := newBackend(t)
	cache := NewProgramCache()

	m := NewStandardMaterial("ground", common.Color{R: 1, G: 1, B: 1, A: 1})
	m.SetMaxNumShadows(3)
	require.NoError(t, m.Compile(b, cache))

	receiver, _ := m.Pass(PassGBuffer2)
	for _, name := range []string{UniformShadowMap, UniformShadowMapSize, UniformShadowBias, UniformShadowDarkness, UniformShadowMatrix} {
		u, ok := receiver.Uniform(name)
		require.True(t, ok, name)
		assert.Equal(3, u.Len(), name)
	}
	d, _ := receiver.Defines().Get(DefineMaxShadows)
	n, _ := d.IntValue()
	assert.Equal(3, n)

	sm, _ := receiver.Uniform(UniformShadowMap)
	assert.Len(sm.Locations(), 3)

	m.SetMaxNumShadows(1)
	assert.True(m.RequiresBuild())
	require.NoError(t, m.Compile(b, cache))
	sm, _ = receiver.Uniform(UniformShadowMap)
	assert.Len(sm.Locations(), 1)

	m.SetMaxNumShadows(0)
	assert.False(receiver.Defines().Has(DefineShadowMapping))
	assert.False(receiver.Defines().Has(DefineMaxShadows))
	_, ok := receiver.Uniform(UniformShadowMap)
	assert.False(ok)
	require.NoError(t, m.Compile(b, cache))
}

func TestCompileFailureIsSurfaced(t *testing.T) {
	assert := assert.New(t)
	b := newBackend(t)
	cache := NewProgramCache()

	broken := NewPassMaterial(PassGBuffer, WithName("broken"), WithShader("broken", "fn nothing() {", "@fragment fn fs_main() {}"))
	m := NewCompositeMaterial(WithCompositeName("broken"), WithPasses(broken))

	err := m.Compile(b, cache)
	require.Error(t, err)
	var ce *CompileError
	require.True(t, errors.As(err, &ce))
	assert.Equal("broken", ce.Material)
	assert.Equal(PassGBuffer.String(), ce.Pass)
	assert.Equal(backend.StageVertex, ce.Stage)
	assert.NotEmpty(m.CompileStatus())
	assert.True(m.RequiresBuild())
	assert.Nil(broken.Program())
	assert.Zero(cache.Len())
}

func TestMissingUniformFailsCompile(t *testing.T) {
	assert := assert.New(t)
	b := newBackend(t)
	cache := NewProgramCache()

	m := plainMaterial("plain", WithUniforms(NewFloat("roughness", 0.5)))
	err := m.Compile(b, cache)
	require.Error(t, err)
	assert.ErrorContains(err, "uniform roughness has no location")
	assert.ErrorContains(err, "material plain")
	assert.True(m.RequiresBuild())
	assert.Zero(cache.Len(), "the program is released when resolution fails")
}

func TestMissingAttributeDependsOnMaterialKind(t *testing.T) {
	assert := assert.New(t)
	b := newBackend(t)
	cache := NewProgramCache()

	standalone := plainMaterial("standalone", WithAttributes(NewAttribute("normal", 3)))
	assert.ErrorContains(standalone.Compile(b, cache), "attribute normal has no location")

	pass := NewPassMaterial(PassScreen,
		WithName("pass"),
		WithShader("plain", plainSource, plainSource),
		WithUniforms(NewVec4("tint", mgl32.Vec4{}), NewFloat(TimeUniform, 0)),
		WithAttributes(NewAttribute("position", 3), NewAttribute("normal", 3)),
	)
	require.NoError(t, pass.Compile(b, cache))
	normal, _ := pass.Attribute("normal")
	_, ok := normal.Slot()
	assert.False(ok)
	position, _ := pass.Attribute("position")
	slot, ok := position.Slot()
	assert.True(ok)
	assert.Zero(slot)
}

func TestBuiltinMaterialsCompile(t *testing.T) {
	b := newBackend(t)
	cache := NewProgramCache()

	composites := map[string]CompositeMaterial{
		"standard":    NewStandardMaterial("standard", common.Color{A: 1}),
		"mirror":      NewMirrorMaterial("mirror", common.Color{A: 1}, 0.5),
		"point":       NewPointLightMaterial(false),
		"spot":        NewPointLightMaterial(true),
		"directional": NewDirectionalLightMaterial(),
		"ambient":     NewAmbientLightMaterial(),
		"sky":         NewSkyMaterial(common.Color{B: 1, A: 1}, common.Color{R: 1, A: 1}, nil),
	}
	for name, m := range composites {
		m.SetMaxNumShadows(2)
		assert.NoError(t, m.Compile(b, cache), name)
		assert.Empty(t, m.CompileStatus(), name)
	}

	for _, m := range []Material{NewCompositionMaterial(), NewScreenMaterial(), NewShadowMaterial(), NewConvolutionMaterial(0.1)} {
		assert.NoError(t, m.Compile(b, cache), m.Name())
	}
}

func TestProgramsAreSharedAndReleased(t *testing.T) {
	assert := assert.New(t)
	b := newBackend(t)
	cache := NewProgramCache()

	a := NewStandardMaterial("a", common.Color{R: 1, A: 1})
	require.NoError(t, a.Compile(b, cache))
	assert.Equal(3, cache.Compiles())

	c := NewStandardMaterial("c", common.Color{G: 1, A: 1})
	require.NoError(t, c.Compile(b, cache))
	assert.Equal(3, cache.Compiles(), "identical variants reuse programs")

	light := NewPointLightMaterial(false)
	require.NoError(t, light.Compile(b, cache))
	assert.Equal(4, cache.Compiles(), "light and transparent light passes share a program")

	ga, _ := a.Pass(PassGBuffer)
	gc, _ := c.Pass(PassGBuffer)
	assert.Same(ga.Program(), gc.Program())

	a.Dispose()
	assert.Equal(4, cache.Len())
	c.Dispose()
	light.Dispose()
	assert.Zero(cache.Len())

	live := b.Live()
	assert.Equal(4, resource.Drain(b))
	assert.Equal(live-4, b.Live())
}

func TestProgramUploadSkipsBoundValues(t *testing.T) {
	assert := assert.New(t)
	b := newBackend(t)
	cache := NewProgramCache()

	m := plainMaterial("plain")
	require.NoError(t, m.Compile(b, cache))
	p := m.Program()
	loc, ok := p.Location(b, "tint")
	require.True(t, ok)

	b.UseProgram(p.Handle())
	assert.True(p.Upload(b, loc, mgl32.Vec4{1, 0, 0, 1}))
	assert.False(p.Upload(b, loc, mgl32.Vec4{1, 0, 0, 1}))
	assert.True(p.Upload(b, loc, mgl32.Vec4{0, 1, 0, 1}))
	assert.Equal(2, b.Count(backend.OpUploadUniform))
}

func TestShaderTextureLifecycle(t *testing.T) {
	assert := assert.New(t)

	animated := NewShaderTexture(8, 8, plainMaterial("noise"), true)
	animated.Update(1500 * time.Millisecond)
	u, _ := animated.Material().Uniform(TimeUniform)
	assert.Equal(float32(1.5), u.Value())
	assert.True(animated.RequiresDraw())
	animated.MarkDrawn()
	assert.True(animated.RequiresDraw())

	static := NewShaderTexture(8, 8, plainMaterial("gradient"), false)
	assert.True(static.RequiresDraw())
	static.MarkDrawn()
	assert.False(static.RequiresDraw())
	static.Invalidate()
	assert.True(static.RequiresDraw())
	assert.True(static.RequiresBuild())
}
