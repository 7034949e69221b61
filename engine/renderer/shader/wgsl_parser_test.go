package shader

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testVertex = `
const MAX_SHADOWS = 3;

struct VertexInput {
    @location(0) position: vec3<f32>,
    @location(2) uv: vec2<f32>,
    @location(1) normal: vec3<f32>,
};

struct VertexOutput {
    @builtin(position) clip: vec4<f32>,
    @location(0) uv: vec2<f32>,
};

@group(0) @binding(1) var<uniform> modelViewMatrix: mat4x4<f32>; // per object
@group(0) @binding(0) var<uniform> projectionMatrix: mat4x4<f32>;
@group(2) @binding(0) var<uniform> shadowMatrix: array<mat4x4<f32>, MAX_SHADOWS>;
@group(2) @binding(1) var<uniform> shadowBias: array<vec4<f32>, MAX_SHADOWS>;
/* @group(9) @binding(9) var<uniform> ignored: f32; */

@vertex
fn vs_main(in: VertexInput) -> VertexOutput {
    var out: VertexOutput;
    out.clip = projectionMatrix * modelViewMatrix * vec4<f32>(in.position, 1.0);
    out.uv = in.uv;
    return out;
}
`

func TestReflectVertexStage(t *testing.T) {
	assert := assert.New(t)

	r, err := Reflect(testVertex, ShaderTypeVertex)
	require.NoError(t, err)

	assert.Equal("vs_main", r.EntryPoint)
	require.Len(t, r.Bindings, 4)
	assert.Equal("projectionMatrix", r.Bindings[0].Name)
	assert.Equal("modelViewMatrix", r.Bindings[1].Name)

	mv, ok := r.Binding("modelViewMatrix")
	require.True(t, ok)
	assert.Equal(BindingUniform, mv.Kind)
	assert.Equal(uint64(64), mv.Size)
	assert.Equal(1, mv.Binding)

	sm, ok := r.Binding("shadowMatrix")
	require.True(t, ok)
	assert.Equal(uint64(64), sm.Stride)
	assert.Equal(uint64(192), sm.Size)

	sb, ok := r.Binding("shadowBias")
	require.True(t, ok)
	assert.Equal(uint64(16), sb.Stride)

	_, ok = r.Binding("ignored")
	assert.False(ok)

	require.Len(t, r.Attributes, 3)
	assert.Equal([]string{"position", "normal", "uv"}, []string{r.Attributes[0].Name, r.Attributes[1].Name, r.Attributes[2].Name})
	uv, ok := r.Attribute("uv")
	require.True(t, ok)
	assert.Equal(2, uv.Location)
	assert.Equal(2, uv.Components)
}

func TestReflectDirectParameters(t *testing.T) {
	src := `
@vertex
fn main(@location(0) position: vec3<f32>, @builtin(vertex_index) index: u32) -> @builtin(position) vec4<f32> {
    return vec4<f32>(position, 1.0);
}`
	r, err := Reflect(src, ShaderTypeVertex)
	require.NoError(t, err)
	require.Len(t, r.Attributes, 1)
	assert.Equal(t, "position", r.Attributes[0].Name)
	assert.Equal(t, 3, r.Attributes[0].Components)
}

func TestReflectTextures(t *testing.T) {
	assert := assert.New(t)
	src := `
@group(1) @binding(0) var diffuseMap: texture_2d<f32>;
@group(1) @binding(1) var diffuseMap_sampler: sampler;
@group(1) @binding(2) var envMap: texture_cube<f32>;

@fragment
fn fs_main(@location(0) uv: vec2<f32>) -> @location(0) vec4<f32> {
    return textureSample(diffuseMap, diffuseMap_sampler, uv);
}`
	r, err := Reflect(src, ShaderTypeFragment)
	require.NoError(t, err)
	assert.Equal("fs_main", r.EntryPoint)
	assert.Empty(r.Attributes)

	tex, ok := r.Binding("diffuseMap")
	require.True(t, ok)
	assert.True(tex.Kind.IsTexture())
	assert.Equal("texture_2d", tex.Base)
	assert.Equal("f32", tex.Param)

	smp, ok := r.Binding(SamplerName("diffuseMap"))
	require.True(t, ok)
	assert.True(smp.Kind.IsSampler())

	cube, _ := r.Binding("envMap")
	assert.Equal("texture_cube", cube.Base)
}

func TestReflectErrors(t *testing.T) {
	_, err := Reflect(testVertex, ShaderTypeFragment)
	assert.ErrorContains(t, err, "no @fragment entry point")

	_, err = Reflect("@fragment\nfn fs_main( -> @location(0) vec4<f32> {\n}\n", ShaderTypeFragment)
	assert.Error(t, err)

	dup := `
@group(0) @binding(0) var<uniform> a: f32;
@group(0) @binding(0) var<uniform> b: f32;
@fragment
fn fs_main() -> @location(0) vec4<f32> { return vec4<f32>(a, b, 0.0, 1.0); }`
	_, err = Reflect(dup, ShaderTypeFragment)
	assert.ErrorContains(t, err, "both bind")
}

func TestValidate(t *testing.T) {
	assert := assert.New(t)

	assert.NoError(Validate("fn f() -> f32 { return 1.0; } // )"))
	assert.ErrorContains(Validate("fn f() {\n  let a = (1.0;\n}"), "line 3: unexpected")
	assert.ErrorContains(Validate("fn f() {"), "unclosed")
	assert.ErrorContains(Validate("/* open"), "unterminated")
	assert.ErrorContains(Validate("   \n"), "empty")
	assert.ErrorContains(Validate("//@trike:include camera\nfn f() {}"), "unprocessed annotation")
}
