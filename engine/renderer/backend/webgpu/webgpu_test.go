package webgpu

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/MKHenson/trike3d-sub000/engine/renderer/backend"
	"github.com/MKHenson/trike3d-sub000/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const vertexSource = `
struct VertexInput {
    @location(0) position: vec3<f32>,
    @location(1) uv: vec2<f32>,
};

@group(0) @binding(0) var<uniform> modelMatrix: mat4x4<f32>;
@group(0) @binding(1) var<uniform> normalMatrix: mat3x3<f32>;

@vertex
fn vs_main(in: VertexInput) -> @builtin(position) vec4<f32> {
    return modelMatrix * vec4<f32>(in.position, 1.0);
}
`

const fragmentSource = `
@group(0) @binding(0) var<uniform> modelMatrix: mat4x4<f32>;
@group(1) @binding(0) var<uniform> shadowBias: array<vec4<f32>, 2>;
@group(1) @binding(1) var envMap: texture_cube<f32>;
@group(1) @binding(2) var envMap_sampler: sampler;

@fragment
fn fs_main() -> @location(0) vec4<f32> {
    return textureSample(envMap, envMap_sampler, vec3<f32>(0.0, 0.0, 1.0)) * shadowBias[0].x;
}
`

func floatAt(data []byte, offset int) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(data[offset:]))
}

func TestEncodeUniformScalarIsPadded(t *testing.T) {
	data, err := encodeUniform(float32(2.5), shader.Binding{Name: "time", Size: 4})
	require.NoError(t, err)
	assert.Len(t, data, 16)
	assert.Equal(t, float32(2.5), floatAt(data, 0))
}

func TestEncodeUniformFloatArrayUsesReflectedStride(t *testing.T) {
	data, err := encodeUniform([]float32{1, 2}, shader.Binding{Name: "shadowBias", Size: 32, Stride: 16})
	require.NoError(t, err)
	require.Len(t, data, 32)
	assert.Equal(t, float32(1), floatAt(data, 0))
	assert.Equal(t, float32(0), floatAt(data, 4))
	assert.Equal(t, float32(2), floatAt(data, 16))
}

func TestEncodeUniformMat3PadsColumns(t *testing.T) {
	m := mgl32.Mat3{1, 2, 3, 4, 5, 6, 7, 8, 9}
	data, err := encodeUniform(m, shader.Binding{Name: "normalMatrix", Size: 48})
	require.NoError(t, err)
	require.Len(t, data, 48)
	assert.Equal(t, float32(3), floatAt(data, 8))
	assert.Equal(t, float32(0), floatAt(data, 12))
	assert.Equal(t, float32(4), floatAt(data, 16))
	assert.Equal(t, float32(9), floatAt(data, 40))
}

func TestEncodeUniformDropsElementsPastBinding(t *testing.T) {
	data, err := encodeUniform([]mgl32.Vec4{{1, 1, 1, 1}, {2, 2, 2, 2}, {3, 3, 3, 3}}, shader.Binding{Name: "v", Size: 32, Stride: 16})
	require.NoError(t, err)
	assert.Len(t, data, 32)
	assert.Equal(t, float32(2), floatAt(data, 16))
}

func TestEncodeUniformFallsBackToValueSize(t *testing.T) {
	data, err := encodeUniform(mgl32.Ident4(), shader.Binding{Name: "m"})
	require.NoError(t, err)
	assert.Len(t, data, 64)
	assert.Equal(t, float32(1), floatAt(data, 60))
}

func TestEncodeUniformRejectsUnknownTypes(t *testing.T) {
	_, err := encodeUniform("nope", shader.Binding{Name: "s", Size: 16})
	assert.Error(t, err)
}

func TestMergeBindingsUnionsStages(t *testing.T) {
	vr, err := shader.Reflect(vertexSource, shader.ShaderTypeVertex)
	require.NoError(t, err)
	fr, err := shader.Reflect(fragmentSource, shader.ShaderTypeFragment)
	require.NoError(t, err)

	merged, err := mergeBindings(vr, fr)
	require.NoError(t, err)

	names := make([]string, len(merged))
	for i, b := range merged {
		names[i] = b.Name
	}
	assert.Equal(t, []string{"modelMatrix", "normalMatrix", "shadowBias", "envMap", "envMap_sampler"}, names)
}

func TestMergeBindingsRejectsConflictingSlots(t *testing.T) {
	vr, err := shader.Reflect(vertexSource, shader.ShaderTypeVertex)
	require.NoError(t, err)
	fr, err := shader.Reflect(`
@group(0) @binding(1) var<uniform> tint: vec4<f32>;

@fragment
fn fs_main() -> @location(0) vec4<f32> {
    return tint;
}
`, shader.ShaderTypeFragment)
	require.NoError(t, err)

	_, err = mergeBindings(vr, fr)
	assert.Error(t, err)
}

func TestLayoutEntry(t *testing.T) {
	fr, err := shader.Reflect(fragmentSource, shader.ShaderTypeFragment)
	require.NoError(t, err)

	env, ok := fr.Binding("envMap")
	require.True(t, ok)
	e, err := layoutEntry(env, false)
	require.NoError(t, err)
	assert.Equal(t, wgpu.TextureViewDimensionCube, e.Texture.ViewDimension)
	assert.Equal(t, wgpu.TextureSampleTypeFloat, e.Texture.SampleType)

	e, err = layoutEntry(env, true)
	require.NoError(t, err)
	assert.Equal(t, wgpu.TextureSampleTypeUnfilterableFloat, e.Texture.SampleType)

	sampler, ok := fr.Binding("envMap_sampler")
	require.True(t, ok)
	e, err = layoutEntry(sampler, true)
	require.NoError(t, err)
	assert.Equal(t, wgpu.SamplerBindingTypeNonFiltering, e.Sampler.Type)

	_, err = layoutEntry(shader.Binding{Name: "depth", Kind: shader.BindingComparisonSampler}, false)
	assert.Error(t, err)
}

func TestDepthStencilState(t *testing.T) {
	ds := depthStencilState(pipelineKey{
		hasDepth: true,
		depth:    backend.DepthState{Test: true, Write: true, Func: backend.CompareLess},
		stencil: stencilKey{
			enabled: true,
			compare: backend.CompareEqual,
			pass:    backend.StencilZero,
		},
	})
	assert.True(t, ds.DepthWriteEnabled)
	assert.Equal(t, wgpu.CompareFunctionLess, ds.DepthCompare)
	assert.Equal(t, wgpu.CompareFunctionEqual, ds.StencilFront.Compare)
	assert.Equal(t, wgpu.StencilOperationZero, ds.StencilBack.PassOp)
	assert.Equal(t, uint32(0xFF), ds.StencilReadMask)

	ds = depthStencilState(pipelineKey{hasDepth: true, depth: backend.DepthState{Write: true}})
	assert.False(t, ds.DepthWriteEnabled)
	assert.Equal(t, wgpu.CompareFunctionAlways, ds.DepthCompare)
	assert.Equal(t, wgpu.StencilOperationKeep, ds.StencilFront.PassOp)
	assert.Zero(t, ds.StencilWriteMask)
}

func TestMipLevels(t *testing.T) {
	assert.Equal(t, 1, mipLevels(1, 1))
	assert.Equal(t, 9, mipLevels(256, 256))
	assert.Equal(t, 10, mipLevels(512, 3))
}

func TestPadded(t *testing.T) {
	assert.Len(t, padded([]byte{1, 2, 3, 4, 5, 6}, 4), 8)
	in := []byte{1, 2, 3, 4}
	assert.Equal(t, in, padded(in, 4))
	assert.Equal(t, uint64(32), alignUp(17, 16))
}

func TestMappings(t *testing.T) {
	assert.Equal(t, wgpu.TextureFormatRGBA16Float, textureFormat(backend.FormatRGBA16F))
	assert.Equal(t, wgpu.AddressModeMirrorRepeat, addressMode(backend.WrapMirror))
	assert.Equal(t, wgpu.CullModeFront, cullMode(backend.CullFront))
	assert.Equal(t, wgpu.BlendFactorOneMinusSrcAlpha, blendFactor(backend.BlendOneMinusSrcAlpha))
	assert.Equal(t, wgpu.BlendOperationReverseSubtract, blendOperation(backend.BlendReverseSubtract))
	assert.Equal(t, wgpu.PrimitiveTopologyLineList, topology(backend.PrimitiveLines))
	assert.Equal(t, wgpu.VertexFormatFloat32x2, vertexFormat(2))
	assert.Equal(t, wgpu.StencilOperationReplace, stencilOperation(backend.StencilReplace))
}
