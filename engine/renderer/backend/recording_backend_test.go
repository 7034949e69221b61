package backend

import (
	"testing"

	"github.com/MKHenson/trike3d-sub000/common"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testVertexSource = `
struct VertexInput {
    @location(0) position: vec3<f32>,
};

@group(0) @binding(0) var<uniform> modelViewMatrix: mat4x4<f32>;
@group(0) @binding(2) var<uniform> projectionMatrix: mat4x4<f32>;

@vertex
fn vs_main(in: VertexInput) -> @builtin(position) vec4<f32> {
    return projectionMatrix * modelViewMatrix * vec4<f32>(in.position, 1.0);
}
`

const testFragmentSource = `
@group(1) @binding(0) var<uniform> tint: vec4<f32>;
@group(1) @binding(1) var diffuse: texture_2d<f32>;
@group(1) @binding(2) var diffuse_sampler: sampler;

@fragment
fn fs_main() -> @location(0) vec4<f32> {
    return tint * textureSample(diffuse, diffuse_sampler, vec2<f32>(0.0));
}
`

func newInitialized(t *testing.T, options ...RecordingOption) *RecordingBackend {
	t.Helper()
	b := NewRecordingBackend(options...)
	require.NoError(t, b.Initialize(320, 240))
	return b
}

// quadVertices returns two triangles spanning the NDC rectangle.
func quadVertices(minX, minY, maxX, maxY float32) []float32 {
	return []float32{
		minX, minY, 0, maxX, minY, 0, maxX, maxY, 0,
		minX, minY, 0, maxX, maxY, 0, minX, maxY, 0,
	}
}

func drawQuad(t *testing.T, b *RecordingBackend, p Program, verts []float32) {
	t.Helper()
	buf, err := b.CreateBuffer(BufferVertex, common.SliceToBytes(verts))
	require.NoError(t, err)
	b.UseProgram(p)
	b.BindAttribute(0, buf, 3)
	b.EnableAttribute(0)
	b.Draw(PrimitiveTriangles, 0, len(verts)/3)
	b.DisableAttribute(0)
	b.DeleteBuffer(buf)
}

func countValue(grid []uint8, v uint8) int {
	n := 0
	for _, c := range grid {
		if c == v {
			n++
		}
	}
	return n
}

func TestRecordingCompileAndReflect(t *testing.T) {
	assert := assert.New(t)
	b := newInitialized(t)

	p, err := b.CompileProgram("test", testVertexSource, testFragmentSource)
	require.NoError(t, err)

	loc, ok := b.UniformLocation(p, "projectionMatrix")
	require.True(t, ok)
	assert.Equal(Location{Group: 0, Binding: 2}, loc)

	loc, ok = b.UniformLocation(p, "diffuse")
	require.True(t, ok)
	assert.Equal(Location{Group: 1, Binding: 1}, loc)

	_, ok = b.UniformLocation(p, "diffuse_sampler")
	assert.False(ok, "samplers are not uniforms")
	_, ok = b.UniformLocation(p, "missing")
	assert.False(ok)

	slot, ok := b.AttributeLocation(p, "position")
	require.True(t, ok)
	assert.Equal(0, slot)
	_, ok = b.AttributeLocation(p, "normal")
	assert.False(ok)

	b.UseProgram(p)
	b.UploadUniform(Location{Group: 1, Binding: 0}, mgl32.Vec4{1, 0, 0, 1})
	v, ok := b.UniformValue(p, "tint")
	require.True(t, ok)
	assert.Equal(mgl32.Vec4{1, 0, 0, 1}, v)
	assert.Equal("test", b.ProgramLabel(p))
	assert.Equal(1, b.Count(OpCompileProgram))
	assert.Equal(1, b.Count(OpUploadUniform))
}

func TestRecordingCompileErrors(t *testing.T) {
	assert := assert.New(t)
	b := newInitialized(t)

	_, err := b.CompileProgram("no-vertex", "fn main() {}", testFragmentSource)
	var se *ShaderError
	require.ErrorAs(t, err, &se)
	assert.Equal(StageVertex, se.Stage)
	assert.Contains(se.Error(), "vertex shader")

	_, err = b.CompileProgram("broken-fragment", testVertexSource, "@fragment fn fs_main() {")
	require.ErrorAs(t, err, &se)
	assert.Equal(StageFragment, se.Stage)

	conflict := `
@group(0) @binding(0) var<uniform> other: mat4x4<f32>;
@fragment
fn fs_main() -> @location(0) vec4<f32> {
    return vec4<f32>(1.0);
}
`
	_, err = b.CompileProgram("link", testVertexSource, conflict)
	require.ErrorAs(t, err, &se)
	assert.Equal(StageLink, se.Stage)
	assert.Equal(0, b.Live())
}

func TestRecordingStencilCoverage(t *testing.T) {
	assert := assert.New(t)
	b := newInitialized(t)

	target, err := b.CreateRenderTarget(TargetDescriptor{Label: "gbuffer", Width: 64, Height: 64, Depth: true})
	require.NoError(t, err)
	p, err := b.CompileProgram("test", testVertexSource, testFragmentSource)
	require.NoError(t, err)

	b.BindTarget(target, 0)
	b.UseProgram(p)
	b.UploadUniform(Location{Group: 0, Binding: 0}, mgl32.Ident4())
	b.UploadUniform(Location{Group: 0, Binding: 2}, mgl32.Ident4())

	b.SetStencil(StencilState{Enabled: true, Func: CompareAlways, Ref: 1, Pass: StencilReplace})
	drawQuad(t, b, p, quadVertices(-1, -1, 1, 1))

	cells := b.StencilResolution() * b.StencilResolution()
	assert.Equal(cells, countValue(b.Stencil(target, 0), 1))

	b.SetStencil(StencilState{Enabled: true, Func: CompareAlways, Ref: 2, Pass: StencilReplace})
	drawQuad(t, b, p, quadVertices(-1, -1, -0.05, 1))
	grid := b.Stencil(target, 0)
	assert.Equal(cells/2, countValue(grid, 2))
	assert.Equal(cells/2, countValue(grid, 1))

	// Only cells equal to 2 pass; the right half keeps its value.
	b.SetStencil(StencilState{Enabled: true, Func: CompareEqual, Ref: 2, Pass: StencilIncrement, Fail: StencilKeep})
	drawQuad(t, b, p, quadVertices(-1, -1, 1, 1))
	grid = b.Stencil(target, 0)
	assert.Equal(cells/2, countValue(grid, 3))
	assert.Equal(cells/2, countValue(grid, 1))

	draws := b.Draws()
	require.Len(t, draws, 3)
	assert.Equal(cells/2, draws[1].Covered)
	assert.Equal(target, draws[1].Target)

	b.Clear(ClearStencil, common.Color{})
	assert.Equal(cells, countValue(b.Stencil(target, 0), 0))
}

func TestRecordingProjectionAndClipping(t *testing.T) {
	assert := assert.New(t)
	b := newInitialized(t)
	p, err := b.CompileProgram("test", testVertexSource, testFragmentSource)
	require.NoError(t, err)

	b.UseProgram(p)
	b.UploadUniform(Location{Group: 0, Binding: 0}, mgl32.Translate3D(10, 0, 0))
	b.UploadUniform(Location{Group: 0, Binding: 2}, mgl32.Ident4())
	b.SetStencil(StencilState{Enabled: true, Func: CompareAlways, Ref: 5, Pass: StencilReplace})
	drawQuad(t, b, p, quadVertices(-1, -1, 1, 1))
	assert.Equal(0, b.Draws()[0].Covered, "geometry moved off screen")

	b.UploadUniform(Location{Group: 0, Binding: 0}, mgl32.Ident4())
	b.UploadUniform(Location{Group: 0, Binding: 2}, common.Perspective(mgl32.DegToRad(60), 1, 0.1, 100))
	drawQuad(t, b, p, quadVertices(-1, -1, 1, 1))
	assert.Equal(b.StencilResolution()*b.StencilResolution(), b.Draws()[1].Covered, "vertices behind the eye cover the screen")
}

func TestRecordingSharedDepth(t *testing.T) {
	assert := assert.New(t)
	b := newInitialized(t)

	first, err := b.CreateRenderTarget(TargetDescriptor{Label: "first", Width: 32, Height: 32, Depth: true})
	require.NoError(t, err)
	second, err := b.CreateRenderTarget(TargetDescriptor{Label: "second", Width: 32, Height: 32, ShareDepth: first})
	require.NoError(t, err)
	_, err = b.CreateRenderTarget(TargetDescriptor{Label: "wrong", Width: 16, Height: 16, ShareDepth: first})
	assert.Error(err)

	p, err := b.CompileProgram("fullscreen", testVertexSource, testFragmentSource)
	require.NoError(t, err)
	b.BindTarget(second, 0)
	b.UseProgram(p)
	b.SetStencil(StencilState{Enabled: true, Func: CompareAlways, Ref: 7, Pass: StencilReplace})
	b.Draw(PrimitiveTriangles, 0, 3)

	assert.Equal(7, int(b.Stencil(first, 0)[0]))
	assert.Equal(b.Stencil(first, 0), b.Stencil(second, 0))
}

func TestRecordingCapabilities(t *testing.T) {
	assert := assert.New(t)
	b := newInitialized(t, WithCapabilities(Capabilities{MaxTextureUnits: 4, MaxTextureSize: 256}))

	_, err := b.CreateRenderTarget(TargetDescriptor{Label: "hdr", Width: 8, Height: 8, Format: FormatRGBA16F})
	assert.Error(err)
	_, err = b.CreateRenderTarget(TargetDescriptor{Label: "cube", Width: 8, Height: 8, Cube: true})
	assert.Error(err)
	_, err = b.CreateTexture(TextureDescriptor{Label: "big", Width: 512, Height: 512}, nil)
	assert.Error(err)
	_, err = b.CreateTexture(TextureDescriptor{Label: "short", Width: 2, Height: 2}, [][]byte{make([]byte, 3)})
	assert.Error(err)
	assert.Panics(func() { b.BindTexture(4, 1) })
}

func TestRecordingLifetime(t *testing.T) {
	assert := assert.New(t)
	b := newInitialized(t)

	target, err := b.CreateRenderTarget(TargetDescriptor{Label: "t", Width: 4, Height: 4, Colors: 2, Mipmaps: true})
	require.NoError(t, err)
	tex, err := b.CreateTexture(TextureDescriptor{Label: "tex", Width: 2, Height: 2}, [][]byte{make([]byte, 16)})
	require.NoError(t, err)
	buf, err := b.CreateBuffer(BufferIndex, make([]byte, 12))
	require.NoError(t, err)
	assert.Equal(3, b.Live())

	assert.NotZero(b.TargetTexture(target, 1))
	assert.Zero(b.TargetTexture(target, 2))
	b.DeleteTexture(b.TargetTexture(target, 0))
	assert.Equal(3, b.Live(), "target-owned textures are released with the target")

	b.GenerateMipmaps(target)
	assert.Equal(1, b.MipmapGenerations(target))

	b.DeleteRenderTarget(target)
	b.DeleteTexture(tex)
	b.DeleteBuffer(buf)
	assert.Equal(0, b.Live())

	require.NoError(t, b.Present())
	assert.Equal(1, b.Frames())
	b.ResetCommands()
	assert.Empty(b.Commands())
	assert.Equal(0, b.Count(OpPresent))
}
