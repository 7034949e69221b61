package texture

import (
	"bytes"
	"image"
	"image/color"
	"testing"

	"github.com/MKHenson/trike3d-sub000/engine/renderer/backend"
	"github.com/MKHenson/trike3d-sub000/engine/resource"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/bmp"
)

func newBackend(t *testing.T) *backend.RecordingBackend {
	t.Helper()
	b := backend.NewRecordingBackend()
	require.NoError(t, b.Initialize(64, 64))
	resource.Drain(b)
	return b
}

func checker(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			if (x+y)%2 == 0 {
				img.Set(x, y, color.White)
			}
		}
	}
	return img
}

func TestImageTextureLevels(t *testing.T) {
	assert := assert.New(t)

	tex := NewImageTexture(checker(3, 5), WithPowerOfTwo(true), WithMipmaps(true))
	levels, w, h := tex.Levels()
	assert.Equal(4, w)
	assert.Equal(8, h)
	require.Len(t, levels, 4)
	assert.Len(levels[0], 4*8*4)
	assert.Len(levels[3], 4)

	plain := NewImageTexture(checker(3, 5))
	levels, w, h = plain.Levels()
	assert.Equal(3, w)
	assert.Equal(5, h)
	assert.Len(levels, 1)
}

func TestImageTextureLifecycle(t *testing.T) {
	assert := assert.New(t)
	b := newBackend(t)

	tex := NewImageTexture(checker(4, 4), WithLabel("checker"))
	assert.True(tex.RequiresBuild())
	assert.Zero(tex.Handle())

	require.NoError(t, tex.Compile(b, 0))
	require.NoError(t, tex.Compile(b, 1))
	assert.False(tex.RequiresBuild())
	assert.Equal(1, b.Count(backend.OpCreateTexture))
	assert.Equal(2, b.Count(backend.OpBindTexture))
	assert.Equal(tex.Handle(), b.BoundTexture(1))

	tex.SetImage(checker(2, 2))
	assert.True(tex.RequiresBuild())
	assert.Equal(1, resource.Pending())
	require.NoError(t, tex.Compile(b, 0))
	assert.Equal(2, b.Count(backend.OpCreateTexture))

	tex.Dispose()
	resource.Drain(b)
	assert.Equal(0, b.Live())
}

func TestDecodeImageTexture(t *testing.T) {
	assert := assert.New(t)

	var buf bytes.Buffer
	require.NoError(t, bmp.Encode(&buf, checker(6, 2)))
	tex, err := DecodeImageTexture(&buf)
	require.NoError(t, err)
	w, h := tex.Size()
	assert.Equal(6, w)
	assert.Equal(2, h)

	_, err = DecodeImageTexture(bytes.NewReader([]byte("not an image")))
	assert.Error(err)

	_, err = LoadImageTexture("testdata/missing.png")
	assert.Error(err)
}

func TestRenderTargetLazyBuildAndResize(t *testing.T) {
	assert := assert.New(t)
	b := newBackend(t)

	rt := NewRenderTarget(16, 16, WithTargetLabel("light"), WithColorAttachments(2), WithFormat(backend.FormatRGBA16F))
	assert.True(rt.RequiresBuild())
	assert.Zero(b.Count(backend.OpCreateTarget))

	require.NoError(t, rt.Bind(b, 0))
	require.NoError(t, rt.Bind(b, 0))
	assert.Equal(1, b.Count(backend.OpCreateTarget))
	assert.NotZero(rt.Texture(1).Handle())
	assert.NotEqual(rt.Texture(0).Handle(), rt.Texture(1).Handle())
	assert.Panics(func() { rt.Texture(2) })

	rt.Resize(16, 16)
	assert.Equal(0, rt.Generation())
	assert.Zero(resource.Pending())

	rt.Resize(32, 8)
	assert.Equal(1, rt.Generation())
	assert.True(rt.RequiresBuild())
	assert.Zero(rt.Texture(0).Handle())
	assert.Equal(1, resource.Pending())

	view := rt.Texture(0)
	require.NoError(t, view.Compile(b, 3))
	assert.Equal(view.Handle(), b.BoundTexture(3))
	assert.Equal(2, b.Count(backend.OpCreateTarget))

	resource.Drain(b)
	rt.Dispose()
	resource.Drain(b)
	assert.Equal(0, b.Live())
}

func TestRenderTargetSharedDepth(t *testing.T) {
	assert := assert.New(t)
	b := newBackend(t)

	owner := NewRenderTarget(8, 8, WithTargetLabel("gbuffer"))
	sharer := NewRenderTarget(8, 8, WithTargetLabel("light"), WithSharedDepth(owner))

	require.NoError(t, sharer.Build(b))
	assert.False(owner.RequiresBuild(), "building a sharer builds the owner")
	assert.False(sharer.RequiresBuild())

	owner.Resize(4, 4)
	assert.True(sharer.RequiresBuild(), "a resized owner invalidates its sharers")
	sharer.Resize(4, 4)
	require.NoError(t, sharer.Build(b))
	assert.False(sharer.RequiresBuild())

	// The stencil of the owner is visible through the sharer.
	p, err := b.CompileProgram("fill", `
@vertex
fn vs_main() -> @builtin(position) vec4<f32> {
    return vec4<f32>(0.0);
}
`, `
@fragment
fn fs_main() -> @location(0) vec4<f32> {
    return vec4<f32>(1.0);
}
`)
	require.NoError(t, err)
	require.NoError(t, sharer.Bind(b, 0))
	b.UseProgram(p)
	b.SetStencil(backend.StencilState{Enabled: true, Func: backend.CompareAlways, Ref: 2, Pass: backend.StencilReplace})
	b.Draw(backend.PrimitiveTriangles, 0, 3)
	assert.Equal(uint8(2), b.Stencil(owner.Handle(), 0)[0])

	owner.Dispose()
	sharer.Dispose()
	b.DeleteProgram(p)
	resource.Drain(b)
	assert.Equal(0, b.Live())
}

func TestRenderTargetMipmaps(t *testing.T) {
	assert := assert.New(t)
	b := newBackend(t)

	rt := NewRenderTarget(8, 8, WithCube(true), WithTargetMipmaps(true))
	assert.False(rt.GenerateMipmaps(b), "unbuilt targets have nothing to filter")
	require.NoError(t, rt.Bind(b, 5))
	assert.True(rt.GenerateMipmaps(b))
	rt.SetMipmaps(false)
	assert.False(rt.GenerateMipmaps(b))
	assert.Equal(1, b.MipmapGenerations(rt.Handle()))

	rt.Dispose()
	resource.Drain(b)
}
