package geometry

import (
	"testing"

	"github.com/MKHenson/trike3d-sub000/engine/renderer/backend"
	"github.com/MKHenson/trike3d-sub000/engine/resource"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBackend(t *testing.T) *backend.RecordingBackend {
	t.Helper()
	b := backend.NewRecordingBackend()
	require.NoError(t, b.Initialize(64, 64))
	resource.Drain(b)
	return b
}

func TestGeometryBuildUploadsDirtyBuffers(t *testing.T) {
	assert := assert.New(t)
	b := newBackend(t)

	g := NewPlane(2, 2)
	assert.True(g.RequiresBuild())
	assert.Equal([]string{"index", "normal", "position", "uv"}, g.DirtyBuffers())
	assert.Equal(6, g.Count())
	assert.Equal(4, g.VertexCount())

	require.NoError(t, g.Build(b))
	assert.False(g.RequiresBuild())
	assert.Empty(g.DirtyBuffers())
	assert.Equal(4, b.Count(backend.OpCreateBuffer))
	assert.NotZero(g.IndexBuffer())

	gen := g.Generation()
	g.SetAttribute(AttributeUV, 2, make([]float32, 8))
	assert.Greater(g.Generation(), gen)
	assert.Equal([]string{"uv"}, g.DirtyBuffers())

	require.NoError(t, g.Build(b))
	assert.Equal(4, b.Count(backend.OpCreateBuffer))
	assert.Equal(1, b.Count(backend.OpUpdateBuffer))

	g.Dispose()
	resource.Drain(b)
	assert.Equal(0, b.Live())
	assert.True(g.RequiresBuild(), "disposed geometry rebuilds on next use")
}

func TestGeometryBuildErrors(t *testing.T) {
	assert := assert.New(t)
	b := newBackend(t)

	var be *BuildError

	err := NewGeometry(WithName("empty")).Build(b)
	require.ErrorAs(t, err, &be)
	assert.Equal("empty", be.Geometry)
	assert.Contains(err.Error(), "missing position")

	err = NewGeometry(
		WithAttribute(AttributePosition, 3, make([]float32, 9)),
		WithAttribute(AttributeUV, 2, make([]float32, 4)),
	).Build(b)
	require.ErrorAs(t, err, &be)
	assert.Contains(be.Diagnostic, "attribute uv has 2 vertices")

	err = NewGeometry(
		WithAttribute(AttributePosition, 3, make([]float32, 9)),
		WithIndices([]uint32{0, 1, 3}),
	).Build(b)
	require.ErrorAs(t, err, &be)
	assert.Contains(be.Diagnostic, "out of range")
	assert.Zero(b.Count(backend.OpCreateBuffer), "invalid geometry uploads nothing")

	assert.Panics(func() { NewGeometry().SetAttribute(AttributePosition, 5, nil) })
}

func TestGeometryBoundingSphere(t *testing.T) {
	assert := assert.New(t)

	box := NewBox(2, 4, 2)
	s := box.BoundingSphere()
	assert.InDelta(0, s.Center.Len(), 1e-5)
	assert.InDelta(mgl32.Vec3{1, 2, 1}.Len(), s.Radius, 1e-5)

	box.SetAttribute(AttributePosition, 3, []float32{10, 0, 0, 12, 0, 0})
	s = box.BoundingSphere()
	assert.InDelta(11, s.Center.X(), 1e-5)
	assert.InDelta(1, s.Radius, 1e-5)

	sphere := NewSphere(3, 16, 8)
	assert.InDelta(3, sphere.BoundingSphere().Radius, 1e-4)
}

func TestShapesAreConsistent(t *testing.T) {
	assert := assert.New(t)
	b := newBackend(t)

	for _, g := range []Geometry{NewScreenQuad(), NewPlane(1, 1), NewBox(1, 1, 1), NewSphere(1, 8, 4)} {
		require.NoError(t, g.Build(b), g.Name())
		assert.Zero(g.Count()%3, g.Name())
		g.Dispose()
	}
	resource.Drain(b)
	assert.Equal(0, b.Live())

	quad := NewScreenQuad()
	pos, components, ok := quad.Attribute(AttributePosition)
	require.True(t, ok)
	assert.Equal(3, components)
	assert.Len(pos, 12)
	_, _, ok = quad.Attribute(AttributeNormal)
	assert.False(ok)

	quad.RemoveAttribute(AttributeUV)
	assert.Equal([]string{"position"}, quad.AttributeNames())
	quad.SetIndices(nil)
	assert.Equal(4, quad.Count())
}
