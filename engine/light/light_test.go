package light

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLightDefaults(t *testing.T) {
	l := NewLight(LightTypePoint)

	assert.Equal(t, LightTypePoint, l.Type())
	assert.True(t, l.Enabled())
	assert.Equal(t, mgl32.Vec3{1, 1, 1}, l.Color())
	assert.Equal(t, float32(1), l.Intensity())
	assert.False(t, l.CastsShadows())
	assert.Nil(t, l.Shadow())
	assert.True(t, l.Type().IsVolume())
	assert.False(t, LightTypeAmbient.IsVolume())
}

func TestLightBuilderOptions(t *testing.T) {
	l := NewLight(LightTypeSpot,
		WithPosition(mgl32.Vec3{1, 2, 3}),
		WithDirection(mgl32.Vec3{0, 0, -4}),
		WithColor(mgl32.Vec3{1, 0.5, 0}),
		WithIntensity(2),
		WithRange(15),
		WithSpotCone(30, 60),
		WithEnabled(false),
	)

	assert.Equal(t, mgl32.Vec3{1, 2, 3}, l.Position())
	dir := l.Direction()
	assert.InDeltaSlice(t, []float32{0, 0, -1}, dir[:], 1e-6)
	assert.Equal(t, mgl32.Vec3{1, 0.5, 0}, l.Color())
	assert.Equal(t, float32(2), l.Intensity())
	assert.Equal(t, float32(15), l.Range())
	assert.InDelta(t, 0.8660, l.InnerCone(), 1e-3)
	assert.InDelta(t, 0.5, l.OuterCone(), 1e-3)
	assert.False(t, l.Enabled())
}

func TestOnlyDirectionalLightsCastShadows(t *testing.T) {
	assert.Panics(t, func() { NewLight(LightTypePoint, WithShadow(NewShadow(WithShadowMapSize(16)))) })

	l := NewLight(LightTypeAmbient)
	assert.Panics(t, func() { l.SetShadow(NewShadow(WithShadowMapSize(16))) })

	d := NewLight(LightTypeDirectional, WithShadow(NewShadow(WithShadowMapSize(16))))
	assert.True(t, d.CastsShadows())
	d.Shadow().Enabled = false
	assert.False(t, d.CastsShadows())
	d.SetShadow(nil)
	assert.Nil(t, d.Shadow())
}

func TestShadowDefaults(t *testing.T) {
	s := NewShadow(WithShadowBias(0.01), WithShadowDarkness(0.8))

	assert.True(t, s.Enabled)
	assert.Equal(t, ShadowMapResolution, s.MapSize())
	assert.Equal(t, float32(0.01), s.Bias)
	assert.Equal(t, float32(0.8), s.Darkness)
	require.NotNil(t, s.Target())
	assert.Equal(t, ShadowMapResolution, s.Target().Width())

	s.SetMapSize(512)
	assert.Equal(t, 512, s.Target().Height())
	assert.Panics(t, func() { s.SetMapSize(0) })
}

func TestComputeShadowMatrix(t *testing.T) {
	for _, dir := range []mgl32.Vec3{{0, -1, 0}, {-1, -1, -1}, {1, 0, 0}} {
		s := NewShadow(WithShadowMapSize(16), WithShadowVolume(10, 0.1, 100))
		center := mgl32.Vec3{3, 0, -2}
		m := s.ComputeShadowMatrix(dir, center)

		assert.Equal(t, m, s.Matrix)

		// The volume center lands in the middle of the map.
		p := m.Mul4x1(center.Vec4(1))
		assert.InDelta(t, 0.5, p.X()/p.W(), 1e-4, "dir %v", dir)
		assert.InDelta(t, 0.5, p.Y()/p.W(), 1e-4, "dir %v", dir)
		assert.Greater(t, p.Z(), float32(0))
		assert.Less(t, p.Z(), float32(1))

		// Points closer to the light have smaller depth.
		toward := center.Sub(dir.Normalize().Mul(5))
		q := m.Mul4x1(toward.Vec4(1))
		assert.Less(t, q.Z(), p.Z(), "dir %v", dir)
	}
}
