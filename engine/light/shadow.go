package light

import (
	"fmt"

	"github.com/MKHenson/trike3d-sub000/common"
	"github.com/MKHenson/trike3d-sub000/engine/camera"
	"github.com/MKHenson/trike3d-sub000/engine/renderer/backend"
	"github.com/MKHenson/trike3d-sub000/engine/renderer/texture"
	"github.com/go-gl/mathgl/mgl32"
)

// ShadowMapResolution is the default width and height in texels of the shadow map.
const ShadowMapResolution = 2048

// DefaultShadowHalfExtent is the default orthographic half-extent (in world units)
// of the shadow frustum. Controls how much of the scene around the shadow center is
// captured in the shadow map.
const DefaultShadowHalfExtent float32 = 40.0

// DefaultShadowNear is the default near plane of the orthographic shadow projection.
const DefaultShadowNear float32 = 0.1

// DefaultShadowFar is the default far plane of the orthographic shadow projection.
const DefaultShadowFar float32 = 200.0

// DefaultShadowBias is the constant depth bias applied to shadow comparisons
// to reduce shadow acne artifacts.
const DefaultShadowBias float32 = 0.001

// DefaultShadowDarkness is how much light a fully shadowed texel loses.
const DefaultShadowDarkness float32 = 0.5

// Shadow is the shadow data of a directional light: an orthographic camera looking along the
// light, the map it renders into and the values the receiving materials need to sample it.
// The renderer regenerates the map and the matrix every frame.
type Shadow struct {
	// Enabled gates the shadow pass for the owning light.
	Enabled bool

	// Bias is subtracted from the receiver depth before comparison.
	Bias float32

	// Darkness is the fraction of light removed in full shadow.
	Darkness float32

	// HalfExtent, Near and Far bound the orthographic shadow volume.
	HalfExtent float32
	Near       float32
	Far        float32

	// Matrix maps world space into shadow map texture space (bias * projection * view).
	Matrix mgl32.Mat4

	mapSize int
	camera  camera.Camera
	target  *texture.RenderTarget
}

// NewShadow creates enabled shadow data with an RGBA32F map and depth buffer.
//
// Parameters:
//   - opts: variadic list of ShadowBuilderOption functions to configure the shadow
//
// Returns:
//   - *Shadow: the shadow data
func NewShadow(opts ...ShadowBuilderOption) *Shadow {
	s := &Shadow{
		Enabled:    true,
		Bias:       DefaultShadowBias,
		Darkness:   DefaultShadowDarkness,
		HalfExtent: DefaultShadowHalfExtent,
		Near:       DefaultShadowNear,
		Far:        DefaultShadowFar,
		Matrix:     mgl32.Ident4(),
		mapSize:    ShadowMapResolution,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.mapSize <= 0 {
		panic(fmt.Sprintf("light: invalid shadow map size %d", s.mapSize))
	}
	s.camera = camera.NewCamera(
		camera.WithName("shadow"),
		camera.WithOrthographic(-s.HalfExtent, s.HalfExtent, -s.HalfExtent, s.HalfExtent),
		camera.WithNear(s.Near),
		camera.WithFar(s.Far),
	)
	s.target = texture.NewRenderTarget(s.mapSize, s.mapSize,
		texture.WithTargetLabel("shadow-map"),
		texture.WithFormat(backend.FormatRGBA32F),
		texture.WithTargetFilter(backend.FilterNearest),
		texture.WithTargetWrap(backend.WrapClamp),
	)
	return s
}

// Camera returns the orthographic shadow camera.
func (s *Shadow) Camera() camera.Camera {
	return s.camera
}

// Target returns the shadow map render target.
func (s *Shadow) Target() *texture.RenderTarget {
	return s.target
}

// MapSize returns the width and height of the shadow map in texels.
func (s *Shadow) MapSize() int {
	return s.mapSize
}

// SetMapSize resizes the shadow map. The target is rebuilt on next use.
func (s *Shadow) SetMapSize(size int) {
	if size <= 0 {
		panic(fmt.Sprintf("light: invalid shadow map size %d", size))
	}
	s.mapSize = size
	s.target.Resize(size, size)
}

// ComputeShadowMatrix aims the shadow camera along direction at center and refreshes Matrix.
// The camera is pulled back by half the far distance so geometry on both sides of center
// falls inside the shadow volume.
//
// Parameters:
//   - direction: the world-space direction the light shines along
//   - center: the world-space point the shadow volume is centered on
//
// Returns:
//   - mgl32.Mat4: the new shadow matrix
func (s *Shadow) ComputeShadowMatrix(direction, center mgl32.Vec3) mgl32.Mat4 {
	dir := normalize(direction)
	if dir.Len() == 0 {
		dir = mgl32.Vec3{0, -1, 0}
	}

	// Avoid a degenerate look-at when the light points straight up or down.
	up := mgl32.Vec3{0, 1, 0}
	if abs(dir.Y()) > 0.99 {
		up = mgl32.Vec3{1, 0, 0}
	}

	eye := center.Sub(dir.Mul(s.Far * 0.5))
	s.camera.SetBounds(-s.HalfExtent, s.HalfExtent, -s.HalfExtent, s.HalfExtent)
	s.camera.SetNear(s.Near)
	s.camera.SetFar(s.Far)
	s.camera.LookAt(eye, center, up)

	s.Matrix = common.TextureMatrix(s.camera.Projection(), s.camera.View())
	return s.Matrix
}

// Dispose releases the shadow map.
func (s *Shadow) Dispose() {
	s.target.Dispose()
}

func abs(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
