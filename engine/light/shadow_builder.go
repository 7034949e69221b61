package light

// ShadowBuilderOption is a function that configures Shadow data.
type ShadowBuilderOption func(*Shadow)

// WithShadowMapSize sets the width and height of the shadow map in texels.
//
// Parameters:
//   - size: the map size
//
// Returns:
//   - ShadowBuilderOption: a function that applies the map size option to a Shadow
func WithShadowMapSize(size int) ShadowBuilderOption {
	return func(s *Shadow) {
		s.mapSize = size
	}
}

// WithShadowBias sets the depth comparison bias.
//
// Parameters:
//   - bias: the bias
//
// Returns:
//   - ShadowBuilderOption: a function that applies the bias option to a Shadow
func WithShadowBias(bias float32) ShadowBuilderOption {
	return func(s *Shadow) {
		s.Bias = bias
	}
}

// WithShadowDarkness sets the fraction of light removed in full shadow.
//
// Parameters:
//   - darkness: the darkness in [0, 1]
//
// Returns:
//   - ShadowBuilderOption: a function that applies the darkness option to a Shadow
func WithShadowDarkness(darkness float32) ShadowBuilderOption {
	return func(s *Shadow) {
		s.Darkness = darkness
	}
}

// WithShadowVolume sets the orthographic half-extent and the near and far planes of the shadow
// camera.
//
// Parameters:
//   - halfExtent: the half-width and half-height of the volume in world units
//   - near: the near plane
//   - far: the far plane
//
// Returns:
//   - ShadowBuilderOption: a function that applies the volume option to a Shadow
func WithShadowVolume(halfExtent, near, far float32) ShadowBuilderOption {
	return func(s *Shadow) {
		s.HalfExtent = halfExtent
		s.Near = near
		s.Far = far
	}
}
