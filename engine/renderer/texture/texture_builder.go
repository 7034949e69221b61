package texture

import "github.com/MKHenson/trike3d-sub000/engine/renderer/backend"

// ImageTextureOption is a function that configures an ImageTexture during construction.
type ImageTextureOption func(*ImageTexture)

// WithLabel is an option builder that sets the debug label of the texture.
//
// Parameters:
//   - label: the label
//
// Returns:
//   - ImageTextureOption: a function that applies the label option to a texture
func WithLabel(label string) ImageTextureOption {
	return func(t *ImageTexture) {
		t.label = label
	}
}

// WithMipmaps is an option builder that generates a full CPU mip chain at build time.
//
// Parameters:
//   - enabled: whether to build mip levels
//
// Returns:
//   - ImageTextureOption: a function that applies the mipmap option to a texture
func WithMipmaps(enabled bool) ImageTextureOption {
	return func(t *ImageTexture) {
		t.mipmaps = enabled
	}
}

// WithPowerOfTwo is an option builder that resizes non power-of-two images up to the next power of two.
//
// Parameters:
//   - enabled: whether to resize
//
// Returns:
//   - ImageTextureOption: a function that applies the resize option to a texture
func WithPowerOfTwo(enabled bool) ImageTextureOption {
	return func(t *ImageTexture) {
		t.powerOfTwo = enabled
	}
}

// WithFilter is an option builder that sets the sampling filter.
//
// Parameters:
//   - filter: the filter mode
//
// Returns:
//   - ImageTextureOption: a function that applies the filter option to a texture
func WithFilter(filter backend.FilterMode) ImageTextureOption {
	return func(t *ImageTexture) {
		t.filter = filter
	}
}

// WithWrap is an option builder that sets the addressing mode.
//
// Parameters:
//   - wrap: the wrap mode
//
// Returns:
//   - ImageTextureOption: a function that applies the wrap option to a texture
func WithWrap(wrap backend.WrapMode) ImageTextureOption {
	return func(t *ImageTexture) {
		t.wrap = wrap
	}
}
