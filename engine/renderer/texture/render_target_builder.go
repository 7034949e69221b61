package texture

import "github.com/MKHenson/trike3d-sub000/engine/renderer/backend"

// RenderTargetOption is a function that configures a RenderTarget during construction.
type RenderTargetOption func(*RenderTarget)

// WithTargetLabel sets the debug label of the target.
func WithTargetLabel(label string) RenderTargetOption {
	return func(r *RenderTarget) {
		r.label = label
	}
}

// WithFormat sets the color attachment format.
//
// Parameters:
//   - format: the texel format, floating point formats require backend support
//
// Returns:
//   - RenderTargetOption: a function that applies the format option to a target
func WithFormat(format backend.TextureFormat) RenderTargetOption {
	return func(r *RenderTarget) {
		r.format = format
	}
}

// WithColorAttachments sets the number of color attachments.
//
// Parameters:
//   - n: the number of attachments, at least one
//
// Returns:
//   - RenderTargetOption: a function that applies the attachment count to a target
func WithColorAttachments(n int) RenderTargetOption {
	return func(r *RenderTarget) {
		r.colors = max(n, 1)
	}
}

// WithDepth toggles the depth-stencil attachment.
func WithDepth(enabled bool) RenderTargetOption {
	return func(r *RenderTarget) {
		r.depth = enabled
	}
}

// WithSharedDepth reuses the depth-stencil attachment of another target of equal size, so
// stencil values written into one are visible when drawing into the other.
//
// Parameters:
//   - owner: the target that owns the attachment
//
// Returns:
//   - RenderTargetOption: a function that applies the shared depth option to a target
func WithSharedDepth(owner *RenderTarget) RenderTargetOption {
	return func(r *RenderTarget) {
		r.shareDepth = owner
	}
}

// WithCube makes the target a six-faced cube map.
func WithCube(enabled bool) RenderTargetOption {
	return func(r *RenderTarget) {
		r.cube = enabled
	}
}

// WithTargetMipmaps enables mip chain generation.
func WithTargetMipmaps(enabled bool) RenderTargetOption {
	return func(r *RenderTarget) {
		r.mipmaps = enabled
	}
}

// WithTargetFilter sets the sampling filter of the color attachments.
func WithTargetFilter(filter backend.FilterMode) RenderTargetOption {
	return func(r *RenderTarget) {
		r.filter = filter
	}
}

// WithTargetWrap sets the addressing mode of the color attachments.
func WithTargetWrap(wrap backend.WrapMode) RenderTargetOption {
	return func(r *RenderTarget) {
		r.wrap = wrap
	}
}
