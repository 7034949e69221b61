package pass

import (
	"github.com/MKHenson/trike3d-sub000/common"
	"github.com/MKHenson/trike3d-sub000/engine/renderer/backend"
)

// PassBuilderOption is a functional option for configuring a Pass.
type PassBuilderOption func(*Pass)

// WithFilter sets the drawable buckets of the pass.
//
// Parameters:
//   - f: the filter
//
// Returns:
//   - PassBuilderOption: option function to apply
func WithFilter(f Filter) PassBuilderOption {
	return func(p *Pass) {
		p.filter = f
	}
}

// WithAutoClear sets the buffers cleared when the pass begins.
//
// Parameters:
//   - flags: the buffers to clear
//   - color: the clear color
//
// Returns:
//   - PassBuilderOption: option function to apply
func WithAutoClear(flags backend.ClearFlags, color common.Color) PassBuilderOption {
	return func(p *Pass) {
		p.clear = flags
		p.clearColor = color
	}
}

// CollectionBuilderOption is a functional option for configuring a Collection.
type CollectionBuilderOption func(*Collection)

// WithLightFormat sets the format of the light accumulation buffer.
//
// Parameters:
//   - format: the texel format
//
// Returns:
//   - CollectionBuilderOption: option function to apply
func WithLightFormat(format backend.TextureFormat) CollectionBuilderOption {
	return func(c *Collection) {
		c.lightFormat = format
	}
}

// WithCollectionClearColor sets the color the composition target is cleared to.
//
// Parameters:
//   - color: the clear color
//
// Returns:
//   - CollectionBuilderOption: option function to apply
func WithCollectionClearColor(color common.Color) CollectionBuilderOption {
	return func(c *Collection) {
		c.clearColor = color
	}
}
