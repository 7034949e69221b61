// Package texture provides the textures a material can sample: decoded images, offscreen render
// targets and views onto a render target's color attachments. Backend objects are created lazily
// on first use and released through the disposal queue.
package texture

import "github.com/MKHenson/trike3d-sub000/engine/renderer/backend"

// Texture is anything that can be bound to a texture unit.
type Texture interface {
	// RequiresBuild reports whether the backend object is missing or stale.
	//
	// Returns:
	//   - bool: true if the next Compile will (re)create the backend object
	RequiresBuild() bool

	// Compile creates the backend object if required and binds it to a texture unit.
	//
	// Parameters:
	//   - b: the backend to build and bind with
	//   - unit: the texture unit to bind to
	//
	// Returns:
	//   - error: an error if the backend object could not be created
	Compile(b backend.Backend, unit int) error

	// Handle returns the backend texture, or zero before the first successful Compile.
	//
	// Returns:
	//   - backend.Texture: the texture handle
	Handle() backend.Texture
}
