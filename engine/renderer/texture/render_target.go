package texture

import (
	"fmt"

	"github.com/MKHenson/trike3d-sub000/engine/renderer/backend"
	"github.com/MKHenson/trike3d-sub000/engine/resource"
)

// RenderTarget is an offscreen framebuffer with one or more color attachments and an optional
// depth-stencil attachment, which may be shared with another target of the same size.
type RenderTarget struct {
	label      string
	width      int
	height     int
	format     backend.TextureFormat
	colors     int
	depth      bool
	shareDepth *RenderTarget
	cube       bool
	mipmaps    bool
	filter     backend.FilterMode
	wrap       backend.WrapMode

	handle        backend.Target
	textures      []backend.Texture
	sharedFrom    backend.Target
	requiresBuild bool
	generation    int
}

// NewRenderTarget creates a render target. The backend target is created on first use.
//
// Parameters:
//   - width: the width in pixels
//   - height: the height in pixels
//   - options: variadic list of RenderTargetOption functions to configure the target
//
// Returns:
//   - *RenderTarget: the render target
func NewRenderTarget(width, height int, options ...RenderTargetOption) *RenderTarget {
	r := &RenderTarget{
		label:         "target",
		width:         width,
		height:        height,
		colors:        1,
		depth:         true,
		requiresBuild: true,
	}
	for _, opt := range options {
		opt(r)
	}
	return r
}

// Label returns the debug label of the target.
func (r *RenderTarget) Label() string {
	return r.label
}

// Width returns the width in pixels.
func (r *RenderTarget) Width() int {
	return r.width
}

// Height returns the height in pixels.
func (r *RenderTarget) Height() int {
	return r.height
}

// Cube reports whether the target has six faces.
func (r *RenderTarget) Cube() bool {
	return r.cube
}

// Format returns the color attachment format.
func (r *RenderTarget) Format() backend.TextureFormat {
	return r.format
}

// Mipmaps reports whether GenerateMipmaps rebuilds the color mip chain.
func (r *RenderTarget) Mipmaps() bool {
	return r.mipmaps
}

// SetMipmaps toggles mipmap generation. Cube renders turn it off while drawing all but the last face.
//
// Parameters:
//   - enabled: whether GenerateMipmaps has any effect
func (r *RenderTarget) SetMipmaps(enabled bool) {
	r.mipmaps = enabled
}

// Generation increases every time the target is resized.
func (r *RenderTarget) Generation() int {
	return r.generation
}

// Handle returns the backend target, or zero before the first build.
func (r *RenderTarget) Handle() backend.Target {
	return r.handle
}

// RequiresBuild reports whether the backend target must be (re)created before use. A target that
// shares depth is stale when the owner of the depth attachment was rebuilt.
//
// Returns:
//   - bool: true if the next Build creates a new backend target
func (r *RenderTarget) RequiresBuild() bool {
	if r.requiresBuild {
		return true
	}
	if r.shareDepth != nil {
		return r.shareDepth.RequiresBuild() || r.shareDepth.handle != r.sharedFrom
	}
	return false
}

// Build creates the backend target if it is missing or stale.
//
// Parameters:
//   - b: the backend to create the target with
//
// Returns:
//   - error: an error if the target could not be created
func (r *RenderTarget) Build(b backend.Backend) error {
	if !r.RequiresBuild() {
		return nil
	}
	r.release()

	desc := backend.TargetDescriptor{
		Label:   r.label,
		Width:   r.width,
		Height:  r.height,
		Format:  r.format,
		Colors:  r.colors,
		Depth:   r.depth,
		Cube:    r.cube,
		Mipmaps: r.mipmaps,
		Filter:  r.filter,
		Wrap:    r.wrap,
	}
	if r.shareDepth != nil {
		if err := r.shareDepth.Build(b); err != nil {
			return err
		}
		desc.ShareDepth = r.shareDepth.handle
		desc.Depth = false
	}

	handle, err := b.CreateRenderTarget(desc)
	if err != nil {
		return fmt.Errorf("failed to create render target %s: %w", r.label, err)
	}
	r.handle = handle
	r.sharedFrom = desc.ShareDepth
	r.textures = r.textures[:0]
	for i := range r.colors {
		r.textures = append(r.textures, b.TargetTexture(handle, i))
	}
	r.requiresBuild = false
	return nil
}

// Bind builds the target if needed and makes it the destination of subsequent draws.
//
// Parameters:
//   - b: the backend
//   - face: the cube face to draw into, ignored for 2D targets
//
// Returns:
//   - error: an error if the target could not be built
func (r *RenderTarget) Bind(b backend.Backend, face int) error {
	if err := r.Build(b); err != nil {
		return err
	}
	b.BindTarget(r.handle, face)
	return nil
}

// GenerateMipmaps rebuilds the color mip chain when mipmaps are enabled.
//
// Parameters:
//   - b: the backend
//
// Returns:
//   - bool: true if mipmaps were generated
func (r *RenderTarget) GenerateMipmaps(b backend.Backend) bool {
	if !r.mipmaps || r.handle == 0 {
		return false
	}
	b.GenerateMipmaps(r.handle)
	return true
}

// Resize changes the target dimensions. The current backend target is released at the next drain.
//
// Parameters:
//   - width: the new width in pixels
//   - height: the new height in pixels
func (r *RenderTarget) Resize(width, height int) {
	if width == r.width && height == r.height {
		return
	}
	r.width, r.height = width, height
	r.release()
	r.requiresBuild = true
	r.generation++
}

// Texture returns a sampleable view of a color attachment.
//
// Parameters:
//   - index: the attachment index
//
// Returns:
//   - *TargetTexture: the view
func (r *RenderTarget) Texture(index int) *TargetTexture {
	if index < 0 || index >= r.colors {
		panic(fmt.Sprintf("texture: render target %s has no color attachment %d", r.label, index))
	}
	return &TargetTexture{target: r, index: index}
}

func (r *RenderTarget) release() {
	if r.handle == 0 {
		return
	}
	h := r.handle
	r.handle = 0
	r.textures = r.textures[:0]
	resource.Enqueue(resource.ReleaseFunc(func(b backend.Backend) {
		b.DeleteRenderTarget(h)
	}))
}

// Dispose queues the backend target for release. The target rebuilds if used again.
func (r *RenderTarget) Dispose() {
	r.release()
	r.requiresBuild = true
}

// TargetTexture samples one color attachment of a RenderTarget.
type TargetTexture struct {
	target *RenderTarget
	index  int
}

var _ Texture = &TargetTexture{}

// Target returns the render target the view belongs to.
func (t *TargetTexture) Target() *RenderTarget {
	return t.target
}

func (t *TargetTexture) RequiresBuild() bool {
	return t.target.RequiresBuild()
}

func (t *TargetTexture) Handle() backend.Texture {
	if t.index >= len(t.target.textures) {
		return 0
	}
	return t.target.textures[t.index]
}

func (t *TargetTexture) Compile(b backend.Backend, unit int) error {
	if err := t.target.Build(b); err != nil {
		return err
	}
	b.BindTexture(unit, t.Handle())
	return nil
}
