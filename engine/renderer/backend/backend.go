// Package backend defines the GPU contract the renderer draws through and the handle types passed across it.
// The production implementation lives in the webgpu sub-package, and a headless recording implementation
// is provided here for tests and tooling.
package backend

import "github.com/MKHenson/trike3d-sub000/common"

// Backend is a stateful, immediate-mode view of a GPU device. All calls happen on the render goroutine.
type Backend interface {
	// Type returns the implementation type of the backend.
	//
	// Returns:
	//   - Type: the backend type
	Type() Type

	// Initialize creates the device and configures the presentation surface.
	//
	// Parameters:
	//   - width: the surface width in pixels
	//   - height: the surface height in pixels
	//
	// Returns:
	//   - error: an error if the device or surface could not be created
	Initialize(width, height int) error

	// Capabilities returns the optional features supported by the device. Only valid after Initialize.
	//
	// Returns:
	//   - Capabilities: the supported features
	Capabilities() Capabilities

	// SetPresentMode sets the present mode used the next time the surface is configured.
	//
	// Parameters:
	//   - mode: the PresentMode to use
	SetPresentMode(mode PresentMode)

	// Resize reconfigures the presentation surface.
	//
	// Parameters:
	//   - width: the new width in pixels
	//   - height: the new height in pixels
	Resize(width, height int)

	// SetViewport restricts drawing on the default target to a sub-rectangle.
	//
	// Parameters:
	//   - v: the viewport rectangle
	SetViewport(v common.Viewport)

	// CompileProgram compiles a vertex and fragment stage and links them into a program.
	// Failures return a *ShaderError carrying the diagnostic.
	//
	// Parameters:
	//   - label: a debug label
	//   - vertexSource: the vertex stage source
	//   - fragmentSource: the fragment stage source
	//
	// Returns:
	//   - Program: the program handle
	//   - error: a *ShaderError if compilation or linking failed
	CompileProgram(label, vertexSource, fragmentSource string) (Program, error)

	// UniformLocation resolves a uniform or texture by name.
	//
	// Parameters:
	//   - p: the program to search
	//   - name: the declared variable name
	//
	// Returns:
	//   - Location: the location of the variable
	//   - bool: false if the program does not declare the name
	UniformLocation(p Program, name string) (Location, bool)

	// AttributeLocation resolves a vertex attribute by name.
	//
	// Parameters:
	//   - p: the program to search
	//   - name: the vertex input field name
	//
	// Returns:
	//   - int: the attribute slot
	//   - bool: false if the vertex stage does not declare the name
	AttributeLocation(p Program, name string) (int, bool)

	// UseProgram binds the program for subsequent uploads and draws.
	//
	// Parameters:
	//   - p: the program to bind
	UseProgram(p Program)

	// UploadUniform writes a value to a uniform of the bound program. Supported values are float32, int32,
	// the mgl32 vector and matrix types, slices of those, and TextureUnit.
	//
	// Parameters:
	//   - loc: the uniform location
	//   - value: the value to write
	UploadUniform(loc Location, value any)

	// DeleteProgram destroys a program.
	//
	// Parameters:
	//   - p: the program to destroy
	DeleteProgram(p Program)

	// CreateBuffer creates a GPU buffer initialized with data.
	//
	// Parameters:
	//   - kind: vertex or index
	//   - data: the initial contents
	//
	// Returns:
	//   - Buffer: the buffer handle
	//   - error: an error if the buffer could not be created
	CreateBuffer(kind BufferKind, data []byte) (Buffer, error)

	// UpdateBuffer replaces the contents of a buffer, growing it if needed.
	//
	// Parameters:
	//   - buf: the buffer to update
	//   - data: the new contents
	//
	// Returns:
	//   - error: an error if the buffer could not be updated
	UpdateBuffer(buf Buffer, data []byte) error

	// DeleteBuffer destroys a buffer.
	//
	// Parameters:
	//   - buf: the buffer to destroy
	DeleteBuffer(buf Buffer)

	// BindAttribute attaches a vertex buffer to an attribute slot.
	//
	// Parameters:
	//   - slot: the attribute slot returned by AttributeLocation
	//   - buf: the vertex buffer
	//   - components: the number of float32 components per vertex
	BindAttribute(slot int, buf Buffer, components int)

	// EnableAttribute enables an attribute slot for drawing.
	//
	// Parameters:
	//   - slot: the attribute slot
	EnableAttribute(slot int)

	// DisableAttribute disables an attribute slot.
	//
	// Parameters:
	//   - slot: the attribute slot
	DisableAttribute(slot int)

	// CreateTexture creates a sampled texture. Levels hold tightly packed texel rows per mip level, face-major
	// for cube textures. Missing levels leave the texture contents undefined.
	//
	// Parameters:
	//   - desc: the texture descriptor
	//   - levels: the texel data per level
	//
	// Returns:
	//   - Texture: the texture handle
	//   - error: an error if the texture could not be created
	CreateTexture(desc TextureDescriptor, levels [][]byte) (Texture, error)

	// BindTexture makes a texture resident in a texture unit.
	//
	// Parameters:
	//   - unit: the texture unit
	//   - tex: the texture to bind
	BindTexture(unit int, tex Texture)

	// DeleteTexture destroys a texture.
	//
	// Parameters:
	//   - tex: the texture to destroy
	DeleteTexture(tex Texture)

	// CreateRenderTarget creates an offscreen render target.
	//
	// Parameters:
	//   - desc: the target descriptor
	//
	// Returns:
	//   - Target: the target handle
	//   - error: an error if the target could not be created or the format is unsupported
	CreateRenderTarget(desc TargetDescriptor) (Target, error)

	// TargetTexture returns the texture backing a color attachment of a target.
	//
	// Parameters:
	//   - t: the render target
	//   - index: the color attachment index
	//
	// Returns:
	//   - Texture: the texture handle, zero if out of range
	TargetTexture(t Target, index int) Texture

	// BindTarget directs subsequent clears and draws to a target. For cube targets face selects the face.
	//
	// Parameters:
	//   - t: the target, or DefaultTarget for the surface
	//   - face: the cube face in [0, 5], ignored for 2D targets
	BindTarget(t Target, face int)

	// GenerateMipmaps rebuilds the mip chain of every color attachment of a target.
	//
	// Parameters:
	//   - t: the render target
	GenerateMipmaps(t Target)

	// DeleteRenderTarget destroys a target and its attachments. A shared depth-stencil attachment is
	// destroyed with the last target using it.
	//
	// Parameters:
	//   - t: the render target
	DeleteRenderTarget(t Target)

	// Clear clears attachments of the bound target.
	//
	// Parameters:
	//   - flags: the attachments to clear
	//   - color: the clear color
	Clear(flags ClearFlags, color common.Color)

	SetCullMode(mode CullMode)
	SetDepthState(state DepthState)
	SetBlend(state BlendState)
	SetStencil(state StencilState)
	SetLineWidth(width float32)

	// Draw issues a draw with the bound program, attributes and state.
	//
	// Parameters:
	//   - prim: the primitive topology
	//   - indices: a uint32 index buffer, or zero for non-indexed drawing
	//   - count: the number of indices or vertices
	Draw(prim Primitive, indices Buffer, count int)

	// Present flushes outstanding work and presents the surface.
	//
	// Returns:
	//   - error: an error if presentation failed
	Present() error

	// Dispose releases the device.
	Dispose()
}
