package material

import (
	"time"

	"github.com/MKHenson/trike3d-sub000/engine/renderer/backend"
	"github.com/MKHenson/trike3d-sub000/engine/renderer/texture"
)

// TimeUniform is the uniform an animated ShaderTexture receives the elapsed time in, in seconds.
const TimeUniform = "time"

// ShaderTexture is a texture whose contents are produced by drawing a full-screen material into
// its own render target. Static textures are drawn once, animated ones every frame.
type ShaderTexture struct {
	target       *texture.RenderTarget
	material     Material
	animated     bool
	requiresDraw bool
}

var _ texture.Texture = &ShaderTexture{}

// NewShaderTexture creates a shader texture of the given size.
//
// Parameters:
//   - width: the texture width in pixels
//   - height: the texture height in pixels
//   - m: the material drawn into the texture
//   - animated: whether the texture is redrawn every frame
//
// Returns:
//   - *ShaderTexture: the shader texture
func NewShaderTexture(width, height int, m Material, animated bool) *ShaderTexture {
	return &ShaderTexture{
		target:       texture.NewRenderTarget(width, height, texture.WithTargetLabel(m.Name()), texture.WithDepth(false)),
		material:     m,
		animated:     animated,
		requiresDraw: true,
	}
}

// Update assigns the elapsed time to the time uniform when the material declares one.
//
// Parameters:
//   - elapsed: the time since the renderer started
func (s *ShaderTexture) Update(elapsed time.Duration) {
	if _, ok := s.material.Uniform(TimeUniform); ok {
		s.material.SetUniform(TimeUniform, float32(elapsed.Seconds()))
	}
}

// Animated reports whether the texture is redrawn every frame.
func (s *ShaderTexture) Animated() bool {
	return s.animated
}

// RequiresDraw reports whether the texture must be drawn this frame.
func (s *ShaderTexture) RequiresDraw() bool {
	return s.animated || s.requiresDraw
}

// MarkDrawn records that the texture contents are current.
func (s *ShaderTexture) MarkDrawn() {
	s.requiresDraw = false
}

// Invalidate forces a static texture to be drawn again.
func (s *ShaderTexture) Invalidate() {
	s.requiresDraw = true
}

// Target returns the render target the material draws into.
func (s *ShaderTexture) Target() *texture.RenderTarget {
	return s.target
}

// Material returns the material drawn into the texture.
func (s *ShaderTexture) Material() Material {
	return s.material
}

func (s *ShaderTexture) RequiresBuild() bool {
	return s.target.RequiresBuild()
}

func (s *ShaderTexture) Handle() backend.Texture {
	return s.target.Texture(0).Handle()
}

func (s *ShaderTexture) Compile(b backend.Backend, unit int) error {
	return s.target.Texture(0).Compile(b, unit)
}

// Dispose releases the render target and the material program.
func (s *ShaderTexture) Dispose() {
	s.target.Dispose()
	s.material.Dispose()
	s.requiresDraw = true
}
