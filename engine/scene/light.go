package scene

import (
	"github.com/MKHenson/trike3d-sub000/engine/geometry"
	"github.com/MKHenson/trike3d-sub000/engine/light"
	"github.com/MKHenson/trike3d-sub000/engine/renderer/material"
	"github.com/go-gl/mathgl/mgl32"
)

// Light is the drawable node of a light source. Point and spot lights are perspective lights drawn as
// a sphere volume scaled to their range and culled like any mesh. Directional and ambient lights are
// screen lights drawn as a full-screen quad and never culled.
type Light struct {
	*Mesh

	source light.Light
}

// NewLight creates the node drawing source.
//
// Parameters:
//   - source: the light
//
// Returns:
//   - *Light: the light node
func NewLight(source light.Light) *Light {
	var (
		g geometry.Geometry
		m material.CompositeMaterial
	)
	switch source.Type() {
	case light.LightTypePoint:
		g, m = geometry.NewSphere(1, 16, 12), material.NewPointLightMaterial(false)
	case light.LightTypeSpot:
		g, m = geometry.NewSphere(1, 16, 12), material.NewPointLightMaterial(true)
	case light.LightTypeDirectional:
		g, m = geometry.NewScreenQuad(), material.NewDirectionalLightMaterial()
	default:
		g, m = geometry.NewScreenQuad(), material.NewAmbientLightMaterial()
	}
	l := &Light{source: source}
	l.Mesh = NewMesh(g, m, WithSceneCull(source.Type().IsVolume()), WithCastShadows(false))
	l.Mesh.owner = l
	l.name = source.Type().String() + "-light"
	l.Sync()
	return l
}

// Source returns the light drawn by the node.
func (l *Light) Source() light.Light {
	return l.source
}

// Perspective reports whether the light is drawn as a culled world-space volume.
func (l *Light) Perspective() bool {
	return l.source.Type().IsVolume()
}

// Sync copies the light's enabled state, position and range onto the node transform. The scene calls
// it every frame before world matrices are updated.
func (l *Light) Sync() {
	l.visible = l.source.Enabled()
	if !l.Perspective() {
		return
	}
	l.SetPosition(l.source.Position())
	r := l.source.Range()
	l.SetScale(mgl32.Vec3{r, r, r})
}

// UpdateUniforms writes the light parameters into the light material. Positions and directions are
// expressed in view space, where the g-buffer reconstructs surfaces.
//
// Parameters:
//   - view: the view matrix of the camera being rendered
func (l *Light) UpdateUniforms(view mgl32.Mat4) {
	m := l.material
	m.SetUniform(material.UniformLightColor, l.source.Color(), true)
	m.SetUniform(material.UniformLightIntensity, l.source.Intensity(), true)

	switch l.source.Type() {
	case light.LightTypePoint, light.LightTypeSpot:
		m.SetUniform(material.UniformLightPosition, view.Mul4x1(l.WorldPosition().Vec4(1)).Vec3(), true)
		m.SetUniform(material.UniformLightRadius, l.source.Range(), true)
		if l.source.Type() == light.LightTypeSpot {
			m.SetUniform(material.UniformLightDirection, viewDirection(view, l.source.Direction()), true)
			m.SetUniform(material.UniformLightCone, mgl32.Vec2{l.source.InnerCone(), l.source.OuterCone()}, true)
		}
	case light.LightTypeDirectional:
		m.SetUniform(material.UniformLightDirection, viewDirection(view, l.source.Direction()), true)
	}
}

func viewDirection(view mgl32.Mat4, dir mgl32.Vec3) mgl32.Vec3 {
	v := view.Mat3().Mul3x1(dir)
	if v.Len() == 0 {
		return v
	}
	return v.Normalize()
}
