package scene

import (
	"fmt"

	"github.com/MKHenson/trike3d-sub000/common"
	"github.com/MKHenson/trike3d-sub000/engine/camera"
	"github.com/MKHenson/trike3d-sub000/engine/geometry"
	"github.com/MKHenson/trike3d-sub000/engine/renderer/material"
	"github.com/MKHenson/trike3d-sub000/engine/renderer/texture"
	"github.com/go-gl/mathgl/mgl32"
)

// Mirror is a planar reflector: a plane facing +Y in its local space whose albedo blends in the
// scene as seen by a camera reflected across the plane.
type Mirror struct {
	*Mesh

	target        *texture.RenderTarget
	camera        camera.Camera
	textureMatrix mgl32.Mat4
	active        bool
}

// NewMirror creates a mirror plane and its reflection target.
//
// Parameters:
//   - width: the extent along local X
//   - depth: the extent along local Z
//   - resolution: the width and height of the reflection target in pixels
//   - diffuse: the surface color
//   - reflectivity: the reflection weight in [0, 1]
//
// Returns:
//   - *Mirror: the mirror
func NewMirror(width, depth float32, resolution int, diffuse common.Color, reflectivity float32) *Mirror {
	if resolution <= 0 {
		panic(fmt.Sprintf("scene: invalid mirror resolution %d", resolution))
	}
	mat := material.NewMirrorMaterial("mirror", diffuse, reflectivity)
	m := &Mirror{
		target:        texture.NewRenderTarget(resolution, resolution, texture.WithTargetLabel("mirror")),
		camera:        camera.NewCamera(camera.WithName("mirror")),
		textureMatrix: mgl32.Ident4(),
		active:        true,
	}
	m.Mesh = NewMesh(geometry.NewPlane(width, depth), mat, WithCastShadows(false))
	m.Mesh.owner = m
	m.name = "mirror"
	if pm, ok := mat.Pass(material.PassGBuffer); ok {
		pm.SetUniform(material.UniformMirrorMap, m.target.Texture(0))
	}
	return m
}

// Active reports whether the reflection is rendered each frame.
func (m *Mirror) Active() bool {
	return m.active && m.visible
}

func (m *Mirror) SetActive(active bool) {
	m.active = active
}

// Target returns the reflection render target.
func (m *Mirror) Target() *texture.RenderTarget {
	return m.target
}

// Camera returns the reflection camera computed by the last UpdateReflection.
func (m *Mirror) Camera() camera.Camera {
	return m.camera
}

// TextureMatrix maps world positions into the reflection target.
func (m *Mirror) TextureMatrix() mgl32.Mat4 {
	return m.textureMatrix
}

// Plane returns the world-space unit normal and a point of the mirror plane.
func (m *Mirror) Plane() (normal, point mgl32.Vec3) {
	normal = m.world.Mat3().Inv().Transpose().Mul3x1(mgl32.Vec3{0, 1, 0}).Normalize()
	return normal, m.WorldPosition()
}

// UpdateReflection mirrors primary across the plane into the reflection camera and refreshes the
// texture matrix of the mirror material. Combined cameras are unwrapped to their active sub-camera.
// It panics if the resulting camera is not a perspective camera.
//
// Parameters:
//   - primary: the camera the frame is rendered with
func (m *Mirror) UpdateReflection(primary camera.Camera) {
	cam := primary.Active()
	if cam.Kind() != camera.KindPerspective {
		panic(fmt.Sprintf("scene: mirror %q cannot reflect a %s camera", m.name, cam.Kind()))
	}

	normal, point := m.Plane()
	reflection := common.ReflectionMatrix(normal, point)

	m.camera.CopyFrom(cam)
	m.camera.SetAspect(float32(m.target.Width()) / float32(m.target.Height()))
	m.camera.SetWorld(reflection.Mul4(cam.World()))

	m.textureMatrix = common.TextureMatrix(m.camera.Projection(), m.camera.View())
	if pm, ok := m.material.Pass(material.PassGBuffer); ok {
		pm.SetUniform(material.UniformTextureMatrix, m.textureMatrix)
	}
}

// Dispose releases the reflection target.
func (m *Mirror) Dispose() {
	m.target.Dispose()
}
