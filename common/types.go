// package common contains common types that are used throughout this engine. They are not interface-wrapped structs, just plain structs that express
// commonly used data-types.
package common

import "github.com/go-gl/mathgl/mgl32"

// Sphere is a bounding sphere used for frustum culling.
type Sphere struct {
	// Center is the sphere center.
	Center mgl32.Vec3
	// Radius is the sphere radius. A negative radius marks an empty sphere.
	Radius float32
}

// Transform returns the sphere transformed by a world matrix. The radius is scaled by the
// largest axis scale so the result always encloses the transformed volume.
//
// Parameters:
//   - world: the world matrix to apply
//
// Returns:
//   - Sphere: the transformed sphere
func (s Sphere) Transform(world mgl32.Mat4) Sphere {
	center := world.Mul4x1(s.Center.Vec4(1)).Vec3()
	sx := world.Col(0).Vec3().Len()
	sy := world.Col(1).Vec3().Len()
	sz := world.Col(2).Vec3().Len()
	return Sphere{Center: center, Radius: s.Radius * max(sx, sy, sz)}
}

// Viewport is a rectangle in framebuffer pixels.
type Viewport struct {
	X, Y          int
	Width, Height int
}

// Color is a linear RGB color with a separate alpha channel.
type Color struct {
	R, G, B, A float32
}

// Vec4 returns the color as a 4 component vector.
func (c Color) Vec4() mgl32.Vec4 {
	return mgl32.Vec4{c.R, c.G, c.B, c.A}
}
