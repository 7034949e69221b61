package common

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Plane represents a plane in 3D space using the equation: ax + by + cz + d = 0
// where (a, b, c) is the normal and d is the distance from origin.
type Plane struct {
	Normal   mgl32.Vec3
	Distance float32
}

// DistanceTo returns the signed distance from the plane to the point. Positive values lie
// on the side the normal points to.
//
// Parameters:
//   - p: the point to measure
//
// Returns:
//   - float32: the signed distance
func (p Plane) DistanceTo(point mgl32.Vec3) float32 {
	return p.Normal.Dot(point) + p.Distance
}

// Frustum represents the six planes of a view frustum for culling.
// Planes are oriented so that positive half-space is inside the frustum.
type Frustum struct {
	Planes [6]Plane // Left, Right, Bottom, Top, Near, Far
}

// FrustumPlane indices for clarity
const (
	FrustumLeft   = 0
	FrustumRight  = 1
	FrustumBottom = 2
	FrustumTop    = 3
	FrustumNear   = 4
	FrustumFar    = 5
)

// ExtractFrustumFromMatrix extracts frustum planes from a view-projection matrix.
// The matrix should be the combined Projection * View matrix and use a [0, 1] clip depth
// range, which is what Perspective and Orthographic produce.
// Uses the Gribb/Hartmann method for plane extraction.
//
// Reference: https://www8.cs.umu.se/kurser/5DV051/HT12/lab/plane_extraction.pdf
//
// Parameters:
//   - viewProj: the column-major view-projection matrix
//
// Returns:
//   - Frustum: the extracted frustum with normalized planes
func ExtractFrustumFromMatrix(viewProj mgl32.Mat4) Frustum {
	var f Frustum

	row0 := viewProj.Row(0)
	row1 := viewProj.Row(1)
	row2 := viewProj.Row(2)
	row3 := viewProj.Row(3)

	f.Planes[FrustumLeft] = planeFromRow(row3.Add(row0))
	f.Planes[FrustumRight] = planeFromRow(row3.Sub(row0))
	f.Planes[FrustumBottom] = planeFromRow(row3.Add(row1))
	f.Planes[FrustumTop] = planeFromRow(row3.Sub(row1))
	// clip z is in [0, w], so the near plane is row2 alone
	f.Planes[FrustumNear] = planeFromRow(row2)
	f.Planes[FrustumFar] = planeFromRow(row3.Sub(row2))

	for i := range f.Planes {
		f.normalizePlane(i)
	}

	return f
}

// IntersectsSphere reports whether a sphere is at least partially inside the frustum.
//
// Parameters:
//   - s: the sphere to test
//
// Returns:
//   - bool: false if the sphere is entirely outside any plane
func (f *Frustum) IntersectsSphere(s Sphere) bool {
	for i := range f.Planes {
		if f.Planes[i].DistanceTo(s.Center) < -s.Radius {
			return false
		}
	}
	return true
}

// ContainsPoint reports whether a point is inside all six planes.
func (f *Frustum) ContainsPoint(p mgl32.Vec3) bool {
	for i := range f.Planes {
		if f.Planes[i].DistanceTo(p) < 0 {
			return false
		}
	}
	return true
}

func planeFromRow(r mgl32.Vec4) Plane {
	return Plane{Normal: mgl32.Vec3{r[0], r[1], r[2]}, Distance: r[3]}
}

// normalizePlane normalizes a frustum plane so that the normal has unit length.
func (f *Frustum) normalizePlane(index int) {
	p := &f.Planes[index]
	length := float32(math.Sqrt(float64(p.Normal.Dot(p.Normal))))

	if length > 0 {
		invLen := 1.0 / length
		p.Normal = p.Normal.Mul(invLen)
		p.Distance *= invLen
	}
}

// FarPlaneCorners reconstructs the four view-space corners of the far plane from an inverse
// projection matrix, in the order bottom-left, bottom-right, top-right, top-left. Screen-space
// lights interpolate these rays to rebuild view-space positions from stored depth.
//
// Parameters:
//   - inverseProjection: the inverse of the camera projection matrix
//
// Returns:
//   - [4]mgl32.Vec3: the far plane corners in view space
func FarPlaneCorners(inverseProjection mgl32.Mat4) [4]mgl32.Vec3 {
	ndc := [4]mgl32.Vec4{
		{-1, -1, 1, 1},
		{1, -1, 1, 1},
		{1, 1, 1, 1},
		{-1, 1, 1, 1},
	}
	var out [4]mgl32.Vec3
	for i, c := range ndc {
		v := inverseProjection.Mul4x1(c)
		if v[3] != 0 {
			v = v.Mul(1 / v[3])
		}
		out[i] = v.Vec3()
	}
	return out
}
