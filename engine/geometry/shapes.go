package geometry

import (
	"math"
)

// NewScreenQuad creates a quad covering normalized device coordinates with uvs whose origin is the
// top-left corner, for full-screen passes.
//
// Returns:
//   - Geometry: the quad
func NewScreenQuad() Geometry {
	return NewGeometry(
		WithName("screen-quad"),
		WithAttribute(AttributePosition, 3, []float32{
			-1, -1, 0,
			1, -1, 0,
			1, 1, 0,
			-1, 1, 0,
		}),
		WithAttribute(AttributeUV, 2, []float32{
			0, 1,
			1, 1,
			1, 0,
			0, 0,
		}),
		WithIndices([]uint32{0, 1, 2, 0, 2, 3}),
	)
}

// NewPlane creates a plane in the XZ plane facing +Y, centered at the origin.
//
// Parameters:
//   - width: the extent along X
//   - depth: the extent along Z
//
// Returns:
//   - Geometry: the plane
func NewPlane(width, depth float32) Geometry {
	w, d := width/2, depth/2
	return NewGeometry(
		WithName("plane"),
		WithAttribute(AttributePosition, 3, []float32{
			-w, 0, d,
			w, 0, d,
			w, 0, -d,
			-w, 0, -d,
		}),
		WithAttribute(AttributeNormal, 3, []float32{
			0, 1, 0,
			0, 1, 0,
			0, 1, 0,
			0, 1, 0,
		}),
		WithAttribute(AttributeUV, 2, []float32{
			0, 1,
			1, 1,
			1, 0,
			0, 0,
		}),
		WithIndices([]uint32{0, 1, 2, 0, 2, 3}),
	)
}

// boxFaces lists, per face, the outward normal and the two in-plane axes (u, v) with u x v = normal.
var boxFaces = [6][3][3]float32{
	{{1, 0, 0}, {0, 0, -1}, {0, 1, 0}},
	{{-1, 0, 0}, {0, 0, 1}, {0, 1, 0}},
	{{0, 1, 0}, {1, 0, 0}, {0, 0, -1}},
	{{0, -1, 0}, {1, 0, 0}, {0, 0, 1}},
	{{0, 0, 1}, {1, 0, 0}, {0, 1, 0}},
	{{0, 0, -1}, {-1, 0, 0}, {0, 1, 0}},
}

// NewBox creates an axis aligned box centered at the origin with per-face normals.
//
// Parameters:
//   - width: the extent along X
//   - height: the extent along Y
//   - depth: the extent along Z
//
// Returns:
//   - Geometry: the box
func NewBox(width, height, depth float32) Geometry {
	half := [3]float32{width / 2, height / 2, depth / 2}
	corners := [4][2]float32{{-1, -1}, {1, -1}, {1, 1}, {-1, 1}}
	uvs := [4][2]float32{{0, 1}, {1, 1}, {1, 0}, {0, 0}}

	var positions, normals, texcoords []float32
	var indices []uint32
	for f, face := range boxFaces {
		n, u, v := face[0], face[1], face[2]
		for c, corner := range corners {
			for k := range 3 {
				positions = append(positions, (n[k]+u[k]*corner[0]+v[k]*corner[1])*half[k])
			}
			normals = append(normals, n[0], n[1], n[2])
			texcoords = append(texcoords, uvs[c][0], uvs[c][1])
		}
		base := uint32(f * 4)
		indices = append(indices, base, base+1, base+2, base, base+2, base+3)
	}

	return NewGeometry(
		WithName("box"),
		WithAttribute(AttributePosition, 3, positions),
		WithAttribute(AttributeNormal, 3, normals),
		WithAttribute(AttributeUV, 2, texcoords),
		WithIndices(indices),
	)
}

// NewSphere creates a UV sphere centered at the origin.
//
// Parameters:
//   - radius: the sphere radius
//   - segments: the number of subdivisions around the Y axis, at least 3
//   - rings: the number of subdivisions from pole to pole, at least 2
//
// Returns:
//   - Geometry: the sphere
func NewSphere(radius float32, segments, rings int) Geometry {
	segments, rings = max(segments, 3), max(rings, 2)

	var positions, normals, texcoords []float32
	for r := 0; r <= rings; r++ {
		phi := math.Pi * float64(r) / float64(rings)
		for s := 0; s <= segments; s++ {
			theta := 2 * math.Pi * float64(s) / float64(segments)
			x := float32(math.Sin(phi) * math.Sin(theta))
			y := float32(math.Cos(phi))
			z := float32(math.Sin(phi) * math.Cos(theta))
			positions = append(positions, x*radius, y*radius, z*radius)
			normals = append(normals, x, y, z)
			texcoords = append(texcoords, float32(s)/float32(segments), float32(r)/float32(rings))
		}
	}

	var indices []uint32
	stride := uint32(segments + 1)
	for r := range uint32(rings) {
		for s := range uint32(segments) {
			a := r*stride + s
			b := a + stride
			indices = append(indices, a, b, a+1, a+1, b, b+1)
		}
	}

	return NewGeometry(
		WithName("sphere"),
		WithAttribute(AttributePosition, 3, positions),
		WithAttribute(AttributeNormal, 3, normals),
		WithAttribute(AttributeUV, 2, texcoords),
		WithIndices(indices),
	)
}
