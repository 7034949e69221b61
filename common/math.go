package common

import (
	"math"
	"unsafe"

	"github.com/go-gl/mathgl/mgl32"
)

// shadowBias remaps clip space [-1, 1] into texture space [0, 1]. Stored column-major;
// the row-major form is 0.5,0,0,0.5 / 0,0.5,0,0.5 / 0,0,0.5,0.5 / 0,0,0,1.
var shadowBias = mgl32.Mat4{
	0.5, 0, 0, 0,
	0, 0.5, 0, 0,
	0, 0, 0.5, 0,
	0.5, 0.5, 0.5, 1,
}

// ShadowBiasMatrix returns the standard bias matrix used to build shadow and projective
// texture matrices.
//
// Returns:
//   - mgl32.Mat4: the bias matrix
func ShadowBiasMatrix() mgl32.Mat4 {
	return shadowBias
}

// TextureMatrix composes bias * projection * view. Shadow maps and mirrors use it to map a
// world-space position into the texture space of their render target.
//
// Parameters:
//   - projection: the projecting camera's projection matrix
//   - view: the projecting camera's inverse-world (view) matrix
//
// Returns:
//   - mgl32.Mat4: the biased texture matrix
func TextureMatrix(projection, view mgl32.Mat4) mgl32.Mat4 {
	return shadowBias.Mul4(projection).Mul4(view)
}

// SliceToBytes converts any slice to a byte slice for GPU buffer uploads.
// Uses unsafe pointer operations to create a view into the original data.
// WARNING: The returned slice shares memory with the input - do not modify.
//
// Parameters:
//   - data: source slice of any type
//
// Returns:
//   - []byte: byte slice view of the input data, or nil if input is empty
func SliceToBytes[T any](data []T) []byte {
	if len(data) == 0 {
		return nil
	}
	var zero T
	size := unsafe.Sizeof(zero)
	totalBytes := int(size) * len(data)
	return unsafe.Slice((*byte)(unsafe.Pointer(&data[0])), totalBytes)
}

// Perspective creates a right-handed perspective projection matrix for a clip depth range
// of [0, 1].
//
// Parameters:
//   - fovY: vertical field of view in radians
//   - aspect: viewport aspect ratio (width/height)
//   - near: near clipping plane distance (must be > 0)
//   - far: far clipping plane distance (must be > near)
//
// Returns:
//   - mgl32.Mat4: the projection matrix
func Perspective(fovY, aspect, near, far float32) mgl32.Mat4 {
	f := 1.0 / float32(math.Tan(float64(fovY)/2.0))

	var out mgl32.Mat4
	out[0] = f / aspect
	out[5] = f
	out[10] = far / (near - far)
	out[11] = -1.0
	out[14] = (near * far) / (near - far)
	return out
}

// Orthographic creates a right-handed orthographic projection matrix for a clip depth range
// of [0, 1].
//
// Parameters:
//   - left, right, bottom, top: the view volume extents
//   - near, far: the clipping plane distances
//
// Returns:
//   - mgl32.Mat4: the projection matrix
func Orthographic(left, right, bottom, top, near, far float32) mgl32.Mat4 {
	lr := 1 / (left - right)
	bt := 1 / (bottom - top)
	nf := 1 / (near - far)

	out := mgl32.Ident4()
	out[0] = -2 * lr
	out[5] = -2 * bt
	out[10] = nf
	out[12] = (left + right) * lr
	out[13] = (top + bottom) * bt
	out[14] = near * nf
	return out
}

// ProjectDepth transforms a world-space point by a view-projection matrix and returns its
// normalized device depth. Points on or behind the eye plane return -Inf so they sort as
// nearest.
//
// Parameters:
//   - viewProj: the combined projection * view matrix
//   - p: the world-space point
//
// Returns:
//   - float32: the NDC depth of the point
func ProjectDepth(viewProj mgl32.Mat4, p mgl32.Vec3) float32 {
	clip := viewProj.Mul4x1(p.Vec4(1))
	if clip[3] <= 1e-6 {
		return float32(math.Inf(-1))
	}
	return clip[2] / clip[3]
}

// ReflectionMatrix builds the matrix that mirrors points across the plane through point with
// the given unit normal.
//
// Parameters:
//   - normal: the unit plane normal
//   - point: any point on the plane
//
// Returns:
//   - mgl32.Mat4: the reflection matrix
func ReflectionMatrix(normal, point mgl32.Vec3) mgl32.Mat4 {
	d := -normal.Dot(point)
	nx, ny, nz := normal[0], normal[1], normal[2]
	return mgl32.Mat4{
		1 - 2*nx*nx, -2 * ny * nx, -2 * nz * nx, 0,
		-2 * nx * ny, 1 - 2*ny*ny, -2 * nz * ny, 0,
		-2 * nx * nz, -2 * ny * nz, 1 - 2*nz*nz, 0,
		-2 * nx * d, -2 * ny * d, -2 * nz * d, 1,
	}
}

// NormalMatrix returns the inverse-transpose of the upper 3x3 of a model-view matrix.
//
// Parameters:
//   - modelView: the model-view matrix
//
// Returns:
//   - mgl32.Mat3: the normal matrix
func NormalMatrix(modelView mgl32.Mat4) mgl32.Mat3 {
	return modelView.Mat3().Inv().Transpose()
}

// IsPowerOfTwo reports whether v is a positive power of two.
func IsPowerOfTwo(v int) bool {
	return v > 0 && v&(v-1) == 0
}

// NextPowerOfTwo returns the smallest power of two greater than or equal to v.
func NextPowerOfTwo(v int) int {
	if v <= 1 {
		return 1
	}
	p := 1
	for p < v {
		p <<= 1
	}
	return p
}
