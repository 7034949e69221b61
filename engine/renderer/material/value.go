package material

import (
	"slices"

	"github.com/MKHenson/trike3d-sub000/common"
	"github.com/MKHenson/trike3d-sub000/engine/renderer/texture"
	"github.com/go-gl/mathgl/mgl32"
)

// equalValue compares two uniform values. Slices compare element-wise, everything else with ==.
func equalValue(a, b any) bool {
	switch av := a.(type) {
	case []float32:
		bv, ok := b.([]float32)
		return ok && slices.Equal(av, bv)
	case []int32:
		bv, ok := b.([]int32)
		return ok && slices.Equal(av, bv)
	case []mgl32.Vec2:
		bv, ok := b.([]mgl32.Vec2)
		return ok && slices.Equal(av, bv)
	case []mgl32.Vec3:
		bv, ok := b.([]mgl32.Vec3)
		return ok && slices.Equal(av, bv)
	case []mgl32.Vec4:
		bv, ok := b.([]mgl32.Vec4)
		return ok && slices.Equal(av, bv)
	case []mgl32.Mat3:
		bv, ok := b.([]mgl32.Mat3)
		return ok && slices.Equal(av, bv)
	case []mgl32.Mat4:
		bv, ok := b.([]mgl32.Mat4)
		return ok && slices.Equal(av, bv)
	case []common.Color:
		bv, ok := b.([]common.Color)
		return ok && slices.Equal(av, bv)
	case []texture.Texture:
		bv, ok := b.([]texture.Texture)
		return ok && slices.Equal(av, bv)
	default:
		return a == b
	}
}

// cloneValue copies slice values so the caller's slice can be mutated freely.
func cloneValue(v any) any {
	switch vv := v.(type) {
	case []float32:
		return slices.Clone(vv)
	case []int32:
		return slices.Clone(vv)
	case []mgl32.Vec2:
		return slices.Clone(vv)
	case []mgl32.Vec3:
		return slices.Clone(vv)
	case []mgl32.Vec4:
		return slices.Clone(vv)
	case []mgl32.Mat3:
		return slices.Clone(vv)
	case []mgl32.Mat4:
		return slices.Clone(vv)
	case []common.Color:
		return slices.Clone(vv)
	case []texture.Texture:
		return slices.Clone(vv)
	default:
		return v
	}
}

// copyInto copies src into dst when both are slices of the same type and length.
func copyInto(dst, src any) bool {
	switch d := dst.(type) {
	case []float32:
		return copySlice(d, src)
	case []int32:
		return copySlice(d, src)
	case []mgl32.Vec2:
		return copySlice(d, src)
	case []mgl32.Vec3:
		return copySlice(d, src)
	case []mgl32.Vec4:
		return copySlice(d, src)
	case []mgl32.Mat3:
		return copySlice(d, src)
	case []mgl32.Mat4:
		return copySlice(d, src)
	case []common.Color:
		return copySlice(d, src)
	case []texture.Texture:
		return copySlice(d, src)
	default:
		return false
	}
}

func copySlice[T any](dst []T, src any) bool {
	s, ok := src.([]T)
	if !ok || len(s) != len(dst) {
		return false
	}
	copy(dst, s)
	return true
}
