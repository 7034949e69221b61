package material

import (
	"fmt"

	"github.com/MKHenson/trike3d-sub000/common"
	"github.com/MKHenson/trike3d-sub000/engine/renderer/backend"
	"github.com/MKHenson/trike3d-sub000/engine/renderer/shader"
	"github.com/MKHenson/trike3d-sub000/engine/renderer/texture"
	"github.com/go-gl/mathgl/mgl32"
)

// UniformType is the element type of a uniform.
type UniformType int

const (
	UniformFloat UniformType = iota
	UniformInt
	UniformVec2
	UniformVec3
	UniformVec4
	UniformMat3
	UniformMat4
	UniformColor
	UniformTexture
)

func (t UniformType) String() string {
	switch t {
	case UniformFloat:
		return "float"
	case UniformInt:
		return "int"
	case UniformVec2:
		return "vec2"
	case UniformVec3:
		return "vec3"
	case UniformVec4:
		return "vec4"
	case UniformMat3:
		return "mat3"
	case UniformMat4:
		return "mat4"
	case UniformColor:
		return "color"
	case UniformTexture:
		return "texture"
	default:
		return fmt.Sprintf("UniformType(%d)", int(t))
	}
}

// Uniform is a named, typed shader input and the locations it resolved to in one program.
// Array uniforms have a fixed length that only Resize changes.
type Uniform struct {
	name           string
	typ            UniformType
	length         int
	value          any
	locations      []backend.Location
	requiresUpdate bool
}

func newUniform(name string, typ UniformType, length int, value any) *Uniform {
	return &Uniform{name: name, typ: typ, length: length, value: value, requiresUpdate: true}
}

// NewFloat creates a float32 uniform.
func NewFloat(name string, v float32) *Uniform {
	return newUniform(name, UniformFloat, 0, v)
}

// NewInt creates an int32 uniform.
func NewInt(name string, v int32) *Uniform {
	return newUniform(name, UniformInt, 0, v)
}

// NewVec2 creates a two component vector uniform.
func NewVec2(name string, v mgl32.Vec2) *Uniform {
	return newUniform(name, UniformVec2, 0, v)
}

// NewVec3 creates a three component vector uniform.
func NewVec3(name string, v mgl32.Vec3) *Uniform {
	return newUniform(name, UniformVec3, 0, v)
}

// NewVec4 creates a four component vector uniform.
func NewVec4(name string, v mgl32.Vec4) *Uniform {
	return newUniform(name, UniformVec4, 0, v)
}

// NewMat3 creates a 3x3 matrix uniform.
func NewMat3(name string, v mgl32.Mat3) *Uniform {
	return newUniform(name, UniformMat3, 0, v)
}

// NewMat4 creates a 4x4 matrix uniform.
func NewMat4(name string, v mgl32.Mat4) *Uniform {
	return newUniform(name, UniformMat4, 0, v)
}

// NewColor creates an RGBA color uniform.
func NewColor(name string, c common.Color) *Uniform {
	return newUniform(name, UniformColor, 0, c)
}

// NewTexture creates a sampled texture uniform. The texture may be nil until one is assigned.
// The program must declare a sampler named after the texture with a "_sampler" suffix.
func NewTexture(name string, t texture.Texture) *Uniform {
	var v any
	if t != nil {
		v = t
	}
	return newUniform(name, UniformTexture, 0, v)
}

// NewFloatArray creates a fixed-size float32 array uniform.
func NewFloatArray(name string, v []float32) *Uniform {
	return newUniform(name, UniformFloat, len(v), cloneValue(v))
}

// NewVec3Array creates a fixed-size vec3 array uniform.
func NewVec3Array(name string, v []mgl32.Vec3) *Uniform {
	return newUniform(name, UniformVec3, len(v), cloneValue(v))
}

// NewVec4Array creates a fixed-size vec4 array uniform.
func NewVec4Array(name string, v []mgl32.Vec4) *Uniform {
	return newUniform(name, UniformVec4, len(v), cloneValue(v))
}

// NewMat4Array creates a fixed-size 4x4 matrix array uniform.
func NewMat4Array(name string, v []mgl32.Mat4) *Uniform {
	return newUniform(name, UniformMat4, len(v), cloneValue(v))
}

// NewTextureArray creates a fixed-size texture array uniform. Element i binds to the program
// variable "name_i" and its sampler "name_i_sampler".
func NewTextureArray(name string, v []texture.Texture) *Uniform {
	return newUniform(name, UniformTexture, len(v), cloneValue(v))
}

// Name returns the uniform name.
func (u *Uniform) Name() string {
	return u.name
}

// Type returns the element type.
func (u *Uniform) Type() UniformType {
	return u.typ
}

// IsArray reports whether the uniform is a fixed-size array.
func (u *Uniform) IsArray() bool {
	return u.length > 0
}

// Len returns the array length, zero for non-array uniforms.
func (u *Uniform) Len() int {
	return u.length
}

// Value returns the current value. Array values must not be modified by the caller.
func (u *Uniform) Value() any {
	return u.value
}

// Texture returns the texture of a non-array texture uniform, or nil.
func (u *Uniform) Texture() texture.Texture {
	t, _ := u.value.(texture.Texture)
	return t
}

// Textures returns the elements of a texture array uniform.
func (u *Uniform) Textures() []texture.Texture {
	t, _ := u.value.([]texture.Texture)
	return t
}

// RequiresUpdate reports whether the value changed since it was last uploaded.
func (u *Uniform) RequiresUpdate() bool {
	return u.requiresUpdate
}

// MarkUploaded clears RequiresUpdate.
func (u *Uniform) MarkUploaded() {
	u.requiresUpdate = false
}

// Locations returns the resolved program locations: one per element for texture arrays, otherwise one.
func (u *Uniform) Locations() []backend.Location {
	return u.locations
}

// LocationNames returns the program variable names the uniform binds to.
//
// Returns:
//   - []string: "name" for plain uniforms and numeric arrays, "name_i" per element for texture arrays
func (u *Uniform) LocationNames() []string {
	if u.typ == UniformTexture && u.length > 0 {
		names := make([]string, u.length)
		for i := range names {
			names[i] = shader.ElementName(u.name, i)
		}
		return names
	}
	return []string{u.name}
}

// accepts reports whether v has the Go type this uniform stores.
func (u *Uniform) accepts(v any) bool {
	if u.length > 0 {
		switch u.typ {
		case UniformFloat:
			_, ok := v.([]float32)
			return ok
		case UniformInt:
			_, ok := v.([]int32)
			return ok
		case UniformVec2:
			_, ok := v.([]mgl32.Vec2)
			return ok
		case UniformVec3:
			_, ok := v.([]mgl32.Vec3)
			return ok
		case UniformVec4:
			_, ok := v.([]mgl32.Vec4)
			return ok
		case UniformMat3:
			_, ok := v.([]mgl32.Mat3)
			return ok
		case UniformMat4:
			_, ok := v.([]mgl32.Mat4)
			return ok
		case UniformColor:
			_, ok := v.([]common.Color)
			return ok
		case UniformTexture:
			_, ok := v.([]texture.Texture)
			return ok
		}
		return false
	}
	switch u.typ {
	case UniformFloat:
		_, ok := v.(float32)
		return ok
	case UniformInt:
		_, ok := v.(int32)
		return ok
	case UniformVec2:
		_, ok := v.(mgl32.Vec2)
		return ok
	case UniformVec3:
		_, ok := v.(mgl32.Vec3)
		return ok
	case UniformVec4:
		_, ok := v.(mgl32.Vec4)
		return ok
	case UniformMat3:
		_, ok := v.(mgl32.Mat3)
		return ok
	case UniformMat4:
		_, ok := v.(mgl32.Mat4)
		return ok
	case UniformColor:
		_, ok := v.(common.Color)
		return ok
	case UniformTexture:
		_, ok := v.(texture.Texture)
		return ok || v == nil
	}
	return false
}

// Set assigns a new value. Vectors, matrices and colors are plain values and array contents are
// copied into the existing storage, so array uniforms keep their length. Assigning a value equal
// to the current one does nothing and leaves RequiresUpdate untouched.
//
// Parameters:
//   - v: the new value, of the Go type the uniform was created with
//
// Returns:
//   - bool: true if the value changed
func (u *Uniform) Set(v any) bool {
	if !u.accepts(v) {
		panic(fmt.Sprintf("material: uniform %s of type %s cannot hold %T", u.name, u.typ, v))
	}
	if equalValue(u.value, v) {
		return false
	}
	if u.length > 0 {
		if !copyInto(u.value, v) {
			panic(fmt.Sprintf("material: uniform %s is a fixed array of %d elements", u.name, u.length))
		}
	} else {
		u.value = v
	}
	u.requiresUpdate = true
	return true
}

// Resize changes the length of an array uniform, keeping leading elements and zero-filling new ones.
//
// Parameters:
//   - n: the new length, at least one
func (u *Uniform) Resize(n int) {
	if u.length == 0 || n < 1 {
		panic(fmt.Sprintf("material: cannot resize uniform %s to %d", u.name, n))
	}
	if n == u.length {
		return
	}
	switch v := u.value.(type) {
	case []float32:
		u.value = resized(v, n)
	case []int32:
		u.value = resized(v, n)
	case []mgl32.Vec2:
		u.value = resized(v, n)
	case []mgl32.Vec3:
		u.value = resized(v, n)
	case []mgl32.Vec4:
		u.value = resized(v, n)
	case []mgl32.Mat3:
		u.value = resized(v, n)
	case []mgl32.Mat4:
		u.value = resized(v, n)
	case []common.Color:
		u.value = resized(v, n)
	case []texture.Texture:
		u.value = resized(v, n)
	}
	u.length = n
	u.locations = nil
	u.requiresUpdate = true
}

func resized[T any](v []T, n int) []T {
	out := make([]T, n)
	copy(out, v)
	return out
}

// Clone returns an unresolved copy of the uniform with its own storage.
func (u *Uniform) Clone() *Uniform {
	return &Uniform{
		name:           u.name,
		typ:            u.typ,
		length:         u.length,
		value:          cloneValue(u.value),
		requiresUpdate: true,
	}
}
