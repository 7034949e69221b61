// Package shader reflects WGSL source, assembles shader variants from a typed define set, and runs the
// @trike: pre-processor that resolves includes and conditional blocks.
package shader

import "fmt"

// ShaderType identifies the stage a WGSL entry point belongs to.
type ShaderType int

const (
	// ShaderTypeCompute indicates a shader containing a @compute entry point.
	ShaderTypeCompute ShaderType = iota

	// ShaderTypeVertex is the vertex shader type, used for vertex processing in render pipelines.
	ShaderTypeVertex

	// ShaderTypeFragment is the fragment shader type, used for fragment processing in pair with a vertex shader.
	ShaderTypeFragment
)

func (t ShaderType) String() string {
	switch t {
	case ShaderTypeCompute:
		return "compute"
	case ShaderTypeVertex:
		return "vertex"
	case ShaderTypeFragment:
		return "fragment"
	default:
		return fmt.Sprintf("ShaderType(%d)", int(t))
	}
}

// BindingKind classifies a @group/@binding resource.
type BindingKind int

const (
	BindingUniform BindingKind = iota
	BindingStorage
	BindingTexture
	BindingDepthTexture
	BindingStorageTexture
	BindingSampler
	BindingComparisonSampler
)

// IsTexture reports whether the binding is any kind of sampled texture.
func (k BindingKind) IsTexture() bool {
	return k == BindingTexture || k == BindingDepthTexture
}

// IsSampler reports whether the binding is a sampler.
func (k BindingKind) IsSampler() bool {
	return k == BindingSampler || k == BindingComparisonSampler
}

// Binding is a single reflected @group/@binding variable.
type Binding struct {
	Group   int
	Binding int
	Name    string
	Kind    BindingKind

	// AddressSpace is the var<> qualifier, empty for handle types.
	AddressSpace string

	// Type is the declared WGSL type. Base and Param split parameterized types,
	// e.g. "texture_cube" and "f32" for texture_cube<f32>.
	Type  string
	Base  string
	Param string

	// Size is the byte size of buffer bindings, zero when it could not be resolved.
	Size uint64

	// Stride is the element stride of fixed-size array bindings, zero otherwise.
	Stride uint64
}

// Attribute is a single vertex input.
type Attribute struct {
	Name       string
	Location   int
	Type       string
	Components int
}

// Reflection is everything the backends need to know about one shader stage.
type Reflection struct {
	Stage      ShaderType
	EntryPoint string

	// Bindings are sorted by group then binding.
	Bindings []Binding

	// Attributes are the vertex inputs sorted by location. Empty for non-vertex stages.
	Attributes []Attribute
}

// Binding returns the binding declared with the given variable name.
//
// Parameters:
//   - name: the variable name
//
// Returns:
//   - Binding: the reflected binding
//   - bool: false if no binding has that name
func (r *Reflection) Binding(name string) (Binding, bool) {
	for _, b := range r.Bindings {
		if b.Name == name {
			return b, true
		}
	}
	return Binding{}, false
}

// Attribute returns the vertex input with the given field name.
//
// Parameters:
//   - name: the field name
//
// Returns:
//   - Attribute: the reflected attribute
//   - bool: false if the stage has no such input
func (r *Reflection) Attribute(name string) (Attribute, bool) {
	for _, a := range r.Attributes {
		if a.Name == name {
			return a, true
		}
	}
	return Attribute{}, false
}

// SamplerName returns the name of the sampler binding paired with a texture variable.
func SamplerName(texture string) string {
	return texture + "_sampler"
}

// ElementName returns the variable name of one element of a texture array uniform.
func ElementName(name string, index int) string {
	return fmt.Sprintf("%s_%d", name, index)
}
