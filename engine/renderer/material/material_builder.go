package material

import "github.com/MKHenson/trike3d-sub000/engine/renderer/shader"

// MaterialBuilderOption is a function that configures a material instance during construction.
type MaterialBuilderOption func(*material)

// WithName is an option builder that sets the name of the material.
//
// Parameters:
//   - name: the identifier for the material
//
// Returns:
//   - MaterialBuilderOption: a function that applies the name option to a material
func WithName(name string) MaterialBuilderOption {
	return func(m *material) {
		m.name = name
	}
}

// WithShader is an option builder that sets the WGSL template of the material.
//
// Parameters:
//   - id: the template identifier, used as the program label and cache scope
//   - vertex: the vertex stage source with @trike: annotations
//   - fragment: the fragment stage source with @trike: annotations
//
// Returns:
//   - MaterialBuilderOption: a function that applies the shader option to a material
func WithShader(id, vertex, fragment string) MaterialBuilderOption {
	return func(m *material) {
		m.shaderID = id
		m.vertexSource = vertex
		m.fragmentSource = fragment
	}
}

// WithUniforms is an option builder that declares uniforms.
//
// Parameters:
//   - uniforms: the uniforms to declare
//
// Returns:
//   - MaterialBuilderOption: a function that declares the uniforms on a material
func WithUniforms(uniforms ...*Uniform) MaterialBuilderOption {
	return func(m *material) {
		for _, u := range uniforms {
			m.AddUniform(u)
		}
	}
}

// WithAttributes is an option builder that declares vertex attributes.
//
// Parameters:
//   - attributes: the attributes to declare
//
// Returns:
//   - MaterialBuilderOption: a function that declares the attributes on a material
func WithAttributes(attributes ...*Attribute) MaterialBuilderOption {
	return func(m *material) {
		for _, a := range attributes {
			m.AddAttribute(a)
		}
	}
}

// WithDefines is an option builder that sets defines.
//
// Parameters:
//   - defines: the defines to set
//
// Returns:
//   - MaterialBuilderOption: a function that applies the defines to a material
func WithDefines(defines ...shader.Define) MaterialBuilderOption {
	return func(m *material) {
		for _, d := range defines {
			m.defines.Add(d)
		}
	}
}

// WithState is an option builder that sets the fixed-function state.
//
// Parameters:
//   - state: the render state
//
// Returns:
//   - MaterialBuilderOption: a function that applies the state to a material
func WithState(state RenderState) MaterialBuilderOption {
	return func(m *material) {
		m.state = state
	}
}

// WithReceiveShadows is an option builder that marks the program as sampling shadow maps.
func WithReceiveShadows(enabled bool) MaterialBuilderOption {
	return func(m *material) {
		m.receivesShadows = enabled
	}
}
