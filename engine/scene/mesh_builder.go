package scene

// MeshBuilderOption is a functional option for configuring a Mesh during construction.
type MeshBuilderOption func(*Mesh)

// WithTransform applies object options to the mesh's transform node.
//
// Parameters:
//   - options: the object options
//
// Returns:
//   - MeshBuilderOption: functional option applying the object options
func WithTransform(options ...ObjectBuilderOption) MeshBuilderOption {
	return func(m *Mesh) {
		for _, opt := range options {
			opt(m.Object)
		}
	}
}

// WithKind sets the primitive topology of the mesh.
//
// Parameters:
//   - kind: the topology
//
// Returns:
//   - MeshBuilderOption: functional option to set the kind
func WithKind(kind MeshKind) MeshBuilderOption {
	return func(m *Mesh) {
		m.kind = kind
	}
}

// WithSceneCull sets whether the mesh is tested against the camera frustum.
//
// Parameters:
//   - enabled: false to never cull the mesh while visible
//
// Returns:
//   - MeshBuilderOption: functional option to set frustum culling
func WithSceneCull(enabled bool) MeshBuilderOption {
	return func(m *Mesh) {
		m.sceneCull = enabled
	}
}

// WithCastShadows sets whether the mesh is drawn into shadow maps.
//
// Parameters:
//   - enabled: true to cast shadows
//
// Returns:
//   - MeshBuilderOption: functional option to set shadow casting
func WithCastShadows(enabled bool) MeshBuilderOption {
	return func(m *Mesh) {
		m.castShadows = enabled
	}
}

// WithCullFunc installs a custom culling predicate.
//
// Parameters:
//   - fn: the predicate
//
// Returns:
//   - MeshBuilderOption: functional option to set the predicate
func WithCullFunc(fn CullFunc) MeshBuilderOption {
	return func(m *Mesh) {
		m.cullFunc = fn
	}
}
