package geometry

// GeometryBuilderOption is a function that configures a geometry instance during construction.
type GeometryBuilderOption func(*geometry)

// WithName is an option builder that sets the debug name of the geometry.
//
// Parameters:
//   - name: the name
//
// Returns:
//   - GeometryBuilderOption: a function that applies the name option to a geometry
func WithName(name string) GeometryBuilderOption {
	return func(g *geometry) {
		g.name = name
	}
}

// WithAttribute is an option builder that adds a vertex attribute.
//
// Parameters:
//   - name: the attribute name
//   - components: the number of floats per vertex
//   - data: the packed values
//
// Returns:
//   - GeometryBuilderOption: a function that adds the attribute to a geometry
func WithAttribute(name string, components int, data []float32) GeometryBuilderOption {
	return func(g *geometry) {
		g.SetAttribute(name, components, data)
	}
}

// WithIndices is an option builder that sets the index data.
//
// Parameters:
//   - indices: the indices
//
// Returns:
//   - GeometryBuilderOption: a function that applies the indices to a geometry
func WithIndices(indices []uint32) GeometryBuilderOption {
	return func(g *geometry) {
		g.SetIndices(indices)
	}
}
