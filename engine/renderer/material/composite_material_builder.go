package material

import "github.com/MKHenson/trike3d-sub000/engine/renderer/shader"

// CompositeMaterialBuilderOption is a function that configures a composite material during construction.
type CompositeMaterialBuilderOption func(*compositeMaterial)

// WithCompositeName is an option builder that sets the name of the composite material.
//
// Parameters:
//   - name: the identifier for the material
//
// Returns:
//   - CompositeMaterialBuilderOption: a function that applies the name option to a composite
func WithCompositeName(name string) CompositeMaterialBuilderOption {
	return func(c *compositeMaterial) {
		c.name = name
	}
}

// WithTransparent is an option builder that marks the composite material as transparent.
func WithTransparent(transparent bool) CompositeMaterialBuilderOption {
	return func(c *compositeMaterial) {
		c.transparent = transparent
	}
}

// WithPasses is an option builder that installs sub-materials.
//
// Parameters:
//   - passes: the sub-materials, one per pass type
//
// Returns:
//   - CompositeMaterialBuilderOption: a function that installs the sub-materials on a composite
func WithPasses(passes ...PassMaterial) CompositeMaterialBuilderOption {
	return func(c *compositeMaterial) {
		for _, pm := range passes {
			c.adopt(pm)
			c.passes[pm.Pass()] = pm
		}
	}
}

// WithPrePasses is an option builder that appends pre-pass sub-materials.
func WithPrePasses(passes ...PassMaterial) CompositeMaterialBuilderOption {
	return func(c *compositeMaterial) {
		for _, pm := range passes {
			c.adopt(pm)
			c.prePasses = append(c.prePasses, pm)
		}
	}
}

// WithSharedUniforms is an option builder that declares uniforms on the composite and every
// sub-material, including those installed later.
//
// Parameters:
//   - uniforms: the uniforms to share
//
// Returns:
//   - CompositeMaterialBuilderOption: a function that shares the uniforms on a composite
func WithSharedUniforms(uniforms ...*Uniform) CompositeMaterialBuilderOption {
	return func(c *compositeMaterial) {
		for _, u := range uniforms {
			c.AddUniform(u, true)
		}
	}
}

// WithSharedAttributes is an option builder that declares attributes on the composite and every
// sub-material, including those installed later.
func WithSharedAttributes(attributes ...*Attribute) CompositeMaterialBuilderOption {
	return func(c *compositeMaterial) {
		for _, a := range attributes {
			c.AddAttribute(a, true)
		}
	}
}

// WithSharedDefines is an option builder that sets defines on the composite and every sub-material,
// including those installed later.
func WithSharedDefines(defines ...shader.Define) CompositeMaterialBuilderOption {
	return func(c *compositeMaterial) {
		for _, d := range defines {
			c.AddDefine(d, true)
		}
	}
}
