package material

import (
	"slices"

	"github.com/MKHenson/trike3d-sub000/engine/renderer/backend"
	"github.com/MKHenson/trike3d-sub000/engine/renderer/shader"
)

// CompositeMaterial is one logical material made of a PassMaterial per pass type plus optional
// pre-pass materials. Shared declarations are broadcast to every sub-material.
type CompositeMaterial interface {
	// Name retrieves the material identifier.
	//
	// Returns:
	//   - string: the name of the material
	Name() string

	// Transparent reports whether meshes using the material are drawn in the transparency phase.
	//
	// Returns:
	//   - bool: true for transparent materials
	Transparent() bool

	// SetTransparent moves meshes using the material between the solid and transparent buckets.
	//
	// Parameters:
	//   - transparent: whether the material is transparent
	SetTransparent(transparent bool)

	// Pass retrieves the sub-material drawn in a pass.
	//
	// Parameters:
	//   - pass: the pass type
	//
	// Returns:
	//   - PassMaterial: the sub-material
	//   - bool: false if the material does not draw in that pass
	Pass(pass PassType) (PassMaterial, bool)

	// SetPass installs a sub-material for its pass type. A previous one is disposed. The shared
	// declarations and, for shadow receivers, the shadow configuration of the composite are applied
	// to pm.
	//
	// Parameters:
	//   - pm: the sub-material
	SetPass(pm PassMaterial)

	// RemovePass disposes and removes the sub-material of a pass type.
	//
	// Parameters:
	//   - pass: the pass type
	RemovePass(pass PassType)

	// Passes retrieves the sub-materials ordered by pass type.
	//
	// Returns:
	//   - []PassMaterial: the sub-materials
	Passes() []PassMaterial

	// AddPrePass appends an auxiliary sub-material drawn before the g-buffer passes. It receives the
	// shared declarations the same way SetPass does.
	//
	// Parameters:
	//   - pm: the sub-material
	AddPrePass(pm PassMaterial)

	// PrePasses retrieves the auxiliary sub-materials in the order they are drawn.
	//
	// Returns:
	//   - []PassMaterial: the sub-materials
	PrePasses() []PassMaterial

	// Uniform retrieves a uniform declared on the composite.
	//
	// Parameters:
	//   - name: the uniform name
	//
	// Returns:
	//   - *Uniform: the uniform
	//   - bool: false if the composite does not declare it
	Uniform(name string) (*Uniform, bool)

	// Uniforms retrieves the uniforms declared on the composite.
	//
	// Returns:
	//   - []*Uniform: the uniforms
	Uniforms() []*Uniform

	// AddUniform declares a uniform on the composite and, when shared, a clone on every sub-material.
	//
	// Parameters:
	//   - u: the uniform
	//   - shared: whether to broadcast the declaration
	AddUniform(u *Uniform, shared bool)

	// RemoveUniform removes a uniform from the composite and, when shared, from every sub-material.
	//
	// Parameters:
	//   - name: the uniform name
	//   - shared: whether to broadcast the removal
	RemoveUniform(name string, shared bool)

	// SetUniform assigns a value on the composite and, when shared, on every sub-material declaring
	// the uniform. Assigning the current value is a no-op.
	//
	// Parameters:
	//   - name: the uniform name
	//   - value: the new value
	//   - shared: whether to broadcast the assignment
	//
	// Returns:
	//   - bool: true if any value changed
	SetUniform(name string, value any, shared bool) bool

	// Attributes retrieves the attributes declared on the composite.
	//
	// Returns:
	//   - []*Attribute: the attributes
	Attributes() []*Attribute

	// AddAttribute declares an attribute on the composite and, when shared, a clone on every sub-material.
	//
	// Parameters:
	//   - a: the attribute
	//   - shared: whether to broadcast the declaration
	AddAttribute(a *Attribute, shared bool)

	// RemoveAttribute removes an attribute from the composite and, when shared, from every sub-material.
	//
	// Parameters:
	//   - name: the attribute name
	//   - shared: whether to broadcast the removal
	RemoveAttribute(name string, shared bool)

	// Defines retrieves a copy of the defines declared on the composite.
	//
	// Returns:
	//   - shader.DefineSet: the defines
	Defines() shader.DefineSet

	// AddDefine sets a define on the composite and, when shared, on every sub-material.
	//
	// Parameters:
	//   - d: the define
	//   - shared: whether to broadcast the define
	AddDefine(d shader.Define, shared bool)

	// RemoveDefine clears a define on the composite and, when shared, on every sub-material.
	//
	// Parameters:
	//   - name: the define name
	//   - shared: whether to broadcast the removal
	RemoveDefine(name string, shared bool)

	// MaxNumShadows retrieves the number of shadow maps the shadow receiving sub-materials sample.
	//
	// Returns:
	//   - int: the shadow count
	MaxNumShadows() int

	// SetMaxNumShadows resizes the shadow uniform arrays of every shadow receiving sub-material.
	//
	// Parameters:
	//   - n: the number of shadow maps
	SetMaxNumShadows(n int)

	// ShadowFilter retrieves the active shadow filter.
	//
	// Returns:
	//   - ShadowFilter: the filter
	ShadowFilter() ShadowFilter

	// SetShadowSoftener selects the shadow filter of every shadow receiving sub-material. All filter
	// defines are cleared before the selected one is set.
	//
	// Parameters:
	//   - f: the filter
	SetShadowSoftener(f ShadowFilter)

	// SetShadowQuality selects the filter of a quality preset.
	//
	// Parameters:
	//   - q: the preset
	SetShadowQuality(q ShadowQuality)

	// RequiresBuild reports whether the composite or any sub-material must be recompiled.
	//
	// Returns:
	//   - bool: true if Compile has work to do
	RequiresBuild() bool

	// CompileStatus retrieves the diagnostic of the first sub-material whose last compile failed.
	//
	// Returns:
	//   - string: the diagnostic, empty if every sub-material compiled
	CompileStatus() string

	// Compile compiles every sub-material that requires it, stopping at the first failure.
	//
	// Parameters:
	//   - b: the backend to compile with
	//   - cache: the program cache
	//
	// Returns:
	//   - error: the *CompileError of the failing sub-material
	Compile(b backend.Backend, cache *ProgramCache) error

	// Dispose disposes every sub-material.
	Dispose()
}

// compositeMaterial is the implementation of the CompositeMaterial interface.
type compositeMaterial struct {
	name          string
	transparent   bool
	uniforms      []*Uniform
	attributes    []*Attribute
	defines       shader.DefineSet
	shared        sharedNames
	passes        map[PassType]PassMaterial
	prePasses     []PassMaterial
	maxShadows    int
	filter        ShadowFilter
	requiresBuild bool
}

var _ CompositeMaterial = &compositeMaterial{}

// sharedNames records which composite declarations are broadcast, so sub-materials installed later
// receive them too.
type sharedNames struct {
	uniforms   map[string]bool
	attributes map[string]bool
	defines    map[string]bool
}

func mark(m map[string]bool, name string, shared bool) {
	if shared {
		m[name] = true
	} else {
		delete(m, name)
	}
}

// NewCompositeMaterial creates a composite material configured with the provided options.
//
// Parameters:
//   - options: variadic list of CompositeMaterialBuilderOption functions to configure the material
//
// Returns:
//   - CompositeMaterial: a new CompositeMaterial instance
func NewCompositeMaterial(options ...CompositeMaterialBuilderOption) CompositeMaterial {
	c := &compositeMaterial{
		name:          "composite",
		passes:        make(map[PassType]PassMaterial),
		requiresBuild: true,
		shared: sharedNames{
			uniforms:   make(map[string]bool),
			attributes: make(map[string]bool),
			defines:    make(map[string]bool),
		},
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

// broadcast applies fn to every sub-material, passes in pass order first, then pre-passes.
func (c *compositeMaterial) broadcast(fn func(PassMaterial)) {
	for _, pm := range c.Passes() {
		fn(pm)
	}
	for _, pm := range c.prePasses {
		fn(pm)
	}
}

// adopt gives a newly installed sub-material the shared declarations it does not declare itself,
// plus the shadow arrays and filter when it receives shadows.
func (c *compositeMaterial) adopt(pm PassMaterial) {
	for _, u := range c.uniforms {
		if !c.shared.uniforms[u.name] {
			continue
		}
		if _, ok := pm.Uniform(u.name); !ok {
			pm.AddUniform(u.Clone())
		}
	}
	for _, a := range c.attributes {
		if !c.shared.attributes[a.name] {
			continue
		}
		if _, ok := pm.Attribute(a.name); !ok {
			pm.AddAttribute(a.Clone())
		}
	}
	for _, d := range c.defines.All() {
		if c.shared.defines[d.Name] {
			pm.AddDefine(d)
		}
	}
	if pm.ReceivesShadows() {
		pm.SetMaxNumShadows(c.maxShadows)
		pm.SetShadowFilter(c.filter)
	}
}

func (c *compositeMaterial) Name() string {
	return c.name
}

func (c *compositeMaterial) Transparent() bool {
	return c.transparent
}

func (c *compositeMaterial) SetTransparent(transparent bool) {
	c.transparent = transparent
}

func (c *compositeMaterial) Pass(pass PassType) (PassMaterial, bool) {
	pm, ok := c.passes[pass]
	return pm, ok
}

func (c *compositeMaterial) SetPass(pm PassMaterial) {
	if old, ok := c.passes[pm.Pass()]; ok && old != pm {
		old.Dispose()
	}
	c.adopt(pm)
	c.passes[pm.Pass()] = pm
	c.requiresBuild = true
}

func (c *compositeMaterial) RemovePass(pass PassType) {
	if pm, ok := c.passes[pass]; ok {
		pm.Dispose()
		delete(c.passes, pass)
	}
}

func (c *compositeMaterial) Passes() []PassMaterial {
	types := make([]PassType, 0, len(c.passes))
	for t := range c.passes {
		types = append(types, t)
	}
	slices.Sort(types)
	out := make([]PassMaterial, len(types))
	for i, t := range types {
		out[i] = c.passes[t]
	}
	return out
}

func (c *compositeMaterial) AddPrePass(pm PassMaterial) {
	c.adopt(pm)
	c.prePasses = append(c.prePasses, pm)
	c.requiresBuild = true
}

func (c *compositeMaterial) PrePasses() []PassMaterial {
	return c.prePasses
}

func (c *compositeMaterial) Uniform(name string) (*Uniform, bool) {
	for _, u := range c.uniforms {
		if u.name == name {
			return u, true
		}
	}
	return nil, false
}

func (c *compositeMaterial) Uniforms() []*Uniform {
	return c.uniforms
}

func (c *compositeMaterial) AddUniform(u *Uniform, shared bool) {
	i := slices.IndexFunc(c.uniforms, func(e *Uniform) bool { return e.name == u.name })
	if i >= 0 {
		c.uniforms[i] = u
	} else {
		c.uniforms = append(c.uniforms, u)
	}
	mark(c.shared.uniforms, u.name, shared)
	c.requiresBuild = true
	if shared {
		c.broadcast(func(pm PassMaterial) { pm.AddUniform(u.Clone()) })
	}
}

func (c *compositeMaterial) RemoveUniform(name string, shared bool) {
	c.uniforms = slices.DeleteFunc(c.uniforms, func(e *Uniform) bool { return e.name == name })
	delete(c.shared.uniforms, name)
	c.requiresBuild = true
	if shared {
		c.broadcast(func(pm PassMaterial) { pm.RemoveUniform(name) })
	}
}

func (c *compositeMaterial) SetUniform(name string, value any, shared bool) bool {
	changed := false
	if u, ok := c.Uniform(name); ok {
		changed = u.Set(value)
	}
	if shared {
		c.broadcast(func(pm PassMaterial) {
			if u, ok := pm.Uniform(name); ok {
				changed = u.Set(value) || changed
			}
		})
	}
	return changed
}

func (c *compositeMaterial) Attributes() []*Attribute {
	return c.attributes
}

func (c *compositeMaterial) AddAttribute(a *Attribute, shared bool) {
	i := slices.IndexFunc(c.attributes, func(e *Attribute) bool { return e.name == a.name })
	if i >= 0 {
		c.attributes[i] = a
	} else {
		c.attributes = append(c.attributes, a)
	}
	mark(c.shared.attributes, a.name, shared)
	c.requiresBuild = true
	if shared {
		c.broadcast(func(pm PassMaterial) { pm.AddAttribute(a.Clone()) })
	}
}

func (c *compositeMaterial) RemoveAttribute(name string, shared bool) {
	c.attributes = slices.DeleteFunc(c.attributes, func(e *Attribute) bool { return e.name == name })
	delete(c.shared.attributes, name)
	c.requiresBuild = true
	if shared {
		c.broadcast(func(pm PassMaterial) { pm.RemoveAttribute(name) })
	}
}

func (c *compositeMaterial) Defines() shader.DefineSet {
	return c.defines.Clone()
}

func (c *compositeMaterial) AddDefine(d shader.Define, shared bool) {
	if c.defines.Add(d) {
		c.requiresBuild = true
	}
	mark(c.shared.defines, d.Name, shared)
	if shared {
		c.broadcast(func(pm PassMaterial) { pm.AddDefine(d) })
	}
}

func (c *compositeMaterial) RemoveDefine(name string, shared bool) {
	if c.defines.Remove(name) {
		c.requiresBuild = true
	}
	delete(c.shared.defines, name)
	if shared {
		c.broadcast(func(pm PassMaterial) { pm.RemoveDefine(name) })
	}
}

func (c *compositeMaterial) MaxNumShadows() int {
	return c.maxShadows
}

func (c *compositeMaterial) SetMaxNumShadows(n int) {
	c.maxShadows = n
	c.broadcast(func(pm PassMaterial) {
		if pm.ReceivesShadows() {
			pm.SetMaxNumShadows(n)
		}
	})
}

func (c *compositeMaterial) ShadowFilter() ShadowFilter {
	return c.filter
}

func (c *compositeMaterial) SetShadowSoftener(f ShadowFilter) {
	c.filter = f
	c.broadcast(func(pm PassMaterial) {
		if pm.ReceivesShadows() {
			pm.SetShadowFilter(f)
		}
	})
}

func (c *compositeMaterial) SetShadowQuality(q ShadowQuality) {
	c.SetShadowSoftener(q.Filter())
}

func (c *compositeMaterial) RequiresBuild() bool {
	if c.requiresBuild {
		return true
	}
	needs := false
	c.broadcast(func(pm PassMaterial) {
		needs = needs || pm.RequiresBuild()
	})
	return needs
}

func (c *compositeMaterial) CompileStatus() string {
	status := ""
	c.broadcast(func(pm PassMaterial) {
		if status == "" {
			status = pm.CompileStatus()
		}
	})
	return status
}

func (c *compositeMaterial) Compile(b backend.Backend, cache *ProgramCache) error {
	subs := append(c.Passes(), c.prePasses...)
	for _, pm := range subs {
		if err := pm.Compile(b, cache); err != nil {
			return err
		}
	}
	c.requiresBuild = false
	return nil
}

func (c *compositeMaterial) Dispose() {
	c.broadcast(func(pm PassMaterial) { pm.Dispose() })
	c.requiresBuild = true
}
