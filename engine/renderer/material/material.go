// Package material turns WGSL templates, typed defines and declared uniforms into linked programs.
// A Material compiles to exactly one program. A CompositeMaterial owns one PassMaterial per pass
// type and broadcasts shared declarations to all of them.
package material

import (
	"errors"
	"fmt"
	"slices"

	"github.com/MKHenson/trike3d-sub000/common"
	"github.com/MKHenson/trike3d-sub000/engine/renderer/backend"
	"github.com/MKHenson/trike3d-sub000/engine/renderer/shader"
)

// RenderState is the fixed-function state a material is drawn with.
type RenderState struct {
	Cull       backend.CullMode
	DepthTest  bool
	DepthWrite bool
	DepthFunc  backend.CompareFunc
	Blend      backend.BlendState
	LineWidth  float32
}

// DefaultRenderState culls back faces, tests and writes depth, and does not blend.
var DefaultRenderState = RenderState{
	Cull:       backend.CullBack,
	DepthTest:  true,
	DepthWrite: true,
	DepthFunc:  backend.CompareLessEqual,
	Blend:      backend.BlendOpaque,
	LineWidth:  1,
}

// material is the implementation of the Material interface.
type material struct {
	name            string
	pass            string
	shaderID        string
	vertexSource    string
	fragmentSource  string
	uniforms        []*Uniform
	attributes      []*Attribute
	defines         shader.DefineSet
	state           RenderState
	receivesShadows bool
	maxShadows      int
	filter          ShadowFilter

	// dropMissingAttributes lets a program ignore declared attributes it never reads.
	dropMissingAttributes bool

	program       *Program
	cache         *ProgramCache
	requiresBuild bool
	compileStatus string
}

// Material is a single program together with the uniforms, attributes and defines it is built from.
type Material interface {
	// Name retrieves the material identifier used in diagnostics.
	//
	// Returns:
	//   - string: the name of the material
	Name() string

	// ShaderID retrieves the identifier of the WGSL template the material assembles. Materials
	// sharing a template and define set share a program.
	//
	// Returns:
	//   - string: the template identifier
	ShaderID() string

	// Uniform retrieves a declared uniform.
	//
	// Parameters:
	//   - name: the uniform name
	//
	// Returns:
	//   - *Uniform: the uniform
	//   - bool: false if no uniform with that name is declared
	Uniform(name string) (*Uniform, bool)

	// Uniforms retrieves every declared uniform in declaration order.
	//
	// Returns:
	//   - []*Uniform: the uniforms
	Uniforms() []*Uniform

	// AddUniform declares a uniform, replacing one with the same name, and marks the material for rebuild.
	//
	// Parameters:
	//   - u: the uniform
	AddUniform(u *Uniform)

	// RemoveUniform removes a declared uniform and marks the material for rebuild.
	//
	// Parameters:
	//   - name: the uniform name
	RemoveUniform(name string)

	// SetUniform assigns a uniform value. Assigning the current value is a no-op.
	// Panics if the uniform is not declared or the value has the wrong type.
	//
	// Parameters:
	//   - name: the uniform name
	//   - value: the new value
	//
	// Returns:
	//   - bool: true if the value changed
	SetUniform(name string, value any) bool

	// Attribute retrieves a declared vertex attribute.
	//
	// Parameters:
	//   - name: the attribute name
	//
	// Returns:
	//   - *Attribute: the attribute
	//   - bool: false if no attribute with that name is declared
	Attribute(name string) (*Attribute, bool)

	// Attributes retrieves every declared vertex attribute.
	//
	// Returns:
	//   - []*Attribute: the attributes
	Attributes() []*Attribute

	// AddAttribute declares a vertex attribute and marks the material for rebuild.
	//
	// Parameters:
	//   - a: the attribute
	AddAttribute(a *Attribute)

	// RemoveAttribute removes a vertex attribute and marks the material for rebuild.
	//
	// Parameters:
	//   - name: the attribute name
	RemoveAttribute(name string)

	// Defines retrieves a copy of the active define set.
	//
	// Returns:
	//   - shader.DefineSet: the defines
	Defines() shader.DefineSet

	// AddDefine sets a define and marks the material for rebuild if the set changed.
	//
	// Parameters:
	//   - d: the define
	AddDefine(d shader.Define)

	// RemoveDefine clears a define and marks the material for rebuild if it was set.
	//
	// Parameters:
	//   - name: the define name
	RemoveDefine(name string)

	// ReceivesShadows reports whether the program samples shadow maps.
	//
	// Returns:
	//   - bool: true if shadow configuration applies to this material
	ReceivesShadows() bool

	// MaxNumShadows retrieves the length of the shadow uniform arrays.
	//
	// Returns:
	//   - int: the number of shadow maps sampled
	MaxNumShadows() int

	// SetMaxNumShadows resizes the shadow uniform arrays to exactly n elements and sets the
	// SHADOW_MAPPING and MAX_SHADOWS defines. Zero removes the arrays and both defines.
	//
	// Parameters:
	//   - n: the number of shadow maps to sample
	SetMaxNumShadows(n int)

	// ShadowFilter retrieves the active shadow filter.
	//
	// Returns:
	//   - ShadowFilter: the filter
	ShadowFilter() ShadowFilter

	// SetShadowFilter clears every shadow filter define, then sets the one selecting f.
	//
	// Parameters:
	//   - f: the filter
	SetShadowFilter(f ShadowFilter)

	// State retrieves the fixed-function state the material draws with.
	//
	// Returns:
	//   - RenderState: the state
	State() RenderState

	// SetState replaces the fixed-function state.
	//
	// Parameters:
	//   - s: the state
	SetState(s RenderState)

	// RequiresBuild reports whether a declaration changed since the last successful compile.
	//
	// Returns:
	//   - bool: true if Compile has work to do
	RequiresBuild() bool

	// CompileStatus retrieves the diagnostic of the last failed compile.
	//
	// Returns:
	//   - string: the diagnostic, empty after a successful compile
	CompileStatus() string

	// Compile assembles the sources, links the program and resolves every uniform and attribute.
	// On failure RequiresBuild stays true so a later call retries.
	//
	// Parameters:
	//   - b: the backend to compile with
	//   - cache: the program cache shared by all materials of the renderer
	//
	// Returns:
	//   - error: a *CompileError on failure
	Compile(b backend.Backend, cache *ProgramCache) error

	// Program retrieves the linked program.
	//
	// Returns:
	//   - *Program: the program, or nil before the first successful compile
	Program() *Program

	// Dispose releases the program reference.
	Dispose()
}

var _ Material = &material{}

// NewMaterial creates a standalone material configured with the provided options. Every declared
// attribute must be read by its program.
//
// Parameters:
//   - options: variadic list of MaterialBuilderOption functions to configure the material
//
// Returns:
//   - Material: a new Material instance
func NewMaterial(options ...MaterialBuilderOption) Material {
	return newMaterial(options...)
}

func newMaterial(options ...MaterialBuilderOption) *material {
	m := &material{
		name:          "material",
		state:         DefaultRenderState,
		requiresBuild: true,
	}
	for _, opt := range options {
		opt(m)
	}
	if m.shaderID == "" {
		m.shaderID = m.name
	}
	return m
}

func (m *material) Name() string {
	return m.name
}

func (m *material) ShaderID() string {
	return m.shaderID
}

func (m *material) Uniform(name string) (*Uniform, bool) {
	for _, u := range m.uniforms {
		if u.name == name {
			return u, true
		}
	}
	return nil, false
}

func (m *material) Uniforms() []*Uniform {
	return m.uniforms
}

func (m *material) AddUniform(u *Uniform) {
	i := slices.IndexFunc(m.uniforms, func(e *Uniform) bool { return e.name == u.name })
	if i >= 0 {
		m.uniforms[i] = u
	} else {
		m.uniforms = append(m.uniforms, u)
	}
	m.requiresBuild = true
}

func (m *material) RemoveUniform(name string) {
	i := slices.IndexFunc(m.uniforms, func(e *Uniform) bool { return e.name == name })
	if i < 0 {
		return
	}
	m.uniforms = slices.Delete(m.uniforms, i, i+1)
	m.requiresBuild = true
}

func (m *material) SetUniform(name string, value any) bool {
	u, ok := m.Uniform(name)
	if !ok {
		panic(fmt.Sprintf("material: %s has no uniform %s", m.name, name))
	}
	return u.Set(value)
}

func (m *material) Attribute(name string) (*Attribute, bool) {
	for _, a := range m.attributes {
		if a.name == name {
			return a, true
		}
	}
	return nil, false
}

func (m *material) Attributes() []*Attribute {
	return m.attributes
}

func (m *material) AddAttribute(a *Attribute) {
	i := slices.IndexFunc(m.attributes, func(e *Attribute) bool { return e.name == a.name })
	if i >= 0 {
		m.attributes[i] = a
	} else {
		m.attributes = append(m.attributes, a)
	}
	m.requiresBuild = true
}

func (m *material) RemoveAttribute(name string) {
	i := slices.IndexFunc(m.attributes, func(e *Attribute) bool { return e.name == name })
	if i < 0 {
		return
	}
	m.attributes = slices.Delete(m.attributes, i, i+1)
	m.requiresBuild = true
}

func (m *material) Defines() shader.DefineSet {
	return m.defines.Clone()
}

func (m *material) AddDefine(d shader.Define) {
	if m.defines.Add(d) {
		m.requiresBuild = true
	}
}

func (m *material) RemoveDefine(name string) {
	if m.defines.Remove(name) {
		m.requiresBuild = true
	}
}

func (m *material) ReceivesShadows() bool {
	return m.receivesShadows
}

func (m *material) MaxNumShadows() int {
	return m.maxShadows
}

func (m *material) SetMaxNumShadows(n int) {
	m.applyMaxShadows(n)
}

func (m *material) ShadowFilter() ShadowFilter {
	return m.filter
}

func (m *material) SetShadowFilter(f ShadowFilter) {
	m.applyShadowFilter(f)
}

func (m *material) State() RenderState {
	return m.state
}

func (m *material) SetState(s RenderState) {
	m.state = s
}

func (m *material) RequiresBuild() bool {
	return m.requiresBuild
}

func (m *material) CompileStatus() string {
	return m.compileStatus
}

func (m *material) Program() *Program {
	return m.program
}

func (m *material) fail(stage backend.Stage, diagnostic string, err error) error {
	m.compileStatus = diagnostic
	return &CompileError{
		Material:   m.name,
		Pass:       m.pass,
		Stage:      stage,
		Diagnostic: diagnostic,
		Err:        err,
	}
}

func (m *material) Compile(b backend.Backend, cache *ProgramCache) error {
	if !m.requiresBuild {
		return nil
	}

	vs, err := shader.Assemble(m.shaderID+" vertex", m.defines, m.vertexSource)
	if err != nil {
		return m.fail(backend.StageVertex, err.Error(), err)
	}
	fs, err := shader.Assemble(m.shaderID+" fragment", m.defines, m.fragmentSource)
	if err != nil {
		return m.fail(backend.StageFragment, err.Error(), err)
	}

	prog, err := cache.Acquire(b, m.shaderID, vs, fs)
	if err != nil {
		var se *backend.ShaderError
		if errors.As(err, &se) {
			return m.fail(se.Stage, se.Log, err)
		}
		return m.fail(backend.StageLink, err.Error(), err)
	}

	if err := m.resolve(b, prog); err != nil {
		cache.Release(prog)
		return err
	}

	if m.program != nil {
		m.cache.Release(m.program)
	}
	m.program = prog
	m.cache = cache
	m.requiresBuild = false
	m.compileStatus = ""
	return nil
}

// resolve looks up every uniform and attribute location in a freshly acquired program.
func (m *material) resolve(b backend.Backend, prog *Program) error {
	for _, u := range m.uniforms {
		names := u.LocationNames()
		locs := make([]backend.Location, 0, len(names))
		for _, name := range names {
			loc, ok := prog.Location(b, name)
			if !ok {
				return m.fail(backend.StageLink, fmt.Sprintf("uniform %s has no location", name), nil)
			}
			locs = append(locs, loc)
		}
		u.locations = locs
		u.requiresUpdate = true
	}

	for _, a := range m.attributes {
		slot, ok := b.AttributeLocation(prog.handle, a.name)
		if !ok {
			if m.dropMissingAttributes {
				a.slot = -1
				common.Logger().Debug("material: dropped unused attribute", "material", m.name, "pass", m.pass, "attribute", a.name)
				continue
			}
			return m.fail(backend.StageLink, fmt.Sprintf("attribute %s has no location", a.name), nil)
		}
		a.slot = slot
	}
	return nil
}

func (m *material) Dispose() {
	if m.program != nil {
		m.cache.Release(m.program)
		m.program = nil
	}
	m.requiresBuild = true
}
