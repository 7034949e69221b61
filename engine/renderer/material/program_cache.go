package material

import (
	"github.com/MKHenson/trike3d-sub000/common"
	"github.com/MKHenson/trike3d-sub000/engine/renderer/backend"
	"github.com/MKHenson/trike3d-sub000/engine/resource"
)

type cachedLocation struct {
	loc backend.Location
	ok  bool
}

// Program is a linked backend program shared by every material variant that assembled to the
// same source. It remembers the value last uploaded to each location.
type Program struct {
	key       string
	label     string
	handle    backend.Program
	refs      int
	bound     map[backend.Location]any
	locations map[string]cachedLocation
}

// Handle returns the backend program.
func (p *Program) Handle() backend.Program {
	return p.handle
}

// Label returns the label the program was compiled with.
func (p *Program) Label() string {
	return p.label
}

// Location resolves a uniform name, memoizing the answer.
//
// Parameters:
//   - b: the backend that linked the program
//   - name: the program variable name
//
// Returns:
//   - backend.Location: the location
//   - bool: false if the program does not declare the variable
func (p *Program) Location(b backend.Backend, name string) (backend.Location, bool) {
	if c, ok := p.locations[name]; ok {
		return c.loc, c.ok
	}
	loc, ok := b.UniformLocation(p.handle, name)
	p.locations[name] = cachedLocation{loc: loc, ok: ok}
	return loc, ok
}

// Upload sends a value to a location unless it equals the value already bound there. The program
// must be in use.
//
// Parameters:
//   - b: the backend
//   - loc: the uniform location
//   - value: the value to upload
//
// Returns:
//   - bool: true if an upload was issued
func (p *Program) Upload(b backend.Backend, loc backend.Location, value any) bool {
	if cur, ok := p.bound[loc]; ok && equalValue(cur, value) {
		return false
	}
	b.UploadUniform(loc, value)
	p.bound[loc] = cloneValue(value)
	return true
}

// Bound returns the value last uploaded to a location.
func (p *Program) Bound(loc backend.Location) (any, bool) {
	v, ok := p.bound[loc]
	return v, ok
}

// ProgramCache links each distinct pair of assembled sources once and reference counts the result.
type ProgramCache struct {
	programs map[string]*Program
	compiles int
}

// NewProgramCache creates an empty cache.
func NewProgramCache() *ProgramCache {
	return &ProgramCache{programs: make(map[string]*Program)}
}

// Acquire returns the program for a pair of sources, compiling it on first use.
//
// Parameters:
//   - b: the backend to compile with
//   - label: a debug label
//   - vertex: the assembled vertex source
//   - fragment: the assembled fragment source
//
// Returns:
//   - *Program: the program, with its reference count incremented
//   - error: the backend error, usually a *backend.ShaderError
func (c *ProgramCache) Acquire(b backend.Backend, label, vertex, fragment string) (*Program, error) {
	key := vertex + "\x00" + fragment
	if p, ok := c.programs[key]; ok {
		p.refs++
		return p, nil
	}

	handle, err := b.CompileProgram(label, vertex, fragment)
	if err != nil {
		return nil, err
	}
	c.compiles++
	p := &Program{
		key:       key,
		label:     label,
		handle:    handle,
		refs:      1,
		bound:     make(map[backend.Location]any),
		locations: make(map[string]cachedLocation),
	}
	c.programs[key] = p
	common.Logger().Debug("material: compiled program", "label", label, "handle", handle)
	return p, nil
}

// Release drops one reference. The backend program is queued for deletion with the last one.
//
// Parameters:
//   - p: the program, ignored when nil
func (c *ProgramCache) Release(p *Program) {
	if p == nil || p.refs == 0 {
		return
	}
	p.refs--
	if p.refs > 0 {
		return
	}
	delete(c.programs, p.key)
	h := p.handle
	resource.Enqueue(resource.ReleaseFunc(func(b backend.Backend) {
		b.DeleteProgram(h)
	}))
}

// Len returns the number of live programs.
func (c *ProgramCache) Len() int {
	return len(c.programs)
}

// Compiles returns the number of programs linked since the cache was created.
func (c *ProgramCache) Compiles() int {
	return c.compiles
}

// Clear queues every program for deletion regardless of references.
func (c *ProgramCache) Clear() {
	for _, p := range c.programs {
		p.refs = 1
		c.Release(p)
	}
}
