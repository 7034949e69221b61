// Package geometry holds vertex attribute and index data on the CPU and mirrors it into backend
// buffers on demand. Each mutation bumps a generation counter so consumers can tell when cached
// bindings went stale.
package geometry

import (
	"fmt"
	"math"
	"slices"

	"github.com/MKHenson/trike3d-sub000/common"
	"github.com/MKHenson/trike3d-sub000/engine/renderer/backend"
	"github.com/MKHenson/trike3d-sub000/engine/resource"
	"github.com/go-gl/mathgl/mgl32"
)

// Well-known attribute names, matched against vertex inputs of the same name.
const (
	AttributePosition = "position"
	AttributeNormal   = "normal"
	AttributeUV       = "uv"
	AttributeColor    = "color"
)

// indexKey names the index buffer in DirtyBuffers.
const indexKey = "index"

// BuildError reports geometry that could not be uploaded.
type BuildError struct {
	Geometry   string
	Diagnostic string
	Err        error
}

func (e *BuildError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("geometry %s: %s: %v", e.Geometry, e.Diagnostic, e.Err)
	}
	return fmt.Sprintf("geometry %s: %s", e.Geometry, e.Diagnostic)
}

func (e *BuildError) Unwrap() error {
	return e.Err
}

type attribute struct {
	components int
	data       []float32
	buffer     backend.Buffer
	dirty      bool
}

// Geometry is a set of named vertex attributes plus optional indices.
type Geometry interface {
	// Name retrieves the debug name of the geometry.
	//
	// Returns:
	//   - string: the name
	Name() string

	// SetAttribute replaces or adds a vertex attribute.
	//
	// Parameters:
	//   - name: the attribute name, matched against vertex shader inputs
	//   - components: the number of floats per vertex, 1 to 4
	//   - data: the tightly packed values, copied
	SetAttribute(name string, components int, data []float32)

	// RemoveAttribute deletes a vertex attribute and queues its buffer for release.
	//
	// Parameters:
	//   - name: the attribute name
	RemoveAttribute(name string)

	// Attribute retrieves the CPU data of an attribute.
	//
	// Parameters:
	//   - name: the attribute name
	//
	// Returns:
	//   - []float32: the packed values
	//   - int: the number of components per vertex
	//   - bool: false if the attribute does not exist
	Attribute(name string) ([]float32, int, bool)

	// AttributeNames retrieves the sorted attribute names.
	//
	// Returns:
	//   - []string: the names
	AttributeNames() []string

	// SetIndices replaces the index data. A nil slice draws vertices in order.
	//
	// Parameters:
	//   - indices: the indices, copied
	SetIndices(indices []uint32)

	// Indices retrieves the index data.
	//
	// Returns:
	//   - []uint32: the indices, nil for non-indexed geometry
	Indices() []uint32

	// Count retrieves the number of elements a draw submits: the index count, or the vertex count
	// for non-indexed geometry.
	//
	// Returns:
	//   - int: the element count
	Count() int

	// VertexCount retrieves the number of vertices described by the position attribute.
	//
	// Returns:
	//   - int: the vertex count
	VertexCount() int

	// Generation retrieves a counter that increases on every mutation.
	//
	// Returns:
	//   - int: the generation
	Generation() int

	// RequiresBuild reports whether any buffer must be uploaded before drawing.
	//
	// Returns:
	//   - bool: true if Build has work to do
	RequiresBuild() bool

	// DirtyBuffers retrieves the names of buffers awaiting upload. The index buffer is named "index".
	//
	// Returns:
	//   - []string: the sorted names
	DirtyBuffers() []string

	// Build validates the geometry and uploads every dirty buffer.
	//
	// Parameters:
	//   - b: the backend to upload with
	//
	// Returns:
	//   - error: a *BuildError if the data is inconsistent or an upload failed
	Build(b backend.Backend) error

	// Buffer retrieves the backend buffer of an attribute.
	//
	// Parameters:
	//   - name: the attribute name
	//
	// Returns:
	//   - backend.Buffer: the buffer handle, zero before Build
	//   - int: the number of components per vertex
	//   - bool: false if the attribute does not exist
	Buffer(name string) (backend.Buffer, int, bool)

	// IndexBuffer retrieves the backend index buffer.
	//
	// Returns:
	//   - backend.Buffer: the handle, zero for non-indexed geometry
	IndexBuffer() backend.Buffer

	// BoundingSphere retrieves the sphere enclosing every position in local space.
	//
	// Returns:
	//   - common.Sphere: the bounding sphere
	BoundingSphere() common.Sphere

	// Dispose queues every backend buffer for release.
	Dispose()
}

// geometry is the implementation of the Geometry interface.
type geometry struct {
	name        string
	attributes  map[string]*attribute
	indices     []uint32
	indexBuffer backend.Buffer
	indexDirty  bool
	generation  int
	bounds      common.Sphere
	boundsValid bool
}

var _ Geometry = &geometry{}

// NewGeometry creates an empty Geometry configured with the provided options.
//
// Parameters:
//   - options: variadic list of GeometryBuilderOption functions to configure the geometry
//
// Returns:
//   - Geometry: the geometry
func NewGeometry(options ...GeometryBuilderOption) Geometry {
	g := &geometry{
		name:       "geometry",
		attributes: make(map[string]*attribute),
	}
	for _, opt := range options {
		opt(g)
	}
	return g
}

func (g *geometry) Name() string {
	return g.name
}

func (g *geometry) SetAttribute(name string, components int, data []float32) {
	if components < 1 || components > 4 {
		panic(fmt.Sprintf("geometry: attribute %s has %d components", name, components))
	}
	a, ok := g.attributes[name]
	if !ok {
		a = &attribute{}
		g.attributes[name] = a
	}
	a.components = components
	a.data = append(a.data[:0], data...)
	a.dirty = true
	if name == AttributePosition {
		g.boundsValid = false
	}
	g.generation++
}

func (g *geometry) RemoveAttribute(name string) {
	a, ok := g.attributes[name]
	if !ok {
		return
	}
	releaseBuffer(a.buffer)
	delete(g.attributes, name)
	if name == AttributePosition {
		g.boundsValid = false
	}
	g.generation++
}

func (g *geometry) Attribute(name string) ([]float32, int, bool) {
	a, ok := g.attributes[name]
	if !ok {
		return nil, 0, false
	}
	return a.data, a.components, true
}

func (g *geometry) AttributeNames() []string {
	names := make([]string, 0, len(g.attributes))
	for name := range g.attributes {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func (g *geometry) SetIndices(indices []uint32) {
	if indices == nil {
		releaseBuffer(g.indexBuffer)
		g.indexBuffer = 0
		g.indices = nil
		g.indexDirty = false
	} else {
		g.indices = append(g.indices[:0], indices...)
		g.indexDirty = true
	}
	g.generation++
}

func (g *geometry) Indices() []uint32 {
	return g.indices
}

func (g *geometry) Count() int {
	if g.indices != nil {
		return len(g.indices)
	}
	return g.VertexCount()
}

func (g *geometry) VertexCount() int {
	a, ok := g.attributes[AttributePosition]
	if !ok {
		return 0
	}
	return len(a.data) / a.components
}

func (g *geometry) Generation() int {
	return g.generation
}

func (g *geometry) RequiresBuild() bool {
	if g.indexDirty {
		return true
	}
	for _, a := range g.attributes {
		if a.dirty {
			return true
		}
	}
	return false
}

func (g *geometry) DirtyBuffers() []string {
	var names []string
	for name, a := range g.attributes {
		if a.dirty {
			names = append(names, name)
		}
	}
	if g.indexDirty {
		names = append(names, indexKey)
	}
	slices.Sort(names)
	return names
}

// validate checks that every attribute describes the same number of vertices and every index is in range.
func (g *geometry) validate() error {
	pos, ok := g.attributes[AttributePosition]
	if !ok {
		return &BuildError{Geometry: g.name, Diagnostic: "missing position attribute"}
	}
	vertices := len(pos.data) / pos.components
	if vertices == 0 {
		return &BuildError{Geometry: g.name, Diagnostic: "no vertices"}
	}
	for _, name := range g.AttributeNames() {
		a := g.attributes[name]
		if len(a.data)%a.components != 0 {
			return &BuildError{Geometry: g.name, Diagnostic: fmt.Sprintf("attribute %s length %d is not a multiple of %d", name, len(a.data), a.components)}
		}
		if n := len(a.data) / a.components; n != vertices {
			return &BuildError{Geometry: g.name, Diagnostic: fmt.Sprintf("attribute %s has %d vertices, position has %d", name, n, vertices)}
		}
	}
	for i, idx := range g.indices {
		if int(idx) >= vertices {
			return &BuildError{Geometry: g.name, Diagnostic: fmt.Sprintf("index %d at %d out of range for %d vertices", idx, i, vertices)}
		}
	}
	return nil
}

func (g *geometry) Build(b backend.Backend) error {
	if !g.RequiresBuild() {
		return nil
	}
	if err := g.validate(); err != nil {
		return err
	}

	for _, name := range g.AttributeNames() {
		a := g.attributes[name]
		if !a.dirty {
			continue
		}
		buf, err := upload(b, backend.BufferVertex, a.buffer, common.SliceToBytes(a.data))
		if err != nil {
			return &BuildError{Geometry: g.name, Diagnostic: "upload " + name, Err: err}
		}
		a.buffer = buf
		a.dirty = false
	}

	if g.indexDirty {
		buf, err := upload(b, backend.BufferIndex, g.indexBuffer, common.SliceToBytes(g.indices))
		if err != nil {
			return &BuildError{Geometry: g.name, Diagnostic: "upload indices", Err: err}
		}
		g.indexBuffer = buf
		g.indexDirty = false
	}
	return nil
}

func upload(b backend.Backend, kind backend.BufferKind, existing backend.Buffer, data []byte) (backend.Buffer, error) {
	if existing != 0 {
		return existing, b.UpdateBuffer(existing, data)
	}
	return b.CreateBuffer(kind, data)
}

func (g *geometry) Buffer(name string) (backend.Buffer, int, bool) {
	a, ok := g.attributes[name]
	if !ok {
		return 0, 0, false
	}
	return a.buffer, a.components, true
}

func (g *geometry) IndexBuffer() backend.Buffer {
	return g.indexBuffer
}

func (g *geometry) BoundingSphere() common.Sphere {
	if g.boundsValid {
		return g.bounds
	}
	g.bounds = computeBoundingSphere(g.attributes[AttributePosition])
	g.boundsValid = true
	return g.bounds
}

// computeBoundingSphere centers the sphere on the axis aligned bounds and grows it to the farthest position.
func computeBoundingSphere(pos *attribute) common.Sphere {
	if pos == nil || len(pos.data) < pos.components {
		return common.Sphere{}
	}
	vertex := func(i int) mgl32.Vec3 {
		var v mgl32.Vec3
		copy(v[:], pos.data[i*pos.components:i*pos.components+min(pos.components, 3)])
		return v
	}

	n := len(pos.data) / pos.components
	lo, hi := vertex(0), vertex(0)
	for i := 1; i < n; i++ {
		v := vertex(i)
		for k := range 3 {
			lo[k] = min(lo[k], v[k])
			hi[k] = max(hi[k], v[k])
		}
	}
	center := lo.Add(hi).Mul(0.5)

	var radiusSq float32
	for i := range n {
		d := vertex(i).Sub(center)
		radiusSq = max(radiusSq, d.Dot(d))
	}
	return common.Sphere{Center: center, Radius: float32(math.Sqrt(float64(radiusSq)))}
}

func releaseBuffer(buf backend.Buffer) {
	if buf == 0 {
		return
	}
	resource.Enqueue(resource.ReleaseFunc(func(b backend.Backend) {
		b.DeleteBuffer(buf)
	}))
}

func (g *geometry) Dispose() {
	for _, a := range g.attributes {
		releaseBuffer(a.buffer)
		a.buffer = 0
		a.dirty = true
	}
	releaseBuffer(g.indexBuffer)
	g.indexBuffer = 0
	g.indexDirty = g.indices != nil
}
