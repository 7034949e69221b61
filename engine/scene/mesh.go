package scene

import (
	"fmt"

	"github.com/MKHenson/trike3d-sub000/common"
	"github.com/MKHenson/trike3d-sub000/engine/geometry"
	"github.com/MKHenson/trike3d-sub000/engine/renderer/material"
	"github.com/go-gl/mathgl/mgl32"
)

// MeshKind is the primitive topology a mesh is drawn with.
type MeshKind int

const (
	MeshTriangles MeshKind = iota
	MeshLines
	MeshPoints
)

func (k MeshKind) String() string {
	switch k {
	case MeshTriangles:
		return "triangles"
	case MeshLines:
		return "lines"
	case MeshPoints:
		return "points"
	default:
		return fmt.Sprintf("MeshKind(%d)", int(k))
	}
}

// CullFunc is a custom visibility predicate consulted for meshes that fail the frustum test.
// It returns true to keep the mesh.
type CullFunc func(m *Mesh, frustum *common.Frustum, farCorners [4]mgl32.Vec3) bool

// Mesh is a drawable node: geometry drawn with a composite material. Point clouds are meshes of kind
// MeshPoints. Culled and the cached matrices are per-frame state written by the renderer.
type Mesh struct {
	*Object

	geometry    geometry.Geometry
	material    material.CompositeMaterial
	kind        MeshKind
	sceneCull   bool
	castShadows bool
	cullFunc    CullFunc
	onPostSolid func(*Mesh)

	culled       bool
	modelView    mgl32.Mat4
	normalMatrix mgl32.Mat3
}

// NewMesh creates a triangle mesh. Meshes take part in frustum culling and cast shadows unless
// configured otherwise.
//
// Parameters:
//   - g: the geometry
//   - m: the material
//   - options: variadic list of MeshBuilderOption functions to configure the mesh
//
// Returns:
//   - *Mesh: the mesh
func NewMesh(g geometry.Geometry, m material.CompositeMaterial, options ...MeshBuilderOption) *Mesh {
	if g == nil || m == nil {
		panic("scene: a mesh needs a geometry and a material")
	}
	mesh := &Mesh{
		geometry:     g,
		material:     m,
		sceneCull:    true,
		castShadows:  true,
		modelView:    mgl32.Ident4(),
		normalMatrix: mgl32.Ident3(),
	}
	mesh.Object = newObject(mesh, g.Name())
	for _, opt := range options {
		opt(mesh)
	}
	return mesh
}

func (m *Mesh) Geometry() geometry.Geometry {
	return m.geometry
}

func (m *Mesh) SetGeometry(g geometry.Geometry) {
	m.geometry = g
}

func (m *Mesh) Material() material.CompositeMaterial {
	return m.material
}

func (m *Mesh) SetMaterial(mat material.CompositeMaterial) {
	m.material = mat
}

func (m *Mesh) Kind() MeshKind {
	return m.kind
}

// Transparent reports whether the mesh is drawn in the transparency pass.
func (m *Mesh) Transparent() bool {
	return m.material.Transparent()
}

// SceneCull reports whether the mesh is tested against the camera frustum. Meshes that opt out are
// never culled while visible.
func (m *Mesh) SceneCull() bool {
	return m.sceneCull
}

func (m *Mesh) SetSceneCull(enabled bool) {
	m.sceneCull = enabled
}

func (m *Mesh) CastShadows() bool {
	return m.castShadows
}

func (m *Mesh) SetCastShadows(enabled bool) {
	m.castShadows = enabled
}

// CullFunc returns the custom culling predicate, or nil.
func (m *Mesh) CullFunc() CullFunc {
	return m.cullFunc
}

func (m *Mesh) SetCullFunc(fn CullFunc) {
	m.cullFunc = fn
}

// Culled reports the culling outcome of the current frame.
func (m *Mesh) Culled() bool {
	return m.culled
}

func (m *Mesh) SetCulled(culled bool) {
	m.culled = culled
}

// BoundingSphere returns the geometry bounds in world space.
func (m *Mesh) BoundingSphere() common.Sphere {
	return m.geometry.BoundingSphere().Transform(m.world)
}

// UpdateMatrices caches the model-view and normal matrices for the given view.
//
// Parameters:
//   - view: the view matrix of the camera being rendered
func (m *Mesh) UpdateMatrices(view mgl32.Mat4) {
	m.modelView = view.Mul4(m.world)
	m.normalMatrix = common.NormalMatrix(m.modelView)
}

func (m *Mesh) ModelView() mgl32.Mat4 {
	return m.modelView
}

func (m *Mesh) NormalMatrix() mgl32.Mat3 {
	return m.normalMatrix
}

// OnPostSolid installs the hook run on a transparent mesh after the solid pass and before sorting.
func (m *Mesh) OnPostSolid(fn func(*Mesh)) {
	m.onPostSolid = fn
}

// PrepareForPostSolid runs the post-solid hook, if any.
func (m *Mesh) PrepareForPostSolid() {
	if m.onPostSolid != nil {
		m.onPostSolid(m)
	}
}
