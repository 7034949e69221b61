package renderer

import (
	"fmt"

	"github.com/MKHenson/trike3d-sub000/common"
	"github.com/MKHenson/trike3d-sub000/engine/camera"
	"github.com/MKHenson/trike3d-sub000/engine/geometry"
	"github.com/MKHenson/trike3d-sub000/engine/renderer/backend"
	"github.com/MKHenson/trike3d-sub000/engine/renderer/material"
	"github.com/MKHenson/trike3d-sub000/engine/renderer/texture"
	"github.com/MKHenson/trike3d-sub000/engine/scene"
	"github.com/go-gl/mathgl/mgl32"
)

// Program variables every built-in template may declare in group 0.
const (
	uniformModelMatrix      = "modelMatrix"
	uniformModelViewMatrix  = "modelViewMatrix"
	uniformProjectionMatrix = "projectionMatrix"
	uniformNormalMatrix     = "normalMatrix"
	uniformViewMatrix       = "viewMatrix"
	uniformCameraPosition   = "cameraPosition"
	uniformCameraNear       = "cameraNear"
	uniformCameraFar        = "cameraFar"
)

// eye is the camera state a set of draws is issued with.
type eye struct {
	camera         camera.Camera
	view           mgl32.Mat4
	projection     mgl32.Mat4
	viewProjection mgl32.Mat4
	position       mgl32.Vec3
	near           float32
	far            float32
	frustum        common.Frustum
	farCorners     [4]mgl32.Vec3
}

// look captures the current matrices of the active sub-camera of c.
func (e *eye) look(c camera.Camera) {
	active := c.Active()
	e.camera = active
	e.view = active.View()
	e.projection = active.Projection()
	e.viewProjection = active.ViewProjection()
	e.position = active.Position()
	e.near = active.Near()
	e.far = active.Far()
	e.frustum = active.Frustum()
	e.farCorners = active.FarCorners()
}

// drawCall is one draw of a material over a geometry.
type drawCall struct {
	material   material.Material
	geometry   geometry.Geometry
	primitive  backend.Primitive
	model      mgl32.Mat4
	modelView  mgl32.Mat4
	normal     mgl32.Mat3
	stencil    backend.StencilState
	blend      *backend.BlendState
	invertCull bool
}

func primitiveOf(k scene.MeshKind) backend.Primitive {
	switch k {
	case scene.MeshLines:
		return backend.PrimitiveLines
	case scene.MeshPoints:
		return backend.PrimitivePoints
	default:
		return backend.PrimitiveTriangles
	}
}

// meshCall prepares a draw of a mesh with one of its pass materials as seen from e.
func meshCall(m *scene.Mesh, pm material.Material, e *eye) drawCall {
	m.UpdateMatrices(e.view)
	return drawCall{
		material:  pm,
		geometry:  m.Geometry(),
		primitive: primitiveOf(m.Kind()),
		model:     m.World(),
		modelView: m.ModelView(),
		normal:    m.NormalMatrix(),
	}
}

// screenCall prepares a full-screen draw.
func (r *renderer) screenCall(m material.Material) drawCall {
	return drawCall{
		material:  m,
		geometry:  r.screenQuad,
		primitive: backend.PrimitiveTriangles,
		model:     mgl32.Ident4(),
		modelView: mgl32.Ident4(),
		normal:    mgl32.Ident3(),
	}
}

// uploadValue converts a uniform value into a form every backend accepts.
func uploadValue(v any) any {
	switch vv := v.(type) {
	case common.Color:
		return vv.Vec4()
	case []common.Color:
		out := make([]mgl32.Vec4, len(vv))
		for i, c := range vv {
			out[i] = c.Vec4()
		}
		return out
	default:
		return v
	}
}

// upload writes a value to a named program variable, skipping undeclared names and equal values.
func (r *renderer) upload(p *material.Program, name string, value any) {
	loc, ok := p.Location(r.backend, name)
	if !ok {
		return
	}
	r.uploadAt(p, loc, value)
}

func (r *renderer) uploadAt(p *material.Program, loc backend.Location, value any) {
	if p.Upload(r.backend, loc, value) {
		r.stats.UniformUploads++
	} else {
		r.stats.SkippedUploads++
	}
}

// bindTexture binds t, or the fallback texture when t is nil, and points loc at its unit.
func (r *renderer) bindTexture(p *material.Program, loc backend.Location, unit int, t texture.Texture) error {
	if t == nil {
		t = r.fallback
	}
	if err := r.state.bindTexture(unit, t); err != nil {
		return err
	}
	r.uploadAt(p, loc, backend.TextureUnit(unit))
	return nil
}

// draw issues one draw call through the state cache.
func (r *renderer) draw(e *eye, dc *drawCall) error {
	m := dc.material
	p := m.Program()
	if p == nil {
		return fmt.Errorf("renderer: material %s drawn before it was compiled", m.Name())
	}
	if dc.geometry.RequiresBuild() {
		if err := r.buildGeometry(dc.geometry); err != nil {
			return err
		}
	}

	r.state.useProgram(p)
	bound := r.state.useMaterial(m)
	if bound {
		r.stats.MaterialReuses++
	}

	r.upload(p, uniformModelMatrix, dc.model)
	r.upload(p, uniformModelViewMatrix, dc.modelView)
	r.upload(p, uniformProjectionMatrix, e.projection)
	r.upload(p, uniformNormalMatrix, dc.normal)
	r.upload(p, uniformViewMatrix, e.view)
	r.upload(p, uniformCameraPosition, e.position)
	r.upload(p, uniformCameraNear, e.near)
	r.upload(p, uniformCameraFar, e.far)

	unit := 0
	for _, u := range m.Uniforms() {
		locs := u.Locations()
		if len(locs) == 0 {
			continue
		}
		if u.Type() == material.UniformTexture {
			if u.IsArray() {
				for i, t := range u.Textures() {
					if err := r.bindTexture(p, locs[i], unit, t); err != nil {
						return err
					}
					unit++
				}
			} else {
				if err := r.bindTexture(p, locs[0], unit, u.Texture()); err != nil {
					return err
				}
				unit++
			}
		} else if !bound || u.RequiresUpdate() {
			r.uploadAt(p, locs[0], uploadValue(u.Value()))
		}
		u.MarkUploaded()
	}

	st := m.State()
	cull := st.Cull
	if dc.invertCull {
		cull = cull.Inverted()
	}
	blend := st.Blend
	if dc.blend != nil {
		blend = *dc.blend
	}
	r.state.setCull(cull)
	r.state.setDepth(backend.DepthState{Test: st.DepthTest, Write: st.DepthWrite, Func: st.DepthFunc})
	r.state.setBlend(blend)
	r.state.setLineWidth(st.LineWidth)
	r.state.setStencil(dc.stencil)
	r.state.bindAttributes(m, dc.geometry)

	r.backend.Draw(dc.primitive, dc.geometry.IndexBuffer(), dc.geometry.Count())
	r.stats.DrawCalls++
	return nil
}
