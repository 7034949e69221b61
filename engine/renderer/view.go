package renderer

import (
	"github.com/MKHenson/trike3d-sub000/engine/camera"
	"github.com/MKHenson/trike3d-sub000/engine/renderer/pass"
	"github.com/MKHenson/trike3d-sub000/engine/renderer/texture"
	"github.com/MKHenson/trike3d-sub000/engine/scene"
	"github.com/go-gl/mathgl/mgl32"
)

// view is one rendering of the scene from a camera into a pass collection: the main frame, a
// mirror reflection or a cube face. Buckets are reused across frames.
type view struct {
	eye
	collection *pass.Collection
	textures   map[*texture.RenderTarget]*texture.TargetTexture
	corners    []mgl32.Vec3
	screenSize mgl32.Vec2

	// exclude is left out of the buckets, invertCull flips the cull mode of every draw.
	exclude    *scene.Mesh
	invertCull bool

	solids       []*scene.Mesh
	transparents []*scene.Mesh
	lights       []*scene.Light
}

func newView(c *pass.Collection) *view {
	return &view{
		collection: c,
		textures:   make(map[*texture.RenderTarget]*texture.TargetTexture),
		corners:    make([]mgl32.Vec3, 4),
	}
}

// texture returns a cached view of the first color attachment of t, so uniform values stay
// pointer-equal from frame to frame.
func (v *view) texture(t *texture.RenderTarget) *texture.TargetTexture {
	tt, ok := v.textures[t]
	if !ok {
		tt = t.Texture(0)
		v.textures[t] = tt
	}
	return tt
}

// bucket returns the meshes of one bucket when filter selects it, nil otherwise.
func (v *view) bucket(filter, b pass.Filter) []*scene.Mesh {
	if !filter.Has(b) {
		return nil
	}
	switch b {
	case pass.FilterSolid:
		return v.solids
	case pass.FilterTransparent:
		return v.transparents
	default:
		return nil
	}
}

// setCamera points the view at a camera and refreshes the derived uniforms.
func (v *view) setCamera(c camera.Camera) {
	v.look(c)
	copy(v.corners, v.farCorners[:])
	w, h := v.collection.Size()
	v.screenSize = mgl32.Vec2{float32(w), float32(h)}
}

// cull refills the buckets from the scene inventory. Meshes and perspective light volumes are
// tested in one batch; results are consumed in input order. When record is set the Culled flag
// of every mesh is updated.
func (r *renderer) cull(v *view, record bool) {
	v.solids = v.solids[:0]
	v.transparents = v.transparents[:0]
	v.lights = v.lights[:0]

	meshes := r.collection.Meshes
	r.visuals = append(r.visuals[:0], meshes...)
	for _, l := range r.collection.PerspectiveLights {
		r.visuals = append(r.visuals, l.Mesh)
	}

	keep := r.culler.cull(r.visuals, &v.frustum, v.farCorners)
	for i, m := range meshes {
		if record {
			m.SetCulled(!keep[i])
		}
		if !keep[i] || m == v.exclude {
			if record && !keep[i] {
				r.stats.CulledVisuals++
			}
			continue
		}
		if m.Transparent() {
			v.transparents = append(v.transparents, m)
		} else {
			v.solids = append(v.solids, m)
		}
	}
	for i, l := range r.collection.PerspectiveLights {
		k := keep[len(meshes)+i]
		if record {
			l.SetCulled(!k)
		}
		if k {
			v.lights = append(v.lights, l)
		}
	}
	if record {
		r.stats.SolidVisuals = len(v.solids)
	}
}
