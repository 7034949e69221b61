package renderer

import (
	"fmt"

	"github.com/MKHenson/trike3d-sub000/common"
	"github.com/MKHenson/trike3d-sub000/engine/camera"
	"github.com/MKHenson/trike3d-sub000/engine/renderer/material"
	"github.com/MKHenson/trike3d-sub000/engine/renderer/pass"
	"github.com/MKHenson/trike3d-sub000/engine/renderer/texture"
	"github.com/MKHenson/trike3d-sub000/engine/scene"
)

// subView returns the view rendering into target, creating a pass collection of the target size on
// first use and resizing it when the target changed size.
func (r *renderer) subView(target *texture.RenderTarget, label string) *view {
	v, ok := r.views[target]
	if !ok {
		c := pass.NewCollection(label, target.Width(), target.Height(),
			pass.WithCollectionClearColor(r.frameClearColor()))
		v = newView(c)
		r.views[target] = v
		return v
	}
	v.collection.Resize(target.Width(), target.Height())
	return v
}

// frameClearColor combines the clear color and alpha.
func (r *renderer) frameClearColor() common.Color {
	c := r.clearColor
	c.A = r.clearAlpha
	return c
}

// renderSubView draws the scene from cam into one face of target.
func (r *renderer) renderSubView(v *view, cam camera.Camera, target *texture.RenderTarget, face int) error {
	v.setCamera(cam)
	r.cull(v, false)
	return r.renderView(v, target, face)
}

// renderMirrors renders the reflection of every active, unculled mirror into its target. The mirror
// plane itself is left out and face winding flips because the reflection camera is mirrored.
func (r *renderer) renderMirrors(primary camera.Camera) error {
	for i, m := range r.collection.Mirrors {
		if !m.Active() || m.Mesh.Culled() {
			continue
		}
		m.UpdateReflection(primary)

		v := r.subView(m.Target(), fmt.Sprintf("mirror-%d", i))
		v.exclude = m.Mesh
		v.invertCull = true
		if err := r.renderSubView(v, m.Camera(), m.Target(), 0); err != nil {
			return fmt.Errorf("mirror %s: %w", m.Name(), err)
		}
		r.stats.MirrorRenders++
	}
	return nil
}

// renderCubes renders the six faces of every active cube renderer. Mipmaps are generated once,
// after the last face.
func (r *renderer) renderCubes() error {
	if len(r.collection.CubeRenderers) == 0 || !r.cubeTargets {
		return nil
	}
	for i, c := range r.collection.CubeRenderers {
		if !c.Active() {
			continue
		}
		target := c.Target()
		if err := target.Build(r.backend); err != nil {
			return err
		}
		c.UpdateCameras()
		v := r.subView(target, fmt.Sprintf("cube-%d", i))

		mipmaps := target.Mipmaps()
		for face := range scene.CubeFaces {
			target.SetMipmaps(mipmaps && face == scene.CubeFaces-1)
			if err := r.renderSubView(v, c.Camera(face), target, face); err != nil {
				target.SetMipmaps(mipmaps)
				return fmt.Errorf("cube %s face %d: %w", c.Name(), face, err)
			}
			r.stats.CubeFaces++
		}
		target.SetMipmaps(mipmaps)
	}
	return nil
}

// renderConvolvers blurs the source of every pending convolver into its cube target, face by face.
func (r *renderer) renderConvolvers() error {
	if !r.cubeTargets {
		return nil
	}
	texturePass := r.main.collection.Pass(material.PassTexture)
	for _, c := range r.collection.Convolvers {
		if !c.RequiresDraw() {
			continue
		}
		target := c.Target()
		for face := range scene.CubeFaces {
			c.PrepareFace(face)
			if err := target.Bind(r.backend, face); err != nil {
				return err
			}
			r.backend.Clear(texturePass.AutoClear(), texturePass.ClearColor())
			dc := r.screenCall(c.Material())
			dc.stencil = stencilFor(stencilOff, 0)
			if err := r.draw(&r.main.eye, &dc); err != nil {
				return err
			}
		}
		target.GenerateMipmaps(r.backend)
		c.MarkDrawn()
	}
	return nil
}

// renderShaderTextures draws every shader texture that is animated or not yet drawn.
func (r *renderer) renderShaderTextures(textures []*material.ShaderTexture) error {
	texturePass := r.main.collection.Pass(material.PassTexture)
	for _, t := range textures {
		if !t.RequiresDraw() {
			continue
		}
		target := t.Target()
		if err := target.Bind(r.backend, 0); err != nil {
			return err
		}
		r.backend.Clear(texturePass.AutoClear(), texturePass.ClearColor())
		dc := r.screenCall(t.Material())
		dc.stencil = stencilFor(stencilOff, 0)
		if err := r.draw(&r.main.eye, &dc); err != nil {
			return err
		}
		target.GenerateMipmaps(r.backend)
		if !t.Animated() {
			t.MarkDrawn()
		}
	}
	return nil
}
