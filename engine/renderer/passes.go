package renderer

import (
	"github.com/MKHenson/trike3d-sub000/engine/renderer/backend"
	"github.com/MKHenson/trike3d-sub000/engine/renderer/material"
	"github.com/MKHenson/trike3d-sub000/engine/renderer/pass"
	"github.com/MKHenson/trike3d-sub000/engine/renderer/texture"
	"github.com/MKHenson/trike3d-sub000/engine/scene"
)

// renderView draws the solid, transparency and post stages of a view and blits the result to
// dest, or to the default surface when dest is nil.
func (r *renderer) renderView(v *view, dest *texture.RenderTarget, face int) error {
	c := v.collection
	if err := c.Build(r.backend); err != nil {
		return err
	}
	c.ResetFrame()

	if err := r.renderSolids(v); err != nil {
		return err
	}
	if err := r.renderTransparency(v); err != nil {
		return err
	}
	if err := r.renderPost(v); err != nil {
		return err
	}
	return r.blit(v, dest, face)
}

// begin starts a pass of the view collection with the view camera and returns its filter.
func (r *renderer) begin(v *view, t material.PassType) (pass.Filter, error) {
	p := v.collection.Pass(t)
	p.SetCamera(v.camera)
	if err := p.Begin(r.backend, 0); err != nil {
		return pass.FilterNone, err
	}
	return p.Filter(), nil
}

// renderSolids clears the frame, draws the sky, fills the g-buffers with the solid bucket,
// accumulates light and composites.
func (r *renderer) renderSolids(v *view) error {
	f, err := r.begin(v, material.PassSky)
	if err != nil {
		return err
	}
	for _, sky := range r.collection.Skyboxes {
		if !sky.Visible() || !f.Has(pass.FilterSky) {
			continue
		}
		pm, ok := sky.Material().Pass(material.PassSky)
		if !ok {
			continue
		}
		sky.Material().SetUniform(material.UniformFrustumCorners, v.corners, true)
		dc := meshCall(sky.Mesh, pm, &v.eye)
		dc.stencil = stencilFor(stencilSkyWrite, 0)
		if err := r.draw(&v.eye, &dc); err != nil {
			return err
		}
	}

	if f, err = r.begin(v, material.PassGBuffer); err != nil {
		return err
	}
	write := stencilFor(stencilSolidWrite, 0)
	if err := r.drawGBuffer(v, v.bucket(f, pass.FilterSolid), write); err != nil {
		return err
	}

	if f, err = r.begin(v, material.PassGBuffer2); err != nil {
		return err
	}
	read := stencilFor(stencilSolidRead, 0)
	for _, m := range v.bucket(f, pass.FilterSolid) {
		if err := r.drawPass(v, m, material.PassGBuffer2, read); err != nil {
			return err
		}
	}

	if f, err = r.begin(v, material.PassLight); err != nil {
		return err
	}
	if f.Has(pass.FilterLights) {
		if err := r.drawLights(v, material.PassLight, read); err != nil {
			return err
		}
	}

	return r.composite(v, read, nil)
}

// drawGBuffer draws the pre-passes of every mesh, then their albedo pass.
func (r *renderer) drawGBuffer(v *view, meshes []*scene.Mesh, stencil backend.StencilState) error {
	for _, m := range meshes {
		for _, pre := range m.Material().PrePasses() {
			dc := meshCall(m, pre, &v.eye)
			dc.stencil = stencil
			dc.invertCull = v.invertCull
			if err := r.draw(&v.eye, &dc); err != nil {
				return err
			}
		}
	}
	for _, m := range meshes {
		if err := r.drawPass(v, m, material.PassGBuffer, stencil); err != nil {
			return err
		}
	}
	return nil
}

// drawPass draws a mesh with its material of one pass type, if it has one.
func (r *renderer) drawPass(v *view, m *scene.Mesh, pt material.PassType, stencil backend.StencilState) error {
	pm, ok := m.Material().Pass(pt)
	if !ok {
		return nil
	}
	dc := meshCall(m, pm, &v.eye)
	dc.stencil = stencil
	dc.invertCull = v.invertCull
	return r.draw(&v.eye, &dc)
}

// drawLights accumulates every kept light into the bound light target. Volume lights are culled
// by the view; screen lights only need to be enabled.
func (r *renderer) drawLights(v *view, pt material.PassType, stencil backend.StencilState) error {
	gBuffer := v.texture(v.collection.GBuffer())
	gBuffer2 := v.texture(v.collection.GBuffer2())

	drawLight := func(l *scene.Light) error {
		m := l.Material()
		pm, ok := m.Pass(pt)
		if !ok {
			return nil
		}
		l.UpdateUniforms(v.view)
		m.SetUniform(material.UniformGBuffer, texture.Texture(gBuffer), true)
		m.SetUniform(material.UniformGBuffer2, texture.Texture(gBuffer2), true)
		m.SetUniform(material.UniformFrustumCorners, v.corners, true)
		m.SetUniform(material.UniformScreenSize, v.screenSize, true)

		dc := meshCall(l.Mesh, pm, &v.eye)
		dc.stencil = stencil
		// Light volumes are drawn from the inside, so their cull mode does not follow mirroring.
		return r.draw(&v.eye, &dc)
	}

	for _, l := range v.lights {
		if err := drawLight(l); err != nil {
			return err
		}
	}
	for _, l := range r.collection.ScreenLights {
		if !l.Visible() {
			continue
		}
		if err := drawLight(l); err != nil {
			return err
		}
	}
	return nil
}

// composite combines the g-buffer albedo with the light buffer into the composition target.
func (r *renderer) composite(v *view, stencil backend.StencilState, blend *backend.BlendState) error {
	c := v.collection
	if _, err := r.begin(v, material.PassComposition); err != nil {
		return err
	}
	r.composition.SetUniform(material.UniformGBuffer, texture.Texture(v.texture(c.GBuffer())))
	r.composition.SetUniform(material.UniformLightBuffer, texture.Texture(v.texture(c.LightBuffer())))

	dc := r.screenCall(r.composition)
	dc.stencil = stencil
	dc.blend = blend
	if err := r.draw(&v.eye, &dc); err != nil {
		return err
	}
	r.stats.Compositions++
	return nil
}

// renderTransparency lights the transparent bucket back to front, either as one unit or one mesh
// per unit, and blends each unit over the composition target.
func (r *renderer) renderTransparency(v *view) error {
	meshes := v.bucket(v.collection.Pass(material.PassGBuffer).Filter(), pass.FilterTransparent)
	if len(meshes) == 0 {
		return nil
	}
	for _, m := range meshes {
		m.PrepareForPostSolid()
	}
	r.sorter.Sort(meshes, v.viewProjection)

	if r.quality == TransparencyQualityLow {
		return r.renderTransparentUnit(v, meshes, 0)
	}
	for i := range meshes {
		if err := r.renderTransparentUnit(v, meshes[i:i+1], i); err != nil {
			return err
		}
	}
	return nil
}

func (r *renderer) renderTransparentUnit(v *view, meshes []*scene.Mesh, unit int) error {
	c := v.collection
	ref := transparentRef(unit)
	write := stencilFor(stencilTransparentWrite, ref)
	read := stencilFor(stencilTransparentRead, ref)

	// The g-buffers keep their solid contents outside the unit's pixels.
	if err := c.GBuffer().Bind(r.backend, 0); err != nil {
		return err
	}
	if err := r.drawGBuffer(v, meshes, write); err != nil {
		return err
	}
	if err := c.GBuffer2().Bind(r.backend, 0); err != nil {
		return err
	}
	for _, m := range meshes {
		if err := r.drawPass(v, m, material.PassGBuffer2, read); err != nil {
			return err
		}
	}

	f, err := r.begin(v, material.PassTransparentLight)
	if err != nil {
		return err
	}
	if f.Has(pass.FilterLights) {
		if err := r.drawLights(v, material.PassTransparentLight, read); err != nil {
			return err
		}
	}

	blend := backend.BlendAlpha
	if err := r.composite(v, stencilFor(stencilTransparentResolve, ref), &blend); err != nil {
		return err
	}
	r.stats.TransparentUnits++
	return nil
}

// renderPost runs the post passes of the view camera, alternating between the composition and
// post targets.
func (r *renderer) renderPost(v *view) error {
	c := v.collection
	for _, m := range v.camera.PostPasses() {
		if _, ok := m.Uniform(material.UniformFrame); ok {
			m.SetUniform(material.UniformFrame, texture.Texture(v.texture(c.Frame())))
		}
		if err := c.NextFrame().Bind(r.backend, 0); err != nil {
			return err
		}
		dc := r.screenCall(m)
		dc.stencil = stencilFor(stencilOff, 0)
		if err := r.draw(&v.eye, &dc); err != nil {
			return err
		}
		c.SwapFrame()
		r.stats.PostPasses++
	}
	return nil
}

// blit copies the current frame of a view to dest through a screen quad.
func (r *renderer) blit(v *view, dest *texture.RenderTarget, face int) error {
	screen := v.collection.Pass(material.PassScreen)
	if dest == nil {
		if err := screen.Begin(r.backend, 0); err != nil {
			return err
		}
		r.backend.SetViewport(r.viewport)
	} else {
		if err := dest.Bind(r.backend, face); err != nil {
			return err
		}
		if flags := screen.AutoClear(); flags != 0 {
			r.backend.Clear(flags, screen.ClearColor())
		}
	}

	r.screen.SetUniform(material.UniformFrame, texture.Texture(v.texture(v.collection.Frame())))
	dc := r.screenCall(r.screen)
	dc.stencil = stencilFor(stencilOff, 0)
	if err := r.draw(&v.eye, &dc); err != nil {
		return err
	}
	if dest != nil {
		dest.GenerateMipmaps(r.backend)
	}
	return nil
}
