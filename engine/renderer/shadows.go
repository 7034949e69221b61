package renderer

import (
	"github.com/MKHenson/trike3d-sub000/engine/light"
	"github.com/MKHenson/trike3d-sub000/engine/renderer/material"
	"github.com/MKHenson/trike3d-sub000/engine/renderer/pass"
	"github.com/MKHenson/trike3d-sub000/engine/renderer/texture"
	"github.com/MKHenson/trike3d-sub000/engine/scene"
	"github.com/go-gl/mathgl/mgl32"
)

// shadowReceivers holds the per-frame values every shadow receiving material is given, one element
// per shadow casting light.
type shadowReceivers struct {
	maps     []texture.Texture
	sizes    []float32
	bias     []float32
	darkness []float32
	matrices []mgl32.Mat4
}

func (s *shadowReceivers) reset(n int) {
	s.maps = resize(s.maps, n)
	s.sizes = resize(s.sizes, n)
	s.bias = resize(s.bias, n)
	s.darkness = resize(s.darkness, n)
	s.matrices = resize(s.matrices, n)
}

func resize[T any](v []T, n int) []T {
	if cap(v) < n {
		return make([]T, n)
	}
	return v[:n]
}

// collectShadowLights gathers the enabled directional lights whose shadows are drawn this frame.
func (r *renderer) collectShadowLights() []*scene.Light {
	r.shadowLights = r.shadowLights[:0]
	if !r.shadowsEnabled {
		return r.shadowLights
	}
	for _, l := range r.collection.ScreenLights {
		src := l.Source()
		if src.Type() != light.LightTypeDirectional || !src.Enabled() || !src.CastsShadows() {
			continue
		}
		if s := src.Shadow(); s == nil || !s.Enabled {
			continue
		}
		r.shadowLights = append(r.shadowLights, l)
	}
	return r.shadowLights
}

// shadowView returns the cached sampleable view of a shadow map. Reusing the view keeps receiver
// uniforms equal between frames.
func (r *renderer) shadowView(s *light.Shadow) *texture.TargetTexture {
	if t, ok := r.shadowViews[s]; ok {
		return t
	}
	t := s.Target().Texture(0)
	r.shadowViews[s] = t
	return t
}

// renderShadows draws a depth moments map for every shadow casting light and hands the maps and
// matrices to the receivers.
func (r *renderer) renderShadows(center mgl32.Vec3) error {
	n := len(r.shadowLights)
	r.receivers.reset(n)
	if n == 0 {
		return nil
	}

	shadowPass := r.main.collection.Pass(material.PassShadow)
	drawCasters := shadowPass.Filter().Has(pass.FilterCasters)
	for i, l := range r.shadowLights {
		src := l.Source()
		s := src.Shadow()
		s.ComputeShadowMatrix(src.Direction(), center)

		var e eye
		e.look(s.Camera())
		shadowPass.SetCamera(s.Camera())

		if err := s.Target().Bind(r.backend, 0); err != nil {
			return err
		}
		r.backend.Clear(shadowPass.AutoClear(), shadowPass.ClearColor())

		off := stencilFor(stencilOff, 0)
		for _, m := range r.collection.Meshes {
			if !drawCasters || !m.CastShadows() || !Keep(m, &e.frustum, e.farCorners) {
				continue
			}
			var pm material.Material = r.shadowMaterial
			if own, ok := m.Material().Pass(material.PassShadow); ok {
				pm = own
			}
			dc := meshCall(m, pm, &e)
			dc.stencil = off
			if err := r.draw(&e, &dc); err != nil {
				return err
			}
		}
		r.stats.ShadowPasses++

		r.receivers.maps[i] = r.shadowView(s)
		r.receivers.sizes[i] = float32(s.MapSize())
		r.receivers.bias[i] = s.Bias
		r.receivers.darkness[i] = s.Darkness
		r.receivers.matrices[i] = s.Matrix
	}

	for _, m := range r.collection.Meshes {
		cm := m.Material()
		if cm.MaxNumShadows() != n {
			continue
		}
		cm.SetUniform(material.UniformShadowMap, r.receivers.maps, true)
		cm.SetUniform(material.UniformShadowMapSize, r.receivers.sizes, true)
		cm.SetUniform(material.UniformShadowBias, r.receivers.bias, true)
		cm.SetUniform(material.UniformShadowDarkness, r.receivers.darkness, true)
		cm.SetUniform(material.UniformShadowMatrix, r.receivers.matrices, true)
	}
	return nil
}
