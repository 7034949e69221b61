package renderer

import (
	"github.com/MKHenson/trike3d-sub000/engine/geometry"
	"github.com/MKHenson/trike3d-sub000/engine/renderer/backend"
	"github.com/MKHenson/trike3d-sub000/engine/renderer/material"
	"github.com/MKHenson/trike3d-sub000/engine/renderer/texture"
)

// stateCache mirrors the fixed-function and binding state last sent to the backend so redundant
// calls are never issued. Everything is invalidated at the start of each frame.
type stateCache struct {
	b     backend.Backend
	stats *Stats

	program         *material.Program
	material        material.Material
	materialProgram *material.Program

	geometry           geometry.Geometry
	geometryGeneration int
	geometryProgram    *material.Program

	cull      backend.CullMode
	depth     backend.DepthState
	blend     backend.BlendState
	stencil   backend.StencilState
	lineWidth float32
	valid     struct{ cull, depth, blend, stencil, lineWidth bool }

	enabled map[int]bool
	wanted  map[int]bool
	units   map[int]backend.Texture
}

func newStateCache(b backend.Backend, stats *Stats) *stateCache {
	return &stateCache{
		b:       b,
		stats:   stats,
		enabled: make(map[int]bool),
		wanted:  make(map[int]bool),
		units:   make(map[int]backend.Texture),
	}
}

// reset forgets everything so the next frame re-sends its state.
func (s *stateCache) reset() {
	s.program = nil
	s.material = nil
	s.materialProgram = nil
	s.geometry = nil
	s.geometryProgram = nil
	s.valid = struct{ cull, depth, blend, stencil, lineWidth bool }{}
	clear(s.units)
}

func (s *stateCache) useProgram(p *material.Program) {
	if s.program == p {
		return
	}
	s.b.UseProgram(p.Handle())
	s.program = p
	s.stats.ProgramBinds++
}

// useMaterial records the material about to draw and reports whether its uniforms are still bound
// from the previous draw, which requires the same material with the same program.
func (s *stateCache) useMaterial(m material.Material) bool {
	if s.material == m && s.materialProgram == m.Program() {
		return true
	}
	s.material = m
	s.materialProgram = m.Program()
	return false
}

func (s *stateCache) setCull(mode backend.CullMode) {
	if s.valid.cull && s.cull == mode {
		return
	}
	s.b.SetCullMode(mode)
	s.cull, s.valid.cull = mode, true
}

func (s *stateCache) setDepth(d backend.DepthState) {
	if s.valid.depth && s.depth == d {
		return
	}
	s.b.SetDepthState(d)
	s.depth, s.valid.depth = d, true
}

func (s *stateCache) setBlend(bs backend.BlendState) {
	if !bs.Enabled {
		bs = backend.BlendOpaque
	}
	if s.valid.blend && s.blend == bs {
		return
	}
	s.b.SetBlend(bs)
	s.blend, s.valid.blend = bs, true
}

func (s *stateCache) setStencil(st backend.StencilState) {
	if !st.Enabled {
		st = backend.StencilState{}
	}
	if s.valid.stencil && s.stencil == st {
		return
	}
	s.b.SetStencil(st)
	s.stencil, s.valid.stencil = st, true
}

func (s *stateCache) setLineWidth(w float32) {
	if w <= 0 {
		w = 1
	}
	if s.valid.lineWidth && s.lineWidth == w {
		return
	}
	s.b.SetLineWidth(w)
	s.lineWidth, s.valid.lineWidth = w, true
}

// bindAttributes feeds every resolved attribute of m from g. Buffers are re-bound only when the
// geometry, its generation or the program changes, and slots are enabled or disabled only on
// transition.
func (s *stateCache) bindAttributes(m material.Material, g geometry.Geometry) {
	rebind := s.geometry != g || s.geometryGeneration != g.Generation() || s.geometryProgram != s.program
	clear(s.wanted)
	for _, a := range m.Attributes() {
		slot, ok := a.Slot()
		if !ok {
			continue
		}
		buf, components, ok := g.Buffer(a.Name())
		if !ok {
			continue
		}
		if rebind {
			s.b.BindAttribute(slot, buf, components)
		}
		s.wanted[slot] = true
	}
	for slot := range s.wanted {
		if !s.enabled[slot] {
			s.b.EnableAttribute(slot)
			s.enabled[slot] = true
		}
	}
	for slot, on := range s.enabled {
		if on && !s.wanted[slot] {
			s.b.DisableAttribute(slot)
			s.enabled[slot] = false
		}
	}
	s.geometry = g
	s.geometryGeneration = g.Generation()
	s.geometryProgram = s.program
}

// bindTexture makes t resident in a unit unless it already is.
func (s *stateCache) bindTexture(unit int, t texture.Texture) error {
	if !t.RequiresBuild() && s.units[unit] == t.Handle() && t.Handle() != 0 {
		return nil
	}
	if err := t.Compile(s.b, unit); err != nil {
		return err
	}
	s.units[unit] = t.Handle()
	s.stats.TextureBinds++
	return nil
}
