package material

import (
	"fmt"

	"github.com/MKHenson/trike3d-sub000/engine/renderer/shader"
	"github.com/MKHenson/trike3d-sub000/engine/renderer/texture"
	"github.com/go-gl/mathgl/mgl32"
)

// Shadow defines.
const (
	DefineShadowMapping = "SHADOW_MAPPING"
	DefineMaxShadows    = "MAX_SHADOWS"
	DefineShadowVSM     = "SHADOW_VSM"
	DefineShadowPCF     = "SHADOW_PCF"
	DefineShadowPCFSoft = "SHADOW_PCF_SOFT"
)

// Shadow uniforms, one array element per shadow casting light.
const (
	UniformShadowMap      = "shadowMap"
	UniformShadowMapSize  = "shadowMapSize"
	UniformShadowBias     = "shadowBias"
	UniformShadowDarkness = "shadowDarkness"
	UniformShadowMatrix   = "shadowMatrix"
)

var shadowFilterDefines = []string{DefineShadowVSM, DefineShadowPCF, DefineShadowPCFSoft}

// ShadowFilter selects how shadow map lookups are filtered.
type ShadowFilter int

const (
	ShadowFilterNone ShadowFilter = iota
	ShadowFilterPCF
	ShadowFilterPCFSoft
	ShadowFilterVSM
)

func (f ShadowFilter) String() string {
	switch f {
	case ShadowFilterNone:
		return "none"
	case ShadowFilterPCF:
		return "pcf"
	case ShadowFilterPCFSoft:
		return "pcf-soft"
	case ShadowFilterVSM:
		return "vsm"
	default:
		return fmt.Sprintf("ShadowFilter(%d)", int(f))
	}
}

// Define returns the define enabling the filter. ShadowFilterNone has none.
func (f ShadowFilter) Define() (string, bool) {
	switch f {
	case ShadowFilterPCF:
		return DefineShadowPCF, true
	case ShadowFilterPCFSoft:
		return DefineShadowPCFSoft, true
	case ShadowFilterVSM:
		return DefineShadowVSM, true
	default:
		return "", false
	}
}

// ShadowQuality is a coarse preset over the shadow filters.
type ShadowQuality int

const (
	ShadowQualityLow ShadowQuality = iota
	ShadowQualityMedium
	ShadowQualityHigh
)

// Filter returns the filter used by the preset.
func (q ShadowQuality) Filter() ShadowFilter {
	switch q {
	case ShadowQualityMedium:
		return ShadowFilterPCF
	case ShadowQualityHigh:
		return ShadowFilterPCFSoft
	default:
		return ShadowFilterNone
	}
}

// applyMaxShadows resizes the shadow uniform arrays to n elements and keeps the shadow defines in step.
// Zero removes both.
func (m *material) applyMaxShadows(n int) {
	if n < 0 {
		panic(fmt.Sprintf("material: %s: negative shadow count %d", m.name, n))
	}
	if n == m.maxShadows {
		return
	}
	m.maxShadows = n
	m.requiresBuild = true

	names := []string{UniformShadowMap, UniformShadowMapSize, UniformShadowBias, UniformShadowDarkness, UniformShadowMatrix}
	if n == 0 {
		for _, name := range names {
			m.RemoveUniform(name)
		}
		m.defines.Remove(DefineShadowMapping)
		m.defines.Remove(DefineMaxShadows)
		return
	}

	for _, name := range names {
		if u, ok := m.Uniform(name); ok {
			u.Resize(n)
			continue
		}
		switch name {
		case UniformShadowMap:
			m.AddUniform(NewTextureArray(name, make([]texture.Texture, n)))
		case UniformShadowMatrix:
			m.AddUniform(NewMat4Array(name, make([]mgl32.Mat4, n)))
		default:
			m.AddUniform(NewFloatArray(name, make([]float32, n)))
		}
	}
	m.defines.Add(shader.Flag(DefineShadowMapping))
	m.defines.Add(shader.Int(DefineMaxShadows, n))
}

// applyShadowFilter clears every filter define before enabling the selected one.
func (m *material) applyShadowFilter(f ShadowFilter) {
	if f == m.filter {
		return
	}
	changed := false
	for _, name := range shadowFilterDefines {
		changed = m.defines.Remove(name) || changed
	}
	if d, ok := f.Define(); ok {
		changed = m.defines.Add(shader.Flag(d)) || changed
	}
	if changed {
		m.requiresBuild = true
	}
	m.filter = f
}
