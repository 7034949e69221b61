package material

import "fmt"

// PassType identifies a stage of the frame a program is drawn in.
type PassType int

const (
	// PassGBuffer writes albedo and opacity.
	PassGBuffer PassType = iota

	// PassGBuffer2 writes normal, linear depth, shininess and the shadow factor.
	PassGBuffer2

	// PassLight accumulates light contributions of solid surfaces.
	PassLight

	// PassTransparentLight accumulates light contributions of transparent surfaces.
	PassTransparentLight

	// PassShadow renders casters into a shadow map.
	PassShadow

	// PassComposition combines the g-buffers with accumulated light.
	PassComposition

	// PassScreen blits the composed frame to its destination.
	PassScreen

	// PassSky draws the skybox behind everything else.
	PassSky

	// PassTexture renders shader-driven textures.
	PassTexture

	// PassPre is an auxiliary pass a material runs before the g-buffer passes.
	PassPre
)

func (p PassType) String() string {
	switch p {
	case PassGBuffer:
		return "gbuffer"
	case PassGBuffer2:
		return "gbuffer2"
	case PassLight:
		return "light"
	case PassTransparentLight:
		return "transparent-light"
	case PassShadow:
		return "shadow"
	case PassComposition:
		return "composition"
	case PassScreen:
		return "screen"
	case PassSky:
		return "sky"
	case PassTexture:
		return "texture"
	case PassPre:
		return "pre"
	default:
		return fmt.Sprintf("PassType(%d)", int(p))
	}
}
