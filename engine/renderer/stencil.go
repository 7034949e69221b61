package renderer

import (
	"fmt"

	"github.com/MKHenson/trike3d-sub000/engine/renderer/backend"
)

// Stencil references partitioning the composition target. Sky pixels hold 1, solid pixels 2 and
// the pixels of the transparent unit being lit alternate between 3 and 4.
const (
	StencilSky          uint8 = 1
	StencilSolid        uint8 = 2
	StencilTransparentA uint8 = 3
	StencilTransparentB uint8 = 4
)

// stencilMode is one row of the stencil table.
type stencilMode int

const (
	stencilOff stencilMode = iota
	stencilSkyWrite
	stencilSolidWrite
	stencilSolidRead
	stencilTransparentWrite
	stencilTransparentRead
	stencilTransparentResolve
)

func (m stencilMode) String() string {
	switch m {
	case stencilOff:
		return "off"
	case stencilSkyWrite:
		return "sky-write"
	case stencilSolidWrite:
		return "solid-write"
	case stencilSolidRead:
		return "solid-read"
	case stencilTransparentWrite:
		return "transparent-write"
	case stencilTransparentRead:
		return "transparent-read"
	case stencilTransparentResolve:
		return "transparent-resolve"
	default:
		return fmt.Sprintf("stencilMode(%d)", int(m))
	}
}

// stencilTable holds the state of every mode. Transparent rows take their reference from the unit.
// The resolve row zeroes the pixels it composites so a later unit with the same reference cannot
// blend them a second time.
var stencilTable = [...]backend.StencilState{
	stencilOff:                {},
	stencilSkyWrite:           {Enabled: true, Func: backend.CompareAlways, Ref: StencilSky, Mask: 0xFF, Pass: backend.StencilReplace},
	stencilSolidWrite:         {Enabled: true, Func: backend.CompareAlways, Ref: StencilSolid, Mask: 0xFF, Pass: backend.StencilReplace},
	stencilSolidRead:          {Enabled: true, Func: backend.CompareEqual, Ref: StencilSolid, Mask: 0xFF, Pass: backend.StencilKeep},
	stencilTransparentWrite:   {Enabled: true, Func: backend.CompareAlways, Mask: 0xFF, Pass: backend.StencilReplace},
	stencilTransparentRead:    {Enabled: true, Func: backend.CompareEqual, Mask: 0xFF, Pass: backend.StencilKeep},
	stencilTransparentResolve: {Enabled: true, Func: backend.CompareEqual, Mask: 0xFF, Pass: backend.StencilZero},
}

// transparentRef returns the reference of the n-th transparent unit of a frame.
func transparentRef(unit int) uint8 {
	if unit%2 == 0 {
		return StencilTransparentA
	}
	return StencilTransparentB
}

// stencilFor returns the state of a mode. ref is only used by the transparent modes.
func stencilFor(mode stencilMode, ref uint8) backend.StencilState {
	s := stencilTable[mode]
	switch mode {
	case stencilTransparentWrite, stencilTransparentRead, stencilTransparentResolve:
		s.Ref = ref
	}
	return s
}
