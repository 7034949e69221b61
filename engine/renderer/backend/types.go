package backend

import "fmt"

// Type identifies the backend implementation behind a Backend.
type Type int

const (
	// TypeWGPU selects the WebGPU-based backend.
	TypeWGPU Type = iota

	// TypeRecording selects the headless recording backend.
	TypeRecording
)

func (t Type) String() string {
	switch t {
	case TypeWGPU:
		return "wgpu"
	case TypeRecording:
		return "recording"
	default:
		return fmt.Sprintf("Type(%d)", int(t))
	}
}

// PresentMode controls how rendered frames are presented to the display surface.
type PresentMode int

const (
	// PresentModeVSync waits for the next vertical blank before presenting, capping frame rate
	// to the monitor's refresh rate. Eliminates tearing.
	PresentModeVSync PresentMode = iota

	// PresentModeUncapped presents frames immediately without waiting for vertical blank.
	// May cause screen tearing but provides the lowest latency.
	PresentModeUncapped
)

// Handle types. The zero value of each is "no object".
type (
	Program uint32
	Buffer  uint32
	Texture uint32
	Target  uint32
)

// DefaultTarget is the presentation surface.
const DefaultTarget Target = 0

// Location identifies a uniform inside a linked program.
type Location struct {
	Group   int
	Binding int
}

func (l Location) String() string {
	return fmt.Sprintf("@group(%d) @binding(%d)", l.Group, l.Binding)
}

// TextureUnit is the value uploaded to a texture uniform: the unit its texture was bound to.
type TextureUnit int

// Stage names the step of program creation that produced a ShaderError.
type Stage int

const (
	StageVertex Stage = iota
	StageFragment
	StageLink
)

func (s Stage) String() string {
	switch s {
	case StageVertex:
		return "vertex"
	case StageFragment:
		return "fragment"
	case StageLink:
		return "link"
	default:
		return fmt.Sprintf("Stage(%d)", int(s))
	}
}

// ShaderError carries the diagnostic produced by the backend when a shader stage fails to
// compile or a program fails to link.
type ShaderError struct {
	Stage Stage
	Log   string
}

func (e *ShaderError) Error() string {
	return fmt.Sprintf("%s shader: %s", e.Stage, e.Log)
}

// BufferKind describes how a buffer is bound.
type BufferKind int

const (
	BufferVertex BufferKind = iota
	BufferIndex
)

// TextureFormat is the texel format of a texture or render target color attachment.
type TextureFormat int

const (
	FormatRGBA8 TextureFormat = iota
	FormatRGBA16F
	FormatRGBA32F
)

// IsFloat reports whether the format stores floating point texels.
func (f TextureFormat) IsFloat() bool {
	return f == FormatRGBA16F || f == FormatRGBA32F
}

// BytesPerTexel returns the size of a single texel.
func (f TextureFormat) BytesPerTexel() int {
	switch f {
	case FormatRGBA16F:
		return 8
	case FormatRGBA32F:
		return 16
	default:
		return 4
	}
}

// FilterMode selects texture sampling.
type FilterMode int

const (
	FilterLinear FilterMode = iota
	FilterNearest
)

// WrapMode selects texture addressing outside [0, 1].
type WrapMode int

const (
	WrapClamp WrapMode = iota
	WrapRepeat
	WrapMirror
)

// TextureDescriptor describes a sampled texture.
type TextureDescriptor struct {
	Label     string
	Width     int
	Height    int
	Format    TextureFormat
	Cube      bool
	MipLevels int
	Filter    FilterMode
	Wrap      WrapMode
}

// TargetDescriptor describes an offscreen render target.
type TargetDescriptor struct {
	Label  string
	Width  int
	Height int
	Format TextureFormat

	// Colors is the number of color attachments. Zero means one.
	Colors int

	// Depth adds a depth-stencil attachment. Ignored when ShareDepth is set.
	Depth bool

	// ShareDepth reuses the depth-stencil attachment of an existing target of equal size.
	ShareDepth Target

	Cube    bool
	Mipmaps bool
	Filter  FilterMode
	Wrap    WrapMode
}

// ClearFlags selects the attachments cleared by Backend.Clear.
type ClearFlags uint8

const (
	ClearColor ClearFlags = 1 << iota
	ClearDepth
	ClearStencil

	ClearAll = ClearColor | ClearDepth | ClearStencil
)

// CullMode selects which triangle faces are discarded.
type CullMode int

const (
	CullBack CullMode = iota
	CullFront
	CullNone
)

// Inverted swaps front and back culling. CullNone is returned unchanged.
func (c CullMode) Inverted() CullMode {
	switch c {
	case CullBack:
		return CullFront
	case CullFront:
		return CullBack
	default:
		return c
	}
}

// CompareFunc is a depth or stencil comparison.
type CompareFunc int

const (
	CompareLessEqual CompareFunc = iota
	CompareLess
	CompareEqual
	CompareGreater
	CompareGreaterEqual
	CompareNotEqual
	CompareAlways
	CompareNever
)

func (f CompareFunc) String() string {
	return [...]string{"LEQUAL", "LESS", "EQUAL", "GREATER", "GEQUAL", "NOTEQUAL", "ALWAYS", "NEVER"}[f]
}

// Compare applies the function as "ref <op> value".
func (f CompareFunc) Compare(ref, value uint32) bool {
	switch f {
	case CompareLessEqual:
		return ref <= value
	case CompareLess:
		return ref < value
	case CompareEqual:
		return ref == value
	case CompareGreater:
		return ref > value
	case CompareGreaterEqual:
		return ref >= value
	case CompareNotEqual:
		return ref != value
	case CompareAlways:
		return true
	default:
		return false
	}
}

// DepthState is the depth test configuration.
type DepthState struct {
	Test  bool
	Write bool
	Func  CompareFunc
}

// BlendFactor is a blend source or destination factor.
type BlendFactor int

const (
	BlendOne BlendFactor = iota
	BlendZero
	BlendSrcAlpha
	BlendOneMinusSrcAlpha
	BlendDstColor
	BlendSrcColor
)

// BlendEquation combines the weighted source and destination.
type BlendEquation int

const (
	BlendAdd BlendEquation = iota
	BlendSubtract
	BlendReverseSubtract
)

// BlendState is the color blend configuration.
type BlendState struct {
	Enabled  bool
	Src      BlendFactor
	Dst      BlendFactor
	Equation BlendEquation
}

var (
	// BlendOpaque disables blending.
	BlendOpaque = BlendState{}

	// BlendAdditive sums source and destination.
	BlendAdditive = BlendState{Enabled: true, Src: BlendOne, Dst: BlendOne, Equation: BlendAdd}

	// BlendAlpha is standard premultiplied-free alpha blending.
	BlendAlpha = BlendState{Enabled: true, Src: BlendSrcAlpha, Dst: BlendOneMinusSrcAlpha, Equation: BlendAdd}
)

// StencilOp is applied to the stencil value after the stencil and depth tests.
type StencilOp int

const (
	StencilKeep StencilOp = iota
	StencilZero
	StencilReplace
	StencilIncrement
	StencilDecrement
	StencilInvert
)

func (o StencilOp) String() string {
	return [...]string{"KEEP", "ZERO", "REPLACE", "INCR", "DECR", "INVERT"}[o]
}

// Apply returns the stencil value after applying the op.
func (o StencilOp) Apply(current, ref uint8) uint8 {
	switch o {
	case StencilZero:
		return 0
	case StencilReplace:
		return ref
	case StencilIncrement:
		if current == 0xFF {
			return current
		}
		return current + 1
	case StencilDecrement:
		if current == 0 {
			return current
		}
		return current - 1
	case StencilInvert:
		return ^current
	default:
		return current
	}
}

// StencilState is the stencil test configuration shared by front and back faces.
type StencilState struct {
	Enabled   bool
	Func      CompareFunc
	Ref       uint8
	Mask      uint8
	Fail      StencilOp
	DepthFail StencilOp
	Pass      StencilOp
}

// Primitive is the topology used by Draw.
type Primitive int

const (
	PrimitiveTriangles Primitive = iota
	PrimitiveLines
	PrimitivePoints
)

// Capabilities lists the optional features a backend supports.
type Capabilities struct {
	FloatTargets    bool
	CubeTargets     bool
	MaxTextureUnits int
	MaxTextureSize  int
}
