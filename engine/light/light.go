// Package light holds the light model drawn by the deferred lighting passes and the shadow data of
// shadow casting directional lights.
package light

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// LightType identifies the kind of light source.
type LightType int

const (
	// LightTypeDirectional is an infinitely distant light shining along a direction. It is drawn as
	// a screen quad and may cast shadows.
	LightTypeDirectional LightType = iota

	// LightTypePoint emits in every direction from a position up to its range. It is drawn as a
	// sphere volume.
	LightTypePoint

	// LightTypeSpot emits a cone from a position along a direction. It is drawn as a sphere volume.
	LightTypeSpot

	// LightTypeAmbient adds a constant term everywhere. It is drawn as a screen quad.
	LightTypeAmbient
)

func (t LightType) String() string {
	switch t {
	case LightTypeDirectional:
		return "directional"
	case LightTypePoint:
		return "point"
	case LightTypeSpot:
		return "spot"
	case LightTypeAmbient:
		return "ambient"
	default:
		return fmt.Sprintf("LightType(%d)", int(t))
	}
}

// IsVolume reports whether the light is drawn as a world-space volume rather than a screen quad.
func (t LightType) IsVolume() bool {
	return t == LightTypePoint || t == LightTypeSpot
}

type lightImpl struct {
	lightType  LightType
	position   mgl32.Vec3
	direction  mgl32.Vec3
	color      mgl32.Vec3
	intensity  float32
	lightRange float32
	innerCone  float32 // stored as cos(angle in radians)
	outerCone  float32 // stored as cos(angle in radians)
	enabled    bool
	shadow     *Shadow
}

// Light defines the interface for a light source.
// Positions and directions are in the space of the node carrying the light.
type Light interface {
	// Type returns the light type.
	//
	// Returns:
	//   - LightType: the light type
	Type() LightType

	// Position returns the light position. Ignored by directional and ambient lights.
	//
	// Returns:
	//   - mgl32.Vec3: the position
	Position() mgl32.Vec3

	// Direction returns the normalized direction the light shines along.
	//
	// Returns:
	//   - mgl32.Vec3: the direction
	Direction() mgl32.Vec3

	// Color returns the linear RGB color.
	//
	// Returns:
	//   - mgl32.Vec3: the color
	Color() mgl32.Vec3

	// Intensity returns the scalar intensity multiplier.
	//
	// Returns:
	//   - float32: the intensity
	Intensity() float32

	// Range returns the distance at which point and spot lights fade to zero.
	//
	// Returns:
	//   - float32: the range
	Range() float32

	// InnerCone returns the cosine of the spot inner half-angle.
	//
	// Returns:
	//   - float32: the cosine
	InnerCone() float32

	// OuterCone returns the cosine of the spot outer half-angle.
	//
	// Returns:
	//   - float32: the cosine
	OuterCone() float32

	// Enabled reports whether the light is drawn.
	//
	// Returns:
	//   - bool: true if enabled
	Enabled() bool

	// CastsShadows reports whether the light renders a shadow map. Only directional lights cast.
	//
	// Returns:
	//   - bool: true if a shadow map is rendered for the light
	CastsShadows() bool

	// Shadow returns the shadow data, or nil if the light does not cast shadows.
	//
	// Returns:
	//   - *Shadow: the shadow data
	Shadow() *Shadow

	// SetPosition sets the light position.
	//
	// Parameters:
	//   - p: the position
	SetPosition(p mgl32.Vec3)

	// SetDirection sets and normalizes the light direction.
	//
	// Parameters:
	//   - d: the direction
	SetDirection(d mgl32.Vec3)

	// SetColor sets the light color.
	//
	// Parameters:
	//   - c: the linear RGB color
	SetColor(c mgl32.Vec3)

	// SetIntensity sets the intensity multiplier.
	//
	// Parameters:
	//   - intensity: the intensity
	SetIntensity(intensity float32)

	// SetRange sets the range of point and spot lights.
	//
	// Parameters:
	//   - lightRange: the range
	SetRange(lightRange float32)

	// SetSpotCone sets the spot half-angles in degrees.
	//
	// Parameters:
	//   - innerDeg: the inner half-angle
	//   - outerDeg: the outer half-angle
	SetSpotCone(innerDeg, outerDeg float32)

	// SetEnabled enables or disables the light.
	//
	// Parameters:
	//   - enabled: true to draw the light
	SetEnabled(enabled bool)

	// SetShadow attaches shadow data to a directional light. Nil disables shadows.
	// Panics for any other light type.
	//
	// Parameters:
	//   - s: the shadow data
	SetShadow(s *Shadow)
}

var _ Light = &lightImpl{}

// NewLight creates a light of the given type.
//
// Parameters:
//   - lightType: the type of light
//   - opts: variadic list of LightBuilderOption functions to configure the light
//
// Returns:
//   - Light: the light
func NewLight(lightType LightType, opts ...LightBuilderOption) Light {
	l := &lightImpl{
		lightType:  lightType,
		direction:  mgl32.Vec3{0, -1, 0},
		color:      mgl32.Vec3{1, 1, 1},
		intensity:  1.0,
		lightRange: 10.0,
		innerCone:  0.9063, // cos(25°)
		outerCone:  0.8192, // cos(35°)
		enabled:    true,
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.shadow != nil && lightType != LightTypeDirectional {
		panic(fmt.Sprintf("light: %s lights cannot cast shadows", lightType))
	}
	return l
}

func (l *lightImpl) Type() LightType {
	return l.lightType
}

func (l *lightImpl) Position() mgl32.Vec3 {
	return l.position
}

func (l *lightImpl) Direction() mgl32.Vec3 {
	return l.direction
}

func (l *lightImpl) Color() mgl32.Vec3 {
	return l.color
}

func (l *lightImpl) Intensity() float32 {
	return l.intensity
}

func (l *lightImpl) Range() float32 {
	return l.lightRange
}

func (l *lightImpl) InnerCone() float32 {
	return l.innerCone
}

func (l *lightImpl) OuterCone() float32 {
	return l.outerCone
}

func (l *lightImpl) Enabled() bool {
	return l.enabled
}

func (l *lightImpl) CastsShadows() bool {
	return l.shadow != nil && l.shadow.Enabled
}

func (l *lightImpl) Shadow() *Shadow {
	return l.shadow
}

func (l *lightImpl) SetPosition(p mgl32.Vec3) {
	l.position = p
}

func (l *lightImpl) SetDirection(d mgl32.Vec3) {
	l.direction = normalize(d)
}

func (l *lightImpl) SetColor(c mgl32.Vec3) {
	l.color = c
}

func (l *lightImpl) SetIntensity(intensity float32) {
	l.intensity = intensity
}

func (l *lightImpl) SetRange(lightRange float32) {
	l.lightRange = lightRange
}

func (l *lightImpl) SetSpotCone(innerDeg, outerDeg float32) {
	l.innerCone = cosDeg(innerDeg)
	l.outerCone = cosDeg(outerDeg)
}

func (l *lightImpl) SetEnabled(enabled bool) {
	l.enabled = enabled
}

func (l *lightImpl) SetShadow(s *Shadow) {
	if s != nil && l.lightType != LightTypeDirectional {
		panic(fmt.Sprintf("light: %s lights cannot cast shadows", l.lightType))
	}
	if l.shadow != nil && l.shadow != s {
		l.shadow.Dispose()
	}
	l.shadow = s
}
