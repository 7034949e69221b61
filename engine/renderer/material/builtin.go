package material

import (
	"embed"
	"fmt"
	"path"
	"strings"

	"github.com/MKHenson/trike3d-sub000/common"
	"github.com/MKHenson/trike3d-sub000/engine/renderer/backend"
	"github.com/MKHenson/trike3d-sub000/engine/renderer/shader"
	"github.com/MKHenson/trike3d-sub000/engine/renderer/texture"
	"github.com/go-gl/mathgl/mgl32"
)

//go:embed assets/*.wgsl assets/chunks/*.wgsl
var assetFS embed.FS

// Uniform names read by the built-in materials.
const (
	UniformDiffuse        = "diffuse"
	UniformOpacity        = "opacity"
	UniformShininess      = "shininess"
	UniformDiffuseMap     = "diffuseMap"
	UniformMirrorMap      = "mirrorMap"
	UniformTextureMatrix  = "textureMatrix"
	UniformReflectivity   = "reflectivity"
	UniformGBuffer        = "gBuffer"
	UniformGBuffer2       = "gBuffer2"
	UniformLightBuffer    = "lightBuffer"
	UniformFrustumCorners = "frustumCorners"
	UniformScreenSize     = "screenSize"
	UniformLightPosition  = "lightPosition"
	UniformLightDirection = "lightDirection"
	UniformLightColor     = "lightColor"
	UniformLightIntensity = "lightIntensity"
	UniformLightRadius    = "lightRadius"
	UniformLightCone      = "lightCone"
	UniformFrame          = "frame"
	UniformSkyTop         = "skyTop"
	UniformSkyHorizon     = "skyHorizon"
	UniformSkyMap         = "skyMap"
	UniformSource         = "source"
	UniformFaceMatrix     = "faceMatrix"
	UniformSpread         = "spread"
)

// Defines toggled by the built-in materials.
const (
	DefineDiffuseMap = "DIFFUSE_MAP"
	DefineSpotLight  = "SPOT_LIGHT"
	DefineSkyMap     = "SKY_MAP"
)

func init() {
	entries, err := assetFS.ReadDir("assets/chunks")
	if err != nil {
		panic(fmt.Sprintf("material: failed to read embedded chunks: %v", err))
	}
	for _, e := range entries {
		shader.RegisterChunk(strings.TrimSuffix(e.Name(), ".wgsl"), asset(path.Join("chunks", e.Name())))
	}
}

func asset(name string) string {
	data, err := assetFS.ReadFile(path.Join("assets", name))
	if err != nil {
		panic(fmt.Sprintf("material: missing built-in shader %s: %v", name, err))
	}
	return string(data)
}

// template returns an option that assembles both stages from one embedded WGSL file.
func template(id string) MaterialBuilderOption {
	src := asset(id + ".wgsl")
	return WithShader(id, src, src)
}

var (
	shadowCasterState = RenderState{
		Cull:       backend.CullFront,
		DepthTest:  true,
		DepthWrite: true,
		DepthFunc:  backend.CompareLessEqual,
		LineWidth:  1,
	}
	volumeLightState = RenderState{
		Cull:      backend.CullFront,
		DepthTest: true,
		DepthFunc: backend.CompareGreaterEqual,
		Blend:     backend.BlendAdditive,
		LineWidth: 1,
	}
	screenLightState = RenderState{
		Cull:      backend.CullNone,
		DepthTest: true,
		DepthFunc: backend.CompareLessEqual,
		Blend:     backend.BlendAdditive,
		LineWidth: 1,
	}
	fullscreenState = RenderState{
		Cull:      backend.CullNone,
		DepthFunc: backend.CompareAlways,
		LineWidth: 1,
	}
	skyState = RenderState{
		Cull:      backend.CullNone,
		DepthTest: true,
		DepthFunc: backend.CompareLessEqual,
		LineWidth: 1,
	}
)

func standardAttributes() []*Attribute {
	return []*Attribute{
		NewAttribute("position", 3),
		NewAttribute("normal", 3),
		NewAttribute("uv", 2),
	}
}

// NewStandardMaterial creates the default surface material: an albedo pass, a normal/depth pass that
// receives shadows and a shadow caster pass. The diffuse color, opacity and shininess uniforms are
// shared by all three.
//
// Parameters:
//   - name: the material name
//   - diffuse: the surface color
//   - options: variadic list of CompositeMaterialBuilderOption functions applied after the passes are installed
//
// Returns:
//   - CompositeMaterial: the material
func NewStandardMaterial(name string, diffuse common.Color, options ...CompositeMaterialBuilderOption) CompositeMaterial {
	opts := []CompositeMaterialBuilderOption{
		WithCompositeName(name),
		WithPasses(
			NewPassMaterial(PassGBuffer, WithName(name), template("standard_gbuffer")),
			NewPassMaterial(PassGBuffer2, WithName(name), template("standard_gbuffer2"), WithReceiveShadows(true)),
			NewPassMaterial(PassShadow, WithName(name), template("standard_shadow"), WithState(shadowCasterState)),
		),
		WithSharedUniforms(
			NewColor(UniformDiffuse, diffuse),
			NewFloat(UniformOpacity, 1),
			NewFloat(UniformShininess, 30),
		),
		WithSharedAttributes(standardAttributes()...),
	}
	return NewCompositeMaterial(append(opts, options...)...)
}

// SetDiffuseMap samples t as the albedo of every pass of a standard or mirror material. A nil texture
// removes the map.
//
// Parameters:
//   - m: the material
//   - t: the texture
func SetDiffuseMap(m CompositeMaterial, t texture.Texture) {
	if t == nil {
		m.RemoveUniform(UniformDiffuseMap, true)
		m.RemoveDefine(DefineDiffuseMap, true)
		return
	}
	if _, ok := m.Uniform(UniformDiffuseMap); ok {
		m.SetUniform(UniformDiffuseMap, t, true)
		return
	}
	m.AddUniform(NewTexture(UniformDiffuseMap, t), true)
	m.AddDefine(shader.Flag(DefineDiffuseMap), true)
}

// NewMirrorMaterial creates a standard material whose albedo pass blends in a planar reflection.
// The renderer assigns the mirror texture and texture matrix every frame.
//
// Parameters:
//   - name: the material name
//   - diffuse: the surface color
//   - reflectivity: the reflection weight in [0, 1]
//
// Returns:
//   - CompositeMaterial: the material
func NewMirrorMaterial(name string, diffuse common.Color, reflectivity float32) CompositeMaterial {
	m := NewStandardMaterial(name, diffuse)
	pm := NewPassMaterial(PassGBuffer, WithName(name), template("mirror_gbuffer"),
		WithUniforms(
			NewTexture(UniformMirrorMap, nil),
			NewMat4(UniformTextureMatrix, mgl32.Ident4()),
			NewFloat(UniformReflectivity, reflectivity),
		),
	)
	m.SetPass(pm)
	return m
}

func lightPasses(name, id string, state RenderState, uniforms []*Uniform, defines ...shader.Define) CompositeMaterialBuilderOption {
	build := func(pass PassType) PassMaterial {
		clones := make([]*Uniform, len(uniforms))
		for i, u := range uniforms {
			clones[i] = u.Clone()
		}
		return NewPassMaterial(pass,
			WithName(name),
			template(id),
			WithState(state),
			WithUniforms(clones...),
			WithAttributes(NewAttribute("position", 3), NewAttribute("uv", 2)),
			WithDefines(defines...),
		)
	}
	return WithPasses(build(PassLight), build(PassTransparentLight))
}

func deferredInputs() []*Uniform {
	return []*Uniform{
		NewTexture(UniformGBuffer, nil),
		NewTexture(UniformGBuffer2, nil),
		NewVec3Array(UniformFrustumCorners, make([]mgl32.Vec3, 4)),
		NewVec2(UniformScreenSize, mgl32.Vec2{1, 1}),
	}
}

// NewPointLightMaterial creates the light volume material of a point light, or of a spot light when
// spot is set. It draws in the light and transparent light passes.
//
// Parameters:
//   - spot: whether the light is a cone
//
// Returns:
//   - CompositeMaterial: the material
func NewPointLightMaterial(spot bool) CompositeMaterial {
	uniforms := append(deferredInputs(),
		NewVec3(UniformLightPosition, mgl32.Vec3{}),
		NewVec3(UniformLightColor, mgl32.Vec3{1, 1, 1}),
		NewFloat(UniformLightIntensity, 1),
		NewFloat(UniformLightRadius, 1),
	)
	var defines []shader.Define
	name := "point-light"
	if spot {
		name = "spot-light"
		defines = append(defines, shader.Flag(DefineSpotLight))
		uniforms = append(uniforms,
			NewVec3(UniformLightDirection, mgl32.Vec3{0, 0, -1}),
			NewVec2(UniformLightCone, mgl32.Vec2{1, 0.9}),
		)
	}
	return NewCompositeMaterial(WithCompositeName(name), lightPasses(name, "point_light", volumeLightState, uniforms, defines...))
}

// NewDirectionalLightMaterial creates the full-screen material of a directional light.
//
// Returns:
//   - CompositeMaterial: the material
func NewDirectionalLightMaterial() CompositeMaterial {
	uniforms := append(deferredInputs(),
		NewVec3(UniformLightDirection, mgl32.Vec3{0, -1, 0}),
		NewVec3(UniformLightColor, mgl32.Vec3{1, 1, 1}),
		NewFloat(UniformLightIntensity, 1),
	)
	return NewCompositeMaterial(WithCompositeName("directional-light"),
		lightPasses("directional-light", "directional_light", screenLightState, uniforms))
}

// NewAmbientLightMaterial creates the full-screen material of an ambient light.
//
// Returns:
//   - CompositeMaterial: the material
func NewAmbientLightMaterial() CompositeMaterial {
	uniforms := []*Uniform{
		NewVec3(UniformLightColor, mgl32.Vec3{1, 1, 1}),
		NewFloat(UniformLightIntensity, 1),
	}
	return NewCompositeMaterial(WithCompositeName("ambient-light"),
		lightPasses("ambient-light", "ambient_light", screenLightState, uniforms))
}

// NewCompositionMaterial creates the material combining albedo and accumulated light.
func NewCompositionMaterial() Material {
	return NewMaterial(
		WithName("composition"),
		template("composition"),
		WithState(fullscreenState),
		WithUniforms(NewTexture(UniformGBuffer, nil), NewTexture(UniformLightBuffer, nil)),
		WithAttributes(NewAttribute("position", 3), NewAttribute("uv", 2)),
	)
}

// NewScreenMaterial creates the material that copies a texture to the bound target.
func NewScreenMaterial() Material {
	return NewMaterial(
		WithName("screen"),
		template("screen"),
		WithState(fullscreenState),
		WithUniforms(NewTexture(UniformFrame, nil)),
		WithAttributes(NewAttribute("position", 3), NewAttribute("uv", 2)),
	)
}

// NewShadowMaterial creates the depth moments material used for casters without a shadow pass.
func NewShadowMaterial() Material {
	return NewMaterial(
		WithName("shadow"),
		template("shadow_depth"),
		WithState(shadowCasterState),
		WithAttributes(NewAttribute("position", 3)),
	)
}

// NewSkyMaterial creates a sky drawn behind all solids. A nil cube map draws a gradient between the
// horizon and top colors.
//
// Parameters:
//   - top: the zenith color
//   - horizon: the horizon color
//   - cube: an optional cube texture sampled along the view direction
//
// Returns:
//   - CompositeMaterial: the material
func NewSkyMaterial(top, horizon common.Color, cube texture.Texture) CompositeMaterial {
	opts := []MaterialBuilderOption{
		WithName("sky"),
		template("sky"),
		WithState(skyState),
		WithUniforms(
			NewVec3Array(UniformFrustumCorners, make([]mgl32.Vec3, 4)),
			NewColor(UniformSkyTop, top),
			NewColor(UniformSkyHorizon, horizon),
		),
		WithAttributes(NewAttribute("position", 3), NewAttribute("uv", 2)),
	}
	if cube != nil {
		opts = append(opts, WithUniforms(NewTexture(UniformSkyMap, cube)), WithDefines(shader.Flag(DefineSkyMap)))
	}
	return NewCompositeMaterial(WithCompositeName("sky"), WithPasses(NewPassMaterial(PassSky, opts...)))
}

// NewConvolutionMaterial creates the material that blurs one face of a cube texture into another.
//
// Parameters:
//   - spread: the blur radius along the face tangents
//
// Returns:
//   - Material: the material
func NewConvolutionMaterial(spread float32) Material {
	return NewMaterial(
		WithName("convolution"),
		template("convolution"),
		WithState(fullscreenState),
		WithUniforms(
			NewTexture(UniformSource, nil),
			NewMat3(UniformFaceMatrix, mgl32.Ident3()),
			NewFloat(UniformSpread, spread),
		),
		WithAttributes(NewAttribute("position", 3), NewAttribute("uv", 2)),
	)
}
