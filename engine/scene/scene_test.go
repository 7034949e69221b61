package scene

import (
	"testing"
	"time"

	"github.com/MKHenson/trike3d-sub000/common"
	"github.com/MKHenson/trike3d-sub000/engine/camera"
	"github.com/MKHenson/trike3d-sub000/engine/geometry"
	"github.com/MKHenson/trike3d-sub000/engine/light"
	"github.com/MKHenson/trike3d-sub000/engine/renderer/material"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBox() *Mesh {
	return NewMesh(geometry.NewBox(1, 1, 1), material.NewStandardMaterial("box", common.Color{R: 1, G: 1, B: 1, A: 1}))
}

func vecDelta(t *testing.T, expected, actual mgl32.Vec3, msgAndArgs ...any) {
	t.Helper()
	assert.InDeltaSlice(t, expected[:], actual[:], 1e-4, msgAndArgs...)
}

func TestAddRejectsCycles(t *testing.T) {
	a, b, c := NewObject(WithName("a")), NewObject(WithName("b")), NewObject(WithName("c"))
	a.Add(b)
	b.Add(c)

	assert.Panics(t, func() { a.Add(a) })
	assert.Panics(t, func() { c.Add(a) })
	assert.Panics(t, func() { c.Add(b) })
	assert.Panics(t, func() { a.Add(nil) })

	m := newBox()
	assert.Panics(t, func() { m.Add(m) })
}

func TestAddReparents(t *testing.T) {
	a, b := NewObject(), NewObject()
	child := newBox()
	a.Add(child)
	b.Add(child)

	assert.Empty(t, a.Children())
	require.Len(t, b.Children(), 1)
	assert.Same(t, b, child.Parent())
	assert.True(t, b.Remove(child))
	assert.False(t, b.Remove(child))
	assert.Nil(t, child.Parent())
}

func TestUpdateWorldMatrix(t *testing.T) {
	parent := NewObject(WithPosition(mgl32.Vec3{1, 0, 0}), WithScale(mgl32.Vec3{2, 2, 2}))
	child := newBox()
	child.SetPosition(mgl32.Vec3{0, 1, 0})
	parent.Add(child)

	s := NewScene(WithNodes(parent))
	s.UpdateWorldMatrix()
	vecDelta(t, mgl32.Vec3{1, 2, 0}, child.WorldPosition())

	parent.SetPosition(mgl32.Vec3{0, 0, 5})
	s.UpdateWorldMatrix()
	vecDelta(t, mgl32.Vec3{0, 2, 5}, child.WorldPosition())

	sphere := child.BoundingSphere()
	vecDelta(t, mgl32.Vec3{0, 2, 5}, sphere.Center)
	assert.Greater(t, sphere.Radius, float32(1))
}

func TestUpdateHooksAndShaderTextures(t *testing.T) {
	var calls []string
	a := NewObject(WithName("a"), WithUpdate(func(n Node, elapsed, delta time.Duration) {
		calls = append(calls, n.Base().Name())
	}))
	b := newBox()
	b.SetName("b")
	b.OnUpdate(func(n Node, elapsed, delta time.Duration) {
		_, isMesh := n.(*Mesh)
		assert.True(t, isMesh)
		calls = append(calls, n.Base().Name())
	})
	a.Add(b)

	m := material.NewMaterial(material.WithName("noise"), material.WithUniforms(material.NewFloat(material.TimeUniform, 0)))
	st := material.NewShaderTexture(8, 8, m, true)

	s := NewScene(WithNodes(a), WithShaderTextures(st))
	s.Update(2*time.Second, 16*time.Millisecond)

	assert.Equal(t, []string{"a", "b"}, calls)
	u, ok := m.Uniform(material.TimeUniform)
	require.True(t, ok)
	assert.Equal(t, float32(2), u.Value())

	s.RemoveShaderTexture(st)
	assert.Empty(t, s.ShaderTextures())
}

func TestCollect(t *testing.T) {
	mesh := newBox()
	group := NewObject()
	points := NewMesh(geometry.NewSphere(1, 4, 4), material.NewStandardMaterial("p", common.Color{A: 1}), WithKind(MeshPoints))
	group.Add(points)
	point := NewLight(light.NewLight(light.LightTypePoint))
	sun := NewLight(light.NewLight(light.LightTypeDirectional))
	ambient := NewLight(light.NewLight(light.LightTypeAmbient))
	sky := NewSkybox(common.Color{B: 1, A: 1}, common.Color{R: 1, G: 1, B: 1, A: 1}, nil)
	mirror := NewMirror(4, 4, 64, common.Color{A: 1}, 0.5)
	cube := NewCubeRenderer(32, 0.1, 50)
	conv := NewConvolver(cube.Target().Texture(0), 16, 0.5, false)

	s := NewScene(WithNodes(mesh, group, point, sun, ambient, sky, mirror, cube, conv))
	assert.Equal(t, 10, s.Count())

	var c Collection
	s.Collect(&c)
	assert.Equal(t, []*Mesh{mesh, points, mirror.Mesh}, c.Meshes)
	assert.Equal(t, []*Light{point}, c.PerspectiveLights)
	assert.Equal(t, []*Light{sun, ambient}, c.ScreenLights)
	assert.Equal(t, []*Skybox{sky}, c.Skyboxes)
	assert.Equal(t, []*Mirror{mirror}, c.Mirrors)
	assert.Equal(t, []*CubeRenderer{cube}, c.CubeRenderers)
	assert.Equal(t, []*Convolver{conv}, c.Convolvers)

	s.Remove(group, point)
	s.Collect(&c)
	assert.Equal(t, []*Mesh{mesh, mirror.Mesh}, c.Meshes)
	assert.Empty(t, c.PerspectiveLights)
}

func TestLightNode(t *testing.T) {
	src := light.NewLight(light.LightTypeSpot,
		light.WithPosition(mgl32.Vec3{1, 2, 3}),
		light.WithDirection(mgl32.Vec3{0, -1, 0}),
		light.WithRange(5),
	)
	l := NewLight(src)
	assert.True(t, l.Perspective())
	assert.True(t, l.SceneCull())
	assert.False(t, l.CastShadows())

	s := NewScene(WithNodes(l))
	s.Update(0, 0)
	s.UpdateWorldMatrix()
	vecDelta(t, mgl32.Vec3{1, 2, 3}, l.WorldPosition())
	assert.InDelta(t, 5, l.BoundingSphere().Radius, 1e-3)

	view := mgl32.Translate3D(0, 0, -10)
	l.UpdateUniforms(view)
	pm, ok := l.Material().Pass(material.PassLight)
	require.True(t, ok)
	u, ok := pm.Uniform(material.UniformLightPosition)
	require.True(t, ok)
	vecDelta(t, mgl32.Vec3{1, 2, -7}, u.Value().(mgl32.Vec3))
	u, ok = pm.Uniform(material.UniformLightDirection)
	require.True(t, ok)
	vecDelta(t, mgl32.Vec3{0, -1, 0}, u.Value().(mgl32.Vec3))

	src.SetEnabled(false)
	s.Update(0, 0)
	assert.False(t, l.Visible())

	sun := NewLight(light.NewLight(light.LightTypeDirectional))
	assert.False(t, sun.Perspective())
	assert.False(t, sun.SceneCull())
}

func TestMirrorReflection(t *testing.T) {
	mirror := NewMirror(10, 10, 128, common.Color{A: 1}, 0.8)
	mirror.UpdateWorldMatrix(true)

	primary := camera.NewCamera(camera.WithLookAt(mgl32.Vec3{0, 5, 10}, mgl32.Vec3{}))
	mirror.UpdateReflection(primary)
	vecDelta(t, mgl32.Vec3{0, -5, 10}, mirror.Camera().Position())

	// A point on the plane maps to the same texel from both sides.
	p := mirror.TextureMatrix().Mul4x1(mgl32.Vec4{0, 0, 0, 1})
	assert.InDelta(t, 0.5, p.X()/p.W(), 1e-4)
	assert.InDelta(t, 0.5, p.Y()/p.W(), 1e-4)

	combined := camera.NewCombinedCamera(primary, camera.NewCamera(camera.WithOrthographic(-1, 1, -1, 1)))
	assert.NotPanics(t, func() { mirror.UpdateReflection(combined) })
	combined.UsePerspective(false)
	assert.Panics(t, func() { mirror.UpdateReflection(combined) })
	assert.Panics(t, func() { mirror.UpdateReflection(camera.NewCamera(camera.WithOrthographic(-1, 1, -1, 1))) })
}

func TestCubeFaces(t *testing.T) {
	forward := mgl32.Vec3{0, 0, -1}
	for face, axes := range cubeFaceAxes {
		vecDelta(t, axes[0], CubeFaceRotation(face).Mul3x1(forward), "face %d", face)
	}
	assert.Panics(t, func() { CubeFaceRotation(6) })

	cube := NewCubeRenderer(16, 0.1, 10)
	cube.SetPosition(mgl32.Vec3{1, 2, 3})
	cube.UpdateWorldMatrix(false)
	cube.UpdateCameras()
	for face := range CubeFaces {
		vecDelta(t, mgl32.Vec3{1, 2, 3}, cube.Camera(face).Position())
	}
	assert.True(t, cube.Target().Cube())

	conv := NewConvolver(cube.Target().Texture(0), 8, 0.3, false)
	assert.True(t, conv.RequiresDraw())
	conv.MarkDrawn()
	assert.False(t, conv.RequiresDraw())
	conv.Invalidate()
	assert.True(t, conv.RequiresDraw())
}
