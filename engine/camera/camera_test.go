package camera

import (
	"math"
	"testing"

	"github.com/MKHenson/trike3d-sub000/common"
	"github.com/MKHenson/trike3d-sub000/engine/renderer/material"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func assertVec3(t *testing.T, want, got mgl32.Vec3) {
	t.Helper()
	for i := range 3 {
		assert.InDelta(t, want[i], got[i], 1e-4, "component %d of %v", i, got)
	}
}

func TestPerspectiveCameraMatrices(t *testing.T) {
	assert := assert.New(t)

	c := NewCamera(WithFar(50), WithLookAt(mgl32.Vec3{0, 0, 5}, mgl32.Vec3{}))
	assert.Equal(KindPerspective, c.Kind())
	assert.Same(c, c.Active())
	assertVec3(t, mgl32.Vec3{0, 0, 5}, c.Position())
	assertVec3(t, mgl32.Vec3{0, 0, -5}, c.View().Mul4x1(mgl32.Vec4{0, 0, 0, 1}).Vec3())

	f := c.Frustum()
	assert.True(f.ContainsPoint(mgl32.Vec3{}))
	assert.False(f.ContainsPoint(mgl32.Vec3{0, 0, 10}))
	assert.False(f.IntersectsSphere(common.Sphere{Center: mgl32.Vec3{0, 0, -60}, Radius: 1}))

	for _, corner := range c.FarCorners() {
		assert.InDelta(-50, corner.Z(), 1e-2)
	}
	corners := c.FarCorners()
	assert.Less(corners[0].X(), corners[1].X())
	assert.Less(corners[1].Y(), corners[2].Y())
}

func TestOrthographicCamera(t *testing.T) {
	assert := assert.New(t)

	c := NewCamera(WithOrthographic(-2, 2, -1, 1), WithNear(1), WithFar(10))
	assert.Equal(KindOrthographic, c.Kind())

	l, r, b, top := c.Bounds()
	assert.Equal([]float32{-2, 2, -1, 1}, []float32{l, r, b, top})

	clip := c.Projection().Mul4x1(mgl32.Vec4{2, 1, -10, 1})
	assert.InDelta(1, clip.X(), 1e-5)
	assert.InDelta(1, clip.Y(), 1e-5)
	assert.InDelta(1, clip.Z(), 1e-5)
}

func TestCombinedCameraUnwrapsToActive(t *testing.T) {
	assert := assert.New(t)

	persp := NewCamera(WithName("p"))
	ortho := NewCamera(WithName("o"), WithOrthographic(-1, 1, -1, 1))
	c := NewCombinedCamera(persp, ortho)

	assert.Equal(KindCombined, c.Kind())
	assert.Same(persp, c.Active())

	c.LookAt(mgl32.Vec3{3, 0, 0}, mgl32.Vec3{}, mgl32.Vec3{0, 1, 0})
	assertVec3(t, mgl32.Vec3{3, 0, 0}, persp.Position())
	assertVec3(t, mgl32.Vec3{3, 0, 0}, ortho.Position())

	c.UsePerspective(false)
	assert.Same(ortho, c.Active())
	assert.Equal(ortho.Projection(), c.Projection())

	c.SetAspect(2)
	l, r, _, _ := ortho.Bounds()
	assert.InDelta(-2, l, 1e-5)
	assert.InDelta(2, r, 1e-5)
}

func TestCopyFrom(t *testing.T) {
	assert := assert.New(t)

	src := NewCamera(WithFov(1), WithAspect(2), WithNear(0.5), WithFar(30), WithLookAt(mgl32.Vec3{1, 2, 3}, mgl32.Vec3{}))
	dst := NewCamera()
	dst.CopyFrom(src)

	assert.Equal(src.Projection(), dst.Projection())
	assertVec3(t, src.Position(), dst.Position())
	assert.Equal(float32(30), dst.Far())

	combined := NewCombinedCamera(NewCamera(), NewCamera(WithOrthographic(-1, 1, -1, 1)))
	dst.CopyFrom(combined)
	assert.Equal(combined.Perspective().Projection(), dst.Projection())
}

func TestPostPasses(t *testing.T) {
	assert := assert.New(t)

	c := NewCamera()
	a := material.NewScreenMaterial()
	b := material.NewScreenMaterial()
	c.AddPostPass(a)
	c.AddPostPass(b)
	assert.Len(c.PostPasses(), 2)

	c.RemovePostPass(a)
	assert.Len(c.PostPasses(), 1)
	assert.Same(b, c.PostPasses()[0])
}

func TestOrbitController(t *testing.T) {
	assert := assert.New(t)

	ctrl := NewOrbitController(WithRadius(10), WithElevation(0), WithRadiusBounds(2, 20), WithZoomSpeed(1))
	assertVec3(t, mgl32.Vec3{0, 0, 10}, ctrl.Position())

	ctrl.Zoom(100)
	assert.Equal(float32(2), ctrl.Radius())

	ctrl.Orbit(0, 1000)
	assert.InDelta(math.Pi/2-0.05, ctrl.Elevation(), 1e-5)

	ctrl2 := NewOrbitController(WithRadius(5), WithElevation(0), WithPanSpeed(1))
	ctrl2.Pan(1, 0, 0)
	assertVec3(t, mgl32.Vec3{1, 0, 0}, ctrl2.Target())
	assertVec3(t, mgl32.Vec3{1, 0, 5}, ctrl2.Position())

	c := NewCamera(WithController(ctrl2))
	assertVec3(t, mgl32.Vec3{1, 0, 5}, c.Position())
	ctrl2.SetTarget(mgl32.Vec3{})
	c.Update()
	assertVec3(t, mgl32.Vec3{0, 0, 5}, c.Position())
}
