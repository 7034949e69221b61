package common

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func TestProjectDepthOrdersByDistance(t *testing.T) {
	vp := Perspective(mgl32.DegToRad(60), 1, 0.1, 100)

	near := ProjectDepth(vp, mgl32.Vec3{0, 0, -2})
	far := ProjectDepth(vp, mgl32.Vec3{0, 0, -10})
	assert.Less(t, near, far)
	assert.GreaterOrEqual(t, near, float32(0))
	assert.LessOrEqual(t, far, float32(1))
}

func TestProjectDepthBehindEyeIsNearest(t *testing.T) {
	vp := Perspective(mgl32.DegToRad(60), 1, 0.1, 100)

	behind := ProjectDepth(vp, mgl32.Vec3{0, 0, 3})
	onPlane := ProjectDepth(vp, mgl32.Vec3{1, 0, 0})
	assert.True(t, math.IsInf(float64(behind), -1))
	assert.True(t, math.IsInf(float64(onPlane), -1))
	assert.Less(t, behind, ProjectDepth(vp, mgl32.Vec3{0, 0, -0.5}))
}

func TestProjectDepthOrthographic(t *testing.T) {
	vp := Orthographic(-1, 1, -1, 1, 0.1, 10)
	assert.Less(t, ProjectDepth(vp, mgl32.Vec3{0, 0, -1}), ProjectDepth(vp, mgl32.Vec3{0, 0, -5}))
}
