package camera

import (
	"github.com/MKHenson/trike3d-sub000/common"
	"github.com/MKHenson/trike3d-sub000/engine/renderer/material"
	"github.com/go-gl/mathgl/mgl32"
)

// CombinedCamera switches between a perspective and an orthographic camera sharing one transform.
// Projection queries are answered by the active sub-camera.
type CombinedCamera struct {
	name           string
	perspective    Camera
	orthographic   Camera
	usePerspective bool
	controller     CameraController
	postPasses     []material.Material
}

var _ Camera = &CombinedCamera{}

// NewCombinedCamera creates a combined camera that starts in perspective mode.
//
// Parameters:
//   - perspective: the perspective sub-camera
//   - orthographic: the orthographic sub-camera
//
// Returns:
//   - *CombinedCamera: the combined camera
func NewCombinedCamera(perspective, orthographic Camera) *CombinedCamera {
	return &CombinedCamera{
		name:           "combined",
		perspective:    perspective,
		orthographic:   orthographic,
		usePerspective: true,
	}
}

// UsePerspective selects the perspective sub-camera, and the orthographic one when false.
func (c *CombinedCamera) UsePerspective(enabled bool) {
	c.usePerspective = enabled
}

// Perspective returns the perspective sub-camera.
func (c *CombinedCamera) Perspective() Camera {
	return c.perspective
}

// Orthographic returns the orthographic sub-camera.
func (c *CombinedCamera) Orthographic() Camera {
	return c.orthographic
}

func (c *CombinedCamera) Name() string {
	return c.name
}

func (c *CombinedCamera) Kind() Kind {
	return KindCombined
}

func (c *CombinedCamera) Active() Camera {
	if c.usePerspective {
		return c.perspective
	}
	return c.orthographic
}

func (c *CombinedCamera) World() mgl32.Mat4 {
	return c.Active().World()
}

func (c *CombinedCamera) SetWorld(world mgl32.Mat4) {
	c.perspective.SetWorld(world)
	c.orthographic.SetWorld(world)
}

func (c *CombinedCamera) LookAt(eye, target, up mgl32.Vec3) {
	c.perspective.LookAt(eye, target, up)
	c.orthographic.LookAt(eye, target, up)
}

func (c *CombinedCamera) Position() mgl32.Vec3 {
	return c.Active().Position()
}

func (c *CombinedCamera) View() mgl32.Mat4 {
	return c.Active().View()
}

func (c *CombinedCamera) Projection() mgl32.Mat4 {
	return c.Active().Projection()
}

func (c *CombinedCamera) InverseProjection() mgl32.Mat4 {
	return c.Active().InverseProjection()
}

func (c *CombinedCamera) ViewProjection() mgl32.Mat4 {
	return c.Active().ViewProjection()
}

func (c *CombinedCamera) Frustum() common.Frustum {
	return c.Active().Frustum()
}

func (c *CombinedCamera) FarCorners() [4]mgl32.Vec3 {
	return c.Active().FarCorners()
}

func (c *CombinedCamera) Fov() float32 {
	return c.perspective.Fov()
}

func (c *CombinedCamera) SetFov(fov float32) {
	c.perspective.SetFov(fov)
}

func (c *CombinedCamera) Aspect() float32 {
	return c.Active().Aspect()
}

func (c *CombinedCamera) SetAspect(aspect float32) {
	c.perspective.SetAspect(aspect)
	l, r, b, t := c.orthographic.Bounds()
	halfH := (t - b) / 2
	cx := (l + r) / 2
	c.orthographic.SetBounds(cx-halfH*aspect, cx+halfH*aspect, b, t)
	c.orthographic.SetAspect(aspect)
}

func (c *CombinedCamera) Near() float32 {
	return c.Active().Near()
}

func (c *CombinedCamera) SetNear(near float32) {
	c.perspective.SetNear(near)
	c.orthographic.SetNear(near)
}

func (c *CombinedCamera) Far() float32 {
	return c.Active().Far()
}

func (c *CombinedCamera) SetFar(far float32) {
	c.perspective.SetFar(far)
	c.orthographic.SetFar(far)
}

func (c *CombinedCamera) Bounds() (left, right, bottom, top float32) {
	return c.orthographic.Bounds()
}

func (c *CombinedCamera) SetBounds(left, right, bottom, top float32) {
	c.orthographic.SetBounds(left, right, bottom, top)
}

func (c *CombinedCamera) PostPasses() []material.Material {
	return c.postPasses
}

func (c *CombinedCamera) AddPostPass(m material.Material) {
	c.postPasses = append(c.postPasses, m)
}

func (c *CombinedCamera) RemovePostPass(m material.Material) {
	for i, p := range c.postPasses {
		if p == m {
			c.postPasses = append(c.postPasses[:i], c.postPasses[i+1:]...)
			return
		}
	}
}

func (c *CombinedCamera) CopyFrom(other Camera) {
	src := other.Active()
	if src.Kind() == KindOrthographic {
		c.orthographic.CopyFrom(src)
		c.perspective.SetWorld(src.World())
		c.usePerspective = false
		return
	}
	c.perspective.CopyFrom(src)
	c.orthographic.SetWorld(src.World())
	c.usePerspective = true
}

func (c *CombinedCamera) Controller() CameraController {
	return c.controller
}

func (c *CombinedCamera) SetController(ctrl CameraController) {
	c.controller = ctrl
}

func (c *CombinedCamera) Update() {
	if c.controller == nil {
		return
	}
	c.LookAt(c.controller.Position(), c.controller.Target(), mgl32.Vec3{0, 1, 0})
}
