// Package camera provides the perspective, orthographic and combined cameras the renderer draws
// through. Cameras use a right-handed view space and a [0, 1] clip depth range.
package camera

import (
	"fmt"
	"math"
	"sync"

	"github.com/MKHenson/trike3d-sub000/common"
	"github.com/MKHenson/trike3d-sub000/engine/renderer/material"
	"github.com/go-gl/mathgl/mgl32"
)

// Kind identifies the projection of a camera.
type Kind int

const (
	KindPerspective Kind = iota
	KindOrthographic
	KindCombined
)

func (k Kind) String() string {
	switch k {
	case KindPerspective:
		return "perspective"
	case KindOrthographic:
		return "orthographic"
	case KindCombined:
		return "combined"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

type cameraImpl struct {
	mu *sync.Mutex

	name string
	kind Kind

	fov    float32
	aspect float32
	near   float32
	far    float32

	left, right, bottom, top float32

	world             mgl32.Mat4
	view              mgl32.Mat4
	projection        mgl32.Mat4
	inverseProjection mgl32.Mat4

	controller CameraController
	postPasses []material.Material
}

// Camera defines the interface for the camera system.
// A camera owns a world transform and a projection and derives the matrices the renderer needs
// from them.
type Camera interface {
	// Name returns the camera name used in diagnostics.
	//
	// Returns:
	//   - string: the name
	Name() string

	// Kind returns the projection kind of the camera.
	//
	// Returns:
	//   - Kind: the camera kind
	Kind() Kind

	// Active returns the camera that actually projects. For a combined camera this is the
	// selected sub-camera, for every other camera the camera itself.
	//
	// Returns:
	//   - Camera: the active camera
	Active() Camera

	// World returns the camera's world matrix.
	//
	// Returns:
	//   - mgl32.Mat4: the world matrix
	World() mgl32.Mat4

	// SetWorld replaces the world matrix and recomputes the view matrix.
	//
	// Parameters:
	//   - world: the new world matrix
	SetWorld(world mgl32.Mat4)

	// LookAt positions the camera at eye looking toward target.
	//
	// Parameters:
	//   - eye: the world-space camera position
	//   - target: the world-space point to look at
	//   - up: the world-space up direction
	LookAt(eye, target, up mgl32.Vec3)

	// Position returns the world-space camera position.
	//
	// Returns:
	//   - mgl32.Vec3: the position
	Position() mgl32.Vec3

	// View returns the inverse of the world matrix.
	//
	// Returns:
	//   - mgl32.Mat4: the view matrix
	View() mgl32.Mat4

	// Projection returns the projection matrix.
	//
	// Returns:
	//   - mgl32.Mat4: the projection matrix
	Projection() mgl32.Mat4

	// InverseProjection returns the inverse of the projection matrix. Screen-space lights use it to
	// rebuild view rays from the far plane corners.
	//
	// Returns:
	//   - mgl32.Mat4: the inverse projection matrix
	InverseProjection() mgl32.Mat4

	// ViewProjection returns projection * view.
	//
	// Returns:
	//   - mgl32.Mat4: the combined matrix
	ViewProjection() mgl32.Mat4

	// Frustum returns the world-space frustum of the camera.
	//
	// Returns:
	//   - common.Frustum: the frustum planes
	Frustum() common.Frustum

	// FarCorners returns the view-space far plane corners, bottom-left first, counter-clockwise.
	//
	// Returns:
	//   - [4]mgl32.Vec3: the corners
	FarCorners() [4]mgl32.Vec3

	// Fov returns the vertical field of view in radians.
	//
	// Returns:
	//   - float32: field of view in radians
	Fov() float32

	// SetFov sets the vertical field of view in radians and recomputes the projection.
	//
	// Parameters:
	//   - fov: field of view in radians
	SetFov(fov float32)

	// Aspect returns the aspect ratio (width / height).
	//
	// Returns:
	//   - float32: the aspect ratio
	Aspect() float32

	// SetAspect sets the aspect ratio and recomputes the projection.
	//
	// Parameters:
	//   - aspect: the aspect ratio
	SetAspect(aspect float32)

	// Near returns the near clipping plane distance.
	//
	// Returns:
	//   - float32: near plane distance
	Near() float32

	// SetNear sets the near clipping plane distance and recomputes the projection.
	//
	// Parameters:
	//   - near: near plane distance
	SetNear(near float32)

	// Far returns the far clipping plane distance.
	//
	// Returns:
	//   - float32: far plane distance
	Far() float32

	// SetFar sets the far clipping plane distance and recomputes the projection.
	//
	// Parameters:
	//   - far: far plane distance
	SetFar(far float32)

	// Bounds returns the orthographic view volume extents.
	//
	// Returns:
	//   - left, right, bottom, top: the extents
	Bounds() (left, right, bottom, top float32)

	// SetBounds sets the orthographic view volume extents and recomputes the projection.
	//
	// Parameters:
	//   - left, right, bottom, top: the extents
	SetBounds(left, right, bottom, top float32)

	// PostPasses returns the full-screen materials applied to the composited image in order.
	//
	// Returns:
	//   - []material.Material: the post materials
	PostPasses() []material.Material

	// AddPostPass appends a full-screen material. It must declare a "frame" texture uniform.
	//
	// Parameters:
	//   - m: the post material
	AddPostPass(m material.Material)

	// RemovePostPass removes a post material.
	//
	// Parameters:
	//   - m: the post material
	RemovePostPass(m material.Material)

	// CopyFrom copies the projection settings and world matrix of another camera.
	//
	// Parameters:
	//   - other: the camera to copy
	CopyFrom(other Camera)

	// Controller returns the attached CameraController, or nil.
	//
	// Returns:
	//   - CameraController: the attached controller or nil
	Controller() CameraController

	// SetController attaches a CameraController to the camera.
	//
	// Parameters:
	//   - ctrl: the controller to attach
	SetController(ctrl CameraController)

	// Update reads position and target from the controller and recomputes the world matrix.
	// Does nothing when no controller is attached.
	Update()
}

var _ Camera = &cameraImpl{}

// NewCamera creates a new perspective Camera with default settings. WithOrthographic switches the
// projection to orthographic.
//
// Parameters:
//   - options: functional options to configure the camera
//
// Returns:
//   - Camera: the newly created camera
func NewCamera(options ...CameraBuilderOption) Camera {
	c := &cameraImpl{
		mu:     &sync.Mutex{},
		name:   "camera",
		kind:   KindPerspective,
		fov:    45.0 * (math.Pi / 180.0),
		aspect: 1.0,
		near:   0.1,
		far:    100.0,
		left:   -1, right: 1, bottom: -1, top: 1,
		world: mgl32.Ident4(),
		view:  mgl32.Ident4(),
	}
	for _, option := range options {
		option(c)
	}
	c.updateProjection()
	if c.controller != nil {
		c.updateFromController()
	}
	return c
}

func (c *cameraImpl) Name() string {
	return c.name
}

func (c *cameraImpl) Kind() Kind {
	return c.kind
}

func (c *cameraImpl) Active() Camera {
	return c
}

func (c *cameraImpl) World() mgl32.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.world
}

func (c *cameraImpl) SetWorld(world mgl32.Mat4) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.setWorld(world)
}

func (c *cameraImpl) setWorld(world mgl32.Mat4) {
	c.world = world
	c.view = world.Inv()
}

func (c *cameraImpl) LookAt(eye, target, up mgl32.Vec3) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lookAt(eye, target, up)
}

func (c *cameraImpl) lookAt(eye, target, up mgl32.Vec3) {
	view := mgl32.LookAtV(eye, target, up)
	c.view = view
	c.world = view.Inv()
}

func (c *cameraImpl) Position() mgl32.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.world.Col(3).Vec3()
}

func (c *cameraImpl) View() mgl32.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.view
}

func (c *cameraImpl) Projection() mgl32.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.projection
}

func (c *cameraImpl) InverseProjection() mgl32.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inverseProjection
}

func (c *cameraImpl) ViewProjection() mgl32.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.projection.Mul4(c.view)
}

func (c *cameraImpl) Frustum() common.Frustum {
	return common.ExtractFrustumFromMatrix(c.ViewProjection())
}

func (c *cameraImpl) FarCorners() [4]mgl32.Vec3 {
	return common.FarPlaneCorners(c.InverseProjection())
}

func (c *cameraImpl) Fov() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fov
}

func (c *cameraImpl) SetFov(fov float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fov = fov
	c.updateProjection()
}

func (c *cameraImpl) Aspect() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.aspect
}

func (c *cameraImpl) SetAspect(aspect float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.aspect = aspect
	c.updateProjection()
}

func (c *cameraImpl) Near() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.near
}

func (c *cameraImpl) SetNear(near float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.near = near
	c.updateProjection()
}

func (c *cameraImpl) Far() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.far
}

func (c *cameraImpl) SetFar(far float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.far = far
	c.updateProjection()
}

func (c *cameraImpl) Bounds() (left, right, bottom, top float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.left, c.right, c.bottom, c.top
}

func (c *cameraImpl) SetBounds(left, right, bottom, top float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.left, c.right, c.bottom, c.top = left, right, bottom, top
	c.updateProjection()
}

func (c *cameraImpl) PostPasses() []material.Material {
	return c.postPasses
}

func (c *cameraImpl) AddPostPass(m material.Material) {
	c.postPasses = append(c.postPasses, m)
}

func (c *cameraImpl) RemovePostPass(m material.Material) {
	for i, p := range c.postPasses {
		if p == m {
			c.postPasses = append(c.postPasses[:i], c.postPasses[i+1:]...)
			return
		}
	}
}

func (c *cameraImpl) CopyFrom(other Camera) {
	src := other.Active()
	if src == Camera(c) {
		return
	}
	l, r, b, t := src.Bounds()
	world := src.World()
	kind, fov, aspect, near, far := src.Kind(), src.Fov(), src.Aspect(), src.Near(), src.Far()

	c.mu.Lock()
	defer c.mu.Unlock()
	c.kind = kind
	c.fov, c.aspect, c.near, c.far = fov, aspect, near, far
	c.left, c.right, c.bottom, c.top = l, r, b, t
	c.setWorld(world)
	c.updateProjection()
}

func (c *cameraImpl) Controller() CameraController {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.controller
}

func (c *cameraImpl) SetController(ctrl CameraController) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.controller = ctrl
}

func (c *cameraImpl) Update() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.updateFromController()
}

// updateFromController recomputes the world matrix from the controller. Caller must hold the mutex.
func (c *cameraImpl) updateFromController() {
	if c.controller == nil {
		return
	}
	c.lookAt(c.controller.Position(), c.controller.Target(), mgl32.Vec3{0, 1, 0})
}

// updateProjection recomputes the projection and its inverse. Caller must hold the mutex.
func (c *cameraImpl) updateProjection() {
	switch c.kind {
	case KindOrthographic:
		c.projection = common.Orthographic(c.left, c.right, c.bottom, c.top, c.near, c.far)
	default:
		c.projection = common.Perspective(c.fov, c.aspect, c.near, c.far)
	}
	c.inverseProjection = c.projection.Inv()
}
