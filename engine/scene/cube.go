package scene

import (
	"fmt"
	"math"

	"github.com/MKHenson/trike3d-sub000/engine/camera"
	"github.com/MKHenson/trike3d-sub000/engine/renderer/backend"
	"github.com/MKHenson/trike3d-sub000/engine/renderer/material"
	"github.com/MKHenson/trike3d-sub000/engine/renderer/texture"
	"github.com/go-gl/mathgl/mgl32"
)

// CubeFaces is the number of faces of a cube target.
const CubeFaces = 6

// cubeFaceAxes lists, per face in +X, -X, +Y, -Y, +Z, -Z order, the look direction and up vector.
var cubeFaceAxes = [CubeFaces][2]mgl32.Vec3{
	{{1, 0, 0}, {0, -1, 0}},
	{{-1, 0, 0}, {0, -1, 0}},
	{{0, 1, 0}, {0, 0, 1}},
	{{0, -1, 0}, {0, 0, -1}},
	{{0, 0, 1}, {0, -1, 0}},
	{{0, 0, -1}, {0, -1, 0}},
}

// CubeFaceRotation returns the rotation taking a camera looking down -Z to the given cube face.
//
// Parameters:
//   - face: the face index in [0, 6)
//
// Returns:
//   - mgl32.Mat3: the camera-to-world rotation of the face
func CubeFaceRotation(face int) mgl32.Mat3 {
	if face < 0 || face >= CubeFaces {
		panic(fmt.Sprintf("scene: invalid cube face %d", face))
	}
	axes := cubeFaceAxes[face]
	view := mgl32.LookAtV(mgl32.Vec3{}, axes[0], axes[1])
	return view.Mat3().Transpose()
}

// CubeRenderer captures the scene around its position into a cube target, one camera per face.
type CubeRenderer struct {
	*Object

	target  *texture.RenderTarget
	cameras [CubeFaces]camera.Camera
	active  bool
}

// NewCubeRenderer creates a cube renderer with a mipmapped cube target.
//
// Parameters:
//   - size: the width and height of each face in pixels
//   - near: the near plane of the face cameras
//   - far: the far plane of the face cameras
//
// Returns:
//   - *CubeRenderer: the cube renderer
func NewCubeRenderer(size int, near, far float32) *CubeRenderer {
	if size <= 0 {
		panic(fmt.Sprintf("scene: invalid cube size %d", size))
	}
	c := &CubeRenderer{
		target: texture.NewRenderTarget(size, size,
			texture.WithTargetLabel("cube"),
			texture.WithCube(true),
			texture.WithTargetMipmaps(true),
		),
		active: true,
	}
	c.Object = newObject(c, "cube-renderer")
	for i := range c.cameras {
		c.cameras[i] = camera.NewCamera(
			camera.WithName(fmt.Sprintf("cube-face-%d", i)),
			camera.WithFov(float32(math.Pi/2)),
			camera.WithAspect(1),
			camera.WithNear(near),
			camera.WithFar(far),
		)
	}
	return c
}

func (c *CubeRenderer) Active() bool {
	return c.active && c.visible
}

func (c *CubeRenderer) SetActive(active bool) {
	c.active = active
}

// Target returns the cube render target.
func (c *CubeRenderer) Target() *texture.RenderTarget {
	return c.target
}

// Camera returns the camera of a face.
func (c *CubeRenderer) Camera(face int) camera.Camera {
	return c.cameras[face]
}

// UpdateCameras places every face camera at the node's world position.
func (c *CubeRenderer) UpdateCameras() {
	pos := c.WorldPosition()
	for i, cam := range c.cameras {
		axes := cubeFaceAxes[i]
		cam.LookAt(pos, pos.Add(axes[0]), axes[1])
	}
}

// Dispose releases the cube target.
func (c *CubeRenderer) Dispose() {
	c.target.Dispose()
}

// Convolver blurs a source cube texture into its own cube target, face by face, with a convolution
// material. The result serves as a rough environment map.
type Convolver struct {
	*Object

	source       texture.Texture
	target       *texture.RenderTarget
	material     material.Material
	animated     bool
	requiresDraw bool
}

// NewConvolver creates a convolver. A static convolver draws once; an animated one draws every frame,
// following a source that is itself re-rendered.
//
// Parameters:
//   - source: the cube texture to blur
//   - size: the width and height of each face in pixels
//   - spread: the blur radius
//   - animated: whether to redraw every frame
//
// Returns:
//   - *Convolver: the convolver
func NewConvolver(source texture.Texture, size int, spread float32, animated bool) *Convolver {
	if source == nil {
		panic("scene: a convolver needs a source texture")
	}
	if size <= 0 {
		panic(fmt.Sprintf("scene: invalid convolver size %d", size))
	}
	c := &Convolver{
		source: source,
		target: texture.NewRenderTarget(size, size,
			texture.WithTargetLabel("convolver"),
			texture.WithCube(true),
			texture.WithDepth(false),
			texture.WithFormat(backend.FormatRGBA16F),
		),
		material:     material.NewConvolutionMaterial(spread),
		animated:     animated,
		requiresDraw: true,
	}
	c.Object = newObject(c, "convolver")
	c.material.SetUniform(material.UniformSource, source)
	return c
}

func (c *Convolver) Source() texture.Texture {
	return c.source
}

func (c *Convolver) Target() *texture.RenderTarget {
	return c.target
}

func (c *Convolver) Material() material.Material {
	return c.material
}

// RequiresDraw reports whether the convolver draws this frame.
func (c *Convolver) RequiresDraw() bool {
	return c.visible && (c.animated || c.requiresDraw)
}

// MarkDrawn clears the pending draw of a static convolver.
func (c *Convolver) MarkDrawn() {
	c.requiresDraw = false
}

// Invalidate schedules a redraw.
func (c *Convolver) Invalidate() {
	c.requiresDraw = true
}

// PrepareFace points the convolution material at a face.
//
// Parameters:
//   - face: the face index in [0, 6)
func (c *Convolver) PrepareFace(face int) {
	c.material.SetUniform(material.UniformFaceMatrix, CubeFaceRotation(face))
}

// Dispose releases the target and material.
func (c *Convolver) Dispose() {
	c.target.Dispose()
	c.material.Dispose()
}
