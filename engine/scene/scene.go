package scene

import (
	"slices"
	"sync"
	"time"

	"github.com/MKHenson/trike3d-sub000/engine/renderer/material"
)

// Collection is the per-frame inventory of a scene, in traversal order. The renderer reuses one
// Collection across frames so collecting does not allocate in steady state.
type Collection struct {
	// Meshes holds every mesh, point cloud and mirror plane. Light volumes and skyboxes are excluded.
	Meshes []*Mesh

	// PerspectiveLights holds point and spot lights, drawn as culled volumes.
	PerspectiveLights []*Light

	// ScreenLights holds directional and ambient lights, drawn as full-screen quads.
	ScreenLights []*Light

	Skyboxes      []*Skybox
	Mirrors       []*Mirror
	CubeRenderers []*CubeRenderer
	Convolvers    []*Convolver
}

// Reset empties the collection, keeping its capacity.
func (c *Collection) Reset() {
	c.Meshes = c.Meshes[:0]
	c.PerspectiveLights = c.PerspectiveLights[:0]
	c.ScreenLights = c.ScreenLights[:0]
	c.Skyboxes = c.Skyboxes[:0]
	c.Mirrors = c.Mirrors[:0]
	c.CubeRenderers = c.CubeRenderers[:0]
	c.Convolvers = c.Convolvers[:0]
}

// Scene is the root of a scene graph plus the shader textures drawn with it.
// Mutations are safe to call from other goroutines between frames.
type Scene interface {
	// Name returns the scene's identifier.
	Name() string

	// Root returns the root transform node.
	//
	// Returns:
	//   - *Object: the root
	Root() *Object

	// Add attaches nodes to the root. Panics on nil or cyclic nodes, see Object.Add.
	//
	// Parameters:
	//   - nodes: the nodes to add
	Add(nodes ...Node)

	// Remove detaches nodes from their parent.
	//
	// Parameters:
	//   - nodes: the nodes to remove
	Remove(nodes ...Node)

	// AddShaderTexture registers a texture drawn by a material before the scene is rendered.
	//
	// Parameters:
	//   - t: the shader texture
	AddShaderTexture(t *material.ShaderTexture)

	// RemoveShaderTexture unregisters a shader texture.
	//
	// Parameters:
	//   - t: the shader texture
	RemoveShaderTexture(t *material.ShaderTexture)

	// ShaderTextures returns the registered shader textures.
	//
	// Returns:
	//   - []*material.ShaderTexture: the shader textures
	ShaderTextures() []*material.ShaderTexture

	// Update advances time-driven state: shader texture time uniforms, light node transforms and the
	// per-object update hooks.
	//
	// Parameters:
	//   - elapsed: the time since the renderer started
	//   - delta: the time since the previous frame
	Update(elapsed, delta time.Duration)

	// UpdateWorldMatrix propagates transform changes through the graph.
	UpdateWorldMatrix()

	// Collect lists the scene's nodes by category into c, which is reset first.
	//
	// Parameters:
	//   - c: the collection to fill
	Collect(c *Collection)

	// Count returns the number of nodes below the root.
	//
	// Returns:
	//   - int: the node count
	Count() int
}

type scene struct {
	mu             sync.RWMutex
	name           string
	root           *Object
	shaderTextures []*material.ShaderTexture
}

var _ Scene = &scene{}

// NewScene creates an empty scene.
//
// Parameters:
//   - options: variadic list of SceneBuilderOption functions to configure the scene
//
// Returns:
//   - Scene: the scene
func NewScene(options ...SceneBuilderOption) Scene {
	s := &scene{
		name: "scene",
		root: newObject(nil, "root"),
	}
	for _, opt := range options {
		opt(s)
	}
	return s
}

func (s *scene) Name() string {
	return s.name
}

func (s *scene) Root() *Object {
	return s.root
}

func (s *scene) Add(nodes ...Node) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.root.Add(nodes...)
}

func (s *scene) Remove(nodes ...Node) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, n := range nodes {
		if p := n.Base().Parent(); p != nil {
			p.Remove(n)
		}
	}
}

func (s *scene) AddShaderTexture(t *material.ShaderTexture) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !slices.Contains(s.shaderTextures, t) {
		s.shaderTextures = append(s.shaderTextures, t)
	}
}

func (s *scene) RemoveShaderTexture(t *material.ShaderTexture) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := slices.Index(s.shaderTextures, t); i >= 0 {
		s.shaderTextures = slices.Delete(s.shaderTextures, i, i+1)
	}
}

func (s *scene) ShaderTextures() []*material.ShaderTexture {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.shaderTextures
}

func (s *scene) Update(elapsed, delta time.Duration) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, t := range s.shaderTextures {
		t.Update(elapsed)
	}
	s.root.Traverse(func(n Node) bool {
		if l, ok := n.(*Light); ok {
			l.Sync()
		}
		return true
	})
	s.root.Update(elapsed, delta)
}

func (s *scene) UpdateWorldMatrix() {
	s.mu.RLock()
	defer s.mu.RUnlock()
	s.root.UpdateWorldMatrix(false)
}

func (s *scene) Collect(c *Collection) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c.Reset()
	s.root.Traverse(func(n Node) bool {
		switch v := n.(type) {
		case *Light:
			if v.Perspective() {
				c.PerspectiveLights = append(c.PerspectiveLights, v)
			} else {
				c.ScreenLights = append(c.ScreenLights, v)
			}
		case *Skybox:
			c.Skyboxes = append(c.Skyboxes, v)
		case *Mirror:
			c.Mirrors = append(c.Mirrors, v)
			c.Meshes = append(c.Meshes, v.Mesh)
		case *Mesh:
			c.Meshes = append(c.Meshes, v)
		case *CubeRenderer:
			c.CubeRenderers = append(c.CubeRenderers, v)
		case *Convolver:
			c.Convolvers = append(c.Convolvers, v)
		}
		return true
	})
}

func (s *scene) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := -1
	s.root.Traverse(func(Node) bool {
		n++
		return true
	})
	return n
}
