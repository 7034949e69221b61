package scene

import "github.com/MKHenson/trike3d-sub000/engine/renderer/material"

// SceneBuilderOption is a functional option for configuring a Scene.
// Use the With* functions to create options.
type SceneBuilderOption func(s *scene)

// WithSceneName sets the scene's identifier.
//
// Parameters:
//   - name: the scene name
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithSceneName(name string) SceneBuilderOption {
	return func(s *scene) {
		s.name = name
	}
}

// WithNodes adds initial nodes to the scene root.
//
// Parameters:
//   - nodes: the nodes to add
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithNodes(nodes ...Node) SceneBuilderOption {
	return func(s *scene) {
		s.root.Add(nodes...)
	}
}

// WithShaderTextures registers shader textures drawn before the scene.
//
// Parameters:
//   - textures: the shader textures
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithShaderTextures(textures ...*material.ShaderTexture) SceneBuilderOption {
	return func(s *scene) {
		s.shaderTextures = append(s.shaderTextures, textures...)
	}
}
