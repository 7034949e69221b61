package scene

import (
	"github.com/MKHenson/trike3d-sub000/common"
	"github.com/MKHenson/trike3d-sub000/engine/geometry"
	"github.com/MKHenson/trike3d-sub000/engine/renderer/material"
	"github.com/MKHenson/trike3d-sub000/engine/renderer/texture"
)

// Skybox is a full-screen quad drawn behind every solid with a sky material.
type Skybox struct {
	*Mesh
}

// NewSkybox creates a sky with a vertical gradient, or a cube map when cube is not nil.
//
// Parameters:
//   - top: the zenith color
//   - horizon: the horizon color
//   - cube: an optional cube texture
//
// Returns:
//   - *Skybox: the skybox
func NewSkybox(top, horizon common.Color, cube texture.Texture) *Skybox {
	s := &Skybox{}
	s.Mesh = NewMesh(geometry.NewScreenQuad(), material.NewSkyMaterial(top, horizon, cube),
		WithSceneCull(false), WithCastShadows(false))
	s.Mesh.owner = s
	s.name = "skybox"
	return s
}
