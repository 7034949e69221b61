// Package pass bundles the render passes of a frame with the offscreen targets they draw into, so a
// whole set of g-buffers can be created and resized as a unit.
package pass

import (
	"fmt"
	"strings"

	"github.com/MKHenson/trike3d-sub000/common"
	"github.com/MKHenson/trike3d-sub000/engine/camera"
	"github.com/MKHenson/trike3d-sub000/engine/renderer/backend"
	"github.com/MKHenson/trike3d-sub000/engine/renderer/material"
	"github.com/MKHenson/trike3d-sub000/engine/renderer/texture"
)

// Filter selects the buckets of drawables a pass draws.
type Filter uint8

const (
	FilterSolid Filter = 1 << iota
	FilterTransparent
	FilterLights
	FilterSky
	FilterCasters

	FilterNone Filter = 0
)

// Has reports whether every bit of other is set in f.
func (f Filter) Has(other Filter) bool {
	return f&other == other
}

func (f Filter) String() string {
	if f == FilterNone {
		return "none"
	}
	var parts []string
	for _, e := range []struct {
		bit  Filter
		name string
	}{
		{FilterSolid, "solid"},
		{FilterTransparent, "transparent"},
		{FilterLights, "lights"},
		{FilterSky, "sky"},
		{FilterCasters, "casters"},
	} {
		if f.Has(e.bit) {
			parts = append(parts, e.name)
		}
	}
	return strings.Join(parts, "|")
}

// Pass is one stage of a frame: the target it draws into, the camera it draws with, the drawables
// it draws and how its target is cleared first.
type Pass struct {
	passType   material.PassType
	target     *texture.RenderTarget
	camera     camera.Camera
	filter     Filter
	clear      backend.ClearFlags
	clearColor common.Color
	generation int
}

// NewPass creates a pass.
//
// Parameters:
//   - passType: the stage the pass runs
//   - target: the target to draw into, nil for the default surface
//   - options: variadic list of PassBuilderOption functions to configure the pass
//
// Returns:
//   - *Pass: the pass
func NewPass(passType material.PassType, target *texture.RenderTarget, options ...PassBuilderOption) *Pass {
	p := &Pass{passType: passType, target: target}
	for _, opt := range options {
		opt(p)
	}
	return p
}

func (p *Pass) Type() material.PassType {
	return p.passType
}

func (p *Pass) Name() string {
	return p.passType.String()
}

// Target returns the render target, or nil when the pass draws into the default surface.
func (p *Pass) Target() *texture.RenderTarget {
	return p.target
}

func (p *Pass) SetTarget(t *texture.RenderTarget) {
	p.target = t
	p.generation++
}

// Camera returns the camera the pass last drew with.
func (p *Pass) Camera() camera.Camera {
	return p.camera
}

func (p *Pass) SetCamera(c camera.Camera) {
	p.camera = c
}

func (p *Pass) Filter() Filter {
	return p.filter
}

func (p *Pass) SetFilter(f Filter) {
	p.filter = f
}

// AutoClear returns the buffers cleared when the pass begins.
func (p *Pass) AutoClear() backend.ClearFlags {
	return p.clear
}

func (p *Pass) SetAutoClear(flags backend.ClearFlags) {
	p.clear = flags
}

func (p *Pass) ClearColor() common.Color {
	return p.clearColor
}

func (p *Pass) SetClearColor(c common.Color) {
	p.clearColor = c
}

// Generation increments each time the pass target is replaced or resized.
func (p *Pass) Generation() int {
	return p.generation
}

// Begin binds the pass target and applies the auto-clear.
//
// Parameters:
//   - b: the backend
//   - face: the cube face to draw into, ignored for 2D targets
//
// Returns:
//   - error: an error if the target could not be built
func (p *Pass) Begin(b backend.Backend, face int) error {
	if p.target == nil {
		b.BindTarget(backend.DefaultTarget, 0)
	} else if err := p.target.Bind(b, face); err != nil {
		return fmt.Errorf("pass %s: %w", p.Name(), err)
	}
	if p.clear != 0 {
		b.Clear(p.clear, p.clearColor)
	}
	return nil
}

func (p *Pass) resize(width, height int) {
	if p.target == nil {
		return
	}
	p.target.Resize(width, height)
	p.generation++
}
