package pass

import (
	"fmt"

	"github.com/MKHenson/trike3d-sub000/common"
	"github.com/MKHenson/trike3d-sub000/engine/renderer/backend"
	"github.com/MKHenson/trike3d-sub000/engine/renderer/material"
	"github.com/MKHenson/trike3d-sub000/engine/renderer/texture"
)

// Collection is a named set of passes over one set of equally sized offscreen targets. The g-buffers,
// the light buffer and the composition target share one depth-stencil attachment, so stencil
// values written while filling the g-buffers restrict the lighting and composition draws.
//
// Targets:
//   - gBuffer: albedo and opacity
//   - gBuffer2: packed normal, linear depth, shininess and shadow factor (RGBA32F)
//   - light: accumulated diffuse and specular light
//   - composition: the composed frame
//   - post: the second post-processing buffer, ping-ponged with composition
type Collection struct {
	name        string
	width       int
	height      int
	lightFormat backend.TextureFormat
	clearColor  common.Color

	gBuffer     *texture.RenderTarget
	gBuffer2    *texture.RenderTarget
	light       *texture.RenderTarget
	composition *texture.RenderTarget
	post        *texture.RenderTarget
	frame       *texture.RenderTarget

	passes     map[material.PassType]*Pass
	order      []material.PassType
	generation int
}

// NewCollection creates the passes and targets of a deferred frame. Backend targets are created on
// first use.
//
// Parameters:
//   - name: the collection name, used as a label prefix
//   - width: the width of every target in pixels
//   - height: the height of every target in pixels
//   - options: variadic list of CollectionBuilderOption functions to configure the collection
//
// Returns:
//   - *Collection: the collection
func NewCollection(name string, width, height int, options ...CollectionBuilderOption) *Collection {
	if width <= 0 || height <= 0 {
		panic(fmt.Sprintf("pass: invalid collection size %dx%d", width, height))
	}
	c := &Collection{
		name:        name,
		width:       width,
		height:      height,
		lightFormat: backend.FormatRGBA16F,
		passes:      make(map[material.PassType]*Pass),
	}
	for _, opt := range options {
		opt(c)
	}

	label := func(s string) texture.RenderTargetOption {
		return texture.WithTargetLabel(name + "-" + s)
	}
	c.gBuffer = texture.NewRenderTarget(width, height, label("gbuffer"), texture.WithTargetFilter(backend.FilterNearest))
	shared := texture.WithSharedDepth(c.gBuffer)
	c.gBuffer2 = texture.NewRenderTarget(width, height, label("gbuffer2"), shared,
		texture.WithFormat(backend.FormatRGBA32F), texture.WithTargetFilter(backend.FilterNearest))
	c.light = texture.NewRenderTarget(width, height, label("light"), shared,
		texture.WithFormat(c.lightFormat), texture.WithTargetFilter(backend.FilterNearest))
	c.composition = texture.NewRenderTarget(width, height, label("composition"), shared)
	c.post = texture.NewRenderTarget(width, height, label("post"), texture.WithDepth(false))
	c.frame = c.composition

	black := common.Color{}
	c.add(NewPass(material.PassSky, c.composition,
		WithFilter(FilterSky), WithAutoClear(backend.ClearAll, c.clearColor)))
	c.add(NewPass(material.PassGBuffer, c.gBuffer,
		WithFilter(FilterSolid|FilterTransparent), WithAutoClear(backend.ClearColor, black)))
	c.add(NewPass(material.PassGBuffer2, c.gBuffer2,
		WithFilter(FilterSolid|FilterTransparent), WithAutoClear(backend.ClearColor, black)))
	c.add(NewPass(material.PassLight, c.light,
		WithFilter(FilterLights), WithAutoClear(backend.ClearColor, black)))
	c.add(NewPass(material.PassTransparentLight, c.light,
		WithFilter(FilterLights), WithAutoClear(backend.ClearColor, black)))
	c.add(NewPass(material.PassComposition, c.composition))
	c.add(NewPass(material.PassShadow, nil,
		WithFilter(FilterCasters), WithAutoClear(backend.ClearAll, common.Color{R: 1, G: 1, B: 1, A: 1})))
	c.add(NewPass(material.PassTexture, nil, WithAutoClear(backend.ClearColor, black)))
	c.add(NewPass(material.PassScreen, nil))
	return c
}

func (c *Collection) add(p *Pass) {
	c.passes[p.passType] = p
	c.order = append(c.order, p.passType)
}

func (c *Collection) Name() string {
	return c.name
}

// Size returns the dimensions shared by every target.
func (c *Collection) Size() (width, height int) {
	return c.width, c.height
}

// Pass returns the pass of a type. It panics for a type the collection does not hold.
//
// Parameters:
//   - t: the pass type
//
// Returns:
//   - *Pass: the pass
func (c *Collection) Pass(t material.PassType) *Pass {
	p, ok := c.passes[t]
	if !ok {
		panic(fmt.Sprintf("pass: collection %s has no %s pass", c.name, t))
	}
	return p
}

// Passes returns every pass in frame order.
func (c *Collection) Passes() []*Pass {
	out := make([]*Pass, len(c.order))
	for i, t := range c.order {
		out[i] = c.passes[t]
	}
	return out
}

func (c *Collection) GBuffer() *texture.RenderTarget {
	return c.gBuffer
}

func (c *Collection) GBuffer2() *texture.RenderTarget {
	return c.gBuffer2
}

func (c *Collection) LightBuffer() *texture.RenderTarget {
	return c.light
}

func (c *Collection) Composition() *texture.RenderTarget {
	return c.composition
}

// Frame returns the target holding the latest composed image. It starts each frame as the
// composition target and alternates with the post target on every SwapFrame.
func (c *Collection) Frame() *texture.RenderTarget {
	return c.frame
}

// NextFrame returns the target the next post pass draws into.
func (c *Collection) NextFrame() *texture.RenderTarget {
	if c.frame == c.composition {
		return c.post
	}
	return c.composition
}

// SwapFrame makes NextFrame the current frame.
func (c *Collection) SwapFrame() {
	c.frame = c.NextFrame()
}

// ResetFrame makes the composition target the current frame.
func (c *Collection) ResetFrame() {
	c.frame = c.composition
}

// SetClearColor sets the color the frame is cleared to before the sky is drawn.
func (c *Collection) SetClearColor(color common.Color) {
	c.clearColor = color
	c.passes[material.PassSky].SetClearColor(color)
}

// Generation increments on every effective Resize.
func (c *Collection) Generation() int {
	return c.generation
}

// Resize resizes every owned target and pass together.
//
// Parameters:
//   - width: the new width in pixels
//   - height: the new height in pixels
func (c *Collection) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		panic(fmt.Sprintf("pass: invalid collection size %dx%d", width, height))
	}
	if width == c.width && height == c.height {
		return
	}
	c.width, c.height = width, height
	// Passes sharing a target each bump their generation. Resizing a target twice is a no-op.
	for _, t := range c.order {
		c.passes[t].resize(width, height)
	}
	c.post.Resize(width, height)
	c.generation++
	common.Logger().Info("pass: collection resized", "collection", c.name, "width", width, "height", height)
}

// Build creates any missing backend target.
//
// Parameters:
//   - b: the backend
//
// Returns:
//   - error: an error if a target could not be created
func (c *Collection) Build(b backend.Backend) error {
	for _, t := range []*texture.RenderTarget{c.gBuffer, c.gBuffer2, c.light, c.composition, c.post} {
		if err := t.Build(b); err != nil {
			return err
		}
	}
	return nil
}

// Dispose queues every backend target for release.
func (c *Collection) Dispose() {
	for _, t := range []*texture.RenderTarget{c.gBuffer, c.gBuffer2, c.light, c.composition, c.post} {
		t.Dispose()
	}
}
