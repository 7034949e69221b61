package pass

import (
	"testing"

	"github.com/MKHenson/trike3d-sub000/common"
	"github.com/MKHenson/trike3d-sub000/engine/renderer/backend"
	"github.com/MKHenson/trike3d-sub000/engine/renderer/material"
	"github.com/MKHenson/trike3d-sub000/engine/resource"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectionPasses(t *testing.T) {
	assert := assert.New(t)

	c := NewCollection("main", 64, 32)
	w, h := c.Size()
	assert.Equal(64, w)
	assert.Equal(32, h)

	var types []material.PassType
	for _, p := range c.Passes() {
		types = append(types, p.Type())
	}
	assert.ElementsMatch([]material.PassType{
		material.PassSky, material.PassGBuffer, material.PassGBuffer2, material.PassLight,
		material.PassTransparentLight, material.PassComposition, material.PassShadow,
		material.PassTexture, material.PassScreen,
	}, types)

	assert.Same(c.GBuffer(), c.Pass(material.PassGBuffer).Target())
	assert.Same(c.LightBuffer(), c.Pass(material.PassTransparentLight).Target())
	assert.Same(c.Composition(), c.Pass(material.PassSky).Target())
	assert.Nil(c.Pass(material.PassScreen).Target())
	assert.Equal(backend.FormatRGBA32F, c.GBuffer2().Format())
	assert.True(c.Pass(material.PassGBuffer).Filter().Has(FilterSolid | FilterTransparent))
	assert.Equal(backend.ClearAll, c.Pass(material.PassSky).AutoClear())
	assert.Panics(func() { c.Pass(material.PassPre) })
}

func TestCollectionResizesAsUnit(t *testing.T) {
	assert := assert.New(t)

	c := NewCollection("main", 64, 64)
	gens := map[material.PassType]int{}
	for _, p := range c.Passes() {
		gens[p.Type()] = p.Generation()
	}

	c.Resize(64, 64)
	assert.Zero(c.Generation())

	c.Resize(128, 96)
	assert.Equal(1, c.Generation())
	for _, p := range c.Passes() {
		if p.Target() == nil {
			assert.Equal(gens[p.Type()], p.Generation(), p.Name())
			continue
		}
		assert.Equal(gens[p.Type()]+1, p.Generation(), p.Name())
		assert.Equal(128, p.Target().Width(), p.Name())
		assert.Equal(96, p.Target().Height(), p.Name())
	}
	assert.Equal(128, c.NextFrame().Width())
	assert.Panics(func() { c.Resize(0, 10) })
}

func TestCollectionBuildsSharedDepth(t *testing.T) {
	resource.Drain(backend.NewRecordingBackend())
	b := backend.NewRecordingBackend(backend.WithStencilResolution(4))
	require.NoError(t, b.Initialize(16, 16))

	c := NewCollection("main", 16, 16, WithCollectionClearColor(common.Color{B: 1, A: 1}))
	require.NoError(t, c.Build(b))
	assert.Equal(t, 5, b.Count(backend.OpCreateTarget))

	// Stencil written through the g-buffer is visible from the composition target.
	require.NoError(t, c.Pass(material.PassSky).Begin(b, 0))
	require.NoError(t, c.GBuffer().Bind(b, 0))
	b.Clear(backend.ClearStencil, common.Color{})
	assert.Equal(t, b.Stencil(c.GBuffer().Handle(), 0), b.Stencil(c.Composition().Handle(), 0))
	assert.Equal(t, common.Color{B: 1, A: 1}, c.Pass(material.PassSky).ClearColor())

	c.Dispose()
	assert.Equal(t, 5, resource.Drain(b))
	assert.Zero(t, b.Live())
}

func TestFramePingPong(t *testing.T) {
	c := NewCollection("main", 8, 8)
	assert.Same(t, c.Composition(), c.Frame())
	next := c.NextFrame()
	assert.NotSame(t, c.Composition(), next)

	c.SwapFrame()
	assert.Same(t, next, c.Frame())
	c.SwapFrame()
	assert.Same(t, c.Composition(), c.Frame())

	c.SwapFrame()
	c.ResetFrame()
	assert.Same(t, c.Composition(), c.Frame())
}

func TestFilterString(t *testing.T) {
	assert.Equal(t, "none", FilterNone.String())
	assert.Equal(t, "solid|lights", (FilterSolid | FilterLights).String())
}
