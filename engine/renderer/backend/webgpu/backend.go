// Package webgpu implements backend.Backend on a WebGPU device. The immediate-mode contract is
// emulated by caching one render pipeline per distinct fixed-function state and building bind
// groups from the uniform values current at each draw.
package webgpu

import (
	"bytes"
	"fmt"
	"runtime"
	"sync"

	"github.com/MKHenson/trike3d-sub000/common"
	"github.com/MKHenson/trike3d-sub000/engine/renderer/backend"
	"github.com/cogentcore/webgpu/wgpu"
)

// depthStencilFormat is used for every depth-stencil attachment, including the surface's.
const depthStencilFormat = wgpu.TextureFormatDepth24PlusStencil8

// maxBindGroups is raised from the default limit so materials may spread variables across
// more than four groups.
const maxBindGroups = 8

type wgpuBackend struct {
	mu *sync.Mutex

	surfaceDescriptor    *wgpu.SurfaceDescriptor
	forceFallbackAdapter bool

	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	device   *wgpu.Device
	queue    *wgpu.Queue
	surface  *wgpu.Surface
	limits   wgpu.Limits

	surfaceFormat wgpu.TextureFormat
	presentMode   wgpu.PresentMode
	width         int
	height        int
	viewport      common.Viewport
	surfaceDepth  *attachment

	next     uint32
	programs map[backend.Program]*program
	buffers  map[backend.Buffer]*buffer
	textures map[backend.Texture]*texture
	targets  map[backend.Target]*target

	state    drawState
	frame    frame
	uniforms *uniformArena
	mipmaps  *mipmapper

	// white and whiteCube are bound to texture variables whose unit holds no texture.
	white     backend.Texture
	whiteCube backend.Texture
}

var _ backend.Backend = &wgpuBackend{}

// NewBackend creates a WebGPU backend drawing to the surface described by surfaceDescriptor.
// The device is requested by Initialize. The calling goroutine is locked to its OS thread since
// surface operations must stay on the thread that created the window.
//
// Parameters:
//   - surfaceDescriptor: the platform surface descriptor of the window
//   - forceFallbackAdapter: true to request a software adapter
//
// Returns:
//   - backend.Backend: the backend
func NewBackend(surfaceDescriptor *wgpu.SurfaceDescriptor, forceFallbackAdapter bool) backend.Backend {
	runtime.LockOSThread()
	return &wgpuBackend{
		mu:                   &sync.Mutex{},
		surfaceDescriptor:    surfaceDescriptor,
		forceFallbackAdapter: forceFallbackAdapter,
		presentMode:          wgpu.PresentModeImmediate,
		programs:             make(map[backend.Program]*program),
		buffers:              make(map[backend.Buffer]*buffer),
		textures:             make(map[backend.Texture]*texture),
		targets:              make(map[backend.Target]*target),
		state:                newDrawState(),
	}
}

func (b *wgpuBackend) handle() uint32 {
	b.next++
	return b.next
}

func (b *wgpuBackend) Type() backend.Type {
	return backend.TypeWGPU
}

func (b *wgpuBackend) Initialize(width, height int) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if width <= 0 || height <= 0 {
		return fmt.Errorf("invalid surface size %dx%d", width, height)
	}
	if b.surfaceDescriptor == nil {
		return fmt.Errorf("no surface descriptor")
	}

	b.instance = wgpu.CreateInstance(nil)
	b.surface = b.instance.CreateSurface(b.surfaceDescriptor)

	a, err := b.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: b.forceFallbackAdapter,
		CompatibleSurface:    b.surface,
	})
	if err != nil {
		return fmt.Errorf("request adapter: %w", err)
	}
	b.adapter = a

	b.limits = wgpu.DefaultLimits()
	b.limits.MaxBindGroups = maxBindGroups

	d, err := a.RequestDevice(&wgpu.DeviceDescriptor{
		Label: "Main Device",
		RequiredLimits: &wgpu.RequiredLimits{
			Limits: b.limits,
		},
	})
	if err != nil {
		return fmt.Errorf("request device: %w", err)
	}
	b.device = d
	b.queue = d.GetQueue()
	b.uniforms = newUniformArena(d)
	b.mipmaps = newMipmapper(d)

	if err := b.configureSurface(width, height); err != nil {
		return err
	}

	b.white, err = b.createTexture(backend.TextureDescriptor{
		Label:     "white",
		Width:     1,
		Height:    1,
		Format:    backend.FormatRGBA8,
		MipLevels: 1,
	}, [][]byte{{0xFF, 0xFF, 0xFF, 0xFF}})
	if err != nil {
		return err
	}
	b.whiteCube, err = b.createTexture(backend.TextureDescriptor{
		Label:     "white cube",
		Width:     1,
		Height:    1,
		Format:    backend.FormatRGBA8,
		Cube:      true,
		MipLevels: 1,
	}, [][]byte{bytes.Repeat([]byte{0xFF}, 4*6)})
	if err != nil {
		return err
	}

	common.Logger().Info("wgpu backend initialized", "width", width, "height", height, "format", b.surfaceFormat)
	return nil
}

// configureSurface configures the surface for the given size and recreates the depth-stencil
// attachment drawn with it.
func (b *wgpuBackend) configureSurface(width, height int) error {
	capabilities := b.surface.GetCapabilities(b.adapter)
	if len(capabilities.Formats) == 0 {
		return fmt.Errorf("surface reports no formats")
	}
	b.surfaceFormat = capabilities.Formats[0]

	b.surface.Configure(b.adapter, b.device, &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      b.surfaceFormat,
		Width:       uint32(width),
		Height:      uint32(height),
		PresentMode: b.presentMode,
		AlphaMode:   capabilities.AlphaModes[0],
	})

	depth, err := b.newAttachment("Surface Depth", width, height, 1)
	if err != nil {
		return err
	}
	if b.surfaceDepth != nil {
		b.frame.retire(b.surfaceDepth.release)
	}
	b.surfaceDepth = depth
	b.width, b.height = width, height
	b.viewport = common.Viewport{Width: width, Height: height}
	return nil
}

func (b *wgpuBackend) Capabilities() backend.Capabilities {
	return backend.Capabilities{
		FloatTargets:    true,
		CubeTargets:     true,
		MaxTextureUnits: int(b.limits.MaxSampledTexturesPerShaderStage),
		MaxTextureSize:  int(b.limits.MaxTextureDimension2D),
	}
}

func (b *wgpuBackend) SetPresentMode(mode backend.PresentMode) {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch mode {
	case backend.PresentModeVSync:
		b.presentMode = wgpu.PresentModeFifo
	case backend.PresentModeUncapped:
		fallthrough
	default:
		b.presentMode = wgpu.PresentModeImmediate
	}
}

func (b *wgpuBackend) Resize(width, height int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.device == nil || width <= 0 || height <= 0 {
		return
	}
	b.flushClear()
	b.endPass()
	b.submit()
	b.frame.releaseSurface()
	if err := b.configureSurface(width, height); err != nil {
		common.Logger().Error("surface reconfiguration failed", "error", err)
	}
}

func (b *wgpuBackend) SetViewport(v common.Viewport) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.viewport = v
}

func (b *wgpuBackend) Present() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.flushClear()
	b.endPass()
	err := b.submit()
	if b.frame.surfaceTexture != nil {
		b.surface.Present()
		b.frame.releaseSurface()
	}
	return err
}

func (b *wgpuBackend) Dispose() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.device == nil {
		return
	}
	b.endPass()
	b.submit()
	b.frame.releaseSurface()

	for h, p := range b.programs {
		p.release()
		delete(b.programs, h)
	}
	for h, buf := range b.buffers {
		buf.gpu.Release()
		delete(b.buffers, h)
	}
	for h := range b.targets {
		b.deleteTarget(h)
	}
	for h, t := range b.textures {
		t.release()
		delete(b.textures, h)
	}
	if b.surfaceDepth != nil {
		b.surfaceDepth.release()
		b.surfaceDepth = nil
	}
	b.mipmaps.release()
	b.uniforms.release()

	b.queue.Release()
	b.device.Release()
	b.adapter.Release()
	b.surface.Release()
	b.instance.Release()
	b.device = nil
	common.Logger().Info("wgpu backend disposed")
}
