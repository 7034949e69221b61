package webgpu

import (
	"fmt"

	"github.com/MKHenson/trike3d-sub000/common"
	"github.com/MKHenson/trike3d-sub000/engine/renderer/backend"
	"github.com/cogentcore/webgpu/wgpu"
)

// pendingClear is a Clear that has not been encoded yet. It becomes the load ops of the next
// render pass on the bound target.
type pendingClear struct {
	flags backend.ClearFlags
	color common.Color
}

// frame is the command recording state between two submissions.
type frame struct {
	encoder *wgpu.CommandEncoder
	pass    *wgpu.RenderPassEncoder

	// passTarget and passFace identify the attachments the open pass writes.
	passTarget backend.Target
	passFace   int
	hasDepth   bool
	formats    []wgpu.TextureFormat

	clear *pendingClear

	surfaceTexture *wgpu.Texture
	surfaceView    *wgpu.TextureView

	// retired are releases deferred until the work referencing them has been submitted.
	retired []func()
}

// retire defers f until the next submission, or runs it now when nothing is being recorded.
func (f *frame) retire(fn func()) {
	if f.encoder == nil {
		fn()
		return
	}
	f.retired = append(f.retired, fn)
}

func (f *frame) releaseSurface() {
	if f.surfaceView != nil {
		f.surfaceView.Release()
		f.surfaceView = nil
	}
	if f.surfaceTexture != nil {
		f.surfaceTexture.Release()
		f.surfaceTexture = nil
	}
}

// attachment is a depth-stencil texture with one view per layer. It is reference counted so
// targets created with ShareDepth can use it.
type attachment struct {
	texture *wgpu.Texture
	views   []*wgpu.TextureView
	refs    int
}

func (a *attachment) release() {
	for _, v := range a.views {
		v.Release()
	}
	a.texture.Release()
}

func (b *wgpuBackend) newAttachment(label string, width, height, layers int) (*attachment, error) {
	tex, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
		Label: label,
		Size: wgpu.Extent3D{
			Width:              uint32(width),
			Height:             uint32(height),
			DepthOrArrayLayers: uint32(layers),
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        depthStencilFormat,
		Usage:         wgpu.TextureUsageRenderAttachment,
	})
	if err != nil {
		return nil, err
	}
	a := &attachment{texture: tex, refs: 1}
	for layer := range layers {
		view, err := tex.CreateView(&wgpu.TextureViewDescriptor{
			Label:           label,
			Format:          depthStencilFormat,
			Dimension:       wgpu.TextureViewDimension2D,
			BaseMipLevel:    0,
			MipLevelCount:   1,
			BaseArrayLayer:  uint32(layer),
			ArrayLayerCount: 1,
			Aspect:          wgpu.TextureAspectAll,
		})
		if err != nil {
			a.release()
			return nil, err
		}
		a.views = append(a.views, view)
	}
	return a, nil
}

func (b *wgpuBackend) ensureEncoder() error {
	if b.frame.encoder != nil {
		return nil
	}
	encoder, err := b.device.CreateCommandEncoder(nil)
	if err != nil {
		return err
	}
	b.frame.encoder = encoder
	return nil
}

// surfaceView acquires the current swapchain image on first use within a frame.
func (b *wgpuBackend) acquireSurface() (*wgpu.TextureView, error) {
	if b.frame.surfaceView != nil {
		return b.frame.surfaceView, nil
	}
	surfaceTexture, err := b.surface.GetCurrentTexture()
	if err != nil {
		return nil, err
	}
	view, err := surfaceTexture.CreateView(nil)
	if err != nil {
		surfaceTexture.Release()
		return nil, err
	}
	b.frame.surfaceTexture = surfaceTexture
	b.frame.surfaceView = view
	return view, nil
}

// beginPass opens a render pass on the bound target, consuming any pending clear.
func (b *wgpuBackend) beginPass() error {
	if b.frame.pass != nil {
		return nil
	}
	if err := b.ensureEncoder(); err != nil {
		return err
	}

	var colors []*wgpu.TextureView
	var formats []wgpu.TextureFormat
	var depth *wgpu.TextureView

	if b.state.target == backend.DefaultTarget {
		view, err := b.acquireSurface()
		if err != nil {
			return err
		}
		colors = []*wgpu.TextureView{view}
		formats = []wgpu.TextureFormat{b.surfaceFormat}
		depth = b.surfaceDepth.views[0]
	} else {
		t, ok := b.targets[b.state.target]
		if !ok {
			return fmt.Errorf("unknown target %d", b.state.target)
		}
		face := 0
		if t.desc.Cube {
			face = b.state.face
		}
		for _, tex := range t.colors {
			colors = append(colors, t.faceViews[tex][face])
			formats = append(formats, b.textures[tex].format)
		}
		if t.depth != nil {
			depth = t.depth.views[face]
		}
	}

	clear := b.frame.clear
	b.frame.clear = nil
	load := func(flag backend.ClearFlags) wgpu.LoadOp {
		if clear != nil && clear.flags&flag != 0 {
			return wgpu.LoadOpClear
		}
		return wgpu.LoadOpLoad
	}

	desc := &wgpu.RenderPassDescriptor{}
	for _, view := range colors {
		a := wgpu.RenderPassColorAttachment{
			View:    view,
			LoadOp:  load(backend.ClearColor),
			StoreOp: wgpu.StoreOpStore,
		}
		if clear != nil {
			a.ClearValue = wgpu.Color{
				R: float64(clear.color.R),
				G: float64(clear.color.G),
				B: float64(clear.color.B),
				A: float64(clear.color.A),
			}
		}
		desc.ColorAttachments = append(desc.ColorAttachments, a)
	}
	if depth != nil {
		desc.DepthStencilAttachment = &wgpu.RenderPassDepthStencilAttachment{
			View:              depth,
			DepthLoadOp:       load(backend.ClearDepth),
			DepthStoreOp:      wgpu.StoreOpStore,
			DepthClearValue:   1.0,
			StencilLoadOp:     load(backend.ClearStencil),
			StencilStoreOp:    wgpu.StoreOpStore,
			StencilClearValue: 0,
		}
	}

	b.frame.pass = b.frame.encoder.BeginRenderPass(desc)
	b.frame.passTarget = b.state.target
	b.frame.passFace = b.state.face
	b.frame.hasDepth = depth != nil
	b.frame.formats = formats

	if b.state.target == backend.DefaultTarget {
		v := b.viewport
		if v.Width > 0 && v.Height > 0 {
			b.frame.pass.SetViewport(float32(v.X), float32(v.Y), float32(v.Width), float32(v.Height), 0, 1)
		}
	}
	return nil
}

func (b *wgpuBackend) endPass() {
	if b.frame.pass == nil {
		return
	}
	b.frame.pass.End()
	b.frame.pass.Release()
	b.frame.pass = nil
}

// flushClear encodes a pending clear that no draw consumed.
func (b *wgpuBackend) flushClear() {
	if b.frame.clear == nil {
		return
	}
	if err := b.beginPass(); err != nil {
		b.frame.clear = nil
		common.Logger().Error("clear dropped", "target", b.state.target, "error", err)
		return
	}
	b.endPass()
}

// submit finishes the recorded commands, submits them and runs deferred releases.
func (b *wgpuBackend) submit() error {
	var err error
	if b.frame.encoder != nil {
		var cmd *wgpu.CommandBuffer
		cmd, err = b.frame.encoder.Finish(nil)
		if err == nil {
			b.queue.Submit(cmd)
			cmd.Release()
		}
		b.frame.encoder.Release()
		b.frame.encoder = nil
	}
	for _, fn := range b.frame.retired {
		fn()
	}
	b.frame.retired = b.frame.retired[:0]
	b.uniforms.reset()
	return err
}
