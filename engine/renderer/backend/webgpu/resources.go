package webgpu

import (
	"fmt"
	"math/bits"

	"github.com/MKHenson/trike3d-sub000/engine/renderer/backend"
	"github.com/cogentcore/webgpu/wgpu"
)

type buffer struct {
	gpu  *wgpu.Buffer
	kind backend.BufferKind
	size int
}

type texture struct {
	gpu     *wgpu.Texture
	view    *wgpu.TextureView
	sampler *wgpu.Sampler
	format  wgpu.TextureFormat
	filter  backend.FilterMode
	cube    bool
	levels  int
	width   int
	height  int
	owner   backend.Target
}

func (t *texture) release() {
	t.view.Release()
	t.sampler.Release()
	t.gpu.Release()
}

// filterable reports whether the texture may be read through a filtering sampler.
func (t *texture) filterable() bool {
	return t.format != wgpu.TextureFormatRGBA32Float
}

type target struct {
	desc   backend.TargetDescriptor
	colors []backend.Texture
	depth  *attachment

	// faceViews holds the mip 0 render view of each layer per color texture.
	faceViews map[backend.Texture][]*wgpu.TextureView
}

func textureFormat(f backend.TextureFormat) wgpu.TextureFormat {
	switch f {
	case backend.FormatRGBA16F:
		return wgpu.TextureFormatRGBA16Float
	case backend.FormatRGBA32F:
		return wgpu.TextureFormatRGBA32Float
	default:
		return wgpu.TextureFormatRGBA8Unorm
	}
}

func addressMode(w backend.WrapMode) wgpu.AddressMode {
	switch w {
	case backend.WrapRepeat:
		return wgpu.AddressModeRepeat
	case backend.WrapMirror:
		return wgpu.AddressModeMirrorRepeat
	default:
		return wgpu.AddressModeClampToEdge
	}
}

// mipLevels returns the length of a full mip chain for a width by height image.
func mipLevels(width, height int) int {
	return bits.Len(uint(max(width, height, 1)))
}

func (b *wgpuBackend) createSampler(label string, filter backend.FilterMode, wrap backend.WrapMode, format wgpu.TextureFormat) (*wgpu.Sampler, error) {
	mode := wgpu.FilterModeLinear
	mipmap := wgpu.MipmapFilterModeLinear
	if filter == backend.FilterNearest || format == wgpu.TextureFormatRGBA32Float {
		mode = wgpu.FilterModeNearest
		mipmap = wgpu.MipmapFilterModeNearest
	}
	return b.device.CreateSampler(&wgpu.SamplerDescriptor{
		Label:         label + " Sampler",
		AddressModeU:  addressMode(wrap),
		AddressModeV:  addressMode(wrap),
		AddressModeW:  addressMode(wrap),
		MagFilter:     mode,
		MinFilter:     mode,
		MipmapFilter:  mipmap,
		LodMinClamp:   0,
		LodMaxClamp:   32,
		MaxAnisotropy: 1,
	})
}

// newTexture creates a sampled 2D or cube texture with its sampling view and sampler.
func (b *wgpuBackend) newTexture(label string, width, height, levels int, format wgpu.TextureFormat, cube bool, usage wgpu.TextureUsage, filter backend.FilterMode, wrap backend.WrapMode) (*texture, error) {
	layers := 1
	dimension := wgpu.TextureViewDimension2D
	if cube {
		layers = 6
		dimension = wgpu.TextureViewDimensionCube
	}
	gpu, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
		Label: label,
		Usage: usage,
		Size: wgpu.Extent3D{
			Width:              uint32(width),
			Height:             uint32(height),
			DepthOrArrayLayers: uint32(layers),
		},
		Dimension:     wgpu.TextureDimension2D,
		Format:        format,
		MipLevelCount: uint32(levels),
		SampleCount:   1,
	})
	if err != nil {
		return nil, err
	}
	view, err := gpu.CreateView(&wgpu.TextureViewDescriptor{
		Label:           label,
		Format:          format,
		Dimension:       dimension,
		BaseMipLevel:    0,
		MipLevelCount:   uint32(levels),
		BaseArrayLayer:  0,
		ArrayLayerCount: uint32(layers),
		Aspect:          wgpu.TextureAspectAll,
	})
	if err != nil {
		gpu.Release()
		return nil, err
	}
	sampler, err := b.createSampler(label, filter, wrap, format)
	if err != nil {
		view.Release()
		gpu.Release()
		return nil, err
	}
	return &texture{
		gpu:     gpu,
		view:    view,
		sampler: sampler,
		format:  format,
		filter:  filter,
		cube:    cube,
		levels:  levels,
		width:   width,
		height:  height,
	}, nil
}

// layerView creates a single-layer, single-level view used as a render attachment or mip source.
func layerView(t *texture, layer, level int) (*wgpu.TextureView, error) {
	return t.gpu.CreateView(&wgpu.TextureViewDescriptor{
		Format:          t.format,
		Dimension:       wgpu.TextureViewDimension2D,
		BaseMipLevel:    uint32(level),
		MipLevelCount:   1,
		BaseArrayLayer:  uint32(layer),
		ArrayLayerCount: 1,
		Aspect:          wgpu.TextureAspectAll,
	})
}

func (b *wgpuBackend) CreateBuffer(kind backend.BufferKind, data []byte) (backend.Buffer, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(data) == 0 {
		return 0, fmt.Errorf("empty buffer")
	}
	usage := wgpu.BufferUsageVertex | wgpu.BufferUsageCopyDst
	if kind == backend.BufferIndex {
		usage = wgpu.BufferUsageIndex | wgpu.BufferUsageCopyDst
	}
	gpu, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: fmt.Sprintf("Buffer %d", b.next+1),
		Size:  alignUp(uint64(len(data)), 4),
		Usage: usage,
	})
	if err != nil {
		return 0, err
	}
	b.queue.WriteBuffer(gpu, 0, padded(data, 4))

	h := backend.Buffer(b.handle())
	b.buffers[h] = &buffer{gpu: gpu, kind: kind, size: len(data)}
	return h, nil
}

func (b *wgpuBackend) UpdateBuffer(buf backend.Buffer, data []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	current, ok := b.buffers[buf]
	if !ok {
		return fmt.Errorf("unknown buffer %d", buf)
	}
	if len(data) <= current.size {
		// Writes are ordered before the next submission, so recorded draws must see the old contents.
		b.flushPending()
		b.queue.WriteBuffer(current.gpu, 0, padded(data, 4))
		current.size = len(data)
		return nil
	}

	usage := wgpu.BufferUsageVertex | wgpu.BufferUsageCopyDst
	if current.kind == backend.BufferIndex {
		usage = wgpu.BufferUsageIndex | wgpu.BufferUsageCopyDst
	}
	gpu, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: fmt.Sprintf("Buffer %d", buf),
		Size:  alignUp(uint64(len(data)), 4),
		Usage: usage,
	})
	if err != nil {
		return err
	}
	b.queue.WriteBuffer(gpu, 0, padded(data, 4))
	old := current.gpu
	b.frame.retire(old.Release)
	current.gpu = gpu
	current.size = len(data)
	return nil
}

// flushPending submits recorded work so that a queue write cannot overtake it.
func (b *wgpuBackend) flushPending() {
	if b.frame.encoder == nil {
		return
	}
	b.flushClear()
	b.endPass()
	b.submit()
}

func (b *wgpuBackend) DeleteBuffer(buf backend.Buffer) {
	b.mu.Lock()
	defer b.mu.Unlock()

	current, ok := b.buffers[buf]
	if !ok {
		return
	}
	delete(b.buffers, buf)
	b.frame.retire(current.gpu.Release)
}

func (b *wgpuBackend) BindAttribute(slot int, buf backend.Buffer, components int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	a := b.state.attributes[slot]
	a.buffer = buf
	a.components = components
	b.state.attributes[slot] = a
}

func (b *wgpuBackend) EnableAttribute(slot int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	a := b.state.attributes[slot]
	a.enabled = true
	b.state.attributes[slot] = a
}

func (b *wgpuBackend) DisableAttribute(slot int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	a := b.state.attributes[slot]
	a.enabled = false
	b.state.attributes[slot] = a
}

func (b *wgpuBackend) CreateTexture(desc backend.TextureDescriptor, levels [][]byte) (backend.Texture, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.createTexture(desc, levels)
}

func (b *wgpuBackend) createTexture(desc backend.TextureDescriptor, levels [][]byte) (backend.Texture, error) {
	if desc.Width <= 0 || desc.Height <= 0 {
		return 0, fmt.Errorf("invalid texture size %dx%d", desc.Width, desc.Height)
	}
	if max(desc.Width, desc.Height) > int(b.limits.MaxTextureDimension2D) {
		return 0, fmt.Errorf("texture %s exceeds the maximum size %d", desc.Label, b.limits.MaxTextureDimension2D)
	}
	count := max(desc.MipLevels, 1)
	format := textureFormat(desc.Format)
	t, err := b.newTexture(desc.Label, desc.Width, desc.Height, count, format, desc.Cube,
		wgpu.TextureUsageTextureBinding|wgpu.TextureUsageCopyDst, desc.Filter, desc.Wrap)
	if err != nil {
		return 0, err
	}

	layers := 1
	if desc.Cube {
		layers = 6
	}
	texel := desc.Format.BytesPerTexel()
	for level, data := range levels {
		if level >= count || len(data) == 0 {
			break
		}
		w := max(desc.Width>>level, 1)
		h := max(desc.Height>>level, 1)
		if len(data) < w*h*texel*layers {
			t.release()
			return 0, fmt.Errorf("texture %s level %d holds %d bytes, want %d", desc.Label, level, len(data), w*h*texel*layers)
		}
		b.queue.WriteTexture(
			&wgpu.ImageCopyTexture{
				Texture:  t.gpu,
				MipLevel: uint32(level),
				Origin:   wgpu.Origin3D{},
				Aspect:   wgpu.TextureAspectAll,
			},
			data,
			&wgpu.TextureDataLayout{
				Offset:       0,
				BytesPerRow:  uint32(w * texel),
				RowsPerImage: uint32(h),
			},
			&wgpu.Extent3D{
				Width:              uint32(w),
				Height:             uint32(h),
				DepthOrArrayLayers: uint32(layers),
			},
		)
	}

	hnd := backend.Texture(b.handle())
	b.textures[hnd] = t
	return hnd, nil
}

func (b *wgpuBackend) BindTexture(unit int, tex backend.Texture) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.state.units[unit] = tex
}

func (b *wgpuBackend) DeleteTexture(tex backend.Texture) {
	b.mu.Lock()
	defer b.mu.Unlock()

	t, ok := b.textures[tex]
	if !ok || t.owner != 0 {
		return
	}
	delete(b.textures, tex)
	b.frame.retire(t.release)
}

func (b *wgpuBackend) CreateRenderTarget(desc backend.TargetDescriptor) (backend.Target, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if desc.Width <= 0 || desc.Height <= 0 {
		return 0, fmt.Errorf("invalid target size %dx%d", desc.Width, desc.Height)
	}
	colors := max(desc.Colors, 1)
	layers := 1
	if desc.Cube {
		layers = 6
	}
	levels := 1
	if desc.Mipmaps {
		levels = mipLevels(desc.Width, desc.Height)
	}
	format := textureFormat(desc.Format)

	h := backend.Target(b.handle())
	t := &target{desc: desc, faceViews: make(map[backend.Texture][]*wgpu.TextureView)}

	switch {
	case desc.ShareDepth != 0:
		owner, ok := b.targets[desc.ShareDepth]
		if !ok || owner.depth == nil {
			return 0, fmt.Errorf("target %s shares depth with %d which has none", desc.Label, desc.ShareDepth)
		}
		if owner.desc.Width != desc.Width || owner.desc.Height != desc.Height || owner.desc.Cube != desc.Cube {
			return 0, fmt.Errorf("target %s shares depth with a target of a different shape", desc.Label)
		}
		owner.depth.refs++
		t.depth = owner.depth
	case desc.Depth:
		depth, err := b.newAttachment(desc.Label+" Depth", desc.Width, desc.Height, layers)
		if err != nil {
			return 0, err
		}
		t.depth = depth
	}

	for i := range colors {
		label := fmt.Sprintf("%s Color %d", desc.Label, i)
		tex, err := b.newTexture(label, desc.Width, desc.Height, levels, format, desc.Cube,
			wgpu.TextureUsageRenderAttachment|wgpu.TextureUsageTextureBinding, desc.Filter, desc.Wrap)
		if err != nil {
			b.releaseTarget(t)
			return 0, err
		}
		tex.owner = h
		th := backend.Texture(b.handle())
		b.textures[th] = tex
		t.colors = append(t.colors, th)

		for layer := range layers {
			view, err := layerView(tex, layer, 0)
			if err != nil {
				b.releaseTarget(t)
				return 0, err
			}
			t.faceViews[th] = append(t.faceViews[th], view)
		}
	}

	b.targets[h] = t
	return h, nil
}

func (b *wgpuBackend) TargetTexture(t backend.Target, index int) backend.Texture {
	b.mu.Lock()
	defer b.mu.Unlock()

	rt, ok := b.targets[t]
	if !ok || index < 0 || index >= len(rt.colors) {
		return 0
	}
	return rt.colors[index]
}

func (b *wgpuBackend) BindTarget(t backend.Target, face int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if t != backend.DefaultTarget {
		if _, ok := b.targets[t]; !ok {
			panic(fmt.Sprintf("webgpu: BindTarget with unknown target %d", t))
		}
	}
	if b.state.target == t && b.state.face == face {
		return
	}
	b.flushClear()
	b.endPass()
	b.state.target = t
	b.state.face = face
}

func (b *wgpuBackend) GenerateMipmaps(t backend.Target) {
	b.mu.Lock()
	defer b.mu.Unlock()

	rt, ok := b.targets[t]
	if !ok || !rt.desc.Mipmaps {
		return
	}
	b.flushClear()
	b.endPass()
	if err := b.ensureEncoder(); err != nil {
		return
	}
	for _, th := range rt.colors {
		if err := b.mipmaps.generate(b.frame.encoder, b.textures[th], b.frame.retire); err != nil {
			b.logError("mipmap generation failed", err, "target", rt.desc.Label)
		}
	}
}

func (b *wgpuBackend) DeleteRenderTarget(t backend.Target) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.deleteTarget(t)
}

func (b *wgpuBackend) deleteTarget(t backend.Target) {
	rt, ok := b.targets[t]
	if !ok {
		return
	}
	if b.state.target == t || b.frame.passTarget == t {
		b.flushClear()
		b.endPass()
		b.state.target = backend.DefaultTarget
	}
	delete(b.targets, t)
	b.frame.retire(func() { b.releaseTarget(rt) })
}

func (b *wgpuBackend) releaseTarget(rt *target) {
	for _, th := range rt.colors {
		for _, v := range rt.faceViews[th] {
			v.Release()
		}
		if tex, ok := b.textures[th]; ok {
			tex.release()
			delete(b.textures, th)
		}
	}
	rt.colors = nil
	if rt.depth != nil {
		rt.depth.refs--
		if rt.depth.refs == 0 {
			rt.depth.release()
		}
		rt.depth = nil
	}
}

func alignUp(n, align uint64) uint64 {
	return (n + align - 1) / align * align
}

// padded returns data extended with zeros to a multiple of align bytes.
func padded(data []byte, align int) []byte {
	if len(data)%align == 0 {
		return data
	}
	out := make([]byte, len(data)+align-len(data)%align)
	copy(out, data)
	return out
}
