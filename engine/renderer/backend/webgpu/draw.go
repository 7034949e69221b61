package webgpu

import (
	"fmt"
	"strings"

	"github.com/MKHenson/trike3d-sub000/common"
	"github.com/MKHenson/trike3d-sub000/engine/renderer/backend"
	"github.com/MKHenson/trike3d-sub000/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

type attribute struct {
	buffer     backend.Buffer
	components int
	enabled    bool
}

// drawState is the immediate-mode state the next draw is issued with.
type drawState struct {
	program    backend.Program
	target     backend.Target
	face       int
	attributes map[int]attribute
	units      map[int]backend.Texture
	cull       backend.CullMode
	depth      backend.DepthState
	blend      backend.BlendState
	stencil    backend.StencilState
	lineWidth  float32
}

func newDrawState() drawState {
	return drawState{
		attributes: make(map[int]attribute),
		units:      make(map[int]backend.Texture),
		depth:      backend.DepthState{Test: true, Write: true, Func: backend.CompareLessEqual},
		lineWidth:  1,
	}
}

// stencilKey is the part of a StencilState baked into a pipeline. The reference is set per draw.
type stencilKey struct {
	enabled   bool
	compare   backend.CompareFunc
	mask      uint8
	fail      backend.StencilOp
	depthFail backend.StencilOp
	pass      backend.StencilOp
}

// pipelineKey identifies a render pipeline of one program.
type pipelineKey struct {
	formats    string
	hasDepth   bool
	primitive  backend.Primitive
	cull       backend.CullMode
	depth      backend.DepthState
	blend      backend.BlendState
	stencil    stencilKey
	attributes string
	mask       uint64
}

type vertexSlot struct {
	location   int
	components int
	buffer     *wgpu.Buffer
}

func compareFunction(f backend.CompareFunc) wgpu.CompareFunction {
	switch f {
	case backend.CompareLess:
		return wgpu.CompareFunctionLess
	case backend.CompareEqual:
		return wgpu.CompareFunctionEqual
	case backend.CompareGreater:
		return wgpu.CompareFunctionGreater
	case backend.CompareGreaterEqual:
		return wgpu.CompareFunctionGreaterEqual
	case backend.CompareNotEqual:
		return wgpu.CompareFunctionNotEqual
	case backend.CompareAlways:
		return wgpu.CompareFunctionAlways
	case backend.CompareNever:
		return wgpu.CompareFunctionNever
	default:
		return wgpu.CompareFunctionLessEqual
	}
}

func stencilOperation(o backend.StencilOp) wgpu.StencilOperation {
	switch o {
	case backend.StencilZero:
		return wgpu.StencilOperationZero
	case backend.StencilReplace:
		return wgpu.StencilOperationReplace
	case backend.StencilIncrement:
		return wgpu.StencilOperationIncrementClamp
	case backend.StencilDecrement:
		return wgpu.StencilOperationDecrementClamp
	case backend.StencilInvert:
		return wgpu.StencilOperationInvert
	default:
		return wgpu.StencilOperationKeep
	}
}

func blendFactor(f backend.BlendFactor) wgpu.BlendFactor {
	switch f {
	case backend.BlendZero:
		return wgpu.BlendFactorZero
	case backend.BlendSrcAlpha:
		return wgpu.BlendFactorSrcAlpha
	case backend.BlendOneMinusSrcAlpha:
		return wgpu.BlendFactorOneMinusSrcAlpha
	case backend.BlendDstColor:
		return wgpu.BlendFactorDst
	case backend.BlendSrcColor:
		return wgpu.BlendFactorSrc
	default:
		return wgpu.BlendFactorOne
	}
}

func blendOperation(e backend.BlendEquation) wgpu.BlendOperation {
	switch e {
	case backend.BlendSubtract:
		return wgpu.BlendOperationSubtract
	case backend.BlendReverseSubtract:
		return wgpu.BlendOperationReverseSubtract
	default:
		return wgpu.BlendOperationAdd
	}
}

func cullMode(c backend.CullMode) wgpu.CullMode {
	switch c {
	case backend.CullFront:
		return wgpu.CullModeFront
	case backend.CullNone:
		return wgpu.CullModeNone
	default:
		return wgpu.CullModeBack
	}
}

func topology(p backend.Primitive) wgpu.PrimitiveTopology {
	switch p {
	case backend.PrimitiveLines:
		return wgpu.PrimitiveTopologyLineList
	case backend.PrimitivePoints:
		return wgpu.PrimitiveTopologyPointList
	default:
		return wgpu.PrimitiveTopologyTriangleList
	}
}

func vertexFormat(components int) wgpu.VertexFormat {
	switch components {
	case 1:
		return wgpu.VertexFormatFloat32
	case 2:
		return wgpu.VertexFormatFloat32x2
	case 3:
		return wgpu.VertexFormatFloat32x3
	default:
		return wgpu.VertexFormatFloat32x4
	}
}

func depthStencilState(key pipelineKey) *wgpu.DepthStencilState {
	ds := &wgpu.DepthStencilState{
		Format:            depthStencilFormat,
		DepthWriteEnabled: key.depth.Test && key.depth.Write,
		DepthCompare:      wgpu.CompareFunctionAlways,
	}
	if key.depth.Test {
		ds.DepthCompare = compareFunction(key.depth.Func)
	}

	face := wgpu.StencilFaceState{
		Compare:     wgpu.CompareFunctionAlways,
		FailOp:      wgpu.StencilOperationKeep,
		DepthFailOp: wgpu.StencilOperationKeep,
		PassOp:      wgpu.StencilOperationKeep,
	}
	if key.stencil.enabled {
		face = wgpu.StencilFaceState{
			Compare:     compareFunction(key.stencil.compare),
			FailOp:      stencilOperation(key.stencil.fail),
			DepthFailOp: stencilOperation(key.stencil.depthFail),
			PassOp:      stencilOperation(key.stencil.pass),
		}
		mask := key.stencil.mask
		if mask == 0 {
			mask = 0xFF
		}
		ds.StencilReadMask = uint32(mask)
		ds.StencilWriteMask = 0xFF
	}
	ds.StencilFront = face
	ds.StencilBack = face
	return ds
}

func (b *wgpuBackend) logError(msg string, err error, args ...any) {
	common.Logger().Error(msg, append([]any{"error", err}, args...)...)
}

func (b *wgpuBackend) Clear(flags backend.ClearFlags, color common.Color) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if flags == 0 {
		return
	}
	// Load ops are fixed when a pass begins, so a clear after draws starts a new pass.
	b.endPass()
	if b.frame.clear == nil {
		b.frame.clear = &pendingClear{}
	}
	b.frame.clear.flags |= flags
	if flags&backend.ClearColor != 0 {
		b.frame.clear.color = color
	}
}

func (b *wgpuBackend) SetCullMode(mode backend.CullMode) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.state.cull = mode
}

func (b *wgpuBackend) SetDepthState(state backend.DepthState) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.state.depth = state
}

func (b *wgpuBackend) SetBlend(state backend.BlendState) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.state.blend = state
}

func (b *wgpuBackend) SetStencil(state backend.StencilState) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.state.stencil = state
}

// SetLineWidth is recorded only. WebGPU rasterizes lines one pixel wide.
func (b *wgpuBackend) SetLineWidth(width float32) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.state.lineWidth = width
}

func (b *wgpuBackend) Draw(prim backend.Primitive, indices backend.Buffer, count int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	prog, ok := b.programs[b.state.program]
	if !ok {
		panic("webgpu: Draw without a bound program")
	}
	if count <= 0 {
		return
	}
	if err := b.draw(prog, prim, indices, count); err != nil {
		b.logError("draw skipped", err, "program", prog.label)
	}
}

func (b *wgpuBackend) draw(prog *program, prim backend.Primitive, indices backend.Buffer, count int) error {
	var ib *buffer
	if indices != 0 {
		var ok bool
		if ib, ok = b.buffers[indices]; !ok {
			return fmt.Errorf("unknown index buffer %d", indices)
		}
	}

	slots := make([]vertexSlot, 0, len(prog.vertex.Attributes))
	var attrs strings.Builder
	for _, a := range prog.vertex.Attributes {
		st := b.state.attributes[a.Location]
		buf, ok := b.buffers[st.buffer]
		if !st.enabled || !ok {
			return fmt.Errorf("vertex input %s at location %d has no enabled buffer", a.Name, a.Location)
		}
		components := st.components
		if components <= 0 {
			components = a.Components
		}
		slots = append(slots, vertexSlot{location: a.Location, components: components, buffer: buf.gpu})
		fmt.Fprintf(&attrs, "%d:%d,", a.Location, components)
	}

	if err := b.beginPass(); err != nil {
		return err
	}

	mask := b.unfilterableMask(prog)
	l, err := b.layoutFor(prog, mask)
	if err != nil {
		return err
	}

	key := pipelineKey{
		formats:    fmt.Sprint(b.frame.formats),
		hasDepth:   b.frame.hasDepth,
		primitive:  prim,
		cull:       b.state.cull,
		depth:      b.state.depth,
		blend:      b.state.blend,
		attributes: attrs.String(),
		mask:       mask,
	}
	if s := b.state.stencil; s.Enabled && b.frame.hasDepth {
		key.stencil = stencilKey{
			enabled:   true,
			compare:   s.Func,
			mask:      s.Mask,
			fail:      s.Fail,
			depthFail: s.DepthFail,
			pass:      s.Pass,
		}
	}
	if !key.blend.Enabled {
		key.blend = backend.BlendOpaque
	}

	rp, err := b.pipelineFor(prog, l, key, slots)
	if err != nil {
		return err
	}
	groups, err := b.bindGroups(prog, l)
	if err != nil {
		return err
	}

	pass := b.frame.pass
	pass.SetPipeline(rp)
	for i, g := range groups {
		pass.SetBindGroup(uint32(i), g, nil)
	}
	for i, s := range slots {
		pass.SetVertexBuffer(uint32(i), s.buffer, 0, wgpu.WholeSize)
	}
	if key.stencil.enabled {
		pass.SetStencilReference(uint32(b.state.stencil.Ref))
	}
	if ib != nil {
		pass.SetIndexBuffer(ib.gpu, wgpu.IndexFormatUint32, 0, wgpu.WholeSize)
		pass.DrawIndexed(uint32(count), 1, 0, 0, 0)
	} else {
		pass.Draw(uint32(count), 1, 0, 0)
	}
	return nil
}

// pipelineFor returns the pipeline of prog for key, creating it on first use.
func (b *wgpuBackend) pipelineFor(prog *program, l *layout, key pipelineKey, slots []vertexSlot) (*wgpu.RenderPipeline, error) {
	if rp, ok := prog.pipelines[key]; ok {
		return rp, nil
	}

	buffers := make([]wgpu.VertexBufferLayout, len(slots))
	for i, s := range slots {
		buffers[i] = wgpu.VertexBufferLayout{
			ArrayStride: uint64(s.components * 4),
			StepMode:    wgpu.VertexStepModeVertex,
			Attributes: []wgpu.VertexAttribute{
				{
					Format:         vertexFormat(s.components),
					Offset:         0,
					ShaderLocation: uint32(s.location),
				},
			},
		}
	}

	targets := make([]wgpu.ColorTargetState, len(b.frame.formats))
	for i, f := range b.frame.formats {
		targets[i] = wgpu.ColorTargetState{
			Format:    f,
			WriteMask: wgpu.ColorWriteMaskNone,
		}
		if i > 0 {
			continue
		}
		targets[i].WriteMask = wgpu.ColorWriteMaskAll
		if key.blend.Enabled {
			component := wgpu.BlendComponent{
				SrcFactor: blendFactor(key.blend.Src),
				DstFactor: blendFactor(key.blend.Dst),
				Operation: blendOperation(key.blend.Equation),
			}
			targets[i].Blend = &wgpu.BlendState{Color: component, Alpha: component}
		}
	}

	desc := &wgpu.RenderPipelineDescriptor{
		Label:  prog.label,
		Layout: l.pipeline,
		Vertex: wgpu.VertexState{
			Module:     prog.vsModule,
			EntryPoint: prog.vertex.EntryPoint,
			Buffers:    buffers,
		},
		Fragment: &wgpu.FragmentState{
			Module:     prog.fsModule,
			EntryPoint: prog.fragment.EntryPoint,
			Targets:    targets,
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  topology(key.primitive),
			FrontFace: wgpu.FrontFaceCCW,
			CullMode:  cullMode(key.cull),
		},
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	}
	if key.primitive != backend.PrimitiveTriangles {
		desc.Primitive.CullMode = wgpu.CullModeNone
	}
	if key.hasDepth {
		desc.DepthStencil = depthStencilState(key)
	}

	rp, err := b.device.CreateRenderPipeline(desc)
	if err != nil {
		return nil, err
	}
	prog.pipelines[key] = rp
	return rp, nil
}

// bindGroups builds one bind group per group of prog from the values current for this draw. The
// groups and their uniform buffers live until the next submission.
func (b *wgpuBackend) bindGroups(prog *program, l *layout) ([]*wgpu.BindGroup, error) {
	entries := make([][]wgpu.BindGroupEntry, prog.groups)
	for _, bd := range prog.bindings {
		e := wgpu.BindGroupEntry{Binding: uint32(bd.Binding)}
		switch bd.Kind {
		case shader.BindingUniform, shader.BindingStorage:
			loc := backend.Location{Group: bd.Group, Binding: bd.Binding}
			value, ok := prog.uniforms[loc]
			var data []byte
			if ok {
				var err error
				if data, err = encodeUniform(value, bd); err != nil {
					return nil, err
				}
			} else {
				data = make([]byte, alignUp(max(bd.Size, uniformAlign), uniformAlign))
			}
			buf, size, err := b.uniforms.allocate(uint64(len(data)))
			if err != nil {
				return nil, err
			}
			b.queue.WriteBuffer(buf, 0, data)
			e.Buffer = buf
			e.Offset = 0
			e.Size = size
		case shader.BindingTexture:
			e.TextureView = b.textureFor(prog, bd).view
		case shader.BindingSampler:
			texName := strings.TrimSuffix(bd.Name, "_sampler")
			tb, ok := prog.binding(texName)
			if !ok || shader.SamplerName(texName) != bd.Name {
				return nil, fmt.Errorf("sampler %s has no paired texture", bd.Name)
			}
			// Unfilterable textures always carry a nearest sampler, matching the layout mask.
			e.Sampler = b.textureFor(prog, tb).sampler
		default:
			return nil, fmt.Errorf("%s: %s bindings are not supported", bd.Name, bd.Type)
		}
		entries[bd.Group] = append(entries[bd.Group], e)
	}

	groups := make([]*wgpu.BindGroup, 0, prog.groups)
	for g, es := range entries {
		bg, err := b.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
			Label:   fmt.Sprintf("%s Group %d", prog.label, g),
			Layout:  l.groups[g],
			Entries: es,
		})
		if err != nil {
			return nil, err
		}
		groups = append(groups, bg)
		b.frame.retire(bg.Release)
	}
	return groups, nil
}
