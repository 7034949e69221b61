package webgpu

import (
	"fmt"
	"slices"
	"strings"

	"github.com/MKHenson/trike3d-sub000/engine/renderer/backend"
	"github.com/MKHenson/trike3d-sub000/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

// layout is the pipeline layout of a program for one combination of filterable texture bindings.
type layout struct {
	groups   []*wgpu.BindGroupLayout
	pipeline *wgpu.PipelineLayout
}

func (l *layout) release() {
	if l.pipeline != nil {
		l.pipeline.Release()
	}
	for _, g := range l.groups {
		g.Release()
	}
}

type program struct {
	label    string
	vertex   *shader.Reflection
	fragment *shader.Reflection
	vsModule *wgpu.ShaderModule
	fsModule *wgpu.ShaderModule

	// bindings merges both stages, sorted by group then binding.
	bindings []shader.Binding
	groups   int

	uniforms  map[backend.Location]any
	layouts   map[uint64]*layout
	pipelines map[pipelineKey]*wgpu.RenderPipeline
}

func (p *program) binding(name string) (shader.Binding, bool) {
	for _, b := range p.bindings {
		if b.Name == name {
			return b, true
		}
	}
	return shader.Binding{}, false
}

func (p *program) release() {
	for _, rp := range p.pipelines {
		rp.Release()
	}
	for _, l := range p.layouts {
		l.release()
	}
	p.vsModule.Release()
	p.fsModule.Release()
}

// mergeBindings unions the bindings of both stages. A slot declared by both must name the same
// variable with the same type.
func mergeBindings(vertex, fragment *shader.Reflection) ([]shader.Binding, error) {
	merged := append([]shader.Binding(nil), vertex.Bindings...)
	for _, fb := range fragment.Bindings {
		shared := false
		for _, vb := range vertex.Bindings {
			sameSlot := vb.Group == fb.Group && vb.Binding == fb.Binding
			if sameSlot != (vb.Name == fb.Name) {
				return nil, fmt.Errorf("vertex %s (%d,%d) conflicts with fragment %s (%d,%d)", vb.Name, vb.Group, vb.Binding, fb.Name, fb.Group, fb.Binding)
			}
			if sameSlot {
				if vb.Type != fb.Type {
					return nil, fmt.Errorf("%s declared as %s and %s", vb.Name, vb.Type, fb.Type)
				}
				shared = true
			}
		}
		if !shared {
			merged = append(merged, fb)
		}
	}
	slices.SortFunc(merged, func(a, b shader.Binding) int {
		if a.Group != b.Group {
			return a.Group - b.Group
		}
		return a.Binding - b.Binding
	})
	return merged, nil
}

func (b *wgpuBackend) createModule(label, source string) (*wgpu.ShaderModule, error) {
	return b.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label: label,
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
			Code: source,
		},
	})
}

func (b *wgpuBackend) CompileProgram(label, vertexSource, fragmentSource string) (backend.Program, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	vr, err := shader.Reflect(vertexSource, shader.ShaderTypeVertex)
	if err != nil {
		return 0, &backend.ShaderError{Stage: backend.StageVertex, Log: err.Error()}
	}
	fr, err := shader.Reflect(fragmentSource, shader.ShaderTypeFragment)
	if err != nil {
		return 0, &backend.ShaderError{Stage: backend.StageFragment, Log: err.Error()}
	}
	bindings, err := mergeBindings(vr, fr)
	if err != nil {
		return 0, &backend.ShaderError{Stage: backend.StageLink, Log: err.Error()}
	}
	groups := 0
	for _, bd := range bindings {
		groups = max(groups, bd.Group+1)
	}
	if groups > int(b.limits.MaxBindGroups) {
		return 0, &backend.ShaderError{Stage: backend.StageLink, Log: fmt.Sprintf("%d bind groups exceed the limit of %d", groups, b.limits.MaxBindGroups)}
	}

	vs, err := b.createModule(label+" Vertex", vertexSource)
	if err != nil {
		return 0, &backend.ShaderError{Stage: backend.StageVertex, Log: err.Error()}
	}
	fs, err := b.createModule(label+" Fragment", fragmentSource)
	if err != nil {
		vs.Release()
		return 0, &backend.ShaderError{Stage: backend.StageFragment, Log: err.Error()}
	}

	h := backend.Program(b.handle())
	b.programs[h] = &program{
		label:     label,
		vertex:    vr,
		fragment:  fr,
		vsModule:  vs,
		fsModule:  fs,
		bindings:  bindings,
		groups:    groups,
		uniforms:  make(map[backend.Location]any),
		layouts:   make(map[uint64]*layout),
		pipelines: make(map[pipelineKey]*wgpu.RenderPipeline),
	}
	return h, nil
}

func (b *wgpuBackend) UniformLocation(p backend.Program, name string) (backend.Location, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	prog, ok := b.programs[p]
	if !ok {
		return backend.Location{}, false
	}
	bd, ok := prog.binding(name)
	if !ok || bd.Kind.IsSampler() {
		return backend.Location{}, false
	}
	return backend.Location{Group: bd.Group, Binding: bd.Binding}, true
}

func (b *wgpuBackend) AttributeLocation(p backend.Program, name string) (int, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	prog, ok := b.programs[p]
	if !ok {
		return 0, false
	}
	a, ok := prog.vertex.Attribute(name)
	return a.Location, ok
}

func (b *wgpuBackend) UseProgram(p backend.Program) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.programs[p]; !ok {
		panic(fmt.Sprintf("webgpu: UseProgram with unknown program %d", p))
	}
	b.state.program = p
}

func (b *wgpuBackend) UploadUniform(loc backend.Location, value any) {
	b.mu.Lock()
	defer b.mu.Unlock()

	prog, ok := b.programs[b.state.program]
	if !ok {
		panic("webgpu: UploadUniform without a bound program")
	}
	prog.uniforms[loc] = value
}

func (b *wgpuBackend) DeleteProgram(p backend.Program) {
	b.mu.Lock()
	defer b.mu.Unlock()

	prog, ok := b.programs[p]
	if !ok {
		return
	}
	delete(b.programs, p)
	if b.state.program == p {
		b.state.program = 0
	}
	b.frame.retire(prog.release)
}

// textureFor resolves the texture a texture binding samples this draw.
// A missing texture, or one of the wrong dimension, samples as white.
func (b *wgpuBackend) textureFor(prog *program, bd shader.Binding) *texture {
	cube := viewDimension(bd) == wgpu.TextureViewDimensionCube
	loc := backend.Location{Group: bd.Group, Binding: bd.Binding}
	if unit, ok := prog.uniforms[loc].(backend.TextureUnit); ok {
		if t, ok := b.textures[b.state.units[int(unit)]]; ok && t.cube == cube {
			return t
		}
	}
	if cube {
		return b.textures[b.whiteCube]
	}
	return b.textures[b.white]
}

// unfilterableMask flags the texture bindings, by index into prog.bindings, whose current texture
// cannot be sampled with filtering. Their paired samplers are flagged too.
func (b *wgpuBackend) unfilterableMask(prog *program) uint64 {
	var mask uint64
	for i, bd := range prog.bindings {
		if i >= 64 || bd.Kind != shader.BindingTexture {
			continue
		}
		if b.textureFor(prog, bd).filterable() {
			continue
		}
		mask |= 1 << i
		for j, sb := range prog.bindings {
			if j < 64 && sb.Kind == shader.BindingSampler && sb.Name == shader.SamplerName(bd.Name) {
				mask |= 1 << j
			}
		}
	}
	return mask
}

func viewDimension(bd shader.Binding) wgpu.TextureViewDimension {
	if strings.Contains(bd.Base, "cube") {
		return wgpu.TextureViewDimensionCube
	}
	return wgpu.TextureViewDimension2D
}

func layoutEntry(bd shader.Binding, unfilterable bool) (wgpu.BindGroupLayoutEntry, error) {
	e := wgpu.BindGroupLayoutEntry{
		Binding:    uint32(bd.Binding),
		Visibility: wgpu.ShaderStageVertex | wgpu.ShaderStageFragment,
	}
	switch bd.Kind {
	case shader.BindingUniform:
		e.Buffer.Type = wgpu.BufferBindingTypeUniform
	case shader.BindingStorage:
		e.Buffer.Type = wgpu.BufferBindingTypeReadOnlyStorage
	case shader.BindingTexture:
		e.Texture.SampleType = wgpu.TextureSampleTypeFloat
		if unfilterable {
			e.Texture.SampleType = wgpu.TextureSampleTypeUnfilterableFloat
		}
		e.Texture.ViewDimension = viewDimension(bd)
	case shader.BindingSampler:
		e.Sampler.Type = wgpu.SamplerBindingTypeFiltering
		if unfilterable {
			e.Sampler.Type = wgpu.SamplerBindingTypeNonFiltering
		}
	default:
		return e, fmt.Errorf("%s: %s bindings are not supported", bd.Name, bd.Type)
	}
	return e, nil
}

// layoutFor returns the pipeline layout of prog for the given unfilterable mask, creating it once.
func (b *wgpuBackend) layoutFor(prog *program, mask uint64) (*layout, error) {
	if l, ok := prog.layouts[mask]; ok {
		return l, nil
	}
	entries := make([][]wgpu.BindGroupLayoutEntry, prog.groups)
	for i, bd := range prog.bindings {
		e, err := layoutEntry(bd, i < 64 && mask&(1<<i) != 0)
		if err != nil {
			return nil, err
		}
		entries[bd.Group] = append(entries[bd.Group], e)
	}

	l := &layout{}
	for g, es := range entries {
		bgl, err := b.device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
			Label:   fmt.Sprintf("%s Group %d", prog.label, g),
			Entries: es,
		})
		if err != nil {
			l.release()
			return nil, err
		}
		l.groups = append(l.groups, bgl)
	}
	pl, err := b.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            prog.label + " Layout",
		BindGroupLayouts: l.groups,
	})
	if err != nil {
		for _, g := range l.groups {
			g.Release()
		}
		return nil, err
	}
	l.pipeline = pl
	prog.layouts[mask] = l
	return l, nil
}
