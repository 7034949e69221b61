package webgpu

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
)

// downsampleSource averages 2x2 texel blocks of the previous level with textureLoad, so any float
// format can be reduced without a filtering sampler.
const downsampleSource = `
@group(0) @binding(0) var source: texture_2d<f32>;

struct VertexOutput {
    @builtin(position) position: vec4<f32>,
};

@vertex
fn vs_main(@builtin(vertex_index) index: u32) -> VertexOutput {
    let uv = vec2<f32>(f32((index << 1u) & 2u), f32(index & 2u));
    var out: VertexOutput;
    out.position = vec4<f32>(uv * 2.0 - 1.0, 0.0, 1.0);
    return out;
}

@fragment
fn fs_main(in: VertexOutput) -> @location(0) vec4<f32> {
    let size = vec2<i32>(textureDimensions(source));
    let base = vec2<i32>(in.position.xy) * 2;
    let last = size - vec2<i32>(1, 1);
    var sum = vec4<f32>(0.0);
    sum += textureLoad(source, min(base, last), 0);
    sum += textureLoad(source, min(base + vec2<i32>(1, 0), last), 0);
    sum += textureLoad(source, min(base + vec2<i32>(0, 1), last), 0);
    sum += textureLoad(source, min(base + vec2<i32>(1, 1), last), 0);
    return sum * 0.25;
}
`

// mipmapper renders each mip level of a texture from the level above it.
type mipmapper struct {
	device    *wgpu.Device
	module    *wgpu.ShaderModule
	group     *wgpu.BindGroupLayout
	layout    *wgpu.PipelineLayout
	pipelines map[wgpu.TextureFormat]*wgpu.RenderPipeline
}

func newMipmapper(device *wgpu.Device) *mipmapper {
	return &mipmapper{
		device:    device,
		pipelines: make(map[wgpu.TextureFormat]*wgpu.RenderPipeline),
	}
}

// init creates the shared module and layouts on first use.
func (m *mipmapper) init() error {
	if m.module != nil {
		return nil
	}
	module, err := m.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label: "Mipmap Downsample",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
			Code: downsampleSource,
		},
	})
	if err != nil {
		return err
	}
	group, err := m.device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: "Mipmap Source",
		Entries: []wgpu.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: wgpu.ShaderStageFragment,
				Texture: wgpu.TextureBindingLayout{
					SampleType:    wgpu.TextureSampleTypeUnfilterableFloat,
					ViewDimension: wgpu.TextureViewDimension2D,
				},
			},
		},
	})
	if err != nil {
		module.Release()
		return err
	}
	layout, err := m.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            "Mipmap Layout",
		BindGroupLayouts: []*wgpu.BindGroupLayout{group},
	})
	if err != nil {
		group.Release()
		module.Release()
		return err
	}
	m.module, m.group, m.layout = module, group, layout
	return nil
}

func (m *mipmapper) pipeline(format wgpu.TextureFormat) (*wgpu.RenderPipeline, error) {
	if p, ok := m.pipelines[format]; ok {
		return p, nil
	}
	p, err := m.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  fmt.Sprintf("Mipmap %v", format),
		Layout: m.layout,
		Vertex: wgpu.VertexState{
			Module:     m.module,
			EntryPoint: "vs_main",
		},
		Fragment: &wgpu.FragmentState{
			Module:     m.module,
			EntryPoint: "fs_main",
			Targets: []wgpu.ColorTargetState{
				{
					Format:    format,
					WriteMask: wgpu.ColorWriteMaskAll,
				},
			},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  wgpu.PrimitiveTopologyTriangleList,
			FrontFace: wgpu.FrontFaceCCW,
			CullMode:  wgpu.CullModeNone,
		},
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return nil, err
	}
	m.pipelines[format] = p
	return p, nil
}

// generate encodes one pass per level and layer of t. Views and bind groups are handed to retire
// so they outlive the submission.
func (m *mipmapper) generate(encoder *wgpu.CommandEncoder, t *texture, retire func(func())) error {
	if t == nil || t.levels < 2 {
		return nil
	}
	if err := m.init(); err != nil {
		return err
	}
	p, err := m.pipeline(t.format)
	if err != nil {
		return err
	}

	layers := 1
	if t.cube {
		layers = 6
	}
	for layer := range layers {
		for level := 1; level < t.levels; level++ {
			src, err := layerView(t, layer, level-1)
			if err != nil {
				return err
			}
			retire(src.Release)
			dst, err := layerView(t, layer, level)
			if err != nil {
				return err
			}
			retire(dst.Release)

			bg, err := m.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
				Label:  "Mipmap Source",
				Layout: m.group,
				Entries: []wgpu.BindGroupEntry{
					{Binding: 0, TextureView: src},
				},
			})
			if err != nil {
				return err
			}
			retire(bg.Release)

			pass := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
				ColorAttachments: []wgpu.RenderPassColorAttachment{
					{
						View:    dst,
						LoadOp:  wgpu.LoadOpClear,
						StoreOp: wgpu.StoreOpStore,
					},
				},
			})
			pass.SetPipeline(p)
			pass.SetBindGroup(0, bg, nil)
			pass.Draw(3, 1, 0, 0)
			pass.End()
			pass.Release()
		}
	}
	return nil
}

func (m *mipmapper) release() {
	if m == nil {
		return
	}
	for f, p := range m.pipelines {
		p.Release()
		delete(m.pipelines, f)
	}
	if m.module != nil {
		m.layout.Release()
		m.group.Release()
		m.module.Release()
		m.module = nil
	}
}
