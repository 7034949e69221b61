package backend

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/MKHenson/trike3d-sub000/common"
	"github.com/MKHenson/trike3d-sub000/engine/renderer/shader"
	"github.com/go-gl/mathgl/mgl32"
)

// Recorded operation names.
const (
	OpInitialize       = "Initialize"
	OpResize           = "Resize"
	OpSetViewport      = "SetViewport"
	OpCompileProgram   = "CompileProgram"
	OpUseProgram       = "UseProgram"
	OpUploadUniform    = "UploadUniform"
	OpDeleteProgram    = "DeleteProgram"
	OpCreateBuffer     = "CreateBuffer"
	OpUpdateBuffer     = "UpdateBuffer"
	OpDeleteBuffer     = "DeleteBuffer"
	OpBindAttribute    = "BindAttribute"
	OpEnableAttribute  = "EnableAttribute"
	OpDisableAttribute = "DisableAttribute"
	OpCreateTexture    = "CreateTexture"
	OpBindTexture      = "BindTexture"
	OpDeleteTexture    = "DeleteTexture"
	OpCreateTarget     = "CreateRenderTarget"
	OpBindTarget       = "BindTarget"
	OpGenerateMipmaps  = "GenerateMipmaps"
	OpDeleteTarget     = "DeleteRenderTarget"
	OpClear            = "Clear"
	OpSetCullMode      = "SetCullMode"
	OpSetDepthState    = "SetDepthState"
	OpSetBlend         = "SetBlend"
	OpSetStencil       = "SetStencil"
	OpSetLineWidth     = "SetLineWidth"
	OpDraw             = "Draw"
	OpPresent          = "Present"
)

// defaultStencilResolution is the edge length of the simulated stencil grid.
const defaultStencilResolution = 32

// Command is one recorded backend call.
type Command struct {
	Op     string
	Detail string
}

func (c Command) String() string {
	if c.Detail == "" {
		return c.Op
	}
	return c.Op + " " + c.Detail
}

// DrawRecord captures the state a draw was issued with.
type DrawRecord struct {
	Program   string
	Target    Target
	Face      int
	Primitive Primitive
	Count     int
	Cull      CullMode
	Depth     DepthState
	Blend     BlendState
	Stencil   StencilState

	// Covered is the number of simulated stencil cells the draw touched.
	Covered int
}

// RecordingOption is a functional option applied to a RecordingBackend by NewRecordingBackend.
type RecordingOption func(*RecordingBackend)

// WithCapabilities overrides the capabilities reported after Initialize.
//
// Parameters:
//   - caps: the capabilities to report
//
// Returns:
//   - RecordingOption: a function that applies the capabilities to the backend
func WithCapabilities(caps Capabilities) RecordingOption {
	return func(r *RecordingBackend) {
		r.caps = caps
	}
}

// WithStencilResolution sets the edge length of the simulated stencil grid kept per target.
//
// Parameters:
//   - n: the number of cells along each axis
//
// Returns:
//   - RecordingOption: a function that applies the resolution to the backend
func WithStencilResolution(n int) RecordingOption {
	return func(r *RecordingBackend) {
		r.resolution = max(n, 1)
	}
}

type recordedProgram struct {
	label    string
	vertex   *shader.Reflection
	fragment *shader.Reflection
	uniforms map[Location]any
}

func (p *recordedProgram) binding(name string) (shader.Binding, bool) {
	if b, ok := p.vertex.Binding(name); ok {
		return b, true
	}
	return p.fragment.Binding(name)
}

type recordedBuffer struct {
	kind BufferKind
	data []byte
}

type recordedTexture struct {
	desc  TextureDescriptor
	owner Target
}

// depthStencil is a simulated depth-stencil attachment, possibly shared between targets.
type depthStencil struct {
	faces [][]uint8
	refs  int
}

type recordedTarget struct {
	desc   TargetDescriptor
	colors []Texture
	depth  *depthStencil
	mips   int
}

type attributeBinding struct {
	buffer     Buffer
	components int
	enabled    bool
}

// RecordingBackend is a headless Backend. It validates and reflects WGSL without a device, records
// every call, and simulates the stencil buffer on a coarse grid so stencil partitioning can be
// inspected in tests. Coverage is the conservative screen-space bounds of each primitive.
type RecordingBackend struct {
	caps        Capabilities
	resolution  int
	width       int
	height      int
	initialized bool
	presentMode PresentMode
	viewport    common.Viewport

	next     uint32
	programs map[Program]*recordedProgram
	buffers  map[Buffer]*recordedBuffer
	textures map[Texture]*recordedTexture
	targets  map[Target]*recordedTarget
	surface  *depthStencil

	program    Program
	target     Target
	face       int
	attributes map[int]attributeBinding
	units      map[int]Texture
	cull       CullMode
	depth      DepthState
	blend      BlendState
	stencil    StencilState
	lineWidth  float32

	commands []Command
	counts   map[string]int
	draws    []DrawRecord
	frames   int
}

var _ Backend = &RecordingBackend{}

// NewRecordingBackend creates a headless backend that supports every optional feature unless
// configured otherwise.
//
// Parameters:
//   - options: functional options to configure the backend
//
// Returns:
//   - *RecordingBackend: the backend
func NewRecordingBackend(options ...RecordingOption) *RecordingBackend {
	r := &RecordingBackend{
		caps: Capabilities{
			FloatTargets:    true,
			CubeTargets:     true,
			MaxTextureUnits: 16,
			MaxTextureSize:  8192,
		},
		resolution: defaultStencilResolution,
		programs:   make(map[Program]*recordedProgram),
		buffers:    make(map[Buffer]*recordedBuffer),
		textures:   make(map[Texture]*recordedTexture),
		targets:    make(map[Target]*recordedTarget),
		attributes: make(map[int]attributeBinding),
		units:      make(map[int]Texture),
		counts:     make(map[string]int),
		lineWidth:  1,
	}
	for _, option := range options {
		option(r)
	}
	return r
}

func (r *RecordingBackend) record(op string, format string, args ...any) {
	detail := format
	if len(args) > 0 {
		detail = fmt.Sprintf(format, args...)
	}
	r.commands = append(r.commands, Command{Op: op, Detail: detail})
	r.counts[op]++
}

func (r *RecordingBackend) handle() uint32 {
	r.next++
	return r.next
}

func (r *RecordingBackend) newDepthStencil(faces int) *depthStencil {
	ds := &depthStencil{faces: make([][]uint8, faces), refs: 1}
	for i := range ds.faces {
		ds.faces[i] = make([]uint8, r.resolution*r.resolution)
	}
	return ds
}

func (r *RecordingBackend) Type() Type {
	return TypeRecording
}

func (r *RecordingBackend) Initialize(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("invalid surface size %dx%d", width, height)
	}
	r.width, r.height = width, height
	r.viewport = common.Viewport{Width: width, Height: height}
	r.surface = r.newDepthStencil(1)
	r.initialized = true
	r.record(OpInitialize, "%dx%d", width, height)
	return nil
}

func (r *RecordingBackend) Capabilities() Capabilities {
	return r.caps
}

func (r *RecordingBackend) SetPresentMode(mode PresentMode) {
	r.presentMode = mode
}

func (r *RecordingBackend) Resize(width, height int) {
	r.width, r.height = width, height
	r.viewport = common.Viewport{Width: width, Height: height}
	r.record(OpResize, "%dx%d", width, height)
}

func (r *RecordingBackend) SetViewport(v common.Viewport) {
	r.viewport = v
	r.record(OpSetViewport, "%d,%d %dx%d", v.X, v.Y, v.Width, v.Height)
}

func (r *RecordingBackend) CompileProgram(label, vertexSource, fragmentSource string) (Program, error) {
	r.record(OpCompileProgram, "%s", label)

	vr, err := shader.Reflect(vertexSource, shader.ShaderTypeVertex)
	if err != nil {
		return 0, &ShaderError{Stage: StageVertex, Log: err.Error()}
	}
	fr, err := shader.Reflect(fragmentSource, shader.ShaderTypeFragment)
	if err != nil {
		return 0, &ShaderError{Stage: StageFragment, Log: err.Error()}
	}

	for _, fb := range fr.Bindings {
		for _, vb := range vr.Bindings {
			sameSlot := vb.Group == fb.Group && vb.Binding == fb.Binding
			if sameSlot != (vb.Name == fb.Name) {
				return 0, &ShaderError{
					Stage: StageLink,
					Log:   fmt.Sprintf("vertex %s (%d,%d) conflicts with fragment %s (%d,%d)", vb.Name, vb.Group, vb.Binding, fb.Name, fb.Group, fb.Binding),
				}
			}
			if sameSlot && vb.Type != fb.Type {
				return 0, &ShaderError{Stage: StageLink, Log: fmt.Sprintf("%s declared as %s and %s", vb.Name, vb.Type, fb.Type)}
			}
		}
	}

	p := Program(r.handle())
	r.programs[p] = &recordedProgram{
		label:    label,
		vertex:   vr,
		fragment: fr,
		uniforms: make(map[Location]any),
	}
	return p, nil
}

func (r *RecordingBackend) UniformLocation(p Program, name string) (Location, bool) {
	prog, ok := r.programs[p]
	if !ok {
		return Location{}, false
	}
	b, ok := prog.binding(name)
	if !ok || b.Kind.IsSampler() {
		return Location{}, false
	}
	return Location{Group: b.Group, Binding: b.Binding}, true
}

func (r *RecordingBackend) AttributeLocation(p Program, name string) (int, bool) {
	prog, ok := r.programs[p]
	if !ok {
		return 0, false
	}
	a, ok := prog.vertex.Attribute(name)
	return a.Location, ok
}

func (r *RecordingBackend) UseProgram(p Program) {
	prog, ok := r.programs[p]
	if !ok {
		panic(fmt.Sprintf("backend: UseProgram with unknown program %d", p))
	}
	r.program = p
	r.record(OpUseProgram, "%s", prog.label)
}

func (r *RecordingBackend) UploadUniform(loc Location, value any) {
	prog, ok := r.programs[r.program]
	if !ok {
		panic("backend: UploadUniform without a bound program")
	}
	prog.uniforms[loc] = value
	r.record(OpUploadUniform, "%s %s", prog.label, loc)
}

func (r *RecordingBackend) DeleteProgram(p Program) {
	if _, ok := r.programs[p]; !ok {
		return
	}
	delete(r.programs, p)
	if r.program == p {
		r.program = 0
	}
	r.record(OpDeleteProgram, "%d", p)
}

func (r *RecordingBackend) CreateBuffer(kind BufferKind, data []byte) (Buffer, error) {
	if len(data) == 0 {
		return 0, fmt.Errorf("empty buffer")
	}
	b := Buffer(r.handle())
	r.buffers[b] = &recordedBuffer{kind: kind, data: append([]byte(nil), data...)}
	r.record(OpCreateBuffer, "%d bytes=%d", b, len(data))
	return b, nil
}

func (r *RecordingBackend) UpdateBuffer(buf Buffer, data []byte) error {
	b, ok := r.buffers[buf]
	if !ok {
		return fmt.Errorf("unknown buffer %d", buf)
	}
	b.data = append(b.data[:0], data...)
	r.record(OpUpdateBuffer, "%d bytes=%d", buf, len(data))
	return nil
}

func (r *RecordingBackend) DeleteBuffer(buf Buffer) {
	if _, ok := r.buffers[buf]; !ok {
		return
	}
	delete(r.buffers, buf)
	r.record(OpDeleteBuffer, "%d", buf)
}

func (r *RecordingBackend) BindAttribute(slot int, buf Buffer, components int) {
	a := r.attributes[slot]
	a.buffer, a.components = buf, components
	r.attributes[slot] = a
	r.record(OpBindAttribute, "slot=%d buffer=%d", slot, buf)
}

func (r *RecordingBackend) EnableAttribute(slot int) {
	a := r.attributes[slot]
	a.enabled = true
	r.attributes[slot] = a
	r.record(OpEnableAttribute, "slot=%d", slot)
}

func (r *RecordingBackend) DisableAttribute(slot int) {
	a := r.attributes[slot]
	a.enabled = false
	r.attributes[slot] = a
	r.record(OpDisableAttribute, "slot=%d", slot)
}

func (r *RecordingBackend) CreateTexture(desc TextureDescriptor, levels [][]byte) (Texture, error) {
	if desc.Width <= 0 || desc.Height <= 0 {
		return 0, fmt.Errorf("texture %q: invalid size %dx%d", desc.Label, desc.Width, desc.Height)
	}
	if desc.Width > r.caps.MaxTextureSize || desc.Height > r.caps.MaxTextureSize {
		return 0, fmt.Errorf("texture %q: %dx%d exceeds maximum size %d", desc.Label, desc.Width, desc.Height, r.caps.MaxTextureSize)
	}
	if desc.Cube && !r.caps.CubeTargets {
		return 0, fmt.Errorf("texture %q: cube textures unsupported", desc.Label)
	}
	faces := 1
	if desc.Cube {
		faces = 6
	}
	if len(levels) > 0 {
		want := faces * desc.Width * desc.Height * desc.Format.BytesPerTexel()
		if len(levels[0]) != want {
			return 0, fmt.Errorf("texture %q: level 0 has %d bytes, want %d", desc.Label, len(levels[0]), want)
		}
	}
	t := Texture(r.handle())
	r.textures[t] = &recordedTexture{desc: desc}
	r.record(OpCreateTexture, "%d %s %dx%d", t, desc.Label, desc.Width, desc.Height)
	return t, nil
}

func (r *RecordingBackend) BindTexture(unit int, tex Texture) {
	if unit < 0 || unit >= r.caps.MaxTextureUnits {
		panic(fmt.Sprintf("backend: texture unit %d out of range", unit))
	}
	r.units[unit] = tex
	r.record(OpBindTexture, "unit=%d texture=%d", unit, tex)
}

func (r *RecordingBackend) DeleteTexture(tex Texture) {
	t, ok := r.textures[tex]
	if !ok || t.owner != 0 {
		return
	}
	delete(r.textures, tex)
	r.record(OpDeleteTexture, "%d", tex)
}

func (r *RecordingBackend) CreateRenderTarget(desc TargetDescriptor) (Target, error) {
	if desc.Width <= 0 || desc.Height <= 0 {
		return 0, fmt.Errorf("target %q: invalid size %dx%d", desc.Label, desc.Width, desc.Height)
	}
	if desc.Format.IsFloat() && !r.caps.FloatTargets {
		return 0, fmt.Errorf("target %q: float render targets unsupported", desc.Label)
	}
	if desc.Cube && !r.caps.CubeTargets {
		return 0, fmt.Errorf("target %q: cube render targets unsupported", desc.Label)
	}

	faces := 1
	if desc.Cube {
		faces = 6
	}

	var ds *depthStencil
	if desc.ShareDepth != 0 {
		src, ok := r.targets[desc.ShareDepth]
		if !ok || src.depth == nil {
			return 0, fmt.Errorf("target %q: shared depth target %d has no depth-stencil attachment", desc.Label, desc.ShareDepth)
		}
		if src.desc.Width != desc.Width || src.desc.Height != desc.Height || src.desc.Cube != desc.Cube {
			return 0, fmt.Errorf("target %q: shared depth target %d has a different size", desc.Label, desc.ShareDepth)
		}
		ds = src.depth
		ds.refs++
	} else if desc.Depth {
		ds = r.newDepthStencil(faces)
	}

	t := Target(r.handle())
	rt := &recordedTarget{desc: desc, depth: ds}
	for i := range max(desc.Colors, 1) {
		tex := Texture(r.handle())
		r.textures[tex] = &recordedTexture{
			desc: TextureDescriptor{
				Label:  fmt.Sprintf("%s[%d]", desc.Label, i),
				Width:  desc.Width,
				Height: desc.Height,
				Format: desc.Format,
				Cube:   desc.Cube,
				Filter: desc.Filter,
				Wrap:   desc.Wrap,
			},
			owner: t,
		}
		rt.colors = append(rt.colors, tex)
	}
	r.targets[t] = rt
	r.record(OpCreateTarget, "%d %s %dx%d", t, desc.Label, desc.Width, desc.Height)
	return t, nil
}

func (r *RecordingBackend) TargetTexture(t Target, index int) Texture {
	rt, ok := r.targets[t]
	if !ok || index < 0 || index >= len(rt.colors) {
		return 0
	}
	return rt.colors[index]
}

func (r *RecordingBackend) BindTarget(t Target, face int) {
	if t != DefaultTarget {
		if _, ok := r.targets[t]; !ok {
			panic(fmt.Sprintf("backend: BindTarget with unknown target %d", t))
		}
	}
	r.target, r.face = t, face
	r.record(OpBindTarget, "target=%d face=%d", t, face)
}

func (r *RecordingBackend) GenerateMipmaps(t Target) {
	rt, ok := r.targets[t]
	if !ok {
		return
	}
	rt.mips++
	r.record(OpGenerateMipmaps, "%d", t)
}

func (r *RecordingBackend) DeleteRenderTarget(t Target) {
	rt, ok := r.targets[t]
	if !ok {
		return
	}
	for _, tex := range rt.colors {
		delete(r.textures, tex)
	}
	if rt.depth != nil {
		rt.depth.refs--
	}
	delete(r.targets, t)
	if r.target == t {
		r.target = DefaultTarget
	}
	r.record(OpDeleteTarget, "%d", t)
}

// boundStencil returns the simulated stencil cells of the bound target face, or nil without a depth-stencil attachment.
func (r *RecordingBackend) boundStencil() []uint8 {
	if r.target == DefaultTarget {
		if r.surface == nil {
			return nil
		}
		return r.surface.faces[0]
	}
	rt := r.targets[r.target]
	if rt == nil || rt.depth == nil {
		return nil
	}
	return rt.depth.faces[min(r.face, len(rt.depth.faces)-1)]
}

func (r *RecordingBackend) Clear(flags ClearFlags, color common.Color) {
	if flags&ClearStencil != 0 {
		clear(r.boundStencil())
	}
	r.record(OpClear, "target=%d face=%d flags=%03b", r.target, r.face, flags)
}

func (r *RecordingBackend) SetCullMode(mode CullMode) {
	r.cull = mode
	r.record(OpSetCullMode, "%d", mode)
}

func (r *RecordingBackend) SetDepthState(state DepthState) {
	r.depth = state
	r.record(OpSetDepthState, "test=%t write=%t func=%s", state.Test, state.Write, state.Func)
}

func (r *RecordingBackend) SetBlend(state BlendState) {
	r.blend = state
	r.record(OpSetBlend, "enabled=%t", state.Enabled)
}

func (r *RecordingBackend) SetStencil(state StencilState) {
	r.stencil = state
	if !state.Enabled {
		r.record(OpSetStencil, "off")
		return
	}
	r.record(OpSetStencil, "func=%s ref=%d pass=%s", state.Func, state.Ref, state.Pass)
}

func (r *RecordingBackend) SetLineWidth(width float32) {
	r.lineWidth = width
	r.record(OpSetLineWidth, "%g", width)
}

func (r *RecordingBackend) Draw(prim Primitive, indices Buffer, count int) {
	prog, ok := r.programs[r.program]
	if !ok {
		panic("backend: Draw without a bound program")
	}

	covered := r.rasterize(prog, prim, indices, count)
	r.applyStencil(covered)

	r.draws = append(r.draws, DrawRecord{
		Program:   prog.label,
		Target:    r.target,
		Face:      r.face,
		Primitive: prim,
		Count:     count,
		Cull:      r.cull,
		Depth:     r.depth,
		Blend:     r.blend,
		Stencil:   r.stencil,
		Covered:   len(covered),
	})
	r.record(OpDraw, "%s target=%d face=%d count=%d", prog.label, r.target, r.face, count)
}

func (r *RecordingBackend) applyStencil(cells []int) {
	if !r.stencil.Enabled {
		return
	}
	grid := r.boundStencil()
	if grid == nil {
		return
	}
	s := r.stencil
	mask := s.Mask
	if mask == 0 {
		mask = 0xFF
	}
	for _, c := range cells {
		if s.Func.Compare(uint32(s.Ref&mask), uint32(grid[c]&mask)) {
			grid[c] = s.Pass.Apply(grid[c], s.Ref)
		} else {
			grid[c] = s.Fail.Apply(grid[c], s.Ref)
		}
	}
}

// rasterize returns the stencil cells covered by a draw. Vertices are transformed by the uploaded
// projectionMatrix * modelViewMatrix when the program declares both, otherwise positions are taken
// as normalized device coordinates. Without a bound position attribute the draw covers every cell.
func (r *RecordingBackend) rasterize(prog *recordedProgram, prim Primitive, indices Buffer, count int) []int {
	n := r.resolution
	all := func() []int {
		cells := make([]int, n*n)
		for i := range cells {
			cells[i] = i
		}
		return cells
	}

	attr, ok := prog.vertex.Attribute("position")
	if !ok {
		return all()
	}
	ab, ok := r.attributes[attr.Location]
	if !ok || !ab.enabled || ab.components < 2 {
		return all()
	}
	vb, ok := r.buffers[ab.buffer]
	if !ok {
		return all()
	}
	positions := decodeFloats(vb.data)

	mvp := mgl32.Ident4()
	proj, hasProj := r.uniformMat4(prog, "projectionMatrix")
	mv, hasMV := r.uniformMat4(prog, "modelViewMatrix")
	if hasProj && hasMV {
		mvp = proj.Mul4(mv)
	}

	order := make([]uint32, 0, count)
	if ib, ok := r.buffers[indices]; ok && indices != 0 {
		for i := 0; i+4 <= len(ib.data) && len(order) < count; i += 4 {
			order = append(order, binary.LittleEndian.Uint32(ib.data[i:]))
		}
	} else {
		for i := range count {
			order = append(order, uint32(i))
		}
	}

	per := 3
	switch prim {
	case PrimitiveLines:
		per = 2
	case PrimitivePoints:
		per = 1
	}

	mark := make([]bool, n*n)
	for p := 0; p+per <= len(order); p += per {
		minX, minY := float32(math.Inf(1)), float32(math.Inf(1))
		maxX, maxY := float32(math.Inf(-1)), float32(math.Inf(-1))
		behind := false
		for _, idx := range order[p : p+per] {
			base := int(idx) * ab.components
			if base+ab.components > len(positions) {
				continue
			}
			v := mgl32.Vec4{positions[base], positions[base+1], 0, 1}
			if ab.components > 2 {
				v[2] = positions[base+2]
			}
			c := mvp.Mul4x1(v)
			if c[3] <= 0 {
				behind = true
				break
			}
			x, y := c[0]/c[3], c[1]/c[3]
			minX, maxX = min(minX, x), max(maxX, x)
			minY, maxY = min(minY, y), max(maxY, y)
		}
		if behind {
			minX, minY, maxX, maxY = -1, -1, 1, 1
		}
		markCells(mark, n, minX, minY, maxX, maxY)
	}

	var cells []int
	for i, m := range mark {
		if m {
			cells = append(cells, i)
		}
	}
	return cells
}

// markCells flags every grid cell overlapping the NDC rectangle.
func markCells(mark []bool, n int, minX, minY, maxX, maxY float32) {
	if maxX < -1 || minX > 1 || maxY < -1 || minY > 1 {
		return
	}
	size := 2 / float32(n)
	for j := range n {
		cy0 := -1 + float32(j)*size
		if cy0 > maxY || cy0+size < minY {
			continue
		}
		for i := range n {
			cx0 := -1 + float32(i)*size
			if cx0 > maxX || cx0+size < minX {
				continue
			}
			mark[j*n+i] = true
		}
	}
}

func (r *RecordingBackend) uniformMat4(prog *recordedProgram, name string) (mgl32.Mat4, bool) {
	b, ok := prog.binding(name)
	if !ok {
		return mgl32.Mat4{}, false
	}
	m, ok := prog.uniforms[Location{Group: b.Group, Binding: b.Binding}].(mgl32.Mat4)
	return m, ok
}

func decodeFloats(data []byte) []float32 {
	out := make([]float32, len(data)/4)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return out
}

func (r *RecordingBackend) Present() error {
	if !r.initialized {
		return fmt.Errorf("present before initialize")
	}
	r.frames++
	r.record(OpPresent, "")
	return nil
}

func (r *RecordingBackend) Dispose() {
	r.initialized = false
	r.surface = nil
}

// Commands returns the recorded command log.
func (r *RecordingBackend) Commands() []Command {
	return r.commands
}

// Count returns how many times an operation was recorded since the last reset.
func (r *RecordingBackend) Count(op string) int {
	return r.counts[op]
}

// Draws returns the recorded draw calls.
func (r *RecordingBackend) Draws() []DrawRecord {
	return r.draws
}

// ResetCommands clears the command log, counters and draw records. Device state is kept.
func (r *RecordingBackend) ResetCommands() {
	r.commands = nil
	r.draws = nil
	clear(r.counts)
}

// Stencil returns a copy of the simulated stencil grid of a target face, or nil if the target has
// no depth-stencil attachment.
func (r *RecordingBackend) Stencil(t Target, face int) []uint8 {
	var grid []uint8
	if t == DefaultTarget {
		if r.surface != nil {
			grid = r.surface.faces[0]
		}
	} else if rt, ok := r.targets[t]; ok && rt.depth != nil {
		grid = rt.depth.faces[min(face, len(rt.depth.faces)-1)]
	}
	if grid == nil {
		return nil
	}
	return append([]uint8(nil), grid...)
}

// StencilResolution returns the edge length of the simulated stencil grid.
func (r *RecordingBackend) StencilResolution() int {
	return r.resolution
}

// UniformValue returns the value last uploaded to a named uniform of a program.
func (r *RecordingBackend) UniformValue(p Program, name string) (any, bool) {
	prog, ok := r.programs[p]
	if !ok {
		return nil, false
	}
	b, ok := prog.binding(name)
	if !ok {
		return nil, false
	}
	v, ok := prog.uniforms[Location{Group: b.Group, Binding: b.Binding}]
	return v, ok
}

// ProgramLabel returns the label a program was compiled with.
func (r *RecordingBackend) ProgramLabel(p Program) string {
	if prog, ok := r.programs[p]; ok {
		return prog.label
	}
	return ""
}

// MipmapGenerations returns how many times GenerateMipmaps ran for a target.
func (r *RecordingBackend) MipmapGenerations(t Target) int {
	if rt, ok := r.targets[t]; ok {
		return rt.mips
	}
	return 0
}

// BoundTarget returns the target and face currently bound.
func (r *RecordingBackend) BoundTarget() (Target, int) {
	return r.target, r.face
}

// BoundTexture returns the texture resident in a unit.
func (r *RecordingBackend) BoundTexture(unit int) Texture {
	return r.units[unit]
}

// Live returns the number of programs, buffers, standalone textures and targets not yet deleted.
func (r *RecordingBackend) Live() int {
	n := len(r.programs) + len(r.buffers) + len(r.targets)
	for _, t := range r.textures {
		if t.owner == 0 {
			n++
		}
	}
	return n
}

// Frames returns the number of presented frames.
func (r *RecordingBackend) Frames() int {
	return r.frames
}
