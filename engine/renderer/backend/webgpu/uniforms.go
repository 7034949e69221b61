package webgpu

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/MKHenson/trike3d-sub000/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"
)

// uniformAlign is the size granularity of uniform buffers handed out by the arena.
const uniformAlign = 16

// uniformArena hands out uniform buffers for the draws of one submission. Every draw gets its own
// buffers since queue writes land before the whole submission executes.
type uniformArena struct {
	device *wgpu.Device
	free   map[uint64][]*wgpu.Buffer
	used   map[uint64][]*wgpu.Buffer
}

func newUniformArena(device *wgpu.Device) *uniformArena {
	return &uniformArena{
		device: device,
		free:   make(map[uint64][]*wgpu.Buffer),
		used:   make(map[uint64][]*wgpu.Buffer),
	}
}

// allocate returns a buffer of at least size bytes that is unused in the current submission.
func (a *uniformArena) allocate(size uint64) (*wgpu.Buffer, uint64, error) {
	size = alignUp(max(size, uniformAlign), uniformAlign)
	if free := a.free[size]; len(free) > 0 {
		buf := free[len(free)-1]
		a.free[size] = free[:len(free)-1]
		a.used[size] = append(a.used[size], buf)
		return buf, size, nil
	}
	buf, err := a.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: fmt.Sprintf("Uniform %d", size),
		Size:  size,
		Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, 0, err
	}
	a.used[size] = append(a.used[size], buf)
	return buf, size, nil
}

// reset returns every buffer handed out since the last reset to the free lists.
func (a *uniformArena) reset() {
	if a == nil {
		return
	}
	for size, bufs := range a.used {
		a.free[size] = append(a.free[size], bufs...)
		a.used[size] = bufs[:0]
	}
}

func (a *uniformArena) release() {
	for _, lists := range []map[uint64][]*wgpu.Buffer{a.free, a.used} {
		for size, bufs := range lists {
			for _, buf := range bufs {
				buf.Release()
			}
			delete(lists, size)
		}
	}
}

// naturalStride returns the uniform address space stride of an array element of v's Go type.
func naturalStride(v any) uint64 {
	switch v.(type) {
	case []float32, []int32, []uint32:
		return 4
	case []mgl32.Vec2:
		return 8
	case []mgl32.Vec3, []mgl32.Vec4:
		return 16
	case []mgl32.Mat3:
		return 48
	case []mgl32.Mat4:
		return 64
	default:
		return 0
	}
}

// encodeUniform lays a value out as the bytes of a uniform binding. Array elements are placed at
// the binding's reflected stride so scalar arrays may be declared as vec4 arrays in WGSL.
func encodeUniform(v any, b shader.Binding) ([]byte, error) {
	size := b.Size
	if size == 0 {
		size = valueSize(v)
	}
	out := make([]byte, alignUp(max(size, uniformAlign), uniformAlign))

	stride := b.Stride
	if stride == 0 {
		stride = naturalStride(v)
	}

	switch vv := v.(type) {
	case float32:
		putFloats(out, vv)
	case int32:
		putUint(out, uint32(vv))
	case uint32:
		putUint(out, vv)
	case int:
		putUint(out, uint32(int32(vv)))
	case bool:
		if vv {
			putUint(out, 1)
		}
	case mgl32.Vec2:
		putFloats(out, vv[:]...)
	case mgl32.Vec3:
		putFloats(out, vv[:]...)
	case mgl32.Vec4:
		putFloats(out, vv[:]...)
	case mgl32.Mat3:
		putMat3(out, vv)
	case mgl32.Mat4:
		putFloats(out, vv[:]...)
	case []float32:
		for i, e := range vv {
			putAt(out, uint64(i)*stride, func(dst []byte) { putFloats(dst, e) })
		}
	case []int32:
		for i, e := range vv {
			putAt(out, uint64(i)*stride, func(dst []byte) { putUint(dst, uint32(e)) })
		}
	case []uint32:
		for i, e := range vv {
			putAt(out, uint64(i)*stride, func(dst []byte) { putUint(dst, e) })
		}
	case []mgl32.Vec2:
		for i, e := range vv {
			putAt(out, uint64(i)*stride, func(dst []byte) { putFloats(dst, e[:]...) })
		}
	case []mgl32.Vec3:
		for i, e := range vv {
			putAt(out, uint64(i)*stride, func(dst []byte) { putFloats(dst, e[:]...) })
		}
	case []mgl32.Vec4:
		for i, e := range vv {
			putAt(out, uint64(i)*stride, func(dst []byte) { putFloats(dst, e[:]...) })
		}
	case []mgl32.Mat3:
		for i, e := range vv {
			putAt(out, uint64(i)*stride, func(dst []byte) { putMat3(dst, e) })
		}
	case []mgl32.Mat4:
		for i, e := range vv {
			putAt(out, uint64(i)*stride, func(dst []byte) { putFloats(dst, e[:]...) })
		}
	default:
		return nil, fmt.Errorf("uniform %s: unsupported value type %T", b.Name, v)
	}
	return out, nil
}

// valueSize is the unpadded byte size of a value, used when reflection could not size a binding.
func valueSize(v any) uint64 {
	switch vv := v.(type) {
	case float32, int32, uint32, int, bool:
		return 4
	case mgl32.Vec2:
		return 8
	case mgl32.Vec3:
		return 12
	case mgl32.Vec4:
		return 16
	case mgl32.Mat3:
		return 48
	case mgl32.Mat4:
		return 64
	case []float32:
		return uint64(len(vv)) * naturalStride(v)
	case []int32:
		return uint64(len(vv)) * naturalStride(v)
	case []uint32:
		return uint64(len(vv)) * naturalStride(v)
	case []mgl32.Vec2:
		return uint64(len(vv)) * naturalStride(v)
	case []mgl32.Vec3:
		return uint64(len(vv)) * naturalStride(v)
	case []mgl32.Vec4:
		return uint64(len(vv)) * naturalStride(v)
	case []mgl32.Mat3:
		return uint64(len(vv)) * naturalStride(v)
	case []mgl32.Mat4:
		return uint64(len(vv)) * naturalStride(v)
	default:
		return 0
	}
}

// putAt runs put on out[offset:] when the element fits. Elements past the binding size are dropped.
func putAt(out []byte, offset uint64, put func([]byte)) {
	if offset >= uint64(len(out)) {
		return
	}
	put(out[offset:])
}

func putFloats(dst []byte, fs ...float32) {
	for i, f := range fs {
		if (i+1)*4 > len(dst) {
			return
		}
		binary.LittleEndian.PutUint32(dst[i*4:], math.Float32bits(f))
	}
}

func putUint(dst []byte, u uint32) {
	if len(dst) < 4 {
		return
	}
	binary.LittleEndian.PutUint32(dst, u)
}

// putMat3 writes a column-major 3x3 matrix with each column padded to 16 bytes.
func putMat3(dst []byte, m mgl32.Mat3) {
	for col := range 3 {
		if col*16 >= len(dst) {
			return
		}
		putFloats(dst[col*16:], m[col*3], m[col*3+1], m[col*3+2])
	}
}
