// Package solvers contains the GPU-accelerated iterative solvers:
// wavefunction phase evolution, magnetization dynamics and quantum
// tunneling transmission. Every solver carries one canonical per-element
// CPU formula; the WGSL kernel mirrors it and the two paths are held
// together by parity tests.
//
// Common contract: a Solve call packs its inputs into device buffers, its
// scalars into one fixed-order uniform block, dispatches
// ceil(n/64) workgroups, reads every output and destroys every buffer it
// created on both success and error paths. Reported elapsed time spans
// create through destroy, so it includes transfer cost. Each call owns its
// buffer set exclusively; concurrent Solve calls on one solver allocate
// independent sets.
package solvers

import (
	"math"
	"time"
	"unsafe"

	"github.com/pkg/errors"

	"latticelab/gpu"
)

// uniformBlock packs scalar kernel parameters in a fixed field order
// matching the WGSL Params struct, padded to a 16-byte multiple.
type uniformBlock struct {
	words []uint32
}

func (u *uniformBlock) putU32(v uint32) { u.words = append(u.words, v) }

func (u *uniformBlock) putF32(v float64) {
	u.words = append(u.words, math.Float32bits(float32(v)))
}

func (u *uniformBlock) bytes() []byte {
	for len(u.words)%4 != 0 {
		u.words = append(u.words, 0)
	}
	return f32Bytes(u.words)
}

func f32Bytes[T uint32 | float32](v []T) []byte {
	if len(v) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&v[0])), len(v)*4)
}

func floatsToF32(v []float64) []float32 {
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = float32(x)
	}
	return out
}

func bytesToF32(b []byte) []float32 {
	if len(b) == 0 {
		return nil
	}
	return unsafe.Slice((*float32)(unsafe.Pointer(&b[0])), len(b)/4)
}

// runKernel is the shared dispatch path. It allocates the tracked buffer
// set, uploads inputs, dispatches n elements, reads outputSize bytes back
// and releases everything before the timer stops; the deferred release
// covers the error exits. Errors come back wrapped with the solver name.
func runKernel(rt *gpu.Runtime, prog gpu.Program, name string, inputs [][]byte, outputSize int, uniform []byte, n int) (out []byte, elapsedMs float64, err error) {
	start := time.Now()
	set := rt.NewBufferSet()
	defer set.Release()

	bufs := make([]*gpu.Buffer, len(inputs))
	for i, data := range inputs {
		if bufs[i], err = set.Create(data, gpu.UsageStorageRead); err != nil {
			return nil, 0, errors.Wrap(err, name)
		}
	}
	outBuf, err := set.CreateEmpty(outputSize, gpu.UsageStorageWrite)
	if err != nil {
		return nil, 0, errors.Wrap(err, name)
	}
	uniBuf, err := set.Create(uniform, gpu.UsageUniform)
	if err != nil {
		return nil, 0, errors.Wrap(err, name)
	}

	if err = rt.Run(prog, bufs, outBuf, uniBuf, n); err != nil {
		return nil, 0, errors.Wrap(err, name)
	}
	raw, err := rt.ReadBuffer(outBuf, outputSize)
	if err != nil {
		return nil, 0, errors.Wrap(err, name)
	}

	set.Release()
	return raw, float64(time.Since(start)) / float64(time.Millisecond), nil
}

// compileIfAvailable builds the solver kernel when the runtime has a
// device. A compile failure is fatal for the solver instance and is
// surfaced here, at construction, rather than on first Solve.
func compileIfAvailable(rt *gpu.Runtime, name, label, source string) (gpu.Program, error) {
	if rt.Availability() != gpu.AvailabilityAvailable {
		return nil, nil
	}
	prog, err := rt.Compile(label, source, "main")
	if err != nil {
		return nil, errors.Wrap(err, name)
	}
	return prog, nil
}

func requireProgram(rt *gpu.Runtime, prog gpu.Program, name string) error {
	if prog == nil {
		return errors.Wrap(gpu.ErrUnavailable, name)
	}
	return nil
}
