// Package gputest provides an in-memory compute backend for tests: it
// records buffer lifecycle calls, injects failures on demand, and lets the
// test emulate a kernel by rewriting the output buffer on dispatch.
package gputest

import (
	"sync"

	"github.com/pkg/errors"

	"latticelab/gpu"
)

type fakeBuffer struct {
	data []byte
}

// DispatchFunc emulates a kernel: inputs and uniform are snapshots of the
// bound buffers, output is written in place.
type DispatchFunc func(label string, inputs [][]byte, output []byte, uniform []byte, groups uint32) error

// Backend is a recording fake implementing gpu.Backend.
type Backend struct {
	mu sync.Mutex

	// Counters for lifecycle assertions.
	Created          int
	Destroyed        int
	Dispatches       int
	Compiles         int
	ProgramsReleased int

	// Failure injection.
	FailCompile  bool
	FailDispatch bool
	FailRead     bool

	// OnDispatch emulates kernel execution. Nil leaves outputs zeroed.
	OnDispatch DispatchFunc
}

// New returns an empty fake backend.
func New() *Backend { return &Backend{} }

type fakeProgram struct {
	label string
	entry string
}

func (p *fakeProgram) Label() string { return p.label }

func (f *Backend) Compile(label, source, entry string) (gpu.Program, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Compiles++
	if f.FailCompile {
		return nil, errors.Errorf("gputest: forced compile failure for %s", label)
	}
	return &fakeProgram{label: label, entry: entry}, nil
}

func (f *Backend) CreateBuffer(size int, data []byte, usage gpu.BufferUsage) (interface{}, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Created++
	buf := &fakeBuffer{data: make([]byte, size)}
	copy(buf.data, data)
	return buf, nil
}

func (f *Backend) Dispatch(p gpu.Program, inputs []*gpu.Buffer, output, uniform *gpu.Buffer, groups uint32) error {
	f.mu.Lock()
	f.Dispatches++
	fail := f.FailDispatch
	fn := f.OnDispatch
	f.mu.Unlock()
	if fail {
		return errors.Errorf("gputest: forced dispatch failure for %s", p.Label())
	}
	if fn == nil {
		return nil
	}
	in := make([][]byte, len(inputs))
	for i, b := range inputs {
		in[i] = contents(b)
	}
	return fn(p.Label(), in, contents(output), contents(uniform), groups)
}

func (f *Backend) Read(b *gpu.Buffer, byteLen int) ([]byte, error) {
	f.mu.Lock()
	fail := f.FailRead
	f.mu.Unlock()
	if fail {
		return nil, errors.New("gputest: forced read failure")
	}
	data := contents(b)
	if byteLen > len(data) {
		return nil, errors.Errorf("gputest: read %d bytes from %d-byte buffer", byteLen, len(data))
	}
	out := make([]byte, byteLen)
	copy(out, data[:byteLen])
	return out, nil
}

func (f *Backend) ReleaseProgram(p gpu.Program) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ProgramsReleased++
}

func (f *Backend) Destroy(b *gpu.Buffer) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Destroyed++
}

func (f *Backend) Close() {}

// Balanced reports whether every created buffer has been destroyed.
func (f *Backend) Balanced() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Created == f.Destroyed && f.Created > 0
}

func contents(b *gpu.Buffer) []byte {
	if b == nil {
		return nil
	}
	if fb, ok := b.Handle().(*fakeBuffer); ok && fb != nil {
		return fb.data
	}
	return nil
}
