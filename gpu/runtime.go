package gpu

import (
	"sync"

	"github.com/pkg/errors"
)

// Runtime is the compute context injected into each solver at construction.
// There is no hidden global: callers build one Runtime, probe it, and hand
// it to the solvers that should share the device. Default() exists for the
// common one-device-per-process case but is just a lazily built Runtime.
type Runtime struct {
	mu       sync.Mutex
	backend  Backend
	avail    Availability
	programs map[string]Program
	pref     string
}

// NewRuntime returns an unprobed runtime backed by the WebGPU device.
func NewRuntime() *Runtime {
	return &Runtime{programs: make(map[string]Program)}
}

// NewRuntimeWithBackend wires an explicit backend, bypassing the device
// probe. Used by tests and by embedders with their own device handling.
func NewRuntimeWithBackend(b Backend) *Runtime {
	avail := AvailabilityUnavailable
	if b != nil {
		avail = AvailabilityAvailable
	}
	return &Runtime{backend: b, avail: avail, programs: make(map[string]Program)}
}

var (
	defaultOnce    sync.Once
	defaultRuntime *Runtime
)

// Default returns the process-wide runtime, probing the device on first
// use. The capability result is cached for the process lifetime.
func Default() *Runtime {
	defaultOnce.Do(func() {
		defaultRuntime = NewRuntime()
		defaultRuntime.Initialize()
	})
	return defaultRuntime
}

// SetAdapterPreference pins the device adapter by substring match on its
// reported name (e.g. "nvidia"). A non-matching adapter is treated as
// device absence. Must be called before the first Initialize.
func (r *Runtime) SetAdapterPreference(substr string) {
	r.mu.Lock()
	r.pref = substr
	r.mu.Unlock()
}

// Initialize probes for a usable compute device. Idempotent; the probe
// runs once and the result sticks. Device absence is a supported outcome,
// never an error: callers get false and choose the CPU path.
func (r *Runtime) Initialize() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.avail != AvailabilityUnknown {
		return r.avail == AvailabilityAvailable
	}
	b, err := newWebGPUBackend(r.pref)
	if err != nil {
		r.avail = AvailabilityUnavailable
		return false
	}
	r.backend = b
	r.avail = AvailabilityAvailable
	return true
}

// Availability reports the cached probe result without probing.
func (r *Runtime) Availability() Availability {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.avail
}

func (r *Runtime) ready() (Backend, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.avail != AvailabilityAvailable || r.backend == nil {
		return nil, ErrUnavailable
	}
	return r.backend, nil
}

// Compile returns the compiled program for source, building it on first
// use. Programs are cached per runtime keyed by source text, so repeated
// solver construction does not recompile. The lock is held across the
// backend compile so concurrent callers for the same source cannot race
// past the cache and leak the loser's module.
func (r *Runtime) Compile(label, source, entry string) (Program, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.avail != AvailabilityAvailable || r.backend == nil {
		return nil, ErrUnavailable
	}
	if p, ok := r.programs[source]; ok {
		return p, nil
	}
	p, err := r.backend.Compile(label, source, entry)
	if err != nil {
		return nil, errors.Wrapf(err, "compile %s", label)
	}
	r.programs[source] = p
	return p, nil
}

// CreateBuffer allocates a device buffer of len(data) bytes and uploads
// data. The caller owns the handle until Destroy.
func (r *Runtime) CreateBuffer(data []byte, usage BufferUsage) (*Buffer, error) {
	return r.createBuffer(len(data), data, usage)
}

// CreateEmptyBuffer allocates a zeroed device buffer, typically the output
// of a dispatch.
func (r *Runtime) CreateEmptyBuffer(size int, usage BufferUsage) (*Buffer, error) {
	return r.createBuffer(size, nil, usage)
}

func (r *Runtime) createBuffer(size int, data []byte, usage BufferUsage) (*Buffer, error) {
	b, err := r.ready()
	if err != nil {
		return nil, err
	}
	h, err := b.CreateBuffer(size, data, usage)
	if err != nil {
		return nil, err
	}
	return &Buffer{size: size, usage: usage, handle: h}, nil
}

// Run dispatches the program across ceil(n/WorkgroupSize) workgroups with
// the given bindings. Asynchronous: completion is guaranteed only after a
// subsequent ReadBuffer on one of the outputs.
func (r *Runtime) Run(p Program, inputs []*Buffer, output, uniform *Buffer, n int) error {
	b, err := r.ready()
	if err != nil {
		return err
	}
	groups := uint32((n + WorkgroupSize - 1) / WorkgroupSize)
	if groups == 0 {
		groups = 1
	}
	return b.Dispatch(p, inputs, output, uniform, groups)
}

// ReadBuffer drains the queue for the buffer and returns a host snapshot
// of its first byteLen bytes.
func (r *Runtime) ReadBuffer(buf *Buffer, byteLen int) ([]byte, error) {
	b, err := r.ready()
	if err != nil {
		return nil, err
	}
	if buf.destroyed {
		return nil, errors.New("gpu: read after destroy")
	}
	if buf.Usage()&UsageStorageWrite == 0 {
		return nil, errors.Errorf("gpu: buffer usage %v is not host-readable", buf.Usage())
	}
	if byteLen > buf.Size() {
		return nil, errors.Errorf("gpu: read %d bytes from %d-byte buffer", byteLen, buf.Size())
	}
	return b.Read(buf, byteLen)
}

// Destroy releases the buffer's device memory. Safe to call once per
// buffer; repeated calls are ignored so that deferred cleanup composes
// with explicit early destruction.
func (r *Runtime) Destroy(buf *Buffer) {
	if buf == nil || buf.destroyed {
		return
	}
	r.mu.Lock()
	b := r.backend
	r.mu.Unlock()
	if b == nil {
		return
	}
	buf.destroyed = true
	b.Destroy(buf)
}

// Close releases every cached program and then the device.
func (r *Runtime) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.backend != nil {
		for _, p := range r.programs {
			r.backend.ReleaseProgram(p)
		}
		r.backend.Close()
		r.backend = nil
	}
	r.programs = make(map[string]Program)
	if r.avail == AvailabilityAvailable {
		r.avail = AvailabilityUnavailable
	}
}
