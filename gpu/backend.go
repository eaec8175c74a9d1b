// Package gpu provides the compute runtime the solvers dispatch through:
// device probing, WGSL program compilation with a source-keyed cache, and
// storage/uniform buffer management with an exactly-once destroy discipline.
//
// The real device is WebGPU (github.com/openfluke/webgpu); the Backend
// interface is the seam that lets tests substitute a recording fake, the
// same way alternate compute backends plug in behind a common interface.
package gpu

import "github.com/pkg/errors"

// WorkgroupSize is the fixed compute workgroup width shared by every
// kernel. Dispatches cover ceil(n/WorkgroupSize) workgroups.
const WorkgroupSize = 64

// ErrUnavailable reports that no compute device could be acquired. Callers
// are expected to probe with Initialize first and fall back to CPU.
var ErrUnavailable = errors.New("gpu: no compute device available")

// Availability is the cached result of the device capability probe.
type Availability int

const (
	AvailabilityUnknown Availability = iota
	AvailabilityAvailable
	AvailabilityUnavailable
)

func (a Availability) String() string {
	switch a {
	case AvailabilityAvailable:
		return "available"
	case AvailabilityUnavailable:
		return "unavailable"
	default:
		return "unknown"
	}
}

// BufferUsage selects how a buffer binds to a kernel.
type BufferUsage uint32

const (
	// UsageStorageRead binds as read-only storage (solver inputs).
	UsageStorageRead BufferUsage = 1 << iota
	// UsageStorageWrite binds as read-write storage and is readable back
	// to the host (solver outputs).
	UsageStorageWrite
	// UsageUniform binds as the fixed-order scalar parameter vector.
	UsageUniform
)

// Buffer is an opaque handle to device memory. It is owned exclusively by
// the solve call that created it and must be destroyed exactly once on
// every exit path of that call; BufferSet enforces this.
type Buffer struct {
	size      int
	usage     BufferUsage
	handle    interface{} // backend-owned
	destroyed bool
}

// Size returns the byte length of the device allocation.
func (b *Buffer) Size() int { return b.size }

// Usage returns the binding role the buffer was created with.
func (b *Buffer) Usage() BufferUsage { return b.usage }

// Handle exposes the backend-specific allocation. Only Backend
// implementations should touch this.
func (b *Buffer) Handle() interface{} { return b.handle }

// Program is a compiled kernel plus entry point. Programs are immutable
// and cached by the Runtime keyed on WGSL source.
type Program interface {
	Label() string
}

// Backend abstracts the compute device. The production implementation is
// webgpuBackend; gputest.Backend records calls and injects failures.
type Backend interface {
	// Compile builds a kernel from WGSL source. A compilation failure is
	// fatal for the solver that owns the source.
	Compile(label, source, entry string) (Program, error)
	// CreateBuffer allocates device memory and uploads data when non-nil.
	// size is the byte length; data may be shorter than size only when nil.
	CreateBuffer(size int, data []byte, usage BufferUsage) (interface{}, error)
	// Dispatch binds inputs, output and uniform to the program and submits
	// groups workgroups. Completion is guaranteed only by a later Read.
	Dispatch(p Program, inputs []*Buffer, output, uniform *Buffer, groups uint32) error
	// Read drains the queue for the buffer and snapshots byteLen bytes.
	Read(b *Buffer, byteLen int) ([]byte, error)
	// ReleaseProgram frees a compiled program's device objects. Called by
	// the Runtime when its cache is torn down.
	ReleaseProgram(p Program)
	// Destroy releases device memory. Called exactly once per buffer.
	Destroy(b *Buffer)
	// Close releases the device itself.
	Close()
}
