package solvers

import (
	"latticelab/core"
	"latticelab/gpu"
)

const wavefunctionSolverName = "wavefunction solver"

// wavefunctionWGSL applies the half-step potential phase rotation
// psi' = psi * exp(-i*V*dt/(2*hbar)) per element. Mirrors phaseRotate.
const wavefunctionWGSL = `
struct Params {
    count: u32,
    dt_over_2hbar: f32,
}

@group(0) @binding(0) var<storage, read> psi: array<f32>;
@group(0) @binding(1) var<storage, read> potential: array<f32>;
@group(0) @binding(2) var<storage, read_write> out: array<f32>;
@group(0) @binding(3) var<uniform> params: Params;

@compute @workgroup_size(64)
fn main(@builtin(global_invocation_id) gid: vec3<u32>) {
    let i = gid.x;
    if (i >= params.count) {
        return;
    }
    let re = psi[2u * i];
    let im = psi[2u * i + 1u];
    let phase = -potential[i] * params.dt_over_2hbar;
    let c = cos(phase);
    let s = sin(phase);
    out[2u * i] = re * c - im * s;
    out[2u * i + 1u] = re * s + im * c;
}
`

// WavefunctionParams are the scalar inputs of one half-step.
type WavefunctionParams struct {
	Dt   float64 // time step (fs)
	HBar float64 // zero selects core.HBar
}

func (p WavefunctionParams) hbar() float64 {
	if p.HBar == 0 {
		return core.HBar
	}
	return p.HBar
}

// WavefunctionResult is the rotated wavefunction plus the end-to-end GPU
// time including transfers.
type WavefunctionResult struct {
	Psi           []core.Complex
	PerformanceMs float64
}

// WavefunctionSolver applies the potential half-step of a split-operator
// scheme: one Solve call is one half-step, and full time evolution is the
// caller invoking Solve repeatedly with updated state.
type WavefunctionSolver struct {
	rt   *gpu.Runtime
	prog gpu.Program
}

// NewWavefunctionSolver compiles the kernel against rt when a device is
// present. Construction succeeds without a device; Solve then reports
// gpu.ErrUnavailable and SolveCPU remains usable.
func NewWavefunctionSolver(rt *gpu.Runtime) (*WavefunctionSolver, error) {
	prog, err := compileIfAvailable(rt, wavefunctionSolverName, "wavefunction_phase", wavefunctionWGSL)
	if err != nil {
		return nil, err
	}
	return &WavefunctionSolver{rt: rt, prog: prog}, nil
}

// phaseRotate is the canonical per-element formula both backends follow.
func phaseRotate(c core.Complex, v, dtOver2HBar float64) core.Complex {
	return c.Mul(core.Expi(-v * dtOver2HBar))
}

// SolveCPU evaluates the canonical formula on the host.
func (s *WavefunctionSolver) SolveCPU(psi []core.Complex, potential []float64, p WavefunctionParams) []core.Complex {
	dtOver2HBar := p.Dt / (2 * p.hbar())
	out := make([]core.Complex, len(psi))
	for i, c := range psi {
		out[i] = phaseRotate(c, potential[i], dtOver2HBar)
	}
	return out
}

// Solve runs the half-step on the device. Lengths of psi and potential
// must match; that is a caller-contract precondition, not a checked error.
func (s *WavefunctionSolver) Solve(psi []core.Complex, potential []float64, p WavefunctionParams) (*WavefunctionResult, error) {
	if err := requireProgram(s.rt, s.prog, wavefunctionSolverName); err != nil {
		return nil, err
	}
	n := len(psi)

	packed := make([]float32, 2*n)
	for i, c := range psi {
		packed[2*i] = float32(c.Re)
		packed[2*i+1] = float32(c.Im)
	}

	var uni uniformBlock
	uni.putU32(uint32(n))
	uni.putF32(p.Dt / (2 * p.hbar()))

	raw, elapsed, err := runKernel(s.rt, s.prog, wavefunctionSolverName,
		[][]byte{f32Bytes(packed), f32Bytes(floatsToF32(potential))},
		2*n*4, uni.bytes(), n)
	if err != nil {
		return nil, err
	}

	vals := bytesToF32(raw)
	out := make([]core.Complex, n)
	for i := range out {
		out[i] = core.Complex{Re: float64(vals[2*i]), Im: float64(vals[2*i+1])}
	}
	return &WavefunctionResult{Psi: out, PerformanceMs: elapsed}, nil
}
