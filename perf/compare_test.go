package perf

import (
	"math"
	"testing"

	"github.com/pkg/errors"

	"latticelab/core"
	"latticelab/gpu"
	"latticelab/gpu/gputest"
	"latticelab/solvers"
)

func TestSpeedupFinitePositive(t *testing.T) {
	fake := gputest.New()
	fake.OnDispatch = func(label string, inputs [][]byte, output, uniform []byte, groups uint32) error {
		copy(output, inputs[0])
		return nil
	}
	rt := gpu.NewRuntimeWithBackend(fake)
	solver, err := solvers.NewTunnelingSolver(rt)
	if err != nil {
		t.Fatal(err)
	}

	barrier := make([]float64, 10000)
	for i := range barrier {
		barrier[i] = 0.5 + 3*float64(i)/float64(len(barrier))
	}
	p := solvers.TunnelingParams{Energy: 1, Width: 2, Mass: 1}

	sample, err := CompareCPUvsGPU(
		func() (interface{}, error) {
			return solver.SolveCPU(barrier, p), nil
		},
		func() (interface{}, float64, error) {
			res, err := solver.Solve(barrier, p)
			if err != nil {
				return nil, 0, err
			}
			return res, res.PerformanceMs, nil
		},
	)
	if err != nil {
		t.Fatal(err)
	}
	if !sample.GPUsed {
		t.Fatal("GPU path did not run")
	}
	if sample.Speedup <= 0 || math.IsInf(sample.Speedup, 0) || math.IsNaN(sample.Speedup) {
		t.Errorf("speedup = %v, want finite positive", sample.Speedup)
	}
	if sample.CPUTimeMs < 0 || sample.GPUTimeMs <= 0 {
		t.Errorf("times cpu=%v gpu=%v", sample.CPUTimeMs, sample.GPUTimeMs)
	}
	if sample.GPUResult == nil || sample.CPUResult == nil {
		t.Error("missing results in sample")
	}
}

func TestDegradesToCPUOnlyWithoutDevice(t *testing.T) {
	rt := gpu.NewRuntimeWithBackend(nil)
	if rt.Initialize() {
		t.Fatal("nil backend initialized")
	}
	solver, err := solvers.NewTunnelingSolver(rt)
	if err != nil {
		t.Fatal(err)
	}

	barrier := []float64{1, 2, 3}
	p := solvers.TunnelingParams{Energy: 1, Width: 1, Mass: 1}
	sample, err := CompareCPUvsGPU(
		func() (interface{}, error) {
			return solver.SolveCPU(barrier, p), nil
		},
		func() (interface{}, float64, error) {
			res, err := solver.Solve(barrier, p)
			if err != nil {
				return nil, 0, err
			}
			return res, res.PerformanceMs, nil
		},
	)
	if err != nil {
		t.Fatal(err)
	}
	if sample.GPUsed || sample.GPUTimeMs != 0 || sample.Speedup != 0 {
		t.Errorf("expected CPU-only sample, got %+v", sample)
	}
	if _, ok := sample.CPUResult.(*solvers.TunnelingResult); !ok {
		t.Errorf("CPU result type %T", sample.CPUResult)
	}
}

func TestCPUErrorPropagates(t *testing.T) {
	wantErr := errors.New("boom")
	_, err := CompareCPUvsGPU(
		func() (interface{}, error) { return nil, wantErr },
		nil,
	)
	if !errors.Is(err, wantErr) {
		t.Errorf("err = %v, want %v", err, wantErr)
	}
}

func TestNilGPUFunc(t *testing.T) {
	sample, err := CompareCPUvsGPU(
		func() (interface{}, error) { return core.Vec3{}, nil },
		nil,
	)
	if err != nil {
		t.Fatal(err)
	}
	if sample.GPUsed {
		t.Error("GPUsed set with nil gpuFn")
	}
}
