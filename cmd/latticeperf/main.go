// latticeperf runs every solver on the CPU and GPU paths with identical
// input and prints the comparison. With no compute device it reports the
// CPU timings alone.
package main

import (
	"flag"
	"fmt"
	"log"
	"math"

	"latticelab/core"
	"latticelab/gpu"
	"latticelab/perf"
	"latticelab/solvers"
)

func main() {
	var (
		n       = flag.Int("n", 100000, "Elements per solver input")
		adapter = flag.String("gpu", "", "Adapter preference substring (e.g. 'nvidia')")
	)
	flag.Parse()

	rt := gpu.NewRuntime()
	if *adapter != "" {
		rt.SetAdapterPreference(*adapter)
	}
	if rt.Initialize() {
		fmt.Println("Compute device: available")
	} else {
		fmt.Println("Compute device: unavailable, reporting CPU only")
	}
	defer rt.Close()

	fmt.Printf("%-16s %12s %12s %10s\n", "solver", "cpu ms", "gpu ms", "speedup")
	report("wavefunction", wavefunctionSample(rt, *n))
	report("magnetization", magnetizationSample(rt, *n))
	report("tunneling", tunnelingSample(rt, *n))
}

func report(name string, sample *core.PerformanceSample) {
	if sample.GPUsed {
		fmt.Printf("%-16s %12.3f %12.3f %9.2fx\n", name, sample.CPUTimeMs, sample.GPUTimeMs, sample.Speedup)
		return
	}
	fmt.Printf("%-16s %12.3f %12s %10s\n", name, sample.CPUTimeMs, "-", "-")
}

func wavefunctionSample(rt *gpu.Runtime, n int) *core.PerformanceSample {
	s, err := solvers.NewWavefunctionSolver(rt)
	if err != nil {
		log.Fatalf("wavefunction solver: %v", err)
	}
	psi := make([]core.Complex, n)
	potential := make([]float64, n)
	for i := range psi {
		x := float64(i) / float64(n)
		psi[i] = core.Expi(2 * math.Pi * x).Scale(1 / math.Sqrt(float64(n)))
		potential[i] = 5 * x * x
	}
	p := solvers.WavefunctionParams{Dt: 0.1}

	sample, err := perf.CompareCPUvsGPU(
		func() (interface{}, error) { return s.SolveCPU(psi, potential, p), nil },
		func() (interface{}, float64, error) {
			res, err := s.Solve(psi, potential, p)
			if err != nil {
				return nil, 0, err
			}
			return res, res.PerformanceMs, nil
		},
	)
	if err != nil {
		log.Fatalf("wavefunction comparison: %v", err)
	}
	return sample
}

func magnetizationSample(rt *gpu.Runtime, n int) *core.PerformanceSample {
	s, err := solvers.NewMagnetizationSolver(rt)
	if err != nil {
		log.Fatalf("magnetization solver: %v", err)
	}
	moments := make([]core.Vec3, n)
	for i := range moments {
		theta := 2 * math.Pi * float64(i) / float64(n)
		moments[i] = core.Vec3{X: math.Cos(theta), Y: math.Sin(theta)}
	}
	p := solvers.MagnetizationParams{Alpha: 0.1, Dt: 0.01, Steps: 100, Field: core.Vec3{Z: 1}}

	sample, err := perf.CompareCPUvsGPU(
		func() (interface{}, error) { return s.SolveCPU(moments, p), nil },
		func() (interface{}, float64, error) {
			res, err := s.Solve(moments, p)
			if err != nil {
				return nil, 0, err
			}
			return res, res.PerformanceMs, nil
		},
	)
	if err != nil {
		log.Fatalf("magnetization comparison: %v", err)
	}
	return sample
}

func tunnelingSample(rt *gpu.Runtime, n int) *core.PerformanceSample {
	s, err := solvers.NewTunnelingSolver(rt)
	if err != nil {
		log.Fatalf("tunneling solver: %v", err)
	}
	barrier := make([]float64, n)
	for i := range barrier {
		barrier[i] = 0.5 + 4.5*float64(i)/float64(n)
	}
	p := solvers.TunnelingParams{Energy: 1, Width: 2, Mass: 1}

	sample, err := perf.CompareCPUvsGPU(
		func() (interface{}, error) { return s.SolveCPU(barrier, p), nil },
		func() (interface{}, float64, error) {
			res, err := s.Solve(barrier, p)
			if err != nil {
				return nil, 0, err
			}
			return res, res.PerformanceMs, nil
		},
	)
	if err != nil {
		log.Fatalf("tunneling comparison: %v", err)
	}
	return sample
}
