// Package perf measures the same computation on the CPU and GPU paths and
// reports the speedup. One run per comparison, no retries: smoothing out
// run-to-run variance is the caller's job.
package perf

import (
	"time"

	"latticelab/core"
)

// CPUFunc runs the host implementation and returns its result.
type CPUFunc func() (interface{}, error)

// GPUFunc runs the device implementation and returns its result along with
// the solver's self-reported elapsed milliseconds. That figure spans the
// solver's create-through-destroy window, so GPU timing includes transfer
// overhead while CPU timing is pure compute: the asymmetry is deliberate
// and makes reported speedups conservative.
type GPUFunc func() (interface{}, float64, error)

// CompareCPUvsGPU times cpuFn by wall-clock bracketing and takes gpuFn's
// own reported milliseconds for the GPU side. Speedup is cpuMs/gpuMs.
//
// A nil gpuFn, or a gpuFn error, degrades to CPU-only reporting: the
// sample comes back with GPUsed false, zero GPU time and zero speedup
// rather than an error, matching how an absent device is a supported
// condition rather than a failure.
func CompareCPUvsGPU(cpuFn CPUFunc, gpuFn GPUFunc) (*core.PerformanceSample, error) {
	start := time.Now()
	cpuResult, err := cpuFn()
	if err != nil {
		return nil, err
	}
	cpuMs := float64(time.Since(start)) / float64(time.Millisecond)

	sample := &core.PerformanceSample{
		CPUTimeMs: cpuMs,
		CPUResult: cpuResult,
	}
	if gpuFn == nil {
		return sample, nil
	}

	gpuResult, gpuMs, err := gpuFn()
	if err != nil || gpuMs <= 0 {
		return sample, nil
	}
	sample.GPUsed = true
	sample.GPUTimeMs = gpuMs
	sample.GPUResult = gpuResult
	sample.Speedup = cpuMs / gpuMs
	return sample, nil
}
