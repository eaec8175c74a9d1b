package gpu

import (
	"strings"
	"sync"

	"github.com/openfluke/webgpu/wgpu"
	"github.com/pkg/errors"
)

// webgpuBackend drives a WebGPU compute device. One backend owns the
// instance, adapter, device and queue for its Runtime's lifetime.
type webgpuBackend struct {
	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	device   *wgpu.Device
	queue    *wgpu.Queue
}

// pollBudget bounds the Poll loop while waiting for a readback map. Each
// iteration blocks until the device makes progress, so the budget only
// matters for a wedged device.
const pollBudget = 1000

func newWebGPUBackend(pref string) (*webgpuBackend, error) {
	instance := wgpu.CreateInstance(nil)
	if instance == nil {
		return nil, errors.New("gpu: no webgpu instance")
	}
	adapter, err := instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		PowerPreference: wgpu.PowerPreferenceHighPerformance,
	})
	if err != nil {
		instance.Release()
		return nil, errors.Wrap(err, "request adapter")
	}
	if pref != "" {
		// Strict filter: a non-matching adapter counts as device absence,
		// so a caller pinning "nvidia" never silently lands on the iGPU.
		props := adapter.GetInfo()
		if !strings.Contains(strings.ToLower(props.Name), strings.ToLower(pref)) {
			adapter.Release()
			instance.Release()
			return nil, errors.Errorf("gpu: no adapter matching %q (got %q)", pref, props.Name)
		}
	}
	device, err := adapter.RequestDevice(nil)
	if err != nil {
		adapter.Release()
		instance.Release()
		return nil, errors.Wrap(err, "request device")
	}
	return &webgpuBackend{
		instance: instance,
		adapter:  adapter,
		device:   device,
		queue:    device.GetQueue(),
	}, nil
}

// webgpuProgram caches the pipeline per input-buffer count; the bind group
// layout is fully determined by how many read-only inputs a kernel takes.
// Concurrent solve calls share cached programs, hence the lock.
type webgpuProgram struct {
	label     string
	entry     string
	module    *wgpu.ShaderModule
	mu        sync.Mutex
	pipelines map[int]*webgpuPipeline
}

type webgpuPipeline struct {
	layout   *wgpu.BindGroupLayout
	pipeline *wgpu.ComputePipeline
}

func (p *webgpuProgram) Label() string { return p.label }

func (w *webgpuBackend) Compile(label, source, entry string) (Program, error) {
	module, err := w.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          label,
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: source},
	})
	if err != nil {
		return nil, err
	}
	return &webgpuProgram{
		label:     label,
		entry:     entry,
		module:    module,
		pipelines: make(map[int]*webgpuPipeline),
	}, nil
}

// pipelineFor builds (or returns) the pipeline for a kernel taking nInputs
// read-only storage buffers, one read-write output and one uniform block.
func (w *webgpuBackend) pipelineFor(p *webgpuProgram, nInputs int) (*webgpuPipeline, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if pe, ok := p.pipelines[nInputs]; ok {
		return pe, nil
	}

	entries := make([]wgpu.BindGroupLayoutEntry, 0, nInputs+2)
	for i := 0; i < nInputs; i++ {
		entries = append(entries, wgpu.BindGroupLayoutEntry{
			Binding:    uint32(i),
			Visibility: wgpu.ShaderStageCompute,
			Buffer:     wgpu.BufferBindingLayout{Type: wgpu.BufferBindingTypeReadOnlyStorage},
		})
	}
	entries = append(entries, wgpu.BindGroupLayoutEntry{
		Binding:    uint32(nInputs),
		Visibility: wgpu.ShaderStageCompute,
		Buffer:     wgpu.BufferBindingLayout{Type: wgpu.BufferBindingTypeStorage},
	})
	entries = append(entries, wgpu.BindGroupLayoutEntry{
		Binding:    uint32(nInputs + 1),
		Visibility: wgpu.ShaderStageCompute,
		Buffer:     wgpu.BufferBindingLayout{Type: wgpu.BufferBindingTypeUniform},
	})

	bgl, err := w.device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label:   p.label + "_bgl",
		Entries: entries,
	})
	if err != nil {
		return nil, err
	}
	pl, err := w.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            p.label + "_pl",
		BindGroupLayouts: []*wgpu.BindGroupLayout{bgl},
	})
	if err != nil {
		bgl.Release()
		return nil, err
	}
	pipeline, err := w.device.CreateComputePipeline(&wgpu.ComputePipelineDescriptor{
		Label:  p.label + "_pipeline",
		Layout: pl,
		Compute: wgpu.ProgrammableStageDescriptor{
			Module:     p.module,
			EntryPoint: p.entry,
		},
	})
	pl.Release()
	if err != nil {
		bgl.Release()
		return nil, err
	}

	pe := &webgpuPipeline{layout: bgl, pipeline: pipeline}
	p.pipelines[nInputs] = pe
	return pe, nil
}

func (w *webgpuBackend) CreateBuffer(size int, data []byte, usage BufferUsage) (interface{}, error) {
	var wu wgpu.BufferUsage
	switch {
	case usage&UsageUniform != 0:
		wu = wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst
	case usage&UsageStorageWrite != 0:
		wu = wgpu.BufferUsageStorage | wgpu.BufferUsageCopySrc | wgpu.BufferUsageCopyDst
	default:
		wu = wgpu.BufferUsageStorage | wgpu.BufferUsageCopyDst
	}
	buf, err := w.device.CreateBuffer(&wgpu.BufferDescriptor{
		Size:  uint64(size),
		Usage: wu,
	})
	if err != nil {
		return nil, err
	}
	if len(data) > 0 {
		w.queue.WriteBuffer(buf, 0, data)
	}
	return buf, nil
}

func (w *webgpuBackend) Dispatch(p Program, inputs []*Buffer, output, uniform *Buffer, groups uint32) error {
	prog, ok := p.(*webgpuProgram)
	if !ok {
		return errors.Errorf("gpu: foreign program %q", p.Label())
	}
	pe, err := w.pipelineFor(prog, len(inputs))
	if err != nil {
		return err
	}

	bindings := make([]wgpu.BindGroupEntry, 0, len(inputs)+2)
	for i, in := range inputs {
		bindings = append(bindings, wgpu.BindGroupEntry{
			Binding: uint32(i),
			Buffer:  in.Handle().(*wgpu.Buffer),
			Size:    uint64(in.Size()),
		})
	}
	bindings = append(bindings, wgpu.BindGroupEntry{
		Binding: uint32(len(inputs)),
		Buffer:  output.Handle().(*wgpu.Buffer),
		Size:    uint64(output.Size()),
	})
	bindings = append(bindings, wgpu.BindGroupEntry{
		Binding: uint32(len(inputs) + 1),
		Buffer:  uniform.Handle().(*wgpu.Buffer),
		Size:    uint64(uniform.Size()),
	})

	bg, err := w.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:   prog.label + "_bg",
		Layout:  pe.layout,
		Entries: bindings,
	})
	if err != nil {
		return err
	}
	defer bg.Release()

	enc, err := w.device.CreateCommandEncoder(nil)
	if err != nil {
		return err
	}
	pass := enc.BeginComputePass(nil)
	pass.SetPipeline(pe.pipeline)
	pass.SetBindGroup(0, bg, nil)
	pass.DispatchWorkgroups(groups, 1, 1)
	pass.End()

	cb, err := enc.Finish(nil)
	enc.Release()
	if err != nil {
		return err
	}
	w.queue.Submit(cb)
	cb.Release()
	return nil
}

func (w *webgpuBackend) Read(b *Buffer, byteLen int) ([]byte, error) {
	readback, err := w.device.CreateBuffer(&wgpu.BufferDescriptor{
		Size:  uint64(byteLen),
		Usage: wgpu.BufferUsageCopyDst | wgpu.BufferUsageMapRead,
	})
	if err != nil {
		return nil, err
	}
	defer readback.Release()

	enc, err := w.device.CreateCommandEncoder(nil)
	if err != nil {
		return nil, err
	}
	enc.CopyBufferToBuffer(b.Handle().(*wgpu.Buffer), 0, readback, 0, uint64(byteLen))
	cb, err := enc.Finish(nil)
	enc.Release()
	if err != nil {
		return nil, err
	}
	w.queue.Submit(cb)
	cb.Release()

	var status wgpu.BufferMapAsyncStatus
	done := false
	readback.MapAsync(wgpu.MapModeRead, 0, uint64(byteLen), func(s wgpu.BufferMapAsyncStatus) {
		status = s
		done = true
	})
	for i := 0; i < pollBudget && !done; i++ {
		w.device.Poll(true, nil)
	}
	if !done {
		return nil, errors.New("gpu: readback map timed out")
	}
	if status != wgpu.BufferMapAsyncStatusSuccess {
		return nil, errors.Errorf("gpu: readback map failed: status %d", status)
	}

	mapped := readback.GetMappedRange(0, uint(byteLen))
	if len(mapped) < byteLen {
		readback.Unmap()
		return nil, errors.Errorf("gpu: short mapped range: %d < %d", len(mapped), byteLen)
	}
	out := make([]byte, byteLen)
	copy(out, mapped[:byteLen])
	readback.Unmap()
	return out, nil
}

func (w *webgpuBackend) ReleaseProgram(p Program) {
	prog, ok := p.(*webgpuProgram)
	if !ok {
		return
	}
	prog.mu.Lock()
	for _, pe := range prog.pipelines {
		pe.pipeline.Release()
		pe.layout.Release()
	}
	prog.pipelines = make(map[int]*webgpuPipeline)
	prog.mu.Unlock()
	if prog.module != nil {
		prog.module.Release()
		prog.module = nil
	}
}

func (w *webgpuBackend) Destroy(b *Buffer) {
	if buf, ok := b.handle.(*wgpu.Buffer); ok && buf != nil {
		buf.Release()
	}
	b.handle = nil
}

func (w *webgpuBackend) Close() {
	if w.device != nil {
		w.device.Release()
		w.device = nil
	}
	if w.adapter != nil {
		w.adapter.Release()
		w.adapter = nil
	}
	if w.instance != nil {
		w.instance.Release()
		w.instance = nil
	}
}
