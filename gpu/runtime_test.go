package gpu_test

import (
	"sync"
	"testing"

	"github.com/pkg/errors"

	"latticelab/gpu"
	"latticelab/gpu/gputest"
)

const dummyWGSL = `@compute @workgroup_size(64) fn main() {}`

func TestUnavailableRuntime(t *testing.T) {
	rt := gpu.NewRuntimeWithBackend(nil)
	if rt.Availability() != gpu.AvailabilityUnavailable {
		t.Fatalf("availability = %v, want unavailable", rt.Availability())
	}
	if _, err := rt.CreateBuffer([]byte{0, 0, 0, 0}, gpu.UsageStorageRead); !errors.Is(err, gpu.ErrUnavailable) {
		t.Errorf("CreateBuffer err = %v, want ErrUnavailable", err)
	}
	if _, err := rt.Compile("k", dummyWGSL, "main"); !errors.Is(err, gpu.ErrUnavailable) {
		t.Errorf("Compile err = %v, want ErrUnavailable", err)
	}
}

func TestProgramCacheKeyedBySource(t *testing.T) {
	fake := gputest.New()
	rt := gpu.NewRuntimeWithBackend(fake)

	p1, err := rt.Compile("k", dummyWGSL, "main")
	if err != nil {
		t.Fatal(err)
	}
	p2, err := rt.Compile("k", dummyWGSL, "main")
	if err != nil {
		t.Fatal(err)
	}
	if p1 != p2 {
		t.Error("same source compiled to distinct programs")
	}
	if fake.Compiles != 1 {
		t.Errorf("backend compiled %d times, want 1", fake.Compiles)
	}

	if _, err := rt.Compile("k2", dummyWGSL+"\n", "main"); err != nil {
		t.Fatal(err)
	}
	if fake.Compiles != 2 {
		t.Errorf("backend compiled %d times after new source, want 2", fake.Compiles)
	}
}

func TestConcurrentCompileCompilesOnce(t *testing.T) {
	fake := gputest.New()
	rt := gpu.NewRuntimeWithBackend(fake)

	const workers = 8
	programs := make([]gpu.Program, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			p, err := rt.Compile("k", dummyWGSL, "main")
			if err != nil {
				t.Error(err)
				return
			}
			programs[i] = p
		}(i)
	}
	wg.Wait()

	if fake.Compiles != 1 {
		t.Errorf("backend compiled %d times under contention, want 1", fake.Compiles)
	}
	for i := 1; i < workers; i++ {
		if programs[i] != programs[0] {
			t.Fatal("concurrent compiles returned distinct programs")
		}
	}
}

func TestCloseReleasesCachedPrograms(t *testing.T) {
	fake := gputest.New()
	rt := gpu.NewRuntimeWithBackend(fake)

	if _, err := rt.Compile("k1", dummyWGSL, "main"); err != nil {
		t.Fatal(err)
	}
	if _, err := rt.Compile("k2", dummyWGSL+"\n", "main"); err != nil {
		t.Fatal(err)
	}
	rt.Close()
	if fake.ProgramsReleased != 2 {
		t.Errorf("released %d programs on Close, want 2", fake.ProgramsReleased)
	}
}

func TestCompileFailureSurfaces(t *testing.T) {
	fake := gputest.New()
	fake.FailCompile = true
	rt := gpu.NewRuntimeWithBackend(fake)
	if _, err := rt.Compile("bad", dummyWGSL, "main"); err == nil {
		t.Fatal("expected compile error")
	}
}

func TestDestroyExactlyOnce(t *testing.T) {
	fake := gputest.New()
	rt := gpu.NewRuntimeWithBackend(fake)

	buf, err := rt.CreateBuffer(make([]byte, 16), gpu.UsageStorageRead)
	if err != nil {
		t.Fatal(err)
	}
	rt.Destroy(buf)
	rt.Destroy(buf) // second call must be a no-op
	if fake.Destroyed != 1 {
		t.Errorf("backend destroyed %d times, want 1", fake.Destroyed)
	}
	if _, err := rt.ReadBuffer(buf, 16); err == nil {
		t.Error("read after destroy succeeded")
	}
}

func TestBufferSetReleasesAll(t *testing.T) {
	fake := gputest.New()
	rt := gpu.NewRuntimeWithBackend(fake)

	set := rt.NewBufferSet()
	if _, err := set.Create(make([]byte, 8), gpu.UsageStorageRead); err != nil {
		t.Fatal(err)
	}
	if _, err := set.CreateEmpty(8, gpu.UsageStorageWrite); err != nil {
		t.Fatal(err)
	}
	if _, err := set.Create(make([]byte, 32), gpu.UsageUniform); err != nil {
		t.Fatal(err)
	}
	set.Release()
	set.Release() // idempotent
	if fake.Created != 3 || fake.Destroyed != 3 {
		t.Errorf("created %d destroyed %d, want 3/3", fake.Created, fake.Destroyed)
	}
}

func TestReadBufferValidatesUsageAndSize(t *testing.T) {
	fake := gputest.New()
	rt := gpu.NewRuntimeWithBackend(fake)

	in, err := rt.CreateBuffer(make([]byte, 16), gpu.UsageStorageRead)
	if err != nil {
		t.Fatal(err)
	}
	defer rt.Destroy(in)
	if _, err := rt.ReadBuffer(in, 16); err == nil {
		t.Error("read of a read-only input buffer succeeded")
	}

	out, err := rt.CreateEmptyBuffer(16, gpu.UsageStorageWrite)
	if err != nil {
		t.Fatal(err)
	}
	defer rt.Destroy(out)
	if _, err := rt.ReadBuffer(out, 32); err == nil {
		t.Error("read past the buffer size succeeded")
	}
	if _, err := rt.ReadBuffer(out, 16); err != nil {
		t.Errorf("full read of an output buffer failed: %v", err)
	}
}

func TestDispatchRoundTrip(t *testing.T) {
	fake := gputest.New()
	fake.OnDispatch = func(label string, inputs [][]byte, output, uniform []byte, groups uint32) error {
		copy(output, inputs[0])
		return nil
	}
	rt := gpu.NewRuntimeWithBackend(fake)

	prog, err := rt.Compile("copy", dummyWGSL, "main")
	if err != nil {
		t.Fatal(err)
	}
	in, err := rt.CreateBuffer([]byte{1, 2, 3, 4}, gpu.UsageStorageRead)
	if err != nil {
		t.Fatal(err)
	}
	out, err := rt.CreateEmptyBuffer(4, gpu.UsageStorageWrite)
	if err != nil {
		t.Fatal(err)
	}
	uni, err := rt.CreateBuffer(make([]byte, 16), gpu.UsageUniform)
	if err != nil {
		t.Fatal(err)
	}
	defer func() {
		rt.Destroy(in)
		rt.Destroy(out)
		rt.Destroy(uni)
	}()

	if err := rt.Run(prog, []*gpu.Buffer{in}, out, uni, 1); err != nil {
		t.Fatal(err)
	}
	got, err := rt.ReadBuffer(out, 4)
	if err != nil {
		t.Fatal(err)
	}
	want := []byte{1, 2, 3, 4}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("readback = %v, want %v", got, want)
		}
	}
}

// TestLiveDevice exercises the real WebGPU path when hardware is present.
func TestLiveDevice(t *testing.T) {
	rt := gpu.NewRuntime()
	if !rt.Initialize() {
		t.Skip("no compute device")
	}
	defer rt.Close()
	if rt.Availability() != gpu.AvailabilityAvailable {
		t.Fatalf("availability = %v after successful Initialize", rt.Availability())
	}
	// Initialize is idempotent.
	if !rt.Initialize() {
		t.Fatal("second Initialize flipped to false")
	}
}
