package gpu

// BufferSet tracks every buffer one solve call creates so that all of them
// are destroyed exactly once on every exit path. The usage pattern is
//
//	set := rt.NewBufferSet()
//	defer set.Release()
//
// with Release also called explicitly before the solver stops its timer;
// the deferred call then becomes a no-op. Leaking buffers on error paths
// under sustained failure exhausts device memory, so this is the central
// resource-safety type of the package.
type BufferSet struct {
	rt       *Runtime
	bufs     []*Buffer
	released bool
}

// NewBufferSet returns an empty tracked set bound to the runtime.
func (r *Runtime) NewBufferSet() *BufferSet {
	return &BufferSet{rt: r}
}

// Create allocates an uploaded buffer and registers it with the set.
func (s *BufferSet) Create(data []byte, usage BufferUsage) (*Buffer, error) {
	b, err := s.rt.CreateBuffer(data, usage)
	if err != nil {
		return nil, err
	}
	s.bufs = append(s.bufs, b)
	return b, nil
}

// CreateEmpty allocates a zeroed buffer and registers it with the set.
func (s *BufferSet) CreateEmpty(size int, usage BufferUsage) (*Buffer, error) {
	b, err := s.rt.CreateEmptyBuffer(size, usage)
	if err != nil {
		return nil, err
	}
	s.bufs = append(s.bufs, b)
	return b, nil
}

// Len reports how many buffers the set currently tracks.
func (s *BufferSet) Len() int { return len(s.bufs) }

// Release destroys every tracked buffer. Idempotent.
func (s *BufferSet) Release() {
	if s.released {
		return
	}
	s.released = true
	for _, b := range s.bufs {
		s.rt.Destroy(b)
	}
	s.bufs = nil
}
