package genlog

// ReaderPool is a per-goroutine cache of open generation readers. Spec.md
// §5 requires the reader pool to be per-thread rather than shared, so that
// concurrent workers never contend over a seek cursor: each pool lazily
// opens a reader for a generation the first time that worker touches it,
// and reuses it on subsequent lookups.
type ReaderPool struct {
	dir     string
	bufSize int
	readers map[uint64]*Reader
}

// NewReaderPool creates an empty pool rooted at dir. Callers typically
// create one pool per connection or per worker goroutine, never one
// shared across goroutines.
func NewReaderPool(dir string, bufSize int) *ReaderPool {
	return &ReaderPool{dir: dir, bufSize: bufSize, readers: make(map[uint64]*Reader)}
}

// Get returns the cached reader for generation g, opening one if this is
// the first request for it.
func (p *ReaderPool) Get(g uint64) (*Reader, error) {
	if r, ok := p.readers[g]; ok {
		return r, nil
	}
	r, err := OpenReader(p.dir, g, p.bufSize)
	if err != nil {
		return nil, err
	}
	p.readers[g] = r
	return r, nil
}

// Drop closes and evicts the cached reader for generation g, if any. The
// engine calls this on the compacting handle's own pool just before it
// deletes that generation's file; other pools keep their readers.
func (p *ReaderPool) Drop(g uint64) {
	if r, ok := p.readers[g]; ok {
		r.Close()
		delete(p.readers, g)
	}
}

// Close closes every reader the pool has opened.
func (p *ReaderPool) Close() error {
	var first error
	for g, r := range p.readers {
		if err := r.Close(); err != nil && first == nil {
			first = err
		}
		delete(p.readers, g)
	}
	return first
}
