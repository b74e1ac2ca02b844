// Package index implements the in-memory key → Location map (spec.md §3,
// §5): the authoritative record of which generation and offset holds each
// live key's most recent Set. Reads take the map's read lock and never
// touch disk; the writer takes the write lock only for the instant it
// takes to mutate the map, so a compaction replacing thousands of entries
// still blocks readers for a single critical section rather than once per
// key.
package index

import (
	stdErrors "errors"

	"github.com/stratadb/strata/pkg/errors"
)

// ErrIndexClosed is returned by Close when the index is already closed.
var ErrIndexClosed = stdErrors.New("operation failed: cannot access closed index")

// New creates an empty Index ready for concurrent use.
func New(config *Config) (*Index, error) {
	if config == nil || config.Logger == nil {
		return nil, errors.NewValidationError(
			nil, errors.ErrorCodeInvalidInput, "index configuration is required",
		).WithField("config").WithRule("required").WithProvided(config)
	}

	return &Index{
		log: config.Logger,
		m:   make(map[string]Location, 1024),
	}, nil
}

// Get returns key's current Location and whether it is present. Absence
// means the key has never been set, or was most recently removed
// (spec.md §3).
func (idx *Index) Get(key string) (Location, bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	loc, ok := idx.m[key]
	return loc, ok
}

// Set inserts or replaces key's Location, returning the entry it
// superseded, if any, so the caller can add its length to the stale-byte
// counter (spec.md §4.4.2).
func (idx *Index) Set(key string, loc Location) (previous Location, hadPrevious bool) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	previous, hadPrevious = idx.m[key]
	idx.m[key] = loc
	return previous, hadPrevious
}

// Delete removes key from the index, returning the entry it removed, if
// any.
func (idx *Index) Delete(key string) (previous Location, hadPrevious bool) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	previous, hadPrevious = idx.m[key]
	delete(idx.m, key)
	return previous, hadPrevious
}

// Len reports the number of live keys.
func (idx *Index) Len() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.m)
}

// Snapshot returns a point-in-time copy of every (key, Location) pair.
// Compaction iterates this copy rather than the live map, satisfying
// spec.md §4.4.5's requirement that iteration see a consistent view even
// though new writes may land in the index while the copy is built.
func (idx *Index) Snapshot() map[string]Location {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	snap := make(map[string]Location, len(idx.m))
	for k, v := range idx.m {
		snap[k] = v
	}
	return snap
}

// ApplyCompaction atomically replaces the Location of every key in
// updates, in one critical section, implementing step 5 of spec.md
// §4.4.5. A key present in updates but no longer live (removed by a
// concurrent write that raced the compaction scan) is left untouched: its
// absence from the map means the stale compaction-generation copy of it
// is simply never referenced again.
func (idx *Index) ApplyCompaction(updates map[string]Location) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	for k, loc := range updates {
		if _, stillLive := idx.m[k]; stillLive {
			idx.m[k] = loc
		}
	}
}

// Close releases the index's memory. A second Close returns
// ErrIndexClosed; the other methods do not check whether the index has
// been closed.
func (idx *Index) Close() error {
	if !idx.closed.CompareAndSwap(false, true) {
		return ErrIndexClosed
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()

	clear(idx.m)
	idx.m = nil

	idx.log.Infow("index closed")
	return nil
}
