// Package engine provides strata's storage-engine implementation of the
// log-structured, append-only key/value store described in spec.md §4.4:
// an in-memory index over a set of generation log files, a single-writer
// append path, and online compaction.
//
// The engine serves as the central coordinator between three subsystems:
//   - internal/index: the in-memory key → Location map every read and
//     write consults.
//   - internal/genlog: the on-disk generation files, their framing, and
//     the per-goroutine reader pools that read them.
//   - internal/compaction: the verbatim-copy pass that reclaims stale
//     bytes once the uncompacted counter crosses its threshold.
//
// Concurrency follows spec.md §5: the index is shared and internally
// synchronized; writer state (current generation, sequence counter,
// uncompacted counter, append handle) is serialized behind a single
// mutex held by sharedState; and each Engine handle returned by Clone
// keeps its own private reader pool so workers never contend on a seek
// cursor.
package engine

import (
	"context"
	"errors"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/stratadb/strata/internal/compaction"
	"github.com/stratadb/strata/internal/genlog"
	"github.com/stratadb/strata/internal/index"
	"github.com/stratadb/strata/pkg/codec"
	kerrors "github.com/stratadb/strata/pkg/errors"
	"github.com/stratadb/strata/pkg/kvengine"
	"github.com/stratadb/strata/pkg/options"
)

// ErrEngineClosed is returned by every handle's Set, Get and Remove once
// CloseStore has closed the shared store, and by a second CloseStore.
var ErrEngineClosed = errors.New("operation failed: cannot access closed engine")

// sharedState holds everything every clone of an Engine must agree on:
// the index, the single writer, and the safe-point. It is allocated once
// by Open and referenced by every handle Clone returns.
type sharedState struct {
	dir  string
	opts options.Options
	log  *zap.SugaredLogger
	idx  *index.Index
	comp *compaction.Compactor

	// writeMu serializes all writers and compaction. At most one
	// goroutine appends or compacts at a time (spec.md §5).
	writeMu           sync.Mutex
	writer            *genlog.Writer
	currentGeneration uint64
	currentSequence   uint64
	uncompacted       int64

	// safePoint is the oldest generation readers may still touch. It is
	// published by the writer and observed by readers without locking.
	safePoint atomic.Uint64

	closed atomic.Bool
}

// Engine is one handle onto a shared store. Clone returns a second handle
// over the same sharedState with an independent reader pool, the pattern
// spec.md §5 calls for so N worker goroutines can share one engine
// without contending on file cursors.
type Engine struct {
	shared  *sharedState
	readers *genlog.ReaderPool
}

var _ kvengine.Engine = (*Engine)(nil)

// Config carries an engine's construction parameters.
type Config struct {
	Options options.Options
	Logger  *zap.SugaredLogger
}

// Open creates the data directory if missing, replays every generation
// log in order to rebuild the index, and returns an Engine ready to
// accept operations, per the recovery procedure in spec.md §4.4.1.
func Open(ctx context.Context, config *Config) (*Engine, error) {
	opts := config.Options
	log := config.Logger

	if err := genlog.EnsureDir(opts.DataDir); err != nil {
		return nil, err
	}

	idx, err := index.New(&index.Config{Logger: log})
	if err != nil {
		return nil, err
	}

	generations, err := genlog.SortedGenerations(opts.DataDir)
	if err != nil {
		return nil, err
	}

	maxSequence, uncompacted, err := replay(opts.DataDir, opts.ReaderBufferSize, generations, idx)
	if err != nil {
		return nil, err
	}

	currentGeneration := uint64(1)
	if len(generations) > 0 {
		currentGeneration = generations[len(generations)-1] + 1
	}

	writer, err := genlog.OpenForAppend(opts.DataDir, currentGeneration, opts.WriterBufferSize)
	if err != nil {
		return nil, err
	}

	shared := &sharedState{
		dir:               opts.DataDir,
		opts:              opts,
		log:               log,
		idx:               idx,
		comp:              compaction.New(opts.DataDir, opts.ReaderBufferSize),
		writer:            writer,
		currentGeneration: currentGeneration,
		currentSequence:   maxSequence,
		uncompacted:       uncompacted,
	}
	if len(generations) > 0 {
		shared.safePoint.Store(generations[0])
	} else {
		shared.safePoint.Store(currentGeneration)
	}

	log.Infow("engine opened",
		"dataDir", opts.DataDir,
		"recoveredGenerations", len(generations),
		"currentGeneration", currentGeneration,
		"currentSequence", maxSequence,
		"indexSize", idx.Len(),
	)

	return &Engine{shared: shared, readers: genlog.NewReaderPool(opts.DataDir, opts.ReaderBufferSize)}, nil
}

// replay reads every record in every generation, in order, rebuilding idx
// and returning the maximum sequence number observed and the number of
// stale bytes already present (superseded Sets, and Set+Remove pairs that
// cancel out including the Remove record itself), per spec.md §4.4.1.
func replay(dir string, bufSize int, generations []uint64, idx *index.Index) (maxSequence uint64, uncompacted int64, err error) {
	for _, gen := range generations {
		r, err := genlog.OpenReader(dir, gen, bufSize)
		if err != nil {
			return 0, 0, err
		}

		for {
			offset := r.Position()
			rec, length, err := r.ReadNext()
			if errors.Is(err, io.EOF) {
				break
			}
			if err != nil {
				r.Close()
				return 0, 0, err
			}

			if rec.Sequence > maxSequence {
				maxSequence = rec.Sequence
			}

			loc := index.Location{Generation: gen, Offset: offset, Length: length}
			switch rec.Kind {
			case codec.CommandSet:
				if prev, had := idx.Set(string(rec.Key), loc); had {
					uncompacted += int64(prev.Length)
				}
			case codec.CommandRemove:
				if prev, had := idx.Delete(string(rec.Key)); had {
					uncompacted += int64(prev.Length)
				}
				uncompacted += int64(length)
			}
		}

		r.Close()
	}

	return maxSequence, uncompacted, nil
}

// Clone returns a new handle over the same shared store with its own,
// independent reader pool.
func (e *Engine) Clone() kvengine.Engine {
	return &Engine{
		shared:  e.shared,
		readers: genlog.NewReaderPool(e.shared.dir, e.shared.opts.ReaderBufferSize),
	}
}

// Set stores value under key, per spec.md §4.4.2.
func (e *Engine) Set(ctx context.Context, key, value []byte) error {
	if e.shared.closed.Load() {
		return ErrEngineClosed
	}

	s := e.shared
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	sequence := s.currentSequence + 1
	rec := codec.NewSetRecord(sequence, uint64(time.Now().Unix()), key, value)

	offset, length, err := s.writer.Append(rec)
	if err != nil {
		return err
	}
	if err := s.writer.Flush(); err != nil {
		return err
	}
	s.currentSequence = sequence

	loc := index.Location{Generation: s.currentGeneration, Offset: offset, Length: length}
	if prev, had := s.idx.Set(string(key), loc); had {
		s.uncompacted += int64(prev.Length)
	}

	if s.uncompacted > s.opts.CompactionThreshold {
		return e.compactLocked()
	}
	return nil
}

// Get returns the value stored under key, per spec.md §4.4.3.
func (e *Engine) Get(ctx context.Context, key []byte) ([]byte, bool, error) {
	if e.shared.closed.Load() {
		return nil, false, ErrEngineClosed
	}

	loc, ok := e.shared.idx.Get(string(key))
	if !ok {
		return nil, false, nil
	}

	r, err := e.readers.Get(loc.Generation)
	if err != nil {
		return nil, false, err
	}

	rec, _, err := r.ReadAt(loc.Offset)
	if err != nil {
		return nil, false, err
	}

	if rec.Kind != codec.CommandSet {
		return nil, false, kerrors.NewUnexpectedCommandTypeError(string(key))
	}
	return rec.Value, true, nil
}

// Remove deletes key, per spec.md §4.4.4.
func (e *Engine) Remove(ctx context.Context, key []byte) error {
	if e.shared.closed.Load() {
		return ErrEngineClosed
	}

	s := e.shared
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if _, ok := s.idx.Get(string(key)); !ok {
		return kerrors.NewKeyNotFoundError(string(key))
	}

	sequence := s.currentSequence + 1
	rec := codec.NewRemoveRecord(sequence, uint64(time.Now().Unix()), key)

	_, length, err := s.writer.Append(rec)
	if err != nil {
		return err
	}
	if err := s.writer.Flush(); err != nil {
		return err
	}
	s.currentSequence = sequence

	if prev, had := s.idx.Delete(string(key)); had {
		s.uncompacted += int64(prev.Length)
	}
	s.uncompacted += int64(length)

	if s.uncompacted > s.opts.CompactionThreshold {
		return e.compactLocked()
	}
	return nil
}

// compactLocked runs the compaction algorithm of spec.md §4.4.5. The
// caller must already hold shared.writeMu.
func (e *Engine) compactLocked() error {
	s := e.shared

	compactionGeneration := s.currentGeneration + 1
	newCurrentGeneration := s.currentGeneration + 2

	newWriter, err := genlog.OpenForAppend(s.dir, newCurrentGeneration, s.opts.WriterBufferSize)
	if err != nil {
		return err
	}

	staleGenerations, err := genlog.SortedGenerations(s.dir)
	if err != nil {
		newWriter.Close()
		return err
	}

	oldWriter := s.writer
	s.writer = newWriter
	s.currentGeneration = newCurrentGeneration
	if err := oldWriter.Close(); err != nil {
		s.log.Warnw("failed to close superseded generation writer", "error", err)
	}

	snapshot := s.idx.Snapshot()
	result, err := s.comp.CompactInto(snapshot, compactionGeneration)
	if err != nil {
		return err
	}

	s.idx.ApplyCompaction(result.Updates)
	s.safePoint.Store(compactionGeneration)

	for _, g := range staleGenerations {
		if g >= compactionGeneration {
			continue
		}
		e.readers.Drop(g)
		if err := genlog.Delete(s.dir, g); err != nil {
			s.log.Warnw("failed to delete compacted generation", "generation", g, "error", err)
		}
	}

	s.uncompacted = 0
	s.log.Infow("compaction complete",
		"compactionGeneration", compactionGeneration,
		"newCurrentGeneration", newCurrentGeneration,
		"keysCompacted", len(result.Updates),
		"bytesWritten", result.BytesWritten,
	)
	return nil
}

// Close releases this handle's private reader pool. It does not affect
// other clones or the underlying shared store; the owner of the original
// handle returned by Open is responsible for calling CloseStore once,
// after every clone is done.
func (e *Engine) Close() error {
	return e.readers.Close()
}

// CloseStore flushes and closes the shared writer and index. It must be
// called exactly once, by the owner of the engine returned by Open, after
// every clone's Close has run.
func (e *Engine) CloseStore() error {
	s := e.shared
	if !s.closed.CompareAndSwap(false, true) {
		return ErrEngineClosed
	}

	var firstErr error
	if err := s.writer.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	if err := s.idx.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}

// SafePoint reports the oldest generation readers are currently permitted
// to touch.
func (e *Engine) SafePoint() uint64 {
	return e.shared.safePoint.Load()
}
