// Package compaction implements the verbatim-copy compaction algorithm of
// spec.md §4.4.5: given a consistent snapshot of the live index, copy each
// key's record bytes unchanged into one new generation file, producing
// the (key → new Location) updates the engine then applies to its index
// in a single critical section.
//
// This package never re-encodes a record — it copies the framed bytes
// (length prefix and payload) straight from the source generation to the
// target, so a record's checksum and sequence number survive compaction
// exactly as they were written, preserving the integrity chain.
package compaction

import (
	"github.com/stratadb/strata/internal/genlog"
	"github.com/stratadb/strata/internal/index"
)

// Compactor copies live records from old generations into one new
// generation file.
type Compactor struct {
	dir     string
	bufSize int
}

// New returns a Compactor that reads and writes generation files under
// dir, using bufSize for both the source readers it opens and the target
// writer.
func New(dir string, bufSize int) *Compactor {
	return &Compactor{dir: dir, bufSize: bufSize}
}

// Result is the outcome of one compaction pass.
type Result struct {
	// Updates maps each compacted key to its new Location in Generation.
	Updates map[string]index.Location

	// Generation is the new generation the compacted records were
	// written to.
	Generation uint64

	// BytesWritten is the total size of the target file after
	// compaction.
	BytesWritten int64
}

// CompactInto copies the record each entry in snapshot points at into a
// new generation file identified by targetGeneration, preserving the bytes
// exactly. It opens one reader per distinct source generation referenced
// by snapshot and closes them all before returning.
func (c *Compactor) CompactInto(snapshot map[string]index.Location, targetGeneration uint64) (*Result, error) {
	writer, err := genlog.OpenForAppend(c.dir, targetGeneration, c.bufSize)
	if err != nil {
		return nil, err
	}

	readers := make(map[uint64]*genlog.Reader)
	defer func() {
		for _, r := range readers {
			r.Close()
		}
	}()

	updates := make(map[string]index.Location, len(snapshot))

	for key, loc := range snapshot {
		r, ok := readers[loc.Generation]
		if !ok {
			r, err = genlog.OpenReader(c.dir, loc.Generation, c.bufSize)
			if err != nil {
				writer.Close()
				return nil, err
			}
			readers[loc.Generation] = r
		}

		raw, err := r.ReadRawAt(loc.Offset, loc.Length)
		if err != nil {
			writer.Close()
			return nil, err
		}

		newOffset, newLength, err := writer.AppendRaw(raw)
		if err != nil {
			writer.Close()
			return nil, err
		}

		updates[key] = index.Location{
			Generation: targetGeneration,
			Offset:     newOffset,
			Length:     newLength,
		}
	}

	if err := writer.Flush(); err != nil {
		writer.Close()
		return nil, err
	}
	bytesWritten := writer.Position()
	if err := writer.Close(); err != nil {
		return nil, err
	}

	return &Result{Updates: updates, Generation: targetGeneration, BytesWritten: bytesWritten}, nil
}
