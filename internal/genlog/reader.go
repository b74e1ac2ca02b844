package genlog

import (
	"encoding/binary"
	"errors"
	"io"

	"github.com/stratadb/strata/pkg/codec"
	kerrors "github.com/stratadb/strata/pkg/errors"
	"github.com/stratadb/strata/pkg/pio"
)

// Reader reads framed records from one generation's file, sequentially or
// at a known offset. It is not safe for concurrent use; each goroutine
// keeps its own readers in a ReaderPool (spec.md §5).
type Reader struct {
	generation uint64
	r          *pio.Reader
}

// OpenReader opens generation g under dir for reading, positioned at the
// start of the file.
func OpenReader(dir string, g uint64, bufSize int) (*Reader, error) {
	r, err := pio.NewReader(LogPath(dir, g), bufSize)
	if err != nil {
		return nil, err
	}
	return &Reader{generation: g, r: r}, nil
}

// Generation reports which generation this reader reads from.
func (r *Reader) Generation() uint64 {
	return r.generation
}

// Position reports the reader's current offset into the file — where the
// next ReadNext call will begin.
func (r *Reader) Position() int64 {
	return r.r.Position()
}

// ReadNext reads the next framed record from the reader's current
// position: a 4-byte little-endian length prefix, that many payload
// bytes, decoded into a Record. It returns io.EOF (unwrapped, checkable
// with errors.Is) when the file ends exactly at a record boundary — a
// normal end of replay, not a failure. Any other read failure, including
// a partial record or a length prefix that overruns the file, is reported
// as CorruptedData per spec.md §4.4.1, as is a checksum mismatch; a
// payload that fails structural decoding is reported as Deserialize.
func (r *Reader) ReadNext() (*codec.Record, uint32, error) {
	var lenBuf [LengthPrefixSize]byte
	if err := r.r.ReadFull(lenBuf[:]); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, 0, io.EOF
		}
		return nil, 0, kerrors.NewCorruptedDataError(err, "genlog: truncated length prefix").
			WithGeneration(r.generation).WithOffset(r.r.Position())
	}

	payloadLen := binary.LittleEndian.Uint32(lenBuf[:])
	payload := make([]byte, payloadLen)
	if err := r.r.ReadFull(payload); err != nil {
		return nil, 0, kerrors.NewCorruptedDataError(err, "genlog: truncated record payload").
			WithGeneration(r.generation).WithOffset(r.r.Position())
	}

	rec, err := codec.Decode(payload)
	if err != nil {
		return nil, 0, kerrors.NewDeserializeError(err, "genlog: malformed record").
			WithGeneration(r.generation).WithOffset(r.r.Position())
	}
	if !codec.Verify(rec) {
		return nil, 0, kerrors.NewCorruptedDataError(nil, "genlog: checksum mismatch").
			WithGeneration(r.generation).WithOffset(r.r.Position())
	}

	return rec, LengthPrefixSize + payloadLen, nil
}

// ReadAt seeks to offset and reads exactly one record from there, as
// ReadNext does from the current position. Used by get() to resolve an
// index entry (spec.md §4.4.3).
func (r *Reader) ReadAt(offset int64) (*codec.Record, uint32, error) {
	if err := r.r.SeekTo(offset); err != nil {
		return nil, 0, err
	}
	return r.ReadNext()
}

// ReadRawAt reads length raw bytes (prefix + payload, unverified and
// undecoded) starting at offset. Compaction uses this to copy a live
// record verbatim into a new generation without touching its checksum or
// sequence number (spec.md §4.4.5).
func (r *Reader) ReadRawAt(offset int64, length uint32) ([]byte, error) {
	if err := r.r.SeekTo(offset); err != nil {
		return nil, err
	}
	buf := make([]byte, length)
	if err := r.r.ReadFull(buf); err != nil {
		return nil, kerrors.NewIOError(err, "genlog: read raw record").
			WithGeneration(r.generation).WithOffset(offset)
	}
	return buf, nil
}

// Close releases the underlying file descriptor.
func (r *Reader) Close() error {
	return r.r.Close()
}
