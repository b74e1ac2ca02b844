package genlog

import (
	"encoding/binary"

	"github.com/stratadb/strata/pkg/codec"
	"github.com/stratadb/strata/pkg/pio"
)

// Writer appends framed records to one generation's file. It is not safe
// for concurrent use; the engine serializes access behind its writer
// mutex (spec.md §5).
type Writer struct {
	generation uint64
	w          *pio.Writer
}

// OpenForAppend opens generation g under dir for appending, creating the
// file if it doesn't exist and positioning the writer at the file's
// current end.
func OpenForAppend(dir string, g uint64, bufSize int) (*Writer, error) {
	w, err := pio.NewWriter(LogPath(dir, g), bufSize)
	if err != nil {
		return nil, err
	}
	return &Writer{generation: g, w: w}, nil
}

// Generation reports which generation this writer appends to.
func (w *Writer) Generation() uint64 {
	return w.generation
}

// Position reports the offset the next Append/AppendRaw will begin at,
// which is also the file's current size.
func (w *Writer) Position() int64 {
	return w.w.Position()
}

// Append encodes rec, frames it with a little-endian length prefix, and
// appends it to the file. It returns the offset the 4-byte prefix starts
// at (the record location the index stores) and the record's total framed
// length (prefix + payload).
func (w *Writer) Append(rec *codec.Record) (offset int64, length uint32, err error) {
	payload := codec.Encode(rec)
	return w.AppendRaw(frame(payload))
}

// AppendRaw appends an already-framed record (prefix + payload) verbatim.
// Compaction uses this to copy live records between generations without
// re-encoding, preserving their checksums and sequence numbers exactly
// (spec.md §4.4.5).
func (w *Writer) AppendRaw(framed []byte) (offset int64, length uint32, err error) {
	offset, err = w.w.Write(framed)
	if err != nil {
		return 0, 0, err
	}
	return offset, uint32(len(framed)), nil
}

// Flush pushes buffered bytes to stable storage.
func (w *Writer) Flush() error {
	return w.w.Flush()
}

// Close flushes and closes the underlying file.
func (w *Writer) Close() error {
	return w.w.Close()
}

// frame prepends payload with its 4-byte little-endian length prefix.
func frame(payload []byte) []byte {
	buf := make([]byte, LengthPrefixSize+len(payload))
	binary.LittleEndian.PutUint32(buf[:LengthPrefixSize], uint32(len(payload)))
	copy(buf[LengthPrefixSize:], payload)
	return buf
}
