// Package pio implements the positioned buffered readers and writers the
// generation log set is built on (spec.md §4.2). Every read, write, and
// seek updates an externally visible position counter, so the caller never
// has to ask the OS where it is in the file — it already knows, and that
// position is exactly the offset the index stores for a record.
package pio

import (
	"bufio"
	"io"
	"os"

	kerrors "github.com/stratadb/strata/pkg/errors"
)

// Reader wraps a seekable source with a buffer and tracks its logical read
// position.
type Reader struct {
	file     *os.File
	buf      *bufio.Reader
	position int64
}

// NewReader opens path for reading with the given buffer size and returns a
// Reader positioned at the start of the file.
func NewReader(path string, bufSize int) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, kerrors.NewIOError(err, "pio: open reader").WithPath(path)
	}
	return &Reader{file: f, buf: bufio.NewReaderSize(f, bufSize)}, nil
}

// ReadFull reads exactly len(p) bytes, advancing position, or returns an
// error if fewer were available.
func (r *Reader) ReadFull(p []byte) error {
	n, err := io.ReadFull(r.buf, p)
	r.position += int64(n)
	if err != nil {
		return err
	}
	return nil
}

// SeekTo repositions the reader to an absolute offset, discarding anything
// buffered.
func (r *Reader) SeekTo(offset int64) error {
	if _, err := r.file.Seek(offset, io.SeekStart); err != nil {
		return kerrors.NewIOError(err, "pio: seek reader").WithPath(r.file.Name()).WithOffset(offset)
	}
	r.buf.Reset(r.file)
	r.position = offset
	return nil
}

// Position returns the reader's current logical offset into the file.
func (r *Reader) Position() int64 {
	return r.position
}

// Close releases the underlying file descriptor.
func (r *Reader) Close() error {
	return r.file.Close()
}

// Writer wraps an append-opened file with a buffer and tracks its logical
// write position, which starts at the file's current size.
type Writer struct {
	file     *os.File
	buf      *bufio.Writer
	position int64
}

// NewWriter opens path for appending (creating it if absent) with the
// given buffer size. The returned Writer's position is seeded from the
// file's current size, so writes continue from wherever the file already
// ends.
func NewWriter(path string, bufSize int) (*Writer, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, kerrors.NewIOError(err, "pio: open writer").WithPath(path)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, kerrors.NewIOError(err, "pio: stat writer target").WithPath(path)
	}
	return &Writer{file: f, buf: bufio.NewWriterSize(f, bufSize), position: info.Size()}, nil
}

// Write appends p, advancing position by len(p). The bytes are not
// guaranteed durable until Flush.
func (w *Writer) Write(p []byte) (int64, error) {
	start := w.position
	n, err := w.buf.Write(p)
	w.position += int64(n)
	if err != nil {
		return start, kerrors.NewIOError(err, "pio: write").WithPath(w.file.Name()).WithOffset(start)
	}
	return start, nil
}

// Position returns the offset the next Write will begin at.
func (w *Writer) Position() int64 {
	return w.position
}

// Flush pushes buffered bytes to the OS and syncs the file to stable
// storage, so a crash after Flush returns cannot lose the write.
func (w *Writer) Flush() error {
	if err := w.buf.Flush(); err != nil {
		return kerrors.NewIOError(err, "pio: flush").WithPath(w.file.Name())
	}
	if err := w.file.Sync(); err != nil {
		return kerrors.NewIOError(err, "pio: sync").WithPath(w.file.Name())
	}
	return nil
}

// Close flushes and closes the underlying file.
func (w *Writer) Close() error {
	if err := w.Flush(); err != nil {
		w.file.Close()
		return err
	}
	return w.file.Close()
}
