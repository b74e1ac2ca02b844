package wire

import (
	"bufio"
	"encoding/binary"
	"io"

	kerrors "github.com/stratadb/strata/pkg/errors"
)

// MaxMessageSize bounds a single framed message, guarding both client and
// server against a corrupt or hostile length prefix causing an
// unbounded allocation.
const MaxMessageSize = 64 * 1024 * 1024

// WriteMessage frames payload with a 4-byte big-endian length prefix and
// writes it to w, flushing if w is a *bufio.Writer.
func WriteMessage(w io.Writer, payload []byte) error {
	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(payload)))

	if _, err := w.Write(lenBuf[:]); err != nil {
		return kerrors.NewIOError(err, "wire: write message length")
	}
	if _, err := w.Write(payload); err != nil {
		return kerrors.NewIOError(err, "wire: write message payload")
	}
	if bw, ok := w.(*bufio.Writer); ok {
		if err := bw.Flush(); err != nil {
			return kerrors.NewIOError(err, "wire: flush message")
		}
	}
	return nil
}

// ReadMessage reads one big-endian length-prefixed message from r. It
// returns io.EOF, unwrapped, when the connection closes cleanly between
// messages — a normal client disconnect per spec.md §4.5 — a Deserialize
// EngineError for a length prefix above MaxMessageSize, and an IoError
// EngineError for any other failure, including a partial read mid-message.
func ReadMessage(r io.Reader) ([]byte, error) {
	var lenBuf [4]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}
		return nil, kerrors.NewIOError(err, "wire: read message length")
	}

	n := binary.BigEndian.Uint32(lenBuf[:])
	if n > MaxMessageSize {
		return nil, kerrors.NewDeserializeError(nil, "wire: message exceeds maximum size")
	}

	payload := make([]byte, n)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, kerrors.NewIOError(err, "wire: read message payload")
	}
	return payload, nil
}
