package index

import (
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
)

// Location is the in-memory index value for one live key (spec.md §3): the
// generation whose file holds the key's most recent Set record, the byte
// offset of that record's 4-byte length prefix, and the record's total
// framed length. A Get resolves a key by looking up its Location, then
// seeking straight to Offset in Generation's file — no scan required.
type Location struct {
	// Generation identifies which <generation>.log file holds the record.
	Generation uint64

	// Offset is the byte position of the record's length prefix within
	// that generation's file.
	Offset int64

	// Length is the record's total size on disk, including the 4-byte
	// length prefix, so a reader can fetch it with a single read call.
	Length uint32
}

// Index is the concurrent map from key to Location (spec.md §5): the
// writer inserts and removes entries behind the engine's single writer
// mutex, while any number of readers look entries up concurrently under
// the RWMutex's read lock.
type Index struct {
	log    *zap.SugaredLogger  // Structured logging for index lifecycle events.
	m      map[string]Location // The core mapping from key to on-disk location.
	mu     sync.RWMutex        // Protects concurrent access to m.
	closed atomic.Bool         // Set once Close has run; a second Close is rejected.
}

// Config carries an Index's construction parameters.
type Config struct {
	Logger *zap.SugaredLogger
}
