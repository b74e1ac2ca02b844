// Package kvengine defines the engine contract (spec.md §4.7): the three
// fallible key/value operations every storage engine implementation must
// support, plus a cheap Clone so multiple workers can share one engine
// without contending on anything but the operations themselves.
//
// internal/engine is this module's only implementation. A second
// implementation — an adapter over an embedded B-tree library, the "sled"
// engine the CLI surface names — would satisfy this same interface; the
// contract is what makes the server and client indifferent to which one
// backs a given data directory.
package kvengine

import "context"

// Engine is the storage-engine contract. A single handle is NOT safe for
// concurrent use: Get reads and lazily populates that handle's private
// reader pool without synchronization, so two goroutines calling Get (or
// any mix of operations) on the same handle race. Per spec.md §5's
// per-thread reader-pool model, each worker goroutine or connection must
// call Clone to obtain its own handle before using it concurrently with
// any other goroutine — internal/server does exactly this, cloning once
// per accepted connection. Distinct handles obtained via Clone share the
// same index and writer state and may be driven concurrently with each
// other.
type Engine interface {
	// Set stores value under key, replacing any existing value.
	Set(ctx context.Context, key, value []byte) error

	// Get returns the value stored under key. found is false if the key
	// has never been set or was most recently removed; in that case
	// value and err are both nil.
	Get(ctx context.Context, key []byte) (value []byte, found bool, err error)

	// Remove deletes key. It returns a *errors.EngineError carrying
	// ErrorCodeKeyNotFound if the key is absent; no write is performed
	// in that case.
	Remove(ctx context.Context, key []byte) error

	// Clone returns a handle over the same underlying store, cheap
	// enough to call once per worker goroutine or connection. Clones
	// share the same index and writer state but keep independent reader
	// state (spec.md §5).
	Clone() Engine

	// Close releases resources held by this handle alone (its private
	// reader pool). It does not affect other clones or the underlying
	// store.
	Close() error
}
