// Package strata is the top-level entry point for embedding the store
// directly in a Go program, without going through the TCP server: open a
// Store, call Set/Get/Remove, Close it when done. cmd/kvs-server wraps
// the same engine in internal/server instead of exposing it here.
package strata

import (
	"context"

	"github.com/stratadb/strata/internal/engine"
	"github.com/stratadb/strata/pkg/kvengine"
	"github.com/stratadb/strata/pkg/logger"
	"github.com/stratadb/strata/pkg/options"
)

// Store is the primary entry point for interacting with a strata data
// directory in-process.
type Store struct {
	root kvengine.Engine // the handle Open returned; only it may CloseStore.
	eng  *engine.Engine
}

// Open recovers (or creates) a store at the configured data directory and
// returns a Store ready for use.
func Open(ctx context.Context, service string, opts ...options.OptionFunc) (*Store, error) {
	log := logger.New(service)

	cfg := options.NewDefaultOptions()
	for _, opt := range opts {
		opt(&cfg)
	}

	eng, err := engine.Open(ctx, &engine.Config{Logger: log, Options: cfg})
	if err != nil {
		return nil, err
	}

	return &Store{root: eng, eng: eng}, nil
}

// Set stores value under key, replacing any existing value.
func (s *Store) Set(ctx context.Context, key, value []byte) error {
	return s.root.Set(ctx, key, value)
}

// Get retrieves the value stored under key. found is false if the key
// has never been set or was most recently removed.
func (s *Store) Get(ctx context.Context, key []byte) (value []byte, found bool, err error) {
	return s.root.Get(ctx, key)
}

// Remove deletes key, returning a KeyNotFound error if it isn't present.
func (s *Store) Remove(ctx context.Context, key []byte) error {
	return s.root.Remove(ctx, key)
}

// Clone returns an independent handle onto the same store, suitable for
// handing to another goroutine.
func (s *Store) Clone() kvengine.Engine {
	return s.root.Clone()
}

// Close releases the store's private reader pool and flushes and closes
// the underlying writer and index. Only the Store returned by Open may
// call this — handles returned by Clone should call their own Close
// instead, which leaves the shared store intact for the others.
func (s *Store) Close() error {
	if err := s.root.Close(); err != nil {
		return err
	}
	return s.eng.CloseStore()
}
