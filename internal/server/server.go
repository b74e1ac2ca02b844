// Package server implements the TCP server half of strata's wire
// protocol (spec.md §4.5): an accept loop that clones the engine once per
// connection and dispatches each framed request to the matching engine
// operation.
package server

import (
	"context"
	"errors"
	"io"
	"net"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/stratadb/strata/internal/wire"
	kerrors "github.com/stratadb/strata/pkg/errors"
	"github.com/stratadb/strata/pkg/kvengine"
)

// Server accepts TCP connections and serves strata's wire protocol
// against a shared engine.
type Server struct {
	addr   string
	engine kvengine.Engine
	log    *zap.SugaredLogger

	mu       sync.Mutex
	listener net.Listener
	closed   bool
	wg       sync.WaitGroup
}

// New returns a Server that will listen on addr and dispatch requests to
// engine (or a Clone of it per connection).
func New(addr string, eng kvengine.Engine, log *zap.SugaredLogger) *Server {
	return &Server{addr: addr, engine: eng, log: log}
}

// Serve listens on the configured address and accepts connections until
// ctx is canceled or Close is called. It blocks until the accept loop
// exits and every in-flight connection has finished.
func (s *Server) Serve(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return kerrors.NewIOError(err, "server: listen").WithPath(s.addr)
	}

	s.mu.Lock()
	s.listener = listener
	s.mu.Unlock()

	s.log.Infow("server listening", "addr", s.addr)

	go func() {
		<-ctx.Done()
		s.Close()
	}()

	for {
		conn, err := listener.Accept()
		if err != nil {
			s.mu.Lock()
			closed := s.closed
			s.mu.Unlock()
			if closed {
				s.wg.Wait()
				return nil
			}
			s.log.Errorw("accept failed", "error", err)
			continue
		}

		if tc, ok := conn.(*net.TCPConn); ok {
			tc.SetNoDelay(true)
			tc.SetKeepAlive(true)
			tc.SetKeepAlivePeriod(5 * time.Minute)
		}

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.handleConnection(conn)
		}()
	}
}

// Close stops accepting new connections and waits for in-flight
// connections to finish.
func (s *Server) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	listener := s.listener
	s.mu.Unlock()

	var err error
	if listener != nil {
		err = listener.Close()
	}
	s.wg.Wait()
	return err
}

// handleConnection reads framed requests from conn until clean EOF or a
// connection-level error, dispatching each to a per-connection engine
// clone so this goroutine never contends with others on a reader cursor
// (spec.md §5).
func (s *Server) handleConnection(conn net.Conn) {
	defer conn.Close()

	eng := s.engine.Clone()
	defer eng.Close()

	remote := conn.RemoteAddr().String()
	ctx := context.Background()

	for {
		payload, err := wire.ReadMessage(conn)
		if errors.Is(err, io.EOF) {
			return
		}
		if err != nil {
			s.log.Warnw("connection read error", "remote", remote, "error", err)
			return
		}

		req, err := wire.DecodeRequest(payload)
		if err != nil {
			s.log.Warnw("malformed request", "remote", remote, "error", err)
			return
		}

		resp := s.dispatch(ctx, eng, req)
		if err := wire.WriteMessage(conn, wire.EncodeResponse(resp)); err != nil {
			s.log.Warnw("connection write error", "remote", remote, "error", err)
			return
		}
	}
}

// dispatch runs req against eng and stringifies any engine error into the
// response's Err arm, per spec.md §4.5 — the wire protocol carries no
// structured error taxonomy.
func (s *Server) dispatch(ctx context.Context, eng kvengine.Engine, req *wire.Request) *wire.Response {
	switch req.Kind {
	case wire.RequestGet:
		value, found, err := eng.Get(ctx, req.Key)
		if err != nil {
			return errResponse(err)
		}
		return &wire.Response{Status: wire.StatusOk, HasValue: found, Value: value}

	case wire.RequestSet:
		if err := eng.Set(ctx, req.Key, req.Value); err != nil {
			return errResponse(err)
		}
		return &wire.Response{Status: wire.StatusOk}

	case wire.RequestRemove:
		if err := eng.Remove(ctx, req.Key); err != nil {
			return errResponse(err)
		}
		return &wire.Response{Status: wire.StatusOk}

	default:
		return &wire.Response{Status: wire.StatusErr, Err: "unknown request kind"}
	}
}

func errResponse(err error) *wire.Response {
	return &wire.Response{Status: wire.StatusErr, Err: err.Error()}
}
