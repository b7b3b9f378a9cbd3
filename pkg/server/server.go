package server

import (
	"net"

	"github.com/logjamd/logjamd/pkg/auth"
	"github.com/logjamd/logjamd/pkg/log"
	"github.com/logjamd/logjamd/pkg/metrics"
	"github.com/logjamd/logjamd/pkg/pipeline"
)

// Server bundles the pieces a connection handler needs: the auth
// provider registry and the command executor. Listen constructs the
// worker pool and drives the accept loop against it.
type Server struct {
	Registry      *auth.Registry
	Executor      pipeline.Executor
	AnonymousHTTP auth.User

	// PoolSize is the number of worker goroutines; Backlog is the
	// accepted-but-not-yet-dispatched connection queue capacity.
	PoolSize int
	Backlog  int
}

// Listen binds addr and serves connections through a worker pool until
// ln is closed by Shutdown or the process receives a termination
// signal (wired by the caller's CLI entry point).
func (s *Server) Listen(addr string) (*Listener, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}

	size := s.PoolSize
	if size <= 0 {
		size = 32
	}
	backlog := s.Backlog
	if backlog <= 0 {
		backlog = 256
	}

	pool := NewPool(size, backlog, s.handle)
	l := &Listener{ln: ln, pool: pool}

	go func() {
		if err := Serve(ln, pool); err != nil {
			log.Errorf("accept loop: %s", err)
		}
	}()

	return l, nil
}

// Listener is a running accept loop plus its backing worker pool.
type Listener struct {
	ln   net.Listener
	pool *Pool
}

// Addr returns the bound address.
func (l *Listener) Addr() net.Addr { return l.ln.Addr() }

// Shutdown closes the listener (unblocking the accept loop) and waits
// for every connection already queued or in flight to finish.
func (l *Listener) Shutdown() error {
	err := l.ln.Close()
	l.pool.Close()
	return err
}

// handle drives one connection through the pipeline to completion,
// the unit of work a pool worker performs.
func (s *Server) handle(conn net.Conn) {
	defer conn.Close()

	metrics.ConnectionsTotal.Inc()
	metrics.ConnectionsActive.Inc()
	defer metrics.ConnectionsActive.Dec()

	remote := conn.RemoteAddr().String()
	logger := log.WithConnection(remote)
	logger.Debug().Msg("session starting")

	timer := metrics.NewTimer()
	session := pipeline.New(conn, s.Registry, s.Executor, s.AnonymousHTTP)
	err := session.Run()
	metrics.CommandDuration.Observe(timer.Duration().Seconds())

	if err != nil {
		logger.Error().Err(err).Msg("session ended with error")
		return
	}
	logger.Debug().Dur("duration", timer.Duration()).Msg("session closed")
}
