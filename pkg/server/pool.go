// Package server runs the TCP accept loop and the fixed-size worker
// pool that drives one pipeline.Session per connection. The queue is a
// buffered channel rather than a condition-variable-guarded queue:
// push is non-blocking up to the channel's capacity, and a worker's
// receive blocks until a connection is available, giving the same
// wait-free-push/blocking-pop contract with Go's own primitives.
package server

import (
	"errors"
	"net"
	"sync"

	"github.com/logjamd/logjamd/pkg/log"
)

// Pool is a fixed-size set of worker goroutines, each pulling accepted
// connections off a shared queue and handing them to handle.
type Pool struct {
	queue  chan net.Conn
	handle func(net.Conn)
	wg     sync.WaitGroup
}

// NewPool returns a Pool with size workers and a queue capacity of
// backlog pending connections. handle is called once per connection,
// on whichever worker goroutine dequeues it; handle is responsible for
// closing the connection when done.
func NewPool(size, backlog int, handle func(net.Conn)) *Pool {
	p := &Pool{
		queue:  make(chan net.Conn, backlog),
		handle: handle,
	}
	p.wg.Add(size)
	for i := 0; i < size; i++ {
		go p.worker()
	}
	return p
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for conn := range p.queue {
		p.handle(conn)
	}
}

// Submit enqueues conn for a worker to pick up. It blocks only if the
// queue is at capacity — a saturated pool applies backpressure to the
// accept loop rather than spawning unbounded goroutines.
func (p *Pool) Submit(conn net.Conn) {
	p.queue <- conn
}

// Close stops accepting new work and waits for every in-flight
// connection to finish. Already-queued connections still run to
// completion before Close returns.
func (p *Pool) Close() {
	close(p.queue)
	p.wg.Wait()
}

// Serve runs the TCP accept loop against ln, submitting every accepted
// connection to pool until ln is closed (the expected shutdown path:
// the caller closes ln to unblock Accept with a net.ErrClosed, at
// which point Serve returns nil). Any other Accept error is returned.
func Serve(ln net.Listener, pool *Pool) error {
	logger := log.WithComponent("server")
	for {
		conn, err := ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			return err
		}
		logger.Debug().Str("remote_addr", conn.RemoteAddr().String()).Msg("connection accepted")
		pool.Submit(conn)
	}
}
