package server

import (
	"net"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestPoolDispatchesEveryConnection(t *testing.T) {
	var handled int64
	pool := NewPool(4, 16, func(conn net.Conn) {
		atomic.AddInt64(&handled, 1)
		_ = conn.Close()
	})

	const n = 20
	conns := make([]net.Conn, n)
	for i := 0; i < n; i++ {
		client, server := net.Pipe()
		conns[i] = server
		go func() { _ = client.Close() }()
		pool.Submit(server)
	}

	pool.Close()
	require.Equal(t, int64(n), atomic.LoadInt64(&handled))
}

func TestServeStopsWhenListenerCloses(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	pool := NewPool(2, 4, func(conn net.Conn) { _ = conn.Close() })
	done := make(chan error, 1)
	go func() { done <- Serve(ln, pool) }()

	require.NoError(t, ln.Close())

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return after listener closed")
	}
	pool.Close()
}
