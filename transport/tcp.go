// Copyright 2026 The Basalt Authors
// SPDX-License-Identifier: Apache-2.0

package transport

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"sync"
	"time"
)

// Compile-time interface checks.
var (
	_ Listener = (*TCPListener)(nil)
	_ Dialer   = (*TCPDialer)(nil)
)

// TCPListener accepts inbound TCP connections. TCP is the canonical
// transport for the protocol; the listener disables Nagle's algorithm
// on accepted connections so small frames are not held back.
type TCPListener struct {
	// Logger is used for structured logging. If nil, slog.Default()
	// is used.
	Logger *slog.Logger

	listener net.Listener
	closed   chan struct{}
	once     sync.Once
	wg       sync.WaitGroup
}

// NewTCPListener creates a TCP listener on the specified address
// (e.g., ":25565" or "192.168.1.10:25565"). Use ":0" for a random
// available port.
func NewTCPListener(address string) (*TCPListener, error) {
	listener, err := net.Listen("tcp", address)
	if err != nil {
		return nil, err
	}
	return &TCPListener{
		listener: listener,
		closed:   make(chan struct{}),
	}, nil
}

// Serve accepts TCP connections and dispatches each to handler on its
// own goroutine. Blocks until ctx is cancelled or Close is called,
// then waits for all handler goroutines to return.
func (l *TCPListener) Serve(ctx context.Context, handler ConnHandler) error {
	logger := l.Logger
	if logger == nil {
		logger = slog.Default()
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		select {
		case <-ctx.Done():
		case <-l.closed:
		}
		l.listener.Close()
	}()

	logger.Info("tcp listener serving", "address", l.Address())

	var err error
	for {
		var conn net.Conn
		conn, err = l.listener.Accept()
		if err != nil {
			break
		}
		if tc, ok := conn.(*net.TCPConn); ok {
			tc.SetNoDelay(true)
		}
		logger.Debug("connection accepted", "remote", conn.RemoteAddr())
		l.wg.Add(1)
		go func() {
			defer l.wg.Done()
			handler(ctx, conn)
		}()
	}

	l.wg.Wait()
	if ctx.Err() != nil || isClosed(l.closed) || errors.Is(err, net.ErrClosed) {
		return nil
	}
	return err
}

// Address returns the TCP address in "host:port" format.
func (l *TCPListener) Address() string {
	return l.listener.Addr().String()
}

// Close shuts down the TCP listener. Subsequent calls to Serve return
// immediately.
func (l *TCPListener) Close() error {
	l.once.Do(func() { close(l.closed) })
	return l.listener.Close()
}

func isClosed(ch chan struct{}) bool {
	select {
	case <-ch:
		return true
	default:
		return false
	}
}

// TCPDialer opens TCP connections to a server.
type TCPDialer struct {
	// Timeout is the maximum time to wait for a TCP connection to be
	// established. Zero means no standalone timeout; only the context
	// deadline applies.
	Timeout time.Duration
}

// DialContext opens a TCP connection to the given address (host:port)
// with Nagle's algorithm disabled.
func (d *TCPDialer) DialContext(ctx context.Context, address string) (net.Conn, error) {
	conn, err := (&net.Dialer{Timeout: d.Timeout}).DialContext(ctx, "tcp", address)
	if err != nil {
		return nil, err
	}
	if tc, ok := conn.(*net.TCPConn); ok {
		tc.SetNoDelay(true)
	}
	return conn, nil
}
