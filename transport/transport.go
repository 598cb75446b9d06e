// Copyright 2026 The Basalt Authors
// SPDX-License-Identifier: Apache-2.0

package transport

import (
	"context"
	"net"
)

// ConnHandler processes one accepted connection. The listener calls it
// on a new goroutine per connection and the handler owns conn for its
// lifetime, including closing it. Most handlers wrap conn in a
// PacketConn immediately.
type ConnHandler func(ctx context.Context, conn net.Conn)

// Listener accepts inbound game connections. The server creates a
// Listener and calls Serve with a handler that drives the connection
// through its protocol states.
type Listener interface {
	// Serve starts accepting connections and dispatches each to
	// handler on its own goroutine. Blocks until ctx is cancelled or
	// Close is called. Returns nil on clean shutdown.
	Serve(ctx context.Context, handler ConnHandler) error

	// Address returns the bound address clients should connect to.
	// The format is transport-specific (e.g., "192.168.1.10:25565"
	// for TCP).
	Address() string

	// Close shuts down the listener. In-flight connections are not
	// touched; handlers close their own connections.
	Close() error
}

// Dialer opens outbound connections to a server. Clients and proxies
// use a Dialer to establish the raw stream before wrapping it in a
// PacketConn.
type Dialer interface {
	// DialContext opens a network connection to the given address.
	// The address format matches what the server's Listener.Address()
	// returns.
	DialContext(ctx context.Context, address string) (net.Conn, error)
}
