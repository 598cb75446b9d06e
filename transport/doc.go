// Copyright 2026 The Basalt Authors
// SPDX-License-Identifier: Apache-2.0

// Package transport owns the socket side of a connection: accepting
// and dialing TCP, and pumping bytes between a net.Conn and the
// connection's codec pair.
//
// The codec package never touches sockets; it consumes and produces
// byte slices. PacketConn is the glue: it reads from the socket into
// the decoder's spare capacity, loops TryNextFrame, and flushes the
// encoder's accumulated frames in single writes. Each PacketConn is
// owned by one connection's processing loop; like the codec it wraps,
// it is not safe for concurrent use.
package transport
