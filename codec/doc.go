// Copyright 2026 The Basalt Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec implements the packet framing layer of the Minecraft
// protocol: length-prefixed frames, optional zlib compression above a
// negotiated threshold, and AES/CFB-8 encryption of the connection
// byte stream.
//
// A connection owns exactly one PacketEncoder and one PacketDecoder
// for its lifetime. Neither is safe for concurrent use; parallelism in
// a server is per connection, not per codec call. Both reuse their
// internal buffers across packets, so steady-state framing does not
// allocate.
//
// The decoder is pull-based: TryNextFrame returns (nil, nil) when the
// buffer does not yet hold a complete frame, and that is the caller's
// only backpressure signal — read more bytes from the socket and try
// again. Packet boundaries are determined solely by declared lengths,
// never by payload content, so a payload that fails to decode does not
// desynchronize framing: the bad frame has already been consumed in
// full and the next TryNextFrame starts cleanly at the next frame.
//
// This package parses adversarial input. Every declared length is
// range-checked before any proportional allocation, decompressed sizes
// must match their declaration exactly, and no input can cause a
// panic.
package codec
