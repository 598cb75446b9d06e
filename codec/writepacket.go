// Copyright 2026 The Basalt Authors
// SPDX-License-Identifier: Apache-2.0

package codec

// Compile-time interface check.
var _ PacketWriter = (*PacketEncoder)(nil)

// PacketWriter is the sink capability game-layer code writes packets
// through, so it never touches framing directly. It is implemented by
// PacketEncoder and by any buffering or broadcasting wrapper that
// forwards to one.
type PacketWriter interface {
	// WritePacket frames and buffers one packet.
	WritePacket(p Packet) error

	// WritePacketBytes copies pre-framed packet data verbatim. The
	// bytes must be complete frames matching the connection's current
	// compression setting.
	WritePacketBytes(b []byte)
}

// WritePacket implements PacketWriter.
func (e *PacketEncoder) WritePacket(p Packet) error {
	return e.AppendPacket(p)
}

// WritePacketBytes implements PacketWriter.
func (e *PacketEncoder) WritePacketBytes(b []byte) {
	e.AppendBytes(b)
}
