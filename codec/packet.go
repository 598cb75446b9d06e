// Copyright 2026 The Basalt Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"fmt"

	"github.com/basalt-mc/basalt/wire"
)

// MaxPacketSize is the maximum number of bytes in a single frame body.
// It is the largest value a three-byte VarInt can carry — a protocol
// constant, not a tunable.
const MaxPacketSize = 2097151

// Packet is the contract a per-packet struct satisfies to travel
// through the encoder and decoder. The ID is the packet's VarInt
// identity within the connection's current protocol state; the name is
// used only in error messages and logs.
//
// Per-packet definitions live outside this package (generated or
// hand-written); the codec needs only this surface.
type Packet interface {
	wire.Encodable
	wire.Decodable

	// PacketID returns the packet's wire ID for the protocol state it
	// belongs to.
	PacketID() int32

	// PacketName returns a stable human-readable name for logs and
	// error messages.
	PacketName() string
}

// Frame is one extracted packet: the decoded leading VarInt ID and the
// body bytes that follow it, already decompressed. For uncompressed
// frames the body aliases the decoder's buffer and is valid only until
// the next QueueBytes, FillFrom, or TryNextFrame call; copy it to
// retain it.
type Frame struct {
	ID   int32
	Body []byte
}

// DecodeAs decodes the frame body into p. It is an error if the
// frame's ID does not match p's — dynamic dispatch across many packet
// types belongs to the caller, keyed by Frame.ID — if the body fails
// to decode, or if decoding leaves bytes unconsumed.
func (f *Frame) DecodeAs(p Packet) error {
	if f.ID != p.PacketID() {
		return fmt.Errorf("codec: packet ID mismatch decoding %s: expected %d, got %d",
			p.PacketName(), p.PacketID(), f.ID)
	}
	r := wire.NewReader(f.Body)
	if err := p.Decode(r); err != nil {
		return fmt.Errorf("codec: decoding %s: %w", p.PacketName(), err)
	}
	if n := r.Remaining(); n != 0 {
		return fmt.Errorf("codec: %d bytes left over after decoding %s", n, p.PacketName())
	}
	return nil
}
