// Copyright 2026 The Basalt Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"bytes"
	"crypto/cipher"
	"fmt"

	"github.com/basalt-mc/basalt/wire"
)

// CompressionDisabled is the threshold value meaning frames carry no
// data-length field at all. Any negative threshold disables
// compression.
const CompressionDisabled = -1

// PacketEncoder accumulates length-prefixed frames in an output
// buffer. One encoder serves one connection for its whole life; it is
// not safe for concurrent use.
//
// Frames are appended one packet at a time; Take hands the accumulated
// bytes to the caller for the socket write, applying the encryption
// transform in place at that moment so bytes already taken are never
// re-encrypted.
type PacketEncoder struct {
	buf       []byte
	scratch   wire.Writer
	deflated  bytes.Buffer
	deflater  deflater
	threshold int
	cipher    cipher.Stream
}

// NewPacketEncoder returns an encoder with compression disabled and no
// encryption.
func NewPacketEncoder() *PacketEncoder {
	return &PacketEncoder{threshold: CompressionDisabled}
}

// SetCompressionThreshold enables zlib compression for frames whose
// uncompressed ID+payload is at least threshold bytes. A negative
// threshold disables compression entirely, removing the data-length
// field from the frame format. The change takes effect with the next
// appended frame; the caller is responsible for changing modes only at
// the protocol's negotiated point.
func (e *PacketEncoder) SetCompressionThreshold(threshold int) {
	e.threshold = threshold
}

// EnableEncryption switches the outgoing byte stream to AES/CFB-8
// under key (16 or 32 bytes, also used as the IV). Encryption must
// start at a frame boundary: the buffer must have been drained with
// Take first, and enabling twice is an error.
func (e *PacketEncoder) EnableEncryption(key []byte) error {
	if e.cipher != nil {
		return fmt.Errorf("codec: encryption is already enabled")
	}
	if len(e.buf) > 0 {
		return fmt.Errorf("codec: cannot enable encryption with %d unflushed bytes buffered", len(e.buf))
	}
	c, err := newCFB8(key, false)
	if err != nil {
		return err
	}
	e.cipher = c
	return nil
}

// AppendPacket serializes p's ID and payload and appends the resulting
// frame. On any failure the buffer is rolled back to its pre-call
// length, so one bad packet never corrupts the stream for the packets
// that follow it.
func (e *PacketEncoder) AppendPacket(p Packet) error {
	e.scratch.Reset()
	e.scratch.WriteVarInt(p.PacketID())
	if err := p.Encode(&e.scratch); err != nil {
		return fmt.Errorf("codec: encoding %s: %w", p.PacketName(), err)
	}
	if err := e.appendFrameData(e.scratch.Bytes()); err != nil {
		return fmt.Errorf("codec: framing %s: %w", p.PacketName(), err)
	}
	return nil
}

// AppendFrame re-frames an already-extracted frame, used when relaying
// packets without re-parsing their payload. The body is framed under
// this encoder's current compression setting, which need not match the
// setting it was decoded under.
func (e *PacketEncoder) AppendFrame(f *Frame) error {
	e.scratch.Reset()
	e.scratch.WriteVarInt(f.ID)
	e.scratch.WriteRaw(f.Body)
	return e.appendFrameData(e.scratch.Bytes())
}

// AppendBytes appends pre-encoded frame bytes verbatim. The caller
// guarantees they are complete frames matching the connection's
// current compression setting.
func (e *PacketEncoder) AppendBytes(b []byte) {
	e.buf = append(e.buf, b...)
}

// appendFrameData frames data (the uncompressed ID+payload bytes) into
// the output buffer. Rollback on failure is the caller-visible
// contract; data lives in e.scratch so nothing is written to e.buf
// until the frame is known good.
func (e *PacketEncoder) appendFrameData(data []byte) error {
	start := len(e.buf)

	if e.threshold >= 0 {
		if len(data) >= e.threshold {
			compressed, err := e.deflater.compress(&e.deflated, data)
			if err != nil {
				e.buf = e.buf[:start]
				return err
			}
			dataLen := wire.VarInt(len(data))
			frameLen := dataLen.Len() + len(compressed)
			if frameLen > MaxPacketSize {
				e.buf = e.buf[:start]
				return fmt.Errorf("frame of %d bytes exceeds maximum packet size", frameLen)
			}
			e.buf = wire.AppendVarInt(e.buf, wire.VarInt(frameLen))
			e.buf = wire.AppendVarInt(e.buf, dataLen)
			e.buf = append(e.buf, compressed...)
			return nil
		}

		// Below the threshold: a zero data length marks the frame as
		// stored uncompressed.
		frameLen := 1 + len(data)
		if frameLen > MaxPacketSize {
			e.buf = e.buf[:start]
			return fmt.Errorf("frame of %d bytes exceeds maximum packet size", frameLen)
		}
		e.buf = wire.AppendVarInt(e.buf, wire.VarInt(frameLen))
		e.buf = append(e.buf, 0)
		e.buf = append(e.buf, data...)
		return nil
	}

	if len(data) > MaxPacketSize {
		return fmt.Errorf("frame of %d bytes exceeds maximum packet size", len(data))
	}
	e.buf = wire.AppendVarInt(e.buf, wire.VarInt(len(data)))
	e.buf = append(e.buf, data...)
	return nil
}

// Len returns the number of buffered bytes awaiting Take.
func (e *PacketEncoder) Len() int { return len(e.buf) }

// Take encrypts the accumulated bytes in place (when encryption is
// enabled), clears the encoder, and returns them ready for the socket
// write. The returned slice aliases the encoder's internal buffer and
// is valid only until the next Append call; the usual take→write→append
// loop satisfies that naturally.
func (e *PacketEncoder) Take() []byte {
	if e.cipher != nil {
		e.cipher.XORKeyStream(e.buf, e.buf)
	}
	out := e.buf
	e.buf = e.buf[:0]
	return out
}
