// Copyright 2026 The Basalt Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"crypto/cipher"
	"fmt"
	"io"

	"github.com/basalt-mc/basalt/wire"
)

// DefaultMaxBufferSize caps decoder buffer growth: one maximum-size
// frame, its length prefix, and read-ahead slack for the frames queued
// behind it. A peer that sends faster than the caller decodes hits
// this cap instead of growing the buffer without bound.
const DefaultMaxBufferSize = MaxPacketSize + 3 + 4096

// fillChunkSize is the minimum spare capacity FillFrom offers to a
// socket read.
const fillChunkSize = 4096

// PacketDecoder incrementally assembles frames from partial socket
// reads. One decoder serves one connection for its whole life; it is
// not safe for concurrent use.
//
// Bytes enter through QueueBytes or FillFrom (decrypted on entry when
// encryption is enabled) and leave one frame at a time through
// TryNextFrame. The decoder never consumes a partial frame: until the
// full declared length is buffered, TryNextFrame reports "no packet
// yet" rather than an error.
type PacketDecoder struct {
	buf []byte
	pos int

	maxBufferSize int

	compression bool
	threshold   int

	inflater inflater
	cipher   cipher.Stream
}

// NewPacketDecoder returns a decoder with compression disabled, no
// decryption, and the default buffer cap.
func NewPacketDecoder() *PacketDecoder {
	return &PacketDecoder{
		maxBufferSize: DefaultMaxBufferSize,
		threshold:     CompressionDisabled,
	}
}

// SetMaxBufferSize bounds the decoder's buffer. QueueBytes and
// FillFrom refuse to grow past it regardless of how fast bytes arrive.
func (d *PacketDecoder) SetMaxBufferSize(n int) {
	d.maxBufferSize = n
}

// SetCompressionThreshold mirrors the encoder-side setting: a
// non-negative threshold means incoming frames carry a data-length
// field. The change applies to frames extracted after the call; the
// caller owns sequencing it at the protocol's negotiated frame
// boundary.
func (d *PacketDecoder) SetCompressionThreshold(threshold int) {
	d.compression = threshold >= 0
	d.threshold = threshold
}

// EnableEncryption switches the incoming byte stream to AES/CFB-8
// under key (16 or 32 bytes, also the IV). Ciphertext already buffered
// but not yet parsed is decrypted immediately, so the caller may
// enable decryption as soon as the key is negotiated even if the peer's
// first encrypted bytes have already been queued. Enabling twice is an
// error.
func (d *PacketDecoder) EnableEncryption(key []byte) error {
	if d.cipher != nil {
		return fmt.Errorf("codec: decryption is already enabled")
	}
	c, err := newCFB8(key, true)
	if err != nil {
		return err
	}
	d.cipher = c
	c.XORKeyStream(d.buf[d.pos:], d.buf[d.pos:])
	return nil
}

// data returns the unconsumed bytes.
func (d *PacketDecoder) data() []byte { return d.buf[d.pos:] }

// compact moves unconsumed bytes to the front of the buffer, freeing
// consumed capacity for reuse.
func (d *PacketDecoder) compact() {
	if d.pos == 0 {
		return
	}
	n := copy(d.buf, d.buf[d.pos:])
	d.buf = d.buf[:n]
	d.pos = 0
}

// Buffered returns the number of unconsumed bytes.
func (d *PacketDecoder) Buffered() int { return len(d.buf) - d.pos }

// QueueBytes appends freshly read bytes, removing the encryption
// transform from them on entry. It fails if accepting the bytes would
// grow the buffer past the configured maximum; the bytes are not
// consumed in that case and the caller should extract frames before
// retrying.
func (d *PacketDecoder) QueueBytes(b []byte) error {
	d.compact()
	if len(d.buf)+len(b) > d.maxBufferSize {
		return fmt.Errorf("codec: %d queued bytes would exceed the %d-byte buffer cap",
			len(d.buf)+len(b), d.maxBufferSize)
	}
	start := len(d.buf)
	d.buf = append(d.buf, b...)
	if d.cipher != nil {
		d.cipher.XORKeyStream(d.buf[start:], d.buf[start:])
	}
	return nil
}

// Reserve ensures at least n bytes of spare capacity (subject to the
// buffer cap) so an upcoming FillFrom can read without reallocating.
func (d *PacketDecoder) Reserve(n int) {
	d.compact()
	if len(d.buf)+n > d.maxBufferSize {
		n = d.maxBufferSize - len(d.buf)
	}
	if n <= 0 || cap(d.buf)-len(d.buf) >= n {
		return
	}
	grown := make([]byte, len(d.buf), len(d.buf)+n)
	copy(grown, d.buf)
	d.buf = grown
}

// FillFrom reads once from r directly into the decoder's spare
// capacity — the zero-copy path from the socket — and decrypts what
// arrived in place. It returns the number of bytes read and r's error,
// if any. When the buffer is already at its cap, FillFrom returns an
// error instead of reading; the caller must extract frames first.
func (d *PacketDecoder) FillFrom(r io.Reader) (int, error) {
	d.compact()
	if len(d.buf) >= d.maxBufferSize {
		return 0, fmt.Errorf("codec: buffer is at its %d-byte cap with no complete frame extracted",
			d.maxBufferSize)
	}
	d.Reserve(fillChunkSize)

	spare := d.buf[len(d.buf):cap(d.buf)]
	if avail := d.maxBufferSize - len(d.buf); len(spare) > avail {
		spare = spare[:avail]
	}
	n, err := r.Read(spare)
	if n > 0 {
		start := len(d.buf)
		d.buf = d.buf[:start+n]
		if d.cipher != nil {
			d.cipher.XORKeyStream(d.buf[start:], d.buf[start:])
		}
	}
	return n, err
}

// HasNextPacket reports whether a complete frame is buffered, by
// parsing only the frame-length VarInt at the front without consuming
// anything. A malformed or out-of-range length is an error.
func (d *PacketDecoder) HasNextPacket() (bool, error) {
	frameLen, n, err := d.peekFrameLen()
	if err != nil || n == 0 {
		return false, err
	}
	return d.Buffered()-n >= frameLen, nil
}

// peekFrameLen parses and validates the frame-length prefix. n == 0
// means the prefix itself is incomplete.
func (d *PacketDecoder) peekFrameLen() (frameLen, n int, err error) {
	v, n, err := wire.PeekVarInt(d.data())
	if err != nil {
		return 0, 0, fmt.Errorf("codec: malformed frame length: %w", err)
	}
	if n == 0 {
		return 0, 0, nil
	}
	if v < 0 || v > MaxPacketSize {
		return 0, 0, fmt.Errorf("codec: frame length %d is out of bounds", v)
	}
	return int(v), n, nil
}

// TryNextFrame extracts one complete frame: decompresses the body if
// the connection has compression enabled, decodes the leading packet
// ID, and advances past the consumed bytes. It returns (nil, nil) when
// the buffer does not yet hold a complete frame — the caller's signal
// to read more bytes.
//
// An uncompressed frame's body aliases the decoder's buffer and is
// valid only until the next QueueBytes, FillFrom, or TryNextFrame
// call.
func (d *PacketDecoder) TryNextFrame() (*Frame, error) {
	frameLen, prefixLen, err := d.peekFrameLen()
	if err != nil {
		return nil, err
	}
	if prefixLen == 0 || d.Buffered()-prefixLen < frameLen {
		// Not enough data arrived yet.
		return nil, nil
	}

	body := d.data()[prefixLen : prefixLen+frameLen]
	// The frame is consumed in full before its contents are examined,
	// so an error below never desynchronizes framing.
	d.pos += prefixLen + frameLen

	if d.compression {
		r := wire.NewReader(body)
		dataLen, err := r.ReadVarInt()
		if err != nil {
			return nil, fmt.Errorf("codec: malformed data length: %w", err)
		}
		if dataLen < 0 || dataLen > MaxPacketSize {
			return nil, fmt.Errorf("codec: decompressed length %d is out of bounds", dataLen)
		}
		if dataLen > 0 {
			if int(dataLen) < d.threshold {
				return nil, fmt.Errorf("codec: decompressed length %d is below the compression threshold %d",
					dataLen, d.threshold)
			}
			body, err = d.inflater.decompress(r.ReadRemaining(), int(dataLen))
			if err != nil {
				return nil, err
			}
		} else {
			body = r.ReadRemaining()
			if d.threshold >= 0 && len(body) >= d.threshold {
				return nil, fmt.Errorf("codec: uncompressed frame of %d bytes meets the compression threshold %d",
					len(body), d.threshold)
			}
		}
	}

	id, n, err := wire.PeekVarInt(body)
	if err != nil || n == 0 {
		return nil, fmt.Errorf("codec: malformed packet ID: %w", errOrShort(err))
	}
	return &Frame{ID: int32(id), Body: body[n:]}, nil
}

// errOrShort maps a nil error from an incomplete peek to a short-input
// description for error wrapping.
func errOrShort(err error) error {
	if err != nil {
		return err
	}
	return io.ErrUnexpectedEOF
}
