// Copyright 2026 The Basalt Authors
// SPDX-License-Identifier: Apache-2.0

package wire

import (
	"fmt"
	"io"
	"math"
	"unicode/utf8"

	"github.com/google/uuid"
)

// Reader is a cursor over a caller-owned byte buffer. Reads advance
// the cursor and never mutate the buffer. Short input is reported as
// io.ErrUnexpectedEOF; inside a frame the full extent is already
// buffered, so running out of bytes means the sender lied about a
// length somewhere.
type Reader struct {
	buf []byte
	pos int
}

// NewReader returns a Reader over buf. The Reader borrows buf; slices
// returned by ReadBytes, ReadLenBytes, and ReadRemaining alias it.
func NewReader(buf []byte) *Reader {
	return &Reader{buf: buf}
}

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int { return len(r.buf) - r.pos }

// Skip advances the cursor by n bytes.
func (r *Reader) Skip(n int) error {
	if r.Remaining() < n {
		return io.ErrUnexpectedEOF
	}
	r.pos += n
	return nil
}

// ReadBool reads a boolean byte. Values other than 0 and 1 are
// malformed.
func (r *Reader) ReadBool() (bool, error) {
	b, err := r.ReadUint8()
	if err != nil {
		return false, err
	}
	if b > 1 {
		return false, fmt.Errorf("wire: boolean byte is %#x, not 0 or 1", b)
	}
	return b == 1, nil
}

// ReadUint8 reads a single byte.
func (r *Reader) ReadUint8() (uint8, error) {
	if r.pos >= len(r.buf) {
		return 0, io.ErrUnexpectedEOF
	}
	b := r.buf[r.pos]
	r.pos++
	return b, nil
}

// ReadInt8 reads a single signed byte.
func (r *Reader) ReadInt8() (int8, error) {
	b, err := r.ReadUint8()
	return int8(b), err
}

// ReadUint16 reads a big-endian uint16.
func (r *Reader) ReadUint16() (uint16, error) {
	if r.Remaining() < 2 {
		return 0, io.ErrUnexpectedEOF
	}
	v := uint16(r.buf[r.pos])<<8 | uint16(r.buf[r.pos+1])
	r.pos += 2
	return v, nil
}

// ReadInt16 reads a big-endian int16.
func (r *Reader) ReadInt16() (int16, error) {
	v, err := r.ReadUint16()
	return int16(v), err
}

// ReadUint32 reads a big-endian uint32.
func (r *Reader) ReadUint32() (uint32, error) {
	if r.Remaining() < 4 {
		return 0, io.ErrUnexpectedEOF
	}
	v := uint32(r.buf[r.pos])<<24 | uint32(r.buf[r.pos+1])<<16 |
		uint32(r.buf[r.pos+2])<<8 | uint32(r.buf[r.pos+3])
	r.pos += 4
	return v, nil
}

// ReadInt32 reads a big-endian int32.
func (r *Reader) ReadInt32() (int32, error) {
	v, err := r.ReadUint32()
	return int32(v), err
}

// ReadUint64 reads a big-endian uint64.
func (r *Reader) ReadUint64() (uint64, error) {
	if r.Remaining() < 8 {
		return 0, io.ErrUnexpectedEOF
	}
	v := uint64(r.buf[r.pos])<<56 | uint64(r.buf[r.pos+1])<<48 |
		uint64(r.buf[r.pos+2])<<40 | uint64(r.buf[r.pos+3])<<32 |
		uint64(r.buf[r.pos+4])<<24 | uint64(r.buf[r.pos+5])<<16 |
		uint64(r.buf[r.pos+6])<<8 | uint64(r.buf[r.pos+7])
	r.pos += 8
	return v, nil
}

// ReadInt64 reads a big-endian int64.
func (r *Reader) ReadInt64() (int64, error) {
	v, err := r.ReadUint64()
	return int64(v), err
}

// ReadFloat32 reads an IEEE 754 float32, big-endian.
func (r *Reader) ReadFloat32() (float32, error) {
	v, err := r.ReadUint32()
	return math.Float32frombits(v), err
}

// ReadFloat64 reads an IEEE 754 float64, big-endian.
func (r *Reader) ReadFloat64() (float64, error) {
	v, err := r.ReadUint64()
	return math.Float64frombits(v), err
}

// ReadVarInt reads a variable-length int32.
func (r *Reader) ReadVarInt() (int32, error) {
	v, n, err := PeekVarInt(r.buf[r.pos:])
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, io.ErrUnexpectedEOF
	}
	r.pos += n
	return int32(v), nil
}

// ReadVarLong reads a variable-length int64.
func (r *Reader) ReadVarLong() (int64, error) {
	v, n, err := PeekVarLong(r.buf[r.pos:])
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, io.ErrUnexpectedEOF
	}
	r.pos += n
	return int64(v), nil
}

// ReadUUID reads a UUID as 16 raw bytes.
func (r *Reader) ReadUUID() (uuid.UUID, error) {
	b, err := r.ReadBytes(16)
	if err != nil {
		return uuid.UUID{}, err
	}
	var u uuid.UUID
	copy(u[:], b)
	return u, nil
}

// ReadBytes reads exactly n bytes. The returned slice aliases the
// Reader's buffer; do not modify it or retain it past the buffer's
// lifetime.
func (r *Reader) ReadBytes(n int) ([]byte, error) {
	if n < 0 {
		return nil, fmt.Errorf("wire: negative byte count %d", n)
	}
	if r.Remaining() < n {
		return nil, io.ErrUnexpectedEOF
	}
	b := r.buf[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

// ReadBytesCopy reads exactly n bytes into a fresh allocation that is
// safe to retain.
func (r *Reader) ReadBytesCopy(n int) ([]byte, error) {
	b, err := r.ReadBytes(n)
	if err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, b)
	return out, nil
}

// ReadRemaining consumes and returns every unread byte. The returned
// slice aliases the Reader's buffer.
func (r *Reader) ReadRemaining() []byte {
	b := r.buf[r.pos:]
	r.pos = len(r.buf)
	return b
}

// ReadLenBytes reads a VarInt byte-length prefix and then that many
// bytes. The declared length is validated against the bytes actually
// remaining before anything is consumed, so a forged prefix cannot
// trigger a large allocation. The returned slice aliases the Reader's
// buffer.
func (r *Reader) ReadLenBytes() ([]byte, error) {
	n, err := r.ReadVarInt()
	if err != nil {
		return nil, fmt.Errorf("wire: byte array length prefix: %w", err)
	}
	if n < 0 {
		return nil, fmt.Errorf("wire: negative byte array length %d", n)
	}
	if int(n) > r.Remaining() {
		return nil, fmt.Errorf("wire: declared byte array length %d exceeds %d remaining bytes: %w",
			n, r.Remaining(), io.ErrUnexpectedEOF)
	}
	return r.ReadBytes(int(n))
}

// ReadString reads a VarInt-byte-length-prefixed UTF-8 string with the
// protocol's default MaxStringLength code-point cap.
func (r *Reader) ReadString() (string, error) {
	return r.ReadStringMax(MaxStringLength)
}

// ReadStringMax reads a VarInt-byte-length-prefixed UTF-8 string whose
// code-point count may not exceed maxChars. The byte-length prefix is
// checked against maxChars*4 (the widest possible UTF-8 encoding) and
// against the remaining buffer before any allocation, and the bytes
// must be valid UTF-8.
func (r *Reader) ReadStringMax(maxChars int) (string, error) {
	n, err := r.ReadVarInt()
	if err != nil {
		return "", fmt.Errorf("wire: string length prefix: %w", err)
	}
	if n < 0 {
		return "", fmt.Errorf("wire: negative string length %d", n)
	}
	if maxBytes := maxChars * 4; int(n) > maxBytes {
		return "", fmt.Errorf("wire: declared string length %d exceeds maximum of %d bytes", n, maxBytes)
	}
	if int(n) > r.Remaining() {
		return "", fmt.Errorf("wire: declared string length %d exceeds %d remaining bytes: %w",
			n, r.Remaining(), io.ErrUnexpectedEOF)
	}
	b, err := r.ReadBytes(int(n))
	if err != nil {
		return "", err
	}
	if !utf8.Valid(b) {
		return "", fmt.Errorf("wire: string is not valid UTF-8")
	}
	if c := utf8.RuneCount(b); c > maxChars {
		return "", fmt.Errorf("wire: string of %d characters exceeds maximum of %d", c, maxChars)
	}
	return string(b), nil
}
