// Copyright 2026 The Basalt Authors
// SPDX-License-Identifier: Apache-2.0

package wire

import (
	"fmt"
	"math"
	"unicode/utf8"

	"github.com/google/uuid"
)

// MaxStringLength is the protocol's default cap on string length,
// counted in Unicode code points, not bytes. Individual fields may
// impose tighter caps via WriteStringMax / Reader.ReadStringMax.
const MaxStringLength = 32767

// Writer is an append-only byte buffer with one method per primitive
// wire shape. All fixed-width integers are written big-endian. The
// zero value is ready to use; Reset reuses the underlying buffer
// across packets so steady-state encoding does not allocate.
type Writer struct {
	buf []byte
}

// NewWriter returns a Writer with the given initial capacity.
func NewWriter(capacity int) *Writer {
	return &Writer{buf: make([]byte, 0, capacity)}
}

// Bytes returns the accumulated bytes. The slice aliases the Writer's
// internal buffer and is valid only until the next Write or Reset.
func (w *Writer) Bytes() []byte { return w.buf }

// Len returns the number of bytes written so far.
func (w *Writer) Len() int { return len(w.buf) }

// Reset discards all written bytes, keeping the underlying buffer.
func (w *Writer) Reset() { w.buf = w.buf[:0] }

// Truncate shortens the buffer to n bytes. Callers checkpoint Len
// before a multi-field write and Truncate back to it when a later
// field fails to encode, so the buffer never holds a partial value.
func (w *Writer) Truncate(n int) { w.buf = w.buf[:n] }

// WriteBool writes a boolean as a single byte, 0 or 1.
func (w *Writer) WriteBool(v bool) {
	if v {
		w.buf = append(w.buf, 1)
	} else {
		w.buf = append(w.buf, 0)
	}
}

// WriteUint8 writes a single byte.
func (w *Writer) WriteUint8(v uint8) { w.buf = append(w.buf, v) }

// WriteInt8 writes a single signed byte.
func (w *Writer) WriteInt8(v int8) { w.buf = append(w.buf, byte(v)) }

// WriteUint16 writes a big-endian uint16.
func (w *Writer) WriteUint16(v uint16) {
	w.buf = append(w.buf, byte(v>>8), byte(v))
}

// WriteInt16 writes a big-endian int16.
func (w *Writer) WriteInt16(v int16) { w.WriteUint16(uint16(v)) }

// WriteUint32 writes a big-endian uint32.
func (w *Writer) WriteUint32(v uint32) {
	w.buf = append(w.buf, byte(v>>24), byte(v>>16), byte(v>>8), byte(v))
}

// WriteInt32 writes a big-endian int32.
func (w *Writer) WriteInt32(v int32) { w.WriteUint32(uint32(v)) }

// WriteUint64 writes a big-endian uint64.
func (w *Writer) WriteUint64(v uint64) {
	w.buf = append(w.buf,
		byte(v>>56), byte(v>>48), byte(v>>40), byte(v>>32),
		byte(v>>24), byte(v>>16), byte(v>>8), byte(v))
}

// WriteInt64 writes a big-endian int64.
func (w *Writer) WriteInt64(v int64) { w.WriteUint64(uint64(v)) }

// WriteFloat32 writes an IEEE 754 float32, big-endian.
func (w *Writer) WriteFloat32(v float32) { w.WriteUint32(math.Float32bits(v)) }

// WriteFloat64 writes an IEEE 754 float64, big-endian.
func (w *Writer) WriteFloat64(v float64) { w.WriteUint64(math.Float64bits(v)) }

// WriteVarInt writes v in variable-length encoding, at most 5 bytes.
func (w *Writer) WriteVarInt(v int32) { w.buf = AppendVarInt(w.buf, VarInt(v)) }

// WriteVarLong writes v in variable-length encoding, at most 10 bytes.
func (w *Writer) WriteVarLong(v int64) { w.buf = AppendVarLong(w.buf, VarLong(v)) }

// WriteUUID writes a UUID as 16 raw bytes (two big-endian uint64s).
func (w *Writer) WriteUUID(v uuid.UUID) { w.buf = append(w.buf, v[:]...) }

// WriteString writes a UTF-8 string with a VarInt byte-length prefix,
// enforcing the protocol's default MaxStringLength code-point cap.
func (w *Writer) WriteString(s string) error {
	return w.WriteStringMax(s, MaxStringLength)
}

// WriteStringMax writes a UTF-8 string with a VarInt byte-length
// prefix, rejecting strings whose code-point count exceeds maxChars.
// Nothing is written on failure.
func (w *Writer) WriteStringMax(s string, maxChars int) error {
	if n := utf8.RuneCountInString(s); n > maxChars {
		return fmt.Errorf("wire: string of %d characters exceeds maximum of %d", n, maxChars)
	}
	w.WriteVarInt(int32(len(s)))
	w.buf = append(w.buf, s...)
	return nil
}

// WriteLenBytes writes b with a VarInt byte-length prefix.
func (w *Writer) WriteLenBytes(b []byte) {
	w.WriteVarInt(int32(len(b)))
	w.buf = append(w.buf, b...)
}

// WriteRaw appends b verbatim, with no length prefix or other
// metadata. Used for pass-through trailing bytes whose extent is
// implied by the frame length.
func (w *Writer) WriteRaw(b []byte) { w.buf = append(w.buf, b...) }
