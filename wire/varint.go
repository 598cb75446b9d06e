// Copyright 2026 The Basalt Authors
// SPDX-License-Identifier: Apache-2.0

package wire

import (
	"errors"
	"math/bits"
)

// VarInt is a 32-bit signed integer that is written to the wire in
// 7-bit groups, least significant first, with the high bit of each
// byte set on every group except the last. The raw two's-complement
// bit pattern is encoded (no zig-zag), so negative values always take
// the full five bytes.
type VarInt int32

// MaxVarIntLen is the maximum number of bytes a VarInt occupies on the
// wire. A fifth byte with its continuation bit set is malformed.
const MaxVarIntLen = 5

// ErrVarIntTooLarge is returned when a VarInt's continuation bit is
// still set after the maximum number of bytes.
var ErrVarIntTooLarge = errors.New("wire: VarInt is too large")

// Len returns the exact number of bytes v occupies when encoded. It
// performs no I/O; use it to pre-size buffers and to compute frame
// lengths without encoding twice.
func (v VarInt) Len() int {
	// Treat the bit pattern as unsigned: one byte per started 7-bit
	// group. Zero still needs one byte.
	u := uint32(v)
	if u == 0 {
		return 1
	}
	return (31-bits.LeadingZeros32(u))/7 + 1
}

// AppendVarInt appends the encoding of v to dst and returns the
// extended slice.
func AppendVarInt(dst []byte, v VarInt) []byte {
	u := uint32(v)
	for u >= 0x80 {
		dst = append(dst, byte(u)|0x80)
		u >>= 7
	}
	return append(dst, byte(u))
}

// PeekVarInt decodes a VarInt from the front of buf without consuming
// anything. It returns the value and the number of bytes the encoding
// occupies. A returned n of 0 with a nil error means buf ends in the
// middle of the encoding (short input, not a failure); the caller
// should retry with more bytes. ErrVarIntTooLarge is returned when the
// continuation bit is still set after MaxVarIntLen bytes.
func PeekVarInt(buf []byte) (v VarInt, n int, err error) {
	var u uint32
	for i := 0; i < MaxVarIntLen; i++ {
		if i >= len(buf) {
			return 0, 0, nil
		}
		b := buf[i]
		u |= uint32(b&0x7F) << (7 * i)
		if b&0x80 == 0 {
			return VarInt(u), i + 1, nil
		}
	}
	return 0, 0, ErrVarIntTooLarge
}
