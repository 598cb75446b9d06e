// Copyright 2026 The Basalt Authors
// SPDX-License-Identifier: Apache-2.0

package wire

import (
	"errors"
	"math/bits"
)

// VarLong is the 64-bit counterpart of VarInt: the same 7-bit-group
// encoding over the raw two's-complement bit pattern of an int64.
type VarLong int64

// MaxVarLongLen is the maximum number of bytes a VarLong occupies on
// the wire.
const MaxVarLongLen = 10

// ErrVarLongTooLarge is returned when a VarLong's continuation bit is
// still set after the maximum number of bytes.
var ErrVarLongTooLarge = errors.New("wire: VarLong is too large")

// Len returns the exact number of bytes v occupies when encoded.
func (v VarLong) Len() int {
	u := uint64(v)
	if u == 0 {
		return 1
	}
	return (63-bits.LeadingZeros64(u))/7 + 1
}

// AppendVarLong appends the encoding of v to dst and returns the
// extended slice.
func AppendVarLong(dst []byte, v VarLong) []byte {
	u := uint64(v)
	for u >= 0x80 {
		dst = append(dst, byte(u)|0x80)
		u >>= 7
	}
	return append(dst, byte(u))
}

// PeekVarLong decodes a VarLong from the front of buf without
// consuming anything. The return convention matches PeekVarInt: n of 0
// with a nil error means the buffer ends mid-encoding.
func PeekVarLong(buf []byte) (v VarLong, n int, err error) {
	var u uint64
	for i := 0; i < MaxVarLongLen; i++ {
		if i >= len(buf) {
			return 0, 0, nil
		}
		b := buf[i]
		u |= uint64(b&0x7F) << (7 * i)
		if b&0x80 == 0 {
			return VarLong(u), i + 1, nil
		}
	}
	return 0, 0, ErrVarLongTooLarge
}
