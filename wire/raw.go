// Copyright 2026 The Basalt Authors
// SPDX-License-Identifier: Apache-2.0

package wire

import "fmt"

// Compile-time interface checks.
var (
	_ Encodable = RawBytes(nil)
	_ Decodable = (*RawBytes)(nil)
	_ Encodable = (*BoundedRawBytes)(nil)
	_ Decodable = (*BoundedRawBytes)(nil)
)

// RawBytes is a pass-through byte sequence with no length prefix: the
// frame length is its implicit extent. On decode it consumes the
// entire remainder of the input, so it is only meaningful as the last
// field of a packet.
type RawBytes []byte

// Encode writes the bytes verbatim.
func (b RawBytes) Encode(w *Writer) error {
	w.WriteRaw(b)
	return nil
}

// Decode consumes the entire remainder of the input. The result
// aliases the Reader's buffer.
func (b *RawBytes) Decode(r *Reader) error {
	*b = r.ReadRemaining()
	return nil
}

// BoundedRawBytes is RawBytes with a runtime byte-count cap. Set Max
// before encoding or decoding; both directions reject oversized data
// before consuming or copying anything.
type BoundedRawBytes struct {
	// Max is the inclusive byte-count bound.
	Max int

	Bytes RawBytes
}

// Encode writes the bytes verbatim after checking the bound.
func (b *BoundedRawBytes) Encode(w *Writer) error {
	if len(b.Bytes) > b.Max {
		return fmt.Errorf("wire: %d raw bytes exceed maximum of %d", len(b.Bytes), b.Max)
	}
	return b.Bytes.Encode(w)
}

// Decode consumes the remainder of the input after checking that it
// does not exceed the bound.
func (b *BoundedRawBytes) Decode(r *Reader) error {
	if n := r.Remaining(); n > b.Max {
		return fmt.Errorf("wire: %d trailing bytes exceed maximum of %d", n, b.Max)
	}
	return b.Bytes.Decode(r)
}
