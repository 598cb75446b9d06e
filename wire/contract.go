// Copyright 2026 The Basalt Authors
// SPDX-License-Identifier: Apache-2.0

package wire

import (
	"fmt"
	"io"
)

// Encodable is the capability every packet field type implements on
// the write side. Composite packet types encode by calling their
// fields' typed Writer methods or Encode implementations in
// declaration order; the codec layer never needs to know what the
// fields mean.
type Encodable interface {
	Encode(w *Writer) error
}

// Decodable is the write side's inverse, implemented on a pointer
// receiver. Decode may borrow byte slices from the Reader's buffer.
type Decodable interface {
	Decode(r *Reader) error
}

// decodablePtr constrains PT to "pointer to T that implements
// Decodable", letting the generic decode helpers construct elements
// without reflection.
type decodablePtr[T any] interface {
	*T
	Decodable
}

// EncodeSlice writes a VarInt element-count prefix followed by each
// element in order.
func EncodeSlice[T Encodable](w *Writer, items []T) error {
	w.WriteVarInt(int32(len(items)))
	for i := range items {
		if err := items[i].Encode(w); err != nil {
			return fmt.Errorf("wire: element %d: %w", i, err)
		}
	}
	return nil
}

// DecodeSlice reads a VarInt element-count prefix and then that many
// elements. A declared count above maxLen is rejected before any
// element is decoded, and the initial allocation is capped by the
// bytes actually remaining (every element takes at least one byte), so
// an adversarial count cannot force a large allocation.
func DecodeSlice[T any, PT decodablePtr[T]](r *Reader, maxLen int) ([]T, error) {
	n, err := r.ReadVarInt()
	if err != nil {
		return nil, fmt.Errorf("wire: sequence length prefix: %w", err)
	}
	if n < 0 {
		return nil, fmt.Errorf("wire: negative sequence length %d", n)
	}
	if int(n) > maxLen {
		return nil, fmt.Errorf("wire: declared sequence length %d exceeds maximum of %d", n, maxLen)
	}
	items := make([]T, 0, cautiousCapacity(int(n), r.Remaining()))
	for i := 0; i < int(n); i++ {
		var item T
		if err := PT(&item).Decode(r); err != nil {
			return nil, fmt.Errorf("wire: element %d: %w", i, err)
		}
		items = append(items, item)
	}
	return items, nil
}

// EncodeOption writes a presence boolean and, when v is non-nil, the
// value itself.
func EncodeOption[T Encodable](w *Writer, v *T) error {
	w.WriteBool(v != nil)
	if v == nil {
		return nil
	}
	return (*v).Encode(w)
}

// DecodeOption reads a presence boolean and, when set, the value.
// Absent values decode to nil.
func DecodeOption[T any, PT decodablePtr[T]](r *Reader) (*T, error) {
	present, err := r.ReadBool()
	if err != nil {
		return nil, fmt.Errorf("wire: option marker: %w", err)
	}
	if !present {
		return nil, nil
	}
	var v T
	if err := PT(&v).Decode(r); err != nil {
		return nil, err
	}
	return &v, nil
}

// EncodeLengthPrefixedArray writes a fixed-size array that the wire
// format nevertheless gives an explicit VarInt length prefix. The
// prefix always equals length, and a slice of any other size is an
// encode error.
func EncodeLengthPrefixedArray[T Encodable](w *Writer, items []T, length int) error {
	if len(items) != length {
		return fmt.Errorf("wire: array has %d elements, expected exactly %d", len(items), length)
	}
	return EncodeSlice(w, items)
}

// DecodeLengthPrefixedArray reads a VarInt length prefix that must
// equal length exactly, then that many elements. A mismatched prefix
// is a hard error, not a resize.
func DecodeLengthPrefixedArray[T any, PT decodablePtr[T]](r *Reader, length int) ([]T, error) {
	n, err := r.ReadVarInt()
	if err != nil {
		return nil, fmt.Errorf("wire: array length prefix: %w", err)
	}
	if int(n) != length {
		return nil, fmt.Errorf("wire: unexpected array length %d, expected exactly %d", n, length)
	}
	if length > r.Remaining() {
		return nil, io.ErrUnexpectedEOF
	}
	items := make([]T, 0, length)
	for i := 0; i < length; i++ {
		var item T
		if err := PT(&item).Decode(r); err != nil {
			return nil, fmt.Errorf("wire: element %d: %w", i, err)
		}
		items = append(items, item)
	}
	return items, nil
}

// cautiousCapacity bounds an initial allocation by what the input can
// actually hold: the declared count is trusted only up to one byte per
// element of remaining input.
func cautiousCapacity(declared, remaining int) int {
	if declared > remaining {
		return remaining
	}
	return declared
}
