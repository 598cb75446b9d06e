// Copyright 2026 The Basalt Authors
// SPDX-License-Identifier: Apache-2.0

// Package wire implements the value-level serialization rules of the
// Minecraft protocol: variable-length integers, big-endian fixed-width
// integers, length-prefixed UTF-8 strings, optional values, sequences,
// and raw trailing bytes.
//
// The package provides two halves:
//
//   - Writer and Reader, append-only and cursor-based views over a byte
//     buffer with one typed method per primitive shape.
//   - The Encodable/Decodable capability interfaces that composite
//     packet types implement field by field, plus generic helpers for
//     slices, optionals, and length-prefixed arrays.
//
// Everything a Reader hands out by reference (strings converted from
// the buffer are copies; byte slices from ReadBytes are not) borrows
// from the buffer the Reader was constructed over. Borrowed slices are
// valid only while that buffer is; callers that retain decoded bytes
// past the next buffer refill must use ReadBytesCopy.
//
// Decoding is defensive throughout: every declared length is validated
// against the bytes actually remaining before any allocation
// proportional to it, so a forged multi-gigabyte length prefix in a
// 20-byte packet costs nothing. Malformed input is reported as an
// error, never a panic.
package wire
