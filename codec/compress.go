// Copyright 2026 The Basalt Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/zlib"
)

// compressionLevel balances ratio against the per-packet CPU cost of
// deflating every frame above the threshold on a busy server.
const compressionLevel = 4

// deflater wraps a reusable zlib writer. The scratch buffer it deflates
// into is owned by the caller so encoder rollback stays simple.
type deflater struct {
	zw *zlib.Writer
}

// compress deflates data into dst (which is reset first) and returns
// the compressed bytes, which alias dst's internal buffer.
func (d *deflater) compress(dst *bytes.Buffer, data []byte) ([]byte, error) {
	dst.Reset()
	if d.zw == nil {
		zw, err := zlib.NewWriterLevel(dst, compressionLevel)
		if err != nil {
			return nil, fmt.Errorf("codec: zlib deflate: %w", err)
		}
		d.zw = zw
	} else {
		d.zw.Reset(dst)
	}
	if _, err := d.zw.Write(data); err != nil {
		return nil, fmt.Errorf("codec: zlib deflate: %w", err)
	}
	if err := d.zw.Close(); err != nil {
		return nil, fmt.Errorf("codec: zlib deflate: %w", err)
	}
	return dst.Bytes(), nil
}

// inflater wraps a reusable zlib reader.
type inflater struct {
	zr io.ReadCloser
}

// decompress inflates data into a fresh buffer of exactly
// uncompressedSize bytes. A stream that inflates to fewer or more
// bytes than declared is a hard error — the mismatch guards against
// both truncated streams and decompression bombs.
func (d *inflater) decompress(data []byte, uncompressedSize int) ([]byte, error) {
	src := bytes.NewReader(data)
	if d.zr == nil {
		zr, err := zlib.NewReader(src)
		if err != nil {
			return nil, fmt.Errorf("codec: zlib inflate: %w", err)
		}
		d.zr = zr
	} else {
		if err := d.zr.(zlib.Resetter).Reset(src, nil); err != nil {
			return nil, fmt.Errorf("codec: zlib inflate: %w", err)
		}
	}

	out := make([]byte, uncompressedSize)
	if _, err := io.ReadFull(d.zr, out); err != nil {
		return nil, fmt.Errorf("codec: decompressed data is shorter than the declared %d bytes: %w",
			uncompressedSize, err)
	}
	var trailing [1]byte
	if n, _ := d.zr.Read(trailing[:]); n != 0 {
		return nil, fmt.Errorf("codec: decompressed data is longer than the declared %d bytes",
			uncompressedSize)
	}
	return out, nil
}
