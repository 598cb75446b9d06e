// Copyright 2026 The Basalt Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"crypto/aes"
	"crypto/cipher"
	"fmt"
)

// The protocol encrypts the connection byte stream with AES in CFB
// mode using a 1-byte feedback register (CFB-8), keyed once per
// connection with the session key doubling as the IV. The standard
// library's CFB implementation feeds back a full 16-byte block, so the
// mode is implemented here directly on crypto/aes.

// cfb8 implements cipher.Stream for CFB with one byte of feedback.
// Separate instances must be used for the encrypt and decrypt
// directions: the keystream position advances per byte processed and
// is never reset mid-connection.
type cfb8 struct {
	block     cipher.Block
	register  []byte
	keystream []byte
	decrypt   bool
}

// newCFB8 builds a CFB-8 stream over AES with the given key. Keys of
// 16 or 32 bytes (AES-128/AES-256) are accepted; the key is also the
// IV, as the protocol's key exchange prescribes.
func newCFB8(key []byte, decrypt bool) (cipher.Stream, error) {
	switch len(key) {
	case 16, 32:
	default:
		return nil, fmt.Errorf("codec: encryption key must be 16 or 32 bytes, got %d", len(key))
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("codec: cipher init: %w", err)
	}
	register := make([]byte, block.BlockSize())
	copy(register, key[:block.BlockSize()])
	return &cfb8{
		block:     block,
		register:  register,
		keystream: make([]byte, block.BlockSize()),
		decrypt:   decrypt,
	}, nil
}

// XORKeyStream transforms src into dst, which may be the same slice.
// Each byte shifts the feedback register by one: on encrypt the
// produced ciphertext byte enters the register, on decrypt the
// consumed ciphertext byte does.
func (c *cfb8) XORKeyStream(dst, src []byte) {
	n := c.block.BlockSize()
	for i := range src {
		c.block.Encrypt(c.keystream, c.register)
		in := src[i]
		out := in ^ c.keystream[0]

		copy(c.register, c.register[1:])
		if c.decrypt {
			c.register[n-1] = in
		} else {
			c.register[n-1] = out
		}
		dst[i] = out
	}
}
