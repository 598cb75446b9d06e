// Copyright 2026 The Basalt Authors
// SPDX-License-Identifier: Apache-2.0

package transport

import (
	"fmt"
	"log/slog"
	"net"

	"github.com/basalt-mc/basalt/codec"
)

// Compile-time interface check.
var _ codec.PacketWriter = (*PacketConn)(nil)

// PacketConn binds a net.Conn to an encoder/decoder pair, turning the
// byte stream into a frame stream. It is not safe for concurrent use;
// a connection's processing loop owns it exclusively.
//
// Mode transitions (compression threshold, encryption) apply to both
// halves and must happen at a frame boundary: after the negotiating
// packet has been flushed and before the next packet is written.
type PacketConn struct {
	conn   net.Conn
	enc    *codec.PacketEncoder
	dec    *codec.PacketDecoder
	logger *slog.Logger
}

// NewPacketConn wraps conn with a fresh encoder/decoder pair. If
// logger is nil, slog.Default() is used. The PacketConn takes
// ownership of conn; Close closes it.
func NewPacketConn(conn net.Conn, logger *slog.Logger) *PacketConn {
	if logger == nil {
		logger = slog.Default()
	}
	return &PacketConn{
		conn:   conn,
		enc:    codec.NewPacketEncoder(),
		dec:    codec.NewPacketDecoder(),
		logger: logger.With("remote", conn.RemoteAddr()),
	}
}

// ReadFrame blocks until a complete frame is available and returns it.
// The frame's body aliases the decoder's internal buffer and is valid
// until the next ReadFrame call. Read deadlines set on the underlying
// conn apply to the socket reads.
func (c *PacketConn) ReadFrame() (*codec.Frame, error) {
	for {
		frame, err := c.dec.TryNextFrame()
		if err != nil {
			return nil, fmt.Errorf("decode frame: %w", err)
		}
		if frame != nil {
			return frame, nil
		}
		if _, err := c.dec.FillFrom(c.conn); err != nil {
			// A read may return data together with its error (io.Reader
			// contract); a frame completed by those final bytes is still
			// delivered before the error surfaces.
			frame, frameErr := c.dec.TryNextFrame()
			if frameErr == nil && frame != nil {
				return frame, nil
			}
			return nil, fmt.Errorf("read from connection: %w", err)
		}
	}
}

// WritePacket appends p to the outgoing buffer. Nothing reaches the
// socket until Flush.
func (c *PacketConn) WritePacket(p codec.Packet) error {
	return c.enc.AppendPacket(p)
}

// WritePacketBytes appends an already-framed packet verbatim to the
// outgoing buffer. The caller guarantees the bytes match the encoder's
// current compression mode.
func (c *PacketConn) WritePacketBytes(b []byte) {
	c.enc.AppendBytes(b)
}

// Flush writes all buffered frames to the socket in a single write.
// A no-op when nothing is buffered.
func (c *PacketConn) Flush() error {
	if c.enc.Len() == 0 {
		return nil
	}
	if _, err := c.conn.Write(c.enc.Take()); err != nil {
		return fmt.Errorf("write to connection: %w", err)
	}
	return nil
}

// SetCompressionThreshold switches both halves to the given threshold.
// Negative disables compression. Call only at a frame boundary.
func (c *PacketConn) SetCompressionThreshold(threshold int) {
	c.enc.SetCompressionThreshold(threshold)
	c.dec.SetCompressionThreshold(threshold)
	c.logger.Debug("compression threshold set", "threshold", threshold)
}

// EnableEncryption enables AES/CFB-8 on both halves with the shared
// secret. The outgoing buffer must be flushed first; buffered incoming
// ciphertext is decrypted immediately.
func (c *PacketConn) EnableEncryption(key []byte) error {
	if err := c.enc.EnableEncryption(key); err != nil {
		return fmt.Errorf("enable encryption on encoder: %w", err)
	}
	if err := c.dec.EnableEncryption(key); err != nil {
		return fmt.Errorf("enable encryption on decoder: %w", err)
	}
	c.logger.Debug("encryption enabled")
	return nil
}

// RemoteAddr returns the remote address of the underlying connection.
func (c *PacketConn) RemoteAddr() net.Addr { return c.conn.RemoteAddr() }

// Close closes the underlying connection.
func (c *PacketConn) Close() error {
	return c.conn.Close()
}
