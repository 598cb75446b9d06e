// Copyright 2026 The Basalt Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"github.com/basalt-mc/basalt/wire"
)

// handshakePacket is a representative multi-field packet.
type handshakePacket struct {
	ProtocolVersion int32
	ServerAddress   string
	ServerPort      uint16
	NextState       int32
}

func (*handshakePacket) PacketID() int32    { return 0x00 }
func (*handshakePacket) PacketName() string { return "handshake" }

func (p *handshakePacket) Encode(w *wire.Writer) error {
	w.WriteVarInt(p.ProtocolVersion)
	if err := w.WriteStringMax(p.ServerAddress, 255); err != nil {
		return err
	}
	w.WriteUint16(p.ServerPort)
	w.WriteVarInt(p.NextState)
	return nil
}

func (p *handshakePacket) Decode(r *wire.Reader) error {
	var err error
	if p.ProtocolVersion, err = r.ReadVarInt(); err != nil {
		return err
	}
	if p.ServerAddress, err = r.ReadStringMax(255); err != nil {
		return err
	}
	if p.ServerPort, err = r.ReadUint16(); err != nil {
		return err
	}
	p.NextState, err = r.ReadVarInt()
	return err
}

// emptyPacket has ID 5 and no payload.
type emptyPacket struct{}

func (*emptyPacket) PacketID() int32           { return 5 }
func (*emptyPacket) PacketName() string        { return "empty" }
func (*emptyPacket) Encode(*wire.Writer) error { return nil }
func (*emptyPacket) Decode(*wire.Reader) error { return nil }

// blobPacket carries opaque trailing bytes, for exercising the
// compression threshold with payloads of chosen sizes.
type blobPacket struct {
	Data wire.RawBytes
}

func (*blobPacket) PacketID() int32    { return 0x20 }
func (*blobPacket) PacketName() string { return "blob" }

func (p *blobPacket) Encode(w *wire.Writer) error { return p.Data.Encode(w) }
func (p *blobPacket) Decode(r *wire.Reader) error { return p.Data.Decode(r) }

// failingPacket errors partway through encoding, after some fields
// have already been written.
type failingPacket struct{}

func (*failingPacket) PacketID() int32    { return 0x30 }
func (*failingPacket) PacketName() string { return "failing" }

func (*failingPacket) Encode(w *wire.Writer) error {
	w.WriteInt64(12345)
	return fmt.Errorf("deliberate encode failure")
}
func (*failingPacket) Decode(*wire.Reader) error { return nil }

// repeating returns n bytes of a compressible pattern.
func repeating(n int) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = byte(i % 7)
	}
	return b
}

func TestFrameRoundtripNoCompression(t *testing.T) {
	t.Parallel()

	original := &handshakePacket{
		ProtocolVersion: 767,
		ServerAddress:   "play.example.net",
		ServerPort:      25565,
		NextState:       2,
	}

	enc := NewPacketEncoder()
	if err := enc.AppendPacket(original); err != nil {
		t.Fatalf("AppendPacket: %v", err)
	}

	dec := NewPacketDecoder()
	if err := dec.QueueBytes(enc.Take()); err != nil {
		t.Fatalf("QueueBytes: %v", err)
	}
	frame, err := dec.TryNextFrame()
	if err != nil {
		t.Fatalf("TryNextFrame: %v", err)
	}
	if frame == nil {
		t.Fatal("no frame extracted from a complete buffer")
	}
	if frame.ID != original.PacketID() {
		t.Fatalf("frame ID = %d, want %d", frame.ID, original.PacketID())
	}

	var decoded handshakePacket
	if err := frame.DecodeAs(&decoded); err != nil {
		t.Fatalf("DecodeAs: %v", err)
	}
	if decoded != *original {
		t.Fatalf("roundtrip mismatch: got %+v, want %+v", decoded, original)
	}
	if dec.Buffered() != 0 {
		t.Fatalf("%d bytes left in the decoder", dec.Buffered())
	}
}

func TestEmptyPacketFrameBytes(t *testing.T) {
	t.Parallel()

	// An empty packet with ID 5 and no compression is the minimal
	// frame: length 1, then the single ID byte.
	enc := NewPacketEncoder()
	if err := enc.AppendPacket(&emptyPacket{}); err != nil {
		t.Fatalf("AppendPacket: %v", err)
	}
	got := enc.Take()
	want := []byte{0x01, 0x05}
	if !bytes.Equal(got, want) {
		t.Fatalf("frame bytes = %#v, want %#v", got, want)
	}
}

func TestFrameRoundtripCompression(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name       string
		payload    int
		compressed bool
	}{
		{"below threshold", 10, false},
		{"just below threshold", 62, false}, // 62 payload + 1 ID byte = 63 < 64
		{"at threshold", 63, true},          // 63 payload + 1 ID byte = 64
		{"well above threshold", 4096, true},
	}

	const threshold = 64

	for _, c := range cases {
		c := c
		t.Run(c.name, func(t *testing.T) {
			t.Parallel()

			original := &blobPacket{Data: repeating(c.payload)}

			enc := NewPacketEncoder()
			enc.SetCompressionThreshold(threshold)
			if err := enc.AppendPacket(original); err != nil {
				t.Fatalf("AppendPacket: %v", err)
			}
			raw := enc.Take()

			// Inspect the data-length field directly.
			r := wire.NewReader(raw)
			if _, err := r.ReadVarInt(); err != nil {
				t.Fatalf("frame length: %v", err)
			}
			dataLen, err := r.ReadVarInt()
			if err != nil {
				t.Fatalf("data length: %v", err)
			}
			if c.compressed && dataLen == 0 {
				t.Fatal("frame at/above threshold was stored uncompressed")
			}
			if !c.compressed && dataLen != 0 {
				t.Fatalf("frame below threshold has data length %d, want 0", dataLen)
			}

			dec := NewPacketDecoder()
			dec.SetCompressionThreshold(threshold)
			if err := dec.QueueBytes(raw); err != nil {
				t.Fatalf("QueueBytes: %v", err)
			}
			frame, err := dec.TryNextFrame()
			if err != nil {
				t.Fatalf("TryNextFrame: %v", err)
			}
			if frame == nil {
				t.Fatal("no frame extracted")
			}
			var decoded blobPacket
			if err := frame.DecodeAs(&decoded); err != nil {
				t.Fatalf("DecodeAs: %v", err)
			}
			if !bytes.Equal(decoded.Data, original.Data) {
				t.Fatal("payload mismatch after roundtrip")
			}
		})
	}
}

func TestAppendFrameReframes(t *testing.T) {
	t.Parallel()

	// A relay decodes frames under the upstream's compression setting
	// and re-frames them under the downstream's, without ever parsing
	// the payload.
	original := &handshakePacket{
		ProtocolVersion: 767,
		ServerAddress:   "upstream.example.net",
		ServerPort:      25565,
		NextState:       2,
	}

	upstream := NewPacketEncoder()
	upstream.SetCompressionThreshold(8)
	if err := upstream.AppendPacket(original); err != nil {
		t.Fatalf("AppendPacket: %v", err)
	}

	inbound := NewPacketDecoder()
	inbound.SetCompressionThreshold(8)
	if err := inbound.QueueBytes(upstream.Take()); err != nil {
		t.Fatalf("QueueBytes: %v", err)
	}
	frame, err := inbound.TryNextFrame()
	if err != nil || frame == nil {
		t.Fatalf("TryNextFrame: (%v, %v)", frame, err)
	}

	// Downstream has no compression negotiated.
	downstream := NewPacketEncoder()
	if err := downstream.AppendFrame(frame); err != nil {
		t.Fatalf("AppendFrame: %v", err)
	}

	outbound := NewPacketDecoder()
	if err := outbound.QueueBytes(downstream.Take()); err != nil {
		t.Fatalf("QueueBytes: %v", err)
	}
	reframed, err := outbound.TryNextFrame()
	if err != nil || reframed == nil {
		t.Fatalf("TryNextFrame after reframe: (%v, %v)", reframed, err)
	}
	var decoded handshakePacket
	if err := reframed.DecodeAs(&decoded); err != nil {
		t.Fatalf("DecodeAs: %v", err)
	}
	if decoded != *original {
		t.Fatalf("relay mismatch: got %+v, want %+v", decoded, *original)
	}
}

func TestPartialReadResilience(t *testing.T) {
	t.Parallel()

	original := &handshakePacket{
		ProtocolVersion: 767,
		ServerAddress:   "localhost",
		ServerPort:      25565,
		NextState:       1,
	}
	enc := NewPacketEncoder()
	if err := enc.AppendPacket(original); err != nil {
		t.Fatalf("AppendPacket: %v", err)
	}
	raw := append([]byte(nil), enc.Take()...)

	// Feed the frame split at every possible boundary, in chunks of
	// every size. Before the last byte arrives the decoder must
	// report "no packet yet" and never an error.
	for chunk := 1; chunk <= len(raw); chunk++ {
		dec := NewPacketDecoder()
		for off := 0; off < len(raw); off += chunk {
			end := off + chunk
			if end > len(raw) {
				end = len(raw)
			}

			if end < len(raw) {
				frame, err := dec.TryNextFrame()
				if err != nil {
					t.Fatalf("chunk %d: error on partial input: %v", chunk, err)
				}
				if frame != nil {
					t.Fatalf("chunk %d: frame produced before all bytes arrived", chunk)
				}
			}
			if err := dec.QueueBytes(raw[off:end]); err != nil {
				t.Fatalf("chunk %d: QueueBytes: %v", chunk, err)
			}
		}

		frame, err := dec.TryNextFrame()
		if err != nil {
			t.Fatalf("chunk %d: TryNextFrame: %v", chunk, err)
		}
		if frame == nil {
			t.Fatalf("chunk %d: no frame after the full input", chunk)
		}
		var decoded handshakePacket
		if err := frame.DecodeAs(&decoded); err != nil {
			t.Fatalf("chunk %d: DecodeAs: %v", chunk, err)
		}
		if decoded != *original {
			t.Fatalf("chunk %d: roundtrip mismatch", chunk)
		}
	}
}

func TestHasNextPacket(t *testing.T) {
	t.Parallel()

	enc := NewPacketEncoder()
	if err := enc.AppendPacket(&emptyPacket{}); err != nil {
		t.Fatalf("AppendPacket: %v", err)
	}
	raw := append([]byte(nil), enc.Take()...)

	dec := NewPacketDecoder()
	if ok, err := dec.HasNextPacket(); err != nil || ok {
		t.Fatalf("empty decoder: (%v, %v), want (false, nil)", ok, err)
	}
	if err := dec.QueueBytes(raw[:1]); err != nil {
		t.Fatalf("QueueBytes: %v", err)
	}
	if ok, err := dec.HasNextPacket(); err != nil || ok {
		t.Fatalf("length only: (%v, %v), want (false, nil)", ok, err)
	}
	if err := dec.QueueBytes(raw[1:]); err != nil {
		t.Fatalf("QueueBytes: %v", err)
	}
	if ok, err := dec.HasNextPacket(); err != nil || !ok {
		t.Fatalf("complete frame: (%v, %v), want (true, nil)", ok, err)
	}
}

func TestMultiplePacketsOneBuffer(t *testing.T) {
	t.Parallel()

	enc := NewPacketEncoder()
	for i := 0; i < 5; i++ {
		p := &handshakePacket{ProtocolVersion: int32(i), ServerAddress: "srv", ServerPort: uint16(i), NextState: 1}
		if err := enc.AppendPacket(p); err != nil {
			t.Fatalf("AppendPacket %d: %v", i, err)
		}
	}

	dec := NewPacketDecoder()
	if err := dec.QueueBytes(enc.Take()); err != nil {
		t.Fatalf("QueueBytes: %v", err)
	}
	for i := 0; i < 5; i++ {
		frame, err := dec.TryNextFrame()
		if err != nil {
			t.Fatalf("TryNextFrame %d: %v", i, err)
		}
		if frame == nil {
			t.Fatalf("frame %d missing", i)
		}
		var p handshakePacket
		if err := frame.DecodeAs(&p); err != nil {
			t.Fatalf("DecodeAs %d: %v", i, err)
		}
		if p.ProtocolVersion != int32(i) {
			t.Fatalf("frame %d decoded out of order: %+v", i, p)
		}
	}
	if frame, err := dec.TryNextFrame(); err != nil || frame != nil {
		t.Fatalf("drained decoder returned (%v, %v)", frame, err)
	}
}

func TestCorruptedDataLength(t *testing.T) {
	t.Parallel()

	const threshold = 32

	enc := NewPacketEncoder()
	enc.SetCompressionThreshold(threshold)
	if err := enc.AppendPacket(&blobPacket{Data: repeating(500)}); err != nil {
		t.Fatalf("AppendPacket: %v", err)
	}
	raw := append([]byte(nil), enc.Take()...)

	// The frame is [frameLen][dataLen][compressed]. 500 bytes of
	// payload plus the ID byte encodes dataLen 501 as a two-byte
	// VarInt right after the frame length; corrupt it upward.
	_, prefix, err := wire.PeekVarInt(raw)
	if err != nil || prefix == 0 {
		t.Fatalf("frame length peek: (%d, %v)", prefix, err)
	}
	corrupted := append([]byte(nil), raw...)
	corrupted[prefix] = 0xFF // declared uncompressed size now disagrees

	dec := NewPacketDecoder()
	dec.SetCompressionThreshold(threshold)
	if err := dec.QueueBytes(corrupted); err != nil {
		t.Fatalf("QueueBytes: %v", err)
	}
	if _, err := dec.TryNextFrame(); err == nil {
		t.Fatal("corrupted data length decoded without error")
	}

	// The pristine bytes still decode.
	dec = NewPacketDecoder()
	dec.SetCompressionThreshold(threshold)
	if err := dec.QueueBytes(raw); err != nil {
		t.Fatalf("QueueBytes: %v", err)
	}
	if frame, err := dec.TryNextFrame(); err != nil || frame == nil {
		t.Fatalf("pristine frame: (%v, %v)", frame, err)
	}
}

func TestEncoderRollbackOnFailure(t *testing.T) {
	t.Parallel()

	enc := NewPacketEncoder()
	if err := enc.AppendPacket(&emptyPacket{}); err != nil {
		t.Fatalf("AppendPacket: %v", err)
	}
	before := enc.Len()

	if err := enc.AppendPacket(&failingPacket{}); err == nil {
		t.Fatal("failing packet encoded without error")
	}
	if enc.Len() != before {
		t.Fatalf("buffer grew from %d to %d bytes across a failed append", before, enc.Len())
	}

	// The stream is still usable for subsequent packets.
	if err := enc.AppendPacket(&emptyPacket{}); err != nil {
		t.Fatalf("AppendPacket after failure: %v", err)
	}
	dec := NewPacketDecoder()
	if err := dec.QueueBytes(enc.Take()); err != nil {
		t.Fatalf("QueueBytes: %v", err)
	}
	for i := 0; i < 2; i++ {
		frame, err := dec.TryNextFrame()
		if err != nil || frame == nil {
			t.Fatalf("frame %d: (%v, %v)", i, frame, err)
		}
		if frame.ID != 5 {
			t.Fatalf("frame %d has ID %d, want 5", i, frame.ID)
		}
	}
}

func TestDecodeAsRejectsWrongID(t *testing.T) {
	t.Parallel()

	frame := &Frame{ID: 99, Body: nil}
	var p emptyPacket
	if err := frame.DecodeAs(&p); err == nil {
		t.Fatal("ID 99 decoded as a packet with ID 5")
	}
}

func TestDecodeAsRejectsTrailingBytes(t *testing.T) {
	t.Parallel()

	frame := &Frame{ID: 5, Body: []byte{1, 2, 3}}
	var p emptyPacket
	if err := frame.DecodeAs(&p); err == nil {
		t.Fatal("trailing bytes accepted silently")
	}
}

func TestPayloadErrorDoesNotDesyncFraming(t *testing.T) {
	t.Parallel()

	// A frame whose payload is garbage is consumed in full; the next
	// frame still parses.
	enc := NewPacketEncoder()
	enc.AppendBytes([]byte{0x03, 0x00, 0xC3, 0x28}) // ID 0, body is invalid UTF-8 for a string field
	if err := enc.AppendPacket(&emptyPacket{}); err != nil {
		t.Fatalf("AppendPacket: %v", err)
	}

	dec := NewPacketDecoder()
	if err := dec.QueueBytes(enc.Take()); err != nil {
		t.Fatalf("QueueBytes: %v", err)
	}

	frame, err := dec.TryNextFrame()
	if err != nil || frame == nil {
		t.Fatalf("first frame: (%v, %v)", frame, err)
	}
	var bad handshakePacket
	if err := frame.DecodeAs(&bad); err == nil {
		t.Fatal("garbage payload decoded without error")
	}

	frame, err = dec.TryNextFrame()
	if err != nil || frame == nil {
		t.Fatalf("second frame after payload error: (%v, %v)", frame, err)
	}
	if frame.ID != 5 {
		t.Fatalf("second frame has ID %d, want 5", frame.ID)
	}
}

func TestDecoderBufferCap(t *testing.T) {
	t.Parallel()

	dec := NewPacketDecoder()
	dec.SetMaxBufferSize(16)
	if err := dec.QueueBytes(make([]byte, 16)); err != nil {
		t.Fatalf("QueueBytes at cap: %v", err)
	}
	if err := dec.QueueBytes([]byte{0}); err == nil {
		t.Fatal("buffer grew past its cap")
	}
	if _, err := dec.FillFrom(bytes.NewReader([]byte{0})); err == nil {
		t.Fatal("FillFrom grew the buffer past its cap")
	}
}

func TestOversizedFrameLength(t *testing.T) {
	t.Parallel()

	dec := NewPacketDecoder()
	if err := dec.QueueBytes(wire.AppendVarInt(nil, wire.VarInt(MaxPacketSize+1))); err != nil {
		t.Fatalf("QueueBytes: %v", err)
	}
	if _, err := dec.TryNextFrame(); err == nil {
		t.Fatal("out-of-bounds frame length accepted")
	}

	dec = NewPacketDecoder()
	if err := dec.QueueBytes(wire.AppendVarInt(nil, wire.VarInt(-1))); err != nil {
		t.Fatalf("QueueBytes: %v", err)
	}
	if _, err := dec.TryNextFrame(); err == nil {
		t.Fatal("negative frame length accepted")
	}
}

func TestFillFrom(t *testing.T) {
	t.Parallel()

	enc := NewPacketEncoder()
	if err := enc.AppendPacket(&handshakePacket{ProtocolVersion: 1, ServerAddress: "a", NextState: 1}); err != nil {
		t.Fatalf("AppendPacket: %v", err)
	}
	src := bytes.NewReader(enc.Take())

	dec := NewPacketDecoder()
	for {
		frame, err := dec.TryNextFrame()
		if err != nil {
			t.Fatalf("TryNextFrame: %v", err)
		}
		if frame != nil {
			var p handshakePacket
			if err := frame.DecodeAs(&p); err != nil {
				t.Fatalf("DecodeAs: %v", err)
			}
			break
		}
		if _, err := dec.FillFrom(src); err != nil {
			t.Fatalf("FillFrom: %v", err)
		}
	}
}

func TestQueueBytesErrorLeavesDecoderUsable(t *testing.T) {
	t.Parallel()

	enc := NewPacketEncoder()
	if err := enc.AppendPacket(&emptyPacket{}); err != nil {
		t.Fatalf("AppendPacket: %v", err)
	}
	raw := append([]byte(nil), enc.Take()...)

	dec := NewPacketDecoder()
	dec.SetMaxBufferSize(len(raw))
	if err := dec.QueueBytes(raw); err != nil {
		t.Fatalf("QueueBytes: %v", err)
	}
	if err := dec.QueueBytes([]byte{1, 2, 3}); err == nil {
		t.Fatal("expected cap error")
	}
	// The rejected bytes were not partially applied.
	frame, err := dec.TryNextFrame()
	if err != nil || frame == nil || frame.ID != 5 {
		t.Fatalf("decoder unusable after rejected queue: (%v, %v)", frame, err)
	}
}

var errSentinel = errors.New("sentinel")

// errReader fails immediately, for exercising FillFrom's error path.
type errReader struct{}

func (errReader) Read([]byte) (int, error) { return 0, errSentinel }

func TestFillFromPropagatesReadError(t *testing.T) {
	t.Parallel()

	dec := NewPacketDecoder()
	if _, err := dec.FillFrom(errReader{}); !errors.Is(err, errSentinel) {
		t.Fatalf("got %v, want the reader's error", err)
	}
}
