// Copyright 2026 The Basalt Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/spf13/pflag"

	"github.com/basalt-mc/basalt/transport"
	"github.com/basalt-mc/basalt/wire"
)

// nextStateStatus is the handshake next-state value that moves the
// connection into the status state.
const nextStateStatus = 1

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var address string
	var protocolVersion int32
	var timeout time.Duration
	var verbose bool

	flagSet := pflag.NewFlagSet("basalt-ping", pflag.ContinueOnError)
	flagSet.StringVar(&address, "address", "localhost:25565", "server address (host:port)")
	flagSet.Int32Var(&protocolVersion, "protocol", 772, "protocol version to announce in the handshake")
	flagSet.DurationVar(&timeout, "timeout", 5*time.Second, "overall deadline for the exchange")
	flagSet.BoolVarP(&verbose, "verbose", "v", false, "log connection details to stderr")
	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			return nil
		}
		return err
	}

	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	host, portString, err := net.SplitHostPort(address)
	if err != nil {
		return fmt.Errorf("parsing address %q: %w", address, err)
	}
	port, err := strconv.ParseUint(portString, 10, 16)
	if err != nil {
		return fmt.Errorf("parsing port %q: %w", portString, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	dialer := &transport.TCPDialer{}
	conn, err := dialer.DialContext(ctx, address)
	if err != nil {
		return fmt.Errorf("connecting to %s: %w", address, err)
	}
	pc := transport.NewPacketConn(conn, logger)
	defer pc.Close()
	conn.SetDeadline(time.Now().Add(timeout))

	if err := pc.WritePacket(&handshake{
		ProtocolVersion: protocolVersion,
		ServerAddress:   host,
		ServerPort:      uint16(port),
		NextState:       nextStateStatus,
	}); err != nil {
		return fmt.Errorf("encoding handshake: %w", err)
	}
	if err := pc.WritePacket(&statusRequest{}); err != nil {
		return fmt.Errorf("encoding status request: %w", err)
	}
	if err := pc.Flush(); err != nil {
		return err
	}

	frame, err := pc.ReadFrame()
	if err != nil {
		return fmt.Errorf("waiting for status response: %w", err)
	}
	var status statusResponse
	if err := frame.DecodeAs(&status); err != nil {
		return err
	}
	fmt.Println(status.JSON)

	// Ping/pong for round-trip latency. The payload is opaque to the
	// server; it must come back unchanged.
	start := time.Now()
	if err := pc.WritePacket(&pingRequest{Payload: start.UnixMilli()}); err != nil {
		return fmt.Errorf("encoding ping: %w", err)
	}
	if err := pc.Flush(); err != nil {
		return err
	}
	frame, err = pc.ReadFrame()
	if err != nil {
		return fmt.Errorf("waiting for pong: %w", err)
	}
	var pong pongResponse
	if err := frame.DecodeAs(&pong); err != nil {
		return err
	}
	if pong.Payload != start.UnixMilli() {
		logger.Warn("pong payload mismatch", "sent", start.UnixMilli(), "received", pong.Payload)
	}
	fmt.Fprintf(os.Stderr, "ping %s: %v\n", address, time.Since(start).Round(time.Millisecond))
	return nil
}

// handshake is the first serverbound packet on every connection. The
// address and port echo what the client dialed; proxies rewrite them.
type handshake struct {
	ProtocolVersion int32
	ServerAddress   string
	ServerPort      uint16
	NextState       int32
}

func (p *handshake) PacketID() int32    { return 0x00 }
func (p *handshake) PacketName() string { return "handshake" }

func (p *handshake) Encode(w *wire.Writer) error {
	w.WriteVarInt(p.ProtocolVersion)
	if err := w.WriteStringMax(p.ServerAddress, 255); err != nil {
		return err
	}
	w.WriteUint16(p.ServerPort)
	w.WriteVarInt(p.NextState)
	return nil
}

func (p *handshake) Decode(r *wire.Reader) error {
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

// statusRequest is the empty serverbound packet soliciting the status
// document.
type statusRequest struct{}

func (p *statusRequest) PacketID() int32             { return 0x00 }
func (p *statusRequest) PacketName() string          { return "status_request" }
func (p *statusRequest) Encode(w *wire.Writer) error { return nil }
func (p *statusRequest) Decode(r *wire.Reader) error { return nil }

// statusResponse carries the server's status document as a JSON string.
type statusResponse struct {
	JSON string
}

func (p *statusResponse) PacketID() int32    { return 0x00 }
func (p *statusResponse) PacketName() string { return "status_response" }

func (p *statusResponse) Encode(w *wire.Writer) error {
	return w.WriteString(p.JSON)
}

func (p *statusResponse) Decode(r *wire.Reader) error {
	var err error
	p.JSON, err = r.ReadString()
	return err
}

// pingRequest and pongResponse carry an opaque int64 the server echoes
// back, used here for latency measurement.
type pingRequest struct {
	Payload int64
}

func (p *pingRequest) PacketID() int32    { return 0x01 }
func (p *pingRequest) PacketName() string { return "ping_request" }

func (p *pingRequest) Encode(w *wire.Writer) error {
	w.WriteInt64(p.Payload)
	return nil
}

func (p *pingRequest) Decode(r *wire.Reader) error {
	var err error
	p.Payload, err = r.ReadInt64()
	return err
}

type pongResponse struct {
	Payload int64
}

func (p *pongResponse) PacketID() int32    { return 0x01 }
func (p *pongResponse) PacketName() string { return "pong_response" }

func (p *pongResponse) Encode(w *wire.Writer) error {
	w.WriteInt64(p.Payload)
	return nil
}

func (p *pongResponse) Decode(r *wire.Reader) error {
	var err error
	p.Payload, err = r.ReadInt64()
	return err
}
