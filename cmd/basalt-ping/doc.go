// Copyright 2026 The Basalt Authors
// SPDX-License-Identifier: Apache-2.0

// basalt-ping performs a server list ping against a Minecraft-compatible
// server: it opens a TCP connection, sends a handshake targeting the
// status state, requests the status document, and measures round-trip
// latency with a ping/pong exchange.
//
// The status JSON is printed to stdout; latency and connection details
// go to stderr. Exit code 0 means the server answered, 1 means it did
// not.
package main
