// Copyright 2026 The Basalt Authors
// SPDX-License-Identifier: Apache-2.0

// Package packetid maps packet names to wire IDs and back.
//
// The ID space of the Minecraft protocol is namespaced twice: by the
// connection's protocol state (handshaking, status, login,
// configuration, play) and by direction (serverbound, clientbound).
// The same small integer identifies unrelated packets in different
// namespaces, so every lookup carries both.
//
// The table itself is mechanical data produced offline by the
// protocol extractor from the game's own registries, one JSONC file
// per protocol version. This package only loads and queries it; no
// behavior beyond lookup lives here.
package packetid
