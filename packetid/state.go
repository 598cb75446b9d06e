// Copyright 2026 The Basalt Authors
// SPDX-License-Identifier: Apache-2.0

package packetid

import "fmt"

// State is the coarse protocol phase of a connection. The phase
// determines which packet-ID namespace is active. Transitions are
// connection-scoped and owned by the caller: handshaking leads to
// exactly one of status or login, login may lead to configuration,
// and configuration and play may alternate for reconfiguration. The
// codec is parameterized by the current state at each call and never
// enforces the transition graph itself.
type State uint8

const (
	Handshaking State = iota
	Status
	Login
	Configuration
	Play
)

// String returns the state's name as it appears in protocol tables.
func (s State) String() string {
	switch s {
	case Handshaking:
		return "handshaking"
	case Status:
		return "status"
	case Login:
		return "login"
	case Configuration:
		return "configuration"
	case Play:
		return "play"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(s))
	}
}

// ParseState parses a state from its table name.
func ParseState(name string) (State, error) {
	switch name {
	case "handshaking":
		return Handshaking, nil
	case "status":
		return Status, nil
	case "login":
		return Login, nil
	case "configuration":
		return Configuration, nil
	case "play":
		return Play, nil
	default:
		return 0, fmt.Errorf("packetid: unknown protocol state %q", name)
	}
}

// Direction distinguishes the two halves of the connection's ID
// namespace.
type Direction uint8

const (
	// Serverbound packets travel client to server.
	Serverbound Direction = iota
	// Clientbound packets travel server to client.
	Clientbound
)

// String returns the direction's name as it appears in protocol
// tables.
func (d Direction) String() string {
	switch d {
	case Serverbound:
		return "serverbound"
	case Clientbound:
		return "clientbound"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(d))
	}
}

// ParseDirection parses a direction from its table name.
func ParseDirection(name string) (Direction, error) {
	switch name {
	case "serverbound":
		return Serverbound, nil
	case "clientbound":
		return Clientbound, nil
	default:
		return 0, fmt.Errorf("packetid: unknown direction %q", name)
	}
}
