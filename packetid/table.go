// Copyright 2026 The Basalt Authors
// SPDX-License-Identifier: Apache-2.0

package packetid

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/tidwall/jsonc"
)

// Table is the flat (state, direction, name) → ID mapping for one
// protocol version, with the inverse kept alongside for decode-side
// dispatch. A Table is immutable after loading and safe for concurrent
// readers.
type Table struct {
	ids   map[tableKey]int32
	names map[idKey]string
}

type tableKey struct {
	state     State
	direction Direction
	name      string
}

type idKey struct {
	state     State
	direction Direction
	id        int32
}

// UnknownPacketError reports a packet ID with no entry in the active
// (state, direction) namespace. Receiving one is a peer protocol
// error; the caller typically disconnects.
type UnknownPacketError struct {
	State     State
	Direction Direction
	ID        int32
}

func (e *UnknownPacketError) Error() string {
	return fmt.Sprintf("packetid: unknown packet ID %#04x in state %s (%s)",
		e.ID, e.State, e.Direction)
}

// Parse loads a table from the extractor's JSONC output: a three-level
// object of state → direction → packet name → ID, with // and /* */
// comments and trailing commas permitted.
func Parse(data []byte) (*Table, error) {
	var raw map[string]map[string]map[string]int32
	if err := json.Unmarshal(jsonc.ToJSON(data), &raw); err != nil {
		return nil, fmt.Errorf("packetid: parsing table: %w", err)
	}

	t := &Table{
		ids:   make(map[tableKey]int32),
		names: make(map[idKey]string),
	}
	for stateName, directions := range raw {
		state, err := ParseState(stateName)
		if err != nil {
			return nil, err
		}
		for directionName, packets := range directions {
			direction, err := ParseDirection(directionName)
			if err != nil {
				return nil, err
			}
			for name, id := range packets {
				if id < 0 {
					return nil, fmt.Errorf("packetid: packet %s/%s/%s has negative ID %d",
						stateName, directionName, name, id)
				}
				key := tableKey{state, direction, name}
				if existing, ok := t.ids[key]; ok && existing != id {
					return nil, fmt.Errorf("packetid: packet %s/%s/%s mapped to both %d and %d",
						stateName, directionName, name, existing, id)
				}
				t.ids[key] = id
				t.names[idKey{state, direction, id}] = name
			}
		}
	}
	return t, nil
}

// ReadFile loads a table from a JSONC file on disk.
func ReadFile(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("packetid: reading table: %w", err)
	}
	return Parse(data)
}

// ID returns the wire ID for a packet name in the given namespace.
func (t *Table) ID(state State, direction Direction, name string) (int32, bool) {
	id, ok := t.ids[tableKey{state, direction, name}]
	return id, ok
}

// Name returns the packet name for a wire ID in the given namespace.
func (t *Table) Name(state State, direction Direction, id int32) (string, bool) {
	name, ok := t.names[idKey{state, direction, id}]
	return name, ok
}

// NameOf is Name with the miss turned into an UnknownPacketError,
// ready for the decode path to return as-is.
func (t *Table) NameOf(state State, direction Direction, id int32) (string, error) {
	name, ok := t.Name(state, direction, id)
	if !ok {
		return "", &UnknownPacketError{State: state, Direction: direction, ID: id}
	}
	return name, nil
}

// Len returns the number of (state, direction, name) entries.
func (t *Table) Len() int { return len(t.ids) }
