// Package types holds the wire protocol shared by the websocket layer and
// the hub.
//
// Client -> Server, one JSON object per text frame:
//
//	action:        { type:"action", seq, payload:{ kind, side, ... } }
//	snapshot:push: { type:"snapshot:push", payload:<document> }   player-only
//	snapshot:pull: { type:"snapshot:pull" }
//	ping:          { type:"ping" }
//
// Server -> Client:
//
//	room:hello            { room, name, role, seat }    once, to the joiner
//	room:roster           [ {id,name,role,seat}, ... ]  on membership change
//	room:spectators_full  { room }                      then the socket closes
//	state:update          { version, state }            late join, pull, mutation
//	action                { from, at, action }          relay fan-out
//	action:ack            { ok, reason?, seq }          reply to "action"
//	pong                  {}
package types

import "encoding/json"

type ClientMessage struct {
	Type    string          `json:"type"`
	Seq     int             `json:"seq,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type ServerMessage struct {
	Event string `json:"event"`
	Data  any    `json:"data,omitempty"`
}

const (
	MsgAction       = "action"
	MsgSnapshotPush = "snapshot:push"
	MsgSnapshotPull = "snapshot:pull"
	MsgPing         = "ping"
)

const (
	EvtHello          = "room:hello"
	EvtRoster         = "room:roster"
	EvtSpectatorsFull = "room:spectators_full"
	EvtStateUpdate    = "state:update"
	EvtAction         = "action"
	EvtActionAck      = "action:ack"
	EvtPong           = "pong"
	EvtError          = "error"
)

type HelloPayload struct {
	Room string `json:"room"`
	Name string `json:"name"`
	Role string `json:"role"`
	Seat string `json:"seat"`
}

type RosterEntry struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Role string `json:"role"`
	Seat string `json:"seat"`
}

type SpectatorsFullPayload struct {
	Room string `json:"room"`
}

// StateUpdatePayload carries pre-serialized document bytes. Snapshots are
// frozen before they reach an outbox, never a pointer into live state.
type StateUpdatePayload struct {
	Version int             `json:"version"`
	State   json.RawMessage `json:"state"`
}

// RelayedAction is the relay-mode fan-out: the original payload stamped with
// the sender's connection id and the server receipt time in unix millis.
type RelayedAction struct {
	From   string          `json:"from"`
	At     int64           `json:"at"`
	Action json.RawMessage `json:"action"`
}

type AckPayload struct {
	OK     bool   `json:"ok"`
	Reason string `json:"reason,omitempty"`
	Seq    int    `json:"seq,omitempty"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}
