package room

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/mkessler-dev/cardtable-backend/internal/game"
)

type Role string

const (
	RolePlayer    Role = "player"
	RoleSpectator Role = "spectator"
)

// RoleSpec is the join-parameter value that forces a spectator seat.
const RoleSpec = "spec"

type Mode string

const (
	ModeAuthoritative Mode = "authoritative"
	ModeRelay         Mode = "relay"
)

const maxPlayers = 2

// Participant is one live connection's identity within a room. Role and seat
// are fixed at join time.
type Participant struct {
	ID   string
	Name string
	Role Role
	Seat string
}

// Room is a single session: roster, document, version counter. It carries no
// locking; the hub goroutine is its only owner.
type Room struct {
	ID     string
	Mode   Mode
	Roster map[string]*Participant

	// State is the authoritative document; Raw is the relay-mode document,
	// last writer wins. Only one of the two is ever in use.
	State   *game.State
	Raw     json.RawMessage
	Version int

	nextSpectatorSeq int
}

func New(id string, mode Mode) *Room {
	r := &Room{
		ID:               id,
		Mode:             mode,
		Roster:           map[string]*Participant{},
		nextSpectatorSeq: 1,
	}
	if mode == ModeAuthoritative {
		r.State = game.NewState()
	}
	return r
}

// Assign decides the role and seat a joiner would receive, given the current
// roster. Pure: nothing is committed until Join. Safe only because the hub
// processes joins one at a time.
func (r *Room) Assign(requested string) (Role, string) {
	if requested == RoleSpec || r.PlayerCount() >= maxPlayers {
		return RoleSpectator, fmt.Sprintf("SPEC%d", r.nextSpectatorSeq)
	}
	if !r.seatTaken("P1") {
		return RolePlayer, "P1"
	}
	return RolePlayer, "P2"
}

// Join commits a participant to the roster with the seat Assign picks.
// Spectator sequence numbers advance and are never reused, even after the
// spectator leaves.
func (r *Room) Join(id, name, requested string) *Participant {
	role, seat := r.Assign(requested)
	if role == RoleSpectator {
		r.nextSpectatorSeq++
	}
	p := &Participant{ID: id, Name: name, Role: role, Seat: seat}
	r.Roster[id] = p
	return p
}

func (r *Room) Remove(id string) {
	delete(r.Roster, id)
}

func (r *Room) Empty() bool { return len(r.Roster) == 0 }

func (r *Room) PlayerCount() int {
	n := 0
	for _, p := range r.Roster {
		if p.Role == RolePlayer {
			n++
		}
	}
	return n
}

func (r *Room) SpectatorCount() int {
	return len(r.Roster) - r.PlayerCount()
}

func (r *Room) seatTaken(seat string) bool {
	for _, p := range r.Roster {
		if p.Role == RolePlayer && p.Seat == seat {
			return true
		}
	}
	return false
}

// Entries returns the roster in a stable order: players first by seat, then
// spectators in seat-number order. Wire output should not depend on map
// iteration.
func (r *Room) Entries() []*Participant {
	out := make([]*Participant, 0, len(r.Roster))
	for _, p := range r.Roster {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Role != b.Role {
			return a.Role == RolePlayer
		}
		if len(a.Seat) != len(b.Seat) {
			return len(a.Seat) < len(b.Seat)
		}
		return a.Seat < b.Seat
	})
	return out
}

// Snapshot serializes the room's current document for transmission, and
// reports whether one exists. Authoritative rooms always hold one; relay rooms
// only after a player has published. The bytes are detached from the live
// state; nothing that leaves the hub loop may alias it.
func (r *Room) Snapshot() (json.RawMessage, bool) {
	if r.Mode == ModeRelay {
		if r.Raw == nil {
			return nil, false
		}
		return r.Raw, true
	}
	doc, err := json.Marshal(r.State)
	if err != nil {
		return nil, false
	}
	return doc, true
}
