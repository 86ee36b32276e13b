package hub

import (
	"context"
	"encoding/json"
	"math/rand"
	"time"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/mkessler-dev/cardtable-backend/internal/game"
	"github.com/mkessler-dev/cardtable-backend/internal/room"
	"github.com/mkessler-dev/cardtable-backend/internal/types"
)

type HubMsg interface{ isHubMsg() }

// Join registers a connection in a room. The hub answers on Reply, and on
// success delivers room:hello, the roster, and any existing document through
// Outbox.
type Join struct {
	RoomID string
	ConnID string
	Name   string
	Role   string // room.RoleSpec forces spectator
	Outbox chan types.ServerMessage
	Reply  chan JoinResult
}

type Leave struct{ ConnID string }

// Submit is one inbound action from a connection, raw off the wire.
type Submit struct {
	ConnID string
	Seq    int
	Raw    json.RawMessage
}

// PushDoc is the relay-mode explicit publish of a full document.
type PushDoc struct {
	ConnID string
	Doc    json.RawMessage
}

// PullDoc asks for re-delivery of the current document to one connection.
type PullDoc struct{ ConnID string }

// GetRoom reflects a room's internals without data races. Test-only.
type GetRoom struct {
	RoomID string
	Reply  chan RoomView
}

// SeedDoc replaces a room's authoritative document. Test-only.
type SeedDoc struct {
	RoomID string
	State  *game.State
}

type ShutdownHub struct{}

func (Join) isHubMsg()        {}
func (Leave) isHubMsg()       {}
func (Submit) isHubMsg()      {}
func (PushDoc) isHubMsg()     {}
func (PullDoc) isHubMsg()     {}
func (GetRoom) isHubMsg()     {}
func (SeedDoc) isHubMsg()     {}
func (ShutdownHub) isHubMsg() {}

type JoinResult struct {
	OK   bool
	Room string
	Role room.Role
	Seat string
}

type RoomView struct {
	Exists     bool
	Version    int
	RosterSize int
	Players    int
	Spectators int
	State      *game.State
}

// DenySpectator is the ack reason when a non-player tries to mutate.
const DenySpectator = "spectator"

type Options struct {
	Mode         room.Mode
	SpectatorMax int // 0 means unbounded
	DefaultRoom  string
	Rng          *rand.Rand
	Log          *zap.SugaredLogger
}

type member struct {
	roomID string
	outbox chan types.ServerMessage
}

// Hub is the single event-processing actor. It owns the room table and every
// room in it; joins, leaves, actions, pushes and pulls for all rooms run one
// at a time through its inbox. That ordering is what makes seat assignment
// race-free without locks.
type Hub struct {
	inbox   chan HubMsg
	rooms   map[string]*room.Room
	members map[string]member

	mode        room.Mode
	specMax     int
	defaultRoom string
	rng         *rand.Rand
	log         *zap.SugaredLogger

	ctx    context.Context
	cancel context.CancelFunc
}

func NewHub(parent context.Context, opts Options) *Hub {
	ctx, cancel := context.WithCancel(parent)

	if opts.Mode == "" {
		opts.Mode = room.ModeAuthoritative
	}
	if opts.DefaultRoom == "" {
		opts.DefaultRoom = "main"
	}
	if opts.Rng == nil {
		opts.Rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if opts.Log == nil {
		opts.Log = zap.NewNop().Sugar()
	}

	h := &Hub{
		inbox:       make(chan HubMsg, 64),
		rooms:       make(map[string]*room.Room),
		members:     make(map[string]member),
		mode:        opts.Mode,
		specMax:     opts.SpectatorMax,
		defaultRoom: opts.DefaultRoom,
		rng:         opts.Rng,
		log:         opts.Log,
		ctx:         ctx,
		cancel:      cancel,
	}
	go h.loop()
	return h
}

func (h *Hub) Inbox() chan<- HubMsg { return h.inbox }

// Done closes once the hub has shut down and the inbox is no longer drained.
// Senders select on it so a shutdown never strands them mid-send.
func (h *Hub) Done() <-chan struct{} { return h.ctx.Done() }

func (h *Hub) loop() {
	for {
		select {
		case <-h.ctx.Done():
			h.shutdown()
			return

		case m := <-h.inbox:
			switch msg := m.(type) {
			case Join:
				h.handleJoin(msg)
			case Leave:
				h.handleLeave(msg)
			case Submit:
				h.handleSubmit(msg)
			case PushDoc:
				h.handlePush(msg)
			case PullDoc:
				h.handlePull(msg)
			case GetRoom:
				h.handleGetRoom(msg)
			case SeedDoc:
				h.handleSeedDoc(msg)
			case ShutdownHub:
				h.shutdown()
				return
			}
		}
	}
}

func (h *Hub) handleJoin(msg Join) {
	roomID := msg.RoomID
	if roomID == "" {
		roomID = h.defaultRoom
	}

	rm := h.rooms[roomID]
	created := false
	if rm == nil {
		rm = room.New(roomID, h.mode)
		h.rooms[roomID] = rm
		created = true
		h.log.Infow("room created", "room", roomID, "mode", h.mode)
	}

	// Capacity check before anything is committed: a refused spectator is
	// never registered.
	if wouldRole, _ := rm.Assign(msg.Role); wouldRole == room.RoleSpectator &&
		h.specMax > 0 && rm.SpectatorCount() >= h.specMax {
		if created {
			delete(h.rooms, roomID)
		}
		msg.Reply <- JoinResult{OK: false, Room: roomID}
		return
	}

	p := rm.Join(msg.ConnID, msg.Name, msg.Role)
	h.members[msg.ConnID] = member{roomID: roomID, outbox: msg.Outbox}
	msg.Reply <- JoinResult{OK: true, Room: roomID, Role: p.Role, Seat: p.Seat}

	h.send(msg.ConnID, types.ServerMessage{Event: types.EvtHello, Data: types.HelloPayload{
		Room: roomID, Name: p.Name, Role: string(p.Role), Seat: p.Seat,
	}})
	h.broadcastRoster(rm)

	// Late-join catch-up: the current document goes to the newcomer only,
	// without touching the version.
	if doc, ok := rm.Snapshot(); ok {
		h.send(msg.ConnID, types.ServerMessage{Event: types.EvtStateUpdate, Data: types.StateUpdatePayload{
			Version: rm.Version, State: doc,
		}})
	}

	h.log.Infow("joined", "room", roomID, "conn", msg.ConnID, "role", p.Role, "seat", p.Seat)
}

func (h *Hub) handleLeave(msg Leave) {
	mb, ok := h.members[msg.ConnID]
	if !ok {
		return // already cleaned up
	}
	delete(h.members, msg.ConnID)

	rm := h.rooms[mb.roomID]
	if rm != nil {
		rm.Remove(msg.ConnID)
		if rm.Empty() {
			delete(h.rooms, mb.roomID)
			h.log.Infow("room removed", "room", mb.roomID)
		} else {
			h.broadcastRoster(rm)
		}
	}

	close(mb.outbox)
}

func (h *Hub) handleSubmit(msg Submit) {
	rm, p := h.participant(msg.ConnID)
	if rm == nil || p == nil {
		return
	}
	if p.Role != room.RolePlayer {
		h.send(msg.ConnID, ack(types.AckPayload{OK: false, Reason: DenySpectator, Seq: msg.Seq}))
		return
	}

	switch rm.Mode {
	case room.ModeRelay:
		relayed := types.ServerMessage{Event: types.EvtAction, Data: types.RelayedAction{
			From:   msg.ConnID,
			At:     time.Now().UnixMilli(),
			Action: msg.Raw,
		}}
		for id := range rm.Roster {
			if id != msg.ConnID {
				h.send(id, relayed)
			}
		}

	default: // authoritative
		a := game.DecodeAction(msg.Raw)
		game.Apply(rm.State, a, h.rng)
		// Every accepted action advances the version, no-ops included.
		rm.Version++
		h.broadcastState(rm)
	}

	h.send(msg.ConnID, ack(types.AckPayload{OK: true, Seq: msg.Seq}))
}

func (h *Hub) handlePush(msg PushDoc) {
	rm, p := h.participant(msg.ConnID)
	if rm == nil || p == nil || p.Role != room.RolePlayer || rm.Mode != room.ModeRelay {
		// Spectator pushes and pushes into authoritative rooms are dropped
		// without a reply.
		return
	}

	rm.Raw = msg.Doc
	rm.Version++

	update := types.ServerMessage{Event: types.EvtStateUpdate, Data: types.StateUpdatePayload{
		Version: rm.Version, State: msg.Doc,
	}}
	for id := range rm.Roster {
		if id != msg.ConnID {
			h.send(id, update)
		}
	}
}

func (h *Hub) handlePull(msg PullDoc) {
	rm, _ := h.participant(msg.ConnID)
	if rm == nil {
		return
	}
	if doc, ok := rm.Snapshot(); ok {
		h.send(msg.ConnID, types.ServerMessage{Event: types.EvtStateUpdate, Data: types.StateUpdatePayload{
			Version: rm.Version, State: doc,
		}})
	}
}

func (h *Hub) handleGetRoom(msg GetRoom) {
	rm := h.rooms[msg.RoomID]
	if rm == nil {
		msg.Reply <- RoomView{}
		return
	}
	msg.Reply <- RoomView{
		Exists:     true,
		Version:    rm.Version,
		RosterSize: len(rm.Roster),
		Players:    rm.PlayerCount(),
		Spectators: rm.SpectatorCount(),
		State:      rm.State,
	}
}

func (h *Hub) handleSeedDoc(msg SeedDoc) {
	if rm := h.rooms[msg.RoomID]; rm != nil && rm.Mode == room.ModeAuthoritative {
		rm.State = msg.State
	}
}

func (h *Hub) participant(connID string) (*room.Room, *room.Participant) {
	mb, ok := h.members[connID]
	if !ok {
		return nil, nil
	}
	rm := h.rooms[mb.roomID]
	if rm == nil {
		return nil, nil
	}
	return rm, rm.Roster[connID]
}

func (h *Hub) broadcastRoster(rm *room.Room) {
	entries := lo.Map(rm.Entries(), func(p *room.Participant, _ int) types.RosterEntry {
		return types.RosterEntry{ID: p.ID, Name: p.Name, Role: string(p.Role), Seat: p.Seat}
	})
	h.broadcast(rm, types.ServerMessage{Event: types.EvtRoster, Data: entries})
}

// broadcastState serializes the document once, inside the loop, so the bytes
// every outbox receives are frozen at the version they are labeled with.
func (h *Hub) broadcastState(rm *room.Room) {
	doc, ok := rm.Snapshot()
	if !ok {
		return
	}
	h.broadcast(rm, types.ServerMessage{Event: types.EvtStateUpdate, Data: types.StateUpdatePayload{
		Version: rm.Version, State: doc,
	}})
}

func (h *Hub) broadcast(rm *room.Room, msg types.ServerMessage) {
	for id := range rm.Roster {
		h.send(id, msg)
	}
}

// send is fire-and-forget: a full outbox loses the event rather than blocking
// the loop. A client that missed a broadcast recovers with snapshot:pull.
func (h *Hub) send(connID string, msg types.ServerMessage) {
	mb, ok := h.members[connID]
	if !ok {
		return
	}
	select {
	case mb.outbox <- msg:
	default:
		h.log.Debugw("outbox full, dropping event", "conn", connID, "event", msg.Event)
	}
}

func ack(p types.AckPayload) types.ServerMessage {
	return types.ServerMessage{Event: types.EvtActionAck, Data: p}
}

func (h *Hub) shutdown() {
	for id, mb := range h.members {
		close(mb.outbox)
		delete(h.members, id)
	}
	clear(h.rooms)
	h.cancel()
}
