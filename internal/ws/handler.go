package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mkessler-dev/cardtable-backend/internal/hub"
	"github.com/mkessler-dev/cardtable-backend/internal/types"
)

const writeTimeout = 3 * time.Second

// Handler bridges one websocket connection to the hub. Join parameters come
// from the query string: room (empty falls back to the configured default),
// name (default "anon"), role ("spec" forces spectator).
func Handler(h *hub.Hub, log *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		roomID := q.Get("room")
		name := q.Get("name")
		if name == "" {
			name = "anon"
		}
		role := q.Get("role")

		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			OriginPatterns: []string{"*"},
		})
		if err != nil {
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "bye")

		connID := uuid.New().String()
		out := make(chan types.ServerMessage, 16)
		reply := make(chan hub.JoinResult, 1)

		h.Inbox() <- hub.Join{
			RoomID: roomID,
			ConnID: connID,
			Name:   name,
			Role:   role,
			Outbox: out,
			Reply:  reply,
		}
		res := <-reply

		if !res.OK {
			// Capacity refusal: notify, then terminate. Nothing was
			// registered, so there is no Leave to send.
			writeMsg(r.Context(), conn, types.ServerMessage{
				Event: types.EvtSpectatorsFull,
				Data:  types.SpectatorsFullPayload{Room: res.Room},
			})
			conn.Close(websocket.StatusPolicyViolation, "spectators full")
			return
		}
		// A shut-down hub no longer drains its inbox; the Done guard keeps this
	// defer from stranding the handler goroutine.
	defer func() {
		select {
		case h.Inbox() <- hub.Leave{ConnID: connID}:
		case <-h.Done():
		}
	}()

		log.Debugw("connection open", "conn", connID, "room", res.Room, "seat", res.Seat)

		// Writer goroutine: drains the outbox until the hub closes it on
		// leave or shutdown.
		writeCtx, writeCancel := context.WithCancel(context.Background())
		defer writeCancel()
		go func() {
			for msg := range out {
				ctx, cancel := context.WithTimeout(writeCtx, writeTimeout)
				writeMsg(ctx, conn, msg)
				cancel()
			}
		}()

		// Reader loop.
		for {
			_, data, err := conn.Read(r.Context())
			if err != nil {
				// Clean close or dropped peer; Leave runs in the defer.
				return
			}

			var cm types.ClientMessage
			if err := json.Unmarshal(data, &cm); err != nil {
				sendLocal(out, types.ServerMessage{Event: types.EvtError, Data: types.ErrorPayload{Message: "bad json"}})
				continue
			}

			switch cm.Type {
			case types.MsgAction:
				h.Inbox() <- hub.Submit{ConnID: connID, Seq: cm.Seq, Raw: cm.Payload}
			case types.MsgSnapshotPush:
				h.Inbox() <- hub.PushDoc{ConnID: connID, Doc: cm.Payload}
			case types.MsgSnapshotPull:
				h.Inbox() <- hub.PullDoc{ConnID: connID}
			case types.MsgPing:
				sendLocal(out, types.ServerMessage{Event: types.EvtPong})
			default:
				sendLocal(out, types.ServerMessage{Event: types.EvtError, Data: types.ErrorPayload{Message: "unknown type"}})
			}
		}
	}
}

func writeMsg(ctx context.Context, conn *websocket.Conn, msg types.ServerMessage) {
	payload, err := json.Marshal(msg)
	if err != nil {
		return
	}
	_ = conn.Write(ctx, websocket.MessageText, payload)
}

// sendLocal queues a handler-originated event behind hub traffic on the same
// outbox, keeping a single writer per connection. Full outbox drops it, same
// as a broadcast.
func sendLocal(out chan types.ServerMessage, msg types.ServerMessage) {
	select {
	case out <- msg:
	default:
	}
}
