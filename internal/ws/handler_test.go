package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mkessler-dev/cardtable-backend/internal/hub"
	"github.com/mkessler-dev/cardtable-backend/internal/types"
)

type frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

func newServer(t *testing.T, opts hub.Options) *httptest.Server {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	h := hub.NewHub(ctx, opts)
	mux := http.NewServeMux()
	mux.Handle("/ws", Handler(h, zap.NewNop().Sugar()))
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func dial(t *testing.T, srv *httptest.Server, query string) *websocket.Conn {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, srv.URL+"/ws?"+query, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close(websocket.StatusNormalClosure, "test done") })
	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn) frame {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, data, err := conn.Read(ctx)
	require.NoError(t, err)

	var f frame
	require.NoError(t, json.Unmarshal(data, &f))
	return f
}

func readUntil(t *testing.T, conn *websocket.Conn, event string) frame {
	t.Helper()
	for i := 0; i < 10; i++ {
		if f := readFrame(t, conn); f.Event == event {
			return f
		}
	}
	t.Fatalf("never received %q", event)
	return frame{}
}

func send(t *testing.T, conn *websocket.Conn, msg types.ClientMessage) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	data, err := json.Marshal(msg)
	require.NoError(t, err)
	require.NoError(t, conn.Write(ctx, websocket.MessageText, data))
}

func TestHandler_JoinSequence(t *testing.T) {
	srv := newServer(t, hub.Options{})
	conn := dial(t, srv, "room=dev&name=alice")

	hello := readFrame(t, conn)
	require.Equal(t, types.EvtHello, hello.Event)
	var hp types.HelloPayload
	require.NoError(t, json.Unmarshal(hello.Data, &hp))
	assert.Equal(t, types.HelloPayload{Room: "dev", Name: "alice", Role: "player", Seat: "P1"}, hp)

	roster := readFrame(t, conn)
	assert.Equal(t, types.EvtRoster, roster.Event)

	update := readFrame(t, conn)
	assert.Equal(t, types.EvtStateUpdate, update.Event)
}

func TestHandler_ActionAckRoundTrip(t *testing.T) {
	srv := newServer(t, hub.Options{})
	conn := dial(t, srv, "room=dev")

	send(t, conn, types.ClientMessage{
		Type:    types.MsgAction,
		Seq:     3,
		Payload: json.RawMessage(`{"kind":"MOVE_TOP","from":"deck","to":"hand","side":"A"}`),
	})

	ackFrame := readUntil(t, conn, types.EvtActionAck)
	var ack types.AckPayload
	require.NoError(t, json.Unmarshal(ackFrame.Data, &ack))
	assert.Equal(t, types.AckPayload{OK: true, Seq: 3}, ack)
}

func TestHandler_Ping(t *testing.T) {
	srv := newServer(t, hub.Options{})
	conn := dial(t, srv, "")

	send(t, conn, types.ClientMessage{Type: types.MsgPing})
	readUntil(t, conn, types.EvtPong)
}

func TestHandler_SpectatorsFullCloses(t *testing.T) {
	srv := newServer(t, hub.Options{SpectatorMax: 1})

	first := dial(t, srv, "room=dev&role=spec")
	readUntil(t, first, types.EvtRoster)

	second := dial(t, srv, "room=dev&role=spec")
	full := readFrame(t, second)
	assert.Equal(t, types.EvtSpectatorsFull, full.Event)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, _, err := second.Read(ctx)
	assert.Error(t, err, "socket should be closed after the capacity notice")
}
