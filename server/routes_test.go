package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ohhell/game"
)

func newTestHTTP(t *testing.T) (*httptest.Server, *GameServer) {
	t.Helper()
	logger, _ := logtest.NewNullLogger()

	hub := NewHub(logger)
	gs := NewGameServer(hub, logger, Options{MaxPlayers: 6})
	hub.Handler = gs

	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	srv := httptest.NewServer(Router(hub, gs, NewUpgrader(nil), "", logger))
	t.Cleanup(func() {
		srv.Close()
		cancel()
	})
	return srv, gs
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) ServerMessage {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg ServerMessage
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func getJSON(t *testing.T, url string, v any) int {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	if v != nil && resp.StatusCode == http.StatusOK {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
	}
	return resp.StatusCode
}

func TestHealthz(t *testing.T) {
	srv, _ := newTestHTTP(t)

	var body map[string]bool
	assert.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/healthz", &body))
	assert.True(t, body["ok"])
}

func TestWebSocketJoinAndLeave(t *testing.T) {
	srv, gs := newTestHTTP(t)

	alice := dial(t, srv)
	require.NoError(t, alice.WriteJSON(ClientMessage{Type: MsgJoinGame, SessionID: "table-1", PlayerName: "Alice"}))

	msg := readMessage(t, alice)
	assert.Equal(t, MsgRosterUpdated, msg.Type)
	assert.Equal(t, "table-1", msg.SessionID)
	require.Len(t, msg.Players, 1)
	assert.Equal(t, "Alice", msg.Players[0].Name)

	bob := dial(t, srv)
	require.NoError(t, bob.WriteJSON(ClientMessage{Type: MsgJoinGame, SessionID: "table-1", PlayerName: "Bob"}))
	msg = readMessage(t, alice)
	require.Len(t, msg.Players, 2)
	readMessage(t, bob)

	var snap game.Snapshot
	require.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/api/sessions/table-1", &snap))
	assert.Equal(t, game.PhaseLobby, snap.Phase)
	assert.Len(t, snap.Players, 2)

	var list []game.Snapshot
	require.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/api/sessions", &list))
	assert.Len(t, list, 1)

	assert.Equal(t, http.StatusNotFound, getJSON(t, srv.URL+"/api/sessions/nope", nil))

	require.NoError(t, bob.Close())
	msg = readMessage(t, alice)
	assert.Equal(t, MsgRosterUpdated, msg.Type)
	require.Len(t, msg.Players, 1)
	assert.Equal(t, "Alice", msg.Players[0].Name)

	require.NoError(t, alice.Close())
	assert.Eventually(t, func() bool {
		return len(gs.Sessions()) == 0
	}, 2*time.Second, 10*time.Millisecond)
}

func TestWebSocketMalformedMessage(t *testing.T) {
	srv, _ := newTestHTTP(t)

	conn := dial(t, srv)
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("{not json")))

	msg := readMessage(t, conn)
	assert.Equal(t, MsgError, msg.Type)
	require.NotNil(t, msg.Error)
	assert.Equal(t, "bad_message", msg.Error.Code)
}

func TestNewUpgraderOrigins(t *testing.T) {
	up := NewUpgrader([]string{"https://cards.example"})

	r := httptest.NewRequest(http.MethodGet, "/ws", nil)
	r.Header.Set("Origin", "https://cards.example")
	assert.True(t, up.CheckOrigin(r))

	r.Header.Set("Origin", "https://evil.example")
	assert.False(t, up.CheckOrigin(r))

	assert.True(t, NewUpgrader(nil).CheckOrigin(r))
}

func TestWriteJSONLogsEncodeFailure(t *testing.T) {
	logger, hook := logtest.NewNullLogger()

	w := httptest.NewRecorder()
	writeJSON(w, logger, http.StatusOK, map[string]any{"ok": true})
	assert.JSONEq(t, `{"ok":true}`, w.Body.String())
	assert.Empty(t, hook.AllEntries())

	w = httptest.NewRecorder()
	writeJSON(w, logger, http.StatusOK, map[string]any{"ch": make(chan int)})
	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.ErrorLevel, entry.Level)
	assert.Equal(t, "encode response", entry.Message)
}
