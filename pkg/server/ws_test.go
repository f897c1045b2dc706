package server

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
)

func wsURL(httpURL, path string) string {
	return "ws" + strings.TrimPrefix(httpURL, "http") + path
}

func dialWithAuth(t *testing.T, base, path, token string) *websocket.Conn {
	t.Helper()
	header := make(map[string][]string)
	if token != "" {
		header["Authorization"] = []string{"Bearer " + token}
	}
	conn, _, err := websocket.DefaultDialer.Dial(wsURL(base, path), header)
	require.NoError(t, err)
	return conn
}

func TestWebSocketRejectsMissingAuthWithCloseCode(t *testing.T) {
	s := newTestServer(t)
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	conn := dialWithAuth(t, ts.URL, "/ws/game/t1/", "")
	defer conn.Close()

	_, _, err := conn.ReadMessage()
	require.True(t, websocket.IsCloseError(err, closeAuthFailed))
}

func TestWebSocketRejectsUnknownTableWithCloseCode(t *testing.T) {
	s := newTestServer(t)
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	conn := dialWithAuth(t, ts.URL, "/ws/game/missing/", "alice")
	defer conn.Close()

	_, _, err := conn.ReadMessage()
	require.True(t, websocket.IsCloseError(err, closeNotFound))
}

func TestWebSocketRejectsNonMemberWithCloseCode(t *testing.T) {
	s := newTestServer(t)
	doJSON(t, s, "POST", "/tables", "host", map[string]interface{}{
		"id": "t1", "min_players": 2, "max_players": 2, "small_blind": 1, "big_blind": 2,
		"min_buy_in": 10, "max_buy_in": 500,
	})
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	conn := dialWithAuth(t, ts.URL, "/ws/game/t1/", "outsider")
	defer conn.Close()

	_, _, err := conn.ReadMessage()
	require.True(t, websocket.IsCloseError(err, closeForbidden))
}

func TestWebSocketSendsInitialSnapshotThenLiveUpdates(t *testing.T) {
	s := newTestServer(t)
	doJSON(t, s, "POST", "/tables", "host", map[string]interface{}{
		"id": "t1", "min_players": 2, "max_players": 2, "small_blind": 1, "big_blind": 2,
		"min_buy_in": 10, "max_buy_in": 500,
	})
	doJSON(t, s, "POST", "/tables/t1/join_table", "alice", map[string]int64{"buy_in": 100})
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	conn := dialWithAuth(t, ts.URL, "/ws/game/t1/", "alice")
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var env envelope
	require.NoError(t, conn.ReadJSON(&env))
	require.Equal(t, EventGameUpdate, env.Type)

	doJSON(t, s, "POST", "/tables/t1/join_table", "bob", map[string]int64{"buy_in": 100})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var update envelope
	require.NoError(t, conn.ReadJSON(&update))
	require.Equal(t, EventGameUpdate, update.Type)
}
