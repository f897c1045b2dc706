package server

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/vctt94/pokerbisonrelay/pkg/poker"
)

// upgrader is permissive on origin: this engine delegates authentication to
// the bearer token, not the WebSocket handshake's Origin header (SPEC_FULL.md
// §6.1's authentication-boundary note applies here too).
var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// closeAuthFailed / closeForbidden / closeNotFound are the application-
// defined WebSocket close codes of SPEC_FULL.md §6.2.
const (
	closeAuthFailed = 4001
	closeForbidden  = 4003
	closeNotFound   = 4004
)

// handleWebSocket upgrades the connection and streams game_update /
// game_summary_notification events for one table until the client
// disconnects (SPEC_FULL.md §4.6, §6.2).
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	playerID, ok := s.authenticate(r)
	if !ok {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err == nil {
			closeWithCode(conn, closeAuthFailed, "authentication failed")
		}
		return
	}

	tableID := r.PathValue("id")
	t, err := s.coord.Table(tableID)
	if err != nil {
		conn, upErr := upgrader.Upgrade(w, r, nil)
		if upErr == nil {
			closeWithCode(conn, closeNotFound, "game not found")
		}
		return
	}

	t.Lock()
	_, seated := seatByPlayerID(t, playerID)
	t.Unlock()
	if !seated {
		conn, upErr := upgrader.Upgrade(w, r, nil)
		if upErr == nil {
			closeWithCode(conn, closeForbidden, "not a member of this game")
		}
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warnf("websocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	sub := s.hub.Subscribe(tableID, playerID)
	defer s.hub.Unsubscribe(tableID, sub)

	// send the current snapshot immediately so a new subscriber doesn't wait
	// for the next mutation to see where the game stands.
	t.Lock()
	initial := BuildSnapshot(t, playerID)
	t.Unlock()
	if err := conn.WriteJSON(envelope{Type: EventGameUpdate, Data: initial}); err != nil {
		return
	}

	// drain any client-sent control frames (pings, close) on a reader
	// goroutine so the connection's read deadline is honored; this engine
	// does not accept game actions over the WebSocket, only over HTTP.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-closed:
			return
		case msg := <-sub.outbound:
			conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := conn.WriteJSON(msg); err != nil {
				return
			}
		}
	}
}

func closeWithCode(conn *websocket.Conn, code int, reason string) {
	msg := websocket.FormatCloseMessage(code, reason)
	conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
	conn.Close()
}

func seatByPlayerID(t *poker.Table, playerID string) (int, bool) {
	for idx, seat := range t.Seats() {
		if seat.PlayerID == playerID {
			return idx, true
		}
	}
	return 0, false
}
