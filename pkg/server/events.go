package server

import (
	"sync"
	"time"

	"github.com/decred/slog"
)

// EventType identifies a broadcast message's payload shape
// (SPEC_FULL.md §6.2).
type EventType string

const (
	EventGameUpdate         EventType = "game_update"
	EventGameSummary        EventType = "game_summary_notification"
)

// Event is one message destined for every subscriber of a table. Grounded
// on the reference's GameEvent, but carries no game snapshot and no raw-map
// Metadata payload — the card-privacy filter needs the caller ID, so
// PublishGameUpdate renders a separate view for each subscriber.
type Event struct {
	Type      EventType
	TableID   string
	Timestamp time.Time
	Summary   *GameSummaryNotification
}

// GameSummaryNotification is the terminal message sent once a session
// reaches FINISHED.
type GameSummaryNotification struct {
	TableID string          `json:"table_id"`
	Seats   []SeatSummaryDTO `json:"seats"`
}

// SeatSummaryDTO is the wire shape of one seat's final settlement line.
type SeatSummaryDTO struct {
	SeatIndex     int    `json:"seat_index"`
	PlayerID      string `json:"player_id"`
	StartingStack int64  `json:"starting_stack"`
	FinalStack    int64  `json:"final_stack"`
	WinLoss       int64  `json:"win_loss"`
}

// envelope is the wire message shape every subscriber receives:
// {"type": "...", "data": ...}.
type envelope struct {
	Type EventType   `json:"type"`
	Data interface{} `json:"data"`
}

// subscriber is one live WebSocket connection's outbound mailbox. Bounded
// and non-blocking: a slow reader gets dropped messages, never a stalled
// broadcaster (SPEC_FULL.md §4.6), grounded on the reference's
// EventProcessor.PublishEvent select/default pattern.
type subscriber struct {
	playerID string
	outbound chan envelope
}

// Hub fans out table events to every subscribed connection. One Hub serves
// the whole server; subscribers are grouped by table ID.
type Hub struct {
	log slog.Logger

	mu   sync.RWMutex
	subs map[string]map[*subscriber]struct{} // tableID -> subscriber set
}

// NewHub creates an empty broadcast hub.
func NewHub(log slog.Logger) *Hub {
	return &Hub{log: log, subs: make(map[string]map[*subscriber]struct{})}
}

// Subscribe registers a connection's mailbox for a table and returns it.
// Call Unsubscribe when the connection closes.
func (h *Hub) Subscribe(tableID, playerID string) *subscriber {
	sub := &subscriber{playerID: playerID, outbound: make(chan envelope, 32)}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.subs[tableID] == nil {
		h.subs[tableID] = make(map[*subscriber]struct{})
	}
	h.subs[tableID][sub] = struct{}{}
	return sub
}

// Unsubscribe removes a connection's mailbox.
func (h *Hub) Unsubscribe(tableID string, sub *subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if set, ok := h.subs[tableID]; ok {
		delete(set, sub)
		if len(set) == 0 {
			delete(h.subs, tableID)
		}
	}
}

// PublishGameUpdate notifies every subscriber of a table that its state
// changed. render is called once per subscriber so each gets its own
// card-privacy-filtered view (SPEC_FULL.md §6.1).
func (h *Hub) PublishGameUpdate(tableID string, render func(callerID string) interface{}) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for sub := range h.subs[tableID] {
		msg := envelope{Type: EventGameUpdate, Data: render(sub.playerID)}
		select {
		case sub.outbound <- msg:
		default:
			h.log.Warnf("dropping game_update for %s on table %s: outbound queue full", sub.playerID, tableID)
		}
	}
}

// PublishGameSummary notifies every subscriber once a session reaches
// FINISHED. Unlike PublishGameUpdate, the payload carries no hole cards, so
// every subscriber gets the same message.
func (h *Hub) PublishGameSummary(tableID string, summary GameSummaryNotification) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	msg := envelope{Type: EventGameSummary, Data: summary}
	for sub := range h.subs[tableID] {
		select {
		case sub.outbound <- msg:
		default:
			h.log.Warnf("dropping game_summary for %s on table %s: outbound queue full", sub.playerID, tableID)
		}
	}
}
