// Package server exposes the poker engine over HTTP and WebSocket
// (SPEC_FULL.md §6, §2A). Authentication is resolved externally: the server
// only consumes the bearer token's resolved player ID via AuthFunc, matching
// §6.1's authentication-boundary note.
package server

import (
	"net/http"
	"sync"
	"time"

	"github.com/decred/slog"
	"github.com/vctt94/pokerbisonrelay/internal/db"
	"github.com/vctt94/pokerbisonrelay/internal/pokererr"
	"github.com/vctt94/pokerbisonrelay/pkg/poker"
)

// AuthFunc resolves a bearer token to a player ID. ok is false if the token
// is missing or invalid.
type AuthFunc func(token string) (playerID string, ok bool)

// Server wires the coordinator, persistence, and broadcast hub behind the
// HTTP/WebSocket transport. Grounded on the reference's pkg/server.Server,
// with the gRPC service registration replaced by an http.ServeMux
// (SPEC_FULL.md §2A transport re-grounding).
type Server struct {
	log   slog.Logger
	coord *poker.Coordinator
	hub   *Hub
	store *db.DB
	auth  AuthFunc

	// defaultReadyTimeout seeds TableConfig.ReadyTimeout for every table
	// created via POST /tables that doesn't specify its own (0 defers to
	// TableConfig.readyTimeout()'s built-in 30s).
	defaultReadyTimeout time.Duration

	mux *http.ServeMux

	// persistedSeqMu guards persistedSeq, the per-table cursor into
	// Game.ActionLog() that has already been flushed to the store, so
	// persistTable only appends rows it hasn't written yet.
	persistedSeqMu sync.Mutex
	persistedSeq   map[string]int64
}

// Config bundles Server's dependencies.
type Config struct {
	Log   slog.Logger
	Store *db.DB
	Auth  AuthFunc

	// DefaultReadyTimeout, if set, seeds every table's ready-up timeout
	// instead of TableConfig.readyTimeout()'s 30s built-in default
	// (SPEC_FULL.md §4.7). A per-deployment override, e.g. from a CLI flag.
	DefaultReadyTimeout time.Duration
}

// New creates a Server with a fresh coordinator and broadcast hub, and
// restores any tables persisted from a previous run.
func New(cfg Config) *Server {
	s := &Server{
		log:                 cfg.Log,
		coord:               poker.NewCoordinator(cfg.Log),
		hub:                 NewHub(cfg.Log),
		store:               cfg.Store,
		auth:                cfg.Auth,
		defaultReadyTimeout: cfg.DefaultReadyTimeout,
		persistedSeq:        make(map[string]int64),
	}
	s.mux = http.NewServeMux()
	s.routes()
	if s.store != nil {
		if err := s.restoreTables(); err != nil {
			s.log.Errorf("restore tables: %v", err)
		}
	}
	return s
}

// Handler returns the root http.Handler for the server.
func (s *Server) Handler() http.Handler { return s.mux }

// Coordinator exposes the underlying table registry, mainly for tests.
func (s *Server) Coordinator() *poker.Coordinator { return s.coord }

// broadcastTable pushes a game_update to every subscriber of tableID,
// rendering a fresh per-caller snapshot from the table under a read lease.
func (s *Server) broadcastTable(tableID string) {
	t, err := s.coord.Table(tableID)
	if err != nil {
		return
	}
	t.Lock()
	defer t.Unlock()
	s.hub.PublishGameUpdate(tableID, func(callerID string) interface{} {
		return BuildSnapshot(t, callerID)
	})
	s.persistTable(t)
	if t.Game().Status == poker.StatusFinished {
		s.broadcastSummary(tableID, t)
	}
}

// broadcastFatal logs a FatalError via the coordinator's logger and pushes
// the resulting terminal game_update (Halted=true) to every subscriber, so
// nobody is left polling a table that will never mutate again without an
// operator clearing it (SPEC_FULL.md §7).
func (s *Server) broadcastFatal(tableID string, fatalErr *pokererr.FatalError) {
	s.log.Errorf("table %s halted on fatal error: %v", tableID, fatalErr)
	t, err := s.coord.Table(tableID)
	if err != nil {
		return
	}
	t.Lock()
	defer t.Unlock()
	s.hub.PublishGameUpdate(tableID, func(callerID string) interface{} {
		return BuildSnapshot(t, callerID)
	})
}

func (s *Server) broadcastSummary(tableID string, t *poker.Table) {
	summary := t.Game().Summary()
	if summary == nil {
		return
	}
	seats := make([]SeatSummaryDTO, 0, len(summary.Seats))
	for _, seat := range summary.Seats {
		seats = append(seats, SeatSummaryDTO{
			SeatIndex:     seat.SeatIndex,
			PlayerID:      seat.PlayerID,
			StartingStack: seat.StartingStack,
			FinalStack:    seat.FinalStack,
			WinLoss:       seat.WinLoss,
		})
	}
	s.hub.PublishGameSummary(tableID, GameSummaryNotification{TableID: tableID, Seats: seats})
}
