package poker

import (
	"sync"
	"time"

	"github.com/decred/slog"
	"github.com/vctt94/pokerbisonrelay/internal/pokererr"
)

// TableConfig is the immutable configuration a table is created with
// (the server's POST /tables). Grounded on the reference's
// poker.TableConfig, extended with ReadyTimeout and a GameLog sink.
type TableConfig struct {
	ID             string
	HostID         string
	MinPlayers     int
	MaxPlayers     int
	SmallBlind     int64
	BigBlind       int64
	MinBuyIn       int64
	MaxBuyIn       int64
	StartingChips  int64
	TimeBank       time.Duration // reserved; no per-turn clock is enforced (SPEC_FULL.md §5)
	ReadyTimeout   time.Duration // defaults to 30s if zero; SPEC_FULL.md §4.7
	AutoStartDelay time.Duration

	Log     slog.Logger
	GameLog slog.Logger
}

func (c TableConfig) readyTimeout() time.Duration {
	if c.ReadyTimeout <= 0 {
		return 30 * time.Second
	}
	return c.ReadyTimeout
}

// Table is the session/lifecycle manager (C7): seat roster, join/leave,
// cash-out/buy-back-in, ready tracking, and starting hands. All phase and
// betting logic is delegated to the single owned *Game — the reference
// repo duplicates slices of that logic between table.go and game.go, which
// SPEC_FULL.md §4.4 collapses by making Game sole authority.
type Table struct {
	mu sync.Mutex

	config TableConfig
	seats  map[int]*Seat
	game   *Game

	readyTimer *time.Timer

	// fatalErr is set by the coordinator the moment a lease-guarded call
	// returns a *pokererr.FatalError (SPEC_FULL.md §7). Once set, every
	// further mutation is rejected until an operator clears it.
	fatalErr *pokererr.FatalError
}

// NewTable creates an empty table ready to accept joins.
func NewTable(cfg TableConfig) *Table {
	seats := make(map[int]*Seat)
	t := &Table{
		config: cfg,
		seats:  seats,
	}
	t.game = NewGame(cfg, seats)
	return t
}

// Lock/Unlock expose the table's mutex to the coordinator's lease mechanism
// (coordinator.go) so every mutation — join, action, tick — serializes
// through one lock per table, matching SPEC_FULL.md §4.5's single-writer
// model.
func (t *Table) Lock()   { t.mu.Lock() }
func (t *Table) Unlock() { t.mu.Unlock() }

// Halted returns the FatalError that stopped this table, or nil if it's
// still accepting mutations.
func (t *Table) Halted() *pokererr.FatalError { return t.fatalErr }

// MarkFatal halts the table: the coordinator calls this the moment a
// lease-guarded mutation returns a FatalError, after which withLease/
// tryLease reject every further call (SPEC_FULL.md §7).
func (t *Table) MarkFatal(err *pokererr.FatalError) {
	if t.fatalErr == nil {
		t.fatalErr = err
	}
}

// ClearFatal un-halts a table. The only way mutations resume after a fatal
// error; SPEC_FULL.md §7 requires this to be an explicit operator action,
// never automatic.
func (t *Table) ClearFatal() {
	t.fatalErr = nil
}

// Config returns the table's immutable configuration.
func (t *Table) Config() TableConfig { return t.config }

// Game returns the table's persistent session state machine.
func (t *Table) Game() *Game { return t.game }

// Seats returns the current seat roster keyed by seat index. Callers must
// hold the table lease while reading mutable seat fields.
func (t *Table) Seats() map[int]*Seat { return t.seats }

func (t *Table) seatCount() int {
	n := 0
	for _, s := range t.seats {
		if !s.CashedOut {
			n++
		}
	}
	return n
}

func (t *Table) freeSeatIndex() int {
	for i := 0; i < t.config.MaxPlayers; i++ {
		if s, ok := t.seats[i]; !ok || s.CashedOut {
			return i
		}
	}
	return -1
}

// Join seats a new player with the given buy-in (SPEC_FULL.md §6.1 POST
// .../join). Rejects a buy-in outside [MinBuyIn, MaxBuyIn] and a table at
// MaxPlayers capacity.
func (t *Table) Join(playerID string, buyIn int64) (*Seat, error) {
	if buyIn < t.config.MinBuyIn || buyIn > t.config.MaxBuyIn {
		return nil, pokererr.New(pokererr.BuyInOutOfRange, "buy-in %d outside [%d, %d]", buyIn, t.config.MinBuyIn, t.config.MaxBuyIn)
	}
	for _, s := range t.seats {
		if s.PlayerID == playerID && !s.CashedOut {
			return nil, pokererr.New(pokererr.InvalidAction, "player %s already seated", playerID)
		}
	}
	idx := t.freeSeatIndex()
	if idx < 0 {
		return nil, pokererr.New(pokererr.TableFull, "table %s is full", t.config.ID)
	}
	seat := NewSeat(idx, playerID, buyIn)
	t.seats[idx] = seat
	return seat, nil
}

// Leave removes a player who has not yet been dealt into the current hand.
// A seat still live in the current hand is rejected with
// CASH_OUT_DURING_HAND; CashOut is rejected for it too until the hand ends.
func (t *Table) Leave(playerID string) error {
	seat := t.seatByPlayer(playerID)
	if seat == nil {
		return pokererr.New(pokererr.InvalidAction, "player %s is not seated", playerID)
	}
	if t.game.Status == StatusPlaying && seat.InHand() {
		return pokererr.New(pokererr.CashOutDuringHand, "use cash-out to leave mid-hand")
	}
	delete(t.seats, seat.Index)
	return nil
}

func (t *Table) seatByPlayer(playerID string) *Seat {
	for _, s := range t.seats {
		if s.PlayerID == playerID {
			return s
		}
	}
	return nil
}

// SetReady marks a seat ready for the next hand. Idempotent per hand number
// (SPEC_FULL.md §4.5): calling it twice for the same hand_count is a no-op.
func (t *Table) SetReady(playerID string) error {
	seat := t.seatByPlayer(playerID)
	if seat == nil {
		return pokererr.New(pokererr.InvalidAction, "player %s is not seated", playerID)
	}
	if seat.CashedOut {
		return pokererr.New(pokererr.AlreadyCashedOut, "seat %d has cashed out", seat.Index)
	}
	if seat.readyAppliedHand == t.game.handCount {
		return nil
	}
	seat.ReadyForNextHand = true
	seat.readyAppliedHand = t.game.handCount
	return nil
}

// CashOut settles a seat's stack into FinalStack and removes it from future
// hands. Rejected while the seat is still live in the current hand
// (SPEC_FULL.md §6.1 POST .../cash-out).
func (t *Table) CashOut(playerID string) error {
	seat := t.seatByPlayer(playerID)
	if seat == nil {
		return pokererr.New(pokererr.InvalidAction, "player %s is not seated", playerID)
	}
	if seat.CashedOut {
		return pokererr.New(pokererr.AlreadyCashedOut, "seat %d already cashed out", seat.Index)
	}
	if t.game.Status == StatusPlaying && seat.InHand() {
		return pokererr.New(pokererr.CashOutDuringHand, "cannot cash out mid-hand")
	}
	if seat.cashOutAppliedHand == t.game.handCount {
		return nil
	}
	seat.CashedOut = true
	seat.IsActive = false
	seat.FinalStack = seat.Stack
	seat.cashOutAppliedHand = t.game.handCount
	t.game.CheckSessionComplete()
	return nil
}

// BuyBackIn re-funds a previously cashed-out seat (SPEC_FULL.md §6.1 POST
// .../buy-back-in). Rejects a seat that was never cashed out.
func (t *Table) BuyBackIn(playerID string, amount int64) error {
	seat := t.seatByPlayer(playerID)
	if seat == nil {
		return pokererr.New(pokererr.InvalidAction, "player %s is not seated", playerID)
	}
	if !seat.CashedOut {
		return pokererr.New(pokererr.NotCashedOut, "seat %d has not cashed out", seat.Index)
	}
	if amount < t.config.MinBuyIn || amount > t.config.MaxBuyIn {
		return pokererr.New(pokererr.BuyInOutOfRange, "buy-in %d outside [%d, %d]", amount, t.config.MinBuyIn, t.config.MaxBuyIn)
	}
	if seat.buyBackAppliedHand == t.game.handCount {
		return nil
	}
	seat.CashedOut = false
	seat.Stack = amount
	seat.StartingStack = amount
	seat.FinalStack = 0
	seat.buyBackAppliedHand = t.game.handCount
	return nil
}

// ReadyToStart reports whether enough seated, non-cashed-out players are
// ready, and MinPlayers is met.
func (t *Table) ReadyToStart() bool {
	if t.seatCount() < t.config.MinPlayers {
		return false
	}
	return t.game.ReadyToStart()
}

// StartHand deals a new hand if the table is waiting and everyone is ready.
// seed is nil in production (CSPRNG-seeded) and non-nil only for
// deterministic test replay.
func (t *Table) StartHand(seed *int64) error {
	if t.game.Status == StatusPlaying {
		return pokererr.New(pokererr.GameNotWaiting, "hand already in progress")
	}
	if !t.ReadyToStart() {
		return pokererr.New(pokererr.GameNotWaiting, "not enough ready players")
	}
	return t.game.StartHand(seed)
}

// Apply forwards a player action to the game, resolving playerID to a seat
// index first so transport handlers never touch seat indices directly.
func (t *Table) Apply(playerID string, action ActionType, amount int64) error {
	seat := t.seatByPlayer(playerID)
	if seat == nil {
		return pokererr.New(pokererr.InvalidAction, "player %s is not seated", playerID)
	}
	return t.game.Apply(seat.Index, action, amount)
}

// ArmReadyTimeout schedules fn to run after the configured ready timeout,
// cancelling any previously-armed timer. Only silent (not-yet-ready) seats
// should be auto-readied by fn (SPEC_FULL.md §4.7), narrower than the
// reference's unconditional ScheduleAutoStart.
func (t *Table) ArmReadyTimeout(fn func()) {
	if t.readyTimer != nil {
		t.readyTimer.Stop()
	}
	t.readyTimer = time.AfterFunc(t.config.readyTimeout(), fn)
}

// DisarmReadyTimeout cancels a pending ready-timeout callback, e.g. once a
// hand actually starts.
func (t *Table) DisarmReadyTimeout() {
	if t.readyTimer != nil {
		t.readyTimer.Stop()
		t.readyTimer = nil
	}
}

// AutoReadySilentSeats marks every not-yet-ready, not-cashed-out seat ready.
// Called by the coordinator when the ready timer fires.
func (t *Table) AutoReadySilentSeats() {
	for _, s := range t.seats {
		if !s.CashedOut && !s.ReadyForNextHand {
			s.ReadyForNextHand = true
			s.readyAppliedHand = t.game.handCount
		}
	}
}
