package poker

import (
	"errors"
	"sync"

	"github.com/decred/slog"
	"github.com/vctt94/pokerbisonrelay/internal/pokererr"
)

// Coordinator (C5) owns the table registry and enforces the single-writer
// rule: every mutation to a table's state runs inside withLease, which holds
// that table's mutex for the duration of the call. The reference repo gets
// the same property from a per-table sync.Mutex guarding table.go's methods;
// this names the pattern explicitly as a "lease" and adds a non-blocking
// variant that returns TABLE_BUSY instead of stacking up goroutines behind a
// contended table (SPEC_FULL.md §4.5).
type Coordinator struct {
	log slog.Logger

	mu     sync.RWMutex
	tables map[string]*Table
}

// NewCoordinator creates an empty table registry.
func NewCoordinator(log slog.Logger) *Coordinator {
	return &Coordinator{log: log, tables: make(map[string]*Table)}
}

// CreateTable registers a new table. Fails if the ID is already taken.
func (c *Coordinator) CreateTable(cfg TableConfig) (*Table, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.tables[cfg.ID]; exists {
		return nil, pokererr.New(pokererr.InvalidAction, "table %s already exists", cfg.ID)
	}
	t := NewTable(cfg)
	c.tables[cfg.ID] = t
	return t, nil
}

// Table looks up a registered table by ID.
func (c *Coordinator) Table(id string) (*Table, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	t, ok := c.tables[id]
	if !ok {
		return nil, pokererr.New(pokererr.GameNotFound, "table %s not found", id)
	}
	return t, nil
}

// Tables lists every registered table.
func (c *Coordinator) Tables() []*Table {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]*Table, 0, len(c.tables))
	for _, t := range c.tables {
		out = append(out, t)
	}
	return out
}

// RemoveTable drops a table from the registry, whatever its status.
func (c *Coordinator) RemoveTable(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.tables, id)
}

// withLease runs fn with tableID's table locked for the duration — the
// single-writer boundary every table mutation must cross. A table halted by
// a prior FatalError (SPEC_FULL.md §7) rejects fn outright; a FatalError
// returned by this call halts it for every subsequent one.
func (c *Coordinator) withLease(tableID string, fn func(*Table) error) error {
	t, err := c.Table(tableID)
	if err != nil {
		return err
	}
	t.Lock()
	defer t.Unlock()
	return c.runLeased(t, fn)
}

// tryLease is withLease's non-blocking counterpart: if the table is already
// held by another in-flight call, it returns TABLE_BUSY immediately instead
// of waiting. Transports that cannot tolerate a stalled request (e.g. a
// request with a short client-side deadline) should use this instead of
// withLease.
func (c *Coordinator) tryLease(tableID string, fn func(*Table) error) error {
	t, err := c.Table(tableID)
	if err != nil {
		return err
	}
	if !t.mu.TryLock() {
		return pokererr.New(pokererr.TableBusy, "table %s is busy", tableID)
	}
	defer t.Unlock()
	return c.runLeased(t, fn)
}

// runLeased is the shared body of withLease/tryLease once the table's mutex
// is held: reject outright if already halted, else run fn and latch a
// returned FatalError as the new halt reason.
func (c *Coordinator) runLeased(t *Table, fn func(*Table) error) error {
	if halted := t.Halted(); halted != nil {
		return pokererr.New(pokererr.TableHalted, "table %s halted: %s", halted.TableID, halted.Msg)
	}
	err := fn(t)
	var fatalErr *pokererr.FatalError
	if errors.As(err, &fatalErr) {
		t.MarkFatal(fatalErr)
	}
	return err
}

// ClearFatal un-halts a table after an operator has resolved a FatalError
// (SPEC_FULL.md §7's required manual-intervention step).
func (c *Coordinator) ClearFatal(tableID string) error {
	t, err := c.Table(tableID)
	if err != nil {
		return err
	}
	t.Lock()
	defer t.Unlock()
	t.ClearFatal()
	return nil
}

// WithTable runs fn with tableID's table locked. Exposed for transport
// handlers that need a custom sequence of Table operations under one lease
// (e.g. starting a hand) without the coordinator anticipating every shape.
func (c *Coordinator) WithTable(tableID string, fn func(*Table) error) error {
	return c.withLease(tableID, fn)
}

// Join seats a player at a table under lease.
func (c *Coordinator) Join(tableID, playerID string, buyIn int64) (*Seat, error) {
	var seat *Seat
	err := c.withLease(tableID, func(t *Table) error {
		s, joinErr := t.Join(playerID, buyIn)
		if joinErr != nil {
			return joinErr
		}
		seat = s
		return nil
	})
	return seat, err
}

// Leave removes a player from a table under lease.
func (c *Coordinator) Leave(tableID, playerID string) error {
	return c.withLease(tableID, func(t *Table) error {
		return t.Leave(playerID)
	})
}

// SetReady marks a player ready and, if the table is now ready to start and
// was previously waiting, kicks off the next hand. Mirrors the reference's
// auto-start-on-ready behavior while keeping StartHand itself idempotent.
func (c *Coordinator) SetReady(tableID, playerID string) error {
	return c.withLease(tableID, func(t *Table) error {
		if err := t.SetReady(playerID); err != nil {
			return err
		}
		t.DisarmReadyTimeout()
		if t.Game().Status == StatusWaiting && t.ReadyToStart() {
			return t.StartHand(nil)
		}
		return nil
	})
}

// CashOut settles a player out of a table under lease.
func (c *Coordinator) CashOut(tableID, playerID string) error {
	return c.withLease(tableID, func(t *Table) error {
		return t.CashOut(playerID)
	})
}

// BuyBackIn re-funds a previously cashed-out player under lease.
func (c *Coordinator) BuyBackIn(tableID, playerID string, amount int64) error {
	return c.withLease(tableID, func(t *Table) error {
		return t.BuyBackIn(playerID, amount)
	})
}

// Act applies one betting action under lease. This is the hot path: most
// production traffic funnels through here.
func (c *Coordinator) Act(tableID, playerID string, action ActionType, amount int64) error {
	return c.withLease(tableID, func(t *Table) error {
		return t.Apply(playerID, action, amount)
	})
}

// ArmReadyTimer starts the ready-timeout clock for a table that just became
// fully seated but not fully ready; when it fires, silent seats are
// auto-readied and the hand starts if that's now enough (SPEC_FULL.md
// §4.7).
func (c *Coordinator) ArmReadyTimer(tableID string) {
	t, err := c.Table(tableID)
	if err != nil {
		return
	}
	t.ArmReadyTimeout(func() {
		_ = c.withLease(tableID, func(t *Table) error {
			t.AutoReadySilentSeats()
			if t.ReadyToStart() {
				return t.StartHand(nil)
			}
			return nil
		})
	})
}
