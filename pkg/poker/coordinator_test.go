package poker

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/vctt94/pokerbisonrelay/internal/pokererr"
)

func newTestCoordinatorTableConfig(id string, maxPlayers int) TableConfig {
	return TableConfig{
		ID:         id,
		MinPlayers: 2,
		MaxPlayers: maxPlayers,
		SmallBlind: 1,
		BigBlind:   2,
		MinBuyIn:   10,
		MaxBuyIn:   500,
		Log:        createTestLogger(),
		GameLog:    createTestLogger(),
	}
}

func TestCreateTableRejectsDuplicateID(t *testing.T) {
	c := NewCoordinator(createTestLogger())
	_, err := c.CreateTable(newTestCoordinatorTableConfig("a", 2))
	require.NoError(t, err)
	_, err = c.CreateTable(newTestCoordinatorTableConfig("a", 2))
	require.Error(t, err)
}

func TestTableLookupReportsNotFound(t *testing.T) {
	c := NewCoordinator(createTestLogger())
	_, err := c.Table("missing")
	require.Error(t, err)
	require.Equal(t, pokererr.GameNotFound, err.(*pokererr.ClientError).Kind)
}

func TestTablesListsEveryRegisteredTable(t *testing.T) {
	c := NewCoordinator(createTestLogger())
	_, err := c.CreateTable(newTestCoordinatorTableConfig("a", 2))
	require.NoError(t, err)
	_, err = c.CreateTable(newTestCoordinatorTableConfig("b", 2))
	require.NoError(t, err)
	require.Len(t, c.Tables(), 2)
}

func TestRemoveTableDropsFromRegistry(t *testing.T) {
	c := NewCoordinator(createTestLogger())
	_, err := c.CreateTable(newTestCoordinatorTableConfig("a", 2))
	require.NoError(t, err)
	c.RemoveTable("a")
	_, err = c.Table("a")
	require.Error(t, err)
}

func TestJoinLeaveCashOutBuyBackInPassThrough(t *testing.T) {
	c := NewCoordinator(createTestLogger())
	_, err := c.CreateTable(newTestCoordinatorTableConfig("a", 2))
	require.NoError(t, err)

	_, err = c.Join("a", "alice", 100)
	require.NoError(t, err)
	require.NoError(t, c.Leave("a", "alice"))

	_, err = c.Join("a", "alice", 100)
	require.NoError(t, err)
	require.NoError(t, c.CashOut("a", "alice"))
	require.NoError(t, c.BuyBackIn("a", "alice", 200))
}

func TestSetReadyAutoStartsHandWhenTableBecomesReady(t *testing.T) {
	c := NewCoordinator(createTestLogger())
	_, err := c.CreateTable(newTestCoordinatorTableConfig("a", 2))
	require.NoError(t, err)
	_, _ = c.Join("a", "alice", 100)
	_, _ = c.Join("a", "bob", 100)

	require.NoError(t, c.SetReady("a", "alice"))
	tbl, err := c.Table("a")
	require.NoError(t, err)
	require.Equal(t, StatusWaiting, tbl.Game().Status)

	require.NoError(t, c.SetReady("a", "bob"))
	require.Equal(t, StatusPlaying, tbl.Game().Status)
}

func TestActAppliesActionThroughLease(t *testing.T) {
	c := NewCoordinator(createTestLogger())
	_, err := c.CreateTable(newTestCoordinatorTableConfig("a", 2))
	require.NoError(t, err)
	_, _ = c.Join("a", "alice", 100)
	_, _ = c.Join("a", "bob", 100)
	require.NoError(t, c.SetReady("a", "alice"))
	require.NoError(t, c.SetReady("a", "bob"))

	tbl, err := c.Table("a")
	require.NoError(t, err)
	turnSeat := tbl.Game().CurrentTurnSeat()
	playerID := tbl.Seats()[turnSeat].PlayerID
	require.NoError(t, c.Act("a", playerID, Fold, 0))
}

func TestTryLeaseReturnsBusyWhenTableIsHeld(t *testing.T) {
	c := NewCoordinator(createTestLogger())
	_, err := c.CreateTable(newTestCoordinatorTableConfig("a", 2))
	require.NoError(t, err)
	tbl, err := c.Table("a")
	require.NoError(t, err)

	tbl.Lock()
	defer tbl.Unlock()

	err = c.tryLease("a", func(t *Table) error { return nil })
	require.Error(t, err)
	require.Equal(t, pokererr.TableBusy, err.(*pokererr.ClientError).Kind)
}

func TestWithTableRunsCustomSequenceUnderOneLease(t *testing.T) {
	c := NewCoordinator(createTestLogger())
	_, err := c.CreateTable(newTestCoordinatorTableConfig("a", 2))
	require.NoError(t, err)

	err = c.WithTable("a", func(t *Table) error {
		if _, err := t.Join("alice", 100); err != nil {
			return err
		}
		if _, err := t.Join("bob", 100); err != nil {
			return err
		}
		return t.SetReady("alice")
	})
	require.NoError(t, err)

	tbl, err := c.Table("a")
	require.NoError(t, err)
	require.True(t, tbl.Seats()[0].ReadyForNextHand)
}

func TestWithLeaseHaltsTableOnFatalErrorAndRejectsFurtherMutations(t *testing.T) {
	c := NewCoordinator(createTestLogger())
	_, err := c.CreateTable(newTestCoordinatorTableConfig("a", 2))
	require.NoError(t, err)
	_, _ = c.Join("a", "alice", 100)
	_, _ = c.Join("a", "bob", 100)

	boom := pokererr.NewFatal("a", pokererr.InvalidAction, "simulated invariant violation")
	err = c.WithTable("a", func(t *Table) error { return boom })
	require.Error(t, err)
	var fatalErr *pokererr.FatalError
	require.ErrorAs(t, err, &fatalErr)

	tbl, err := c.Table("a")
	require.NoError(t, err)
	require.NotNil(t, tbl.Halted())

	err = c.Act("a", "alice", Fold, 0)
	require.Error(t, err)
	require.Equal(t, pokererr.TableHalted, err.(*pokererr.ClientError).Kind)

	require.NoError(t, c.ClearFatal("a"))
	require.Nil(t, tbl.Halted())
	require.NoError(t, c.Leave("a", "alice"))
}

func TestArmReadyTimerAutoReadiesAndStartsOnFire(t *testing.T) {
	c := NewCoordinator(createTestLogger())
	cfg := newTestCoordinatorTableConfig("a", 2)
	cfg.ReadyTimeout = time.Millisecond
	_, err := c.CreateTable(cfg)
	require.NoError(t, err)
	_, _ = c.Join("a", "alice", 100)
	_, _ = c.Join("a", "bob", 100)

	tbl, err := c.Table("a")
	require.NoError(t, err)
	c.ArmReadyTimer("a")

	require.Eventually(t, func() bool {
		tbl.Lock()
		defer tbl.Unlock()
		return tbl.Game().Status == StatusPlaying
	}, time.Second, time.Millisecond)
}
