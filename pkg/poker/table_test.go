package poker

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestTable(maxPlayers int) *Table {
	cfg := TableConfig{
		ID:         "tbl",
		MinPlayers: 2,
		MaxPlayers: maxPlayers,
		SmallBlind: 1,
		BigBlind:   2,
		MinBuyIn:   10,
		MaxBuyIn:   500,
		Log:        createTestLogger(),
		GameLog:    createTestLogger(),
	}
	return NewTable(cfg)
}

func TestTableJoinAssignsSeatsAndRejectsOutOfRangeBuyIn(t *testing.T) {
	tbl := newTestTable(2)
	seat, err := tbl.Join("alice", 100)
	require.NoError(t, err)
	require.Equal(t, 0, seat.Index)

	_, err = tbl.Join("bob", 5) // below MinBuyIn
	require.Error(t, err)

	_, err = tbl.Join("bob", 100)
	require.NoError(t, err)

	_, err = tbl.Join("carol", 100) // table full
	require.Error(t, err)
}

func TestTableJoinRejectsDuplicateSeatedPlayer(t *testing.T) {
	tbl := newTestTable(3)
	_, err := tbl.Join("alice", 100)
	require.NoError(t, err)
	_, err = tbl.Join("alice", 100)
	require.Error(t, err)
}

func TestTableLeaveFreesSeatWhenNotInHand(t *testing.T) {
	tbl := newTestTable(2)
	_, err := tbl.Join("alice", 100)
	require.NoError(t, err)
	require.NoError(t, tbl.Leave("alice"))
	_, ok := tbl.Seats()[0]
	require.False(t, ok)
}

func TestTableLeaveRejectedMidHand(t *testing.T) {
	tbl := newTestTable(2)
	_, err := tbl.Join("alice", 100)
	require.NoError(t, err)
	_, err = tbl.Join("bob", 100)
	require.NoError(t, err)
	require.NoError(t, tbl.SetReady("alice"))
	require.NoError(t, tbl.SetReady("bob"))
	require.NoError(t, tbl.StartHand(nil))

	err = tbl.Leave("alice")
	require.Error(t, err)
}

func TestSetReadyIsIdempotentPerHand(t *testing.T) {
	tbl := newTestTable(2)
	_, err := tbl.Join("alice", 100)
	require.NoError(t, err)
	require.NoError(t, tbl.SetReady("alice"))
	require.NoError(t, tbl.SetReady("alice")) // second call is a no-op, not an error
	require.True(t, tbl.Seats()[0].ReadyForNextHand)
}

func TestReadyToStartRequiresMinPlayersAndAllReady(t *testing.T) {
	tbl := newTestTable(2)
	_, err := tbl.Join("alice", 100)
	require.NoError(t, err)
	require.False(t, tbl.ReadyToStart()) // below MinPlayers

	_, err = tbl.Join("bob", 100)
	require.NoError(t, err)
	require.False(t, tbl.ReadyToStart()) // nobody ready yet

	require.NoError(t, tbl.SetReady("alice"))
	require.False(t, tbl.ReadyToStart())
	require.NoError(t, tbl.SetReady("bob"))
	require.True(t, tbl.ReadyToStart())
}

func TestStartHandRejectsWhenAlreadyPlaying(t *testing.T) {
	tbl := newTestTable(2)
	_, _ = tbl.Join("alice", 100)
	_, _ = tbl.Join("bob", 100)
	require.NoError(t, tbl.SetReady("alice"))
	require.NoError(t, tbl.SetReady("bob"))
	require.NoError(t, tbl.StartHand(nil))
	require.Error(t, tbl.StartHand(nil))
}

func TestApplyResolvesPlayerIDToSeatIndex(t *testing.T) {
	tbl := newTestTable(2)
	_, _ = tbl.Join("alice", 100)
	_, _ = tbl.Join("bob", 100)
	require.NoError(t, tbl.SetReady("alice"))
	require.NoError(t, tbl.SetReady("bob"))
	require.NoError(t, tbl.StartHand(nil))

	turnSeat := tbl.Game().CurrentTurnSeat()
	playerID := tbl.Seats()[turnSeat].PlayerID
	require.NoError(t, tbl.Apply(playerID, Fold, 0))
}

func TestCashOutRejectsMidHandThenAllowsBetweenHands(t *testing.T) {
	tbl := newTestTable(2)
	_, _ = tbl.Join("alice", 100)
	_, _ = tbl.Join("bob", 100)
	require.NoError(t, tbl.SetReady("alice"))
	require.NoError(t, tbl.SetReady("bob"))
	require.NoError(t, tbl.StartHand(nil))

	require.Error(t, tbl.CashOut("alice")) // still live in the hand

	turnSeat := tbl.Game().CurrentTurnSeat()
	playerID := tbl.Seats()[turnSeat].PlayerID
	require.NoError(t, tbl.Apply(playerID, Fold, 0)) // ends the hand

	require.NoError(t, tbl.CashOut("alice"))
	require.True(t, tbl.Seats()[0].CashedOut)
}

func TestBuyBackInRestoresACashedOutSeat(t *testing.T) {
	tbl := newTestTable(2)
	_, _ = tbl.Join("alice", 100)
	_, _ = tbl.Join("bob", 100)
	require.NoError(t, tbl.CashOut("alice"))
	require.Error(t, tbl.BuyBackIn("bob", 100)) // bob never cashed out

	require.NoError(t, tbl.BuyBackIn("alice", 200))
	require.False(t, tbl.Seats()[0].CashedOut)
	require.Equal(t, int64(200), tbl.Seats()[0].Stack)
}

func TestArmAndDisarmReadyTimeout(t *testing.T) {
	tbl := newTestTable(2)
	tbl.config.ReadyTimeout = 0 // falls back to the 30s default
	require.Equal(t, 30, int(tbl.config.readyTimeout().Seconds()))

	fired := make(chan struct{}, 1)
	tbl.config.ReadyTimeout = 1
	tbl.ArmReadyTimeout(func() { fired <- struct{}{} })
	tbl.DisarmReadyTimeout()
	select {
	case <-fired:
		t.Fatal("disarmed timer should not fire")
	default:
	}
}
