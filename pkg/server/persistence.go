package server

import (
	"encoding/json"
	"time"

	storedb "github.com/vctt94/pokerbisonrelay/internal/db"
	"github.com/vctt94/pokerbisonrelay/pkg/poker"
)

// persistTable snapshots a table and its seats into the store. Called after
// every broadcast so the on-disk state never lags what subscribers saw,
// grounded on the reference's saveTableStateAsync (here synchronous, since
// the caller already holds the table lease and sqlite writes are fast
// relative to network broadcast).
func (s *Server) persistTable(t *poker.Table) {
	if s.store == nil {
		return
	}
	game := t.Game()
	cfg := t.Config()

	gs := &storedb.GameState{
		ID:             cfg.ID,
		HostID:         cfg.HostID,
		MinPlayers:     cfg.MinPlayers,
		MaxPlayers:     cfg.MaxPlayers,
		SmallBlind:     cfg.SmallBlind,
		BigBlind:       cfg.BigBlind,
		MinBuyIn:       cfg.MinBuyIn,
		MaxBuyIn:       cfg.MaxBuyIn,
		StartingChips:  cfg.StartingChips,
		Status:         string(game.Status),
		Phase:          string(game.Phase),
		DealerSeat:     game.DealerSeat(),
		CurrentSeat:    game.CurrentTurnSeat(),
		CurrentBet:     game.CurrentBet(),
		HandCount:      game.HandCount(),
		CommunityCards: storedb.MarshalCards(game.CommunityCards()),
		UpdatedAt:      time.Now(),
	}

	var seats []*storedb.PlayerGameState
	for idx, seat := range t.Seats() {
		seats = append(seats, &storedb.PlayerGameState{
			GameID:           cfg.ID,
			PlayerID:         seat.PlayerID,
			SeatIndex:        idx,
			Stack:            seat.Stack,
			StartingStack:    seat.StartingStack,
			CurrentBet:       seat.CurrentBet,
			TotalBetThisHand: seat.TotalBetThisHand,
			HoleCards:        storedb.MarshalCards(seat.HoleCards),
			HasFolded:        seat.HasFolded,
			IsAllIn:          seat.IsAllIn,
			CashedOut:        seat.CashedOut,
			ReadyForNextHand: seat.ReadyForNextHand,
			FinalStack:       seat.FinalStack,
		})
	}

	if err := s.store.SaveSnapshot(gs, seats); err != nil {
		s.log.Errorf("persist table %s: %v", cfg.ID, err)
	}

	s.persistActions(cfg.ID, game.ActionLog())

	if info := game.WinnerInfo(); info != nil {
		winnerJSON, _ := json.Marshal(info)
		if err := s.store.SaveHandHistory(storedb.HandHistoryRow{
			GameID:         cfg.ID,
			HandNumber:     info.HandNumber,
			DealerSeat:     game.DealerSeat(),
			CommunityCards: storedb.MarshalCards(game.CommunityCards()),
			PotTotal:       info.PotTotal,
			WinnerInfo:     string(winnerJSON),
		}); err != nil {
			s.log.Errorf("persist hand history for %s: %v", cfg.ID, err)
		}
	}
}

// persistActions flushes every GameActionRecord appended since the last
// call for this table into the append-only game_actions log (SPEC_FULL.md
// §3, §6.4). Game.ActionLog() always returns the full in-memory log, so the
// cursor in s.persistedSeq is what keeps this idempotent across repeated
// broadcasts of the same table.
func (s *Server) persistActions(gameID string, log []poker.GameActionRecord) {
	s.persistedSeqMu.Lock()
	last := s.persistedSeq[gameID]
	s.persistedSeqMu.Unlock()

	newLast := last
	for _, rec := range log {
		if rec.Sequence <= last {
			continue
		}
		if err := s.store.AppendAction(storedb.GameActionRow{
			GameID:     gameID,
			Sequence:   rec.Sequence,
			SeatIndex:  rec.SeatIndex,
			Action:     string(rec.Action),
			Amount:     rec.Amount,
			Phase:      string(rec.Phase),
			HandNumber: rec.HandNumber,
		}); err != nil {
			s.log.Errorf("persist action %d for %s: %v", rec.Sequence, gameID, err)
			continue
		}
		newLast = rec.Sequence
	}

	if newLast != last {
		s.persistedSeqMu.Lock()
		s.persistedSeq[gameID] = newLast
		s.persistedSeqMu.Unlock()
	}
}

// restoreTables reloads every persisted table on startup. Restored tables
// resume at WAITING_FOR_PLAYERS; a hand in flight when the process stopped
// is not replayed mid-hand — seats keep their settled stacks from the last
// committed snapshot and must ready up again, which is simpler than
// reconstructing deck/turn state and matches §7's "last committed snapshot
// remains authoritative" guidance for anything short of a full WAL.
func (s *Server) restoreTables() error {
	ids, err := s.store.AllGameIDs()
	if err != nil {
		return err
	}
	for _, id := range ids {
		if err := s.restoreTable(id); err != nil {
			s.log.Errorf("restore table %s: %v", id, err)
		}
	}
	return nil
}

func (s *Server) restoreTable(id string) error {
	gs, err := s.store.LoadGame(id)
	if err != nil {
		return err
	}
	seats, err := s.store.LoadPlayerGames(id)
	if err != nil {
		return err
	}

	cfg := poker.TableConfig{
		ID:            gs.ID,
		HostID:        gs.HostID,
		MinPlayers:    gs.MinPlayers,
		MaxPlayers:    gs.MaxPlayers,
		SmallBlind:    gs.SmallBlind,
		BigBlind:      gs.BigBlind,
		MinBuyIn:      gs.MinBuyIn,
		MaxBuyIn:      gs.MaxBuyIn,
		StartingChips: gs.StartingChips,
		Log:           s.log,
		GameLog:       s.log,
	}
	t, err := s.coord.CreateTable(cfg)
	if err != nil {
		return err
	}

	for _, row := range seats {
		if row.CashedOut {
			continue
		}
		seat, joinErr := t.Join(row.PlayerID, row.Stack)
		if joinErr != nil {
			s.log.Errorf("restore seat %s at %s: %v", row.PlayerID, id, joinErr)
			continue
		}
		seat.StartingStack = row.StartingStack
	}

	s.log.Infof("restored table %s with %d seats", id, len(seats))
	return nil
}
