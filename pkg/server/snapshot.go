package server

import (
	"time"

	"github.com/vctt94/pokerbisonrelay/pkg/poker"
)

// SeatSnapshot is the caller-facing projection of one seat. Grounded on the
// reference's PlayerSnapshot, trimmed to this engine's fields.
type SeatSnapshot struct {
	SeatIndex        int          `json:"seat_index"`
	PlayerID         string       `json:"player_id"`
	Stack            int64        `json:"stack"`
	CurrentBet       int64        `json:"current_bet"`
	HoleCards        []poker.Card `json:"hole_cards"`
	IsActive         bool         `json:"is_active"`
	HasFolded        bool         `json:"has_folded"`
	IsAllIn          bool         `json:"is_all_in"`
	CashedOut        bool         `json:"cashed_out"`
	ReadyForNextHand bool         `json:"ready_for_next_hand"`
	IsDealer         bool         `json:"is_dealer"`
	IsTurn           bool         `json:"is_turn"`
}

// GameSnapshot is the caller-facing projection of one table's session.
type GameSnapshot struct {
	TableID        string         `json:"table_id"`
	Status         poker.Status   `json:"status"`
	Phase          poker.Phase    `json:"phase"`
	Seats          []SeatSnapshot `json:"seats"`
	CommunityCards []poker.Card   `json:"community_cards"`
	Pot            int64          `json:"pot"`
	CurrentBet     int64          `json:"current_bet"`
	DealerSeat     int            `json:"dealer_seat"`
	CurrentTurn    int            `json:"current_turn_seat,omitempty"`
	HandCount      int64          `json:"hand_count"`
	WinnerInfo     *poker.WinnerInfo `json:"winner_info,omitempty"`
	Halted         bool           `json:"halted"`
	HaltReason     string         `json:"halt_reason,omitempty"`
	Timestamp      time.Time      `json:"timestamp"`
}

// BuildSnapshot projects a table's current state for callerID, applying the
// card-privacy filter of SPEC_FULL.md §6.1: hole cards of any other seat are
// hidden unless the hand has reached showdown.
func BuildSnapshot(t *poker.Table, callerID string) GameSnapshot {
	game := t.Game()
	showdown := game.Phase == poker.PhaseShowdown

	var seats []SeatSnapshot
	for _, idx := range sortedSeatIndices(t.Seats()) {
		s := t.Seats()[idx]
		hole := s.HoleCards
		if s.PlayerID != callerID && !showdown && !s.Shown {
			hole = []poker.Card{}
		}
		seats = append(seats, SeatSnapshot{
			SeatIndex:        s.Index,
			PlayerID:         s.PlayerID,
			Stack:            s.Stack,
			CurrentBet:       s.CurrentBet,
			HoleCards:        hole,
			IsActive:         s.IsActive,
			HasFolded:        s.HasFolded,
			IsAllIn:          s.IsAllIn,
			CashedOut:        s.CashedOut,
			ReadyForNextHand: s.ReadyForNextHand,
			IsDealer:         s.Index == game.DealerSeat(),
			IsTurn:           s.Index == game.CurrentTurnSeat(),
		})
	}

	snap := GameSnapshot{
		TableID:        t.Config().ID,
		Status:         game.Status,
		Phase:          game.Phase,
		Seats:          seats,
		CommunityCards: game.CommunityCards(),
		Pot:            game.Pot(),
		CurrentBet:     game.CurrentBet(),
		DealerSeat:     game.DealerSeat(),
		CurrentTurn:    game.CurrentTurnSeat(),
		HandCount:      game.HandCount(),
		WinnerInfo:     game.WinnerInfo(),
		Timestamp:      time.Now(),
	}
	if halted := t.Halted(); halted != nil {
		snap.Halted = true
		snap.HaltReason = halted.Msg
	}
	return snap
}

func sortedSeatIndices(seats map[int]*poker.Seat) []int {
	out := make([]int, 0, len(seats))
	for idx := range seats {
		out = append(out, idx)
	}
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j-1] > out[j]; j-- {
			out[j-1], out[j] = out[j], out[j-1]
		}
	}
	return out
}
