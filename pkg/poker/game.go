package poker

import (
	"github.com/decred/slog"
	"github.com/vctt94/pokerbisonrelay/internal/handeval"
	"github.com/vctt94/pokerbisonrelay/internal/pokererr"
	"github.com/vctt94/pokerbisonrelay/pkg/statemachine"
)

// phaseState is a passthrough StateFn that reports its own phase to the
// state machine's callback and then loops on itself; Game.transitionTo
// swaps it out whenever the phase actually changes. This keeps Phase
// transitions flowing through the shared Rob Pike state-function machinery
// instead of a bare field assignment, the same pattern the statemachine
// package was built for.
func phaseState(phase Phase) statemachine.StateFn[Game] {
	var fn statemachine.StateFn[Game]
	fn = func(g *Game, notify func(string, statemachine.StateEvent)) statemachine.StateFn[Game] {
		if notify != nil {
			notify(string(phase), statemachine.StateEntered)
		}
		return fn
	}
	return fn
}

// Status is the coarse lifecycle of a table's game session.
type Status string

const (
	StatusWaiting  Status = "WAITING"
	StatusPlaying  Status = "PLAYING"
	StatusFinished Status = "FINISHED"
)

// Phase is the current betting phase within a hand.
type Phase string

const (
	PhaseWaitingForPlayers Phase = "WAITING_FOR_PLAYERS"
	PhasePreflop           Phase = "PREFLOP"
	PhaseFlop              Phase = "FLOP"
	PhaseTurn              Phase = "TURN"
	PhaseRiver             Phase = "RIVER"
	PhaseShowdown          Phase = "SHOWDOWN"
)

// ActionType is one of the six player actions the state machine accepts.
type ActionType string

const (
	Fold  ActionType = "FOLD"
	Check ActionType = "CHECK"
	Call  ActionType = "CALL"
	Bet   ActionType = "BET"
	Raise ActionType = "RAISE"
	AllIn ActionType = "ALL_IN"
)

// GameActionRecord is one append-only row of the action log (SPEC_FULL.md
// §3, §6.4).
type GameActionRecord struct {
	Sequence   int64
	SeatIndex  int
	Action     ActionType
	Amount     int64
	Phase      Phase
	HandNumber int64
}

// Winner describes one seat's share of a pot at showdown or on a fold-out.
type Winner struct {
	SeatIndex       int
	Amount          int64
	HandDescription string
	BestHand        []Card
	HoleCards       []Card
	Reason          string // "showdown" or "fold"
}

// WinnerInfo is the tagged-variant payout summary for one completed hand
// (SPEC_FULL.md §9 replaces the reference's dynamic JSON payload with this).
type WinnerInfo struct {
	HandNumber int64
	PotTotal   int64
	Winners    []Winner
}

// SeatSummary is one seat's line in the final game summary.
type SeatSummary struct {
	SeatIndex     int
	PlayerID      string
	StartingStack int64
	FinalStack    int64
	WinLoss       int64
}

// GameSummary is computed once, when every seat has cashed out
// (SPEC_FULL.md §4.7).
type GameSummary struct {
	Seats []SeatSummary
}

// HandHistory is the immutable record of one completed hand.
type HandHistory struct {
	HandNumber     int64
	DealerSeat     int
	CommunityCards []Card
	PotTotal       int64
	WinnerInfo     WinnerInfo
	Contributions  map[int]int64
}

// Game is the per-table session state machine (C4) described in
// SPEC_FULL.md §4.4. Unlike the reference implementation, which constructs a
// fresh *Game for every hand, one Game instance lives for the whole session
// and resets its per-hand transient fields at the start of each hand — the
// dealer button, hand_count, and seat roster need to survive across hands,
// which the reference's per-hand recreation does not model cleanly.
//
// All mutation happens under the owning Table's lock (see coordinator.go);
// Game itself holds no mutex.
type Game struct {
	config TableConfig
	log    slog.Logger

	seats map[int]*Seat // seat_index -> seat, shared with Table
	order []int         // seat indices in ascending order (table layout)

	Status Status
	Phase  Phase

	deck           *Deck
	communityCards []Card

	currentBet         int64
	lastRaiseIncrement int64
	reopenFloor        int64 // seats whose CurrentBet==reopenFloor may not re-raise (undersized all-in raise)
	dealerSeat         int
	currentTurnSeat    int
	lastAggressorSeat  int
	handCount          int64

	acted map[int]bool // seats that have acted and matched currentBet this round

	winnerInfo   *WinnerInfo
	gameSummary  *GameSummary
	actionLog    []GameActionRecord
	handHistory  []HandHistory
	nextSequence int64

	dealerChosen bool // false until the first hand rotates the button

	sm *statemachine.StateMachine[Game]
}

// NewGame creates a session bound to the given seat roster. seats must be
// keyed by seat index and shared with the owning Table.
func NewGame(cfg TableConfig, seats map[int]*Seat) *Game {
	g := &Game{
		config: cfg,
		log:    cfg.GameLog,
		seats:  seats,
		Status: StatusWaiting,
		Phase:  PhaseWaitingForPlayers,
	}
	g.sm = statemachine.NewStateMachine(g, phaseState(PhaseWaitingForPlayers))
	return g
}

// transitionTo moves the hand to a new phase, updating both the plain Phase
// field transport/persistence code reads and the underlying state machine.
func (g *Game) transitionTo(phase Phase) {
	g.Phase = phase
	g.sm.SetState(phaseState(phase))
}

func (g *Game) seatOrder() []int {
	order := make([]int, 0, len(g.seats))
	for idx := range g.seats {
		order = append(order, idx)
	}
	sortInts(order)
	return order
}

func sortInts(s []int) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j-1] > s[j]; j-- {
			s[j-1], s[j] = s[j], s[j-1]
		}
	}
}

// eligibleForHand returns non-cashed-out seats with a positive stack,
// ascending by index.
func (g *Game) eligibleForHand() []int {
	var out []int
	for _, idx := range g.seatOrder() {
		s := g.seats[idx]
		if !s.CashedOut && s.Stack > 0 {
			out = append(out, idx)
		}
	}
	return out
}

// clockwiseFrom returns seat indices starting immediately after `from`,
// walking the full table layout (g.seatOrder()) and keeping only seats for which
// keep returns true.
func (g *Game) clockwiseFrom(from int, keep func(*Seat) bool) []int {
	layout := g.seatOrder()
	if len(layout) == 0 {
		return nil
	}
	start := 0
	for i, idx := range layout {
		if idx == from {
			start = i
			break
		}
	}
	var out []int
	for i := 1; i <= len(layout); i++ {
		idx := layout[(start+i)%len(layout)]
		if keep(g.seats[idx]) {
			out = append(out, idx)
		}
	}
	return out
}

// StartHand runs the hand start procedure of SPEC_FULL.md §4.4. Requires at
// least two eligible (non-cashed-out, funded) seats.
func (g *Game) StartHand(seed *int64) error {
	eligible := g.eligibleForHand()
	if len(eligible) < 2 {
		return pokererr.New(pokererr.GameNotWaiting, "need at least 2 funded seats, have %d", len(eligible))
	}

	g.Status = StatusPlaying
	g.handCount++
	g.winnerInfo = nil

	// 1. rotate dealer
	if !g.dealerChosen {
		g.dealerSeat = eligible[0]
		g.dealerChosen = true
	} else {
		next := g.clockwiseFrom(g.dealerSeat, func(s *Seat) bool { return !s.CashedOut && s.Stack > 0 })
		if len(next) == 0 {
			return pokererr.New(pokererr.GameNotWaiting, "no eligible dealer candidate")
		}
		g.dealerSeat = next[0]
	}

	// 2-3. reset seats, mark active
	for _, idx := range g.seatOrder() {
		g.seats[idx].resetForHand()
	}

	// 4. fresh deck, deal hole cards clockwise from left of dealer
	g.deck = NewDeck(seed)
	g.communityCards = nil
	active := g.clockwiseFrom(g.dealerSeat, func(s *Seat) bool { return s.IsActive })
	active = append([]int{}, active...)
	// deal one card at a time around the table, twice, matching live dealing order
	for round := 0; round < 2; round++ {
		for _, idx := range active {
			cards, err := g.deck.Deal(1)
			if err != nil {
				return err
			}
			g.seats[idx].HoleCards = append(g.seats[idx].HoleCards, cards[0])
		}
	}

	// 5. post blinds
	sbSeat, bbSeat, err := g.blindSeats(active)
	if err != nil {
		return err
	}
	g.postBlind(sbSeat, g.config.SmallBlind)
	g.postBlind(bbSeat, g.config.BigBlind)

	// 6. opening state
	g.transitionTo(PhasePreflop)
	g.currentBet = g.config.BigBlind
	g.lastRaiseIncrement = g.config.BigBlind
	g.reopenFloor = -1
	g.lastAggressorSeat = bbSeat
	g.acted = map[int]bool{}

	if len(active) == 2 {
		// heads-up: dealer (=SB) acts first preflop
		g.currentTurnSeat = sbSeat
	} else {
		afterBB := g.clockwiseFrom(bbSeat, func(s *Seat) bool { return s.canAct() })
		if len(afterBB) == 0 {
			g.currentTurnSeat = bbSeat
		} else {
			g.currentTurnSeat = afterBB[0]
		}
	}

	if !g.anyoneCanAct() {
		return g.maybeAutoAdvance()
	}
	if !g.seats[g.currentTurnSeat].canAct() {
		g.advanceTurn()
	}
	return nil
}

// blindSeats returns (smallBlindSeat, bigBlindSeat) for this hand. In
// heads-up play the dealer posts the small blind and acts first preflop; the
// other seat posts the big blind — SPEC_FULL.md §4.4.
func (g *Game) blindSeats(active []int) (sb, bb int, err error) {
	if len(active) == 2 {
		return g.dealerSeat, otherOf(active, g.dealerSeat), nil
	}
	if len(active) < 2 {
		return 0, 0, pokererr.New(pokererr.GameNotWaiting, "not enough active seats for blinds")
	}
	sbSeat := active[0]
	bbIdx := (indexOf(active, sbSeat) + 1) % len(active)
	return sbSeat, active[bbIdx], nil
}

func otherOf(pair []int, not int) int {
	for _, v := range pair {
		if v != not {
			return v
		}
	}
	return not
}

func indexOf(s []int, v int) int {
	for i, x := range s {
		if x == v {
			return i
		}
	}
	return 0
}

func (g *Game) postBlind(seatIdx int, amount int64) {
	s := g.seats[seatIdx]
	posted := amount
	if posted > s.Stack {
		posted = s.Stack
	}
	s.Stack -= posted
	s.CurrentBet += posted
	s.TotalBetThisHand += posted
	if s.Stack == 0 {
		s.IsAllIn = true
	}
	g.logAction(seatIdx, Bet, posted)
}

func (g *Game) logAction(seatIdx int, action ActionType, amount int64) {
	g.nextSequence++
	g.actionLog = append(g.actionLog, GameActionRecord{
		Sequence:   g.nextSequence,
		SeatIndex:  seatIdx,
		Action:     action,
		Amount:     amount,
		Phase:      g.Phase,
		HandNumber: g.handCount,
	})
}

// ActionLog returns the append-only log recorded so far.
func (g *Game) ActionLog() []GameActionRecord { return append([]GameActionRecord{}, g.actionLog...) }

// pot is computed, never stored redundantly, matching SPEC_FULL.md §3's pot
// invariant (pot = sum of total_bet_this_hand).
func (g *Game) pot() int64 {
	var total int64
	for _, s := range g.seats {
		total += s.TotalBetThisHand
	}
	return total
}

// Apply validates and applies one action from seatIdx, then runs the
// advancement loop (SPEC_FULL.md §4.5) until the hand reaches a stable
// state. This is the sole mutation entry point C5's coordinator calls under
// the table lease.
func (g *Game) Apply(seatIdx int, action ActionType, amount int64) error {
	if g.Status != StatusPlaying {
		return pokererr.New(pokererr.GameNotWaiting, "no hand in progress")
	}
	if seatIdx != g.currentTurnSeat {
		return pokererr.New(pokererr.NotYourTurn, "seat %d acted out of turn", seatIdx)
	}
	seat, ok := g.seats[seatIdx]
	if !ok || !seat.canAct() {
		return pokererr.New(pokererr.InvalidAction, "seat %d cannot act", seatIdx)
	}

	if err := g.validateAndApply(seat, action, amount); err != nil {
		return err
	}

	return g.maybeAutoAdvance()
}

func (g *Game) validateAndApply(seat *Seat, action ActionType, amount int64) error {
	switch action {
	case Fold:
		seat.HasFolded = true
		g.acted[seat.Index] = true
		g.logAction(seat.Index, Fold, 0)

	case Check:
		if seat.CurrentBet != g.currentBet {
			return pokererr.New(pokererr.CheckWhenFacingBet, "current bet is %d", g.currentBet)
		}
		g.acted[seat.Index] = true
		g.logAction(seat.Index, Check, 0)

	case Call:
		if g.currentBet <= seat.CurrentBet {
			return pokererr.New(pokererr.InvalidAction, "nothing to call")
		}
		gap := g.currentBet - seat.CurrentBet
		pay := gap
		if pay > seat.Stack {
			pay = seat.Stack // short call, forces all-in, does not reopen
		}
		g.commit(seat, pay)
		g.acted[seat.Index] = true
		g.logAction(seat.Index, Call, pay)

	case Bet:
		if g.currentBet != 0 {
			return pokererr.New(pokererr.InvalidAction, "cannot bet, a bet is already live")
		}
		if amount < g.config.BigBlind {
			return pokererr.New(pokererr.BetBelowMin, "bet must be at least %d", g.config.BigBlind)
		}
		if amount > seat.Stack {
			return pokererr.New(pokererr.InsufficientStack, "seat %d has only %d", seat.Index, seat.Stack)
		}
		g.commit(seat, amount)
		g.openAction(seat, amount, true)
		g.logAction(seat.Index, Bet, amount)

	case Raise:
		if g.currentBet == 0 {
			return pokererr.New(pokererr.InvalidAction, "nothing to raise, use BET")
		}
		if seat.CurrentBet == g.reopenFloor {
			return pokererr.New(pokererr.RaiseBelowMin, "action is not reopened for seat %d", seat.Index)
		}
		minRaiseTo := g.currentBet + max64(g.lastRaiseIncrement, g.config.BigBlind)
		maxRaiseTo := seat.Stack + seat.CurrentBet
		allIn := amount == maxRaiseTo
		if amount < minRaiseTo && !allIn {
			return pokererr.New(pokererr.RaiseBelowMin, "raise must total at least %d", minRaiseTo)
		}
		if amount > maxRaiseTo {
			return pokererr.New(pokererr.InsufficientStack, "seat %d cannot raise to %d", seat.Index, amount)
		}
		delta := amount - seat.CurrentBet
		g.commit(seat, delta)
		fullRaise := amount >= minRaiseTo
		g.openAction(seat, amount, fullRaise)
		g.logAction(seat.Index, Raise, amount)

	case AllIn:
		total := seat.CurrentBet + seat.Stack
		if g.currentBet == 0 {
			return g.validateAndApply(seat, Bet, total)
		}
		return g.validateAndApply(seat, Raise, total)

	default:
		return pokererr.New(pokererr.InvalidAction, "unknown action %q", action)
	}
	return nil
}

// commit moves `amount` chips from the seat's stack into its current-round
// and hand-total bet trackers.
func (g *Game) commit(seat *Seat, amount int64) {
	seat.Stack -= amount
	seat.CurrentBet += amount
	seat.TotalBetThisHand += amount
	if seat.Stack == 0 {
		seat.IsAllIn = true
	}
}

// openAction records a new aggressive action. fullRaise distinguishes a
// normal/legal raise (reopens action for everyone) from an undersized
// all-in raise (reopens action only for seats that have not yet matched the
// prior level) — SPEC_FULL.md §4.4's reopen caveat.
func (g *Game) openAction(seat *Seat, newTotal int64, fullRaise bool) {
	previousBet := g.currentBet
	g.currentBet = newTotal
	g.lastAggressorSeat = seat.Index
	if fullRaise {
		g.lastRaiseIncrement = newTotal - previousBet
		g.reopenFloor = -1
		g.acted = map[int]bool{seat.Index: true}
	} else {
		// undersized all-in raise: seats that already matched `previousBet`
		// may not raise again, but still owe the small increment to stay in.
		g.reopenFloor = previousBet
		g.acted = map[int]bool{seat.Index: true}
		for idx, s := range g.seats {
			if s.CurrentBet == previousBet && idx != seat.Index {
				// still needs to act (call the increment or fold); not reopened
				// for raising, enforced in validateAndApply via reopenFloor.
			}
		}
	}
}

// roundClosed reports whether every seat still in the hand has either
// matched currentBet and acted, or is all-in/folded. Blinds posting does not
// count as having acted, which is what makes the standard big-blind option
// fall out of this generic rule with no special-casing.
func (g *Game) roundClosed() bool {
	for _, idx := range g.seatOrder() {
		s := g.seats[idx]
		if !s.InHand() || s.IsAllIn {
			continue
		}
		if !g.acted[idx] || s.CurrentBet != g.currentBet {
			return false
		}
	}
	return true
}

func (g *Game) activeInHand() []int {
	var out []int
	for _, idx := range g.seatOrder() {
		if g.seats[idx].InHand() {
			out = append(out, idx)
		}
	}
	return out
}

// maybeAutoAdvance is the coordinator's advancement loop (SPEC_FULL.md
// §4.5): after any action that closes a round, keep advancing (dealing,
// skipping all-in seats, resolving showdown) until a human seat must act or
// the hand ends.
func (g *Game) maybeAutoAdvance() error {
	for {
		active := g.activeInHand()
		if len(active) <= 1 {
			return g.resolveFoldWin(active)
		}
		if !g.roundClosed() {
			g.advanceTurn()
			return nil
		}
		if err := g.advancePhase(); err != nil {
			return err
		}
		if g.Phase == PhaseShowdown {
			return g.resolveShowdown()
		}
		// if everyone left is all-in, keep auto-advancing without stopping
		// for input (SPEC_FULL.md §4.5 "auto-act for zero-choice seats").
		if !g.anyoneCanAct() {
			continue
		}
		return nil
	}
}

func (g *Game) anyoneCanAct() bool {
	for _, idx := range g.activeInHand() {
		if g.seats[idx].canAct() {
			return true
		}
	}
	return false
}

// advanceTurn moves current_turn_seat to the next seat that can still act.
func (g *Game) advanceTurn() {
	next := g.clockwiseFrom(g.currentTurnSeat, func(s *Seat) bool { return s.canAct() })
	if len(next) > 0 {
		g.currentTurnSeat = next[0]
	}
}

// advancePhase rolls current-round bets into the hand total, deals the next
// street, and resets round-scoped state.
func (g *Game) advancePhase() error {
	for _, s := range g.seats {
		s.CurrentBet = 0
	}
	g.lastRaiseIncrement = g.config.BigBlind
	g.reopenFloor = -1
	g.acted = map[int]bool{}

	switch g.Phase {
	case PhasePreflop:
		g.transitionTo(PhaseFlop)
		if err := g.dealCommunity(3); err != nil {
			return err
		}
	case PhaseFlop:
		g.transitionTo(PhaseTurn)
		if err := g.dealCommunity(1); err != nil {
			return err
		}
	case PhaseTurn:
		g.transitionTo(PhaseRiver)
		if err := g.dealCommunity(1); err != nil {
			return err
		}
	case PhaseRiver:
		g.transitionTo(PhaseShowdown)
		return nil
	default:
		return pokererr.NewFatal(g.config.ID, pokererr.InvalidAction, "advancePhase called in phase %s", g.Phase)
	}

	first := g.clockwiseFrom(g.dealerSeat, func(s *Seat) bool { return s.canAct() })
	if len(first) > 0 {
		g.currentTurnSeat = first[0]
	}
	return nil
}

func (g *Game) dealCommunity(n int) error {
	if err := g.deck.Burn(); err != nil {
		return err
	}
	cards, err := g.deck.Deal(n)
	if err != nil {
		return err
	}
	g.communityCards = append(g.communityCards, cards...)
	return nil
}

// resolveFoldWin implements the single-winner fast path: when only one seat
// remains non-folded, it wins the whole pot without showdown.
func (g *Game) resolveFoldWin(remaining []int) error {
	if len(remaining) != 1 {
		return pokererr.NewFatal(g.config.ID, pokererr.InvalidAction, "fold-win with %d seats remaining", len(remaining))
	}
	winnerSeat := remaining[0]
	amount := g.pot()
	winner := Winner{SeatIndex: winnerSeat, Amount: amount, Reason: "fold"}
	g.seats[winnerSeat].Stack += amount

	info := &WinnerInfo{HandNumber: g.handCount, PotTotal: amount, Winners: []Winner{winner}}
	g.winnerInfo = info
	g.recordHandHistory(info)
	return g.finishHand()
}

// resolveShowdown evaluates every showdown-eligible hand, runs the pot
// engine, and records the result.
func (g *Game) resolveShowdown() error {
	eligible := g.activeInHand() // not folded; all-in seats are still in this set
	hands := make(map[int]handeval.Value, len(eligible))
	for _, idx := range eligible {
		seat := g.seats[idx]
		v, err := handeval.Evaluate(seat.HoleCards, g.communityCards)
		if err != nil {
			return pokererr.NewFatal(g.config.ID, pokererr.InvalidAction, "hand evaluation failed for seat %d: %v", idx, err)
		}
		hands[idx] = v
		seat.Shown = true
	}

	contributions := make([]Contribution, 0, len(g.seats))
	for idx, s := range g.seats {
		if s.TotalBetThisHand > 0 {
			contributions = append(contributions, Contribution{SeatIndex: idx, Amount: s.TotalBetThisHand})
		}
	}
	eligibleSet := make(map[int]bool, len(eligible))
	for _, idx := range eligible {
		eligibleSet[idx] = true
	}

	pots := BuildSidePots(contributions, eligibleSet)
	seatOrder := g.clockwiseFrom(g.dealerSeat, func(*Seat) bool { return true })
	payouts := DistributePots(pots, hands, seatOrder)

	total := g.pot()
	winners := make([]Winner, 0, len(payouts))
	for _, p := range payouts {
		seat := g.seats[p.SeatIndex]
		seat.Stack += p.Amount
		hv := hands[p.SeatIndex]
		winners = append(winners, Winner{
			SeatIndex:       p.SeatIndex,
			Amount:          p.Amount,
			HandDescription: hv.Description,
			BestHand:        hv.BestHand,
			HoleCards:       seat.HoleCards,
			Reason:          "showdown",
		})
	}

	info := &WinnerInfo{HandNumber: g.handCount, PotTotal: total, Winners: winners}
	g.winnerInfo = info
	g.recordHandHistory(info)
	return g.finishHand()
}

func (g *Game) recordHandHistory(info *WinnerInfo) {
	contrib := make(map[int]int64, len(g.seats))
	for idx, s := range g.seats {
		contrib[idx] = s.TotalBetThisHand
	}
	g.handHistory = append(g.handHistory, HandHistory{
		HandNumber:     g.handCount,
		DealerSeat:     g.dealerSeat,
		CommunityCards: append([]Card{}, g.communityCards...),
		PotTotal:       info.PotTotal,
		WinnerInfo:     *info,
		Contributions:  contrib,
	})
}

// HandHistories returns completed hands, newest first (SPEC_FULL.md §6.1
// GET .../hand-history).
func (g *Game) HandHistories() []HandHistory {
	out := make([]HandHistory, len(g.handHistory))
	for i, h := range g.handHistory {
		out[len(g.handHistory)-1-i] = h
	}
	return out
}

// finishHand transitions to WAITING_FOR_PLAYERS and checks whether every
// seat has cashed out, in which case the session is FINISHED.
func (g *Game) finishHand() error {
	g.transitionTo(PhaseWaitingForPlayers)
	g.Status = StatusWaiting
	g.CheckSessionComplete()
	return nil
}

// CheckSessionComplete marks the session FINISHED and computes the final
// summary once every seat has cashed out. A hand ending is one path into
// this state, but a seat can also be the last to cash out between hands
// (SPEC_FULL.md §8 scenario 6), so Table.CashOut calls this too rather than
// only checking at hand boundaries.
func (g *Game) CheckSessionComplete() {
	if g.Status == StatusPlaying {
		return
	}
	allCashedOut := true
	for _, s := range g.seats {
		if !s.CashedOut {
			allCashedOut = false
			break
		}
	}
	if allCashedOut && len(g.seats) > 0 {
		g.Status = StatusFinished
		g.gameSummary = g.computeSummary()
	}
}

func (g *Game) computeSummary() *GameSummary {
	summary := &GameSummary{}
	for _, idx := range g.seatOrder() {
		s := g.seats[idx]
		final := s.FinalStack
		summary.Seats = append(summary.Seats, SeatSummary{
			SeatIndex:     idx,
			PlayerID:      s.PlayerID,
			StartingStack: s.StartingStack,
			FinalStack:    final,
			WinLoss:       final - s.StartingStack,
		})
	}
	return summary
}

// DealerSeat returns the current hand's dealer seat index.
func (g *Game) DealerSeat() int { return g.dealerSeat }

// CurrentTurnSeat returns the seat whose action is awaited, or the last
// value set if no hand is in progress.
func (g *Game) CurrentTurnSeat() int { return g.currentTurnSeat }

// CommunityCards returns the cards dealt to the board so far this hand.
func (g *Game) CommunityCards() []Card { return append([]Card{}, g.communityCards...) }

// Pot returns the total chips committed this hand across all seats.
func (g *Game) Pot() int64 { return g.pot() }

// CurrentBet returns the amount a seat must match to stay in the current
// betting round.
func (g *Game) CurrentBet() int64 { return g.currentBet }

// HandCount returns how many hands have been started this session.
func (g *Game) HandCount() int64 { return g.handCount }

// WinnerInfo returns the most recently completed hand's payout summary, or
// nil if no hand has finished yet.
func (g *Game) WinnerInfo() *WinnerInfo { return g.winnerInfo }

// Summary returns the final bankroll summary once the session has reached
// FINISHED, or nil otherwise.
func (g *Game) Summary() *GameSummary { return g.gameSummary }

// ReadyToStart reports whether every non-cashed-out seat has signaled ready
// (SPEC_FULL.md §4.7).
func (g *Game) ReadyToStart() bool {
	any := false
	for _, s := range g.seats {
		if s.CashedOut {
			continue
		}
		any = true
		if !s.ReadyForNextHand {
			return false
		}
	}
	return any
}
