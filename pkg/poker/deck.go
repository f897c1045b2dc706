package poker

import (
	cryptorand "crypto/rand"
	"encoding/binary"
	mathrand "math/rand"

	"github.com/vctt94/pokerbisonrelay/internal/pokererr"
)

// Deck is an ordered 52-card sequence with a cursor marking the next card to
// deal. Shuffled with a cryptographically-seeded Fisher-Yates pass, grounded
// on the reference's *rand.Rand-based Deck.Shuffle but seeded from a CSPRNG
// instead of time.Now().UnixNano() unless the caller supplies a deterministic
// replay seed.
type Deck struct {
	cards  []Card
	cursor int
}

// NewDeck builds and shuffles a fresh 52-card deck. When seed is nil, the
// shuffle source is seeded from crypto/rand so games are not predictable; a
// non-nil seed produces a reproducible shuffle for tests and hand replay.
func NewDeck(seed *int64) *Deck {
	d := &Deck{cards: make([]Card, 0, 52)}
	for _, suit := range []Suit{Spades, Hearts, Diamonds, Clubs} {
		for r := Two; r <= Ace; r++ {
			d.cards = append(d.cards, Card{Rank: r, Suit: suit})
		}
	}
	d.shuffle(resolveSeed(seed))
	return d
}

// resolveSeed returns the caller's seed if given, otherwise 64 bits of
// entropy from crypto/rand. math/rand's Fisher-Yates is kept as the shuffle
// algorithm (matching the reference); only the entropy source changes.
func resolveSeed(seed *int64) int64 {
	if seed != nil {
		return *seed
	}
	var buf [8]byte
	if _, err := cryptorand.Read(buf[:]); err != nil {
		// crypto/rand failing is a platform-level emergency; degrade to a
		// still-unpredictable-ish seed rather than panicking the table.
		return int64(binary.LittleEndian.Uint64(buf[:])) ^ 0x5bd1e995
	}
	return int64(binary.LittleEndian.Uint64(buf[:]))
}

func (d *Deck) shuffle(seed int64) {
	rng := mathrand.New(mathrand.NewSource(seed))
	rng.Shuffle(len(d.cards), func(i, j int) {
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	})
}

// Deal advances the cursor by n and returns the dealt cards in order. Fails
// with DECK_EXHAUSTED if fewer than n cards remain.
func (d *Deck) Deal(n int) ([]Card, error) {
	if d.cursor+n > len(d.cards) {
		return nil, pokererr.New(pokererr.DeckExhausted, "need %d cards, %d remain", n, d.Remaining())
	}
	out := make([]Card, n)
	copy(out, d.cards[d.cursor:d.cursor+n])
	d.cursor += n
	return out, nil
}

// Burn advances the cursor by one card without returning it. This engine
// burns before the flop, turn, and river (see SPEC_FULL.md §4.1).
func (d *Deck) Burn() error {
	if d.cursor+1 > len(d.cards) {
		return pokererr.New(pokererr.DeckExhausted, "no card left to burn")
	}
	d.cursor++
	return nil
}

// Remaining returns how many cards are left to deal.
func (d *Deck) Remaining() int { return len(d.cards) - d.cursor }

// DeckState is the serializable snapshot of a deck used for persistence and
// mid-hand restoration after a process restart.
type DeckState struct {
	RemainingCards []Card `json:"remaining_cards"`
}

// State returns the deck's persistable remainder.
func (d *Deck) State() DeckState {
	out := make([]Card, d.Remaining())
	copy(out, d.cards[d.cursor:])
	return DeckState{RemainingCards: out}
}

// RestoreDeck rebuilds a Deck from a persisted remainder. The restored deck
// only supports dealing forward through what remains; it cannot be reshuffled
// back to 52 cards.
func RestoreDeck(state DeckState) *Deck {
	cards := make([]Card, len(state.RemainingCards))
	copy(cards, state.RemainingCards)
	return &Deck{cards: cards, cursor: 0}
}
