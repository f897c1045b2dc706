// Package handeval ranks the best 5-card hand out of 7 cards (2 hole + 5
// community). It wraps github.com/chehsunliu/poker exactly as the reference
// engine does, re-exposing the library's "lower is better" rank as a
// total-ordered "higher Score is better" Value so callers never have to
// remember which direction is which.
package handeval

import (
	"fmt"
	"sort"

	chehsunliu "github.com/chehsunliu/poker"
	"github.com/vctt94/pokerbisonrelay/pkg/poker"
)

// Category is a hand category, weakest first.
type Category int

const (
	HighCard Category = iota
	Pair
	TwoPair
	ThreeOfAKind
	Straight
	Flush
	FullHouse
	FourOfAKind
	StraightFlush
)

func (c Category) String() string {
	switch c {
	case StraightFlush:
		return "Straight Flush"
	case FourOfAKind:
		return "Four of a Kind"
	case FullHouse:
		return "Full House"
	case Flush:
		return "Flush"
	case Straight:
		return "Straight"
	case ThreeOfAKind:
		return "Three of a Kind"
	case TwoPair:
		return "Two Pair"
	case Pair:
		return "Pair"
	default:
		return "High Card"
	}
}

// chehsunliuWorstRank is one past chehsunliu's worst possible rank (7462),
// used to invert its "lower is better" convention into "higher is better".
const chehsunliuWorstRank = 7463

// Value is a complete hand evaluation: a total-ordered Score (higher wins),
// the Category for display, and the literal 5-card BestHand selection used
// for broadcast UI.
type Value struct {
	Score       int
	Category    Category
	BestHand    []poker.Card
	Description string
}

// Compare returns 1 if a beats b, -1 if b beats a, 0 on an exact tie (same
// category and kickers, not merely the same category).
func Compare(a, b Value) int {
	switch {
	case a.Score > b.Score:
		return 1
	case a.Score < b.Score:
		return -1
	default:
		return 0
	}
}

// Evaluate ranks the best 5-card hand from the given hole and community
// cards (2 and 5 respectively in normal play; Evaluate also accepts 3 or 4
// community cards, i.e. 5 to 7 cards in all, though the engine only calls
// this at showdown with 5 on board).
func Evaluate(hole, community []poker.Card) (Value, error) {
	all := make([]poker.Card, 0, len(hole)+len(community))
	all = append(all, hole...)
	all = append(all, community...)

	cc, err := toChehsunliu(all)
	if err != nil {
		return Value{}, err
	}

	rank := chehsunliu.Evaluate(cc)
	rankClass := chehsunliu.RankClass(rank)

	best, err := bestFiveCards(all, rank)
	if err != nil {
		return Value{}, err
	}

	return Value{
		Score:       chehsunliuWorstRank - int(rank),
		Category:    categoryFromRankClass(rankClass),
		BestHand:    best,
		Description: chehsunliu.RankString(rank),
	}, nil
}

func categoryFromRankClass(rankClass int32) Category {
	switch rankClass {
	case 1:
		return StraightFlush
	case 2:
		return FourOfAKind
	case 3:
		return FullHouse
	case 4:
		return Flush
	case 5:
		return Straight
	case 6:
		return ThreeOfAKind
	case 7:
		return TwoPair
	case 8:
		return Pair
	default:
		return HighCard
	}
}

func toChehsunliu(cards []poker.Card) ([]chehsunliu.Card, error) {
	out := make([]chehsunliu.Card, 0, len(cards))
	for _, c := range cards {
		cc, err := convertCard(c)
		if err != nil {
			return nil, err
		}
		out = append(out, cc)
	}
	return out, nil
}

func convertCard(c poker.Card) (chehsunliu.Card, error) {
	var rankChar byte
	switch c.Rank {
	case poker.Two:
		rankChar = '2'
	case poker.Three:
		rankChar = '3'
	case poker.Four:
		rankChar = '4'
	case poker.Five:
		rankChar = '5'
	case poker.Six:
		rankChar = '6'
	case poker.Seven:
		rankChar = '7'
	case poker.Eight:
		rankChar = '8'
	case poker.Nine:
		rankChar = '9'
	case poker.Ten:
		rankChar = 'T'
	case poker.Jack:
		rankChar = 'J'
	case poker.Queen:
		rankChar = 'Q'
	case poker.King:
		rankChar = 'K'
	case poker.Ace:
		rankChar = 'A'
	default:
		return chehsunliu.Card(0), fmt.Errorf("invalid rank: %v", c.Rank)
	}

	var suitChar byte
	switch c.Suit {
	case poker.Spades:
		suitChar = 's'
	case poker.Hearts:
		suitChar = 'h'
	case poker.Diamonds:
		suitChar = 'd'
	case poker.Clubs:
		suitChar = 'c'
	default:
		return chehsunliu.Card(0), fmt.Errorf("invalid suit: %v", c.Suit)
	}

	return chehsunliu.NewCard(string([]byte{rankChar, suitChar})), nil
}

// bestFiveCards recovers the literal 5 cards chehsunliu used to produce
// targetRank, for the broadcast UI. chehsunliu.Evaluate only returns the
// numeric rank of the best combination, not which cards made it, so this
// brute-forces every 5-card subset (at most C(7,5)=21) and keeps the first
// one matching the target rank.
func bestFiveCards(cards []poker.Card, targetRank int32) ([]poker.Card, error) {
	if len(cards) <= 5 {
		out := make([]poker.Card, len(cards))
		copy(out, cards)
		return out, nil
	}

	var best []poker.Card
	err := forEachCombination(cards, 5, func(combo []poker.Card) bool {
		cc, convErr := toChehsunliu(combo)
		if convErr != nil {
			return true
		}
		if chehsunliu.Evaluate(cc) == targetRank {
			best = append([]poker.Card{}, combo...)
			return false
		}
		return true
	})
	if err != nil {
		return nil, err
	}
	if best == nil {
		// Should not happen: targetRank came from evaluating all of cards.
		sorted := append([]poker.Card{}, cards...)
		sort.Slice(sorted, func(i, j int) bool { return sorted[i].Rank > sorted[j].Rank })
		best = sorted[:5]
	}
	return best, nil
}

// forEachCombination calls fn with every k-combination of cards, stopping
// early if fn returns false.
func forEachCombination(cards []poker.Card, k int, fn func([]poker.Card) bool) error {
	if k > len(cards) || k <= 0 {
		return fmt.Errorf("invalid combination size %d for %d cards", k, len(cards))
	}
	combo := make([]poker.Card, 0, k)
	var recurse func(start int) bool
	recurse = func(start int) bool {
		if len(combo) == k {
			return fn(combo)
		}
		for i := start; i <= len(cards)-(k-len(combo)); i++ {
			combo = append(combo, cards[i])
			if !recurse(i + 1) {
				combo = combo[:len(combo)-1]
				return false
			}
			combo = combo[:len(combo)-1]
		}
		return true
	}
	recurse(0)
	return nil
}
