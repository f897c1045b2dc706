package handeval

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vctt94/pokerbisonrelay/pkg/poker"
)

func cards(t *testing.T, ss ...string) []poker.Card {
	t.Helper()
	out := make([]poker.Card, len(ss))
	for i, s := range ss {
		c, err := poker.ParseCard(s)
		require.NoError(t, err)
		out[i] = c
	}
	return out
}

func TestEvaluateRanksStraightFlushAboveFourOfAKind(t *testing.T) {
	sf, err := Evaluate(cards(t, "AS", "KS"), cards(t, "QS", "JS", "TS", "2C", "3D"))
	require.NoError(t, err)
	require.Equal(t, StraightFlush, sf.Category)

	quads, err := Evaluate(cards(t, "AS", "AH"), cards(t, "AC", "AD", "2C", "3D", "4H"))
	require.NoError(t, err)
	require.Equal(t, FourOfAKind, quads.Category)

	require.Equal(t, 1, Compare(sf, quads))
	require.Equal(t, -1, Compare(quads, sf))
}

func TestEvaluateWheelStraightRanksAsFiveHigh(t *testing.T) {
	wheel, err := Evaluate(cards(t, "AS", "2H"), cards(t, "3C", "4D", "5S", "9C", "KD"))
	require.NoError(t, err)
	require.Equal(t, Straight, wheel.Category)

	sixHigh, err := Evaluate(cards(t, "6S", "2D"), cards(t, "3C", "4H", "5D", "9C", "KD"))
	require.NoError(t, err)
	require.Equal(t, Straight, sixHigh.Category)

	// A-2-3-4-5 is the lowest straight, so 2-3-4-5-6 beats it.
	require.Equal(t, 1, Compare(sixHigh, wheel))
}

func TestEvaluateHigherPairBeatsLowerPair(t *testing.T) {
	acesUp, err := Evaluate(cards(t, "AS", "AH"), cards(t, "2C", "7D", "9S", "JC", "4H"))
	require.NoError(t, err)
	twosUp, err := Evaluate(cards(t, "2S", "2H"), cards(t, "AC", "7D", "9S", "JC", "4H"))
	require.NoError(t, err)

	require.Equal(t, Pair, acesUp.Category)
	require.Equal(t, Pair, twosUp.Category)
	require.Equal(t, 1, Compare(acesUp, twosUp))
}

func TestEvaluateIdenticalBestHandsTie(t *testing.T) {
	// Both players play the same board-high-card hand.
	board := cards(t, "2C", "7D", "9S", "JC", "KH")
	a, err := Evaluate(cards(t, "3S", "4H"), board)
	require.NoError(t, err)
	b, err := Evaluate(cards(t, "3D", "4C"), board)
	require.NoError(t, err)
	require.Equal(t, 0, Compare(a, b))
}

func TestEvaluateRejectsInvalidCard(t *testing.T) {
	bad := []poker.Card{{Rank: poker.Rank(99), Suit: poker.Spades}}
	_, err := Evaluate(bad, cards(t, "2C", "7D", "9S", "JC", "KH"))
	require.Error(t, err)
}

func TestEvaluateBestHandHasFiveDistinctCards(t *testing.T) {
	v, err := Evaluate(cards(t, "AS", "AH"), cards(t, "AC", "AD", "2C", "3D", "4H"))
	require.NoError(t, err)
	require.Len(t, v.BestHand, 5)
	require.True(t, poker.CardsDistinct(v.BestHand))
}

func TestCategoryStringMatchesRank(t *testing.T) {
	require.Equal(t, "High Card", HighCard.String())
	require.Equal(t, "Straight Flush", StraightFlush.String())
	require.Equal(t, "Two Pair", TwoPair.String())
}
