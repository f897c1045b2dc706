package poker

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseCardRoundTrip(t *testing.T) {
	cases := []struct {
		in   string
		want Card
	}{
		{"AS", Card{Rank: Ace, Suit: Spades}},
		{"TD", Card{Rank: Ten, Suit: Diamonds}},
		{"10D", Card{Rank: Ten, Suit: Diamonds}},
		{"2c", Card{Rank: Two, Suit: Clubs}},
		{"Kh", Card{Rank: King, Suit: Hearts}},
	}
	for _, c := range cases {
		got, err := ParseCard(c.in)
		require.NoError(t, err)
		require.Equal(t, c.want, got)
	}
}

func TestParseCardRejectsGarbage(t *testing.T) {
	for _, bad := range []string{"", "X", "1Z", "AX", "ZS"} {
		_, err := ParseCard(bad)
		require.Error(t, err)
	}
}

func TestCardStringCanonical(t *testing.T) {
	require.Equal(t, "AS", Card{Rank: Ace, Suit: Spades}.String())
	require.Equal(t, "TC", Card{Rank: Ten, Suit: Clubs}.String())
}

func TestCardJSONRoundTrip(t *testing.T) {
	c := Card{Rank: Queen, Suit: Hearts}
	b, err := json.Marshal(c)
	require.NoError(t, err)
	require.Equal(t, `"QH"`, string(b))

	var back Card
	require.NoError(t, json.Unmarshal(b, &back))
	require.Equal(t, c, back)
}

func TestCardsDistinct(t *testing.T) {
	require.True(t, CardsDistinct([]Card{{Rank: Ace, Suit: Spades}, {Rank: Ace, Suit: Hearts}}))
	require.False(t, CardsDistinct([]Card{{Rank: Ace, Suit: Spades}, {Rank: Ace, Suit: Spades}}))
}
