package game

import (
	"run_the_numbers/internal/model"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func countComposition(deck []model.Card) (numbers, faces, jokers int) {
	for _, c := range deck {
		switch {
		case c.Rank == model.RankJoker:
			jokers++
		case c.Rank.IsFace():
			faces++
		default:
			numbers++
		}
	}
	return
}

func TestNewDeck(t *testing.T) {
	deck := NewDeck()
	require.Len(t, deck, DeckSize)

	numbers, faces, jokers := countComposition(deck)
	assert.Equal(t, 40, numbers)
	assert.Equal(t, 12, faces)
	assert.Equal(t, 1, jokers)

	for _, c := range deck {
		assert.Equal(t, c.Rank.IsStopper(), c.IsStopper, c.Label())
		if c.Rank == model.RankJoker {
			assert.Equal(t, model.SuitNone, c.Suit)
		} else {
			assert.NotEqual(t, model.SuitNone, c.Suit, c.Label())
		}
	}

	assert.Equal(t, deck, NewDeck(), "unshuffled order is deterministic")
	assert.Equal(t, "A♠", deck[0].Label())
	assert.Equal(t, "Joker", deck[DeckSize-1].Label())
}

func TestShufflePreservesComposition(t *testing.T) {
	want := make(map[string]int)
	for _, c := range NewDeck() {
		want[c.Label()]++
	}

	for i := 0; i < 200; i++ {
		deck := NewDeck()
		Shuffle(deck)
		require.Len(t, deck, DeckSize)

		got := make(map[string]int)
		for _, c := range deck {
			got[c.Label()]++
		}
		require.Equal(t, want, got)

		numbers, faces, jokers := countComposition(deck)
		require.Equal(t, 40, numbers)
		require.Equal(t, 12, faces)
		require.Equal(t, 1, jokers)
	}
}

func TestShuffleMovesJoker(t *testing.T) {
	positions := make(map[int]bool)
	for i := 0; i < 300; i++ {
		deck := NewDeck()
		Shuffle(deck)
		for idx, c := range deck {
			if c.Rank == model.RankJoker {
				positions[idx] = true
			}
		}
	}
	assert.Greater(t, len(positions), 10)
}
