package game

import (
	"math/rand/v2"
	"run_the_numbers/internal/model"
)

// DeckSize 40 номинальных, 12 картинок и джокер
const DeckSize = 53

// NewDeck собирает колоду в фиксированном порядке: по мастям A..10, J, Q, K, в конце джокер
func NewDeck() []model.Card {
	deck := make([]model.Card, 0, DeckSize)
	for _, suit := range model.Suits {
		for _, rank := range model.NumberRanks {
			deck = append(deck, model.NewCard(rank, suit))
		}
		for _, rank := range model.FaceRanks {
			deck = append(deck, model.NewCard(rank, suit))
		}
	}
	return append(deck, model.NewCard(model.RankJoker, model.SuitNone))
}

// Shuffle перемешивает колоду на месте (Фишер-Йетс)
func Shuffle(deck []model.Card) {
	for i := len(deck) - 1; i > 0; i-- {
		j := rand.IntN(i + 1)
		deck[i], deck[j] = deck[j], deck[i]
	}
}
