package model

type Suit string

const (
	SuitNone     Suit = ""
	SuitSpades   Suit = "♠"
	SuitHearts   Suit = "♥"
	SuitDiamonds Suit = "♦"
	SuitClubs    Suit = "♣"
)

// Suits порядок мастей при сборке колоды
var Suits = []Suit{SuitSpades, SuitHearts, SuitDiamonds, SuitClubs}

// Name возвращает название масти для ключей ставок и логов
func (s Suit) Name() string {
	switch s {
	case SuitSpades:
		return "spades"
	case SuitHearts:
		return "hearts"
	case SuitDiamonds:
		return "diamonds"
	case SuitClubs:
		return "clubs"
	}
	return ""
}

// ParseSuit принимает как символ масти, так и её название
func ParseSuit(v string) (Suit, bool) {
	for _, s := range Suits {
		if v == string(s) || v == s.Name() {
			return s, true
		}
	}
	return SuitNone, false
}

type Rank string

const (
	RankAce   Rank = "A"
	Rank2     Rank = "2"
	Rank3     Rank = "3"
	Rank4     Rank = "4"
	Rank5     Rank = "5"
	Rank6     Rank = "6"
	Rank7     Rank = "7"
	Rank8     Rank = "8"
	Rank9     Rank = "9"
	Rank10    Rank = "10"
	RankJack  Rank = "J"
	RankQueen Rank = "Q"
	RankKing  Rank = "K"
	RankJoker Rank = "Joker"
)

// NumberRanks номинальные карты (не стопперы)
var NumberRanks = []Rank{RankAce, Rank2, Rank3, Rank4, Rank5, Rank6, Rank7, Rank8, Rank9, Rank10}

// FaceRanks картинки, каждая из них стоппер
var FaceRanks = []Rank{RankJack, RankQueen, RankKing}

// IsStopper true для J, Q, K и джокера
func (r Rank) IsStopper() bool {
	switch r {
	case RankJack, RankQueen, RankKing, RankJoker:
		return true
	}
	return false
}

func (r Rank) IsNumber() bool {
	for _, n := range NumberRanks {
		if n == r {
			return true
		}
	}
	return false
}

func (r Rank) IsFace() bool {
	return r == RankJack || r == RankQueen || r == RankKing
}

// Name название ранга для подписей
func (r Rank) Name() string {
	switch r {
	case RankAce:
		return "Ace"
	case RankJack:
		return "Jack"
	case RankQueen:
		return "Queen"
	case RankKing:
		return "King"
	case RankJoker:
		return "Joker"
	}
	return string(r)
}

type Card struct {
	Rank      Rank `json:"rank"`
	Suit      Suit `json:"suit,omitempty"`
	IsStopper bool `json:"is_stopper"`
}

func NewCard(rank Rank, suit Suit) Card {
	return Card{Rank: rank, Suit: suit, IsStopper: rank.IsStopper()}
}

// Label текстовое представление карты: "7♠", "Joker"
func (c Card) Label() string {
	if c.Rank == RankJoker {
		return string(RankJoker)
	}
	return string(c.Rank) + string(c.Suit)
}
