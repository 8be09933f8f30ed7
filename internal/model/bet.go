package model

type BetType string

const (
	BetTypeNumber       BetType = "number"
	BetTypeSpecificCard BetType = "specific-card"
	BetTypeBustSuit     BetType = "bust-suit"
	BetTypeBustRank     BetType = "bust-rank"
	BetTypeBustJoker    BetType = "bust-joker"
	BetTypeCount        BetType = "count"
)

// BetKind закрытый набор вариантов ставок.
// Реализации есть только в этом пакете.
type BetKind interface {
	Type() BetType
	betKind()
}

// NumberBet выигрывает на каждой карте ранга Rank по лестнице выплат
type NumberBet struct {
	Rank Rank
}

// SpecificCardBet выигрывает один раз за раздачу на конкретной карте
type SpecificCardBet struct {
	Rank Rank
	Suit Suit
}

// BustSuitBet масть картинки-стоппера (джокер не считается)
type BustSuitBet struct {
	Suit Suit
}

// BustRankBet ранг картинки-стоппера
type BustRankBet struct {
	Rank Rank
}

// BustJokerBet раздача закончилась джокером
type BustJokerBet struct{}

// CountBet количество карт в раздаче вместе со стоппером.
// Open: диапазон [Min, ∞), иначе [Min, Max].
type CountBet struct {
	Min  int
	Max  int
	Open bool
}

func (NumberBet) Type() BetType       { return BetTypeNumber }
func (SpecificCardBet) Type() BetType { return BetTypeSpecificCard }
func (BustSuitBet) Type() BetType     { return BetTypeBustSuit }
func (BustRankBet) Type() BetType     { return BetTypeBustRank }
func (BustJokerBet) Type() BetType    { return BetTypeBustJoker }
func (CountBet) Type() BetType        { return BetTypeCount }

func (NumberBet) betKind()       {}
func (SpecificCardBet) betKind() {}
func (BustSuitBet) betKind()     {}
func (BustRankBet) betKind()     {}
func (BustJokerBet) betKind()    {}
func (CountBet) betKind()        {}

// Matches попадает ли количество карт в диапазон ставки
func (c CountBet) Matches(totalCards int) bool {
	if c.Open {
		return totalCards >= c.Min
	}
	return totalCards >= c.Min && totalCards <= c.Max
}

// BetDefinition описание игрового поля для ставки. Неизменяемо после загрузки конфига.
type BetDefinition struct {
	Key            string
	Label          string
	Payout         int
	LockDuringHand bool
	Kind           BetKind
}

func (d BetDefinition) Type() BetType {
	if d.Kind == nil {
		return ""
	}
	return d.Kind.Type()
}

// LayoutEntry фишки одной ставки в раскладке
type LayoutEntry struct {
	Key   string `json:"key"`
	Chips []int  `json:"chips"`
}

// Layout раскладка ставок для повтора (rebet)
type Layout []LayoutEntry

func (l Layout) Total() int {
	total := 0
	for _, e := range l {
		for _, c := range e.Chips {
			total += c
		}
	}
	return total
}

func (l Layout) Clone() Layout {
	if l == nil {
		return nil
	}
	out := make(Layout, len(l))
	for i, e := range l {
		out[i] = LayoutEntry{Key: e.Key, Chips: append([]int(nil), e.Chips...)}
	}
	return out
}

// BetView состояние активной ставки для клиента
type BetView struct {
	Key   string  `json:"key"`
	Label string  `json:"label"`
	Type  BetType `json:"type"`
	Stake int     `json:"stake"`
	Hits  int     `json:"hits"`
	Paid  int     `json:"paid"`
	Chips []int   `json:"chips"`
}
