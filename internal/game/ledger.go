package game

import (
	"fmt"
	"run_the_numbers/internal/model"
)

// ActiveBet ставка текущего раунда
type ActiveBet struct {
	Def   model.BetDefinition
	Stake int
	Hits  int
	Paid  int
	Chips []int
}

func (b *ActiveBet) view() model.BetView {
	return model.BetView{
		Key:   b.Def.Key,
		Label: b.Def.Label,
		Type:  b.Def.Type(),
		Stake: b.Stake,
		Hits:  b.Hits,
		Paid:  b.Paid,
		Chips: append([]int(nil), b.Chips...),
	}
}

func (b *ActiveBet) outcome() model.BetOutcome {
	return model.BetOutcome{
		Key:   b.Def.Key,
		Label: b.Def.Label,
		Type:  b.Def.Type(),
		Stake: b.Stake,
		Paid:  b.Paid,
		Hits:  b.Hits,
		Chips: append([]int(nil), b.Chips...),
	}
}

// Ledger активные ставки раунда в порядке первой постановки.
// Не потокобезопасен, владелец Session.
type Ledger struct {
	bets  []*ActiveBet
	byKey map[string]*ActiveBet
}

func NewLedger() *Ledger {
	return &Ledger{byKey: make(map[string]*ActiveBet)}
}

// Add добавляет фишку к ставке, создаёт ставку при первой фишке
func (l *Ledger) Add(def model.BetDefinition, amount int) *ActiveBet {
	bet, ok := l.byKey[def.Key]
	if !ok {
		bet = &ActiveBet{Def: def}
		l.byKey[def.Key] = bet
		l.bets = append(l.bets, bet)
	}
	bet.Stake += amount
	bet.Chips = append(bet.Chips, amount)
	return bet
}

func (l *Ledger) Get(key string) (*ActiveBet, bool) {
	b, ok := l.byKey[key]
	return b, ok
}

func (l *Ledger) Bets() []*ActiveBet { return l.bets }

func (l *Ledger) Len() int { return len(l.bets) }

// Stakes сумма ставок
func (l *Ledger) Stakes() int {
	total := 0
	for _, b := range l.bets {
		total += b.Stake
	}
	return total
}

// Paid сумма выплат по всем ставкам
func (l *Ledger) Paid() int {
	total := 0
	for _, b := range l.bets {
		total += b.Paid
	}
	return total
}

// Reset очищает ставки без возврата; возврат делает владелец баланса
func (l *Ledger) Reset() {
	l.bets = nil
	l.byKey = make(map[string]*ActiveBet)
}

// ResetRoundCounters обнуляет попадания и выплаты, ставки остаются
func (l *Ledger) ResetRoundCounters() {
	for _, b := range l.bets {
		b.Hits = 0
		b.Paid = 0
	}
}

// Snapshot глубокая копия пар (ключ, фишки)
func (l *Ledger) Snapshot() model.Layout {
	if len(l.bets) == 0 {
		return nil
	}
	out := make(model.Layout, 0, len(l.bets))
	for _, b := range l.bets {
		out = append(out, model.LayoutEntry{Key: b.Def.Key, Chips: append([]int(nil), b.Chips...)})
	}
	return out
}

func (l *Ledger) Views() []model.BetView {
	out := make([]model.BetView, 0, len(l.bets))
	for _, b := range l.bets {
		out = append(out, b.view())
	}
	return out
}

func (l *Ledger) Outcomes() []model.BetOutcome {
	out := make([]model.BetOutcome, 0, len(l.bets))
	for _, b := range l.bets {
		out = append(out, b.outcome())
	}
	return out
}

// Validate проверяет инварианты: ставка равна сумме фишек, счётчики не отрицательны,
// попадания ставки на номинал не превышают длину лестницы
func (l *Ledger) Validate(ladderLen int) error {
	for _, b := range l.bets {
		sum := 0
		for _, c := range b.Chips {
			if c <= 0 {
				return fmt.Errorf("%w: bet %q has chip %d", ErrLedgerDesync, b.Def.Key, c)
			}
			sum += c
		}
		if b.Stake < 0 || sum != b.Stake {
			return fmt.Errorf("%w: bet %q stake %d, chips %d", ErrLedgerDesync, b.Def.Key, b.Stake, sum)
		}
		if b.Hits < 0 || b.Paid < 0 {
			return fmt.Errorf("%w: bet %q negative counters", ErrLedgerDesync, b.Def.Key)
		}
		if _, ok := b.Def.Kind.(model.NumberBet); ok && b.Hits > ladderLen {
			return fmt.Errorf("%w: bet %q hits %d over ladder %d", ErrLedgerDesync, b.Def.Key, b.Hits, ladderLen)
		}
	}
	return nil
}
