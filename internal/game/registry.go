package game

import (
	"fmt"
	"run_the_numbers/internal/model"
)

// Registry каталог игровых полей. Собирается один раз из конфига и дальше не меняется.
type Registry struct {
	defs  map[string]model.BetDefinition
	order []string
}

func NewRegistry(defs []model.BetDefinition) (*Registry, error) {
	r := &Registry{
		defs:  make(map[string]model.BetDefinition, len(defs)),
		order: make([]string, 0, len(defs)),
	}
	for _, d := range defs {
		if d.Key == "" {
			return nil, fmt.Errorf("bet definition without key")
		}
		if _, dup := r.defs[d.Key]; dup {
			return nil, fmt.Errorf("duplicate bet key %q", d.Key)
		}
		if d.Payout < 0 {
			return nil, fmt.Errorf("bet %q: negative payout", d.Key)
		}
		if err := validateKind(d.Kind); err != nil {
			return nil, fmt.Errorf("bet %q: %w", d.Key, err)
		}
		if d.Label == "" {
			d.Label = d.Key
		}
		r.defs[d.Key] = d
		r.order = append(r.order, d.Key)
	}
	return r, nil
}

func validateKind(kind model.BetKind) error {
	switch k := kind.(type) {
	case model.NumberBet:
		if !k.Rank.IsNumber() {
			return fmt.Errorf("number bet on non-number rank %q", k.Rank)
		}
	case model.SpecificCardBet:
		if !k.Rank.IsNumber() {
			return fmt.Errorf("specific-card bet on non-number rank %q", k.Rank)
		}
		if k.Suit.Name() == "" {
			return fmt.Errorf("specific-card bet without suit")
		}
	case model.BustSuitBet:
		if k.Suit.Name() == "" {
			return fmt.Errorf("bust-suit bet without suit")
		}
	case model.BustRankBet:
		if !k.Rank.IsFace() {
			return fmt.Errorf("bust-rank bet on non-face rank %q", k.Rank)
		}
	case model.BustJokerBet:
	case model.CountBet:
		if k.Min < 1 {
			return fmt.Errorf("count bet min must be positive")
		}
		if !k.Open && k.Max < k.Min {
			return fmt.Errorf("count bet max %d below min %d", k.Max, k.Min)
		}
	case nil:
		return fmt.Errorf("%w: missing", ErrUnknownBetKind)
	default:
		return fmt.Errorf("%w: %T", ErrUnknownBetKind, kind)
	}
	return nil
}

// Lookup ищет поле по ключу. Неизвестный ключ не ошибка, вызывающий просто ничего не делает.
func (r *Registry) Lookup(key string) (model.BetDefinition, bool) {
	d, ok := r.defs[key]
	return d, ok
}

// Definitions все поля в порядке конфига
func (r *Registry) Definitions() []model.BetDefinition {
	out := make([]model.BetDefinition, 0, len(r.order))
	for _, k := range r.order {
		out = append(out, r.defs[k])
	}
	return out
}

func (r *Registry) Len() int { return len(r.order) }
