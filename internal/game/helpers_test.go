package game

import (
	"context"
	"run_the_numbers/internal/model"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

var testPaytables = []model.Paytable{
	{ID: "paytable-1", Name: "Paytable 1", Steps: []int{3, 4, 15, 50}},
	{ID: "paytable-2", Name: "Paytable 2", Steps: []int{2, 6, 36, 100}},
	{ID: "paytable-3", Name: "Paytable 3", Steps: []int{1, 10, 40, 200}},
}

func testDefinitions() []model.BetDefinition {
	defs := make([]model.BetDefinition, 0, 32)
	for _, r := range model.NumberRanks {
		defs = append(defs, model.BetDefinition{
			Key: string(r), Label: r.Name(), LockDuringHand: true, Kind: model.NumberBet{Rank: r},
		})
	}
	defs = append(defs,
		model.BetDefinition{Key: "card-7-spades", Label: "7♠", Payout: 12, LockDuringHand: true,
			Kind: model.SpecificCardBet{Rank: model.Rank7, Suit: model.SuitSpades}},
		model.BetDefinition{Key: "bust-hearts", Label: "Bust Hearts", Payout: 3,
			Kind: model.BustSuitBet{Suit: model.SuitHearts}},
		model.BetDefinition{Key: "bust-king", Label: "Bust King", Payout: 2,
			Kind: model.BustRankBet{Rank: model.RankKing}},
		model.BetDefinition{Key: "bust-joker", Label: "Bust Joker", Payout: 11,
			Kind: model.BustJokerBet{}},
		model.BetDefinition{Key: "count-3", Label: "3 Cards", Payout: 5, LockDuringHand: true,
			Kind: model.CountBet{Min: 3, Max: 3}},
		model.BetDefinition{Key: "count-4", Label: "4 Cards", Payout: 7, LockDuringHand: true,
			Kind: model.CountBet{Min: 4, Max: 4}},
		model.BetDefinition{Key: "count-8", Label: "8+ Cards", Payout: 7, LockDuringHand: true,
			Kind: model.CountBet{Min: 8, Open: true}},
	)
	return defs
}

func testRegistry(t *testing.T) *Registry {
	t.Helper()
	reg, err := NewRegistry(testDefinitions())
	require.NoError(t, err)
	return reg
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.DealDelay = 0
	cfg.DealDelayStep = 0
	return cfg
}

func card(rank model.Rank, suit model.Suit) model.Card {
	return model.NewCard(rank, suit)
}

// fixedDeck колода, которая всегда раздаётся в заданном порядке
func fixedDeck(cards ...model.Card) func() []model.Card {
	return func() []model.Card {
		return append([]model.Card(nil), cards...)
	}
}

func noShuffle([]model.Card) {}

type recordingSink struct {
	mu      sync.Mutex
	results []model.HandResult
	hook    func(res model.HandResult)
}

func (r *recordingSink) Settle(_ context.Context, res model.HandResult) {
	if r.hook != nil {
		r.hook(res)
	}
	r.mu.Lock()
	r.results = append(r.results, res)
	r.mu.Unlock()
}

func (r *recordingSink) all() []model.HandResult {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]model.HandResult(nil), r.results...)
}

type funcObserver struct {
	onCard    func(ev model.DrawEvent)
	onSettled func(res model.HandResult)
}

func (f funcObserver) CardDrawn(ev model.DrawEvent) {
	if f.onCard != nil {
		f.onCard(ev)
	}
}

func (f funcObserver) HandSettled(res model.HandResult) {
	if f.onSettled != nil {
		f.onSettled(res)
	}
}

type sessionOpt func(*SessionDeps)

func withDeck(cards ...model.Card) sessionOpt {
	return func(d *SessionDeps) {
		d.NewDeck = fixedDeck(cards...)
		d.Shuffle = noShuffle
	}
}

func withSink(s SettlementSink) sessionOpt {
	return func(d *SessionDeps) { d.Sink = s }
}

func withObserver(o Observer) sessionOpt {
	return func(d *SessionDeps) { d.Observers = append(d.Observers, o) }
}

func newTestSession(t *testing.T, units int, opts ...sessionOpt) *Session {
	t.Helper()
	deps := SessionDeps{
		Registry:        testRegistry(t),
		Paytables:       testPaytables,
		DefaultPaytable: "paytable-1",
	}
	for _, o := range opts {
		o(&deps)
	}
	s, err := NewSession(testConfig(), deps, model.Identity{UserID: "user-1"}, model.Bankroll{Units: units})
	require.NoError(t, err)
	return s
}
