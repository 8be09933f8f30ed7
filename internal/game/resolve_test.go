package game

import (
	"run_the_numbers/internal/model"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBet(t *testing.T, key string, stake int) *ActiveBet {
	t.Helper()
	def, ok := testRegistry(t).Lookup(key)
	require.True(t, ok, key)
	l := NewLedger()
	return l.Add(def, stake)
}

func TestResolveNumberBetFollowsLadder(t *testing.T) {
	steps := []int{3, 4, 15, 50}
	bet := newBet(t, "7", 10)

	for _, suit := range []model.Suit{model.SuitSpades, model.SuitHearts, model.SuitDiamonds} {
		_, err := resolveCard(bet, card(model.Rank7, suit), steps)
		require.NoError(t, err)
	}
	assert.Equal(t, 3, bet.Hits)
	assert.Equal(t, (3+4+15)*10, bet.Paid)

	pay, err := resolveCard(bet, card(model.Rank8, model.SuitClubs), steps)
	require.NoError(t, err)
	assert.Zero(t, pay)
	assert.Equal(t, 3, bet.Hits)
}

func TestResolveNumberBetCapsAtLadderLength(t *testing.T) {
	steps := []int{2, 6}
	bet := newBet(t, "A", 5)

	for i := 0; i < 4; i++ {
		_, err := resolveCard(bet, card(model.RankAce, model.SuitClubs), steps)
		require.NoError(t, err)
	}
	assert.Equal(t, 2, bet.Hits)
	assert.Equal(t, (2+6)*5, bet.Paid)
}

func TestResolveSpecificCardFiresOnce(t *testing.T) {
	bet := newBet(t, "card-7-spades", 5)
	sevenSpades := card(model.Rank7, model.SuitSpades)

	pay, err := resolveCard(bet, sevenSpades, nil)
	require.NoError(t, err)
	assert.Equal(t, (12+1)*5, pay)

	pay, err = resolveCard(bet, sevenSpades, nil)
	require.NoError(t, err)
	assert.Zero(t, pay)
	assert.Equal(t, 1, bet.Hits)
	assert.Equal(t, 65, bet.Paid)

	other := newBet(t, "card-7-spades", 5)
	pay, err = resolveCard(other, card(model.Rank7, model.SuitHearts), nil)
	require.NoError(t, err)
	assert.Zero(t, pay)
}

func TestResolveCardIgnoresDeferredBets(t *testing.T) {
	for _, key := range []string{"bust-hearts", "bust-king", "bust-joker", "count-3"} {
		bet := newBet(t, key, 10)
		pay, err := resolveCard(bet, card(model.Rank3, model.SuitHearts), []int{3})
		require.NoError(t, err)
		assert.Zero(t, pay, key)
	}
}

func TestResolveStopper(t *testing.T) {
	kingHearts := card(model.RankKing, model.SuitHearts)
	joker := card(model.RankJoker, model.SuitNone)
	queenClubs := card(model.RankQueen, model.SuitClubs)

	tests := []struct {
		name    string
		key     string
		stopper model.Card
		total   int
		want    int
	}{
		{name: "bust suit hit", key: "bust-hearts", stopper: kingHearts, total: 2, want: 3*10 + 10},
		{name: "bust suit miss", key: "bust-hearts", stopper: queenClubs, total: 2, want: 0},
		{name: "joker has no suit", key: "bust-hearts", stopper: joker, total: 2, want: 0},
		{name: "bust rank hit", key: "bust-king", stopper: kingHearts, total: 2, want: 2*10 + 10},
		{name: "bust rank miss", key: "bust-king", stopper: queenClubs, total: 2, want: 0},
		{name: "bust joker hit", key: "bust-joker", stopper: joker, total: 9, want: 11*10 + 10},
		{name: "bust joker miss", key: "bust-joker", stopper: kingHearts, total: 9, want: 0},
		{name: "closed count exact", key: "count-3", stopper: kingHearts, total: 3, want: 5*10 + 10},
		{name: "closed count counts stopper", key: "count-3", stopper: kingHearts, total: 4, want: 0},
		{name: "open count at min", key: "count-8", stopper: joker, total: 8, want: 7*10 + 10},
		{name: "open count above min", key: "count-8", stopper: joker, total: 20, want: 7*10 + 10},
		{name: "open count below min", key: "count-8", stopper: joker, total: 7, want: 0},
		{name: "number bet not deferred", key: "A", stopper: joker, total: 1, want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bet := newBet(t, tt.key, 10)
			pay, err := resolveStopper(bet, tt.stopper, tt.total)
			require.NoError(t, err)
			assert.Equal(t, tt.want, pay)
			assert.Equal(t, tt.want, bet.Paid)
		})
	}
}

type rogueKind struct{ model.BustJokerBet }

func TestResolveUnknownKindIsFault(t *testing.T) {
	bet := &ActiveBet{Def: model.BetDefinition{Key: "rogue", Kind: rogueKind{}}, Stake: 5, Chips: []int{5}}

	_, err := resolveCard(bet, card(model.Rank2, model.SuitClubs), nil)
	assert.ErrorIs(t, err, ErrUnknownBetKind)

	_, err = resolveStopper(bet, card(model.RankJoker, model.SuitNone), 1)
	assert.ErrorIs(t, err, ErrUnknownBetKind)
	assert.True(t, IsFault(err))
}

func TestCountRanges(t *testing.T) {
	closed := model.CountBet{Min: 2, Max: 4}
	assert.False(t, closed.Matches(1))
	assert.True(t, closed.Matches(2))
	assert.True(t, closed.Matches(4))
	assert.False(t, closed.Matches(5))

	open := model.CountBet{Min: 8, Open: true}
	assert.False(t, open.Matches(7))
	assert.True(t, open.Matches(53))
}
