package table

import (
	"context"
	"errors"
	"run_the_numbers/internal/config/env"
	"run_the_numbers/internal/game"
	"run_the_numbers/internal/metrics"
	"run_the_numbers/internal/model"
	"run_the_numbers/internal/repository"
	"run_the_numbers/internal/repository/fake"
	"run_the_numbers/internal/repository/house_stats_repo"
	"run_the_numbers/internal/repository/profile_cache"
	"run_the_numbers/internal/service"
	"run_the_numbers/internal/service/prize"
	"run_the_numbers/internal/service/profile"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testGameYAML = `
table:
  denominations: [5, 10, 25, 100]
  initial_bankroll: 1000
default_paytable: paytable-1
paytables:
  - { id: paytable-1, name: "Paytable 1", steps: [3, 4, 15, 50] }
  - { id: paytable-2, name: "Paytable 2", steps: [2, 6, 36, 100] }
spots:
  - { key: "A", type: number, label: "Ace", rank: "A", lock: hand }
  - { key: "7", type: number, label: "7", rank: "7", lock: hand }
  - { key: bust-joker, type: bust-joker, label: "Bust Joker", payout: 11 }
`

type profileCfg struct{}

func (profileCfg) FetchRounds() int            { return 1 }
func (profileCfg) AttemptMax() int             { return 1 }
func (profileCfg) RetryDelay() time.Duration   { return 0 }
func (profileCfg) FetchTimeout() time.Duration { return time.Second }
func (profileCfg) SyncInterval() time.Duration { return time.Second }

type recordingPublisher struct {
	mu    sync.Mutex
	hands []model.HandResult
}

func (p *recordingPublisher) PublishHandSettled(_ context.Context, res model.HandResult) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.hands = append(p.hands, res)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.hands)
}

type fixture struct {
	svc       service.TableService
	store     *fake.Store
	publisher *recordingPublisher
	house     *house_stats_repo.StatsRepo
}

func newFixture(t *testing.T, deck ...model.Card) *fixture {
	t.Helper()
	gc, err := env.ParseGameConfig([]byte(testGameYAML))
	require.NoError(t, err)

	store := fake.NewStore()
	pub := &recordingPublisher{}
	house := house_stats_repo.NewHouseStatsRepository(10)
	profiles := profile.NewProfileService(store.Profiles(), profile_cache.NewNoopCache(), store.Users(),
		profileCfg{}, 1000, zap.NewNop())

	engine := EngineConfig(gc)
	engine.DealDelay = 0

	svc, err := NewTableService(t.Context(), Deps{
		Game:         gc,
		Profiles:     profiles,
		Audit:        store.Audit(),
		Publisher:    pub,
		HouseStats:   house,
		TxManager:    store.TxManager(),
		Metrics:      metrics.New(prometheus.NewRegistry()),
		Log:          zap.NewNop(),
		NewDeck:      func() []model.Card { return append([]model.Card(nil), deck...) },
		Shuffle:      func([]model.Card) {},
		EngineConfig: &engine,
	})
	require.NoError(t, err)
	return &fixture{svc: svc, store: store, publisher: pub, house: house}
}

func aceAceKing() []model.Card {
	return []model.Card{
		model.NewCard(model.RankAce, model.SuitSpades),
		model.NewCard(model.RankAce, model.SuitHearts),
		model.NewCard(model.RankKing, model.SuitClubs),
	}
}

func TestDealPersistsAuditsAndPublishes(t *testing.T) {
	f := newFixture(t, aceAceKing()...)
	f.store.PutProfile(model.Profile{ID: "u1", Credits: 1000})
	id := model.Identity{UserID: "u1"}

	_, err := f.svc.PlaceBet(t.Context(), id, "A", 10)
	require.NoError(t, err)

	res, view, err := f.svc.Deal(t.Context(), id, true)
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Equal(t, 60, res.Net)
	assert.Equal(t, model.StateIdle, view.State)
	assert.Equal(t, 1060, view.Bankroll.Units)

	p, _ := f.store.Profile("u1")
	assert.Equal(t, 1060, p.Credits, "bankroll persisted before betting reopens")

	f.svc.Close()
	require.Len(t, f.store.Hands(), 1)
	assert.Equal(t, res.ID, f.store.Hands()[0].ID)
	assert.Equal(t, 1, f.publisher.count())
	assert.Equal(t, 1, f.house.Snapshot().Hands)
}

func TestGuestHandsAreNotPersisted(t *testing.T) {
	f := newFixture(t, aceAceKing()...)
	id := model.Identity{UserID: "cookie-1", Guest: true}

	view, err := f.svc.State(t.Context(), id)
	require.NoError(t, err)
	assert.Equal(t, 1000, view.Bankroll.Units)

	_, err = f.svc.PlaceBet(t.Context(), id, "A", 10)
	require.NoError(t, err)
	_, _, err = f.svc.Deal(t.Context(), id, true)
	require.NoError(t, err)

	f.svc.Close()
	assert.Empty(t, f.store.Hands())
	assert.Equal(t, 1, f.publisher.count())
	_, ok := f.store.Profile(model.GuestUserID)
	assert.False(t, ok)
}

func TestGuestTablesAreIsolated(t *testing.T) {
	f := newFixture(t, aceAceKing()...)
	a := model.Identity{UserID: "cookie-a", Guest: true}
	b := model.Identity{UserID: "cookie-b", Guest: true}

	_, err := f.svc.PlaceBet(t.Context(), a, "A", 100)
	require.NoError(t, err)

	va, _ := f.svc.State(t.Context(), a)
	vb, _ := f.svc.State(t.Context(), b)
	assert.Equal(t, 900, va.Bankroll.Units)
	assert.Equal(t, 1000, vb.Bankroll.Units)
}

func TestAsyncDealFinishesInBackground(t *testing.T) {
	f := newFixture(t, aceAceKing()...)
	f.store.PutProfile(model.Profile{ID: "u1", Credits: 1000})
	id := model.Identity{UserID: "u1"}

	_, err := f.svc.PlaceBet(t.Context(), id, "A", 10)
	require.NoError(t, err)
	res, _, err := f.svc.Deal(t.Context(), id, false)
	require.NoError(t, err)
	assert.Nil(t, res)

	f.svc.Close()
	view, err := f.svc.State(t.Context(), id)
	require.NoError(t, err)
	assert.Equal(t, model.StateIdle, view.State)
	assert.Len(t, view.History, 1)
	assert.Equal(t, 1060, view.Bankroll.Units)
}

func TestEngineErrorsPassThrough(t *testing.T) {
	f := newFixture(t, aceAceKing()...)
	id := model.Identity{UserID: "cookie-1", Guest: true}

	view, err := f.svc.PlaceBet(t.Context(), id, "nope", 10)
	assert.ErrorIs(t, err, game.ErrUnknownBet)
	assert.Equal(t, err.Error(), view.Status)

	_, _, err = f.svc.Deal(t.Context(), id, false)
	assert.ErrorIs(t, err, game.ErrNoBets)

	_, err = f.svc.SelectPaytable(t.Context(), id, "paytable-9")
	assert.ErrorIs(t, err, game.ErrUnknownPaytable)
	f.svc.Close()
}

func TestResetAccountPersists(t *testing.T) {
	f := newFixture(t)
	f.store.PutProfile(model.Profile{ID: "u1", Credits: 15, CarterCash: 4})
	id := model.Identity{UserID: "u1"}

	view, err := f.svc.ResetAccount(t.Context(), id)
	require.NoError(t, err)
	assert.Equal(t, model.Bankroll{Units: 1000}, view.Bankroll)

	p, _ := f.store.Profile("u1")
	assert.Equal(t, 1000, p.Credits)
	assert.Zero(t, p.CarterCash)
}

func TestExclusiveKeepsEscrow(t *testing.T) {
	f := newFixture(t)
	f.store.PutProfile(model.Profile{ID: "u1", Credits: 1000})
	id := model.Identity{UserID: "u1"}

	_, err := f.svc.PlaceBet(t.Context(), id, "7", 100)
	require.NoError(t, err)

	err = f.svc.Exclusive(t.Context(), id, func(context.Context) (*model.Profile, error) {
		return &model.Profile{ID: "u1", Credits: 700, CarterCash: 1}, nil
	})
	require.NoError(t, err)

	view, err := f.svc.State(t.Context(), id)
	require.NoError(t, err)
	assert.Equal(t, 600, view.Bankroll.Units)
	assert.Equal(t, 1, view.Bankroll.CarterCash)
	assert.Len(t, view.Bets, 1)
}

func TestSignOutClosesTable(t *testing.T) {
	f := newFixture(t)
	f.store.PutProfile(model.Profile{ID: "u1", Credits: 1000})
	id := model.Identity{UserID: "u1"}

	_, err := f.svc.PlaceBet(t.Context(), id, "7", 100)
	require.NoError(t, err)

	f.svc.SignOut(t.Context(), id)

	// стол открыт заново из хранилища, несыгранные фишки не сохранялись
	view, err := f.svc.State(t.Context(), id)
	require.NoError(t, err)
	assert.Equal(t, 1000, view.Bankroll.Units)
	assert.Empty(t, view.Bets)
}

func TestSyncProfileAppliesStoredBalance(t *testing.T) {
	f := newFixture(t)
	f.store.PutProfile(model.Profile{ID: "u1", Credits: 1000})
	id := model.Identity{UserID: "u1"}

	_, err := f.svc.State(t.Context(), id)
	require.NoError(t, err)

	f.store.PutProfile(model.Profile{ID: "u1", Credits: 250})
	view, err := f.svc.SyncProfile(t.Context(), id)
	require.NoError(t, err)
	assert.Equal(t, 250, view.Bankroll.Units)
}

func TestEngineConfigDefaults(t *testing.T) {
	gc, err := env.ParseGameConfig([]byte("paytables: [{id: p, steps: [1]}]"))
	require.NoError(t, err)
	assert.Equal(t, game.DefaultConfig(), EngineConfig(gc))
}

// dealingPrizes начинает раздачу на столе игрока, пока идёт транзакция покупки
type dealingPrizes struct {
	repository.PrizeRepository
	start func()
}

func (r dealingPrizes) GetPrize(ctx context.Context, id string) (*model.Prize, error) {
	r.start()
	// даём раздаче дойти до блокировки стола
	time.Sleep(50 * time.Millisecond)
	return r.PrizeRepository.GetPrize(ctx, id)
}

func newPrizeService(f *fixture, prizes repository.PrizeRepository) service.PrizeService {
	return prize.NewPrizeService(f.store.TxManager(), prizes, f.store.Profiles(), nil,
		f.svc, metrics.New(prometheus.NewRegistry()), zap.NewNop())
}

func TestDealDuringRedeemKeepsDebit(t *testing.T) {
	f := newFixture(t, aceAceKing()...)
	f.store.PutProfile(model.Profile{ID: "u1", Credits: 1000})
	id := model.Identity{UserID: "u1"}

	_, err := f.svc.PlaceBet(t.Context(), id, "7", 10)
	require.NoError(t, err)

	dealt := make(chan error, 1)
	prizes := dealingPrizes{PrizeRepository: f.store.Prizes(), start: func() {
		go func() {
			_, _, err := f.svc.Deal(context.Background(), id, false)
			dealt <- err
		}()
	}}
	prizeSvc := newPrizeService(f, prizes)
	p := model.Prize{Name: "Mug", Cost: 500, Currency: model.CurrencyUnits, Active: true}
	require.NoError(t, prizeSvc.Create(t.Context(), &p))

	_, err = prizeSvc.Redeem(t.Context(), id, p.ID, model.ShippingInfo{Address: "1 Main St", Email: "p@example.com"})
	require.NoError(t, err)
	require.NoError(t, <-dealt, "hand starts once the purchase is done")

	f.svc.Close()
	stored, _ := f.store.Profile("u1")
	assert.Equal(t, 1000-500-10, stored.Credits)
	assert.Equal(t, 1, f.store.PurchaseCount())

	view, err := f.svc.State(t.Context(), id)
	require.NoError(t, err)
	assert.Equal(t, 490, view.Bankroll.Units)
}

func TestRedeemUsesTableBankrollAfterFailedPersist(t *testing.T) {
	f := newFixture(t, aceAceKing()...)
	f.store.PutProfile(model.Profile{ID: "u1", Credits: 1000})
	id := model.Identity{UserID: "u1"}
	ship := model.ShippingInfo{Address: "1 Main St", Email: "p@example.com"}
	prizeSvc := newPrizeService(f, f.store.Prizes())

	// выигрыш не сохранился: в хранилище 1000, на столе 1060
	f.store.FailProfileUpdates(errors.New("db down"))
	_, err := f.svc.PlaceBet(t.Context(), id, "A", 10)
	require.NoError(t, err)
	_, view, err := f.svc.Deal(t.Context(), id, true)
	require.NoError(t, err)
	require.Equal(t, 1060, view.Bankroll.Units)

	p := model.Prize{Name: "Lamp", Cost: 1050, Currency: model.CurrencyUnits, Active: true}
	require.NoError(t, prizeSvc.Create(t.Context(), &p))

	_, err = prizeSvc.Redeem(t.Context(), id, p.ID, ship)
	require.ErrorIs(t, err, ErrUnsynced)
	assert.Zero(t, f.store.PurchaseCount())
	view, _ = f.svc.State(t.Context(), id)
	assert.Equal(t, 1060, view.Bankroll.Units)

	f.store.FailProfileUpdates(nil)
	got, err := prizeSvc.Redeem(t.Context(), id, p.ID, ship)
	require.NoError(t, err)
	assert.Equal(t, 10, got.Profile.Credits)

	view, _ = f.svc.State(t.Context(), id)
	assert.Equal(t, 10, view.Bankroll.Units)
	stored, _ := f.store.Profile("u1")
	assert.Equal(t, 10, stored.Credits)
	f.svc.Close()
}

func TestRedeemCannotSpendLostBankroll(t *testing.T) {
	f := newFixture(t, aceAceKing()...)
	f.store.PutProfile(model.Profile{ID: "u1", Credits: 1000})
	id := model.Identity{UserID: "u1"}
	prizeSvc := newPrizeService(f, f.store.Prizes())

	// проигрыш не сохранился: в хранилище 1000, на столе 900
	f.store.FailProfileUpdates(errors.New("db down"))
	_, err := f.svc.PlaceBet(t.Context(), id, "7", 100)
	require.NoError(t, err)
	_, _, err = f.svc.Deal(t.Context(), id, true)
	require.NoError(t, err)
	f.store.FailProfileUpdates(nil)

	p := model.Prize{Name: "Lamp", Cost: 950, Currency: model.CurrencyUnits, Active: true}
	require.NoError(t, prizeSvc.Create(t.Context(), &p))

	_, err = prizeSvc.Redeem(t.Context(), id, p.ID, model.ShippingInfo{Address: "1 Main St", Email: "p@example.com"})
	require.ErrorIs(t, err, prize.ErrNotEnough)

	stored, _ := f.store.Profile("u1")
	assert.Equal(t, 900, stored.Credits, "table bankroll is written before the debit")
	assert.Zero(t, f.store.PurchaseCount())
	f.svc.Close()
}

func TestRedeemOnGuestBankrollIsRejected(t *testing.T) {
	f := newFixture(t)
	id := model.Identity{UserID: "u-missing"}
	prizeSvc := newPrizeService(f, f.store.Prizes())

	// профиль не загрузился (нет пользователя), стол открыт на гостевом балансе
	view, err := f.svc.State(t.Context(), id)
	require.NoError(t, err)
	require.Equal(t, 1000, view.Bankroll.Units)

	p := model.Prize{Name: "Mug", Cost: 10, Currency: model.CurrencyUnits, Active: true}
	require.NoError(t, prizeSvc.Create(t.Context(), &p))
	_, err = prizeSvc.Redeem(t.Context(), id, p.ID, model.ShippingInfo{Address: "1 Main St", Email: "p@example.com"})
	assert.ErrorIs(t, err, ErrUnsynced)
	assert.Zero(t, f.store.PurchaseCount())
}

func TestSyncDealHoldsShutdown(t *testing.T) {
	f := newFixture(t, aceAceKing()...)
	id := model.Identity{UserID: "cookie-1", Guest: true}
	_, err := f.svc.PlaceBet(t.Context(), id, "A", 10)
	require.NoError(t, err)

	f.svc.Close()
	_, _, err = f.svc.Deal(t.Context(), id, true)
	assert.ErrorIs(t, err, ErrClosed)
	assert.Zero(t, f.publisher.count())
}
