package table

import (
	"context"
	"errors"
	"run_the_numbers/internal/config"
	"run_the_numbers/internal/game"
	"run_the_numbers/internal/model"
	"run_the_numbers/internal/repository"
	"run_the_numbers/internal/service"
	"sync"
	"time"

	"github.com/avito-tech/go-transaction-manager/trm/v2"
	"go.uber.org/zap"
)

var (
	ErrClosed   = errors.New("table service is shutting down")
	ErrUnsynced = errors.New("Your balance could not be saved. Try again shortly.")
)

const (
	defaultPersistTimeout = 5 * time.Second
	defaultAuditTimeout   = 10 * time.Second
)

// Recorder метрики стола
type Recorder interface {
	game.Observer
	BackgroundError(stage string)
	TableOpened()
	TableClosed()
}

type Deps struct {
	Game       config.GameConfig
	Profiles   service.ProfileService
	Audit      repository.AuditRepository
	Publisher  repository.HandPublisher
	HouseStats repository.HouseStatsRepository
	TxManager  trm.Manager
	Metrics    Recorder
	Log        *zap.Logger

	// для тестов: фиксированная колода и задержки
	NewDeck        func() []model.Card
	Shuffle        func([]model.Card)
	EngineConfig   *game.Config
	PersistTimeout time.Duration
	AuditTimeout   time.Duration
}

type serv struct {
	appCtx          context.Context
	cfg             game.Config
	registry        *game.Registry
	paytables       []model.Paytable
	defaultPaytable string

	profiles   service.ProfileService
	audit      repository.AuditRepository
	publisher  repository.HandPublisher
	houseStats repository.HouseStatsRepository
	txManager  trm.Manager
	metrics    Recorder
	log        *zap.Logger

	newDeck        func() []model.Card
	shuffle        func([]model.Card)
	persistTimeout time.Duration
	auditTimeout   time.Duration

	mu       sync.Mutex
	sessions map[string]*game.Session
	closed   bool
	bg       sync.WaitGroup
}

// NewTableService appCtx ограничивает фоновые раздачи: после его отмены
// раздачи доигрываются без задержек
func NewTableService(appCtx context.Context, d Deps) (service.TableService, error) {
	registry, err := game.NewRegistry(d.Game.BetDefinitions())
	if err != nil {
		return nil, err
	}
	cfg := EngineConfig(d.Game)
	if d.EngineConfig != nil {
		cfg = *d.EngineConfig
	}

	s := &serv{
		appCtx:          appCtx,
		cfg:             cfg,
		registry:        registry,
		paytables:       d.Game.Paytables(),
		defaultPaytable: d.Game.DefaultPaytable(),
		profiles:        d.Profiles,
		audit:           d.Audit,
		publisher:       d.Publisher,
		houseStats:      d.HouseStats,
		txManager:       d.TxManager,
		metrics:         d.Metrics,
		log:             d.Log.Named("table"),
		newDeck:         d.NewDeck,
		shuffle:         d.Shuffle,
		persistTimeout:  d.PersistTimeout,
		auditTimeout:    d.AuditTimeout,
		sessions:        make(map[string]*game.Session),
	}
	if s.persistTimeout <= 0 {
		s.persistTimeout = defaultPersistTimeout
	}
	if s.auditTimeout <= 0 {
		s.auditTimeout = defaultAuditTimeout
	}
	return s, nil
}

// EngineConfig параметры движка из конфигурации; незаданные берутся по умолчанию
func EngineConfig(gc config.GameConfig) game.Config {
	cfg := game.DefaultConfig()
	if d := gc.Denominations(); len(d) > 0 {
		cfg.Denominations = d
	}
	if v := gc.InitialBankroll(); v > 0 {
		cfg.InitialBankroll = v
	}
	if v := gc.DealDelay(); v > 0 {
		cfg.DealDelay = v
	}
	if v := gc.DealDelayStep(); v > 0 {
		cfg.DealDelayStep = v
	}
	if v := gc.HistorySize(); v > 0 {
		cfg.HistorySize = v
	}
	if v := gc.BankrollHistorySize(); v > 0 {
		cfg.BankrollHistory = v
	}
	if v := gc.PlaythroughRate(); v > 0 {
		cfg.PlaythroughRate = v
	}
	return cfg
}

func (s *serv) lookup(id model.Identity) (*game.Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id.SessionKey()]
	return sess, ok
}

// session открывает стол при первом обращении; профиль читается вне блокировки
func (s *serv) session(ctx context.Context, id model.Identity) (*game.Session, error) {
	if sess, ok := s.lookup(id); ok {
		return sess, nil
	}

	// Загрузка профиля; при сбое стол открывается на гостевом балансе
	profile, synced := s.profiles.Fetch(ctx, id)
	if !synced && !id.Guest {
		s.log.Warn("table opened on guest bankroll", zap.String("user_id", id.UserID))
	}

	var sess *game.Session
	var err error
	sess, err = game.NewSession(s.cfg, game.SessionDeps{
		Registry:        s.registry,
		Paytables:       s.paytables,
		DefaultPaytable: s.defaultPaytable,
		Sink:            s,
		Observers:       []game.Observer{s.metrics},
		OnIdentityChange: func(prev, _ model.Identity) {
			s.evict(prev, sess)
		},
		NewDeck: s.newDeck,
		Shuffle: s.shuffle,
	}, id, profile.Bankroll())
	if err != nil {
		return nil, err
	}

	// Параллельный запрос мог открыть стол раньше
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.sessions[id.SessionKey()]; ok {
		return existing, nil
	}
	s.sessions[id.SessionKey()] = sess
	s.metrics.TableOpened()
	return sess, nil
}

func (s *serv) evict(prev model.Identity, sess *game.Session) {
	s.mu.Lock()
	if cur, ok := s.sessions[prev.SessionKey()]; ok && cur == sess {
		delete(s.sessions, prev.SessionKey())
		s.metrics.TableClosed()
	}
	s.mu.Unlock()

	if !prev.Guest {
		s.profiles.Forget(prev.UserID)
	}
	s.log.Info("table closed", zap.String("user_id", prev.UserID), zap.Bool("guest", prev.Guest))
}

// Settle сохраняет баланс синхронно, журнал и событие пишутся в фоне
func (s *serv) Settle(ctx context.Context, res model.HandResult) {
	log := s.log.With(zap.String("user_id", res.UserID), zap.String("hand_id", res.ID.String()))
	// Статистика казино учитывает и гостей
	s.houseStats.Record(res.Wagered, res.Paid)

	// Баланс сохраняется до открытия ставок; ошибка не отменяет раздачу
	if !res.Guest {
		pctx, cancel := context.WithTimeout(ctx, s.persistTimeout)
		err := s.profiles.Persist(pctx, res.UserID, res.Bankroll)
		cancel()
		if err != nil {
			log.Warn("bankroll persist failed", zap.Error(err))
			s.metrics.BackgroundError("persist")
		}
	}

	// раздача уже держит слот bg, счётчик здесь не нулевой
	s.bg.Add(1)
	go func() {
		defer s.bg.Done()
		actx, cancel := context.WithTimeout(ctx, s.auditTimeout)
		defer cancel()

		// Журнал раздачи и ставок одной транзакцией, гости не журналируются
		if !res.Guest {
			err := s.txManager.Do(actx, func(ctx context.Context) error {
				return s.audit.RecordHand(ctx, res)
			})
			if err != nil {
				log.Warn("hand audit failed", zap.Error(err))
				s.metrics.BackgroundError("audit")
			}
		}
		// Событие раздачи
		if err := s.publisher.PublishHandSettled(actx, res); err != nil {
			log.Warn("hand publish failed", zap.Error(err))
			s.metrics.BackgroundError("publish")
		}
	}()
}

// hold занимает слот фоновой работы; false после Close
func (s *serv) hold() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	s.bg.Add(1)
	return true
}

// Close ждёт завершения фоновых раздач и записей
func (s *serv) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.bg.Wait()
}
