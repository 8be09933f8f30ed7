package profile

import (
	"context"
	"errors"
	"run_the_numbers/internal/config"
	"run_the_numbers/internal/model"
	"run_the_numbers/internal/repository"
	"run_the_numbers/internal/service"
	"sync"
	"time"

	"go.uber.org/zap"
)

var ErrNotSynced = errors.New("profile is not synced with the store")

type serv struct {
	repo      repository.ProfileRepository
	cache     repository.ProfileCache
	users     repository.UserRepository
	cfg       config.ProfileConfig
	log       *zap.Logger
	initUnits int

	// synced последние сохранённые балансы; Persist отправляет только разницу
	mu     sync.Mutex
	synced map[string]model.Bankroll
}

func NewProfileService(
	repo repository.ProfileRepository,
	cache repository.ProfileCache,
	users repository.UserRepository,
	cfg config.ProfileConfig,
	initialBankroll int,
	log *zap.Logger,
) service.ProfileService {
	return &serv{
		repo:      repo,
		cache:     cache,
		users:     users,
		cfg:       cfg,
		log:       log.Named("profile"),
		initUnits: initialBankroll,
		synced:    make(map[string]model.Bankroll),
	}
}

// Fetch кэш, затем хранилище с повторами, затем создание профиля.
// synced=false означает гостевой профиль, который не сохраняется.
func (s *serv) Fetch(ctx context.Context, id model.Identity) (model.Profile, bool) {
	if id.Guest || id.UserID == "" || id.UserID == model.GuestUserID {
		return model.GuestProfile(), false
	}
	log := s.log.With(zap.String("user_id", id.UserID))

	// Кэш
	if p, err := s.cache.Get(ctx, id.UserID); err == nil {
		s.remember(*p)
		return *p, true
	} else if !errors.Is(err, repository.ErrNotFound) {
		log.Warn("profile cache read failed", zap.Error(err))
	}

	// Хранилище: раунды по несколько попыток, отсутствующий профиль создаётся
	p, err := s.fetchWithRetries(ctx, id.UserID, s.cfg.FetchRounds()*s.cfg.AttemptMax())
	if errors.Is(err, repository.ErrNotFound) {
		p, err = s.provision(ctx, id.UserID)
	}
	if err != nil {
		log.Error("profile unavailable, using guest profile", zap.Error(err))
		return model.GuestProfile(), false
	}

	s.remember(*p)
	s.cacheProfile(ctx, *p)
	return *p, true
}

// fetchWithRetries отсутствие профиля не повторяется, возвращается ErrNotFound
func (s *serv) fetchWithRetries(ctx context.Context, userID string, attempts int) (*model.Profile, error) {
	attempts = max(1, attempts)
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		actx, cancel := context.WithTimeout(ctx, s.cfg.FetchTimeout())
		p, err := s.repo.GetProfile(actx, userID)
		cancel()
		if err == nil || errors.Is(err, repository.ErrNotFound) {
			return p, err
		}
		lastErr = err
		s.log.Warn("profile fetch attempt failed",
			zap.String("user_id", userID), zap.Int("attempt", attempt), zap.Error(err))

		if attempt < attempts && !sleep(ctx, s.cfg.RetryDelay()) {
			return nil, ctx.Err()
		}
	}
	return nil, lastErr
}

// provision создаёт профиль с начальным балансом; при гонке перечитывает существующий
func (s *serv) provision(ctx context.Context, userID string) (*model.Profile, error) {
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	seed := DeriveSeed(user)
	p := &model.Profile{
		ID:        userID,
		Username:  seed.Username,
		FirstName: seed.FirstName,
		LastName:  seed.LastName,
		Credits:   s.initUnits,
	}

	err = s.repo.CreateProfile(ctx, p)
	if errors.Is(err, repository.ErrDuplicate) {
		s.log.Warn("profile already provisioned, refetching", zap.String("user_id", userID))
		return s.fetchWithRetries(ctx, userID, s.cfg.AttemptMax())
	}
	if err != nil {
		return nil, err
	}
	s.log.Info("profile provisioned", zap.String("user_id", userID), zap.String("username", p.Username))
	return p, nil
}

// Persist отправляет только изменившиеся поля; для несинхронизированных профилей ничего не делает
func (s *serv) Persist(ctx context.Context, userID string, b model.Bankroll) error {
	s.mu.Lock()
	prev, ok := s.synced[userID]
	s.mu.Unlock()
	if !ok {
		return nil
	}

	// Только изменившиеся поля
	upd := model.Diff(prev, b)
	if upd.Empty() {
		return nil
	}
	p, err := s.repo.UpdateProfile(ctx, userID, upd)
	if err != nil {
		return err
	}
	s.remember(*p)
	s.cacheProfile(ctx, *p)
	return nil
}

// Flush сохраняет балансы перед операцией, которая списывает их в хранилище
func (s *serv) Flush(ctx context.Context, userID string, b model.Bankroll) error {
	s.mu.Lock()
	_, ok := s.synced[userID]
	s.mu.Unlock()
	if !ok {
		// стол открыт на гостевом балансе, хранилище ему не соответствует
		return ErrNotSynced
	}
	return s.Persist(ctx, userID, b)
}

// Adopt профиль изменён вне стола (покупка приза)
func (s *serv) Adopt(p model.Profile) {
	s.remember(p)
	if err := s.cache.Invalidate(context.Background(), p.ID); err != nil {
		s.log.Warn("profile cache invalidate failed", zap.String("user_id", p.ID), zap.Error(err))
	}
}

func (s *serv) Forget(userID string) {
	s.mu.Lock()
	delete(s.synced, userID)
	s.mu.Unlock()
}

func (s *serv) remember(p model.Profile) {
	s.mu.Lock()
	s.synced[p.ID] = p.Bankroll()
	s.mu.Unlock()
}

func (s *serv) cacheProfile(ctx context.Context, p model.Profile) {
	if err := s.cache.Set(ctx, p); err != nil {
		s.log.Warn("profile cache write failed", zap.String("user_id", p.ID), zap.Error(err))
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}
