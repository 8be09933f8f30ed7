// Package fake хранилище в памяти для тестов сервисов.
package fake

import (
	"context"
	"fmt"
	"maps"
	"run_the_numbers/internal/model"
	"run_the_numbers/internal/repository"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/avito-tech/go-transaction-manager/trm/v2"
)

type Store struct {
	mu        sync.Mutex
	seq       int
	users     map[string]model.User
	sessions  map[string]model.Session
	profiles  map[string]model.Profile
	prizes    map[string]model.Prize
	purchases map[string]model.Purchase
	hands     []model.HandResult
	now       func() time.Time

	updateErr error
}

func NewStore() *Store {
	return &Store{
		users:     make(map[string]model.User),
		sessions:  make(map[string]model.Session),
		profiles:  make(map[string]model.Profile),
		prizes:    make(map[string]model.Prize),
		purchases: make(map[string]model.Purchase),
		now:       time.Now,
	}
}

func (s *Store) nextID(prefix string) string {
	s.seq++
	return fmt.Sprintf("%s-%d", prefix, s.seq)
}

type snapshot struct {
	users     map[string]model.User
	sessions  map[string]model.Session
	profiles  map[string]model.Profile
	prizes    map[string]model.Prize
	purchases map[string]model.Purchase
	hands     []model.HandResult
}

func (s *Store) snapshot() snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return snapshot{
		users:     maps.Clone(s.users),
		sessions:  maps.Clone(s.sessions),
		profiles:  maps.Clone(s.profiles),
		prizes:    maps.Clone(s.prizes),
		purchases: maps.Clone(s.purchases),
		hands:     append([]model.HandResult(nil), s.hands...),
	}
}

func (s *Store) restore(snap snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users, s.sessions, s.profiles = snap.users, snap.sessions, snap.profiles
	s.prizes, s.purchases, s.hands = snap.prizes, snap.purchases, snap.hands
}

// TxManager откатывает все изменения хранилища, если fn вернула ошибку
func (s *Store) TxManager() trm.Manager { return txManager{s: s} }

type txManager struct{ s *Store }

func (m txManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	snap := m.s.snapshot()
	if err := fn(ctx); err != nil {
		m.s.restore(snap)
		return err
	}
	return nil
}

func (m txManager) DoWithSettings(ctx context.Context, _ trm.Settings, fn func(ctx context.Context) error) error {
	return m.Do(ctx, fn)
}

// Users

func (s *Store) Users() repository.UserRepository { return users{s} }

type users struct{ s *Store }

func (r users) CreateUser(_ context.Context, u *model.User) (string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return "", repository.ErrDuplicate
		}
	}
	id := r.s.nextID("user")
	stored := *u
	stored.ID = id
	stored.Email = strings.ToLower(u.Email)
	r.s.users[id] = stored
	return id, nil
}

func (r users) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if strings.EqualFold(u.Email, email) {
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r users) GetUserByID(_ context.Context, id string) (*model.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

// PutUser добавляет пользователя напрямую
func (s *Store) PutUser(u model.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.ID] = u
}

// Sessions

func (s *Store) Sessions() repository.AuthRepository { return sessions{s} }

type sessions struct{ s *Store }

func (r sessions) CreateSession(_ context.Context, session *model.Session) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.sessions[session.ID] = *session
	return nil
}

func (r sessions) GetSession(_ context.Context, id string) (*model.Session, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	session, ok := r.s.sessions[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &session, nil
}

func (r sessions) DeleteSession(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.sessions, id)
	return nil
}

func (r sessions) GetUserBySessionID(_ context.Context, id string) (*model.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	session, ok := r.s.sessions[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	u, ok := r.s.users[session.UserID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (s *Store) SessionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Profiles

func (s *Store) Profiles() repository.ProfileRepository { return profiles{s} }

type profiles struct{ s *Store }

func (r profiles) GetProfile(_ context.Context, userID string) (*model.Profile, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.profiles[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &p, nil
}

func (r profiles) CreateProfile(_ context.Context, p *model.Profile) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.profiles[p.ID]; ok {
		return repository.ErrDuplicate
	}
	p.UpdatedAt = r.s.now()
	r.s.profiles[p.ID] = *p
	return nil
}

func (r profiles) UpdateProfile(_ context.Context, userID string, upd model.ProfileUpdate) (*model.Profile, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.updateErr != nil {
		return nil, r.s.updateErr
	}
	p, ok := r.s.profiles[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if upd.Credits != nil {
		p.Credits = *upd.Credits
	}
	if upd.CarterCash != nil {
		p.CarterCash = *upd.CarterCash
	}
	if upd.CarterCashProgress != nil {
		p.CarterCashProgress = *upd.CarterCashProgress
	}
	p.UpdatedAt = r.s.now()
	r.s.profiles[userID] = p
	return &p, nil
}

func (r profiles) DebitBalance(_ context.Context, userID string, currency model.Currency, amount int) (*model.Profile, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.profiles[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	switch currency {
	case model.CurrencyUnits:
		if p.Credits < amount {
			return nil, repository.ErrInsufficientFunds
		}
		p.Credits -= amount
	case model.CurrencyCarterCash:
		if p.CarterCash < amount {
			return nil, repository.ErrInsufficientFunds
		}
		p.CarterCash -= amount
	default:
		return nil, fmt.Errorf("unknown currency %q", currency)
	}
	r.s.profiles[userID] = p
	return &p, nil
}

// FailProfileUpdates UpdateProfile возвращает err, пока не передан nil
func (s *Store) FailProfileUpdates(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updateErr = err
}

func (s *Store) PutProfile(p model.Profile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[p.ID] = p
}

func (s *Store) Profile(userID string) (model.Profile, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[userID]
	return p, ok
}

// Prizes

func (s *Store) Prizes() repository.PrizeRepository { return prizes{s} }

type prizes struct{ s *Store }

func (r prizes) ListPrizes(_ context.Context, activeOnly bool) ([]model.Prize, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]model.Prize, 0, len(r.s.prizes))
	for _, p := range r.s.prizes {
		if activeOnly && !p.Active {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r prizes) GetPrize(_ context.Context, id string) (*model.Prize, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.prizes[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &p, nil
}

func (r prizes) CreatePrize(_ context.Context, p *model.Prize) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p.ID = r.s.nextID("prize")
	p.CreatedAt = r.s.now()
	r.s.prizes[p.ID] = *p
	return nil
}

func (r prizes) UpdatePrize(_ context.Context, p *model.Prize) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	old, ok := r.s.prizes[p.ID]
	if !ok {
		return repository.ErrNotFound
	}
	p.CreatedAt = old.CreatedAt
	r.s.prizes[p.ID] = *p
	return nil
}

func (r prizes) SetPrizeActive(_ context.Context, id string, active bool) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.prizes[id]
	if !ok {
		return repository.ErrNotFound
	}
	p.Active = active
	r.s.prizes[id] = p
	return nil
}

func (r prizes) DeletePrize(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.prizes[id]; !ok {
		return repository.ErrNotFound
	}
	for _, pur := range r.s.purchases {
		if pur.PrizeID == id {
			return fmt.Errorf("prize %s still has purchases", id)
		}
	}
	delete(r.s.prizes, id)
	return nil
}

func (r prizes) ClaimPrize(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.prizes[id]
	if !ok {
		return repository.ErrNotFound
	}
	if !p.Active {
		return repository.ErrConflict
	}
	p.Active = false
	r.s.prizes[id] = p
	return nil
}

func (r prizes) CreatePurchase(_ context.Context, p *model.Purchase) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p.ID = r.s.nextID("purchase")
	p.CreatedAt = r.s.now()
	r.s.purchases[p.ID] = *p
	return nil
}

func (r prizes) DeletePurchasesByPrize(_ context.Context, prizeID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, pur := range r.s.purchases {
		if pur.PrizeID == prizeID {
			delete(r.s.purchases, id)
		}
	}
	return nil
}

func (s *Store) PurchaseCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.purchases)
}

// Audit

func (s *Store) Audit() repository.AuditRepository { return audit{s} }

type audit struct{ s *Store }

func (r audit) RecordHand(_ context.Context, res model.HandResult) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.hands = append(r.s.hands, res)
	return nil
}

func (s *Store) Hands() []model.HandResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.HandResult(nil), s.hands...)
}
