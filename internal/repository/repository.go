package repository

import (
	"context"
	"errors"
	"io"
	"run_the_numbers/internal/model"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrDuplicate         = errors.New("duplicate")
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrConflict условное обновление не затронуло ни одной строки
	ErrConflict = errors.New("conflict")
)

type AuthRepository interface {
	CreateSession(ctx context.Context, session *model.Session) error
	GetSession(ctx context.Context, sessionID string) (*model.Session, error)
	DeleteSession(ctx context.Context, sessionID string) error
	GetUserBySessionID(ctx context.Context, sessionID string) (*model.User, error)
}

type UserRepository interface {
	CreateUser(ctx context.Context, user *model.User) (id string, err error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	GetUserByID(ctx context.Context, id string) (*model.User, error)
}

type ProfileRepository interface {
	GetProfile(ctx context.Context, userID string) (*model.Profile, error)
	CreateProfile(ctx context.Context, p *model.Profile) error
	UpdateProfile(ctx context.Context, userID string, upd model.ProfileUpdate) (*model.Profile, error)
	// DebitBalance списывает amount, только если на балансе достаточно средств
	DebitBalance(ctx context.Context, userID string, currency model.Currency, amount int) (*model.Profile, error)
}

// ProfileCache кэш профилей; промах возвращает ErrNotFound
type ProfileCache interface {
	Get(ctx context.Context, userID string) (*model.Profile, error)
	Set(ctx context.Context, p model.Profile) error
	Invalidate(ctx context.Context, userID string) error
}

type AuditRepository interface {
	RecordHand(ctx context.Context, res model.HandResult) error
}

type HandPublisher interface {
	PublishHandSettled(ctx context.Context, res model.HandResult) error
	Close() error
}

type PrizeRepository interface {
	ListPrizes(ctx context.Context, activeOnly bool) ([]model.Prize, error)
	GetPrize(ctx context.Context, id string) (*model.Prize, error)
	CreatePrize(ctx context.Context, p *model.Prize) error
	UpdatePrize(ctx context.Context, p *model.Prize) error
	SetPrizeActive(ctx context.Context, id string, active bool) error
	DeletePrize(ctx context.Context, id string) error
	// ClaimPrize снимает активный приз с витрины; ErrConflict, если он уже неактивен
	ClaimPrize(ctx context.Context, id string) error
	CreatePurchase(ctx context.Context, p *model.Purchase) error
	DeletePurchasesByPrize(ctx context.Context, prizeID string) error
}

type ImageStore interface {
	Save(ctx context.Context, name string, src io.Reader) (url string, err error)
}

type HouseStatsRepository interface {
	Record(wagered, paid int)
	Snapshot() model.HouseStats
}
