package service

import (
	"context"
	"io"
	"run_the_numbers/internal/game"
	"run_the_numbers/internal/model"
)

type AuthService interface {
	Register(ctx context.Context, user *model.User) (*model.AuthData, error)
	Login(ctx context.Context, email, password string) (*model.AuthData, error)
	Refresh(ctx context.Context, sessionID, refreshToken string) (newAccessToken string, err error)
	Logout(ctx context.Context, sessionID string) error
}

// ProfileService синхронизация балансов игрока с хранилищем профилей
type ProfileService interface {
	// Fetch никогда не возвращает ошибку: при любом сбое отдаётся гостевой профиль
	Fetch(ctx context.Context, id model.Identity) (profile model.Profile, synced bool)
	Persist(ctx context.Context, userID string, b model.Bankroll) error
	// Flush как Persist, но для несинхронизированного профиля возвращает ошибку
	Flush(ctx context.Context, userID string, b model.Bankroll) error
	Adopt(p model.Profile)
	Forget(userID string)
}

type TableService interface {
	State(ctx context.Context, id model.Identity) (model.TableView, error)
	PlaceBet(ctx context.Context, id model.Identity, key string, amount int) (model.TableView, error)
	ClearBets(ctx context.Context, id model.Identity) (model.TableView, error)
	Rebet(ctx context.Context, id model.Identity) (model.TableView, error)
	SelectPaytable(ctx context.Context, id model.Identity, paytableID string) (model.TableView, error)
	Deal(ctx context.Context, id model.Identity, wait bool) (*model.HandResult, model.TableView, error)
	Pause(ctx context.Context, id model.Identity) (model.TableView, error)
	Resume(ctx context.Context, id model.Identity) (model.TableView, error)
	ResetAccount(ctx context.Context, id model.Identity) (model.TableView, error)
	SyncProfile(ctx context.Context, id model.Identity) (model.TableView, error)
	SignOut(ctx context.Context, id model.Identity)
	Subscribe(ctx context.Context, id model.Identity, o game.Observer) (unsubscribe func(), err error)
	// Exclusive выполняет fn между раздачами: сначала балансы стола сохраняются,
	// после успешного fn стол принимает возвращённый профиль
	Exclusive(ctx context.Context, id model.Identity, fn func(ctx context.Context) (*model.Profile, error)) error
	Close()
}

type PrizeService interface {
	List(ctx context.Context, activeOnly bool) ([]model.Prize, error)
	Create(ctx context.Context, p *model.Prize) error
	Update(ctx context.Context, p *model.Prize) error
	SetActive(ctx context.Context, id string, active bool) error
	Delete(ctx context.Context, id string) error
	UploadImage(ctx context.Context, name string, src io.Reader) (url string, err error)
	Redeem(ctx context.Context, id model.Identity, prizeID string, shipping model.ShippingInfo) (*model.Redemption, error)
}

type StatsService interface {
	House() model.HouseStats
}
