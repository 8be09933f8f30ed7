package prize

import (
	"context"
	"errors"
	"fmt"
	"io"
	"run_the_numbers/internal/game"
	"run_the_numbers/internal/model"
	"run_the_numbers/internal/repository"
	"run_the_numbers/internal/service"
	"strings"

	"github.com/avito-tech/go-transaction-manager/trm/v2"
	"go.uber.org/zap"
)

var (
	ErrPrizeClaimed   = errors.New("This prize was just claimed by someone else.")
	ErrInvalidPrize   = errors.New("invalid prize")
	ErrGuestRedeem    = errors.New("Sign in to redeem prizes.")
	ErrHandInProgress = errors.New("Finish the current hand before redeeming a prize.")
	ErrNotEnough      = errors.New("Not enough balance for this prize.")
	ErrInvalidContact = errors.New("Shipping address and contact email are required.")
)

// Table стол игрока. Покупка проходит между раздачами и от сохранённого баланса стола.
type Table interface {
	Exclusive(ctx context.Context, id model.Identity, fn func(ctx context.Context) (*model.Profile, error)) error
}

// Recorder метрики покупок
type Recorder interface {
	Redemption(result string)
}

type serv struct {
	txManager trm.Manager
	prizes    repository.PrizeRepository
	profiles  repository.ProfileRepository
	images    repository.ImageStore
	table     Table
	metrics   Recorder
	log       *zap.Logger
}

func NewPrizeService(
	txManager trm.Manager,
	prizes repository.PrizeRepository,
	profiles repository.ProfileRepository,
	images repository.ImageStore,
	table Table,
	metrics Recorder,
	log *zap.Logger,
) service.PrizeService {
	return &serv{
		txManager: txManager,
		prizes:    prizes,
		profiles:  profiles,
		images:    images,
		table:     table,
		metrics:   metrics,
		log:       log.Named("prize"),
	}
}

func (s *serv) List(ctx context.Context, activeOnly bool) ([]model.Prize, error) {
	return s.prizes.ListPrizes(ctx, activeOnly)
}

func validate(p *model.Prize) error {
	p.Name = strings.TrimSpace(p.Name)
	p.Description = strings.TrimSpace(p.Description)
	switch {
	case p.Name == "":
		return fmt.Errorf("%w: name is required", ErrInvalidPrize)
	case p.Cost < 0:
		return fmt.Errorf("%w: cost must not be negative", ErrInvalidPrize)
	case !p.Currency.Valid():
		return fmt.Errorf("%w: unknown currency %q", ErrInvalidPrize, p.Currency)
	}
	return nil
}

func (s *serv) Create(ctx context.Context, p *model.Prize) error {
	if err := validate(p); err != nil {
		return err
	}
	if err := s.prizes.CreatePrize(ctx, p); err != nil {
		return err
	}
	s.log.Info("prize created", zap.String("prize_id", p.ID), zap.String("name", p.Name))
	return nil
}

func (s *serv) Update(ctx context.Context, p *model.Prize) error {
	if err := validate(p); err != nil {
		return err
	}
	return s.prizes.UpdatePrize(ctx, p)
}

func (s *serv) SetActive(ctx context.Context, id string, active bool) error {
	return s.prizes.SetPrizeActive(ctx, id, active)
}

// Delete удаляет приз вместе с историей покупок
func (s *serv) Delete(ctx context.Context, id string) error {
	return s.txManager.Do(ctx, func(ctx context.Context) error {
		if err := s.prizes.DeletePurchasesByPrize(ctx, id); err != nil {
			return err
		}
		return s.prizes.DeletePrize(ctx, id)
	})
}

func (s *serv) UploadImage(ctx context.Context, name string, src io.Reader) (string, error) {
	url, err := s.images.Save(ctx, name, src)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidPrize, err)
	}
	return url, nil
}

// Redeem снимает приз с витрины, списывает стоимость и создаёт покупку в одной транзакции.
// Пока идёт покупка, раздача на столе игрока начаться не может.
func (s *serv) Redeem(ctx context.Context, id model.Identity, prizeID string, shipping model.ShippingInfo) (*model.Redemption, error) {
	if id.Guest {
		s.metrics.Redemption("rejected")
		return nil, ErrGuestRedeem
	}
	// адрес и email обязательны, телефон нет
	shipping.Address = strings.TrimSpace(shipping.Address)
	shipping.Phone = strings.TrimSpace(shipping.Phone)
	shipping.Email = strings.TrimSpace(shipping.Email)
	if shipping.Address == "" || shipping.Email == "" {
		s.metrics.Redemption("rejected")
		return nil, ErrInvalidContact
	}

	var out model.Redemption
	err := s.table.Exclusive(ctx, id, func(ctx context.Context) (*model.Profile, error) {
		err := s.txManager.Do(ctx, func(ctx context.Context) error {
			prize, err := s.prizes.GetPrize(ctx, prizeID)
			if err != nil {
				return err
			}
			// приз уникален: снимаем с витрины, если его ещё не забрали
			if err := s.prizes.ClaimPrize(ctx, prizeID); err != nil {
				return err
			}
			// списание в валюте приза, при нехватке транзакция откатывается
			profile, err := s.profiles.DebitBalance(ctx, id.UserID, prize.Currency, prize.Cost)
			if err != nil {
				return err
			}
			purchase := model.Purchase{
				PrizeID:  prize.ID,
				UserID:   id.UserID,
				Shipping: shipping,
				Cost:     prize.Cost,
				Currency: prize.Currency,
			}
			if err := s.prizes.CreatePurchase(ctx, &purchase); err != nil {
				return err
			}
			prize.Active = false
			out = model.Redemption{Purchase: purchase, Prize: *prize, Profile: *profile}
			return nil
		})
		if err != nil {
			return nil, err
		}
		return &out.Profile, nil
	})
	switch {
	case err == nil:
	case errors.Is(err, game.ErrHandInProgress):
		s.metrics.Redemption("rejected")
		return nil, ErrHandInProgress
	case errors.Is(err, game.ErrFaulted), errors.Is(err, game.ErrOwnerChanged):
		s.metrics.Redemption("rejected")
		return nil, err
	case errors.Is(err, repository.ErrConflict):
		s.metrics.Redemption("claimed")
		return nil, ErrPrizeClaimed
	case errors.Is(err, repository.ErrInsufficientFunds):
		s.metrics.Redemption("insufficient")
		return nil, ErrNotEnough
	default:
		s.metrics.Redemption("error")
		return nil, err
	}

	s.metrics.Redemption("ok")
	s.log.Info("prize redeemed",
		zap.String("user_id", id.UserID),
		zap.String("prize_id", prizeID),
		zap.String("purchase_id", out.Purchase.ID))
	return &out, nil
}
