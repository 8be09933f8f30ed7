package auth

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"run_the_numbers/internal/model"
	"run_the_numbers/internal/repository"
	"run_the_numbers/pkg/pass"
	"strings"

	"go.uber.org/zap"
)

func (s *serv) Register(ctx context.Context, user *model.User) (*model.AuthData, error) {
	// Валидация email и пароля
	user.Email = strings.TrimSpace(user.Email)
	user.Name = strings.TrimSpace(user.Name)
	if _, err := mail.ParseAddress(user.Email); err != nil {
		return nil, fmt.Errorf("%w: email", ErrInvalidInput)
	}
	if !pass.Valid(user.Password) {
		return nil, fmt.Errorf("%w: password must be 8 to 72 characters", ErrInvalidInput)
	}
	// права администратора выдаются только вручную в БД
	user.IsAdmin = false

	// Хэширование пароля пользователя
	passwordHash, err := pass.HashPassword(user.Password)
	if err != nil {
		return nil, err
	}
	user.Password = passwordHash

	var data *model.AuthData
	err = s.txManager.Do(ctx, func(ctx context.Context) error {
		// 1. Создать пользователя в бд
		user.ID, err = s.userRepo.CreateUser(ctx, user)
		if err != nil {
			return err
		}
		// 2. Открыть сессию и выпустить токены
		data, err = s.openSession(ctx, user)
		return err
	})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}

	s.log.Info("user registered", zap.String("user_id", user.ID))
	return data, nil
}
