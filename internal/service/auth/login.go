package auth

import (
	"context"
	"errors"
	"run_the_numbers/internal/model"
	"run_the_numbers/internal/repository"
	"run_the_numbers/pkg/pass"
	"run_the_numbers/pkg/token"
)

func (s *serv) Login(ctx context.Context, email, password string) (*model.AuthData, error) {
	// Получение пользователя из бд по email
	user, err := s.userRepo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	// Верификация пароля
	if !pass.VerifyPassword(user.Password, password) {
		return nil, ErrInvalidCredentials
	}

	return s.openSession(ctx, user)
}

// openSession создаёт сессию с хэшем refresh токена и выпускает access токен
func (s *serv) openSession(ctx context.Context, user *model.User) (*model.AuthData, error) {
	// Генерация refresh токена, в бд хранится только хэш
	refreshToken, refreshHash, err := token.NewRefreshToken()
	if err != nil {
		return nil, err
	}

	// Создать сессию
	sessionID := generateSessionID()
	err = s.authRepo.CreateSession(ctx, &model.Session{
		ID:           sessionID,
		UserID:       user.ID,
		RefreshToken: refreshHash,
		ExpiresAt:    s.now().Add(s.jwtConfig.RefreshTokenDuration()),
	})
	if err != nil {
		return nil, err
	}

	// Создать access токен
	accessToken, err := token.GenerateAccessToken(
		user,
		s.jwtConfig.AccessTokenSecretKey(),
		s.jwtConfig.AccessTokenDuration())
	if err != nil {
		return nil, err
	}

	return &model.AuthData{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		SessionID:    sessionID,
	}, nil
}
