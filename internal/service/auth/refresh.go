package auth

import (
	"context"
	"errors"
	"run_the_numbers/internal/repository"
	"run_the_numbers/pkg/token"
)

func (s *serv) Refresh(ctx context.Context, sessionID, refreshToken string) (string, error) {
	// Получение сессии по sessionID
	session, err := s.authRepo.GetSession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrInvalidSession
		}
		return "", err
	}

	// Верификация переданного refresh токена с хэшем из хранилища
	if !token.VerifyRefreshToken(refreshToken, session.RefreshToken) {
		return "", ErrInvalidSession
	}
	// Истёкшая сессия не продлевается
	if !s.now().Before(session.ExpiresAt) {
		return "", ErrInvalidSession
	}

	// Получение пользователя по sessionID
	user, err := s.authRepo.GetUserBySessionID(ctx, sessionID)
	if err != nil {
		return "", err
	}

	// Генерация нового access токена
	return token.GenerateAccessToken(
		user,
		s.jwtConfig.AccessTokenSecretKey(),
		s.jwtConfig.AccessTokenDuration())
}

// Logout закрывает сессию; повторный выход не ошибка
func (s *serv) Logout(ctx context.Context, sessionID string) error {
	err := s.authRepo.DeleteSession(ctx, sessionID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return err
	}
	return nil
}
