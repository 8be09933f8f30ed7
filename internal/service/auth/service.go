package auth

import (
	"errors"
	"run_the_numbers/internal/config"
	"run_the_numbers/internal/repository"
	"run_the_numbers/internal/service"
	"time"

	"github.com/avito-tech/go-transaction-manager/trm/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidSession     = errors.New("session expired or revoked")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidInput       = errors.New("invalid registration data")
)

type serv struct {
	txManager trm.Manager
	userRepo  repository.UserRepository
	authRepo  repository.AuthRepository
	jwtConfig config.JWTConfig
	log       *zap.Logger
	now       func() time.Time
}

func NewAuthService(
	txManager trm.Manager,
	userRepo repository.UserRepository,
	authRepo repository.AuthRepository,
	jwtConfig config.JWTConfig,
	log *zap.Logger,
) service.AuthService {
	return &serv{
		txManager: txManager,
		userRepo:  userRepo,
		authRepo:  authRepo,
		jwtConfig: jwtConfig,
		log:       log.Named("auth"),
		now:       time.Now,
	}
}

func generateSessionID() string {
	return uuid.NewString()
}
