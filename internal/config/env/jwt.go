package env

import (
	"fmt"
	"os"
	"run_the_numbers/internal/config"
	"time"
)

const (
	minAccessTokenKeyLen = 32

	refreshTokenDurationEnvName = "REFRESH_TOKEN_DURATION"
	accessTokenKeyEnvName       = "ACCESS_TOKEN"
	accessTokenDurationEnvName  = "ACCESS_TOKEN_DURATION"

	defaultAccessTokenDuration  = 15 * time.Minute
	defaultRefreshTokenDuration = 30 * 24 * time.Hour
)

type jwtConfig struct {
	refreshTokenDuration time.Duration
	accessTokenSecretKey string
	accessTokenDuration  time.Duration
}

func NewJWTConfig() (config.JWTConfig, error) {
	accessToken := os.Getenv(accessTokenKeyEnvName)
	if len(accessToken) == 0 {
		return nil, fmt.Errorf("access token secret key not found")
	}
	if len(accessToken) < minAccessTokenKeyLen {
		return nil, fmt.Errorf("access token secret key must be at least %d bytes", minAccessTokenKeyLen)
	}

	accessTTL, err := durationEnv(accessTokenDurationEnvName, defaultAccessTokenDuration)
	if err != nil {
		return nil, err
	}
	refreshTTL, err := durationEnv(refreshTokenDurationEnvName, defaultRefreshTokenDuration)
	if err != nil {
		return nil, err
	}
	if refreshTTL <= accessTTL {
		return nil, fmt.Errorf("refresh token duration %s must exceed access token duration %s", refreshTTL, accessTTL)
	}

	return &jwtConfig{
		accessTokenSecretKey: accessToken,
		refreshTokenDuration: refreshTTL,
		accessTokenDuration:  accessTTL,
	}, nil
}

func (j *jwtConfig) AccessTokenSecretKey() []byte {
	return []byte(j.accessTokenSecretKey)
}

func (j *jwtConfig) RefreshTokenDuration() time.Duration {
	return j.refreshTokenDuration
}

func (j *jwtConfig) AccessTokenDuration() time.Duration {
	return j.accessTokenDuration
}
