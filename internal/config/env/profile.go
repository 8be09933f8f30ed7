package env

import (
	"fmt"
	"run_the_numbers/internal/config"
	"time"
)

const (
	profileFetchRoundsEnvName  = "PROFILE_FETCH_ROUNDS"
	profileAttemptMaxEnvName   = "PROFILE_ATTEMPT_MAX"
	profileRetryDelayEnvName   = "PROFILE_RETRY_DELAY"
	profileFetchTimeoutEnvName = "PROFILE_FETCH_TIMEOUT"
	profileSyncIntervalEnvName = "PROFILE_CACHE_TTL"
)

type profileConfig struct {
	fetchRounds  int
	attemptMax   int
	retryDelay   time.Duration
	fetchTimeout time.Duration
	syncInterval time.Duration
}

func NewProfileConfig() (config.ProfileConfig, error) {
	cfg := &profileConfig{}
	var err error
	if cfg.fetchRounds, err = intEnv(profileFetchRoundsEnvName, 2); err != nil {
		return nil, err
	}
	if cfg.attemptMax, err = intEnv(profileAttemptMaxEnvName, 5); err != nil {
		return nil, err
	}
	if cfg.retryDelay, err = durationEnv(profileRetryDelayEnvName, 1200*time.Millisecond); err != nil {
		return nil, err
	}
	if cfg.fetchTimeout, err = durationEnv(profileFetchTimeoutEnvName, 10*time.Second); err != nil {
		return nil, err
	}
	if cfg.syncInterval, err = durationEnv(profileSyncIntervalEnvName, 15*time.Second); err != nil {
		return nil, err
	}
	if cfg.fetchRounds < 1 || cfg.attemptMax < 1 {
		return nil, fmt.Errorf("profile fetch rounds and attempts must be positive")
	}
	return cfg, nil
}

func (cfg *profileConfig) FetchRounds() int { return cfg.fetchRounds }

func (cfg *profileConfig) AttemptMax() int { return cfg.attemptMax }

func (cfg *profileConfig) RetryDelay() time.Duration { return cfg.retryDelay }

func (cfg *profileConfig) FetchTimeout() time.Duration { return cfg.fetchTimeout }

func (cfg *profileConfig) SyncInterval() time.Duration { return cfg.syncInterval }
