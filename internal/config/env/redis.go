package env

import "run_the_numbers/internal/config"

const (
	redisAddrEnvName     = "REDIS_ADDR"
	redisPasswordEnvName = "REDIS_PASSWORD"
	redisDBEnvName       = "REDIS_DB"
)

type redisConfig struct {
	address  string
	password string
	db       int
}

func NewRedisConfig() (config.RedisConfig, error) {
	db, err := intEnv(redisDBEnvName, 0)
	if err != nil {
		return nil, err
	}
	return &redisConfig{
		address:  stringEnv(redisAddrEnvName, ""),
		password: stringEnv(redisPasswordEnvName, ""),
		db:       db,
	}, nil
}

func (cfg *redisConfig) Address() string { return cfg.address }

func (cfg *redisConfig) Password() string { return cfg.password }

func (cfg *redisConfig) DB() int { return cfg.db }
