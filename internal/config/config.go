package config

import (
	"run_the_numbers/internal/model"
	"time"

	"github.com/joho/godotenv"
)

func Load(path string) error {
	err := godotenv.Load(path)
	if err != nil {
		return err
	}
	return nil
}

type AppConfig interface {
	ServiceName() string
	Env() string
	ImageDir() string
}

type HTTPConfig interface {
	Address() string
}

type PGConfig interface {
	DSN() string
}

type JWTConfig interface {
	AccessTokenSecretKey() []byte
	AccessTokenDuration() time.Duration
	RefreshTokenDuration() time.Duration
}

// RedisConfig пустой Address отключает кэш профилей
type RedisConfig interface {
	Address() string
	Password() string
	DB() int
}

// KafkaConfig пустой список брокеров отключает публикацию событий
type KafkaConfig interface {
	Brokers() []string
	HandsTopic() string
}

// ProfileConfig политика синхронизации профиля с хранилищем
type ProfileConfig interface {
	FetchRounds() int
	AttemptMax() int
	RetryDelay() time.Duration
	FetchTimeout() time.Duration
	SyncInterval() time.Duration
}

// GameConfig параметры стола и каталог полей ставок
type GameConfig interface {
	Denominations() []int
	InitialBankroll() int
	DealDelay() time.Duration
	DealDelayStep() time.Duration
	HistorySize() int
	BankrollHistorySize() int
	PlaythroughRate() int
	Paytables() []model.Paytable
	DefaultPaytable() string
	BetDefinitions() []model.BetDefinition
}
