package env

import (
	"run_the_numbers/internal/game"
	"run_the_numbers/internal/model"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepositoryGameConfig(t *testing.T) {
	cfg, err := NewGameConfigFromYAML("../../../config.yaml")
	require.NoError(t, err)

	assert.Equal(t, []int{5, 10, 25, 100}, cfg.Denominations())
	assert.Equal(t, 420*time.Millisecond, cfg.DealDelay())
	assert.Equal(t, "paytable-1", cfg.DefaultPaytable())
	require.Len(t, cfg.Paytables(), 3)
	assert.Equal(t, []int{3, 4, 15, 50}, cfg.Paytables()[0].Steps)

	reg, err := game.NewRegistry(cfg.BetDefinitions())
	require.NoError(t, err)
	// 10 номиналов, 8 bust, 8 count, 40 конкретных карт
	assert.Equal(t, 66, reg.Len())

	def, ok := reg.Lookup("card-10-diamonds")
	require.True(t, ok)
	assert.Equal(t, "10♦", def.Label)
	assert.Equal(t, 12, def.Payout)
	assert.True(t, def.LockDuringHand)

	def, ok = reg.Lookup("bust-joker")
	require.True(t, ok)
	assert.False(t, def.LockDuringHand)
	assert.Equal(t, 11, def.Payout)

	def, ok = reg.Lookup("count-8")
	require.True(t, ok)
	assert.Equal(t, model.CountBet{Min: 8, Open: true}, def.Kind)
}

func TestParseGameConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{name: "not yaml", raw: "table: ["},
		{name: "no paytables", raw: "spots: []"},
		{name: "unknown type", raw: `
paytables: [{id: p, steps: [1]}]
spots: [{key: x, type: roulette}]`},
		{name: "unknown suit", raw: `
paytables: [{id: p, steps: [1]}]
spots: [{key: x, type: bust-suit, suit: stars}]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseGameConfig([]byte(tt.raw))
			assert.Error(t, err)
		})
	}
}

func TestProfileConfigDefaults(t *testing.T) {
	t.Setenv(profileRetryDelayEnvName, "")
	t.Setenv(profileAttemptMaxEnvName, "3")

	cfg, err := NewProfileConfig()
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.FetchRounds())
	assert.Equal(t, 3, cfg.AttemptMax())
	assert.Equal(t, 1200*time.Millisecond, cfg.RetryDelay())
	assert.Equal(t, 10*time.Second, cfg.FetchTimeout())
}

func TestJWTConfigValidation(t *testing.T) {
	t.Setenv(accessTokenKeyEnvName, "short")
	_, err := NewJWTConfig()
	assert.Error(t, err)

	t.Setenv(accessTokenKeyEnvName, "0123456789abcdef0123456789abcdef")
	t.Setenv(accessTokenDurationEnvName, "1h")
	t.Setenv(refreshTokenDurationEnvName, "30m")
	_, err = NewJWTConfig()
	assert.Error(t, err)

	t.Setenv(refreshTokenDurationEnvName, "")
	cfg, err := NewJWTConfig()
	require.NoError(t, err)
	assert.Equal(t, time.Hour, cfg.AccessTokenDuration())
	assert.Equal(t, 30*24*time.Hour, cfg.RefreshTokenDuration())
}

func TestKafkaBrokersList(t *testing.T) {
	t.Setenv(kafkaBrokersEnvName, " a:9092, ,b:9092 ")
	cfg := NewKafkaConfig()
	assert.Equal(t, []string{"a:9092", "b:9092"}, cfg.Brokers())
	assert.Equal(t, "rtn.hands.settled", cfg.HandsTopic())
}
