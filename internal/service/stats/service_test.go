package stats

import (
	"run_the_numbers/internal/repository/house_stats_repo"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHouse(t *testing.T) {
	repo := house_stats_repo.NewHouseStatsRepository(2)
	svc := NewStatsService(repo)

	repo.Record(100, 50)
	repo.Record(100, 200)
	repo.Record(100, 0)

	got := svc.House()
	assert.Equal(t, 3, got.Hands)
	assert.Equal(t, int64(300), got.Wagered)
	assert.Equal(t, int64(250), got.Paid)
	assert.Equal(t, 2, got.WindowHands)
	assert.True(t, got.WindowHold.IsZero())
	assert.Equal(t, "16.67", got.Hold.String())
}
