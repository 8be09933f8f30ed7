package stats

import (
	"net/http"
	"net/http/httptest"
	"run_the_numbers/internal/repository/house_stats_repo"
	statsService "run_the_numbers/internal/service/stats"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHouse(t *testing.T) {
	repo := house_stats_repo.NewHouseStatsRepository(10)
	repo.Record(200, 150)
	h := NewHandler(HandlerDeps{Serv: statsService.NewStatsService(repo)})

	rec := httptest.NewRecorder()
	h.House(rec, httptest.NewRequest(http.MethodGet, "/stats/house", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"hands":1,"wagered":200,"paid":150,"hold_pct":"25","window_hands":1,"window_hold_pct":"25","window_size":10}`, rec.Body.String())
}
