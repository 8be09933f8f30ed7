package house_stats_repo

import (
	"run_the_numbers/internal/model"
	"sync"

	"github.com/shopspring/decimal"
)

const defaultWindowSize = 500

var hundred = decimal.NewFromInt(100)

type handTotals struct {
	wagered int64
	paid    int64
}

// StatsRepo агрегаты по всем раздачам с момента запуска и скользящее окно последних раздач
type StatsRepo struct {
	mtx        sync.RWMutex
	hands      int
	wagered    int64
	paid       int64
	window     []handTotals
	windowSize int
}

func NewHouseStatsRepository(windowSize int) *StatsRepo {
	if windowSize <= 0 {
		windowSize = defaultWindowSize
	}
	return &StatsRepo{
		window:     make([]handTotals, 0, windowSize),
		windowSize: windowSize,
	}
}

// Record учитывает рассчитанную раздачу
func (r *StatsRepo) Record(wagered, paid int) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	r.hands++
	r.wagered += int64(wagered)
	r.paid += int64(paid)

	r.window = append(r.window, handTotals{wagered: int64(wagered), paid: int64(paid)})
	if len(r.window) > r.windowSize {
		r.window = r.window[1:]
	}
}

func (r *StatsRepo) Snapshot() model.HouseStats {
	r.mtx.RLock()
	defer r.mtx.RUnlock()

	var ww, wp int64
	for _, h := range r.window {
		ww += h.wagered
		wp += h.paid
	}

	return model.HouseStats{
		Hands:       r.hands,
		Wagered:     r.wagered,
		Paid:        r.paid,
		Hold:        holdPct(r.wagered, r.paid),
		WindowHands: len(r.window),
		WindowHold:  holdPct(ww, wp),
		WindowSize:  r.windowSize,
	}
}

// holdPct (wagered - paid) / wagered * 100, два знака
func holdPct(wagered, paid int64) decimal.Decimal {
	if wagered == 0 {
		return decimal.Zero
	}
	w := decimal.NewFromInt(wagered)
	return w.Sub(decimal.NewFromInt(paid)).Div(w).Mul(hundred).Round(2)
}
