package metrics

import (
	"run_the_numbers/internal/model"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics счётчики стола. Реализует game.Observer.
type Metrics struct {
	hands        prometheus.Counter
	cardsDrawn   prometheus.Counter
	wagered      prometheus.Counter
	paid         prometheus.Counter
	handCards    prometheus.Histogram
	betOutcomes  *prometheus.CounterVec
	bgErrors     *prometheus.CounterVec
	redemptions  *prometheus.CounterVec
	activeTables prometheus.Gauge
	wsClients    prometheus.Gauge
}

func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		hands: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rtn_hands_total", Help: "сыгранные раздачи",
		}),
		cardsDrawn: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rtn_cards_drawn_total", Help: "вытянутые карты",
		}),
		wagered: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rtn_wagered_units_total", Help: "поставлено единиц",
		}),
		paid: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rtn_paid_units_total", Help: "выплачено единиц",
		}),
		handCards: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "rtn_hand_cards",
			Help:    "карт в раздаче вместе со стоппером",
			Buckets: prometheus.LinearBuckets(1, 1, 12),
		}),
		betOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rtn_bet_outcomes_total", Help: "итоги ставок по типу",
		}, []string{"type", "outcome"}),
		bgErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rtn_background_errors_total", Help: "ошибки фоновой записи по этапу",
		}, []string{"stage"}),
		redemptions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rtn_prize_redemptions_total", Help: "покупки призов по результату",
		}, []string{"result"}),
		activeTables: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "rtn_active_tables", Help: "открытые игровые сессии",
		}),
		wsClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "rtn_ws_clients", Help: "подключённые websocket клиенты",
		}),
	}
	reg.MustRegister(
		m.hands, m.cardsDrawn, m.wagered, m.paid, m.handCards,
		m.betOutcomes, m.bgErrors, m.redemptions, m.activeTables, m.wsClients,
	)
	return m
}

func (m *Metrics) CardDrawn(model.DrawEvent) {
	m.cardsDrawn.Inc()
}

func (m *Metrics) HandSettled(res model.HandResult) {
	m.hands.Inc()
	m.wagered.Add(float64(res.Wagered))
	m.paid.Add(float64(res.Paid))
	m.handCards.Observe(float64(res.TotalCards))
	for _, b := range res.Bets {
		outcome := "lost"
		if b.Won() {
			outcome = "won"
		}
		m.betOutcomes.WithLabelValues(string(b.Type), outcome).Inc()
	}
}

// BackgroundError stage: persist, audit, publish, cache, house_stats
func (m *Metrics) BackgroundError(stage string) {
	m.bgErrors.WithLabelValues(stage).Inc()
}

// Redemption result: ok, claimed, insufficient, rejected, error
func (m *Metrics) Redemption(result string) {
	m.redemptions.WithLabelValues(result).Inc()
}

func (m *Metrics) TableOpened() { m.activeTables.Inc() }

func (m *Metrics) TableClosed() { m.activeTables.Dec() }

func (m *Metrics) ClientConnected() { m.wsClients.Inc() }

func (m *Metrics) ClientDisconnected() { m.wsClients.Dec() }
