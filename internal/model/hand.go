package model

import (
	"time"

	"github.com/google/uuid"
)

type TableState int

const (
	StateIdle TableState = iota
	StateDealing
	StatePaused
	StateSettling
	StateFaulted
)

func (s TableState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateDealing:
		return "dealing"
	case StatePaused:
		return "paused"
	case StateSettling:
		return "settling"
	case StateFaulted:
		return "faulted"
	}
	return "unknown"
}

func (s TableState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// BetOutcome итог одной ставки в раздаче
type BetOutcome struct {
	Key   string  `json:"key"`
	Label string  `json:"label"`
	Type  BetType `json:"type"`
	Stake int     `json:"stake"`
	Paid  int     `json:"paid"`
	Hits  int     `json:"hits"`
	Chips []int   `json:"chips"`
}

func (o BetOutcome) Net() int { return o.Paid - o.Stake }

func (o BetOutcome) Won() bool { return o.Paid > 0 }

// HandResult неизменяемая запись о сыгранной раздаче
type HandResult struct {
	ID                uuid.UUID    `json:"id"`
	UserID            string       `json:"user_id"`
	Guest             bool         `json:"guest"`
	PaytableID        string       `json:"paytable_id"`
	Cards             []Card       `json:"cards"`
	Stopper           Card         `json:"stopper"`
	TotalCards        int          `json:"total_cards"`
	NonStopperCount   int          `json:"non_stopper_count"`
	Wagered           int          `json:"wagered"`
	Paid              int          `json:"paid"`
	Net               int          `json:"net"`
	CarterCashAwarded int          `json:"carter_cash_awarded"`
	Bets              []BetOutcome `json:"bets"`
	Bankroll          Bankroll     `json:"bankroll"`
	SettledAt         time.Time    `json:"settled_at"`
}

// HistoryEntry строка истории последних раздач
type HistoryEntry struct {
	HandID     uuid.UUID `json:"hand_id"`
	Cards      []Card    `json:"cards"`
	TotalCards int       `json:"total_cards"`
	Net        int       `json:"net"`
}

// DrawEvent событие вытянутой карты
type DrawEvent struct {
	HandID   uuid.UUID    `json:"hand_id"`
	UserID   string       `json:"user_id"`
	Index    int          `json:"index"`
	Card     Card         `json:"card"`
	Payouts  []BetOutcome `json:"payouts,omitempty"`
	Bankroll Bankroll     `json:"bankroll"`
}

// TableView снимок состояния стола для клиента
type TableView struct {
	UserID          string          `json:"user_id"`
	Guest           bool            `json:"guest"`
	State           TableState      `json:"state"`
	Status          string          `json:"status"`
	Fault           string          `json:"fault,omitempty"`
	Bankroll        Bankroll        `json:"bankroll"`
	Stats           Statistics      `json:"stats"`
	Bets            []BetView       `json:"bets"`
	Paytable        Paytable        `json:"paytable"`
	Paytables       []Paytable      `json:"paytables"`
	Denominations   []int           `json:"denominations"`
	DrawnCards      []Card          `json:"drawn_cards"`
	History         []HistoryEntry  `json:"history"`
	BankrollHistory []BankrollPoint `json:"bankroll_history"`
	LastLayoutTotal int             `json:"last_layout_total"`
}
