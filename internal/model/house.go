package model

import "github.com/shopspring/decimal"

// HouseStats агрегаты по всем столам с момента запуска
type HouseStats struct {
	Hands       int             `json:"hands"`
	Wagered     int64           `json:"wagered"`
	Paid        int64           `json:"paid"`
	Hold        decimal.Decimal `json:"hold_pct"`
	WindowHands int             `json:"window_hands"`
	WindowHold  decimal.Decimal `json:"window_hold_pct"`
	WindowSize  int             `json:"window_size"`
}
