package table

import "run_the_numbers/internal/model"

type PlaceBetRequest struct {
	Key    string `json:"key"`    // ключ поля, например "A" или "bust-joker"
	Amount int    `json:"amount"` // номинал фишки
}

type SelectPaytableRequest struct {
	PaytableID string `json:"paytable_id"`
}

type DealResponse struct {
	Hand  *model.HandResult `json:"hand,omitempty"` // только для ?wait=true
	Table model.TableView   `json:"table"`
}

// ErrorResponse отказ операции вместе с текущим состоянием стола
type ErrorResponse struct {
	Error string          `json:"error"`
	Table model.TableView `json:"table"`
}

// Event сообщение websocket: card, settled, state, pong
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

type ClientMessage struct {
	Type string `json:"type"` // state, ping
}
