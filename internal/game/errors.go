package game

import (
	"errors"
	"fmt"
)

// Ошибки ввода игрока: операция отклоняется, состояние не меняется
var (
	ErrUnknownBet        = errors.New("unknown bet")
	ErrInvalidChip       = errors.New("invalid chip")
	ErrBettingClosed     = errors.New("betting is closed")
	ErrSpotLocked        = errors.New("bet spot locked")
	ErrInsufficientFunds = errors.New("insufficient bankroll")
	ErrOutOfCredits      = errors.New("out of credits")
	ErrNoBets            = errors.New("no bets placed")
	ErrHandInProgress    = errors.New("hand in progress")
	ErrNotDealing        = errors.New("no hand is being dealt")
	ErrNotPaused         = errors.New("dealing is not paused")
	ErrNoLayout          = errors.New("no previous layout")
	ErrUnknownPaytable   = errors.New("unknown paytable")
	ErrOwnerChanged      = errors.New("table owner changed")

	// ErrFaulted стол уже в Faulted: принимается только сброс счёта
	ErrFaulted = errors.New("table is faulted")
)

// Нарушения инвариантов: раздача прерывается, сессия переходит в Faulted
var (
	ErrDeckExhausted  = errors.New("deck exhausted before a stopper was drawn")
	ErrLedgerDesync   = errors.New("ledger out of sync")
	ErrUnknownBetKind = errors.New("unknown bet kind")
)

// rejection ошибка с сообщением для игрока, errors.Is работает по kind
type rejection struct {
	kind error
	msg  string
}

func (r *rejection) Error() string { return r.msg }

func (r *rejection) Unwrap() error { return r.kind }

func reject(kind error, format string, args ...any) error {
	return &rejection{kind: kind, msg: fmt.Sprintf(format, args...)}
}

// IsFault true для ошибок, переводящих стол в Faulted.
// Отказ уже сломанного стола (ErrFaulted) сюда не входит.
func IsFault(err error) bool {
	return errors.Is(err, ErrDeckExhausted) ||
		errors.Is(err, ErrLedgerDesync) ||
		errors.Is(err, ErrUnknownBetKind)
}
