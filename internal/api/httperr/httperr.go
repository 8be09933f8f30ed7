// Package httperr сопоставление ошибок сервисов и HTTP статусов.
package httperr

import (
	"errors"
	"net/http"
	"run_the_numbers/internal/game"
	"run_the_numbers/internal/repository"
	"run_the_numbers/internal/service/auth"
	"run_the_numbers/internal/service/prize"
	"run_the_numbers/internal/service/table"
	"run_the_numbers/pkg/resp"

	"go.uber.org/zap"
)

type rule struct {
	err    error
	status int
}

// порядок важен: первая совпавшая ошибка определяет статус
var rules = []rule{
	{game.ErrBettingClosed, http.StatusConflict},
	{game.ErrSpotLocked, http.StatusConflict},
	{game.ErrHandInProgress, http.StatusConflict},
	{game.ErrNotDealing, http.StatusConflict},
	{game.ErrNotPaused, http.StatusConflict},
	{game.ErrFaulted, http.StatusConflict},
	{game.ErrOwnerChanged, http.StatusConflict},
	{game.ErrUnknownBet, http.StatusBadRequest},
	{game.ErrInvalidChip, http.StatusBadRequest},
	{game.ErrInsufficientFunds, http.StatusBadRequest},
	{game.ErrOutOfCredits, http.StatusBadRequest},
	{game.ErrNoBets, http.StatusBadRequest},
	{game.ErrNoLayout, http.StatusBadRequest},
	{game.ErrUnknownPaytable, http.StatusBadRequest},

	{prize.ErrPrizeClaimed, http.StatusConflict},
	{prize.ErrHandInProgress, http.StatusConflict},
	{prize.ErrNotEnough, http.StatusConflict},
	{prize.ErrInvalidPrize, http.StatusBadRequest},
	{prize.ErrInvalidContact, http.StatusBadRequest},
	{prize.ErrGuestRedeem, http.StatusUnauthorized},

	{auth.ErrInvalidCredentials, http.StatusUnauthorized},
	{auth.ErrInvalidSession, http.StatusUnauthorized},
	{auth.ErrEmailTaken, http.StatusConflict},
	{auth.ErrInvalidInput, http.StatusBadRequest},

	{repository.ErrNotFound, http.StatusNotFound},
	{repository.ErrConflict, http.StatusConflict},
	{table.ErrClosed, http.StatusServiceUnavailable},
	{table.ErrUnsynced, http.StatusServiceUnavailable},
}

// Status 500 для неизвестных ошибок и нарушений инвариантов стола
func Status(err error) int {
	if game.IsFault(err) {
		return http.StatusInternalServerError
	}
	for _, r := range rules {
		if errors.Is(err, r.err) {
			return r.status
		}
	}
	return http.StatusInternalServerError
}

// Message текст ошибки для клиента; детали внутренних ошибок не раскрываются
func Message(err error) string {
	if Status(err) == http.StatusInternalServerError && !game.IsFault(err) {
		return "internal error"
	}
	if errors.Is(err, repository.ErrNotFound) {
		return "not found"
	}
	return err.Error()
}

// Write пишет ErrorResponse; 5xx логируются
func Write(w http.ResponseWriter, log *zap.Logger, err error) {
	status := Status(err)
	if status >= http.StatusInternalServerError {
		log.Error("request failed", zap.Int("status", status), zap.Error(err))
	}
	resp.WriteError(w, status, Message(err))
}
