package table

import (
	"net/http"
	dto "run_the_numbers/internal/api/dto/table"
	"run_the_numbers/internal/api/httperr"
	"run_the_numbers/internal/middleware"
	"run_the_numbers/internal/model"
	"run_the_numbers/internal/service"
	"run_the_numbers/pkg/req"
	"run_the_numbers/pkg/resp"
	"strconv"

	"go.uber.org/zap"
)

type HandlerDeps struct {
	Serv service.TableService
	Log  *zap.Logger
}

type Handler struct {
	serv service.TableService
	log  *zap.Logger
}

func NewHandler(deps HandlerDeps) *Handler {
	return &Handler{serv: deps.Serv, log: deps.Log}
}

// respond отказ стола отдаётся вместе с состоянием, чтобы клиент показал статус
func (h *Handler) respond(w http.ResponseWriter, view model.TableView, err error) {
	if err == nil {
		resp.WriteJSONResponse(w, http.StatusOK, view)
		return
	}
	status := httperr.Status(err)
	if status >= http.StatusInternalServerError {
		h.log.Error("table operation failed", zap.String("user_id", view.UserID), zap.Error(err))
	}
	resp.WriteJSONResponse(w, status, dto.ErrorResponse{Error: httperr.Message(err), Table: view})
}

func identity(r *http.Request) model.Identity {
	id, _ := middleware.IdentityFromContext(r.Context())
	return id
}

func (h *Handler) State(w http.ResponseWriter, r *http.Request) {
	view, err := h.serv.State(r.Context(), identity(r))
	h.respond(w, view, err)
}

func (h *Handler) PlaceBet(w http.ResponseWriter, r *http.Request) {
	payload, err := req.Decode[dto.PlaceBetRequest](r.Body)
	if err != nil {
		resp.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	view, err := h.serv.PlaceBet(r.Context(), identity(r), payload.Key, payload.Amount)
	h.respond(w, view, err)
}

func (h *Handler) ClearBets(w http.ResponseWriter, r *http.Request) {
	view, err := h.serv.ClearBets(r.Context(), identity(r))
	h.respond(w, view, err)
}

func (h *Handler) Rebet(w http.ResponseWriter, r *http.Request) {
	view, err := h.serv.Rebet(r.Context(), identity(r))
	h.respond(w, view, err)
}

func (h *Handler) SelectPaytable(w http.ResponseWriter, r *http.Request) {
	payload, err := req.Decode[dto.SelectPaytableRequest](r.Body)
	if err != nil {
		resp.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	view, err := h.serv.SelectPaytable(r.Context(), identity(r), payload.PaytableID)
	h.respond(w, view, err)
}

// Deal по умолчанию отвечает 202 сразу, карты приходят по websocket.
// С ?wait=true ответ содержит итог раздачи.
func (h *Handler) Deal(w http.ResponseWriter, r *http.Request) {
	wait, _ := strconv.ParseBool(r.URL.Query().Get("wait"))

	hand, view, err := h.serv.Deal(r.Context(), identity(r), wait)
	if err != nil {
		h.respond(w, view, err)
		return
	}
	status := http.StatusAccepted
	if wait {
		status = http.StatusOK
	}
	resp.WriteJSONResponse(w, status, dto.DealResponse{Hand: hand, Table: view})
}

func (h *Handler) Pause(w http.ResponseWriter, r *http.Request) {
	view, err := h.serv.Pause(r.Context(), identity(r))
	h.respond(w, view, err)
}

func (h *Handler) Resume(w http.ResponseWriter, r *http.Request) {
	view, err := h.serv.Resume(r.Context(), identity(r))
	h.respond(w, view, err)
}

func (h *Handler) Reset(w http.ResponseWriter, r *http.Request) {
	view, err := h.serv.ResetAccount(r.Context(), identity(r))
	h.respond(w, view, err)
}

func (h *Handler) Sync(w http.ResponseWriter, r *http.Request) {
	view, err := h.serv.SyncProfile(r.Context(), identity(r))
	h.respond(w, view, err)
}
