package stats

import (
	"net/http"
	"run_the_numbers/internal/service"
	"run_the_numbers/pkg/resp"
)

type HandlerDeps struct {
	Serv service.StatsService
}

type Handler struct {
	serv service.StatsService
}

func NewHandler(deps HandlerDeps) *Handler {
	return &Handler{serv: deps.Serv}
}

func (h *Handler) House(w http.ResponseWriter, _ *http.Request) {
	resp.WriteJSONResponse(w, http.StatusOK, h.serv.House())
}
