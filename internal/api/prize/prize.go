package prize

import (
	"net/http"
	dto "run_the_numbers/internal/api/dto/prize"
	"run_the_numbers/internal/api/httperr"
	"run_the_numbers/internal/converter"
	"run_the_numbers/internal/middleware"
	"run_the_numbers/internal/service"
	"run_the_numbers/pkg/req"
	"run_the_numbers/pkg/resp"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type HandlerDeps struct {
	Serv service.PrizeService
	Log  *zap.Logger
}

type Handler struct {
	serv service.PrizeService
	log  *zap.Logger
}

func NewHandler(deps HandlerDeps) *Handler {
	return &Handler{serv: deps.Serv, log: deps.Log}
}

// List витрина: только активные призы
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	prizes, err := h.serv.List(r.Context(), true)
	if err != nil {
		httperr.Write(w, h.log, err)
		return
	}
	resp.WriteJSONResponse(w, http.StatusOK, converter.ToPrizeList(prizes))
}

func (h *Handler) Redeem(w http.ResponseWriter, r *http.Request) {
	payload, err := req.Decode[dto.RedeemRequest](r.Body)
	if err != nil {
		resp.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	id, _ := middleware.IdentityFromContext(r.Context())

	redemption, err := h.serv.Redeem(r.Context(), id, chi.URLParam(r, "id"), converter.ToShipping(payload))
	if err != nil {
		httperr.Write(w, h.log, err)
		return
	}
	resp.WriteJSONResponse(w, http.StatusCreated, converter.ToRedeemResponse(*redemption))
}
