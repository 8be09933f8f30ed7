package admin

import (
	"errors"
	"net/http"
	dto "run_the_numbers/internal/api/dto/prize"
	"run_the_numbers/internal/api/httperr"
	"run_the_numbers/internal/converter"
	"run_the_numbers/internal/service"
	"run_the_numbers/pkg/req"
	"run_the_numbers/pkg/resp"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const (
	maxImageSize   = 5 << 20
	imageFormField = "image"
)

type HandlerDeps struct {
	Prizes service.PrizeService
	Log    *zap.Logger
}

// Handler управление призами, доступен только администраторам
type Handler struct {
	prizes service.PrizeService
	log    *zap.Logger
}

func NewHandler(deps HandlerDeps) *Handler {
	return &Handler{prizes: deps.Prizes, log: deps.Log}
}

func (h *Handler) ListPrizes(w http.ResponseWriter, r *http.Request) {
	prizes, err := h.prizes.List(r.Context(), false)
	if err != nil {
		httperr.Write(w, h.log, err)
		return
	}
	resp.WriteJSONResponse(w, http.StatusOK, converter.ToPrizeList(prizes))
}

func (h *Handler) CreatePrize(w http.ResponseWriter, r *http.Request) {
	payload, err := req.Decode[dto.PrizeRequest](r.Body)
	if err != nil {
		resp.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	p := converter.ToPrizeModel("", payload)
	if err := h.prizes.Create(r.Context(), p); err != nil {
		httperr.Write(w, h.log, err)
		return
	}
	resp.WriteJSONResponse(w, http.StatusCreated, converter.ToPrizeResponse(*p))
}

func (h *Handler) UpdatePrize(w http.ResponseWriter, r *http.Request) {
	payload, err := req.Decode[dto.PrizeRequest](r.Body)
	if err != nil {
		resp.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	p := converter.ToPrizeModel(chi.URLParam(r, "id"), payload)
	if err := h.prizes.Update(r.Context(), p); err != nil {
		httperr.Write(w, h.log, err)
		return
	}
	resp.WriteJSONResponse(w, http.StatusOK, converter.ToPrizeResponse(*p))
}

func (h *Handler) SetPrizeStatus(w http.ResponseWriter, r *http.Request) {
	payload, err := req.Decode[dto.StatusRequest](r.Body)
	if err != nil {
		resp.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.prizes.SetActive(r.Context(), chi.URLParam(r, "id"), payload.Active); err != nil {
		httperr.Write(w, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeletePrize удаляет приз вместе с покупками
func (h *Handler) DeletePrize(w http.ResponseWriter, r *http.Request) {
	if err := h.prizes.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		httperr.Write(w, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UploadImage multipart поле image; в ответе url для image_url приза
func (h *Handler) UploadImage(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxImageSize)
	file, header, err := r.FormFile(imageFormField)
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			resp.WriteError(w, http.StatusRequestEntityTooLarge, "image is too large")
			return
		}
		resp.WriteError(w, http.StatusBadRequest, "image file is required")
		return
	}
	defer file.Close()

	url, err := h.prizes.UploadImage(r.Context(), header.Filename, file)
	if err != nil {
		httperr.Write(w, h.log, err)
		return
	}
	h.log.Info("prize image uploaded", zap.String("url", url))
	resp.WriteJSONResponse(w, http.StatusCreated, dto.ImageResponse{URL: url})
}
