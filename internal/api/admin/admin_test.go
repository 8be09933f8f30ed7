package admin

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"run_the_numbers/internal/model"
	"run_the_numbers/internal/repository"
	"run_the_numbers/internal/service"
	prizeService "run_the_numbers/internal/service/prize"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubPrizes struct {
	service.PrizeService
	created   *model.Prize
	updated   *model.Prize
	deleted   string
	active    map[string]bool
	imageName string
	imageBody []byte
}

func (s *stubPrizes) Create(_ context.Context, p *model.Prize) error {
	if p.Name == "" {
		return prizeService.ErrInvalidPrize
	}
	p.ID = "prize-1"
	s.created = p
	return nil
}

func (s *stubPrizes) Update(_ context.Context, p *model.Prize) error {
	s.updated = p
	return nil
}

func (s *stubPrizes) SetActive(_ context.Context, id string, active bool) error {
	if id == "missing" {
		return repository.ErrNotFound
	}
	s.active[id] = active
	return nil
}

func (s *stubPrizes) Delete(_ context.Context, id string) error {
	s.deleted = id
	return nil
}

func (s *stubPrizes) UploadImage(_ context.Context, name string, src io.Reader) (string, error) {
	b, err := io.ReadAll(src)
	if err != nil {
		return "", err
	}
	s.imageName, s.imageBody = name, b
	return "/images/" + name, nil
}

func newRouter() (http.Handler, *stubPrizes) {
	stub := &stubPrizes{active: make(map[string]bool)}
	h := NewHandler(HandlerDeps{Prizes: stub, Log: zap.NewNop()})
	r := chi.NewRouter()
	r.Post("/admin/prizes", h.CreatePrize)
	r.Put("/admin/prizes/{id}", h.UpdatePrize)
	r.Delete("/admin/prizes/{id}", h.DeletePrize)
	r.Patch("/admin/prizes/{id}/status", h.SetPrizeStatus)
	r.Post("/admin/prizes/image", h.UploadImage)
	return r, stub
}

func serve(h http.Handler, r *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, r)
	return rec
}

func TestCreatePrize(t *testing.T) {
	h, stub := newRouter()

	rec := serve(h, httptest.NewRequest(http.MethodPost, "/admin/prizes",
		strings.NewReader(`{"name":"Mug","cost":10,"currency":"units"}`)))
	require.Equal(t, http.StatusCreated, rec.Code)
	require.NotNil(t, stub.created)
	assert.True(t, stub.created.Active)
	assert.Contains(t, rec.Body.String(), `"id":"prize-1"`)

	rec = serve(h, httptest.NewRequest(http.MethodPost, "/admin/prizes", strings.NewReader(`{"cost":10}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateStatusDelete(t *testing.T) {
	h, stub := newRouter()

	rec := serve(h, httptest.NewRequest(http.MethodPut, "/admin/prizes/prize-3",
		strings.NewReader(`{"name":"Hat","cost":3,"currency":"carter_cash","active":false}`)))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "prize-3", stub.updated.ID)
	assert.False(t, stub.updated.Active)

	rec = serve(h, httptest.NewRequest(http.MethodPatch, "/admin/prizes/prize-3/status", strings.NewReader(`{"active":true}`)))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.True(t, stub.active["prize-3"])

	rec = serve(h, httptest.NewRequest(http.MethodPatch, "/admin/prizes/missing/status", strings.NewReader(`{"active":true}`)))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = serve(h, httptest.NewRequest(http.MethodDelete, "/admin/prizes/prize-3", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "prize-3", stub.deleted)
}

func TestUploadImage(t *testing.T) {
	h, stub := newRouter()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile(imageFormField, "mug.png")
	require.NoError(t, err)
	_, _ = part.Write([]byte("png-bytes"))
	require.NoError(t, mw.Close())

	r := httptest.NewRequest(http.MethodPost, "/admin/prizes/image", &body)
	r.Header.Set("Content-Type", mw.FormDataContentType())
	rec := serve(h, r)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.JSONEq(t, `{"url":"/images/mug.png"}`, rec.Body.String())
	assert.Equal(t, "mug.png", stub.imageName)
	assert.Equal(t, []byte("png-bytes"), stub.imageBody)

	rec = serve(h, httptest.NewRequest(http.MethodPost, "/admin/prizes/image", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
