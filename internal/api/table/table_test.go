package table

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	dto "run_the_numbers/internal/api/dto/table"
	"run_the_numbers/internal/game"
	"run_the_numbers/internal/middleware"
	"run_the_numbers/internal/model"
	"run_the_numbers/internal/service"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubTable struct {
	service.TableService
	placeErr error
	dealErr  error
	gotKey   string
	gotWait  bool
	gotID    model.Identity
}

func (s *stubTable) view(id model.Identity) model.TableView {
	return model.TableView{UserID: id.UserID, Guest: id.Guest, Status: "Place your bets."}
}

func (s *stubTable) State(_ context.Context, id model.Identity) (model.TableView, error) {
	s.gotID = id
	return s.view(id), nil
}

func (s *stubTable) PlaceBet(_ context.Context, id model.Identity, key string, _ int) (model.TableView, error) {
	s.gotKey = key
	return s.view(id), s.placeErr
}

func (s *stubTable) Deal(_ context.Context, id model.Identity, wait bool) (*model.HandResult, model.TableView, error) {
	s.gotWait = wait
	if s.dealErr != nil {
		return nil, s.view(id), s.dealErr
	}
	if !wait {
		return nil, s.view(id), nil
	}
	return &model.HandResult{ID: uuid.New(), UserID: id.UserID, Paid: 30}, s.view(id), nil
}

var player = model.Identity{UserID: "user-1"}

func do(t *testing.T, fn http.HandlerFunc, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	r := httptest.NewRequest(method, target, strings.NewReader(body))
	r = r.WithContext(middleware.WithIdentity(r.Context(), player))
	rec := httptest.NewRecorder()
	fn(rec, r)
	return rec
}

func newHandler() (*Handler, *stubTable) {
	stub := &stubTable{}
	return NewHandler(HandlerDeps{Serv: stub, Log: zap.NewNop()}), stub
}

func TestState(t *testing.T) {
	h, stub := newHandler()
	rec := do(t, h.State, http.MethodGet, "/table", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var view model.TableView
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&view))
	assert.Equal(t, "user-1", view.UserID)
	assert.Equal(t, player, stub.gotID)
}

func TestPlaceBet(t *testing.T) {
	h, stub := newHandler()
	rec := do(t, h.PlaceBet, http.MethodPost, "/table/bets", `{"key":"A","amount":10}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "A", stub.gotKey)

	rec = do(t, h.PlaceBet, http.MethodPost, "/table/bets", `{"key":"A","amount":"ten"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPlaceBetRejected(t *testing.T) {
	h, stub := newHandler()
	stub.placeErr = fmt.Errorf("%w: Ace is locked while the hand is in play.", game.ErrSpotLocked)

	rec := do(t, h.PlaceBet, http.MethodPost, "/table/bets", `{"key":"A","amount":10}`)
	require.Equal(t, http.StatusConflict, rec.Code)

	var got dto.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.Contains(t, got.Error, "Ace is locked")
	assert.Equal(t, "user-1", got.Table.UserID)
}

func TestDeal(t *testing.T) {
	h, stub := newHandler()

	rec := do(t, h.Deal, http.MethodPost, "/table/deal", "")
	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.False(t, stub.gotWait)

	rec = do(t, h.Deal, http.MethodPost, "/table/deal?wait=true", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, stub.gotWait)
	var got dto.DealResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	require.NotNil(t, got.Hand)
	assert.Equal(t, 30, got.Hand.Paid)
}

func TestDealErrors(t *testing.T) {
	h, stub := newHandler()

	stub.dealErr = game.ErrNoBets
	rec := do(t, h.Deal, http.MethodPost, "/table/deal", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	stub.dealErr = fmt.Errorf("%w: 53 cards drawn", game.ErrDeckExhausted)
	rec = do(t, h.Deal, http.MethodPost, "/table/deal?wait=true", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	var got dto.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.Contains(t, got.Error, "deck exhausted")
}
