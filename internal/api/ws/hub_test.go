package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"run_the_numbers/internal/game"
	"run_the_numbers/internal/middleware"
	"run_the_numbers/internal/model"
	"run_the_numbers/internal/service"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubTable struct {
	service.TableService
	mu           sync.Mutex
	observer     game.Observer
	unsubscribed atomic.Bool
	subscribed   chan struct{}
}

func (s *stubTable) State(_ context.Context, id model.Identity) (model.TableView, error) {
	return model.TableView{UserID: id.UserID, Status: "Place your bets."}, nil
}

func (s *stubTable) Subscribe(_ context.Context, _ model.Identity, o game.Observer) (func(), error) {
	s.mu.Lock()
	s.observer = o
	s.mu.Unlock()
	close(s.subscribed)
	return func() { s.unsubscribed.Store(true) }, nil
}

func (s *stubTable) obs() game.Observer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.observer
}

type counter struct{ n atomic.Int32 }

func (c *counter) ClientConnected()    { c.n.Add(1) }
func (c *counter) ClientDisconnected() { c.n.Add(-1) }

type event struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

func setup(t *testing.T) (*websocket.Conn, *stubTable, *counter, *Hub) {
	t.Helper()
	table := &stubTable{subscribed: make(chan struct{})}
	metrics := &counter{}
	hub := NewHub(table, metrics, zap.NewNop(), func(*http.Request) bool { return true })

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := middleware.WithIdentity(r.Context(), model.Identity{UserID: "user-1"})
		hub.HandleWS(w, r.WithContext(ctx))
	}))
	t.Cleanup(srv.Close)

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	select {
	case <-table.subscribed:
	case <-time.After(2 * time.Second):
		t.Fatal("client never subscribed")
	}
	return conn, table, metrics, hub
}

func read(t *testing.T, conn *websocket.Conn) event {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var ev event
	require.NoError(t, conn.ReadJSON(&ev))
	return ev
}

func TestHubSendsStateOnConnect(t *testing.T) {
	conn, _, metrics, hub := setup(t)

	ev := read(t, conn)
	assert.Equal(t, EventState, ev.Type)
	var view model.TableView
	require.NoError(t, json.Unmarshal(ev.Data, &view))
	assert.Equal(t, "user-1", view.UserID)

	assert.Equal(t, int32(1), metrics.n.Load())
	assert.Equal(t, 1, hub.Clients())
}

func TestHubStreamsHandEvents(t *testing.T) {
	conn, table, _, _ := setup(t)
	require.Equal(t, EventState, read(t, conn).Type)

	handID := uuid.New()
	table.obs().CardDrawn(model.DrawEvent{HandID: handID, Index: 1, Card: model.NewCard(model.Rank7, model.SuitSpades)})
	ev := read(t, conn)
	assert.Equal(t, EventCard, ev.Type)
	var draw model.DrawEvent
	require.NoError(t, json.Unmarshal(ev.Data, &draw))
	assert.Equal(t, handID, draw.HandID)

	table.obs().HandSettled(model.HandResult{ID: handID, Paid: 40})
	assert.Equal(t, EventSettled, read(t, conn).Type)
	assert.Equal(t, EventState, read(t, conn).Type)
}

func TestHubAnswersClientMessages(t *testing.T) {
	conn, _, _, _ := setup(t)
	require.Equal(t, EventState, read(t, conn).Type)

	require.NoError(t, conn.WriteJSON(map[string]string{"type": "ping"}))
	assert.Equal(t, EventPong, read(t, conn).Type)

	require.NoError(t, conn.WriteJSON(map[string]string{"type": "state"}))
	assert.Equal(t, EventState, read(t, conn).Type)
}

func TestHubCleansUpOnDisconnect(t *testing.T) {
	conn, table, metrics, hub := setup(t)
	require.Equal(t, EventState, read(t, conn).Type)

	require.NoError(t, conn.Close())
	assert.Eventually(t, func() bool {
		return table.unsubscribed.Load() && metrics.n.Load() == 0 && hub.Clients() == 0
	}, 2*time.Second, 10*time.Millisecond)
}
