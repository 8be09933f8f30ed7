package ws

import (
	"context"
	"net/http"
	dto "run_the_numbers/internal/api/dto/table"
	"run_the_numbers/internal/middleware"
	"run_the_numbers/internal/model"
	"run_the_numbers/internal/service"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	EventCard    = "card"
	EventSettled = "settled"
	EventState   = "state"
	EventError   = "error"
	EventPong    = "pong"

	writeWait = 5 * time.Second
)

type Recorder interface {
	ClientConnected()
	ClientDisconnected()
}

// Hub соединения websocket игроков. Каждое соединение подписано на свой стол
// и получает карты по мере раздачи.
type Hub struct {
	upgrader websocket.Upgrader
	table    service.TableService
	metrics  Recorder
	log      *zap.Logger

	mu      sync.RWMutex
	clients map[*client]struct{}
}

func NewHub(table service.TableService, metrics Recorder, log *zap.Logger, allowOrigin func(r *http.Request) bool) *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{CheckOrigin: allowOrigin},
		table:    table,
		metrics:  metrics,
		log:      log.Named("ws"),
		clients:  make(map[*client]struct{}),
	}
}

// client реализует game.Observer; запись сериализуется, так как события
// раздачи и ответы на сообщения клиента идут из разных горутин
type client struct {
	conn *websocket.Conn
	hub  *Hub
	id   model.Identity
	ctx  context.Context
	wmu  sync.Mutex
}

func (c *client) send(ev dto.Event) {
	c.wmu.Lock()
	defer c.wmu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := c.conn.WriteJSON(ev); err != nil {
		c.hub.log.Debug("ws write failed", zap.String("user_id", c.id.UserID), zap.Error(err))
	}
}

func (c *client) sendState() {
	view, err := c.hub.table.State(c.ctx, c.id)
	if err != nil {
		c.send(dto.Event{Type: EventError, Data: err.Error()})
		return
	}
	c.send(dto.Event{Type: EventState, Data: view})
}

func (c *client) CardDrawn(ev model.DrawEvent) {
	c.send(dto.Event{Type: EventCard, Data: ev})
}

func (c *client) HandSettled(res model.HandResult) {
	c.send(dto.Event{Type: EventSettled, Data: res})
	c.sendState()
}

// HandleWS жизненный цикл соединения: подписка на стол, state при подключении,
// ответы на state и ping
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	id, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		http.Error(w, "no identity", http.StatusUnauthorized)
		return
	}
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	c := &client{conn: conn, hub: h, id: id, ctx: r.Context()}
	h.register(c)
	defer h.unregister(c)

	unsubscribe, err := h.table.Subscribe(r.Context(), id, c)
	if err != nil {
		c.send(dto.Event{Type: EventError, Data: err.Error()})
		return
	}
	defer unsubscribe()

	c.sendState()
	for {
		var msg dto.ClientMessage
		if err := conn.ReadJSON(&msg); err != nil {
			break
		}
		switch msg.Type {
		case EventState:
			c.sendState()
		case "ping":
			c.send(dto.Event{Type: EventPong})
		}
	}
}

func (h *Hub) register(c *client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
	h.metrics.ClientConnected()
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	_, ok := h.clients[c]
	delete(h.clients, c)
	h.mu.Unlock()
	if ok {
		h.metrics.ClientDisconnected()
	}
}

// Clients количество открытых соединений
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close закрывает все соединения; http.Server.Shutdown их не ждёт
func (h *Hub) Close() {
	h.mu.RLock()
	clients := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutdown")
	for _, c := range clients {
		c.wmu.Lock()
		_ = c.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
		c.wmu.Unlock()
		_ = c.conn.Close()
	}
}
