// Package hub fans out daemon events (countdowns, batch progress, service
// state) to in-process subscribers and websocket clients.
package hub

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/gin-gonic/gin"

	"github.com/minecart-tools/regionsync/internal/utils"
)

type EventType string

const (
	EventCountdown     EventType = "countdown"
	EventBatchStarted  EventType = "batch_started"
	EventRegionSynced  EventType = "region_synced"
	EventBatchFinished EventType = "batch_finished"
	EventServiceState  EventType = "service_state"
	EventSourceChanged EventType = "source_changed"
)

// Event is one daemon notification. Payload shapes are small JSON objects
// keyed per event type.
type Event struct {
	Type    EventType `json:"type"`
	Time    time.Time `json:"time"`
	Payload any       `json:"payload,omitempty"`
}

func NewEvent(typ EventType, payload any) Event {
	return Event{
		Type:    typ,
		Time:    time.Now().UTC(),
		Payload: payload,
	}
}

const subscriberBuffer = 64

// Hub delivers every published event to all current subscribers. Slow
// consumers are dropped rather than allowed to stall a sync batch.
type Hub struct {
	mu      sync.RWMutex
	subs    map[uint64]chan Event
	clients map[string]*wsClient
	nextID  uint64
	closed  bool
}

func New() *Hub {
	return &Hub{
		subs:    make(map[uint64]chan Event),
		clients: make(map[string]*wsClient),
	}
}

// Subscribe registers an in-process consumer. The returned cancel func must be
// called to release the channel.
func (h *Hub) Subscribe() (<-chan Event, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := h.nextID
	h.nextID++
	ch := make(chan Event, subscriberBuffer)
	h.subs[id] = ch

	cancel := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if _, ok := h.subs[id]; ok {
			delete(h.subs, id)
			close(ch)
		}
	}
	return ch, cancel
}

// Publish fans evt out to every subscriber and websocket client without
// blocking. Events to full buffers are dropped with a warning.
func (h *Hub) Publish(evt Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.closed {
		return
	}

	for id, ch := range h.subs {
		select {
		case ch <- evt:
		default:
			slog.Warn("hub subscriber buffer full", "id", id, "type", evt.Type)
		}
	}

	for id, client := range h.clients {
		select {
		case client.tx <- evt:
		default:
			slog.Warn("hub websocket buffer full", "id", id, "type", evt.Type)
		}
	}
}

// Accept upgrades an HTTP request to a websocket event feed and serves it
// until the client disconnects or the hub shuts down.
func (h *Hub) Accept(c *gin.Context) {
	conn, err := websocket.Accept(c.Writer, c.Request, nil)
	if err != nil {
		c.PureJSON(http.StatusBadRequest, gin.H{
			"error": "websocket accept failed: " + err.Error(),
		})
		return
	}

	client := newWSClient(utils.TokenHex(4), conn)

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		conn.Close(websocket.StatusGoingAway, "shutting down")
		return
	}
	h.clients[client.id] = client
	total := len(h.clients)
	h.mu.Unlock()
	slog.Debug("hub client registered", "id", client.id, "total", total)

	client.run(c.Request.Context())

	h.mu.Lock()
	delete(h.clients, client.id)
	total = len(h.clients)
	h.mu.Unlock()
	slog.Debug("hub client removed", "id", client.id, "total", total)
}

// Shutdown closes all subscriber channels and websocket connections.
func (h *Hub) Shutdown(ctx context.Context) {
	h.mu.Lock()
	h.closed = true
	subs := h.subs
	clients := h.clients
	h.subs = make(map[uint64]chan Event)
	h.clients = make(map[string]*wsClient)
	h.mu.Unlock()

	for _, ch := range subs {
		close(ch)
	}
	for _, client := range clients {
		client.close(websocket.StatusGoingAway, "shutting down")
	}
	slog.Info("hub shutdown")
}
