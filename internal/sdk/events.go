package sdk

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/coder/websocket"
)

const (
	eventsPath           = "/v1/events"
	eventsBufferSize     = 16
	eventsMaxMessageSize = 1024 * 1024
)

// Event is one daemon notification as it arrives off the wire. Payload stays
// raw so callers can decode per event type.
type Event struct {
	Type    string          `json:"type"`
	Time    time.Time       `json:"time"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// EventsAPI is a read-only feed of daemon events over a websocket.
type EventsAPI struct {
	baseURL string
	token   string

	mu     sync.Mutex
	conn   *websocket.Conn
	events chan Event
	ctx    context.Context
	cancel context.CancelFunc
}

func newEventsAPI(baseURL, token string) *EventsAPI {
	return &EventsAPI{
		baseURL: baseURL,
		token:   token,
	}
}

// Connect dials the event feed and returns the event channel. The channel
// closes when the connection drops or Close is called.
func (e *EventsAPI) Connect(ctx context.Context) (<-chan Event, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.conn != nil {
		return e.events, nil
	}

	wsURL, err := e.fullURL()
	if err != nil {
		return nil, fmt.Errorf("sdk: events: %w", err)
	}

	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	if err != nil {
		return nil, fmt.Errorf("sdk: events: connect %s: %w", wsURL, err)
	}
	conn.SetReadLimit(eventsMaxMessageSize)

	e.conn = conn
	e.events = make(chan Event, eventsBufferSize)
	e.ctx, e.cancel = context.WithCancel(context.Background())

	go e.readLoop(e.ctx, conn, e.events)

	return e.events, nil
}

// Close terminates the feed. Safe to call when never connected.
func (e *EventsAPI) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.conn == nil {
		return
	}
	e.cancel()
	e.conn.Close(websocket.StatusNormalClosure, "closing")
	e.conn = nil
}

func (e *EventsAPI) readLoop(ctx context.Context, conn *websocket.Conn, events chan Event) {
	defer close(events)

	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			if ctx.Err() == nil {
				slog.Debug("event feed closed", "error", err)
			}
			return
		}

		var evt Event
		if err := jsonUnmarshal(data, &evt); err != nil {
			slog.Warn("event feed decode", "error", err)
			continue
		}

		select {
		case events <- evt:
		default:
			slog.Debug("event feed buffer full, dropping", "type", evt.Type)
		}
	}
}

func (e *EventsAPI) fullURL() (string, error) {
	full, err := url.JoinPath(e.baseURL, eventsPath)
	if err != nil {
		return "", fmt.Errorf("join path: %w", err)
	}
	if e.token != "" {
		full += "?token=" + url.QueryEscape(e.token)
	}
	return toWebsocketURL(full), nil
}

// toWebsocketURL converts an HTTP URL to a WebSocket URL.
func toWebsocketURL(u string) string {
	switch {
	case strings.HasPrefix(u, "https://"):
		return "wss://" + u[8:]
	case strings.HasPrefix(u, "http://"):
		return "ws://" + u[7:]
	}
	return u
}
