package hub

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/goccy/go-json"
)

const (
	wsClientBuffer       = 256
	wsClientPingPeriod   = 15 * time.Second
	wsClientPingTimeout  = 5 * time.Second
	wsClientWriteTimeout = 5 * time.Second
)

// wsClient is one connected event-feed consumer. The feed is one-directional:
// the daemon pushes events, anything the client sends is drained and ignored.
type wsClient struct {
	id        string
	conn      *websocket.Conn
	tx        chan Event
	closing   chan struct{}
	closeOnce sync.Once
}

func newWSClient(id string, conn *websocket.Conn) *wsClient {
	return &wsClient{
		id:      id,
		conn:    conn,
		tx:      make(chan Event, wsClientBuffer),
		closing: make(chan struct{}),
	}
}

// run serves the connection until the context ends, the client disconnects or
// close is called. Blocks.
func (c *wsClient) run(ctx context.Context) {
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		c.writeLoop(ctx)
	}()
	go func() {
		defer wg.Done()
		c.readLoop(ctx)
	}()

	wg.Wait()
}

func (c *wsClient) close(status websocket.StatusCode, reason string) {
	c.closeOnce.Do(func() {
		close(c.closing)
		c.conn.Close(status, reason)
	})
}

// readLoop drains inbound frames so pongs and close frames get processed.
func (c *wsClient) readLoop(ctx context.Context) {
	defer c.close(websocket.StatusNormalClosure, "shutdown")

	for {
		if _, _, err := c.conn.Read(ctx); err != nil {
			if !isExpectedCloseError(err) {
				slog.Warn("hub client read", "id", c.id, "error", err)
			}
			return
		}
	}
}

func (c *wsClient) writeLoop(ctx context.Context) {
	pingTicker := time.NewTicker(wsClientPingPeriod)
	defer func() {
		pingTicker.Stop()
		c.close(websocket.StatusNormalClosure, "shutdown")
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case <-c.closing:
			return

		case evt := <-c.tx:
			payload, err := json.Marshal(evt)
			if err != nil {
				slog.Error("hub client encode", "id", c.id, "error", err)
				continue
			}

			writeCtx, cancel := context.WithTimeout(ctx, wsClientWriteTimeout)
			err = c.conn.Write(writeCtx, websocket.MessageText, payload)
			cancel()
			if err != nil {
				slog.Debug("hub client write", "id", c.id, "error", err)
				return
			}

		case <-pingTicker.C:
			pingCtx, cancel := context.WithTimeout(ctx, wsClientPingTimeout)
			err := c.conn.Ping(pingCtx)
			cancel()
			if err != nil {
				slog.Debug("hub client ping", "id", c.id, "error", err)
				return
			}
		}
	}
}

// isExpectedCloseError returns true for ordinary connection teardown.
func isExpectedCloseError(err error) bool {
	if websocket.CloseStatus(err) == websocket.StatusNormalClosure ||
		websocket.CloseStatus(err) == websocket.StatusGoingAway {
		return true
	}
	return errors.Is(err, io.EOF) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, net.ErrClosed)
}
