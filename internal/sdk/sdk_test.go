package sdk

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minecart-tools/regionsync/internal/region"
)

func TestNew_RequiresBaseURL(t *testing.T) {
	_, err := New("", "")
	require.ErrorIs(t, err, ErrNoServerURL)
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := New(srv.URL, "sekrit")
	require.NoError(t, err)
	t.Cleanup(client.Close)
	return client
}

func TestSync_Status(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/status", r.URL.Path)
		assert.Equal(t, "Bearer sekrit", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status": "ok", "pending": 3, "batch_running": true, "service": {"status": "running", "pid": 42}}`))
	})

	status, err := client.Sync.Status(t.Context())
	require.NoError(t, err)

	assert.Equal(t, "ok", status.Status)
	assert.Equal(t, 3, status.Pending)
	assert.True(t, status.BatchRunning)
	require.NotNil(t, status.Service)
	assert.Equal(t, 42, status.Service.Pid)
}

func TestRegions_AddPendingSendsBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/regions/pending", r.URL.Path)

		var params RegionParams
		require.NoError(t, json.NewDecoder(r.Body).Decode(&params))
		require.NotNil(t, params.X)
		assert.Equal(t, 3, *params.X)
		assert.Equal(t, -4, *params.Z)
		assert.Equal(t, 1, *params.Dim)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"code": "OK", "region": {"x": 3, "z": -4, "dim": 1}}`))
	})

	resp, err := client.Regions.AddPending(t.Context(), Coords(3, -4, 1))
	require.NoError(t, err)

	assert.Equal(t, region.New(3, -4, 1), resp.Region)
}

func TestRegions_RemovePendingSendsQuery(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "5", r.URL.Query().Get("x"))
		assert.Equal(t, "6", r.URL.Query().Get("z"))
		assert.Equal(t, "0", r.URL.Query().Get("dim"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"code": "OK", "region": {"x": 5, "z": 6, "dim": 0}}`))
	})

	_, err := client.Regions.RemovePending(t.Context(), Coords(5, 6, 0))
	require.NoError(t, err)
}

func TestRegions_PlayerParams(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var params RegionParams
		require.NoError(t, json.NewDecoder(r.Body).Decode(&params))
		assert.Nil(t, params.X)
		assert.Equal(t, "Steve", params.Player)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"code": "OK", "region": {"x": 0, "z": 0, "dim": 0}}`))
	})

	_, err := client.Regions.AddPending(t.Context(), Player("Steve"))
	require.NoError(t, err)
}

func TestErrorEnvelopeDecodes(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusConflict)
		w.Write([]byte(`{"code": "ERR_ALREADY_PENDING", "error": "region already queued"}`))
	})

	_, err := client.Regions.AddPending(t.Context(), Coords(1, 1, 0))
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "ERR_ALREADY_PENDING", apiErr.Code)
	assert.Contains(t, apiErr.Message, "already queued")
}

func TestSync_BatchesQueryParams(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "true", r.URL.Query().Get("all"))
		assert.Equal(t, "5", r.URL.Query().Get("limit"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"count": 1, "batches": [{"id": "b1", "requester": "api", "outcomes": [{"region": {"x": 1, "z": 2, "dim": 0}, "ok": true}]}]}`))
	})

	resp, err := client.Sync.Batches(t.Context(), 5)
	require.NoError(t, err)

	require.Len(t, resp.Batches, 1)
	assert.Equal(t, "b1", resp.Batches[0].ID)
	require.Len(t, resp.Batches[0].Outcomes, 1)
	assert.True(t, resp.Batches[0].Outcomes[0].OK)
}

func TestEvents_ReceivesAndCloses(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "sekrit", r.URL.Query().Get("token"))

		conn, err := websocket.Accept(w, r, nil)
		require.NoError(t, err)
		defer conn.Close(websocket.StatusNormalClosure, "done")

		for _, raw := range []string{
			`{"type": "countdown", "payload": {"seconds_left": 3}}`,
			`{"type": "batch_finished", "payload": {"ok": 2, "failed": 0}}`,
		} {
			require.NoError(t, conn.Write(r.Context(), websocket.MessageText, []byte(raw)))
		}
		// linger so the client reads both before the close frame
		time.Sleep(100 * time.Millisecond)
	}))
	t.Cleanup(srv.Close)

	client, err := New(srv.URL, "sekrit")
	require.NoError(t, err)

	events, err := client.Events.Connect(t.Context())
	require.NoError(t, err)

	evt := <-events
	assert.Equal(t, "countdown", evt.Type)
	assert.Contains(t, string(evt.Payload), "seconds_left")

	evt = <-events
	assert.Equal(t, "batch_finished", evt.Type)

	client.Close()
	_, open := <-events
	assert.False(t, open, "channel closes after Close")
}

func TestToWebsocketURL(t *testing.T) {
	assert.Equal(t, "ws://localhost:7335/v1/events", toWebsocketURL("http://localhost:7335/v1/events"))
	assert.Equal(t, "wss://example.com/v1/events", toWebsocketURL("https://example.com/v1/events"))
	assert.Equal(t, "ws://already", toWebsocketURL("ws://already"))
}
