// Package sdk is the typed client for the regionsync daemon's control plane.
// The CLI subcommands are built on it; nothing here reaches into daemon
// internals beyond the shared region types.
package sdk

import (
	"time"

	"github.com/imroc/req/v3"

	"github.com/minecart-tools/regionsync/internal/version"
)

// Client talks to one regionsync daemon.
type Client struct {
	client  *req.Client
	baseURL string

	Regions *RegionsAPI
	Sync    *SyncAPI
	Events  *EventsAPI
}

func New(baseURL, token string) (*Client, error) {
	if baseURL == "" {
		return nil, ErrNoServerURL
	}

	client := req.C().
		SetBaseURL(baseURL).
		SetTimeout(30 * time.Second).
		SetCommonRetryCount(3).
		SetCommonRetryBackoffInterval(1*time.Second, 5*time.Second).
		SetUserAgent("RegionSync/" + version.Version).
		SetJsonMarshal(jsonMarshal).
		SetJsonUnmarshal(jsonUnmarshal)
	if token != "" {
		client.SetCommonBearerAuthToken(token)
	}

	return &Client{
		client:  client,
		baseURL: baseURL,
		Regions: newRegionsAPI(client),
		Sync:    newSyncAPI(client),
		Events:  newEventsAPI(baseURL, token),
	}, nil
}

// Close terminates the event feed if one is open.
func (c *Client) Close() {
	c.Events.Close()
}
