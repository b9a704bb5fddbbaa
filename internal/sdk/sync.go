package sdk

import (
	"context"
	"strconv"

	"github.com/imroc/req/v3"
)

const (
	v1Status       = "/v1/status"
	v1History      = "/v1/history"
	v1Update       = "/v1/update"
	v1ConfigReload = "/v1/config/reload"
)

// SyncAPI covers daemon status, batch triggering and batch history.
type SyncAPI struct {
	client *req.Client
}

func newSyncAPI(client *req.Client) *SyncAPI {
	return &SyncAPI{client: client}
}

// Status reports the daemon's current state.
func (s *SyncAPI) Status(ctx context.Context) (*StatusResponse, error) {
	var result StatusResponse
	resp, err := s.client.R().
		SetContext(ctx).
		SetSuccessResult(&result).
		SetErrorResult(&APIError{}).
		Get(v1Status)

	if err := handleAPIError(resp, err, "status"); err != nil {
		return nil, err
	}
	return &result, nil
}

// Update asks the daemon to run a sync batch. The call returns once the batch
// is accepted; progress arrives over the event feed.
func (s *SyncAPI) Update(ctx context.Context, requester string) error {
	resp, err := s.client.R().
		SetContext(ctx).
		SetBody(&UpdateParams{Requester: requester}).
		SetErrorResult(&APIError{}).
		Post(v1Update)

	return handleAPIError(resp, err, "update")
}

// History returns the last batch's per-region outcomes.
func (s *SyncAPI) History(ctx context.Context) (*HistoryResponse, error) {
	var result HistoryResponse
	resp, err := s.client.R().
		SetContext(ctx).
		SetSuccessResult(&result).
		SetErrorResult(&APIError{}).
		Get(v1History)

	if err := handleAPIError(resp, err, "history"); err != nil {
		return nil, err
	}
	return &result, nil
}

// Batches returns up to limit journaled batches, newest first.
func (s *SyncAPI) Batches(ctx context.Context, limit int) (*BatchHistoryResponse, error) {
	var result BatchHistoryResponse
	resp, err := s.client.R().
		SetContext(ctx).
		SetQueryParam("all", "true").
		SetQueryParam("limit", strconv.Itoa(limit)).
		SetSuccessResult(&result).
		SetErrorResult(&APIError{}).
		Get(v1History)

	if err := handleAPIError(resp, err, "batch history"); err != nil {
		return nil, err
	}
	return &result, nil
}

// ReloadConfig asks the daemon to re-read its config file.
func (s *SyncAPI) ReloadConfig(ctx context.Context) error {
	resp, err := s.client.R().
		SetContext(ctx).
		SetErrorResult(&APIError{}).
		Post(v1ConfigReload)

	return handleAPIError(resp, err, "config reload")
}
