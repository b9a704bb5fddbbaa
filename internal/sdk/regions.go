package sdk

import (
	"context"

	"github.com/imroc/req/v3"
)

const (
	v1Pending      = "/v1/regions/pending"
	v1PendingAll   = "/v1/regions/pending/all"
	v1Protected    = "/v1/regions/protected"
	v1ProtectedAll = "/v1/regions/protected/all"
	v1Scan         = "/v1/regions/scan"
)

// RegionsAPI manages the pending and protected region sets.
type RegionsAPI struct {
	client *req.Client
}

func newRegionsAPI(client *req.Client) *RegionsAPI {
	return &RegionsAPI{client: client}
}

// Pending lists the regions queued for the next sync batch, oldest first.
func (r *RegionsAPI) Pending(ctx context.Context) (*RegionListResponse, error) {
	return r.list(ctx, v1Pending, "list pending")
}

// AddPending queues a region for the next sync batch.
func (r *RegionsAPI) AddPending(ctx context.Context, params *RegionParams) (*RegionResponse, error) {
	return r.post(ctx, v1Pending, params, "add pending")
}

// RemovePending drops a region from the pending set.
func (r *RegionsAPI) RemovePending(ctx context.Context, params *RegionParams) (*RegionResponse, error) {
	return r.delete(ctx, v1Pending, params, "remove pending")
}

// ClearPending empties the pending set.
func (r *RegionsAPI) ClearPending(ctx context.Context) error {
	return r.deleteAll(ctx, v1PendingAll, "clear pending")
}

// Protected lists the regions excluded from syncing.
func (r *RegionsAPI) Protected(ctx context.Context) (*RegionListResponse, error) {
	return r.list(ctx, v1Protected, "list protected")
}

// Protect excludes a region from syncing, dropping it from pending if queued.
func (r *RegionsAPI) Protect(ctx context.Context, params *RegionParams) (*RegionResponse, error) {
	return r.post(ctx, v1Protected, params, "protect")
}

// Deprotect lifts a region's protection.
func (r *RegionsAPI) Deprotect(ctx context.Context, params *RegionParams) (*RegionResponse, error) {
	return r.delete(ctx, v1Protected, params, "deprotect")
}

// DeprotectAll lifts every protection.
func (r *RegionsAPI) DeprotectAll(ctx context.Context) error {
	return r.deleteAll(ctx, v1ProtectedAll, "deprotect all")
}

// Scan lists every region file present in the source world.
func (r *RegionsAPI) Scan(ctx context.Context) (*RegionListResponse, error) {
	return r.list(ctx, v1Scan, "scan")
}

func (r *RegionsAPI) list(ctx context.Context, path, operation string) (*RegionListResponse, error) {
	var result RegionListResponse
	resp, err := r.client.R().
		SetContext(ctx).
		SetSuccessResult(&result).
		SetErrorResult(&APIError{}).
		Get(path)

	if err := handleAPIError(resp, err, operation); err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *RegionsAPI) post(ctx context.Context, path string, params *RegionParams, operation string) (*RegionResponse, error) {
	var result RegionResponse
	resp, err := r.client.R().
		SetContext(ctx).
		SetBody(params).
		SetSuccessResult(&result).
		SetErrorResult(&APIError{}).
		Post(path)

	if err := handleAPIError(resp, err, operation); err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *RegionsAPI) delete(ctx context.Context, path string, params *RegionParams, operation string) (*RegionResponse, error) {
	var result RegionResponse
	resp, err := r.client.R().
		SetContext(ctx).
		SetQueryParams(params.queryMap()).
		SetSuccessResult(&result).
		SetErrorResult(&APIError{}).
		Delete(path)

	if err := handleAPIError(resp, err, operation); err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *RegionsAPI) deleteAll(ctx context.Context, path, operation string) error {
	resp, err := r.client.R().
		SetContext(ctx).
		SetErrorResult(&APIError{}).
		Delete(path)

	return handleAPIError(resp, err, operation)
}
