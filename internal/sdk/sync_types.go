package sdk

import (
	"time"

	"github.com/minecart-tools/regionsync/internal/region"
)

// StatusResponse mirrors the daemon's /v1/status payload.
type StatusResponse struct {
	Status       string       `json:"status"`
	Timestamp    string       `json:"ts"`
	Version      string       `json:"version"`
	Revision     string       `json:"revision"`
	BuildDate    string       `json:"buildDate"`
	Uptime       string       `json:"uptime"`
	Enabled      bool         `json:"enabled"`
	BatchRunning bool         `json:"batch_running"`
	Pending      int          `json:"pending"`
	Protected    int          `json:"protected"`
	SourceWorld  string       `json:"source_world"`
	DestWorld    string       `json:"destination_world"`
	Service      *ServiceInfo `json:"service"`
}

type ServiceInfo struct {
	Status string `json:"status"`
	Pid    int    `json:"pid,omitempty"`
}

type UpdateParams struct {
	Requester string `json:"requester,omitempty"`
}

// Outcome is one region's result within a sync batch.
type Outcome struct {
	Region region.Region `json:"region"`
	OK     bool          `json:"ok"`
	Detail string        `json:"detail,omitempty"`
}

// BatchRecord is one journaled sync batch.
type BatchRecord struct {
	ID         string    `json:"id"`
	Requester  string    `json:"requester"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Outcomes   []Outcome `json:"outcomes"`
}

// HistoryResponse carries the outcomes of the most recent batch.
type HistoryResponse struct {
	Count    int       `json:"count"`
	Outcomes []Outcome `json:"outcomes"`
}

// BatchHistoryResponse carries journaled batches, newest first.
type BatchHistoryResponse struct {
	Count   int            `json:"count"`
	Batches []*BatchRecord `json:"batches"`
}
