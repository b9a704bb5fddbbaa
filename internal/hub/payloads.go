package hub

import (
	"github.com/minecart-tools/regionsync/internal/region"
	"github.com/minecart-tools/regionsync/internal/updater"
)

// Payload shapes for each EventType, shared by the daemon (publisher)
// and the SDK (consumer).

type CountdownPayload struct {
	SecondsLeft  int `json:"seconds_left"`
	PendingCount int `json:"pending_count"`
}

type BatchStartedPayload struct {
	Count   int             `json:"count"`
	Regions []region.Region `json:"regions"`
}

type RegionSyncedPayload struct {
	Outcome updater.Outcome `json:"outcome"`
	Done    int             `json:"done"`
	Total   int             `json:"total"`
}

type BatchFinishedPayload struct {
	ID     string `json:"id"`
	OK     int    `json:"ok"`
	Failed int    `json:"failed"`
}

type ServiceStatePayload struct {
	Status   string `json:"status"`
	Pid      int    `json:"pid,omitempty"`
	ExitCode int    `json:"exit_code,omitempty"`
}

type SourceChangedPayload struct {
	Region region.Region `json:"region"`
	Path   string        `json:"path"`
	Op     string        `json:"op"`
}
