package updater

import (
	"sync"
	"time"

	"github.com/minecart-tools/regionsync/internal/region"
)

// Outcome is the per-region result of a synchronization batch. A region
// is judged as a whole: the first file error fails it and Detail carries
// the reason.
type Outcome struct {
	Region region.Region `json:"region"`
	OK     bool          `json:"ok"`
	Detail string        `json:"detail,omitempty"`
}

// BatchRecord describes one completed synchronization batch.
type BatchRecord struct {
	ID         string    `json:"id"`
	Requester  string    `json:"requester"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Outcomes   []Outcome `json:"outcomes"`
}

// Counts returns how many regions synced and how many failed.
func (b *BatchRecord) Counts() (ok int, failed int) {
	for _, o := range b.Outcomes {
		if o.OK {
			ok++
		} else {
			failed++
		}
	}
	return ok, failed
}

// History holds the outcomes of the most recent batch. Each batch
// replaces the ledger wholesale, so it never grows across batches.
type History struct {
	mu       sync.RWMutex
	outcomes []Outcome
}

func NewHistory() *History {
	return &History{}
}

// Record replaces the ledger with the given outcomes.
func (h *History) Record(outcomes []Outcome) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.outcomes = make([]Outcome, len(outcomes))
	copy(h.outcomes, outcomes)
}

// Reset empties the ledger. Called when a new batch begins so that a
// history query during the batch reports that batch, not the last one.
func (h *History) Reset() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.outcomes = nil
}

// Append adds one outcome to the in-progress ledger.
func (h *History) Append(o Outcome) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.outcomes = append(h.outcomes, o)
}

// List returns a copy of the ledger in batch order.
func (h *History) List() []Outcome {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]Outcome, len(h.outcomes))
	copy(out, h.outcomes)
	return out
}
