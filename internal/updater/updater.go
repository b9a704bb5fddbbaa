package updater

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"github.com/minecart-tools/regionsync/internal/auditlog"
	"github.com/minecart-tools/regionsync/internal/config"
	"github.com/minecart-tools/regionsync/internal/region"
	"github.com/minecart-tools/regionsync/internal/tracker"
	"github.com/minecart-tools/regionsync/internal/utils"
	"github.com/minecart-tools/regionsync/internal/worldtree"
)

var (
	ErrDisabled     = errors.New("region sync is disabled in the config")
	ErrBatchRunning = errors.New("update batch already running")
	ErrStopFailed   = errors.New("batch aborted: service did not stop")
	ErrStartFailed  = errors.New("batch aborted: service did not restart")
)

// Lifecycle is the service control surface an update batch brackets.
// Stop blocks until the service is fully down, Start until it is up.
type Lifecycle interface {
	Stop(ctx context.Context) error
	Start(ctx context.Context) error
}

// Notifier observes batch progress. Callbacks run on the batch
// goroutine, so implementations should hand off quickly.
type Notifier interface {
	Countdown(secondsLeft int, pendingCount int)
	BatchStarted(regions []region.Region)
	RegionSynced(outcome Outcome, done int, total int)
	BatchFinished(batch *BatchRecord)
}

// NopNotifier discards all callbacks.
type NopNotifier struct{}

func (NopNotifier) Countdown(int, int)             {}
func (NopNotifier) BatchStarted([]region.Region)   {}
func (NopNotifier) RegionSynced(Outcome, int, int) {}
func (NopNotifier) BatchFinished(*BatchRecord)     {}

// Engine runs synchronization batches. A batch announces itself through
// the notifier, counts down, stops the served process, replaces the
// pending region files under the destination tree with the source tree's
// copies, then restarts the process and finalizes the ledgers. At most
// one batch is in flight at a time.
type Engine struct {
	config   func() *config.Config
	tracker  *tracker.Tracker
	service  Lifecycle
	audit    *auditlog.Sink
	journal  *Journal
	history  *History
	notifier Notifier
	sleep    func(ctx context.Context, d time.Duration) error
	muBatch  sync.Mutex
}

func NewEngine(
	cfg func() *config.Config,
	trk *tracker.Tracker,
	service Lifecycle,
	audit *auditlog.Sink,
	journal *Journal,
) *Engine {
	return &Engine{
		config:   cfg,
		tracker:  trk,
		service:  service,
		audit:    audit,
		journal:  journal,
		history:  NewHistory(),
		notifier: NopNotifier{},
		sleep:    sleepCtx,
	}
}

// SetNotifier replaces the progress notifier. Not safe to call while a
// batch is running.
func (e *Engine) SetNotifier(n Notifier) {
	if n == nil {
		n = NopNotifier{}
	}
	e.notifier = n
}

// History returns the last-batch ledger.
func (e *Engine) History() *History {
	return e.history
}

// Running reports whether a batch is currently in flight.
func (e *Engine) Running() bool {
	if e.muBatch.TryLock() {
		e.muBatch.Unlock()
		return false
	}
	return true
}

// Run executes one batch and blocks until it completes. It fails fast
// with ErrBatchRunning if another batch holds the engine and with
// ErrDisabled if the config has the feature switched off. The context
// cancels the batch only up to the point the service stop is issued.
func (e *Engine) Run(ctx context.Context, requester string) (*BatchRecord, error) {
	if !e.muBatch.TryLock() {
		return nil, ErrBatchRunning
	}
	defer e.muBatch.Unlock()
	return e.runLocked(ctx, requester)
}

// RunAsync starts a batch on its own goroutine. Fail-fast conditions
// (ErrBatchRunning, ErrDisabled) are returned synchronously; everything
// after that is reported through the notifier and the ledgers.
func (e *Engine) RunAsync(requester string) error {
	if !e.muBatch.TryLock() {
		return ErrBatchRunning
	}
	if !e.config().Enabled {
		e.muBatch.Unlock()
		return ErrDisabled
	}
	go func() {
		defer e.muBatch.Unlock()
		if _, err := e.runLocked(context.Background(), requester); err != nil {
			slog.Error("update batch failed", "requester", requester, "error", err)
		}
	}()
	return nil
}

func (e *Engine) runLocked(ctx context.Context, requester string) (*BatchRecord, error) {
	cfg := e.config().Snapshot()
	if !cfg.Enabled {
		return nil, ErrDisabled
	}

	src, err := worldtree.New(cfg.SourceWorldDir)
	if err != nil {
		return nil, fmt.Errorf("source tree: %w", err)
	}
	dst, err := worldtree.New(cfg.DestWorldDir)
	if err != nil {
		return nil, fmt.Errorf("destination tree: %w", err)
	}

	pending := e.tracker.Pending()
	batch := &BatchRecord{
		ID:        uuid.NewString(),
		Requester: requester,
		StartedAt: time.Now(),
	}

	slog.Info("update batch starting",
		"id", batch.ID,
		"requester", requester,
		"regions", len(pending),
		"countdown", cfg.Countdown(),
	)
	e.notifier.BatchStarted(pending)

	// The countdown is the last point where the batch can be abandoned.
	for i := cfg.CountdownSecs; i > 0; i-- {
		e.notifier.Countdown(i, len(pending))
		if err := e.sleep(ctx, time.Second); err != nil {
			return nil, fmt.Errorf("update batch canceled: %w", err)
		}
	}

	// From here the service goes down, so the batch must run to
	// completion no matter what happens to the caller.
	ctx = context.WithoutCancel(ctx)

	if err := e.service.Stop(ctx); err != nil {
		e.audit.Appendf("update aborted: service did not stop (%v)", err)
		return nil, fmt.Errorf("%w: %w", ErrStopFailed, err)
	}

	e.history.Reset()
	e.audit.Appendf("%s synced %d region files:", requester, len(pending))
	batch.Outcomes = e.transfer(cfg, src, dst, pending)

	e.tracker.ClearPending()
	_ = e.sleep(ctx, cfg.Settle())

	startErr := e.service.Start(ctx)

	batch.FinishedAt = time.Now()
	e.finalize(batch)

	if startErr != nil {
		e.audit.Appendf("update aborted: service did not restart (%v)", startErr)
		return batch, fmt.Errorf("%w: %w", ErrStartFailed, startErr)
	}

	okCount, failCount := batch.Counts()
	slog.Info("update batch finished",
		"id", batch.ID,
		"ok", okCount,
		"failed", failCount,
		"took", time.Since(batch.StartedAt),
	)
	return batch, nil
}

func (e *Engine) transfer(cfg *config.Config, src, dst *worldtree.Tree, pending []region.Region) []Outcome {
	outcomes := make([]Outcome, 0, len(pending))
	for i, r := range pending {
		outcome := e.syncRegion(cfg.DimensionFolders, src, dst, r)
		if outcome.OK {
			e.audit.Appendf("  %s: ok", r)
		} else {
			e.audit.Appendf("  %s: failed (%s)", r, outcome.Detail)
		}
		outcomes = append(outcomes, outcome)
		e.history.Append(outcome)
		e.notifier.RegionSynced(outcome, i+1, len(pending))
	}
	return outcomes
}

// syncRegion processes every file a region expands to, in mapping order.
// The first file error fails the whole region and skips its remaining
// files; the caller moves on to the next region regardless.
func (e *Engine) syncRegion(folders region.FolderMap, src, dst *worldtree.Tree, r region.Region) Outcome {
	paths, err := folders.PathsFor(r)
	if err != nil {
		return Outcome{Region: r, Detail: err.Error()}
	}
	for _, rel := range paths {
		if err := e.syncFile(src, dst, rel); err != nil {
			slog.Error("region file sync failed", "region", r.String(), "path", rel, "error", err)
			return Outcome{Region: r, Detail: err.Error()}
		}
	}
	return Outcome{Region: r, OK: true}
}

func (e *Engine) syncFile(src, dst *worldtree.Tree, rel string) error {
	srcPath := src.Abs(rel)
	dstPath := dst.Abs(rel)

	switch {
	case !src.Exists(rel) && dst.Exists(rel):
		// gone upstream, remove it downstream too
		if err := os.Remove(dstPath); err != nil {
			return fmt.Errorf("delete %s: %w", dstPath, err)
		}
		e.audit.Appendf("- *deleted* %q", dstPath)
	case !src.Exists(rel):
		slog.Warn("region file missing on both sides", "path", rel)
		e.audit.Appendf("- *missing* %q (skipped)", srcPath)
	default:
		n, err := utils.CopyFile(srcPath, dstPath)
		if err != nil {
			return fmt.Errorf("copy %s: %w", srcPath, err)
		}
		e.audit.Appendf("- %q -> %q (%s)", srcPath, dstPath, humanize.IBytes(uint64(n)))
	}
	return nil
}

// finalize replaces the history ledger and writes the journal row. The
// journal write is best-effort and never fails the batch.
func (e *Engine) finalize(batch *BatchRecord) {
	e.history.Record(batch.Outcomes)
	if e.journal != nil {
		if err := e.journal.RecordBatch(batch); err != nil {
			slog.Error("batch journal write failed", "id", batch.ID, "error", err)
		}
	}
	okCount, failCount := batch.Counts()
	e.audit.Appendf("update finished: %d synced, %d failed", okCount, failCount)
	e.notifier.BatchFinished(batch)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
