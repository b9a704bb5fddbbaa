package updater

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minecart-tools/regionsync/internal/auditlog"
	"github.com/minecart-tools/regionsync/internal/config"
	"github.com/minecart-tools/regionsync/internal/region"
	"github.com/minecart-tools/regionsync/internal/tracker"
)

type fakeService struct {
	mu       sync.Mutex
	calls    []string
	stopErr  error
	startErr error
	stopGate chan struct{}
}

func (f *fakeService) Stop(ctx context.Context) error {
	f.mu.Lock()
	f.calls = append(f.calls, "stop")
	f.mu.Unlock()
	if f.stopGate != nil {
		<-f.stopGate
	}
	return f.stopErr
}

func (f *fakeService) Start(ctx context.Context) error {
	f.mu.Lock()
	f.calls = append(f.calls, "start")
	f.mu.Unlock()
	return f.startErr
}

func (f *fakeService) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

type recordingNotifier struct {
	mu         sync.Mutex
	countdowns []int
	started    int
	synced     []Outcome
	finished   []*BatchRecord
}

func (n *recordingNotifier) Countdown(left, pending int) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.countdowns = append(n.countdowns, left)
}

func (n *recordingNotifier) BatchStarted(regions []region.Region) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.started++
}

func (n *recordingNotifier) RegionSynced(o Outcome, done, total int) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.synced = append(n.synced, o)
}

func (n *recordingNotifier) BatchFinished(b *BatchRecord) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.finished = append(n.finished, b)
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	root := t.TempDir()
	cfg := config.Default()
	cfg.SourceWorldDir = filepath.Join(root, "source")
	cfg.DestWorldDir = filepath.Join(root, "dest")
	cfg.LogsDir = filepath.Join(root, "logs")
	cfg.CountdownSecs = 0
	cfg.SettleSecs = 0
	return cfg
}

func newTestEngine(t *testing.T, cfg *config.Config, svc Lifecycle) (*Engine, *tracker.Tracker) {
	t.Helper()
	trk, err := tracker.New(tracker.NewStore(filepath.Join(t.TempDir(), "protected.json")))
	require.NoError(t, err)
	audit := auditlog.NewSink(cfg.AuditLogPath())
	eng := NewEngine(func() *config.Config { return cfg }, trk, svc, audit, nil)
	eng.sleep = func(ctx context.Context, d time.Duration) error { return ctx.Err() }
	return eng, trk
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

// Covers the three per-region branches in one batch: a source-side
// removal, a plain copy, and an I/O failure.
func TestEngine_BatchOutcomeMatrix(t *testing.T) {
	cfg := testConfig(t)
	svc := &fakeService{}
	eng, trk := newTestEngine(t, cfg, svc)

	regionA := region.New(1, 1, 0)
	regionB := region.New(2, 2, 0)
	regionC := region.New(3, 3, 1)

	// A: gone upstream, present downstream
	writeFile(t, filepath.Join(cfg.DestWorldDir, "region", "r.1.1.mca"), "stale")
	// B: fresh copy upstream
	writeFile(t, filepath.Join(cfg.SourceWorldDir, "region", "r.2.2.mca"), "fresh region data")
	// C: upstream exists but the downstream parent is unusable
	writeFile(t, filepath.Join(cfg.SourceWorldDir, "DIM1", "region", "r.3.3.mca"), "end data")
	writeFile(t, filepath.Join(cfg.DestWorldDir, "DIM1"), "a file where a dir should be")

	for _, r := range []region.Region{regionA, regionB, regionC} {
		require.NoError(t, trk.AddPending(r))
	}

	batch, err := eng.Run(context.Background(), "tester")
	require.NoError(t, err)

	require.Len(t, batch.Outcomes, 3)
	assert.Equal(t, Outcome{Region: regionA, OK: true}, batch.Outcomes[0])
	assert.Equal(t, Outcome{Region: regionB, OK: true}, batch.Outcomes[1])
	assert.Equal(t, regionC, batch.Outcomes[2].Region)
	assert.False(t, batch.Outcomes[2].OK)
	assert.NotEmpty(t, batch.Outcomes[2].Detail)

	assert.NoFileExists(t, filepath.Join(cfg.DestWorldDir, "region", "r.1.1.mca"))
	data, err := os.ReadFile(filepath.Join(cfg.DestWorldDir, "region", "r.2.2.mca"))
	require.NoError(t, err)
	assert.Equal(t, "fresh region data", string(data))

	assert.Empty(t, trk.Pending())
	assert.Equal(t, []string{"stop", "start"}, svc.Calls())
	assert.Equal(t, batch.Outcomes, eng.History().List())
}

func TestEngine_EmptyPendingStillCycles(t *testing.T) {
	cfg := testConfig(t)
	svc := &fakeService{}
	eng, _ := newTestEngine(t, cfg, svc)

	batch, err := eng.Run(context.Background(), "tester")
	require.NoError(t, err)

	assert.Empty(t, batch.Outcomes)
	assert.Empty(t, eng.History().List())
	assert.Equal(t, []string{"stop", "start"}, svc.Calls())
	// the transfer step never ran, so neither tree was created
	assert.NoDirExists(t, cfg.SourceWorldDir)
	assert.NoDirExists(t, cfg.DestWorldDir)
}

func TestEngine_MissingBothSidesIsSuccess(t *testing.T) {
	cfg := testConfig(t)
	svc := &fakeService{}
	eng, trk := newTestEngine(t, cfg, svc)

	r := region.New(9, 9, 0)
	require.NoError(t, trk.AddPending(r))

	batch, err := eng.Run(context.Background(), "tester")
	require.NoError(t, err)
	require.Len(t, batch.Outcomes, 1)
	assert.True(t, batch.Outcomes[0].OK)

	audit, err := os.ReadFile(cfg.AuditLogPath())
	require.NoError(t, err)
	assert.Contains(t, string(audit), "*missing*")
	assert.Contains(t, string(audit), "r.9.9.mca")
}

func TestEngine_FirstFileErrorSkipsRest(t *testing.T) {
	cfg := testConfig(t)
	svc := &fakeService{}
	eng, trk := newTestEngine(t, cfg, svc)

	// default mapping for dim 0 is region then poi; break region, leave
	// poi copyable and verify it was never attempted
	writeFile(t, filepath.Join(cfg.SourceWorldDir, "region", "r.0.0.mca"), "data")
	writeFile(t, filepath.Join(cfg.SourceWorldDir, "poi", "r.0.0.mca"), "poi data")
	writeFile(t, filepath.Join(cfg.DestWorldDir, "region"), "not a dir")

	require.NoError(t, trk.AddPending(region.New(0, 0, 0)))

	batch, err := eng.Run(context.Background(), "tester")
	require.NoError(t, err)
	require.Len(t, batch.Outcomes, 1)
	assert.False(t, batch.Outcomes[0].OK)
	assert.NoFileExists(t, filepath.Join(cfg.DestWorldDir, "poi", "r.0.0.mca"))
}

func TestEngine_UnmappedDimensionFailsRegion(t *testing.T) {
	cfg := testConfig(t)
	cfg.DimensionFolders = region.FolderMap{"0": {"region"}}
	svc := &fakeService{}
	eng, trk := newTestEngine(t, cfg, svc)

	// dim 1 has no mapping in this config
	require.NoError(t, trk.AddPending(region.New(4, 4, 1)))

	batch, err := eng.Run(context.Background(), "tester")
	require.NoError(t, err)
	require.Len(t, batch.Outcomes, 1)
	assert.False(t, batch.Outcomes[0].OK)
	assert.Contains(t, batch.Outcomes[0].Detail, "no folder mapping")
}

func TestEngine_Disabled(t *testing.T) {
	cfg := testConfig(t)
	cfg.Enabled = false
	svc := &fakeService{}
	eng, _ := newTestEngine(t, cfg, svc)

	_, err := eng.Run(context.Background(), "tester")
	assert.ErrorIs(t, err, ErrDisabled)
	assert.Empty(t, svc.Calls())

	assert.ErrorIs(t, eng.RunAsync("tester"), ErrDisabled)
	assert.False(t, eng.Running())
}

func TestEngine_RejectsConcurrentBatch(t *testing.T) {
	cfg := testConfig(t)
	gate := make(chan struct{})
	svc := &fakeService{stopGate: gate}
	eng, _ := newTestEngine(t, cfg, svc)

	done := make(chan error, 1)
	go func() {
		_, err := eng.Run(context.Background(), "first")
		done <- err
	}()

	require.Eventually(t, eng.Running, 5*time.Second, 10*time.Millisecond)

	_, err := eng.Run(context.Background(), "second")
	assert.ErrorIs(t, err, ErrBatchRunning)
	assert.ErrorIs(t, eng.RunAsync("second"), ErrBatchRunning)

	close(gate)
	require.NoError(t, <-done)
	assert.False(t, eng.Running())
}

func TestEngine_CountdownNotifications(t *testing.T) {
	cfg := testConfig(t)
	cfg.CountdownSecs = 3
	svc := &fakeService{}
	eng, _ := newTestEngine(t, cfg, svc)

	notifier := &recordingNotifier{}
	eng.SetNotifier(notifier)

	_, err := eng.Run(context.Background(), "tester")
	require.NoError(t, err)

	assert.Equal(t, []int{3, 2, 1}, notifier.countdowns)
	assert.Equal(t, 1, notifier.started)
	require.Len(t, notifier.finished, 1)
}

func TestEngine_CanceledBeforeStopLeavesStateAlone(t *testing.T) {
	cfg := testConfig(t)
	cfg.CountdownSecs = 5
	svc := &fakeService{}
	eng, trk := newTestEngine(t, cfg, svc)

	require.NoError(t, trk.AddPending(region.New(1, 2, 0)))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := eng.Run(ctx, "tester")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)

	// no disruption happened: service untouched, pending intact
	assert.Empty(t, svc.Calls())
	assert.Len(t, trk.Pending(), 1)
	assert.False(t, eng.Running())
}

func TestEngine_StopFailureAborts(t *testing.T) {
	cfg := testConfig(t)
	svc := &fakeService{stopErr: assert.AnError}
	eng, trk := newTestEngine(t, cfg, svc)

	require.NoError(t, trk.AddPending(region.New(1, 2, 0)))

	_, err := eng.Run(context.Background(), "tester")
	assert.ErrorIs(t, err, ErrStopFailed)

	// nothing was transferred and no restart was attempted
	assert.Equal(t, []string{"stop"}, svc.Calls())
	assert.Len(t, trk.Pending(), 1)
	assert.Empty(t, eng.History().List())
}

func TestEngine_StartFailureStillFinalizes(t *testing.T) {
	cfg := testConfig(t)
	svc := &fakeService{startErr: assert.AnError}
	eng, trk := newTestEngine(t, cfg, svc)

	notifier := &recordingNotifier{}
	eng.SetNotifier(notifier)

	r := region.New(1, 2, 0)
	require.NoError(t, trk.AddPending(r))

	batch, err := eng.Run(context.Background(), "tester")
	assert.ErrorIs(t, err, ErrStartFailed)

	// ledger and notifications were finalized before the error surfaced
	require.NotNil(t, batch)
	assert.Len(t, eng.History().List(), 1)
	assert.Len(t, notifier.finished, 1)
	assert.Empty(t, trk.Pending())
	assert.Equal(t, []string{"stop", "start"}, svc.Calls())
}

func TestEngine_HistoryReplacedWholesale(t *testing.T) {
	cfg := testConfig(t)
	svc := &fakeService{}
	eng, trk := newTestEngine(t, cfg, svc)

	require.NoError(t, trk.AddPending(region.New(1, 1, 0)))
	_, err := eng.Run(context.Background(), "first")
	require.NoError(t, err)
	require.Len(t, eng.History().List(), 1)

	require.NoError(t, trk.AddPending(region.New(2, 2, 0)))
	require.NoError(t, trk.AddPending(region.New(3, 3, 0)))
	_, err = eng.Run(context.Background(), "second")
	require.NoError(t, err)

	outcomes := eng.History().List()
	require.Len(t, outcomes, 2)
	assert.Equal(t, region.New(2, 2, 0), outcomes[0].Region)
	assert.Equal(t, region.New(3, 3, 0), outcomes[1].Region)
}

func TestEngine_AuditTrail(t *testing.T) {
	cfg := testConfig(t)
	svc := &fakeService{}
	eng, trk := newTestEngine(t, cfg, svc)

	writeFile(t, filepath.Join(cfg.SourceWorldDir, "region", "r.7.7.mca"), "data")
	require.NoError(t, trk.AddPending(region.New(7, 7, 0)))

	_, err := eng.Run(context.Background(), "Steve")
	require.NoError(t, err)

	audit, err := os.ReadFile(cfg.AuditLogPath())
	require.NoError(t, err)
	content := string(audit)
	assert.Contains(t, content, "Steve synced 1 region files:")
	assert.Contains(t, content, "r.7.7.mca")
	assert.Contains(t, content, "Region[x=7, z=7, dim=0]: ok")
	assert.Contains(t, content, "update finished: 1 synced, 0 failed")
}

func TestEngine_RunAsync(t *testing.T) {
	cfg := testConfig(t)
	svc := &fakeService{}
	eng, trk := newTestEngine(t, cfg, svc)

	notifier := &recordingNotifier{}
	eng.SetNotifier(notifier)

	writeFile(t, filepath.Join(cfg.SourceWorldDir, "region", "r.1.1.mca"), "data")
	require.NoError(t, trk.AddPending(region.New(1, 1, 0)))

	require.NoError(t, eng.RunAsync("tester"))

	require.Eventually(t, func() bool {
		notifier.mu.Lock()
		defer notifier.mu.Unlock()
		return len(notifier.finished) == 1
	}, 5*time.Second, 10*time.Millisecond)

	assert.Equal(t, []string{"stop", "start"}, svc.Calls())
	assert.Empty(t, trk.Pending())
}
