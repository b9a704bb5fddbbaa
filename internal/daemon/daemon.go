package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/minecart-tools/regionsync/internal/auditlog"
	"github.com/minecart-tools/regionsync/internal/config"
	"github.com/minecart-tools/regionsync/internal/daemon/middleware"
	"github.com/minecart-tools/regionsync/internal/hub"
	"github.com/minecart-tools/regionsync/internal/locator"
	"github.com/minecart-tools/regionsync/internal/supervisor"
	"github.com/minecart-tools/regionsync/internal/tracker"
	"github.com/minecart-tools/regionsync/internal/updater"
	"github.com/minecart-tools/regionsync/internal/worldtree"
)

// Daemon ties the tracker, updater engine, supervised service and control
// plane together and runs them as one unit.
type Daemon struct {
	muConfig sync.RWMutex
	config   *config.Config

	tracker  *tracker.Tracker
	service  *supervisor.Supervisor
	engine   *updater.Engine
	journal  *updater.Journal
	hub      *hub.Hub
	locator  locator.Locator
	audit    *auditlog.Sink
	destTree *worldtree.Tree
	watcher  *SourceWatcher
	cps      *ControlPlaneServer
}

func New(cfg *config.Config) (*Daemon, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := applyWorldDims(cfg); err != nil {
		return nil, err
	}

	destTree, err := worldtree.New(cfg.DestWorldDir)
	if err != nil {
		return nil, fmt.Errorf("destination tree: %w", err)
	}

	trk, err := tracker.New(tracker.NewStore(cfg.ProtectedFilePath()))
	if err != nil {
		return nil, fmt.Errorf("tracker: %w", err)
	}

	d := &Daemon{
		config:   cfg,
		tracker:  trk,
		hub:      hub.New(),
		audit:    auditlog.NewSink(cfg.AuditLogPath()),
		journal:  updater.NewJournal(cfg.JournalPath()),
		destTree: destTree,
	}

	d.service = supervisor.New(supervisor.Config{
		Command:     cfg.Service.Command,
		Args:        cfg.Service.Args,
		WorkDir:     cfg.Service.WorkDir,
		StopCommand: cfg.Service.StopCommand,
		StopTimeout: time.Duration(cfg.Service.StopTimeoutSecs) * time.Second,
		LogPath:     cfg.ServiceLogPath(),
	})

	d.locator = locator.New(locator.Config{
		URL:      cfg.Locator.URL,
		Token:    cfg.Locator.Token,
		CacheTTL: time.Duration(cfg.Locator.CacheTTLSecs) * time.Second,
	})

	d.engine = updater.NewEngine(d.currentConfig, d.tracker, d.service, d.audit, d.journal)
	d.engine.SetNotifier(&batchNotifier{hub: d.hub, service: d.service})

	if cfg.WatchSource {
		d.watcher = NewSourceWatcher(cfg.SourceWorldDir, cfg.DimensionFolders, d.hub)
	}

	d.cps = NewControlPlaneServer(cfg.HTTPAddr, &RouteConfig{
		Auth:    middleware.TokenAuthConfig{Token: cfg.HTTPToken},
		Config:  d.currentConfig,
		Tracker: d.tracker,
		Engine:  d.engine,
		Journal: d.journal,
		Locator: d.locator,
		Service: d.service,
		Hub:     d.hub,
		Reload:  d.Reload,
	})

	return d, nil
}

// Start runs the daemon until ctx is canceled or a component fails.
func (d *Daemon) Start(ctx context.Context) error {
	cfg := d.currentConfig()
	slog.Info("daemon start",
		"source", cfg.SourceWorldDir,
		"dest", cfg.DestWorldDir,
		"enabled", cfg.Enabled,
	)

	if err := d.destTree.Lock(); err != nil {
		return fmt.Errorf("destination tree %s: %w", cfg.DestWorldDir, err)
	}

	if err := d.journal.Open(); err != nil {
		d.destTree.Unlock()
		return err
	}

	if cfg.Service.Autostart && cfg.Service.Command != "" {
		if err := d.service.Start(ctx); err != nil {
			d.journal.Close()
			d.destTree.Unlock()
			return fmt.Errorf("service autostart: %w", err)
		}
	}

	if d.watcher != nil {
		if err := d.watcher.Start(ctx); err != nil {
			slog.Error("source watcher failed to start", "error", err)
			d.watcher = nil
		}
	}

	eg, egCtx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		if err := d.cps.Start(egCtx); err != nil {
			return fmt.Errorf("failed to start control plane: %w", err)
		}
		return nil
	})

	eg.Go(func() error {
		d.pumpServiceState(egCtx)
		return nil
	})

	eg.Go(func() error {
		<-egCtx.Done()
		slog.Info("shutting down daemon")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()

		return d.Stop(shutdownCtx)
	})

	if err := eg.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("daemon failure", "error", err)
		return err
	}

	slog.Info("daemon stopped")
	return nil
}

// Stop unwinds everything Start set up. Safe to call once.
func (d *Daemon) Stop(ctx context.Context) error {
	var errs []error

	if err := d.cps.Stop(ctx); err != nil {
		errs = append(errs, fmt.Errorf("control plane: %w", err))
	}

	if d.watcher != nil {
		d.watcher.Stop()
	}

	if d.service.Running() {
		if err := d.service.Stop(ctx); err != nil {
			errs = append(errs, fmt.Errorf("service stop: %w", err))
		}
	}

	d.hub.Shutdown(ctx)

	if err := d.journal.Close(); err != nil {
		errs = append(errs, fmt.Errorf("journal: %w", err))
	}

	if err := d.destTree.Unlock(); err != nil {
		errs = append(errs, fmt.Errorf("tree unlock: %w", err))
	}

	return errors.Join(errs...)
}

// Reload re-reads the config file and swaps the active snapshot. The
// tracker, journal and listen address keep their boot-time bindings; a
// changed source/destination or countdown applies from the next batch.
func (d *Daemon) Reload() error {
	path := d.currentConfig().Path
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := applyWorldDims(cfg); err != nil {
		return err
	}

	d.muConfig.Lock()
	d.config = cfg
	d.muConfig.Unlock()

	slog.Info("config reloaded", "path", path)
	return nil
}

func (d *Daemon) currentConfig() *config.Config {
	d.muConfig.RLock()
	defer d.muConfig.RUnlock()
	return d.config
}

// pumpServiceState forwards supervisor state changes to the event hub.
func (d *Daemon) pumpServiceState(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case change := <-d.service.Changes():
			d.hub.Publish(hub.NewEvent(hub.EventServiceState, hub.ServiceStatePayload{
				Status:   string(change.Status),
				Pid:      change.Pid,
				ExitCode: change.ExitCode,
			}))
		}
	}
}

// applyWorldDims lets a dimensions.yaml inside the destination world
// override the configured folder map.
func applyWorldDims(cfg *config.Config) error {
	dims, err := config.LoadWorldDims(cfg.DestWorldDir)
	if err != nil {
		return err
	}
	if dims != nil {
		slog.Info("dimension folders overridden by world", "dims", len(dims))
		cfg.DimensionFolders = dims
	}
	return nil
}
