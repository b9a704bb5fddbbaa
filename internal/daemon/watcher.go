package daemon

import (
	"context"
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/rjeczalik/notify"

	"github.com/minecart-tools/regionsync/internal/hub"
	"github.com/minecart-tools/regionsync/internal/region"
)

const watchBufferSize = 64

// SourceWatcher watches the source world tree and publishes an event
// whenever a mapped region file changes there. Purely informational; it
// never mutates the pending set.
type SourceWatcher struct {
	root    string
	folders region.FolderMap
	hub     *hub.Hub
	events  chan notify.EventInfo
	done    chan struct{}
	wg      sync.WaitGroup
}

func NewSourceWatcher(root string, folders region.FolderMap, h *hub.Hub) *SourceWatcher {
	return &SourceWatcher{
		root:    root,
		folders: folders,
		hub:     h,
		done:    make(chan struct{}),
	}
}

func (w *SourceWatcher) Start(ctx context.Context) error {
	slog.Info("source watcher start", "dir", w.root)

	w.events = make(chan notify.EventInfo, watchBufferSize)

	recursivePath := filepath.Join(w.root, "...")
	if err := notify.Watch(recursivePath, w.events, notify.Write, notify.Create, notify.Remove, notify.Rename); err != nil {
		return err
	}

	w.wg.Add(1)
	go w.pump(ctx)
	return nil
}

func (w *SourceWatcher) Stop() {
	close(w.done)
	if w.events != nil {
		notify.Stop(w.events)
	}
	w.wg.Wait()
	slog.Info("source watcher stopped")
}

func (w *SourceWatcher) pump(ctx context.Context) {
	defer w.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.done:
			return
		case ev, ok := <-w.events:
			if !ok {
				return
			}
			w.handle(ev)
		}
	}
}

func (w *SourceWatcher) handle(ev notify.EventInfo) {
	rel, err := filepath.Rel(w.root, ev.Path())
	if err != nil {
		return
	}

	r, ok := w.matchRegion(rel)
	if !ok {
		return
	}

	slog.Debug("source region changed", "region", r.String(), "path", rel, "op", ev.Event().String())
	w.hub.Publish(hub.NewEvent(hub.EventSourceChanged, hub.SourceChangedPayload{
		Region: r,
		Path:   filepath.ToSlash(rel),
		Op:     ev.Event().String(),
	}))
}

// matchRegion maps a path relative to the source root back to a region.
// Only files directly inside a mapped dimension folder count.
func (w *SourceWatcher) matchRegion(rel string) (region.Region, bool) {
	dir := filepath.ToSlash(filepath.Dir(rel))
	base := filepath.Base(rel)

	x, z, ok := region.ParseFileName(base)
	if !ok {
		return region.Region{}, false
	}

	for _, dim := range w.folders.Dims() {
		folders, err := w.folders.FoldersFor(dim)
		if err != nil {
			continue
		}
		for _, folder := range folders {
			if dir == folder {
				return region.New(x, z, dim), true
			}
		}
	}
	return region.Region{}, false
}
