package daemon

import (
	"fmt"
	"log/slog"

	"github.com/minecart-tools/regionsync/internal/hub"
	"github.com/minecart-tools/regionsync/internal/region"
	"github.com/minecart-tools/regionsync/internal/supervisor"
	"github.com/minecart-tools/regionsync/internal/updater"
)

// batchNotifier fans engine progress out to the event hub and, while the
// service is still up, into its console so players see the countdown.
type batchNotifier struct {
	hub     *hub.Hub
	service *supervisor.Supervisor
}

var _ updater.Notifier = (*batchNotifier)(nil)

func (n *batchNotifier) Countdown(secondsLeft, pendingCount int) {
	n.hub.Publish(hub.NewEvent(hub.EventCountdown, hub.CountdownPayload{
		SecondsLeft:  secondsLeft,
		PendingCount: pendingCount,
	}))
	n.say(fmt.Sprintf("region sync: restarting in %ds (%d regions queued)", secondsLeft, pendingCount))
}

func (n *batchNotifier) BatchStarted(regions []region.Region) {
	n.hub.Publish(hub.NewEvent(hub.EventBatchStarted, hub.BatchStartedPayload{
		Count:   len(regions),
		Regions: regions,
	}))
}

func (n *batchNotifier) RegionSynced(outcome updater.Outcome, done, total int) {
	n.hub.Publish(hub.NewEvent(hub.EventRegionSynced, hub.RegionSyncedPayload{
		Outcome: outcome,
		Done:    done,
		Total:   total,
	}))
}

func (n *batchNotifier) BatchFinished(batch *updater.BatchRecord) {
	ok, failed := batch.Counts()
	n.hub.Publish(hub.NewEvent(hub.EventBatchFinished, hub.BatchFinishedPayload{
		ID:     batch.ID,
		OK:     ok,
		Failed: failed,
	}))
}

func (n *batchNotifier) say(msg string) {
	if !n.service.Running() {
		return
	}
	if err := n.service.Console("say " + msg); err != nil {
		slog.Warn("countdown broadcast failed", "error", err)
	}
}
