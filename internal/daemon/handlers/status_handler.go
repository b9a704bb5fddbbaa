package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/minecart-tools/regionsync/internal/supervisor"
	"github.com/minecart-tools/regionsync/internal/tracker"
	"github.com/minecart-tools/regionsync/internal/updater"
	"github.com/minecart-tools/regionsync/internal/version"
)

// StatusHandler reports daemon, tracker and service state.
type StatusHandler struct {
	config    ConfigProvider
	tracker   *tracker.Tracker
	service   *supervisor.Supervisor
	engine    *updater.Engine
	startedAt time.Time
}

func NewStatusHandler(config ConfigProvider, trk *tracker.Tracker, svc *supervisor.Supervisor, engine *updater.Engine) *StatusHandler {
	return &StatusHandler{
		config:    config,
		tracker:   trk,
		service:   svc,
		engine:    engine,
		startedAt: time.Now(),
	}
}

func (h *StatusHandler) Status(c *gin.Context) {
	cfg := h.config()

	c.PureJSON(http.StatusOK, &StatusResponse{
		Status:       "ok",
		Timestamp:    time.Now().UTC().Format(time.RFC3339),
		Version:      version.Version,
		Revision:     version.Revision,
		BuildDate:    version.BuildDate,
		Uptime:       time.Since(h.startedAt).Round(time.Second).String(),
		Enabled:      cfg.Enabled,
		BatchRunning: h.engine.Running(),
		Pending:      len(h.tracker.Pending()),
		Protected:    len(h.tracker.Protected()),
		SourceWorld:  cfg.SourceWorldDir,
		DestWorld:    cfg.DestWorldDir,
		Service: &ServiceInfo{
			Status: string(h.service.StatusNow()),
			Pid:    h.service.Pid(),
		},
	})
}

func Index(c *gin.Context) {
	c.PureJSON(http.StatusOK, &IndexResponse{
		App:       version.AppName,
		Version:   version.Version,
		Revision:  version.Revision,
		BuildDate: version.BuildDate,
	})
}
