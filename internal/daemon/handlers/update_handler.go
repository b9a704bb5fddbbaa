package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/minecart-tools/regionsync/internal/updater"
)

// UpdateRequest optionally names who asked for the batch; it lands in
// the audit log and the batch journal.
type UpdateRequest struct {
	Requester string `json:"requester"`
}

// UpdateHandler triggers synchronization batches.
type UpdateHandler struct {
	engine *updater.Engine
}

func NewUpdateHandler(engine *updater.Engine) *UpdateHandler {
	return &UpdateHandler{
		engine: engine,
	}
}

// Trigger starts a batch in the background. The 202 only means the batch
// was accepted; outcomes arrive via the events feed and the history
// endpoint.
func (h *UpdateHandler) Trigger(c *gin.Context) {
	var req UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		AbortWithError(c, http.StatusBadRequest, ErrCodeBadRequest, err)
		return
	}
	if req.Requester == "" {
		req.Requester = "api"
	}

	if err := h.engine.RunAsync(req.Requester); err != nil {
		switch {
		case errors.Is(err, updater.ErrBatchRunning):
			AbortWithError(c, http.StatusConflict, ErrCodeBatchRunning, err)
		case errors.Is(err, updater.ErrDisabled):
			AbortWithError(c, http.StatusPreconditionFailed, ErrCodeSyncDisabled, err)
		default:
			AbortWithError(c, http.StatusInternalServerError, ErrCodeUnknownError, err)
		}
		return
	}

	c.PureJSON(http.StatusAccepted, &ControlPlaneResponse{Code: CodeOk})
}
