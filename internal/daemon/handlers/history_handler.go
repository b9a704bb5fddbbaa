package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/minecart-tools/regionsync/internal/updater"
)

type HistoryResponse struct {
	Count    int               `json:"count"`
	Outcomes []updater.Outcome `json:"outcomes"`
}

type BatchHistoryResponse struct {
	Count   int                    `json:"count"`
	Batches []*updater.BatchRecord `json:"batches"`
}

// HistoryHandler serves the last-batch ledger and, with ?all=true, the
// persistent batch journal.
type HistoryHandler struct {
	engine  *updater.Engine
	journal *updater.Journal
}

func NewHistoryHandler(engine *updater.Engine, journal *updater.Journal) *HistoryHandler {
	return &HistoryHandler{
		engine:  engine,
		journal: journal,
	}
}

func (h *HistoryHandler) List(c *gin.Context) {
	if c.Query("all") == "true" {
		h.listAll(c)
		return
	}

	outcomes := h.engine.History().List()
	c.PureJSON(http.StatusOK, &HistoryResponse{
		Count:    len(outcomes),
		Outcomes: outcomes,
	})
}

func (h *HistoryHandler) listAll(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	batches, err := h.journal.Recent(limit)
	if err != nil {
		AbortWithError(c, http.StatusInternalServerError, ErrCodeHistoryFailed, err)
		return
	}

	c.PureJSON(http.StatusOK, &BatchHistoryResponse{
		Count:   len(batches),
		Batches: batches,
	})
}
