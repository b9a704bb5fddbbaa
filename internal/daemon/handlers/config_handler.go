package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ConfigHandler reloads the daemon config from disk.
type ConfigHandler struct {
	reload func() error
}

func NewConfigHandler(reload func() error) *ConfigHandler {
	return &ConfigHandler{
		reload: reload,
	}
}

func (h *ConfigHandler) Reload(c *gin.Context) {
	if err := h.reload(); err != nil {
		AbortWithError(c, http.StatusUnprocessableEntity, ErrCodeConfigInvalid, err)
		return
	}
	c.PureJSON(http.StatusOK, &ControlPlaneResponse{Code: CodeOk})
}
