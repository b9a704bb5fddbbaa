package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/minecart-tools/regionsync/internal/config"
)

const (
	CodeOk string = "OK"

	ErrCodeBadRequest   string = "ERR_BAD_REQUEST"
	ErrCodeUnknownError string = "ERR_UNKNOWN_ERROR"

	ErrCodeAlreadyPending   string = "ERR_ALREADY_PENDING"
	ErrCodeNotPending       string = "ERR_NOT_PENDING"
	ErrCodeRegionProtected  string = "ERR_REGION_PROTECTED"
	ErrCodeAlreadyProtected string = "ERR_ALREADY_PROTECTED"
	ErrCodeNotProtected     string = "ERR_NOT_PROTECTED"

	ErrCodeBatchRunning string = "ERR_BATCH_RUNNING"
	ErrCodeSyncDisabled string = "ERR_SYNC_DISABLED"

	ErrCodePlayerNotFound     string = "ERR_PLAYER_NOT_FOUND"
	ErrCodeLocatorUnavailable string = "ERR_LOCATOR_UNAVAILABLE"

	ErrCodeScanFailed    string = "ERR_SCAN_FAILED"
	ErrCodeHistoryFailed string = "ERR_HISTORY_FAILED"
	ErrCodeConfigInvalid string = "ERR_CONFIG_INVALID"
)

// ConfigProvider yields the daemon's current config. Handlers call it
// per request so a reload is visible immediately.
type ConfigProvider func() *config.Config

type ControlPlaneResponse struct {
	Code string `json:"code"`
}

type ControlPlaneError struct {
	ErrorCode string `json:"code"`
	Error     string `json:"error"`
}

func AbortWithError(c *gin.Context, status int, code string, err error) {
	c.Abort()
	c.Error(err)
	c.PureJSON(status, ControlPlaneError{
		ErrorCode: code,
		Error:     err.Error(),
	})
}
