package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/minecart-tools/regionsync/internal/locator"
	"github.com/minecart-tools/regionsync/internal/region"
	"github.com/minecart-tools/regionsync/internal/tracker"
)

// RegionsHandler serves the pending/protected region sets and the
// source-tree scan.
type RegionsHandler struct {
	config  ConfigProvider
	tracker *tracker.Tracker
	locator locator.Locator
}

func NewRegionsHandler(config ConfigProvider, trk *tracker.Tracker, loc locator.Locator) *RegionsHandler {
	return &RegionsHandler{
		config:  config,
		tracker: trk,
		locator: loc,
	}
}

func (h *RegionsHandler) ListPending(c *gin.Context) {
	regions := h.tracker.Pending()
	c.PureJSON(http.StatusOK, &RegionListResponse{
		Count:   len(regions),
		Regions: regions,
	})
}

func (h *RegionsHandler) AddPending(c *gin.Context) {
	r, ok := h.bindRegion(c)
	if !ok {
		return
	}

	if err := h.tracker.AddPending(r); err != nil {
		switch {
		case errors.Is(err, tracker.ErrAlreadyPending):
			AbortWithError(c, http.StatusConflict, ErrCodeAlreadyPending, err)
		case errors.Is(err, tracker.ErrRegionProtected):
			AbortWithError(c, http.StatusConflict, ErrCodeRegionProtected, err)
		default:
			AbortWithError(c, http.StatusInternalServerError, ErrCodeUnknownError, err)
		}
		return
	}

	c.PureJSON(http.StatusOK, &RegionResponse{Code: CodeOk, Region: r})
}

func (h *RegionsHandler) RemovePending(c *gin.Context) {
	r, ok := h.bindRegion(c)
	if !ok {
		return
	}

	if err := h.tracker.RemovePending(r); err != nil {
		if errors.Is(err, tracker.ErrNotPending) {
			AbortWithError(c, http.StatusNotFound, ErrCodeNotPending, err)
		} else {
			AbortWithError(c, http.StatusInternalServerError, ErrCodeUnknownError, err)
		}
		return
	}

	c.PureJSON(http.StatusOK, &RegionResponse{Code: CodeOk, Region: r})
}

func (h *RegionsHandler) ClearPending(c *gin.Context) {
	h.tracker.ClearPending()
	c.PureJSON(http.StatusOK, &ControlPlaneResponse{Code: CodeOk})
}

func (h *RegionsHandler) ListProtected(c *gin.Context) {
	regions := h.tracker.Protected()
	c.PureJSON(http.StatusOK, &RegionListResponse{
		Count:   len(regions),
		Regions: regions,
	})
}

func (h *RegionsHandler) Protect(c *gin.Context) {
	r, ok := h.bindRegion(c)
	if !ok {
		return
	}

	removed, err := h.tracker.Protect(r)
	if err != nil {
		if errors.Is(err, tracker.ErrAlreadyProtected) {
			AbortWithError(c, http.StatusConflict, ErrCodeAlreadyProtected, err)
		} else {
			AbortWithError(c, http.StatusInternalServerError, ErrCodeUnknownError, err)
		}
		return
	}

	c.PureJSON(http.StatusOK, &RegionResponse{
		Code:               CodeOk,
		Region:             r,
		RemovedFromPending: removed,
	})
}

func (h *RegionsHandler) Deprotect(c *gin.Context) {
	r, ok := h.bindRegion(c)
	if !ok {
		return
	}

	if err := h.tracker.Deprotect(r); err != nil {
		if errors.Is(err, tracker.ErrNotProtected) {
			AbortWithError(c, http.StatusNotFound, ErrCodeNotProtected, err)
		} else {
			AbortWithError(c, http.StatusInternalServerError, ErrCodeUnknownError, err)
		}
		return
	}

	c.PureJSON(http.StatusOK, &RegionResponse{Code: CodeOk, Region: r})
}

func (h *RegionsHandler) DeprotectAll(c *gin.Context) {
	if err := h.tracker.DeprotectAll(); err != nil {
		AbortWithError(c, http.StatusInternalServerError, ErrCodeUnknownError, err)
		return
	}
	c.PureJSON(http.StatusOK, &ControlPlaneResponse{Code: CodeOk})
}

func (h *RegionsHandler) Scan(c *gin.Context) {
	cfg := h.config()
	regions, err := region.Scan(cfg.SourceWorldDir, cfg.DimensionFolders)
	if err != nil {
		AbortWithError(c, http.StatusInternalServerError, ErrCodeScanFailed, err)
		return
	}
	c.PureJSON(http.StatusOK, &RegionListResponse{
		Count:   len(regions),
		Regions: regions,
	})
}

// bindRegion decodes RegionParams from the request (JSON body for POST,
// query for everything else) and resolves them to a region. On failure
// the response has already been written and ok is false.
func (h *RegionsHandler) bindRegion(c *gin.Context) (region.Region, bool) {
	var params RegionParams
	var err error
	if c.Request.Method == http.MethodPost {
		err = c.ShouldBindJSON(&params)
	} else {
		err = c.ShouldBindQuery(&params)
	}
	if err != nil {
		AbortWithError(c, http.StatusBadRequest, ErrCodeBadRequest, err)
		return region.Region{}, false
	}
	return h.resolveRegion(c, &params)
}

func (h *RegionsHandler) resolveRegion(c *gin.Context, params *RegionParams) (region.Region, bool) {
	if params.Player != "" {
		loc, err := h.locator.Locate(c.Request.Context(), params.Player)
		if err != nil {
			if errors.Is(err, locator.ErrPlayerNotFound) {
				AbortWithError(c, http.StatusNotFound, ErrCodePlayerNotFound, err)
			} else {
				AbortWithError(c, http.StatusBadGateway, ErrCodeLocatorUnavailable, err)
			}
			return region.Region{}, false
		}
		return region.FromWorldCoords(loc.X, loc.Z, loc.Dim), true
	}

	if params.X == nil || params.Z == nil || params.Dim == nil {
		AbortWithError(c, http.StatusBadRequest, ErrCodeBadRequest,
			errors.New("either player or x, z and dim must be given"))
		return region.Region{}, false
	}
	if !region.ValidDim(*params.Dim) {
		AbortWithError(c, http.StatusBadRequest, ErrCodeBadRequest,
			fmt.Errorf("dim %d out of range [-1, 1]", *params.Dim))
		return region.Region{}, false
	}

	return region.New(*params.X, *params.Z, *params.Dim), true
}
