package handlers

import "github.com/minecart-tools/regionsync/internal/region"

// RegionParams identifies a region either by explicit tile coordinates
// or by a player name resolved through the locator. POST bodies bind the
// json tags, DELETE requests the query form tags.
type RegionParams struct {
	X      *int   `json:"x" form:"x"`
	Z      *int   `json:"z" form:"z"`
	Dim    *int   `json:"dim" form:"dim"`
	Player string `json:"player" form:"player"`
}

// RegionListResponse lists regions in insertion order.
type RegionListResponse struct {
	Count   int             `json:"count"`
	Regions []region.Region `json:"regions"`
}

// RegionResponse confirms a mutation of one region.
type RegionResponse struct {
	Code   string        `json:"code"`
	Region region.Region `json:"region"`
	// set on protect when the region was also dropped from pending
	RemovedFromPending bool `json:"removed_from_pending,omitempty"`
}
