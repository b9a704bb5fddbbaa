package sdk

import (
	"strconv"

	"github.com/minecart-tools/regionsync/internal/region"
)

// RegionParams addresses one region either by its coordinates or by a player
// whose position the daemon resolves.
type RegionParams struct {
	X      *int   `json:"x,omitempty"`
	Z      *int   `json:"z,omitempty"`
	Dim    *int   `json:"dim,omitempty"`
	Player string `json:"player,omitempty"`
}

// Coords addresses a region directly.
func Coords(x, z, dim int) *RegionParams {
	return &RegionParams{X: &x, Z: &z, Dim: &dim}
}

// Player addresses the region the named player currently stands in.
func Player(name string) *RegionParams {
	return &RegionParams{Player: name}
}

// queryMap renders the params for endpoints that bind from the query string.
func (p *RegionParams) queryMap() map[string]string {
	q := make(map[string]string, 4)
	if p.X != nil {
		q["x"] = strconv.Itoa(*p.X)
	}
	if p.Z != nil {
		q["z"] = strconv.Itoa(*p.Z)
	}
	if p.Dim != nil {
		q["dim"] = strconv.Itoa(*p.Dim)
	}
	if p.Player != "" {
		q["player"] = p.Player
	}
	return q
}

// RegionListResponse is the shape of every listing endpoint.
type RegionListResponse struct {
	Count   int             `json:"count"`
	Regions []region.Region `json:"regions"`
}

// RegionResponse echoes the region an add/remove/protect call resolved to.
type RegionResponse struct {
	Code               string        `json:"code"`
	Region             region.Region `json:"region"`
	RemovedFromPending bool          `json:"removed_from_pending,omitempty"`
}

// AckResponse is the bare success envelope.
type AckResponse struct {
	Code string `json:"code"`
}
