// Package region models a fixed-size map tile identified by (x, z, dim) and
// its mapping onto the region files of a world tree.
package region

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
)

// TileSize is the edge length of one region in world units.
const TileSize = 512

// Dimension ids of the three stock dimensions.
const (
	DimNether    = -1
	DimOverworld = 0
	DimEnd       = 1
)

var fileNameRe = regexp.MustCompile(`^r\.(-?\d+)\.(-?\d+)\.mca$`)

// Region identifies one 512x512 tile within a dimension. Two regions are the
// same region iff all three fields match.
type Region struct {
	X   int `json:"x"`
	Z   int `json:"z"`
	Dim int `json:"dim"`
}

func New(x, z, dim int) Region {
	return Region{X: x, Z: z, Dim: dim}
}

// FromWorldCoords returns the region covering the given absolute world
// coordinates. Floor division maps negative coordinates to negative region
// indices.
func FromWorldCoords(worldX, worldZ float64, dim int) Region {
	return Region{
		X:   int(math.Floor(worldX / TileSize)),
		Z:   int(math.Floor(worldZ / TileSize)),
		Dim: dim,
	}
}

// FileName returns the canonical on-disk name, e.g. "r.-3.1.mca".
func (r Region) FileName() string {
	return fmt.Sprintf("r.%d.%d.mca", r.X, r.Z)
}

func (r Region) String() string {
	return fmt.Sprintf("Region[x=%d, z=%d, dim=%d]", r.X, r.Z, r.Dim)
}

// ValidDim reports whether dim is one of the stock dimension ids.
func ValidDim(dim int) bool {
	return dim >= DimNether && dim <= DimEnd
}

// ParseFileName extracts the region coordinates from a file name like
// "r.-3.1.mca". The dimension is not part of the name and must come from
// context (the folder the file lives in).
func ParseFileName(name string) (x, z int, ok bool) {
	m := fileNameRe.FindStringSubmatch(name)
	if m == nil {
		return 0, 0, false
	}
	x, errX := strconv.Atoi(m[1])
	z, errZ := strconv.Atoi(m[2])
	if errX != nil || errZ != nil {
		return 0, 0, false
	}
	return x, z, true
}
