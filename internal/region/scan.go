package region

import (
	"fmt"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	mapset "github.com/deckarep/golang-set/v2"

	"github.com/minecart-tools/regionsync/internal/utils"
)

// Scan enumerates the regions present in a world tree by globbing every mapped
// dimension folder for region files. Regions backed by multiple parallel
// folders (terrain + poi) are reported once. The result is sorted by
// (dim, x, z).
func Scan(root string, folders FolderMap) ([]Region, error) {
	seen := mapset.NewThreadUnsafeSet[Region]()

	for _, dim := range folders.Dims() {
		dimFolders, err := folders.FoldersFor(dim)
		if err != nil {
			return nil, err
		}
		for _, folder := range dimFolders {
			dir := filepath.Join(root, filepath.FromSlash(folder))
			if !utils.DirExists(dir) {
				continue
			}
			matches, err := doublestar.FilepathGlob(filepath.Join(dir, "r.*.*.mca"))
			if err != nil {
				return nil, fmt.Errorf("scan %s: %w", dir, err)
			}
			for _, match := range matches {
				x, z, ok := ParseFileName(filepath.Base(match))
				if !ok {
					continue
				}
				seen.Add(New(x, z, dim))
			}
		}
	}

	regions := seen.ToSlice()
	sort.Slice(regions, func(i, j int) bool {
		a, b := regions[i], regions[j]
		if a.Dim != b.Dim {
			return a.Dim < b.Dim
		}
		if a.X != b.X {
			return a.X < b.X
		}
		return a.Z < b.Z
	})
	return regions, nil
}
