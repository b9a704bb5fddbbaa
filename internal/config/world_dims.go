package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/minecart-tools/regionsync/internal/region"
)

// WorldDimsFileName is an optional per-world override of the dimension folder
// map, dropped into the destination world root by modded servers whose
// dimension layout differs from stock.
const WorldDimsFileName = "dimensions.yaml"

type worldDimsFile struct {
	Dimensions region.FolderMap `yaml:"dimensions"`
}

// LoadWorldDims reads the per-world dimension override. Returns (nil, nil)
// when the file does not exist.
func LoadWorldDims(destRoot string) (region.FolderMap, error) {
	path := filepath.Join(destRoot, WorldDimsFileName)

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("world dims read %s: %w", path, err)
	}

	var file worldDimsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("world dims parse %s: %w", path, err)
	}
	if len(file.Dimensions) == 0 {
		return nil, fmt.Errorf("world dims %s: no dimensions mapped", path)
	}

	return file.Dimensions, nil
}
