package tracker

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/goccy/go-json"

	"github.com/minecart-tools/regionsync/internal/region"
	"github.com/minecart-tools/regionsync/internal/utils"
)

// Store persists the protected set as an ordered JSON array of
// {"x","z","dim"} objects next to the served world.
type Store struct {
	path string
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

func (s *Store) Path() string {
	return s.path
}

// Save writes regions atomically, preserving order. A crash mid-write leaves
// the previous copy intact.
func (s *Store) Save(regions []region.Region) error {
	if regions == nil {
		regions = []region.Region{}
	}

	data, err := json.Marshal(regions)
	if err != nil {
		return fmt.Errorf("marshal protected regions: %w", err)
	}

	if err := utils.WriteFileAtomic(s.path, data, 0o644); err != nil {
		return fmt.Errorf("save protected regions: %w", err)
	}
	return nil
}

// Load reads the persisted protected set in file order. A missing file is the
// normal first-run state and yields an empty set. An unparseable file is
// logged, reset to an empty array on disk, and also yields an empty set;
// corruption never propagates as a fatal error.
func (s *Store) Load() ([]region.Region, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read protected regions %s: %w", s.path, err)
	}

	var regions []region.Region
	if err := json.Unmarshal(data, &regions); err != nil {
		slog.Error("protected region file corrupt, resetting to empty", "path", s.path, "error", err)
		if saveErr := s.Save(nil); saveErr != nil {
			slog.Error("protected region file reset failed", "path", s.path, "error", saveErr)
		}
		return nil, nil
	}

	return regions, nil
}
