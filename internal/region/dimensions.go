package region

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// ErrUnmappedDimension is returned when a region's dimension id has no entry
// in the dimension folder map.
var ErrUnmappedDimension = errors.New("dimension has no folder mapping")

// FolderMap translates a dimension id (decimal string key) into the ordered
// list of world-relative folders holding that dimension's region files. Config
// values may be a single folder string or a list; both decode to a list.
type FolderMap map[string][]string

// DefaultFolderMap covers the three stock dimensions with their terrain and
// poi trees.
func DefaultFolderMap() FolderMap {
	return FolderMap{
		"-1": {"DIM-1/region", "DIM-1/poi"},
		"0":  {"region", "poi"},
		"1":  {"DIM1/region", "DIM1/poi"},
	}
}

// FoldersFor returns the folder list for dim, or ErrUnmappedDimension.
func (m FolderMap) FoldersFor(dim int) ([]string, error) {
	folders, ok := m[strconv.Itoa(dim)]
	if !ok || len(folders) == 0 {
		return nil, fmt.Errorf("%w: dim %d", ErrUnmappedDimension, dim)
	}
	return folders, nil
}

// PathsFor expands r into its ordered world-relative file paths, one per
// mapped folder.
func (m FolderMap) PathsFor(r Region) ([]string, error) {
	folders, err := m.FoldersFor(r.Dim)
	if err != nil {
		return nil, err
	}
	paths := make([]string, 0, len(folders))
	for _, folder := range folders {
		paths = append(paths, filepath.Join(filepath.FromSlash(folder), r.FileName()))
	}
	return paths, nil
}

// Dims returns the mapped dimension ids in ascending order. Keys that are not
// decimal integers are skipped.
func (m FolderMap) Dims() []int {
	dims := make([]int, 0, len(m))
	for key := range m {
		dim, err := strconv.Atoi(key)
		if err != nil {
			continue
		}
		dims = append(dims, dim)
	}
	sort.Ints(dims)
	return dims
}

// Clone returns a deep copy.
func (m FolderMap) Clone() FolderMap {
	if m == nil {
		return nil
	}
	out := make(FolderMap, len(m))
	for key, folders := range m {
		out[key] = append([]string(nil), folders...)
	}
	return out
}

// UnmarshalJSON accepts either a folder string or a folder list per dimension
// and normalizes to a list.
func (m *FolderMap) UnmarshalJSON(data []byte) error {
	raw := map[string]json.RawMessage{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	out := make(FolderMap, len(raw))
	for key, value := range raw {
		var single string
		if err := json.Unmarshal(value, &single); err == nil {
			out[key] = []string{single}
			continue
		}
		var many []string
		if err := json.Unmarshal(value, &many); err != nil {
			return fmt.Errorf("dimension %q: folder value must be a string or list of strings", key)
		}
		out[key] = many
	}

	*m = out
	return nil
}

// UnmarshalYAML accepts the same string-or-list union as UnmarshalJSON.
func (m *FolderMap) UnmarshalYAML(value *yaml.Node) error {
	raw := map[string]yaml.Node{}
	if err := value.Decode(&raw); err != nil {
		return err
	}

	out := make(FolderMap, len(raw))
	for key, node := range raw {
		var single string
		if err := node.Decode(&single); err == nil {
			out[key] = []string{single}
			continue
		}
		var many []string
		if err := node.Decode(&many); err != nil {
			return fmt.Errorf("dimension %q: folder value must be a string or list of strings", key)
		}
		out[key] = many
	}

	*m = out
	return nil
}
