package region

import (
	"path/filepath"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestFolderMap_PathsFor(t *testing.T) {
	m := DefaultFolderMap()

	paths, err := m.PathsFor(New(-3, 1, -1))
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join("DIM-1", "region", "r.-3.1.mca"),
		filepath.Join("DIM-1", "poi", "r.-3.1.mca"),
	}, paths)
}

func TestFolderMap_UnmappedDimension(t *testing.T) {
	m := FolderMap{"0": {"region"}}

	_, err := m.PathsFor(New(0, 0, 7))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnmappedDimension)
}

func TestFolderMap_UnmarshalJSON_StringOrList(t *testing.T) {
	var m FolderMap
	data := []byte(`{"-1": "DIM-1/region", "0": ["region", "poi"]}`)

	require.NoError(t, json.Unmarshal(data, &m))
	assert.Equal(t, []string{"DIM-1/region"}, m["-1"])
	assert.Equal(t, []string{"region", "poi"}, m["0"])
}

func TestFolderMap_UnmarshalJSON_RejectsBadValue(t *testing.T) {
	var m FolderMap
	err := json.Unmarshal([]byte(`{"0": 42}`), &m)
	assert.Error(t, err)
}

func TestFolderMap_UnmarshalYAML_StringOrList(t *testing.T) {
	var m FolderMap
	data := []byte("\"-1\": DIM-1/region\n\"0\":\n  - region\n  - poi\n")

	require.NoError(t, yaml.Unmarshal(data, &m))
	assert.Equal(t, []string{"DIM-1/region"}, m["-1"])
	assert.Equal(t, []string{"region", "poi"}, m["0"])
}

func TestFolderMap_Dims(t *testing.T) {
	m := DefaultFolderMap()
	assert.Equal(t, []int{-1, 0, 1}, m.Dims())

	m["weird"] = []string{"x"}
	assert.Equal(t, []int{-1, 0, 1}, m.Dims())
}

func TestFolderMap_Clone(t *testing.T) {
	m := DefaultFolderMap()
	clone := m.Clone()

	clone["0"][0] = "mutated"
	assert.Equal(t, "region", m["0"][0])
}
