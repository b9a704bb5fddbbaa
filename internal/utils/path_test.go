package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolvePath(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantError bool
	}{
		{
			name:      "empty path",
			input:     "",
			wantError: true,
		},
		{
			name:      "relative path",
			input:     "./world",
			wantError: false,
		},
		{
			name:      "absolute path",
			input:     "/tmp/world",
			wantError: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := ResolvePath(tt.input)
			if tt.wantError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, filepath.IsAbs(result), "ResolvePath(%q) = %q, want absolute", tt.input, result)
		})
	}
}

func TestEnsureDir(t *testing.T) {
	tmp := t.TempDir()
	nested := filepath.Join(tmp, "a", "b", "c")

	require.NoError(t, EnsureDir(nested))
	assert.True(t, DirExists(nested))

	// second call on an existing dir is a no-op
	require.NoError(t, EnsureDir(nested))
}

func TestFileExists(t *testing.T) {
	tmp := t.TempDir()
	path := filepath.Join(tmp, "r.0.0.mca")

	assert.False(t, FileExists(path))
	require.NoError(t, os.WriteFile(path, []byte("data"), 0o644))
	assert.True(t, FileExists(path))

	// a directory is not a file
	assert.False(t, FileExists(tmp))
	assert.True(t, DirExists(tmp))
}
