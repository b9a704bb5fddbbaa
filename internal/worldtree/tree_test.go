package worldtree

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTree_AbsExists(t *testing.T) {
	root := t.TempDir()
	tree, err := New(root)
	require.NoError(t, err)

	rel := filepath.Join("region", "r.0.0.mca")
	assert.False(t, tree.Exists(rel))

	require.NoError(t, os.MkdirAll(filepath.Join(root, "region"), 0o755))
	require.NoError(t, os.WriteFile(tree.Abs(rel), []byte("x"), 0o644))
	assert.True(t, tree.Exists(rel))
}

func TestTree_LockExcludesSecondHolder(t *testing.T) {
	root := t.TempDir()

	first, err := New(root)
	require.NoError(t, err)
	require.NoError(t, first.Lock())
	defer first.Unlock()

	second, err := New(root)
	require.NoError(t, err)
	err = second.Lock()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTreeLocked)
}

func TestTree_UnlockWithoutLockIsNoop(t *testing.T) {
	tree, err := New(t.TempDir())
	require.NoError(t, err)
	assert.NoError(t, tree.Unlock())
}

func TestTree_LockCreatesRoot(t *testing.T) {
	root := filepath.Join(t.TempDir(), "does", "not", "exist")
	tree, err := New(root)
	require.NoError(t, err)

	require.NoError(t, tree.Lock())
	defer tree.Unlock()
	assert.DirExists(t, root)
}
