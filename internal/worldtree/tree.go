// Package worldtree wraps the source and destination world directories a sync
// batch reads from and writes into.
package worldtree

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	"github.com/minecart-tools/regionsync/internal/utils"
)

const lockFileName = ".regionsync.lock"

// ErrTreeLocked means another daemon already serves this world tree.
var ErrTreeLocked = errors.New("world tree locked by another process")

// Tree is a world directory root. Destination trees are additionally lockable
// so that at most one daemon manages a served world.
type Tree struct {
	Root string

	flock *flock.Flock
}

func New(root string) (*Tree, error) {
	resolved, err := utils.ResolvePath(root)
	if err != nil {
		return nil, fmt.Errorf("resolve world root %q: %w", root, err)
	}

	return &Tree{
		Root:  resolved,
		flock: flock.New(filepath.Join(resolved, lockFileName)),
	}, nil
}

// Abs returns the absolute path of a world-relative file.
func (t *Tree) Abs(rel string) string {
	return filepath.Join(t.Root, rel)
}

// Exists reports whether a world-relative file exists.
func (t *Tree) Exists(rel string) bool {
	return utils.FileExists(t.Abs(rel))
}

// Lock claims the tree for this process. Returns ErrTreeLocked if another
// process holds it.
func (t *Tree) Lock() error {
	if err := utils.EnsureDir(t.Root); err != nil {
		return fmt.Errorf("create world root %s: %w", t.Root, err)
	}

	locked, err := t.flock.TryLock()
	if err != nil {
		return fmt.Errorf("lock world tree: %w", err)
	}
	if !locked {
		return ErrTreeLocked
	}

	return nil
}

// Unlock releases the tree lock and removes the lock file. Safe to call when
// this process never held the lock.
func (t *Tree) Unlock() error {
	if !t.flock.Locked() {
		return nil
	}

	if err := t.flock.Unlock(); err != nil {
		return fmt.Errorf("unlock world tree: %w", err)
	}

	return os.Remove(t.flock.Path())
}
