// Package tracker maintains the pending and protected region sets: ordered,
// unique, mutually exclusive, with the protected set persisted on every
// mutation.
package tracker

import (
	"errors"
	"sync"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/minecart-tools/regionsync/internal/region"
)

var (
	ErrAlreadyPending   = errors.New("region already pending")
	ErrRegionProtected  = errors.New("region is protected")
	ErrNotPending       = errors.New("region not pending")
	ErrAlreadyProtected = errors.New("region already protected")
	ErrNotProtected     = errors.New("region not protected")
)

// Tracker guards both sets with one mutex. Each set is an insertion-ordered
// slice paired with a membership index, so listing preserves order and
// membership checks stay O(1).
type Tracker struct {
	mu sync.Mutex

	pending    []region.Region
	pendingIdx mapset.Set[region.Region]

	protected    []region.Region
	protectedIdx mapset.Set[region.Region]

	store *Store
}

// New builds a tracker backed by store, restoring the persisted protected
// set. The pending set always starts empty.
func New(store *Store) (*Tracker, error) {
	t := &Tracker{
		pendingIdx:   mapset.NewThreadUnsafeSet[region.Region](),
		protectedIdx: mapset.NewThreadUnsafeSet[region.Region](),
		store:        store,
	}

	protected, err := store.Load()
	if err != nil {
		return nil, err
	}
	for _, r := range protected {
		if t.protectedIdx.Add(r) {
			t.protected = append(t.protected, r)
		}
	}

	return t, nil
}

// AddPending queues r for the next sync batch. Protected regions and
// duplicates are rejected.
func (t *Tracker) AddPending(r region.Region) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.pendingIdx.Contains(r) {
		return ErrAlreadyPending
	}
	if t.protectedIdx.Contains(r) {
		return ErrRegionProtected
	}

	t.pending = append(t.pending, r)
	t.pendingIdx.Add(r)
	return nil
}

func (t *Tracker) RemovePending(r region.Region) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.pendingIdx.Contains(r) {
		return ErrNotPending
	}

	t.removePendingLocked(r)
	return nil
}

func (t *Tracker) ClearPending() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.pending = nil
	t.pendingIdx.Clear()
}

// Protect exempts r from synchronization, removing it from pending if queued.
// Returns whether r was also removed from pending. The protected set is
// persisted before returning; a persistence failure keeps the in-memory
// mutation and surfaces the error.
func (t *Tracker) Protect(r region.Region) (removedFromPending bool, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.protectedIdx.Contains(r) {
		return false, ErrAlreadyProtected
	}

	t.protected = append(t.protected, r)
	t.protectedIdx.Add(r)

	if t.pendingIdx.Contains(r) {
		t.removePendingLocked(r)
		removedFromPending = true
	}

	return removedFromPending, t.saveLocked()
}

func (t *Tracker) Deprotect(r region.Region) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.protectedIdx.Contains(r) {
		return ErrNotProtected
	}

	for i, cur := range t.protected {
		if cur == r {
			t.protected = append(t.protected[:i], t.protected[i+1:]...)
			break
		}
	}
	t.protectedIdx.Remove(r)

	return t.saveLocked()
}

func (t *Tracker) DeprotectAll() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.protected = nil
	t.protectedIdx.Clear()

	return t.saveLocked()
}

// Pending returns a copy of the pending set in insertion order.
func (t *Tracker) Pending() []region.Region {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]region.Region(nil), t.pending...)
}

// Protected returns a copy of the protected set in insertion order.
func (t *Tracker) Protected() []region.Region {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]region.Region(nil), t.protected...)
}

func (t *Tracker) PendingCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.pending)
}

func (t *Tracker) removePendingLocked(r region.Region) {
	for i, cur := range t.pending {
		if cur == r {
			t.pending = append(t.pending[:i], t.pending[i+1:]...)
			break
		}
	}
	t.pendingIdx.Remove(r)
}

func (t *Tracker) saveLocked() error {
	return t.store.Save(append([]region.Region(nil), t.protected...))
}
