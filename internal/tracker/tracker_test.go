package tracker

import (
	"path/filepath"
	"testing"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minecart-tools/regionsync/internal/region"
)

func newTestTracker(t *testing.T) *Tracker {
	t.Helper()
	store := NewStore(filepath.Join(t.TempDir(), "protected-regions.json"))
	trk, err := New(store)
	require.NoError(t, err)
	return trk
}

// disjoint asserts the core invariant: pending and protected never overlap.
func disjoint(t *testing.T, trk *Tracker) {
	t.Helper()
	pending := mapset.NewSet(trk.Pending()...)
	protected := mapset.NewSet(trk.Protected()...)
	assert.Equal(t, 0, pending.Intersect(protected).Cardinality())
}

func TestAddPending(t *testing.T) {
	trk := newTestTracker(t)
	r := region.New(1, -2, 0)

	require.NoError(t, trk.AddPending(r))
	assert.Equal(t, []region.Region{r}, trk.Pending())

	// second add signals "already present" and leaves exactly one copy
	err := trk.AddPending(r)
	assert.ErrorIs(t, err, ErrAlreadyPending)
	assert.Equal(t, []region.Region{r}, trk.Pending())
}

func TestAddPending_KeepsInsertionOrder(t *testing.T) {
	trk := newTestTracker(t)
	a, b, c := region.New(0, 0, 0), region.New(1, 0, 0), region.New(-5, 3, 1)

	require.NoError(t, trk.AddPending(a))
	require.NoError(t, trk.AddPending(b))
	require.NoError(t, trk.AddPending(c))

	assert.Equal(t, []region.Region{a, b, c}, trk.Pending())

	require.NoError(t, trk.RemovePending(b))
	assert.Equal(t, []region.Region{a, c}, trk.Pending())
}

func TestAddPending_RejectsProtected(t *testing.T) {
	trk := newTestTracker(t)
	r := region.New(4, 4, -1)

	_, err := trk.Protect(r)
	require.NoError(t, err)

	err = trk.AddPending(r)
	assert.ErrorIs(t, err, ErrRegionProtected)
	assert.Empty(t, trk.Pending())
	disjoint(t, trk)
}

func TestRemovePending_Absent(t *testing.T) {
	trk := newTestTracker(t)
	err := trk.RemovePending(region.New(9, 9, 0))
	assert.ErrorIs(t, err, ErrNotPending)
}

func TestClearPending(t *testing.T) {
	trk := newTestTracker(t)
	require.NoError(t, trk.AddPending(region.New(1, 1, 0)))
	require.NoError(t, trk.AddPending(region.New(2, 2, 0)))

	trk.ClearPending()
	assert.Empty(t, trk.Pending())
	assert.Equal(t, 0, trk.PendingCount())

	// cleared regions can be queued again
	assert.NoError(t, trk.AddPending(region.New(1, 1, 0)))
}

func TestProtect_RemovesFromPendingAndPersists(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "protected-regions.json"))
	trk, err := New(store)
	require.NoError(t, err)

	r := region.New(1, -2, 0)
	require.NoError(t, trk.AddPending(r))

	removed, err := trk.Protect(r)
	require.NoError(t, err)
	assert.True(t, removed)
	assert.Empty(t, trk.Pending())
	assert.Equal(t, []region.Region{r}, trk.Protected())
	disjoint(t, trk)

	// persisted copy equals the in-memory one
	persisted, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, trk.Protected(), persisted)
}

func TestProtect_NotPendingSignalsNoRemoval(t *testing.T) {
	trk := newTestTracker(t)

	removed, err := trk.Protect(region.New(7, 7, 1))
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestProtect_AlreadyProtected(t *testing.T) {
	trk := newTestTracker(t)
	r := region.New(7, 7, 1)

	_, err := trk.Protect(r)
	require.NoError(t, err)

	_, err = trk.Protect(r)
	assert.ErrorIs(t, err, ErrAlreadyProtected)
	assert.Len(t, trk.Protected(), 1)
}

func TestDeprotect(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "protected-regions.json"))
	trk, err := New(store)
	require.NoError(t, err)

	a, b := region.New(1, 1, 0), region.New(2, 2, 0)
	_, err = trk.Protect(a)
	require.NoError(t, err)
	_, err = trk.Protect(b)
	require.NoError(t, err)

	require.NoError(t, trk.Deprotect(a))
	assert.Equal(t, []region.Region{b}, trk.Protected())

	persisted, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, []region.Region{b}, persisted)

	assert.ErrorIs(t, trk.Deprotect(a), ErrNotProtected)
}

func TestDeprotectAll(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "protected-regions.json"))
	trk, err := New(store)
	require.NoError(t, err)

	_, err = trk.Protect(region.New(1, 1, 0))
	require.NoError(t, err)
	_, err = trk.Protect(region.New(2, 2, 0))
	require.NoError(t, err)

	require.NoError(t, trk.DeprotectAll())
	assert.Empty(t, trk.Protected())

	persisted, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, persisted)
}

func TestNew_RestoresPersistedProtectedSet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "protected-regions.json")
	store := NewStore(path)

	first, err := New(store)
	require.NoError(t, err)
	_, err = first.Protect(region.New(3, 3, -1))
	require.NoError(t, err)
	_, err = first.Protect(region.New(4, 4, 0))
	require.NoError(t, err)

	// a fresh tracker over the same store sees the same protected set
	second, err := New(NewStore(path))
	require.NoError(t, err)
	assert.Equal(t, first.Protected(), second.Protected())

	// and still rejects queuing those regions
	assert.ErrorIs(t, second.AddPending(region.New(3, 3, -1)), ErrRegionProtected)
}

func TestListReturnsCopies(t *testing.T) {
	trk := newTestTracker(t)
	require.NoError(t, trk.AddPending(region.New(1, 1, 0)))

	listed := trk.Pending()
	listed[0] = region.New(9, 9, 0)

	assert.Equal(t, []region.Region{region.New(1, 1, 0)}, trk.Pending())
}
