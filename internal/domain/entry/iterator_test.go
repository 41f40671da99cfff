package entry_test

import (
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/ganot/entreate/internal/domain/entry"
	"github.com/ganot/entreate/internal/domain/journal"
	"github.com/ganot/entreate/internal/repository"
	"github.com/stretchr/testify/require"
)

func archiveFixture() *memStore {
	return newMemStore(
		"2021/01/02/2021-01-02T03:04:05/",
		"2021/12/31/2021-12-31T22:00:00/",
		"2021/12/31/2021-12-31T23:00:00/",
		"2022/03/04/2022-03-04T05:06:07/",
	)
}

func collect(t *testing.T, seq func(func(entry.Ref, error) bool)) []string {
	t.Helper()
	var paths []string
	for ref, err := range seq {
		require.NoError(t, err)
		paths = append(paths, ref.Path)
	}
	return paths
}

func TestWalker_Descending(t *testing.T) {
	store := archiveFixture()
	w := entry.NewWalker(store, 4, entry.Descending(entry.NaturalOrder()))

	got := collect(t, w.Entries(context.Background()))
	require.Equal(t, []string{
		"2022/03/04/2022-03-04T05:06:07/",
		"2021/12/31/2021-12-31T23:00:00/",
		"2021/12/31/2021-12-31T22:00:00/",
		"2021/01/02/2021-01-02T03:04:05/",
	}, got)
}

func TestWalker_Deterministic(t *testing.T) {
	store := archiveFixture()
	w := entry.NewWalker(store, 4, entry.NaturalOrder())
	first := collect(t, w.Entries(context.Background()))
	second := collect(t, w.Entries(context.Background()))
	require.Equal(t, first, second)
	require.Len(t, first, 4)
}

func TestWalker_StopsListingOnBreak(t *testing.T) {
	store := archiveFixture()
	w := entry.NewWalker(store, 4, entry.Descending(entry.NaturalOrder()))

	for ref, err := range w.Entries(context.Background()) {
		require.NoError(t, err)
		require.Equal(t, "2022/03/04/2022-03-04T05:06:07/", ref.Path)
		break
	}
	require.Equal(t, []string{"", "2022/", "2022/03/", "2022/03/04/"}, store.listed)
}

func TestWalker_NaturalOrder(t *testing.T) {
	store := newMemStore("10/", "9/", "2/", "100/")
	got := collect(t, entry.NewWalker(store, 1, entry.NaturalOrder()).Entries(context.Background()))
	require.Equal(t, []string{"2/", "9/", "10/", "100/"}, got)

	store = newMemStore("10/", "9/")
	got = collect(t, entry.NewWalker(store, 1, nil).Entries(context.Background()))
	require.Equal(t, []string{"10/", "9/"}, got, "nil comparator keeps listing order")
}

func TestWalker_SkipsFiles(t *testing.T) {
	store := newMemStore("2021-01/2021-01-02T03:04:05/")
	store.files["2021-01/notes.txt"] = []byte("x")
	store.files["README.md"] = []byte("x")

	got := collect(t, entry.NewWalker(store, 2, nil).Entries(context.Background()))
	require.Equal(t, []string{"2021-01/2021-01-02T03:04:05/"}, got)
}

func TestWalker_EmptyAndMissing(t *testing.T) {
	got := collect(t, entry.NewWalker(newMemStore(), 4, nil).Entries(context.Background()))
	require.Empty(t, got, "missing entries dir")

	store := newMemStore("2021/")
	store.dirs[""] = true
	got = collect(t, entry.NewWalker(store, 4, nil).Entries(context.Background()))
	require.Empty(t, got, "empty year")
}

func TestWalker_Forbidden(t *testing.T) {
	store := archiveFixture()
	store.forbid["2021/"] = true

	var paths []string
	var errs []error
	for ref, err := range entry.NewWalker(store, 4, entry.Descending(entry.NaturalOrder())).Entries(context.Background()) {
		if err != nil {
			errs = append(errs, err)
			continue
		}
		paths = append(paths, ref.Path)
	}
	require.Equal(t, []string{"2022/03/04/2022-03-04T05:06:07/"}, paths)
	require.Len(t, errs, 1)
	require.ErrorIs(t, errs[0], entry.ErrAuthRequired)
	require.False(t, errors.Is(errs[0], entry.ErrEntryNotFound))
}

func TestWalker_SingleUse(t *testing.T) {
	seq := entry.NewWalker(archiveFixture(), 4, nil).Entries(context.Background())
	for range seq {
	}
	for _, err := range seq {
		require.ErrorIs(t, err, entry.ErrIteratorConsumed)
	}
}

func TestWalker_Cancelled(t *testing.T) {
	store := archiveFixture()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	for _, err := range entry.NewWalker(store, 4, nil).Entries(ctx) {
		require.ErrorIs(t, err, context.Canceled)
	}
	require.Zero(t, store.listCount())
}

func TestFlatEntries(t *testing.T) {
	j := &memJournal{db: journal.DB{LastID: 3}}
	seq := entry.FlatEntries(context.Background(), j, entry.OrderDescending)
	require.Zero(t, j.loads, "nothing read before iteration")

	var ids []int64
	var paths []string
	for ref, err := range seq {
		require.NoError(t, err)
		ids = append(ids, ref.ID)
		paths = append(paths, ref.Path)
	}
	require.Equal(t, []int64{3, 2, 1}, ids)
	require.Equal(t, []string{"3/", "2/", "1/"}, paths)
	require.Equal(t, 1, j.loads)

	j = &memJournal{db: journal.DB{LastID: 1001}}
	ids = nil
	for ref, err := range entry.FlatEntries(context.Background(), j, entry.OrderAscending) {
		require.NoError(t, err)
		ids = append(ids, ref.ID)
		if ref.ID == 1001 {
			require.Equal(t, "001/1/", ref.Path)
		}
	}
	require.Len(t, ids, 1001)
	require.True(t, slices.IsSorted(ids))
}

func TestFlatEntries_Empty(t *testing.T) {
	j := &memJournal{}
	for range entry.FlatEntries(context.Background(), j, entry.OrderDescending) {
		t.Fatal("no entries expected")
	}
}

func TestFlatEntries_Break(t *testing.T) {
	j := &memJournal{db: journal.DB{LastID: 100}}
	n := 0
	for range entry.FlatEntries(context.Background(), j, entry.OrderDescending) {
		n++
		if n == 2 {
			break
		}
	}
	require.Equal(t, 2, n)
	require.Equal(t, 1, j.loads)
}

func TestFlatEntries_Forbidden(t *testing.T) {
	j := &memJournal{loadErr: repository.ErrForbidden}
	var errs []error
	for _, err := range entry.FlatEntries(context.Background(), j, entry.OrderDescending) {
		errs = append(errs, err)
	}
	require.Len(t, errs, 1)
	require.ErrorIs(t, errs[0], entry.ErrAuthRequired)
}
