package entry

import (
	"context"
	"errors"
	"iter"
	"slices"
	"strings"
	"sync/atomic"

	"github.com/ganot/entreate/internal/repository"
)

// Walker enumerates entries of a date-bucketed layout by listing one
// directory level at a time.
type Walker struct {
	store Store
	depth int
	cmp   Comparator
}

// NewWalker creates a walker descending depth levels below the entries dir.
// A nil cmp keeps listing order.
func NewWalker(store Store, depth int, cmp Comparator) *Walker {
	return &Walker{store: store, depth: depth, cmp: cmp}
}

// Entries returns a lazy, single-use sequence of entry refs. Each directory
// is listed only when the walk reaches it, and stopping the range stops the
// listings. A missing directory contributes no entries; a refused listing
// yields ErrAuthRequired and ends the sequence.
func (w *Walker) Entries(ctx context.Context) iter.Seq2[Ref, error] {
	return singleUse(func(yield func(Ref, error) bool) {
		if w.depth < 1 {
			yield(Ref{}, ErrUnsupportedLayout)
			return
		}
		w.walk(ctx, "", 1, yield)
	})
}

func (w *Walker) walk(ctx context.Context, dir string, level int, yield func(Ref, error) bool) bool {
	if err := ctx.Err(); err != nil {
		yield(Ref{}, err)
		return false
	}

	names, err := w.store.ListDir(ctx, dir)
	if errors.Is(err, repository.ErrNotFound) {
		return true
	}
	if err != nil {
		yield(Ref{}, mapStoreError("listing "+displayDir(dir), err))
		return false
	}

	dirs := slices.DeleteFunc(slices.Clone(names), func(n string) bool {
		return !strings.HasSuffix(n, "/")
	})
	if w.cmp != nil {
		slices.SortStableFunc(dirs, w.cmp)
	}

	for _, d := range dirs {
		path := dir + d
		if level == w.depth {
			if !yield(Ref{Path: path}, nil) {
				return false
			}
			continue
		}
		if !w.walk(ctx, path, level+1, yield) {
			return false
		}
	}
	return true
}

// FlatEntries returns a lazy, single-use sequence over the sequential layout.
// The db record is read once, when iteration starts, and ids are produced
// from lastId down to 1 (or 1 up to lastId when ascending) without any
// listing. Ids whose directory is missing are still produced.
func FlatEntries(ctx context.Context, journal Journal, order Order) iter.Seq2[Ref, error] {
	return singleUse(func(yield func(Ref, error) bool) {
		db, err := journal.Load(ctx)
		if err != nil {
			yield(Ref{}, mapStoreError("reading last id", err))
			return
		}

		next := func(i int64) (ID, bool) {
			if order == OrderAscending {
				return i + 1, i+1 <= db.LastID
			}
			return db.LastID - i, db.LastID-i >= 1
		}
		for i := int64(0); ; i++ {
			id, ok := next(i)
			if !ok {
				return
			}
			if err := ctx.Err(); err != nil {
				yield(Ref{}, err)
				return
			}
			path, err := ShardPath(id)
			if err != nil {
				yield(Ref{}, err)
				return
			}
			if !yield(Ref{ID: id, Path: path}, nil) {
				return
			}
		}
	})
}

func singleUse(seq iter.Seq2[Ref, error]) iter.Seq2[Ref, error] {
	var used atomic.Bool
	return func(yield func(Ref, error) bool) {
		if used.Swap(true) {
			yield(Ref{}, ErrIteratorConsumed)
			return
		}
		seq(yield)
	}
}

func displayDir(dir string) string {
	if dir == "" {
		return "entries dir"
	}
	return dir
}
