package entry

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"time"

	"github.com/ganot/entreate/internal/repository"
)

// maxNameCandidates bounds the dated allocator's name_N suffixes.
const maxNameCandidates = 999

// SequentialAllocator reserves digit-sharded entry directories.
type SequentialAllocator struct {
	store Store
}

// NewSequentialAllocator creates an allocator over store.
func NewSequentialAllocator(store Store) *SequentialAllocator {
	return &SequentialAllocator{store: store}
}

// Reserve claims the directory of id lastID+1. It fails with ErrCollision if
// the directory already exists; the id is never skipped.
func (a *SequentialAllocator) Reserve(ctx context.Context, lastID ID) (Ref, error) {
	if lastID < 0 {
		return Ref{}, fmt.Errorf("%w: last id %d", ErrInvalidID, lastID)
	}
	id := lastID + 1
	path, err := ShardPath(id)
	if err != nil {
		return Ref{}, err
	}
	if err := a.store.CreateDir(ctx, path); err != nil {
		return Ref{}, mapStoreError(fmt.Sprintf("reserving entry %d", id), err)
	}
	return Ref{ID: id, Path: path}, nil
}

// DatedAllocator reserves entry directories named by creation time inside a
// date bucket.
type DatedAllocator struct {
	store  Store
	layout Layout
	now    func() time.Time
}

// NewDatedAllocator creates an allocator for the dated or archive layout.
func NewDatedAllocator(store Store, layout Layout, now func() time.Time) (*DatedAllocator, error) {
	if layout != LayoutDated && layout != LayoutArchive {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedLayout, layout)
	}
	if now == nil {
		now = time.Now
	}
	return &DatedAllocator{store: store, layout: layout, now: now}, nil
}

// Allocate reserves the first free name of the form T, T_2, ... T_999 where T
// is the current UTC time to the second. Names present in the bucket listing
// are passed over without a request.
func (a *DatedAllocator) Allocate(ctx context.Context) (Ref, error) {
	now := a.now().UTC()
	bucket := a.layout.bucket(now)
	base := now.Format(nameLayout)

	taken, err := a.store.ListDir(ctx, bucket)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return Ref{}, mapStoreError("listing "+bucket, err)
	}

	return Probe(ctx, maxNameCandidates, func(ctx context.Context, n int) (Ref, error) {
		name := candidateName(base, n)
		if slices.Contains(taken, name) {
			return Ref{}, fmt.Errorf("%w: %s", ErrCollision, name)
		}
		path := bucket + name
		if err := a.store.CreateDir(ctx, path); err != nil {
			return Ref{}, mapStoreError("reserving "+path, err)
		}
		return Ref{Path: path}, nil
	})
}

const nameLayout = "2006-01-02T15:04:05"

func candidateName(base string, n int) string {
	if n == 0 {
		return base + "/"
	}
	return base + "_" + strconv.Itoa(n+1) + "/"
}

func mapStoreError(op string, err error) error {
	switch {
	case errors.Is(err, repository.ErrForbidden):
		return fmt.Errorf("%s: %w: %w", op, ErrAuthRequired, err)
	case errors.Is(err, repository.ErrConflict):
		return fmt.Errorf("%s: %w: %w", op, ErrCollision, err)
	case errors.Is(err, repository.ErrNotFound):
		return fmt.Errorf("%s: %w: %w", op, ErrEntryNotFound, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
