package entry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"strings"
	"time"

	"github.com/ganot/entreate/internal/domain/activity"
	"github.com/ganot/entreate/internal/repository"
)

// Service handles entry allocation, reading, saving and enumeration.
type Service struct {
	store      Store
	journal    Journal
	activities ActivityRepository
	opts       Options
	logger     *slog.Logger
}

// NewService creates a new entry service. activities may be nil.
func NewService(store Store, journal Journal, activities ActivityRepository, opts Options, logger *slog.Logger) (*Service, error) {
	layout, err := ParseLayout(string(opts.Layout))
	if err != nil {
		return nil, err
	}
	opts.Layout = layout
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = defaultMaxAttempts
	}
	if opts.RecentLimit <= 0 {
		opts.RecentLimit = defaultRecentLimit
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Service{store: store, journal: journal, activities: activities, opts: opts, logger: logger}, nil
}

// Layout returns the configured layout.
func (s *Service) Layout() Layout {
	return s.opts.Layout
}

// EnsureEntriesDir creates the entries dir if the drive has none.
func (s *Service) EnsureEntriesDir(ctx context.Context) error {
	_, err := s.store.ListDir(ctx, "")
	if err == nil {
		return nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return mapStoreError("listing entries dir", err)
	}
	err = s.store.CreateDir(ctx, "")
	if err != nil && !errors.Is(err, repository.ErrConflict) {
		return mapStoreError("creating entries dir", err)
	}
	return nil
}

// Create allocates a new entry and writes its empty text and default meta.
func (s *Service) Create(ctx context.Context) (*Entry, error) {
	var (
		ref Ref
		err error
	)
	switch s.opts.Layout {
	case LayoutSequential:
		ref, err = s.allocateSequential(ctx)
	default:
		var alloc *DatedAllocator
		alloc, err = NewDatedAllocator(s.store, s.opts.Layout, s.opts.Now)
		if err == nil {
			ref, err = alloc.Allocate(ctx)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("allocating entry: %w", err)
	}

	meta := NewMeta(ref.ID, s.opts.Now())
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding meta: %w", err)
	}
	if err := s.store.WriteFile(ctx, ref.Path+textFile, []byte{}, false); err != nil {
		return nil, mapStoreError("writing "+ref.Path+textFile, err)
	}
	if err := s.store.WriteFile(ctx, ref.Path+metaFile, data, false); err != nil {
		return nil, mapStoreError("writing "+ref.Path+metaFile, err)
	}

	if s.logger != nil {
		s.logger.Info("entry created", "id", ref.ID, "path", ref.Path)
	}
	s.record(ctx, activity.TypeEntryCreated, ref, fmt.Sprintf("created entry %s", ref.Path))
	return &Entry{Ref: ref, Meta: meta}, nil
}

// allocateSequential reserves lastId+1, then records it as the new lastId.
// Each attempt re-reads the db record; a collision is retried only up to
// MaxAttempts, so an id whose directory exists without a matching lastId is
// reported rather than skipped.
func (s *Service) allocateSequential(ctx context.Context) (Ref, error) {
	alloc := NewSequentialAllocator(s.store)
	return Probe(ctx, s.opts.MaxAttempts, func(ctx context.Context, n int) (Ref, error) {
		db, err := s.journal.Load(ctx)
		if err != nil {
			return Ref{}, mapStoreError("reading last id", err)
		}
		ref, err := alloc.Reserve(ctx, db.LastID)
		if err != nil {
			if errors.Is(err, ErrCollision) {
				if s.logger != nil {
					s.logger.Warn("entry allocation collision", "last_id", db.LastID, "attempt", n+1)
				}
				s.record(ctx, activity.TypeAllocationCollision, Ref{ID: db.LastID + 1}, fmt.Sprintf("id %d already taken", db.LastID+1))
			}
			return Ref{}, err
		}
		db.LastID = ref.ID
		if err := s.journal.Save(ctx, db); err != nil {
			return Ref{}, fmt.Errorf("recording last id %d: %w", ref.ID, err)
		}
		return ref, nil
	})
}

// Get loads the entry at path.
func (s *Service) Get(ctx context.Context, path string) (*Entry, error) {
	path, err := cleanPath(path)
	if err != nil {
		return nil, err
	}

	metaData, err := s.store.ReadFile(ctx, path+metaFile)
	if err != nil {
		return nil, mapStoreError("reading "+path+metaFile, err)
	}
	var meta Meta
	if err := json.Unmarshal(metaData, &meta); err != nil {
		return nil, fmt.Errorf("%w: decoding %s: %v", ErrInvalidInput, path+metaFile, err)
	}
	meta.Normalize()

	text, err := s.store.ReadFile(ctx, path+textFile)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, mapStoreError("reading "+path+textFile, err)
	}

	ref := Ref{ID: meta.ID, Path: path}
	if id, err := ParseShardPath(path); err == nil {
		ref.ID = id
	}
	return &Entry{Ref: ref, Meta: meta, Text: string(text)}, nil
}

// GetByID loads a sequential entry by id.
func (s *Service) GetByID(ctx context.Context, id ID) (*Entry, error) {
	path, err := ShardPath(id)
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, path)
}

// Save applies editor changes to the entry at path, overwriting its files.
func (s *Service) Save(ctx context.Context, path string, in SaveInput) (*Entry, error) {
	if in.Visibility != nil && !in.Visibility.Valid() {
		return nil, fmt.Errorf("%w: visibility %q", ErrInvalidInput, *in.Visibility)
	}
	e, err := s.Get(ctx, path)
	if err != nil {
		return nil, err
	}

	if in.Title != nil {
		e.Meta.Title = *in.Title
	}
	if in.Tags != nil {
		e.Meta.Tags = in.Tags
	}
	if in.Visibility != nil {
		e.Meta.Visibility = *in.Visibility
	}
	if in.URLName != nil {
		e.Meta.URLName = strings.TrimSpace(*in.URLName)
	}
	if in.Text != nil {
		e.Text = *in.Text
	}
	e.Meta.Normalize()

	data, err := json.MarshalIndent(e.Meta, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding meta: %w", err)
	}
	if err := s.store.WriteFile(ctx, e.Path+textFile, []byte(e.Text), true); err != nil {
		return nil, mapStoreError("writing "+e.Path+textFile, err)
	}
	if err := s.store.WriteFile(ctx, e.Path+metaFile, data, true); err != nil {
		return nil, mapStoreError("writing "+e.Path+metaFile, err)
	}

	s.record(ctx, activity.TypeEntrySaved, e.Ref, fmt.Sprintf("saved %q", e.Meta.Title))
	return e, nil
}

// Iterate returns the entries of the configured layout as a lazy sequence.
func (s *Service) Iterate(ctx context.Context, order Order) iter.Seq2[Ref, error] {
	if s.opts.Layout == LayoutSequential {
		return FlatEntries(ctx, s.journal, order)
	}
	return NewWalker(s.store, s.opts.Layout.Depth(), order.comparator()).Entries(ctx)
}

// Recent loads up to limit entries in order. Entries whose files are missing
// are skipped.
func (s *Service) Recent(ctx context.Context, limit int, order Order) ([]Entry, error) {
	if limit <= 0 {
		limit = s.opts.RecentLimit
	}

	entries := make([]Entry, 0, limit)
	for ref, err := range s.Iterate(ctx, order) {
		if err != nil {
			return nil, err
		}
		e, err := s.Get(ctx, ref.Path)
		if errors.Is(err, ErrEntryNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		entries = append(entries, *e)
		if len(entries) == limit {
			break
		}
	}
	return entries, nil
}

func (s *Service) record(ctx context.Context, typ activity.ActivityType, ref Ref, summary string) {
	if s.activities == nil {
		return
	}
	a := &activity.ActivityEntry{
		ActivityType: typ,
		EntryPath:    ref.Path,
		Summary:      summary,
	}
	if ref.ID > 0 {
		id := ref.ID
		a.EntryID = &id
	}
	if err := s.activities.Log(ctx, s.opts.Scope, a); err != nil && s.logger != nil {
		s.logger.Warn("activity log failed", "type", typ, "error", err)
	}
}

func cleanPath(path string) (string, error) {
	path = strings.TrimPrefix(path, "/")
	if path == "" {
		return "", fmt.Errorf("%w: empty", ErrInvalidPath)
	}
	if !strings.HasSuffix(path, "/") {
		path += "/"
	}
	for _, seg := range strings.Split(strings.TrimSuffix(path, "/"), "/") {
		if seg == "" || seg == "." || seg == ".." {
			return "", fmt.Errorf("%w: %q", ErrInvalidPath, path)
		}
	}
	return path, nil
}
