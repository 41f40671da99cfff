package journal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ganot/entreate/internal/domain/activity"
	"github.com/ganot/entreate/internal/repository"
)

// Service handles db record and tag operations.
type Service struct {
	repo       Repository
	activities ActivityRepository
	scope      string
	logger     *slog.Logger
}

// NewService creates a new journal service.
func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// WithActivity records tag creation in repo under scope.
func (s *Service) WithActivity(repo ActivityRepository, scope string) *Service {
	s.activities = repo
	s.scope = scope
	return s
}

// Load reads the db record, creating an empty one if the drive has none.
// Creation never overwrites: if another writer initialised the record first,
// theirs is read back.
func (s *Service) Load(ctx context.Context) (*DB, error) {
	db, err := s.repo.Get(ctx)
	if err == nil {
		return db, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, mapRepoError("loading db record", err)
	}

	empty := &DB{Tags: NewTags()}
	err = s.repo.Create(ctx, empty)
	if err == nil {
		if s.logger != nil {
			s.logger.Info("initialised db record")
		}
		return empty, nil
	}
	if !errors.Is(err, repository.ErrConflict) {
		return nil, mapRepoError("initialising db record", err)
	}

	db, err = s.repo.Get(ctx)
	if err != nil {
		return nil, mapRepoError("reloading db record", err)
	}
	return db, nil
}

// Save overwrites the db record.
func (s *Service) Save(ctx context.Context, db *DB) error {
	if db == nil || db.LastID < 0 {
		return ErrInvalidInput
	}
	if err := s.repo.Put(ctx, db); err != nil {
		return mapRepoError("saving db record", err)
	}
	return nil
}

// Tags returns the tag vocabulary.
func (s *Service) Tags(ctx context.Context) ([]string, error) {
	db, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}
	return db.Tags.Names(), nil
}

// CreateTag adds a tag to the vocabulary and returns the updated vocabulary.
func (s *Service) CreateTag(ctx context.Context, name string) ([]string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrInvalidInput
	}

	db, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}
	if !db.Tags.Add(name) {
		return nil, ErrTagExists
	}
	if err := s.Save(ctx, db); err != nil {
		return nil, err
	}
	s.recordTag(ctx, name)
	return db.Tags.Names(), nil
}

// SetTagIndex replaces the tag index with idx, keeping unindexed vocabulary tags.
func (s *Service) SetTagIndex(ctx context.Context, idx map[string][]int64) error {
	db, err := s.Load(ctx)
	if err != nil {
		return err
	}
	db.Tags.SetIndex(idx)
	return s.Save(ctx, db)
}

func (s *Service) recordTag(ctx context.Context, name string) {
	if s.activities == nil {
		return
	}
	err := s.activities.Log(ctx, s.scope, &activity.ActivityEntry{
		ActivityType: activity.TypeTagCreated,
		Summary:      "created tag " + name,
	})
	if err != nil && s.logger != nil {
		s.logger.Warn("activity log failed", "type", activity.TypeTagCreated, "error", err)
	}
}

func mapRepoError(op string, err error) error {
	if errors.Is(err, repository.ErrForbidden) {
		return fmt.Errorf("%s: %w: %w", op, ErrAuthRequired, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
