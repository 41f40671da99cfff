package journal

import (
	"context"

	"github.com/ganot/entreate/internal/domain/activity"
)

// Repository persists the db record.
type Repository interface {
	// Get returns the stored record or repository.ErrNotFound.
	Get(ctx context.Context) (*DB, error)
	// Create writes a record only if none exists, else repository.ErrConflict.
	Create(ctx context.Context, db *DB) error
	// Put overwrites the stored record.
	Put(ctx context.Context, db *DB) error
}

// ActivityRepository records tag changes.
type ActivityRepository interface {
	Log(ctx context.Context, journalID string, entry *activity.ActivityEntry) error
}
