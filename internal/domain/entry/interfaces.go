package entry

import (
	"context"

	"github.com/ganot/entreate/internal/domain/activity"
	"github.com/ganot/entreate/internal/domain/journal"
)

// Store provides access to the entries directory of a drive. Paths are
// relative to that directory; directory paths end in "/" and "" is the
// entries directory itself.
type Store interface {
	// ListDir returns child names in listing order, directories suffixed with "/".
	ListDir(ctx context.Context, dir string) ([]string, error)
	// CreateDir creates dir and its ancestors, failing with
	// repository.ErrConflict if dir already exists.
	CreateDir(ctx context.Context, dir string) error
	ReadFile(ctx context.Context, path string) ([]byte, error)
	// WriteFile writes path. Without overwrite an existing file yields
	// repository.ErrConflict.
	WriteFile(ctx context.Context, path string, data []byte, overwrite bool) error
}

// Journal reads and writes the db record.
type Journal interface {
	Load(ctx context.Context) (*journal.DB, error)
	Save(ctx context.Context, db *journal.DB) error
}

// ActivityRepository records entry lifecycle events.
type ActivityRepository interface {
	Log(ctx context.Context, journalID string, entry *activity.ActivityEntry) error
}
