package gemdrive

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ganot/entreate/internal/domain/journal"
)

const dbFile = "db.json"

// JournalRepository implements journal.Repository as a db.json file.
type JournalRepository struct {
	dir *Dir
}

// NewJournalRepository stores db.json in dir.
func NewJournalRepository(dir *Dir) *JournalRepository {
	return &JournalRepository{dir: dir}
}

// Get reads and decodes db.json.
func (r *JournalRepository) Get(ctx context.Context) (*journal.DB, error) {
	data, err := r.dir.ReadFile(ctx, dbFile)
	if err != nil {
		return nil, err
	}
	var db journal.DB
	if err := json.Unmarshal(data, &db); err != nil {
		return nil, fmt.Errorf("%w: decoding %s: %v", journal.ErrInvalidRecord, dbFile, err)
	}
	return &db, nil
}

// Create writes db.json unless it already exists.
func (r *JournalRepository) Create(ctx context.Context, db *journal.DB) error {
	return r.write(ctx, db, false)
}

// Put overwrites db.json.
func (r *JournalRepository) Put(ctx context.Context, db *journal.DB) error {
	return r.write(ctx, db, true)
}

func (r *JournalRepository) write(ctx context.Context, db *journal.DB, overwrite bool) error {
	data, err := json.MarshalIndent(db, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding %s: %w", dbFile, err)
	}
	return r.dir.WriteFile(ctx, dbFile, data, overwrite)
}
