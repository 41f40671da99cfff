package mocks

import (
	"context"

	"github.com/ganot/entreate/internal/domain/activity"
	"github.com/ganot/entreate/internal/domain/journal"
	"github.com/stretchr/testify/mock"
)

// JournalRepository is a mock for journal.Repository.
type JournalRepository struct {
	mock.Mock
}

func (m *JournalRepository) Get(ctx context.Context) (*journal.DB, error) {
	args := m.Called(ctx)
	if db, ok := args.Get(0).(*journal.DB); ok {
		return db, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *JournalRepository) Create(ctx context.Context, db *journal.DB) error {
	args := m.Called(ctx, db)
	return args.Error(0)
}

func (m *JournalRepository) Put(ctx context.Context, db *journal.DB) error {
	args := m.Called(ctx, db)
	return args.Error(0)
}

// EntryStore is a mock for entry.Store.
type EntryStore struct {
	mock.Mock
}

func (m *EntryStore) ListDir(ctx context.Context, dir string) ([]string, error) {
	args := m.Called(ctx, dir)
	if names, ok := args.Get(0).([]string); ok {
		return names, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *EntryStore) CreateDir(ctx context.Context, dir string) error {
	args := m.Called(ctx, dir)
	return args.Error(0)
}

func (m *EntryStore) ReadFile(ctx context.Context, path string) ([]byte, error) {
	args := m.Called(ctx, path)
	if data, ok := args.Get(0).([]byte); ok {
		return data, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *EntryStore) WriteFile(ctx context.Context, path string, data []byte, overwrite bool) error {
	args := m.Called(ctx, path, data, overwrite)
	return args.Error(0)
}

// ActivityRepository is a mock for activity.Repository.
type ActivityRepository struct {
	mock.Mock
}

func (m *ActivityRepository) Log(ctx context.Context, journalID string, entry *activity.ActivityEntry) error {
	args := m.Called(ctx, journalID, entry)
	return args.Error(0)
}

func (m *ActivityRepository) List(ctx context.Context, journalID string, opts activity.ListActivityOptions) ([]activity.ActivityEntry, error) {
	args := m.Called(ctx, journalID, opts)
	if list, ok := args.Get(0).([]activity.ActivityEntry); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}
