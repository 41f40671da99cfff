package journal_test

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/ganot/entreate/internal/domain/activity"
	"github.com/ganot/entreate/internal/domain/journal"
	"github.com/ganot/entreate/internal/repository"
	"github.com/ganot/entreate/internal/repository/mocks"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestJournalService_LoadExisting(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.JournalRepository{}
	repo.On("Get", ctx).Return(&journal.DB{LastID: 7, Tags: journal.NewTags("go")}, nil)

	svc := journal.NewService(repo, nil)
	db, err := svc.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(7), db.LastID)
	require.Equal(t, []string{"go"}, db.Tags.Names())
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestJournalService_LoadInitialisesMissingRecord(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.JournalRepository{}
	repo.On("Get", ctx).Return(nil, fmt.Errorf("db.json: %w", repository.ErrNotFound))
	repo.On("Create", ctx, mock.MatchedBy(func(db *journal.DB) bool { return db.LastID == 0 })).Return(nil)

	svc := journal.NewService(repo, nil)
	db, err := svc.Load(ctx)
	require.NoError(t, err)
	require.Zero(t, db.LastID)
	require.Empty(t, db.Tags.Names())
	repo.AssertExpectations(t)
}

func TestJournalService_LoadKeepsConcurrentInit(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.JournalRepository{}
	repo.On("Get", ctx).Return(nil, repository.ErrNotFound).Once()
	repo.On("Create", ctx, mock.Anything).Return(repository.ErrConflict)
	repo.On("Get", ctx).Return(&journal.DB{LastID: 3}, nil).Once()

	svc := journal.NewService(repo, nil)
	db, err := svc.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(3), db.LastID)
	repo.AssertExpectations(t)
}

func TestJournalService_LoadForbidden(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.JournalRepository{}
	repo.On("Get", ctx).Return(nil, repository.ErrForbidden)

	svc := journal.NewService(repo, nil)
	_, err := svc.Load(ctx)
	require.ErrorIs(t, err, journal.ErrAuthRequired)
	require.ErrorIs(t, err, repository.ErrForbidden)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestJournalService_Save(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.JournalRepository{}
	db := &journal.DB{LastID: 8}
	repo.On("Put", ctx, db).Return(nil)

	svc := journal.NewService(repo, nil)
	require.NoError(t, svc.Save(ctx, db))
	require.ErrorIs(t, svc.Save(ctx, nil), journal.ErrInvalidInput)
	require.ErrorIs(t, svc.Save(ctx, &journal.DB{LastID: -1}), journal.ErrInvalidInput)
	repo.AssertNumberOfCalls(t, "Put", 1)
}

func TestJournalService_CreateTag(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.JournalRepository{}
	repo.On("Get", ctx).Return(&journal.DB{LastID: 2, Tags: journal.NewTags("go")}, nil)
	repo.On("Put", ctx, mock.MatchedBy(func(db *journal.DB) bool {
		return db.LastID == 2 && db.Tags.Has("web")
	})).Return(nil)

	svc := journal.NewService(repo, nil)
	tags, err := svc.CreateTag(ctx, "  web ")
	require.NoError(t, err)
	require.Equal(t, []string{"go", "web"}, tags)

	_, err = svc.CreateTag(ctx, "go")
	require.ErrorIs(t, err, journal.ErrTagExists)

	_, err = svc.CreateTag(ctx, " ")
	require.ErrorIs(t, err, journal.ErrInvalidInput)
	repo.AssertNumberOfCalls(t, "Put", 1)
}

func TestJournalService_CreateTagRecordsActivity(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.JournalRepository{}
	repo.On("Get", ctx).Return(&journal.DB{Tags: journal.NewTags()}, nil)
	repo.On("Put", ctx, mock.Anything).Return(nil)

	activities := &mocks.ActivityRepository{}
	activities.On("Log", ctx, "blog", mock.MatchedBy(func(a *activity.ActivityEntry) bool {
		return a.ActivityType == activity.TypeTagCreated && a.Summary == "created tag travel"
	})).Return(nil)

	svc := journal.NewService(repo, nil).WithActivity(activities, "blog")
	_, err := svc.CreateTag(ctx, "travel")
	require.NoError(t, err)
	activities.AssertExpectations(t)
}

func TestJournalService_SetTagIndex(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.JournalRepository{}
	repo.On("Get", ctx).Return(&journal.DB{LastID: 3, Tags: journal.NewTags("go", "unused")}, nil)

	var saved *journal.DB
	repo.On("Put", ctx, mock.Anything).Run(func(args mock.Arguments) {
		saved = args.Get(1).(*journal.DB)
	}).Return(nil)

	svc := journal.NewService(repo, nil)
	require.NoError(t, svc.SetTagIndex(ctx, map[string][]int64{"go": {3, 1}}))
	require.Equal(t, map[string][]int64{"go": {3, 1}, "unused": {}}, saved.Tags.Index())
	require.Equal(t, []string{"go", "unused"}, saved.Tags.Names())
}

func TestDB_JSON(t *testing.T) {
	var db journal.DB
	require.NoError(t, json.Unmarshal([]byte(`{"lastId": 12, "tags": ["a", "b", "a"]}`), &db))
	require.Equal(t, int64(12), db.LastID)
	require.Equal(t, []string{"a", "b"}, db.Tags.Names())
	require.Nil(t, db.Tags.Index())

	out, err := json.Marshal(db)
	require.NoError(t, err)
	require.JSONEq(t, `{"lastId": 12, "tags": ["a", "b"]}`, string(out))

	require.NoError(t, json.Unmarshal([]byte(`{"lastId": 4, "tags": {"b": [4], "a": [1, 2]}}`), &db))
	require.Equal(t, []string{"a", "b"}, db.Tags.Names())
	require.Equal(t, []int64{1, 2}, db.Tags.Index()["a"])

	out, err = json.Marshal(db)
	require.NoError(t, err)
	require.JSONEq(t, `{"lastId": 4, "tags": {"a": [1, 2], "b": [4]}}`, string(out))

	var bare journal.DB
	require.NoError(t, json.Unmarshal([]byte(`{"lastId": 1}`), &bare))
	require.Empty(t, bare.Tags.Names())

	err = json.Unmarshal([]byte(`{"tags": 5}`), &bare)
	require.ErrorIs(t, err, journal.ErrInvalidRecord)
}
