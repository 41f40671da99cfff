package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/ganot/entreate/internal/domain/activity"
	"github.com/ganot/entreate/internal/domain/entry"
	"github.com/ganot/entreate/internal/domain/journal"
	"github.com/ganot/entreate/internal/publish"
	"github.com/stretchr/testify/require"
)

type entryStub struct {
	createFn  func(context.Context) (*entry.Entry, error)
	getFn     func(context.Context, string) (*entry.Entry, error)
	getByIDFn func(context.Context, entry.ID) (*entry.Entry, error)
	saveFn    func(context.Context, string, entry.SaveInput) (*entry.Entry, error)
	recentFn  func(context.Context, int, entry.Order) ([]entry.Entry, error)
}

func (s entryStub) Create(ctx context.Context) (*entry.Entry, error) {
	return s.createFn(ctx)
}
func (s entryStub) Get(ctx context.Context, path string) (*entry.Entry, error) {
	return s.getFn(ctx, path)
}
func (s entryStub) GetByID(ctx context.Context, id entry.ID) (*entry.Entry, error) {
	return s.getByIDFn(ctx, id)
}
func (s entryStub) Save(ctx context.Context, path string, in entry.SaveInput) (*entry.Entry, error) {
	return s.saveFn(ctx, path, in)
}
func (s entryStub) Recent(ctx context.Context, limit int, order entry.Order) ([]entry.Entry, error) {
	return s.recentFn(ctx, limit, order)
}

type tagStub struct {
	tagsFn   func(context.Context) ([]string, error)
	createFn func(context.Context, string) ([]string, error)
}

func (s tagStub) Tags(ctx context.Context) ([]string, error) {
	return s.tagsFn(ctx)
}
func (s tagStub) CreateTag(ctx context.Context, name string) ([]string, error) {
	return s.createFn(ctx, name)
}

type publishStub struct {
	publishFn func(context.Context) (*publish.Result, error)
}

func (s publishStub) Publish(ctx context.Context) (*publish.Result, error) {
	return s.publishFn(ctx)
}

type activityStub struct {
	listFn func(context.Context, string, activity.ListActivityOptions) ([]activity.ActivityEntry, error)
}

func (s activityStub) GetRecentActivity(ctx context.Context, journalID string, opts activity.ListActivityOptions) ([]activity.ActivityEntry, error) {
	return s.listFn(ctx, journalID, opts)
}

func sampleEntry(id int64, path string) *entry.Entry {
	meta := entry.NewMeta(id, time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC))
	return &entry.Entry{Ref: entry.Ref{ID: id, Path: path}, Meta: meta}
}

func stubServices() Services {
	return Services{
		Entries: entryStub{
			createFn: func(context.Context) (*entry.Entry, error) {
				return sampleEntry(8, "8/"), nil
			},
			getFn: func(_ context.Context, path string) (*entry.Entry, error) {
				return sampleEntry(0, path), nil
			},
			getByIDFn: func(_ context.Context, id entry.ID) (*entry.Entry, error) {
				path, err := entry.ShardPath(id)
				if err != nil {
					return nil, err
				}
				return sampleEntry(id, path), nil
			},
			saveFn: func(_ context.Context, path string, in entry.SaveInput) (*entry.Entry, error) {
				e := sampleEntry(0, path)
				if in.Text != nil {
					e.Text = *in.Text
				}
				return e, nil
			},
			recentFn: func(context.Context, int, entry.Order) ([]entry.Entry, error) {
				return []entry.Entry{*sampleEntry(2, "2/"), *sampleEntry(1, "1/")}, nil
			},
		},
		Tags: tagStub{
			tagsFn: func(context.Context) ([]string, error) { return []string{"go"}, nil },
			createFn: func(_ context.Context, name string) ([]string, error) {
				return []string{"go", name}, nil
			},
		},
		Publisher: publishStub{publishFn: func(context.Context) (*publish.Result, error) {
			return &publish.Result{RunID: "run", Entries: 2}, nil
		}},
		Activity: activityStub{listFn: func(context.Context, string, activity.ListActivityOptions) ([]activity.ActivityEntry, error) {
			return []activity.ActivityEntry{{ActivityType: activity.TypeEntryCreated}}, nil
		}},
		Scope: "blog",
	}
}

func TestHandler_AllTools(t *testing.T) {
	ctx := context.Background()
	handler := NewHandler(stubServices())

	for _, def := range buildToolCatalog() {
		params := json.RawMessage(`{}`)
		switch def.Name {
		case "get_entry", "save_entry":
			params = mustJSON(t, map[string]any{"id": 8})
		case "create_tag":
			params = mustJSON(t, CreateTagParams{Name: "rust"})
		}
		_, err := handler.Handle(ctx, def.Name, params)
		require.NoError(t, err, def.Name)
	}
}

func TestHandler_CreateEntry(t *testing.T) {
	handler := NewHandler(stubServices())

	result, err := handler.Handle(context.Background(), "create_entry", nil)
	require.NoError(t, err)
	resp, ok := result.(EntryResponse)
	require.True(t, ok)
	require.Equal(t, int64(8), resp.ID)
	require.Equal(t, "8/", resp.Path)
	require.Equal(t, entry.DefaultTitle, resp.Meta.Title)
}

func TestHandler_SaveByIDUsesShardPath(t *testing.T) {
	var gotPath string
	var gotIn entry.SaveInput
	svc := stubServices()
	svc.Entries = entryStub{saveFn: func(_ context.Context, path string, in entry.SaveInput) (*entry.Entry, error) {
		gotPath, gotIn = path, in
		return sampleEntry(1234, path), nil
	}}
	handler := NewHandler(svc)

	_, err := handler.Handle(context.Background(), "save_entry", json.RawMessage(`{"id": 1234, "text": "hello", "visibility": "public"}`))
	require.NoError(t, err)
	require.Equal(t, "234/1/", gotPath)
	require.Equal(t, "hello", *gotIn.Text)
	require.Equal(t, entry.VisibilityPublic, *gotIn.Visibility)
	require.Nil(t, gotIn.Title)
}

func TestHandler_GetPrefersPath(t *testing.T) {
	var gotPath string
	svc := stubServices()
	svc.Entries = entryStub{getFn: func(_ context.Context, path string) (*entry.Entry, error) {
		gotPath = path
		return sampleEntry(0, path), nil
	}}
	handler := NewHandler(svc)

	_, err := handler.Handle(context.Background(), "get_entry", json.RawMessage(`{"id": 3, "path": "2021-01/2021-01-02T03:04:05/"}`))
	require.NoError(t, err)
	require.Equal(t, "2021-01/2021-01-02T03:04:05/", gotPath)
}

func TestHandler_ListEntries(t *testing.T) {
	var gotLimit int
	var gotOrder entry.Order
	svc := stubServices()
	svc.Entries = entryStub{recentFn: func(_ context.Context, limit int, order entry.Order) ([]entry.Entry, error) {
		gotLimit, gotOrder = limit, order
		return []entry.Entry{*sampleEntry(1, "1/")}, nil
	}}
	handler := NewHandler(svc)

	result, err := handler.Handle(context.Background(), "list_entries", mustJSON(t, ListEntriesParams{Limit: 5, Order: "asc"}))
	require.NoError(t, err)
	require.Equal(t, 5, gotLimit)
	require.Equal(t, entry.OrderAscending, gotOrder)
	require.Len(t, result.(ListEntriesResponse).Entries, 1)

	_, err = handler.Handle(context.Background(), "list_entries", mustJSON(t, ListEntriesParams{Order: "sideways"}))
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, CodeInvalidInput, apiErr.Code)
}

func TestHandler_ActivityFilters(t *testing.T) {
	var gotScope string
	var gotOpts activity.ListActivityOptions
	svc := stubServices()
	svc.Activity = activityStub{listFn: func(_ context.Context, scope string, opts activity.ListActivityOptions) ([]activity.ActivityEntry, error) {
		gotScope, gotOpts = scope, opts
		return nil, nil
	}}
	handler := NewHandler(svc)

	_, err := handler.Handle(context.Background(), "get_recent_activity", mustJSON(t, GetRecentActivityParams{EntryPath: "8/", Type: "entry_saved", Limit: 3}))
	require.NoError(t, err)
	require.Equal(t, "blog", gotScope)
	require.Equal(t, "8/", gotOpts.EntryPath)
	require.Equal(t, activity.TypeEntrySaved, *gotOpts.ActivityType)
	require.Equal(t, 3, gotOpts.Limit)
}

func TestHandler_ErrorMapping(t *testing.T) {
	collision := fmt.Errorf("reserving 8/: %w", entry.ErrCollision)
	tests := []struct {
		name string
		err  error
		code string
	}{
		{name: "auth", err: fmt.Errorf("listing: %w", entry.ErrAuthRequired), code: CodeAuthRequired},
		{name: "journal auth", err: journal.ErrAuthRequired, code: CodeAuthRequired},
		{name: "not found", err: entry.ErrEntryNotFound, code: CodeEntryNotFound},
		{name: "collision", err: collision, code: CodeCollision},
		{name: "exhausted", err: fmt.Errorf("%w after %d attempts: %w", entry.ErrTooManyIterations, 3, collision), code: CodeExhausted},
		{name: "tag exists", err: journal.ErrTagExists, code: CodeTagExists},
		{name: "bad record", err: journal.ErrInvalidRecord, code: CodeInvalidRecord},
		{name: "bad path", err: entry.ErrInvalidPath, code: CodeInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := stubServices()
			svc.Entries = entryStub{createFn: func(context.Context) (*entry.Entry, error) { return nil, tt.err }}
			_, err := NewHandler(svc).Handle(context.Background(), "create_entry", nil)

			var apiErr *APIError
			require.ErrorAs(t, err, &apiErr)
			require.Equal(t, tt.code, apiErr.Code)
			require.ErrorIs(t, err, tt.err)
		})
	}
}

func TestHandler_UncodedErrorPassesThrough(t *testing.T) {
	boom := errors.New("boom")
	svc := stubServices()
	svc.Tags = tagStub{tagsFn: func(context.Context) ([]string, error) { return nil, boom }}

	_, err := NewHandler(svc).Handle(context.Background(), "list_tags", nil)
	require.ErrorIs(t, err, boom)
	var apiErr *APIError
	require.False(t, errors.As(err, &apiErr))
}

func TestHandler_BadParams(t *testing.T) {
	handler := NewHandler(stubServices())
	ctx := context.Background()

	_, err := handler.Handle(ctx, "create_tag", json.RawMessage(`{"name": 3}`))
	require.ErrorIs(t, err, ErrInvalidParams)

	_, err = handler.Handle(ctx, "get_entry", json.RawMessage(`{}`))
	require.ErrorIs(t, err, ErrInvalidParams)

	_, err = handler.Handle(ctx, "delete_everything", nil)
	require.ErrorIs(t, err, ErrUnknownMethod)
}

func mustJSON(t *testing.T, v any) json.RawMessage {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return data
}
