package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ganot/entreate/internal/domain/activity"
	"github.com/ganot/entreate/internal/domain/entry"
	"github.com/ganot/entreate/internal/publish"
)

// EntryService defines entry operations needed by MCP.
type EntryService interface {
	Create(ctx context.Context) (*entry.Entry, error)
	Get(ctx context.Context, path string) (*entry.Entry, error)
	GetByID(ctx context.Context, id entry.ID) (*entry.Entry, error)
	Save(ctx context.Context, path string, in entry.SaveInput) (*entry.Entry, error)
	Recent(ctx context.Context, limit int, order entry.Order) ([]entry.Entry, error)
}

// TagService defines tag vocabulary operations needed by MCP.
type TagService interface {
	Tags(ctx context.Context) ([]string, error)
	CreateTag(ctx context.Context, name string) ([]string, error)
}

// PublishService renders the site.
type PublishService interface {
	Publish(ctx context.Context) (*publish.Result, error)
}

// ActivityService defines activity operations needed by MCP.
type ActivityService interface {
	GetRecentActivity(ctx context.Context, journalID string, opts activity.ListActivityOptions) ([]activity.ActivityEntry, error)
}

// Services contains all domain services needed by MCP.
type Services struct {
	Entries   EntryService
	Tags      TagService
	Publisher PublishService
	Activity  ActivityService
	// Scope names the journal in activity queries.
	Scope string
}

// Handler dispatches tool calls to domain services.
type Handler struct {
	svc Services
}

// NewHandler creates a new MCP handler.
func NewHandler(svc Services) *Handler {
	return &Handler{svc: svc}
}

// Handle dispatches a tool call. Domain errors with a client-facing code
// come back as *APIError.
func (h *Handler) Handle(ctx context.Context, method string, params json.RawMessage) (any, error) {
	result, err := h.dispatch(ctx, method, params)
	if err != nil {
		return nil, mapError(err)
	}
	return result, nil
}

func (h *Handler) dispatch(ctx context.Context, method string, params json.RawMessage) (any, error) {
	switch method {
	case "create_entry":
		e, err := h.svc.Entries.Create(ctx)
		if err != nil {
			return nil, err
		}
		return entryResponse(e), nil
	case "get_entry":
		var req GetEntryParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		e, err := h.locate(ctx, req.EntryLocator)
		if err != nil {
			return nil, err
		}
		return entryResponse(e), nil
	case "save_entry":
		var req SaveEntryParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		path, err := h.path(req.EntryLocator)
		if err != nil {
			return nil, err
		}
		in := entry.SaveInput{
			Text:    req.Text,
			Title:   req.Title,
			Tags:    req.Tags,
			URLName: req.URLName,
		}
		if req.Visibility != nil {
			v := entry.Visibility(*req.Visibility)
			in.Visibility = &v
		}
		e, err := h.svc.Entries.Save(ctx, path, in)
		if err != nil {
			return nil, err
		}
		return entryResponse(e), nil
	case "list_entries":
		var req ListEntriesParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		order, err := entry.ParseOrder(req.Order)
		if err != nil {
			return nil, fmt.Errorf("%w: order %q", ErrInvalidParams, req.Order)
		}
		entries, err := h.svc.Entries.Recent(ctx, req.Limit, order)
		if err != nil {
			return nil, err
		}
		resp := ListEntriesResponse{Entries: make([]EntrySummary, 0, len(entries))}
		for _, e := range entries {
			resp.Entries = append(resp.Entries, entrySummary(e))
		}
		return resp, nil
	case "list_tags":
		tags, err := h.svc.Tags.Tags(ctx)
		if err != nil {
			return nil, err
		}
		return TagsResponse{Tags: tags}, nil
	case "create_tag":
		var req CreateTagParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		tags, err := h.svc.Tags.CreateTag(ctx, req.Name)
		if err != nil {
			return nil, err
		}
		return TagsResponse{Tags: tags}, nil
	case "publish":
		return h.svc.Publisher.Publish(ctx)
	case "get_recent_activity":
		var req GetRecentActivityParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		opts := activity.ListActivityOptions{
			EntryPath: req.EntryPath,
			Limit:     req.Limit,
			Offset:    req.Offset,
		}
		if req.Type != "" {
			typ := activity.ActivityType(req.Type)
			opts.ActivityType = &typ
		}
		entries, err := h.svc.Activity.GetRecentActivity(ctx, h.svc.Scope, opts)
		if err != nil {
			return nil, err
		}
		return ActivityResponse{Entries: entries}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownMethod, method)
	}
}

func (h *Handler) locate(ctx context.Context, loc EntryLocator) (*entry.Entry, error) {
	if loc.Path != "" {
		return h.svc.Entries.Get(ctx, loc.Path)
	}
	if loc.ID > 0 {
		return h.svc.Entries.GetByID(ctx, loc.ID)
	}
	return nil, fmt.Errorf("%w: id or path required", ErrInvalidParams)
}

func (h *Handler) path(loc EntryLocator) (string, error) {
	if loc.Path != "" {
		return loc.Path, nil
	}
	if loc.ID > 0 {
		return entry.ShardPath(loc.ID)
	}
	return "", fmt.Errorf("%w: id or path required", ErrInvalidParams)
}

func decodeParams(params json.RawMessage, out any) error {
	if len(params) == 0 || string(params) == "null" {
		return nil
	}
	if err := json.Unmarshal(params, out); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidParams, err)
	}
	return nil
}
