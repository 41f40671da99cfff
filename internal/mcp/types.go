package mcp

import (
	"time"

	"github.com/ganot/entreate/internal/domain/activity"
	"github.com/ganot/entreate/internal/domain/entry"
)

// ToolDefinition describes a callable tool.
type ToolDefinition struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	InputSchema map[string]any `json:"inputSchema"`
}

// EntryLocator names an entry by id or by path.
type EntryLocator struct {
	ID   int64  `json:"id,omitempty"`
	Path string `json:"path,omitempty"`
}

type GetEntryParams struct {
	EntryLocator
}

type SaveEntryParams struct {
	EntryLocator
	Text       *string  `json:"text,omitempty"`
	Title      *string  `json:"title,omitempty"`
	Tags       []string `json:"tags,omitempty"`
	Visibility *string  `json:"visibility,omitempty"`
	URLName    *string  `json:"url_name,omitempty"`
}

type ListEntriesParams struct {
	Limit int    `json:"limit,omitempty"`
	Order string `json:"order,omitempty"`
}

type CreateTagParams struct {
	Name string `json:"name"`
}

type GetRecentActivityParams struct {
	EntryPath string `json:"entry_path,omitempty"`
	Type      string `json:"type,omitempty"`
	Limit     int    `json:"limit,omitempty"`
	Offset    int    `json:"offset,omitempty"`
}

// EntryResponse is a full entry.
type EntryResponse struct {
	ID   int64      `json:"id,omitempty"`
	Path string     `json:"path"`
	Meta entry.Meta `json:"meta"`
	Text string     `json:"text"`
}

// EntrySummary is an entry without its text.
type EntrySummary struct {
	ID         int64            `json:"id,omitempty"`
	Path       string           `json:"path"`
	Title      string           `json:"title"`
	Tags       []string         `json:"tags"`
	Timestamp  time.Time        `json:"timestamp"`
	Visibility entry.Visibility `json:"visibility"`
}

type ListEntriesResponse struct {
	Entries []EntrySummary `json:"entries"`
}

type TagsResponse struct {
	Tags []string `json:"tags"`
}

type ActivityResponse struct {
	Entries []activity.ActivityEntry `json:"entries"`
}

func entryResponse(e *entry.Entry) EntryResponse {
	return EntryResponse{ID: e.ID, Path: e.Path, Meta: e.Meta, Text: e.Text}
}

func entrySummary(e entry.Entry) EntrySummary {
	return EntrySummary{
		ID:         e.ID,
		Path:       e.Path,
		Title:      e.Meta.Title,
		Tags:       e.Meta.Tags,
		Timestamp:  e.Meta.Timestamp,
		Visibility: e.Meta.Visibility,
	}
}
