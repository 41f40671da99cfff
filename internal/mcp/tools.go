package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

var entryLocatorProps = map[string]any{
	"id": map[string]any{
		"type":        "integer",
		"description": "Entry id (sequential layout only)",
	},
	"path": map[string]any{
		"type":        "string",
		"description": "Entry path relative to entries/, e.g. 234/1/ or 2021-01/2021-01-02T03:04:05/",
	},
}

func withProps(base map[string]any, extra map[string]any) map[string]any {
	out := make(map[string]any, len(base)+len(extra))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range extra {
		out[k] = v
	}
	return out
}

// buildToolCatalog returns all available MCP tools
func buildToolCatalog() []ToolDefinition {
	return []ToolDefinition{
		// Entries
		{
			Name:        "create_entry",
			Description: "Allocate a new empty entry and return it",
			InputSchema: map[string]any{
				"type":       "object",
				"properties": map[string]any{},
			},
		},
		{
			Name:        "get_entry",
			Description: "Get an entry's text and metadata by id or path",
			InputSchema: map[string]any{
				"type":       "object",
				"properties": entryLocatorProps,
			},
		},
		{
			Name:        "save_entry",
			Description: "Update an entry's text and metadata. Omitted fields are left unchanged",
			InputSchema: map[string]any{
				"type": "object",
				"properties": withProps(entryLocatorProps, map[string]any{
					"text": map[string]any{
						"type":        "string",
						"description": "Markdown body",
					},
					"title": map[string]any{
						"type":        "string",
						"description": "Entry title",
					},
					"tags": map[string]any{
						"type":        "array",
						"description": "Replacement tag list",
						"items":       map[string]any{"type": "string"},
					},
					"visibility": map[string]any{
						"type":        "string",
						"description": "Who can see the entry",
						"enum":        []string{"private", "friends", "public"},
					},
					"url_name": map[string]any{
						"type":        "string",
						"description": "Slug used for the published page",
					},
				}),
			},
		},
		{
			Name:        "list_entries",
			Description: "List recent entries without their text",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"limit": map[string]any{
						"type":        "integer",
						"description": "Maximum number of entries",
					},
					"order": map[string]any{
						"type":        "string",
						"description": "desc (newest first, default) or asc",
						"enum":        []string{"desc", "asc"},
					},
				},
			},
		},

		// Tags
		{
			Name:        "list_tags",
			Description: "List the journal's tag vocabulary",
			InputSchema: map[string]any{
				"type":       "object",
				"properties": map[string]any{},
			},
		},
		{
			Name:        "create_tag",
			Description: "Add a tag to the journal's vocabulary",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"name": map[string]any{
						"type":        "string",
						"description": "Tag name",
					},
				},
				"required": []string{"name"},
			},
		},

		// Site
		{
			Name:        "publish",
			Description: "Render the journal to static HTML on the drive",
			InputSchema: map[string]any{
				"type":       "object",
				"properties": map[string]any{},
			},
		},

		// Activity
		{
			Name:        "get_recent_activity",
			Description: "Get recent activity for the journal or a specific entry",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"entry_path": map[string]any{
						"type":        "string",
						"description": "Entry path to filter by",
					},
					"type": map[string]any{
						"type":        "string",
						"description": "Activity type to filter by",
						"enum":        []string{"entry_created", "entry_saved", "allocation_collision", "tag_created", "published"},
					},
					"limit": map[string]any{
						"type":        "integer",
						"description": "Maximum number of activity entries",
					},
					"offset": map[string]any{
						"type":        "integer",
						"description": "Entries to skip",
					},
				},
			},
		},
	}
}

// registerTools adds every catalog tool to server, dispatching through handler.
func registerTools(server *sdkmcp.Server, handler *Handler) {
	for _, def := range buildToolCatalog() {
		name := def.Name
		server.AddTool(&sdkmcp.Tool{
			Name:        def.Name,
			Description: def.Description,
			InputSchema: def.InputSchema,
		}, func(ctx context.Context, req *sdkmcp.CallToolRequest) (*sdkmcp.CallToolResult, error) {
			var args json.RawMessage
			if req != nil && req.Params != nil {
				args = req.Params.Arguments
			}
			result, err := handler.Handle(ctx, name, args)
			if err != nil {
				return errorResult(err)
			}
			return jsonResult(result)
		})
	}
}

func jsonResult(v any) (*sdkmcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encoding result: %w", err)
	}
	return &sdkmcp.CallToolResult{
		Content: []sdkmcp.Content{&sdkmcp.TextContent{Text: string(data)}},
	}, nil
}

// errorResult reports coded domain errors as tool errors the model can act
// on. Anything else is a protocol error.
func errorResult(err error) (*sdkmcp.CallToolResult, error) {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		if errors.Is(err, ErrUnknownMethod) {
			return nil, err
		}
		return &sdkmcp.CallToolResult{
			IsError: true,
			Content: []sdkmcp.Content{&sdkmcp.TextContent{Text: err.Error()}},
		}, nil
	}
	data, mErr := json.Marshal(apiErr)
	if mErr != nil {
		return nil, err
	}
	return &sdkmcp.CallToolResult{
		IsError: true,
		Content: []sdkmcp.Content{&sdkmcp.TextContent{Text: string(data)}},
	}, nil
}
