package mcp

import (
	"context"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

const serverInstructions = `entreate edits a journal stored on a gemdrive: numbered Markdown entries plus a db.json record.

Core concepts:
- Entry: a directory holding entry.md (text) and entry.json (title, tags, timestamp, visibility, urlName).
- Entry path: where the entry lives under entries/. Sequential journals shard ids into digit groups (1234 -> 234/1/); older journals use dated directories.
- db.json: the highest allocated id (lastId) and the tag vocabulary.

Workflow:
1) Browse: list_entries (newest first) or get_recent_activity.
2) Read: get_entry by id or path.
3) Write: create_entry allocates a fresh empty entry; save_entry updates text and metadata. Omitted fields stay as they were.
4) Tags: list_tags before tagging; create_tag to extend the vocabulary.
5) Publish: publish renders the site and rebuilds the tag index.

Errors:
- AUTH_REQUIRED: the drive refused the token. Do not retry without a new token.
- COLLISION / ALLOCATION_EXHAUSTED: the entry id or name was already taken. One retry is fine; repeated failures mean lastId is behind the drive.

Docs:
- entreate://docs/layout
- entreate://docs/metadata
`

type docResource struct {
	URI         string
	Name        string
	Title       string
	Description string
	Content     string
}

var docResources = []docResource{
	{
		URI:         "entreate://docs/layout",
		Name:        "docs_layout",
		Title:       "Journal layout on the drive",
		Description: "Where db.json and entries live, and how entry paths are derived.",
		Content: `# Journal layout

    <journal>/db.json
    <journal>/entries/<path>/entry.md
    <journal>/entries/<path>/entry.json

## Sequential layout

Ids are split into three-digit groups, least significant group first, each
group one directory level:

| id     | path       |
|--------|------------|
| 7      | 7/         |
| 1000   | 000/1/     |
| 1234   | 234/1/     |
| 123456 | 456/123/   |

New ids are lastId + 1. The entry directory is created before lastId is
saved; a directory that already exists is a collision and the allocation is
retried with a fresh lastId.

## Dated layouts

Older journals name entries by creation time:

- dated: ` + "`2021-01/2021-01-02T03:04:05/`" + `
- archive: ` + "`2021/01/02/2021-01-02T03:04:05/`" + `

Two entries created in the same second get ` + "`_2`" + `, ` + "`_3`" + `, ... suffixes.

## Ordering

Listings are ordered by natural sort, so ` + "`10/`" + ` follows ` + "`9/`" + `.
`,
	},
	{
		URI:         "entreate://docs/metadata",
		Name:        "docs_metadata",
		Title:       "Entry metadata",
		Description: "Fields stored in entry.json and how they are normalised.",
		Content: `# Entry metadata

entry.json holds:

- id: numeric id (sequential layout only)
- title: defaults to "Untitled"
- tags: list of tag names, duplicates dropped
- timestamp: creation time, UTC, second precision
- visibility: private (default), friends, or public
- urlName: slug for the published page; derived from the title when empty

Tags should come from the vocabulary returned by list_tags. publish rebuilds
the tag index in db.json from the tags of numbered entries.
`,
	},
}

func registerDocResources(server *sdkmcp.Server) {
	for _, doc := range docResources {
		doc := doc

		server.AddResource(&sdkmcp.Resource{
			URI:         doc.URI,
			Name:        doc.Name,
			Title:       doc.Title,
			Description: doc.Description,
			MIMEType:    "text/markdown",
			Size:        int64(len(doc.Content)),
		}, func(_ context.Context, req *sdkmcp.ReadResourceRequest) (*sdkmcp.ReadResourceResult, error) {
			uri := doc.URI
			if req != nil && req.Params != nil && req.Params.URI != "" {
				uri = req.Params.URI
			}
			return &sdkmcp.ReadResourceResult{
				Contents: []*sdkmcp.ResourceContents{{
					URI:      uri,
					MIMEType: "text/markdown",
					Text:     doc.Content,
				}},
			}, nil
		})
	}
}
