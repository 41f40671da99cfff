// Package publish renders a journal's entries into static HTML pages on the
// drive: one page per entry, a feed page and an optional about page.
package publish

import (
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"slices"

	"github.com/ganot/entreate/internal/domain/activity"
	"github.com/ganot/entreate/internal/domain/entry"
	"github.com/ganot/entreate/internal/repository"
	"github.com/google/uuid"
)

const defaultInlineLimit = 1024

// Entries enumerates and loads entries.
type Entries interface {
	Iterate(ctx context.Context, order entry.Order) iter.Seq2[entry.Ref, error]
	Get(ctx context.Context, path string) (*entry.Entry, error)
}

// TagIndexer stores the tag index built by a publish run.
type TagIndexer interface {
	SetTagIndex(ctx context.Context, idx map[string][]int64) error
}

// Site is the drive directory the site is published into.
type Site interface {
	ReadFile(ctx context.Context, path string) ([]byte, error)
	WriteFile(ctx context.Context, path string, data []byte, overwrite bool) error
}

// ActivityRepository records publish runs.
type ActivityRepository interface {
	Log(ctx context.Context, journalID string, entry *activity.ActivityEntry) error
}

// Options configures a Publisher.
type Options struct {
	Title string
	// InlineLimit is the rendered size below which an entry's body is shown
	// in the feed.
	InlineLimit int
	// EntriesDir is the entries directory relative to the site root.
	EntriesDir string
	Scope      string
}

// Result summarises a publish run.
type Result struct {
	RunID   string   `json:"run_id"`
	Entries int      `json:"entries"`
	Skipped int      `json:"skipped"`
	Tags    int      `json:"tags"`
	Pages   []string `json:"pages"`
}

// Publisher renders the site.
type Publisher struct {
	site       Site
	entries    Entries
	tags       TagIndexer
	activities ActivityRepository
	opts       Options
	logger     *slog.Logger
}

// New creates a publisher. activities may be nil.
func New(site Site, entries Entries, tags TagIndexer, activities ActivityRepository, opts Options, logger *slog.Logger) *Publisher {
	if opts.InlineLimit <= 0 {
		opts.InlineLimit = defaultInlineLimit
	}
	if opts.EntriesDir == "" {
		opts.EntriesDir = "entries/"
	}
	if opts.Title == "" {
		opts.Title = "Entreate"
	}
	return &Publisher{site: site, entries: entries, tags: tags, activities: activities, opts: opts, logger: logger}
}

// Publish renders every readable entry, rebuilds the tag index and writes
// the feed and about pages. Entries without readable metadata are skipped.
func (p *Publisher) Publish(ctx context.Context) (*Result, error) {
	res := &Result{RunID: uuid.NewString(), Pages: []string{}}
	if p.logger != nil {
		p.logger.Info("publish started", "run_id", res.RunID)
	}

	css, err := p.optional(ctx, "theme.css")
	if err != nil {
		return nil, err
	}
	about, err := p.optional(ctx, "about.md")
	if err != nil {
		return nil, err
	}
	base := page{Title: p.opts.Title, CSS: cssOf(css), HasAbout: about != nil}

	var published []*rendered
	index := map[string][]int64{}
	for ref, err := range p.entries.Iterate(ctx, entry.OrderAscending) {
		if err != nil {
			return nil, fmt.Errorf("enumerating entries: %w", err)
		}
		e, err := p.entries.Get(ctx, ref.Path)
		if errors.Is(err, entry.ErrEntryNotFound) {
			res.Skipped++
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("loading %s: %w", ref.Path, err)
		}

		r, pagePath, err := p.publishEntry(ctx, base, e)
		if err != nil {
			return nil, err
		}
		res.Pages = append(res.Pages, pagePath)
		published = append(published, r)
		if r.ID > 0 {
			for _, tag := range r.Tags {
				index[tag] = append(index[tag], r.ID)
			}
		}
	}
	res.Entries = len(published)
	res.Tags = len(index)

	if err := p.tags.SetTagIndex(ctx, index); err != nil {
		return nil, fmt.Errorf("saving tag index: %w", err)
	}

	feedPath, err := p.publishFeed(ctx, base, published)
	if err != nil {
		return nil, err
	}
	res.Pages = append(res.Pages, feedPath)

	if about != nil {
		data := base
		data.Content = markdown(string(about))
		for _, path := range []string{"about/index.html", "index.html"} {
			data.Root = rootFor(path)
			if err := p.write(ctx, "about", path, data); err != nil {
				return nil, err
			}
			res.Pages = append(res.Pages, path)
		}
	}

	if p.logger != nil {
		p.logger.Info("publish finished", "run_id", res.RunID, "entries", res.Entries, "skipped", res.Skipped)
	}
	p.record(ctx, res)
	return res, nil
}

func (p *Publisher) publishEntry(ctx context.Context, base page, e *entry.Entry) (*rendered, string, error) {
	r := &rendered{
		ID:        e.ID,
		Path:      e.Path,
		Title:     e.Meta.Title,
		Slug:      e.Meta.Slug(),
		Timestamp: formatTimestamp(e.Meta.Timestamp),
		Tags:      e.Meta.Tags,
		Content:   markdown(e.Text),
	}
	r.Inline = len(r.Content) < p.opts.InlineLimit

	path := p.opts.EntriesDir + e.Path + "index.html"
	data := base
	data.Title = r.Title
	data.Root = rootFor(path)
	data.Entry = r
	if err := p.write(ctx, "entry", path, data); err != nil {
		return nil, "", err
	}
	return r, path, nil
}

// publishFeed lists entries newest first: by descending id, then by
// descending path for entries without an id.
func (p *Publisher) publishFeed(ctx context.Context, base page, published []*rendered) (string, error) {
	sorted := slices.Clone(published)
	slices.SortStableFunc(sorted, func(a, b *rendered) int {
		if c := cmp.Compare(b.ID, a.ID); c != 0 {
			return c
		}
		return cmp.Compare(b.Path, a.Path)
	})

	const path = "feed/index.html"
	data := base
	data.Root = rootFor(path)
	data.Entries = sorted
	if err := p.write(ctx, "feed", path, data); err != nil {
		return "", err
	}
	return path, nil
}

func (p *Publisher) write(ctx context.Context, tmpl, path string, data page) error {
	out, err := execute(tmpl, data)
	if err != nil {
		return fmt.Errorf("rendering %s: %w", path, err)
	}
	if err := p.site.WriteFile(ctx, path, out, true); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// optional reads a site file that may be absent.
func (p *Publisher) optional(ctx context.Context, path string) ([]byte, error) {
	data, err := p.site.ReadFile(ctx, path)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return data, nil
}

func (p *Publisher) record(ctx context.Context, res *Result) {
	if p.activities == nil {
		return
	}
	details, _ := json.Marshal(res)
	err := p.activities.Log(ctx, p.opts.Scope, &activity.ActivityEntry{
		ActivityType: activity.TypePublished,
		Summary:      fmt.Sprintf("published %d entries", res.Entries),
		Details:      string(details),
	})
	if err != nil && p.logger != nil {
		p.logger.Warn("activity log failed", "error", err)
	}
}
