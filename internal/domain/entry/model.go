package entry

import (
	"slices"
	"strings"
	"time"
)

// ID identifies an entry. Valid ids are positive and never reassigned.
type ID = int64

// Visibility controls who can read a published entry.
type Visibility string

const (
	VisibilityPrivate Visibility = "private"
	VisibilityFriends Visibility = "friends"
	VisibilityPublic  Visibility = "public"
)

// Valid reports whether v is a known visibility.
func (v Visibility) Valid() bool {
	switch v {
	case VisibilityPrivate, VisibilityFriends, VisibilityPublic:
		return true
	}
	return false
}

// DefaultTitle is used for entries saved without a title.
const DefaultTitle = "Untitled"

// Meta is the content of an entry's entry.json.
type Meta struct {
	ID         ID         `json:"id,omitempty"`
	Title      string     `json:"title"`
	Tags       []string   `json:"tags"`
	Timestamp  time.Time  `json:"timestamp"`
	Visibility Visibility `json:"visibility,omitempty"`
	URLName    string     `json:"urlName,omitempty"`
}

// NewMeta returns the metadata written for a freshly allocated entry.
func NewMeta(id ID, now time.Time) Meta {
	return Meta{
		ID:         id,
		Title:      DefaultTitle,
		Tags:       []string{},
		Timestamp:  now.UTC().Truncate(time.Second),
		Visibility: VisibilityPrivate,
	}
}

// Normalize fills defaults left empty by older records or the editor.
func (m *Meta) Normalize() {
	m.Title = strings.TrimSpace(m.Title)
	if m.Title == "" {
		m.Title = DefaultTitle
	}
	if m.Tags == nil {
		m.Tags = []string{}
	}
	m.Tags = dedupe(m.Tags)
	if m.Visibility == "" {
		m.Visibility = VisibilityPrivate
	}
}

// Slug returns the name an entry is published under: the explicit URL name
// or one derived from the title.
func (m Meta) Slug() string {
	if m.URLName != "" {
		return m.URLName
	}
	s := strings.ToLower(strings.TrimSpace(m.Title))
	s = strings.ReplaceAll(s, "'", "")
	return strings.Join(strings.Fields(s), "-")
}

// Ref locates an entry: its id when known and its path relative to the
// entries directory, always ending in "/".
type Ref struct {
	ID   ID     `json:"id,omitempty"`
	Path string `json:"path"`
}

// Entry is a loaded entry.
type Entry struct {
	Ref
	Meta Meta   `json:"meta"`
	Text string `json:"text"`
}

const (
	textFile = "entry.md"
	metaFile = "entry.json"
)

func dedupe(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" || slices.Contains(out, t) {
			continue
		}
		out = append(out, t)
	}
	return out
}
