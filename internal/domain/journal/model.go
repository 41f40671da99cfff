package journal

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"sort"
)

// DB is the journal's db.json record: the highest allocated entry id and the
// tag vocabulary.
type DB struct {
	LastID int64 `json:"lastId"`
	Tags   Tags  `json:"tags"`
}

// Tags holds the known tags. On disk it is either a plain list of names or,
// once a publish has run, an index of tag name to entry ids.
type Tags struct {
	names []string
	index map[string][]int64
}

// NewTags builds a vocabulary from names, dropping duplicates.
func NewTags(names ...string) Tags {
	var t Tags
	for _, n := range names {
		t.Add(n)
	}
	return t
}

// Names returns every known tag name.
func (t Tags) Names() []string {
	out := slices.Clone(t.names)
	if out == nil {
		out = []string{}
	}
	return out
}

// Has reports whether name is a known tag.
func (t Tags) Has(name string) bool {
	return slices.Contains(t.names, name)
}

// Add appends name to the vocabulary. It reports false if name was already present.
func (t *Tags) Add(name string) bool {
	if t.Has(name) {
		return false
	}
	t.names = append(t.names, name)
	if t.index != nil {
		t.index[name] = []int64{}
	}
	return true
}

// Index returns the tag index, or nil if the tags were never indexed.
func (t Tags) Index() map[string][]int64 {
	return t.index
}

// SetIndex replaces the tag index. Vocabulary tags missing from idx are kept
// with an empty id list so an index never loses a tag created in the editor.
func (t *Tags) SetIndex(idx map[string][]int64) {
	merged := make(map[string][]int64, len(idx)+len(t.names))
	for name, ids := range idx {
		merged[name] = slices.Clone(ids)
	}
	for _, name := range t.names {
		if _, ok := merged[name]; !ok {
			merged[name] = []int64{}
		}
	}
	t.index = merged
	t.names = sortedKeys(merged)
}

// MarshalJSON writes the index form when an index exists, otherwise the list form.
func (t Tags) MarshalJSON() ([]byte, error) {
	if t.index != nil {
		return json.Marshal(t.index)
	}
	return json.Marshal(t.Names())
}

// UnmarshalJSON accepts both the list and the index form.
func (t *Tags) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	*t = Tags{}
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}

	switch trimmed[0] {
	case '[':
		var names []string
		if err := json.Unmarshal(trimmed, &names); err != nil {
			return fmt.Errorf("%w: tags: %v", ErrInvalidRecord, err)
		}
		*t = NewTags(names...)
	case '{':
		var idx map[string][]int64
		if err := json.Unmarshal(trimmed, &idx); err != nil {
			return fmt.Errorf("%w: tags: %v", ErrInvalidRecord, err)
		}
		t.SetIndex(idx)
	default:
		return fmt.Errorf("%w: tags must be a list or an object", ErrInvalidRecord)
	}
	return nil
}

func sortedKeys(m map[string][]int64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
