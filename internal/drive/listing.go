package drive

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Format selects which listing endpoint the client requests.
type Format string

const (
	FormatTSV  Format = "tsv"
	FormatJSON Format = "json"
)

// Valid reports whether f is a known listing format.
func (f Format) Valid() bool {
	return f == FormatTSV || f == FormatJSON
}

// ListingSuffix returns the file name appended to a directory URL to fetch its listing.
func (f Format) ListingSuffix() string {
	return ".gemdrive-ls." + string(f)
}

// Parse decodes a listing fetched from the f endpoint. The body is not
// sniffed: a TSV name may itself start with "{".
func (f Format) Parse(data []byte) (Listing, error) {
	if f == FormatJSON {
		return ParseJSON(data)
	}
	return ParseTSV(data)
}

// Child is one entry of a directory listing. Directory names end with "/".
type Child struct {
	Name    string `json:"name"`
	ModTime string `json:"modTime,omitempty"`
	Size    int64  `json:"size,omitempty"`
}

// IsDir reports whether the child is a directory.
func (c Child) IsDir() bool {
	return strings.HasSuffix(c.Name, "/")
}

// Listing is the ordered set of immediate children of one remote directory.
type Listing struct {
	Children []Child `json:"children"`
}

// Names returns child names in listing order.
func (l Listing) Names() []string {
	names := make([]string, 0, len(l.Children))
	for _, c := range l.Children {
		names = append(names, c.Name)
	}
	return names
}

// Dirs returns the names of child directories in listing order.
func (l Listing) Dirs() []string {
	var dirs []string
	for _, c := range l.Children {
		if c.IsDir() {
			dirs = append(dirs, c.Name)
		}
	}
	return dirs
}

// Has reports whether a child with exactly this name exists.
func (l Listing) Has(name string) bool {
	for _, c := range l.Children {
		if c.Name == name {
			return true
		}
	}
	return false
}

// ParseListing detects the wire format of data and parses it, for callers
// that do not know which endpoint produced it.
func ParseListing(data []byte) (Listing, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		return ParseJSON(trimmed)
	}
	return ParseTSV(data)
}

// ParseTSV parses "name\tmodTime\tsize" lines. Blank lines are skipped.
func ParseTSV(data []byte) (Listing, error) {
	var l Listing
	for i, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSuffix(line, "\r")
		if line == "" {
			continue
		}
		cols := strings.Split(line, "\t")
		if cols[0] == "" {
			return Listing{}, fmt.Errorf("%w: line %d has no name", ErrInvalidListing, i+1)
		}
		child := Child{Name: cols[0]}
		if len(cols) > 1 {
			child.ModTime = cols[1]
		}
		if len(cols) > 2 {
			child.Size, _ = strconv.ParseInt(strings.TrimSpace(cols[2]), 10, 64)
		}
		l.Children = append(l.Children, child)
	}
	return l, nil
}

// ParseJSON parses {"children": {"name/": {...}}}. Key order is kept as sent.
func ParseJSON(data []byte) (Listing, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	if err := expectDelim(dec, '{'); err != nil {
		return Listing{}, err
	}

	var l Listing
	for dec.More() {
		key, err := readKey(dec)
		if err != nil {
			return Listing{}, err
		}
		if key != "children" {
			var skip json.RawMessage
			if err := dec.Decode(&skip); err != nil {
				return Listing{}, fmt.Errorf("%w: %v", ErrInvalidListing, err)
			}
			continue
		}
		children, err := readChildren(dec)
		if err != nil {
			return Listing{}, err
		}
		l.Children = children
	}
	return l, nil
}

func readChildren(dec *json.Decoder) ([]Child, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidListing, err)
	}
	if tok == nil {
		return nil, nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, fmt.Errorf("%w: children must be an object", ErrInvalidListing)
	}

	var children []Child
	for dec.More() {
		name, err := readKey(dec)
		if err != nil {
			return nil, err
		}
		var fields map[string]json.RawMessage
		if err := dec.Decode(&fields); err != nil {
			return nil, fmt.Errorf("%w: child %q: %v", ErrInvalidListing, name, err)
		}
		children = append(children, childFromFields(name, fields))
	}
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidListing, err)
	}
	return children, nil
}

func childFromFields(name string, fields map[string]json.RawMessage) Child {
	child := Child{Name: name}
	if raw, ok := fields["size"]; ok {
		var n json.Number
		if json.Unmarshal(raw, &n) == nil {
			child.Size, _ = n.Int64()
		}
	}
	if raw, ok := fields["modTime"]; ok {
		var s string
		if json.Unmarshal(raw, &s) == nil {
			child.ModTime = s
		} else {
			child.ModTime = strings.Trim(string(raw), `"`)
		}
	}
	return child
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidListing, err)
	}
	if d, ok := tok.(json.Delim); !ok || d != want {
		return fmt.Errorf("%w: expected %q", ErrInvalidListing, want)
	}
	return nil
}

func readKey(dec *json.Decoder) (string, error) {
	tok, err := dec.Token()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidListing, err)
	}
	key, ok := tok.(string)
	if !ok {
		return "", fmt.Errorf("%w: expected object key", ErrInvalidListing)
	}
	return key, nil
}
