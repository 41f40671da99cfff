package localdrive

import (
	"encoding/json"
	"fmt"
	"io"
	"time"
)

func writeTSV(w io.Writer, children []child) error {
	for _, c := range children {
		if _, err := fmt.Fprintf(w, "%s\t%s\t%d\n", c.name, formatTime(c.modTime), c.size); err != nil {
			return err
		}
	}
	return nil
}

// writeJSON writes {"children": {...}} keeping the children in slice order,
// which encoding a map would not.
func writeJSON(w io.Writer, children []child) error {
	if _, err := io.WriteString(w, `{"children":{`); err != nil {
		return err
	}
	for i, c := range children {
		if i > 0 {
			if _, err := io.WriteString(w, ","); err != nil {
				return err
			}
		}
		name, err := json.Marshal(c.name)
		if err != nil {
			return err
		}
		attrs, err := json.Marshal(struct {
			ModTime string `json:"modTime,omitempty"`
			Size    int64  `json:"size"`
		}{formatTime(c.modTime), c.size})
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "%s:%s", name, attrs); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, "}}\n")
	return err
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
