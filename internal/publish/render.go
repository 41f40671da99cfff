package publish

import (
	"bytes"
	"embed"
	"html/template"
	"strings"
	"time"

	"github.com/russross/blackfriday/v2"
)

//go:embed templates/*.html
var templateFS embed.FS

var pages = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// page is the data every template receives.
type page struct {
	Title    string
	CSS      template.CSS
	Root     string
	HasAbout bool
	Entry    *rendered
	Entries  []*rendered
	Content  template.HTML
}

type rendered struct {
	ID        int64
	Path      string
	Title     string
	Slug      string
	Timestamp string
	Tags      []string
	Content   template.HTML
	Inline    bool
}

// markdown renders entry text to HTML. Raw HTML in the source is kept, as
// entries are authored by the site owner.
func markdown(text string) template.HTML {
	return template.HTML(blackfriday.Run([]byte(text)))
}

func execute(name string, data page) ([]byte, error) {
	var buf bytes.Buffer
	if err := pages.ExecuteTemplate(&buf, name, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// rootFor returns the relative prefix leading from dir back to the site root.
func rootFor(dir string) string {
	return strings.Repeat("../", strings.Count(dir, "/"))
}

func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func cssOf(data []byte) template.CSS {
	return template.CSS(data)
}
