package entry

import (
	"fmt"
	"time"
)

// Layout selects how entry directories are arranged under the entries dir.
type Layout string

const (
	// LayoutSequential shards numeric ids: 1234 -> 234/1/.
	LayoutSequential Layout = "sequential"
	// LayoutDated buckets time-named entries by month: 2021-01/2021-01-02T03:04:05/.
	LayoutDated Layout = "dated"
	// LayoutArchive buckets time-named entries by day: 2021/01/02/2021-01-02T03:04:05/.
	LayoutArchive Layout = "archive"
)

// ParseLayout validates a configured layout name.
func ParseLayout(s string) (Layout, error) {
	switch l := Layout(s); l {
	case LayoutSequential, LayoutDated, LayoutArchive:
		return l, nil
	case "":
		return LayoutSequential, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedLayout, s)
}

// Depth is the number of directory levels between the entries dir and an
// entry directory, counting the entry itself.
func (l Layout) Depth() int {
	switch l {
	case LayoutDated:
		return 2
	case LayoutArchive:
		return 4
	}
	return 0
}

func (l Layout) bucket(t time.Time) string {
	if l == LayoutArchive {
		return t.Format("2006/01/02/")
	}
	return t.Format("2006-01/")
}
