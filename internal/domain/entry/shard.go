package entry

import (
	"fmt"
	"strconv"
	"strings"
)

// ShardPath maps an id to its directory under the entries dir. Decimal digits
// are grouped in triplets from the least significant end, least significant
// triplet first, so siblings stay below a thousand per directory:
//
//	7      -> 7/
//	1234   -> 234/1/
//	1000   -> 000/1/
//	123456 -> 456/123/
func ShardPath(id ID) (string, error) {
	if id <= 0 {
		return "", fmt.Errorf("%w: %d", ErrInvalidID, id)
	}
	digits := strconv.FormatInt(id, 10)

	var b strings.Builder
	for end := len(digits); end > 0; end -= 3 {
		start := max(end-3, 0)
		b.WriteString(digits[start:end])
		b.WriteByte('/')
	}
	return b.String(), nil
}

// ParseShardPath is the inverse of ShardPath.
func ParseShardPath(path string) (ID, error) {
	if !strings.HasSuffix(path, "/") {
		return 0, fmt.Errorf("%w: %q", ErrInvalidPath, path)
	}
	parts := strings.Split(strings.TrimSuffix(path, "/"), "/")

	var digits strings.Builder
	for i := len(parts) - 1; i >= 0; i-- {
		p := parts[i]
		last := i == len(parts)-1
		switch {
		case !allDigits(p):
			return 0, fmt.Errorf("%w: %q", ErrInvalidPath, path)
		case !last && len(p) != 3:
			return 0, fmt.Errorf("%w: %q", ErrInvalidPath, path)
		case last && (len(p) > 3 || (p[0] == '0' && (len(p) > 1 || len(parts) > 1))):
			return 0, fmt.Errorf("%w: %q", ErrInvalidPath, path)
		}
		digits.WriteString(p)
	}

	id, err := strconv.ParseInt(digits.String(), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidPath, path)
	}
	return id, nil
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
