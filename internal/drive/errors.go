package drive

import (
	"errors"
	"fmt"
	"net/url"
)

var (
	// ErrNotFound is returned for 404 responses.
	ErrNotFound = errors.New("drive: not found")
	// ErrForbidden is returned for 401/403 responses. Callers must surface it
	// as an authorization request, never as empty data.
	ErrForbidden = errors.New("drive: authorization required")
	// ErrExists is returned when a non-overwriting create hits an existing path.
	ErrExists = errors.New("drive: already exists")
	// ErrInvalidURL indicates a malformed or misplaced URL.
	ErrInvalidURL = errors.New("drive: invalid url")
	// ErrInvalidListing indicates a listing body that could not be parsed.
	ErrInvalidListing = errors.New("drive: invalid listing")
)

// StatusError describes a response status the client has no mapping for.
type StatusError struct {
	Method     string
	URL        string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("drive: %s %s: unexpected status %d: %s", e.Method, e.URL, e.StatusCode, e.Body)
	}
	return fmt.Sprintf("drive: %s %s: unexpected status %d", e.Method, e.URL, e.StatusCode)
}

// redact strips access tokens from URLs before they end up in errors or logs.
func redact(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	q := u.Query()
	if q.Has(tokenParam) {
		q.Set(tokenParam, "REDACTED")
		u.RawQuery = q.Encode()
	}
	return u.String()
}
