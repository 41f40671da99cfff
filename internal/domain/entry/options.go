package entry

import "time"

const (
	defaultMaxAttempts = 3
	defaultRecentLimit = 10
)

// Options configures a Service.
type Options struct {
	Layout Layout
	// MaxAttempts bounds collision retries when creating a sequential entry.
	MaxAttempts int
	// RecentLimit is the number of entries Recent returns when asked for none.
	RecentLimit int
	// Scope names the journal in activity records.
	Scope string
	Now   func() time.Time
}

// SaveInput holds editor changes. Nil fields keep their stored value.
type SaveInput struct {
	Text       *string
	Title      *string
	Tags       []string
	Visibility *Visibility
	URLName    *string
}
