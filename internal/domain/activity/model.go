package activity

import "time"

// ActivityType represents the type of activity event
type ActivityType string

const (
	TypeEntryCreated        ActivityType = "entry_created"
	TypeEntrySaved          ActivityType = "entry_saved"
	TypeAllocationCollision ActivityType = "allocation_collision"
	TypeTagCreated          ActivityType = "tag_created"
	TypePublished           ActivityType = "published"
)

// Valid reports whether t is a known activity type.
func (t ActivityType) Valid() bool {
	switch t {
	case TypeEntryCreated, TypeEntrySaved, TypeAllocationCollision, TypeTagCreated, TypePublished:
		return true
	}
	return false
}

// ActivityEntry represents an event in the activity log
type ActivityEntry struct {
	ID           int64        `json:"id"`
	JournalID    string       `json:"journal_id"`
	EntryPath    string       `json:"entry_path,omitempty"`
	EntryID      *int64       `json:"entry_id,omitempty"`
	ActivityType ActivityType `json:"type"`
	Summary      string       `json:"summary"`
	Details      string       `json:"details,omitempty"` // JSON string
	CreatedAt    time.Time    `json:"created_at"`
}
