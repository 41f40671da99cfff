package mcp

import (
	"errors"
	"fmt"

	"github.com/ganot/entreate/internal/domain/activity"
	"github.com/ganot/entreate/internal/domain/entry"
	"github.com/ganot/entreate/internal/domain/journal"
)

var (
	// ErrUnknownMethod is returned for methods the handler doesn't serve.
	ErrUnknownMethod = errors.New("unknown method")
	// ErrInvalidParams is returned when tool arguments can't be decoded.
	ErrInvalidParams = errors.New("invalid params")
)

// Error codes reported to clients.
const (
	CodeAuthRequired      = "AUTH_REQUIRED"
	CodeEntryNotFound     = "ENTRY_NOT_FOUND"
	CodeCollision         = "COLLISION"
	CodeExhausted         = "ALLOCATION_EXHAUSTED"
	CodeInvalidInput      = "INVALID_INPUT"
	CodeTagExists         = "TAG_EXISTS"
	CodeInvalidRecord     = "INVALID_RECORD"
	CodeUnsupportedLayout = "UNSUPPORTED_LAYOUT"
)

// APIError represents an MCP error response.
type APIError struct {
	Code         string `json:"code"`
	Message      string `json:"message"`
	Details      any    `json:"details,omitempty"`
	RecoveryHint string `json:"recovery_hint,omitempty"`
	err          error
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the domain error the API error was mapped from.
func (e *APIError) Unwrap() error {
	return e.err
}

// MapError maps domain errors to MCP error codes. It returns nil for errors
// with no client-facing code.
func MapError(err error) *APIError {
	if err == nil {
		return nil
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}
	mapped := func(code, msg, hint string) *APIError {
		return &APIError{Code: code, Message: msg, RecoveryHint: hint, err: err}
	}
	switch {
	case errors.Is(err, entry.ErrAuthRequired), errors.Is(err, journal.ErrAuthRequired):
		return mapped(CodeAuthRequired, "the drive refused the credentials", "Provide a valid drive access token")
	case errors.Is(err, entry.ErrEntryNotFound):
		return mapped(CodeEntryNotFound, "entry not found", "List entries to find a valid id or path")
	case errors.Is(err, entry.ErrTooManyIterations):
		return mapped(CodeExhausted, "no free entry name after repeated attempts", "Check the drive for orphaned entry directories")
	case errors.Is(err, entry.ErrCollision):
		return mapped(CodeCollision, "entry path already taken", "Retry; if it persists, lastId in db.json is behind the entries on the drive")
	case errors.Is(err, journal.ErrTagExists):
		return mapped(CodeTagExists, "tag already exists", "")
	case errors.Is(err, journal.ErrInvalidRecord):
		return mapped(CodeInvalidRecord, "db.json could not be decoded", "Repair db.json on the drive")
	case errors.Is(err, entry.ErrUnsupportedLayout):
		return mapped(CodeUnsupportedLayout, "unsupported entry layout", "")
	case errors.Is(err, entry.ErrInvalidID),
		errors.Is(err, entry.ErrInvalidPath),
		errors.Is(err, entry.ErrInvalidInput),
		errors.Is(err, journal.ErrInvalidInput),
		errors.Is(err, activity.ErrInvalidInput),
		errors.Is(err, ErrInvalidParams):
		return mapped(CodeInvalidInput, err.Error(), "Check the tool arguments")
	default:
		return nil
	}
}

func mapError(err error) error {
	if apiErr := MapError(err); apiErr != nil {
		return apiErr
	}
	return err
}
