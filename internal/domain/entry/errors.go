package entry

import "errors"

var (
	// ErrEntryNotFound indicates the entry doesn't exist.
	ErrEntryNotFound = errors.New("entry not found")
	// ErrAuthRequired indicates the drive refused the credentials. It is never
	// reported as an empty result.
	ErrAuthRequired = errors.New("authorization required")
	// ErrCollision indicates the candidate entry directory already exists.
	ErrCollision = errors.New("entry path already taken")
	// ErrTooManyIterations indicates a bounded allocation probe ran out of candidates.
	ErrTooManyIterations = errors.New("too many iterations")
	// ErrInvalidID indicates an entry id outside the valid range.
	ErrInvalidID = errors.New("invalid entry id")
	// ErrInvalidPath indicates a path that is not a valid entry location.
	ErrInvalidPath = errors.New("invalid entry path")
	// ErrInvalidInput indicates invalid input for entry operations.
	ErrInvalidInput = errors.New("invalid entry input")
	// ErrUnsupportedLayout indicates an unknown entry layout.
	ErrUnsupportedLayout = errors.New("unsupported entry layout")
	// ErrIteratorConsumed indicates a single-use entry sequence was ranged over twice.
	ErrIteratorConsumed = errors.New("entry iterator already consumed")
)
