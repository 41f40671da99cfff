package journal

import "errors"

var (
	// ErrAuthRequired indicates the drive refused the credentials.
	ErrAuthRequired = errors.New("journal: authorization required")
	// ErrInvalidRecord indicates db.json could not be decoded.
	ErrInvalidRecord = errors.New("journal: invalid db record")
	// ErrTagExists indicates a tag with the same name is already known.
	ErrTagExists = errors.New("tag already exists")
	// ErrInvalidInput indicates invalid journal input.
	ErrInvalidInput = errors.New("invalid journal input")
)
