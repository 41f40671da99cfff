package gemdrive

import (
	"errors"
	"fmt"

	"github.com/ganot/entreate/internal/drive"
	"github.com/ganot/entreate/internal/repository"
)

// mapError translates drive errors into repository errors, keeping the
// drive error in the chain.
func mapError(op string, err error) error {
	switch {
	case errors.Is(err, drive.ErrNotFound):
		return fmt.Errorf("%s: %w: %w", op, repository.ErrNotFound, err)
	case errors.Is(err, drive.ErrForbidden):
		return fmt.Errorf("%s: %w: %w", op, repository.ErrForbidden, err)
	case errors.Is(err, drive.ErrExists):
		return fmt.Errorf("%s: %w: %w", op, repository.ErrConflict, err)
	case errors.Is(err, drive.ErrInvalidURL):
		return fmt.Errorf("%s: %w: %w", op, repository.ErrInvalidInput, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
