package services

import (
	"errors"
	"fmt"
)

// Error taxonomy. Validation failures carry the exact prose shown to the
// player; everything else wraps the underlying cause.
var (
	// ErrNotFound covers missing entities and doubles as the sentinel for
	// "no reroll available today".
	ErrNotFound = errors.New("not found")

	// ErrConflict covers uniqueness violations such as double-drafting or
	// bonding an already-bonded unit.
	ErrConflict = errors.New("conflict")
)

// ValidationError is a user-facing rule violation. Its message is rendered
// verbatim to the player.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Validationf builds a ValidationError from a format string.
func Validationf(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// IsUserFacing reports whether err should be shown to the player as-is.
// Persistence failures get the generic "please try again" treatment instead.
func IsUserFacing(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve) || errors.Is(err, ErrNotFound) || errors.Is(err, ErrConflict)
}
