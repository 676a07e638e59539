package errors

import "errors"

var (
	// ErrNotFound is returned when an account or profile does not resolve.
	ErrNotFound = errors.New("not found")
	// ErrInvalidArgument is a generic sentinel for invalid input.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrConflict is returned when a unique value (e.g. a username) is already taken.
	ErrConflict = errors.New("conflict")
)

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool { return errors.Is(err, target) }
