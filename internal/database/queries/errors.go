package queries

import "errors"

var (
	// ErrNotFound is returned when a lookup matches no row.
	ErrNotFound = errors.New("not found")

	// ErrUsernameTaken is returned when an insert violates the username
	// uniqueness constraint. Callers report it as a conflict, not a crash.
	ErrUsernameTaken = errors.New("username already exists")
)
