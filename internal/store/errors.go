package store

import (
	"errors"

	"github.com/lib/pq"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("not found")

// ErrDuplicateUsername is returned when an insert violates the users
// table's username uniqueness.
var ErrDuplicateUsername = errors.New("username already taken")

// ErrInvalidReference is returned when a message endpoint does not
// resolve to an existing user.
var ErrInvalidReference = errors.New("referenced user does not exist")

// PostgreSQL error classes surfaced by lib/pq.
const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
)

func postgresErrorCode(err error) string {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code)
	}
	return ""
}
