package repository

import (
	"errors"

	"github.com/lib/pq"
)

var (
	// ErrUsernameTaken is returned when a username exists in any principal table.
	ErrUsernameTaken = errors.New("username already in use")
	// ErrDuplicate is returned on any other unique-constraint violation.
	ErrDuplicate = errors.New("duplicate record")
	// ErrStaleVersion is returned when a versioned write matched no row.
	ErrStaleVersion = errors.New("record was modified concurrently")
)

const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}

func uniqueConstraint(err error) string {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Constraint
	}
	return ""
}

// usernameFree is appended to identity inserts so a username is only
// accepted when no principal table already holds it.
const usernameFree = `NOT EXISTS (
			SELECT 1 FROM admin_users WHERE username = $1::varchar
			UNION ALL SELECT 1 FROM sales_managers WHERE username = $1::varchar
			UNION ALL SELECT 1 FROM worker_users WHERE username = $1::varchar
		)`
