package store

import (
	"database/sql"
	"errors"
)

// IsErrNotFound reports whether err means the row is absent. Callers must
// treat absence as distinct from a zero-value record.
func IsErrNotFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
