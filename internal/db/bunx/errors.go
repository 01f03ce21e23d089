package bunx

import (
	"errors"
	"strings"

	"github.com/uptrace/bun/driver/pgdriver"
)

// pgUniqueViolation is the SQLSTATE for unique_violation.
const pgUniqueViolation = "23505"

// IsUniqueViolation reports whether err was caused by a unique constraint on
// either supported backend.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}

	var pgErr pgdriver.Error
	if errors.As(err, &pgErr) {
		return pgErr.Field('C') == pgUniqueViolation
	}

	// modernc.org/sqlite: "constraint failed: UNIQUE constraint failed: users.subject (2067)"
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
