package bunx

import "github.com/google/uuid"

// NewUUIDv7 generates a time-ordered UUIDv7 string for primary keys. Both
// PostgreSQL and SQLite store it as text, so no gen_random_uuid() default is
// needed.
func NewUUIDv7() string {
	return uuid.Must(uuid.NewV7()).String()
}
