package bunx

import "github.com/google/uuid"

// NewUUIDv7 generates a time-ordered UUIDv7 string for primary keys.
//
// Generated in the application so PostgreSQL and SQLite behave the same. Panics
// only if the entropy source fails.
func NewUUIDv7() string {
	return uuid.Must(uuid.NewV7()).String()
}
