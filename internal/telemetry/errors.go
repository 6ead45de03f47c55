package telemetry

import (
	"database/sql"
	"errors"
)

// Missing rows are an expected outcome, not a database failure.
func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
