package persistence

import (
	"errors"

	"github.com/ecobat/backend/internal/domain/shared"
	"github.com/jackc/pgx/v5/pgconn"
)

// Postgres error codes for lock acquisition failures.
const (
	pgLockNotAvailable = "55P03"
	pgDeadlockDetected = "40P01"
)

// mapLockError translates a Postgres lock timeout or deadlock into the
// domain's retryable concurrency error. Callers hit this when a row lock
// could not be acquired within the configured lock_timeout.
func mapLockError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgLockNotAvailable, pgDeadlockDetected:
			return shared.ErrConcurrencyBusy
		}
	}
	return err
}
