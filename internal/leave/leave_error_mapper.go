package leave

import (
	"errors"

	leaveerrors "go-hris-leave/internal/leave/errors"
	"go-hris-leave/internal/shared/apperror"

	"github.com/jackc/pgx/v5/pgconn"
)

const (
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
	pgLockNotAvailable     = "55P03"
)

// mapPersistError turns a failure inside the apply transaction into a typed
// error. Lock contention becomes ApplyInProgress and anything untyped becomes
// PersistenceFailure carrying the cause.
func mapPersistError(err error) error {
	if err == nil {
		return nil
	}

	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		return err
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgSerializationFailure, pgDeadlockDetected, pgLockNotAvailable:
			return leaveerrors.ErrApplyInProgress
		}
	}

	return leaveerrors.ErrPersistenceFailure(err)
}

func pgErrorFields(err error) (code, constraint string) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code, pgErr.ConstraintName
	}
	return "", ""
}
