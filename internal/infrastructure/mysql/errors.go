package mysql

import (
	"errors"

	drv "github.com/go-sql-driver/mysql"

	apperrors "preventa/internal/errors"
)

const (
	ErrDuplicateEntry  uint16 = 1062
	ErrLockWaitTimeout uint16 = 1205
	ErrDeadlock        uint16 = 1213
)

func errorNumber(err error) (uint16, bool) {
	var mysqlErr *drv.MySQLError
	if errors.As(err, &mysqlErr) {
		return mysqlErr.Number, true
	}
	return 0, false
}

func IsDeadlock(err error) bool {
	n, ok := errorNumber(err)
	return ok && (n == ErrDeadlock || n == ErrLockWaitTimeout)
}

func IsDuplicateEntry(err error) bool {
	n, ok := errorNumber(err)
	return ok && n == ErrDuplicateEntry
}

// TranslateError maps lock contention to ConcurrencyConflictError and leaves
// every other error untouched.
func TranslateError(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := apperrors.IsConcurrencyConflictError(err); ok {
		return err
	}
	if IsDeadlock(err) {
		return apperrors.NewConcurrencyConflictError("row lock contention", err)
	}
	return err
}
