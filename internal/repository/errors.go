package repository

import (
	"database/sql"
	"database/sql/driver"
	"errors"
	"net"

	"github.com/lib/pq"

	"guestbook/internal/model"
)

// Postgres error codes we care about
const (
	pqUndefinedTable     = "42P01"
	pqInsufficientPriv   = "42501"
	pqForeignKeyViolated = "23503"
	pqUniqueViolated     = "23505"
	pqConnectionClass    = "08"
)

// Classify maps a driver error to the failure cause reported to callers.
func Classify(err error) model.FailureCause {
	if err == nil {
		return model.CauseUnknown
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch {
		case pqErr.Code == pqUndefinedTable:
			return model.CauseRelationMissing
		case pqErr.Code == pqInsufficientPriv:
			return model.CausePermissionDenied
		case string(pqErr.Code.Class()) == pqConnectionClass:
			return model.CauseConnection
		}
		return model.CauseUnknown
	}

	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, sql.ErrConnDone) {
		return model.CauseConnection
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return model.CauseConnection
	}
	return model.CauseUnknown
}

func isPQCode(err error, code pq.ErrorCode) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == code
}
