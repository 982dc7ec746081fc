package dberr

import (
	"context"
	"errors"
	"strings"
)

// Classify turns a raw error returned by database/sql (or a driver beneath
// it) into an engine *Error with the right Kind. It is intentionally
// conservative: anything it cannot positively identify gets the
// caller-supplied fallback kind (with the driver's SQLSTATE attached when
// one is available).
func Classify(err error, fallback Kind) *Error {
	if err == nil {
		return nil
	}
	if e, ok := err.(*Error); ok {
		return e
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return New(KindTimeout, "%v", err)
	}

	state := sqlStateOf(err)
	if state != "" {
		switch {
		case strings.HasPrefix(state, "08"):
			return WithDriver(KindConnectionError, state, 0, "%v", err)
		case state == "40001" || state == "40P01": // serialization / deadlock
			return WithDriver(KindQueryError, state, 0, "%v", err)
		case strings.HasPrefix(state, "HYT") || state == "S1T00":
			return WithDriver(KindTimeout, state, 0, "%v", err)
		}
		return WithDriver(fallback, state, 0, "%v", err)
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "timeout") || strings.Contains(msg, "timed out"):
		return New(KindTimeout, "%v", err)
	case strings.Contains(msg, "refused") || strings.Contains(msg, "connection") || strings.Contains(msg, "broken pipe"):
		return New(KindConnectionError, "%v", err)
	default:
		return New(fallback, "%v", err)
	}
}

// sqlStateOfProvider is implemented by driver-specific error types that
// expose a SQLSTATE (e.g. go-sql-driver/mysql's MySQLError via a mapped
// code, pgconn.PgError, or alexbrainman/odbc's Error).
type sqlStateOfProvider interface {
	SQLState() string
}

func sqlStateOf(err error) string {
	var p sqlStateOfProvider
	if errors.As(err, &p) {
		return p.SQLState()
	}
	return ""
}
