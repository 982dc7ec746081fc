package dberr

import "fmt"

// Error is the engine's internal error type. It carries enough information
// to populate the Structured Error Store (spec §4.2) without any component
// needing to know the ABI-layer encoding.
type Error struct {
	Kind       Kind
	Message    string
	SQLState   string // optional, 5 chars when present
	NativeCode int32  // optional driver-native error code
	HasNative  bool
}

func (e *Error) Error() string {
	if e.SQLState != "" {
		return fmt.Sprintf("%s: %s (sqlstate=%s)", e.Kind, e.Message, e.SQLState)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// New builds a bare error of the given kind with no driver metadata.
func New(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// WithDriver attaches SQLSTATE/native-code metadata pulled from a driver error.
func WithDriver(kind Kind, sqlState string, nativeCode int32, format string, args ...interface{}) *Error {
	return &Error{
		Kind:       kind,
		Message:    fmt.Sprintf(format, args...),
		SQLState:   sqlState,
		NativeCode: nativeCode,
		HasNative:  true,
	}
}

// As extracts an *Error from err, wrapping a generic error as InternalPoisoned
// if it isn't already one of ours. This is the single funnel every ABI entry
// point uses before writing to the Structured Error Store.
func As(err error) *Error {
	if err == nil {
		return nil
	}
	if e, ok := err.(*Error); ok {
		return e
	}
	var target *Error
	if errorsAs(err, &target) {
		return target
	}
	return New(KindInternalPoisoned, "%v", err)
}

// errorsAs is a thin indirection over errors.As kept local so this file has
// no import cycle concerns with callers that also alias "errors".
func errorsAs(err error, target **Error) bool {
	for err != nil {
		if e, ok := err.(*Error); ok {
			*target = e
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}
