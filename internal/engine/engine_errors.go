package engine

import (
	"github.com/odbccore/engine/internal/errs"
)

// LastError returns the calling thread's last recorded failure (spec §4.2
// odbc_get_error / odbc_get_structured_error), if any.
func (e *Engine) LastError() (errs.Record, bool) {
	return errs.Get()
}

// ClearLastError drops the calling thread's error slot.
func (e *Engine) ClearLastError() {
	errs.Clear()
}
