// Package engine wires every internal component (registry, pool, statement
// cache, transaction manager, execution engine, bulk pipeline) into the one
// façade both the C ABI (cmd/libodbc) and the CLI (cmd/odbcctl) call into.
// Keeping that façade in one Go-native package lets both front ends share
// identical semantics and error handling.
package engine

import (
	"runtime/debug"

	"github.com/odbccore/engine/internal/dberr"
	"github.com/odbccore/engine/internal/errs"
	"github.com/odbccore/engine/internal/obslog"
)

// Guard runs fn, recovering any panic into dberr.KindInternalPoisoned and
// funneling both panics and ordinary errors into the per-thread Structured
// Error Store before returning a plain bool the ABI layer renders as a
// return code (spec §6.1: every exported symbol returns 0/negative, never
// lets a Go panic cross the cgo boundary). Exported so cmd/libodbc, a
// separate package, can wrap every //export function with it.
func Guard(fn func() error) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			obslog.Component("engine").Error().
				Interface("panic", r).
				Str("stack", string(debug.Stack())).
				Msg("recovered panic at ABI boundary")
			errs.SetPanic(r)
			ok = false
		}
	}()

	if err := fn(); err != nil {
		errs.Set(dberr.As(err))
		return false
	}
	errs.Clear()
	return true
}
