// Package errs implements the per-thread Structured Error Store described in
// spec §4.2. Every failing ABI entry point must populate it before returning
// a failure code; reading it is non-destructive.
//
// Go goroutines are not OS threads, but cgo calls from a host process run on
// whichever OS thread the Go scheduler currently has the calling goroutine
// pinned to for the duration of the call (the runtime locks the goroutine to
// its M while it is executing C-called code). We key the store by OS thread
// id (via golang.org/x/sys/unix.Gettid on Linux) so the "thread-local" wording
// in the spec holds for the cgo boundary it is actually written for.
package errs

import (
	"sync"

	"github.com/odbccore/engine/internal/dberr"
)

// Record is the exact shape written to and read from the store.
type Record struct {
	Kind        dberr.Kind
	Message     string
	SQLState    string
	HasSQLState bool
	NativeCode  int32
	HasNative   bool
}

type store struct {
	mu   sync.Mutex
	byTID map[int]Record
}

var global = &store{byTID: make(map[int]Record)}

// Set records the last error for the calling thread. It is called by every
// fallible entry point immediately before it returns a failure code.
func Set(e *dberr.Error) {
	if e == nil {
		return
	}
	rec := Record{Kind: e.Kind, Message: e.Error()}
	if e.SQLState != "" {
		rec.SQLState = e.SQLState
		rec.HasSQLState = true
	}
	if e.HasNative {
		rec.NativeCode = e.NativeCode
		rec.HasNative = true
	}
	tid := gettid()
	global.mu.Lock()
	global.byTID[tid] = rec
	global.mu.Unlock()
}

// SetPanic converts a recovered panic into a structured error record with a
// stable message prefix, per spec §4.2 ("no panic may cross the ABI
// boundary").
func SetPanic(v interface{}) {
	global.mu.Lock()
	global.byTID[gettid()] = Record{Kind: dberr.KindInternalPoisoned, Message: panicPrefix(v)}
	global.mu.Unlock()
}

// Get returns the last error recorded for the calling thread, if any.
// Reading does not clear the slot.
func Get() (Record, bool) {
	tid := gettid()
	global.mu.Lock()
	rec, ok := global.byTID[tid]
	global.mu.Unlock()
	return rec, ok
}

// Clear removes the calling thread's slot. engine.Guard calls it after every
// call that returns without error, so the slot holds an error only while
// the thread's most recent guarded call was a failure.
func Clear() {
	tid := gettid()
	global.mu.Lock()
	delete(global.byTID, tid)
	global.mu.Unlock()
}
