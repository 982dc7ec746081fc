// Command libodbc builds the stable C ABI of spec §6.1 as a cgo shared
// library (`go build -buildmode=c-shared`). Every exported symbol is a thin
// wrapper around internal/engine.Engine: it marshals C arguments into Go
// values, calls the engine under engine.Guard so no Go panic ever crosses
// the cgo boundary, and renders the result back through either a plain
// i32/u32 return or the buffer-sizing protocol (spec §4.4).
//
// Grounded on the one real cgo/`//export` usage found in the retrieved
// corpus, nabbar-golib's ioutils/maxstdio, generalized from a two-function
// Windows shim into this engine's full ABI surface.
package main

// #include <stdint.h>
import "C"

import (
	"context"
	"sync"
	"unsafe"

	"github.com/odbccore/engine/internal/codec"
	"github.com/odbccore/engine/internal/dberr"
	"github.com/odbccore/engine/internal/engine"
)

var (
	engOnce sync.Once
	eng     *engine.Engine

	reaperStop func()

	// bgCtx backs every ABI call that does not carry an explicit timeout of
	// its own; per-call deadlines are layered on with context.WithTimeout at
	// each call site that accepts one (spec §4.5's timeout_override_ms).
	bgCtx = context.Background()
)

// odbc_init lazily constructs the process-wide Engine singleton and starts
// its background transaction reaper (spec §3's Environment). Safe to call
// more than once; later calls are no-ops.
//
//export odbc_init
func odbc_init() C.int32_t {
	engineOrInit()
	return 0
}

func engineOrInit() *engine.Engine {
	engOnce.Do(func() {
		eng = engine.New(nil)
		reaperStop = eng.StartTransactionReaper(bgCtx)
	})
	return eng
}

// odbc_shutdown stops the transaction reaper and disconnects every live
// database handle. Not part of spec §6.1's named surface, but a host
// unloading the shared library needs some way to drain cleanly rather than
// relying on process exit.
//
//export odbc_shutdown
func odbc_shutdown() C.int32_t {
	if eng == nil {
		return 0
	}
	if reaperStop != nil {
		reaperStop()
	}
	eng.Shutdown()
	return 0
}

func main() {} // required by -buildmode=c-shared, never invoked

// cBytes copies a C buffer (ptr may be nil when length is 0) into a Go
// []byte. Used for every binary input parameter (params, bulk payloads).
func cBytes(ptr *C.uchar, length C.size_t) []byte {
	if ptr == nil || length == 0 {
		return nil
	}
	return C.GoBytes(unsafe.Pointer(ptr), C.int(length))
}

// cString converts a NUL-terminated C string to Go. Returns "" for nil.
func cString(ptr *C.char) string {
	if ptr == nil {
		return ""
	}
	return C.GoString(ptr)
}

// writeBuffer implements the buffer-sizing protocol of spec §4.4: it always
// reports the encoded length through written, copies data only when all of
// it fits, and otherwise copies nothing and returns -2 so the caller can
// retry with a larger buffer.
func writeBuffer(dst *C.uchar, dstLen C.size_t, written *C.size_t, data []byte) C.int32_t {
	if written != nil {
		*written = C.size_t(len(data))
	}
	if len(data) == 0 {
		return 0
	}
	if C.size_t(len(data)) > dstLen {
		return -2
	}
	out := unsafe.Slice((*byte)(unsafe.Pointer(dst)), len(data))
	copy(out, data)
	return 0
}

// paramsFromC decodes a C parameter buffer (spec §4.3's parameter buffer
// format) into codec.Param records.
func paramsFromC(ptr *C.uchar, length C.size_t) ([]codec.Param, error) {
	return codec.DecodeParams(cBytes(ptr, length))
}

// codeFromErr renders a failed call's error into the negative ABI return
// code its dberr.Kind maps to (spec §7). A nil err with a failed guard means
// the call panicked — engine.Guard already recorded that as
// InternalPoisoned in the Structured Error Store, so the return code
// matches.
func codeFromErr(err error) C.int32_t {
	if err == nil {
		return C.int32_t(dberr.KindInternalPoisoned.Code())
	}
	return C.int32_t(dberr.As(err).Kind.Code())
}
