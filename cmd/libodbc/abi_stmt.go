package main

// #include <stdint.h>
import "C"

import (
	"github.com/odbccore/engine/internal/codec"
	"github.com/odbccore/engine/internal/engine"
)

// odbc_prepare registers sqlText against connHandle's statement cache (spec
// §4.7). timeoutMs is accepted for ABI compatibility; per spec's boundary
// behavior a value of 0 applies no query timeout, which is also what
// happens today since Prepare does not itself run a query.
//
//export odbc_prepare
func odbc_prepare(connHandle C.uint32_t, sqlText *C.char, timeoutMs C.int32_t) C.uint32_t {
	var id uint32
	engine.Guard(func() error {
		var err error
		id, err = engineOrInit().Prepare(uint32(connHandle), cString(sqlText))
		return err
	})
	return C.uint32_t(id)
}

// odbc_execute runs a prepared statement with params and renders its
// result through the row-buffer wire format and the buffer-sizing protocol
// (spec §6.1).
//
//export odbc_execute
func odbc_execute(stmtHandle C.uint32_t, params *C.uchar, paramsLen C.size_t, timeoutOverrideMs C.int32_t, fetchSize C.int32_t, buf *C.uchar, bufLen C.size_t, written *C.size_t) C.int32_t {
	var encoded []byte
	var callErr error
	ok := engine.Guard(func() error {
		decoded, err := paramsFromC(params, paramsLen)
		if err != nil {
			callErr = err
			return err
		}
		rb, err := engineOrInit().Execute(bgCtx, uint32(stmtHandle), decoded, int(timeoutOverrideMs), int(fetchSize))
		if err != nil {
			callErr = err
			return err
		}
		encoded, err = codec.Encode(rb)
		callErr = err
		return err
	})
	if !ok {
		return codeFromErr(callErr)
	}
	return writeBuffer(buf, bufLen, written, encoded)
}

// odbc_cancel implements spec's odbc_cancel; see Engine.Cancel's doc
// comment for why this always reports Unsupported.
//
//export odbc_cancel
func odbc_cancel(stmtHandle C.uint32_t) C.int32_t {
	var callErr error
	ok := engine.Guard(func() error {
		callErr = engineOrInit().Cancel(uint32(stmtHandle))
		return callErr
	})
	if !ok {
		return codeFromErr(callErr)
	}
	return 0
}

//export odbc_close_statement
func odbc_close_statement(stmtHandle C.uint32_t) C.int32_t {
	var callErr error
	ok := engine.Guard(func() error {
		callErr = engineOrInit().CloseStatement(uint32(stmtHandle))
		return callErr
	})
	if !ok {
		return codeFromErr(callErr)
	}
	return 0
}

//export odbc_clear_all_statements
func odbc_clear_all_statements() C.int32_t {
	engine.Guard(func() error {
		engineOrInit().ClearAllStatements()
		return nil
	})
	return 0
}

//export odbc_clear_statement_cache
func odbc_clear_statement_cache(connHandle C.uint32_t) C.int32_t {
	var callErr error
	ok := engine.Guard(func() error {
		callErr = engineOrInit().ClearStatementCache(uint32(connHandle))
		return callErr
	})
	if !ok {
		return codeFromErr(callErr)
	}
	return 0
}

// odbc_get_cache_metrics packs one connection's statement-cache counters as
// four little-endian i64 values: hits, misses, total_prepares,
// total_executions (spec §6.1 odbc_get_cache_metrics; no fixed wire struct
// is named in spec §4.3 for this call the way there is for odbc_get_metrics,
// so this engine defines the same flat layout for consistency).
//
//export odbc_get_cache_metrics
func odbc_get_cache_metrics(connHandle C.uint32_t, buf *C.uchar, bufLen C.size_t, written *C.size_t) C.int32_t {
	var encoded []byte
	var callErr error
	ok := engine.Guard(func() error {
		stats, err := engineOrInit().GetCacheMetrics(uint32(connHandle))
		callErr = err
		if err != nil {
			return err
		}
		encoded = encodeCacheStats(stats.CacheHits, stats.CacheMisses, stats.TotalPrepares, stats.TotalExecutions)
		return nil
	})
	if !ok {
		return codeFromErr(callErr)
	}
	return writeBuffer(buf, bufLen, written, encoded)
}
