package main

// #include <stdint.h>
import "C"

import "github.com/odbccore/engine/internal/engine"

// odbc_stream_start opens a cursor over sqlText and returns a stream handle
// for chunked odbc_stream_fetch calls (spec §6.1).
//
//export odbc_stream_start
func odbc_stream_start(connHandle C.uint32_t, sqlText *C.char) C.uint32_t {
	var id uint32
	engine.Guard(func() error {
		var err error
		id, err = engineOrInit().StreamOpen(bgCtx, uint32(connHandle), cString(sqlText), nil, 0)
		return err
	})
	return C.uint32_t(id)
}

// odbc_stream_start_batched is odbc_stream_start with an explicit
// driver-level fetch size hint (spec §6.1; see StreamOpen's doc comment for
// why fetchSize is accepted but not wired to a database/sql knob).
//
//export odbc_stream_start_batched
func odbc_stream_start_batched(connHandle C.uint32_t, sqlText *C.char, fetchSize C.int32_t) C.uint32_t {
	var id uint32
	engine.Guard(func() error {
		var err error
		id, err = engineOrInit().StreamOpen(bgCtx, uint32(connHandle), cString(sqlText), nil, int(fetchSize))
		return err
	})
	return C.uint32_t(id)
}

// odbc_stream_fetch returns the next encoded row-buffer chunk from an open
// stream (spec §6.1 odbc_stream_fetch(id, buf, len, *written, *has_more)).
// A too-small buffer re-delivers the same chunk on retry rather than
// skipping rows (spec §4.4's monotone-progress guarantee) — only on success
// does this call advance the cursor's pending-chunk cache.
//
//export odbc_stream_fetch
func odbc_stream_fetch(streamHandle C.uint32_t, buf *C.uchar, bufLen C.size_t, written *C.size_t, hasMore *C.int32_t) C.int32_t {
	var encoded []byte
	var more bool
	var callErr error
	ok := engine.Guard(func() error {
		var err error
		encoded, more, err = engineOrInit().StreamFetchEncoded(uint32(streamHandle))
		callErr = err
		return err
	})
	if !ok {
		return codeFromErr(callErr)
	}

	code := writeBuffer(buf, bufLen, written, encoded)
	if code != 0 {
		return code
	}
	if hasMore != nil {
		if more {
			*hasMore = 1
		} else {
			*hasMore = 0
		}
	}
	engineOrInit().StreamAdvance(uint32(streamHandle))
	return 0
}

// odbc_stream_close releases a cursor's resources. A second close on an
// already-closed handle is a silent no-op success (spec §8).
//
//export odbc_stream_close
func odbc_stream_close(streamHandle C.uint32_t) C.int32_t {
	engineOrInit().StreamClose(uint32(streamHandle))
	return 0
}
