package main

// #include <stdint.h>
import "C"

import "github.com/odbccore/engine/internal/codec"

// odbc_get_error copies the calling thread's last error message, truncated
// to fit buf, into buf. Returns 0 if a message was written (even truncated),
// -1 if no error is recorded for this thread.
//
//export odbc_get_error
func odbc_get_error(buf *C.uchar, bufLen C.size_t) C.int32_t {
	rec, ok := engineOrInit().LastError()
	if !ok {
		return -1
	}
	msg := []byte(rec.Message)
	if C.size_t(len(msg)) > bufLen {
		msg = msg[:bufLen]
	}
	writeBuffer(buf, bufLen, nil, msg)
	return 0
}

// odbc_get_structured_error renders the calling thread's last error as the
// {sql_state, native_code, message} record of spec §4.2, through the
// buffer-sizing protocol of spec §4.4.
//
//export odbc_get_structured_error
func odbc_get_structured_error(buf *C.uchar, bufLen C.size_t, written *C.size_t) C.int32_t {
	rec, ok := engineOrInit().LastError()
	if !ok {
		if written != nil {
			*written = 0
		}
		return -1
	}
	encoded := codec.EncodeStructuredError(rec.Message, rec.SQLState, rec.HasSQLState, rec.NativeCode, rec.HasNative)
	return writeBuffer(buf, bufLen, written, encoded)
}
