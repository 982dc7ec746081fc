package main

// #include <stdint.h>
import "C"

import (
	"github.com/odbccore/engine/internal/codec"
	"github.com/odbccore/engine/internal/engine"
)

// odbc_exec_query runs sqlText directly against connHandle, unprepared and
// unparameterized, rendering the result through the row-buffer wire format
// and the buffer-sizing protocol (spec §6.1).
//
//export odbc_exec_query
func odbc_exec_query(connHandle C.uint32_t, sqlText *C.char, buf *C.uchar, bufLen C.size_t, written *C.size_t) C.int32_t {
	var encoded []byte
	var callErr error
	ok := engine.Guard(func() error {
		rb, err := engineOrInit().ExecQuery(bgCtx, uint32(connHandle), cString(sqlText))
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

// odbc_exec_query_params runs a parameterized, unprepared query (spec §6.1
// odbc_exec_query_params). params/paramsLen carry the spec §4.3 parameter
// buffer format.
//
//export odbc_exec_query_params
func odbc_exec_query_params(connHandle C.uint32_t, sqlText *C.char, params *C.uchar, paramsLen C.size_t, buf *C.uchar, bufLen C.size_t, written *C.size_t) C.int32_t {
	var encoded []byte
	var callErr error
	ok := engine.Guard(func() error {
		decoded, err := paramsFromC(params, paramsLen)
		if err != nil {
			callErr = err
			return err
		}
		rb, err := engineOrInit().ExecQueryParams(bgCtx, uint32(connHandle), cString(sqlText), decoded)
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

// odbc_exec_query_multi runs sqlText and renders one row-buffer ResultFrame
// per result set the driver produces through the multi-result wire format
// (spec §6.1 odbc_exec_query_multi).
//
//export odbc_exec_query_multi
func odbc_exec_query_multi(connHandle C.uint32_t, sqlText *C.char, buf *C.uchar, bufLen C.size_t, written *C.size_t) C.int32_t {
	var encoded []byte
	var callErr error
	ok := engine.Guard(func() error {
		frames, err := engineOrInit().ExecQueryMulti(bgCtx, uint32(connHandle), cString(sqlText))
		if err != nil {
			callErr = err
			return err
		}
		encoded, err = codec.EncodeMultiResult(frames)
		callErr = err
		return err
	})
	if !ok {
		return codeFromErr(callErr)
	}
	return writeBuffer(buf, bufLen, written, encoded)
}

// odbc_execute_statement runs an INSERT/UPDATE/DELETE/DDL statement against
// a connection directly (no prepare), returning rows affected and
// last-insert-id packed as two i64 out-params. Supplements odbc_execute's
// prepared-statement path for callers that never prepare (spec §6.1's
// odbc_exec_query family covers reads; writes need a parallel entry point
// since ExecStatement has no row-buffer result to stream back).
//
//export odbc_execute_statement
func odbc_execute_statement(connHandle C.uint32_t, sqlText *C.char, params *C.uchar, paramsLen C.size_t, affectedOut *C.int64_t, lastInsertIDOut *C.int64_t) C.int32_t {
	var callErr error
	ok := engine.Guard(func() error {
		decoded, err := paramsFromC(params, paramsLen)
		if err != nil {
			callErr = err
			return err
		}
		affected, lastID, err := engineOrInit().ExecStatement(bgCtx, uint32(connHandle), cString(sqlText), decoded)
		if err != nil {
			callErr = err
			return err
		}
		if affectedOut != nil {
			*affectedOut = C.int64_t(affected)
		}
		if lastInsertIDOut != nil {
			*lastInsertIDOut = C.int64_t(lastID)
		}
		return nil
	})
	if !ok {
		return codeFromErr(callErr)
	}
	return 0
}
