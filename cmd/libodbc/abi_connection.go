package main

// #include <stdint.h>
import "C"

import "github.com/odbccore/engine/internal/engine"

// odbc_connect opens a database handle using the connection string's own
// pool sizing (spec §6.1). Returns 0 on failure; consult odbc_get_error.
//
//export odbc_connect
func odbc_connect(connStr *C.char) C.uint32_t {
	var id uint32
	engine.Guard(func() error {
		var err error
		id, _, err = engineOrInit().Connect(cString(connStr))
		return err
	})
	return C.uint32_t(id)
}

// odbc_connect_with_timeout is odbc_connect with an explicit login/ping
// timeout in milliseconds.
//
//export odbc_connect_with_timeout
func odbc_connect_with_timeout(connStr *C.char, timeoutMs C.int32_t) C.uint32_t {
	var id uint32
	engine.Guard(func() error {
		var err error
		id, _, err = engineOrInit().ConnectWithTimeout(cString(connStr), int(timeoutMs))
		return err
	})
	return C.uint32_t(id)
}

// odbc_disconnect closes a database handle and cascades the close to every
// connection/statement/cursor it owns (spec §3).
//
//export odbc_disconnect
func odbc_disconnect(conn C.uint32_t) C.int32_t {
	var callErr error
	ok := engine.Guard(func() error {
		callErr = engineOrInit().Disconnect(uint32(conn))
		return callErr
	})
	if !ok {
		return codeFromErr(callErr)
	}
	return 0
}

// odbc_detect_driver reports the driver name this engine would resolve
// dataSource to, without opening a connection (spec §6.1).
//
//export odbc_detect_driver
func odbc_detect_driver(dataSource *C.char, buf *C.uchar, bufLen C.size_t, written *C.size_t) C.int32_t {
	name := engineOrInit().DetectDriver(cString(dataSource))
	return writeBuffer(buf, bufLen, written, []byte(name))
}

// odbc_pool_get_connection checks out a connection from dbHandle's pool
// (spec §4.8), returning a connection handle for every later
// prepare/execute/transaction/stream call.
//
//export odbc_pool_get_connection
func odbc_pool_get_connection(dbHandle C.uint32_t) C.uint32_t {
	var id uint32
	engine.Guard(func() error {
		var err error
		id, err = engineOrInit().GetConnection(bgCtx, uint32(dbHandle))
		return err
	})
	return C.uint32_t(id)
}

// odbc_pool_release_connection returns a connection to its pool, cascade-
// closing any statement/cursor it still owns.
//
//export odbc_pool_release_connection
func odbc_pool_release_connection(connHandle C.uint32_t) C.int32_t {
	var callErr error
	ok := engine.Guard(func() error {
		callErr = engineOrInit().ReleaseConnection(uint32(connHandle))
		return callErr
	})
	if !ok {
		return codeFromErr(callErr)
	}
	return 0
}
