package main

// #include <stdint.h>
import "C"

import (
	"github.com/odbccore/engine/internal/codec"
	"github.com/odbccore/engine/internal/engine"
	"github.com/odbccore/engine/internal/types"
)

// odbc_transaction_begin starts a transaction on connHandle at the given
// isolation level (spec §4.9's IsolationLevel codes 0-3).
//
//export odbc_transaction_begin
func odbc_transaction_begin(connHandle C.uint32_t, isolation C.int32_t) C.uint32_t {
	var id uint32
	engine.Guard(func() error {
		var err error
		id, err = engineOrInit().TransactionBegin(bgCtx, uint32(connHandle), types.IsolationLevel(isolation), false)
		return err
	})
	return C.uint32_t(id)
}

//export odbc_transaction_commit
func odbc_transaction_commit(txnHandle C.uint32_t) C.int32_t {
	var callErr error
	ok := engine.Guard(func() error {
		callErr = engineOrInit().TransactionCommit(uint32(txnHandle))
		return callErr
	})
	if !ok {
		return codeFromErr(callErr)
	}
	return 0
}

//export odbc_transaction_rollback
func odbc_transaction_rollback(txnHandle C.uint32_t) C.int32_t {
	var callErr error
	ok := engine.Guard(func() error {
		callErr = engineOrInit().TransactionRollback(uint32(txnHandle))
		return callErr
	})
	if !ok {
		return codeFromErr(callErr)
	}
	return 0
}

//export odbc_savepoint_create
func odbc_savepoint_create(txnHandle C.uint32_t, name *C.char) C.int32_t {
	var callErr error
	ok := engine.Guard(func() error {
		callErr = engineOrInit().Savepoint(bgCtx, uint32(txnHandle), cString(name))
		return callErr
	})
	if !ok {
		return codeFromErr(callErr)
	}
	return 0
}

//export odbc_savepoint_rollback
func odbc_savepoint_rollback(txnHandle C.uint32_t, name *C.char) C.int32_t {
	var callErr error
	ok := engine.Guard(func() error {
		callErr = engineOrInit().RollbackToSavepoint(bgCtx, uint32(txnHandle), cString(name))
		return callErr
	})
	if !ok {
		return codeFromErr(callErr)
	}
	return 0
}

//export odbc_savepoint_release
func odbc_savepoint_release(txnHandle C.uint32_t, name *C.char) C.int32_t {
	var callErr error
	ok := engine.Guard(func() error {
		callErr = engineOrInit().ReleaseSavepoint(bgCtx, uint32(txnHandle), cString(name))
		return callErr
	})
	if !ok {
		return codeFromErr(callErr)
	}
	return 0
}

// odbc_transaction_query and odbc_transaction_exec supplement the named
// transaction symbols of spec §6.1 with the entry points a caller actually
// needs to run SQL inside an open transaction (the spec's list covers
// begin/commit/rollback/savepoints but a transaction is useless without a
// way to execute against it).

//export odbc_transaction_query
func odbc_transaction_query(txnHandle C.uint32_t, sqlText *C.char, params *C.uchar, paramsLen C.size_t, buf *C.uchar, bufLen C.size_t, written *C.size_t) C.int32_t {
	var encoded []byte
	var callErr error
	ok := engine.Guard(func() error {
		decoded, err := paramsFromC(params, paramsLen)
		if err != nil {
			callErr = err
			return err
		}
		rb, err := engineOrInit().TransactionQuery(bgCtx, uint32(txnHandle), cString(sqlText), decoded)
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

//export odbc_transaction_exec
func odbc_transaction_exec(txnHandle C.uint32_t, sqlText *C.char, params *C.uchar, paramsLen C.size_t, affectedOut *C.int64_t, lastInsertIDOut *C.int64_t) C.int32_t {
	var callErr error
	ok := engine.Guard(func() error {
		decoded, err := paramsFromC(params, paramsLen)
		if err != nil {
			callErr = err
			return err
		}
		affected, lastID, err := engineOrInit().TransactionExec(bgCtx, uint32(txnHandle), cString(sqlText), decoded)
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
