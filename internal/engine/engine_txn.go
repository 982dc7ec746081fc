package engine

import (
	"context"

	"github.com/odbccore/engine/internal/codec"
	"github.com/odbccore/engine/internal/dberr"
	"github.com/odbccore/engine/internal/exec"
	"github.com/odbccore/engine/internal/types"
)

// TransactionBegin starts a transaction on connHandle (spec §4.9). The
// returned handle is independent of the connection handle; releasing the
// connection before the transaction is resolved rolls the transaction back
// (ReleaseConnection rolls back every transaction still open on the
// connection it releases).
func (e *Engine) TransactionBegin(ctx context.Context, connHandle uint32, level types.IsolationLevel, readOnly bool) (uint32, error) {
	c, err := e.getConnection(connHandle)
	if err != nil {
		return 0, err
	}

	id := e.txnIDs.Insert(struct{}{})
	if _, terr := e.txns.Begin(ctx, id, c.raw, level, readOnly); terr != nil {
		e.txnIDs.Remove(id)
		return 0, terr
	}
	return id, nil
}

// TransactionCommit commits txnHandle (spec §4.9 odbc_transaction_commit).
func (e *Engine) TransactionCommit(txnHandle uint32) error {
	if err := e.txns.Commit(txnHandle); err != nil {
		return err
	}
	e.txnIDs.Remove(txnHandle)
	return nil
}

// TransactionRollback rolls txnHandle back (spec §4.9
// odbc_transaction_rollback).
func (e *Engine) TransactionRollback(txnHandle uint32) error {
	if err := e.txns.Rollback(txnHandle); err != nil {
		return err
	}
	e.txnIDs.Remove(txnHandle)
	return nil
}

// Savepoint creates a named savepoint within txnHandle (spec §4.9
// odbc_savepoint_create).
func (e *Engine) Savepoint(ctx context.Context, txnHandle uint32, name string) error {
	t, ok := e.txns.Get(txnHandle)
	if !ok {
		return dberr.New(dberr.KindInvalidHandle, "unknown transaction handle %d", txnHandle)
	}
	return t.Savepoint(ctx, name)
}

// RollbackToSavepoint rolls txnHandle back to a previously created
// savepoint without ending the transaction (spec §4.9
// odbc_savepoint_rollback).
func (e *Engine) RollbackToSavepoint(ctx context.Context, txnHandle uint32, name string) error {
	t, ok := e.txns.Get(txnHandle)
	if !ok {
		return dberr.New(dberr.KindInvalidHandle, "unknown transaction handle %d", txnHandle)
	}
	return t.RollbackToSavepoint(ctx, name)
}

// ReleaseSavepoint discards a savepoint without rolling back (spec §4.9
// odbc_savepoint_release).
func (e *Engine) ReleaseSavepoint(ctx context.Context, txnHandle uint32, name string) error {
	t, ok := e.txns.Get(txnHandle)
	if !ok {
		return dberr.New(dberr.KindInvalidHandle, "unknown transaction handle %d", txnHandle)
	}
	return t.ReleaseSavepoint(ctx, name)
}

// TransactionQuery runs a SELECT inside txnHandle and returns its result set
// (odbc_transaction_query).
func (e *Engine) TransactionQuery(ctx context.Context, txnHandle uint32, sqlText string, params []codec.Param) (codec.RowBuffer, error) {
	t, ok := e.txns.Get(txnHandle)
	if !ok {
		return codec.RowBuffer{}, dberr.New(dberr.KindInvalidHandle, "unknown transaction handle %d", txnHandle)
	}
	return exec.RunQuery(ctx, t.Tx, sqlText, params)
}

// TransactionExec runs an INSERT/UPDATE/DELETE inside txnHandle (spec §4.9
// odbc_transaction_exec).
func (e *Engine) TransactionExec(ctx context.Context, txnHandle uint32, sqlText string, params []codec.Param) (affected, lastInsertID int64, err error) {
	t, ok := e.txns.Get(txnHandle)
	if !ok {
		return 0, 0, dberr.New(dberr.KindInvalidHandle, "unknown transaction handle %d", txnHandle)
	}
	return exec.RunExec(ctx, t.Tx, sqlText, params)
}
