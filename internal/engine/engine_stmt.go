package engine

import (
	"context"
	"time"

	"github.com/odbccore/engine/internal/cache"
	"github.com/odbccore/engine/internal/codec"
	"github.com/odbccore/engine/internal/dberr"
	"github.com/odbccore/engine/internal/exec"
	"github.com/odbccore/engine/internal/validate"
)

// Prepare registers sqlText against connHandle's statement cache (spec
// §4.7). A cache hit returns the existing statement handle without
// allocating a new one; a miss allocates a statement handle and may evict
// the connection's least-recently-used entry.
func (e *Engine) Prepare(connHandle uint32, sqlText string) (uint32, error) {
	if err := validate.Query(sqlText, validate.Config{MaxQueryLength: e.cfg.MaxQueryLength}); err != nil {
		return 0, err
	}

	c, err := e.getConnection(connHandle)
	if err != nil {
		return 0, err
	}

	if id, hit := c.cache.Lookup(sqlText); hit {
		e.metrics.RecordCacheHit()
		return id, nil
	}
	e.metrics.RecordCacheMiss()

	s := &statement{connHandle: connHandle, sqlText: sqlText}
	id := e.statements.Insert(s)

	if evictedID, evicted := c.cache.Insert(sqlText, id); evicted {
		e.statements.Remove(evictedID)
	}
	return id, nil
}

// Execute runs stmtHandle with params and returns its result set (spec
// §4.5/§4.7, odbc_execute). It uses the prepared statement's own
// connection, never the caller's — a stmtHandle is only ever valid for the
// connection that prepared it. timeoutOverrideMs of 0 inherits the ambient
// context deadline (spec: "0 means inherit the statement's timeout");
// fetchSize is accepted for ABI compatibility but is a no-op here —
// database/sql exposes no generic per-query driver fetch-size knob, unlike
// the chunked path in StreamFetchEncoded where chunking is this engine's own.
func (e *Engine) Execute(ctx context.Context, stmtHandle uint32, params []codec.Param, timeoutOverrideMs int, fetchSize int) (codec.RowBuffer, error) {
	if timeoutOverrideMs > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(timeoutOverrideMs)*time.Millisecond)
		defer cancel()
	}

	start := time.Now()
	e.metrics.RecordQuery()

	rb, err := e.execute(ctx, stmtHandle, params)
	if err != nil {
		e.metrics.RecordError()
		return codec.RowBuffer{}, err
	}
	e.metrics.RecordLatency(time.Since(start))
	return rb, nil
}

func (e *Engine) execute(ctx context.Context, stmtHandle uint32, params []codec.Param) (codec.RowBuffer, error) {
	s, derr := e.statements.Get(stmtHandle)
	if derr != nil {
		return codec.RowBuffer{}, derr
	}
	c, err := e.getConnection(s.connHandle)
	if err != nil {
		return codec.RowBuffer{}, err
	}

	rb, err := exec.RunQuery(ctx, c.raw, s.sqlText, params)
	if err != nil {
		c.dirty = true
		return codec.RowBuffer{}, err
	}
	c.cache.RecordExecution()
	return rb, nil
}

// CloseStatement evicts stmtHandle from both the handle registry and its
// owning connection's statement cache (spec §4.7 close_statement).
func (e *Engine) CloseStatement(stmtHandle uint32) error {
	s, derr := e.statements.Remove(stmtHandle)
	if derr != nil {
		return derr
	}
	if c, err := e.getConnection(s.connHandle); err == nil {
		c.cache.RemoveByStmtID(stmtHandle)
	}
	return nil
}

// Cancel implements odbc_cancel. database/sql has no driver-agnostic
// statement-level cancel distinct from context cancellation (which already
// governs every Execute/ExecQuery timeout path), so this surfaces the gap
// honestly as Unsupported rather than silently no-op-ing.
func (e *Engine) Cancel(stmtHandle uint32) error {
	if _, derr := e.statements.Get(stmtHandle); derr != nil {
		return derr
	}
	return dberr.New(dberr.KindUnsupported, "statement cancel is not supported by the underlying database/sql driver interface")
}

// ClearStatementCache discards every prepared statement on one connection
// (spec §4.7 clear_statement_cache).
func (e *Engine) ClearStatementCache(connHandle uint32) error {
	c, err := e.getConnection(connHandle)
	if err != nil {
		return err
	}
	for _, id := range c.cache.Clear() {
		e.statements.Remove(id)
	}
	return nil
}

// ClearAllStatements discards every prepared statement across every live
// connection (spec §4.7 clear_all_statements).
func (e *Engine) ClearAllStatements() {
	for _, s := range e.statements.ClearAll() {
		if c, err := e.getConnection(s.connHandle); err == nil {
			c.cache.Remove(s.sqlText)
		}
	}
}

// GetCacheMetrics reports statement-cache stats for one connection (spec
// §4.7).
func (e *Engine) GetCacheMetrics(connHandle uint32) (cache.Stats, error) {
	c, err := e.getConnection(connHandle)
	if err != nil {
		return cache.Stats{}, err
	}
	return c.cache.Stats(), nil
}

// ExecQuery runs sqlText directly against connHandle without going through
// the statement cache (spec §6.1 odbc_exec_query: a one-shot, unprepared
// query path).
func (e *Engine) ExecQuery(ctx context.Context, connHandle uint32, sqlText string) (codec.RowBuffer, error) {
	return e.ExecQueryParams(ctx, connHandle, sqlText, nil)
}

// ExecQueryParams runs a parameterized, unprepared query (spec §6.1
// odbc_exec_query_params).
func (e *Engine) ExecQueryParams(ctx context.Context, connHandle uint32, sqlText string, params []codec.Param) (codec.RowBuffer, error) {
	if err := validate.Query(sqlText, validate.Config{MaxQueryLength: e.cfg.MaxQueryLength}); err != nil {
		return codec.RowBuffer{}, err
	}
	start := time.Now()
	e.metrics.RecordQuery()

	c, err := e.getConnection(connHandle)
	if err != nil {
		e.metrics.RecordError()
		return codec.RowBuffer{}, err
	}
	rb, err := exec.RunQuery(ctx, c.raw, sqlText, params)
	if err != nil {
		c.dirty = true
		e.metrics.RecordError()
		return codec.RowBuffer{}, err
	}
	e.metrics.RecordLatency(time.Since(start))
	return rb, nil
}

// ExecQueryMulti runs sqlText and returns one row-buffer ResultFrame per
// result set the driver produces (spec §6.1 odbc_exec_query_multi);
// affected-row counts are not reported as frames.
func (e *Engine) ExecQueryMulti(ctx context.Context, connHandle uint32, sqlText string) ([]codec.ResultFrame, error) {
	if err := validate.Query(sqlText, validate.Config{MaxQueryLength: e.cfg.MaxQueryLength}); err != nil {
		return nil, err
	}
	e.metrics.RecordQuery()

	c, err := e.getConnection(connHandle)
	if err != nil {
		e.metrics.RecordError()
		return nil, err
	}
	frames, err := exec.RunMultiResult(ctx, c.raw, sqlText, nil)
	if err != nil {
		c.dirty = true
		e.metrics.RecordError()
		return nil, err
	}
	return frames, nil
}

// ExecStatement runs an INSERT/UPDATE/DELETE/DDL statement and returns rows
// affected plus last-insert-id where the driver supports it
// (odbc_execute_statement).
func (e *Engine) ExecStatement(ctx context.Context, connHandle uint32, sqlText string, params []codec.Param) (affected, lastInsertID int64, err error) {
	if err := validate.Query(sqlText, validate.Config{MaxQueryLength: e.cfg.MaxQueryLength}); err != nil {
		return 0, 0, err
	}
	e.metrics.RecordQuery()

	c, cerr := e.getConnection(connHandle)
	if cerr != nil {
		e.metrics.RecordError()
		return 0, 0, cerr
	}
	affected, lastInsertID, err = exec.RunExec(ctx, c.raw, sqlText, params)
	if err != nil {
		c.dirty = true
		e.metrics.RecordError()
		return 0, 0, err
	}
	return affected, lastInsertID, nil
}
