// Package exec implements the Execution Engine of spec §4.5: running a SQL
// statement (with or without bound parameters) against a checked-out
// connection or an open transaction, and rendering the result into the
// row-buffer wire format. It never inspects or rewrites the SQL text beyond
// counting placeholders (spec §1 Non-goals: no SQL parser, no query
// optimizer) — the grounding for that placeholder count comes straight from
// the teacher's client/stmt.go countPlaceholders.
package exec

import (
	"context"
	"database/sql"

	"github.com/odbccore/engine/internal/codec"
	"github.com/odbccore/engine/internal/dberr"
)

// Queryer is satisfied by both *sql.Conn and *sql.Tx, letting every function
// in this package run against either a pooled connection or an open
// transaction without duplicating logic.
type Queryer interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// CountPlaceholders counts '?' parameter markers outside of quoted string
// literals, a direct port of the teacher's client/stmt.go helper, used to
// validate a caller's parameter count before ever reaching the driver.
func CountPlaceholders(query string) int {
	count := 0
	inString := false
	escaped := false

	for _, r := range query {
		switch {
		case escaped:
			escaped = false
		case r == '\\':
			escaped = true
		case r == '\'' && !escaped:
			inString = !inString
		case r == '?' && !inString && !escaped:
			count++
		}
	}
	return count
}

func toDriverArgs(params []codec.Param) []interface{} {
	args := make([]interface{}, len(params))
	for i, p := range params {
		args[i] = p.ToDriverValue()
	}
	return args
}

// RunQuery executes a row-returning statement and renders the entire result
// set into a RowBuffer (spec §4.5's exec_query / exec_query_params). Large
// result sets should use OpenCursor instead (spec §4.6).
func RunQuery(ctx context.Context, q Queryer, sqlText string, params []codec.Param) (codec.RowBuffer, error) {
	if got := len(params); got != 0 && got != CountPlaceholders(sqlText) {
		return codec.RowBuffer{}, dberr.New(dberr.KindValidationError,
			"parameter count mismatch: statement has %d placeholders, got %d", CountPlaceholders(sqlText), got)
	}

	rows, err := q.QueryContext(ctx, sqlText, toDriverArgs(params)...)
	if err != nil {
		return codec.RowBuffer{}, dberr.Classify(err, dberr.KindQueryError)
	}
	defer rows.Close()

	rb, err := drainRows(rows)
	if err != nil {
		return codec.RowBuffer{}, err
	}
	return rb, nil
}

// RunExec executes a non-row-returning statement (spec §4.5's execute for
// INSERT/UPDATE/DELETE/DDL), returning affected-row count and, when the
// driver supports it, the last insert ID.
func RunExec(ctx context.Context, q Queryer, sqlText string, params []codec.Param) (affected int64, lastInsertID int64, err error) {
	if got := len(params); got != 0 && got != CountPlaceholders(sqlText) {
		return 0, 0, dberr.New(dberr.KindValidationError,
			"parameter count mismatch: statement has %d placeholders, got %d", CountPlaceholders(sqlText), got)
	}

	res, err := q.ExecContext(ctx, sqlText, toDriverArgs(params)...)
	if err != nil {
		return 0, 0, dberr.Classify(err, dberr.KindQueryError)
	}

	affected, _ = res.RowsAffected()
	lastInsertID, _ = res.LastInsertId() // unsupported by most drivers for non-MySQL; zero value is fine
	return affected, lastInsertID, nil
}

// RunMultiResult executes sqlText (typically a stored-procedure call) and
// drains every result set the driver produces via Rows.NextResultSet, for
// spec §4.5's exec_query_multi / the multi-result wire format of spec §4.3.
func RunMultiResult(ctx context.Context, q Queryer, sqlText string, params []codec.Param) ([]codec.ResultFrame, error) {
	rows, err := q.QueryContext(ctx, sqlText, toDriverArgs(params)...)
	if err != nil {
		return nil, dberr.Classify(err, dberr.KindQueryError)
	}
	defer rows.Close()

	var frames []codec.ResultFrame
	for {
		rb, err := drainRows(rows)
		if err != nil {
			return nil, err
		}
		frames = append(frames, codec.ResultFrame{IsRowBuffer: true, Rows: rb})
		if !rows.NextResultSet() {
			break
		}
	}
	if err := rows.Err(); err != nil {
		return nil, dberr.Classify(err, dberr.KindQueryError)
	}
	return frames, nil
}

func drainRows(rows *sql.Rows) (codec.RowBuffer, error) {
	colTypes, err := rows.ColumnTypes()
	if err != nil {
		return codec.RowBuffer{}, dberr.Classify(err, dberr.KindQueryError)
	}

	rb := codec.RowBuffer{Columns: make([]codec.Column, len(colTypes))}
	for i, ct := range colTypes {
		rb.Columns[i] = codec.Column{Name: ct.Name(), ODBCType: odbcTypeOf(ct)}
	}

	scan := make([]interface{}, len(colTypes))
	scanPtrs := make([]interface{}, len(colTypes))
	for i := range scan {
		scanPtrs[i] = &scan[i]
	}

	for rows.Next() {
		if err := rows.Scan(scanPtrs...); err != nil {
			return codec.RowBuffer{}, dberr.Classify(err, dberr.KindQueryError)
		}
		row := make([]interface{}, len(scan))
		copy(row, scan)
		rb.Rows = append(rb.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return codec.RowBuffer{}, dberr.Classify(err, dberr.KindQueryError)
	}
	return rb, nil
}
