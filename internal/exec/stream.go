package exec

import (
	"context"
	"database/sql"
	"sync"

	"github.com/odbccore/engine/internal/codec"
	"github.com/odbccore/engine/internal/dberr"
)

// Cursor is a streaming result set opened by stream_open and drained in
// chunks by stream_fetch (spec §4.6). Unlike RunQuery, it never materializes
// the whole result in memory — each Fetch call pulls at most chunkSize rows
// off the open *sql.Rows.
type Cursor struct {
	mu       sync.Mutex
	rows     *sql.Rows
	columns  []codec.Column
	scanBuf  []interface{}
	scanPtrs []interface{}
	closed   bool
	exhausted bool
}

// OpenCursor runs sqlText and returns a Cursor positioned before the first
// row. The caller is responsible for registering the returned Cursor in the
// Handle Registry and eventually calling Close.
func OpenCursor(ctx context.Context, q Queryer, sqlText string, params []codec.Param) (*Cursor, error) {
	if got := len(params); got != 0 && got != CountPlaceholders(sqlText) {
		return nil, dberr.New(dberr.KindValidationError,
			"parameter count mismatch: statement has %d placeholders, got %d", CountPlaceholders(sqlText), got)
	}

	rows, err := q.QueryContext(ctx, sqlText, toDriverArgs(params)...)
	if err != nil {
		return nil, dberr.Classify(err, dberr.KindQueryError)
	}

	colTypes, err := rows.ColumnTypes()
	if err != nil {
		rows.Close()
		return nil, dberr.Classify(err, dberr.KindQueryError)
	}

	cols := make([]codec.Column, len(colTypes))
	for i, ct := range colTypes {
		cols[i] = codec.Column{Name: ct.Name(), ODBCType: odbcTypeOf(ct)}
	}

	scan := make([]interface{}, len(colTypes))
	scanPtrs := make([]interface{}, len(colTypes))
	for i := range scan {
		scanPtrs[i] = &scan[i]
	}

	return &Cursor{rows: rows, columns: cols, scanBuf: scan, scanPtrs: scanPtrs}, nil
}

// Fetch pulls up to chunkSize rows from the cursor, rendered as a RowBuffer
// whose Columns are always populated (spec §4.6: "every chunk, including the
// last, repeats the column metadata so partial transfers stay self-
// describing"). hasMore is false once the end of the result has been
// reached; when a chunk ends exactly on the last row, hasMore is still true
// and the next Fetch returns an empty chunk with hasMore false.
func (c *Cursor) Fetch(chunkSize int) (chunk codec.RowBuffer, hasMore bool, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return codec.RowBuffer{}, false, dberr.New(dberr.KindStreamingProtocol, "cursor already closed")
	}
	if chunkSize <= 0 {
		return codec.RowBuffer{}, false, dberr.New(dberr.KindValidationError, "chunk size must be positive")
	}

	chunk.Columns = c.columns
	if c.exhausted {
		return chunk, false, nil
	}

	for len(chunk.Rows) < chunkSize {
		if !c.rows.Next() {
			c.exhausted = true
			break
		}
		if err := c.rows.Scan(c.scanPtrs...); err != nil {
			return codec.RowBuffer{}, false, dberr.Classify(err, dberr.KindQueryError)
		}
		row := make([]interface{}, len(c.scanBuf))
		copy(row, c.scanBuf)
		chunk.Rows = append(chunk.Rows, row)
	}

	if !c.exhausted {
		return chunk, true, nil
	}
	if err := c.rows.Err(); err != nil {
		return codec.RowBuffer{}, false, dberr.Classify(err, dberr.KindQueryError)
	}
	return chunk, false, nil
}

// Close releases the underlying *sql.Rows. Safe to call more than once.
func (c *Cursor) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	return c.rows.Close()
}
