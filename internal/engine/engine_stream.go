package engine

import (
	"context"

	"github.com/odbccore/engine/internal/codec"
	"github.com/odbccore/engine/internal/dberr"
	"github.com/odbccore/engine/internal/exec"
	"github.com/odbccore/engine/internal/validate"
)

// streamChunkRows is the row count StreamFetchEncoded pulls from the cursor
// per fetch. No byte-size bound is applied to a chunk: the caller's buffer
// size only decides whether the encoded chunk fits, and a too-small buffer
// gets -2 and then the same chunk again from the pending-chunk cache below.
const streamChunkRows = 500

// cursorHandle is the resource behind a stream_start handle: an open
// *exec.Cursor plus the connection it was opened against (so
// ReleaseConnection can cascade-close it), plus a one-chunk cache so a
// buffer-too-small retry (spec §4.4) re-delivers the same encoded bytes
// instead of re-fetching from the driver and skipping rows.
type cursorHandle struct {
	connHandle uint32
	cursor     *exec.Cursor

	pending        []byte
	pendingHasMore bool
	havePending    bool
}

// StreamOpen runs sqlText and returns a cursor handle for chunked fetching
// (spec §4.6 odbc_stream_start / odbc_stream_start_batched — fetchSize is
// accepted for ABI compatibility with the batched variant but, like
// Execute's fetchSize, has no generic database/sql equivalent to tune).
func (e *Engine) StreamOpen(ctx context.Context, connHandle uint32, sqlText string, params []codec.Param, fetchSize int) (uint32, error) {
	if err := validate.Query(sqlText, validate.Config{MaxQueryLength: e.cfg.MaxQueryLength}); err != nil {
		return 0, err
	}

	c, err := e.getConnection(connHandle)
	if err != nil {
		return 0, err
	}

	cur, err := exec.OpenCursor(ctx, c.raw, sqlText, params)
	if err != nil {
		c.dirty = true
		return 0, err
	}

	id := e.cursors.Insert(&cursorHandle{connHandle: connHandle, cursor: cur})
	return id, nil
}

// StreamFetchEncoded returns the next chunk of an open stream already
// encoded to the row-buffer wire format (spec §4.3/§4.6). Calling it twice
// in a row without an intervening StreamAdvance re-returns the same bytes
// and hasMore value — this is what lets the ABI layer retry a too-small
// buffer without losing or re-fetching rows (spec §4.4's monotone-progress
// guarantee).
func (e *Engine) StreamFetchEncoded(streamHandle uint32) (encoded []byte, hasMore bool, err error) {
	ch, derr := e.cursors.Get(streamHandle)
	if derr != nil {
		return nil, false, derr
	}
	if ch.havePending {
		return ch.pending, ch.pendingHasMore, nil
	}

	chunk, more, ferr := ch.cursor.Fetch(streamChunkRows)
	if ferr != nil {
		return nil, false, ferr
	}
	buf, eerr := codec.Encode(chunk)
	if eerr != nil {
		return nil, false, dberr.Classify(eerr, dberr.KindStreamingProtocol)
	}

	ch.pending = buf
	ch.pendingHasMore = more
	ch.havePending = true
	return buf, more, nil
}

// StreamAdvance clears the pending-chunk cache after the ABI layer has
// successfully copied it into the caller's buffer, letting the next
// StreamFetchEncoded call pull a fresh chunk from the cursor.
func (e *Engine) StreamAdvance(streamHandle uint32) error {
	ch, derr := e.cursors.Get(streamHandle)
	if derr != nil {
		return derr
	}
	ch.havePending = false
	ch.pending = nil
	return nil
}

// StreamClose releases a cursor's underlying *sql.Rows (spec §4.6
// odbc_stream_close). Idempotent: closing an already-removed handle simply
// fails with InvalidHandle, which the ABI layer maps to a silent success
// per spec's "a second close is a silent no-op success".
func (e *Engine) StreamClose(streamHandle uint32) error {
	ch, derr := e.cursors.Remove(streamHandle)
	if derr != nil {
		return derr
	}
	return ch.cursor.Close()
}
