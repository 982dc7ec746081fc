package engine

import (
	"context"

	"github.com/odbccore/engine/internal/bulk"
	"github.com/odbccore/engine/internal/codec"
)

// BulkInsertArray loads payload as a single multi-row INSERT statement
// (spec §4.10 odbc_bulk_insert_array).
func (e *Engine) BulkInsertArray(ctx context.Context, dbHandle uint32, payload codec.BulkPayload) (bulk.Result, error) {
	d, err := e.getDatabase(dbHandle)
	if err != nil {
		return bulk.Result{}, err
	}
	return bulk.InsertArray(ctx, d.db, payload)
}

// BulkInsertParallel loads payload across partitionCount concurrent
// connections (spec §4.10 odbc_bulk_insert_parallel). Per SPEC_FULL.md §E,
// a partition failure does not roll back partitions that already committed
// — Result.FailedPartitions reports which ones did not.
func (e *Engine) BulkInsertParallel(ctx context.Context, dbHandle uint32, payload codec.BulkPayload, partitionCount int) (bulk.Result, error) {
	d, err := e.getDatabase(dbHandle)
	if err != nil {
		return bulk.Result{}, err
	}
	if partitionCount <= 0 {
		partitionCount = e.cfg.BulkDefaultParallelism
	}
	return bulk.InsertParallel(ctx, d.db, payload, partitionCount)
}
