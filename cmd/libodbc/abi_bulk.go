package main

// #include <stdint.h>
import "C"

import (
	"github.com/odbccore/engine/internal/codec"
	"github.com/odbccore/engine/internal/engine"
)

// odbc_bulk_insert_array loads a bulk payload as a single multi-row INSERT
// (spec §6.1/§4.10). The wire payload already self-describes table name,
// column list, and row count (spec §4.3's bulk-insert payload framing), so
// this entry point takes just the encoded bytes rather than also accepting
// table/columns/row_count as separate C arguments — decoding the payload
// once through codec.DecodeBulk is the single source of truth for all three.
//
//export odbc_bulk_insert_array
func odbc_bulk_insert_array(dbHandle C.uint32_t, data *C.uchar, dataLen C.size_t, insertedOut *C.int64_t) C.int32_t {
	var callErr error
	ok := engine.Guard(func() error {
		payload, err := codec.DecodeBulk(cBytes(data, dataLen))
		if err != nil {
			callErr = err
			return err
		}
		result, err := engineOrInit().BulkInsertArray(bgCtx, uint32(dbHandle), payload)
		if err != nil {
			callErr = err
			return err
		}
		if insertedOut != nil {
			*insertedOut = C.int64_t(result.RowsInserted)
		}
		return nil
	})
	if !ok {
		return codeFromErr(callErr)
	}
	return 0
}

// odbc_bulk_insert_parallel loads a bulk payload across parallelism
// concurrent partitions (spec §6.1/§4.10). Per SPEC_FULL.md §E, a partition
// failure does not roll back partitions that already committed;
// *insertedOut reports however many rows actually landed.
//
//export odbc_bulk_insert_parallel
func odbc_bulk_insert_parallel(dbHandle C.uint32_t, data *C.uchar, dataLen C.size_t, parallelism C.int32_t, insertedOut *C.int64_t) C.int32_t {
	var callErr error
	ok := engine.Guard(func() error {
		payload, err := codec.DecodeBulk(cBytes(data, dataLen))
		if err != nil {
			callErr = err
			return err
		}
		result, err := engineOrInit().BulkInsertParallel(bgCtx, uint32(dbHandle), payload, int(parallelism))
		if insertedOut != nil {
			*insertedOut = C.int64_t(result.RowsInserted)
		}
		if err != nil {
			callErr = err
			return err
		}
		return nil
	})
	if !ok {
		return codeFromErr(callErr)
	}
	return 0
}
