package main

// #include <stdint.h>
import "C"

import "github.com/odbccore/engine/internal/codec"

// odbc_get_metrics returns the 40-byte process-wide metrics snapshot of
// spec §4.3/§4.11 through the buffer-sizing protocol — the canonical
// example spec §8 uses to specify that protocol's too-small/retry behavior.
//
//export odbc_get_metrics
func odbc_get_metrics(buf *C.uchar, bufLen C.size_t, written *C.size_t) C.int32_t {
	snap := engineOrInit().GetMetrics()
	encoded := codec.EncodeMetrics(snap)
	return writeBuffer(buf, bufLen, written, encoded)
}

// encodeCacheStats packs four little-endian u64 counters, reusing the same
// flat layout codec.EncodeMetrics uses for the fixed metrics snapshot.
func encodeCacheStats(hits, misses, totalPrepares, totalExecutions int64) []byte {
	return appendU64(appendU64(appendU64(appendU64(nil, hits), misses), totalPrepares), totalExecutions)
}

func appendU64(buf []byte, v int64) []byte {
	var tmp [8]byte
	u := uint64(v)
	for i := 0; i < 8; i++ {
		tmp[i] = byte(u >> (8 * i))
	}
	return append(buf, tmp[:]...)
}
