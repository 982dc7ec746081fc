package codec

import (
	"encoding/binary"
	"fmt"
)

// MetricsSnapshot is the decoded form of the 40-byte metrics payload from
// spec §4.3: five little-endian u64 fields.
type MetricsSnapshot struct {
	Queries        uint64
	Errors         uint64
	UptimeSeconds  uint64
	TotalLatencyMs uint64
	AvgLatencyMs   uint64
}

const metricsSnapshotSize = 40

// EncodeMetrics serializes a snapshot to exactly 40 bytes.
func EncodeMetrics(m MetricsSnapshot) []byte {
	out := make([]byte, metricsSnapshotSize)
	binary.LittleEndian.PutUint64(out[0:8], m.Queries)
	binary.LittleEndian.PutUint64(out[8:16], m.Errors)
	binary.LittleEndian.PutUint64(out[16:24], m.UptimeSeconds)
	binary.LittleEndian.PutUint64(out[24:32], m.TotalLatencyMs)
	binary.LittleEndian.PutUint64(out[32:40], m.AvgLatencyMs)
	return out
}

// DecodeMetrics parses a 40-byte metrics payload.
func DecodeMetrics(buf []byte) (MetricsSnapshot, error) {
	if len(buf) != metricsSnapshotSize {
		return MetricsSnapshot{}, fmt.Errorf("codec: metrics snapshot must be %d bytes, got %d", metricsSnapshotSize, len(buf))
	}
	return MetricsSnapshot{
		Queries:        binary.LittleEndian.Uint64(buf[0:8]),
		Errors:         binary.LittleEndian.Uint64(buf[8:16]),
		UptimeSeconds:  binary.LittleEndian.Uint64(buf[16:24]),
		TotalLatencyMs: binary.LittleEndian.Uint64(buf[24:32]),
		AvgLatencyMs:   binary.LittleEndian.Uint64(buf[32:40]),
	}, nil
}
