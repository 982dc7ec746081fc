package codec

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odbccore/engine/internal/types"
)

func TestRowBufferRoundTrip(t *testing.T) {
	rb := RowBuffer{
		Columns: []Column{
			{Name: "id", ODBCType: types.SQLInteger},
			{Name: "name", ODBCType: types.SQLVarchar},
			{Name: "score", ODBCType: types.SQLDouble},
		},
		Rows: [][]interface{}{
			{int32(1), "alice", 9.5},
			{int32(2), nil, 0.0},
		},
	}

	buf, err := Encode(rb)
	require.NoError(t, err)

	got, err := Decode(buf)
	require.NoError(t, err)

	require.Len(t, got.Columns, 3)
	assert.Equal(t, "id", got.Columns[0].Name)
	require.Len(t, got.Rows, 2)
	assert.Equal(t, int32(1), got.Rows[0][0])
	assert.Equal(t, "alice", got.Rows[0][1])
	assert.InDelta(t, 9.5, got.Rows[0][2], 0.0001)
	assert.Nil(t, got.Rows[1][1])
}

func TestRowBufferEmptyResultHasZeroColumns(t *testing.T) {
	rb := RowBuffer{}
	buf, err := Encode(rb)
	require.NoError(t, err)

	got, err := Decode(buf)
	require.NoError(t, err)
	assert.Empty(t, got.Columns)
	assert.Empty(t, got.Rows)
}

func TestRowBufferRejectsBadMagic(t *testing.T) {
	buf := make([]byte, 16)
	_, err := Decode(buf)
	assert.Error(t, err)
}

func TestRowBufferRejectsWrongVersion(t *testing.T) {
	rb := RowBuffer{Columns: []Column{{Name: "x", ODBCType: types.SQLInteger}}}
	buf, err := Encode(rb)
	require.NoError(t, err)
	buf[4] = 2 // corrupt version field
	_, err = Decode(buf)
	assert.Error(t, err)
}

func TestDatetimeRoundTrip(t *testing.T) {
	now := time.Date(2026, 7, 29, 12, 30, 0, 0, time.UTC)
	rb := RowBuffer{
		Columns: []Column{{Name: "created_at", ODBCType: types.SQLTypeTimestamp}},
		Rows:    [][]interface{}{{now}},
	}
	buf, err := Encode(rb)
	require.NoError(t, err)
	got, err := Decode(buf)
	require.NoError(t, err)
	gotTime, ok := got.Rows[0][0].(time.Time)
	require.True(t, ok)
	assert.True(t, now.Equal(gotTime))
}

func TestParamsRoundTrip(t *testing.T) {
	params := []Param{
		{Tag: types.ParamNull},
		{Tag: types.ParamString, Value: []byte("hello")},
		{Tag: types.ParamInt32, Value: appendInt32(nil, 42)},
		{Tag: types.ParamInt64, Value: appendInt64(nil, 1<<40)},
		{Tag: types.ParamDecimal, Value: []byte("19.99")},
		{Tag: types.ParamBinary, Value: []byte{0x01, 0x02, 0x03}},
	}

	buf := EncodeParams(params)
	got, err := DecodeParams(buf)
	require.NoError(t, err)
	require.Len(t, got, len(params))
	for i := range params {
		assert.Equal(t, params[i].Tag, got[i].Tag)
		assert.Equal(t, params[i].Value, got[i].Value)
	}
}

func TestMetricsSnapshotIsExactly40Bytes(t *testing.T) {
	m := MetricsSnapshot{Queries: 10, Errors: 1, UptimeSeconds: 3600, TotalLatencyMs: 500, AvgLatencyMs: 50}
	buf := EncodeMetrics(m)
	assert.Len(t, buf, 40)

	got, err := DecodeMetrics(buf)
	require.NoError(t, err)
	assert.Equal(t, m, got)
}

func TestMetricsSnapshotRejectsWrongSize(t *testing.T) {
	_, err := DecodeMetrics(make([]byte, 8))
	assert.Error(t, err)
}

func TestBulkPayloadRoundTrip(t *testing.T) {
	p := BulkPayload{
		Table: "users",
		Columns: []BulkColumn{
			{Name: "id", Tag: types.BulkInt32, Nullable: false, MaxLen: 4},
			{Name: "name", Tag: types.BulkText, Nullable: true, MaxLen: 255},
		},
		RowCount: 2,
		Data: [][]interface{}{
			{int32(1), int32(2)},
			{"alice", nil},
		},
	}

	buf, err := EncodeBulk(p)
	require.NoError(t, err)

	got, err := DecodeBulk(buf)
	require.NoError(t, err)

	assert.Equal(t, "users", got.Table)
	require.Len(t, got.Columns, 2)
	assert.Equal(t, int32(1), got.Data[0][0])
	assert.Equal(t, "alice", got.Data[1][0])
	assert.Nil(t, got.Data[1][1])
}

func TestMultiResultRoundTrip(t *testing.T) {
	frames := []ResultFrame{
		{IsRowBuffer: true, Rows: RowBuffer{
			Columns: []Column{{Name: "id", ODBCType: types.SQLInteger}},
			Rows:    [][]interface{}{{int32(1)}},
		}},
		{IsRowBuffer: false, AffectedRows: 3},
	}

	buf, err := EncodeMultiResult(frames)
	require.NoError(t, err)

	got, err := DecodeMultiResult(buf)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.True(t, got[0].IsRowBuffer)
	assert.Equal(t, int32(1), got[0].Rows.Rows[0][0])
	assert.False(t, got[1].IsRowBuffer)
	assert.EqualValues(t, 3, got[1].AffectedRows)
}
