package bulk

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odbccore/engine/internal/codec"
	"github.com/odbccore/engine/internal/types"
)

func samplePayload() codec.BulkPayload {
	return codec.BulkPayload{
		Table: "users",
		Columns: []codec.BulkColumn{
			{Name: "id", Tag: types.BulkInt32},
			{Name: "name", Tag: types.BulkText},
		},
		RowCount: 4,
		Data: [][]interface{}{
			{int32(1), int32(2), int32(3), int32(4)},
			{"a", "b", "c", "d"},
		},
	}
}

func TestInsertArrayBuildsSingleStatement(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	mock.ExpectExec("INSERT INTO users").WillReturnResult(sqlmock.NewResult(0, 4))

	res, err := InsertArray(context.Background(), db, samplePayload())
	require.NoError(t, err)
	assert.EqualValues(t, 4, res.RowsInserted)
}

func TestInsertArrayEmptyPayloadIsNoop(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)

	res, err := InsertArray(context.Background(), db, codec.BulkPayload{Table: "users"})
	require.NoError(t, err)
	assert.Zero(t, res.RowsInserted)
}

func TestInsertParallelSumsAcrossPartitions(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	mock.MatchExpectationsInOrder(false)
	mock.ExpectExec("INSERT INTO users").WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec("INSERT INTO users").WillReturnResult(sqlmock.NewResult(0, 2))

	res, err := InsertParallel(context.Background(), db, samplePayload(), 2)
	require.NoError(t, err)
	assert.EqualValues(t, 4, res.RowsInserted)
	assert.Empty(t, res.FailedPartitions)
}

func TestPartitionBoundsDistributesRemainder(t *testing.T) {
	bounds := partitionBounds(7, 3)
	require.Len(t, bounds, 3)

	total := 0
	for _, b := range bounds {
		total += b.end - b.start
	}
	assert.Equal(t, 7, total)
}

func TestBuildInsertRejectsNoColumns(t *testing.T) {
	_, _, err := buildInsert(codec.BulkPayload{Table: "t", RowCount: 1, Data: nil}, 0, 1)
	assert.Error(t, err)
}
