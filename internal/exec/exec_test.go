package exec

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odbccore/engine/internal/codec"
)

func TestCountPlaceholders(t *testing.T) {
	assert.Equal(t, 2, CountPlaceholders("SELECT * FROM t WHERE a = ? AND b = ?"))
	assert.Equal(t, 0, CountPlaceholders("SELECT '?' FROM t"))
	assert.Equal(t, 1, CountPlaceholders(`SELECT 'it''s a ?' , x FROM t WHERE y = ?`))
}

func TestRunQueryBuildsRowBuffer(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	conn, err := db.Conn(context.Background())
	require.NoError(t, err)

	rows := sqlmock.NewRows([]string{"id", "name"}).AddRow(1, "alice").AddRow(2, "bob")
	mock.ExpectQuery("SELECT id, name FROM users").WillReturnRows(rows)

	rb, err := RunQuery(context.Background(), conn, "SELECT id, name FROM users", nil)
	require.NoError(t, err)
	require.Len(t, rb.Columns, 2)
	require.Len(t, rb.Rows, 2)
}

func TestRunQueryRejectsParamCountMismatch(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	conn, err := db.Conn(context.Background())
	require.NoError(t, err)

	_, err = RunQuery(context.Background(), conn, "SELECT * FROM t WHERE a = ?", []codec.Param{
		{Tag: 1, Value: []byte("x")},
		{Tag: 1, Value: []byte("y")},
	})
	assert.Error(t, err)
}

func TestRunExecReturnsAffectedRows(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	conn, err := db.Conn(context.Background())
	require.NoError(t, err)

	mock.ExpectExec("UPDATE users SET name").WillReturnResult(sqlmock.NewResult(0, 3))

	affected, _, err := RunExec(context.Background(), conn, "UPDATE users SET name = ?", []codec.Param{
		{Tag: 1, Value: []byte("carol")},
	})
	require.NoError(t, err)
	assert.EqualValues(t, 3, affected)
}

func TestCursorFetchReportsHasMore(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	conn, err := db.Conn(context.Background())
	require.NoError(t, err)

	rows := sqlmock.NewRows([]string{"id"}).AddRow(1).AddRow(2).AddRow(3)
	mock.ExpectQuery("SELECT id FROM big_table").WillReturnRows(rows)

	cur, err := OpenCursor(context.Background(), conn, "SELECT id FROM big_table", nil)
	require.NoError(t, err)
	defer cur.Close()

	chunk1, hasMore, err := cur.Fetch(2)
	require.NoError(t, err)
	assert.True(t, hasMore)
	assert.Len(t, chunk1.Rows, 2)

	chunk2, hasMore, err := cur.Fetch(2)
	require.NoError(t, err)
	assert.False(t, hasMore)
	assert.Len(t, chunk2.Rows, 1)
}

func TestCursorFetchAfterCloseFails(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	conn, err := db.Conn(context.Background())
	require.NoError(t, err)

	rows := sqlmock.NewRows([]string{"id"}).AddRow(1)
	mock.ExpectQuery("SELECT id FROM t").WillReturnRows(rows)

	cur, err := OpenCursor(context.Background(), conn, "SELECT id FROM t", nil)
	require.NoError(t, err)
	require.NoError(t, cur.Close())

	_, _, err = cur.Fetch(10)
	assert.Error(t, err)
}
