package txn

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odbccore/engine/internal/types"
)

func TestBeginCommit(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	conn, err := db.Conn(context.Background())
	require.NoError(t, err)

	mock.ExpectBegin()
	mock.ExpectCommit()

	m := New()
	tx, err := m.Begin(context.Background(), 1, conn, types.IsolationReadCommitted, false)
	require.NoError(t, err)
	require.NotNil(t, tx)

	require.NoError(t, m.Commit(1))
	assert.Equal(t, 0, m.Stats().ActiveTransactions)
}

func TestBeginDuplicateIDFails(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	conn, err := db.Conn(context.Background())
	require.NoError(t, err)

	mock.ExpectBegin()

	m := New()
	_, err = m.Begin(context.Background(), 1, conn, types.IsolationReadCommitted, false)
	require.NoError(t, err)

	_, err = m.Begin(context.Background(), 1, conn, types.IsolationReadCommitted, false)
	assert.Error(t, err)
}

func TestRollbackUnregisters(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	conn, err := db.Conn(context.Background())
	require.NoError(t, err)

	mock.ExpectBegin()
	mock.ExpectRollback()

	m := New()
	_, err = m.Begin(context.Background(), 5, conn, types.IsolationSerializable, true)
	require.NoError(t, err)

	require.NoError(t, m.Rollback(5))
	_, found := m.Get(5)
	assert.False(t, found)
}

func TestSavepointLifecycle(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	conn, err := db.Conn(context.Background())
	require.NoError(t, err)

	mock.ExpectBegin()
	mock.ExpectExec("SAVEPOINT sp1").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("ROLLBACK TO SAVEPOINT sp1").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("RELEASE SAVEPOINT sp1").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	m := New()
	tx, err := m.Begin(context.Background(), 9, conn, types.IsolationReadCommitted, false)
	require.NoError(t, err)

	require.NoError(t, tx.Savepoint(context.Background(), "sp1"))
	require.NoError(t, tx.RollbackToSavepoint(context.Background(), "sp1"))
	require.NoError(t, tx.ReleaseSavepoint(context.Background(), "sp1"))
	require.NoError(t, m.Commit(9))
}

func TestRollbackToUnknownSavepointFails(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	conn, err := db.Conn(context.Background())
	require.NoError(t, err)

	mock.ExpectBegin()

	m := New()
	tx, err := m.Begin(context.Background(), 2, conn, types.IsolationReadCommitted, false)
	require.NoError(t, err)

	err = tx.RollbackToSavepoint(context.Background(), "ghost")
	assert.Error(t, err)
}

func TestCleanupExpiredRollsBackIdleTransactions(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	conn, err := db.Conn(context.Background())
	require.NoError(t, err)

	mock.ExpectBegin()
	mock.ExpectRollback()

	m := New()
	_, err = m.Begin(context.Background(), 3, conn, types.IsolationReadCommitted, false)
	require.NoError(t, err)

	time.Sleep(5 * time.Millisecond)
	ids := m.CleanupExpired(time.Millisecond)
	assert.ElementsMatch(t, []uint32{3}, ids)
}
