package pool

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockPool(t *testing.T, cfg Config) (*Pool, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	return New(db, cfg), mock
}

func TestGetDialsUpToMaxSize(t *testing.T) {
	p, mock := newMockPool(t, Config{MaxSize: 2, CheckoutWait: 200 * time.Millisecond})
	mock.ExpectPing()
	mock.ExpectPing()

	ctx := context.Background()
	c1, err := p.Get(ctx)
	require.NoError(t, err)
	c2, err := p.Get(ctx)
	require.NoError(t, err)

	assert.NotNil(t, c1)
	assert.NotNil(t, c2)

	st := p.State()
	assert.Equal(t, 2, st.InUseCount)
	assert.Equal(t, 0, st.IdleCount)
}

func TestGetTimesOutWhenExhausted(t *testing.T) {
	p, mock := newMockPool(t, Config{MaxSize: 1, CheckoutWait: 30 * time.Millisecond})
	mock.ExpectPing()

	ctx := context.Background()
	_, err := p.Get(ctx)
	require.NoError(t, err)

	_, err = p.Get(ctx)
	require.Error(t, err)
}

func TestReleaseReturnsConnectionToIdle(t *testing.T) {
	p, mock := newMockPool(t, Config{MaxSize: 1, CheckoutWait: 200 * time.Millisecond})
	mock.ExpectPing()

	ctx := context.Background()
	c, err := p.Get(ctx)
	require.NoError(t, err)

	p.Release(c, false)

	st := p.State()
	assert.Equal(t, 0, st.InUseCount)
	assert.Equal(t, 1, st.IdleCount)
}

func TestReleaseBrokenDiscardsConnection(t *testing.T) {
	p, mock := newMockPool(t, Config{MaxSize: 1, CheckoutWait: 200 * time.Millisecond})
	mock.ExpectPing()

	ctx := context.Background()
	c, err := p.Get(ctx)
	require.NoError(t, err)

	p.Release(c, true)

	st := p.State()
	assert.Equal(t, 0, st.InUseCount)
	assert.Equal(t, 0, st.IdleCount)

	// slot freed, a subsequent Get should be able to dial again
	mock.ExpectPing()
	_, err = p.Get(ctx)
	assert.NoError(t, err)
}

func TestStateReflectsMaxSize(t *testing.T) {
	p, _ := newMockPool(t, Config{MaxSize: 5, CheckoutWait: 50 * time.Millisecond})
	assert.Equal(t, 5, p.State().MaxSize)
}
