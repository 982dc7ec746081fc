package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookupMissThenHit(t *testing.T) {
	c := New(Config{MaxSize: 2, TTL: time.Minute})

	_, ok := c.Lookup("select 1")
	assert.False(t, ok)

	c.Insert("select 1", 100)
	id, ok := c.Lookup("select 1")
	require.True(t, ok)
	assert.EqualValues(t, 100, id)

	stats := c.Stats()
	assert.EqualValues(t, 1, stats.CacheHits)
	assert.EqualValues(t, 1, stats.CacheMisses)
}

func TestInsertEvictsLeastRecentlyUsed(t *testing.T) {
	c := New(Config{MaxSize: 2, TTL: time.Minute})

	c.Insert("a", 1)
	c.Insert("b", 2)
	// touch "a" so "b" becomes LRU
	_, _ = c.Lookup("a")

	evictedStmtID, wasEvicted := c.Insert("c", 3)
	require.True(t, wasEvicted)
	assert.EqualValues(t, 2, evictedStmtID)

	_, stillCached := c.Lookup("a")
	assert.True(t, stillCached)
	_, bGone := c.Lookup("b")
	assert.False(t, bGone)
}

func TestLookupExpiresAfterTTL(t *testing.T) {
	c := New(Config{MaxSize: 10, TTL: time.Millisecond})
	c.Insert("select now()", 7)
	time.Sleep(5 * time.Millisecond)

	_, ok := c.Lookup("select now()")
	assert.False(t, ok)
}

func TestClearReturnsAllHandles(t *testing.T) {
	c := New(Config{MaxSize: 10, TTL: time.Minute})
	c.Insert("a", 1)
	c.Insert("b", 2)

	ids := c.Clear()
	assert.ElementsMatch(t, []uint32{1, 2}, ids)
	assert.Equal(t, 0, c.Size())
}

func TestRemoveByStmtID(t *testing.T) {
	c := New(Config{MaxSize: 10, TTL: time.Minute})
	c.Insert("a", 1)
	c.RemoveByStmtID(1)

	_, ok := c.Lookup("a")
	assert.False(t, ok)
}

func TestSizeNeverExceedsMax(t *testing.T) {
	c := New(Config{MaxSize: 3, TTL: time.Minute})
	for i := 0; i < 10; i++ {
		c.Insert(string(rune('a'+i)), uint32(i))
		assert.LessOrEqual(t, c.Size(), 3)
	}
}
