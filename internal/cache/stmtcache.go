// Package cache implements the per-connection prepared-statement LRU cache
// of spec §4.7. It is grounded directly on the teacher's
// server/query_cache.go (an LRU+TTL query-result cache keyed by SQL text)
// but repurposed to cache statement handle IDs rather than query results:
// the Handle Registry (internal/registry) owns the *sql.Stmt, this cache
// only owns the SQL-text -> handle-ID index plus recency/TTL bookkeeping, so
// that dropping a cache entry never double-frees the underlying statement.
package cache

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/odbccore/engine/internal/obslog"
)

// Config mirrors the teacher's QueryCacheConfig, renamed to the statement
// cache's vocabulary (spec §4.7: "at most max_cache_size entries per
// connection", "TTL eviction").
type Config struct {
	MaxSize int
	TTL     time.Duration
}

// entry is one cached SQL text -> statement handle mapping, doubly-linked
// for O(1) LRU promotion exactly like the teacher's CacheEntry/LRUNode pair.
type entry struct {
	sql        string
	stmtID     uint32
	createdAt  time.Time
	lastUsedAt time.Time
	execCount  int64
	prev, next *entry
}

// Stats mirrors the teacher's CacheStats, renamed to the §4.7 counter names.
type Stats struct {
	CacheHits      int64
	CacheMisses    int64
	TotalPrepares  int64
	TotalExecutions int64
}

// StmtCache is one connection's prepared-statement LRU.
type StmtCache struct {
	cfg Config

	mu       sync.Mutex
	bySQL    map[string]*entry
	head, tail *entry // head = most recently used
	size     int

	hits, misses, executions int64
}

// New creates an empty statement cache for one connection.
func New(cfg Config) *StmtCache {
	if cfg.MaxSize <= 0 {
		cfg.MaxSize = 200
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 15 * time.Minute
	}
	return &StmtCache{cfg: cfg, bySQL: make(map[string]*entry)}
}

// Lookup returns the cached statement handle for sql if present and not
// expired, promoting it to most-recently-used. The second return reports a
// cache hit; on a hit, total_executions is NOT incremented here — that
// happens once per actual Execute call, tracked separately by the caller.
func (c *StmtCache) Lookup(sql string) (uint32, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.bySQL[sql]
	if !ok {
		c.misses++
		return 0, false
	}
	if time.Since(e.createdAt) > c.cfg.TTL {
		c.removeLocked(e)
		c.misses++
		return 0, false
	}

	e.lastUsedAt = time.Now()
	c.moveToFrontLocked(e)
	c.hits++
	return e.stmtID, true
}

// Insert records a freshly prepared statement under sql, evicting the
// least-recently-used entry if the cache is at capacity. It returns the
// handle ID of any evicted statement so the caller can close it via the
// Handle Registry (the cache never closes statements itself — spec §4.1
// "Statement cache is protected by the owning connection's lock", not the
// registry's).
func (c *StmtCache) Insert(sql string, stmtID uint32) (evictedStmtID uint32, evicted bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	if existing, ok := c.bySQL[sql]; ok {
		existing.stmtID = stmtID
		existing.createdAt = now
		existing.lastUsedAt = now
		c.moveToFrontLocked(existing)
		return 0, false
	}

	e := &entry{sql: sql, stmtID: stmtID, createdAt: now, lastUsedAt: now}
	c.bySQL[sql] = e
	c.addToFrontLocked(e)

	if c.size > c.cfg.MaxSize {
		lru := c.tail
		c.removeLocked(lru)
		evictedStmtID = lru.stmtID
		evicted = true
		obslog.Component("stmtcache").Debug().Str("sql", truncate(lru.sql, 80)).Msg("evicted LRU statement")
	}
	return evictedStmtID, evicted
}

// Remove drops sql from the cache (used when the caller explicitly closes
// the statement). It is a no-op if sql was not cached.
func (c *StmtCache) Remove(sql string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.bySQL[sql]; ok {
		c.removeLocked(e)
	}
}

// RemoveByStmtID drops whichever entry currently points at stmtID, used when
// a statement is closed by handle ID rather than by SQL text.
func (c *StmtCache) RemoveByStmtID(stmtID uint32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, e := range c.bySQL {
		if e.stmtID == stmtID {
			c.removeLocked(e)
			return
		}
	}
}

// Clear drops every cached entry, returning the statement handle IDs that
// were cached so the caller can close them (used by clear_all_statements,
// spec §4.7).
func (c *StmtCache) Clear() []uint32 {
	c.mu.Lock()
	defer c.mu.Unlock()

	ids := make([]uint32, 0, len(c.bySQL))
	for _, e := range c.bySQL {
		ids = append(ids, e.stmtID)
	}
	c.bySQL = make(map[string]*entry)
	c.head, c.tail = nil, nil
	c.size = 0
	return ids
}

// RecordExecution feeds the total_executions counter of §4.7; cache_hits and
// cache_misses are counted by Lookup, and total_prepares is their sum.
func (c *StmtCache) RecordExecution() {
	atomic.AddInt64(&c.executions, 1)
}

// Stats returns a snapshot of this connection's cache counters.
func (c *StmtCache) Stats() Stats {
	c.mu.Lock()
	hits, misses := c.hits, c.misses
	c.mu.Unlock()
	return Stats{
		CacheHits:       hits,
		CacheMisses:     misses,
		TotalPrepares:   hits + misses,
		TotalExecutions: atomic.LoadInt64(&c.executions),
	}
}

// Size returns the current number of cached entries (spec §3 invariant:
// cache_size(C) <= max_cache_size(C)).
func (c *StmtCache) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.size
}

func (c *StmtCache) moveToFrontLocked(e *entry) {
	c.unlinkLocked(e)
	c.addToFrontLocked(e)
}

func (c *StmtCache) addToFrontLocked(e *entry) {
	e.prev, e.next = nil, c.head
	if c.head != nil {
		c.head.prev = e
	}
	c.head = e
	if c.tail == nil {
		c.tail = e
	}
	c.size++
}

func (c *StmtCache) unlinkLocked(e *entry) {
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		c.head = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		c.tail = e.prev
	}
	e.prev, e.next = nil, nil
	c.size--
}

func (c *StmtCache) removeLocked(e *entry) {
	delete(c.bySQL, e.sql)
	c.unlinkLocked(e)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
