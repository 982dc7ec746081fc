package engine

import (
	"context"

	"github.com/odbccore/engine/internal/cache"
	"github.com/odbccore/engine/internal/pool"
)

// GetConnection checks out a connection from dbHandle's pool (spec §4.8) and
// wraps it in its own statement cache, returning a connection handle the
// caller uses for every later prepare/execute/transaction/stream call.
func (e *Engine) GetConnection(ctx context.Context, dbHandle uint32) (uint32, error) {
	d, err := e.getDatabase(dbHandle)
	if err != nil {
		return 0, err
	}

	raw, perr := d.pool.Get(ctx)
	if perr != nil {
		return 0, perr
	}

	c := &connection{
		dbHandle: dbHandle,
		raw:      raw,
		cache:    cache.New(d.cacheCfg),
	}
	id := e.connections.Insert(c)
	return id, nil
}

// ReleaseConnection cascade-closes every statement/cursor owned by handle,
// rolls back any transaction still open on it, discards its statement
// cache, and returns the raw *sql.Conn to its pool (spec §3's "closing a
// Connection closes all its Statements, Transactions, and Streams"
// invariant). A connection marked dirty by a prior failure, or whose
// rollback failed, is discarded rather than pooled.
func (e *Engine) ReleaseConnection(handle uint32) error {
	c, err := e.connections.Remove(handle)
	if err != nil {
		return err
	}

	e.statements.RemoveWhere(func(_ uint32, s *statement) bool { return s.connHandle == handle })
	e.cursors.RemoveWhere(func(_ uint32, cu *cursorHandle) bool {
		if cu.connHandle == handle {
			cu.cursor.Close()
			return true
		}
		return false
	})

	var openTxns []uint32
	e.txnIDs.Range(func(id uint32, _ struct{}) bool {
		openTxns = append(openTxns, id)
		return true
	})
	for _, id := range openTxns {
		if t, ok := e.txns.Get(id); ok && t.Conn == c.raw {
			if rerr := e.txns.Rollback(id); rerr != nil {
				c.dirty = true
			}
			e.txnIDs.Remove(id)
		}
	}

	d, derr := e.getDatabase(c.dbHandle)
	if derr != nil {
		// Database already gone (Disconnect cascade already tore the pool
		// down); nothing left to return the raw conn to.
		return nil
	}
	d.pool.Release(c.raw, c.dirty)
	return nil
}

// PoolState exposes pool.State for odbc_pool_get_state (spec §4.8).
func (e *Engine) PoolState(dbHandle uint32) (pool.State, error) {
	d, err := e.getDatabase(dbHandle)
	if err != nil {
		return pool.State{}, err
	}
	return d.pool.State(), nil
}

// PoolHealthCheck runs an on-demand health check of dbHandle's idle
// connections, outside the background loop already running for it (spec
// §6.1 odbc_pool_health_check).
func (e *Engine) PoolHealthCheck(ctx context.Context, dbHandle uint32) (checked, evicted int, err error) {
	d, err := e.getDatabase(dbHandle)
	if err != nil {
		return 0, 0, err
	}
	checked, evicted = d.pool.HealthCheck(ctx)
	return checked, evicted, nil
}
