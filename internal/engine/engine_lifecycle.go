package engine

import (
	"context"
	"time"

	"github.com/odbccore/engine/internal/obslog"
)

// StartTransactionReaper periodically rolls back transactions idle longer
// than cfg.TransactionMaxAge (spec §4.9), mirroring the teacher's
// heartbeat-driven CleanupExpiredTransactions call in server/heartbeat.go.
// cmd/libodbc's library init starts this once per process and odbc_shutdown
// calls stop(); cmd/odbcctl does not start it.
func (e *Engine) StartTransactionReaper(ctx context.Context) (stop func()) {
	interval := e.cfg.TransactionMaxAge / 2
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	ticker := time.NewTicker(interval)
	done := make(chan struct{})

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				ids := e.txns.CleanupExpired(e.cfg.TransactionMaxAge)
				for _, id := range ids {
					e.txnIDs.Remove(id)
				}
				if len(ids) > 0 {
					obslog.Component("engine").Info().Int("count", len(ids)).Msg("reaped idle transactions")
				}
			case <-ctx.Done():
				return
			case <-done:
				return
			}
		}
	}()

	var closed bool
	return func() {
		if closed {
			return
		}
		closed = true
		close(done)
	}
}

// Shutdown disconnects every live database handle, used by a host process
// tearing the engine down cleanly (spec §3's Environment lifetime ends with
// the process, but an embedding host may still want an orderly drain).
func (e *Engine) Shutdown() {
	var handles []uint32
	e.databases.Range(func(id uint32, _ *database) bool {
		handles = append(handles, id)
		return true
	})
	for _, id := range handles {
		if err := e.Disconnect(id); err != nil {
			obslog.Component("engine").Warn().Uint32("handle", id).Err(err).Msg("error disconnecting during shutdown")
		}
	}
}
