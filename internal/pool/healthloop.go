package pool

import (
	"context"
	"time"

	"github.com/odbccore/engine/internal/obslog"
)

// HealthLoopConfig adapts the teacher's server/heartbeat.go cleanup-ticker
// shape (CleanupInterval) to periodic idle-connection health checks instead
// of stale-client cleanup.
type HealthLoopConfig struct {
	Interval time.Duration
}

// DefaultHealthLoopConfig mirrors the teacher's DefaultServerHeartbeatConfig
// cadence, renamed to this pool's concern.
func DefaultHealthLoopConfig() HealthLoopConfig {
	return HealthLoopConfig{Interval: 2 * time.Minute}
}

// StartHealthLoop runs p.HealthCheck on a ticker until ctx is canceled. The
// caller owns the returned stop function's lifetime; calling it more than
// once is safe.
func StartHealthLoop(ctx context.Context, p *Pool, cfg HealthLoopConfig) (stop func()) {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultHealthLoopConfig().Interval
	}

	loopCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	go func() {
		defer close(done)
		ticker := time.NewTicker(cfg.Interval)
		defer ticker.Stop()

		log := obslog.Component("pool-health")
		for {
			select {
			case <-loopCtx.Done():
				return
			case <-ticker.C:
				checked, evicted := p.HealthCheck(loopCtx)
				log.Debug().Int("checked", checked).Int("evicted", evicted).Msg("periodic health check")
			}
		}
	}()

	var stopped bool
	return func() {
		if stopped {
			return
		}
		stopped = true
		cancel()
		<-done
	}
}
