package pool

import "time"

// BackoffConfig adapts the teacher's client/reconnect.go ReconnectConfig to
// the pool's "open a new physical connection" path (spec §4.8): the same
// exponential-backoff shape, just applied to database/sql.Open+Ping instead
// of an AMQP dial.
type BackoffConfig struct {
	MaxAttempts       int
	InitialInterval   time.Duration
	MaxInterval       time.Duration
	BackoffMultiplier float64
}

// DefaultBackoffConfig mirrors the teacher's DefaultReconnectConfig values,
// scaled down for a local DB dial rather than a broker dial over the network.
func DefaultBackoffConfig() BackoffConfig {
	return BackoffConfig{
		MaxAttempts:       5,
		InitialInterval:   100 * time.Millisecond,
		MaxInterval:       5 * time.Second,
		BackoffMultiplier: 2.0,
	}
}

// backoffState tracks one in-progress retry sequence. Unlike the teacher's
// ConnectionManager, this is not a long-lived goroutine loop: the pool calls
// next() synchronously between dial attempts, since a failed checkout must
// return to its caller rather than retry forever in the background (spec
// §4.8's bounded-wait checkout semantics, SPEC_FULL.md §E).
type backoffState struct {
	cfg      BackoffConfig
	attempts int
	interval time.Duration
}

func newBackoffState(cfg BackoffConfig) *backoffState {
	return &backoffState{cfg: cfg, interval: cfg.InitialInterval}
}

// done reports whether the attempt budget is exhausted.
func (b *backoffState) done() bool {
	return b.cfg.MaxAttempts > 0 && b.attempts >= b.cfg.MaxAttempts
}

// next advances the backoff state and returns how long to wait before the
// next attempt, exactly per the teacher's exponential-multiply-then-cap
// sequence.
func (b *backoffState) next() time.Duration {
	wait := b.interval
	b.attempts++
	b.interval = time.Duration(float64(b.interval) * b.cfg.BackoffMultiplier)
	if b.interval > b.cfg.MaxInterval {
		b.interval = b.cfg.MaxInterval
	}
	return wait
}
