// Package obslog provides the engine's single process-wide structured
// logger. Every component that logged via the teacher's bare log.Printf
// (server/query_cache.go, server/transactions.go, server/worker_pool.go,
// server/monitoring.go) now logs through this package instead, carrying the
// same operational detail as structured fields rather than formatted text.
package obslog

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	mu  sync.RWMutex
	log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		With().Timestamp().Logger()
)

// Configure rebuilds the global logger at the given level, writing to w
// (os.Stderr by default). Called once from engine startup with the level
// resolved by internal/config.
func Configure(level string, w io.Writer) {
	if w == nil {
		w = os.Stderr
	}
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	mu.Lock()
	log = zerolog.New(w).Level(lvl).With().Timestamp().Logger()
	mu.Unlock()
}

// Component returns a logger scoped to one engine component, e.g.
// obslog.Component("pool") or obslog.Component("stmtcache").
func Component(name string) zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return log.With().Str("component", name).Logger()
}
