// Package metrics implements the process-wide counters of spec §4.11:
// queries, errors, uptime, latency sum/average, plus the statement-cache
// counters of spec §4.7. Counters are atomic; a snapshot reads each field
// independently, so drift across fields is possible but bounded (spec §5).
package metrics

import (
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/odbccore/engine/internal/codec"
)

// Counters holds the engine's process-wide metrics. One instance lives for
// the lifetime of the Environment singleton (spec §3 "Environment").
type Counters struct {
	startTime time.Time

	queries        uint64
	errors         uint64
	totalLatencyMs uint64
	cacheHits      uint64
	cacheMisses    uint64

	promQueries prometheus.Counter
	promErrors  prometheus.Counter
	promLatency prometheus.Histogram
}

// NewCounters creates a fresh counter set, registering its prometheus
// instruments into reg (pass nil to skip prometheus entirely — used by
// tests that don't want global-registry pollution across test binaries).
func NewCounters(reg prometheus.Registerer) *Counters {
	c := &Counters{startTime: time.Now()}

	c.promQueries = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "odbccore_queries_total",
		Help: "Total number of query/execute entry points invoked.",
	})
	c.promErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "odbccore_errors_total",
		Help: "Total number of entry-point failures.",
	})
	c.promLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "odbccore_query_latency_ms",
		Help:    "Latency, in milliseconds, of successful query/execute calls.",
		Buckets: prometheus.ExponentialBuckets(1, 2, 16),
	})

	if reg != nil {
		reg.MustRegister(c.promQueries, c.promErrors, c.promLatency)
	}
	return c
}

// RecordQuery marks one execution entry point as started. Called from every
// exec_query/exec_query_params/exec_query_multi/execute invocation, success
// or failure (spec §4.11: "queries++ on any execute entry point").
func (c *Counters) RecordQuery() {
	atomic.AddUint64(&c.queries, 1)
	c.promQueries.Inc()
}

// RecordError marks one failure. Called by the query and execute paths
// when they fail; failures of other entry points (connect, prepare,
// transactions, streams, bulk, catalog) are not counted here.
func (c *Counters) RecordError() {
	atomic.AddUint64(&c.errors, 1)
	c.promErrors.Inc()
}

// RecordLatency adds a successful call's elapsed time to the running total.
func (c *Counters) RecordLatency(elapsed time.Duration) {
	ms := uint64(elapsed.Milliseconds())
	atomic.AddUint64(&c.totalLatencyMs, ms)
	c.promLatency.Observe(float64(ms))
}

// RecordCacheHit/RecordCacheMiss track process-wide prepare() cache
// effectiveness, independent of any one connection's cache.Stats (spec
// §4.7's per-connection counters report the same events scoped narrower).
func (c *Counters) RecordCacheHit() {
	atomic.AddUint64(&c.cacheHits, 1)
}

func (c *Counters) RecordCacheMiss() {
	atomic.AddUint64(&c.cacheMisses, 1)
}

// Snapshot renders the current counters into the wire format of spec §4.3.
func (c *Counters) Snapshot() codec.MetricsSnapshot {
	queries := atomic.LoadUint64(&c.queries)
	errors := atomic.LoadUint64(&c.errors)
	totalLatency := atomic.LoadUint64(&c.totalLatencyMs)

	var avg uint64
	if queries > 0 {
		avg = totalLatency / queries
	}

	return codec.MetricsSnapshot{
		Queries:        queries,
		Errors:         errors,
		UptimeSeconds:  uint64(time.Since(c.startTime).Seconds()),
		TotalLatencyMs: totalLatency,
		AvgLatencyMs:   avg,
	}
}
