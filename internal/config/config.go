// Package config loads the engine's process-wide configuration the way the
// teacher's server/config.go does — flags overridden by environment
// variables — enriched with viper so a host can also supply a config file.
// Precedence, highest to lowest: env var > config file > flag default.
package config

import (
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EngineConfig holds every tunable the core reads at startup. A thin
// host-language facade is expected to supply a connection string per call
// (spec §1's "Out of scope" boundary); these are process-wide defaults the
// facade need not repeat on every DSN.
type EngineConfig struct {
	LogLevel string

	// Pool defaults (spec §4.8). Connection strings are resolved by
	// internal/driverreg with its own built-in defaults (the same values as
	// Default()); these fields and CacheMaxSize/CacheTTL are not consulted
	// when a connection string omits a key.
	PoolDefaultMaxSize       int
	PoolTestOnCheckoutDefault bool
	PoolCheckoutWait         time.Duration

	// Statement cache defaults (spec §4.7).
	CacheMaxSize int
	CacheTTL     time.Duration

	// Bulk insert defaults (spec §4.10).
	BulkDefaultParallelism int

	// Execution defaults (spec §4.5).
	MaxResultBufferBytes int64
	DefaultQueryTimeout  time.Duration

	// Transaction manager defaults (spec §4.9).
	TransactionMaxAge time.Duration

	// Validation defaults (SPEC_FULL.md §D "Lightweight query validation").
	MaxQueryLength int
}

// Default returns the engine's built-in defaults, matching the scale of the
// teacher's DefaultServerConfig but renamed to this engine's concerns.
func Default() *EngineConfig {
	return &EngineConfig{
		LogLevel: "info",

		PoolDefaultMaxSize:        10,
		PoolTestOnCheckoutDefault: true,
		PoolCheckoutWait:          250 * time.Millisecond,

		CacheMaxSize: 200,
		CacheTTL:     15 * time.Minute,

		BulkDefaultParallelism: 1,

		MaxResultBufferBytes: 64 * 1024 * 1024,
		DefaultQueryTimeout:  30 * time.Second,

		TransactionMaxAge: 10 * time.Minute,

		MaxQueryLength: 1 << 20,
	}
}

// Load builds an EngineConfig from, in increasing priority: built-in
// defaults, an optional config file (configPath, may be empty to skip),
// and ODBCCORE_-prefixed environment variables.
func Load(configPath string, flags *pflag.FlagSet) (*EngineConfig, error) {
	cfg := Default()

	v := viper.New()
	v.SetEnvPrefix("ODBCCORE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v, cfg)

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return nil, err
		}
	}

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
	}

	out := &EngineConfig{
		LogLevel:                  v.GetString("log_level"),
		PoolDefaultMaxSize:        v.GetInt("pool_default_max_size"),
		PoolTestOnCheckoutDefault: v.GetBool("pool_test_on_checkout_default"),
		PoolCheckoutWait:          v.GetDuration("pool_checkout_wait"),
		CacheMaxSize:              v.GetInt("cache_max_size"),
		CacheTTL:                  v.GetDuration("cache_ttl"),
		BulkDefaultParallelism:    v.GetInt("bulk_default_parallelism"),
		MaxResultBufferBytes:      v.GetInt64("max_result_buffer_bytes"),
		DefaultQueryTimeout:       v.GetDuration("default_query_timeout"),
		TransactionMaxAge:         v.GetDuration("transaction_max_age"),
		MaxQueryLength:            v.GetInt("max_query_length"),
	}
	return out, nil
}

func setDefaults(v *viper.Viper, cfg *EngineConfig) {
	v.SetDefault("log_level", cfg.LogLevel)
	v.SetDefault("pool_default_max_size", cfg.PoolDefaultMaxSize)
	v.SetDefault("pool_test_on_checkout_default", cfg.PoolTestOnCheckoutDefault)
	v.SetDefault("pool_checkout_wait", cfg.PoolCheckoutWait)
	v.SetDefault("cache_max_size", cfg.CacheMaxSize)
	v.SetDefault("cache_ttl", cfg.CacheTTL)
	v.SetDefault("bulk_default_parallelism", cfg.BulkDefaultParallelism)
	v.SetDefault("max_result_buffer_bytes", cfg.MaxResultBufferBytes)
	v.SetDefault("default_query_timeout", cfg.DefaultQueryTimeout)
	v.SetDefault("transaction_max_age", cfg.TransactionMaxAge)
	v.SetDefault("max_query_length", cfg.MaxQueryLength)
}

// getEnvBool, getEnvInt, etc. from the teacher's config.go are superseded by
// viper's AutomaticEnv + GetX above; spec §6.2's connection-string-level
// fallback (ODBC_POOL_TEST_ON_CHECKOUT) is handled separately in
// internal/driverreg, since it is per-DSN, not process-wide.
