// Package driverreg resolves a connection string into a registered
// database/sql driver name plus the engine-level options spec §6.2 defines
// (pool sizing, test-on-checkout, statement cache sizing). DSN parsing
// follows the teacher's client/driver.go parseDSN shape — URL query-
// parameter syntax with required/optional keys and sane defaults — adapted
// from RabbitMQ/device parameters to ODBC/pool parameters.
package driverreg

import (
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	_ "github.com/alexbrainman/odbc"   // registers "odbc"
	_ "github.com/go-sql-driver/mysql" // registers "mysql"
	_ "github.com/jackc/pgx/v5/stdlib" // registers "pgx"

	"github.com/odbccore/engine/internal/dberr"
	"github.com/odbccore/engine/internal/pool"
)

func envLookup(key string) string {
	return os.Getenv(key)
}

// Options is everything internal/engine needs to open a database/sql.DB and
// wrap it in a pool, parsed from one connection string.
type Options struct {
	DriverName string
	DataSource string // driver-specific DSN to hand to sql.Open, options stripped
	Pool       pool.Config
	CacheMaxSize int
	CacheTTL     time.Duration
}

// Resolve parses connString (spec §6.2) into Options. connString is itself a
// URL-query-parameter blob: "driver=odbc&dsn=DSN%3D...&pool_max_size=20&...".
// The "dsn" value is the driver-native connection string passed through
// verbatim to sql.Open, exactly as the teacher's DSNConfig.AMQPURL is passed
// through to amqp.Dial untouched.
func Resolve(connString string) (Options, error) {
	u, err := url.Parse("?" + connString)
	if err != nil {
		return Options{}, dberr.New(dberr.KindValidationError, "invalid connection string: %v", err)
	}
	values := u.Query()

	driverName := values.Get("driver")
	if driverName == "" {
		driverName = DetectDriver(values.Get("dsn"))
	}
	if !IsRegistered(driverName) {
		return Options{}, dberr.New(dberr.KindValidationError, "unknown or unregistered driver %q", driverName)
	}

	dataSource := values.Get("dsn")
	if dataSource == "" {
		return Options{}, dberr.New(dberr.KindValidationError, "missing required parameter 'dsn' in connection string")
	}

	opts := Options{
		DriverName:   driverName,
		DataSource:   dataSource,
		CacheMaxSize: 200,
		CacheTTL:     15 * time.Minute,
		Pool: pool.Config{
			MaxSize:        10,
			CheckoutWait:   250 * time.Millisecond,
			TestOnCheckout: true,
			Backoff:        pool.DefaultBackoffConfig(),
		},
	}

	if v := values.Get("pool_max_size"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			opts.Pool.MaxSize = n
		}
	}
	if v := values.Get("pool_checkout_wait"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			opts.Pool.CheckoutWait = d
		}
	}
	if v := values.Get("pool_conn_max_lifetime"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			opts.Pool.ConnMaxLifetime = d
		}
	}
	// POOL_TEST_ON_CHECKOUT connection-string key (also accepted in lowercase),
	// with ODBC_POOL_TEST_ON_CHECKOUT as an environment fallback per spec §6.2,
	// since a host embedding the engine may prefer to set this once per
	// process instead of per DSN.
	if v := firstNonEmpty(values.Get("POOL_TEST_ON_CHECKOUT"), values.Get("pool_test_on_checkout"), envLookup("ODBC_POOL_TEST_ON_CHECKOUT")); v != "" {
		opts.Pool.TestOnCheckout = strings.EqualFold(v, "true") || v == "1"
	}
	if v := values.Get("cache_max_size"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			opts.CacheMaxSize = n
		}
	}
	if v := values.Get("cache_ttl"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			opts.CacheTTL = d
		}
	}

	return opts, nil
}

// DetectDriver implements odbc_detect_driver (spec §6.1): a best-effort
// guess of which registered driver a raw driver-native DSN belongs to, used
// when the host omits an explicit driver= key.
func DetectDriver(dataSource string) string {
	lower := strings.ToLower(dataSource)
	switch {
	case strings.Contains(lower, "://") && strings.HasPrefix(lower, "postgres"):
		return "pgx"
	case strings.Contains(lower, "@tcp(") || strings.Contains(lower, "@unix("):
		return "mysql"
	case strings.Contains(lower, "driver={") || strings.Contains(lower, "dsn="):
		return "odbc"
	default:
		return "odbc"
	}
}

// IsRegistered reports whether name is one of this engine's three
// compiled-in drivers (spec's out-of-pack alexbrainman/odbc production
// default, plus mysql/pgx as test and alternate-backend drivers).
func IsRegistered(name string) bool {
	switch name {
	case "odbc", "mysql", "pgx":
		return true
	default:
		return false
	}
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
