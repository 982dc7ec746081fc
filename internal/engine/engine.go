package engine

import (
	"context"
	"database/sql"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/odbccore/engine/internal/cache"
	"github.com/odbccore/engine/internal/codec"
	"github.com/odbccore/engine/internal/config"
	"github.com/odbccore/engine/internal/dberr"
	"github.com/odbccore/engine/internal/driverreg"
	"github.com/odbccore/engine/internal/metrics"
	"github.com/odbccore/engine/internal/obslog"
	"github.com/odbccore/engine/internal/pool"
	"github.com/odbccore/engine/internal/registry"
	"github.com/odbccore/engine/internal/txn"
)

// database is the resource behind an odbc_connect handle: one physical
// database/sql.DB, fronted by a Pool sized from the connection string.
type database struct {
	db         *sql.DB
	pool       *pool.Pool
	driverName string
	cacheCfg   cache.Config
	stopHealth func()
}

// connection is the resource behind a pool_get_connection handle: a checked-
// out *sql.Conn plus the statement cache spec §4.7 scopes to one connection.
type connection struct {
	dbHandle uint32
	raw      *sql.Conn
	cache    *cache.StmtCache
	dirty    bool // set once a statement errors mid-flight; forces discard on release
}

// statement is the resource behind a prepare handle: SQL text plus the
// connection it was prepared against (database/sql does not expose a
// detached prepared-statement object separate from its *sql.Conn).
type statement struct {
	connHandle uint32
	sqlText    string
}

// Engine is the top-level façade the C ABI and the CLI both call into.
type Engine struct {
	cfg *config.EngineConfig

	databases   *registry.Registry[*database]
	connections *registry.Registry[*connection]
	statements  *registry.Registry[*statement]
	cursors     *registry.Registry[*cursorHandle]
	txns        *txn.Manager
	txnIDs      *registry.Registry[struct{}] // allocates/tracks transaction handle IDs; txn.Manager owns the *txn.Transaction itself

	metrics *metrics.Counters
}

// New builds an Engine from cfg (pass config.Default() for built-in
// defaults, or the result of config.Load for a host-supplied configuration).
func New(cfg *config.EngineConfig) *Engine {
	if cfg == nil {
		cfg = config.Default()
	}
	obslog.Configure(cfg.LogLevel, nil)

	return &Engine{
		cfg:         cfg,
		databases:   registry.New[*database]("database"),
		connections: registry.New[*connection]("connection"),
		statements:  registry.New[*statement]("statement"),
		cursors:     registry.New[*cursorHandle]("cursor"),
		txns:        txn.New(),
		txnIDs:      registry.New[struct{}]("transaction"),
		metrics:     metrics.NewCounters(prometheus.DefaultRegisterer),
	}
}

// Connect opens a new database handle for connString (spec §6.2,
// odbc_connect) using the connection string's own pool sizing (or
// driverreg's built-in defaults when it specifies none). It returns the resolved
// driver name so a caller's odbc_detect_driver can surface it without
// re-parsing.
func (e *Engine) Connect(connString string) (handle uint32, driverName string, err error) {
	return e.connect(connString, 5*time.Second, 0)
}

// ConnectWithTimeout is odbc_connect_with_timeout: identical to Connect but
// with an explicit login/ping timeout instead of the engine's default.
func (e *Engine) ConnectWithTimeout(connString string, timeoutMs int) (handle uint32, driverName string, err error) {
	timeout := time.Duration(timeoutMs) * time.Millisecond
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return e.connect(connString, timeout, 0)
}

// PoolCreate is odbc_pool_create: Connect with an explicit pool size
// overriding whatever the connection string or engine defaults specify.
// A pool created this way and a connection opened via Connect share the
// same database handle space and the same cascade-close semantics on
// Disconnect/PoolClose — spec §4.8's pool is this engine's database handle
// with an explicit size instead of the connection string's or the default
// one, not a distinct resource kind, since both ultimately wrap one *sql.DB
// plus one *pool.Pool.
func (e *Engine) PoolCreate(connString string, maxSize int) (handle uint32, err error) {
	id, _, err := e.connect(connString, 5*time.Second, maxSize)
	return id, err
}

func (e *Engine) connect(connString string, pingTimeout time.Duration, maxSizeOverride int) (handle uint32, driverName string, err error) {
	opts, err := driverreg.Resolve(connString)
	if err != nil {
		return 0, "", err
	}
	if maxSizeOverride > 0 {
		opts.Pool.MaxSize = maxSizeOverride
	}

	db, err := sql.Open(opts.DriverName, opts.DataSource)
	if err != nil {
		return 0, "", dberr.Classify(err, dberr.KindConnectionError)
	}

	pingCtx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return 0, "", dberr.Classify(err, dberr.KindConnectionError)
	}

	p := pool.New(db, opts.Pool)
	stop := pool.StartHealthLoop(context.Background(), p, pool.DefaultHealthLoopConfig())

	d := &database{
		db:         db,
		pool:       p,
		driverName: opts.DriverName,
		cacheCfg:   cache.Config{MaxSize: opts.CacheMaxSize, TTL: opts.CacheTTL},
		stopHealth: stop,
	}

	id := e.databases.Insert(d)
	obslog.Component("engine").Info().Uint32("handle", id).Str("driver", opts.DriverName).Msg("connected")
	return id, opts.DriverName, nil
}

// Disconnect closes a database handle and everything it owns: releasing it
// closes its pool (which in turn closes every physical connection); any
// connection/statement/cursor handle still referencing it becomes invalid
// (spec §3's cascade-close invariant).
func (e *Engine) Disconnect(handle uint32) error {
	d, derr := e.databases.Remove(handle)
	if derr != nil {
		return derr
	}

	gone := make(map[uint32]bool)
	e.connections.RemoveWhere(func(id uint32, c *connection) bool {
		if c.dbHandle == handle {
			gone[id] = true
			return true
		}
		return false
	})
	e.statements.RemoveWhere(func(_ uint32, s *statement) bool { return gone[s.connHandle] })
	e.cursors.RemoveWhere(func(_ uint32, cu *cursorHandle) bool {
		if gone[cu.connHandle] {
			cu.cursor.Close()
			return true
		}
		return false
	})

	if d.stopHealth != nil {
		d.stopHealth()
	}
	if err := d.pool.Close(); err != nil {
		return dberr.Classify(err, dberr.KindConnectionError)
	}
	return nil
}

// DetectDriver exposes driverreg.DetectDriver for odbc_detect_driver.
func (e *Engine) DetectDriver(dataSource string) string {
	return driverreg.DetectDriver(dataSource)
}

// GetMetrics renders the process-wide counters (spec §4.11).
func (e *Engine) GetMetrics() codec.MetricsSnapshot {
	return e.metrics.Snapshot()
}

func (e *Engine) getDatabase(handle uint32) (*database, error) {
	d, derr := e.databases.Get(handle)
	if derr != nil {
		return nil, derr
	}
	return d, nil
}

func (e *Engine) getConnection(handle uint32) (*connection, error) {
	c, derr := e.connections.Get(handle)
	if derr != nil {
		return nil, derr
	}
	return c, nil
}
