// Package txn implements the Transaction Manager of spec §4.9: named
// transactions over a pooled connection, with nested savepoints. Directly
// adapted from the teacher's server/transactions.go TransactionManager
// (begin/commit/rollback registry keyed by a caller-supplied ID), extended
// with savepoint support the teacher lacks.
package txn

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/odbccore/engine/internal/dberr"
	"github.com/odbccore/engine/internal/obslog"
	"github.com/odbccore/engine/internal/types"
)

// Transaction is one active transaction, keyed by a handle ID rather than
// the teacher's string transactionID since the C ABI only ever hands the
// host an opaque u32 (spec §4.1).
type Transaction struct {
	ID        uint32
	Tx        *sql.Tx
	Conn      *sql.Conn
	StartTime time.Time

	mu         sync.Mutex
	lastUsed   time.Time
	savepoints []string // active stack, innermost last
	closed     bool
}

// Manager tracks every open transaction, mirroring the teacher's
// TransactionManager.transactions map but indexed by handle ID.
type Manager struct {
	mu   sync.RWMutex
	txns map[uint32]*Transaction
}

// New creates an empty transaction manager.
func New() *Manager {
	return &Manager{txns: make(map[uint32]*Transaction)}
}

func isolationFor(level types.IsolationLevel) sql.IsolationLevel {
	switch level {
	case types.IsolationReadUncommitted:
		return sql.LevelReadUncommitted
	case types.IsolationRepeatableRead:
		return sql.LevelRepeatableRead
	case types.IsolationSerializable:
		return sql.LevelSerializable
	default:
		return sql.LevelReadCommitted
	}
}

// Begin starts a new transaction on conn, registering it under id (the
// caller — internal/engine — allocates id from the Handle Registry before
// calling this, exactly the way the teacher registers a transaction before
// returning it to the RPC layer).
func (m *Manager) Begin(ctx context.Context, id uint32, conn *sql.Conn, level types.IsolationLevel, readOnly bool) (*Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.txns[id]; exists {
		return nil, dberr.New(dberr.KindInvalidHandle, "transaction handle %d already in use", id)
	}

	tx, err := conn.BeginTx(ctx, &sql.TxOptions{Isolation: isolationFor(level), ReadOnly: readOnly})
	if err != nil {
		return nil, dberr.Classify(err, dberr.KindQueryError)
	}

	t := &Transaction{
		ID:        id,
		Tx:        tx,
		Conn:      conn,
		StartTime: time.Now(),
		lastUsed:  time.Now(),
	}
	m.txns[id] = t

	obslog.Component("txn").Debug().Uint32("id", id).Msg("transaction started")
	return t, nil
}

// Get retrieves an active transaction by handle ID, touching its last-used
// timestamp (spec §4.9's idle-cleanup bookkeeping).
func (m *Manager) Get(id uint32) (*Transaction, bool) {
	m.mu.RLock()
	t, ok := m.txns[id]
	m.mu.RUnlock()
	if ok {
		t.mu.Lock()
		t.lastUsed = time.Now()
		t.mu.Unlock()
	}
	return t, ok
}

// Commit commits and unregisters a transaction.
func (m *Manager) Commit(id uint32) error {
	m.mu.Lock()
	t, exists := m.txns[id]
	if exists {
		delete(m.txns, id)
	}
	m.mu.Unlock()

	if !exists {
		return dberr.New(dberr.KindInvalidHandle, "transaction handle %d not found", id)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return dberr.New(dberr.KindTransactionClosed, "transaction %d already closed", id)
	}
	t.closed = true

	if err := t.Tx.Commit(); err != nil {
		return dberr.Classify(err, dberr.KindQueryError)
	}
	obslog.Component("txn").Debug().Uint32("id", id).Dur("duration", time.Since(t.StartTime)).Msg("transaction committed")
	return nil
}

// Rollback rolls back and unregisters a transaction.
func (m *Manager) Rollback(id uint32) error {
	m.mu.Lock()
	t, exists := m.txns[id]
	if exists {
		delete(m.txns, id)
	}
	m.mu.Unlock()

	if !exists {
		return dberr.New(dberr.KindInvalidHandle, "transaction handle %d not found", id)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return dberr.New(dberr.KindTransactionClosed, "transaction %d already closed", id)
	}
	t.closed = true

	if err := t.Tx.Rollback(); err != nil {
		return dberr.Classify(err, dberr.KindQueryError)
	}
	obslog.Component("txn").Debug().Uint32("id", id).Dur("duration", time.Since(t.StartTime)).Msg("transaction rolled back")
	return nil
}

// Savepoint creates a new named savepoint within t (spec §4.9: "nested
// savepoints form a stack; a duplicate name pushes a new frame shadowing
// the earlier one" is resolved here by simply allowing duplicate names —
// SQL engines track them as a stack themselves, RELEASE/ROLLBACK always
// targets the innermost matching name).
func (t *Transaction) Savepoint(ctx context.Context, name string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return dberr.New(dberr.KindTransactionClosed, "transaction %d already closed", t.ID)
	}

	if _, err := t.Tx.ExecContext(ctx, fmt.Sprintf("SAVEPOINT %s", quoteIdent(name))); err != nil {
		return dberr.Classify(err, dberr.KindQueryError)
	}
	t.savepoints = append(t.savepoints, name)
	t.lastUsed = time.Now()
	return nil
}

// RollbackToSavepoint rolls back to name, popping every frame above it from
// the tracked stack (ROLLBACK TO does not release the savepoint itself —
// it remains active and can be rolled back to again, per standard SQL
// semantics).
func (t *Transaction) RollbackToSavepoint(ctx context.Context, name string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return dberr.New(dberr.KindTransactionClosed, "transaction %d already closed", t.ID)
	}

	idx := lastIndexOf(t.savepoints, name)
	if idx < 0 {
		return dberr.New(dberr.KindValidationError, "savepoint %q not found in transaction %d", name, t.ID)
	}

	if _, err := t.Tx.ExecContext(ctx, fmt.Sprintf("ROLLBACK TO SAVEPOINT %s", quoteIdent(name))); err != nil {
		return dberr.Classify(err, dberr.KindQueryError)
	}
	t.savepoints = t.savepoints[:idx+1]
	t.lastUsed = time.Now()
	return nil
}

// ReleaseSavepoint discards name and everything nested inside it.
func (t *Transaction) ReleaseSavepoint(ctx context.Context, name string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return dberr.New(dberr.KindTransactionClosed, "transaction %d already closed", t.ID)
	}

	idx := lastIndexOf(t.savepoints, name)
	if idx < 0 {
		return dberr.New(dberr.KindValidationError, "savepoint %q not found in transaction %d", name, t.ID)
	}

	if _, err := t.Tx.ExecContext(ctx, fmt.Sprintf("RELEASE SAVEPOINT %s", quoteIdent(name))); err != nil {
		return dberr.Classify(err, dberr.KindQueryError)
	}
	t.savepoints = t.savepoints[:idx]
	t.lastUsed = time.Now()
	return nil
}

// CleanupExpired force-rolls-back every transaction idle longer than maxAge,
// a direct port of the teacher's CleanupExpiredTransactions. It returns the
// handle IDs it closed so the caller can release their registry entries.
func (m *Manager) CleanupExpired(maxAge time.Duration) []uint32 {
	m.mu.Lock()
	var expired []*Transaction
	now := time.Now()
	for _, t := range m.txns {
		t.mu.Lock()
		idle := now.Sub(t.lastUsed)
		t.mu.Unlock()
		if idle > maxAge {
			expired = append(expired, t)
		}
	}
	for _, t := range expired {
		delete(m.txns, t.ID)
	}
	m.mu.Unlock()

	ids := make([]uint32, 0, len(expired))
	for _, t := range expired {
		t.mu.Lock()
		if !t.closed {
			t.closed = true
			if err := t.Tx.Rollback(); err != nil {
				obslog.Component("txn").Warn().Uint32("id", t.ID).Err(err).Msg("failed to roll back expired transaction")
			}
		}
		t.mu.Unlock()
		ids = append(ids, t.ID)
		obslog.Component("txn").Info().Uint32("id", t.ID).Dur("duration", now.Sub(t.StartTime)).Msg("expired transaction cleaned up")
	}
	return ids
}

// Stats mirrors the teacher's GetStats, renamed to avoid the map[string]any
// shape the teacher used for a JSON-facing RPC response.
type Stats struct {
	ActiveTransactions int
}

// Stats returns the current count of open transactions.
func (m *Manager) Stats() Stats {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return Stats{ActiveTransactions: len(m.txns)}
}

func lastIndexOf(names []string, target string) int {
	for i := len(names) - 1; i >= 0; i-- {
		if names[i] == target {
			return i
		}
	}
	return -1
}

// quoteIdent guards against SQL injection through a savepoint name by
// rejecting anything but a conservative identifier shape — the engine never
// parses SQL (spec §1 Non-goals) but a savepoint name is never user SQL
// text either, so a strict allowlist is safe here.
func quoteIdent(name string) string {
	for _, r := range name {
		if !(r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')) {
			return `"invalid_identifier"`
		}
	}
	if name == "" {
		return `"invalid_identifier"`
	}
	return name
}
