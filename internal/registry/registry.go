// Package registry implements the Handle Registry of spec §4.1: process-wide,
// mutex-protected maps from opaque u32 IDs to owned entities, with monotonic
// ID allocation and soft-delete on close.
//
// The teacher repo (iperfex-team-burrowctl) keeps one ad-hoc
// map[string]*Transaction per concern (server/transactions.go). This
// generalizes that pattern into a single generic registry type reused for
// connections, statements, transactions, streams, and pools, each given its
// own instance so that one kind's churn never takes another kind's lock.
package registry

import (
	"sync"
	"sync/atomic"

	"github.com/odbccore/engine/internal/dberr"
)

// Registry is a generic, concurrency-safe handle table for a single entity
// kind. The zero value is not usable; use New.
type Registry[T any] struct {
	kind    string
	nextID  uint32
	mu      sync.RWMutex
	entries map[uint32]T
}

// New creates an empty registry for entities of type T, labeled with kind
// for logging and error messages (e.g. "connection", "statement").
func New[T any](kind string) *Registry[T] {
	return &Registry[T]{kind: kind, entries: make(map[uint32]T)}
}

// Insert allocates a fresh, never-reused-within-this-process-lifetime ID and
// stores entity under it. ID 0 is reserved to mean "none/failure" and is
// never handed out.
func (r *Registry[T]) Insert(entity T) uint32 {
	id := atomic.AddUint32(&r.nextID, 1) // starts at 1: nextID's zero value means "0 issued so far"
	r.mu.Lock()
	r.entries[id] = entity
	r.mu.Unlock()
	return id
}

// Get resolves id to its live entity. It fails with InvalidHandle if id was
// never issued or has since been removed.
func (r *Registry[T]) Get(id uint32) (T, *dberr.Error) {
	var zero T
	if id == 0 {
		return zero, dberr.New(dberr.KindInvalidHandle, "%s handle 0 is reserved for failure", r.kind)
	}
	r.mu.RLock()
	entity, ok := r.entries[id]
	r.mu.RUnlock()
	if !ok {
		return zero, dberr.New(dberr.KindInvalidHandle, "%s handle %d is not alive", r.kind, id)
	}
	return entity, nil
}

// Remove marks id dead and returns the owned entity for the caller to drop.
// A second removal of the same id returns InvalidHandle — removal is not
// idempotent in the sense of "always succeeds", but it is safe to call twice
// (the second call simply fails cleanly instead of double-freeing).
func (r *Registry[T]) Remove(id uint32) (T, *dberr.Error) {
	var zero T
	r.mu.Lock()
	entity, ok := r.entries[id]
	if ok {
		delete(r.entries, id)
	}
	r.mu.Unlock()
	if !ok {
		return zero, dberr.New(dberr.KindInvalidHandle, "%s handle %d is not alive", r.kind, id)
	}
	return entity, nil
}

// ClearAll bulk-removes every live entry and returns the removed entities.
// Used by operations like clear_all_statements (spec §4.7).
func (r *Registry[T]) ClearAll() []T {
	r.mu.Lock()
	out := make([]T, 0, len(r.entries))
	for id, entity := range r.entries {
		out = append(out, entity)
		delete(r.entries, id)
	}
	r.mu.Unlock()
	return out
}

// RemoveWhere removes and returns every entry for which pred returns true.
// Used to cascade-close a connection's statements/transactions/streams
// (spec §3 invariant: "closing a Connection closes all its Statements,
// Transactions, and Streams").
func (r *Registry[T]) RemoveWhere(pred func(id uint32, entity T) bool) []T {
	r.mu.Lock()
	var out []T
	for id, entity := range r.entries {
		if pred(id, entity) {
			out = append(out, entity)
			delete(r.entries, id)
		}
	}
	r.mu.Unlock()
	return out
}

// Len reports the number of live entries; used by pool/cache size invariants
// in tests.
func (r *Registry[T]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// Range calls f for every live entry. f must not call back into the
// registry (Insert/Remove) — it is called with the read lock held.
func (r *Registry[T]) Range(f func(id uint32, entity T) bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for id, entity := range r.entries {
		if !f(id, entity) {
			return
		}
	}
}
