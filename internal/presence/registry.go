// Package presence tracks which users currently hold a live connection.
//
// A Registry maps a user id to at most one connection. A newer connection
// from the same user replaces the older one, and a disconnect only removes
// the entry when it still points at the disconnecting connection, so a late
// disconnect of a replaced connection cannot evict the newer one.
package presence

import (
	"context"
	"sync"
)

// Conn is a live, addressable connection to one user.
type Conn interface {
	// ID uniquely identifies the connection for the lifetime of the process.
	ID() string
	// Send pushes one event to the peer. It must not block for long and must
	// fail (not panic) once the connection is closed.
	Send(ctx context.Context, event string, payload any) error
}

// Gauge receives the number of online users after every change.
// prometheus.Gauge satisfies it.
type Gauge interface {
	Set(float64)
}

// Registry is a concurrency-safe userID -> Conn table. The zero value is not
// usable; create one with NewRegistry.
type Registry struct {
	mu    sync.RWMutex
	conns map[string]Conn // key: userID -> value: current connection
	gauge Gauge
}

// Option configures a Registry.
type Option func(*Registry)

// WithGauge reports the online user count to g.
func WithGauge(g Gauge) Option {
	return func(r *Registry) { r.gauge = g }
}

// NewRegistry creates an empty registry.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{conns: make(map[string]Conn)}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register maps userID to conn, overwriting any previous mapping. It returns
// the connection that was replaced, if any.
func (r *Registry) Register(userID string, conn Conn) (replaced Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()

	replaced = r.conns[userID]
	r.conns[userID] = conn
	r.report()
	return replaced
}

// Unregister removes the mapping for userID only if it still points at conn.
// It reports whether an entry was removed.
func (r *Registry) Unregister(userID string, conn Conn) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.conns[userID]
	if !ok || current.ID() != conn.ID() {
		return false
	}
	delete(r.conns, userID)
	r.report()
	return true
}

// Lookup returns the live connection for userID.
func (r *Registry) Lookup(userID string) (Conn, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	conn, ok := r.conns[userID]
	return conn, ok
}

// Online returns the number of users with a registered connection.
func (r *Registry) Online() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}

// report must be called with mu held.
func (r *Registry) report() {
	if r.gauge != nil {
		r.gauge.Set(float64(len(r.conns)))
	}
}
