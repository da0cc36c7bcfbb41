package registry

import (
	"sync"

	"github.com/courier-im/courier/pkg/log"
)

// MemoryRegistry is the process-wide user → connection map. Register,
// Lookup and Unregister are each atomic under one mutex so a registration
// cannot race a disconnect-cleanup scan.
type MemoryRegistry struct {
	conns map[uint]Conn
	mu    sync.RWMutex
}

// NewMemoryRegistry creates an empty in-memory registry.
func NewMemoryRegistry() *MemoryRegistry {
	return &MemoryRegistry{
		conns: make(map[uint]Conn),
	}
}

// Register inserts or replaces the entry for userID. A replaced handle is
// not closed; the transport layer still owns it.
func (r *MemoryRegistry) Register(userID uint, conn Conn) {
	r.mu.Lock()
	r.conns[userID] = conn
	r.mu.Unlock()

	logger := log.L()
	logger.Debug().Uint(log.FieldUserID, userID).Msg("connection registered")
}

// Lookup returns the connection for userID, if any.
func (r *MemoryRegistry) Lookup(userID uint) (Conn, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	conn, ok := r.conns[userID]
	return conn, ok
}

// Unregister removes every entry whose value is conn. A connection that
// never registered causes a no-op. The scan runs under the write lock so
// the whole cleanup is one atomic operation.
func (r *MemoryRegistry) Unregister(conn Conn) {
	r.mu.Lock()
	for userID, c := range r.conns {
		if c == conn {
			delete(r.conns, userID)
		}
	}
	r.mu.Unlock()
}

// Count returns the number of registered users.
func (r *MemoryRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}
