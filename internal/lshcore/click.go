package lshcore

// ClickTransactionManager coordinates the two-phase commit for network
// clicks: a request phase starts a pending transaction, a confirmation
// phase consumes it, and a periodic sweep garbage-collects anything the
// confirmation never arrived for.
//
// The core is single-threaded (see doc.go); start/consume for a given key
// are never concurrent with themselves, so no internal locking is needed.
type ClickTransactionManager struct {
	ttlMillis int64
	pending   map[string]PendingClickTransaction
}

// NewClickTransactionManager returns a manager with the given
// time-to-live for pending transactions.
func NewClickTransactionManager(ttlMillis int64) *ClickTransactionManager {
	return &ClickTransactionManager{
		ttlMillis: ttlMillis,
		pending:   make(map[string]PendingClickTransaction),
	}
}

// Start unconditionally overwrites any prior transaction under key.
func (m *ClickTransactionManager) Start(key string, actors []Actor, otherActors []string, now int64) {
	m.pending[key] = PendingClickTransaction{
		Actors:      actors,
		OtherActors: otherActors,
		CreatedAt:   now,
	}
}

// Consume is an atomic lookup-and-delete.
func (m *ClickTransactionManager) Consume(key string) (PendingClickTransaction, bool) {
	tx, ok := m.pending[key]
	if ok {
		delete(m.pending, key)
	}
	return tx, ok
}

// CleanupExpired removes every transaction older than the configured TTL
// and returns how many were removed.
func (m *ClickTransactionManager) CleanupExpired(now int64) int {
	removed := 0
	for key, tx := range m.pending {
		if now-tx.CreatedAt > m.ttlMillis {
			delete(m.pending, key)
			removed++
		}
	}
	return removed
}

// PendingCount returns the number of transactions currently pending, for
// introspection and tests.
func (m *ClickTransactionManager) PendingCount() int {
	return len(m.pending)
}
