package contextstore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/nerrad567/gray-logic-lsh/internal/infrastructure/logging"
)

// lookupTimeout bounds how long a single LookupBool query may block.
const lookupTimeout = 500 * time.Millisecond

// Store reads and writes boolean context facts keyed by opaque string,
// backed by the context_entries table. It implements lshcore.ContextReader.
type Store struct {
	db     *sql.DB
	logger *logging.Logger
}

// New wraps an open database connection as a Store.
func New(db *sql.DB, logger *logging.Logger) *Store {
	return &Store{db: db, logger: logger}
}

// LookupBool implements lshcore.ContextReader. A missing key or a query
// error both yield ok=false — the orchestrator treats either case as
// "this actor doesn't count", never as a fatal condition.
func (s *Store) LookupBool(key string) (value bool, ok bool) {
	ctx, cancel := context.WithTimeout(context.Background(), lookupTimeout)
	defer cancel()

	var v int
	err := s.db.QueryRowContext(ctx, `SELECT value FROM context_entries WHERE key = ?`, key).Scan(&v)
	switch {
	case err == sql.ErrNoRows:
		return false, false
	case err != nil:
		s.logger.Warn("context store lookup failed", "key", key, "error", err)
		return false, false
	default:
		return v != 0, true
	}
}

// Set records a boolean fact under key, overwriting any previous value.
func (s *Store) Set(ctx context.Context, key string, value bool) error {
	v := 0
	if value {
		v = 1
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO context_entries (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, v, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("setting context entry %q: %w", key, err)
	}
	return nil
}

// Delete removes a context fact, if present.
func (s *Store) Delete(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM context_entries WHERE key = ?`, key)
	if err != nil {
		return fmt.Errorf("deleting context entry %q: %w", key, err)
	}
	return nil
}
