package contextstore

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/nerrad567/gray-logic-lsh/internal/infrastructure/config"
	"github.com/nerrad567/gray-logic-lsh/internal/infrastructure/database"
	"github.com/nerrad567/gray-logic-lsh/internal/infrastructure/logging"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "context.db")
	db, err := database.Open(database.Config{Path: dbPath, WALMode: true, BusyTimeout: 5})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { db.Close() }) //nolint:errcheck // test cleanup

	if _, err := db.Exec(`CREATE TABLE context_entries (
		key TEXT PRIMARY KEY,
		value INTEGER NOT NULL,
		updated_at TEXT NOT NULL
	)`); err != nil {
		t.Fatalf("creating context_entries: %v", err)
	}

	logger := logging.New(config.LoggingConfig{Level: "error", Format: "text", Output: "stderr"}, "test")
	return New(db.DB, logger)
}

func TestStore_LookupBool_MissingKey(t *testing.T) {
	s := newTestStore(t)

	_, ok := s.LookupBool("lounge.presence.state")
	if ok {
		t.Fatal("expected ok=false for a key that was never set")
	}
}

func TestStore_SetThenLookupBool(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.Set(ctx, "lounge.presence.state", true); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	v, ok := s.LookupBool("lounge.presence.state")
	if !ok || !v {
		t.Fatalf("LookupBool() = (%v, %v), want (true, true)", v, ok)
	}
}

func TestStore_SetOverwritesPreviousValue(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.Set(ctx, "lounge.override.state", true); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := s.Set(ctx, "lounge.override.state", false); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	v, ok := s.LookupBool("lounge.override.state")
	if !ok || v {
		t.Fatalf("LookupBool() = (%v, %v), want (false, true)", v, ok)
	}
}

func TestStore_Delete(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.Set(ctx, "lounge.override.state", true); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := s.Delete(ctx, "lounge.override.state"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	if _, ok := s.LookupBool("lounge.override.state"); ok {
		t.Fatal("expected ok=false after Delete")
	}
}
