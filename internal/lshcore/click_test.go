package lshcore

import "testing"

func TestClickTransactionManager_StartThenConsume(t *testing.T) {
	m := NewClickTransactionManager(5000)
	actors := []Actor{{Name: "lounge-dimmer", AllActuators: true}}

	m.Start("lounge.b1.lc", actors, nil, 1000)
	if m.PendingCount() != 1 {
		t.Fatalf("expected 1 pending, got %d", m.PendingCount())
	}

	tx, ok := m.Consume("lounge.b1.lc")
	if !ok {
		t.Fatal("expected transaction to be found")
	}
	if tx.CreatedAt != 1000 {
		t.Fatalf("got CreatedAt=%d, want 1000", tx.CreatedAt)
	}
	if m.PendingCount() != 0 {
		t.Fatal("consume should remove the transaction")
	}

	if _, ok := m.Consume("lounge.b1.lc"); ok {
		t.Fatal("second consume should miss")
	}
}

func TestClickTransactionManager_ConsumeUnknownMisses(t *testing.T) {
	m := NewClickTransactionManager(5000)
	if _, ok := m.Consume("nope"); ok {
		t.Fatal("expected miss for unknown key")
	}
}

func TestClickTransactionManager_CleanupExpired(t *testing.T) {
	m := NewClickTransactionManager(1000)
	m.Start("a.1.lc", nil, nil, 0)
	m.Start("b.1.lc", nil, nil, 5000)

	removed := m.CleanupExpired(1500)
	if removed != 1 {
		t.Fatalf("expected 1 removed, got %d", removed)
	}
	if m.PendingCount() != 1 {
		t.Fatalf("expected 1 remaining, got %d", m.PendingCount())
	}
	if _, ok := m.Consume("b.1.lc"); !ok {
		t.Fatal("the non-expired transaction should survive")
	}
}

func TestClickKey(t *testing.T) {
	got := ClickKey("lounge-switch", "b2", ClickTypeSuperLong)
	want := "lounge-switch.b2.slc"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}
