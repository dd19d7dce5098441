package sysd

import (
	"os"
	"testing"
	"time"
)

func TestNew_NoNotifySocketMeansWatchdogDisabled(t *testing.T) {
	t.Setenv("NOTIFY_SOCKET", "")
	os.Unsetenv("NOTIFY_SOCKET") //nolint:errcheck // best-effort: ensure a clean environment for this test

	n := New()
	if _, enabled := n.WatchdogEnabled(); enabled {
		t.Fatal("expected watchdog disabled without NOTIFY_SOCKET")
	}
}

func TestNotifier_ReadyIsNoOpWithoutSystemd(t *testing.T) {
	os.Unsetenv("NOTIFY_SOCKET") //nolint:errcheck // best-effort: ensure a clean environment for this test
	n := New()
	if err := n.Ready(); err != nil {
		t.Fatalf("Ready() error = %v, want nil when not under systemd", err)
	}
}

func TestRecommendedPingInterval_HalvesWatchdogInterval(t *testing.T) {
	if got := recommendedPingInterval(10 * time.Second); got != 5*time.Second {
		t.Errorf("recommendedPingInterval(10s) = %v, want 5s", got)
	}
}

func TestPid1NotifySocket(t *testing.T) {
	os.Unsetenv("NOTIFY_SOCKET") //nolint:errcheck // best-effort: ensure a clean environment for this test
	if _, ok := pid1NotifySocket(); ok {
		t.Fatal("expected ok=false without NOTIFY_SOCKET set")
	}

	t.Setenv("NOTIFY_SOCKET", "/run/systemd/notify")
	if v, ok := pid1NotifySocket(); !ok || v != "/run/systemd/notify" {
		t.Errorf("pid1NotifySocket() = (%q, %v), want (/run/systemd/notify, true)", v, ok)
	}
}
