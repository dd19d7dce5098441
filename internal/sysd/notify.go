package sysd

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/coreos/go-systemd/v22/daemon"
)

// Notifier wraps the systemd sd_notify protocol. It is a no-op when the
// process was not started by systemd with Type=notify (NOTIFY_SOCKET
// unset), so production and development environments share the same
// code path.
type Notifier struct {
	watchdogInterval time.Duration
}

// New inspects the environment and returns a Notifier. WatchdogEnabled
// reports whether systemd expects periodic pings, and at what interval.
func New() *Notifier {
	interval, _ := daemon.SdWatchdogEnabled(false)
	return &Notifier{watchdogInterval: interval}
}

// Ready tells systemd the service has finished starting up. Safe to call
// even when not running under systemd.
func (n *Notifier) Ready() error {
	return notify(daemon.SdNotifyReady)
}

// Stopping tells systemd the service is beginning graceful shutdown.
func (n *Notifier) Stopping() error {
	return notify(daemon.SdNotifyStopping)
}

// Status reports free-form status text, shown by "systemctl status".
func (n *Notifier) Status(msg string) error {
	return notify(fmt.Sprintf("STATUS=%s", msg))
}

// WatchdogEnabled reports whether systemd configured WatchdogSec for
// this unit, and if so, the interval pings are expected at.
func (n *Notifier) WatchdogEnabled() (time.Duration, bool) {
	return n.watchdogInterval, n.watchdogInterval > 0
}

// Ping sends a single watchdog keepalive. The adapter calls it on a
// ticker at RecommendedPingInterval when WatchdogEnabled reports true.
func (n *Notifier) Ping() error {
	return notify(daemon.SdNotifyWatchdog)
}

func notify(state string) error {
	sent, err := daemon.SdNotify(false, state)
	if err != nil {
		return fmt.Errorf("sd_notify: %w", err)
	}
	_ = sent // false simply means NOTIFY_SOCKET was unset; not an error
	return nil
}

// recommendedPingInterval halves the configured watchdog interval per
// systemd.service(5)'s recommendation, so a single missed tick doesn't
// trip the watchdog.
func recommendedPingInterval(watchdogInterval time.Duration) time.Duration {
	return watchdogInterval / 2 //nolint:mnd // systemd.service(5) recommended halving factor
}

// RecommendedPingInterval exposes recommendedPingInterval for callers
// wiring up their own ticker.
func (n *Notifier) RecommendedPingInterval() time.Duration {
	return recommendedPingInterval(n.watchdogInterval)
}

// pid1NotifySocket reports the NOTIFY_SOCKET env var, mainly useful for
// diagnostics/logging at startup.
func pid1NotifySocket() (string, bool) {
	v := os.Getenv("NOTIFY_SOCKET")
	return v, v != ""
}

// ExtendTimeout asks systemd for more startup/shutdown grace time; d
// must be positive and is sent as a number of microseconds.
func (n *Notifier) ExtendTimeout(d time.Duration) error {
	return notify("EXTEND_TIMEOUT_USEC=" + strconv.FormatInt(d.Microseconds(), 10))
}
