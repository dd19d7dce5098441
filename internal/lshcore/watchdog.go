package lshcore

// Watchdog is a pure liveness machine with four verdicts: a device is ok,
// needsPing, stale, or unhealthy, decided entirely from a DeviceState, the
// current time, and this watchdog's own ping bookkeeping — never from a
// timer or goroutine of its own.
type Watchdog struct {
	interrogateThresholdMillis int64
	pingTimeoutMillis          int64
	pingSentAt                 map[string]int64
}

// NewWatchdog returns a Watchdog configured with the silence threshold
// that triggers a ping and the timeout to wait for a response.
func NewWatchdog(interrogateThresholdMillis, pingTimeoutMillis int64) *Watchdog {
	return &Watchdog{
		interrogateThresholdMillis: interrogateThresholdMillis,
		pingTimeoutMillis:          pingTimeoutMillis,
		pingSentAt:                 make(map[string]int64),
	}
}

// CheckDeviceHealth implements the decision tree from spec §4.1. state may
// be nil, meaning the configured device has no registry entry at all.
func (w *Watchdog) CheckDeviceHealth(name string, state *DeviceState, now int64) WatchdogVerdict {
	if state == nil {
		return WatchdogVerdict{Kind: WatchdogUnhealthy, Reason: "Never seen on the network."}
	}

	if state.LastSeenTime == 0 {
		w.pingSentAt[name] = now
		return WatchdogVerdict{Kind: WatchdogNeedsPing}
	}

	silence := now - state.LastSeenTime
	if silence < w.interrogateThresholdMillis {
		delete(w.pingSentAt, name)
		return WatchdogVerdict{Kind: WatchdogOK}
	}

	if sentAt, ok := w.pingSentAt[name]; ok {
		if now-sentAt > w.pingTimeoutMillis {
			w.pingSentAt[name] = now
			return WatchdogVerdict{Kind: WatchdogStale}
		}
		return WatchdogVerdict{Kind: WatchdogOK}
	}

	w.pingSentAt[name] = now
	return WatchdogVerdict{Kind: WatchdogNeedsPing}
}

// OnDeviceActivity clears any outstanding ping bookkeeping for a device.
// The Orchestrator calls this before routing any message keyed by device
// name, so a device that's talking is never simultaneously "overdue".
func (w *Watchdog) OnDeviceActivity(name string) {
	delete(w.pingSentAt, name)
}
