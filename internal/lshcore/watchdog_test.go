package lshcore

import "testing"

func TestWatchdog_NeverSeenGoesStraightToUnhealthy(t *testing.T) {
	w := NewWatchdog(1000, 500)
	verdict := w.CheckDeviceHealth("front-door", nil, 10_000)
	if verdict.Kind != WatchdogUnhealthy {
		t.Fatalf("got %v, want unhealthy", verdict.Kind)
	}
}

func TestWatchdog_FreshSeenDeviceIsHealthy(t *testing.T) {
	w := NewWatchdog(1000, 500)
	state := &DeviceState{LastSeenTime: 9_500}
	verdict := w.CheckDeviceHealth("hallway", state, 10_000)
	if verdict.Kind != WatchdogOK {
		t.Fatalf("got %v, want ok", verdict.Kind)
	}
}

func TestWatchdog_SilenceTriggersPingThenStale(t *testing.T) {
	w := NewWatchdog(1000, 500)
	state := &DeviceState{LastSeenTime: 500}

	v1 := w.CheckDeviceHealth("landing", state, 2000)
	if v1.Kind != WatchdogNeedsPing {
		t.Fatalf("first check: got %v, want needsPing", v1.Kind)
	}

	v2 := w.CheckDeviceHealth("landing", state, 2200)
	if v2.Kind != WatchdogOK {
		t.Fatalf("within ping timeout: got %v, want ok (still awaiting response)", v2.Kind)
	}

	v3 := w.CheckDeviceHealth("landing", state, 2600)
	if v3.Kind != WatchdogStale {
		t.Fatalf("after ping timeout: got %v, want stale", v3.Kind)
	}
}

func TestWatchdog_ActivityClearsPingBookkeeping(t *testing.T) {
	w := NewWatchdog(1000, 500)
	state := &DeviceState{LastSeenTime: 0}

	w.CheckDeviceHealth("kitchen", state, 2000)
	w.OnDeviceActivity("kitchen")

	state.LastSeenTime = 2000
	v := w.CheckDeviceHealth("kitchen", state, 2300)
	if v.Kind != WatchdogOK {
		t.Fatalf("got %v, want ok after activity reset the clock", v.Kind)
	}
}
