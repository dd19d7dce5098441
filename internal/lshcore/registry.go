package lshcore

import "fmt"

// DeviceRegistry is the authoritative map from device name to DeviceState.
// Devices enter via create-on-write: any mutator referencing an unknown
// name materializes a default entry first. Registry.Get never creates —
// it's used where "never seen" must be distinguishable from "seen but
// degraded" (see Watchdog.CheckDeviceHealth).
type DeviceRegistry struct {
	devices map[string]*DeviceState
}

// NewDeviceRegistry returns an empty registry.
func NewDeviceRegistry() *DeviceRegistry {
	return &DeviceRegistry{devices: make(map[string]*DeviceState)}
}

func (r *DeviceRegistry) getOrCreate(name string) *DeviceState {
	if s, ok := r.devices[name]; ok {
		return s
	}
	s := &DeviceState{Name: name, ActuatorIndexes: make(map[string]int)}
	r.devices[name] = s
	return s
}

// Get returns the device's state without creating an entry if one
// doesn't already exist.
func (r *DeviceRegistry) Get(name string) (DeviceState, bool) {
	s, ok := r.devices[name]
	if !ok {
		return DeviceState{}, false
	}
	return *s, true
}

// RegisterDeviceDetails updates a device's actuator/button schema. See
// spec §4.3.
func (r *DeviceRegistry) RegisterDeviceDetails(name string, actuatorsIDs, buttonsIDs []string, now int64) DetailsResult {
	s := r.getOrCreate(name)

	idsChanged := !stringSlicesEqual(s.ActuatorsIDs, actuatorsIDs)
	lengthChanged := len(s.ActuatorStates) != len(actuatorsIDs)
	changed := idsChanged || lengthChanged

	s.ActuatorsIDs = append([]string(nil), actuatorsIDs...)
	s.ButtonsIDs = append([]string(nil), buttonsIDs...)
	s.ActuatorIndexes = make(map[string]int, len(actuatorsIDs))
	for i, id := range actuatorsIDs {
		s.ActuatorIndexes[id] = i
	}
	if lengthChanged {
		s.ActuatorStates = make([]bool, len(actuatorsIDs))
	}
	s.LastSeenTime = now
	s.LastDetailsTime = now

	return DetailsResult{Changed: changed}
}

// RegisterActuatorStates updates a device's actuator state vector. See
// spec §4.3.
func (r *DeviceRegistry) RegisterActuatorStates(name string, states []bool, now int64) (ActuatorStatesResult, error) {
	_, exists := r.devices[name]
	isNew := !exists
	s := r.getOrCreate(name)

	configIsMissing := s.LastDetailsTime == 0
	if !configIsMissing && len(states) != len(s.ActuatorsIDs) {
		return ActuatorStatesResult{IsNew: isNew, ConfigIsMissing: false},
			&StateLengthMismatchError{Device: name, Got: len(states), Want: len(s.ActuatorsIDs)}
	}

	changed := !boolSlicesEqual(s.ActuatorStates, states)
	s.ActuatorStates = append([]bool(nil), states...)
	s.LastSeenTime = now

	return ActuatorStatesResult{IsNew: isNew, Changed: changed, ConfigIsMissing: configIsMissing}, nil
}

// UpdateConnectionState applies a Homie $state value. See spec §4.3.
func (r *DeviceRegistry) UpdateConnectionState(name, homieState string, now int64) ConnectionResult {
	s := r.getOrCreate(name)
	isReady := homieState == HomieReady

	if isReady == s.Connected {
		s.LastSeenTime = now
		return ConnectionResult{StateChanged: false, Connected: s.Connected}
	}

	wentOffline := s.Connected && !isReady
	cameOnline := !s.Connected && isReady
	s.Connected = isReady
	if isReady {
		s.IsHealthy = true
		s.IsStale = false
		s.AlertSent = false
	} else {
		s.IsHealthy = false
		s.IsStale = false
	}
	s.LastSeenTime = now

	return ConnectionResult{StateChanged: true, Connected: s.Connected, CameOnline: cameOnline, WentOffline: wentOffline}
}

// RecordBoot marks a device connected and healthy following a boot
// announcement. See spec §4.3.
func (r *DeviceRegistry) RecordBoot(name string, now int64) BootResult {
	s := r.getOrCreate(name)
	changed := !s.Connected || !s.IsHealthy || s.IsStale

	s.Connected = true
	s.IsHealthy = true
	s.IsStale = false
	s.LastBootTime = now
	s.LastSeenTime = now

	return BootResult{StateChanged: changed}
}

// RecordPingResponse applies a ping response. See spec §4.3.
func (r *DeviceRegistry) RecordPingResponse(name string, now int64) PingResponseResult {
	s := r.getOrCreate(name)
	if !s.IsHealthy || s.IsStale {
		s.IsHealthy = true
		s.IsStale = false
		s.AlertSent = false
		s.LastSeenTime = now
		return PingResponseResult{StateChanged: true, CameOnline: true}
	}
	return PingResponseResult{StateChanged: false}
}

// UpdateHealthFromResult applies a Watchdog verdict, but only if the
// device already has a registry entry. See spec §4.3.
func (r *DeviceRegistry) UpdateHealthFromResult(name string, verdict WatchdogVerdict) HealthResult {
	s, exists := r.devices[name]
	if !exists {
		return HealthResult{}
	}

	switch verdict.Kind {
	case WatchdogOK:
		if !s.IsHealthy || s.IsStale {
			s.IsHealthy = true
			s.IsStale = false
			return HealthResult{StateChanged: true}
		}
	case WatchdogStale:
		if !s.IsStale {
			s.IsStale = true
			return HealthResult{StateChanged: true}
		}
	case WatchdogUnhealthy:
		if s.IsHealthy || s.IsStale {
			s.IsHealthy = false
			s.IsStale = false
			return HealthResult{StateChanged: true}
		}
	case WatchdogNeedsPing:
		// no-op: a ping was (re)armed, nothing about health changed yet.
	}
	return HealthResult{}
}

// RecordAlertSent marks that an unhealthy alert has been emitted for a
// device, suppressing repeats until the device recovers. Create-on-write.
func (r *DeviceRegistry) RecordAlertSent(name string) AlertResult {
	s := r.getOrCreate(name)
	if s.AlertSent {
		return AlertResult{}
	}
	s.AlertSent = true
	s.IsHealthy = false
	return AlertResult{StateChanged: true}
}

// Prune removes a single device entry.
func (r *DeviceRegistry) Prune(name string) {
	delete(r.devices, name)
}

// PruneNotIn removes every entry whose name is not in keep.
func (r *DeviceRegistry) PruneNotIn(keep map[string]struct{}) {
	for name := range r.devices {
		if _, ok := keep[name]; !ok {
			delete(r.devices, name)
		}
	}
}

// Snapshot returns a defensive deep copy of the whole registry, safe for
// a caller to mutate freely.
func (r *DeviceRegistry) Snapshot() map[string]DeviceState {
	out := make(map[string]DeviceState, len(r.devices))
	for name, s := range r.devices {
		out[name] = s.DeepCopy()
	}
	return out
}

// SmartToggle evaluates the group majority-threshold decision described in
// spec §4.4. ctxReader and otherDevicesPrefix resolve otherActors entries;
// ctxReader may be nil if no otherActors are ever configured.
func (r *DeviceRegistry) SmartToggle(actors []Actor, otherActors []string, ctxReader ContextReader, otherDevicesPrefix string) SmartToggleResult {
	active, total := 0, 0
	var warning string

	for _, actor := range actors {
		s, ok := r.devices[actor.Name]
		if !ok {
			continue
		}
		if actor.AllActuators {
			total += len(s.ActuatorStates)
			for _, v := range s.ActuatorStates {
				if v {
					active++
				}
			}
			continue
		}
		for _, aid := range actor.Actuators {
			idx, ok := s.ActuatorIndexes[aid]
			if !ok || idx >= len(s.ActuatorStates) {
				continue
			}
			total++
			if s.ActuatorStates[idx] {
				active++
			}
		}
	}

	var otherWarnings []string
	for _, name := range otherActors {
		if ctxReader == nil {
			otherWarnings = append(otherWarnings, fmt.Sprintf("Smart Toggle: no value for external actor %q.", name))
			continue
		}
		key := fmt.Sprintf("%s.%s.state", otherDevicesPrefix, name)
		val, ok := ctxReader.LookupBool(key)
		if !ok {
			otherWarnings = append(otherWarnings, fmt.Sprintf("Smart Toggle: no value for external actor %q.", name))
			continue
		}
		total++
		if val {
			active++
		}
	}
	if len(otherWarnings) > 0 {
		warning = joinSpace(otherWarnings)
	}

	if total == 0 {
		if warning == "" {
			warning = "Smart Toggle: No valid actuators found to calculate state."
		}
		return SmartToggleResult{StateToSet: false, Active: active, Total: total, Warning: warning}
	}

	stateToSet := float64(active) < float64(total)/2.0
	return SmartToggleResult{StateToSet: stateToSet, Active: active, Total: total, Warning: warning}
}

func stringSlicesEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func boolSlicesEqual(a, b []bool) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func joinSpace(parts []string) string {
	out := ""
	for i, p := range parts {
		if i > 0 {
			out += " "
		}
		out += p
	}
	return out
}
