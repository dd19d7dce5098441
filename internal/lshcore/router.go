package lshcore

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// OrchestratorConfig carries everything the Orchestrator needs at
// construction time: the injected Clock/ContextReader/Validators triple
// the core is built around, the MQTT topic bases, and the timing knobs
// for the Watchdog and ClickTransactionManager.
type OrchestratorConfig struct {
	Clock         Clock
	ContextReader ContextReader
	Validators    Validators

	HomieBase         string
	LSHBase           string
	ServiceTopic      string
	OtherActorsPrefix string

	ClickTimeoutMillis         int64
	InterrogateThresholdMillis int64
	PingTimeoutMillis          int64
}

// Orchestrator is the top-level entry point of the core: the topic
// router, the click two-phase-commit coordinator, and the owner of the
// DeviceRegistry and Watchdog.
type Orchestrator struct {
	clock         Clock
	contextReader ContextReader
	validators    Validators

	homieBase         string
	lshBase           string
	serviceTopic      string
	otherActorsPrefix string

	registry *DeviceRegistry
	watchdog *Watchdog
	clicks   *ClickTransactionManager

	config      *SystemConfig
	configIndex map[string]DeviceConfig

	homieStateRe *regexp.Regexp
	confRe       *regexp.Regexp
	stateRe      *regexp.Regexp
	miscRe       *regexp.Regexp
}

// NewOrchestrator builds an Orchestrator from config. No SystemConfig is
// loaded yet — call UpdateSystemConfig before routing messages.
func NewOrchestrator(cfg OrchestratorConfig) *Orchestrator {
	homieBase := regexp.QuoteMeta(cfg.HomieBase)
	lshBase := regexp.QuoteMeta(cfg.LSHBase)

	return &Orchestrator{
		clock:             cfg.Clock,
		contextReader:     cfg.ContextReader,
		validators:        cfg.Validators,
		homieBase:         cfg.HomieBase,
		lshBase:           cfg.LSHBase,
		serviceTopic:      cfg.ServiceTopic,
		otherActorsPrefix: cfg.OtherActorsPrefix,
		registry:          NewDeviceRegistry(),
		watchdog:          NewWatchdog(cfg.InterrogateThresholdMillis, cfg.PingTimeoutMillis),
		clicks:            NewClickTransactionManager(cfg.ClickTimeoutMillis),
		homieStateRe:      regexp.MustCompile("^" + homieBase + `([^/]+)/\$state$`),
		confRe:            regexp.MustCompile("^" + lshBase + `([^/]+)/conf$`),
		stateRe:           regexp.MustCompile("^" + lshBase + `([^/]+)/state$`),
		miscRe:            regexp.MustCompile("^" + lshBase + `([^/]+)/misc$`),
	}
}

func (o *Orchestrator) now() int64 {
	return o.clock.NowMillis()
}

func (o *Orchestrator) deviceTopic(name string) string {
	return o.lshBase + name + "/IN"
}

// ProcessMessage routes a single inbound message to its handler. See
// spec §4.5 for the routing table.
func (o *Orchestrator) ProcessMessage(topic string, payload []byte) ServiceResult {
	var result ServiceResult

	if o.config == nil {
		result.warnf("Configuration not loaded, ignoring message.")
		return result
	}

	if m := o.homieStateRe.FindStringSubmatch(topic); m != nil {
		device := m[1]
		o.watchdog.OnDeviceActivity(device)
		o.handleHomieState(device, payload, &result)
		return result
	}

	if m := o.confRe.FindStringSubmatch(topic); m != nil {
		device := m[1]
		o.watchdog.OnDeviceActivity(device)
		o.handleConf(device, payload, &result)
		return result
	}

	if m := o.stateRe.FindStringSubmatch(topic); m != nil {
		device := m[1]
		o.watchdog.OnDeviceActivity(device)
		o.handleState(device, payload, &result)
		return result
	}

	if m := o.miscRe.FindStringSubmatch(topic); m != nil {
		device := m[1]
		o.watchdog.OnDeviceActivity(device)
		o.handleMisc(device, payload, &result)
		return result
	}

	result.logf("No route matched for topic %q.", topic)
	return result
}

func (o *Orchestrator) handleHomieState(device string, payload []byte, result *ServiceResult) {
	homieState := strings.TrimSpace(string(payload))
	cr := o.registry.UpdateConnectionState(device, homieState, o.now())

	if cr.StateChanged {
		result.StateChanged = true
		result.logf("Device %s connection state changed: connected=%t.", device, cr.Connected)
	}
	if cr.WentOffline {
		result.alertf("Device %s reported as '%s' by Homie.", device, homieState)
	}
	if cr.CameOnline {
		result.alertf("Device %s has recovered.", device)
		result.LSH = append(result.LSH,
			Command{Topic: o.deviceTopic(device), Payload: ResendConfigPayload{P: ProtoSendDeviceDetails}},
			Command{Topic: o.deviceTopic(device), Payload: ResendStatePayload{P: ProtoSendActuatorState}},
		)
	}
}

func (o *Orchestrator) handleConf(device string, payload []byte, result *ServiceResult) {
	conf, errs := o.validators.Conf(payload)
	if len(errs) > 0 {
		result.warnf("%s", joinOrUnknown(errs))
		return
	}

	dr := o.registry.RegisterDeviceDetails(device, conf.ActuatorsIDs, conf.ButtonsIDs, o.now())
	if dr.Changed {
		result.StateChanged = true
		result.logf("Device %s details updated: %d actuators, %d buttons.", device, len(conf.ActuatorsIDs), len(conf.ButtonsIDs))
	}
}

func (o *Orchestrator) handleState(device string, payload []byte, result *ServiceResult) {
	sp, errs := o.validators.State(payload)
	if len(errs) > 0 {
		result.warnf("%s", joinOrUnknown(errs))
		return
	}

	sr, err := o.registry.RegisterActuatorStates(device, sp.ActuatorStates, o.now())
	if err != nil {
		var mismatch *StateLengthMismatchError
		if errors.As(err, &mismatch) {
			result.errf("%s", mismatch.Error())
			return
		}
		result.errf("%s", err.Error())
		return
	}

	if sr.IsNew {
		result.logf("Created partial registry entry for %s from a state message.", device)
	}
	if sr.ConfigIsMissing {
		result.warnf("Received actuator states for %s with no known configuration.", device)
		result.LSH = append(result.LSH, Command{Topic: o.deviceTopic(device), Payload: ResendConfigPayload{P: ProtoSendDeviceDetails}})
	}
	if sr.Changed {
		result.StateChanged = true
		result.logf("Device %s actuator states: %v.", device, sp.ActuatorStates)
	}
}

func (o *Orchestrator) handleMisc(device string, payload []byte, result *ServiceResult) {
	misc, errs := o.validators.Misc(payload)
	if len(errs) > 0 {
		result.warnf("%s", joinOrUnknown(errs))
		return
	}

	switch misc.Protocol {
	case ProtoBoot:
		br := o.registry.RecordBoot(device, o.now())
		result.logf("Device %s booted.", device)
		if br.StateChanged {
			result.StateChanged = true
		}
	case ProtoPing:
		pr := o.registry.RecordPingResponse(device, o.now())
		if pr.StateChanged {
			result.StateChanged = true
		}
		if pr.CameOnline {
			result.alertf("Device %s has recovered.", device)
		}
	case ProtoNetworkClick:
		if misc.Click != nil {
			o.handleNetworkClick(device, *misc.Click, result)
		}
	}
}

func (o *Orchestrator) handleNetworkClick(device string, click NetworkClickPayload, result *ServiceResult) {
	key := ClickKey(device, click.ButtonID, click.ClickType)

	if !click.Confirm {
		o.handleClickRequest(device, click, key, result)
		return
	}

	tx, ok := o.clicks.Consume(key)
	if !ok {
		result.warnf("Received confirmation for an expired or unknown click: %s.", key)
		return
	}
	o.executeClickLogic(device, click.ButtonID, tx, click.ClickType, result)
}

func (o *Orchestrator) handleClickRequest(device string, click NetworkClickPayload, key string, result *ServiceResult) {
	actors, otherActors, err := o.validateClickRequest(device, click.ButtonID, click.ClickType)
	if err != nil {
		var cve *ClickValidationError
		if errors.As(err, &cve) {
			if cve.Scope == ClickScopeClick {
				result.LSH = append(result.LSH, Command{
					Topic:   o.deviceTopic(device),
					Payload: FailoverPayload{P: ProtoClickFailover, CT: click.ClickType, BI: click.ButtonID},
				})
				result.alertf("%s", cve.Reason)
			} else {
				result.LSH = append(result.LSH, Command{
					Topic:   o.deviceTopic(device),
					Payload: GeneralFailoverPayload{P: ProtoGeneralFailover},
				})
				result.errf("%s", cve.Reason)
			}
			return
		}
		result.errf("%s", (&UnexpectedError{Err: err}).Error())
		return
	}

	o.clicks.Start(key, actors, otherActors, o.now())
	result.LSH = append(result.LSH, Command{
		Topic:   o.deviceTopic(device),
		Payload: ClickAckPayload{P: ProtoClickAck, CT: click.ClickType, BI: click.ButtonID},
	})
}

// validateClickRequest implements spec §4.6 phase 1.
func (o *Orchestrator) validateClickRequest(device, buttonID, clickType string) ([]Actor, []string, error) {
	cfg, ok := o.configIndex[device]
	if !ok {
		return nil, nil, &ClickValidationError{Reason: "No action configured for this button.", Scope: ClickScopeClick}
	}

	buttons := cfg.LongClickButtons
	if clickType == ClickTypeSuperLong {
		buttons = cfg.SuperLongClickButtons
	}

	var button *ButtonAction
	for i := range buttons {
		if buttons[i].ID == buttonID {
			button = &buttons[i]
			break
		}
	}
	if button == nil {
		return nil, nil, &ClickValidationError{Reason: "No action configured for this button.", Scope: ClickScopeClick}
	}
	if len(button.Actors) == 0 && len(button.OtherActors) == 0 {
		return nil, nil, &ClickValidationError{Reason: "Action configured with no targets.", Scope: ClickScopeClick}
	}

	var offline []string
	for _, actor := range button.Actors {
		state, exists := o.registry.Get(actor.Name)
		if !exists || !state.Connected {
			offline = append(offline, actor.Name)
		}
	}
	if len(offline) > 0 {
		return nil, nil, &ClickValidationError{
			Reason: fmt.Sprintf("Target actor(s) are offline: %s.", strings.Join(offline, ", ")),
			Scope:  ClickScopeClick,
		}
	}

	return button.Actors, button.OtherActors, nil
}

// executeClickLogic implements spec §4.6 phase 2.
func (o *Orchestrator) executeClickLogic(device, buttonID string, tx PendingClickTransaction, clickType string, result *ServiceResult) {
	var stateToSet bool

	if clickType == ClickTypeSuperLong {
		stateToSet = false
	} else {
		st := o.registry.SmartToggle(tx.Actors, tx.OtherActors, o.contextReader, o.otherActorsPrefix)
		stateToSet = st.StateToSet
		result.logf("Smart Toggle: %d/%d active. Decision: %s", st.Active, st.Total, onOffLabel(stateToSet))
		if st.Warning != "" {
			result.Warnings = append(result.Warnings, st.Warning)
		}
	}

	o.buildStateCommands(tx.Actors, stateToSet, result)

	if len(tx.OtherActors) > 0 {
		result.OtherActors = append(result.OtherActors, OtherActorsMessage{
			OtherActors: tx.OtherActors,
			StateToSet:  stateToSet,
			Payload:     fmt.Sprintf("Set state=%t for external actors.", stateToSet),
		})
	}

	result.StateChanged = true
	result.logf("Click confirmed for %s.%s.", device, buttonID)
}

// buildStateCommands synthesises the LSH commands for a resolved click
// decision. See spec §4.6.
func (o *Orchestrator) buildStateCommands(actors []Actor, stateToSet bool, result *ServiceResult) {
	for _, actor := range actors {
		if !actor.AllActuators && len(actor.Actuators) == 1 {
			result.LSH = append(result.LSH, Command{
				Topic:   o.deviceTopic(actor.Name),
				Payload: ApplySingleActuatorPayload{P: ProtoApplySingleActuator, AI: actor.Actuators[0], AS: stateToSet},
			})
			continue
		}

		state, exists := o.registry.Get(actor.Name)
		if !exists {
			continue
		}

		vector := append([]bool(nil), state.ActuatorStates...)
		if actor.AllActuators {
			for i := range vector {
				vector[i] = stateToSet
			}
		} else {
			for _, aid := range actor.Actuators {
				if idx, ok := state.ActuatorIndexes[aid]; ok && idx < len(vector) {
					vector[idx] = stateToSet
				}
			}
		}

		result.LSH = append(result.LSH, Command{
			Topic:   o.deviceTopic(actor.Name),
			Payload: ApplyAllActuatorsPayload{P: ProtoApplyAllActuators, AS: vector},
		})
	}
}

// RunWatchdogCheck implements spec §4.7.
func (o *Orchestrator) RunWatchdogCheck() ServiceResult {
	var result ServiceResult
	if o.config == nil {
		return result
	}

	names := o.configuredNames()
	now := o.now()

	var devicesToPing []string
	var unhealthyReasons []string

	for _, name := range names {
		state, exists := o.registry.Get(name)
		if exists && !state.IsHealthy && state.AlertSent {
			continue
		}

		var statePtr *DeviceState
		if exists {
			statePtr = &state
		}

		verdict := o.watchdog.CheckDeviceHealth(name, statePtr, now)
		o.registry.UpdateHealthFromResult(name, verdict)

		switch verdict.Kind {
		case WatchdogNeedsPing:
			devicesToPing = append(devicesToPing, name)
		case WatchdogStale:
			devicesToPing = append(devicesToPing, name)
			unhealthyReasons = append(unhealthyReasons, fmt.Sprintf("Device %s: No response to ping.", name))
		case WatchdogUnhealthy:
			unhealthyReasons = append(unhealthyReasons, fmt.Sprintf("Device %s: %s", name, verdict.Reason))
			o.registry.RecordAlertSent(name)
		case WatchdogOK:
			// no action
		}
	}

	if len(devicesToPing) > 0 {
		if len(devicesToPing) == len(names) {
			result.Broadcast = append(result.Broadcast, Command{Topic: o.serviceTopic, Payload: PingRequestPayload{P: ProtoPing}})
			result.logf("All %d configured devices overdue; sending single broadcast ping.", len(names))
		} else {
			for _, name := range devicesToPing {
				result.LSH = append(result.LSH, Command{Topic: o.deviceTopic(name), Payload: PingRequestPayload{P: ProtoPing}})
			}
		}
	}

	if len(unhealthyReasons) > 0 {
		result.Alerts = append(result.Alerts, strings.Join(unhealthyReasons, " "))
	}

	return result
}

// CleanupPendingClicks implements spec §4.2's GC sweep.
func (o *Orchestrator) CleanupPendingClicks() *string {
	removed := o.clicks.CleanupExpired(o.now())
	if removed == 0 {
		return nil
	}
	msg := fmt.Sprintf("Removed %d expired click transaction(s).", removed)
	return &msg
}

// VerifyInitialDeviceStates implements spec §4.8 step 1.
func (o *Orchestrator) VerifyInitialDeviceStates() ServiceResult {
	var result ServiceResult
	if o.config == nil {
		return result
	}

	for _, name := range o.configuredNames() {
		state, exists := o.registry.Get(name)
		if exists && state.Connected {
			continue
		}
		result.LSH = append(result.LSH, Command{Topic: o.deviceTopic(name), Payload: PingRequestPayload{P: ProtoPing}})
	}
	result.logf("Sent initial verification ping to %d device(s).", len(result.LSH))
	return result
}

// RunFinalVerification implements spec §4.8 step 2.
func (o *Orchestrator) RunFinalVerification(names []string) ServiceResult {
	var result ServiceResult
	var reasons []string

	for _, name := range names {
		state, exists := o.registry.Get(name)
		if exists && state.IsHealthy {
			continue
		}
		reasons = append(reasons, fmt.Sprintf("Device %s: Did not respond to initial verification ping.", name))
		o.registry.UpdateHealthFromResult(name, WatchdogVerdict{Kind: WatchdogUnhealthy, Reason: "Did not respond to initial verification ping."})
	}

	if len(reasons) > 0 {
		result.Alerts = append(result.Alerts, strings.Join(reasons, " "))
		result.StateChanged = true
	}
	return result
}

// GetStartupCommands asks every configured device to resend its
// configuration and actuator state, priming the registry after a cold
// start.
func (o *Orchestrator) GetStartupCommands() ServiceResult {
	var result ServiceResult
	if o.config == nil {
		return result
	}

	for _, name := range o.configuredNames() {
		result.LSH = append(result.LSH,
			Command{Topic: o.deviceTopic(name), Payload: ResendConfigPayload{P: ProtoSendDeviceDetails}},
			Command{Topic: o.deviceTopic(name), Payload: ResendStatePayload{P: ProtoSendActuatorState}},
		)
	}
	result.logf("Requested startup resend from %d configured device(s).", len(o.configuredNames()))
	return result
}

// UpdateSystemConfig loads a new SystemConfig, pruning registry entries
// for devices no longer configured (surviving entries are untouched).
func (o *Orchestrator) UpdateSystemConfig(cfg SystemConfig) string {
	o.config = &cfg
	o.configIndex = make(map[string]DeviceConfig, len(cfg.Devices))
	keep := make(map[string]struct{}, len(cfg.Devices))
	for _, d := range cfg.Devices {
		o.configIndex[d.Name] = d
		keep[d.Name] = struct{}{}
	}
	o.registry.PruneNotIn(keep)
	return fmt.Sprintf("Loaded %d configured device(s).", len(cfg.Devices))
}

// ClearSystemConfig unloads the current configuration; subsequent
// messages will be ignored with a warning until a new one is loaded.
func (o *Orchestrator) ClearSystemConfig() {
	o.config = nil
	o.configIndex = nil
}

// GetDeviceRegistry returns a defensive deep copy of the whole registry.
func (o *Orchestrator) GetDeviceRegistry() map[string]DeviceState {
	return o.registry.Snapshot()
}

// GetConfiguredDeviceNames returns the configured device names in a
// stable, deterministic order.
func (o *Orchestrator) GetConfiguredDeviceNames() []string {
	return o.configuredNames()
}

func (o *Orchestrator) configuredNames() []string {
	if o.config == nil {
		return nil
	}
	names := make([]string, 0, len(o.config.Devices))
	for _, d := range o.config.Devices {
		names = append(names, d.Name)
	}
	sort.Strings(names)
	return names
}

func joinOrUnknown(errs []string) string {
	if len(errs) == 0 {
		return "unknown validation error"
	}
	return strings.Join(errs, " ")
}

func onOffLabel(stateToSet bool) string {
	if stateToSet {
		return "ON"
	}
	return "OFF"
}
