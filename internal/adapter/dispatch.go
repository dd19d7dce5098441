package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/nerrad567/gray-logic-lsh/internal/audit"
	"github.com/nerrad567/gray-logic-lsh/internal/lshcore"
)

// publishQoS is the QoS used for every command the adapter publishes and
// every subscription it makes; it mirrors the configured MQTT QoS rather
// than hardcoding a level.
func (s *Service) publishQoS() byte {
	return byte(s.cfg.MQTT.QoS)
}

// subscribe wires the four MQTT topic-wildcard subscriptions onto the
// core goroutine: every inbound message is handed to
// lshcore.Orchestrator.ProcessMessage and its ServiceResult dispatched
// from there.
func (s *Service) subscribe() error {
	wildcards := []string{
		s.topics.HomieStateWildcard(),
		s.topics.DeviceConfWildcard(),
		s.topics.DeviceStateWildcard(),
		s.topics.DeviceMiscWildcard(),
	}

	for _, topic := range wildcards {
		topic := topic
		handler := func(t string, payload []byte) error {
			s.enqueueProcessMessage(t, payload)
			return nil
		}
		if err := s.mqttClient.Subscribe(topic, s.publishQoS(), handler); err != nil {
			return fmt.Errorf("subscribing to %s: %w", topic, err)
		}
	}
	return nil
}

// enqueueProcessMessage routes one inbound MQTT message onto the core
// goroutine. The job queue has bounded depth; if it's full the message
// is dropped and logged rather than blocking the paho callback
// goroutine indefinitely.
func (s *Service) enqueueProcessMessage(topic string, payload []byte) {
	job := func() {
		result := s.orch.ProcessMessage(topic, payload)
		s.dispatch(result)
	}
	select {
	case s.jobs <- job:
	default:
		s.logger.Warn("core job queue full, dropping inbound message", "topic", topic)
	}
}

// dispatch fans a ServiceResult out to every interested collaborator:
// MQTT publishes, the context-store (for OtherActors fan-out),
// InfluxDB telemetry, the audit trail, structured logs, and finally the
// onResult callback used by internal/api's websocket hub.
func (s *Service) dispatch(result lshcore.ServiceResult) {
	for _, cmd := range result.LSH {
		s.publishCommand(cmd.Topic, cmd)
	}
	for _, cmd := range result.Broadcast {
		s.publishCommand(cmd.Topic, cmd)
	}

	s.dispatchOtherActors(result.OtherActors)
	s.recordTelemetry(result)
	s.recordAudit(result)

	for _, msg := range result.Logs {
		s.logger.Info(msg)
	}
	for _, msg := range result.Warnings {
		s.logger.Warn(msg)
	}
	for _, msg := range result.Errors {
		s.logger.Error(msg)
	}
	for _, msg := range result.Alerts {
		s.logger.Warn("alert", "message", msg)
	}

	if s.onResult != nil && result.StateChanged {
		s.onResult(result)
	}
}

func (s *Service) publishCommand(topic string, cmd lshcore.Command) {
	body, err := json.Marshal(cmd.Payload)
	if err != nil {
		s.logger.Error("marshalling outbound command failed", "topic", topic, "error", err)
		return
	}
	if err := s.mqttClient.Publish(topic, body, s.publishQoS(), false); err != nil {
		s.logger.Warn("publishing outbound command failed", "topic", topic, "error", err)
	}
}

// dispatchOtherActors mirrors every click decision bound for non-LSH
// actors into the context-store, keyed "<prefix>.<name>.state", so a
// later smartToggle pass (or an external consumer) can read it back.
func (s *Service) dispatchOtherActors(messages []lshcore.OtherActorsMessage) {
	if s.ctxStore == nil {
		return
	}
	ctx := context.Background()
	prefix := s.cfg.LSH.OtherActorsPrefix
	for _, msg := range messages {
		for _, name := range msg.OtherActors {
			key := fmt.Sprintf("%s.%s.state", prefix, name)
			if err := s.ctxStore.Set(ctx, key, msg.StateToSet); err != nil {
				s.logger.Warn("writing other-actor context entry failed", "key", key, "error", err)
			}
		}
	}
}

// recordTelemetry writes an InfluxDB actuator-state point for every
// apply-all or apply-single command in a ServiceResult's LSH port; other
// commands and alerts are not recorded. Best-effort: a disabled or
// disconnected client silently drops these (see influxdb.Client).
func (s *Service) recordTelemetry(result lshcore.ServiceResult) {
	if s.influx == nil {
		return
	}
	for _, cmd := range result.LSH {
		device := s.deviceFromCommandTopic(cmd.Topic)
		switch p := cmd.Payload.(type) {
		case lshcore.ApplyAllActuatorsPayload:
			for i, on := range p.AS {
				s.influx.WriteActuatorState(device, fmt.Sprintf("a%d", i), on)
			}
		case lshcore.ApplySingleActuatorPayload:
			s.influx.WriteActuatorState(device, p.AI, p.AS)
		}
	}
}

// deviceFromCommandTopic recovers the device name from a "<lshBase>
// <device>/IN" command topic. Returns "" for topics that don't match
// the per-device shape (e.g. the broadcast service topic).
func (s *Service) deviceFromCommandTopic(topic string) string {
	rest := strings.TrimPrefix(topic, s.cfg.LSH.LSHBase)
	if rest == topic {
		return ""
	}
	return strings.TrimSuffix(rest, "/IN")
}

// recordAudit persists every alert as an audit trail entry. Logs/
// warnings are comparatively noisy and intentionally not persisted —
// only alerts represent an operator-actionable event.
func (s *Service) recordAudit(result lshcore.ServiceResult) {
	if s.auditLog == nil {
		return
	}
	ctx := context.Background()
	for _, msg := range result.Alerts {
		entry := &audit.AuditLog{
			Action:     "alert",
			EntityType: "lsh_service_result",
			Source:     "adapter",
			Details:    map[string]any{"message": msg},
		}
		if err := s.auditLog.Create(ctx, entry); err != nil {
			s.logger.Warn("writing audit log entry failed", "error", err)
		}
	}
}
