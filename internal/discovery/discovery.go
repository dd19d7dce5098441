package discovery

import (
	"encoding/json"
	"fmt"

	"github.com/nerrad567/gray-logic-lsh/internal/infrastructure/mqtt"
	"github.com/nerrad567/gray-logic-lsh/internal/lshcore"
)

// Publisher announces actuators to Home Assistant via retained MQTT
// discovery documents.
type Publisher struct {
	client *mqtt.Client
	topics mqtt.Topics
}

// New builds a Publisher bound to an already-connected MQTT client.
func New(client *mqtt.Client, topics mqtt.Topics) *Publisher {
	return &Publisher{client: client, topics: topics}
}

// switchConfig mirrors Home Assistant's MQTT switch discovery schema.
// Only the fields LSH actuators need are populated.
type switchConfig struct {
	Name          string `json:"name"`
	UniqueID      string `json:"unique_id"`
	CommandTopic  string `json:"command_topic"`
	StateTopic    string `json:"state_topic"`
	ValueTemplate string `json:"value_template"`
	PayloadOn     string `json:"payload_on"`
	PayloadOff    string `json:"payload_off"`
	StateOn       string `json:"state_on"`
	StateOff      string `json:"state_off"`
	Device        struct {
		Identifiers []string `json:"identifiers"`
		Name        string   `json:"name"`
	} `json:"device"`
}

// objectID is the Home Assistant entity object_id for a given device's
// actuator: "<device>_<actuatorID>".
func objectID(device, actuatorID string) string {
	return fmt.Sprintf("%s_%s", device, actuatorID)
}

// buildSwitchConfig constructs the HA discovery document for one
// actuator. index is the actuator's position in the device's
// ActuatorStates vector, used to build the state value_template.
func buildSwitchConfig(topics mqtt.Topics, device, actuatorID string, index int) switchConfig {
	cfg := switchConfig{
		Name:          fmt.Sprintf("%s %s", device, actuatorID),
		UniqueID:      objectID(device, actuatorID),
		CommandTopic:  topics.DeviceIn(device),
		StateTopic:    topics.DeviceState(device),
		ValueTemplate: fmt.Sprintf("{{ value_json.as[%d] | lower }}", index),
		PayloadOn:     fmt.Sprintf(`{"p":"c_asas","ai":%q,"as":true}`, actuatorID),
		PayloadOff:    fmt.Sprintf(`{"p":"c_asas","ai":%q,"as":false}`, actuatorID),
		StateOn:       "true",
		StateOff:      "false",
	}
	cfg.Device.Identifiers = []string{device}
	cfg.Device.Name = device
	return cfg
}

// PublishDevice publishes one retained discovery document per actuator
// known for state. Devices with no registered actuators publish nothing.
func (p *Publisher) PublishDevice(state lshcore.DeviceState) error {
	for i, actuatorID := range state.ActuatorsIDs {
		cfg := buildSwitchConfig(p.topics, state.Name, actuatorID, i)

		body, err := json.Marshal(cfg)
		if err != nil {
			return fmt.Errorf("marshalling discovery config for %s: %w", objectID(state.Name, actuatorID), err)
		}

		topic := p.topics.DiscoveryConfig(objectID(state.Name, actuatorID))
		if err := p.client.PublishRetained(topic, body); err != nil {
			return fmt.Errorf("publishing discovery config for %s: %w", objectID(state.Name, actuatorID), err)
		}
	}
	return nil
}

// PublishAll publishes discovery documents for every device in a
// registry snapshot. Errors for individual devices are collected and
// returned together rather than aborting the whole pass.
func (p *Publisher) PublishAll(snapshot map[string]lshcore.DeviceState) error {
	var firstErr error
	for _, state := range snapshot {
		if err := p.PublishDevice(state); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
