package mqtt

import "fmt"

// Topics builds the MQTT topic strings used by the orchestrator: Homie
// connectivity state under HomieBase, and LSH device/service traffic
// under LSHBase. Both bases are expected to end in "/".
//
//	topics := mqtt.Topics{HomieBase: "homie/", LSHBase: "lsh/"}
//	topics.DeviceIn("lounge-switch") // "lsh/lounge-switch/IN"
type Topics struct {
	HomieBase string
	LSHBase   string
}

// HomieState returns the Homie `$state` topic for a device.
//
// Example: homie/lounge-switch/$state
func (t Topics) HomieState(device string) string {
	return fmt.Sprintf("%s%s/$state", t.HomieBase, device)
}

// HomieStateWildcard returns the subscription pattern matching every
// device's Homie `$state` topic.
func (t Topics) HomieStateWildcard() string {
	return fmt.Sprintf("%s+/$state", t.HomieBase)
}

// DeviceConf returns the topic a device publishes its configuration
// announcement to.
//
// Example: lsh/lounge-switch/conf
func (t Topics) DeviceConf(device string) string {
	return fmt.Sprintf("%s%s/conf", t.LSHBase, device)
}

// DeviceConfWildcard returns the subscription pattern matching every
// device's conf topic.
func (t Topics) DeviceConfWildcard() string {
	return fmt.Sprintf("%s+/conf", t.LSHBase)
}

// DeviceState returns the topic a device publishes its actuator state
// vector to.
//
// Example: lsh/lounge-switch/state
func (t Topics) DeviceState(device string) string {
	return fmt.Sprintf("%s%s/state", t.LSHBase, device)
}

// DeviceStateWildcard returns the subscription pattern matching every
// device's state topic.
func (t Topics) DeviceStateWildcard() string {
	return fmt.Sprintf("%s+/state", t.LSHBase)
}

// DeviceMisc returns the topic a device publishes boot/ping/click
// messages to.
//
// Example: lsh/lounge-switch/misc
func (t Topics) DeviceMisc(device string) string {
	return fmt.Sprintf("%s%s/misc", t.LSHBase, device)
}

// DeviceMiscWildcard returns the subscription pattern matching every
// device's misc topic.
func (t Topics) DeviceMiscWildcard() string {
	return fmt.Sprintf("%s+/misc", t.LSHBase)
}

// DeviceIn returns the topic commands are published to for a single
// device: apply-actuator, ping, resend-request, failover, click ack.
//
// Example: lsh/lounge-switch/IN
func (t Topics) DeviceIn(device string) string {
	return fmt.Sprintf("%s%s/IN", t.LSHBase, device)
}

// Service returns the broadcast topic used for the all-devices ping and
// for the orchestrator's own online/offline status.
//
// Example: lsh/service
func (t Topics) Service() string {
	return t.LSHBase + "service"
}

// DiscoveryConfig returns a Home Assistant MQTT discovery config topic
// for a switch-domain entity.
//
// Example: homeassistant/switch/lsh_lounge-switch_a1/config
func (t Topics) DiscoveryConfig(objectID string) string {
	return fmt.Sprintf("homeassistant/switch/%s/config", objectID)
}
