package lshcore

import "fmt"

// Protocol tags. Inbound tags discriminate the "misc" topic and describe
// the shape of "conf"/"state" payloads; outbound tags are attached to
// Command.Payload so the adapter can marshal them onto the wire without
// the core caring which codec is used.
const (
	ProtoDeviceDetails  = "d_dd" // inbound: device configuration announcement
	ProtoActuatorStates = "d_as" // inbound: actuator state vector
	ProtoNetworkClick   = "c_nc" // inbound (misc): network click request/confirm
	ProtoBoot           = "d_b"  // inbound (misc): device boot
	ProtoPing           = "d_p"  // both directions: ping request / ping response

	ProtoClickAck            = "d_nca" // outbound: click request ACK
	ProtoClickFailover       = "c_f"   // outbound: click-scoped failover
	ProtoGeneralFailover     = "c_gf"  // outbound: general failover
	ProtoApplyAllActuators   = "c_aas" // outbound: apply full actuator vector
	ProtoApplySingleActuator = "c_asas" // outbound: apply single actuator
	ProtoSendDeviceDetails   = "d_sdd" // outbound: request config resend
	ProtoSendActuatorState   = "d_sas" // outbound: request state resend
)

// Click type discriminators.
const (
	ClickTypeLong      = "lc"
	ClickTypeSuperLong = "slc"
)

// Homie connectivity states. "ready" is the only connected value.
const (
	HomieReady = "ready"
)

// ClickAckPayload acknowledges a click request (protocol tag d_nca).
type ClickAckPayload struct {
	P  string `json:"p"`
	CT string `json:"ct"`
	BI string `json:"bi"`
}

// FailoverPayload reports a click-scoped failure (protocol tag c_f).
type FailoverPayload struct {
	P  string `json:"p"`
	CT string `json:"ct"`
	BI string `json:"bi"`
}

// GeneralFailoverPayload reports an internal-invariant failure (tag c_gf).
type GeneralFailoverPayload struct {
	P string `json:"p"`
}

// ApplyAllActuatorsPayload carries a full actuator state vector (tag c_aas).
type ApplyAllActuatorsPayload struct {
	P  string `json:"p"`
	AS []bool `json:"as"`
}

// ApplySingleActuatorPayload targets exactly one actuator (tag c_asas).
type ApplySingleActuatorPayload struct {
	P  string `json:"p"`
	AI string `json:"ai"`
	AS bool   `json:"as"`
}

// PingRequestPayload requests a liveness response (tag d_p).
type PingRequestPayload struct {
	P string `json:"p"`
}

// ResendConfigPayload asks a device to re-announce its configuration
// (tag d_sdd).
type ResendConfigPayload struct {
	P string `json:"p"`
}

// ResendStatePayload asks a device to re-announce its actuator state
// (tag d_sas).
type ResendStatePayload struct {
	P string `json:"p"`
}

// Command is a single outbound message: a destination topic and a
// structured payload the adapter marshals according to its wire codec.
type Command struct {
	Topic   string
	Payload any
}

// OtherActorsMessage fans a click decision out to external (non-LSH)
// actuators via the adapter's context-store integration.
type OtherActorsMessage struct {
	OtherActors []string
	StateToSet  bool
	Payload     string
}

// ServiceResult is returned from every Orchestrator entry point: a
// structured batch of outbound messages grouped by logical output port,
// plus logs, warnings, errors, and a stateChanged flag.
type ServiceResult struct {
	// LSH carries per-device commands addressed to <lshBase><device>/IN.
	LSH []Command
	// Broadcast carries messages addressed to the configured service topic
	// (currently only the all-devices ping).
	Broadcast []Command
	// OtherActors carries fan-out instructions for non-LSH actuators.
	OtherActors []OtherActorsMessage

	Alerts   []string
	Logs     []string
	Warnings []string
	Errors   []string

	StateChanged bool
}

func (r *ServiceResult) logf(format string, args ...any) {
	r.Logs = append(r.Logs, fmt.Sprintf(format, args...))
}

func (r *ServiceResult) warnf(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

func (r *ServiceResult) errf(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

func (r *ServiceResult) alertf(format string, args ...any) {
	r.Alerts = append(r.Alerts, fmt.Sprintf(format, args...))
}
