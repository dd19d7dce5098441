package lshcore

// ConfPayload is the parsed form of an `<lshBase><device>/conf` message
// (protocol tag d_dd). Wire keys are the abbreviated ones from spec §6:
// ai, bi, dn. Unrecognised fields are tolerated by the validator.
type ConfPayload struct {
	ActuatorsIDs []string `json:"ai"`
	ButtonsIDs   []string `json:"bi"`
	DeviceName   string   `json:"dn"`
}

// StatePayload is the parsed form of an `<lshBase><device>/state` message
// (protocol tag d_as).
type StatePayload struct {
	ActuatorStates []bool `json:"as"`
}

// NetworkClickPayload is the parsed form of a c_nc misc message.
type NetworkClickPayload struct {
	ButtonID  string
	ClickType string
	Confirm   bool
}

// MiscMessage is the parsed, discriminated form of an
// `<lshBase><device>/misc` message. Protocol holds the `p` discriminator
// (ProtoBoot, ProtoPing, ProtoNetworkClick); Click is populated only when
// Protocol == ProtoNetworkClick.
type MiscMessage struct {
	Protocol string
	Click    *NetworkClickPayload
}

// Validators is the set of payload-validation function references the
// core is injected with. The core never imports a schema-validation
// library directly — this keeps it free of I/O and free of any opinion
// about how payloads are validated; adapters wire in a concrete
// implementation (see internal/schema).
//
// Each function returns the parsed value together with a list of
// human-readable validation error strings; a non-empty error list means
// the payload was rejected and the parsed value must be ignored.
type Validators struct {
	Conf  func(payload []byte) (ConfPayload, []string)
	State func(payload []byte) (StatePayload, []string)
	Misc  func(payload []byte) (MiscMessage, []string)
}
