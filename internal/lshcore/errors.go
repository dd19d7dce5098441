package lshcore

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by lshcore operations. Callers should use
// errors.Is to check for these rather than comparing error strings.
var (
	// ErrConfigNotLoaded names the condition of a message arriving before
	// any SystemConfig has been loaded. ProcessMessage reports that case as
	// a warning string on the ServiceResult; no lshcore function returns
	// this sentinel.
	ErrConfigNotLoaded = errors.New("lshcore: configuration not loaded")

	// ErrDeviceNotFound indicates an operation referenced a device with no
	// registry entry where one was required.
	ErrDeviceNotFound = errors.New("lshcore: device not found")
)

// ValidationError wraps the aggregated error strings a Validators function
// produced for a rejected payload.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "lshcore: unknown validation error"
	}
	msg := e.Errors[0]
	for _, s := range e.Errors[1:] {
		msg += " " + s
	}
	return msg
}

// StateLengthMismatchError is raised internally by DeviceRegistry and
// converted to an error on the ServiceResult by the handler that called it.
type StateLengthMismatchError struct {
	Device string
	Got    int
	Want   int
}

func (e *StateLengthMismatchError) Error() string {
	return fmt.Sprintf("lshcore: device %s sent %d actuator states, expected %d", e.Device, e.Got, e.Want)
}

// ClickScope distinguishes a click-scoped failure (caused by this specific
// button/device) from a general one (an internal invariant violation).
type ClickScope string

const (
	ClickScopeClick   ClickScope = "click"
	ClickScopeGeneral ClickScope = "general"
)

// ClickValidationError is raised by validateClickRequest and caught inside
// the network-click handler; it never escapes the Orchestrator.
type ClickValidationError struct {
	Reason string
	Scope  ClickScope
}

func (e *ClickValidationError) Error() string {
	return e.Reason
}

// UnexpectedError wraps anything unanticipated encountered while
// processing a click. It is recorded as an error on the ServiceResult;
// no outbound command accompanies it.
type UnexpectedError struct {
	Err error
}

func (e *UnexpectedError) Error() string {
	return fmt.Sprintf("lshcore: unexpected error: %v", e.Err)
}

func (e *UnexpectedError) Unwrap() error {
	return e.Err
}
