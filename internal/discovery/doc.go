// Package discovery publishes Home Assistant MQTT discovery documents
// for LSH actuators.
//
// Home Assistant's MQTT integration auto-creates entities from retained
// JSON documents published under a well-known discovery prefix. This
// package builds those documents from a device's registered actuator
// list and publishes one retained "switch" config per actuator, using
// the command/state topics the core itself already speaks
// (lsh/<device>/IN and lsh/<device>/state).
//
// This is adapter-side, not core: the orchestrator has no notion of
// Home Assistant and never imports this package.
package discovery
