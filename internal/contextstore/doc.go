// Package contextstore provides a SQLite-backed implementation of
// lshcore.ContextReader.
//
// Smart-toggle groups can reference "other actors" that aren't LSH
// actuators directly — a presence sensor, a scene flag set by another
// system, a manual override switch. Those booleans live outside the
// device registry entirely; contextstore gives the orchestrator a
// synchronous, side-effect-free way to read them by key without
// blocking on the network.
//
// Keys are opaque strings of the form "<prefix>.<name>.state", written
// by whatever adapter owns that external fact (the HTTP API, an MQTT
// subscription to a third-party topic, a cron job). contextstore only
// knows how to store and retrieve booleans by key.
package contextstore
