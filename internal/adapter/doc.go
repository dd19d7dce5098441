// Package adapter wires the deterministic lshcore.Orchestrator to the
// outside world: MQTT transport, JSON Schema validation, the audit
// trail, InfluxDB history, Home Assistant discovery, the context-store,
// and systemd supervision.
//
// lshcore.Orchestrator is single-threaded by contract (see
// lshcore's package doc). Service enforces that by running exactly one
// goroutine — the core loop — that owns the Orchestrator and drains a
// single inbound channel fed by MQTT message handlers, tickers, and
// config-reload notifications. Every other goroutine in this package
// only produces events onto that channel or consumes a ServiceResult
// it emits; none of them touch the Orchestrator directly.
package adapter
