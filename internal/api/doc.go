// Package api implements a small read-mostly HTTP and WebSocket surface
// over the LSH orchestrator.
//
// It exposes the device registry snapshot, the configured device list,
// the loaded SystemConfig (inspectable and patchable via RFC 7386 JSON
// merge patch), the audit trail, a context-store write endpoint for
// external actors, and a /ws hub that rebroadcasts every ServiceResult
// with a state change.
//
// # Security
//
// No authentication is wired here: the orchestrator this package sits
// in front of is assumed to run on a trusted network segment. Adding
// auth later is a matter of reintroducing middleware in front of the
// routes in router.go.
//
// # Graceful Degradation
//
// Every dependency except the logger and adapter is optional. A nil
// audit repository or context store simply returns 503 for the routes
// that need it rather than failing server construction.
package api
