// Package lshcore is the deterministic, I/O-free orchestration engine for
// a fleet of LSH devices (lights, switches, buttons) talking over a
// publish/subscribe message bus.
//
// The core is built from four tightly-coupled subsystems, in dependency
// order:
//
//	Watchdog                 liveness decisions from (DeviceState, now)
//	ClickTransactionManager   pending-click map with TTL
//	DeviceRegistry            authoritative device state, change detection
//	Orchestrator              validation, routing, click 2PC, command synthesis
//
// # Key Types
//
//   - DeviceState — per-device connectivity, health, and actuator state.
//   - Orchestrator — the entry point: ProcessMessage, RunWatchdogCheck,
//     CleanupPendingClicks, VerifyInitialDeviceStates, UpdateSystemConfig.
//   - ServiceResult — every entry point returns one: outbound commands
//     grouped by output port, logs, warnings, errors, and a stateChanged
//     flag.
//
// # Usage
//
//	set, err := schema.Compile()
//	if err != nil {
//	    return err
//	}
//	orch := lshcore.NewOrchestrator(lshcore.OrchestratorConfig{
//	    Clock:      lshcore.RealClock{},
//	    Validators: set.Validators(),
//	    HomieBase:  "homie/",
//	    LSHBase:    "lsh/",
//	})
//	orch.UpdateSystemConfig(cfg)
//	result := orch.ProcessMessage(topic, payload)
//
// # Thread Safety
//
// The core is single-threaded and fully synchronous by design: none of
// its types are safe for concurrent use. Every entry point must be
// serialised by the caller — either by running the core on a single
// dedicated goroutine, or by holding one mutex for the duration of each
// call. This is a deliberate simplification relative to most of this
// codebase's other state containers (which guard themselves with an
// internal sync.RWMutex): the core has exactly one caller by contract.
package lshcore
