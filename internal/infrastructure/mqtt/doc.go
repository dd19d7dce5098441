// Package mqtt provides MQTT client connectivity for the LSH orchestrator.
//
// This package manages:
//   - Connection to the broker with auto-reconnect
//   - Message publishing with QoS guarantees
//   - Topic subscriptions with wildcard support
//   - Last Will and Testament (LWT) for offline detection
//   - Connection health monitoring
//
// # Architecture
//
// MQTT is the only transport LSH devices speak: Homie convention state
// under the homie/ base, and the conf/state/misc/IN topic family under
// the lsh/ base (see Topics). The orchestrator core never imports this
// package directly — the adapter layer decodes inbound messages into
// lshcore payload types and encodes lshcore.Command values back onto
// the wire.
//
//	LSH devices ↔ MQTT Broker ↔ Adapter ↔ lshcore.Orchestrator
//
// # Security Considerations
//
//   - TLS is required for production deployments (cfg.Broker.TLS=true)
//   - Credentials are validated against broker ACL
//   - Anonymous access is only for local development
//   - Message payloads are not encrypted beyond TLS transport
//
// # Performance Characteristics
//
//   - Connection: <1 second to local broker
//   - Publish latency: <10ms for QoS 1 to local broker
//   - Reconnect: Exponential backoff 1s-60s with jitter
//
// # Usage
//
//	topics := mqtt.Topics{HomieBase: cfg.LSH.HomieBase, LSHBase: cfg.LSH.LSHBase}
//	client, err := mqtt.Connect(cfg.MQTT, topics)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	err = client.Subscribe(topics.DeviceConfWildcard(), 1,
//	    func(topic string, payload []byte) error {
//	        log.Printf("Received: %s = %s", topic, payload)
//	        return nil
//	    })
//
//	client.Publish(topics.DeviceIn("lounge-switch"), []byte(`{"p":"d_p"}`), 1, false)
package mqtt
