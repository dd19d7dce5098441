package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// WriteActuatorState records a single actuator's resolved on/off state.
//
// The write is non-blocking; data is batched and sent asynchronously.
//
// Parameters:
//   - device: LSH device name (e.g., "lounge-switch")
//   - actuatorID: the actuator's ID within the device
//   - on: the state that was applied
func (c *Client) WriteActuatorState(device, actuatorID string, on bool) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"actuator_state",
		map[string]string{
			"device":   device,
			"actuator": actuatorID,
		},
		map[string]interface{}{
			"on": on,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WriteClickEvent records a confirmed network click, tagged with the
// device/button/click-type that triggered it and the decision reached.
//
// Parameters:
//   - device: LSH device the button lives on
//   - buttonID: the button within the device
//   - clickType: "lc" or "slc"
//   - stateSet: the on/off decision the click resolved to
func (c *Client) WriteClickEvent(device, buttonID, clickType string, stateSet bool) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"click_event",
		map[string]string{
			"device":     device,
			"button":     buttonID,
			"click_type": clickType,
		},
		map[string]interface{}{
			"state_set": stateSet,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WriteWatchdogEvent records a device liveness transition (needsPing,
// stale, unhealthy) as observed by the watchdog.
//
// Parameters:
//   - device: LSH device name
//   - kind: the watchdog verdict kind (see lshcore.WatchdogKind)
func (c *Client) WriteWatchdogEvent(device, kind string) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"watchdog_event",
		map[string]string{
			"device": device,
		},
		map[string]interface{}{
			"kind": kind,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WritePoint writes a custom point with full control over tags and fields.
//
// Use this for custom measurements that don't fit the helper methods.
//
// Parameters:
//   - measurement: The measurement name (table)
//   - tags: Key-value pairs for indexing (low cardinality)
//   - fields: Key-value pairs for the actual data
//
// Example:
//
//	client.WritePoint("system_stats",
//	    map[string]string{"host": "core-01"},
//	    map[string]interface{}{"cpu_percent": 45.2, "memory_mb": 512})
func (c *Client) WritePoint(measurement string, tags map[string]string, fields map[string]interface{}) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(measurement, tags, fields, time.Now())
	c.writeAPI.WritePoint(point)
}

// WritePointWithTime writes a custom point with a specific timestamp.
//
// Use this when the timestamp is not "now" (e.g., delayed data).
//
// Parameters:
//   - measurement: The measurement name
//   - tags: Key-value pairs for indexing
//   - fields: Key-value pairs for the data
//   - timestamp: The exact time for this data point
func (c *Client) WritePointWithTime(measurement string, tags map[string]string, fields map[string]interface{}, timestamp time.Time) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(measurement, tags, fields, timestamp)
	c.writeAPI.WritePoint(point)
}
