package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// WriteThermostatReading records a thermostat's current temperature and
// heating/cooling operation.
//
// The write is non-blocking; data is batched and sent asynchronously.
//
// Parameters:
//   - name: Thermostat name (e.g., "Hallway")
//   - currentC: Current ambient temperature in degrees Celsius
//   - lowC, highC: Configured set points in degrees Celsius
//   - operation: Active operation ("off", "heating", "cooling")
//
// Example:
//
//	client.WriteThermostatReading("Hallway", 21.5, 20.0, 25.0, "heating")
func (c *Client) WriteThermostatReading(name string, currentC, lowC, highC float64, operation string) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"thermostat",
		map[string]string{
			"device":    name,
			"operation": operation,
		},
		map[string]interface{}{
			"current_c":  currentC,
			"set_low_c":  lowC,
			"set_high_c": highC,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WriteDimmerLevel records a dimmer's brightness level.
//
// Parameters:
//   - name: Dimmer name
//   - percent: Display brightness as a percentage of the configured range
func (c *Client) WriteDimmerLevel(name string, percent float64) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"dimmer",
		map[string]string{
			"device": name,
		},
		map[string]interface{}{
			"level_percent": percent,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WriteOccupancy records a dwelling's occupancy state transition.
//
// Occupancy is stored as a tag (for filtering) and as a numeric field
// (1 for occupied, 0 for vacant) so dashboards can graph it.
func (c *Client) WriteOccupancy(dwelling string, occupancy string) {
	if !c.IsConnected() {
		return
	}

	occupied := 0
	if occupancy == "occupied" {
		occupied = 1
	}

	point := write.NewPoint(
		"occupancy",
		map[string]string{
			"dwelling": dwelling,
			"state":    occupancy,
		},
		map[string]interface{}{
			"occupied": occupied,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WriteDeviceState records a binary device state change (switch on/off,
// lock locked/unlocked).
//
// Parameters:
//   - kind: Device kind ("switch", "lock")
//   - name: Device name
//   - state: Current state string
//   - active: 1 if the device is on/locked, 0 otherwise
func (c *Client) WriteDeviceState(kind, name, state string, active int) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"device_state",
		map[string]string{
			"kind":   kind,
			"device": name,
			"state":  state,
		},
		map[string]interface{}{
			"active": active,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WritePoint writes a custom point with full control over tags and fields.
//
// Use this for measurements that don't fit the helper methods.
//
// Parameters:
//   - measurement: The measurement name (table)
//   - tags: Key-value pairs for indexing (low cardinality)
//   - fields: Key-value pairs for the actual data
//
// Example:
//
//	client.WritePoint("system_stats",
//	    map[string]string{"host": "hearth-01"},
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
// Use this when the timestamp is not "now" (e.g., replayed data).
func (c *Client) WritePointWithTime(measurement string, tags map[string]string, fields map[string]interface{}, timestamp time.Time) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(measurement, tags, fields, timestamp)
	c.writeAPI.WritePoint(point)
}
