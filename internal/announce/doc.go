// Package announce publishes committed topology changes to the outside world.
//
// It subscribes to the topology store's commit hook and fans each change out
// to two sinks:
//
//   - MQTT: retained entity state on hearth/topology/<kind>/<name> (cleared
//     with an empty retained payload on delete) and a non-retained event
//     stream on hearth/event/<action>.
//   - InfluxDB: numeric telemetry derived from the entity snapshot
//     (thermostat readings, dimmer levels, occupancy, switch/lock state).
//
// Both sinks are optional. A nil publisher or recorder disables that sink,
// so the core runs fine with MQTT or InfluxDB switched off in config.
//
// Announcing is best-effort: a failed publish is logged and never affects
// the committed transaction.
package announce
