// Package influxdb records time-series telemetry derived from topology
// changes: thermostat readings, dimmer levels, dwelling occupancy, and
// switch/lock state transitions.
//
// Writes are batched and non-blocking; async failures reach the
// SetOnError callback. Connect returns ErrDisabled when the
// configuration turns InfluxDB off.
//
//	client, err := influxdb.Connect(cfg.InfluxDB)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//	client.WriteThermostatReading("Hallway", 21.5, 20.0, 25.0, "heating")
package influxdb
