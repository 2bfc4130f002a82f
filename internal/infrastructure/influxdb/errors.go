package influxdb

import "errors"

// Sentinel errors, matched with errors.Is.
var (
	// ErrNotConnected means the client has no live server connection.
	ErrNotConnected = errors.New("influxdb: not connected")

	// ErrConnectionFailed means the initial connect or ping failed.
	ErrConnectionFailed = errors.New("influxdb: connect failed")

	// ErrDisabled means the configuration turns InfluxDB off.
	ErrDisabled = errors.New("influxdb: disabled in configuration")
)
