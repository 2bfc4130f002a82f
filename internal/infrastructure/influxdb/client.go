package influxdb

import (
	"context"
	"fmt"
	"sync"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"

	"github.com/hearthline/hearth-core/internal/infrastructure/config"
)

const (
	connectTimeout = 10 * time.Second
	pingTimeout    = 5 * time.Second

	// Fallbacks when the config leaves batching unset.
	defaultBatchSize     = 100
	defaultFlushSeconds  = 10
	millisecondsInSecond = 1000
)

// Client writes Hearthline measurements to InfluxDB. Writes are
// non-blocking and batched; failures surface through the SetOnError
// callback. Safe for concurrent use.
type Client struct {
	influx   influxdb2.Client
	writeAPI api.WriteAPI

	mu        sync.RWMutex
	connected bool
	onError   func(error)
}

// Connect builds a client for the configured server and verifies it
// answers a ping. Returns ErrDisabled when the config turns InfluxDB
// off, so callers can treat that case as a quiet no-op.
func Connect(cfg config.InfluxDBConfig) (*Client, error) {
	if !cfg.Enabled {
		return nil, ErrDisabled
	}

	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	flushSeconds := cfg.FlushInterval
	if flushSeconds <= 0 {
		flushSeconds = defaultFlushSeconds
	}

	// #nosec G115 -- both values forced positive above
	influx := influxdb2.NewClientWithOptions(cfg.URL, cfg.Token,
		influxdb2.DefaultOptions().
			SetBatchSize(uint(batchSize)).
			SetFlushInterval(uint(flushSeconds)*millisecondsInSecond))

	if err := ping(context.Background(), influx, connectTimeout); err != nil {
		influx.Close()
		return nil, fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}

	c := &Client{
		influx:    influx,
		writeAPI:  influx.WriteAPI(cfg.Org, cfg.Bucket),
		connected: true,
	}
	go c.forwardWriteErrors(c.writeAPI.Errors())

	return c, nil
}

func ping(ctx context.Context, influx influxdb2.Client, timeout time.Duration) error {
	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	healthy, err := influx.Ping(pingCtx)
	if err != nil {
		return err
	}
	if !healthy {
		return fmt.Errorf("server not healthy")
	}
	return nil
}

// forwardWriteErrors drains the async error channel into the callback.
// The channel closes when the client does.
func (c *Client) forwardWriteErrors(errs <-chan error) {
	for err := range errs {
		c.mu.RLock()
		notify := c.onError
		c.mu.RUnlock()

		if notify != nil {
			notify(err)
		}
	}
}

// Close flushes pending writes and shuts the client down.
func (c *Client) Close() error {
	if c.influx == nil {
		return nil
	}

	c.mu.Lock()
	c.connected = false
	c.mu.Unlock()

	c.writeAPI.Flush()
	c.influx.Close()
	return nil
}

// HealthCheck pings the server.
func (c *Client) HealthCheck(ctx context.Context) error {
	if !c.IsConnected() {
		return ErrNotConnected
	}

	if err := ping(ctx, c.influx, pingTimeout); err != nil {
		return fmt.Errorf("influxdb health check: %w", err)
	}
	return nil
}

// IsConnected reports the last known connection state. HealthCheck
// does an active ping.
func (c *Client) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.connected
}

// SetOnError registers a callback for async write failures.
func (c *Client) SetOnError(fn func(error)) {
	c.mu.Lock()
	c.onError = fn
	c.mu.Unlock()
}

// Flush blocks until buffered points are written. A no-op after Close.
func (c *Client) Flush() {
	if c.writeAPI == nil || !c.IsConnected() {
		return
	}
	c.writeAPI.Flush()
}
