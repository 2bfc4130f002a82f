// Hearthline Core - Smart Home Topology Tracker
//
// This is the main entry point for the Hearthline Core daemon. It tracks
// dwellings, hubs, and devices in SQLite, processes topology commands from
// stdin and from the hearth/command MQTT topic, and announces committed
// changes over MQTT and InfluxDB.
package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/hearthline/hearth-core/migrations"

	"github.com/hearthline/hearth-core/internal/announce"
	"github.com/hearthline/hearth-core/internal/audit"
	"github.com/hearthline/hearth-core/internal/infrastructure/config"
	"github.com/hearthline/hearth-core/internal/infrastructure/database"
	"github.com/hearthline/hearth-core/internal/infrastructure/influxdb"
	"github.com/hearthline/hearth-core/internal/infrastructure/logging"
	"github.com/hearthline/hearth-core/internal/infrastructure/mqtt"
	"github.com/hearthline/hearth-core/internal/topology"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

func main() {
	// Create a context that cancels on interrupt signals (Ctrl+C, SIGTERM)
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
// Returning an error allows main to handle exit codes consistently.
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting Hearthline Core",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	// Load configuration
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// Reinitialise logger with config settings
	log = logging.New(cfg.Logging, version)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	// Open database
	db, err := database.Open(database.Config{
		Path:        cfg.Database.Path,
		WALMode:     cfg.Database.WALMode,
		BusyTimeout: cfg.Database.BusyTimeout,
	})
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		log.Info("closing database")
		if closeErr := db.Close(); closeErr != nil {
			log.Error("error closing database", "error", closeErr)
		}
	}()
	log.Info("database connected", "path", cfg.Database.Path)

	// Run migrations
	if migrateErr := db.Migrate(ctx); migrateErr != nil {
		return fmt.Errorf("running migrations: %w", migrateErr)
	}
	log.Info("database migrations complete")

	// The topology store serializes transactions over the schema
	store := topology.NewStore(db.DB)

	// Every committed change lands in the audit_log table
	recorder := audit.NewRecorder(db.DB, log)
	store.OnCommit(recorder.HandleCommit)

	// Connect to MQTT broker (optional)
	var mqttClient *mqtt.Client
	if cfg.MQTT.Enabled {
		mqttClient, err = mqtt.Connect(cfg.MQTT)
		if err != nil {
			return fmt.Errorf("connecting to MQTT: %w", err)
		}
		defer func() {
			log.Info("disconnecting from MQTT")
			if closeErr := mqttClient.Close(); closeErr != nil {
				log.Error("error closing MQTT", "error", closeErr)
			}
		}()
		log.Info("MQTT connected",
			"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
			"client_id", cfg.MQTT.Broker.ClientID,
		)

		mqttClient.SetLogger(log)
		mqttClient.SetOnConnect(func() {
			log.Info("MQTT reconnected")
		})
		mqttClient.SetOnDisconnect(func(err error) {
			log.Warn("MQTT disconnected", "error", err)
		})
	} else {
		log.Info("MQTT disabled")
	}

	// Connect to InfluxDB (optional)
	var influxClient *influxdb.Client
	if cfg.InfluxDB.Enabled {
		influxClient, err = influxdb.Connect(cfg.InfluxDB)
		if err != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", err)
		}
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		log.Info("InfluxDB connected",
			"url", cfg.InfluxDB.URL,
			"org", cfg.InfluxDB.Org,
			"bucket", cfg.InfluxDB.Bucket,
		)

		influxClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
	} else {
		log.Info("InfluxDB disabled")
	}

	// Announce committed changes to whichever sinks are available.
	// Interface values must stay nil when the client is nil, so assign
	// conditionally rather than passing the typed nils straight through.
	var pub announce.Publisher
	if mqttClient != nil {
		pub = mqttClient
	}
	var rec announce.Recorder
	if influxClient != nil {
		rec = influxClient
	}
	announcer := announce.New(pub, rec, log, byte(cfg.MQTT.QoS))
	store.OnCommit(announcer.HandleCommit)

	// Verify all connections are healthy
	if err := healthCheck(ctx, db, mqttClient, influxClient); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	log.Info("all health checks passed")

	processor := NewProcessor(store, recorder, log)

	// Accept command batches over MQTT; each batch's query output is
	// published to the result topic.
	if mqttClient != nil {
		if err := subscribeCommands(ctx, mqttClient, processor, byte(cfg.MQTT.QoS), log); err != nil {
			return fmt.Errorf("subscribing to command topic: %w", err)
		}
		log.Info("command topic subscribed", "topic", mqtt.Topics{}.Command())
	}

	// Process commands from stdin until EOF
	stdinDone := make(chan struct{})
	go func() {
		defer close(stdinDone)
		if err := processor.Run(ctx, os.Stdin, os.Stdout); err != nil && ctx.Err() == nil {
			log.Error("stdin command loop failed", "error", err)
		}
	}()

	log.Info("initialisation complete")

	// With MQTT enabled the daemon keeps serving the command topic after
	// stdin closes; otherwise stdin EOF ends the run.
	if mqttClient != nil {
		<-ctx.Done()
	} else {
		select {
		case <-stdinDone:
		case <-ctx.Done():
		}
	}

	log.Info("shutting down")
	return nil
}

// loadConfig loads configuration from the HEARTH_CONFIG path, the default
// path if it exists, or built-in defaults.
func loadConfig() (*config.Config, error) {
	if path := os.Getenv("HEARTH_CONFIG"); path != "" {
		return config.Load(path)
	}
	if _, err := os.Stat(defaultConfigPath); err == nil {
		return config.Load(defaultConfigPath)
	}
	return config.Default()
}

// subscribeCommands wires the MQTT command topic into the processor.
func subscribeCommands(ctx context.Context, client *mqtt.Client, processor *Processor, qos byte, log *logging.Logger) error {
	topics := mqtt.Topics{}
	return client.Subscribe(topics.Command(), qos, func(_ string, payload []byte) error {
		var out bytes.Buffer
		if err := processor.Run(ctx, bytes.NewReader(payload), &out); err != nil {
			return err
		}
		if out.Len() == 0 {
			return nil
		}
		if err := client.Publish(topics.CommandResult(), out.Bytes(), qos, false); err != nil {
			log.Error("publishing command result failed", "error", err)
		}
		return nil
	})
}

// healthCheck verifies all infrastructure connections are healthy.
// The MQTT and InfluxDB clients may be nil when disabled.
func healthCheck(ctx context.Context, db *database.DB, mqttClient *mqtt.Client, influxClient *influxdb.Client) error {
	if err := db.HealthCheck(ctx); err != nil {
		return fmt.Errorf("database: %w", err)
	}

	if mqttClient != nil {
		if err := mqttClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("mqtt: %w", err)
		}
	}

	if influxClient != nil {
		if err := influxClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("influxdb: %w", err)
		}
	}

	return nil
}
