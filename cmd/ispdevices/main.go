// ISP Devices serves the phone and tablet device variants over HTTP.
//
// Each device variant implements only the capability interfaces it can
// honour. Every operation served is recorded to the configured sinks:
// SQLite, MQTT, InfluxDB and WebSocket subscribers.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/nerrad567/isp-devices/migrations"

	"github.com/nerrad567/isp-devices/internal/api"
	"github.com/nerrad567/isp-devices/internal/device"
	"github.com/nerrad567/isp-devices/internal/infrastructure/config"
	"github.com/nerrad567/isp-devices/internal/infrastructure/database"
	"github.com/nerrad567/isp-devices/internal/infrastructure/influxdb"
	"github.com/nerrad567/isp-devices/internal/infrastructure/logging"
	"github.com/nerrad567/isp-devices/internal/infrastructure/mqtt"
	"github.com/nerrad567/isp-devices/internal/invocation"
)

// Version information, set at build time via ldflags.
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

const defaultConfigPath = "configs/config.yaml"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run wires the service together and blocks until ctx is cancelled.
// Deferred Close calls run in reverse order of startup.
func run(ctx context.Context) error {
	log := logging.Default()
	log.Info("starting ISP Devices",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	log = logging.New(cfg.Logging, version)
	log.Info("configuration loaded",
		"path", configPath,
		"level", cfg.Logging.Level,
		"legacy_routes", cfg.API.LegacyRoutes,
	)

	sinks := invocation.NewMulti(log)
	health := make(map[string]api.HealthChecker)

	// Invocation trail (optional)
	var trail invocation.Repository
	if cfg.Database.Enabled {
		db, dbErr := openDatabase(ctx, cfg.Database)
		if dbErr != nil {
			return dbErr
		}
		defer func() {
			log.Info("closing database")
			if closeErr := db.Close(); closeErr != nil {
				log.Error("error closing database", "error", closeErr)
			}
		}()
		log.Info("database ready", "path", db.Path())

		repo := invocation.NewSQLiteRepository(db.DB)
		trail = repo
		sinks.Add("sqlite", repo)
		health["database"] = db
	} else {
		log.Info("invocation trail disabled")
	}

	// MQTT (optional)
	if cfg.MQTT.Enabled {
		mqttClient, mqttErr := mqtt.Connect(cfg.MQTT)
		if mqttErr != nil {
			return fmt.Errorf("connecting to MQTT: %w", mqttErr)
		}
		defer func() {
			log.Info("disconnecting from MQTT")
			if closeErr := mqttClient.Close(); closeErr != nil {
				log.Error("error closing MQTT", "error", closeErr)
			}
		}()
		mqttClient.SetOnConnect(func() { log.Info("MQTT reconnected") })
		mqttClient.SetOnDisconnect(func(err error) { log.Warn("MQTT disconnected", "error", err) })
		log.Info("MQTT connected",
			"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
			"client_id", cfg.MQTT.Broker.ClientID,
		)

		sinks.Add("mqtt", invocation.MQTTSink(mqttClient))
		health["mqtt"] = mqttClient
	} else {
		log.Info("MQTT disabled")
	}

	// InfluxDB (optional)
	if cfg.InfluxDB.Enabled {
		influxClient, influxErr := influxdb.Connect(cfg.InfluxDB)
		if influxErr != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", influxErr)
		}
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		influxClient.SetOnError(func(err error) { log.Error("InfluxDB write error", "error", err) })
		log.Info("InfluxDB connected",
			"url", cfg.InfluxDB.URL,
			"org", cfg.InfluxDB.Org,
			"bucket", cfg.InfluxDB.Bucket,
		)

		sinks.Add("influxdb", invocation.InfluxSink(influxClient))
		health["influxdb"] = influxClient
	} else {
		log.Info("InfluxDB disabled")
	}

	// WebSocket hub, shared with the recorder so invocations reach subscribers.
	hub := api.NewHub(cfg.WebSocket, log)
	go hub.Run(ctx)
	if cfg.WebSocket.Enabled {
		sinks.Add("websocket", invocation.BroadcastSink(hub))
	}

	server, err := api.New(api.Deps{
		Config:        cfg.API,
		WS:            cfg.WebSocket,
		Security:      cfg.Security,
		Logger:        log,
		Catalogue:     device.NewCatalogue(),
		DefaultNumber: cfg.Devices.DefaultNumber,
		Recorder:      sinks,
		Invocations:   trail,
		Health:        health,
		ExternalHub:   hub,
		Version:       version,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}
	if err := server.Start(ctx); err != nil {
		return fmt.Errorf("starting API server: %w", err)
	}
	defer func() {
		if closeErr := server.Close(); closeErr != nil {
			log.Error("error closing API server", "error", closeErr)
		}
	}()

	log.Info("initialisation complete, waiting for shutdown signal",
		"sinks", sinks.Len(),
	)

	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")
	return nil
}

// getConfigPath returns ISPDEVICES_CONFIG if set, otherwise the default path.
func getConfigPath() string {
	if path := os.Getenv("ISPDEVICES_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// openDatabase opens the SQLite file and applies pending migrations.
func openDatabase(ctx context.Context, cfg config.DatabaseConfig) (*database.DB, error) {
	db, err := database.Open(database.Config{
		Path:        cfg.Path,
		WALMode:     cfg.WALMode,
		BusyTimeout: cfg.BusyTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := db.Migrate(ctx); err != nil {
		db.Close() //nolint:errcheck // Already returning the migration error
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return db, nil
}
