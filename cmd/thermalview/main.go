// ThermalView Core - headless dashboard core for a remote thermal camera.
//
// This is the main entry point. The process owns exactly one broker
// connection for its whole lifetime: dashboard views attach and detach
// as listeners without ever touching the connection itself.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/oakmere/thermalview/internal/connectivity"
	"github.com/oakmere/thermalview/internal/device"
	"github.com/oakmere/thermalview/internal/infrastructure/config"
	"github.com/oakmere/thermalview/internal/infrastructure/logging"
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
	log := logging.Default()
	log.Info("starting ThermalView Core",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	// Reinitialise logger with config settings
	log = logging.New(cfg.Logging, version)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	// The provider owns the one connection of this process. Everything
	// downstream receives the provider or its Conn, never a second
	// connection.
	provider := connectivity.NewProvider(connectivity.Options{
		Broker: connectivity.BrokerConfig{
			Host:     cfg.MQTT.Broker.Host,
			Port:     cfg.MQTT.Broker.Port,
			TLS:      cfg.MQTT.Broker.TLS,
			ClientID: cfg.MQTT.Broker.ClientID,
			Username: cfg.MQTT.Auth.Username,
			Password: cfg.MQTT.Auth.Password,
		},
		ConnectTimeout: time.Duration(cfg.MQTT.Timeouts.Connect) * time.Second,
		KeepAlive:      time.Duration(cfg.MQTT.Timeouts.KeepAlive) * time.Second,
		ReconnectDelay: time.Duration(cfg.MQTT.Reconnect.Delay) * time.Second,
		Logger:         log.With("component", "connectivity"),
	})
	defer provider.Shutdown()

	conn := provider.Get()

	// Consumers register before the connection exists; the layer queues
	// their intent and delivers once connected.
	topics := device.Topics{}
	tracker := device.NewStatusTracker(topics, log.With("component", "tracker"))
	removeTracker := conn.AddListener(tracker.Listener())
	defer removeTracker()

	removeAudit := conn.AddListener(messageAuditor(log))
	defer removeAudit()

	qos := byte(cfg.MQTT.QoS)
	for _, topic := range device.ResponseTopics(topics) {
		conn.Subscribe(topic, qos)
	}

	if err := conn.Connect(ctx); err != nil {
		// Not fatal: the reconnect policy keeps trying until the
		// device's broker comes back.
		log.Warn("initial connect failed, retrying in background", "error", err)
	} else {
		// Ask the device for its current configuration so the first
		// rendered view has something to show.
		conn.Publish(device.TopicConfigGet, device.NewConfigRequest(cfg.Site.ID), qos)
	}

	log.Info("initialisation complete, waiting for shutdown signal")
	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")
	// Deferred calls hard-shutdown the connection; view-level listener
	// removal above is independent of it.
	log.Info("ThermalView Core stopped")
	return nil
}

// messageAuditor logs every inbound message at debug level. It stands
// in for the rendering layer's feed during headless operation.
func messageAuditor(log *logging.Logger) connectivity.Listener {
	return func(msg connectivity.Message) {
		log.Debug("message received",
			"topic", msg.Topic,
			"bytes", len(msg.Payload),
			"received_at", msg.ReceivedAt.Format(time.RFC3339Nano),
		)
	}
}

// getConfigPath returns the configuration file path.
// Uses THERMALVIEW_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("THERMALVIEW_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}
