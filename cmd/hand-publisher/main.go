package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/linkerbot/hand-publisher/pkg/api"
	"github.com/linkerbot/hand-publisher/pkg/config"
	customlog "github.com/linkerbot/hand-publisher/pkg/log"
	"github.com/linkerbot/hand-publisher/pkg/mqtt"
	"github.com/linkerbot/hand-publisher/pkg/setpoint"
	"github.com/linkerbot/hand-publisher/pkg/wire"
	"github.com/linkerbot/hand-publisher/pkg/zeromq"
)

func main() {
	configPath := flag.String("config", "config/publisher_config.yaml", "path to the publisher config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := customlog.NewLogrusLogger(cfg.Logging.Level, cfg.Logging.LogPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	transport, closeTransport, err := newTransport(cfg, logger)
	if err != nil {
		logger.Fatalf("Failed to initialize transport: %v", err)
	}
	defer closeTransport()

	encoder, err := wire.NewEncoder(cfg.Command.Encoding)
	if err != nil {
		logger.Fatalf("Failed to initialize encoder: %v", err)
	}

	pub, err := setpoint.New(setpoint.Settings{
		Topic:      cfg.Command.Topic,
		Cadence:    time.Duration(cfg.Command.CadenceSeconds * float64(time.Second)),
		Positions:  cfg.Command.Positions,
		Velocities: cfg.Command.Velocities,
	}, transport, encoder, logger)
	if err != nil {
		logger.Fatalf("Failed to create publisher: %v", err)
	}

	stream := api.NewCommandStream(logger)
	pub.SetObserver(stream.Broadcast)

	app := fiber.New(fiber.Config{
		AppName:               "Linker Hand Publisher",
		DisableStartupMessage: true,
	})
	app.Use(recover.New())
	api.RegisterRoutes(app, pub, stream, logger)

	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.HTTPPort)
		logger.Infof("HTTP server listening on %s", addr)
		if err := app.Listen(addr); err != nil {
			logger.Fatalf("HTTP server failed: %v", err)
		}
	}()

	if err := pub.Start(); err != nil {
		logger.Fatalf("Failed to start publisher: %v", err)
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Infof("Shutting down...")

	pub.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(ctx); err != nil {
		logger.Errorf("HTTP server forced to shut down: %v", err)
	}

	logger.Infof("Shutdown complete")
}

// newTransport builds the configured transport. Either kind failing to
// initialize is fatal; the publisher never starts ticking without a working
// channel to the hand.
func newTransport(cfg *config.Config, logger customlog.Logger) (setpoint.Transport, func(), error) {
	switch cfg.Transport.Kind {
	case config.TransportZeroMQ:
		sender, err := zeromq.NewSender(cfg.Transport.ZeroMQ.PublishBindAddress, logger)
		if err != nil {
			return nil, nil, err
		}
		return sender, sender.Close, nil
	case config.TransportMQTT:
		pub, err := mqtt.NewPublisher(cfg.Transport.MQTT, logger)
		if err != nil {
			return nil, nil, err
		}
		return pub, pub.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown transport kind: %s", cfg.Transport.Kind)
	}
}
