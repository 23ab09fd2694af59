// Command flightlink runs the Flight-Link node: the offboard MAVLink
// session, command parsing, telemetry ingest, and custom telemetry
// injection, per spec.md §4.4.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/flightpath-dev/visionlock/internal/bus"
	"github.com/flightpath-dev/visionlock/internal/failsafe"
	"github.com/flightpath-dev/visionlock/internal/flightlink"
	"github.com/flightpath-dev/visionlock/internal/logging"
)

func main() {
	log := logging.New("flightlink", envOr("VISIONLOCK_LOG_LEVEL", "info"))

	overlayPath := os.Getenv("VISIONLOCK_CONFIG_FILE")
	cfg, err := flightlink.LoadConfig(overlayPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	b, err := bus.Connect(cfg.BusURL, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to bus")
	}
	defer b.Close()

	sess, err := flightlink.NewSession(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to start mavlink session")
	}

	node, err := flightlink.NewNode(cfg, b, sess, failsafe.DefaultConfig(), log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build flightlink node")
	}

	if err := sess.RequestOffboard(); err != nil {
		log.Warn().Err(err).Msg("offboard mode request failed; continuing to stream, autopilot may reject setpoints")
	}

	ctx, cancel := context.WithCancel(context.Background())
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sig
		log.Info().Msg("shutting down flightlink node")
		cancel()
	}()

	if err := node.Run(ctx); err != nil && ctx.Err() == nil {
		log.Fatal().Err(err).Msg("flightlink node exited with error")
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
