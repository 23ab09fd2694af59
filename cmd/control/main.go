// Command control runs the Control node: gain mapping and the safety
// pipeline, per spec.md §4.3. It also hosts the optional read-only
// diagnostics HTTP surface (internal/server), since Control already
// observes every signal that surface reports.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/flightpath-dev/visionlock/internal/bus"
	"github.com/flightpath-dev/visionlock/internal/control"
	"github.com/flightpath-dev/visionlock/internal/logging"
	"github.com/flightpath-dev/visionlock/internal/server"
)

func main() {
	log := logging.New("control", envOr("VISIONLOCK_LOG_LEVEL", "info"))

	overlayPath := os.Getenv("VISIONLOCK_CONFIG_FILE")
	cfg, err := control.LoadConfig(overlayPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	b, err := bus.Connect(cfg.BusURL, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to bus")
	}
	defer b.Close()

	node, err := control.NewNode(cfg, b, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build control node")
	}

	ctx, cancel := context.WithCancel(context.Background())

	if os.Getenv("VISIONLOCK_DIAGNOSTICS_DISABLED") != "true" {
		startDiagnostics(ctx, b, node, log)
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sig
		log.Info().Msg("shutting down control node")
		cancel()
	}()

	if err := node.Run(ctx); err != nil && ctx.Err() == nil {
		log.Fatal().Err(err).Msg("control node exited with error")
	}
}

func startDiagnostics(ctx context.Context, b *bus.Bus, node *control.Node, log zerolog.Logger) {
	store := server.NewSnapshotStore(node.FailsafeStateLabel)
	stop := make(chan struct{})
	go func() {
		if err := store.Watch(b, stop); err != nil {
			log.Warn().Err(err).Msg("diagnostics snapshot watcher stopped")
		}
	}()
	go func() {
		<-ctx.Done()
		close(stop)
	}()

	diagCfg := server.DefaultConfig()
	srv := server.New(diagCfg, store, log)
	go func() {
		if err := srv.Start(); err != nil {
			log.Warn().Err(err).Msg("diagnostics server stopped")
		}
	}()
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
