// Command targeting runs the Targeting node: lock management and error
// computation, per spec.md §4.2.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/flightpath-dev/visionlock/internal/bus"
	"github.com/flightpath-dev/visionlock/internal/geometry"
	"github.com/flightpath-dev/visionlock/internal/logging"
	"github.com/flightpath-dev/visionlock/internal/targeting"
)

// depthSampler is the built-in DepthSampler used when no real depth
// pipeline is wired in; it reports every ROI as depth-invalid, which
// drives range error to zero and DepthValid to false accordingly — the
// depth frame source itself is an external collaborator per spec.md
// §4.2.2, not something this core implements.
type depthSampler struct{}

func (depthSampler) MedianDepth(roi geometry.BoundingBox) (float64, bool) {
	return 0, false
}

func main() {
	log := logging.New("targeting", envOr("VISIONLOCK_LOG_LEVEL", "info"))

	overlayPath := os.Getenv("VISIONLOCK_CONFIG_FILE")
	cfg, err := targeting.LoadConfig(overlayPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	b, err := bus.Connect(cfg.BusURL, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to bus")
	}
	defer b.Close()

	node, err := targeting.NewNode(cfg, b, depthSampler{}, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build targeting node")
	}

	ctx, cancel := context.WithCancel(context.Background())
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sig
		log.Info().Msg("shutting down targeting node")
		cancel()
	}()

	if err := node.Run(ctx); err != nil && ctx.Err() == nil {
		log.Fatal().Err(err).Msg("targeting node exited with error")
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
