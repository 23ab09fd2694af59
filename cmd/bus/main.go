// Command bus boots the embedded message-transport process: the shared
// pub/sub backbone the other three nodes dial into. Running it as its
// own small process (rather than embedding the transport in each node)
// keeps the "zero central dependency to administer" property without
// requiring operators to run and upgrade a standalone broker cluster.
package main

import (
	"os"
	"os/signal"
	"syscall"

	busint "github.com/flightpath-dev/visionlock/internal/bus"
	"github.com/flightpath-dev/visionlock/internal/config"
	"github.com/flightpath-dev/visionlock/internal/logging"
)

func main() {
	log := logging.New("bus", envOr("VISIONLOCK_LOG_LEVEL", "info"))

	host := "0.0.0.0"
	port := 4222
	config.StringVar(&host, "VISIONLOCK_BUS_HOST")
	config.IntVar(&port, "VISIONLOCK_BUS_PORT")

	srv, err := busint.StartEmbeddedServer(host, port, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to start embedded bus transport")
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig

	log.Info().Msg("shutting down bus transport")
	srv.Shutdown()
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
