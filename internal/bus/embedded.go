package bus

import (
	"fmt"
	"time"

	natsserver "github.com/nats-io/nats-server/v2/server"
	"github.com/rs/zerolog"
)

// EmbeddedServer hosts the bus transport in-process. The design rationale
// in spec §4.1 — "zero central dependency" — is preserved by running the
// transport as a small owned process (cmd/bus) rather than standing up an
// external broker cluster; this type is what that process boots.
type EmbeddedServer struct {
	srv *natsserver.Server
}

// StartEmbeddedServer boots an in-process NATS server bound to host:port
// and blocks until it is ready to accept connections or the timeout
// elapses.
func StartEmbeddedServer(host string, port int, logger zerolog.Logger) (*EmbeddedServer, error) {
	opts := &natsserver.Options{
		Host:           host,
		Port:           port,
		NoLog:          true,
		NoSigs:         true,
		MaxControlLine: 4096,
	}

	srv, err := natsserver.NewServer(opts)
	if err != nil {
		return nil, fmt.Errorf("bus: create embedded server: %w", err)
	}

	go srv.Start()

	if !srv.ReadyForConnections(10 * time.Second) {
		return nil, fmt.Errorf("bus: embedded server not ready after 10s")
	}

	logger.Info().Str("addr", srv.Addr().String()).Msg("embedded bus transport ready")
	return &EmbeddedServer{srv: srv}, nil
}

// Addr returns the listen address of the embedded server.
func (e *EmbeddedServer) Addr() string {
	return e.srv.Addr().String()
}

// Shutdown stops the embedded server, waiting for client connections to
// drain.
func (e *EmbeddedServer) Shutdown() {
	e.srv.Shutdown()
	e.srv.WaitForShutdown()
}
