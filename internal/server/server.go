package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/flightpath-dev/visionlock/internal/middleware"
)

// Config holds the diagnostics server's own settings.
type Config struct {
	Addr         string
	CORSOrigins  []string
	StreamRateHz float64
}

// DefaultConfig returns the diagnostics server's built-in defaults.
func DefaultConfig() Config {
	return Config{
		Addr:         ":8090",
		CORSOrigins:  []string{"*"},
		StreamRateHz: 5,
	}
}

// Server is the read-only diagnostics HTTP surface.
type Server struct {
	cfg    Config
	store  *SnapshotStore
	logger zerolog.Logger
	mux    *http.ServeMux
}

// New creates a Server backed by store.
func New(cfg Config, store *SnapshotStore, logger zerolog.Logger) *Server {
	s := &Server{cfg: cfg, store: store, logger: logger, mux: http.NewServeMux()}
	s.mux.HandleFunc("/snapshot", s.handleSnapshot)
	s.mux.HandleFunc("/snapshot/stream", s.handleStream)
	return s
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(s.store.Get())
}

// handleStream writes newline-delimited JSON snapshots at StreamRateHz
// until the client disconnects, adapted from the teacher's
// TelemetryServer.StreamTelemetry ticker-loop shape.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/x-ndjson")

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	interval := time.Duration(float64(time.Second) / s.cfg.StreamRateHz)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	enc := json.NewEncoder(w)
	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
			if err := enc.Encode(s.store.Get()); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

func (s *Server) buildHandler() http.Handler {
	var handler http.Handler = s.mux
	handler = middleware.CORS(s.cfg.CORSOrigins)(handler)
	handler = middleware.Logging(s.logger)(handler)
	handler = middleware.Recovery(s.logger)(handler)
	return h2c.NewHandler(handler, &http2.Server{})
}

// Start runs the diagnostics server until the process exits or
// ListenAndServe returns an error.
func (s *Server) Start() error {
	s.logger.Info().Str("addr", s.cfg.Addr).Msg("diagnostics server starting")
	return http.ListenAndServe(s.cfg.Addr, s.buildHandler())
}
