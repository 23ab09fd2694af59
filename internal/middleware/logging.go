package middleware

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// statusRecorder captures the response status for access logging, since
// http.ResponseWriter doesn't expose it after the fact.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// requestIDHeader is the header used to surface the per-request correlation
// id back to the caller, so a snapshot stream can be cross-referenced
// against this access log.
const requestIDHeader = "X-Request-ID"

// Logging creates an access-log middleware, filling the gap left in the
// teacher's server.go (which referenced a Logging middleware that was
// never checked into the teacher repo). Each request is tagged with a
// fresh correlation id, logged alongside the method/path/status and
// echoed back in the response header.
func Logging(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			reqID := uuid.New().String()
			w.Header().Set(requestIDHeader, reqID)
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(rec, r)

			logger.Info().
				Str("request_id", reqID).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", rec.status).
				Dur("elapsed", time.Since(start)).
				Msg("diagnostics request")
		})
	}
}
