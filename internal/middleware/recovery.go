package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/rs/zerolog"
)

// Recovery creates a panic recovery middleware
func Recovery(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					logger.Error().
						Interface("panic", err).
						Str("stack", string(debug.Stack())).
						Msg("panic recovered in diagnostics handler")

					w.WriteHeader(http.StatusInternalServerError)
					fmt.Fprint(w, "internal server error")
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
