// Package logging provides the shared zerolog setup every node uses,
// generalizing the teacher's "[flightpath] "-prefixed stdlib logger into a
// structured, leveled logger tagged with the owning component.
package logging

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

// New returns a console-rendered logger tagged with component (e.g.
// "targeting", "control", "flightlink", "bus"), at the given level.
// level accepts the usual zerolog names: "debug", "info", "warn", "error".
func New(component string, level string) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339

	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}

	writer := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}

	return zerolog.New(writer).
		Level(lvl).
		With().
		Timestamp().
		Str("component", component).
		Logger()
}
