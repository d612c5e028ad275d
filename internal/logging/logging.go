// Package logging builds the zerolog logger shared by the commands and the HTTP API.
package logging

import (
	"io"
	"time"

	"github.com/rs/zerolog"
)

// New creates a logger writing to w. Pretty output is meant for terminals;
// otherwise one JSON object is written per line. An unknown or empty level
// falls back to info.
func New(level string, pretty bool, w io.Writer) zerolog.Logger {
	out := w
	if pretty {
		out = zerolog.ConsoleWriter{
			Out:        w,
			TimeFormat: time.RFC3339,
		}
	}

	return zerolog.New(out).With().Timestamp().Logger().Level(ParseLevel(level))
}

func ParseLevel(level string) zerolog.Level {
	l, err := zerolog.ParseLevel(level)
	if err != nil || l == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return l
}
