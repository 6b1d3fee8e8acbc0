// Package logging builds the zerolog loggers used across moebuild.
// Human-readable console output goes to stderr so stdout stays free for
// tool output and command results.
package logging

import (
	"io"
	"time"

	"github.com/rs/zerolog"
)

// New creates a console logger writing to out at the given level.
func New(out io.Writer, level zerolog.Level, color bool) zerolog.Logger {
	writer := zerolog.ConsoleWriter{
		Out:        out,
		TimeFormat: time.RFC3339,
		NoColor:    !color,
	}
	return zerolog.New(writer).Level(level).With().Timestamp().Logger()
}

// Level maps the CLI verbosity flags to a zerolog level. Verbose wins.
func Level(verbose, quiet bool) zerolog.Level {
	switch {
	case verbose:
		return zerolog.DebugLevel
	case quiet:
		return zerolog.WarnLevel
	default:
		return zerolog.InfoLevel
	}
}
