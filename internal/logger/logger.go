// Package logger provides structured logging using zerolog.
package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const serviceName = "classroom"

// Log is the global logger instance
var Log zerolog.Logger

// Options configures the global logger
type Options struct {
	Level  string
	Pretty bool
	// Output defaults to stdout
	Output io.Writer
}

// Init initializes the global logger. Every entry carries the service name.
func Init(opts Options) {
	zerolog.TimeFieldFormat = time.RFC3339

	output := opts.Output
	if output == nil {
		output = os.Stdout
	}
	if opts.Pretty {
		output = zerolog.ConsoleWriter{
			Out:        output,
			TimeFormat: time.RFC3339,
		}
	}

	zerolog.SetGlobalLevel(parseLogLevel(opts.Level))

	Log = zerolog.New(output).
		With().
		Timestamp().
		Caller().
		Str("service", serviceName).
		Logger()
}

// For returns a child of the global logger tagged with a component name,
// e.g. "http" or "playback". Call it after Init.
func For(component string) zerolog.Logger {
	return Log.With().Str("component", component).Logger()
}

// parseLogLevel maps a configured level name to zerolog, defaulting to info
func parseLogLevel(level string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}
