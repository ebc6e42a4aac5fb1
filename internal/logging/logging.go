// logging holds the process wide zerolog logger.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// L is the global logger. Packages log through L directly.
var L = newLogger(os.Stderr)

func newLogger(w io.Writer) zerolog.Logger {
	return zerolog.New(zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: time.RFC3339,
	}).
		With().
		Timestamp().
		Caller().
		Logger()
}

func SetLogLevel(level zerolog.Level) {
	L = L.Level(level)
}

// SetLogOutput replaces the output of L and keeps its level.
func SetLogOutput(w io.Writer) {
	level := L.GetLevel()
	L = newLogger(w).Level(level)
}

// ParseLevel maps a config value to a zerolog level. Unknown values give info.
func ParseLevel(s string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "disabled", "off":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}
