// Package logger configures the process-wide structured logger.
package logger

import (
	"log"
	"log/slog"
	"os"
	"strings"
)

const (
	// Module is attached to every record.
	Module = "topbar"

	// EnvLevel names the environment variable read by Init.
	EnvLevel = "LOG_LEVEL"
)

// New returns a JSON logger on stderr tagged with the module and version.
// Source locations are included at debug level.
func New(version, level string) *slog.Logger {
	lev := ParseLevel(level)

	h := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level:     lev,
		AddSource: lev <= slog.LevelDebug,
	})

	return slog.New(h).With("module", Module, "version", version)
}

// Init installs the default logger at the level in LOG_LEVEL. It runs
// before configuration is loaded so config errors are logged as JSON.
func Init(version string) {
	InitLevel(version, os.Getenv(EnvLevel))
}

// InitLevel installs the default logger at level.
func InitLevel(version, level string) {
	slog.SetDefault(New(version, level))
}

// ErrorLog returns a *log.Logger writing at error level through the
// current default handler, for http.Server.ErrorLog.
func ErrorLog() *log.Logger {
	return slog.NewLogLogger(slog.Default().Handler(), slog.LevelError)
}

// ParseLevel maps a level name to a slog.Level. Unknown names map to info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
