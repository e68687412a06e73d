package logging

import (
	"log/slog"
	"os"
)

// New returns the daemon's base logger. Output is plain text on stdout so
// journald or a container log driver can take it from there.
func New(level slog.Level) *slog.Logger {
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	return slog.New(handler)
}

// ForDeployment returns a child logger scoped to a single deployment. Every
// line it emits carries the deployment ID and branch so interleaved
// deployments can be told apart.
func ForDeployment(logger *slog.Logger, deploymentID, branch string) *slog.Logger {
	return logger.With("deploymentID", deploymentID, "branch", branch)
}

// ParseLevel maps a config string to a slog level, defaulting to info.
func ParseLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
