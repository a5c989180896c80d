package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// EnvLogLevel is read when --log-level is not given.
const EnvLogLevel = "GPAT_LOG"

// defaultLogLevel keeps runs quiet unless something goes wrong.
const defaultLogLevel = "warn"

// resolveLogLevel returns the flag value, then the environment, then the
// default.
func resolveLogLevel(flag string) string {
	if flag != "" {
		return flag
	}
	if env := os.Getenv(EnvLogLevel); env != "" {
		return env
	}
	return defaultLogLevel
}

// newLogger builds a text logger on w at level. The level "off" disables
// logging.
func newLogger(w io.Writer, level string) (*slog.Logger, error) {
	if strings.EqualFold(level, "off") {
		return slog.New(slog.NewTextHandler(io.Discard, nil)), nil
	}

	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error, off", level)
	}

	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl})), nil
}
