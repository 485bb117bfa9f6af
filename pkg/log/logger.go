package log

import (
	"io"
	"strings"

	"github.com/YuminosukeSato/gshap/pkg/errors"
)

// SetupLogger installs a zerolog-backed provider at the given level and
// routes library warnings through it.
func SetupLogger(loglevel string, w io.Writer) error {
	level, err := ToLogLevel(loglevel)
	if err != nil {
		return err
	}
	p := NewZerologProvider(w, level)
	SetProvider(p)
	errors.SetZerologWarnFunc(p.WarnFunc())
	return nil
}

// ToLogLevel parses a level name such as "debug" or "warn".
func ToLogLevel(level string) (Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return LevelDebug, nil
	case "info", "":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	default:
		return LevelInfo, errors.NewInvalidArgumentError("log-level", "must be one of debug, info, warn, error", level)
	}
}
