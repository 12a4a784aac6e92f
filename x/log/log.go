package log

import (
	"github.com/rs/zerolog"
	"os"
)

var (
	Logger = zerolog.New(os.Stderr).With().Timestamp().Stack().Logger()
)

// Component returns a sub-logger tagged with the given component name.
func Component(name string, level zerolog.Level) zerolog.Logger {
	return Logger.With().Str("component", name).Logger().Level(level)
}
