package logging

import (
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// New builds the service logger. Level falls back to info on unknown input.
func New(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(os.Stdout).Level(lvl).With().Timestamp().Str("service", "portal-service").Logger()
}
