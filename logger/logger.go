package logger

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

// New builds the JSON logger. It runs before config.Load, so it loads .env
// itself to pick up LOG_LEVEL; variables already set in the environment win.
func New() zerolog.Logger {
	_ = godotenv.Load()

	level, err := zerolog.ParseLevel(os.Getenv("LOG_LEVEL"))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	return WithLevel(level)
}

func WithLevel(level zerolog.Level) zerolog.Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	return zerolog.New(os.Stdout).
		With().
		Timestamp().
		Caller().
		Logger().
		Level(level)
}
