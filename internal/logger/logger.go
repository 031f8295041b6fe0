// Package logger exposes the process-wide zerolog instance.
package logger

import (
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	log  zerolog.Logger
	once sync.Once
)

// Get returns the shared logger, initialising it on first use. The level is
// taken from LOG_LEVEL (zerolog names); unset or invalid means info.
func Get() *zerolog.Logger {
	once.Do(func() {
		level, err := zerolog.ParseLevel(os.Getenv("LOG_LEVEL"))
		if err != nil || level == zerolog.NoLevel {
			level = zerolog.InfoLevel
		}
		zerolog.TimeFieldFormat = time.RFC3339
		log = zerolog.New(os.Stderr).
			Level(level).
			With().
			Timestamp().
			Logger()
	})
	return &log
}
