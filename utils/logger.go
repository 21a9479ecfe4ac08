package utils

import (
	"io"
	"os"
	"sync/atomic"

	"github.com/rs/zerolog"
)

var logger atomic.Pointer[zerolog.Logger]

func init() {
	l := zerolog.New(os.Stderr).Level(zerolog.InfoLevel).With().Timestamp().Logger()
	logger.Store(&l)
}

// Logger returns the process wide logger.
func Logger() zerolog.Logger {
	return *logger.Load()
}

// ComponentLogger returns the process logger tagged with a component name.
func ComponentLogger(component string) zerolog.Logger {
	return Logger().With().Str("component", component).Logger()
}

// SetLogger replaces the process logger.
func SetLogger(l zerolog.Logger) {
	logger.Store(&l)
}

// SetLogOutput rebuilds the process logger writing to w at the given level.
// An empty level keeps "info".
func SetLogOutput(w io.Writer, level string) error {
	lvl := zerolog.InfoLevel
	if level != "" {
		var err error
		if lvl, err = zerolog.ParseLevel(level); err != nil {
			return err
		}
	}
	SetLogger(zerolog.New(w).Level(lvl).With().Timestamp().Logger())
	return nil
}

func SetLogLevel(level string) error {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return err
	}
	SetLogger(Logger().Level(lvl))
	return nil
}
