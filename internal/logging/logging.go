// Package logging configures the global zerolog logger.
package logging

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var (
	ErrInvalidOutput = errors.New("unknown logging output format")
	ErrInvalidLevel  = errors.New("unknown logging level")
)

// Setup builds a logger for the given level and output format
// (console, stdout or json) and installs it as the global logger.
func Setup(level, output string) (zerolog.Logger, error) {
	var w io.Writer
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnixMicro
	zerolog.DurationFieldUnit = time.Millisecond
	zerolog.CallerMarshalFunc = shortCaller

	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.Logger{}, fmt.Errorf("%w: %s", ErrInvalidLevel, level)
	}
	zerolog.SetGlobalLevel(lvl)

	switch output {
	case "console":
		w = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	case "stdout":
		w = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339, NoColor: true}
	case "json":
		w = os.Stdout
	default:
		return zerolog.Logger{}, fmt.Errorf("%w: %s", ErrInvalidOutput, output)
	}

	logger := zerolog.New(w).With().Timestamp().Caller().Logger()
	log.Logger = logger
	return logger, nil
}

// shortCaller trims the caller path to dir/file:line.
func shortCaller(_ uintptr, file string, line int) string {
	return filepath.Join(filepath.Base(filepath.Dir(file)), filepath.Base(file)) + ":" + strconv.Itoa(line)
}
