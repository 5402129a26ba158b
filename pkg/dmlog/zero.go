package dmlog

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

var Zero = NewZeroLogger("", "info", false)

// logFile is the file opened by the last ReloadLogger call, if any.
var logFile *os.File

// NewZeroLogger builds the process logger. JSON output is the default,
// pretty switches to the human-readable console writer.
func NewZeroLogger(filepath string, level string, pretty bool) *zerolog.Logger {
	_, writer, err := newWriter(filepath)
	if err != nil {
		writer = os.Stderr
	}

	var output io.Writer = writer
	if pretty {
		output = zerolog.ConsoleWriter{Out: writer, TimeFormat: time.RFC3339}
	}

	logger := zerolog.New(output).With().Timestamp().Logger().Level(parseLevel(level))
	return &logger
}

// ReloadLogger points Zero to a new file, closing the previous one.
func ReloadLogger(filepath string, level string, pretty bool) error {
	if filepath == "" {
		Zero = NewZeroLogger("", level, pretty)
		return nil
	}
	f, writer, err := newWriter(filepath)
	if err != nil {
		return err
	}

	var output io.Writer = writer
	if pretty {
		output = zerolog.ConsoleWriter{Out: writer, TimeFormat: time.RFC3339}
	}
	logger := zerolog.New(output).With().Timestamp().Logger().Level(parseLevel(level))

	old := logFile
	Zero = &logger
	logFile = f
	if old != nil {
		_ = old.Close()
	}
	return nil
}

func UpdateZeroLogLevel(logLevel string) error {
	level := parseLevel(logLevel)
	zeroLogger := Zero.With().Logger().Level(level)
	Zero = &zeroLogger
	return nil
}

func parseLevel(level string) zerolog.Level {
	switch level {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "fatal":
		return zerolog.FatalLevel
	case "disabled":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}
