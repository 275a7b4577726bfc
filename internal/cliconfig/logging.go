package cliconfig

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Logger returns the CLI logger: human-readable output on stderr.
func Logger() zerolog.Logger {
	return NewLogger(os.Stderr)
}

// NewLogger returns a console logger writing to w.
func NewLogger(w io.Writer) zerolog.Logger {
	output := zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	return zerolog.New(output).With().Timestamp().Logger()
}
