// Package logging wraps charmbracelet/log for the bridge and scrubs secrets from
// anything that is logged or echoed back to clients.
package logging

import (
	"io"
	"os"

	"github.com/charmbracelet/log"
)

const prefix = "bridge"

// Logger is a wrapper around the log.Logger from the charmbracelet/log package.
type Logger struct {
	*log.Logger
}

// New creates a logger writing to w. Debug mode adds caller and timestamps.
func New(w io.Writer, debug bool) *Logger {
	if debug {
		base := log.NewWithOptions(w, log.Options{
			ReportCaller:    true,
			ReportTimestamp: true,
			Prefix:          prefix,
		})
		base.SetLevel(log.DebugLevel)
		return &Logger{Logger: base}
	}

	base := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		Prefix:          prefix,
	})
	base.SetLevel(log.InfoLevel)
	return &Logger{Logger: base}
}

// NewDefault creates a logger on stderr.
func NewDefault(debug bool) *Logger {
	return New(os.Stderr, debug)
}

// Nop returns a logger that discards everything.
func Nop() *Logger {
	return New(io.Discard, false)
}

// OrNop returns l, or a discarding logger when l is nil.
func OrNop(l *Logger) *Logger {
	if l == nil {
		return Nop()
	}
	return l
}
