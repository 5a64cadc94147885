// Package logging holds the process logger shared by the tosser and the CLI.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// DebugEnabled controls whether Debug() produces output.
// Set via --diag or FDBRIDGE_LOG_DIAG=true.
var DebugEnabled bool

var std = newLogger(os.Stderr)

func newLogger(w io.Writer) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(w)
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	l.SetLevel(logrus.InfoLevel)
	return l
}

// Options selects output, format and level for Setup.
type Options struct {
	Output io.Writer
	Format string // "text" or "json"
	Level  string
	Diag   bool
}

// Setup reconfigures the shared logger and returns it.
func Setup(opts Options) (*logrus.Logger, error) {
	if opts.Output != nil {
		std.SetOutput(opts.Output)
	}

	switch strings.ToLower(opts.Format) {
	case "", "text":
		std.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	case "json":
		std.SetFormatter(&logrus.JSONFormatter{})
	default:
		return nil, fmt.Errorf("logging: unknown format %q", opts.Format)
	}

	level := logrus.InfoLevel
	if opts.Level != "" {
		parsed, err := logrus.ParseLevel(opts.Level)
		if err != nil {
			return nil, fmt.Errorf("logging: %w", err)
		}
		level = parsed
	}
	DebugEnabled = opts.Diag
	if opts.Diag && level < logrus.DebugLevel {
		level = logrus.DebugLevel
	}
	std.SetLevel(level)
	return std, nil
}

// Debug logs a message only when DebugEnabled is true.
func Debug(format string, args ...any) {
	if DebugEnabled {
		std.Debugf(format, args...)
	}
}
