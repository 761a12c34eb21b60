// SPDX-License-Identifier: MPL-2.0

// Package logging builds the charmbracelet loggers shared by all components.
package logging

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// DefaultLevel is used when no level is configured.
const DefaultLevel = "info"

// ErrInvalidLevel is returned when a log level name is not recognized.
var ErrInvalidLevel = errors.New("invalid log level")

type (
	// Options configures a logger.
	Options struct {
		// Writer receives log records. Defaults to os.Stderr; stdout is
		// reserved for build output and the MCP stdio stream.
		Writer io.Writer
		// Level is a level name (debug, info, warn, error).
		Level string
		// Prefix names the component, e.g. "engine".
		Prefix string
	}

	// InvalidLevelError is returned when a level name cannot be parsed.
	// It wraps ErrInvalidLevel for errors.Is() compatibility.
	InvalidLevelError struct {
		Value string
	}
)

func (e *InvalidLevelError) Error() string {
	return fmt.Sprintf("invalid log level %q (valid: debug, info, warn, error)", e.Value)
}

func (e *InvalidLevelError) Unwrap() error { return ErrInvalidLevel }

// ParseLevel converts a level name into a log.Level. Empty selects DefaultLevel.
func ParseLevel(name string) (log.Level, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = DefaultLevel
	}
	level, err := log.ParseLevel(strings.ToLower(name))
	if err != nil {
		return log.InfoLevel, &InvalidLevelError{Value: name}
	}
	return level, nil
}

// New creates a logger. An invalid level falls back to info and is reported
// on the returned logger itself.
func New(opts Options) *log.Logger {
	w := opts.Writer
	if w == nil {
		w = os.Stderr
	}
	level, err := ParseLevel(opts.Level)
	logger := log.NewWithOptions(w, log.Options{
		Prefix:          opts.Prefix,
		Level:           level,
		ReportTimestamp: true,
		TimeFormat:      time.TimeOnly,
	})
	if err != nil {
		logger.Warn("falling back to info", "error", err)
	}
	return logger
}

// OrDefault returns l, or log.Default() when l is nil.
func OrDefault(l *log.Logger) *log.Logger {
	if l == nil {
		return log.Default()
	}
	return l
}

// Component derives a child logger carrying the given prefix.
func Component(l *log.Logger, prefix string) *log.Logger {
	child := OrDefault(l).With()
	child.SetPrefix(prefix)
	return child
}
