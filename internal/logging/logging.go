// Package logging builds the structured loggers used by keyscope.
//
// Logging is discarded unless a destination is configured. The run command
// owns the terminal, so its logs go to a file.
package logging

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// ErrInvalidLevel is returned for an unknown level name.
var ErrInvalidLevel = errors.New("invalid log level")

// Options configures a logger.
type Options struct {
	Level  string    // "debug", "info", "warn" or "error". Default: info
	JSON   bool      // JSON records instead of text
	File   string    // Append to this file; takes precedence over Writer
	Writer io.Writer // Destination when File is empty; nil discards
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// ParseLevel parses a level name. The empty string is info.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("%w: %q", ErrInvalidLevel, s)
}

// New creates a logger. The returned close function releases the log file
// and is safe to call when none was opened.
func New(opts Options) (*slog.Logger, func() error, error) {
	nop := func() error { return nil }

	level, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, nop, err
	}

	w := opts.Writer
	closeFn := nop
	if opts.File != "" {
		if err := os.MkdirAll(filepath.Dir(opts.File), 0o755); err != nil {
			return nil, nop, err
		}
		f, err := os.OpenFile(opts.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, nop, err
		}
		w, closeFn = f, f.Close
	}
	if w == nil {
		return Discard(), nop, nil
	}

	ho := &slog.HandlerOptions{Level: level}
	if opts.JSON {
		return slog.New(slog.NewJSONHandler(w, ho)), closeFn, nil
	}
	return slog.New(slog.NewTextHandler(w, ho)), closeFn, nil
}
