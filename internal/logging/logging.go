// SPDX-License-Identifier: MPL-2.0

// Package logging builds the side-channel logger that receives process
// output, run outcomes and configuration diagnostics.
package logging

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
)

const (
	// Prefix is prepended to every log line.
	Prefix = "treerun"
	// DefaultFileName is the log file name under the user cache directory.
	DefaultFileName = "treerun.log"
)

// Options configures New.
type Options struct {
	// Level is the minimum level written ("debug", "info", "warn", "error").
	// An empty level means info.
	Level string
	// File is the log file path. Empty means DefaultFile().
	File string
	// Verbose mirrors every line to Stderr.
	Verbose bool
	// Stderr receives mirrored lines when Verbose is set. Nil means os.Stderr.
	Stderr io.Writer
}

// DefaultFile returns <user cache dir>/treerun/treerun.log.
func DefaultFile() (string, error) {
	dir, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user cache directory: %w", err)
	}
	return filepath.Join(dir, Prefix, DefaultFileName), nil
}

// New opens the log file for appending and returns a logger writing to it.
// The returned closer releases the file and must be called when the process
// is done logging.
func New(opts Options) (*log.Logger, io.Closer, error) {
	level := log.InfoLevel
	if opts.Level != "" {
		parsed, err := log.ParseLevel(opts.Level)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid log level %q: %w", opts.Level, err)
		}
		level = parsed
	}

	path := opts.File
	if path == "" {
		def, err := DefaultFile()
		if err != nil {
			return nil, nil, err
		}
		path = def
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}

	var w io.Writer = f
	if opts.Verbose {
		stderr := opts.Stderr
		if stderr == nil {
			stderr = os.Stderr
		}
		w = io.MultiWriter(f, stderr)
	}

	return newLogger(w, level), f, nil
}

// NewWriter returns a logger writing to w at level. It is used by callers
// that cannot open the log file and by tests.
func NewWriter(w io.Writer, level log.Level) *log.Logger {
	return newLogger(w, level)
}

// Discard returns a logger that drops everything.
func Discard() *log.Logger {
	return newLogger(io.Discard, log.FatalLevel)
}

// Fallback returns a stderr logger for when New fails, so the error that
// prevented opening the file is still visible.
func Fallback(cause error) *log.Logger {
	logger := newLogger(os.Stderr, log.WarnLevel)
	if cause != nil && !errors.Is(cause, os.ErrNotExist) {
		logger.Warn("side-channel log unavailable, using stderr", "err", cause)
	}
	return logger
}

func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		Prefix:          Prefix,
		Level:           level,
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
	})
}
