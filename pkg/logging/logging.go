// Package logging configures the process-wide charmbracelet logger.
//
// The dashboard owns the terminal, so while it runs log output goes to a
// file in logfmt. One-shot CLI commands log styled text to stderr.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
)

const appName = "yb"

// Options selects the sink and verbosity.
type Options struct {
	Level string
	// File, when non-empty, receives logfmt output instead of Stderr.
	File   string
	Stderr io.Writer
}

// Setup builds a logger from opts and installs it as the package default so
// every package can call log.Warn and friends. The returned close function
// releases the log file, if any.
func Setup(opts Options) (func() error, error) {
	level := log.InfoLevel
	if opts.Level != "" {
		parsed, err := log.ParseLevel(opts.Level)
		if err != nil {
			return nil, fmt.Errorf("parse logging level %q: %w", opts.Level, err)
		}
		level = parsed
	}

	if opts.File == "" {
		w := opts.Stderr
		if w == nil {
			w = os.Stderr
		}
		log.SetDefault(log.NewWithOptions(w, log.Options{
			Level:     level,
			Prefix:    appName,
			Formatter: log.TextFormatter,
		}))
		return func() error { return nil }, nil
	}

	if err := os.MkdirAll(filepath.Dir(opts.File), 0o755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(opts.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	log.SetDefault(log.NewWithOptions(f, log.Options{
		Level:           level,
		Prefix:          appName,
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
		Formatter:       log.LogfmtFormatter,
	}))
	return f.Close, nil
}

// DefaultFile returns where the dashboard writes its log when no file is
// configured: $XDG_STATE_HOME/yakboard/yb.log, else the user cache dir.
func DefaultFile() string {
	if state := os.Getenv("XDG_STATE_HOME"); state != "" {
		return filepath.Join(state, "yakboard", appName+".log")
	}
	if cache, err := os.UserCacheDir(); err == nil {
		return filepath.Join(cache, "yakboard", appName+".log")
	}
	return filepath.Join(os.TempDir(), "yakboard-"+appName+".log")
}
