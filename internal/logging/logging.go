// ABOUTME: Structured logger setup shared by every command
// ABOUTME: Writes to stderr, or to a size-rotated file when a log path is configured

package logging

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options controls where and how much is logged.
type Options struct {
	File    string // empty logs to stderr
	Level   string // debug, info, warn, error
	Verbose bool   // forces debug
}

// New builds a logger and returns a closer for the rotated file, if any.
func New(opts Options) (*log.Logger, io.Closer) {
	var w io.Writer = os.Stderr
	var closer io.Closer = nopCloser{}

	if opts.File != "" {
		if err := os.MkdirAll(filepath.Dir(opts.File), 0755); err == nil {
			lj := &lumberjack.Logger{
				Filename:   opts.File,
				MaxSize:    10, // megabytes
				MaxBackups: 3,
				MaxAge:     28, // days
				Compress:   true,
			}
			w, closer = lj, lj
		}
	}

	logger := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		Prefix:          "gachi",
		Level:           parseLevel(opts.Level),
	})
	if opts.Verbose {
		logger.SetLevel(log.DebugLevel)
	}
	return logger, closer
}

// Discard returns a logger that writes nowhere. Used by tests.
func Discard() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{})
}

func parseLevel(s string) log.Level {
	if s == "" {
		return log.InfoLevel
	}
	lvl, err := log.ParseLevel(strings.ToLower(s))
	if err != nil {
		return log.InfoLevel
	}
	return lvl
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
