// ABOUTME: Polls the store's change version and triggers a refresh on change
// ABOUTME: Used by the live today view; stops when its context is cancelled

package realtime

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// Versioner reports a counter that advances whenever schedules or moods change.
type Versioner interface {
	ChangeVersion() (int64, error)
}

// Watcher calls OnChange each time the version moves.
type Watcher struct {
	source   Versioner
	interval time.Duration
	logger   *log.Logger
	onChange func(version int64)
}

// NewWatcher creates a watcher polling source every interval.
func NewWatcher(source Versioner, interval time.Duration, logger *log.Logger, onChange func(version int64)) *Watcher {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Watcher{source: source, interval: interval, logger: logger, onChange: onChange}
}

// Run blocks until ctx is done. The first successful poll sets the baseline
// and does not fire. Poll errors are logged and the watcher keeps going.
func (w *Watcher) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	last, haveBaseline := int64(0), false
	poll := func() {
		v, err := w.source.ChangeVersion()
		if err != nil {
			w.logger.Warn("change version poll failed", "err", err)
			return
		}
		if !haveBaseline {
			last, haveBaseline = v, true
			return
		}
		if v != last {
			last = v
			w.logger.Debug("data changed", "version", v)
			w.onChange(v)
		}
	}

	poll()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			poll()
		}
	}
}
