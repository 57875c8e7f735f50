// Package ui renders engine events for a terminal or a pipe.
package ui

import (
	"io"

	"github.com/bamsammich/randcp/internal/event"
	"github.com/bamsammich/randcp/internal/stats"
)

// Event is the engine notification type presenters consume.
type Event = event.Event

// Presenter consumes events and displays progress.
type Presenter interface {
	// Run consumes events until the channel closes.
	Run(events <-chan Event) error
	// Summary returns the final one-line summary.
	Summary() string
}

// Config configures a Presenter.
type Config struct {
	Writer     io.Writer
	ErrWriter  io.Writer
	Stats      stats.ReadTicker
	Width      int
	IsTTY      bool
	Quiet      bool
	Verbose    bool
	NoProgress bool
}

// NewPresenter picks the presenter for the output mode.
//
//nolint:ireturn // factory function returns interface by design
func NewPresenter(cfg Config) Presenter {
	if cfg.Quiet {
		return &quietPresenter{stats: cfg.Stats}
	}
	if !cfg.IsTTY || cfg.NoProgress {
		return &plainPresenter{
			w:        cfg.Writer,
			errW:     cfg.ErrWriter,
			stats:    cfg.Stats,
			verbose:  cfg.Verbose,
			progress: !cfg.NoProgress,
		}
	}
	return &hudPresenter{
		w:       cfg.ErrWriter, // the HUD lives on the TTY
		out:     cfg.Writer,
		stats:   cfg.Stats,
		verbose: cfg.Verbose,
		width:   cfg.Width,
	}
}
