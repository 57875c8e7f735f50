package ui

import (
	"fmt"
	"io"
	"time"

	"github.com/bamsammich/randcp/internal/event"
	"github.com/bamsammich/randcp/internal/stats"
)

const plainProgressInterval = 5 * time.Second

// plainPresenter writes every log line to stdout and, unless disabled,
// a progress line to stderr every few seconds.
type plainPresenter struct {
	w        io.Writer
	errW     io.Writer
	stats    stats.ReadTicker
	verbose  bool
	progress bool
}

func (p *plainPresenter) Run(events <-chan Event) error {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	lastProgress := time.Now()

	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			p.handleEvent(ev)
		case <-ticker.C:
			p.stats.Tick()
			if p.progress && time.Since(lastProgress) >= plainProgressInterval {
				p.printProgress()
				lastProgress = time.Now()
			}
		}
	}
}

func (p *plainPresenter) handleEvent(ev Event) {
	switch ev.Type {
	case event.LogLine:
		fmt.Fprintln(p.w, ev.Line)
	case event.FileFailed:
		if p.verbose {
			errMsg := "error"
			if ev.Error != nil {
				errMsg = ev.Error.Error()
			}
			fmt.Fprintf(p.errW, "failed: %s  %s\n", ev.Path, errMsg)
		}
	case event.FileSkipped:
		if p.verbose {
			fmt.Fprintf(p.errW, "skipped: %s  already in destination\n", ev.Path)
		}
	case event.FileFiltered:
		if p.verbose {
			fmt.Fprintf(p.errW, "filtered: %s\n", ev.Path)
		}
	}
}

func (p *plainPresenter) printProgress() {
	snap := p.stats.Snapshot()
	fmt.Fprintf(p.errW, "progress: %s/%s files  %s  %s  picked %s\n",
		FormatCount(snap.FilesCopied), FormatCount(snap.FilesTarget),
		FormatBytes(snap.BytesCopied),
		FormatRate(p.stats.RollingSpeed(10)),
		FormatCount(snap.EntriesPicked),
	)
}

func (p *plainPresenter) Summary() string {
	return CompletionSummary(p.stats.Snapshot())
}
