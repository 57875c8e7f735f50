package ui

import (
	"fmt"
	"io"
	"path"
	"time"

	"github.com/bamsammich/randcp/internal/event"
	"github.com/bamsammich/randcp/internal/stats"
)

// ANSI escape sequences.
const (
	ansiDim       = "\033[2m"
	ansiReset     = "\033[0m"
	ansiClearLine = "\r\033[K"
)

const (
	sparklineWidth   = 16
	progressBarWidth = 20
	hudMinInterval   = 50 * time.Millisecond
	defaultWidth     = 80
)

// hudPresenter keeps a single status line at the bottom of the terminal and
// prints each log line above it.
type hudPresenter struct {
	w       io.Writer // terminal, carries the status line
	out     io.Writer // log lines
	stats   stats.ReadTicker
	verbose bool
	width   int

	hudDrawn    bool
	lastHUDDraw time.Time
}

func (p *hudPresenter) Run(events <-chan Event) error {
	if p.width <= 0 {
		p.width = defaultWidth
	}

	// Seed the throughput ring quickly, then settle at one tick per second.
	secTicker := time.NewTicker(250 * time.Millisecond)
	defer secTicker.Stop()
	firstTickDone := false

	redrawTicker := time.NewTicker(200 * time.Millisecond)
	defer redrawTicker.Stop()

	for {
		select {
		case ev, ok := <-events:
			if !ok {
				p.clearHUD()
				return nil
			}
			p.handleEvent(ev)
			p.maybeDrawHUD()

		case <-redrawTicker.C:
			p.drawHUD()

		case <-secTicker.C:
			p.stats.Tick()
			if !firstTickDone {
				firstTickDone = true
				secTicker.Reset(time.Second)
			}
		}
	}
}

func (p *hudPresenter) handleEvent(ev Event) {
	switch ev.Type {
	case event.LogLine:
		p.clearHUD()
		fmt.Fprintln(p.out, ev.Line)
		p.drawHUD()

	case event.FileFailed:
		if p.verbose {
			errMsg := "error"
			if ev.Error != nil {
				errMsg = ev.Error.Error()
			}
			p.printNote("✗", ev.Path, errMsg)
		}

	case event.FileSkipped:
		if p.verbose {
			p.printNote("–", ev.Path, "already in destination")
		}

	case event.FileFiltered:
		if p.verbose {
			p.printNote("·", ev.Path, "filtered")
		}
	}
}

func (p *hudPresenter) printNote(icon, relPath, note string) {
	p.clearHUD()
	fmt.Fprintf(p.w, "%s  %s  %s%s%s\n", icon, styledPath(relPath), ansiDim, note, ansiReset)
	p.drawHUD()
}

func (p *hudPresenter) maybeDrawHUD() {
	if time.Since(p.lastHUDDraw) < hudMinInterval {
		return
	}
	p.drawHUD()
}

func (p *hudPresenter) drawHUD() {
	snap := p.stats.Snapshot()

	var pct float64
	if snap.FilesTarget > 0 {
		pct = float64(snap.FilesCopied) / float64(snap.FilesTarget)
	}

	line := fmt.Sprintf(" %3.0f%%  %s  %s/%s files  %s %s  %s  %s",
		pct*100, ProgressBar(pct, progressBarWidth),
		FormatCount(snap.FilesCopied), FormatCount(snap.FilesTarget),
		Sparkline(p.stats.SparklineData(sparklineWidth), sparklineWidth),
		FormatRate(p.stats.RollingSpeed(5)),
		FormatBytes(snap.BytesCopied),
		FormatDuration(snap.Elapsed),
	)
	// Keep the cursor on the status line so it can be rewritten in place.
	fmt.Fprint(p.w, ansiClearLine+truncRunes(line, p.width-1))

	p.hudDrawn = true
	p.lastHUDDraw = time.Now()
}

func (p *hudPresenter) clearHUD() {
	if !p.hudDrawn {
		return
	}
	fmt.Fprint(p.w, ansiClearLine)
	p.hudDrawn = false
}

func (p *hudPresenter) Summary() string {
	return CompletionSummary(p.stats.Snapshot())
}

// styledPath dims the directory part of a slash-separated path.
func styledPath(relPath string) string {
	dir, base := path.Split(relPath)
	if dir == "" {
		return base
	}
	return fmt.Sprintf("%s%s%s%s", ansiDim, dir, ansiReset, base)
}

// truncRunes cuts s to at most n runes.
func truncRunes(s string, n int) string {
	r := []rune(s)
	if n <= 0 || len(r) <= n {
		return s
	}
	return string(r[:n])
}
