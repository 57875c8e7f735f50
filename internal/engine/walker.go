package engine

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bamsammich/randcp/internal/event"
	"github.com/bamsammich/randcp/internal/filter"
	"github.com/bamsammich/randcp/internal/stats"
)

// CopyRecord describes one successful copy, in copy order.
type CopyRecord struct {
	Seq     int
	RelPath string
	Size    int64
}

// walker runs the random descent. Every dead end sends it back to the root;
// there is no path stack.
type walker struct {
	root           string
	dst            string
	target         int
	stallTimeout   time.Duration
	followSymlinks bool

	ledger  *Ledger
	monitor *StallMonitor
	rng     *rand.Rand
	filter  *filter.Chain
	copier  *copier
	rlog    *RunLog
	history *History
	stats   *stats.Collector
	emit    func(event.Event)
	logger  *slog.Logger

	cur   string
	state State

	copied    int
	bytes     int64
	records   []CopyRecord
	timedOut  bool
	stopped   bool
	exhausted bool
}

// run performs up to target successful copies.
func (w *walker) run(ctx context.Context) {
	w.monitor.Start()
	w.cur = w.root
	if real, err := filepath.EvalSymlinks(w.root); err == nil {
		w.ledger.MarkEntered(real)
	}

	// Never sample our own output.
	if w.dst == w.root || within(w.root, w.dst) {
		w.ledger.MarkTouched(w.dst, KindDir)
	}

	for range w.target {
		if w.halted(ctx) {
			return
		}
		if !w.seekOne(ctx) {
			return
		}
	}
	w.setState(Completed)
}

// seekOne walks from the root until one file is copied. It returns false
// when the walk ended without a copy.
func (w *walker) seekOne(ctx context.Context) bool {
	w.cur = w.root
	w.setState(AtRoot)
	for {
		if w.halted(ctx) {
			return false
		}
		if w.step(ctx) {
			return true
		}
	}
}

// halted checks the three ways a walk ends early, in priority order.
func (w *walker) halted(ctx context.Context) bool {
	switch {
	case ctx.Err() != nil:
		w.stopped = true
		w.setState(Stopped)
	case w.ledger.IsDirTouched(w.root):
		w.exhausted = true
		w.setState(Exhausted)
	case w.monitor.TimedOut(w.stallTimeout):
		w.timedOut = true
		w.setState(TimedOut)
	default:
		return false
	}
	return true
}

// step picks one entry of the current directory and acts on it. It reports
// whether a file was copied.
func (w *walker) step(ctx context.Context) bool {
	names, err := w.ledger.ListingOf(w.cur)
	if err != nil {
		w.logger.Debug("directory unreadable", "path", w.cur, "error", err)
	}
	if err != nil || len(names) == 0 {
		w.markDirDone(w.cur)
		w.backtrack()
		return false
	}

	pick := filepath.Join(w.cur, names[w.rng.IntN(len(names))])
	w.stats.AddEntriesPicked(1)

	// A touched pick sends the walk home but is still looked at.
	if w.ledger.IsTouched(pick) {
		if w.ledger.Exhaust(w.cur) {
			w.dirExhausted(w.cur)
		}
		w.backtrack()
	}

	info, err := os.Lstat(pick)
	if err != nil {
		w.logger.Debug("stat failed", "path", pick, "error", err)
		w.ledger.MarkTouched(pick, KindFile)
		return false
	}

	if info.Mode()&os.ModeSymlink != 0 {
		target, err := os.Stat(pick)
		if err != nil {
			w.logger.Debug("broken symlink", "path", pick, "error", err)
			w.ledger.MarkTouched(pick, KindFile)
			return false
		}
		if target.IsDir() {
			if !w.followSymlinks || w.aliasesEntered(pick) {
				w.ledger.MarkTouched(pick, KindDir)
				return false
			}
			w.enter(pick)
			return false
		}
		info = target
	}

	switch {
	case info.IsDir():
		w.enter(pick)
		return false
	case info.Mode().IsRegular():
		return w.attemptCopy(ctx, pick, info)
	default:
		w.ledger.MarkTouched(pick, KindFile)
		return false
	}
}

// enter makes dir the current directory, loading its listing up front.
// Exhausted directories are never re-entered.
func (w *walker) enter(dir string) {
	if w.ledger.IsDirTouched(dir) {
		return
	}
	if !w.filter.Empty() && !w.filter.Match(w.rel(dir), true, 0) {
		w.stats.AddFilesFiltered(1)
		w.emit(event.Event{Type: event.FileFiltered, Path: w.rel(dir)})
		w.markDirDone(dir)
		w.backtrack()
		return
	}

	if _, err := w.ledger.ListingOf(dir); err != nil {
		w.logger.Debug("directory unreadable", "path", dir, "error", err)
		w.markDirDone(dir)
		w.backtrack()
		return
	}
	if real, err := filepath.EvalSymlinks(dir); err == nil {
		w.ledger.MarkEntered(real)
	}
	w.cur = dir
	w.setState(Descending)
}

// attemptCopy runs the namer and copier for one regular file.
func (w *walker) attemptCopy(ctx context.Context, src string, info os.FileInfo) bool {
	// A file already dealt with this run is never copied again.
	if !w.ledger.MarkTouched(src, KindFile) {
		return false
	}
	w.setState(AttemptingCopy)
	rel := w.rel(src)
	size := info.Size()
	mtime := info.ModTime().UnixNano()

	if !w.filter.Match(rel, false, size) {
		w.stats.AddFilesFiltered(1)
		w.emit(event.Event{Type: event.FileFiltered, Path: rel, Size: size})
		w.backtrack()
		return false
	}

	if w.history != nil && w.history.Seen(rel, size, mtime) {
		w.logger.Debug("copied by an earlier run", "path", rel)
		w.skip(rel, size)
		return false
	}

	outcome, err := ResolveDest(w.dst, filepath.Base(src), size)
	if err != nil {
		w.fail(rel, err)
		return false
	}
	if outcome.Skip {
		w.logger.Debug("already in destination", "path", rel, "dest", outcome.Path)
		w.skip(rel, size)
		return false
	}

	n, err := w.copier.copy(ctx, src, outcome.Path)
	if err != nil {
		w.fail(rel, err)
		return false
	}

	w.copied++
	w.bytes += n
	w.records = append(w.records, CopyRecord{Seq: w.copied, RelPath: rel, Size: n})

	if w.history != nil {
		if err := w.history.Record(rel, size, mtime, outcome.Path); err != nil {
			w.logger.Warn("history write failed", "error", err)
		}
	}

	line := fmt.Sprintf("%d: %s", w.copied, rel)
	if err := w.rlog.Append(line); err != nil {
		w.logger.Warn("log write failed", "error", err)
	}

	w.stats.AddFilesCopied(1)
	w.stats.AddBytesCopied(n)
	w.emit(event.Event{Type: event.FileCopied, Path: rel, Size: n, Count: w.copied})
	w.emit(event.Event{Type: event.LogLine, Line: line})
	w.logger.Debug("copied", "path", rel, "dest", outcome.Path, "size", n)

	w.monitor.Reset()
	w.backtrack()
	return true
}

func (w *walker) skip(rel string, size int64) {
	w.stats.AddFilesSkipped(1)
	w.emit(event.Event{Type: event.FileSkipped, Path: rel, Size: size})
	w.backtrack()
}

func (w *walker) fail(rel string, err error) {
	w.logger.Debug("copy failed", "path", rel, "error", err)
	w.stats.AddFilesFailed(1)
	w.emit(event.Event{Type: event.FileFailed, Path: rel, Error: err})
	w.backtrack()
}

// markDirDone marks a dead directory touched.
func (w *walker) markDirDone(dir string) {
	if w.ledger.MarkTouched(dir, KindDir) {
		w.dirExhausted(dir)
	}
}

func (w *walker) dirExhausted(dir string) {
	w.stats.AddDirsExhausted(1)
	w.emit(event.Event{Type: event.DirExhausted, Path: w.rel(dir)})
}

func (w *walker) backtrack() {
	w.cur = w.root
	w.setState(Backtracked)
}

func (w *walker) setState(s State) {
	if s == w.state {
		return
	}
	w.logger.Debug("walk state", "from", w.state, "to", s)
	w.state = s
}

// rel returns path relative to the root with forward slashes.
func (w *walker) rel(path string) string {
	r, err := filepath.Rel(w.root, path)
	if err != nil {
		return path
	}
	return filepath.ToSlash(r)
}

// aliasesEntered reports whether the directory link at path resolves to a
// directory the walk has already entered. The root and every directory on
// the current path count as entered, so links back up the tree and cycles
// between sibling links are both caught.
func (w *walker) aliasesEntered(path string) bool {
	real, err := filepath.EvalSymlinks(path)
	if err != nil {
		return true
	}
	return w.ledger.Entered(real)
}

// within reports whether path lies strictly below dir.
func within(dir, path string) bool {
	r, err := filepath.Rel(dir, path)
	if err != nil || r == "." {
		return false
	}
	return r != ".." && !strings.HasPrefix(r, ".."+string(filepath.Separator))
}
