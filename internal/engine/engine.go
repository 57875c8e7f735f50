// Package engine copies randomly chosen files out of a directory tree.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/bamsammich/randcp/internal/event"
	"github.com/bamsammich/randcp/internal/filter"
	"github.com/bamsammich/randcp/internal/report"
	"github.com/bamsammich/randcp/internal/stats"
)

// Config describes one run. It is not modified by Run.
type Config struct {
	Root           string
	Dst            string
	Count          int
	StallTimeout   time.Duration // zero means DefaultStallTimeout
	Seed           uint64        // zero picks a random seed
	Filter         *filter.Chain
	Verify         bool
	BWLimit        int64 // bytes per second, zero for unlimited
	FollowSymlinks bool
	History        bool // skip files copied by earlier runs into Dst
	ResetHistory   bool // forget earlier runs before starting
	Events         chan<- event.Event
	Stats          *stats.Collector

	now func() time.Time
}

// Result is the outcome of a run.
type Result struct {
	Report  report.Result
	Records []CopyRecord
	Stats   stats.Snapshot
	Err     error
}

// Run executes a random copy, blocking until the run ends. Both log files
// are merged and closed before RunCompleted is sent.
func Run(ctx context.Context, cfg Config) Result {
	if cfg.Count < 1 {
		return Result{Err: fmt.Errorf("count must be at least 1, got %d", cfg.Count)}
	}

	root, err := filepath.Abs(cfg.Root)
	if err != nil {
		return Result{Err: fmt.Errorf("root: %w", err)}
	}
	info, err := os.Stat(root)
	if err != nil {
		return Result{Err: fmt.Errorf("root: %w", err)}
	}
	if !info.IsDir() {
		return Result{Err: fmt.Errorf("root %s is not a directory", root)}
	}

	dst, err := filepath.Abs(cfg.Dst)
	if err != nil {
		return Result{Err: fmt.Errorf("destination: %w", err)}
	}
	if err := os.MkdirAll(dst, 0755); err != nil {
		return Result{Err: fmt.Errorf("create destination: %w", err)}
	}

	var history *History
	if cfg.History {
		if cfg.ResetHistory {
			if err := RemoveHistory(root, dst); err != nil {
				return Result{Err: err}
			}
		}
		history, err = OpenHistory(root, dst)
		if err != nil {
			return Result{Err: err}
		}
	}

	rlog, err := OpenRunLog(dst)
	if err != nil {
		if history != nil {
			history.Close()
		}
		return Result{Err: err}
	}

	now := cfg.now
	if now == nil {
		now = time.Now
	}
	stallTimeout := cfg.StallTimeout
	if stallTimeout <= 0 {
		stallTimeout = DefaultStallTimeout
	}
	collector := cfg.Stats
	if collector == nil {
		collector = stats.NewCollector()
	}
	collector.SetTarget(int64(cfg.Count))

	seed := cfg.Seed
	if seed == 0 {
		seed = rand.Uint64()
	}

	logger := slog.Default().With("run", uuid.New().String())
	logger.Info("run started", "root", root, "dst", dst, "count", cfg.Count, "seed", seed)

	emit := func(ev event.Event) {
		if cfg.Events == nil {
			return
		}
		if ev.Timestamp.IsZero() {
			ev.Timestamp = now()
		}
		cfg.Events <- ev
	}

	tmp := &tmpRegistry{}
	cp := &copier{verify: cfg.Verify, tmp: tmp}
	if cfg.BWLimit > 0 {
		cp.limiter = NewBWLimiter(cfg.BWLimit)
	}

	w := &walker{
		root:           root,
		dst:            dst,
		target:         cfg.Count,
		stallTimeout:   stallTimeout,
		followSymlinks: cfg.FollowSymlinks,
		ledger:         NewLedger(),
		monitor:        NewStallMonitor(now),
		rng:            rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		filter:         cfg.Filter,
		copier:         cp,
		rlog:           rlog,
		history:        history,
		stats:          collector,
		emit:           emit,
		logger:         logger,
	}

	emit(event.Event{Type: event.RunStarted, Path: root, Target: cfg.Count})
	start := now()
	w.run(ctx)
	finished := now()

	if n := tmp.cleanup(); n > 0 {
		logger.Debug("removed staged copies", "count", n)
	}

	rep := report.Finalize(report.Input{
		StartPath:     root,
		DestPath:      dst,
		Copied:        w.copied,
		Target:        cfg.Count,
		TotalBytes:    w.bytes,
		Elapsed:       finished.Sub(start),
		Finished:      finished,
		TimedOut:      w.timedOut,
		Stopped:       w.stopped,
		RootExhausted: w.exhausted,
	})
	summary := report.Format(rep)

	var runErr error
	if history != nil {
		if err := history.Close(); err != nil {
			logger.Warn("history close failed", "path", history.Path(), "error", err)
		}
	}
	if err := rlog.Close(summary); err != nil {
		runErr = fmt.Errorf("finalize log: %w", err)
	}

	logger.Info("run finished", "status", rep.Status, "copied", rep.Copied, "bytes", rep.TotalBytes)

	emit(event.Event{Type: event.LogLine, Line: summary})
	emit(event.Event{Type: event.RunCompleted, Result: &rep, Count: rep.Copied, Target: rep.Target})

	return Result{
		Report:  rep,
		Records: w.records,
		Stats:   collector.Snapshot(),
		Err:     runErr,
	}
}
