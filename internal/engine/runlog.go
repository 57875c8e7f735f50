package engine

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// LogPaths returns the persistent log and its staging companion for a
// destination directory.
func LogPaths(dst string) (persistent, staging string) {
	persistent = filepath.Join(dst, "!"+filepath.Base(dst)+"_log.txt")
	return persistent, persistent + ".bak"
}

// RunLog is the log file pair of one run. When a persistent log already
// exists, this run's lines go to the staging file so that Close can put the
// new summary and entries ahead of the older content.
type RunLog struct {
	persistentPath string
	stagingPath    string
	appendMode     bool

	persistent *os.File
	staging    *os.File
	closed     bool
}

// OpenRunLog opens both log files in dst. A leftover staging file from an
// interrupted run is truncated.
func OpenRunLog(dst string) (*RunLog, error) {
	persistentPath, stagingPath := LogPaths(dst)

	_, err := os.Stat(persistentPath)
	appendMode := err == nil
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("stat log %s: %w", persistentPath, err)
	}

	persistent, err := os.OpenFile(persistentPath, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log %s: %w", persistentPath, err)
	}
	staging, err := os.OpenFile(stagingPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		persistent.Close()
		return nil, fmt.Errorf("open log %s: %w", stagingPath, err)
	}

	return &RunLog{
		persistentPath: persistentPath,
		stagingPath:    stagingPath,
		appendMode:     appendMode,
		persistent:     persistent,
		staging:        staging,
	}, nil
}

// Paths returns the persistent and staging paths.
func (l *RunLog) Paths() (persistent, staging string) {
	return l.persistentPath, l.stagingPath
}

// Append writes one entry line.
func (l *RunLog) Append(line string) error {
	w := l.persistent
	if l.appendMode {
		w = l.staging
	}
	_, err := fmt.Fprintln(w, line)
	return err
}

// Close writes the summary ahead of this run's entries and all prior
// content, replaces the persistent log with the result, and removes the
// staging file. Calling Close more than once is a no-op.
func (l *RunLog) Close(summary string) error {
	if l.closed {
		return nil
	}
	l.closed = true
	defer os.Remove(l.stagingPath)

	if err := errors.Join(l.persistent.Close(), l.staging.Close()); err != nil {
		return fmt.Errorf("close log: %w", err)
	}

	persistent, err := os.ReadFile(l.persistentPath)
	if err != nil {
		return fmt.Errorf("read log %s: %w", l.persistentPath, err)
	}
	var entries, prior []byte
	if l.appendMode {
		staged, err := os.ReadFile(l.stagingPath)
		if err != nil {
			return fmt.Errorf("read log %s: %w", l.stagingPath, err)
		}
		entries, prior = staged, persistent
	} else {
		entries = persistent
	}

	buf := make([]byte, 0, len(summary)+1+len(entries)+len(prior))
	buf = append(buf, summary...)
	buf = append(buf, '\n')
	buf = append(buf, entries...)
	buf = append(buf, prior...)

	if err := os.WriteFile(l.stagingPath, buf, 0o644); err != nil {
		return fmt.Errorf("write log %s: %w", l.stagingPath, err)
	}
	if err := os.Rename(l.stagingPath, l.persistentPath); err != nil {
		return fmt.Errorf("rename %s -> %s: %w", l.stagingPath, l.persistentPath, err)
	}
	return nil
}
