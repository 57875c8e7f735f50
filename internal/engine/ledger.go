package engine

import (
	"fmt"
	"os"
	"path/filepath"
)

// Kind distinguishes files from directories in the ledger.
type Kind int

const (
	KindFile Kind = iota
	KindDir
)

// Ledger records which paths a run has already dealt with and caches
// directory listings. Keys are absolute paths. A Ledger belongs to a single
// run and is not safe for concurrent use.
type Ledger struct {
	files    map[string]bool
	dirs     map[string]bool
	listings map[string][]string
	realDirs map[string]bool // symlink-free paths of directories entered
}

// NewLedger returns an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{
		files:    make(map[string]bool),
		dirs:     make(map[string]bool),
		listings: make(map[string][]string),
		realDirs: make(map[string]bool),
	}
}

// ListingOf returns the entry names of dir, reading the directory on first
// use. Failed reads are not cached.
func (l *Ledger) ListingOf(dir string) ([]string, error) {
	if names, ok := l.listings[dir]; ok {
		return names, nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", dir, err)
	}
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name()
	}
	l.listings[dir] = names
	return names, nil
}

// MarkTouched flags path as done. It reports whether the flag was newly set.
func (l *Ledger) MarkTouched(path string, kind Kind) bool {
	m := l.files
	if kind == KindDir {
		m = l.dirs
	}
	if m[path] {
		return false
	}
	m[path] = true
	return true
}

// IsTouched reports whether path is touched as either a file or a directory.
func (l *Ledger) IsTouched(path string) bool {
	return l.files[path] || l.dirs[path]
}

// IsDirTouched reports whether the directory at path is exhausted.
func (l *Ledger) IsDirTouched(path string) bool {
	return l.dirs[path]
}

// AllEntriesTouched reports whether every cached entry of dir is touched.
// A directory that was never listed is not considered exhausted.
func (l *Ledger) AllEntriesTouched(dir string) bool {
	names, ok := l.listings[dir]
	if !ok {
		return false
	}
	for _, name := range names {
		if !l.IsTouched(filepath.Join(dir, name)) {
			return false
		}
	}
	return true
}

// Exhaust marks dir touched when all of its entries are. It reports whether
// dir became exhausted by this call.
func (l *Ledger) Exhaust(dir string) bool {
	if l.dirs[dir] || !l.AllEntriesTouched(dir) {
		return false
	}
	return l.MarkTouched(dir, KindDir)
}

// MarkEntered records the resolved path of a directory the walk entered.
func (l *Ledger) MarkEntered(realPath string) {
	l.realDirs[realPath] = true
}

// Entered reports whether a directory with this resolved path was entered
// under any name.
func (l *Ledger) Entered(realPath string) bool {
	return l.realDirs[realPath]
}
