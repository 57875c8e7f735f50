package engine

import (
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/zeebo/blake3"
	_ "modernc.org/sqlite"
)

// History is a SQLite record of files copied by earlier runs for one
// root/destination pair. Files it knows about (same size and mtime) are
// treated like files already present in the destination.
type History struct {
	db   *sql.DB
	path string

	mu      sync.Mutex
	batch   []historyEntry
	done    chan struct{}
	stopped bool
}

type historyEntry struct {
	relPath   string
	size      int64
	mtimeNano int64
	dest      string
	copiedAt  int64
}

const historyBatchSize = 32

// OpenHistory opens or creates the history database for root and dst.
func OpenHistory(root, dst string) (*History, error) {
	dbPath := historyPath(historyJobID(root, dst))
	if err := os.MkdirAll(filepath.Dir(dbPath), 0700); err != nil {
		return nil, fmt.Errorf("create history dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open history: %w", err)
	}

	h := &History{db: db, path: dbPath, done: make(chan struct{})}
	if err := h.init(root, dst); err != nil {
		db.Close()
		return nil, err
	}

	go h.flushLoop()
	return h, nil
}

// RemoveHistory deletes the history database for root and dst, if any.
func RemoveHistory(root, dst string) error {
	p := historyPath(historyJobID(root, dst))
	for _, f := range []string{p, p + "-wal", p + "-shm"} {
		if err := os.Remove(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("remove history: %w", err)
		}
	}
	return nil
}

func (h *History) init(root, dst string) error {
	_, err := h.db.Exec(`
		CREATE TABLE IF NOT EXISTS copied (
			path      TEXT PRIMARY KEY,
			size      INTEGER NOT NULL,
			mtime     INTEGER NOT NULL,
			dest      TEXT NOT NULL,
			copied_at INTEGER NOT NULL
		);
		CREATE TABLE IF NOT EXISTS meta (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);
	`)
	if err != nil {
		return fmt.Errorf("create history tables: %w", err)
	}

	var storedRoot, storedDst string
	err = h.db.QueryRow("SELECT value FROM meta WHERE key = 'root'").Scan(&storedRoot)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		_, err = h.db.Exec("INSERT INTO meta (key, value) VALUES ('root', ?), ('dst', ?)", root, dst)
		if err != nil {
			return fmt.Errorf("store history meta: %w", err)
		}
		return nil
	case err != nil:
		return fmt.Errorf("read history meta: %w", err)
	}

	if err := h.db.QueryRow("SELECT value FROM meta WHERE key = 'dst'").Scan(&storedDst); err != nil {
		return fmt.Errorf("read history meta: %w", err)
	}
	if storedRoot != root || storedDst != dst {
		return fmt.Errorf("history belongs to %s -> %s, not %s -> %s", storedRoot, storedDst, root, dst)
	}
	return nil
}

// Seen reports whether relPath was copied before with the same size and
// modification time. Pending writes are visible.
func (h *History) Seen(relPath string, size, mtimeNano int64) bool {
	h.mu.Lock()
	for _, e := range h.batch {
		if e.relPath == relPath {
			h.mu.Unlock()
			return e.size == size && e.mtimeNano == mtimeNano
		}
	}
	h.mu.Unlock()

	var storedSize, storedMtime int64
	err := h.db.QueryRow("SELECT size, mtime FROM copied WHERE path = ?", relPath).
		Scan(&storedSize, &storedMtime)
	if err != nil {
		return false
	}
	return storedSize == size && storedMtime == mtimeNano
}

// Record notes a successful copy. Writes are batched.
func (h *History) Record(relPath string, size, mtimeNano int64, dest string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.batch = append(h.batch, historyEntry{
		relPath:   relPath,
		size:      size,
		mtimeNano: mtimeNano,
		dest:      dest,
		copiedAt:  time.Now().Unix(),
	})
	if len(h.batch) >= historyBatchSize {
		return h.flushLocked()
	}
	return nil
}

// Len returns the number of recorded copies, pending writes included.
func (h *History) Len() (int, error) {
	if err := h.Flush(); err != nil {
		return 0, err
	}
	var n int
	if err := h.db.QueryRow("SELECT COUNT(*) FROM copied").Scan(&n); err != nil {
		return 0, fmt.Errorf("count history: %w", err)
	}
	return n, nil
}

// Flush writes pending entries.
func (h *History) Flush() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.flushLocked()
}

func (h *History) flushLocked() error {
	if len(h.batch) == 0 {
		return nil
	}

	tx, err := h.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	stmt, err := tx.Prepare(`INSERT OR REPLACE INTO copied (path, size, mtime, dest, copied_at)
		VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("prepare: %w", err)
	}
	defer stmt.Close()

	for _, e := range h.batch {
		if _, err := stmt.Exec(e.relPath, e.size, e.mtimeNano, e.dest, e.copiedAt); err != nil {
			tx.Rollback()
			return fmt.Errorf("insert %s: %w", e.relPath, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	h.batch = h.batch[:0]
	return nil
}

func (h *History) flushLoop() {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-h.done:
			return
		case <-ticker.C:
			h.mu.Lock()
			_ = h.flushLocked()
			h.mu.Unlock()
		}
	}
}

// Close flushes pending writes and closes the database.
func (h *History) Close() error {
	h.mu.Lock()
	if !h.stopped {
		h.stopped = true
		close(h.done)
	}
	flushErr := h.flushLocked()
	h.mu.Unlock()

	if err := h.db.Close(); err != nil {
		return err
	}
	return flushErr
}

// Path returns the database file path.
func (h *History) Path() string {
	return h.path
}

func historyJobID(root, dst string) string {
	h := blake3.New()
	h.Write([]byte(root))
	h.Write([]byte{0})
	h.Write([]byte(dst))
	digest := h.Sum(nil)
	return hex.EncodeToString(digest[:8])
}

// historyPath places the database under $XDG_STATE_HOME/randcp, falling back
// to ~/.local/state/randcp and finally the temp dir.
func historyPath(jobID string) string {
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return filepath.Join(dir, "randcp", jobID+".db")
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".local", "state", "randcp", jobID+".db")
	}
	return filepath.Join(os.TempDir(), "randcp-"+jobID+".db")
}
