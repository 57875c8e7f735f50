package engine

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/bamsammich/randcp/internal/platform"
)

// copier stages a source file next to its destination and renames it into
// place once the data is complete.
type copier struct {
	limiter *rate.Limiter
	verify  bool
	tmp     *tmpRegistry
}

// copy writes src to dstPath and returns the number of bytes moved.
func (c *copier) copy(ctx context.Context, src, dstPath string) (int64, error) {
	srcFd, err := os.Open(src)
	if err != nil {
		return 0, fmt.Errorf("open %s: %w", src, err)
	}
	defer srcFd.Close()

	info, err := srcFd.Stat()
	if err != nil {
		return 0, fmt.Errorf("stat %s: %w", src, err)
	}

	dir := filepath.Dir(dstPath)
	tmpName := fmt.Sprintf(".%s.%s.randcp-tmp", filepath.Base(dstPath), uuid.New().String()[:8])
	tmpPath := filepath.Join(dir, tmpName)

	c.tmp.add(tmpPath)
	defer func() {
		c.tmp.remove(tmpPath)
		_ = os.Remove(tmpPath) // no-op after a successful rename
	}()

	tmpFd, err := os.OpenFile(tmpPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, info.Mode().Perm())
	if err != nil {
		return 0, fmt.Errorf("create tmp %s: %w", tmpPath, err)
	}

	var result platform.CopyResult
	if c.limiter != nil {
		result, err = platform.CopyStream(tmpFd, newRateLimitedReader(ctx, srcFd, c.limiter))
	} else {
		result, err = platform.CopyFile(tmpFd, srcFd, info.Size())
	}
	if err != nil {
		tmpFd.Close()
		return 0, fmt.Errorf("copy data %s: %w", src, err)
	}
	if result.BytesWritten != info.Size() {
		tmpFd.Close()
		return 0, fmt.Errorf("copy data %s: short copy (%d of %d bytes)", src, result.BytesWritten, info.Size())
	}

	if err := tmpFd.Close(); err != nil {
		return 0, fmt.Errorf("close tmp %s: %w", tmpPath, err)
	}

	if c.verify {
		if err := verifyCopy(src, tmpPath); err != nil {
			return 0, err
		}
	}

	if err := os.Rename(tmpPath, dstPath); err != nil {
		return 0, fmt.Errorf("rename %s -> %s: %w", tmpPath, dstPath, err)
	}
	return result.BytesWritten, nil
}
