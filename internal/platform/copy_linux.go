//go:build linux

package platform

import (
	"errors"
	"os"

	"golang.org/x/sys/unix"
)

// CopyFile copies size bytes from src to dst starting at their current
// offsets. It offloads to copy_file_range and falls back to a buffered copy
// when the kernel or filesystem cannot.
func CopyFile(dst, src *os.File, size int64) (CopyResult, error) {
	result, err := copyFileRange(dst, src, size)
	if err == nil {
		return result, nil
	}
	if result.BytesWritten > 0 || !isFallbackErr(err) {
		return result, err
	}
	return CopyStream(dst, src)
}

func copyFileRange(dst, src *os.File, size int64) (CopyResult, error) {
	var total int64
	for remaining := size; remaining > 0; {
		n, err := unix.CopyFileRange(int(src.Fd()), nil, int(dst.Fd()), nil, int(remaining), 0)
		if err != nil {
			return CopyResult{BytesWritten: total, Method: CopyFileRange}, err
		}
		if n == 0 {
			// Source shrank underneath us.
			break
		}
		remaining -= int64(n)
		total += int64(n)
	}
	return CopyResult{BytesWritten: total, Method: CopyFileRange}, nil
}

func isFallbackErr(err error) bool {
	return errors.Is(err, unix.ENOSYS) ||
		errors.Is(err, unix.EXDEV) ||
		errors.Is(err, unix.EINVAL) ||
		errors.Is(err, unix.EOPNOTSUPP) ||
		errors.Is(err, unix.ENOTSUP)
}
