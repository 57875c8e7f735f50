//go:build !linux

package platform

import "os"

// CopyFile copies from src to dst with a buffered read/write loop.
func CopyFile(dst, src *os.File, _ int64) (CopyResult, error) {
	return CopyStream(dst, src)
}
