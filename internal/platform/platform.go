// Package platform moves file data between open descriptors using the
// fastest mechanism the OS offers.
package platform

import (
	"io"
	"sync"
)

// CopyMethod identifies which strategy moved the bytes.
type CopyMethod int

const (
	ReadWrite     CopyMethod = iota
	CopyFileRange            // Linux copy_file_range(2)
)

func (m CopyMethod) String() string {
	switch m {
	case ReadWrite:
		return "read_write"
	case CopyFileRange:
		return "copy_file_range"
	default:
		return "unknown"
	}
}

// CopyResult reports the outcome of a copy.
type CopyResult struct {
	BytesWritten int64
	Method       CopyMethod
}

const bufferSize = 1 << 20

var bufPool = sync.Pool{
	New: func() any {
		b := make([]byte, bufferSize)
		return &b
	},
}

// CopyStream copies src to dst through a pooled buffer. It is the path used
// when the byte stream must be observed, e.g. by a rate limiter.
func CopyStream(dst io.Writer, src io.Reader) (CopyResult, error) {
	bufp := bufPool.Get().(*[]byte)
	defer bufPool.Put(bufp)

	// Strip ReaderFrom/WriterTo so the pooled buffer is actually used.
	n, err := io.CopyBuffer(struct{ io.Writer }{dst}, struct{ io.Reader }{src}, *bufp)
	return CopyResult{BytesWritten: n, Method: ReadWrite}, err
}
