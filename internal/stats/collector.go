package stats

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"
)

const ringSize = 60

// Reader is the read side of a Collector, used by presenters.
type Reader interface {
	Snapshot() Snapshot
	RollingSpeed(seconds int) float64
	SparklineData(n int) []float64
}

// ReadTicker is a Reader that presenters also drive once per second.
type ReadTicker interface {
	Reader
	Tick()
}

// Collector tracks walk and copy statistics with atomic counters. The engine
// writes from its single walk goroutine while presenters read concurrently.
type Collector struct {
	filesCopied   atomic.Int64
	filesSkipped  atomic.Int64
	filesFailed   atomic.Int64
	filesFiltered atomic.Int64
	dirsExhausted atomic.Int64
	entriesPicked atomic.Int64
	bytesCopied   atomic.Int64
	filesTarget   atomic.Int64
	startTime     time.Time

	// Ring buffer, written only by Tick.
	mu         sync.Mutex
	throughput [ringSize]int64 // bytes delta per tick
	ringIdx    int
	ringCount  int
	lastBytes  int64
}

// NewCollector creates a Collector with startTime set to now.
func NewCollector() *Collector {
	return &Collector{startTime: time.Now()}
}

// Snapshot is a point-in-time read of all counters.
type Snapshot struct {
	FilesCopied   int64
	FilesSkipped  int64
	FilesFailed   int64
	FilesFiltered int64
	DirsExhausted int64
	EntriesPicked int64
	BytesCopied   int64
	FilesTarget   int64
	Elapsed       time.Duration
}

// SetTarget records the requested file count for progress display.
func (c *Collector) SetTarget(n int64) { c.filesTarget.Store(n) }

func (c *Collector) AddFilesCopied(n int64)   { c.filesCopied.Add(n) }
func (c *Collector) AddFilesSkipped(n int64)  { c.filesSkipped.Add(n) }
func (c *Collector) AddFilesFailed(n int64)   { c.filesFailed.Add(n) }
func (c *Collector) AddFilesFiltered(n int64) { c.filesFiltered.Add(n) }
func (c *Collector) AddDirsExhausted(n int64) { c.dirsExhausted.Add(n) }
func (c *Collector) AddEntriesPicked(n int64) { c.entriesPicked.Add(n) }
func (c *Collector) AddBytesCopied(n int64)   { c.bytesCopied.Add(n) }

// Snapshot returns a point-in-time read of all counters.
func (c *Collector) Snapshot() Snapshot {
	return Snapshot{
		FilesCopied:   c.filesCopied.Load(),
		FilesSkipped:  c.filesSkipped.Load(),
		FilesFailed:   c.filesFailed.Load(),
		FilesFiltered: c.filesFiltered.Load(),
		DirsExhausted: c.dirsExhausted.Load(),
		EntriesPicked: c.entriesPicked.Load(),
		BytesCopied:   c.bytesCopied.Load(),
		FilesTarget:   c.filesTarget.Load(),
		Elapsed:       c.Elapsed(),
	}
}

// Tick records the bytes copied since the previous Tick. Called 1/sec by the presenter.
func (c *Collector) Tick() {
	current := c.bytesCopied.Load()

	c.mu.Lock()
	defer c.mu.Unlock()

	c.throughput[c.ringIdx] = current - c.lastBytes
	c.lastBytes = current
	c.ringIdx = (c.ringIdx + 1) % ringSize
	if c.ringCount < ringSize {
		c.ringCount++
	}
}

// RollingSpeed returns average bytes/sec over the last n samples.
func (c *Collector) RollingSpeed(seconds int) float64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	count := min(seconds, c.ringCount)
	if count <= 0 {
		return 0
	}
	var sum int64
	for i := range count {
		sum += c.throughput[(c.ringIdx-1-i+ringSize)%ringSize]
	}
	return float64(sum) / float64(count)
}

// SparklineData returns the last n bytes/sec samples, oldest first.
func (c *Collector) SparklineData(n int) []float64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	count := min(n, c.ringCount)
	if count <= 0 {
		return nil
	}
	data := make([]float64, count)
	for i := range count {
		data[i] = float64(c.throughput[(c.ringIdx-count+i+ringSize)%ringSize])
	}
	return data
}

// Elapsed returns time since collector creation.
func (c *Collector) Elapsed() time.Duration {
	return time.Since(c.startTime)
}

func (s Snapshot) String() string {
	return fmt.Sprintf(
		"copied=%d skipped=%d failed=%d filtered=%d exhausted=%d picked=%d bytes=%d",
		s.FilesCopied, s.FilesSkipped, s.FilesFailed, s.FilesFiltered,
		s.DirsExhausted, s.EntriesPicked, s.BytesCopied,
	)
}

// FormatBytes returns a human-readable byte count in binary units.
func FormatBytes(b int64) string {
	if b < 0 {
		return "-" + humanize.IBytes(uint64(-b))
	}
	return humanize.IBytes(uint64(b))
}
