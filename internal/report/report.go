// Package report classifies a finished run and renders its summary block.
package report

import (
	"fmt"
	"strings"
	"time"
)

// Status is the terminal classification of a run.
type Status int

const (
	Success Status = iota + 1
	AllFilesSearched
	NoFilesFound
	TimedOut
	Stopped
)

func (s Status) String() string {
	switch s {
	case Success:
		return "Success"
	case AllFilesSearched:
		return "AllFilesSearched"
	case NoFilesFound:
		return "NoFilesFound"
	case TimedOut:
		return "TimedOut"
	case Stopped:
		return "Stopped"
	default:
		return "Unknown"
	}
}

// Input carries the run state needed to classify a run.
type Input struct {
	StartPath     string
	DestPath      string
	Copied        int
	Target        int
	TotalBytes    int64
	Elapsed       time.Duration
	Finished      time.Time
	TimedOut      bool
	Stopped       bool
	RootExhausted bool
}

// Result is the immutable outcome of one run.
type Result struct {
	Status     Status
	Copied     int
	Target     int
	TotalBytes int64
	Elapsed    time.Duration
	Finished   time.Time
	StartPath  string
	DestPath   string
	Stalled    bool
}

// Finalize classifies a run. The first matching rule wins:
// all copied, timed out with nothing copied, exhausted with nothing
// copied, exhausted, timed out, stopped.
func Finalize(in Input) Result {
	r := Result{
		Copied:     in.Copied,
		Target:     in.Target,
		TotalBytes: in.TotalBytes,
		Elapsed:    in.Elapsed,
		Finished:   in.Finished,
		StartPath:  in.StartPath,
		DestPath:   in.DestPath,
		Stalled:    in.TimedOut,
	}

	switch {
	case in.Copied == in.Target:
		r.Status = Success
	case in.TimedOut && in.Copied == 0:
		r.Status = NoFilesFound
	case in.RootExhausted && in.Copied == 0:
		r.Status = NoFilesFound
	case in.RootExhausted:
		r.Status = AllFilesSearched
	case in.TimedOut:
		r.Status = TimedOut
	case in.Stopped:
		r.Status = Stopped
	default:
		// The walk loop cannot finish short of the target without one of
		// the causes above; classify as an interrupted run.
		r.Status = Stopped
	}
	return r
}

// StatusLine returns the one-line headline of the summary block.
func (r Result) StatusLine() string {
	switch r.Status {
	case Success:
		return fmt.Sprintf("SUCCESS: %d/%d files copied", r.Copied, r.Target)
	case NoFilesFound:
		if r.Stalled {
			return "NO FILES FOUND: timed out"
		}
		return "NO FILES FOUND: all files searched"
	case AllFilesSearched:
		return fmt.Sprintf("ALL FILES SEARCHED: %d/%d files copied", r.Copied, r.Target)
	case TimedOut:
		return fmt.Sprintf("TIMED OUT: %d/%d files copied", r.Copied, r.Target)
	default:
		return fmt.Sprintf("STOPPED: %d/%d files copied", r.Copied, r.Target)
	}
}

const rule = "------------------------------------------------------------------------"

// Format renders the summary block written to the log and shown to the user.
func Format(r Result) string {
	var b strings.Builder
	b.WriteString(rule + "\n")
	b.WriteString(r.StatusLine() + "\n")
	b.WriteString(rule + "\n")
	writeField(&b, "Date:", r.Finished.Format("January 02, 2006"))
	writeField(&b, "Time:", r.Finished.Format("03:04:05PM"))
	writeField(&b, "Start:", r.StartPath)
	writeField(&b, "Destination:", r.DestPath)
	writeField(&b, "Total size:", FormatSize(r.TotalBytes))
	writeField(&b, "Total runtime:", fmt.Sprintf("%.2fs", r.Elapsed.Seconds()))
	b.WriteString(rule)
	return b.String()
}

func writeField(b *strings.Builder, label, value string) {
	fmt.Fprintf(b, "%-15s%s\n", label, value)
}

const gibibyte = 1 << 30

// FormatSize renders a byte total in MB below 1 GiB and in GB from there up,
// both binary units rounded to two decimals.
func FormatSize(n int64) string {
	if n < gibibyte {
		return fmt.Sprintf("%.2f MB", float64(n)/(1<<20))
	}
	return fmt.Sprintf("%.2f GB", float64(n)/gibibyte)
}
