package event

import (
	"time"

	"github.com/bamsammich/randcp/internal/report"
)

// Type identifies the kind of event.
type Type int

const (
	RunStarted Type = iota + 1
	FileCopied
	FileSkipped
	FileFailed
	FileFiltered
	DirExhausted
	LogLine
	RunCompleted
)

var typeNames = [...]string{
	RunStarted:   "RunStarted",
	FileCopied:   "FileCopied",
	FileSkipped:  "FileSkipped",
	FileFailed:   "FileFailed",
	FileFiltered: "FileFiltered",
	DirExhausted: "DirExhausted",
	LogLine:      "LogLine",
	RunCompleted: "RunCompleted",
}

func (t Type) String() string {
	if t > 0 && int(t) < len(typeNames) {
		return typeNames[t]
	}
	return "Unknown"
}

// Event represents a single notification from the engine to its caller.
type Event struct {
	Type      Type
	Timestamp time.Time
	Path      string // relative to the walk root
	Size      int64
	Count     int    // files copied so far (FileCopied)
	Target    int    // requested file count (RunStarted)
	Line      string // LogLine text
	Result    *report.Result
	Error     error
}
