package ui

import (
	"fmt"

	"github.com/bamsammich/randcp/internal/stats"
)

// CompletionSummary builds the closing line printed after a run.
// Format: done ✓  files 10/10  size 4.2 MiB  avg 1.10 MB/s  time 4s  skipped 0  errors 0
func CompletionSummary(snap stats.Snapshot) string {
	avgSpeed := 0.0
	if snap.Elapsed.Seconds() > 0 {
		avgSpeed = float64(snap.BytesCopied) / snap.Elapsed.Seconds()
	}

	icon := "✓"
	if snap.FilesCopied < snap.FilesTarget {
		icon = "✗"
	}

	return fmt.Sprintf("done %s  files %s/%s  size %s  avg %s  time %s  skipped %s  errors %s",
		icon,
		FormatCount(snap.FilesCopied), FormatCount(snap.FilesTarget),
		FormatBytes(snap.BytesCopied),
		FormatRate(avgSpeed),
		FormatDuration(snap.Elapsed),
		FormatCount(snap.FilesSkipped),
		FormatCount(snap.FilesFailed),
	)
}
