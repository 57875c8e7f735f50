package filter

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

var sizeUnits = map[string]int64{
	"":  1,
	"K": 1 << 10,
	"M": 1 << 20,
	"G": 1 << 30,
	"T": 1 << 40,
}

// ParseSize parses a human-readable size into bytes. Units are powers of
// 1024 and case-insensitive: 100, 100B, 100K, 1.5M, 100MB, 2GiB, 1T.
func ParseSize(s string) (int64, error) {
	in := strings.ToUpper(strings.TrimSpace(s))
	if in == "" {
		return 0, fmt.Errorf("empty size string")
	}

	in = strings.TrimSuffix(in, "IB")
	in = strings.TrimSuffix(in, "B")

	unit := ""
	if n := len(in); n > 0 {
		if _, ok := sizeUnits[in[n-1:]]; ok {
			unit = in[n-1:]
			in = in[:n-1]
		}
	}
	in = strings.TrimSpace(in)
	if in == "" {
		return 0, fmt.Errorf("invalid size: %q", s)
	}

	mult := sizeUnits[unit]
	if n, err := strconv.ParseInt(in, 10, 64); err == nil {
		if n < 0 {
			return 0, fmt.Errorf("negative size: %q", s)
		}
		return n * mult, nil
	}
	f, err := strconv.ParseFloat(in, 64)
	if err != nil || f < 0 || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("invalid size: %q", s)
	}
	return int64(f * float64(mult)), nil
}
