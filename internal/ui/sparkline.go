package ui

import (
	"strings"

	"chronology/internal/chart"
)

var sparkBlocks = []rune("▁▂▃▄▅▆▇█")

// Sparkline renders values as block characters scaled between their min
// and max, keeping the last width values. A flat series renders at mid
// height.
func Sparkline(values []float64, width int) string {
	if len(values) == 0 || width <= 0 {
		return ""
	}
	if len(values) > width {
		values = values[len(values)-width:]
	}
	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = min(lo, v)
		hi = max(hi, v)
	}

	var b strings.Builder
	top := len(sparkBlocks) - 1
	for _, v := range values {
		idx := top / 2
		if hi > lo {
			idx = int((v - lo) / (hi - lo) * float64(top))
		}
		b.WriteRune(sparkBlocks[idx])
	}
	return b.String()
}

// seriesValues returns the y values of a series in time order.
func seriesValues(s chart.Series) []float64 {
	out := make([]float64, len(s.Data))
	for i, p := range s.Data {
		out[i] = p.Y
	}
	return out
}
