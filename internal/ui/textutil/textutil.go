// Package textutil provides unicode-aware text helpers for laying out
// terminal tables.
package textutil

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// TruncateEllipsis marks truncated text.
const TruncateEllipsis = "…"

// VisualWidth returns the number of terminal columns s occupies.
func VisualWidth(s string) int {
	return runewidth.StringWidth(s)
}

// VisualWidthStyled is VisualWidth for strings carrying ANSI styling.
func VisualWidthStyled(s string) int {
	return lipgloss.Width(s)
}

// Truncate shortens s to at most maxWidth columns, ending in an ellipsis
// when anything was cut.
func Truncate(s string, maxWidth int) string {
	if maxWidth <= 0 {
		return ""
	}
	if VisualWidth(s) <= maxWidth {
		return s
	}
	avail := maxWidth - VisualWidth(TruncateEllipsis)
	if avail < 0 {
		return TruncateEllipsis
	}
	return runewidth.Truncate(s, avail, "") + TruncateEllipsis
}

// PadRight pads s with spaces to width columns, truncating when wider.
func PadRight(s string, width int) string {
	if VisualWidth(s) >= width {
		return Truncate(s, width)
	}
	return runewidth.FillRight(s, width)
}

// PadLeft right-aligns s in width columns, truncating when wider.
func PadLeft(s string, width int) string {
	if VisualWidth(s) >= width {
		return Truncate(s, width)
	}
	return runewidth.FillLeft(s, width)
}

// Align selects PadLeft or PadRight for a column.
type Align int

const (
	AlignLeft Align = iota
	AlignRight
)

// Column describes one table column.
type Column struct {
	Width int
	Align Align
}

// Row lays out cells in columns separated by gap spaces. Cells beyond the
// column list are dropped; missing cells render blank.
func Row(cols []Column, cells []string, gap int) string {
	var b strings.Builder
	for i, col := range cols {
		if i > 0 {
			b.WriteString(strings.Repeat(" ", gap))
		}
		cell := ""
		if i < len(cells) {
			cell = cells[i]
		}
		if col.Align == AlignRight {
			b.WriteString(PadLeft(cell, col.Width))
		} else {
			b.WriteString(PadRight(cell, col.Width))
		}
	}
	return strings.TrimRight(b.String(), " ")
}

// FitWidths returns, per column, the widest of its header and cells,
// capped at limit when limit is positive.
func FitWidths(headers []string, rows [][]string, limit int) []int {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = VisualWidth(h)
	}
	for _, row := range rows {
		for i := 0; i < len(row) && i < len(widths); i++ {
			widths[i] = max(widths[i], VisualWidth(row[i]))
		}
	}
	if limit > 0 {
		for i := range widths {
			widths[i] = min(widths[i], limit)
		}
	}
	return widths
}
