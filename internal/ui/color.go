package ui

import (
	"fmt"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// hexColor converts a CSS color as stored in metric settings ("#rrggbb" or
// "hsl(h, s%, l%)") into the hex form lipgloss understands. Anything else
// maps to the muted theme color.
func hexColor(css string) string {
	css = strings.TrimSpace(css)
	if strings.HasPrefix(css, "#") {
		if c, err := colorful.Hex(css); err == nil {
			return c.Hex()
		}
		return ColorMuted
	}
	var h, s, l float64
	if _, err := fmt.Sscanf(strings.ReplaceAll(css, " ", ""), "hsl(%g,%g%%,%g%%)", &h, &s, &l); err != nil {
		return ColorMuted
	}
	return colorful.Hsl(h, s/100, l/100).Clamped().Hex()
}
