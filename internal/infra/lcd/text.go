// Package lcd drives a character display: an HD44780 controller behind a
// PCF8574 I²C backpack, or a console rendition for bench use.
package lcd

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// Fit truncates text to cols display columns and pads it with spaces so
// that a write replaces every stale character on the line.
func Fit(text string, cols int) string {
	if cols <= 0 {
		return ""
	}
	return runewidth.FillRight(runewidth.Truncate(text, cols, ""), cols)
}

// fitROM maps text onto the character ROM, then truncates and pads it to
// cols cells. The controller has one cell per byte, so every rune counts
// as one column regardless of its terminal width.
func fitROM(text string, cols int) string {
	if cols <= 0 {
		return ""
	}
	b := toROM(text)
	if len(b) > cols {
		b = b[:cols]
	}
	return string(b) + strings.Repeat(" ", cols-len(b))
}

// toROM maps text onto the controller's character ROM. Anything outside
// printable ASCII becomes '?'.
func toROM(text string) []byte {
	out := make([]byte, 0, len(text))
	for _, r := range text {
		if r < 0x20 || r > 0x7E {
			out = append(out, '?')
			continue
		}
		out = append(out, byte(r))
	}
	return out
}
