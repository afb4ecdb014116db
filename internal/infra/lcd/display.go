package lcd

import (
	zlog "github.com/rs/zerolog/log"
)

// Screen is a cursor-addressed character device.
type Screen interface {
	SetCursor(col, row int) error
	Print(text string) error
	Clear() error
}

// Fitter is implemented by screens that size text by their own cell rules.
// Screens without it get Fit.
type Fitter interface {
	Fit(text string, cols int) string
}

// Display keeps a line buffer in front of a Screen and only rewrites lines
// whose content changed. Line 0 holds the title and line 1 the status.
type Display struct {
	screen Screen
	fit    func(text string, cols int) string
	cols   int
	lines  []string
	valid  []bool
}

// NewDisplay creates a display of rows × cols on screen.
func NewDisplay(screen Screen, rows, cols int) *Display {
	fit := Fit
	if f, ok := screen.(Fitter); ok {
		fit = f.Fit
	}
	return &Display{
		screen: screen,
		fit:    fit,
		cols:   cols,
		lines:  make([]string, rows),
		valid:  make([]bool, rows),
	}
}

// ShowTitle writes text, truncated and padded, on line 0.
func (d *Display) ShowTitle(text string) {
	d.SetLine(0, text)
}

// ShowStatus writes text, truncated and padded, on line 1.
func (d *Display) ShowStatus(text string) {
	d.SetLine(1, text)
}

// SetLine writes text on row. Failures are logged, not returned.
func (d *Display) SetLine(row int, text string) {
	if row < 0 || row >= len(d.lines) {
		return
	}
	fitted := d.fit(text, d.cols)
	if d.valid[row] && d.lines[row] == fitted {
		return
	}

	if err := d.screen.SetCursor(0, row); err != nil {
		d.valid[row] = false
		zlog.Warn().Err(err).Msgf("lcd: failed to position cursor: row=%d", row)
		return
	}
	if err := d.screen.Print(fitted); err != nil {
		d.valid[row] = false
		zlog.Warn().Err(err).Msgf("lcd: failed to write line: row=%d", row)
		return
	}
	d.lines[row] = fitted
	d.valid[row] = true
}

// Line returns the buffered content of row.
func (d *Display) Line(row int) string {
	if row < 0 || row >= len(d.lines) {
		return ""
	}
	return d.lines[row]
}

// Clear blanks the screen and forgets the buffer.
func (d *Display) Clear() error {
	for i := range d.lines {
		d.lines[i] = ""
		d.valid[i] = false
	}
	return d.screen.Clear()
}
