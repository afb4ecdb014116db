package lcd

import (
	"io"
	"time"

	"github.com/cockroachdb/errors"
)

// PCF8574 port bits wired to the HD44780 pins: P0 RS, P1 RW, P2 EN,
// P3 backlight, P4-P7 D4-D7.
const (
	pinRS        byte = 0x01
	pinRW        byte = 0x02
	pinEN        byte = 0x04
	pinBacklight byte = 0x08
)

// HD44780 commands.
const (
	cmdClear       byte = 0x01
	cmdHome        byte = 0x02
	cmdEntryMode   byte = 0x04
	cmdDisplayCtrl byte = 0x08
	cmdFunctionSet byte = 0x20
	cmdSetDDRAM    byte = 0x80

	entryIncrement byte = 0x02
	displayOn      byte = 0x04
	twoLines       byte = 0x08
)

var rowOffsets = [4]byte{0x00, 0x40, 0x14, 0x54}

// HD44780 drives the controller in 4-bit mode through a PCF8574 port
// expander. w is typically an *i2c.Dev.
type HD44780 struct {
	w         io.Writer
	rows      int
	cols      int
	backlight bool
	sleep     func(time.Duration)
}

// NewHD44780 creates a driver. Call Init before writing.
func NewHD44780(w io.Writer, rows, cols int, backlight bool) *HD44780 {
	return &HD44780{
		w:         w,
		rows:      rows,
		cols:      cols,
		backlight: backlight,
		sleep:     time.Sleep,
	}
}

// Init runs the 4-bit initialization sequence, clears the display and
// turns it on with the cursor hidden.
func (d *HD44780) Init() error {
	d.sleep(50 * time.Millisecond)

	// Force 8-bit mode three times, then switch to 4-bit.
	for _, wait := range []time.Duration{5 * time.Millisecond, 200 * time.Microsecond, 200 * time.Microsecond} {
		if err := d.writeNibble(0x03, false); err != nil {
			return errors.Wrap(err, "lcd init failed")
		}
		d.sleep(wait)
	}
	if err := d.writeNibble(0x02, false); err != nil {
		return errors.Wrap(err, "lcd init failed")
	}

	function := cmdFunctionSet
	if d.rows > 1 {
		function |= twoLines
	}
	for _, cmd := range []byte{function, cmdDisplayCtrl, cmdEntryMode | entryIncrement} {
		if err := d.command(cmd); err != nil {
			return errors.Wrap(err, "lcd init failed")
		}
	}
	if err := d.Clear(); err != nil {
		return errors.Wrap(err, "lcd init failed")
	}
	if err := d.command(cmdDisplayCtrl | displayOn); err != nil {
		return errors.Wrap(err, "lcd init failed")
	}
	return nil
}

// Clear blanks the display and homes the cursor.
func (d *HD44780) Clear() error {
	if err := d.command(cmdClear); err != nil {
		return err
	}
	d.sleep(2 * time.Millisecond)
	return nil
}

// Home moves the cursor to (0, 0).
func (d *HD44780) Home() error {
	if err := d.command(cmdHome); err != nil {
		return err
	}
	d.sleep(2 * time.Millisecond)
	return nil
}

// SetCursor moves the cursor to col, row.
func (d *HD44780) SetCursor(col, row int) error {
	if row < 0 || row >= d.rows || row >= len(rowOffsets) {
		return errors.Newf("row %d out of range", row)
	}
	if col < 0 || col >= d.cols {
		return errors.Newf("col %d out of range", col)
	}
	return d.command(cmdSetDDRAM | (rowOffsets[row] + byte(col)))
}

// Fit maps text onto the character ROM and sizes it to cols cells.
func (d *HD44780) Fit(text string, cols int) string {
	return fitROM(text, cols)
}

// Print writes text at the cursor.
func (d *HD44780) Print(text string) error {
	for _, b := range toROM(text) {
		if err := d.write(b, true); err != nil {
			return err
		}
	}
	return nil
}

// SetBacklight switches the backlight. It takes effect immediately.
func (d *HD44780) SetBacklight(on bool) error {
	d.backlight = on
	_, err := d.w.Write([]byte{d.flags(false)})
	return err
}

func (d *HD44780) command(b byte) error {
	return d.write(b, false)
}

func (d *HD44780) write(b byte, data bool) error {
	if err := d.writeNibble(b>>4, data); err != nil {
		return err
	}
	return d.writeNibble(b&0x0F, data)
}

// writeNibble latches the low four bits of n on D4-D7 with an enable pulse.
func (d *HD44780) writeNibble(n byte, data bool) error {
	b := n<<4 | d.flags(data)
	_, err := d.w.Write([]byte{b | pinEN, b &^ pinEN})
	return err
}

func (d *HD44780) flags(data bool) byte {
	var f byte
	if data {
		f |= pinRS
	}
	if d.backlight {
		f |= pinBacklight
	}
	// RW stays low: write only.
	return f &^ pinRW
}
