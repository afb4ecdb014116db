package lcd

import (
	"fmt"
	"io"
	"strings"

	"github.com/cockroachdb/errors"
)

// Console renders the display as a framed text line on w. It implements
// Screen so Display's buffering and fitting apply unchanged.
type Console struct {
	w    io.Writer
	rows [][]rune
	col  int
	row  int
}

// NewConsole creates a console screen of rows × cols.
func NewConsole(w io.Writer, rows, cols int) *Console {
	c := &Console{
		w:    w,
		rows: make([][]rune, rows),
	}
	for i := range c.rows {
		c.rows[i] = []rune(strings.Repeat(" ", cols))
	}
	return c
}

func (c *Console) SetCursor(col, row int) error {
	if row < 0 || row >= len(c.rows) || col < 0 || col >= len(c.rows[row]) {
		return errors.Newf("cursor %d,%d out of range", col, row)
	}
	c.col, c.row = col, row
	return nil
}

func (c *Console) Print(text string) error {
	line := c.rows[c.row]
	for _, r := range text {
		if c.col >= len(line) {
			break
		}
		line[c.col] = r
		c.col++
	}
	return c.render()
}

func (c *Console) Clear() error {
	for _, line := range c.rows {
		for i := range line {
			line[i] = ' '
		}
	}
	c.col, c.row = 0, 0
	return c.render()
}

func (c *Console) render() error {
	parts := make([]string, len(c.rows))
	for i, line := range c.rows {
		parts[i] = string(line)
	}
	_, err := fmt.Fprintf(c.w, "\r[%s]\r\n", strings.Join(parts, "|"))
	return err
}
