// Package keypad reads a 4x4 membrane keypad wired to GPIO pins as a
// row/column matrix.
package keypad

import (
	"github.com/cockroachdb/errors"
	"periph.io/x/conn/v3/gpio"

	"github.com/osa030/padbox/internal/app/keymap"
)

// OutPin drives one matrix row.
type OutPin interface {
	Out(l gpio.Level) error
}

// InPin reads one matrix column.
type InPin interface {
	In(pull gpio.Pull, edge gpio.Edge) error
	Read() gpio.Level
}

// Matrix scans rows by pulling one low at a time and reading the columns,
// which idle high through pull-ups.
type Matrix struct {
	rows   []OutPin
	cols   []InPin
	layout [][]rune
}

// NewMatrix creates a matrix. layout holds one string per row with one
// character per column.
func NewMatrix(rows []OutPin, cols []InPin, layout []string) (*Matrix, error) {
	if len(rows) == 0 || len(cols) == 0 {
		return nil, errors.New("keypad matrix needs at least one row and one column")
	}
	if len(layout) != len(rows) {
		return nil, errors.Newf("layout has %d rows, matrix has %d", len(layout), len(rows))
	}

	keys := make([][]rune, len(layout))
	for i, line := range layout {
		keys[i] = []rune(line)
		if len(keys[i]) != len(cols) {
			return nil, errors.Newf("layout row %d has %d keys, matrix has %d columns", i, len(keys[i]), len(cols))
		}
	}

	return &Matrix{rows: rows, cols: cols, layout: keys}, nil
}

// Setup configures the columns as pulled-up inputs and parks every row high.
func (m *Matrix) Setup() error {
	for i, c := range m.cols {
		if err := c.In(gpio.PullUp, gpio.NoEdge); err != nil {
			return errors.Wrapf(err, "failed to configure column %d", i)
		}
	}
	for i, r := range m.rows {
		if err := r.Out(gpio.High); err != nil {
			return errors.Wrapf(err, "failed to configure row %d", i)
		}
	}
	return nil
}

// Scan returns the first pressed key in row-major order.
func (m *Matrix) Scan() (keymap.Key, bool, error) {
	for r, row := range m.rows {
		if err := row.Out(gpio.Low); err != nil {
			return 0, false, errors.Wrapf(err, "failed to drive row %d", r)
		}

		pressed := -1
		for c, col := range m.cols {
			if col.Read() == gpio.Low {
				pressed = c
				break
			}
		}

		if err := row.Out(gpio.High); err != nil {
			return 0, false, errors.Wrapf(err, "failed to release row %d", r)
		}
		if pressed >= 0 {
			return keymap.Key(m.layout[r][pressed]), true, nil
		}
	}
	return 0, false, nil
}
