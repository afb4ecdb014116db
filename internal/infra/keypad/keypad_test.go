package keypad

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/gpio"

	"github.com/osa030/padbox/internal/app/keymap"
)

// board simulates the wiring: a column reads low while its pressed row is
// driven low.
type board struct {
	rowLevel []gpio.Level
	pressed  map[[2]int]bool
	pull     []gpio.Pull
	failRow  int
}

func newBoard(rows, cols int) *board {
	b := &board{
		rowLevel: make([]gpio.Level, rows),
		pressed:  make(map[[2]int]bool),
		pull:     make([]gpio.Pull, cols),
		failRow:  -1,
	}
	for i := range b.rowLevel {
		b.rowLevel[i] = gpio.High
	}
	return b
}

type rowPin struct {
	b *board
	i int
}

func (p rowPin) Out(l gpio.Level) error {
	if p.b.failRow == p.i {
		return errors.New("pin busy")
	}
	p.b.rowLevel[p.i] = l
	return nil
}

type colPin struct {
	b *board
	i int
}

func (p colPin) In(pull gpio.Pull, edge gpio.Edge) error {
	p.b.pull[p.i] = pull
	return nil
}

func (p colPin) Read() gpio.Level {
	for r, l := range p.b.rowLevel {
		if l == gpio.Low && p.b.pressed[[2]int{r, p.i}] {
			return gpio.Low
		}
	}
	return gpio.High
}

func (b *board) matrix(t *testing.T, layout []string) *Matrix {
	t.Helper()
	rows := make([]OutPin, len(b.rowLevel))
	for i := range rows {
		rows[i] = rowPin{b: b, i: i}
	}
	cols := make([]InPin, len(b.pull))
	for i := range cols {
		cols[i] = colPin{b: b, i: i}
	}
	m, err := NewMatrix(rows, cols, layout)
	require.NoError(t, err)
	require.NoError(t, m.Setup())
	return m
}

var defaultLayout = []string{"123A", "456B", "789C", "*0#D"}

func TestMatrix_Scan(t *testing.T) {
	tests := []struct {
		name     string
		pressed  [][2]int
		expected keymap.Key
		down     bool
	}{
		{name: "idle", down: false},
		{name: "key 1", pressed: [][2]int{{0, 0}}, expected: '1', down: true},
		{name: "key 6", pressed: [][2]int{{1, 2}}, expected: '6', down: true},
		{name: "key A", pressed: [][2]int{{0, 3}}, expected: 'A', down: true},
		{name: "key D", pressed: [][2]int{{3, 3}}, expected: 'D', down: true},
		{name: "first in row-major order wins", pressed: [][2]int{{2, 0}, {1, 1}}, expected: '5', down: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newBoard(4, 4)
			for _, p := range tt.pressed {
				b.pressed[p] = true
			}
			m := b.matrix(t, defaultLayout)

			key, down, err := m.Scan()
			require.NoError(t, err)
			assert.Equal(t, tt.down, down)
			assert.Equal(t, tt.expected, key)

			for _, l := range b.rowLevel {
				assert.Equal(t, gpio.High, l, "rows are released after a scan")
			}
		})
	}
}

func TestMatrix_Setup(t *testing.T) {
	b := newBoard(4, 4)
	b.matrix(t, defaultLayout)
	for _, p := range b.pull {
		assert.Equal(t, gpio.PullUp, p)
	}
}

func TestMatrix_ScanError(t *testing.T) {
	b := newBoard(4, 4)
	m := b.matrix(t, defaultLayout)
	b.failRow = 2

	_, _, err := m.Scan()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "row 2")
}

func TestNewMatrix_LayoutMismatch(t *testing.T) {
	b := newBoard(4, 4)
	rows := []OutPin{rowPin{b, 0}, rowPin{b, 1}, rowPin{b, 2}, rowPin{b, 3}}
	cols := []InPin{colPin{b, 0}, colPin{b, 1}, colPin{b, 2}, colPin{b, 3}}

	_, err := NewMatrix(rows, cols, []string{"123A", "456B"})
	assert.Error(t, err)

	_, err = NewMatrix(rows, cols, []string{"123", "456B", "789C", "*0#D"})
	assert.Error(t, err)

	_, err = NewMatrix(nil, cols, nil)
	assert.Error(t, err)
}

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time { return c.t }

func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func TestDebouncer(t *testing.T) {
	type step struct {
		after time.Duration
		key   keymap.Key
		down  bool
		fire  bool
	}

	tests := []struct {
		name  string
		steps []step
	}{
		{
			name: "press fires once while held",
			steps: []step{
				{after: 0, key: '5', down: true, fire: true},
				{after: 10 * time.Millisecond, key: '5', down: true},
				{after: 500 * time.Millisecond, key: '5', down: true},
				{after: 10 * time.Millisecond, down: false},
			},
		},
		{
			name: "contact bounce is dropped",
			steps: []step{
				{after: 0, key: '3', down: true, fire: true},
				{after: 5 * time.Millisecond, down: false},
				{after: 5 * time.Millisecond, key: '3', down: true},
				{after: 100 * time.Millisecond, down: false},
				{after: 10 * time.Millisecond, key: '3', down: true, fire: true},
			},
		},
		{
			name: "switching keys while held fires after the interval",
			steps: []step{
				{after: 0, key: '1', down: true, fire: true},
				{after: 60 * time.Millisecond, key: '3', down: true, fire: true},
			},
		},
		{
			name: "idle never fires",
			steps: []step{
				{after: 0, down: false},
				{after: time.Second, down: false},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clock := &fakeClock{t: time.Unix(1000, 0)}
			d := NewDebouncer(50 * time.Millisecond)
			d.now = clock.now

			for i, s := range tt.steps {
				clock.advance(s.after)
				key, ok := d.Update(s.key, s.down)
				assert.Equal(t, s.fire, ok, "step %d", i)
				if s.fire {
					assert.Equal(t, s.key, key, "step %d", i)
				}
			}
		})
	}
}

func TestKeypad_Poll(t *testing.T) {
	b := newBoard(4, 4)
	m := b.matrix(t, defaultLayout)

	var slept []time.Duration
	k := New(m, 0, 10*time.Millisecond)
	k.sleep = func(d time.Duration) { slept = append(slept, d) }

	_, ok := k.Poll()
	assert.False(t, ok)
	assert.Equal(t, []time.Duration{10 * time.Millisecond}, slept)

	b.pressed[[2]int{0, 3}] = true
	key, ok := k.Poll()
	require.True(t, ok)
	assert.Equal(t, keymap.Key('A'), key)
	assert.Len(t, slept, 1, "a press returns without waiting")

	_, ok = k.Poll()
	assert.False(t, ok, "holding does not repeat")
}

func TestKeypad_PollScanError(t *testing.T) {
	b := newBoard(4, 4)
	m := b.matrix(t, defaultLayout)
	b.failRow = 0

	k := New(m, 0, time.Millisecond)
	k.sleep = func(time.Duration) {}

	assert.NotPanics(t, func() {
		_, ok := k.Poll()
		assert.False(t, ok)
	})
}

func TestDecodeSettings(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		s, err := DecodeSettings(nil)
		require.NoError(t, err)
		assert.Equal(t, []string{"GPIO18", "GPIO23", "GPIO24", "GPIO25"}, s.Rows)
		assert.Equal(t, []string{"GPIO10", "GPIO22", "GPIO27", "GPIO17"}, s.Cols)
		assert.Equal(t, defaultLayout, s.Layout)
	})

	t.Run("overrides", func(t *testing.T) {
		s, err := DecodeSettings(map[string]any{
			"rows":   []any{"GPIO5", "GPIO6"},
			"cols":   []any{"GPIO13", "GPIO19"},
			"layout": []any{"12", "34"},
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"GPIO5", "GPIO6"}, s.Rows)
		assert.Equal(t, []string{"12", "34"}, s.Layout)
	})

	t.Run("empty pin name", func(t *testing.T) {
		_, err := DecodeSettings(map[string]any{"rows": []any{""}})
		assert.Error(t, err)
	})
}
