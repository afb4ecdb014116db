package keypad

import (
	"time"

	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/padbox/internal/app/keymap"
)

// Keypad polls a matrix and returns debounced key presses.
type Keypad struct {
	matrix    *Matrix
	debouncer *Debouncer
	interval  time.Duration
	sleep     func(time.Duration)
}

// New creates a keypad. interval bounds how long Poll blocks when idle.
func New(matrix *Matrix, debounce, interval time.Duration) *Keypad {
	return &Keypad{
		matrix:    matrix,
		debouncer: NewDebouncer(debounce),
		interval:  interval,
		sleep:     time.Sleep,
	}
}

// Poll scans the matrix once. When no new press is seen it waits one poll
// interval before returning.
func (k *Keypad) Poll() (keymap.Key, bool) {
	key, down, err := k.matrix.Scan()
	if err != nil {
		zlog.Warn().Msgf("keypad: scan failed: %v", err)
		down = false
	}

	if ev, ok := k.debouncer.Update(key, down); ok {
		zlog.Debug().Msgf("keypad: key pressed: %s", ev)
		return ev, true
	}

	k.sleep(k.interval)
	return 0, false
}
