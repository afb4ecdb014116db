package keypad

import (
	"time"

	"github.com/osa030/padbox/internal/app/keymap"
)

// Debouncer turns raw scan results into press events. A key fires once
// when it goes down; holding it does not repeat, and presses closer than
// the interval to the previous accepted one are dropped as contact bounce.
type Debouncer struct {
	interval time.Duration
	now      func() time.Time

	held     bool
	heldKey  keymap.Key
	accepted time.Time
	seen     bool
}

// NewDebouncer creates a debouncer with the given minimum spacing.
func NewDebouncer(interval time.Duration) *Debouncer {
	return &Debouncer{interval: interval, now: time.Now}
}

// Update feeds one scan result and reports a press event, if any.
func (d *Debouncer) Update(key keymap.Key, down bool) (keymap.Key, bool) {
	if !down {
		d.held = false
		return 0, false
	}
	if d.held && d.heldKey == key {
		return 0, false
	}

	d.held = true
	d.heldKey = key

	now := d.now()
	if d.seen && now.Sub(d.accepted) < d.interval {
		return 0, false
	}
	d.accepted = now
	d.seen = true
	return key, true
}
