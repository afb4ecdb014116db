// Package terminal provides a keyboard input source for bench use without
// keypad hardware.
package terminal

import (
	"io"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"
	"golang.org/x/term"

	"github.com/osa030/padbox/internal/app/keymap"
)

const (
	ctrlC = 0x03
	ctrlD = 0x04
)

// Terminal reads single key strokes from in. When fd refers to a terminal
// it is switched to raw mode so keys arrive without Enter.
type Terminal struct {
	in       io.Reader
	fd       int
	exitKey  keymap.Key
	interval time.Duration

	keys     chan keymap.Key
	stopCh   chan struct{}
	stopped  sync.Once
	oldState *term.State
}

// New creates a terminal input source. Ctrl-C, Ctrl-D and end of input
// are reported as exitKey.
func New(in io.Reader, fd int, exitKey keymap.Key, interval time.Duration) *Terminal {
	return &Terminal{
		in:       in,
		fd:       fd,
		exitKey:  exitKey,
		interval: interval,
		keys:     make(chan keymap.Key, 16),
		stopCh:   make(chan struct{}),
	}
}

// Start enters raw mode if possible and begins reading in a goroutine.
// Call Stop to restore the terminal.
func (t *Terminal) Start() error {
	if term.IsTerminal(t.fd) {
		oldState, err := term.MakeRaw(t.fd)
		if err != nil {
			return errors.Wrap(err, "failed to set raw mode")
		}
		t.oldState = oldState
	}

	go t.readLoop()
	return nil
}

// Raw reports whether the terminal is in raw mode.
func (t *Terminal) Raw() bool {
	return t.oldState != nil
}

func (t *Terminal) readLoop() {
	buf := make([]byte, 1)
	for {
		n, err := t.in.Read(buf)
		if n > 0 {
			if key, ok := t.translate(buf[0]); ok {
				t.push(key)
			}
		}
		if err != nil {
			if !errors.Is(err, io.EOF) {
				zlog.Warn().Msgf("terminal: read failed: %v", err)
			}
			t.push(t.exitKey)
			return
		}

		select {
		case <-t.stopCh:
			return
		default:
		}
	}
}

func (t *Terminal) push(key keymap.Key) {
	select {
	case t.keys <- key:
	case <-t.stopCh:
	default:
		zlog.Debug().Msgf("terminal: input buffer full, dropping key %s", key)
	}
}

// translate maps a raw byte to a key. Letters are upper-cased so keypad
// letters can be typed either way.
func (t *Terminal) translate(b byte) (keymap.Key, bool) {
	switch {
	case b == ctrlC || b == ctrlD:
		return t.exitKey, true
	case b >= 'a' && b <= 'z':
		return keymap.Key(b - 'a' + 'A'), true
	case b > ' ' && b < 0x7F:
		return keymap.Key(b), true
	default:
		return 0, false
	}
}

// Poll returns the next key, waiting at most one poll interval.
func (t *Terminal) Poll() (keymap.Key, bool) {
	select {
	case key := <-t.keys:
		return key, true
	default:
	}

	timer := time.NewTimer(t.interval)
	defer timer.Stop()

	select {
	case key := <-t.keys:
		return key, true
	case <-timer.C:
		return 0, false
	case <-t.stopCh:
		return 0, false
	}
}

// Stop ends reading and restores the terminal state.
func (t *Terminal) Stop() {
	t.stopped.Do(func() {
		close(t.stopCh)
	})
	if t.oldState != nil {
		_ = term.Restore(t.fd, t.oldState)
		t.oldState = nil
	}
}
