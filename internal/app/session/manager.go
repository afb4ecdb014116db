// Package session runs the key-driven control loop.
package session

import (
	"context"
	"time"

	"github.com/google/uuid"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/padbox/internal/app/keymap"
	"github.com/osa030/padbox/internal/app/session/state"
)

// Input is a source of debounced key presses. Poll blocks for at most one
// poll interval.
type Input interface {
	Poll() (keymap.Key, bool)
}

// Player is the set of operations keys are dispatched to.
type Player interface {
	Previous() error
	Next() error
	TogglePause() error
	Seek(delta time.Duration) error
	Tick()
}

// Display shows the splash text before the first key.
type Display interface {
	ShowTitle(text string)
}

// Config holds session configuration.
type Config struct {
	Bindings keymap.Bindings
	SeekStep time.Duration
	Splash   string
}

// Manager owns the control loop: poll, dispatch, tick.
type Manager struct {
	input   Input
	player  Player
	display Display

	bindings keymap.Bindings
	splash   string
	actions  map[keymap.Action]func() error

	stateMgr *state.Manager
	now      func() time.Time
}

// NewManager creates a new session manager.
func NewManager(input Input, player Player, display Display, cfg Config) *Manager {
	bindings := cfg.Bindings
	if bindings == nil {
		bindings = keymap.Default()
	}

	m := &Manager{
		input:    input,
		player:   player,
		display:  display,
		bindings: bindings,
		splash:   cfg.Splash,
		stateMgr: state.New(uuid.New().String()),
		now:      time.Now,
	}

	step := cfg.SeekStep
	m.actions = map[keymap.Action]func() error{
		keymap.ActionPrevTrack:   player.Previous,
		keymap.ActionNextTrack:   player.Next,
		keymap.ActionSeekBack:    func() error { return player.Seek(-step) },
		keymap.ActionTogglePause: player.TogglePause,
		keymap.ActionSeekForward: func() error { return player.Seek(step) },
	}

	return m
}

// SessionID returns the ID carried in this session's log lines.
func (m *Manager) SessionID() string {
	return m.stateMgr.GetSessionID()
}

// Info returns a snapshot of the session state.
func (m *Manager) Info() state.Info {
	return m.stateMgr.Snapshot()
}

// Dispatch runs the operation bound to key. It reports exit for the exit
// action; unbound keys do nothing.
func (m *Manager) Dispatch(key keymap.Key) (exit bool, err error) {
	action, ok := m.bindings.Lookup(key)
	if !ok {
		zlog.Debug().Msgf("unbound key ignored: key=%s session_id=%s", key, m.SessionID())
		return false, nil
	}

	m.stateMgr.RecordKey(key, m.now())
	zlog.Debug().Msgf("key dispatched: key=%s action=%s session_id=%s", key, action, m.SessionID())

	if action == keymap.ActionExit {
		return true, nil
	}
	op, ok := m.actions[action]
	if !ok {
		return false, nil
	}
	return false, op()
}

// Run shows the splash text and loops until the exit key is pressed or ctx
// is cancelled. Operation errors are logged and the loop continues.
func (m *Manager) Run(ctx context.Context) error {
	sessionID := m.SessionID()
	m.stateMgr.Start(m.now())
	zlog.Info().Msgf("session started: session_id=%s", sessionID)

	if m.splash != "" {
		m.display.ShowTitle(m.splash)
	}

	for {
		select {
		case <-ctx.Done():
			m.stateMgr.Terminate(m.now())
			zlog.Info().Msgf("session cancelled: session_id=%s uptime=%v", sessionID, m.stateMgr.Uptime(m.now()))
			return ctx.Err()
		default:
		}

		if key, ok := m.input.Poll(); ok {
			exit, err := m.Dispatch(key)
			if err != nil {
				zlog.Warn().Msgf("operation failed: key=%s err=%v session_id=%s", key, err, sessionID)
			}
			if exit {
				m.stateMgr.Terminate(m.now())
				zlog.Info().Msgf("exit key pressed: session_id=%s uptime=%v", sessionID, m.stateMgr.Uptime(m.now()))
				return nil
			}
		}

		m.player.Tick()
	}
}
