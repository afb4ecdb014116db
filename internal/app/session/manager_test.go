package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osa030/padbox/internal/app/keymap"
	"github.com/osa030/padbox/internal/app/session/state"
)

// scriptedInput returns one scripted poll result per call, then idles.
type scriptedInput struct {
	keys   []keymap.Key
	polls  int
	onIdle func()
}

func (s *scriptedInput) Poll() (keymap.Key, bool) {
	s.polls++
	if len(s.keys) == 0 {
		if s.onIdle != nil {
			s.onIdle()
		}
		return 0, false
	}
	k := s.keys[0]
	s.keys = s.keys[1:]
	if k == 0 {
		return 0, false
	}
	return k, true
}

type recordingPlayer struct {
	calls []string
	seeks []time.Duration
	ticks int
	err   error
}

func (p *recordingPlayer) Previous() error {
	p.calls = append(p.calls, "previous")
	return p.err
}

func (p *recordingPlayer) Next() error {
	p.calls = append(p.calls, "next")
	return p.err
}

func (p *recordingPlayer) TogglePause() error {
	p.calls = append(p.calls, "toggle")
	return p.err
}

func (p *recordingPlayer) Seek(delta time.Duration) error {
	p.calls = append(p.calls, "seek")
	p.seeks = append(p.seeks, delta)
	return p.err
}

func (p *recordingPlayer) Tick() { p.ticks++ }

type titleDisplay struct {
	titles []string
}

func (d *titleDisplay) ShowTitle(text string) { d.titles = append(d.titles, text) }

func newTestManager(input Input, player Player, display Display) *Manager {
	return NewManager(input, player, display, Config{
		Bindings: keymap.Default(),
		SeekStep: 10 * time.Second,
		Splash:   "PROGRAM INIT",
	})
}

func TestManager_Dispatch(t *testing.T) {
	tests := []struct {
		name     string
		key      keymap.Key
		expected []string
		seeks    []time.Duration
		exit     bool
	}{
		{name: "previous", key: '1', expected: []string{"previous"}},
		{name: "next", key: '3', expected: []string{"next"}},
		{name: "rewind", key: '4', expected: []string{"seek"}, seeks: []time.Duration{-10 * time.Second}},
		{name: "pause", key: '5', expected: []string{"toggle"}},
		{name: "forward", key: '6', expected: []string{"seek"}, seeks: []time.Duration{10 * time.Second}},
		{name: "exit", key: 'A', exit: true},
		{name: "unbound", key: '9'},
		{name: "unbound letter", key: 'D'},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			player := &recordingPlayer{}
			m := newTestManager(&scriptedInput{}, player, &titleDisplay{})

			exit, err := m.Dispatch(tt.key)
			require.NoError(t, err)
			assert.Equal(t, tt.exit, exit)
			assert.Equal(t, tt.expected, player.calls)
			assert.Equal(t, tt.seeks, player.seeks)
		})
	}
}

func TestManager_DispatchReturnsOperationError(t *testing.T) {
	player := &recordingPlayer{err: errors.New("boom")}
	m := newTestManager(&scriptedInput{}, player, &titleDisplay{})

	exit, err := m.Dispatch('3')
	assert.False(t, exit)
	assert.EqualError(t, err, "boom")
}

func TestManager_CustomBindings(t *testing.T) {
	bindings, err := keymap.FromStrings(map[keymap.Action]string{
		keymap.ActionNextTrack: "#",
		keymap.ActionExit:      "D",
	})
	require.NoError(t, err)

	player := &recordingPlayer{}
	m := NewManager(&scriptedInput{}, player, &titleDisplay{}, Config{Bindings: bindings})

	_, err = m.Dispatch('3')
	require.NoError(t, err)
	assert.Empty(t, player.calls)

	_, err = m.Dispatch('#')
	require.NoError(t, err)
	assert.Equal(t, []string{"next"}, player.calls)

	exit, err := m.Dispatch('D')
	require.NoError(t, err)
	assert.True(t, exit)
}

func TestManager_RunUntilExit(t *testing.T) {
	input := &scriptedInput{keys: []keymap.Key{0, '3', 0, '5', '7', '5', 'A', '3'}}
	player := &recordingPlayer{}
	display := &titleDisplay{}
	m := newTestManager(input, player, display)

	err := m.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"PROGRAM INIT"}, display.titles)
	assert.Equal(t, []string{"next", "toggle", "toggle"}, player.calls)
	assert.Equal(t, 6, player.ticks, "one tick per iteration before exit")
	assert.Equal(t, 7, input.polls)

	info := m.Info()
	assert.Equal(t, state.PhaseTerminated, info.Phase)
	assert.Equal(t, 4, info.KeyCount)
	assert.NotEmpty(t, info.SessionID)
}

func TestManager_RunContinuesAfterErrors(t *testing.T) {
	input := &scriptedInput{keys: []keymap.Key{'3', '3', 'A'}}
	player := &recordingPlayer{err: errors.New("load failed")}
	m := newTestManager(input, player, &titleDisplay{})

	require.NoError(t, m.Run(context.Background()))
	assert.Equal(t, []string{"next", "next"}, player.calls)
}

func TestManager_RunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	input := &scriptedInput{}
	input.onIdle = func() {
		if input.polls == 3 {
			cancel()
		}
	}
	player := &recordingPlayer{}
	m := newTestManager(input, player, &titleDisplay{})

	err := m.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 3, player.ticks)
	assert.Equal(t, state.PhaseTerminated, m.Info().Phase)
}

func TestManager_SessionIDsDiffer(t *testing.T) {
	a := newTestManager(&scriptedInput{}, &recordingPlayer{}, &titleDisplay{})
	b := newTestManager(&scriptedInput{}, &recordingPlayer{}, &titleDisplay{})
	assert.NotEqual(t, a.SessionID(), b.SessionID())
}
