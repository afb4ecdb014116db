// Package keymap maps physical keys to player actions.
package keymap

import (
	"sort"
	"unicode/utf8"

	"github.com/cockroachdb/errors"
)

// Key is a single logical key reported by an input source.
type Key rune

// String returns the key as a one-character string.
func (k Key) String() string {
	return string(rune(k))
}

// Action is a player operation bound to a key.
type Action int

const (
	ActionNone Action = iota
	ActionPrevTrack
	ActionNextTrack
	ActionSeekBack
	ActionTogglePause
	ActionSeekForward
	ActionExit
)

// String returns the config name of the action.
func (a Action) String() string {
	switch a {
	case ActionPrevTrack:
		return "prev_track"
	case ActionNextTrack:
		return "next_track"
	case ActionSeekBack:
		return "seek_back"
	case ActionTogglePause:
		return "toggle_pause"
	case ActionSeekForward:
		return "seek_forward"
	case ActionExit:
		return "exit"
	default:
		return "none"
	}
}

// Actions lists every bindable action.
func Actions() []Action {
	return []Action{
		ActionPrevTrack,
		ActionNextTrack,
		ActionSeekBack,
		ActionTogglePause,
		ActionSeekForward,
		ActionExit,
	}
}

// Bindings maps keys to actions.
type Bindings map[Key]Action

// Default returns the stock keypad layout:
// 1 previous, 3 next, 4 rewind, 5 pause, 6 forward, A exit.
func Default() Bindings {
	return Bindings{
		'1': ActionPrevTrack,
		'3': ActionNextTrack,
		'4': ActionSeekBack,
		'5': ActionTogglePause,
		'6': ActionSeekForward,
		'A': ActionExit,
	}
}

// FromStrings builds bindings from action name → key string.
// Each key must be exactly one character and bound at most once.
func FromStrings(keys map[Action]string) (Bindings, error) {
	b := make(Bindings, len(keys))

	actions := make([]Action, 0, len(keys))
	for a := range keys {
		actions = append(actions, a)
	}
	sort.Slice(actions, func(i, j int) bool { return actions[i] < actions[j] })

	for _, a := range actions {
		s := keys[a]
		if s == "" {
			continue
		}
		if utf8.RuneCountInString(s) != 1 {
			return nil, errors.Newf("key for %s must be a single character, got %q", a, s)
		}
		r, _ := utf8.DecodeRuneInString(s)
		k := Key(r)
		if prev, exists := b[k]; exists {
			return nil, errors.Newf("key %q bound to both %s and %s", s, prev, a)
		}
		b[k] = a
	}
	return b, nil
}

// Lookup returns the action bound to k.
func (b Bindings) Lookup(k Key) (Action, bool) {
	a, ok := b[k]
	return a, ok
}

// KeyFor returns the key bound to a, if any.
func (b Bindings) KeyFor(a Action) (Key, bool) {
	for k, bound := range b {
		if bound == a {
			return k, true
		}
	}
	return 0, false
}
