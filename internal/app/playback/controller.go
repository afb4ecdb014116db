package playback

import (
	"fmt"
	"time"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/padbox/internal/domain/playlist"
	"github.com/osa030/padbox/internal/domain/track"
)

// Errors
var (
	ErrNoTracks = errors.New("no tracks available")
	ErrNoTrack  = errors.New("no track loaded")
)

// Engine is the audio backend driven by the controller.
type Engine interface {
	Load(path string) error
	Play()
	Pause()
	Status() State
	Position() time.Duration
	Duration() time.Duration
	SetPosition(d time.Duration)
}

// Display is the two-line character display.
type Display interface {
	ShowTitle(text string)
	ShowStatus(text string)
}

// Messages holds the fixed status texts.
type Messages struct {
	Paused   string
	Stopped  string
	NoTracks string
}

// DefaultMessages returns the stock status texts.
func DefaultMessages() Messages {
	return Messages{
		Paused:   "PAUSED",
		Stopped:  "STOPPED",
		NoTracks: "NO TRACKS",
	}
}

func (m Messages) withDefaults() Messages {
	d := DefaultMessages()
	if m.Paused == "" {
		m.Paused = d.Paused
	}
	if m.Stopped == "" {
		m.Stopped = d.Stopped
	}
	if m.NoTracks == "" {
		m.NoTracks = d.NoTracks
	}
	return m
}

// Config holds controller configuration.
type Config struct {
	Messages Messages
	Notifier Notifier // Optional
}

// Controller owns the current index and pause flag and translates operations
// into engine commands and display updates. It is not safe for concurrent use;
// the session loop is its only caller.
type Controller struct {
	playlist *playlist.Playlist
	engine   Engine
	display  Display
	notifier Notifier
	messages Messages

	index   int          // Unbounded; normalized on use
	paused  bool         // Source of truth for pause/resume
	current *track.Track // Last successfully loaded track
}

// NewController creates a new playlist controller.
func NewController(pl *playlist.Playlist, engine Engine, display Display, config Config) *Controller {
	notifier := config.Notifier
	if notifier == nil {
		notifier = nopNotifier{}
	}
	return &Controller{
		playlist: pl,
		engine:   engine,
		display:  display,
		notifier: notifier,
		messages: config.Messages.withDefaults(),
	}
}

// Advance moves by direction (-1 or +1), loads the track found there and
// starts it. A failed load restores the previous index and leaves the
// engine and the pause flag untouched.
func (c *Controller) Advance(direction int) error {
	if c.playlist.IsEmpty() {
		c.display.ShowStatus(c.messages.NoTracks)
		c.notifier.Publish(Event{Type: EventNoTracks, State: c.engine.Status()})
		return ErrNoTracks
	}

	previous := c.index
	c.index += direction

	i, t, err := c.playlist.At(c.index)
	if err != nil {
		c.index = previous
		return errors.Wrap(err, "failed to resolve track")
	}

	if err := c.engine.Load(t.Path); err != nil {
		c.index = previous
		zlog.Warn().Err(err).Msgf("playback: failed to load track: index=%d path=%s", i, t.Path)
		c.notifier.Publish(Event{
			Type:  EventTrackLoadFailed,
			Track: &t,
			Index: i,
			State: c.engine.Status(),
			Err:   err,
		})
		return errors.Wrapf(err, "failed to load track %s", t.Path)
	}

	c.current = &t
	c.display.ShowTitle(t.DisplayName())
	c.engine.Play()
	c.paused = false

	zlog.Debug().Msgf("playback: track started: index=%d path=%s", i, t.Path)
	c.notifier.Publish(Event{
		Type:  EventTrackStarted,
		Track: c.current,
		Index: i,
		State: c.engine.Status(),
	})
	return nil
}

// Next advances to the following track.
func (c *Controller) Next() error {
	return c.Advance(1)
}

// Previous goes back one track.
func (c *Controller) Previous() error {
	return c.Advance(-1)
}

// TogglePause resumes if paused, pauses otherwise. A track that played to
// its end counts as paused, so the press restarts it.
func (c *Controller) TogglePause() error {
	if c.current == nil {
		return ErrNoTrack
	}

	if c.paused || c.engine.Status() == StateStopped {
		c.engine.Play()
		c.paused = false
	} else {
		c.engine.Pause()
		c.paused = true
	}

	c.notifier.Publish(Event{
		Type:     EventStateChanged,
		Track:    c.current,
		Index:    c.currentIndex(),
		State:    c.engine.Status(),
		Position: c.engine.Position(),
	})
	return nil
}

// Seek moves the playback position by delta. Bounds are the engine's concern.
func (c *Controller) Seek(delta time.Duration) error {
	if c.current == nil {
		return ErrNoTrack
	}

	c.engine.SetPosition(c.engine.Position() + delta)
	position := c.engine.Position()

	zlog.Debug().Msgf("playback: seeked: delta=%v position=%v", delta, position)
	c.notifier.Publish(Event{
		Type:     EventSeeked,
		Track:    c.current,
		Index:    c.currentIndex(),
		State:    c.engine.Status(),
		Position: position,
	})
	return nil
}

// Tick redraws the status line from the engine's transport status.
// It never changes playback state; a track that ran out stays stopped.
func (c *Controller) Tick() {
	c.display.ShowStatus(c.StatusText())
}

// StatusText renders the status line for the current engine state.
func (c *Controller) StatusText() string {
	switch c.engine.Status() {
	case StatePaused:
		return c.messages.Paused
	case StatePlaying:
		return FormatProgress(c.engine.Position(), c.engine.Duration())
	default:
		if c.playlist.IsEmpty() {
			return c.messages.NoTracks
		}
		return c.messages.Stopped
	}
}

// Index returns the raw, unnormalized index.
func (c *Controller) Index() int {
	return c.index
}

// Paused returns the pause flag.
func (c *Controller) Paused() bool {
	return c.paused
}

// Current returns the loaded track.
func (c *Controller) Current() (*track.Track, bool) {
	if c.current == nil {
		return nil, false
	}
	return c.current, true
}

func (c *Controller) currentIndex() int {
	i, err := c.playlist.Normalize(c.index)
	if err != nil {
		return 0
	}
	return i
}

// FormatProgress renders position and duration as "M:SS/M:SS".
func FormatProgress(position, duration time.Duration) string {
	return formatClock(position) + "/" + formatClock(duration)
}

func formatClock(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int(d / time.Second)
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}
