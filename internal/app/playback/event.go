package playback

import (
	"time"

	"github.com/osa030/padbox/internal/domain/track"
)

// EventType represents a playback event type.
type EventType int

const (
	EventTrackStarted    EventType = iota // Track loaded and playback started
	EventTrackLoadFailed                  // Track could not be loaded
	EventStateChanged                     // Pause/resume
	EventSeeked                           // Position changed by a seek
	EventNoTracks                         // Track change requested on an empty playlist
)

// String returns the string representation of the event type.
func (e EventType) String() string {
	switch e {
	case EventTrackStarted:
		return "track_started"
	case EventTrackLoadFailed:
		return "track_load_failed"
	case EventStateChanged:
		return "state_changed"
	case EventSeeked:
		return "seeked"
	case EventNoTracks:
		return "no_tracks"
	default:
		return "unknown"
	}
}

// Event represents a playback event.
type Event struct {
	Type     EventType
	Track    *track.Track  // Track concerned (nil for some events)
	Index    int           // Normalized playlist index of Track
	State    State         // Transport state after the event
	Position time.Duration // Playback position after the event
	Err      error         // Set for EventTrackLoadFailed
}

// Notifier receives playback events.
type Notifier interface {
	Publish(Event)
}

type nopNotifier struct{}

func (nopNotifier) Publish(Event) {}
