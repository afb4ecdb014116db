// Package playback provides the playlist controller driven by key events.
package playback

// State represents the transport status reported by the audio engine.
type State int

const (
	StateStopped State = iota // Nothing loaded, or the track reached its end
	StatePlaying              // Track is playing
	StatePaused               // Track is paused
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateStopped:
		return "stopped"
	case StatePlaying:
		return "playing"
	case StatePaused:
		return "paused"
	default:
		return "unknown"
	}
}
