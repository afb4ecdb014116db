// Package playlist provides the Playlist domain entity.
package playlist

import (
	"github.com/cockroachdb/errors"

	"github.com/osa030/padbox/internal/domain/track"
)

// ErrEmpty is returned by index operations on a playlist without tracks.
var ErrEmpty = errors.New("no tracks available")

// Playlist is the ordered, read-only list of tracks built at startup.
type Playlist struct {
	Dir    string        // Source directory
	tracks []track.Track // Enumeration order
}

// New creates a playlist. The slice is copied so later mutation by the
// caller cannot reorder the playlist.
func New(dir string, tracks []track.Track) *Playlist {
	owned := make([]track.Track, len(tracks))
	copy(owned, tracks)
	return &Playlist{
		Dir:    dir,
		tracks: owned,
	}
}

// Len returns the number of tracks.
func (p *Playlist) Len() int {
	return len(p.tracks)
}

// IsEmpty returns true if the playlist has no tracks.
func (p *Playlist) IsEmpty() bool {
	return len(p.tracks) == 0
}

// Normalize maps any index, negative or past the end, onto [0, Len())
// with circular wraparound.
func (p *Playlist) Normalize(index int) (int, error) {
	n := len(p.tracks)
	if n == 0 {
		return 0, ErrEmpty
	}
	return ((index % n) + n) % n, nil
}

// At returns the track at the normalized position of index.
func (p *Playlist) At(index int) (int, track.Track, error) {
	i, err := p.Normalize(index)
	if err != nil {
		return 0, track.Track{}, err
	}
	return i, p.tracks[i], nil
}

// Tracks returns a copy of the tracks.
func (p *Playlist) Tracks() []track.Track {
	result := make([]track.Track, len(p.tracks))
	copy(result, p.tracks)
	return result
}

// Paths returns all track paths in playlist order.
func (p *Playlist) Paths() []string {
	paths := make([]string, len(p.tracks))
	for i, t := range p.tracks {
		paths[i] = t.Path
	}
	return paths
}
