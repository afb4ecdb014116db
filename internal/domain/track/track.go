// Package track provides the Track domain entity.
package track

import (
	"path/filepath"
	"strings"
)

// Track represents a single playable audio file on disk.
// Tag fields are empty when the file carries no metadata or tags were not read.
type Track struct {
	Path     string // Absolute or playlist-relative file path
	FileName string // Base name including extension
	Title    string // Title tag
	Artist   string // Artist tag
	Album    string // Album tag
}

// New creates a track for the given path with no tag metadata.
func New(path string) Track {
	return Track{
		Path:     path,
		FileName: filepath.Base(path),
	}
}

// DisplayName returns the text shown on the title line.
// The title tag wins over the file name.
func (t *Track) DisplayName() string {
	if title := strings.TrimSpace(t.Title); title != "" {
		return title
	}
	return t.FileName
}

// Ext returns the lower-cased file extension including the dot.
func (t *Track) Ext() string {
	return strings.ToLower(filepath.Ext(t.FileName))
}
