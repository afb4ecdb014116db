package audio

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/flac"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/vorbis"
	"github.com/gopxl/beep/v2/wav"
)

const (
	extWAV  = ".wav"
	extMP3  = ".mp3"
	extFLAC = ".flac"
	extOGG  = ".ogg"
	extOGA  = ".oga"
)

// ErrUnsupportedFormat is returned for files with no matching decoder.
var ErrUnsupportedFormat = errors.New("unsupported audio format")

// trackState bundles the resources of one opened file.
type trackState struct {
	path     string
	file     *os.File
	streamer beep.StreamSeekCloser
	format   beep.Format
}

// Close releases the decoder and the file.
func (t *trackState) Close() {
	if t.streamer != nil {
		t.streamer.Close()
	}
	if t.file != nil {
		t.file.Close()
	}
}

// Supported reports whether path has an extension with a decoder.
func Supported(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case extWAV, extMP3, extFLAC, extOGG, extOGA:
		return true
	default:
		return false
	}
}

func openTrack(path string) (*trackState, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if !Supported(path) {
		return nil, errors.Wrapf(ErrUnsupportedFormat, "%q", ext)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open audio file")
	}

	var (
		streamer beep.StreamSeekCloser
		format   beep.Format
	)
	switch ext {
	case extWAV:
		streamer, format, err = wav.Decode(f)
	case extMP3:
		streamer, format, err = mp3.Decode(f)
	case extFLAC:
		streamer, format, err = flac.Decode(f)
	case extOGG, extOGA:
		streamer, format, err = vorbis.Decode(f)
	}
	if err != nil {
		f.Close()
		return nil, errors.Wrapf(err, "failed to decode %s", filepath.Base(path))
	}

	return &trackState{
		path:     path,
		file:     f,
		streamer: streamer,
		format:   format,
	}, nil
}
