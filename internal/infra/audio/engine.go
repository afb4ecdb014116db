// Package audio decodes local audio files with beep and exposes transport
// controls for the playback controller.
package audio

import (
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/padbox/internal/app/playback"
)

// Engine holds at most one track and streams it at a fixed output rate.
// Control methods are called from the session loop while Stream runs on
// the audio output goroutine; both sides share mu.
type Engine struct {
	mu         sync.Mutex
	sampleRate beep.SampleRate
	quality    int

	current *trackState
	out     beep.Streamer // current.streamer, resampled to sampleRate if needed
	status  playback.State
}

// NewEngine creates an engine producing samples at sampleRate. quality is
// the resampling quality used for files with a different rate.
func NewEngine(sampleRate, quality int) *Engine {
	return &Engine{
		sampleRate: beep.SampleRate(sampleRate),
		quality:    quality,
		status:     playback.StateStopped,
	}
}

// SampleRate returns the output sample rate.
func (e *Engine) SampleRate() beep.SampleRate {
	return e.sampleRate
}

// Load opens path and makes it the current track, stopped at the start.
// When decoding fails the previous track stays loaded.
func (e *Engine) Load(path string) error {
	t, err := openTrack(path)
	if err != nil {
		return err
	}

	e.mu.Lock()
	old := e.current
	e.current = t
	e.out = e.outputFor(t)
	e.status = playback.StateStopped
	e.mu.Unlock()

	if old != nil {
		old.Close()
	}

	zlog.Debug().Msgf("audio: loaded %s: rate=%d channels=%d length=%v",
		path, t.format.SampleRate, t.format.NumChannels, t.format.SampleRate.D(t.streamer.Len()))
	return nil
}

// Play starts or resumes playback. A track that played to its end starts
// over.
func (e *Engine) Play() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.current == nil {
		return
	}
	s := e.current.streamer
	if e.status == playback.StateStopped && s.Position() >= s.Len() {
		if err := s.Seek(0); err != nil {
			zlog.Warn().Msgf("audio: failed to rewind: %v", err)
		}
		e.out = e.outputFor(e.current)
	}
	e.status = playback.StatePlaying
}

// Pause halts output, keeping the position.
func (e *Engine) Pause() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.status == playback.StatePlaying {
		e.status = playback.StatePaused
	}
}

// Status returns the transport status.
func (e *Engine) Status() playback.State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.status
}

// Position returns the playback position of the current track.
func (e *Engine) Position() time.Duration {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.current == nil {
		return 0
	}
	return e.current.format.SampleRate.D(e.current.streamer.Position())
}

// Duration returns the length of the current track.
func (e *Engine) Duration() time.Duration {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.current == nil {
		return 0
	}
	return e.current.format.SampleRate.D(e.current.streamer.Len())
}

// SetPosition seeks within the current track, clamped to [0, Duration].
func (e *Engine) SetPosition(d time.Duration) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.current == nil {
		return
	}
	s := e.current.streamer
	n := e.current.format.SampleRate.N(d)
	if n < 0 {
		n = 0
	}
	if n > s.Len() {
		n = s.Len()
	}
	if err := s.Seek(n); err != nil {
		zlog.Warn().Msgf("audio: seek to %v failed: %v", d, err)
	}
	e.out = e.outputFor(e.current)
}

// outputFor returns the streamer feeding the device for t. A resampler
// keeps its own end-of-stream state, so it is rebuilt after every seek.
func (e *Engine) outputFor(t *trackState) beep.Streamer {
	if t.format.SampleRate == e.sampleRate {
		return t.streamer
	}
	return beep.Resample(e.quality, t.format.SampleRate, e.sampleRate, t.streamer)
}

// Stream fills samples with audio from the current track, or silence when
// not playing. It never ends, so the output device keeps running between
// tracks. Reaching the end of a track switches the status to stopped.
func (e *Engine) Stream(samples [][2]float64) (int, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	n := 0
	if e.status == playback.StatePlaying && e.out != nil {
		var ok bool
		n, ok = e.out.Stream(samples)
		if !ok || n < len(samples) {
			if err := e.current.streamer.Err(); err != nil {
				zlog.Warn().Msgf("audio: decoder error: %v", err)
			}
			e.status = playback.StateStopped
			zlog.Debug().Msgf("audio: end of track: %s", e.current.path)
		}
	}

	for i := n; i < len(samples); i++ {
		samples[i] = [2]float64{}
	}
	return len(samples), true
}

// Err implements beep.Streamer.
func (e *Engine) Err() error {
	return nil
}

// Close releases the current track.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.current != nil {
		e.current.Close()
		e.current = nil
		e.out = nil
	}
	e.status = playback.StateStopped
}
