package audio

import (
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/wav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osa030/padbox/internal/app/playback"
)

const testRate = 8000

// writeWAV writes a silent mono WAV of the given length.
func writeWAV(t *testing.T, dir, name string, rate int, d time.Duration) string {
	t.Helper()
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	format := beep.Format{SampleRate: beep.SampleRate(rate), NumChannels: 1, Precision: 2}
	require.NoError(t, wav.Encode(f, beep.Silence(format.SampleRate.N(d)), format))
	return path
}

func stream(e *Engine, frames int) [][2]float64 {
	buf := make([][2]float64, frames)
	for i := range buf {
		buf[i] = [2]float64{1, 1}
	}
	n, ok := e.Stream(buf)
	if n != frames || !ok {
		panic("engine stream must always fill the buffer")
	}
	return buf
}

func TestEngine_Empty(t *testing.T) {
	e := NewEngine(testRate, 4)

	assert.Equal(t, playback.StateStopped, e.Status())
	assert.Zero(t, e.Position())
	assert.Zero(t, e.Duration())

	e.Play()
	e.Pause()
	e.SetPosition(time.Second)
	assert.Equal(t, playback.StateStopped, e.Status())

	buf := stream(e, 16)
	for _, s := range buf {
		assert.Equal(t, [2]float64{}, s)
	}
}

func TestEngine_LoadAndPlay(t *testing.T) {
	dir := t.TempDir()
	path := writeWAV(t, dir, "a.wav", testRate, time.Second)

	e := NewEngine(testRate, 4)
	defer e.Close()

	require.NoError(t, e.Load(path))
	assert.Equal(t, playback.StateStopped, e.Status())
	assert.Equal(t, time.Second, e.Duration())
	assert.Zero(t, e.Position())

	stream(e, 1000)
	assert.Zero(t, e.Position(), "stopped engine does not consume")

	e.Play()
	assert.Equal(t, playback.StatePlaying, e.Status())
	stream(e, 4000)
	assert.Equal(t, 500*time.Millisecond, e.Position())

	e.Pause()
	assert.Equal(t, playback.StatePaused, e.Status())
	stream(e, 4000)
	assert.Equal(t, 500*time.Millisecond, e.Position())

	e.Play()
	assert.Equal(t, playback.StatePlaying, e.Status())
}

func TestEngine_SetPositionClamps(t *testing.T) {
	path := writeWAV(t, t.TempDir(), "a.wav", testRate, time.Second)
	e := NewEngine(testRate, 4)
	defer e.Close()
	require.NoError(t, e.Load(path))

	tests := []struct {
		name     string
		to       time.Duration
		expected time.Duration
	}{
		{"inside", 250 * time.Millisecond, 250 * time.Millisecond},
		{"before start", -10 * time.Second, 0},
		{"past end", 10 * time.Second, time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e.SetPosition(tt.to)
			assert.Equal(t, tt.expected, e.Position())
		})
	}
}

func TestEngine_EndOfTrackStops(t *testing.T) {
	path := writeWAV(t, t.TempDir(), "a.wav", testRate, 100*time.Millisecond)
	e := NewEngine(testRate, 4)
	defer e.Close()
	require.NoError(t, e.Load(path))

	e.Play()
	buf := stream(e, 1000)
	assert.Equal(t, playback.StateStopped, e.Status())
	assert.Equal(t, 100*time.Millisecond, e.Position())
	assert.Equal(t, [2]float64{}, buf[999], "tail is silence")

	// Playing again restarts from the beginning.
	e.Play()
	assert.Equal(t, playback.StatePlaying, e.Status())
	assert.Zero(t, e.Position())
}

func TestEngine_LoadFailureKeepsCurrentTrack(t *testing.T) {
	dir := t.TempDir()
	good := writeWAV(t, dir, "good.wav", testRate, time.Second)
	corrupt := filepath.Join(dir, "corrupt.wav")
	require.NoError(t, os.WriteFile(corrupt, []byte("not a riff file"), 0o644))
	text := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(text, []byte("hello"), 0o644))

	e := NewEngine(testRate, 4)
	defer e.Close()
	require.NoError(t, e.Load(good))
	e.Play()
	stream(e, 800)

	tests := []struct {
		name string
		path string
		is   error
	}{
		{name: "missing", path: filepath.Join(dir, "missing.wav"), is: os.ErrNotExist},
		{name: "corrupt", path: corrupt},
		{name: "unsupported", path: text, is: ErrUnsupportedFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := e.Load(tt.path)
			require.Error(t, err)
			if tt.is != nil {
				assert.ErrorIs(t, err, tt.is)
			}
			assert.Equal(t, playback.StatePlaying, e.Status())
			assert.Equal(t, time.Second, e.Duration())
			assert.Equal(t, 100*time.Millisecond, e.Position())
		})
	}
}

func TestEngine_LoadReplacesAndStops(t *testing.T) {
	dir := t.TempDir()
	a := writeWAV(t, dir, "a.wav", testRate, time.Second)
	b := writeWAV(t, dir, "b.wav", testRate, 2*time.Second)

	e := NewEngine(testRate, 4)
	defer e.Close()
	require.NoError(t, e.Load(a))
	e.Play()
	stream(e, 800)

	require.NoError(t, e.Load(b))
	assert.Equal(t, playback.StateStopped, e.Status())
	assert.Equal(t, 2*time.Second, e.Duration())
	assert.Zero(t, e.Position())
}

func TestEngine_Resamples(t *testing.T) {
	path := writeWAV(t, t.TempDir(), "hi.wav", 2*testRate, time.Second)
	e := NewEngine(testRate, 4)
	defer e.Close()
	require.NoError(t, e.Load(path))

	assert.Equal(t, time.Second, e.Duration())

	e.Play()
	stream(e, testRate/2)
	assert.InDelta(t, float64(500*time.Millisecond), float64(e.Position()), float64(50*time.Millisecond))
}

func TestEngine_ResampledTrackRestartsAfterEnd(t *testing.T) {
	path := writeWAV(t, t.TempDir(), "hi.wav", 2*testRate, 100*time.Millisecond)
	e := NewEngine(testRate, 4)
	defer e.Close()
	require.NoError(t, e.Load(path))

	e.Play()
	stream(e, testRate)
	require.Equal(t, playback.StateStopped, e.Status())

	e.Play()
	stream(e, 100)
	assert.Equal(t, playback.StatePlaying, e.Status())

	e.SetPosition(e.Duration())
	stream(e, 100)
	require.Equal(t, playback.StateStopped, e.Status())

	e.SetPosition(0)
	e.Play()
	stream(e, 100)
	assert.Equal(t, playback.StatePlaying, e.Status())
	assert.Greater(t, e.Position(), time.Duration(0))
}

func TestSupported(t *testing.T) {
	for _, p := range []string{"a.wav", "b.MP3", "c.flac", "d.ogg", "e.oga"} {
		assert.True(t, Supported(p), p)
	}
	for _, p := range []string{"a.txt", "b", "c.m4a"} {
		assert.False(t, Supported(p), p)
	}
}

func TestSampleReader(t *testing.T) {
	src := beep.StreamerFunc(func(samples [][2]float64) (int, bool) {
		for i := range samples {
			samples[i] = [2]float64{0.5, -0.25}
		}
		return len(samples), true
	})

	r := newSampleReader(src)
	p := make([]byte, 3*bytesPerFrame+3)
	n, err := r.Read(p)
	require.NoError(t, err)
	assert.Equal(t, 3*bytesPerFrame, n)

	for i := 0; i < 3; i++ {
		off := i * bytesPerFrame
		assert.Equal(t, float32(0.5), math.Float32frombits(binary.LittleEndian.Uint32(p[off:])))
		assert.Equal(t, float32(-0.25), math.Float32frombits(binary.LittleEndian.Uint32(p[off+4:])))
	}
}

func TestSampleReader_ShortSourceIsPadded(t *testing.T) {
	src := beep.StreamerFunc(func(samples [][2]float64) (int, bool) {
		samples[0] = [2]float64{1, 1}
		return 1, true
	})

	r := newSampleReader(src)
	p := make([]byte, 2*bytesPerFrame)
	for i := range p {
		p[i] = 0xFF
	}
	n, err := r.Read(p)
	require.NoError(t, err)
	assert.Equal(t, 2*bytesPerFrame, n)
	assert.Equal(t, float32(1), math.Float32frombits(binary.LittleEndian.Uint32(p[0:])))
	assert.Equal(t, float32(0), math.Float32frombits(binary.LittleEndian.Uint32(p[bytesPerFrame:])))
}
