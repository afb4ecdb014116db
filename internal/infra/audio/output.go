package audio

import (
	"encoding/binary"
	"math"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/ebitengine/oto/v3"
	"github.com/gopxl/beep/v2"
)

const bytesPerFrame = 8 // two float32 channels

// Output plays a beep streamer on the default audio device through oto.
type Output struct {
	ctx    *oto.Context
	player *oto.Player
	mu     sync.Mutex
}

// NewOutput opens the audio device and starts pulling from src.
func NewOutput(src beep.Streamer, sampleRate beep.SampleRate, buffer time.Duration) (*Output, error) {
	op := &oto.NewContextOptions{
		SampleRate:   int(sampleRate),
		ChannelCount: 2,
		Format:       oto.FormatFloat32LE,
		BufferSize:   buffer,
	}

	ctx, ready, err := oto.NewContext(op)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open audio device")
	}
	<-ready

	o := &Output{ctx: ctx}
	o.player = ctx.NewPlayer(newSampleReader(src))
	o.player.Play()
	return o, nil
}

// Close stops the output.
func (o *Output) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.player == nil {
		return nil
	}
	err := o.player.Close()
	o.player = nil
	return err
}

// sampleReader adapts a beep streamer to the float32 little-endian byte
// stream oto reads.
type sampleReader struct {
	src beep.Streamer
	buf [][2]float64
}

func newSampleReader(src beep.Streamer) *sampleReader {
	return &sampleReader{src: src, buf: make([][2]float64, 1024)}
}

func (r *sampleReader) Read(p []byte) (int, error) {
	frames := len(p) / bytesPerFrame
	if len(r.buf) < frames {
		r.buf = make([][2]float64, frames)
	}
	samples := r.buf[:frames]

	n, ok := r.src.Stream(samples)
	for i := n; i < frames; i++ {
		samples[i] = [2]float64{}
	}
	if !ok && n == 0 && r.src.Err() != nil {
		return 0, r.src.Err()
	}

	for i, s := range samples {
		off := i * bytesPerFrame
		binary.LittleEndian.PutUint32(p[off:], math.Float32bits(float32(s[0])))
		binary.LittleEndian.PutUint32(p[off+4:], math.Float32bits(float32(s[1])))
	}
	return frames * bytesPerFrame, nil
}
