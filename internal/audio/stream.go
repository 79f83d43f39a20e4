package audio

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"sync"
	"time"

	ebitaudio "github.com/hajimehoshi/ebiten/v2/audio"

	"github.com/cbegin/songsynth-go/internal/synth"
)

const bytesPerFrame = 8 // float32 stereo

// StreamReader feeds a rendered buffer to the audio driver. Every Read pulls
// through Buffer.Fill, so playback loops and follows seeks made elsewhere.
type StreamReader[T synth.Sample] struct {
	mu      sync.Mutex
	source  *synth.Buffer[T]
	scratch []T
}

func NewStreamReader[T synth.Sample](source *synth.Buffer[T]) *StreamReader[T] {
	return &StreamReader[T]{source: source}
}

func (r *StreamReader[T]) Read(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	frames := len(p) / bytesPerFrame
	if frames == 0 {
		return 0, nil
	}
	ch := r.source.Channels
	need := frames * ch
	if cap(r.scratch) < need {
		r.scratch = make([]T, need)
	}
	r.scratch = r.scratch[:need]
	r.source.Fill(r.scratch)

	peak := float32(r.source.Peak)
	for f := 0; f < frames; f++ {
		var l, rt float32
		switch ch {
		case 1:
			l = float32(r.scratch[f]) / peak
			rt = l
		default:
			l = float32(r.scratch[f*ch]) / peak
			rt = float32(r.scratch[f*ch+1]) / peak
		}
		binary.LittleEndian.PutUint32(p[f*bytesPerFrame:], math.Float32bits(l))
		binary.LittleEndian.PutUint32(p[f*bytesPerFrame+4:], math.Float32bits(rt))
	}
	return frames * bytesPerFrame, nil
}

func (r *StreamReader[T]) Close() error { return nil }

type Player struct {
	player *ebitaudio.Player
	reader io.ReadCloser
}

var (
	audioContextOnce sync.Once
	audioContext     *ebitaudio.Context
	audioSampleRate  int
)

func sharedAudioContext(sampleRate int) (*ebitaudio.Context, error) {
	audioContextOnce.Do(func() {
		audioSampleRate = sampleRate
		audioContext = ebitaudio.NewContext(sampleRate)
	})
	if audioSampleRate != sampleRate {
		return nil, fmt.Errorf("audio context already initialized at %d Hz (requested %d Hz)", audioSampleRate, sampleRate)
	}
	return audioContext, nil
}

// NewPlayer opens a driver stream over buf. Only one sample rate can be used
// per process.
func NewPlayer[T synth.Sample](buf *synth.Buffer[T]) (*Player, error) {
	ctx, err := sharedAudioContext(buf.Rate)
	if err != nil {
		return nil, err
	}
	reader := NewStreamReader(buf)
	pl, err := ctx.NewPlayerF32(reader)
	if err != nil {
		return nil, err
	}
	// Keep the driver's read-ahead short so seeks are heard quickly.
	pl.SetBufferSize(100 * time.Millisecond)
	return &Player{
		player: pl,
		reader: reader,
	}, nil
}

func (p *Player) Play()  { p.player.Play() }
func (p *Player) Pause() { p.player.Pause() }

func (p *Player) Stop() error {
	p.player.Pause()
	p.player.Close()
	return p.reader.Close()
}
