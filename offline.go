package songsynth

import (
	"fmt"
	"os"
	"strings"

	"github.com/cbegin/songsynth-go/internal/song"
	"github.com/cbegin/songsynth-go/internal/synth"
	"github.com/cbegin/songsynth-go/internal/wavout"
)

func Compile(text string) (*song.Song, error) {
	return song.Parse(strings.NewReader(text))
}

// Load parses the song file at path.
func Load(path string) (*song.Song, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	s, err := song.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return s, nil
}

// Render synthesizes s at 16-bit width using the given options.
func Render(s *song.Song, opts ...RenderOption) (*synth.Buffer[int16], error) {
	p := synth.DefaultParams()
	for _, opt := range opts {
		opt(&p)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return synth.Render(s, p), nil
}

type RenderOption func(*synth.Params[int16])

func WithSampleRate(rate int) RenderOption {
	return func(p *synth.Params[int16]) { p.Rate = rate }
}

func WithChannels(channels int) RenderOption {
	return func(p *synth.Params[int16]) { p.Channels = channels }
}

func WithPeak(peak int16) RenderOption {
	return func(p *synth.Params[int16]) { p.Peak = peak }
}

// ExportWAV writes the song span of buf (its first half) to path. Samples
// are normalized by the buffer's peak and stored at opt.BitDepth.
func ExportWAV[T synth.Sample](path string, buf *synth.Buffer[T], opt wavout.Options) (err error) {
	if opt.SampleRate == 0 {
		opt.SampleRate = buf.Rate
	}
	span := buf.Samples[:buf.Len()/2]
	chans := wavout.ChannelBuffers(span, buf.Channels, buf.Peak)

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return wavout.Encode(f, chans, opt)
}
