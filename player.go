package songsynth

import (
	"errors"
	"io"
	"log"
	"sync"

	intaudio "github.com/cbegin/songsynth-go/internal/audio"
	"github.com/cbegin/songsynth-go/internal/song"
	"github.com/cbegin/songsynth-go/internal/synth"
)

type PlayerOption func(*playerConfig)

type playerConfig struct {
	params synth.Params[int16]
	logger *log.Logger
	// newBackend opens the audio driver; tests replace it.
	newBackend func(*synth.Buffer[int16]) (backend, error)
}

type backend interface {
	Play()
	Pause()
	Stop() error
}

func defaultPlayerConfig() playerConfig {
	return playerConfig{
		params: synth.DefaultParams(),
		logger: log.New(io.Discard, "", 0),
		newBackend: func(buf *synth.Buffer[int16]) (backend, error) {
			pl, err := intaudio.NewPlayer(buf)
			if err != nil {
				return nil, err
			}
			return pl, nil
		},
	}
}

func WithPlayerSampleRate(rate int) PlayerOption {
	return func(cfg *playerConfig) { cfg.params.Rate = rate }
}

func WithPlayerChannels(channels int) PlayerOption {
	return func(cfg *playerConfig) { cfg.params.Channels = channels }
}

func WithPlayerPeak(peak int16) PlayerOption {
	return func(cfg *playerConfig) { cfg.params.Peak = peak }
}

func WithLogger(l *log.Logger) PlayerOption {
	return func(cfg *playerConfig) {
		if l != nil {
			cfg.logger = l
		}
	}
}

// Player renders a song once and loops it on the audio device. The UI reads
// and moves the playhead through Position and Seek while the driver pulls
// samples; the two only share the buffer's atomic cursor.
type Player struct {
	mu         sync.Mutex
	params     synth.Params[int16]
	logger     *log.Logger
	newBackend func(*synth.Buffer[int16]) (backend, error)
	song       *song.Song
	buf        *synth.Buffer[int16]
	audio      backend
	playing    bool
}

func NewPlayer(opts ...PlayerOption) (*Player, error) {
	cfg := defaultPlayerConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if err := cfg.params.Validate(); err != nil {
		return nil, err
	}
	return &Player{
		params:     cfg.params,
		logger:     cfg.logger,
		newBackend: cfg.newBackend,
	}, nil
}

// Load renders s and opens a stream over the result, replacing any previous
// song. Playback does not start until Play.
func (p *Player) Load(s *song.Song) (*synth.Buffer[int16], error) {
	buf := synth.Render(s, p.params)
	be, err := p.newBackend(buf)
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.audio != nil {
		_ = p.audio.Stop()
	}
	p.song = s
	p.buf = buf
	p.audio = be
	p.playing = false
	p.logger.Printf("loaded %d tones, %d samples at %d Hz x%d", len(s.Tones), buf.Len(), buf.Rate, buf.Channels)
	return buf, nil
}

var ErrNotLoaded = errors.New("songsynth: no song loaded")

func (p *Player) Play() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.audio == nil {
		return ErrNotLoaded
	}
	p.audio.Play()
	p.playing = true
	return nil
}

func (p *Player) Pause() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.audio != nil {
		p.audio.Pause()
		p.playing = false
	}
}

// Resume continues a paused song. It is a no-op before Load.
func (p *Player) Resume() {
	_ = p.Play()
}

// TogglePause pauses a playing song or resumes a paused one.
func (p *Player) TogglePause() {
	p.mu.Lock()
	playing := p.playing
	p.mu.Unlock()
	if playing {
		p.Pause()
		return
	}
	p.Resume()
}

func (p *Player) Playing() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.playing
}

func (p *Player) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.audio == nil {
		return nil
	}
	err := p.audio.Stop()
	p.audio = nil
	p.playing = false
	return err
}

func (p *Player) Song() *song.Song {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.song
}

func (p *Player) Buffer() *synth.Buffer[int16] {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.buf
}

// Position returns the playhead as a fraction of the buffer in [0,1).
func (p *Player) Position() float64 {
	buf := p.Buffer()
	if buf == nil || buf.Len() == 0 {
		return 0
	}
	return float64(buf.Position()) / float64(buf.Len())
}

// Seek moves the playhead to fraction f of the buffer.
func (p *Player) Seek(f float64) {
	buf := p.Buffer()
	if buf == nil {
		return
	}
	buf.SeekFraction(f)
}
