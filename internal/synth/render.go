package synth

import (
	"fmt"

	"github.com/cbegin/songsynth-go/internal/song"
)

// Render synthesizes every tone of s into a new buffer. It is pure: equal
// inputs give bit-identical buffers. Samples that would land past the end of
// the buffer are dropped, as are tones that start before 0. Render panics if p
// does not validate or s.Length is outside [0, song.MaxLength]; Parse never
// returns such a song.
func Render[T Sample](s *song.Song, p Params[T]) *Buffer[T] {
	if err := p.Validate(); err != nil {
		panic(err)
	}
	if s.Length < 0 || s.Length > song.MaxLength {
		panic(fmt.Sprintf("synth: song length %d outside 0..%d", s.Length, song.MaxLength))
	}
	buf := make([]T, p.BufferLen(s.Length))
	for _, t := range s.Tones {
		renderTone(buf, t, p)
	}
	Slew(buf, p.SlewStep())
	return &Buffer[T]{
		Samples:  buf,
		Rate:     p.Rate,
		Channels: p.Channels,
		Peak:     p.Peak,
	}
}

// spanLimit is past the end of any buffer Render allocates, in ms.
const spanLimit = 2 * song.MaxLength

func renderTone[T Sample](buf []T, t song.Tone, p Params[T]) {
	if t.Duration <= 0 || t.Start < 0 || t.Start >= spanLimit {
		return
	}
	// Past spanLimit the envelope is still at full volume inside the buffer,
	// so capping the duration leaves the output unchanged.
	n := p.Samples(min(t.Duration, spanLimit))
	off := p.Samples(t.Start)
	vol := int(int64(p.Peak) * int64(t.Volume) / 1000)
	if off >= len(buf) {
		return
	}
	end := min(n, len(buf)-off)
	for i := 0; i < end; i++ {
		v := Harmonic(t.Freq, p.Rate, i/p.Channels, Envelope(n*2, i, vol))
		// Narrowing wraps like fixed-width integer addition.
		buf[off+i] = T(int64(buf[off+i]) + int64(v))
	}
}

// Slew limits |buf[i]-buf[i-1]| to step, moving each offending sample
// toward its predecessor.
func Slew[T Sample](buf []T, step int64) {
	for i := 1; i < len(buf); i++ {
		prev, cur := int64(buf[i-1]), int64(buf[i])
		d := cur - prev
		switch {
		case d > step:
			buf[i] = T(prev + step)
		case d < -step:
			buf[i] = T(prev - step)
		}
	}
}
