package synth

import "fmt"

// Sample is the integer width a buffer is rendered at.
type Sample interface {
	~int16 | ~int32
}

// Limits on Params. With song.MaxLength they keep every sample offset inside
// int64.
const (
	MaxRate     = 768000
	MaxChannels = 8
)

type Params[T Sample] struct {
	Rate     int
	Channels int
	// Peak is the loudest value a single full-volume tone may reach.
	Peak T
}

func DefaultParams() Params[int16] {
	return Params[int16]{
		Rate:     48000,
		Channels: 1,
		Peak:     0x7fff,
	}
}

// Validate reports parameters Render cannot work with.
func (p Params[T]) Validate() error {
	if p.Rate <= 0 || p.Rate > MaxRate {
		return fmt.Errorf("synth: sample rate must be in 1..%d, got %d", MaxRate, p.Rate)
	}
	if p.Channels <= 0 || p.Channels > MaxChannels {
		return fmt.Errorf("synth: channel count must be in 1..%d, got %d", MaxChannels, p.Channels)
	}
	if p.Peak <= 0 {
		return fmt.Errorf("synth: peak must be positive, got %d", p.Peak)
	}
	return nil
}

// SlewStep is the largest change allowed between neighbouring samples.
func (p Params[T]) SlewStep() int64 { return int64(p.Peak) / 16 }

// BufferLen is the number of interleaved samples allocated for a song of
// length ms. It is twice the song's span so overhanging tones have room.
func (p Params[T]) BufferLen(length int) int {
	return int(int64(length) * int64(p.Rate) * 2 * int64(p.Channels) / 1000)
}

// Samples converts a time span in ms to an interleaved sample count.
func (p Params[T]) Samples(ms int) int {
	return int(int64(ms) * int64(p.Rate) * int64(p.Channels) / 1000)
}
