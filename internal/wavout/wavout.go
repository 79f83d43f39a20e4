// Package wavout turns rendered sample buffers into PCM WAV files.
package wavout

import (
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	resampling "github.com/tphakala/go-audio-resampling"

	"github.com/cbegin/songsynth-go/internal/synth"
)

const wavFormatPCM = 1

type Options struct {
	SampleRate int
	BitDepth   int
	// TargetRate converts the channels to another rate before encoding.
	// 0 keeps SampleRate.
	TargetRate int
}

func DefaultOptions(sampleRate int) Options {
	return Options{SampleRate: sampleRate, BitDepth: 24}
}

var ErrBitDepth = errors.New("wavout: unsupported bit depth")

func (o Options) Validate() error {
	switch o.BitDepth {
	case 16, 24, 32:
	default:
		return fmt.Errorf("%w: %d", ErrBitDepth, o.BitDepth)
	}
	if o.SampleRate <= 0 {
		return fmt.Errorf("wavout: sample rate must be positive, got %d", o.SampleRate)
	}
	if o.TargetRate < 0 {
		return fmt.Errorf("wavout: target rate must not be negative, got %d", o.TargetRate)
	}
	return nil
}

func (o Options) outputRate() int {
	if o.TargetRate > 0 {
		return o.TargetRate
	}
	return o.SampleRate
}

// ChannelBuffers splits interleaved samples into one sequence per channel and
// divides every sample by divisor. A trailing partial frame is dropped.
func ChannelBuffers[T synth.Sample](samples []T, channels int, divisor T) [][]float64 {
	out := make([][]float64, channels)
	frames := len(samples) / channels
	d := float64(divisor)
	for c := range out {
		out[c] = make([]float64, frames)
		for j := range out[c] {
			out[c][j] = float64(samples[j*channels+c]) / d
		}
	}
	return out
}

// Encode writes chans as an interleaved PCM WAV stream.
func Encode(w io.WriteSeeker, chans [][]float64, opt Options) error {
	if err := opt.Validate(); err != nil {
		return err
	}
	if len(chans) == 0 {
		return errors.New("wavout: no channels")
	}
	if opt.TargetRate > 0 && opt.TargetRate != opt.SampleRate {
		var err error
		if chans, err = resample(chans, opt.SampleRate, opt.TargetRate); err != nil {
			return err
		}
	}

	frames := len(chans[0])
	for _, ch := range chans[1:] {
		frames = min(frames, len(ch))
	}
	scale := float64(int64(1)<<(opt.BitDepth-1) - 1)
	buf := &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: len(chans),
			SampleRate:  opt.outputRate(),
		},
		Data:           make([]int, frames*len(chans)),
		SourceBitDepth: opt.BitDepth,
	}
	for j := 0; j < frames; j++ {
		for c, ch := range chans {
			buf.Data[j*len(chans)+c] = int(math.Round(clamp(ch[j], -1, 1) * scale))
		}
	}

	enc := wav.NewEncoder(w, buf.Format.SampleRate, opt.BitDepth, buf.Format.NumChannels, wavFormatPCM)
	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("wavout: write samples: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("wavout: finish container: %w", err)
	}
	return nil
}

func resample(chans [][]float64, from, to int) ([][]float64, error) {
	out := make([][]float64, len(chans))
	for c, ch := range chans {
		r, err := resampling.New(&resampling.Config{
			InputRate:  float64(from),
			OutputRate: float64(to),
			Channels:   1,
			Quality:    resampling.QualitySpec{Preset: resampling.QualityHigh},
		})
		if err != nil {
			return nil, fmt.Errorf("wavout: create resampler: %w", err)
		}
		// Trailing silence pushes the last input frames through the filter
		// delay before Flush.
		padded := append(append(make([]float64, 0, len(ch)+from/10), ch...), make([]float64, from/10)...)
		body, err := r.Process(padded)
		if err != nil {
			return nil, fmt.Errorf("wavout: resample channel %d: %w", c, err)
		}
		tail, err := r.Flush()
		if err != nil {
			return nil, fmt.Errorf("wavout: flush channel %d: %w", c, err)
		}
		out[c] = fitLen(append(body, tail...), resampledLen(len(ch), from, to))
	}
	return out, nil
}

// fitLen cuts or zero-extends s to n samples.
func fitLen(s []float64, n int) []float64 {
	if len(s) >= n {
		return s[:n]
	}
	return append(s, make([]float64, n-len(s))...)
}

// resampledLen is the frame count n input frames span at the new rate.
func resampledLen(n, from, to int) int {
	return int((int64(n)*int64(to) + int64(from)/2) / int64(from))
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
