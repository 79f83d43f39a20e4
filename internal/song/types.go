package song

import (
	"math"
	"time"
)

// MaxLength bounds every time value of a song (total length, tone length,
// tone start) in ms. It keeps sample offsets well inside int64 at any
// supported rate.
const MaxLength = 3_600_000

// MaxFreq is the highest tone frequency in Hz a semitone offset may produce.
const MaxFreq = math.MaxInt32

// Tone is a single note event. Freq 0 is a rest.
type Tone struct {
	Freq     int
	Duration int
	Start    int
	Volume   int
}

// End returns the time unit right after the tone stops sounding.
func (t Tone) End() int { return t.Start + t.Duration }

func (t Tone) IsRest() bool { return t.Freq == 0 }

// Song is the parsed score. Tones keep input order and may overhang Length.
type Song struct {
	Base   int
	Length int
	Tones  []Tone
}

// Duration returns Length as wall-clock time (one unit is a millisecond).
func (s *Song) Duration() time.Duration {
	return time.Duration(s.Length) * time.Millisecond
}

// Overhangs returns the indexes of tones that end after Length.
func (s *Song) Overhangs() []int {
	var out []int
	for i, t := range s.Tones {
		if t.End() > s.Length {
			out = append(out, i)
		}
	}
	return out
}

type ParserConfig struct {
	StepsPerOctave int
	RestToken      string
	AfterToken     string
}

func DefaultParserConfig() ParserConfig {
	return ParserConfig{
		StepsPerOctave: 12,
		RestToken:      "rest",
		AfterToken:     "after",
	}
}
