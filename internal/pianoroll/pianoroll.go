// Package pianoroll maps tones and the playback cursor to screen space.
package pianoroll

import (
	"image"
	"math"

	"github.com/cbegin/songsynth-go/internal/song"
)

const (
	noteHeight = 2
	pitchScale = 200
	pitchShift = 1000
)

// ToneRect places t on a w×h canvas: time runs left to right over length,
// pitch rises with log(freq). ok is false for rests and empty songs.
func ToneRect(t song.Tone, length, w, h int) (r image.Rectangle, ok bool) {
	if t.IsRest() || length <= 0 {
		return image.Rectangle{}, false
	}
	x := w * t.Start / length
	y := h - int(math.Log(float64(t.Freq))*pitchScale-pitchShift)
	width := w * t.Duration / length
	return image.Rect(x, y, x+width, y+noteHeight), true
}

// PlayheadX returns the column of the cursor pos within total samples.
func PlayheadX(pos, total, w int) int {
	if total <= 0 {
		return 0
	}
	return int(int64(w) * int64(pos) / int64(total))
}

// SeekPosition maps column x back to a sample index in [0,total).
func SeekPosition(x, w, total int) int {
	if w <= 0 || total <= 0 || x <= 0 {
		return 0
	}
	pos := int(int64(x) * int64(total) / int64(w))
	if pos >= total {
		pos = total - 1
	}
	return pos
}
