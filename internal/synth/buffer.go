package synth

import (
	"sync/atomic"
	"time"
)

// Buffer is a rendered, interleaved waveform plus a playback cursor.
//
// Samples must not be modified once Render returns. The cursor is the only
// state shared between the audio pull callback and the UI; it is accessed
// atomically and no lock is taken. A Buffer must not be copied.
type Buffer[T Sample] struct {
	Samples  []T
	Rate     int
	Channels int
	Peak     T

	pos atomic.Int64
}

func (b *Buffer[T]) Len() int { return len(b.Samples) }

// Frames returns the number of multi-channel frames.
func (b *Buffer[T]) Frames() int { return len(b.Samples) / b.Channels }

func (b *Buffer[T]) Duration() time.Duration {
	return time.Duration(b.Frames()) * time.Second / time.Duration(b.Rate)
}

// Position returns the cursor as an interleaved sample index.
func (b *Buffer[T]) Position() int { return int(b.pos.Load()) }

// Seek moves the cursor. pos is wrapped to the buffer length and aligned down
// to a frame boundary; negative values seek to 0.
func (b *Buffer[T]) Seek(pos int) {
	n := len(b.Samples)
	if n == 0 || pos < 0 {
		b.pos.Store(0)
		return
	}
	pos %= n
	pos -= pos % b.Channels
	b.pos.Store(int64(pos))
}

// SeekFraction moves the cursor to fraction f of the buffer, with f clamped
// to [0,1).
func (b *Buffer[T]) SeekFraction(f float64) {
	if f <= 0 {
		b.Seek(0)
		return
	}
	pos := int(f * float64(len(b.Samples)))
	if n := len(b.Samples); pos >= n {
		pos = n - 1
	}
	b.Seek(pos)
}

// Fill copies len(dst) samples starting at the cursor, wrapping to the start
// of the buffer as often as needed, then advances the cursor by len(dst)
// modulo the buffer length. If a Seek lands while Fill is copying, the seek
// is kept. An empty buffer yields silence.
func (b *Buffer[T]) Fill(dst []T) int {
	n := len(b.Samples)
	if n == 0 {
		clear(dst)
		return len(dst)
	}
	start := b.pos.Load()
	p := int(start % int64(n))
	for w := 0; w < len(dst); {
		w += copy(dst[w:], b.Samples[p:])
		p = 0
	}
	b.pos.CompareAndSwap(start, (start+int64(len(dst)))%int64(n))
	return len(dst)
}
