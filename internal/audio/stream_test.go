package audio

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/cbegin/songsynth-go/internal/synth"
)

func frameAt(p []byte, f int) (float32, float32) {
	l := math.Float32frombits(binary.LittleEndian.Uint32(p[f*8:]))
	r := math.Float32frombits(binary.LittleEndian.Uint32(p[f*8+4:]))
	return l, r
}

func TestStreamReaderDuplicatesMono(t *testing.T) {
	buf := &synth.Buffer[int16]{Samples: []int16{1000, -1000, 500}, Rate: 48000, Channels: 1, Peak: 1000}
	r := NewStreamReader(buf)
	p := make([]byte, 4*bytesPerFrame+3)
	n, err := r.Read(p)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if n != 4*bytesPerFrame {
		t.Fatalf("n = %d, want %d", n, 4*bytesPerFrame)
	}
	want := []float32{1, -1, 0.5, 1}
	for f, w := range want {
		l, rt := frameAt(p, f)
		if l != w || rt != w {
			t.Fatalf("frame %d = (%v,%v), want %v on both", f, l, rt, w)
		}
	}
	if buf.Position() != 1 {
		t.Fatalf("cursor = %d, want 1", buf.Position())
	}
}

func TestStreamReaderKeepsStereoPairs(t *testing.T) {
	buf := &synth.Buffer[int32]{Samples: []int32{100, -100, 50, -50}, Rate: 48000, Channels: 2, Peak: 100}
	r := NewStreamReader(buf)
	p := make([]byte, 3*bytesPerFrame)
	if _, err := r.Read(p); err != nil {
		t.Fatalf("read: %v", err)
	}
	want := [][2]float32{{1, -1}, {0.5, -0.5}, {1, -1}}
	for f, w := range want {
		l, rt := frameAt(p, f)
		if l != w[0] || rt != w[1] {
			t.Fatalf("frame %d = (%v,%v), want %v", f, l, rt, w)
		}
	}
}

func TestStreamReaderFollowsSeek(t *testing.T) {
	buf := &synth.Buffer[int16]{Samples: []int16{0, 0, 0, 100}, Rate: 48000, Channels: 1, Peak: 100}
	r := NewStreamReader(buf)
	buf.Seek(3)
	p := make([]byte, bytesPerFrame)
	if _, err := r.Read(p); err != nil {
		t.Fatalf("read: %v", err)
	}
	if l, _ := frameAt(p, 0); l != 1 {
		t.Fatalf("expected sample after seek, got %v", l)
	}
}

func TestStreamReaderShortRead(t *testing.T) {
	buf := &synth.Buffer[int16]{Samples: []int16{1}, Rate: 48000, Channels: 1, Peak: 1}
	n, err := NewStreamReader(buf).Read(make([]byte, 7))
	if n != 0 || err != nil {
		t.Fatalf("Read(7 bytes) = %d, %v", n, err)
	}
}
