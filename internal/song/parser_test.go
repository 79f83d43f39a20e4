package song

import (
	"errors"
	"io"
	"strconv"
	"strings"
	"testing"
)

func TestParseToneAndRest(t *testing.T) {
	s, err := ParseString("440 1000 0 300 500 0 rest 200 0 300")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if s.Base != 440 || s.Length != 1000 {
		t.Fatalf("header = %d %d, want 440 1000", s.Base, s.Length)
	}
	want := []Tone{
		{Freq: 440, Duration: 300, Volume: 500, Start: 0},
		{Freq: 0, Duration: 200, Volume: 0, Start: 300},
	}
	if len(s.Tones) != len(want) {
		t.Fatalf("expected %d tones, got %d: %+v", len(want), len(s.Tones), s.Tones)
	}
	for i := range want {
		if s.Tones[i] != want[i] {
			t.Fatalf("tone %d = %+v, want %+v", i, s.Tones[i], want[i])
		}
	}
	if !s.Tones[1].IsRest() {
		t.Fatalf("expected second tone to be a rest")
	}
}

func TestParseAfterWithoutPriorToneFails(t *testing.T) {
	for _, input := range []string{
		"440 2000 0 500 100 500 after",
		"440 2000 0 500 100 after",
		"440 2000 0 0 100 0 3 500 100 after",
	} {
		t.Run(input, func(t *testing.T) {
			_, err := ParseString(input)
			if err == nil {
				t.Fatalf("expected format error")
			}
			if !errors.Is(err, ErrFormat) {
				t.Fatalf("expected ErrFormat, got %v", err)
			}
			var fe *FormatError
			if !errors.As(err, &fe) {
				t.Fatalf("expected *FormatError, got %T", err)
			}
		})
	}
}

func TestParseAfterChainsFromPreviousTone(t *testing.T) {
	s, err := ParseString("440 3000\n0 500 100 250\n12 400 100 after\nrest 100 0 after\n-12 300 50 after")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	starts := []int{250, 750, 1150, 1250}
	freqs := []int{440, 880, 0, 220}
	if len(s.Tones) != 4 {
		t.Fatalf("expected 4 tones, got %d", len(s.Tones))
	}
	for i, tone := range s.Tones {
		if tone.Start != starts[i] {
			t.Fatalf("tone %d start = %d, want %d", i, tone.Start, starts[i])
		}
		if tone.Freq != freqs[i] {
			t.Fatalf("tone %d freq = %d, want %d", i, tone.Freq, freqs[i])
		}
	}
}

func TestParseDropsNonPositiveLength(t *testing.T) {
	s, err := ParseString("440 2000 0 500 100 0 7 0 100 after 3 -5 100 0 2 100 100 after")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if len(s.Tones) != 2 {
		t.Fatalf("expected 2 tones, got %d: %+v", len(s.Tones), s.Tones)
	}
	// The dropped groups must not become the reference for "after".
	if s.Tones[1].Start != 500 {
		t.Fatalf("second tone start = %d, want 500", s.Tones[1].Start)
	}
}

func TestParseSemitoneRounding(t *testing.T) {
	cases := []struct {
		semitone int
		want     int
	}{
		{0, 440},
		{1, 466},
		{2, 494},
		{3, 523},
		{-1, 415},
		{-9, 262},
		{12, 880},
		{-12, 220},
		{24, 1760},
	}
	for _, tc := range cases {
		s, err := ParseString("440 1000 " + strconv.Itoa(tc.semitone) + " 100 100 0")
		if err != nil {
			t.Fatalf("parse failed: %v", err)
		}
		if got := s.Tones[0].Freq; got != tc.want {
			t.Fatalf("semitone %d freq = %d, want %d", tc.semitone, got, tc.want)
		}
	}
}

func TestParseFormatErrors(t *testing.T) {
	cases := []struct {
		name   string
		input  string
		offset int
		token  string
	}{
		{"empty", "", 0, ""},
		{"missing length", "440", 0, ""},
		{"bad base", "A4 1000", 1, "A4"},
		{"zero base", "0 1000", 1, "0"},
		{"bad total", "440 long", 2, "long"},
		{"negative total", "440 -1", 2, "-1"},
		{"bad tone", "440 1000 do 100 100 0", 3, "do"},
		{"bad length", "440 1000 0 1.5 100 0", 4, "1.5"},
		{"bad volume", "440 1000 0 100 loud 0", 5, "loud"},
		{"negative volume", "440 1000 0 100 -3 0", 5, "-3"},
		{"bad position", "440 1000 0 100 100 later", 6, "later"},
		{"negative position", "440 1000 0 100 100 -10", 6, "-10"},
		{"bad position on dropped group", "440 1000 0 0 100 soon", 6, "soon"},
		{"trailing partial group", "440 1000 0 100 100 0 5 100", 0, ""},
		{"trailing garbage integer", "440 1000 0 100 100 12abc", 6, "12abc"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseString(tc.input)
			var fe *FormatError
			if !errors.As(err, &fe) {
				t.Fatalf("expected *FormatError, got %v", err)
			}
			if fe.Offset != tc.offset {
				t.Fatalf("offset = %d, want %d (%v)", fe.Offset, tc.offset, fe)
			}
			if fe.Token != tc.token {
				t.Fatalf("token = %q, want %q", fe.Token, tc.token)
			}
			if !errors.Is(err, ErrFormat) {
				t.Fatalf("expected errors.Is(err, ErrFormat)")
			}
		})
	}
}

func TestParseRejectsOutOfRangeValues(t *testing.T) {
	over := strconv.Itoa(MaxLength + 1)
	cases := []struct {
		name   string
		input  string
		offset int
		token  string
	}{
		{"song length", "440 " + over, 2, over},
		{"huge song length", "440 200000000000000", 2, "200000000000000"},
		{"tone length", "440 1000 0 " + over + " 100 0", 4, over},
		{"position", "440 1000 0 100 100 " + over, 6, over},
		{"huge position", "440 1000 0 100 100 200000000000000", 6, "200000000000000"},
		{"chained start", "440 1000 0 3600000 100 1 0 100 100 after", 10, "after"},
		{"high semitone", "440 1000 10000 100 100 0", 3, "10000"},
		{"low semitone", "1 1000 -40 100 100 0", 3, "-40"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseString(tc.input)
			var fe *FormatError
			if !errors.As(err, &fe) {
				t.Fatalf("expected *FormatError, got %v", err)
			}
			if fe.Offset != tc.offset || fe.Token != tc.token {
				t.Fatalf("error at %d %q, want %d %q (%v)", fe.Offset, fe.Token, tc.offset, tc.token, fe)
			}
		})
	}
}

func TestParseAcceptsMaxLength(t *testing.T) {
	limit := strconv.Itoa(MaxLength)
	s, err := ParseString("440 " + limit + " 0 " + limit + " 100 " + limit)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if s.Tones[0].Start != MaxLength || s.Tones[0].Duration != MaxLength {
		t.Fatalf("unexpected tone %+v", s.Tones[0])
	}
}

func TestParseFormatErrorWrapsStrconv(t *testing.T) {
	_, err := ParseString("440 1000 x 100 100 0")
	var numErr *strconv.NumError
	if !errors.As(err, &numErr) {
		t.Fatalf("expected wrapped *strconv.NumError, got %v", err)
	}
}

type failingReader struct{ err error }

func (r failingReader) Read([]byte) (int, error) { return 0, r.err }

func TestParseReaderErrorIsNotFormatError(t *testing.T) {
	boom := errors.New("disk on fire")
	_, err := Parse(io.MultiReader(strings.NewReader("440 "), failingReader{boom}))
	if err == nil {
		t.Fatalf("expected error")
	}
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped reader error, got %v", err)
	}
	if errors.Is(err, ErrFormat) {
		t.Fatalf("reader error must not be a format error")
	}
}

func TestParseWhitespaceInsensitive(t *testing.T) {
	a, err := ParseString("440 1000 0 300 500 0 4 200 250 after")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	b, err := ParseString("  440\n1000\n\n0\t300 500\r\n0 4\n200\n250\nafter\n")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if len(a.Tones) != len(b.Tones) {
		t.Fatalf("tone count mismatch %d vs %d", len(a.Tones), len(b.Tones))
	}
	for i := range a.Tones {
		if a.Tones[i] != b.Tones[i] {
			t.Fatalf("tone %d mismatch: %+v vs %+v", i, a.Tones[i], b.Tones[i])
		}
	}
}

func TestSongOverhangsAndDuration(t *testing.T) {
	s, err := ParseString("440 1000 0 600 100 0 0 600 100 after rest 10 0 990")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	got := s.Overhangs()
	if len(got) != 1 || got[0] != 1 {
		t.Fatalf("overhangs = %v, want [1]", got)
	}
	if s.Duration().Milliseconds() != 1000 {
		t.Fatalf("duration = %v", s.Duration())
	}
}

func TestParserConfigStepsPerOctave(t *testing.T) {
	p := NewParser(ParserConfig{StepsPerOctave: 24})
	s, err := p.Parse(strings.NewReader("440 1000 24 100 100 0 pause 100 100 0"))
	if err == nil {
		t.Fatalf("expected default rest token to reject %q", "pause")
	}
	p = NewParser(ParserConfig{StepsPerOctave: 24, RestToken: "pause"})
	s, err = p.Parse(strings.NewReader("440 1000 24 100 100 0 pause 100 100 0"))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if s.Tones[0].Freq != 880 || s.Tones[1].Freq != 0 {
		t.Fatalf("unexpected tones %+v", s.Tones)
	}
}
