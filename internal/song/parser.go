package song

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

type Parser struct{ cfg ParserConfig }

func NewParser(cfg ParserConfig) *Parser {
	if cfg.StepsPerOctave <= 0 {
		cfg.StepsPerOctave = 12
	}
	if cfg.RestToken == "" {
		cfg.RestToken = "rest"
	}
	if cfg.AfterToken == "" {
		cfg.AfterToken = "after"
	}
	return &Parser{cfg: cfg}
}

// Parse reads a song with the default configuration.
func Parse(r io.Reader) (*Song, error) {
	return NewParser(DefaultParserConfig()).Parse(r)
}

func ParseString(input string) (*Song, error) {
	return Parse(strings.NewReader(input))
}

// Parse reads "base length" followed by groups of
// "<semitone|rest> <length> <volume> <after|position>".
func (p *Parser) Parse(r io.Reader) (*Song, error) {
	tk := newTokenizer(r)

	base, err := tk.integer("base frequency")
	if err != nil {
		return nil, err
	}
	if base <= 0 {
		return nil, tk.fail("base frequency must be positive", nil)
	}
	length, err := tk.integer("song length")
	if err != nil {
		return nil, err
	}
	if length < 0 {
		return nil, tk.fail("song length must not be negative", nil)
	}
	if length > MaxLength {
		return nil, tk.fail("song length above "+strconv.Itoa(MaxLength), nil)
	}

	semitone := math.Pow(2, 1/float64(p.cfg.StepsPerOctave))
	s := &Song{Base: base, Length: length}
	for {
		g, ok, err := p.readGroup(tk)
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		if g.length <= 0 {
			continue
		}
		t := Tone{Duration: g.length, Volume: g.volume}
		if !g.rest {
			f := math.Round(float64(base) * math.Pow(semitone, float64(g.semitone)))
			if f < 1 || f > MaxFreq {
				return nil, &FormatError{
					Offset: g.semOffset,
					Token:  g.semToken,
					Reason: "tone frequency out of range",
				}
			}
			t.Freq = int(f)
		}
		if g.after {
			if len(s.Tones) == 0 {
				return nil, &FormatError{
					Offset: g.posOffset,
					Token:  p.cfg.AfterToken,
					Reason: "no preceding tone to follow",
				}
			}
			t.Start = s.Tones[len(s.Tones)-1].End()
			if t.Start > MaxLength {
				return nil, &FormatError{
					Offset: g.posOffset,
					Token:  p.cfg.AfterToken,
					Reason: "tone start above " + strconv.Itoa(MaxLength),
				}
			}
		} else {
			t.Start = g.position
		}
		s.Tones = append(s.Tones, t)
	}
	return s, nil
}

type group struct {
	rest      bool
	semitone  int
	semOffset int
	semToken  string
	length    int
	volume    int
	after     bool
	position  int
	posOffset int
}

// readGroup returns ok=false on a clean end of input.
func (p *Parser) readGroup(tk *tokenizer) (group, bool, error) {
	var g group
	tok, ok, err := tk.next()
	if err != nil || !ok {
		return g, false, err
	}
	g.semOffset, g.semToken = tk.offset, tok
	if tok == p.cfg.RestToken {
		g.rest = true
	} else {
		v, err := strconv.Atoi(tok)
		if err != nil {
			return g, false, tk.fail("tone must be an integer or "+strconv.Quote(p.cfg.RestToken), err)
		}
		g.semitone = v
	}

	if g.length, err = tk.integer("tone length"); err != nil {
		return g, false, err
	}
	if g.length > MaxLength {
		return g, false, tk.fail("tone length above "+strconv.Itoa(MaxLength), nil)
	}
	if g.volume, err = tk.integer("tone volume"); err != nil {
		return g, false, err
	}
	if g.volume < 0 {
		return g, false, tk.fail("tone volume must not be negative", nil)
	}

	tok, err = tk.need("tone position")
	if err != nil {
		return g, false, err
	}
	g.posOffset = tk.offset
	if tok == p.cfg.AfterToken {
		g.after = true
		return g, true, nil
	}
	v, err := strconv.Atoi(tok)
	if err != nil {
		return g, false, tk.fail("position must be an integer or "+strconv.Quote(p.cfg.AfterToken), err)
	}
	if v < 0 {
		return g, false, tk.fail("position must not be negative", nil)
	}
	if v > MaxLength {
		return g, false, tk.fail("position above "+strconv.Itoa(MaxLength), nil)
	}
	g.position = v
	return g, true, nil
}

type tokenizer struct {
	sc     *bufio.Scanner
	offset int
	last   string
}

func newTokenizer(r io.Reader) *tokenizer {
	sc := bufio.NewScanner(r)
	sc.Split(bufio.ScanWords)
	return &tokenizer{sc: sc}
}

func (t *tokenizer) next() (string, bool, error) {
	if !t.sc.Scan() {
		if err := t.sc.Err(); err != nil {
			return "", false, fmt.Errorf("read song: %w", err)
		}
		return "", false, nil
	}
	t.offset++
	t.last = t.sc.Text()
	return t.last, true, nil
}

// need is next with end of input reported as a FormatError.
func (t *tokenizer) need(what string) (string, error) {
	tok, ok, err := t.next()
	if err != nil {
		return "", err
	}
	if !ok {
		return "", &FormatError{Reason: "unexpected end of input, expected " + what}
	}
	return tok, nil
}

func (t *tokenizer) integer(what string) (int, error) {
	tok, err := t.need(what)
	if err != nil {
		return 0, err
	}
	v, err := strconv.Atoi(tok)
	if err != nil {
		return 0, t.fail(what+" must be an integer", err)
	}
	return v, nil
}

func (t *tokenizer) fail(reason string, err error) *FormatError {
	return &FormatError{Offset: t.offset, Token: t.last, Reason: reason, Err: err}
}
