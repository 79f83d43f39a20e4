package main

import (
	"fmt"
	"image/color"
	"path/filepath"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"golang.org/x/time/rate"

	songsynth "github.com/cbegin/songsynth-go"
	"github.com/cbegin/songsynth-go/internal/pianoroll"
	"github.com/cbegin/songsynth-go/internal/song"
)

var (
	bgColor       = color.RGBA{0, 0, 0, 255}
	toneColor     = color.RGBA{0, 255, 0, 255}
	playheadColor = color.RGBA{255, 0, 255, 255}
)

const playheadW = 2

type game struct {
	player  *songsynth.Player
	song    *song.Song
	export  *exportJob
	status  string

	// drag seeks are throttled so the driver is not flooded with cursor jumps
	dragLimiter *rate.Limiter

	viewW int
	viewH int
}

func newGame(pl *songsynth.Player, s *song.Song, export *exportJob) *game {
	return &game{
		player:      pl,
		song:        s,
		export:      export,
		dragLimiter: rate.NewLimiter(rate.Every(50*time.Millisecond), 1),
	}
}

func (g *game) Update() error {
	g.pollExport()
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		g.player.TogglePause()
	}
	g.handleMouse()
	return nil
}

func (g *game) pollExport() {
	if g.export == nil || g.status != "" {
		return
	}
	select {
	case <-g.export.Done():
		res := g.export.Wait()
		if res.err != nil {
			g.status = "export failed"
		} else {
			g.status = "exported " + filepath.Base(res.path)
		}
	default:
	}
}

func (g *game) handleMouse() {
	if g.viewW <= 0 {
		return
	}
	mx, _ := ebiten.CursorPosition()
	switch {
	case inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft):
		g.seekTo(mx)
	case ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft):
		if g.dragLimiter.Allow() {
			g.seekTo(mx)
		}
	}
}

func (g *game) seekTo(x int) {
	buf := g.player.Buffer()
	if buf == nil {
		return
	}
	buf.Seek(pianoroll.SeekPosition(x, g.viewW, buf.Len()))
}

func (g *game) Draw(screen *ebiten.Image) {
	screen.Fill(bgColor)
	w, h := g.viewW, g.viewH
	for _, t := range g.song.Tones {
		r, ok := pianoroll.ToneRect(t, g.song.Length, w, h)
		if !ok {
			continue
		}
		ebitenutil.DrawRect(screen, float64(r.Min.X), float64(r.Min.Y), float64(r.Dx()), float64(r.Dy()), toneColor)
	}

	buf := g.player.Buffer()
	if buf == nil {
		return
	}
	x := pianoroll.PlayheadX(buf.Position(), buf.Len(), w)
	ebitenutil.DrawRect(screen, float64(x), 0, playheadW, float64(h), playheadColor)

	line := fmt.Sprintf("%s / %s", formatClock(time.Duration(g.player.Position()*float64(buf.Duration()))), formatClock(buf.Duration()))
	if !g.player.Playing() {
		line += "  paused"
	}
	if g.status != "" {
		line += "  " + g.status
	}
	ebitenutil.DebugPrintAt(screen, line, 8, 8)
}

func (g *game) Layout(outsideW, outsideH int) (int, int) {
	g.viewW = outsideW
	g.viewH = outsideH
	return outsideW, outsideH
}

func formatClock(d time.Duration) string {
	d = d.Truncate(100 * time.Millisecond)
	m := int(d / time.Minute)
	s := (d % time.Minute).Seconds()
	return fmt.Sprintf("%d:%04.1f", m, s)
}
