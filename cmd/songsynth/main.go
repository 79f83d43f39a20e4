package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/hako/durafmt"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/spf13/pflag"

	songsynth "github.com/cbegin/songsynth-go"
	"github.com/cbegin/songsynth-go/internal/config"
	"github.com/cbegin/songsynth-go/internal/song"
	"github.com/cbegin/songsynth-go/internal/synth"
)

var errNoInput = errors.New("no song file given")

type flags struct {
	configPath string
	sampleRate int
	channels   int
	bitDepth   int
	exportRate int
	noExport   bool
	debug      bool
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	var f flags
	fs := pflag.NewFlagSet("songsynth", pflag.ContinueOnError)
	fs.StringVarP(&f.configPath, "config", "c", "", "YAML config file")
	fs.IntVar(&f.sampleRate, "sample-rate", 0, "render sample rate in Hz")
	fs.IntVar(&f.channels, "channels", 0, "output channels (1 or 2)")
	fs.IntVar(&f.bitDepth, "bit-depth", 0, "exported WAV bit depth (16, 24 or 32)")
	fs.IntVar(&f.exportRate, "export-rate", 0, "resample the exported WAV to this rate")
	fs.BoolVar(&f.noExport, "no-export", false, "do not write <song>.wav")
	fs.BoolVar(&f.debug, "debug", false, "enable debug logging")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		logger.Printf("%v", err)
		return 2
	}
	setDebugLogging(f.debug)

	cfg, err := loadConfig(fs, f)
	if err != nil {
		logger.Printf("%v", err)
		notify(msgUnavailable, err)
		return 1
	}

	err = play(fs.Args(), cfg)
	switch {
	case err == nil:
		return 0
	case errors.Is(err, errNoInput):
		logger.Printf("%v", err)
		notify(msgNoInput)
		return 0
	case errors.Is(err, song.ErrFormat):
		logger.Printf("%v", err)
		notify(msgBadFormat)
		return 0
	default:
		logger.Printf("%v", err)
		notify(msgUnavailable, err)
		return 1
	}
}

// loadConfig reads the config file and lays explicitly set flags over it.
func loadConfig(fs *pflag.FlagSet, f flags) (config.Config, error) {
	cfg, err := config.Load(f.configPath)
	if err != nil {
		return cfg, err
	}
	if fs.Changed("sample-rate") {
		cfg.SampleRate = f.sampleRate
	}
	if fs.Changed("channels") {
		cfg.Channels = f.channels
	}
	if fs.Changed("bit-depth") {
		cfg.Export.BitDepth = f.bitDepth
	}
	if fs.Changed("export-rate") {
		cfg.Export.SampleRate = f.exportRate
	}
	if f.noExport {
		cfg.Export.Enabled = false
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("flags: %w", err)
	}
	return cfg, nil
}

func play(args []string, cfg config.Config) error {
	if len(args) < 1 {
		return errNoInput
	}
	path := args[0]

	s, err := songsynth.Load(path)
	if err != nil {
		return err
	}
	logger.Printf("loaded %s: %d tones, base %d Hz, %s", filepath.Base(path), len(s.Tones), s.Base,
		durafmt.Parse(s.Duration()).LimitFirstN(2))
	logDump("song", s)
	for _, i := range s.Overhangs() {
		logDebug("tone %d ends past the song length and will be cut", i)
	}

	pl, err := songsynth.NewPlayer(
		songsynth.WithPlayerSampleRate(cfg.SampleRate),
		songsynth.WithPlayerChannels(cfg.Channels),
		songsynth.WithPlayerPeak(int16(cfg.Peak)),
		songsynth.WithLogger(debugLogger),
	)
	if err != nil {
		return err
	}
	defer pl.Stop()

	start := time.Now()
	buf, err := pl.Load(s)
	if err != nil {
		return fmt.Errorf("open audio: %w", err)
	}
	logger.Printf("rendered %s of audio (%s) in %s", durafmt.Parse(buf.Duration()).LimitFirstN(2),
		humanize.Bytes(uint64(buf.Len()*2)), time.Since(start).Round(time.Millisecond))

	if err := pl.Play(); err != nil {
		return err
	}

	var export *exportJob
	if cfg.Export.Enabled {
		export = startExport(path, buf, cfg.Export)
	}

	g := newGame(pl, s, export)
	ebiten.SetWindowSize(cfg.Window.Width, cfg.Window.Height)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowTitle(filepath.Base(path))
	runErr := ebiten.RunGame(g)
	if export != nil {
		// Leaving before the encoder closes the file would leave a truncated WAV.
		if res := export.Wait(); res.err != nil && runErr == nil {
			runErr = res.err
		}
	}
	if runErr != nil && !errors.Is(runErr, ebiten.Termination) {
		return runErr
	}
	return nil
}

type exportResult struct {
	path string
	size int64
	took time.Duration
	err  error
}

// exportJob writes a song's WAV file on its own goroutine.
type exportJob struct {
	done chan struct{}
	res  exportResult
}

func startExport(songPath string, buf *synth.Buffer[int16], exp config.Export) *exportJob {
	j := &exportJob{done: make(chan struct{})}
	go func() {
		defer close(j.done)
		start := time.Now()
		res := exportResult{path: exp.Path(songPath)}
		res.err = songsynth.ExportWAV(res.path, buf, exp.Options(buf.Rate))
		res.took = time.Since(start)
		if res.err == nil {
			if fi, err := os.Stat(res.path); err == nil {
				res.size = fi.Size()
			}
			logger.Printf("exported %s (%s, %d-bit) in %s", res.path, humanize.Bytes(uint64(res.size)),
				exp.BitDepth, res.took.Round(time.Millisecond))
		} else {
			res.err = fmt.Errorf("export %s: %w", res.path, res.err)
			logger.Printf("%v", res.err)
		}
		j.res = res
	}()
	return j
}

// Done is closed once the file is complete or the export failed.
func (j *exportJob) Done() <-chan struct{} { return j.done }

// Wait blocks until the export ends and returns its result.
func (j *exportJob) Wait() exportResult {
	<-j.done
	return j.res
}
